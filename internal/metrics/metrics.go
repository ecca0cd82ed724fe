package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level counters registered on the default prometheus registry and
// served from /metrics.
var (
	// Resolutions counts resolver invocations by outcome: "won" when at least
	// one winner was returned, "fallback" otherwise.
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_resolutions_total",
		Help: "Placement resolutions by outcome.",
	}, []string{"outcome"})

	// WinnersServed counts winning slots returned to the page layer.
	WinnersServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_winners_served_total",
		Help: "Winning campaign slots returned by the resolver.",
	})

	// Clicks counts click-billing outcomes: billed, duplicate, daily_capped,
	// no_funds, rejected.
	Clicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_clicks_total",
		Help: "Click billing attempts by result.",
	}, []string{"result"})

	// CentsBilled sums the amounts debited for clicks.
	CentsBilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_cents_billed_total",
		Help: "Total cents debited for billed clicks.",
	})

	// DecisionLog counts audit-log writes by status: written, dropped, failed.
	DecisionLog = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_decision_log_total",
		Help: "Allocation decision audit writes by status.",
	}, []string{"status"})

	// CompensationFailures counts refunds that could not be applied after a
	// duplicate-click race. These require operator attention.
	CompensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_compensation_failures_total",
		Help: "Duplicate-click refunds that failed to apply.",
	})

	// ResolveDuration observes end-to-end resolver latency.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_resolve_duration_seconds",
		Help:    "Placement resolution latency.",
		Buckets: prometheus.DefBuckets,
	})
)
