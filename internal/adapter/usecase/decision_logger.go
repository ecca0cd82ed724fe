package usecase

import (
	"context"
	"log/slog"
	"time"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
	"agora-ads/internal/metrics"
)

// writeTimeout bounds each audit insert so a slow store cannot back the queue
// up forever.
const writeTimeout = 5 * time.Second

// DecisionLogger persists allocation decisions off the request path. Log
// never blocks: decisions go through a buffered channel to a single writer
// goroutine, and when the buffer is full the decision is dropped and counted.
// The audit log is best-effort; the resolver's returned outcome is the
// authoritative record.
type DecisionLogger struct {
	store  port.DecisionStore
	logger *slog.Logger
	queue  chan domain.AllocationDecision
	done   chan struct{}
}

// NewDecisionLogger starts the writer goroutine with the given queue size.
// Call Close to drain and stop it.
func NewDecisionLogger(store port.DecisionStore, logger *slog.Logger, queueSize int) *DecisionLogger {
	if queueSize <= 0 {
		queueSize = 256
	}
	dl := &DecisionLogger{
		store:  store,
		logger: logger,
		queue:  make(chan domain.AllocationDecision, queueSize),
		done:   make(chan struct{}),
	}
	go dl.run()
	return dl
}

// Log enqueues a decision without blocking. A full queue drops the decision.
func (dl *DecisionLogger) Log(d domain.AllocationDecision) {
	select {
	case dl.queue <- d:
	default:
		metrics.DecisionLog.WithLabelValues("dropped").Inc()
		dl.logger.Warn("decision log queue full, dropping record",
			slog.String("placement", d.PlacementSlug),
			slog.String("decision_id", d.ID))
	}
}

func (dl *DecisionLogger) run() {
	defer close(dl.done)
	for d := range dl.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := dl.store.Insert(ctx, d)
		cancel()
		if err != nil {
			metrics.DecisionLog.WithLabelValues("failed").Inc()
			dl.logger.Error("decision log write failed",
				slog.String("decision_id", d.ID),
				slog.String("placement", d.PlacementSlug),
				slog.Any("error", err))
			continue
		}
		metrics.DecisionLog.WithLabelValues("written").Inc()
	}
}

// Close stops accepting decisions and waits for the queue to drain, bounded
// by ctx.
func (dl *DecisionLogger) Close(ctx context.Context) error {
	close(dl.queue)
	select {
	case <-dl.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
