package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
	"agora-ads/internal/metrics"
)

// Resolver runs the auction for a placement: it loads the bid-ordered
// candidates, applies the eligibility filter, and takes the first max_slots
// survivors as winners. It is read-only on campaign and wallet state; billing
// is the only component that debits. The full decision, including every
// rejection, goes to the decision logger without blocking the caller.
type Resolver struct {
	placements port.PlacementStore
	campaigns  port.CampaignStore
	elig       eligibility
	decisions  *DecisionLogger
	logger     *slog.Logger
	now        func() time.Time
}

// NewResolver wires a resolver from its stores and the decision logger.
func NewResolver(placements port.PlacementStore, campaigns port.CampaignStore, events port.EventStore, wallets port.WalletStore, decisions *DecisionLogger, logger *slog.Logger) *Resolver {
	return &Resolver{
		placements: placements,
		campaigns:  campaigns,
		elig:       eligibility{events: events, wallets: wallets},
		decisions:  decisions,
		logger:     logger,
		now:        time.Now,
	}
}

// ResolvePlacement implements port.Resolver. A missing or inactive placement
// is a normal outcome: the caller gets an empty winner list and the decision
// log records the fallback, never an error.
func (r *Resolver) ResolvePlacement(ctx context.Context, slug string, allowList []int64, attr domain.Attribution) ([]domain.Winner, error) {
	start := r.now()
	d := domain.AllocationDecision{
		ID:            uuid.NewString(),
		PlacementSlug: slug,
		Context:       attr,
		CreatedAt:     start,
	}

	pl, err := r.placements.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if pl == nil || !pl.Active {
		d.FallbackUsed = true
		d.Rejections = []domain.Rejection{{Reason: domain.RejectPlacementNotFound}}
		r.finish(&d, start)
		return nil, nil
	}

	today := startOfDay(start)
	candidates, err := r.campaigns.Candidates(ctx, pl.ID, today, allowList)
	if err != nil {
		return nil, err
	}
	d.CandidateCount = len(candidates)
	d.Candidates = make([]domain.CandidateRecord, 0, len(candidates))
	for _, c := range candidates {
		d.Candidates = append(d.Candidates, domain.CandidateRecord{
			CampaignID:   c.ID,
			AdvertiserID: c.AdvertiserID,
			BidRate:      c.BidRate,
			Priority:     c.Priority,
			Status:       c.Status,
		})
	}
	if len(candidates) == 0 {
		d.FallbackUsed = true
		r.finish(&d, start)
		return nil, nil
	}

	eligible, rejections, err := r.elig.filter(ctx, candidates, today)
	if err != nil {
		return nil, err
	}
	d.Rejections = rejections

	// Candidates arrive bid-ordered, so the winners are simply the first
	// max_slots survivors; the rest lost on slot capacity alone.
	winners := make([]domain.Winner, 0, pl.MaxSlots)
	for i, c := range eligible {
		if i < pl.MaxSlots {
			winners = append(winners, domain.Winner{
				CampaignID:   c.ID,
				AdvertiserID: c.AdvertiserID,
				Inventory:    c.Inventory,
				BidRate:      c.BidRate,
				Placement:    pl.Slug,
				TargetURL:    c.TargetURL,
			})
			continue
		}
		d.Rejections = append(d.Rejections, domain.Rejection{
			CampaignID:   c.ID,
			AdvertiserID: c.AdvertiserID,
			Reason:       domain.RejectOutbidNoSlot,
		})
	}
	d.Winners = winners
	d.WinnerCount = len(winners)
	d.FallbackUsed = len(winners) == 0
	r.finish(&d, start)
	return winners, nil
}

// finish stamps timing, updates metrics, and hands the decision to the
// background logger.
func (r *Resolver) finish(d *domain.AllocationDecision, start time.Time) {
	d.Elapsed = r.now().Sub(start)
	metrics.ResolveDuration.Observe(d.Elapsed.Seconds())
	if d.WinnerCount > 0 {
		metrics.Resolutions.WithLabelValues("won").Inc()
		metrics.WinnersServed.Add(float64(d.WinnerCount))
	} else {
		metrics.Resolutions.WithLabelValues("fallback").Inc()
	}
	r.decisions.Log(*d)
}

// startOfDay truncates t to midnight UTC. Daily budgets are accounted in UTC
// days.
func startOfDay(t time.Time) time.Time {
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
