package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
	"agora-ads/internal/metrics"
)

// Billing converts click events into wallet debits exactly once. The ordering
// is deliberate: debit first, then insert the event under the click-id
// uniqueness constraint. When two deliveries of the same click race past the
// pre-check, one insert loses and its debit is compensated with a refund, so
// the advertiser is charged once no matter how the race resolves.
type Billing struct {
	campaigns port.CampaignStore
	events    port.EventStore
	ledger    port.Ledger
	logger    *slog.Logger
	now       func() time.Time
}

// NewBilling wires the click billing service.
func NewBilling(campaigns port.CampaignStore, events port.EventStore, ledger port.Ledger, logger *slog.Logger) *Billing {
	return &Billing{
		campaigns: campaigns,
		events:    events,
		ledger:    ledger,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordClick implements port.Billing. billed=false is a normal business
// outcome (daily cap hit, empty wallet, inactive campaign); the caller still
// completes the user's redirect. Errors are reserved for storage faults.
func (b *Billing) RecordClick(ctx context.Context, req port.ClickRequest) (bool, error) {
	if req.ClickID == "" {
		return false, errors.New("click id required")
	}

	// Fast path for retries. The uniqueness constraint below, not this check,
	// is the actual idempotency guarantee.
	exists, err := b.events.ClickExists(ctx, req.ClickID)
	if err != nil {
		return false, err
	}
	if exists {
		metrics.Clicks.WithLabelValues("duplicate").Inc()
		return true, nil
	}

	campaign, err := b.campaigns.Get(ctx, req.CampaignID)
	if err != nil {
		return false, err
	}
	if campaign == nil || campaign.Status != domain.CampaignActive {
		metrics.Clicks.WithLabelValues("rejected").Inc()
		return false, nil
	}

	cost := req.BidRate
	if cost <= 0 {
		cost = campaign.BidRate
	}
	// Featured inventory is billed as a flat fee, not per click; the event is
	// still recorded for reporting.
	if campaign.Inventory == domain.InventoryFeatured {
		cost = 0
	}

	if cost > 0 && campaign.DailyBudget > 0 {
		// Re-check pacing at billing time: traffic between resolution and the
		// click may have consumed the remaining daily budget.
		spent, err := b.events.DailyCost(ctx, []int64{campaign.ID}, startOfDay(b.now()))
		if err != nil {
			return false, err
		}
		if spent[campaign.ID]+cost > campaign.DailyBudget {
			metrics.Clicks.WithLabelValues("daily_capped").Inc()
			return false, nil
		}
	}

	if cost > 0 {
		err = b.ledger.Debit(ctx, req.AdvertiserID, cost, fmt.Sprintf("click on campaign %d", campaign.ID), req.ClickID)
		if errors.Is(err, port.ErrInsufficientFunds) {
			metrics.Clicks.WithLabelValues("no_funds").Inc()
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}

	ev := domain.CampaignEvent{
		CampaignID:   campaign.ID,
		AdvertiserID: req.AdvertiserID,
		Type:         domain.EventClick,
		Cost:         cost,
		ClickID:      req.ClickID,
		Page:         req.Attribution.Page,
		Placement:    req.Attribution.Placement,
		Device:       req.Attribution.Device,
		SessionID:    req.Attribution.SessionID,
		CreatedAt:    b.now(),
	}
	if err = b.events.Insert(ctx, ev); err != nil {
		if errors.Is(err, port.ErrDuplicateClick) {
			// Lost the race to a concurrent delivery of the same click: the
			// other request's debit stands, ours gets compensated.
			b.compensate(ctx, req.AdvertiserID, cost, req.ClickID)
			metrics.Clicks.WithLabelValues("duplicate").Inc()
			return true, nil
		}
		b.compensate(ctx, req.AdvertiserID, cost, req.ClickID)
		return false, err
	}

	if cost > 0 {
		if err = b.campaigns.AddSpend(ctx, campaign.ID, cost); err != nil {
			// Spend totals are derived accounting; the wallet already holds the
			// authoritative charge. Log and carry on.
			b.logger.Error("campaign spend update failed",
				slog.Int64("campaign_id", campaign.ID),
				slog.Any("error", err))
		}
		metrics.CentsBilled.Add(float64(cost))
	}
	metrics.Clicks.WithLabelValues("billed").Inc()
	return true, nil
}

// compensate refunds a debit whose click event did not land. A failed refund
// means a real double charge, so it retries through conflict storms and is
// logged loudly and counted when it still cannot land; the user-facing
// request is not failed over it.
func (b *Billing) compensate(ctx context.Context, advertiserID, cost int64, clickID string) {
	if cost <= 0 {
		return
	}
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		err = b.ledger.Refund(ctx, advertiserID, cost, "duplicate click compensation", clickID)
		if !errors.Is(err, port.ErrConcurrencyConflict) {
			break
		}
	}
	if err != nil {
		metrics.CompensationFailures.Inc()
		b.logger.Error("compensating refund failed",
			slog.Int64("advertiser_id", advertiserID),
			slog.String("click_id", clickID),
			slog.Int64("cents", cost),
			slog.Any("error", err))
	}
}

// RecordImpression stores a zero-cost impression event.
func (b *Billing) RecordImpression(ctx context.Context, campaignID, advertiserID int64, attr domain.Attribution) error {
	return b.events.Insert(ctx, domain.CampaignEvent{
		CampaignID:   campaignID,
		AdvertiserID: advertiserID,
		Type:         domain.EventImpression,
		Page:         attr.Page,
		Placement:    attr.Placement,
		Device:       attr.Device,
		SessionID:    attr.SessionID,
		CreatedAt:    b.now(),
	})
}
