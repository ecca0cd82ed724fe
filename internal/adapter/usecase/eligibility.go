package usecase

import (
	"context"
	"time"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// eligibility removes unbillable campaigns from a bid-ordered candidate list.
// Checks run in a fixed order and every removal is recorded with a reason so
// the decision log shows each filtering step, not just the survivors. The two
// store lookups (daily spend, wallet balances) are batched over ID sets
// rather than issued per candidate.
type eligibility struct {
	events  port.EventStore
	wallets port.WalletStore
}

// filter returns the campaigns that may still win, preserving input order,
// plus one rejection per removed campaign.
func (e eligibility) filter(ctx context.Context, candidates []domain.Campaign, today time.Time) ([]domain.Campaign, []domain.Rejection, error) {
	rejections := make([]domain.Rejection, 0, len(candidates))
	reject := func(c domain.Campaign, reason string) {
		rejections = append(rejections, domain.Rejection{
			CampaignID:   c.ID,
			AdvertiserID: c.AdvertiserID,
			Reason:       reason,
		})
	}

	// Budget and schedule checks need no extra reads.
	kept := make([]domain.Campaign, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c.TotalBudgetExhausted():
			reject(c, domain.RejectTotalBudgetExhausted)
		case c.Ended(today):
			reject(c, domain.RejectEndDatePassed)
		default:
			kept = append(kept, c)
		}
	}

	// Daily cap: one batched lookup across all daily-capped survivors.
	capped := make([]int64, 0, len(kept))
	for _, c := range kept {
		if c.DailyBudget > 0 {
			capped = append(capped, c.ID)
		}
	}
	var todaySpend map[int64]int64
	if len(capped) > 0 {
		var err error
		todaySpend, err = e.events.DailyCost(ctx, capped, today)
		if err != nil {
			return nil, nil, err
		}
	}
	paced := kept[:0]
	for _, c := range kept {
		if c.DailyBudget > 0 && todaySpend[c.ID] >= c.DailyBudget {
			reject(c, domain.RejectDailyBudgetHit)
			continue
		}
		paced = append(paced, c)
	}

	// Wallet funding: one batched lookup across the remaining advertisers.
	// A missing wallet counts as zero balance.
	if len(paced) == 0 {
		return nil, rejections, nil
	}
	seen := make(map[int64]struct{}, len(paced))
	advertisers := make([]int64, 0, len(paced))
	for _, c := range paced {
		if _, ok := seen[c.AdvertiserID]; !ok {
			seen[c.AdvertiserID] = struct{}{}
			advertisers = append(advertisers, c.AdvertiserID)
		}
	}
	balances, err := e.wallets.BalancesFor(ctx, advertisers)
	if err != nil {
		return nil, nil, err
	}
	eligible := make([]domain.Campaign, 0, len(paced))
	for _, c := range paced {
		if balances[c.AdvertiserID] <= 0 {
			reject(c, domain.RejectZeroWalletBalance)
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, rejections, nil
}
