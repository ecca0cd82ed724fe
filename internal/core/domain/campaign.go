package domain

import "time"

// Inventory types sold on the marketplace. Featured slots are billed as a
// flat monthly fee; CPC slots are billed per click at the campaign's bid rate.
const (
	InventoryFeatured = "featured"
	InventoryCPC      = "cpc"
)

// Campaign lifecycle statuses. A campaign is only auctionable while active;
// every other status is a terminal or administrative parking state.
const (
	CampaignActive          = "active"
	CampaignPaused          = "paused"
	CampaignBudgetExhausted = "budget_exhausted"
	CampaignExpired         = "expired"
	CampaignCancelled       = "cancelled"
)

// Campaign is an advertiser's bid to appear in a placement.
// All monetary amounts are integer minor units (cents).
type Campaign struct {
	ID           int64
	AdvertiserID int64
	PlacementID  int64
	Name         string
	Inventory    string // featured or cpc
	BidRate      int64  // cents; per click for cpc, per period for featured
	DailyBudget  int64  // cents, 0 = uncapped
	TotalBudget  int64  // cents, 0 = uncapped
	Spend        int64  // cumulative cents charged so far
	TargetURL    string
	StartDate    time.Time
	EndDate      *time.Time // nil = open-ended
	Priority     int        // tiebreaker after bid rate
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Auctionable reports whether the campaign may enter an auction on the given
// day: active status, started, and not past its end date.
func (c Campaign) Auctionable(today time.Time) bool {
	if c.Status != CampaignActive {
		return false
	}
	if c.StartDate.After(today) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(today)
}

// TotalBudgetExhausted reports whether cumulative spend has reached the total
// budget. Campaigns without a total budget are never exhausted.
func (c Campaign) TotalBudgetExhausted() bool {
	return c.TotalBudget > 0 && c.Spend >= c.TotalBudget
}

// Ended reports whether the campaign's end date is strictly before the given day.
func (c Campaign) Ended(today time.Time) bool {
	return c.EndDate != nil && c.EndDate.Before(today)
}
