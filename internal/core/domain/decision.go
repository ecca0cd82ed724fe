package domain

import "time"

// Rejection reasons recorded by the eligibility filter and resolver. Every
// excluded candidate gets exactly one reason; the audit trail shows every
// filtering decision, not just the final outcome.
const (
	RejectTotalBudgetExhausted = "total_budget_exhausted"
	RejectEndDatePassed        = "end_date_passed"
	RejectDailyBudgetHit       = "daily_budget_hit"
	RejectZeroWalletBalance    = "zero_wallet_balance"
	RejectOutbidNoSlot         = "outbid_no_slot"
	RejectPlacementNotFound    = "placement_not_found"
)

// Winner is one campaign selected for a placement slot, returned to the page
// layer for rendering and the click-redirect link.
type Winner struct {
	CampaignID   int64  `json:"campaign_id"`
	AdvertiserID int64  `json:"advertiser_id"`
	Inventory    string `json:"inventory"`
	BidRate      int64  `json:"bid_rate"`
	Placement    string `json:"placement"`
	TargetURL    string `json:"target_url"`
}

// CandidateRecord is one campaign as it entered the auction, as written to
// the decision log.
type CandidateRecord struct {
	CampaignID   int64  `json:"campaign_id"`
	AdvertiserID int64  `json:"advertiser_id"`
	BidRate      int64  `json:"bid_rate"`
	Priority     int    `json:"priority"`
	Status       string `json:"status"`
}

// Rejection pairs an excluded candidate with the reason it was excluded.
type Rejection struct {
	CampaignID   int64  `json:"campaign_id"`
	AdvertiserID int64  `json:"advertiser_id"`
	Reason       string `json:"reason"`
}

// AllocationDecision is the audit record for one resolver invocation. It is
// write-only from the request path; the decision logger persists it in the
// background and the resolver never waits for it.
type AllocationDecision struct {
	ID             string // uuid
	PlacementSlug  string
	Context        Attribution
	Candidates     []CandidateRecord
	Winners        []Winner
	Rejections     []Rejection
	CandidateCount int
	WinnerCount    int
	FallbackUsed   bool
	Elapsed        time.Duration
	CreatedAt      time.Time
}
