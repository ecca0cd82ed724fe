package domain

import "time"

// Campaign event types.
const (
	EventImpression = "impression"
	EventClick      = "click"
)

// CampaignEvent records one impression or click against a campaign.
// Cost is 0 for impressions. ClickID carries the idempotency key for clicks;
// the store enforces at most one click event per non-empty ClickID.
type CampaignEvent struct {
	ID           int64
	CampaignID   int64
	AdvertiserID int64
	Type         string
	Cost         int64  // cents charged for this event
	ClickID      string // empty for impressions
	Page         string
	Placement    string
	Device       string
	SessionID    string
	CreatedAt    time.Time
}

// Attribution is the contextual information the page layer supplies with an
// impression or click.
type Attribution struct {
	Page      string
	Placement string
	Device    string
	SessionID string
}
