package port

import (
	"context"

	"agora-ads/internal/core/domain"
)

// Ledger exposes the wallet operations. All amounts are integer cents.
// Mutations are linearized per wallet via optimistic concurrency; each appends
// exactly one transaction recording the resulting balance.
type Ledger interface {
	// GetOrCreateWallet returns the advertiser's wallet, creating it with zero
	// balance on first access.
	GetOrCreateWallet(ctx context.Context, advertiserID int64) (*domain.Wallet, error)

	// Credit increases balance and lifetime deposits. The payment-webhook
	// layer is responsible for de-duplicating external payment references.
	Credit(ctx context.Context, advertiserID int64, amount int64, description, reference string) error

	// Debit decreases balance and increases lifetime spend. Returns
	// ErrInsufficientFunds when the balance cannot cover the amount.
	Debit(ctx context.Context, advertiserID int64, amount int64, description, reference string) error

	// Refund reverses a prior debit: balance up, lifetime spend down (floored
	// at zero).
	Refund(ctx context.Context, advertiserID int64, amount int64, description, reference string) error

	// Adjust applies a signed administrative correction. Fails with
	// ErrInvalidAmount when the result would be negative.
	Adjust(ctx context.Context, advertiserID int64, amount int64, description, actor string) error
}

// Resolver runs the auction for a placement. Read-mostly and side-effect-free
// on campaign and wallet state; it never debits.
type Resolver interface {
	// ResolvePlacement selects up to the placement's slot capacity of winners
	// from the eligible campaigns. A missing or inactive placement yields no
	// winners and a fallback-flagged decision, never an error.
	ResolvePlacement(ctx context.Context, slug string, allowList []int64, attr domain.Attribution) ([]domain.Winner, error)
}

// ClickRequest carries everything the billing service needs to bill one click.
type ClickRequest struct {
	CampaignID   int64
	AdvertiserID int64
	BidRate      int64 // cents
	ClickID      string
	Attribution  domain.Attribution
}

// Billing converts clicks into wallet debits exactly once and records
// impressions.
type Billing interface {
	// RecordClick bills a click. Returns billed=false for normal business
	// rejections (daily cap, insufficient funds); duplicates of an
	// already-billed click return billed=true without a second charge.
	RecordClick(ctx context.Context, req ClickRequest) (billed bool, err error)

	// RecordImpression stores a zero-cost impression event.
	RecordImpression(ctx context.Context, campaignID, advertiserID int64, attr domain.Attribution) error
}
