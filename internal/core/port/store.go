package port

import (
	"context"
	"time"

	"agora-ads/internal/core/domain"
)

// WalletChange describes one atomic ledger mutation: a conditional balance
// write plus exactly one appended transaction row whose BalanceAfter equals
// NewBalance. ExpectedBalance is the optimistic-concurrency guard: the write
// only succeeds if the stored balance still matches it.
type WalletChange struct {
	AdvertiserID    int64
	ExpectedBalance int64
	NewBalance      int64
	DepositsDelta   int64
	SpendDelta      int64
	TxType          string
	Amount          int64
	Description     string
	Reference       string
}

// WalletStore persists wallets and their append-only transaction log.
// Implementations must apply a WalletChange atomically: both the conditional
// balance update and the transaction insert, or neither.
type WalletStore interface {
	// GetOrCreate returns the advertiser's wallet, creating a zero-balance one
	// on first access.
	GetOrCreate(ctx context.Context, advertiserID int64) (*domain.Wallet, error)

	// Apply executes the conditional balance write and appends the transaction.
	// Returns ErrConcurrencyConflict when the balance no longer matches
	// ExpectedBalance, ErrWalletNotFound when the wallet row is missing.
	Apply(ctx context.Context, change WalletChange) error

	// BalancesFor returns current balances for a set of advertisers in one
	// batched read. Advertisers without a wallet are absent from the map.
	BalancesFor(ctx context.Context, advertiserIDs []int64) (map[int64]int64, error)

	// Transactions returns the advertiser's ledger entries, newest first,
	// capped at limit.
	Transactions(ctx context.Context, advertiserID int64, limit int) ([]domain.WalletTransaction, error)
}

// CampaignStore persists campaigns and their spend accounting.
type CampaignStore interface {
	// Get returns a campaign by id, nil when absent.
	Get(ctx context.Context, id int64) (*domain.Campaign, error)

	// Candidates returns campaigns bidding on the placement with status active
	// and start_date <= today, ordered by bid rate descending, priority
	// descending, then creation time ascending. A non-empty allow-list
	// restricts results to those advertisers.
	Candidates(ctx context.Context, placementID int64, today time.Time, allowList []int64) ([]domain.Campaign, error)

	// AddSpend increments cumulative spend by amount and transitions status to
	// budget_exhausted in the same update when the total budget is reached.
	AddSpend(ctx context.Context, campaignID int64, amount int64) error
}

// PlacementStore resolves placement configuration.
type PlacementStore interface {
	// GetBySlug returns a placement by slug, nil when absent.
	GetBySlug(ctx context.Context, slug string) (*domain.Placement, error)
}

// EventStore persists campaign events and answers pacing queries.
type EventStore interface {
	// Insert stores an event. For click events the store enforces uniqueness
	// on ClickID and returns ErrDuplicateClick on violation; that constraint,
	// not the pre-check, is the idempotency guarantee.
	Insert(ctx context.Context, ev domain.CampaignEvent) error

	// ClickExists reports whether a click event with the given id exists.
	ClickExists(ctx context.Context, clickID string) (bool, error)

	// DailyCost returns the sum of event costs per campaign for the given day
	// in one batched read. Campaigns with no events that day are absent.
	DailyCost(ctx context.Context, campaignIDs []int64, day time.Time) (map[int64]int64, error)
}

// DecisionStore persists allocation audit records. Written only by the
// decision logger, off the request path.
type DecisionStore interface {
	Insert(ctx context.Context, d domain.AllocationDecision) error
}
