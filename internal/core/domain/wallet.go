package domain

import "time"

// Wallet transaction types. The ledger is append-only: corrections are made
// with refund or adjustment entries, never by editing history.
const (
	TxDeposit    = "deposit"
	TxSpend      = "spend"
	TxRefund     = "refund"
	TxAdjustment = "adjustment"
)

// Wallet holds an advertiser's prepaid balance in integer cents. The balance
// is the source of truth for billability; campaign spend totals are derived
// accounting. Balance never goes negative.
type Wallet struct {
	AdvertiserID     int64
	Balance          int64
	LifetimeDeposits int64
	LifetimeSpend    int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WalletTransaction is one immutable ledger entry. BalanceAfter snapshots the
// wallet balance resulting from this entry, so replaying entries in creation
// order must reproduce the current balance exactly.
type WalletTransaction struct {
	ID           int64
	AdvertiserID int64
	Type         string
	Amount       int64 // cents; positive except for negative adjustments
	BalanceAfter int64
	Description  string
	Reference    string // causing entity: click id, payment reference, actor
	CreatedAt    time.Time
}
