package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// casAttempts bounds the optimistic-concurrency retry loop. Each attempt
// re-reads the wallet before rebuilding the change; after the last attempt the
// conflict is surfaced to the caller.
const casAttempts = 3

// Ledger implements port.Ledger on top of a WalletStore. Every mutation is one
// atomic store call: a conditional balance write plus exactly one appended
// transaction whose BalanceAfter equals the new balance, which is what makes
// the transaction log replayable into the current balance.
type Ledger struct {
	wallets port.WalletStore
	logger  *slog.Logger
}

// NewLedger creates a ledger over the given wallet store.
func NewLedger(wallets port.WalletStore, logger *slog.Logger) *Ledger {
	return &Ledger{wallets: wallets, logger: logger}
}

// GetOrCreateWallet returns the advertiser's wallet, creating a zero-balance
// one on first access.
func (l *Ledger) GetOrCreateWallet(ctx context.Context, advertiserID int64) (*domain.Wallet, error) {
	return l.wallets.GetOrCreate(ctx, advertiserID)
}

// Credit increases balance and lifetime deposits by amount.
func (l *Ledger) Credit(ctx context.Context, advertiserID int64, amount int64, description, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("credit of %d cents: %w", amount, port.ErrInvalidAmount)
	}
	return l.apply(ctx, advertiserID, func(w *domain.Wallet) (port.WalletChange, error) {
		return port.WalletChange{
			NewBalance:    w.Balance + amount,
			DepositsDelta: amount,
			TxType:        domain.TxDeposit,
			Amount:        amount,
			Description:   description,
			Reference:     reference,
		}, nil
	})
}

// Debit decreases balance and increases lifetime spend by amount. Fails with
// ErrInsufficientFunds when the balance cannot cover it; the wallet is left
// untouched in that case.
func (l *Ledger) Debit(ctx context.Context, advertiserID int64, amount int64, description, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("debit of %d cents: %w", amount, port.ErrInvalidAmount)
	}
	return l.apply(ctx, advertiserID, func(w *domain.Wallet) (port.WalletChange, error) {
		if w.Balance < amount {
			return port.WalletChange{}, fmt.Errorf("debit of %d cents against balance %d: %w", amount, w.Balance, port.ErrInsufficientFunds)
		}
		return port.WalletChange{
			NewBalance:  w.Balance - amount,
			SpendDelta:  amount,
			TxType:      domain.TxSpend,
			Amount:      amount,
			Description: description,
			Reference:   reference,
		}, nil
	})
}

// Refund reverses a prior debit: balance goes up by amount, lifetime spend
// goes down, floored at zero.
func (l *Ledger) Refund(ctx context.Context, advertiserID int64, amount int64, description, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("refund of %d cents: %w", amount, port.ErrInvalidAmount)
	}
	return l.apply(ctx, advertiserID, func(w *domain.Wallet) (port.WalletChange, error) {
		spendDelta := -amount
		if amount > w.LifetimeSpend {
			spendDelta = -w.LifetimeSpend
		}
		return port.WalletChange{
			NewBalance:  w.Balance + amount,
			SpendDelta:  spendDelta,
			TxType:      domain.TxRefund,
			Amount:      amount,
			Description: description,
			Reference:   reference,
		}, nil
	})
}

// Adjust applies a signed administrative correction attributed to actor.
// Fails with ErrInvalidAmount when the result would be negative.
func (l *Ledger) Adjust(ctx context.Context, advertiserID int64, amount int64, description, actor string) error {
	if amount == 0 {
		return fmt.Errorf("zero adjustment: %w", port.ErrInvalidAmount)
	}
	return l.apply(ctx, advertiserID, func(w *domain.Wallet) (port.WalletChange, error) {
		newBalance := w.Balance + amount
		if newBalance < 0 {
			return port.WalletChange{}, fmt.Errorf("adjustment of %d cents against balance %d: %w", amount, w.Balance, port.ErrInvalidAmount)
		}
		return port.WalletChange{
			NewBalance:  newBalance,
			TxType:      domain.TxAdjustment,
			Amount:      amount,
			Description: description,
			Reference:   actor,
		}, nil
	})
}

// apply runs the read-build-write cycle under bounded CAS retries. The build
// function sees a fresh wallet snapshot on every attempt; ExpectedBalance is
// pinned to that snapshot so a concurrent mutation fails the conditional write
// instead of being silently overwritten.
func (l *Ledger) apply(ctx context.Context, advertiserID int64, build func(*domain.Wallet) (port.WalletChange, error)) error {
	var err error
	for attempt := 0; attempt < casAttempts; attempt++ {
		var w *domain.Wallet
		w, err = l.wallets.GetOrCreate(ctx, advertiserID)
		if err != nil {
			return err
		}
		var change port.WalletChange
		change, err = build(w)
		if err != nil {
			return err
		}
		change.AdvertiserID = advertiserID
		change.ExpectedBalance = w.Balance
		err = l.wallets.Apply(ctx, change)
		if !errors.Is(err, port.ErrConcurrencyConflict) {
			return err
		}
		l.logger.Debug("wallet write conflict, retrying",
			slog.Int64("advertiser_id", advertiserID),
			slog.Int("attempt", attempt+1))
	}
	return err
}
