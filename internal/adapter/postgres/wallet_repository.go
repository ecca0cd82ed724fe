package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// WalletRepository implements port.WalletStore using pgxpool. The balance
// write and the ledger append run in one database transaction; the balance
// column itself is the optimistic-concurrency token (update conditioned on
// the balance still matching what the caller read).
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository returns a new repository instance.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// GetOrCreate returns the advertiser's wallet, inserting a zero-balance row
// on first access.
func (r *WalletRepository) GetOrCreate(ctx context.Context, advertiserID int64) (*domain.Wallet, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallets (advertiser_id) VALUES ($1) ON CONFLICT (advertiser_id) DO NOTHING`,
		advertiserID)
	if err != nil {
		return nil, err
	}
	var w domain.Wallet
	err = r.pool.QueryRow(ctx,
		`SELECT advertiser_id, balance, lifetime_deposited, lifetime_spent, created_at, updated_at
		 FROM wallets WHERE advertiser_id = $1`, advertiserID).
		Scan(&w.AdvertiserID, &w.Balance, &w.LifetimeDeposits, &w.LifetimeSpend, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Apply executes the conditional balance update and appends the transaction
// row atomically. Zero rows affected means either the wallet is missing or
// another writer got there first.
func (r *WalletRepository) Apply(ctx context.Context, change port.WalletChange) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE wallets
		 SET balance = $1,
		     lifetime_deposited = lifetime_deposited + $2,
		     lifetime_spent = GREATEST(lifetime_spent + $3, 0),
		     updated_at = now()
		 WHERE advertiser_id = $4 AND balance = $5`,
		change.NewBalance, change.DepositsDelta, change.SpendDelta,
		change.AdvertiserID, change.ExpectedBalance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM wallets WHERE advertiser_id = $1)`,
			change.AdvertiserID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = port.ErrWalletNotFound
			return err
		}
		err = port.ErrConcurrencyConflict
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO wallet_transactions
		 (advertiser_id, tx_type, amount, balance_after, description, reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())`,
		change.AdvertiserID, change.TxType, change.Amount, change.NewBalance,
		change.Description, change.Reference)
	return err
}

// BalancesFor returns current balances for the given advertisers in one read.
func (r *WalletRepository) BalancesFor(ctx context.Context, advertiserIDs []int64) (map[int64]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT advertiser_id, balance FROM wallets WHERE advertiser_id = ANY($1)`,
		advertiserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	balances := make(map[int64]int64, len(advertiserIDs))
	for rows.Next() {
		var id, balance int64
		if err = rows.Scan(&id, &balance); err != nil {
			return nil, err
		}
		balances[id] = balance
	}
	return balances, rows.Err()
}

// Transactions returns the advertiser's ledger entries, newest first.
func (r *WalletRepository) Transactions(ctx context.Context, advertiserID int64, limit int) ([]domain.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, advertiser_id, tx_type, amount, balance_after, description, reference, created_at
		 FROM wallet_transactions
		 WHERE advertiser_id = $1
		 ORDER BY id DESC
		 LIMIT $2`, advertiserID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WalletTransaction, error) {
		var t domain.WalletTransaction
		err := row.Scan(&t.ID, &t.AdvertiserID, &t.Type, &t.Amount, &t.BalanceAfter,
			&t.Description, &t.Reference, &t.CreatedAt)
		return t, err
	})
}

var _ port.WalletStore = (*WalletRepository)(nil)

// errNoRows reports whether err is the pgx no-rows sentinel.
func errNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
