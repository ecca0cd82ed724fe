package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo marketplace data: two placements, funded advertiser
// wallets, and a mix of cpc and featured campaigns. Intended for local
// development only.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	placements := []struct {
		slug      string
		name      string
		inventory string
		maxSlots  int
	}{
		{"home-top", "Homepage top banner", "featured", 1},
		{"compare-sidebar", "Comparison page sidebar", "cpc", 3},
	}
	for i, p := range placements {
		_, err := db.Exec(ctx, `INSERT INTO placements (id, slug, name, inventory, max_slots, active)
VALUES ($1,$2,$3,$4,$5,TRUE) ON CONFLICT DO NOTHING`,
			i+1, p.slug, p.name, p.inventory, p.maxSlots)
		if err != nil {
			return err
		}
	}

	// advertisers 1..5, each with a funded wallet
	for adv := int64(1); adv <= 5; adv++ {
		deposit := int64(50_000) // 500.00 units
		_, err := db.Exec(ctx, `INSERT INTO wallets (advertiser_id, balance, lifetime_deposited)
VALUES ($1,$2,$2) ON CONFLICT DO NOTHING`, adv, deposit)
		if err != nil {
			return err
		}
		_, err = db.Exec(ctx, `INSERT INTO wallet_transactions (advertiser_id, tx_type, amount, balance_after, description, reference)
SELECT $1, 'deposit', $2, $2, 'seed deposit', 'seed'
WHERE NOT EXISTS (SELECT 1 FROM wallet_transactions WHERE advertiser_id = $1)`, adv, deposit)
		if err != nil {
			return err
		}
	}

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 1, 0)
	for i := int64(1); i <= 5; i++ {
		inventory := "cpc"
		placementID := int64(2)
		bid := int64(50 + i*10) // cents per click
		if i == 1 {
			inventory = "featured"
			placementID = 1
			bid = 10_000 // flat monthly fee
		}
		_, err := db.Exec(ctx, `INSERT INTO campaigns
(id, advertiser_id, placement_id, name, inventory, bid_rate, daily_budget, total_budget, target_url, start_date, end_date, priority, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,0,'active') ON CONFLICT DO NOTHING`,
			i, i, placementID, fmt.Sprintf("Campaign %d", i), inventory, bid,
			int64(1_000), int64(20_000),
			fmt.Sprintf("https://example.com/offers/%d", i), start, end)
		if err != nil {
			return err
		}
	}
	return nil
}
