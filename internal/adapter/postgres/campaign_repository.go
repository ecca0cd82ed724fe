package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// CampaignRepository implements port.CampaignStore using pgxpool.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `id, advertiser_id, placement_id, name, inventory, bid_rate,
	daily_budget, total_budget, spend, target_url, start_date, end_date,
	priority, status, created_at, updated_at`

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.AdvertiserID, &c.PlacementID, &c.Name, &c.Inventory,
		&c.BidRate, &c.DailyBudget, &c.TotalBudget, &c.Spend, &c.TargetURL,
		&c.StartDate, &c.EndDate, &c.Priority, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Get returns a campaign by id, nil when absent.
func (r *CampaignRepository) Get(ctx context.Context, id int64) (*domain.Campaign, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, scanCampaign)
	if errNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Candidates returns active, started campaigns for the placement in auction
// order: bid rate descending, priority descending, then creation time
// ascending so equal bids favor the earlier-committed advertiser. A non-empty
// allow-list restricts the advertisers considered.
func (r *CampaignRepository) Candidates(ctx context.Context, placementID int64, today time.Time, allowList []int64) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
		FROM campaigns
		WHERE placement_id = $1 AND status = 'active' AND start_date <= $2`
	args := []any{placementID, today}
	if len(allowList) > 0 {
		query += ` AND advertiser_id = ANY($3)`
		args = append(args, allowList)
	}
	query += ` ORDER BY bid_rate DESC, priority DESC, created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

// AddSpend increments cumulative spend and flips status to budget_exhausted in
// the same update when the total budget is reached, so no later read can see
// an active campaign that is already over budget.
func (r *CampaignRepository) AddSpend(ctx context.Context, campaignID int64, amount int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE campaigns
		 SET spend = spend + $1,
		     status = CASE
		       WHEN total_budget > 0 AND spend + $1 >= total_budget THEN 'budget_exhausted'
		       ELSE status
		     END,
		     updated_at = now()
		 WHERE id = $2`, amount, campaignID)
	return err
}

var _ port.CampaignStore = (*CampaignRepository)(nil)
