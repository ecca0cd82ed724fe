package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// uniqueViolation is the PostgreSQL error code raised when the partial unique
// index on click ids rejects a duplicate insert.
const uniqueViolation = "23505"

// EventRepository implements port.EventStore using pgxpool. The partial
// unique index on campaign_events(click_id) for click rows is the engine's
// idempotency guarantee; this repository translates its violation into
// port.ErrDuplicateClick.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a new repository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// Insert stores an event. Click ids are stored as NULL when empty so the
// unique index only applies to real click identifiers.
func (r *EventRepository) Insert(ctx context.Context, ev domain.CampaignEvent) error {
	var clickID *string
	if ev.ClickID != "" {
		clickID = &ev.ClickID
	}
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO campaign_events
		 (campaign_id, advertiser_id, event_type, cost, click_id, page, placement, device, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.CampaignID, ev.AdvertiserID, ev.Type, ev.Cost, clickID,
		ev.Page, ev.Placement, ev.Device, ev.SessionID, createdAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return port.ErrDuplicateClick
	}
	return err
}

// ClickExists reports whether a click event with the given id exists.
func (r *EventRepository) ClickExists(ctx context.Context, clickID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaign_events WHERE event_type = 'click' AND click_id = $1)`,
		clickID).Scan(&exists)
	return exists, err
}

// DailyCost sums event costs per campaign for the UTC day starting at day,
// in a single grouped query across the whole candidate set.
func (r *EventRepository) DailyCost(ctx context.Context, campaignIDs []int64, day time.Time) (map[int64]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT campaign_id, COALESCE(SUM(cost), 0)
		 FROM campaign_events
		 WHERE campaign_id = ANY($1) AND created_at >= $2 AND created_at < $3
		 GROUP BY campaign_id`,
		campaignIDs, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	costs := make(map[int64]int64, len(campaignIDs))
	for rows.Next() {
		var id, cost int64
		if err = rows.Scan(&id, &cost); err != nil {
			return nil, err
		}
		costs[id] = cost
	}
	return costs, rows.Err()
}

var _ port.EventStore = (*EventRepository)(nil)
