package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// DecisionRepository implements port.DecisionStore using pgxpool. Candidate,
// winner, and rejection lists are stored as JSONB blobs: the records are
// write-mostly and read only for debugging.
type DecisionRepository struct {
	pool *pgxpool.Pool
}

// NewDecisionRepository returns a new repository instance.
func NewDecisionRepository(pool *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{pool: pool}
}

// Insert stores one allocation decision.
func (r *DecisionRepository) Insert(ctx context.Context, d domain.AllocationDecision) error {
	candidates, err := json.Marshal(d.Candidates)
	if err != nil {
		return err
	}
	winners, err := json.Marshal(d.Winners)
	if err != nil {
		return err
	}
	rejections, err := json.Marshal(d.Rejections)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO allocation_decisions
		 (id, placement_slug, page, device, session_id, candidates, winners, rejections,
		  candidate_count, winner_count, fallback_used, elapsed_us, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.PlacementSlug, d.Context.Page, d.Context.Device, d.Context.SessionID,
		candidates, winners, rejections,
		d.CandidateCount, d.WinnerCount, d.FallbackUsed,
		d.Elapsed.Microseconds(), d.CreatedAt)
	return err
}

var _ port.DecisionStore = (*DecisionRepository)(nil)
