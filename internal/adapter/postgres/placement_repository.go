package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// PlacementRepository implements port.PlacementStore using pgxpool.
type PlacementRepository struct {
	pool *pgxpool.Pool
}

// NewPlacementRepository returns a new repository instance.
func NewPlacementRepository(pool *pgxpool.Pool) *PlacementRepository {
	return &PlacementRepository{pool: pool}
}

// GetBySlug returns a placement by slug, nil when absent.
func (r *PlacementRepository) GetBySlug(ctx context.Context, slug string) (*domain.Placement, error) {
	var p domain.Placement
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, name, inventory, max_slots, active, created_at, updated_at
		 FROM placements WHERE slug = $1`, slug).
		Scan(&p.ID, &p.Slug, &p.Name, &p.Inventory, &p.MaxSlots, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var _ port.PlacementStore = (*PlacementRepository)(nil)
