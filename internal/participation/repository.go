package participation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles cycle participation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the participation record for a user in an organization, or
// nil if none exists yet.
func (r *Repository) Get(ctx context.Context, userID, orgID uuid.UUID) (*models.CycleParticipation, error) {
	const q = `SELECT user_id, organization_id, consecutive_count, last_participation_cycle, updated_at
		FROM cycle_participation WHERE user_id = $1 AND organization_id = $2`
	var p models.CycleParticipation
	err := r.pool.QueryRow(ctx, q, userID, orgID).Scan(&p.UserID, &p.OrganizationID, &p.ConsecutiveCount, &p.LastParticipationCycle, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert writes the counter and last cycle for a user.
func (r *Repository) Upsert(ctx context.Context, userID, orgID uuid.UUID, consecutiveCount, lastCycle int) error {
	const q = `INSERT INTO cycle_participation (user_id, organization_id, consecutive_count, last_participation_cycle)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, organization_id)
		DO UPDATE SET consecutive_count = EXCLUDED.consecutive_count,
			last_participation_cycle = EXCLUDED.last_participation_cycle,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, userID, orgID, consecutiveCount, lastCycle)
	return err
}

// ResetStale zeroes the counter of every member whose last participation
// predates the given cycle.
func (r *Repository) ResetStale(ctx context.Context, orgID uuid.UUID, cycle int) error {
	const q = `UPDATE cycle_participation
		SET consecutive_count = 0, updated_at = NOW()
		WHERE organization_id = $1 AND last_participation_cycle < $2 AND consecutive_count > 0`
	_, err := r.pool.Exec(ctx, q, orgID, cycle)
	return err
}
