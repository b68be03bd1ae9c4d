package settings

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles algorithm settings persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOrCreate returns the settings row for an organization, inserting
// defaults first if absent. The insert is upsert-safe: under a concurrent
// first access the conflict target resolves the race and both callers read
// the same row.
func (r *Repository) GetOrCreate(ctx context.Context, orgID uuid.UUID, defaultSeed int64) (*models.AlgorithmSettings, error) {
	const ins = `INSERT INTO algorithm_settings (organization_id, period_length_days, random_seed)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, ins, orgID, models.DefaultPeriodLengthDays, defaultSeed); err != nil {
		return nil, err
	}
	const sel = `SELECT organization_id, period_length_days, random_seed, created_at, updated_at
		FROM algorithm_settings WHERE organization_id = $1`
	var s models.AlgorithmSettings
	err := r.pool.QueryRow(ctx, sel, orgID).Scan(&s.OrganizationID, &s.PeriodLengthDays, &s.RandomSeed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update persists new settings values for an organization.
func (r *Repository) Update(ctx context.Context, orgID uuid.UUID, periodLengthDays int, randomSeed int64) (*models.AlgorithmSettings, error) {
	const q = `UPDATE algorithm_settings
		SET period_length_days = $1, random_seed = $2, updated_at = NOW()
		WHERE organization_id = $3
		RETURNING organization_id, period_length_days, random_seed, created_at, updated_at`
	var s models.AlgorithmSettings
	err := r.pool.QueryRow(ctx, q, periodLengthDays, randomSeed, orgID).Scan(&s.OrganizationID, &s.PeriodLengthDays, &s.RandomSeed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
