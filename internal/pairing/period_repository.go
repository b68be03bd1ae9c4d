package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// PeriodRepository handles pairing period and pairing persistence.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a period repository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

// ActivePeriod returns the organization's active period, or nil if none.
func (r *PeriodRepository) ActivePeriod(ctx context.Context, orgID uuid.UUID) (*models.PairingPeriod, error) {
	const q = `SELECT id, organization_id, start_date, end_date, status, created_at
		FROM pairing_periods WHERE organization_id = $1 AND status = 'active'`
	var p models.PairingPeriod
	err := r.pool.QueryRow(ctx, q, orgID).Scan(&p.ID, &p.OrganizationID, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPeriod returns a period by ID.
func (r *PeriodRepository) GetPeriod(ctx context.Context, id uuid.UUID) (*models.PairingPeriod, error) {
	const q = `SELECT id, organization_id, start_date, end_date, status, created_at
		FROM pairing_periods WHERE id = $1`
	var p models.PairingPeriod
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.OrganizationID, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePeriod inserts a new active period. The partial unique index on
// (organization_id) WHERE status = 'active' rejects a second active period.
func (r *PeriodRepository) CreatePeriod(ctx context.Context, p *models.PairingPeriod) error {
	const q = `INSERT INTO pairing_periods (id, organization_id, start_date, end_date, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, p.OrganizationID, p.StartDate, p.EndDate, p.Status).Scan(&p.ID, &p.CreatedAt)
}

// ClosePeriod transitions a period to closed and stamps its end date.
func (r *PeriodRepository) ClosePeriod(ctx context.Context, periodID uuid.UUID, endedAt time.Time) error {
	const q = `UPDATE pairing_periods SET status = 'closed', end_date = $1 WHERE id = $2 AND status = 'active'`
	_, err := r.pool.Exec(ctx, q, endedAt, periodID)
	return err
}

// CycleNumber derives the organization's current cycle number purely from
// stored period rows: closed periods count, plus one if a period is active.
func (r *PeriodRepository) CycleNumber(ctx context.Context, orgID uuid.UUID) (int, error) {
	const q = `SELECT
		COUNT(*) FILTER (WHERE status = 'closed')
		+ CASE WHEN COUNT(*) FILTER (WHERE status = 'active') > 0 THEN 1 ELSE 0 END
		FROM pairing_periods WHERE organization_id = $1`
	var n int
	if err := r.pool.QueryRow(ctx, q, orgID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecentHistory returns pairings from the organization's most recent
// lookback periods before the current one, tagged with how many periods ago
// they occurred (1 = the period immediately before current).
func (r *PeriodRepository) RecentHistory(ctx context.Context, orgID, currentPeriodID uuid.UUID, lookback int) ([]HistoricalPairing, error) {
	const q = `SELECT p.user_a_id, p.user_b_id, rp.periods_ago
		FROM pairings p
		INNER JOIN (
			SELECT id, ROW_NUMBER() OVER (ORDER BY start_date DESC) AS periods_ago
			FROM pairing_periods
			WHERE organization_id = $1 AND id <> $2
			ORDER BY start_date DESC
			LIMIT $3
		) rp ON rp.id = p.period_id`
	rows, err := r.pool.Query(ctx, q, orgID, currentPeriodID, lookback)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []HistoricalPairing
	for rows.Next() {
		var h HistoricalPairing
		if err := rows.Scan(&h.UserAID, &h.UserBID, &h.PeriodsAgo); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// CreatePairings inserts a batch of pairings in a single transaction.
// Either every pairing of the run commits or none do.
func (r *PeriodRepository) CreatePairings(ctx context.Context, pairings []*models.Pairing) error {
	if len(pairings) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO pairings (id, period_id, organization_id, user_a_id, user_b_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	for _, p := range pairings {
		if err := tx.QueryRow(ctx, q, p.PeriodID, p.OrganizationID, p.UserAID, p.UserBID, p.Status).
			Scan(&p.ID, &p.CreatedAt); err != nil {
			return fmt.Errorf("insert pairing: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ListPeriods returns an organization's periods, newest first.
func (r *PeriodRepository) ListPeriods(ctx context.Context, orgID uuid.UUID) ([]models.PairingPeriod, error) {
	const q = `SELECT id, organization_id, start_date, end_date, status, created_at
		FROM pairing_periods WHERE organization_id = $1 ORDER BY start_date DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PairingPeriod
	for rows.Next() {
		var p models.PairingPeriod
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListPairings returns all pairings of a period.
func (r *PeriodRepository) ListPairings(ctx context.Context, periodID uuid.UUID) ([]models.Pairing, error) {
	const q = `SELECT id, period_id, organization_id, user_a_id, user_b_id, status, created_at
		FROM pairings WHERE period_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Pairing
	for rows.Next() {
		var p models.Pairing
		if err := rows.Scan(&p.ID, &p.PeriodID, &p.OrganizationID, &p.UserAID, &p.UserBID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
