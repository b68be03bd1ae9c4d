package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles user directory queries for the pairing engine and
// member administration.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindEligible returns organization members that can be newly paired in the
// given period: active, not inside a suspension window, and not already part
// of a pairing for that period.
//
// Ordering is by membership creation then user ID. The order has no pairing
// semantics of its own but must be stable: it is the input to a seeded
// shuffle, and reproducibility of a run depends on it.
func (r *Repository) FindEligible(ctx context.Context, orgID, periodID uuid.UUID) ([]models.User, error) {
	const q = `SELECT u.id, u.email, u.password_hash, u.full_name, u.role, u.is_active, u.suspended_until, u.created_at, u.updated_at
		FROM users u
		INNER JOIN organization_users ou ON ou.user_id = u.id
		WHERE ou.organization_id = $1
		  AND u.is_active = TRUE
		  AND (u.suspended_until IS NULL OR u.suspended_until < NOW())
		  AND NOT EXISTS (
			SELECT 1 FROM pairings p
			WHERE p.period_id = $2 AND (p.user_a_id = u.id OR p.user_b_id = u.id)
		  )
		ORDER BY ou.created_at ASC, u.id ASC`
	rows, err := r.pool.Query(ctx, q, orgID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role,
			&u.IsActive, &u.SuspendedUntil, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Suspend sets a suspension window end for a user. A nil until clears it.
func (r *Repository) Suspend(ctx context.Context, userID uuid.UUID, until *time.Time) error {
	const q = `UPDATE users SET suspended_until = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, until, userID)
	return err
}

// SetActive toggles the active flag for a user.
func (r *Repository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	const q = `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, active, userID)
	return err
}

// EmailsByIDs returns a map of user ID to email for notification fan-out.
func (r *Repository) EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		out[id] = email
	}
	return out, rows.Err()
}
