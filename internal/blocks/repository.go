package blocks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles user block persistence. Blocks are stored directed;
// pairing exclusion treats them as symmetric.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a blocks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a block. Duplicate blocks are a no-op.
func (r *Repository) Create(ctx context.Context, b *models.UserBlock) error {
	const q = `INSERT INTO user_blocks (id, organization_id, blocker_id, blocked_id)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (organization_id, blocker_id, blocked_id) DO NOTHING
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, b.OrganizationID, b.BlockerID, b.BlockedID).Scan(&b.ID, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict path: the block already exists.
		return nil
	}
	return err
}

// Delete removes a block by blocker/blocked pair within an organization.
func (r *Repository) Delete(ctx context.Context, orgID, blockerID, blockedID uuid.UUID) error {
	const q = `DELETE FROM user_blocks WHERE organization_id = $1 AND blocker_id = $2 AND blocked_id = $3`
	_, err := r.pool.Exec(ctx, q, orgID, blockerID, blockedID)
	return err
}

// FindForOrganization returns all blocks of an organization.
func (r *Repository) FindForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.UserBlock, error) {
	const q = `SELECT id, organization_id, blocker_id, blocked_id, created_at
		FROM user_blocks WHERE organization_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserBlock
	for rows.Next() {
		var b models.UserBlock
		if err := rows.Scan(&b.ID, &b.OrganizationID, &b.BlockerID, &b.BlockedID, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// FindByBlocker returns blocks created by one user within an organization.
func (r *Repository) FindByBlocker(ctx context.Context, orgID, blockerID uuid.UUID) ([]models.UserBlock, error) {
	const q = `SELECT id, organization_id, blocker_id, blocked_id, created_at
		FROM user_blocks WHERE organization_id = $1 AND blocker_id = $2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, orgID, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserBlock
	for rows.Next() {
		var b models.UserBlock
		if err := rows.Scan(&b.ID, &b.OrganizationID, &b.BlockerID, &b.BlockedID, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
