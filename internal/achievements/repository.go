package achievements

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles user achievement persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an achievements repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UnlockIfNotAlready inserts the achievement for the user if absent.
// Returns true when this call performed the unlock, false when the user
// already held it.
func (r *Repository) UnlockIfNotAlready(ctx context.Context, userID uuid.UUID, achievementID string) (bool, error) {
	const q = `INSERT INTO user_achievements (id, user_id, achievement_id)
		VALUES (gen_random_uuid(), $1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
		RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, userID, achievementID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns the user's unlocked achievements, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	const q = `SELECT id, user_id, achievement_id, unlocked_at
		FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserAchievement
	for rows.Next() {
		var a models.UserAchievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.UnlockedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
