package emails

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brewbuddy/backend/internal/models"
)

// Repository handles email log persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LogSent records a successfully delivered email.
func (r *Repository) LogSent(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs (id, organization_id, pairing_id, email_type, recipient_email, subject, status, sent_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, 'sent', NOW())
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.OrganizationID, log.PairingID, log.EmailType, log.RecipientEmail, log.Subject).
		Scan(&log.ID, &log.CreatedAt)
}

// LogFailed records a delivery failure with its error message.
func (r *Repository) LogFailed(ctx context.Context, log *models.EmailLog, errMsg string) error {
	const q = `INSERT INTO email_logs (id, organization_id, pairing_id, email_type, recipient_email, subject, status, error_message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, 'failed', $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, log.OrganizationID, log.PairingID, log.EmailType, log.RecipientEmail, log.Subject, errMsg).
		Scan(&log.ID, &log.CreatedAt)
}

// ListByOrganization returns an organization's email logs, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, organization_id, pairing_id, email_type, recipient_email, COALESCE(subject,''), status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs WHERE organization_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.PairingID, &l.EmailType, &l.RecipientEmail, &l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
