package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for pairing automation.
const (
	EmailTypeNewPairing      = "new_pairing"
	EmailTypePeriodClosing   = "period_closing"
	EmailTypeMeetingReminder = "meeting_reminder"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records automation emails sent by the worker.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	PairingID      *uuid.UUID `json:"pairing_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
