package models

import (
	"time"

	"github.com/google/uuid"
)

// PairingPeriod statuses.
const (
	PeriodStatusActive = "active"
	PeriodStatusClosed = "closed"
)

// PairingPeriod is a time-bounded pairing cycle for an organization.
// At most one active period exists per organization at any time.
type PairingPeriod struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Pairing statuses.
const (
	PairingStatusPlanned   = "planned"
	PairingStatusMatched   = "matched"
	PairingStatusCompleted = "completed"
	PairingStatusCancelled = "cancelled"
)

// Pairing is one matched pair of users within a period. The pair is
// logically unordered: (UserAID, UserBID) and (UserBID, UserAID) are
// the same pairing. No user appears in more than one pairing per period.
type Pairing struct {
	ID             uuid.UUID `json:"id"`
	PeriodID       uuid.UUID `json:"period_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	UserAID        uuid.UUID `json:"user_a_id"`
	UserBID        uuid.UUID `json:"user_b_id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Contains reports whether the pairing includes the given user.
func (p *Pairing) Contains(userID uuid.UUID) bool {
	return p.UserAID == userID || p.UserBID == userID
}
