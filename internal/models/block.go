package models

import (
	"time"

	"github.com/google/uuid"
)

// UserBlock is a directed block between two users of the same organization.
// The pairing engine treats blocks as symmetric: either direction excludes
// the pair.
type UserBlock struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	BlockerID      uuid.UUID `json:"blocker_id"`
	BlockedID      uuid.UUID `json:"blocked_id"`
	CreatedAt      time.Time `json:"created_at"`
}
