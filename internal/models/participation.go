package models

import (
	"time"

	"github.com/google/uuid"
)

// CycleParticipation tracks how many uninterrupted pairing cycles a user
// has participated in within an organization. Keyed by (user, organization).
//
// ConsecutiveCount restarts at 1 when the user participates after a gap and
// is reset to 0 when a cycle closes without them being paired.
type CycleParticipation struct {
	UserID                 uuid.UUID `json:"user_id"`
	OrganizationID         uuid.UUID `json:"organization_id"`
	ConsecutiveCount       int       `json:"consecutive_count"`
	LastParticipationCycle int       `json:"last_participation_cycle"`
	UpdatedAt              time.Time `json:"updated_at"`
}
