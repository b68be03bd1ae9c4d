package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement identifiers known to the platform.
const (
	AchievementRegularParticipant = "regular_participant"
	AchievementFirstPairing       = "first_pairing"
)

// RegularParticipantThreshold is the consecutive-cycle streak at which the
// regular participant achievement unlocks.
const RegularParticipantThreshold = 10

// UserAchievement records an unlocked achievement for a user. Unlocks are
// idempotent: re-unlocking an already-held achievement is a no-op.
type UserAchievement struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
