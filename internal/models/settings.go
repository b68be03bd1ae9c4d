package models

import (
	"time"

	"github.com/google/uuid"
)

// Pairing algorithm settings bounds and defaults.
const (
	DefaultPeriodLengthDays = 21
	MinPeriodLengthDays     = 7
	MaxPeriodLengthDays     = 365
	MinRandomSeed           = 1
	MaxRandomSeed           = 1<<31 - 1
)

// AlgorithmSettings is the per-organization pairing configuration.
// One row per organization; created with defaults on first access.
type AlgorithmSettings struct {
	OrganizationID   uuid.UUID `json:"organization_id"`
	PeriodLengthDays int       `json:"period_length_days"`
	RandomSeed       int64     `json:"random_seed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
