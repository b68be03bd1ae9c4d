package settings

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/models"
)

var (
	// ErrForbidden is returned when the caller is not an admin of the
	// organization (and not a platform admin).
	ErrForbidden = errors.New("caller is not an organization admin")
	// ErrInvalidPeriodLength is returned for a non-positive period length.
	ErrInvalidPeriodLength = errors.New("period length must be a positive integer")
	// ErrInvalidSeed is returned for a seed outside [1, 2^31-1].
	ErrInvalidSeed = errors.New("random seed must be in [1, 2147483647]")
)

// Bounds warnings. Out-of-bounds period lengths are advisory, not blocking.
const (
	WarningPeriodTooShort = "Warning: Period length is too short (< 7 days)"
	WarningPeriodTooLong  = "Warning: Period length is too long (> 365 days)"
)

// Identity is the caller identity the settings API authorizes against.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// Store abstracts settings persistence.
type Store interface {
	GetOrCreate(ctx context.Context, orgID uuid.UUID, defaultSeed int64) (*models.AlgorithmSettings, error)
	Update(ctx context.Context, orgID uuid.UUID, periodLengthDays int, randomSeed int64) (*models.AlgorithmSettings, error)
}

// OrgRoles abstracts the organization role lookup used for authorization.
type OrgRoles interface {
	IsOrgAdmin(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
}

// Service implements the settings operations.
type Service struct {
	store Store
	orgs  OrgRoles
}

// NewService creates a settings service.
func NewService(store Store, orgs OrgRoles) *Service {
	return &Service{store: store, orgs: orgs}
}

// UpdateParams carries optional new values; nil fields keep the stored value.
type UpdateParams struct {
	PeriodLengthDays *int
	RandomSeed       *int64
}

// UpdateResult is the persisted settings plus an optional non-fatal warning.
type UpdateResult struct {
	Settings *models.AlgorithmSettings `json:"settings"`
	Warning  string                    `json:"warning,omitempty"`
}

// GetOrCreate returns the organization's settings, provisioning defaults
// (21-day period, fresh crypto-random seed) on first access.
func (s *Service) GetOrCreate(ctx context.Context, orgID uuid.UUID) (*models.AlgorithmSettings, error) {
	seed, err := MintSeed()
	if err != nil {
		return nil, fmt.Errorf("mint seed: %w", err)
	}
	return s.store.GetOrCreate(ctx, orgID, seed)
}

// Update validates and persists settings changes. The caller must be a
// platform admin or an admin of the organization. A period length outside
// the soft bounds succeeds with a warning.
func (s *Service) Update(ctx context.Context, orgID uuid.UUID, params UpdateParams, caller Identity) (*UpdateResult, error) {
	if caller.Role != models.RoleAdmin {
		ok, err := s.orgs.IsOrgAdmin(ctx, orgID, caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("role lookup: %w", err)
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	existing, err := s.GetOrCreate(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	periodLength := existing.PeriodLengthDays
	if params.PeriodLengthDays != nil {
		if *params.PeriodLengthDays <= 0 {
			return nil, ErrInvalidPeriodLength
		}
		periodLength = *params.PeriodLengthDays
	}

	seed := existing.RandomSeed
	if params.RandomSeed != nil {
		if *params.RandomSeed < models.MinRandomSeed || *params.RandomSeed > models.MaxRandomSeed {
			return nil, ErrInvalidSeed
		}
		seed = *params.RandomSeed
	}

	updated, err := s.store.Update(ctx, orgID, periodLength, seed)
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	result := &UpdateResult{Settings: updated}
	switch {
	case periodLength < models.MinPeriodLengthDays:
		result.Warning = WarningPeriodTooShort
	case periodLength > models.MaxPeriodLengthDays:
		result.Warning = WarningPeriodTooLong
	}
	return result, nil
}

// MintSeed generates a cryptographically-random seed in [1, 2^31-1].
func MintSeed() (int64, error) {
	n, err := crand.Int(crand.Reader, big.NewInt(models.MaxRandomSeed))
	if err != nil {
		return 0, err
	}
	return n.Int64() + 1, nil
}
