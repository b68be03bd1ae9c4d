package pairing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brewbuddy/backend/internal/models"
)

// SettingsSource provides per-organization algorithm settings.
type SettingsSource interface {
	GetOrCreate(ctx context.Context, orgID uuid.UUID) (*models.AlgorithmSettings, error)
}

// PeriodStore abstracts period and pairing persistence. *PeriodRepository
// is the production implementation.
type PeriodStore interface {
	ActivePeriod(ctx context.Context, orgID uuid.UUID) (*models.PairingPeriod, error)
	CreatePeriod(ctx context.Context, p *models.PairingPeriod) error
	ClosePeriod(ctx context.Context, periodID uuid.UUID, endedAt time.Time) error
	CycleNumber(ctx context.Context, orgID uuid.UUID) (int, error)
	RecentHistory(ctx context.Context, orgID, currentPeriodID uuid.UUID, lookback int) ([]HistoricalPairing, error)
	CreatePairings(ctx context.Context, pairings []*models.Pairing) error
}

// UserDirectory resolves the eligible user set for a period.
type UserDirectory interface {
	FindEligible(ctx context.Context, orgID, periodID uuid.UUID) ([]models.User, error)
}

// BlockSource provides the organization's block graph.
type BlockSource interface {
	FindForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.UserBlock, error)
}

// ParticipationTracker maintains consecutive-cycle counters.
type ParticipationTracker interface {
	IncrementOrReset(ctx context.Context, userID, orgID uuid.UUID, currentCycle int) (int, error)
	ResetNonParticipants(ctx context.Context, orgID uuid.UUID, closedCycle int) error
}

// Hooks receives fire-and-forget notifications after a run. Implementations
// must never fail the run: they log their own errors.
type Hooks interface {
	PairingsCreated(ctx context.Context, period *models.PairingPeriod, pairings []*models.Pairing)
	StreakReached(ctx context.Context, orgID, userID uuid.UUID, consecutiveCount int)
}

// Result reports the outcome of one pairing run.
type Result struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	PairingsCreated int    `json:"pairings_created"`
	UnpairedUsers   int    `json:"unpaired_users"`
}

// Engine runs the periodic pairing algorithm for an organization:
// settings → period lifecycle → eligibility → exclusions → seeded shuffle →
// greedy matching → atomic persistence → participation bookkeeping → hooks.
type Engine struct {
	settings      SettingsSource
	periods       PeriodStore
	users         UserDirectory
	blocks        BlockSource
	participation ParticipationTracker
	hooks         Hooks
	logger        *zap.Logger

	now func() time.Time

	mu       sync.Mutex
	orgLocks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a pairing engine.
func NewEngine(settings SettingsSource, periods PeriodStore, users UserDirectory, blocks BlockSource,
	participation ParticipationTracker, hooks Hooks, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		settings:      settings,
		periods:       periods,
		users:         users,
		blocks:        blocks,
		participation: participation,
		hooks:         hooks,
		logger:        logger,
		now:           time.Now,
		orgLocks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the per-organization mutex, creating it on first use.
// Runs for the same organization are serialized; concurrent runs would race
// on period creation and double-count eligible users.
func (e *Engine) lockFor(orgID uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.orgLocks[orgID]
	if !ok {
		l = &sync.Mutex{}
		e.orgLocks[orgID] = l
	}
	return l
}

// ExecutePairing runs one pairing cycle for the organization. Degenerate
// populations (fewer than two eligible users, odd leftovers) are reported
// as successful results, not errors; only persistence and precondition
// failures produce Success=false, and those commit nothing.
func (e *Engine) ExecutePairing(ctx context.Context, orgID uuid.UUID) (*Result, error) {
	lock := e.lockFor(orgID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	cfg, err := e.settings.GetOrCreate(ctx, orgID)
	if err != nil {
		return e.fail(orgID, "load settings", err)
	}

	period, err := e.periods.ActivePeriod(ctx, orgID)
	if err != nil {
		return e.fail(orgID, "resolve active period", err)
	}

	// An expired active period transitions to closed before a new one
	// opens. Members who sat out the closing cycle lose their streak.
	if period != nil && period.EndDate != nil && !period.EndDate.After(now) {
		closingCycle, err := e.periods.CycleNumber(ctx, orgID)
		if err != nil {
			return e.fail(orgID, "derive cycle number", err)
		}
		if err := e.periods.ClosePeriod(ctx, period.ID, now); err != nil {
			return e.fail(orgID, "close expired period", err)
		}
		if err := e.participation.ResetNonParticipants(ctx, orgID, closingCycle); err != nil {
			e.logger.Warn("reset non-participants", zap.String("org_id", orgID.String()), zap.Error(err))
		}
		e.logger.Info("closed expired period",
			zap.String("org_id", orgID.String()),
			zap.String("period_id", period.ID.String()),
			zap.Int("cycle", closingCycle))
		period = nil
	}

	if period == nil {
		end := now.Add(time.Duration(cfg.PeriodLengthDays) * 24 * time.Hour)
		period = &models.PairingPeriod{
			OrganizationID: orgID,
			StartDate:      now,
			EndDate:        &end,
			Status:         models.PeriodStatusActive,
		}
		if err := e.periods.CreatePeriod(ctx, period); err != nil {
			return e.fail(orgID, "create period", err)
		}
	}

	eligible, err := e.users.FindEligible(ctx, orgID, period.ID)
	if err != nil {
		return e.fail(orgID, "resolve eligible users", err)
	}
	if len(eligible) < 2 {
		// Normal steady state for tiny or freshly started organizations,
		// and for re-runs where everyone is already paired.
		return &Result{
			Success:       true,
			Message:       "insufficient eligible users, no pairings created",
			UnpairedUsers: len(eligible),
		}, nil
	}

	blockList, err := e.blocks.FindForOrganization(ctx, orgID)
	if err != nil {
		return e.fail(orgID, "load block graph", err)
	}
	history, err := e.periods.RecentHistory(ctx, orgID, period.ID, RecencyLookback)
	if err != nil {
		return e.fail(orgID, "load pairing history", err)
	}
	index := NewExclusionIndex(blockList, history, len(eligible))

	ids := make([]uuid.UUID, len(eligible))
	for i, u := range eligible {
		ids[i] = u.ID
	}
	outcome := Match(ids, cfg.RandomSeed, index.CanPair)

	pairings := make([]*models.Pairing, 0, len(outcome.Pairs))
	for _, pair := range outcome.Pairs {
		pairings = append(pairings, &models.Pairing{
			PeriodID:       period.ID,
			OrganizationID: orgID,
			UserAID:        pair[0],
			UserBID:        pair[1],
			Status:         models.PairingStatusPlanned,
		})
	}
	if err := e.periods.CreatePairings(ctx, pairings); err != nil {
		return e.fail(orgID, "persist pairings", err)
	}

	cycle, err := e.periods.CycleNumber(ctx, orgID)
	if err != nil {
		e.logger.Warn("derive cycle number after persist", zap.String("org_id", orgID.String()), zap.Error(err))
	} else {
		e.trackParticipation(ctx, orgID, cycle, outcome.Pairs)
	}

	if len(pairings) > 0 {
		e.hooks.PairingsCreated(ctx, period, pairings)
	}

	e.logger.Info("pairing run complete",
		zap.String("org_id", orgID.String()),
		zap.String("period_id", period.ID.String()),
		zap.Int("pairings_created", len(pairings)),
		zap.Int("unpaired_users", len(outcome.Unpaired)))

	return &Result{
		Success:         true,
		Message:         "pairing run complete",
		PairingsCreated: len(pairings),
		UnpairedUsers:   len(outcome.Unpaired),
	}, nil
}

// trackParticipation updates the consecutive-cycle counter of every newly
// paired user and fires the streak hook at the achievement threshold.
// Counter updates are bookkeeping derived from committed pairings; failures
// are logged, they do not fail the run.
func (e *Engine) trackParticipation(ctx context.Context, orgID uuid.UUID, cycle int, pairs [][2]uuid.UUID) {
	for _, pair := range pairs {
		for _, userID := range pair {
			count, err := e.participation.IncrementOrReset(ctx, userID, orgID, cycle)
			if err != nil {
				e.logger.Warn("update cycle participation",
					zap.String("user_id", userID.String()), zap.Error(err))
				continue
			}
			if count >= models.RegularParticipantThreshold {
				e.hooks.StreakReached(ctx, orgID, userID, count)
			}
		}
	}
}

func (e *Engine) fail(orgID uuid.UUID, stage string, err error) (*Result, error) {
	e.logger.Error("pairing run failed",
		zap.String("org_id", orgID.String()),
		zap.String("stage", stage),
		zap.Error(err))
	wrapped := fmt.Errorf("%s: %w", stage, err)
	return &Result{Success: false, Message: wrapped.Error()}, wrapped
}
