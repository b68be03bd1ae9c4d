package pairing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brewbuddy/backend/internal/models"
)

// memStore is an in-memory stand-in for the settings, period, user and
// block repositories.
type memStore struct {
	settings models.AlgorithmSettings
	periods  []*models.PairingPeriod
	pairings []*models.Pairing
	users    []models.User
	blocks   []models.UserBlock
	history  []HistoricalPairing

	failCreatePairings bool
}

func newMemStore(seed int64, periodDays int) *memStore {
	return &memStore{
		settings: models.AlgorithmSettings{PeriodLengthDays: periodDays, RandomSeed: seed},
	}
}

func (m *memStore) addUsers(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		u := models.User{ID: uuid.New(), IsActive: true, CreatedAt: time.Now()}
		m.users = append(m.users, u)
		ids[i] = u.ID
	}
	return ids
}

func (m *memStore) GetOrCreate(ctx context.Context, orgID uuid.UUID) (*models.AlgorithmSettings, error) {
	s := m.settings
	s.OrganizationID = orgID
	return &s, nil
}

func (m *memStore) ActivePeriod(ctx context.Context, orgID uuid.UUID) (*models.PairingPeriod, error) {
	for _, p := range m.periods {
		if p.OrganizationID == orgID && p.Status == models.PeriodStatusActive {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreatePeriod(ctx context.Context, p *models.PairingPeriod) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.periods = append(m.periods, p)
	return nil
}

func (m *memStore) ClosePeriod(ctx context.Context, periodID uuid.UUID, endedAt time.Time) error {
	for _, p := range m.periods {
		if p.ID == periodID {
			p.Status = models.PeriodStatusClosed
			p.EndDate = &endedAt
		}
	}
	return nil
}

func (m *memStore) CycleNumber(ctx context.Context, orgID uuid.UUID) (int, error) {
	n := 0
	active := false
	for _, p := range m.periods {
		if p.OrganizationID != orgID {
			continue
		}
		if p.Status == models.PeriodStatusClosed {
			n++
		} else {
			active = true
		}
	}
	if active {
		n++
	}
	return n, nil
}

func (m *memStore) RecentHistory(ctx context.Context, orgID, currentPeriodID uuid.UUID, lookback int) ([]HistoricalPairing, error) {
	return m.history, nil
}

func (m *memStore) CreatePairings(ctx context.Context, pairings []*models.Pairing) error {
	if m.failCreatePairings {
		return errors.New("connection reset by peer")
	}
	for _, p := range pairings {
		p.ID = uuid.New()
		p.CreatedAt = time.Now()
		m.pairings = append(m.pairings, p)
	}
	return nil
}

func (m *memStore) FindEligible(ctx context.Context, orgID, periodID uuid.UUID) ([]models.User, error) {
	now := time.Now()
	var out []models.User
	for _, u := range m.users {
		if !u.IsActive || u.Suspended(now) {
			continue
		}
		paired := false
		for _, p := range m.pairings {
			if p.PeriodID == periodID && p.Contains(u.ID) {
				paired = true
				break
			}
		}
		if !paired {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) FindForOrganization(ctx context.Context, orgID uuid.UUID) ([]models.UserBlock, error) {
	return m.blocks, nil
}

// fakeTracker records participation updates and returns canned counts.
type fakeTracker struct {
	counts    map[uuid.UUID]int
	nextCount int // when > 0, every increment returns this value
	resets    []int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{counts: make(map[uuid.UUID]int)}
}

func (f *fakeTracker) IncrementOrReset(ctx context.Context, userID, orgID uuid.UUID, currentCycle int) (int, error) {
	if f.nextCount > 0 {
		f.counts[userID] = f.nextCount
		return f.nextCount, nil
	}
	f.counts[userID]++
	return f.counts[userID], nil
}

func (f *fakeTracker) ResetNonParticipants(ctx context.Context, orgID uuid.UUID, closedCycle int) error {
	f.resets = append(f.resets, closedCycle)
	return nil
}

// fakeHooks records hook invocations.
type fakeHooks struct {
	created []*models.Pairing
	streaks []uuid.UUID
}

func (f *fakeHooks) PairingsCreated(ctx context.Context, period *models.PairingPeriod, pairings []*models.Pairing) {
	f.created = append(f.created, pairings...)
}

func (f *fakeHooks) StreakReached(ctx context.Context, orgID, userID uuid.UUID, consecutiveCount int) {
	f.streaks = append(f.streaks, userID)
}

func newTestEngine(store *memStore) (*Engine, *fakeTracker, *fakeHooks) {
	tracker := newFakeTracker()
	hooks := &fakeHooks{}
	engine := NewEngine(store, store, store, store, tracker, hooks, zap.NewNop())
	return engine, tracker, hooks
}

func TestExecutePairingEndToEnd(t *testing.T) {
	store := newMemStore(12345, 21)
	store.addUsers(6)
	engine, tracker, hooks := newTestEngine(store)
	orgID := uuid.New()

	result, err := engine.ExecutePairing(context.Background(), orgID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.PairingsCreated)
	assert.Equal(t, 0, result.UnpairedUsers)

	require.Len(t, store.periods, 1)
	period := store.periods[0]
	assert.Equal(t, models.PeriodStatusActive, period.Status)
	assert.Equal(t, orgID, period.OrganizationID)
	require.NotNil(t, period.EndDate)
	assert.Equal(t, 21*24*time.Hour, period.EndDate.Sub(period.StartDate))

	require.Len(t, store.pairings, 3)
	seen := make(map[uuid.UUID]bool)
	for _, p := range store.pairings {
		assert.Equal(t, models.PairingStatusPlanned, p.Status)
		assert.Equal(t, period.ID, p.PeriodID)
		assert.False(t, seen[p.UserAID], "user in more than one pairing")
		assert.False(t, seen[p.UserBID], "user in more than one pairing")
		seen[p.UserAID], seen[p.UserBID] = true, true
	}
	assert.Len(t, seen, 6, "every user is covered")

	assert.Len(t, tracker.counts, 6, "every paired user gets a participation update")
	assert.Len(t, hooks.created, 3)
}

func TestExecutePairingInsufficientUsers(t *testing.T) {
	store := newMemStore(1, 21)
	store.addUsers(1)
	engine, tracker, _ := newTestEngine(store)

	result, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, result.Success, "too few users is a valid steady state, not an error")
	assert.Equal(t, 0, result.PairingsCreated)
	assert.Equal(t, 1, result.UnpairedUsers)
	assert.Empty(t, store.pairings)
	assert.Empty(t, tracker.counts)
}

func TestExecutePairingIdempotentRerun(t *testing.T) {
	store := newMemStore(7, 21)
	store.addUsers(4)
	engine, _, _ := newTestEngine(store)
	orgID := uuid.New()

	first, err := engine.ExecutePairing(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.PairingsCreated)

	second, err := engine.ExecutePairing(context.Background(), orgID)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.PairingsCreated, "already-paired users must not be paired again")
	assert.Len(t, store.pairings, 2)
	assert.Len(t, store.periods, 1, "the active period is reused")
}

func TestExecutePairingOddCount(t *testing.T) {
	store := newMemStore(42, 21)
	store.addUsers(5)
	engine, _, _ := newTestEngine(store)

	result, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.PairingsCreated)
	assert.Equal(t, 1, result.UnpairedUsers, "odd leftover is reported, not an error")
}

func TestExecutePairingRespectsBlocks(t *testing.T) {
	store := newMemStore(3, 21)
	ids := store.addUsers(4)
	store.blocks = []models.UserBlock{{BlockerID: ids[0], BlockedID: ids[1]}}
	engine, _, _ := newTestEngine(store)

	result, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, result.Success)

	for _, p := range store.pairings {
		together := p.Contains(ids[0]) && p.Contains(ids[1])
		assert.False(t, together, "blocked users must never share a pairing")
	}
	assert.Equal(t, 4, result.PairingsCreated*2+result.UnpairedUsers)
	assert.GreaterOrEqual(t, result.PairingsCreated, 1)
}

func TestExecutePairingRecencySmallPopulationOverride(t *testing.T) {
	store := newMemStore(11, 21)
	ids := store.addUsers(2)
	store.history = []HistoricalPairing{{UserAID: ids[0], UserBID: ids[1], PeriodsAgo: 1}}
	engine, _, _ := newTestEngine(store)

	result, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PairingsCreated, "with only two eligible users the repeat pairing is forced")
}

func TestExecutePairingRecencyExclusionWithAlternatives(t *testing.T) {
	store := newMemStore(13, 21)
	ids := store.addUsers(4)
	store.history = []HistoricalPairing{{UserAID: ids[0], UserBID: ids[1], PeriodsAgo: 1}}
	engine, _, _ := newTestEngine(store)

	_, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	for _, p := range store.pairings {
		together := p.Contains(ids[0]) && p.Contains(ids[1])
		assert.False(t, together, "recently paired users must not repeat while alternatives exist")
	}
}

func TestExecutePairingDeterministicAcrossRuns(t *testing.T) {
	userIDs := make([]uuid.UUID, 8)
	for i := range userIDs {
		userIDs[i] = uuid.New()
	}
	run := func() [][2]uuid.UUID {
		store := newMemStore(12345, 21)
		for _, id := range userIDs {
			store.users = append(store.users, models.User{ID: id, IsActive: true})
		}
		engine, _, _ := newTestEngine(store)
		_, err := engine.ExecutePairing(context.Background(), uuid.New())
		require.NoError(t, err)
		pairs := make([][2]uuid.UUID, 0, len(store.pairings))
		for _, p := range store.pairings {
			pairs = append(pairs, [2]uuid.UUID{p.UserAID, p.UserBID})
		}
		return pairs
	}

	assert.Equal(t, run(), run(), "same seed, users and exclusions must reproduce the pairing set")
}

func TestExecutePairingPersistenceFailureAbortsRun(t *testing.T) {
	store := newMemStore(9, 21)
	store.addUsers(4)
	store.failCreatePairings = true
	engine, tracker, hooks := newTestEngine(store)

	result, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "persist pairings")
	assert.Empty(t, store.pairings, "nothing is partially committed")
	assert.Empty(t, tracker.counts, "participation is untouched on failure")
	assert.Empty(t, hooks.created, "hooks do not fire on failure")
}

func TestExecutePairingClosesExpiredPeriod(t *testing.T) {
	store := newMemStore(21, 14)
	store.addUsers(4)
	engine, tracker, _ := newTestEngine(store)
	orgID := uuid.New()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return start }
	_, err := engine.ExecutePairing(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, store.periods, 1)
	firstPeriod := store.periods[0]

	// Next run after the period has expired: close it, open a fresh one,
	// and reset the streaks of members who sat the closed cycle out.
	engine.now = func() time.Time { return start.Add(15 * 24 * time.Hour) }
	result, err := engine.ExecutePairing(context.Background(), orgID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.PairingsCreated)

	assert.Equal(t, models.PeriodStatusClosed, firstPeriod.Status)
	require.Len(t, store.periods, 2)
	assert.Equal(t, models.PeriodStatusActive, store.periods[1].Status)
	assert.Equal(t, []int{1}, tracker.resets, "reset runs with the closing cycle number")
}

func TestExecutePairingStreakThresholdFiresHook(t *testing.T) {
	store := newMemStore(17, 21)
	store.addUsers(2)
	engine, tracker, hooks := newTestEngine(store)
	tracker.nextCount = models.RegularParticipantThreshold

	_, err := engine.ExecutePairing(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, hooks.streaks, 2, "both paired users crossed the threshold")
}
