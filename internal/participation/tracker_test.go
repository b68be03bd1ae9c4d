package participation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewbuddy/backend/internal/models"
)

type key struct {
	userID uuid.UUID
	orgID  uuid.UUID
}

type memParticipation struct {
	rows map[key]*models.CycleParticipation
}

func newMemParticipation() *memParticipation {
	return &memParticipation{rows: make(map[key]*models.CycleParticipation)}
}

func (m *memParticipation) Get(ctx context.Context, userID, orgID uuid.UUID) (*models.CycleParticipation, error) {
	return m.rows[key{userID, orgID}], nil
}

func (m *memParticipation) Upsert(ctx context.Context, userID, orgID uuid.UUID, consecutiveCount, lastCycle int) error {
	m.rows[key{userID, orgID}] = &models.CycleParticipation{
		UserID:                 userID,
		OrganizationID:         orgID,
		ConsecutiveCount:       consecutiveCount,
		LastParticipationCycle: lastCycle,
	}
	return nil
}

func (m *memParticipation) ResetStale(ctx context.Context, orgID uuid.UUID, cycle int) error {
	for _, row := range m.rows {
		if row.OrganizationID == orgID && row.LastParticipationCycle < cycle && row.ConsecutiveCount > 0 {
			row.ConsecutiveCount = 0
		}
	}
	return nil
}

func TestIncrementOrResetFirstParticipation(t *testing.T) {
	tracker := NewTracker(newMemParticipation())

	count, err := tracker.IncrementOrReset(context.Background(), uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIncrementOrResetConsecutiveCycles(t *testing.T) {
	tracker := NewTracker(newMemParticipation())
	userID, orgID := uuid.New(), uuid.New()

	for cycle := 1; cycle <= 5; cycle++ {
		count, err := tracker.IncrementOrReset(context.Background(), userID, orgID, cycle)
		require.NoError(t, err)
		assert.Equal(t, cycle, count)
	}
}

func TestIncrementOrResetGapRestartsAtOne(t *testing.T) {
	tracker := NewTracker(newMemParticipation())
	userID, orgID := uuid.New(), uuid.New()

	for cycle := 1; cycle <= 3; cycle++ {
		_, err := tracker.IncrementOrReset(context.Background(), userID, orgID, cycle)
		require.NoError(t, err)
	}

	count, err := tracker.IncrementOrReset(context.Background(), userID, orgID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "a gap restarts the streak at 1, not 0: the user did participate now")
}

func TestIncrementOrResetSameCycleIsStable(t *testing.T) {
	tracker := NewTracker(newMemParticipation())
	userID, orgID := uuid.New(), uuid.New()

	_, err := tracker.IncrementOrReset(context.Background(), userID, orgID, 1)
	require.NoError(t, err)
	first, err := tracker.IncrementOrReset(context.Background(), userID, orgID, 2)
	require.NoError(t, err)

	again, err := tracker.IncrementOrReset(context.Background(), userID, orgID, 2)
	require.NoError(t, err)
	assert.Equal(t, first, again, "recording the same cycle twice must not inflate the counter")
}

func TestResetNonParticipants(t *testing.T) {
	store := newMemParticipation()
	tracker := NewTracker(store)
	orgID := uuid.New()
	active, stale := uuid.New(), uuid.New()

	_, err := tracker.IncrementOrReset(context.Background(), stale, orgID, 1)
	require.NoError(t, err)
	for cycle := 1; cycle <= 2; cycle++ {
		_, err := tracker.IncrementOrReset(context.Background(), active, orgID, cycle)
		require.NoError(t, err)
	}

	require.NoError(t, tracker.ResetNonParticipants(context.Background(), orgID, 2))

	count, err := tracker.ConsecutiveCount(context.Background(), stale, orgID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "sitting out the closed cycle zeroes the streak")

	count, err = tracker.ConsecutiveCount(context.Background(), active, orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "members paired in the closed cycle keep their streak")
}

func TestConsecutiveCountUnknownUser(t *testing.T) {
	tracker := NewTracker(newMemParticipation())

	count, err := tracker.ConsecutiveCount(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
