package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brewbuddy/backend/internal/models"
)

type fakeStore struct {
	settings map[uuid.UUID]*models.AlgorithmSettings
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: make(map[uuid.UUID]*models.AlgorithmSettings)}
}

func (f *fakeStore) GetOrCreate(ctx context.Context, orgID uuid.UUID, defaultSeed int64) (*models.AlgorithmSettings, error) {
	if s, ok := f.settings[orgID]; ok {
		return s, nil
	}
	s := &models.AlgorithmSettings{
		OrganizationID:   orgID,
		PeriodLengthDays: models.DefaultPeriodLengthDays,
		RandomSeed:       defaultSeed,
	}
	f.settings[orgID] = s
	return s, nil
}

func (f *fakeStore) Update(ctx context.Context, orgID uuid.UUID, periodLengthDays int, randomSeed int64) (*models.AlgorithmSettings, error) {
	s := f.settings[orgID]
	s.PeriodLengthDays = periodLengthDays
	s.RandomSeed = randomSeed
	return s, nil
}

type fakeOrgRoles struct {
	admins map[uuid.UUID]bool
}

func (f *fakeOrgRoles) IsOrgAdmin(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	return f.admins[userID], nil
}

func newTestService() (*Service, *fakeStore, uuid.UUID) {
	store := newFakeStore()
	orgAdmin := uuid.New()
	svc := NewService(store, &fakeOrgRoles{admins: map[uuid.UUID]bool{orgAdmin: true}})
	return svc, store, orgAdmin
}

func asOrgAdmin(id uuid.UUID) Identity {
	return Identity{UserID: id, Role: models.RoleMember}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestGetOrCreateProvisionsDefaults(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()

	s, err := svc.GetOrCreate(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPeriodLengthDays, s.PeriodLengthDays)
	assert.GreaterOrEqual(t, s.RandomSeed, int64(models.MinRandomSeed))
	assert.LessOrEqual(t, s.RandomSeed, int64(models.MaxRandomSeed))

	again, err := svc.GetOrCreate(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, s.RandomSeed, again.RandomSeed, "seed is minted once, not per read")
}

func TestUpdateByOrgAdmin(t *testing.T) {
	svc, store, admin := newTestService()
	orgID := uuid.New()

	result, err := svc.Update(context.Background(), orgID,
		UpdateParams{PeriodLengthDays: intPtr(14), RandomSeed: int64Ptr(999)}, asOrgAdmin(admin))
	require.NoError(t, err)
	assert.Equal(t, 14, result.Settings.PeriodLengthDays)
	assert.Equal(t, int64(999), result.Settings.RandomSeed)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 14, store.settings[orgID].PeriodLengthDays)
}

func TestUpdateForbiddenForNonAdmin(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(),
		UpdateParams{PeriodLengthDays: intPtr(14)},
		Identity{UserID: uuid.New(), Role: models.RoleMember})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdatePlatformAdminBypassesOrgRole(t *testing.T) {
	svc, _, _ := newTestService()

	result, err := svc.Update(context.Background(), uuid.New(),
		UpdateParams{PeriodLengthDays: intPtr(30)},
		Identity{UserID: uuid.New(), Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 30, result.Settings.PeriodLengthDays)
}

func TestUpdateNilParamsKeepStoredValues(t *testing.T) {
	svc, _, admin := newTestService()
	orgID := uuid.New()

	first, err := svc.Update(context.Background(), orgID,
		UpdateParams{PeriodLengthDays: intPtr(28), RandomSeed: int64Ptr(4242)}, asOrgAdmin(admin))
	require.NoError(t, err)

	result, err := svc.Update(context.Background(), orgID,
		UpdateParams{RandomSeed: int64Ptr(7)}, asOrgAdmin(admin))
	require.NoError(t, err)
	assert.Equal(t, first.Settings.PeriodLengthDays, result.Settings.PeriodLengthDays)
	assert.Equal(t, int64(7), result.Settings.RandomSeed)
}

func TestUpdateShortPeriodSucceedsWithWarning(t *testing.T) {
	svc, _, admin := newTestService()
	orgID := uuid.New()

	result, err := svc.Update(context.Background(), orgID,
		UpdateParams{PeriodLengthDays: intPtr(2)}, asOrgAdmin(admin))
	require.NoError(t, err, "an out-of-bounds length is advisory, not blocking")
	assert.Equal(t, 2, result.Settings.PeriodLengthDays)
	assert.Equal(t, "Warning: Period length is too short (< 7 days)", result.Warning)
}

func TestUpdateLongPeriodSucceedsWithWarning(t *testing.T) {
	svc, _, admin := newTestService()

	result, err := svc.Update(context.Background(), uuid.New(),
		UpdateParams{PeriodLengthDays: intPtr(400)}, asOrgAdmin(admin))
	require.NoError(t, err)
	assert.Equal(t, "Warning: Period length is too long (> 365 days)", result.Warning)
}

func TestUpdateRejectsNonPositivePeriod(t *testing.T) {
	svc, _, admin := newTestService()

	for _, days := range []int{0, -5} {
		_, err := svc.Update(context.Background(), uuid.New(),
			UpdateParams{PeriodLengthDays: intPtr(days)}, asOrgAdmin(admin))
		assert.ErrorIs(t, err, ErrInvalidPeriodLength)
	}
}

func TestUpdateRejectsOutOfRangeSeed(t *testing.T) {
	svc, _, admin := newTestService()

	for _, seed := range []int64{0, -1, models.MaxRandomSeed + 1} {
		_, err := svc.Update(context.Background(), uuid.New(),
			UpdateParams{RandomSeed: int64Ptr(seed)}, asOrgAdmin(admin))
		assert.ErrorIs(t, err, ErrInvalidSeed)
	}
}

func TestMintSeedInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		seed, err := MintSeed()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, seed, int64(models.MinRandomSeed))
		assert.LessOrEqual(t, seed, int64(models.MaxRandomSeed))
	}
}
