package pairing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brewbuddy/backend/internal/models"
)

func TestCanPairBlockSymmetry(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	idx := NewExclusionIndex([]models.UserBlock{
		{BlockerID: a, BlockedID: b},
	}, nil, 10)

	assert.False(t, idx.CanPair(a, b))
	assert.False(t, idx.CanPair(b, a), "block must exclude the pair in either argument order")
	assert.True(t, idx.IsBlocked(b, a))
}

func TestCanPairRecencyExclusion(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	history := []HistoricalPairing{{UserAID: a, UserBID: b, PeriodsAgo: 1}}

	idx := NewExclusionIndex(nil, history, 3)
	assert.False(t, idx.CanPair(a, b), "paired one period ago with enough alternatives")
	assert.False(t, idx.CanPair(b, a))
}

func TestCanPairRecencySmallPopulationOverride(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	history := []HistoricalPairing{{UserAID: a, UserBID: b, PeriodsAgo: 1}}

	idx := NewExclusionIndex(nil, history, 2)
	assert.True(t, idx.CanPair(a, b), "with only two eligible users a repeat pairing is allowed")
}

func TestCanPairRecencyOutsideLookback(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	history := []HistoricalPairing{{UserAID: a, UserBID: b, PeriodsAgo: 3}}

	idx := NewExclusionIndex(nil, history, 10)
	assert.True(t, idx.CanPair(a, b), "a pairing three periods ago does not exclude")
}

func TestCanPairSmallestRecencyWins(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	history := []HistoricalPairing{
		{UserAID: a, UserBID: b, PeriodsAgo: 3},
		{UserAID: b, UserBID: a, PeriodsAgo: 2},
	}

	idx := NewExclusionIndex(nil, history, 10)
	assert.False(t, idx.CanPair(a, b), "the most recent pairing of the two drives the exclusion")
}

func TestCanPairUnrelatedUsers(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	idx := NewExclusionIndex([]models.UserBlock{
		{BlockerID: a, BlockedID: b},
	}, []HistoricalPairing{{UserAID: a, UserBID: c, PeriodsAgo: 1}}, 10)

	assert.True(t, idx.CanPair(b, c))
}
