package pairing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(a, b uuid.UUID) bool { return true }

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestMatchEvenCountPairsEveryone(t *testing.T) {
	ids := newIDs(6)
	out := Match(ids, 12345, allowAll)

	assert.Len(t, out.Pairs, 3)
	assert.Empty(t, out.Unpaired)

	seen := make(map[uuid.UUID]bool)
	for _, p := range out.Pairs {
		assert.False(t, seen[p[0]], "user appears in more than one pair")
		assert.False(t, seen[p[1]], "user appears in more than one pair")
		seen[p[0]], seen[p[1]] = true, true
	}
	assert.Len(t, seen, 6)
}

func TestMatchOddCountLeavesOneUnpaired(t *testing.T) {
	ids := newIDs(5)
	out := Match(ids, 42, allowAll)

	assert.Len(t, out.Pairs, 2)
	assert.Len(t, out.Unpaired, 1)
}

func TestMatchDeterministicForSameSeed(t *testing.T) {
	ids := newIDs(8)

	first := Match(ids, 99, allowAll)
	second := Match(ids, 99, allowAll)

	require.Equal(t, len(first.Pairs), len(second.Pairs))
	assert.Equal(t, first.Pairs, second.Pairs, "same seed and input order must reproduce the pairing set")
	assert.Equal(t, first.Unpaired, second.Unpaired)
}

func TestMatchDifferentSeedsCanDiffer(t *testing.T) {
	ids := newIDs(8)

	first := Match(ids, 1, allowAll)
	var differs bool
	for seed := int64(2); seed < 20; seed++ {
		if !assert.ObjectsAreEqual(first.Pairs, Match(ids, seed, allowAll).Pairs) {
			differs = true
			break
		}
	}
	assert.True(t, differs, "some seed in range should produce a different pairing set")
}

func TestMatchNeverForcesIllegalPair(t *testing.T) {
	ids := newIDs(4)
	blockedA, blockedB := ids[0], ids[1]
	canPair := func(a, b uuid.UUID) bool {
		if (a == blockedA && b == blockedB) || (a == blockedB && b == blockedA) {
			return false
		}
		return true
	}

	out := Match(ids, 7, canPair)
	for _, p := range out.Pairs {
		blocked := (p[0] == blockedA && p[1] == blockedB) || (p[0] == blockedB && p[1] == blockedA)
		assert.False(t, blocked, "blocked pair must not be produced")
	}
	assert.Len(t, out.Pairs, 2, "the remaining users can still be legally paired")
}

func TestMatchNoLegalPartnerLeavesUsersUnpaired(t *testing.T) {
	ids := newIDs(3)
	out := Match(ids, 5, func(a, b uuid.UUID) bool { return false })

	assert.Empty(t, out.Pairs)
	assert.Len(t, out.Unpaired, 3)
}

func TestMatchEmptyAndSingleInput(t *testing.T) {
	out := Match(nil, 1, allowAll)
	assert.Empty(t, out.Pairs)
	assert.Empty(t, out.Unpaired)

	single := newIDs(1)
	out = Match(single, 1, allowAll)
	assert.Empty(t, out.Pairs)
	assert.Equal(t, single, out.Unpaired)
}
