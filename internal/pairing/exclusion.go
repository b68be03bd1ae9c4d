package pairing

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/models"
)

// RecencyLookback is how many past periods a previous pairing excludes a
// pair for.
const RecencyLookback = 2

// smallPopulationLimit is the eligible-user count at or below which the
// recency exclusion is waived: with only two people available a repeat
// pairing beats leaving both unpaired.
const smallPopulationLimit = 2

// pairKey is an order-independent key for a pair of users.
type pairKey struct {
	lo, hi uuid.UUID
}

func keyFor(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// HistoricalPairing is a past pairing with its age in periods relative to
// the current one (1 = immediately previous period).
type HistoricalPairing struct {
	UserAID    uuid.UUID
	UserBID    uuid.UUID
	PeriodsAgo int
}

// ExclusionIndex answers, in O(1), whether two users may be paired. It
// combines the organization's block graph (symmetric) with recent pairing
// history.
type ExclusionIndex struct {
	blocked       map[pairKey]struct{}
	recent        map[pairKey]int // periods ago; smallest value wins
	eligibleCount int
}

// NewExclusionIndex builds the per-invocation index.
func NewExclusionIndex(blocks []models.UserBlock, history []HistoricalPairing, eligibleCount int) *ExclusionIndex {
	idx := &ExclusionIndex{
		blocked:       make(map[pairKey]struct{}, len(blocks)),
		recent:        make(map[pairKey]int, len(history)),
		eligibleCount: eligibleCount,
	}
	for _, b := range blocks {
		idx.blocked[keyFor(b.BlockerID, b.BlockedID)] = struct{}{}
	}
	for _, h := range history {
		k := keyFor(h.UserAID, h.UserBID)
		if prev, ok := idx.recent[k]; !ok || h.PeriodsAgo < prev {
			idx.recent[k] = h.PeriodsAgo
		}
	}
	return idx
}

// IsBlocked reports whether either user has blocked the other.
func (idx *ExclusionIndex) IsBlocked(a, b uuid.UUID) bool {
	_, ok := idx.blocked[keyFor(a, b)]
	return ok
}

// CanPair reports whether a candidate pair is legal: not blocked, and not
// paired within the recency lookback — unless the eligible population is so
// small that the recency rule would leave everyone unpaired.
func (idx *ExclusionIndex) CanPair(a, b uuid.UUID) bool {
	if idx.IsBlocked(a, b) {
		return false
	}
	if ago, ok := idx.recent[keyFor(a, b)]; ok && ago <= RecencyLookback {
		if idx.eligibleCount > smallPopulationLimit {
			return false
		}
	}
	return true
}
