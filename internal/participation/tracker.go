package participation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewbuddy/backend/internal/models"
)

// Store abstracts participation persistence. *Repository is the production
// implementation.
type Store interface {
	Get(ctx context.Context, userID, orgID uuid.UUID) (*models.CycleParticipation, error)
	Upsert(ctx context.Context, userID, orgID uuid.UUID, consecutiveCount, lastCycle int) error
	ResetStale(ctx context.Context, orgID uuid.UUID, cycle int) error
}

// Tracker maintains per-user consecutive-cycle participation counters.
//
// A participant's streak restarts at 1 after a gap; a member who sits out a
// closing cycle entirely is reset to 0. The two reset values differ on
// purpose: the first user did participate in the current cycle, the second
// has no current streak at all.
type Tracker struct {
	store Store
}

// NewTracker creates a participation tracker.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// IncrementOrReset records participation in the current cycle and returns
// the updated consecutive count.
func (t *Tracker) IncrementOrReset(ctx context.Context, userID, orgID uuid.UUID, currentCycle int) (int, error) {
	existing, err := t.store.Get(ctx, userID, orgID)
	if err != nil {
		return 0, fmt.Errorf("load participation: %w", err)
	}

	count := 1
	if existing != nil {
		switch {
		case existing.LastParticipationCycle == currentCycle:
			// Already recorded for this cycle; keep the counter stable.
			return existing.ConsecutiveCount, nil
		case existing.LastParticipationCycle == currentCycle-1:
			count = existing.ConsecutiveCount + 1
		}
	}

	if err := t.store.Upsert(ctx, userID, orgID, count, currentCycle); err != nil {
		return 0, fmt.Errorf("save participation: %w", err)
	}
	return count, nil
}

// ResetNonParticipants zeroes the streak of members who were not paired in
// the cycle that just closed.
func (t *Tracker) ResetNonParticipants(ctx context.Context, orgID uuid.UUID, closedCycle int) error {
	return t.store.ResetStale(ctx, orgID, closedCycle)
}

// ConsecutiveCount returns the user's current streak; 0 if never recorded.
func (t *Tracker) ConsecutiveCount(ctx context.Context, userID, orgID uuid.UUID) (int, error) {
	p, err := t.store.Get(ctx, userID, orgID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	return p.ConsecutiveCount, nil
}
