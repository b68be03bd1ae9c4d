package pairing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/pkg/queue"
)

// EmailDirectory resolves user emails for notification fan-out.
type EmailDirectory interface {
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// QueueHooks implements Hooks by submitting background jobs. The engine only
// guarantees "task submitted": the worker owns delivery, retries and
// idempotency. Enqueue failures are logged and swallowed so they can never
// roll back a committed pairing run.
type QueueHooks struct {
	queue  *queue.Queue
	emails EmailDirectory
	logger *zap.Logger
}

// NewQueueHooks creates queue-backed hooks.
func NewQueueHooks(q *queue.Queue, emails EmailDirectory, logger *zap.Logger) *QueueHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueHooks{queue: q, emails: emails, logger: logger}
}

// PairingsCreated notifies both members of every new pairing by email and
// submits the first-pairing achievement unlock (idempotent on the far side).
func (h *QueueHooks) PairingsCreated(ctx context.Context, period *models.PairingPeriod, pairings []*models.Pairing) {
	ids := make([]uuid.UUID, 0, len(pairings)*2)
	for _, p := range pairings {
		ids = append(ids, p.UserAID, p.UserBID)
	}
	addrs, err := h.emails.EmailsByIDs(ctx, ids)
	if err != nil {
		h.logger.Warn("resolve recipient emails", zap.Error(err))
		addrs = map[uuid.UUID]string{}
	}

	due := "the end of the period"
	if period.EndDate != nil {
		due = period.EndDate.Format("Monday, 2 January 2006")
	}

	for _, p := range pairings {
		pairingID := p.ID
		for _, userID := range []uuid.UUID{p.UserAID, p.UserBID} {
			if err := h.queue.EnqueueAchievementUnlock(ctx, queue.AchievementPayload{
				UserID:         userID,
				OrganizationID: p.OrganizationID,
				AchievementID:  models.AchievementFirstPairing,
			}); err != nil {
				h.logger.Warn("enqueue first-pairing achievement", zap.String("user_id", userID.String()), zap.Error(err))
			}

			addr, ok := addrs[userID]
			if !ok {
				continue
			}
			if err := h.queue.EnqueueEmail(ctx, queue.EmailPayload{
				EmailType:      models.EmailTypeNewPairing,
				OrganizationID: p.OrganizationID,
				PairingID:      &pairingID,
				RecipientEmail: addr,
				Subject:        "You have a new coffee pairing",
				Body: fmt.Sprintf("You have been paired for a coffee chat until %s. Reach out and pick a time!", due),
			}); err != nil {
				h.logger.Warn("enqueue pairing email", zap.String("user_id", userID.String()), zap.Error(err))
			}
		}
	}
}

// StreakReached submits the regular-participant achievement unlock.
func (h *QueueHooks) StreakReached(ctx context.Context, orgID, userID uuid.UUID, consecutiveCount int) {
	if err := h.queue.EnqueueAchievementUnlock(ctx, queue.AchievementPayload{
		UserID:         userID,
		OrganizationID: orgID,
		AchievementID:  models.AchievementRegularParticipant,
	}); err != nil {
		h.logger.Warn("enqueue streak achievement",
			zap.String("user_id", userID.String()),
			zap.Int("consecutive_count", consecutiveCount),
			zap.Error(err))
	}
}
