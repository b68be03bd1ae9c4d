package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brewbuddy/backend/internal/achievements"
	"github.com/brewbuddy/backend/internal/emails"
	"github.com/brewbuddy/backend/internal/models"
	"github.com/brewbuddy/backend/pkg/queue"
)

// Processor consumes background jobs: pairing notification emails and
// achievement unlocks. Both are fire-and-forget side effects of a pairing
// run; the run itself has already committed by the time a job exists.
type Processor struct {
	achRepo   *achievements.Repository
	emailRepo *emails.Repository
	sender    *emails.Sender
	queue     *queue.Queue
	logger    *zap.Logger
}

// NewProcessor creates a background job processor.
func NewProcessor(achRepo *achievements.Repository, emailRepo *emails.Repository, sender *emails.Sender, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{achRepo: achRepo, emailRepo: emailRepo, sender: sender, queue: q, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeEmail:
		return p.processEmail(ctx, job)
	case queue.JobTypeAchievementUnlock:
		return p.processAchievement(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processEmail(ctx context.Context, job *queue.Job) error {
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log := &models.EmailLog{
		OrganizationID: &payload.OrganizationID,
		PairingID:      payload.PairingID,
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        payload.Subject,
	}
	if err := p.sender.Send(payload.RecipientEmail, payload.Subject, payload.Body); err != nil {
		if logErr := p.emailRepo.LogFailed(ctx, log, err.Error()); logErr != nil {
			p.logger.Error("record failed email", zap.Error(logErr))
		}
		return fmt.Errorf("send email: %w", err)
	}
	if err := p.emailRepo.LogSent(ctx, log); err != nil {
		p.logger.Error("record sent email", zap.Error(err))
	}
	p.logger.Info("email sent", zap.String("to", payload.RecipientEmail), zap.String("email_type", payload.EmailType))
	return nil
}

func (p *Processor) processAchievement(ctx context.Context, job *queue.Job) error {
	var payload queue.AchievementPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	unlocked, err := p.achRepo.UnlockIfNotAlready(ctx, payload.UserID, payload.AchievementID)
	if err != nil {
		return fmt.Errorf("unlock achievement: %w", err)
	}
	if unlocked {
		p.logger.Info("achievement unlocked",
			zap.String("user_id", payload.UserID.String()),
			zap.String("achievement_id", payload.AchievementID))
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, key, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, key, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
