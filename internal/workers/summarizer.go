package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/queue"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/summary"
)

// Summarizer processes background summarization and maintenance jobs
type Summarizer struct {
	pipeline       *summary.Pipeline
	userRepo       database.UserRepositoryInterface
	transitionRepo database.TransitionRepositoryInterface
	jobQueue       queue.JobQueue // For re-enqueueing jobs with delays
	retentionDays  int
}

// NewSummarizer creates a new summarizer worker
func NewSummarizer(
	pipeline *summary.Pipeline,
	userRepo database.UserRepositoryInterface,
	transitionRepo database.TransitionRepositoryInterface,
	jobQueue queue.JobQueue,
	retentionDays int,
) *Summarizer {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Summarizer{
		pipeline:       pipeline,
		userRepo:       userRepo,
		transitionRepo: transitionRepo,
		jobQueue:       jobQueue,
		retentionDays:  retentionDays,
	}
}

// ProcessSummarizeUserJob rolls one user's conversation into the tiered
// summary cache.
func (s *Summarizer) ProcessSummarizeUserJob(ctx context.Context, job *queue.Job) error {
	if job.UserID == "" {
		return fmt.Errorf("user_id is required for summarize job")
	}

	rec, err := s.userRepo.Load(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.pipeline.Run(ctx, job.UserID, rec.Conversation); err != nil {
		return fmt.Errorf("failed to run summary pass: %w", err)
	}

	log.Printf("Summarized conversation for user %s (%d messages)", job.UserID, len(rec.Conversation))
	return nil
}

// ProcessPruneTransitionsJob deletes mood transitions past the retention
// window.
func (s *Summarizer) ProcessPruneTransitionsJob(ctx context.Context, job *queue.Job) error {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	n, err := s.transitionRepo.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune transitions: %w", err)
	}
	if n > 0 {
		log.Printf("Pruned %d mood transition(s) older than %d days", n, s.retentionDays)
	}
	return nil
}

// PruneTransitions runs the retention pass directly, outside the queue. Used
// by the cron schedule.
func (s *Summarizer) PruneTransitions(ctx context.Context) error {
	return s.ProcessPruneTransitionsJob(ctx, &queue.Job{Type: queue.JobTypePruneTransitions})
}

// ProcessJob processes a job based on its type
func (s *Summarizer) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		log.Printf("Job %s not ready yet (NotBefore: %v), skipping", job.ID, job.NotBefore)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job for later processing: %v", ackErr)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeSummarizeUser:
		if err := s.ProcessSummarizeUserJob(ctx, job); err != nil {
			return s.handleJobError(ctx, msg, job, err, "summarize")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypePruneTransitions:
		if err := s.ProcessPruneTransitionsJob(ctx, job); err != nil {
			// Retention failures are not worth retry churn, just log
			if nackErr := msg.Nack(false); nackErr != nil {
				log.Printf("Failed to nack prune job: %v", nackErr)
			}
			return fmt.Errorf("prune failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack prune job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			log.Printf("Failed to nack unknown job type: %v", nackErr)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with intelligent retry logic
func (s *Summarizer) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	// Quota errors should not retry immediately
	if ai.IsQuotaError(err) {
		log.Printf("Quota exceeded for %s job %s: %v", jobType, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		log.Printf("Re-enqueueing %s job %s with NotBefore=%v (quota exhausted, retry in %v)",
			jobType, job.ID, notBefore, retryDelay)

		delayedJob := s.delayedCopy(job, notBefore)

		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack job before re-enqueue: %v", ackErr)
		}

		if s.jobQueue != nil {
			if enqueueErr := s.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue job %s with delay: %v", job.ID, enqueueErr)
				return fmt.Errorf("quota exhausted, failed to re-enqueue: %w", enqueueErr)
			}
			log.Printf("Successfully re-enqueued %s job %s for retry at %v", jobType, job.ID, notBefore)
			return nil
		}

		log.Printf("Warning: No queue access, cannot re-enqueue job with delay. Sending to DLQ.")
		if nackErr := msg.Nack(false); nackErr != nil {
			log.Printf("Failed to nack quota error job: %v", nackErr)
		}
		return fmt.Errorf("quota exhausted (job %s): %w", job.ID, err)
	}

	// Rate limit errors retry with backoff
	if ai.IsRateLimitError(err) {
		log.Printf("Rate limited for %s job %s: %v", jobType, job.ID, err)

		retryDelay := ai.GetRetryDelay(err, job.RetryCount)

		if job.CanRetry() && s.jobQueue != nil {
			notBefore := time.Now().Add(retryDelay)
			delayedJob := s.delayedCopy(job, notBefore)

			if ackErr := msg.Ack(); ackErr != nil {
				log.Printf("Failed to ack rate limited job: %v", ackErr)
			}

			if enqueueErr := s.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
				log.Printf("Failed to re-enqueue rate limited job %s: %v", job.ID, enqueueErr)
				if nackErr := msg.Nack(true); nackErr != nil {
					log.Printf("Failed to nack rate limited job: %v", nackErr)
				}
				return fmt.Errorf("rate limited, failed to re-enqueue: %w", enqueueErr)
			}

			log.Printf("Rate limited: re-enqueued %s job %s for retry at %v (delay: %v)",
				jobType, job.ID, notBefore, retryDelay)
			return nil
		}

		if job.CanRetry() {
			job.IncrementRetry()
			log.Printf("Rate limit: will retry job %s immediately (attempt %d/%d)",
				job.ID, job.RetryCount, job.MaxRetries)
			if nackErr := msg.Nack(true); nackErr != nil {
				log.Printf("Failed to nack rate limited job: %v", nackErr)
			}
			return fmt.Errorf("rate limited (will retry): %w", err)
		}
	}

	// Standard retry logic for everything else
	if job.CanRetry() {
		job.IncrementRetry()
		log.Printf("%s job %s failed (attempt %d/%d): %v, will retry", jobType, job.ID, job.RetryCount, job.MaxRetries, err)
		if nackErr := msg.Nack(true); nackErr != nil {
			log.Printf("Failed to nack job: %v", nackErr)
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	log.Printf("%s job %s failed after %d retries: %v, sending to DLQ", jobType, job.ID, job.MaxRetries, err)
	if nackErr := msg.Nack(false); nackErr != nil {
		log.Printf("Failed to nack job to DLQ: %v", nackErr)
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

func (s *Summarizer) delayedCopy(job *queue.Job, notBefore time.Time) *queue.Job {
	return &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}
}
