package queue

import (
	"context"
)

// MessageInterface is the consumer-side view of a queued message. It exists
// so worker logic can be tested without a live broker.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the interface between the API server (producer) and the
// summarization worker (consumer).
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue removes and returns one message, or nil if none is waiting.
	// The caller must ack or nack it.
	// Deprecated: use Consume for long-running workers.
	Dequeue(ctx context.Context) (*Message, error)

	// Consume streams messages as they arrive. Prefetch bounds the number of
	// unacknowledged messages the consumer holds. The returned channels close
	// when the context is cancelled or the connection drops.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}
