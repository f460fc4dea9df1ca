package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultSoftTimeLimit cancels a task's context, asking it to stop.
	DefaultSoftTimeLimit = 5 * time.Minute
	// DefaultHardTimeLimit abandons a task that ignored the soft limit.
	DefaultHardTimeLimit = 6 * time.Minute
	// DefaultQueueWorkers is the local queue's worker count.
	DefaultQueueWorkers = 4
)

// TaskResult is the outcome of one queued task.
type TaskResult struct {
	Value any
	Err   error
}

// TaskQueue runs named tasks asynchronously with per-task time limits.
// Delivery is at-least-once from the caller's perspective: a caller that
// re-submits after a lost result may run the task again, which is why
// dispatch guards mutating tasks with an idempotency lease.
type TaskQueue interface {
	// Submit enqueues fn and returns a channel that yields exactly one result.
	Submit(ctx context.Context, taskID string, fn func(ctx context.Context) (any, error)) (<-chan TaskResult, error)

	// Close stops accepting tasks and releases workers.
	Close()
}

// LocalQueue is an in-process TaskQueue over an ants worker pool. It enforces
// a soft time limit (context cancellation) and a hard one (the waiter stops
// listening and the worker is logged as stuck).
type LocalQueue struct {
	pool   *ants.Pool
	soft   time.Duration
	hard   time.Duration
	logger *slog.Logger
}

var _ TaskQueue = (*LocalQueue)(nil)

// QueueOption configures a LocalQueue.
type QueueOption func(*LocalQueue) error

// WithWorkers sets the worker pool size.
func WithWorkers(n int) QueueOption {
	return func(q *LocalQueue) error {
		if n < 1 {
			return ErrInvalidWorkerCount
		}
		q.pool.Release()
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		q.pool = pool
		return nil
	}
}

// WithTimeLimits sets the soft and hard per-task time limits.
func WithTimeLimits(soft, hard time.Duration) QueueOption {
	return func(q *LocalQueue) error {
		if soft <= 0 || hard < soft {
			return ErrInvalidTimeLimits
		}
		q.soft = soft
		q.hard = hard
		return nil
	}
}

// WithQueueLogger sets the logger.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *LocalQueue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewLocalQueue creates an in-process task queue.
func NewLocalQueue(opts ...QueueOption) (*LocalQueue, error) {
	pool, err := ants.NewPool(DefaultQueueWorkers)
	if err != nil {
		return nil, err
	}

	q := &LocalQueue{
		pool:   pool,
		soft:   DefaultSoftTimeLimit,
		hard:   DefaultHardTimeLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(q); err != nil {
			q.pool.Release()
			return nil, err
		}
	}
	return q, nil
}

// Submit enqueues fn on the worker pool. The task's context descends from
// ctx, so cancelling the submission cancels the task; the soft limit adds a
// deadline on top.
func (q *LocalQueue) Submit(ctx context.Context, taskID string, fn func(ctx context.Context) (any, error)) (<-chan TaskResult, error) {
	out := make(chan TaskResult, 1)

	err := q.pool.Submit(func() {
		runCtx, cancel := context.WithTimeout(ctx, q.soft)
		defer cancel()

		inner := make(chan TaskResult, 1)
		go func() {
			value, err := fn(runCtx)
			inner <- TaskResult{Value: value, Err: err}
		}()

		select {
		case result := <-inner:
			out <- result
		case <-time.After(q.hard):
			q.logger.Error("task exceeded hard time limit", "task_id", taskID, "limit", q.hard)
			out <- TaskResult{Err: ErrHardTimeLimit}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the worker pool.
func (q *LocalQueue) Close() {
	q.pool.Release()
}
