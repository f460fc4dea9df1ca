package dispatch

import "errors"

var (
	// ErrRegistryRequired is returned when a registry is not provided.
	ErrRegistryRequired = errors.New("registry required")

	// ErrLeaseManagerRequired is returned when a lease manager is not provided.
	ErrLeaseManagerRequired = errors.New("lease manager required")

	// ErrQueueRequired is returned when a tool is routed to the queued venue
	// but no task queue is configured.
	ErrQueueRequired = errors.New("task queue required for queued venue")

	// ErrInvalidWorkerCount is returned for a worker count below 1.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrInvalidTimeLimits is returned when the soft limit is non-positive or
	// the hard limit is below the soft limit.
	ErrInvalidTimeLimits = errors.New("hard time limit must be >= soft time limit > 0")

	// ErrHardTimeLimit is returned when a task ran past its hard time limit.
	ErrHardTimeLimit = errors.New("task exceeded hard time limit")
)
