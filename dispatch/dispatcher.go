// Copyright 2025 The rowvec Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rowvec/rowvec/lease"
	"github.com/rowvec/rowvec/registry"
)

// Venue decides where a tool call executes.
type Venue int

const (
	// VenueLocal runs the call inline on the caller's goroutine.
	VenueLocal Venue = iota + 1
	// VenueQueued hands the call to the task queue and guards it with an
	// idempotency lease.
	VenueQueued
)

// String returns the venue name.
func (v Venue) String() string {
	switch v {
	case VenueLocal:
		return "local"
	case VenueQueued:
		return "queued"
	default:
		return "unknown"
	}
}

// Result status values.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusDuplicate = "duplicate"
)

// cancelGrace is how long a cancelled queued call keeps listening for the
// task's own result before abandoning the wait.
const cancelGrace = 2 * time.Second

// Result is the structured outcome of one Invoke. A duplicate submission is
// an outcome, not an error: Status is StatusDuplicate and Owner/Remaining
// describe the run already in flight.
type Result struct {
	Status    string
	Value     any
	Err       string
	Venue     Venue
	CallID    string
	Owner     string
	Remaining time.Duration
}

// Dispatcher routes tool calls to their venue. Every call, local or queued,
// holds a registry slot for its full duration so per-tool concurrency limits
// apply uniformly. Queued calls additionally take an idempotency lease keyed
// on the tool name and arguments, so redelivered or concurrently duplicated
// submissions collapse into one run.
type Dispatcher struct {
	registry *registry.Registry
	leases   *lease.Manager
	queue    TaskQueue
	venues   map[string]Venue
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithQueue sets the task queue used by the queued venue.
func WithQueue(queue TaskQueue) Option {
	return func(d *Dispatcher) error {
		d.queue = queue
		return nil
	}
}

// WithVenue routes a tool to a venue. Unrouted tools run locally.
func WithVenue(tool string, venue Venue) Option {
	return func(d *Dispatcher) error {
		d.venues[tool] = venue
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// New creates a Dispatcher over a registry and a lease manager.
func New(reg *registry.Registry, leases *lease.Manager, opts ...Option) (*Dispatcher, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if leases == nil {
		return nil, ErrLeaseManagerRequired
	}

	d := &Dispatcher{
		registry: reg,
		leases:   leases,
		venues:   make(map[string]Venue),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// VenueFor reports the venue a tool is routed to.
func (d *Dispatcher) VenueFor(tool string) Venue {
	if v, ok := d.venues[tool]; ok {
		return v
	}
	return VenueLocal
}

// Invoke runs a tool by name. Tool-level failures come back inside the Result
// with StatusError; the error return is reserved for dispatch failures such as
// an unknown tool or a cancelled context.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (*Result, error) {
	tool, err := d.registry.Tool(name)
	if err != nil {
		return nil, err
	}

	venue := d.VenueFor(name)
	switch venue {
	case VenueQueued:
		if d.queue == nil {
			return nil, ErrQueueRequired
		}
		return d.invokeQueued(ctx, name, tool, args)
	default:
		return d.invokeLocal(ctx, name, tool, args)
	}
}

// Cancel cancels a tracked in-flight call by ID.
func (d *Dispatcher) Cancel(ctx context.Context, callID string) bool {
	return d.registry.CancelCall(ctx, callID)
}

func (d *Dispatcher) invokeLocal(ctx context.Context, name string, tool registry.Tool, args map[string]any) (*Result, error) {
	callID := uuid.NewString()

	slot, err := d.registry.AcquireSlot(ctx, name, callID)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	d.registry.RegisterCall(callID, cancel, done)
	defer close(done)
	defer d.registry.CompleteCall(callID)

	value, runErr := tool.Run(runCtx, args)
	if runErr != nil {
		d.logger.Error("tool call failed", "tool", name, "call_id", callID, "error", runErr)
		return &Result{Status: StatusError, Err: runErr.Error(), Venue: VenueLocal, CallID: callID}, nil
	}
	return &Result{Status: StatusOK, Value: value, Venue: VenueLocal, CallID: callID}, nil
}

func (d *Dispatcher) invokeQueued(ctx context.Context, name string, tool registry.Tool, args map[string]any) (*Result, error) {
	key := IdempotencyKey(name, args)
	taskID := uuid.NewString()

	handle, acquired, err := d.leases.TryAcquire(ctx, key, taskID)
	if err != nil {
		return nil, fmt.Errorf("acquiring idempotency lease: %w", err)
	}
	if !acquired {
		return d.duplicateResult(ctx, name, key)
	}
	defer handle.Release(context.Background())

	slot, err := d.registry.AcquireSlot(ctx, name, taskID)
	if err != nil {
		return nil, err
	}
	defer slot.Release()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	d.registry.RegisterCall(taskID, cancel, done)
	defer close(done)
	defer d.registry.CompleteCall(taskID)

	results, err := d.queue.Submit(runCtx, taskID, func(taskCtx context.Context) (any, error) {
		return tool.Run(taskCtx, args)
	})
	if err != nil {
		return nil, fmt.Errorf("submitting task: %w", err)
	}

	select {
	case result := <-results:
		return d.queuedResult(name, taskID, result), nil
	case <-runCtx.Done():
		// Cancelled while the task runs, either by the caller or through
		// CancelCall. The task's context descends from runCtx, so a
		// cooperative tool returns promptly; keep listening briefly for its
		// result before abandoning the wait.
		select {
		case result := <-results:
			return d.queuedResult(name, taskID, result), nil
		case <-time.After(cancelGrace):
			return nil, runCtx.Err()
		}
	}
}

func (d *Dispatcher) queuedResult(name, taskID string, result TaskResult) *Result {
	if result.Err != nil {
		d.logger.Error("queued tool call failed", "tool", name, "task_id", taskID, "error", result.Err)
		return &Result{Status: StatusError, Err: result.Err.Error(), Venue: VenueQueued, CallID: taskID}
	}
	return &Result{Status: StatusOK, Value: result.Value, Venue: VenueQueued, CallID: taskID}
}

// duplicateResult builds the response for a submission that lost the
// idempotency lease race: the same work is already running somewhere.
func (d *Dispatcher) duplicateResult(ctx context.Context, name, key string) (*Result, error) {
	current, remaining, err := d.leases.Status(ctx, key)
	if err != nil {
		// The holder finished between our acquire attempt and this lookup.
		// Report the duplicate without owner detail rather than failing.
		d.logger.Info("duplicate submission, holder already gone", "tool", name, "key", key)
		return &Result{Status: StatusDuplicate, Venue: VenueQueued}, nil
	}

	d.logger.Info("duplicate submission suppressed",
		"tool", name, "key", key, "owner", current.Owner, "remaining", remaining)
	return &Result{
		Status:    StatusDuplicate,
		Venue:     VenueQueued,
		Owner:     current.Owner,
		Remaining: remaining,
	}, nil
}
