package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Slot is a held invocation permit for one tool. Acquiring waits on the
// tool's concurrency limiter (if any), bumps the running count and emits
// call_started; releasing undoes both and emits call_finished.
type Slot struct {
	registry *Registry
	name     string
	callID   string
	limiter  chan struct{} // the limiter this slot was admitted by
	once     sync.Once
}

// AcquireSlot admits one invocation of the named tool, blocking while the
// tool is at its concurrency limit. Excess callers are delayed, not rejected:
// when the limiter is rebuilt mid-wait they re-queue against the new one.
// An empty callID gets a generated one.
func (r *Registry) AcquireSlot(ctx context.Context, name, callID string) (*Slot, error) {
	if callID == "" {
		callID = uuid.NewString()
	}

	var limiter chan struct{}
	for {
		r.mu.Lock()
		e, ok := r.tools[name]
		if !ok {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		if r.enforceReadiness && e.state != StateReady {
			state := e.state
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %s is %s", ErrToolNotReady, name, state)
		}
		limiter = e.limiter
		resized := e.resized
		r.mu.Unlock()

		if limiter == nil {
			break
		}

		select {
		case limiter <- struct{}{}:
		case <-resized:
			// The limiter was replaced while we waited. Retry against the
			// current one so a resize delays waiters instead of stranding
			// them on a channel nothing drains anymore.
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		break
	}

	r.mu.Lock()
	// The tool may have been unregistered while we waited; the slot still
	// works, releases just have nothing to decrement.
	if e, ok := r.tools[name]; ok {
		e.running++
	}
	r.mu.Unlock()

	r.emit(EventCallStarted, map[string]any{"name": name, "call_id": callID})

	return &Slot{
		registry: r,
		name:     name,
		callID:   callID,
		limiter:  limiter,
	}, nil
}

// CallID returns the slot's call ID.
func (s *Slot) CallID() string {
	return s.callID
}

// Release returns the permit. Safe to call more than once; a release that
// finds the limiter already at full capacity is swallowed and logged, never
// an error for the caller.
func (s *Slot) Release() {
	s.once.Do(func() {
		r := s.registry

		r.mu.Lock()
		limiter := s.limiter
		if e, ok := r.tools[s.name]; ok {
			if e.running > 0 {
				e.running--
			}
			// Drain the current limiter after a resize so finished calls
			// free the capacity SetConcurrencyLimit reserved for them.
			limiter = e.limiter
		}
		r.mu.Unlock()

		if limiter != nil {
			select {
			case <-limiter:
			default:
				r.logger.Warn("limiter already at capacity, ignoring release", "tool", s.name)
			}
		}

		r.emit(EventCallFinished, map[string]any{"name": s.name, "call_id": s.callID})
	})
}
