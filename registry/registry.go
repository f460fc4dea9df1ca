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

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultListenerPoolSize = 4
	defaultCancelWait       = 2 * time.Second
)

// entry is the registry's record for one tool.
type entry struct {
	tool    Tool
	state   ToolState
	lastErr string
	limit   int           // 0 means unbounded
	limiter chan struct{} // nil when unbounded; rebuilt on every limit change
	resized chan struct{} // closed whenever limiter is replaced or the entry goes away
	running int
}

// call tracks a cancellable in-flight unit of work.
type call struct {
	cancel context.CancelFunc
	done   <-chan struct{}
}

// Registry holds the process's tool set: registrations, lifecycle state,
// per-tool concurrency slots, cancellable calls and event listeners.
//
// A Registry is an explicitly constructed value passed to whatever builds the
// process's tools; there is no package-level singleton.
type Registry struct {
	mu        sync.Mutex
	tools     map[string]*entry
	calls     map[string]*call
	listeners []Listener

	listenerPool     *ants.Pool
	enforceReadiness bool
	cancelWait       time.Duration
	logger           *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithEnforceReadiness makes AcquireSlot reject tools that are not ready.
// The default is advisory readiness: callers check GetStatus themselves and
// a slow-starting tool may serve best-effort.
func WithEnforceReadiness() Option {
	return func(r *Registry) error {
		r.enforceReadiness = true
		return nil
	}
}

// WithListenerPoolSize sets the worker pool size for listener dispatch.
func WithListenerPoolSize(size int) Option {
	return func(r *Registry) error {
		if size < 1 {
			return ErrInvalidPoolSize
		}
		r.listenerPool.Release()
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.listenerPool = pool
		return nil
	}
}

// WithCancelWait sets how long CancelCall waits for a cancelled call to unwind.
func WithCancelWait(wait time.Duration) Option {
	return func(r *Registry) error {
		r.cancelWait = wait
		return nil
	}
}

// New creates an empty tool registry.
func New(opts ...Option) (*Registry, error) {
	pool, err := ants.NewPool(defaultListenerPoolSize)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		tools:        make(map[string]*entry),
		calls:        make(map[string]*call),
		listenerPool: pool,
		cancelWait:   defaultCancelWait,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.listenerPool.Release()
			return nil, err
		}
	}
	return r, nil
}

// Close releases the listener pool. In-flight slots stay valid.
func (r *Registry) Close() {
	r.listenerPool.Release()
}

// RegisterOption configures a registration.
type RegisterOption func(*entry)

// WithConcurrencyLimit bounds simultaneous invocations of the tool.
// A limit <= 0 means unbounded.
func WithConcurrencyLimit(limit int) RegisterOption {
	return func(e *entry) {
		if limit <= 0 {
			return
		}
		e.limit = limit
		e.limiter = make(chan struct{}, limit)
	}
}

// Register adds a tool. Replacing an existing registration is allowed and
// logged; the last writer wins.
func (r *Registry) Register(tool Tool, opts ...RegisterOption) error {
	if tool == nil || tool.Name() == "" {
		return ErrUnnamedTool
	}
	name := tool.Name()

	e := &entry{
		tool:    tool,
		state:   StateRegistered,
		resized: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	r.mu.Lock()
	if old, exists := r.tools[name]; exists {
		r.logger.Warn("replacing existing tool registration", "tool", name)
		close(old.resized)
	}
	r.tools[name] = e
	r.mu.Unlock()

	r.emit(EventToolRegistered, map[string]any{"name": name})
	return nil
}

// Unregister removes a tool and reports whether it existed.
// In-flight invocations are not forcibly cancelled.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	e, exists := r.tools[name]
	delete(r.tools, name)
	if exists {
		close(e.resized)
	}
	r.mu.Unlock()

	if exists {
		r.emit(EventToolUnregistered, map[string]any{"name": name})
	}
	return exists
}

// InitializeAll runs every tool's initializer concurrently. It returns nil
// once all finish, the first initializer error (cancelling the rest), or
// ErrTimeout. A timeout <= 0 means no deadline. A tool that finished
// successfully before a later failure stays ready.
func (r *Registry) InitializeAll(ctx context.Context, timeout time.Duration) error {
	var (
		initCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		initCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		initCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	r.mu.Lock()
	type job struct {
		name string
		tool Tool
	}
	jobs := make([]job, 0, len(r.tools))
	for name, e := range r.tools {
		e.state = StateInitializing
		e.lastErr = ""
		jobs = append(jobs, job{name: name, tool: e.tool})
	}
	r.mu.Unlock()

	var (
		firstMu  sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			err := j.tool.Initialize(initCtx)
			r.finishInit(j.name, err)
			if err == nil {
				return
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			firstMu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("initializing tool %q: %w", j.name, err)
				cancel()
			}
			firstMu.Unlock()
		}(j)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-initCtx.Done():
		// Give cancelled initializers a moment to unwind, but never hang on
		// one that ignores its context.
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	firstMu.Lock()
	defer firstMu.Unlock()
	if firstErr != nil {
		return firstErr
	}
	if err := initCtx.Err(); errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: initialize-all after %s", ErrTimeout, timeout)
	}
	return ctx.Err()
}

// finishInit records one initializer's outcome.
func (r *Registry) finishInit(name string, err error) {
	r.mu.Lock()
	e, ok := r.tools[name]
	if ok {
		if err == nil {
			e.state = StateReady
			e.lastErr = ""
		} else {
			e.state = StateFailed
			e.lastErr = err.Error()
		}
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	if err == nil {
		r.emit(EventToolReady, map[string]any{"name": name})
	} else {
		r.emit(EventToolNotReady, map[string]any{"name": name, "error": err.Error()})
	}
}

// WaitUntilReady polls until every registered tool is ready or the timeout
// elapses, in which case it fails naming the tools still not ready.
func (r *Registry) WaitUntilReady(ctx context.Context, timeout, pollInterval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		notReady := r.notReadyNames()
		if len(notReady) == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: tools not ready: %s", ErrTimeout, strings.Join(notReady, ", "))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (r *Registry) notReadyNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for name, e := range r.tools {
		if e.state != StateReady {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetConcurrencyLimit replaces a tool's invocation limit. A limit <= 0 makes
// the tool unbounded. The limiter is rebuilt from scratch: remaining capacity
// is max(limit - running, 0) so already-running calls are not starved, and
// callers blocked on the old limiter are woken to re-queue against the new one.
func (r *Registry) SetConcurrencyLimit(name string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if limit <= 0 {
		e.limit = 0
		e.limiter = nil
	} else {
		available := limit - e.running
		if available < 0 {
			available = 0
		}
		limiter := make(chan struct{}, limit)
		for i := 0; i < limit-available; i++ {
			limiter <- struct{}{}
		}
		e.limit = limit
		e.limiter = limiter
	}

	close(e.resized)
	e.resized = make(chan struct{})
	return nil
}

// RegisterCall associates a cancellable unit of work with a call ID,
// generating one if absent. done should close when the work unwinds.
func (r *Registry) RegisterCall(callID string, cancel context.CancelFunc, done <-chan struct{}) string {
	if callID == "" {
		callID = uuid.NewString()
	}

	r.mu.Lock()
	r.calls[callID] = &call{cancel: cancel, done: done}
	r.mu.Unlock()
	return callID
}

// CancelCall requests cancellation of a registered call, waits briefly for it
// to unwind, and removes the association. The return value reports whether a
// cancellation was issued, not whether the call observed it before finishing.
func (r *Registry) CancelCall(ctx context.Context, callID string) bool {
	r.mu.Lock()
	c, ok := r.calls[callID]
	delete(r.calls, callID)
	r.mu.Unlock()
	if !ok {
		return false
	}

	c.cancel()
	if c.done != nil {
		select {
		case <-c.done:
		case <-time.After(r.cancelWait):
			r.logger.Warn("cancelled call did not unwind in time", "call_id", callID)
		case <-ctx.Done():
		}
	}

	r.emit(EventCallCancelled, map[string]any{"call_id": callID})
	return true
}

// CompleteCall drops a finished call's association without cancelling it.
func (r *Registry) CompleteCall(callID string) {
	r.mu.Lock()
	delete(r.calls, callID)
	r.mu.Unlock()
}

// AddListener subscribes to registry events.
func (r *Registry) AddListener(listener Listener) error {
	if listener == nil {
		return ErrNilListener
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, listener)
	r.mu.Unlock()
	return nil
}

// emit dispatches an event to all listeners on the worker pool.
// Listener failures are isolated and logged, never propagated.
func (r *Registry) emit(event string, payload map[string]any) {
	r.mu.Lock()
	listeners := make([]Listener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		listener := listener
		err := r.listenerPool.Submit(func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("listener panicked", "event", event, "panic", rec)
				}
			}()
			listener(event, payload)
		})
		if err != nil {
			r.logger.Warn("listener dispatch failed", "event", event, "err", err)
		}
	}
}

// ToolInfo is one catalog entry.
type ToolInfo struct {
	Name        string
	Description string
}

// List returns the name -> description catalog, sorted by name.
func (r *Registry) List() []ToolInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]ToolInfo, 0, len(r.tools))
	for name, e := range r.tools {
		infos = append(infos, ToolInfo{Name: name, Description: e.tool.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ToolStatus is one tool's status snapshot.
type ToolStatus struct {
	State            ToolState
	Ready            bool
	RunningCount     int
	ConcurrencyLimit int // 0 means unbounded
	LastError        string
}

// Status is a point-in-time snapshot of the registry.
type Status struct {
	AllReady bool
	Tools    map[string]ToolStatus
}

// GetStatus returns a snapshot of every tool's state.
func (r *Registry) GetStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := Status{
		AllReady: true,
		Tools:    make(map[string]ToolStatus, len(r.tools)),
	}
	for name, e := range r.tools {
		ready := e.state == StateReady
		if !ready {
			status.AllReady = false
		}
		status.Tools[name] = ToolStatus{
			State:            e.state,
			Ready:            ready,
			RunningCount:     e.running,
			ConcurrencyLimit: e.limit,
			LastError:        e.lastErr,
		}
	}
	return status
}

// Tool returns the registered tool by name.
func (r *Registry) Tool(name string) (Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return e.tool, nil
}
