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

package lease

import (
	"context"
	"log/slog"
	"time"

	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

const (
	// DefaultTTL is the lifetime granted on acquisition and each renewal.
	DefaultTTL = 2 * time.Minute
	// DefaultRenewInterval is how often a held lease is re-extended.
	DefaultRenewInterval = 30 * time.Second
	// DefaultRetries is how many extra acquisition attempts AcquireWithRetries makes.
	DefaultRetries = 3
	// DefaultRetryDelay is the pause between acquisition attempts.
	DefaultRetryDelay = 2 * time.Second
)

// Manager hands out leases backed by a storage.LeaseStore and keeps held
// leases alive with a background renewal loop per handle.
//
// Not acquiring a lease is a normal coordination outcome, not an error:
// acquisition methods return a nil handle and false, and callers should treat
// that as "another holder is doing the work".
type Manager struct {
	store         storage.LeaseStore
	logger        *slog.Logger
	ttl           time.Duration
	renewInterval time.Duration
	retries       int
	retryDelay    time.Duration
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			return ErrNilLogger
		}
		m.logger = logger
		return nil
	}
}

// WithTTL sets the lease lifetime granted on acquisition and renewal.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}
		m.ttl = ttl
		return nil
	}
}

// WithRenewInterval sets how often held leases are extended.
func WithRenewInterval(interval time.Duration) Option {
	return func(m *Manager) error {
		if interval <= 0 {
			return ErrInvalidRenewInterval
		}
		m.renewInterval = interval
		return nil
	}
}

// WithRetries sets the attempt budget for AcquireWithRetries.
func WithRetries(retries int, delay time.Duration) Option {
	return func(m *Manager) error {
		if retries < 0 || delay < 0 {
			return ErrInvalidRetries
		}
		m.retries = retries
		m.retryDelay = delay
		return nil
	}
}

// NewManager creates a lease manager over the given store.
func NewManager(store storage.LeaseStore, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	m := &Manager{
		store:         store,
		logger:        slog.Default(),
		ttl:           DefaultTTL,
		renewInterval: DefaultRenewInterval,
		retries:       DefaultRetries,
		retryDelay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TryAcquire makes a single acquisition attempt. On success it returns a
// handle with an active renewal loop; otherwise (nil, false, nil).
func (m *Manager) TryAcquire(ctx context.Context, key, owner string) (*Handle, bool, error) {
	ok, err := m.store.TryAcquire(ctx, key, owner, m.ttl)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	m.logger.Debug("lease acquired", "key", key, "owner", owner, "ttl", m.ttl)
	return m.newHandle(key, owner), true, nil
}

// AcquireWithRetries retries TryAcquire up to the configured retry budget,
// pausing between attempts. Used for "someone might be finishing up" races.
func (m *Manager) AcquireWithRetries(ctx context.Context, key, owner string) (*Handle, bool, error) {
	for attempt := 0; ; attempt++ {
		handle, ok, err := m.TryAcquire(ctx, key, owner)
		if err != nil || ok {
			return handle, ok, err
		}
		if attempt >= m.retries {
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
}

// Acquire blocks until the lease is acquired or the context is done.
func (m *Manager) Acquire(ctx context.Context, key, owner string) (*Handle, error) {
	for {
		handle, ok, err := m.TryAcquire(ctx, key, owner)
		if err != nil {
			return nil, err
		}
		if ok {
			return handle, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryDelay):
		}
	}
}

// Status returns the current lease for key along with its remaining TTL.
// Returns storage.ErrNotFound if no lease exists.
func (m *Manager) Status(ctx context.Context, key string) (*core.Lease, time.Duration, error) {
	lease, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	remaining := time.Until(lease.ExpiresAt)
	if remaining < 0 {
		remaining = 0
	}
	return lease, remaining, nil
}
