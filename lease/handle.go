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
	"sync"
	"time"
)

// Handle is a held lease. Its renewal loop extends the lease every renew
// interval and stops itself once ownership no longer matches, so a lease lost
// to expiry is not resurrected.
type Handle struct {
	manager *Manager
	key     string
	owner   string

	cancel      context.CancelFunc
	renewalDone chan struct{}
	releaseOnce sync.Once
}

// newHandle starts the renewal loop for an acquired lease.
func (m *Manager) newHandle(key, owner string) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		manager:     m,
		key:         key,
		owner:       owner,
		cancel:      cancel,
		renewalDone: make(chan struct{}),
	}
	go h.renewLoop(ctx)
	return h
}

// Key returns the lease key.
func (h *Handle) Key() string { return h.key }

// Owner returns the owner this handle acquired the lease as.
func (h *Handle) Owner() string { return h.owner }

// Release stops the renewal loop and deletes the lease if still owned.
// A non-owner delete or a double release is logged, not fatal.
func (h *Handle) Release(ctx context.Context) {
	h.releaseOnce.Do(func() {
		h.cancel()
		<-h.renewalDone

		ok, err := h.manager.store.Release(ctx, h.key, h.owner)
		if err != nil {
			h.manager.logger.Error("lease release failed", "key", h.key, "owner", h.owner, "err", err)
			return
		}
		if !ok {
			h.manager.logger.Warn("lease no longer held at release", "key", h.key, "owner", h.owner)
			return
		}
		h.manager.logger.Debug("lease released", "key", h.key, "owner", h.owner)
	})
}

// renewLoop extends the lease until the handle is released or ownership is lost.
func (h *Handle) renewLoop(ctx context.Context) {
	defer close(h.renewalDone)

	ticker := time.NewTicker(h.manager.renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := h.manager.store.Renew(ctx, h.key, h.owner, h.manager.ttl)
			if err != nil {
				// Transient store trouble: keep trying until the TTL decides.
				h.manager.logger.Error("lease renewal failed", "key", h.key, "owner", h.owner, "err", err)
				continue
			}
			if !ok {
				h.manager.logger.Warn("lease ownership lost, stopping renewal", "key", h.key, "owner", h.owner)
				return
			}
			h.manager.logger.Debug("lease renewed", "key", h.key, "owner", h.owner)
		}
	}
}
