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

// Package registry manages a process's tool set: registration with explicit
// lifecycle states, concurrent initialization with first-failure cancellation,
// bounded invocation slots per tool, cancellable call tracking and
// fire-and-forget event listeners.
//
// Readiness is advisory by default: callers inspect GetStatus and decide for
// themselves whether to invoke a not-ready tool. Construct the registry with
// WithEnforceReadiness to have AcquireSlot reject such calls instead.
//
// Per-tool concurrency uses a buffered-channel limiter that is rebuilt
// whenever the limit changes; remaining capacity after a change is
// max(limit - running, 0), so in-flight calls are never starved and their
// releases drain the reserved capacity as they finish.
package registry
