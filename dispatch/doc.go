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

// Package dispatch routes tool calls to an execution venue. Routing is a
// static per-tool policy: a tool either runs locally on the caller's
// goroutine or is handed to a TaskQueue with soft and hard time limits.
//
// Queued calls are guarded by an idempotency lease derived from the tool
// name and its arguments. A submission that finds the lease already held
// does not error and does not run twice; it returns a duplicate Result
// naming the in-flight owner and the lease time remaining. Both venues run
// under the registry's per-tool slot accounting and call tracking, so
// concurrency limits and cancellation behave identically regardless of
// where the call executes.
package dispatch
