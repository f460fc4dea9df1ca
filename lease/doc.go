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

// Package lease provides named, owned, TTL-bounded mutual exclusion across
// processes sharing a storage.LeaseStore.
//
// A Manager acquires leases and returns a Handle per held lease. The handle
// renews the lease in the background and releases it with an owner-checked
// compare-and-delete. Failing to acquire is a coordination outcome, not an
// error; if a holder crashes, its lease simply expires and another process
// takes over.
package lease
