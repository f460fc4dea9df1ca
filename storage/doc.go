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


// Package storage provides the storage abstraction layer for rowvec.
//
// This package defines the repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, a relational store) can be used interchangeably.
//
// # Interfaces
//
//   - SourceRepository: checkpoint records for source files
//   - RowRepository: canonical rows keyed by content fingerprint
//   - LeaseStore: atomic set-if-absent / compare-and-delete lease backing
//   - VectorIndex: embedding storage and similarity queries
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces rather than
// concrete types:
//
//	repo, err := badger.NewSourceRepository(backend) // returns storage.SourceRepository
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock implementations without modification.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Row upserts in particular are idempotent by
// construction and safe to race; workflow-level exclusion is the lease's job,
// not the repository's.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
