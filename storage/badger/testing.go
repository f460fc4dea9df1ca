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

package badger

import "github.com/rowvec/rowvec/storage"

// NewMemoryRepositories creates in-memory source and row repositories for testing.
// Returns sourceRepo, rowRepo, backend, and error.
// Caller must close both repos and backend when done.
func NewMemoryRepositories() (storage.SourceRepository, storage.RowRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	sourceRepo, err := NewSourceRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	rowRepo := NewRowRepository(backend)

	return sourceRepo, rowRepo, backend, nil
}

// NewMemoryStores creates every store in this package on one in-memory
// backend. Caller must close the source repo and backend when done.
func NewMemoryStores() (storage.SourceRepository, storage.RowRepository, storage.LeaseStore, storage.VectorIndex, *Backend, error) {
	sourceRepo, rowRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	return sourceRepo, rowRepo, NewLeaseStore(backend), NewVectorIndex(backend), backend, nil
}
