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

package reindex

import (
	"context"

	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

const (
	// DefaultBatchSize is the default number of rows handled per batch.
	DefaultBatchSize = 100
)

// FailedRowIterator iterates over rows with a Failed artifact status in batches.
type FailedRowIterator struct {
	rowRepo   storage.RowRepository
	batchSize int
}

// NewFailedRowIterator creates a new iterator.
// batchSize: number of rows per batch (must be > 0)
func NewFailedRowIterator(rowRepo storage.RowRepository, batchSize int) *FailedRowIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &FailedRowIterator{
		rowRepo:   rowRepo,
		batchSize: batchSize,
	}
}

// Count returns the number of rows currently marked Failed.
func (it *FailedRowIterator) Count(ctx context.Context) (int, error) {
	rows, err := it.rowRepo.GetRowsByArtifactStatus(ctx, core.ArtifactStatusFailed, 0)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ForEach iterates over all Failed rows, calling fn for each batch.
// The failed set is snapshotted up front, so rows that fail again during this
// run are not revisited. Iteration stops on the first error from fn; context
// cancellation is checked between batches.
func (it *FailedRowIterator) ForEach(ctx context.Context, fn func([]*core.Row) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rows, err := it.rowRepo.GetRowsByArtifactStatus(ctx, core.ArtifactStatusFailed, 0)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	for i := 0; i < len(rows); i += it.batchSize {
		end := i + it.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		if err := fn(rows[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
