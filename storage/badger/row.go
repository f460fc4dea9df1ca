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

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// RowRepository implements storage.RowRepository for BadgerDB.
//
// Row IDs are derived from the row fingerprint, so upserts are idempotent:
// re-ingesting the same content lands on the same record.
type RowRepository struct {
	backend *Backend
}

var _ storage.RowRepository = (*RowRepository)(nil)

// NewRowRepository creates a new RowRepository.
func NewRowRepository(backend *Backend) storage.RowRepository {
	return &RowRepository{backend: backend}
}

// Close releases repository resources.
func (r *RowRepository) Close() error {
	return nil
}

// UpsertRows inserts or updates rows keyed by fingerprint.
// An existing fingerprint keeps its ID, timestamps and artifact state while
// its source, position, content and fields are refreshed.
func (r *RowRepository) UpsertRows(ctx context.Context, rows []*core.Row) (map[string]core.ID, error) {
	ids := make(map[string]core.ID, len(rows))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, row := range rows {
			id := core.IDFromContent(row.Fingerprint)
			existing, err := readRow(tx, makeRowKey(id))
			if err != nil {
				return err
			}

			record := &core.Row{
				Id:             id,
				SourceId:       row.SourceId,
				Position:       row.Position,
				Content:        row.Content,
				Fields:         row.Fields,
				Fingerprint:    row.Fingerprint,
				ArtifactStatus: core.ArtifactStatusPending,
				InsertedAt:     now,
				UpdatedAt:      now,
			}
			if err := core.ValidateRow(record); err != nil {
				return err
			}
			if existing != nil {
				record.ArtifactId = existing.ArtifactId
				record.ArtifactStatus = existing.ArtifactStatus
				record.ArtifactError = existing.ArtifactError
				record.InsertedAt = existing.InsertedAt

				// Keep the source index in sync when a row moves between files.
				if existing.SourceId != record.SourceId {
					if err := tx.Delete(makeRowSourceKey(existing.SourceId, id)); err != nil {
						return err
					}
				}
			}

			if err := tx.Set(makeRowKey(id), storage.MarshalRow(record)); err != nil {
				return err
			}
			if err := tx.Set(makeRowSourceKey(record.SourceId, id), nil); err != nil {
				return err
			}

			ids[row.Fingerprint] = id
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MarkRowsFailed records a failed artifact attempt for every row matching one
// of the fingerprints. Unknown fingerprints are skipped.
func (r *RowRepository) MarkRowsFailed(ctx context.Context, fingerprints []string, errText string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, fp := range fingerprints {
			id := core.IDFromContent(fp)
			row, err := readRow(tx, makeRowKey(id))
			if err != nil {
				return err
			}
			if row == nil {
				continue
			}

			row.ArtifactStatus = core.ArtifactStatusFailed
			row.ArtifactError = errText
			row.UpdatedAt = now

			if err := tx.Set(makeRowKey(id), storage.MarshalRow(row)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// MarkRowsDone records a stored artifact for each row. ids and artifactIds
// are parallel slices.
func (r *RowRepository) MarkRowsDone(ctx context.Context, ids []core.ID, artifactIds []string) error {
	if len(ids) != len(artifactIds) {
		return storage.ErrSerializationFailed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for i, id := range ids {
			row, err := readRow(tx, makeRowKey(id))
			if err != nil {
				return err
			}
			if row == nil {
				return storage.ErrNotFound
			}

			row.ArtifactId = artifactIds[i]
			row.ArtifactStatus = core.ArtifactStatusDone
			row.ArtifactError = ""
			row.UpdatedAt = now

			if err := tx.Set(makeRowKey(id), storage.MarshalRow(row)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRow retrieves a single row by ID.
func (r *RowRepository) GetRow(ctx context.Context, id core.ID) (*core.Row, error) {
	var result *core.Row
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRow(tx, makeRowKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRows retrieves multiple rows by ID, skipping those that don't exist.
func (r *RowRepository) GetRows(ctx context.Context, ids ...core.ID) ([]*core.Row, error) {
	results := make([]*core.Row, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			row, err := readRow(tx, makeRowKey(id))
			if err != nil {
				return err
			}
			if row != nil {
				results = append(results, row)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetRowsBySource returns all rows belonging to a source file, in row ID order.
func (r *RowRepository) GetRowsBySource(ctx context.Context, sourceId core.ID) ([]*core.Row, error) {
	var results []*core.Row
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialRowSourceKey(sourceId)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefixLen := len(opts.Prefix)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			id, ok := rowIDFromSourceKey(key, prefixLen)
			if !ok {
				continue
			}

			row, err := readRow(tx, makeRowKey(id))
			if err != nil {
				return err
			}
			if row != nil {
				results = append(results, row)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetRowsByArtifactStatus returns up to limit rows with the given artifact
// status. A limit <= 0 means no limit.
func (r *RowRepository) GetRowsByArtifactStatus(ctx context.Context, status core.ArtifactStatus, limit int) ([]*core.Row, error) {
	var results []*core.Row
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(rowRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var row *core.Row
			err := iter.Item().Value(func(val []byte) error {
				var err error
				row, err = storage.UnmarshalRow(val)
				return err
			})
			if err != nil {
				return err
			}
			if row != nil && row.ArtifactStatus == status {
				results = append(results, row)
			}
		}
		return nil
	}, false)
	return results, err
}

// readRow reads a row record from the transaction.
func readRow(tx *badger.Txn, key []byte) (*core.Row, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var row *core.Row
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		row, unmarshalErr = storage.UnmarshalRow(val)
		return unmarshalErr
	})
	return row, err
}
