package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// SourceRepository implements storage.SourceRepository for BadgerDB.
type SourceRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) (storage.SourceRepository, error) {
	idSeq, err := backend.GetSequence(sourceIDSeq)
	if err != nil {
		return nil, err
	}

	return &SourceRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SourceRepository) Close() error {
	return r.idSeq.Release()
}

// GetSourceByPath retrieves a source file record by its normalized path.
func (r *SourceRepository) GetSourceByPath(ctx context.Context, path string) (*core.SourceFile, error) {
	var result *core.SourceFile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSourcePathKey(path))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readSourceFile(tx, makeSourceKey(id))
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

// CreateSource inserts a new source file record.
func (r *SourceRepository) CreateSource(ctx context.Context, file *core.SourceFile) (*core.SourceFile, error) {
	if err := core.ValidateSourceFile(file); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		file.Id = core.ID(nextID)

		file.InsertedAt = time.Now().UTC()
		file.UpdatedAt = file.InsertedAt

		if err := tx.Set(makeSourceKey(file.Id), storage.MarshalSourceFile(file)); err != nil {
			return err
		}
		if err := tx.Set(makeSourcePathKey(file.Path), storage.MarshalID(file.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return file, err
}

// ResetSource stores a new fingerprint and resets progress for re-ingestion.
func (r *SourceRepository) ResetSource(ctx context.Context, id core.ID, fingerprint string) (*core.SourceFile, error) {
	var result *core.SourceFile
	err := r.mutateSource(id, func(file *core.SourceFile) error {
		file.Fingerprint = fingerprint
		file.Status = core.SourceStatusPending
		file.ResumeOffset = 0
		file.TotalRows = 0
		result = file
		return nil
	})
	return result, err
}

// MarkSourceDone sets Status to Done and records the total row count.
func (r *SourceRepository) MarkSourceDone(ctx context.Context, id core.ID, totalRows uint64) error {
	return r.mutateSource(id, func(file *core.SourceFile) error {
		file.Status = core.SourceStatusDone
		file.TotalRows = totalRows
		file.ResumeOffset = totalRows
		return nil
	})
}

// MarkSourceFailed sets Status to Failed, keeping the given resume offset.
func (r *SourceRepository) MarkSourceFailed(ctx context.Context, id core.ID, resumeOffset uint64) error {
	return r.mutateSource(id, func(file *core.SourceFile) error {
		file.Status = core.SourceStatusFailed
		if resumeOffset > file.ResumeOffset {
			file.ResumeOffset = resumeOffset
		}
		return nil
	})
}

// AdvanceResumeOffset moves the resume offset forward. The offset is monotonic.
func (r *SourceRepository) AdvanceResumeOffset(ctx context.Context, id core.ID, offset uint64) error {
	return r.mutateSource(id, func(file *core.SourceFile) error {
		if offset < file.ResumeOffset {
			return storage.ErrOffsetRewind
		}
		file.ResumeOffset = offset
		return nil
	})
}

// GetSource retrieves a source file record by ID.
func (r *SourceRepository) GetSource(ctx context.Context, id core.ID) (*core.SourceFile, error) {
	var result *core.SourceFile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSourceFile(tx, makeSourceKey(id))
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

// ListSources returns all source file records.
func (r *SourceRepository) ListSources(ctx context.Context) ([]*core.SourceFile, error) {
	var results []*core.SourceFile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sourceRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var file *core.SourceFile
			err := iter.Item().Value(func(val []byte) error {
				var err error
				file, err = storage.UnmarshalSourceFile(val)
				return err
			})
			if err != nil {
				return err
			}
			if file != nil {
				results = append(results, file)
			}
		}
		return nil
	}, false)
	return results, err
}

// mutateSource reads a source record, applies fn, bumps UpdatedAt and writes
// it back in one transaction.
func (r *SourceRepository) mutateSource(id core.ID, fn func(*core.SourceFile) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(id)
		file, err := readSourceFile(tx, key)
		if err != nil {
			return err
		}
		if file == nil {
			return storage.ErrNotFound
		}

		if err := fn(file); err != nil {
			return err
		}
		file.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSourceFile(file)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSourceFile reads a source record from the transaction.
func readSourceFile(tx *badger.Txn, key []byte) (*core.SourceFile, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var file *core.SourceFile
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		file, unmarshalErr = storage.UnmarshalSourceFile(val)
		return unmarshalErr
	})
	return file, err
}
