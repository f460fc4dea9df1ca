package badger

import (
	"context"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// VectorIndex implements storage.VectorIndex on BadgerDB with a brute-force
// cosine scan. Fine for local corpora; swap in an ANN index if entry counts
// grow past a few hundred thousand.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a new VectorIndex.
func NewVectorIndex(backend *Backend) storage.VectorIndex {
	return &VectorIndex{backend: backend}
}

// Upsert writes vectors with their metadata. Writing an existing ID replaces
// its vector and metadata.
func (v *VectorIndex) Upsert(ctx context.Context, ids []string, vectors [][]float32, metadata []map[string]string) error {
	if len(ids) != len(vectors) || len(ids) != len(metadata) {
		return storage.ErrSerializationFailed
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		for i, id := range ids {
			entry := &core.IndexEntry{
				Id:       id,
				Vector:   vectors[i],
				Metadata: metadata[i],
			}
			if err := tx.Set(makeIndexEntryKey(id), storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query returns the k entries most similar to the vector, ranked by
// descending cosine similarity.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]core.IndexMatch, error) {
	var matches []core.IndexMatch

	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || len(entry.Vector) == 0 {
				continue
			}

			matches = append(matches, core.IndexMatch{
				Id:       entry.Id,
				Score:    cosineSimilarity(vector, entry.Vector),
				Metadata: entry.Metadata,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by score descending
	slices.SortFunc(matches, func(a, b core.IndexMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes entries by ID. Missing IDs are ignored.
func (v *VectorIndex) Delete(ctx context.Context, ids ...string) error {
	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeIndexEntryKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// Returns 0 for zero-magnitude or mismatched-length inputs.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
