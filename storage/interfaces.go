package storage

import (
	"context"
	"time"

	"github.com/rowvec/rowvec/core"
)

// SourceRepository persists checkpoint records for source files.
// Implementations must be thread-safe and support concurrent access.
type SourceRepository interface {
	// GetSourceByPath retrieves a source file record by its normalized path.
	// Returns ErrNotFound if no record exists for the path.
	GetSourceByPath(ctx context.Context, path string) (*core.SourceFile, error)

	// CreateSource inserts a new source file record.
	// Generates the ID from a sequence and sets timestamps.
	// Returns the record with ID and timestamps populated.
	CreateSource(ctx context.Context, file *core.SourceFile) (*core.SourceFile, error)

	// ResetSource records a fingerprint change: stores the new fingerprint,
	// resets Status to Pending and ResumeOffset to 0.
	// Returns ErrNotFound if the record doesn't exist.
	ResetSource(ctx context.Context, id core.ID, fingerprint string) (*core.SourceFile, error)

	// MarkSourceDone sets Status to Done and records the total row count.
	MarkSourceDone(ctx context.Context, id core.ID, totalRows uint64) error

	// MarkSourceFailed sets Status to Failed, keeping the given resume offset
	// so a later run can pick up where this one stopped.
	MarkSourceFailed(ctx context.Context, id core.ID, resumeOffset uint64) error

	// AdvanceResumeOffset moves the resume offset forward.
	// The offset is monotonic: returns ErrOffsetRewind if offset is smaller
	// than the stored value.
	AdvanceResumeOffset(ctx context.Context, id core.ID, offset uint64) error

	// GetSource retrieves a source file record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetSource(ctx context.Context, id core.ID) (*core.SourceFile, error)

	// ListSources returns all source file records.
	ListSources(ctx context.Context) ([]*core.SourceFile, error)

	// Close releases repository resources.
	Close() error
}

// RowRepository persists canonical rows keyed by content fingerprint.
// Implementations must be thread-safe and support concurrent access.
type RowRepository interface {
	// UpsertRows inserts or updates rows. The operation is idempotent on the
	// row fingerprint: an existing fingerprint keeps its stable ID while its
	// mutable fields (source, position, content) are updated.
	// Returns a fingerprint -> ID mapping for the batch.
	UpsertRows(ctx context.Context, rows []*core.Row) (map[string]core.ID, error)

	// MarkRowsFailed sets ArtifactStatus to Failed and records the error text
	// for every row matching one of the fingerprints. Unknown fingerprints are
	// skipped.
	MarkRowsFailed(ctx context.Context, fingerprints []string, errText string) error

	// MarkRowsDone sets ArtifactStatus to Done and stores the artifact ID for
	// each row. ids and artifactIds are parallel slices.
	MarkRowsDone(ctx context.Context, ids []core.ID, artifactIds []string) error

	// GetRow retrieves a single row by ID.
	// Returns ErrNotFound if the row doesn't exist.
	GetRow(ctx context.Context, id core.ID) (*core.Row, error)

	// GetRows retrieves multiple rows by their IDs.
	// Returns only the rows that exist (no error for missing rows).
	GetRows(ctx context.Context, ids ...core.ID) ([]*core.Row, error)

	// GetRowsBySource returns all rows belonging to a source file.
	GetRowsBySource(ctx context.Context, sourceId core.ID) ([]*core.Row, error)

	// GetRowsByArtifactStatus returns up to limit rows with the given artifact
	// status. A limit <= 0 means no limit.
	GetRowsByArtifactStatus(ctx context.Context, status core.ArtifactStatus, limit int) ([]*core.Row, error)

	// Close releases repository resources.
	Close() error
}

// LeaseStore is the shared backing for the lease primitive. Any store with an
// atomic set-if-absent and compare-and-delete can implement it.
type LeaseStore interface {
	// TryAcquire atomically sets key -> owner with the given TTL if the key is
	// absent or its current lease has expired. Returns true if acquired.
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Renew extends the expiry of the lease only if it is still held by owner.
	// Returns false if the lease is absent, expired, or owned by someone else.
	Renew(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Release deletes the lease only if it is held by owner (compare-and-delete).
	// Returns false if the lease is absent or owned by someone else.
	Release(ctx context.Context, key, owner string) (bool, error)

	// Get returns the current lease for key, expired or not.
	// Returns ErrNotFound if no lease exists.
	Get(ctx context.Context, key string) (*core.Lease, error)
}

// VectorIndex stores embedding vectors under opaque string IDs and answers
// similarity queries. Implementations must be thread-safe.
type VectorIndex interface {
	// Upsert writes vectors with their metadata. ids, vectors and metadata are
	// parallel slices; writing an existing ID replaces its vector and metadata.
	Upsert(ctx context.Context, ids []string, vectors [][]float32, metadata []map[string]string) error

	// Query returns the k entries most similar to the vector, ranked by
	// descending score.
	Query(ctx context.Context, vector []float32, k int) ([]core.IndexMatch, error)

	// Delete removes entries by ID. Missing IDs are ignored.
	Delete(ctx context.Context, ids ...string) error
}
