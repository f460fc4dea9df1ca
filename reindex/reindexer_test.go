package reindex_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowvec/rowvec/ai/mock"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/ingestion"
	"github.com/rowvec/rowvec/reindex"
	"github.com/rowvec/rowvec/storage"
	badgerstore "github.com/rowvec/rowvec/storage/badger"
)

type reindexFixture struct {
	rowRepo  storage.RowRepository
	index    storage.VectorIndex
	embedder *mock.MockEmbedder
}

func newReindexFixture(t *testing.T) *reindexFixture {
	t.Helper()

	_, rowRepo, _, index, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return &reindexFixture{
		rowRepo:  rowRepo,
		index:    index,
		embedder: mock.NewMockEmbedder(),
	}
}

func (f *reindexFixture) config() *reindex.Config {
	return &reindex.Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

// seedFailedRows inserts n rows and marks them all Failed.
func (f *reindexFixture) seedFailedRows(t *testing.T, n int) []*core.Row {
	t.Helper()
	ctx := context.Background()

	rows := make([]*core.Row, n)
	fingerprints := make([]string, n)
	for i := range rows {
		fields := core.NormalizeFields(map[string]string{"name": fmt.Sprintf("r%d", i+1)})
		rows[i] = &core.Row{
			SourceId:    1,
			Position:    uint64(i + 1),
			Fields:      fields,
			Content:     core.RowContent(fields),
			Fingerprint: core.RowFingerprint(fields),
		}
		fingerprints[i] = rows[i].Fingerprint
	}

	_, err := f.rowRepo.UpsertRows(ctx, rows)
	require.NoError(t, err)
	require.NoError(t, f.rowRepo.MarkRowsFailed(ctx, fingerprints, "embedding: host unreachable"))

	stored, err := f.rowRepo.GetRowsByArtifactStatus(ctx, core.ArtifactStatusFailed, 0)
	require.NoError(t, err)
	require.Len(t, stored, n)
	return stored
}

func TestNewReindexer_Validation(t *testing.T) {
	f := newReindexFixture(t)

	_, err := reindex.NewReindexer(nil, f.index, f.embedder, nil, nil)
	assert.ErrorIs(t, err, reindex.ErrRowRepositoryRequired)

	_, err = reindex.NewReindexer(f.rowRepo, nil, f.embedder, nil, nil)
	assert.ErrorIs(t, err, reindex.ErrVectorIndexRequired)

	_, err = reindex.NewReindexer(f.rowRepo, f.index, nil, nil, nil)
	assert.ErrorIs(t, err, reindex.ErrEmbedderRequired)
}

func TestReindexer_NoFailedRows(t *testing.T) {
	f := newReindexFixture(t)

	var buf bytes.Buffer
	r, err := reindex.NewReindexer(f.rowRepo, f.index, f.embedder, f.config(), &buf)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Contains(t, buf.String(), "No failed rows")
	assert.Zero(t, f.embedder.CallCount())
}

func TestReindexer_RecoversFailedRows(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()
	seeded := f.seedFailedRows(t, 5)

	var buf bytes.Buffer
	r, err := reindex.NewReindexer(f.rowRepo, f.index, f.embedder, f.config(), &buf)
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.Recovered)
	assert.Zero(t, stats.StillFailed)

	for _, row := range seeded {
		stored, err := f.rowRepo.GetRow(ctx, row.Id)
		require.NoError(t, err)
		assert.Equal(t, core.ArtifactStatusDone, stored.ArtifactStatus)
		assert.Equal(t, ingestion.IndexID(row.Id), stored.ArtifactId)
		assert.Empty(t, stored.ArtifactError)
	}

	// Each recovered row is queryable through the index.
	vector, err := f.embedder.EmbedText(ctx, seeded[0].Content)
	require.NoError(t, err)
	matches, err := f.index.Query(ctx, vector, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, seeded[0].Fingerprint, matches[0].Metadata["fingerprint"])

	assert.Contains(t, buf.String(), "Recovered 5/5")
}

func TestReindexer_TransientFailureRecoveredByRetry(t *testing.T) {
	f := newReindexFixture(t)
	f.seedFailedRows(t, 2)

	attempts := 0
	f.embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection reset")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	r, err := reindex.NewReindexer(f.rowRepo, f.index, f.embedder, f.config(), nil)
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Recovered)
	assert.Equal(t, 2, attempts)
}

func TestReindexer_PersistentFailureStaysFailed(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()
	seeded := f.seedFailedRows(t, 3)

	f.embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model not found")
	}

	r, err := reindex.NewReindexer(f.rowRepo, f.index, f.embedder, f.config(), nil)
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err, "rows failing again is an outcome, not an error")
	assert.Equal(t, 3, stats.Total)
	assert.Zero(t, stats.Recovered)
	assert.Equal(t, 3, stats.StillFailed)

	for _, row := range seeded {
		stored, err := f.rowRepo.GetRow(ctx, row.Id)
		require.NoError(t, err)
		assert.Equal(t, core.ArtifactStatusFailed, stored.ArtifactStatus)
		assert.Contains(t, stored.ArtifactError, "model not found", "the error text is refreshed")
	}
}

func TestReindexer_IndexFailureTagged(t *testing.T) {
	f := newReindexFixture(t)
	ctx := context.Background()
	seeded := f.seedFailedRows(t, 1)

	failing := &failingIndex{VectorIndex: f.index}
	r, err := reindex.NewReindexer(f.rowRepo, failing, f.embedder, f.config(), nil)
	require.NoError(t, err)

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StillFailed)

	stored, err := f.rowRepo.GetRow(ctx, seeded[0].Id)
	require.NoError(t, err)
	assert.Contains(t, stored.ArtifactError, "index:")
}

func TestReindexer_ContextCancelled(t *testing.T) {
	f := newReindexFixture(t)
	f.seedFailedRows(t, 4)

	ctx, cancel := context.WithCancel(context.Background())
	f.embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		cancel()
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1}
		}
		return vectors, nil
	}

	r, err := reindex.NewReindexer(f.rowRepo, f.index, f.embedder, f.config(), nil)
	require.NoError(t, err)

	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type failingIndex struct {
	storage.VectorIndex
}

func (f *failingIndex) Upsert(context.Context, []string, [][]float32, []map[string]string) error {
	return errors.New("write stalled")
}
