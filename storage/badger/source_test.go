package badger

import (
	"context"
	"testing"

	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(path string) *core.SourceFile {
	return &core.SourceFile{
		Path:        path,
		Fingerprint: "fp-" + path,
		Status:      core.SourceStatusPending,
	}
}

func TestSourceRepository_CreateAndGet(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	created, err := sourceRepo.CreateSource(ctx, newTestSource("/data/a.csv"))
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.False(t, created.InsertedAt.IsZero())
	assert.Equal(t, created.InsertedAt, created.UpdatedAt)

	got, err := sourceRepo.GetSource(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Path, got.Path)
	assert.Equal(t, created.Fingerprint, got.Fingerprint)
	assert.Equal(t, core.SourceStatusPending, got.Status)
}

func TestSourceRepository_CreateValidates(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	_, err = sourceRepo.CreateSource(context.Background(), &core.SourceFile{
		Path:   "/data/a.csv",
		Status: core.SourceStatusPending,
	})
	assert.ErrorIs(t, err, core.ErrEmptyFingerprint)
}

func TestSourceRepository_GetSourceByPath(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	created, err := sourceRepo.CreateSource(ctx, newTestSource("/data/a.csv"))
	require.NoError(t, err)

	got, err := sourceRepo.GetSourceByPath(ctx, "/data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, created.Id, got.Id)

	_, err = sourceRepo.GetSourceByPath(ctx, "/data/missing.csv")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSourceRepository_ResetSource(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	created, err := sourceRepo.CreateSource(ctx, newTestSource("/data/a.csv"))
	require.NoError(t, err)

	require.NoError(t, sourceRepo.AdvanceResumeOffset(ctx, created.Id, 42))
	require.NoError(t, sourceRepo.MarkSourceDone(ctx, created.Id, 42))

	reset, err := sourceRepo.ResetSource(ctx, created.Id, "fp-changed")
	require.NoError(t, err)
	assert.Equal(t, "fp-changed", reset.Fingerprint)
	assert.Equal(t, core.SourceStatusPending, reset.Status)
	assert.Zero(t, reset.ResumeOffset)
	assert.Zero(t, reset.TotalRows)
}

func TestSourceRepository_MarkDoneAndFailed(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	created, err := sourceRepo.CreateSource(ctx, newTestSource("/data/a.csv"))
	require.NoError(t, err)

	require.NoError(t, sourceRepo.MarkSourceDone(ctx, created.Id, 100))
	got, err := sourceRepo.GetSource(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SourceStatusDone, got.Status)
	assert.Equal(t, uint64(100), got.TotalRows)
	assert.Equal(t, uint64(100), got.ResumeOffset)

	require.NoError(t, sourceRepo.MarkSourceFailed(ctx, created.Id, 100))
	got, err = sourceRepo.GetSource(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, core.SourceStatusFailed, got.Status)
	assert.Equal(t, uint64(100), got.ResumeOffset)
}

func TestSourceRepository_AdvanceResumeOffsetMonotonic(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	created, err := sourceRepo.CreateSource(ctx, newTestSource("/data/a.csv"))
	require.NoError(t, err)

	require.NoError(t, sourceRepo.AdvanceResumeOffset(ctx, created.Id, 10))
	require.NoError(t, sourceRepo.AdvanceResumeOffset(ctx, created.Id, 10))

	err = sourceRepo.AdvanceResumeOffset(ctx, created.Id, 5)
	assert.ErrorIs(t, err, storage.ErrOffsetRewind)

	got, err := sourceRepo.GetSource(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.ResumeOffset)
}

func TestSourceRepository_ListSources(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	files, err := sourceRepo.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	for _, path := range []string{"/data/a.csv", "/data/b.csv", "/data/c.csv"} {
		_, err := sourceRepo.CreateSource(ctx, newTestSource(path))
		require.NoError(t, err)
	}

	files, err = sourceRepo.ListSources(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestSourceRepository_GetMissing(t *testing.T) {
	sourceRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sourceRepo.Close()
		backend.Close()
	}()

	_, err = sourceRepo.GetSource(context.Background(), core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
