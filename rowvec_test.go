package rowvec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowvec/rowvec/ai/mock"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := NewRuntime("", WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestNewRuntime(t *testing.T) {
	t.Run("create on disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "test_db")
		rt, err := NewRuntime(dir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		require.NotNil(t, rt)
		defer rt.Close()

		assert.NotNil(t, rt.SourceRepository())
		assert.NotNil(t, rt.RowRepository())
		assert.NotNil(t, rt.VectorIndex())
		assert.NotNil(t, rt.Embedder())
		assert.NotNil(t, rt.Leases())
		assert.NotNil(t, rt.Registry())
		assert.NotNil(t, rt.Dispatcher())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

		rt, err := NewRuntime(tmpFile, WithEmbedder(mock.NewMockEmbedder()))
		assert.Error(t, err)
		assert.Nil(t, rt)
	})
}

func TestRuntime_Close(t *testing.T) {
	rt, err := NewRuntime("", WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	assert.NoError(t, rt.Close())
}

func TestRuntime_FactoryMethods(t *testing.T) {
	rt := newTestRuntime(t)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := rt.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("can create orchestrator", func(t *testing.T) {
		orchestrator, err := rt.NewOrchestrator()
		require.NoError(t, err)
		require.NotNil(t, orchestrator)
	})

	t.Run("can create query manager", func(t *testing.T) {
		queries, err := rt.NewQueryManager()
		require.NoError(t, err)
		require.NotNil(t, queries)
	})

	t.Run("can create reindexer", func(t *testing.T) {
		reindexer, err := rt.NewReindexer(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, reindexer)
	})
}

func TestRuntime_RegisterTools(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	require.NoError(t, rt.RegisterTools())

	infos := rt.Registry().List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Equal(t, []string{"csv_rag", "weather"}, names)

	require.NoError(t, rt.Registry().InitializeAll(ctx, 0))

	status := rt.Registry().GetStatus()
	assert.True(t, status.AllReady)
}

func TestRuntime_EndToEnd(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()

	require.NoError(t, rt.RegisterTools())
	require.NoError(t, rt.Registry().InitializeAll(ctx, 0))

	folder := t.TempDir()
	csv := filepath.Join(folder, "crops.csv")
	require.NoError(t, os.WriteFile(csv, []byte("name,season\nrye,winter\nmaize,summer\n"), 0o644))

	// Ingest goes through the dispatcher's queued venue.
	result, err := rt.Dispatcher().Invoke(ctx, "csv_rag", map[string]any{"op": "ingest", "folder": folder})
	require.NoError(t, err)
	require.Equal(t, "ok", result.Status, result.Err)

	// Query straight through the tool.
	out, err := rt.Dispatcher().Invoke(ctx, "csv_rag", map[string]any{"query": "name: rye | season: winter", "top_k": 1})
	require.NoError(t, err)
	require.Equal(t, "ok", out.Status, out.Err)

	hits := out.Value.([]map[string]any)
	require.Len(t, hits, 1)
	assert.Equal(t, "name: rye | season: winter", hits[0]["content"])
}
