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

package rowvec

import (
	"io"
	"log/slog"

	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/ai/openai"
	"github.com/rowvec/rowvec/dispatch"
	"github.com/rowvec/rowvec/ingestion"
	"github.com/rowvec/rowvec/lease"
	"github.com/rowvec/rowvec/registry"
	"github.com/rowvec/rowvec/reindex"
	"github.com/rowvec/rowvec/storage"
	"github.com/rowvec/rowvec/storage/badger"
	"github.com/rowvec/rowvec/tools/csvrag"
	"github.com/rowvec/rowvec/tools/weather"
)

// Runtime wires the whole system together: one badger backend under the
// checkpoint repositories, lease store and vector index, an embedder, a lease
// manager, the tool registry and the dispatcher. Components that belong to a
// single operation (pipeline, orchestrator, reindexer) are built on demand
// through factory methods.
type Runtime struct {
	backend    *badger.Backend
	sourceRepo storage.SourceRepository
	rowRepo    storage.RowRepository
	leaseStore storage.LeaseStore
	index      storage.VectorIndex
	embedder   ai.Embedder
	leases     *lease.Manager
	registry   *registry.Registry
	queue      *dispatch.LocalQueue
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) RuntimeOption {
	return func(o *runtimeOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder, bypassing the OpenAI-compatible client.
func WithEmbedder(embedder ai.Embedder) RuntimeOption {
	return func(o *runtimeOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the backend in memory, ignoring the file path.
func WithInMemory() RuntimeOption {
	return func(o *runtimeOptions) {
		o.inMemory = true
	}
}

// WithRuntimeLogger sets the logger.
func WithRuntimeLogger(logger *slog.Logger) RuntimeOption {
	return func(o *runtimeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRuntime opens the backend at filePath and builds every shared component.
func NewRuntime(filePath string, opts ...RuntimeOption) (*Runtime, error) {
	options := &runtimeOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	sourceRepo, err := badger.NewSourceRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	rowRepo := badger.NewRowRepository(backend)
	leaseStore := badger.NewLeaseStore(backend)
	index := badger.NewVectorIndex(backend)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			sourceRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	leases, err := lease.NewManager(leaseStore, lease.WithLogger(options.logger))
	if err != nil {
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	reg, err := registry.New(registry.WithLogger(options.logger))
	if err != nil {
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	queue, err := dispatch.NewLocalQueue(dispatch.WithQueueLogger(options.logger))
	if err != nil {
		reg.Close()
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	// Ingestion mutates shared state and goes through the queue with an
	// idempotency lease; weather stays in-process.
	dispatcher, err := dispatch.New(reg, leases,
		dispatch.WithQueue(queue),
		dispatch.WithVenue(csvrag.ToolName, dispatch.VenueQueued),
		dispatch.WithVenue(weather.ToolName, dispatch.VenueLocal),
		dispatch.WithLogger(options.logger),
	)
	if err != nil {
		queue.Close()
		reg.Close()
		sourceRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Runtime{
		backend:    backend,
		sourceRepo: sourceRepo,
		rowRepo:    rowRepo,
		leaseStore: leaseStore,
		index:      index,
		embedder:   embedder,
		leases:     leases,
		registry:   reg,
		queue:      queue,
		dispatcher: dispatcher,
		logger:     options.logger,
	}, nil
}

// Close releases every component. The registry and queue go first so no call
// is in flight when the storage layer shuts down.
func (r *Runtime) Close() error {
	r.registry.Close()
	r.queue.Close()

	if err := r.rowRepo.Close(); err != nil {
		r.logger.Error("error closing row repository", "err", err)
		return err
	}
	if err := r.sourceRepo.Close(); err != nil {
		r.logger.Error("error closing source repository", "err", err)
		return err
	}
	if err := r.backend.Close(); err != nil {
		r.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SourceRepository returns the source checkpoint repository.
func (r *Runtime) SourceRepository() storage.SourceRepository {
	return r.sourceRepo
}

// RowRepository returns the row repository.
func (r *Runtime) RowRepository() storage.RowRepository {
	return r.rowRepo
}

// VectorIndex returns the vector index.
func (r *Runtime) VectorIndex() storage.VectorIndex {
	return r.index
}

// Embedder returns the configured embedder.
func (r *Runtime) Embedder() ai.Embedder {
	return r.embedder
}

// Leases returns the lease manager.
func (r *Runtime) Leases() *lease.Manager {
	return r.leases
}

// Registry returns the tool registry.
func (r *Runtime) Registry() *registry.Registry {
	return r.registry
}

// Dispatcher returns the venue-routing dispatcher.
func (r *Runtime) Dispatcher() *dispatch.Dispatcher {
	return r.dispatcher
}

// NewIngestionPipeline builds a pipeline on the runtime's shared components.
func (r *Runtime) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(r.sourceRepo, r.rowRepo, r.index, r.embedder, opts...)
}

// NewOrchestrator builds an ingestion orchestrator with its own pipeline.
func (r *Runtime) NewOrchestrator(opts ...ingestion.OrchestratorOption) (*ingestion.Orchestrator, error) {
	pipeline, err := r.NewIngestionPipeline()
	if err != nil {
		return nil, err
	}
	return ingestion.NewOrchestrator(r.sourceRepo, pipeline, r.leases, opts...)
}

// NewQueryManager builds a similarity query manager.
func (r *Runtime) NewQueryManager() (*csvrag.QueryManager, error) {
	return csvrag.NewQueryManager(r.rowRepo, r.index, r.embedder, r.logger)
}

// NewReindexer builds a reindexer for failed rows.
func (r *Runtime) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(r.rowRepo, r.index, r.embedder, config, progress)
}

// RegisterTools registers the standard tool set (csv_rag and weather) in the
// runtime's registry. Call InitializeAll on the registry afterwards.
func (r *Runtime) RegisterTools() error {
	orchestrator, err := r.NewOrchestrator()
	if err != nil {
		return err
	}
	queries, err := r.NewQueryManager()
	if err != nil {
		return err
	}
	ragTool, err := csvrag.NewTool(orchestrator, queries, r.logger)
	if err != nil {
		return err
	}

	if err := r.registry.Register(ragTool); err != nil {
		return err
	}
	return r.registry.Register(weather.NewTool(weather.WithLogger(r.logger)))
}
