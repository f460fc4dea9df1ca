package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/lease"
	"github.com/rowvec/rowvec/storage"
)

// DefaultLeaseKey is the collection-level lease guarding a full ingest run.
const DefaultLeaseKey = "ingest:sources"

// Orchestrator runs a full ingestion pass over a folder of CSV files,
// coordinating with other processes through a collection-level lease.
//
// One bad file never aborts the run: it is marked Failed and the orchestrator
// moves on to the next file.
type Orchestrator struct {
	sourceRepo storage.SourceRepository
	pipeline   *Pipeline
	leases     *lease.Manager
	leaseKey   string
	logger     *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithLeaseKey overrides the collection-level lease key.
func WithLeaseKey(key string) OrchestratorOption {
	return func(o *Orchestrator) error {
		if key == "" {
			return core.ErrEmptyLeaseKey
		}
		o.leaseKey = key
		return nil
	}
}

// WithOrchestratorLogger sets a custom logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(
	sourceRepo storage.SourceRepository,
	pipeline *Pipeline,
	leases *lease.Manager,
	opts ...OrchestratorOption,
) (*Orchestrator, error) {
	if sourceRepo == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if leases == nil {
		return nil, ErrLeaseManagerRequired
	}

	o := &Orchestrator{
		sourceRepo: sourceRepo,
		pipeline:   pipeline,
		leases:     leases,
		leaseKey:   DefaultLeaseKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// LeaseKey returns the collection-level lease key this orchestrator uses.
func (o *Orchestrator) LeaseKey() string {
	return o.leaseKey
}

// Sources lists the checkpoint records of every known source file.
func (o *Orchestrator) Sources(ctx context.Context) ([]*core.SourceFile, error) {
	return o.sourceRepo.ListSources(ctx)
}

// GetOrRegisterSource resolves the checkpoint record for a file. A new file is
// registered Pending; a changed fingerprint resets the record to Pending with
// offset 0; an unchanged file returns its stored record untouched.
func (o *Orchestrator) GetOrRegisterSource(ctx context.Context, path string) (*core.SourceFile, error) {
	fingerprint, err := SourceFingerprint(path)
	if err != nil {
		return nil, err
	}

	source, err := o.sourceRepo.GetSourceByPath(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return o.sourceRepo.CreateSource(ctx, &core.SourceFile{
				Path:        path,
				Fingerprint: fingerprint,
				Status:      core.SourceStatusPending,
			})
		}
		return nil, err
	}

	if source.Fingerprint != fingerprint {
		o.logger.Info("source changed, resetting checkpoint", "path", path)
		return o.sourceRepo.ResetSource(ctx, source.Id, fingerprint)
	}
	return source, nil
}

// Ingest processes every CSV file in the folder under the collection lease.
// If another holder owns the lease, Ingest logs and returns nil: the other
// worker is doing the work.
func (o *Orchestrator) Ingest(ctx context.Context, folder string) error {
	owner := uuid.NewString()
	handle, ok, err := o.leases.AcquireWithRetries(ctx, o.leaseKey, owner)
	if err != nil {
		return err
	}
	if !ok {
		o.logger.Info("ingest lease held elsewhere, skipping run", "key", o.leaseKey)
		return nil
	}
	defer handle.Release(ctx)

	paths, err := filepath.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	o.logger.Info("starting ingest run", "folder", folder, "files", len(paths), "owner", owner)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.ingestFile(ctx, path); err != nil {
			o.logger.Error("source failed, continuing with next", "path", path, "err", err)
		}
	}
	return nil
}

// ingestFile runs one source through the pipeline and records the outcome on
// its checkpoint.
func (o *Orchestrator) ingestFile(ctx context.Context, path string) error {
	source, err := o.GetOrRegisterSource(ctx, path)
	if err != nil {
		return err
	}

	if source.Status == core.SourceStatusDone {
		o.logger.Debug("source unchanged and done, skipping", "path", path)
		return nil
	}

	stream, err := OpenCSV(path)
	if err != nil {
		if markErr := o.sourceRepo.MarkSourceFailed(ctx, source.Id, source.ResumeOffset); markErr != nil {
			o.logger.Error("marking source failed", "path", path, "err", markErr)
		}
		return err
	}
	defer stream.Close()

	total, err := o.pipeline.Process(ctx, source, stream)
	if err != nil {
		if markErr := o.sourceRepo.MarkSourceFailed(ctx, source.Id, source.ResumeOffset); markErr != nil {
			o.logger.Error("marking source failed", "path", path, "err", markErr)
		}
		return err
	}

	if err := o.sourceRepo.MarkSourceDone(ctx, source.Id, total); err != nil {
		return err
	}
	o.logger.Info("source ingested", "path", path, "rows", total)
	return nil
}
