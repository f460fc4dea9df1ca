package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

const (
	// DefaultBatchSize is the number of rows handled per batch.
	DefaultBatchSize = 64

	// indexEntity prefixes every vector index ID written by the pipeline.
	indexEntity = "row"
)

// Pipeline turns a row stream into upserted, embedded and indexed rows,
// checkpointing the source's resume offset after every batch.
//
// Failures inside one batch (embedding or index write) mark only that batch's
// rows Failed and never abort the file: the offset still advances so a restart
// resumes after the last attempted batch.
type Pipeline struct {
	sourceRepo storage.SourceRepository
	rowRepo    storage.RowRepository
	index      storage.VectorIndex
	embedder   ai.Embedder
	batchSize  int
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of rows per batch.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	sourceRepo storage.SourceRepository,
	rowRepo storage.RowRepository,
	index storage.VectorIndex,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if sourceRepo == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if rowRepo == nil {
		return nil, ErrRowRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	p := &Pipeline{
		sourceRepo: sourceRepo,
		rowRepo:    rowRepo,
		index:      index,
		embedder:   embedder,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Process consumes the stream for one source file, skipping rows at or below
// the stored resume offset. Returns the highest position seen in the stream
// (the file's total row count when the stream ran to the end).
//
// Storage errors abort the file; per-batch embedding and index failures do not.
func (p *Pipeline) Process(ctx context.Context, source *core.SourceFile, stream RowStream) (uint64, error) {
	var (
		total uint64
		batch = make([]*core.Row, 0, p.batchSize)
	)

	for {
		row, err := stream.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return total, err
		}

		total = row.Position
		if row.Position <= source.ResumeOffset {
			continue
		}

		row.SourceId = source.Id
		batch = append(batch, row)
		if len(batch) == p.batchSize {
			if err := p.processBatch(ctx, source, batch); err != nil {
				return total, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := p.processBatch(ctx, source, batch); err != nil {
			return total, err
		}
	}

	return total, nil
}

// processBatch runs one batch through upsert, dedupe, embed and index, then
// advances the resume offset regardless of the batch's outcome.
func (p *Pipeline) processBatch(ctx context.Context, source *core.SourceFile, batch []*core.Row) error {
	if len(batch) == 0 {
		return nil
	}
	offset := batch[len(batch)-1].Position

	ids, err := p.rowRepo.UpsertRows(ctx, batch)
	if err != nil {
		return fmt.Errorf("upserting batch ending at %d: %w", offset, err)
	}

	// Dedupe by fingerprint, first-seen text wins.
	var (
		fingerprints []string
		contents     []string
		seen         = make(map[string]bool, len(batch))
	)
	for _, row := range batch {
		if seen[row.Fingerprint] {
			continue
		}
		seen[row.Fingerprint] = true
		fingerprints = append(fingerprints, row.Fingerprint)
		contents = append(contents, row.Content)
	}

	vectors, err := p.embedder.EmbedTexts(ctx, contents)
	if err != nil {
		p.logger.Error("embedding failed for batch",
			"source", source.Path, "offset", offset, "rows", len(fingerprints), "err", err)
		if markErr := p.rowRepo.MarkRowsFailed(ctx, fingerprints, "embedding: "+err.Error()); markErr != nil {
			return markErr
		}
		return p.advance(ctx, source, offset)
	}
	if len(vectors) != len(contents) {
		p.logger.Error("embedder returned wrong vector count",
			"source", source.Path, "want", len(contents), "got", len(vectors))
		if markErr := p.rowRepo.MarkRowsFailed(ctx, fingerprints, "embedding: vector count mismatch"); markErr != nil {
			return markErr
		}
		return p.advance(ctx, source, offset)
	}

	// Index writes only for fingerprints with a known row ID; the rest are
	// skipped but still covered by the offset advance below.
	var (
		indexIds []string
		indexed  [][]float32
		metadata []map[string]string
		rowIds   []core.ID
	)
	for i, fp := range fingerprints {
		id, ok := ids[fp]
		if !ok {
			p.logger.Warn("no row id for fingerprint, skipping index write",
				"source", source.Path, "fingerprint", fp)
			continue
		}
		rowIds = append(rowIds, id)
		indexIds = append(indexIds, IndexID(id))
		indexed = append(indexed, vectors[i])
		metadata = append(metadata, map[string]string{
			"row_id":      strconv.FormatUint(uint64(id), 10),
			"fingerprint": fp,
			"source_id":   strconv.FormatUint(uint64(source.Id), 10),
		})
	}

	if len(indexIds) > 0 {
		if err := p.index.Upsert(ctx, indexIds, indexed, metadata); err != nil {
			p.logger.Error("index write failed for batch",
				"source", source.Path, "offset", offset, "err", err)
			if markErr := p.rowRepo.MarkRowsFailed(ctx, fingerprints, "index: "+err.Error()); markErr != nil {
				return markErr
			}
			return p.advance(ctx, source, offset)
		}

		if err := p.rowRepo.MarkRowsDone(ctx, rowIds, indexIds); err != nil {
			return err
		}
	}

	return p.advance(ctx, source, offset)
}

// advance moves the source's resume offset past this batch.
func (p *Pipeline) advance(ctx context.Context, source *core.SourceFile, offset uint64) error {
	if err := p.sourceRepo.AdvanceResumeOffset(ctx, source.Id, offset); err != nil {
		return fmt.Errorf("advancing resume offset to %d: %w", offset, err)
	}
	source.ResumeOffset = offset
	return nil
}

// IndexID builds the deterministic vector index ID for a row.
func IndexID(id core.ID) string {
	return fmt.Sprintf("%s:%d", indexEntity, id)
}
