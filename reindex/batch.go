package reindex

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/ingestion"
	"github.com/rowvec/rowvec/storage"
)

// BatchProcessor re-embeds and re-indexes batches of rows whose artifact
// production previously failed.
type BatchProcessor struct {
	rowRepo        storage.RowRepository
	index          storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(rowRepo storage.RowRepository, index storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		rowRepo:        rowRepo,
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         slog.Default(),
	}
}

// Process re-embeds a batch of rows and writes their index entries. Rows that
// fail again keep their Failed status with a fresh error; a batch that fails
// is recorded, not fatal, so the run can move on to the next batch.
// Returns the number of rows recovered.
func (bp *BatchProcessor) Process(ctx context.Context, rows []*core.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	texts := make([]string, len(rows))
	fingerprints := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
		fingerprints[i] = row.Fingerprint
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		bp.logger.Error("embedding failed after retries", "rows", len(rows), "error", err)
		return 0, bp.rowRepo.MarkRowsFailed(ctx, fingerprints, "embedding: "+err.Error())
	}
	if len(vectors) != len(texts) {
		bp.logger.Error("embedder returned wrong vector count", "want", len(texts), "got", len(vectors))
		return 0, bp.rowRepo.MarkRowsFailed(ctx, fingerprints, "embedding: vector count mismatch")
	}

	ids := make([]core.ID, len(rows))
	indexIds := make([]string, len(rows))
	metadata := make([]map[string]string, len(rows))
	for i, row := range rows {
		ids[i] = row.Id
		indexIds[i] = ingestion.IndexID(row.Id)
		metadata[i] = map[string]string{
			"row_id":      strconv.FormatUint(uint64(row.Id), 10),
			"fingerprint": row.Fingerprint,
			"source_id":   strconv.FormatUint(uint64(row.SourceId), 10),
		}
	}

	if err := bp.index.Upsert(ctx, indexIds, vectors, metadata); err != nil {
		bp.logger.Error("index write failed", "rows", len(rows), "error", err)
		return 0, bp.rowRepo.MarkRowsFailed(ctx, fingerprints, "index: "+err.Error())
	}

	if err := bp.rowRepo.MarkRowsDone(ctx, ids, indexIds); err != nil {
		return 0, fmt.Errorf("marking rows done: %w", err)
	}

	return len(rows), nil
}
