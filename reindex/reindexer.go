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

package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of rows to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of rows)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes a reindex run.
type Stats struct {
	// Total is the number of Failed rows found at the start of the run.
	Total int

	// Recovered is the number of rows successfully re-embedded and re-indexed.
	Recovered int

	// StillFailed is the number of rows that failed again.
	StillFailed int
}

// Reindexer retries artifact production for rows whose embedding or index
// write previously failed.
type Reindexer struct {
	rowRepo   storage.RowRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *FailedRowIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(rowRepo storage.RowRepository, index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if rowRepo == nil {
		return nil, ErrRowRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		rowRepo:   rowRepo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(rowRepo, index, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewFailedRowIterator(rowRepo, config.BatchSize),
	}, nil
}

// Run retries every row currently marked Failed. Rows that fail again stay
// Failed with a fresh error and are reported in the stats; only storage errors
// and context cancellation abort the run.
func (r *Reindexer) Run(ctx context.Context) (*Stats, error) {
	total, err := r.iterator.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting failed rows: %w", err)
	}

	stats := &Stats{Total: total}
	if total == 0 {
		fmt.Fprintf(r.progress, "No failed rows to reindex\n")
		return stats, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d failed rows (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(rows []*core.Row) error {
		recovered, err := r.processor.Process(ctx, rows)
		if err != nil {
			return err
		}

		stats.Recovered += recovered
		stats.StillFailed += len(rows) - recovered

		processed += len(rows)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return stats, err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Recovered %d/%d rows in %v (%d still failed)\n",
		stats.Recovered, stats.Total, elapsed.Round(time.Second), stats.StillFailed)

	return stats, nil
}
