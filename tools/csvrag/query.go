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

package csvrag

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/storage"
)

// DefaultTopK is the result count used when the caller does not ask for one.
const DefaultTopK = 5

// QueryManager answers similarity queries: embed the query text, rank index
// entries, then join the hits back to their stored rows.
type QueryManager struct {
	rowRepo  storage.RowRepository
	index    storage.VectorIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewQueryManager creates a query manager.
func NewQueryManager(rowRepo storage.RowRepository, index storage.VectorIndex, embedder ai.Embedder, logger *slog.Logger) (*QueryManager, error) {
	if rowRepo == nil {
		return nil, ErrRowRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &QueryManager{
		rowRepo:  rowRepo,
		index:    index,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Search returns up to topK rows most similar to the query, ordered by index
// rank. Index entries whose row is gone are skipped, not errors.
func (qm *QueryManager) Search(ctx context.Context, query string, topK int) ([]*core.QueryResult, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := qm.embedder.EmbedText(ctx, query)
	if err != nil {
		qm.logger.Error("error embedding query", "query", query, "err", err)
		return nil, err
	}

	matches, err := qm.index.Query(ctx, vector, topK)
	if err != nil {
		qm.logger.Error("error querying index", "err", err)
		return nil, err
	}
	if len(matches) == 0 {
		return []*core.QueryResult{}, nil
	}

	ids := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		id, ok := rowID(match)
		if !ok {
			qm.logger.Warn("index entry without row id metadata", "index_id", match.Id)
			continue
		}
		ids = append(ids, id)
	}

	rows, err := qm.rowRepo.GetRows(ctx, ids...)
	if err != nil {
		qm.logger.Error("error retrieving rows", "count", len(ids), "err", err)
		return nil, err
	}

	byID := make(map[core.ID]*core.Row, len(rows))
	for _, row := range rows {
		byID[row.Id] = row
	}

	// Preserve the index ranking; hits without a stored row are dropped.
	results := make([]*core.QueryResult, 0, len(matches))
	for _, match := range matches {
		id, ok := rowID(match)
		if !ok {
			continue
		}
		row, ok := byID[id]
		if !ok {
			qm.logger.Debug("row missing for index hit", "index_id", match.Id)
			continue
		}
		results = append(results, &core.QueryResult{Row: row, Score: match.Score})
	}

	return results, nil
}

// rowID reads the row ID an index entry was written with.
func rowID(match core.IndexMatch) (core.ID, bool) {
	raw, ok := match.Metadata["row_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return core.ID(id), true
}
