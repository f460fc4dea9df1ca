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
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rowvec/rowvec/core"
	"github.com/rowvec/rowvec/ingestion"
	"github.com/rowvec/rowvec/registry"
)

// ToolName is the registry name of the CSV RAG tool.
const ToolName = "csv_rag"

// Tool is the CSV RAG tool: folder ingestion and similarity queries over the
// ingested rows, behind the uniform registry adapter.
type Tool struct {
	orchestrator *ingestion.Orchestrator
	queries      *QueryManager
	logger       *slog.Logger
}

var _ registry.Tool = (*Tool)(nil)

// NewTool creates the CSV RAG tool.
func NewTool(orchestrator *ingestion.Orchestrator, queries *QueryManager, logger *slog.Logger) (*Tool, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if queries == nil {
		return nil, ErrRowRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Tool{
		orchestrator: orchestrator,
		queries:      queries,
		logger:       logger,
	}, nil
}

// Name returns the registry name.
func (t *Tool) Name() string { return ToolName }

// Description returns the catalog entry.
func (t *Tool) Description() string {
	return "Ingests CSV folders and searches the ingested rows via embeddings and vector similarity."
}

// Initialize prepares the tool. Ingestion is never started here; concurrent
// ingest runs are already serialized by the orchestrator's lease, so startup
// only has to report readiness.
func (t *Tool) Initialize(_ context.Context) error {
	t.logger.Info("csv_rag tool ready", "lease_key", t.orchestrator.LeaseKey())
	return nil
}

// Run executes one invocation. The op argument selects the operation:
// "query" (default) searches, "ingest" scans and ingests a folder.
func (t *Tool) Run(ctx context.Context, args map[string]any) (any, error) {
	switch op := stringArg(args, "op"); op {
	case "", "query":
		return t.runQuery(ctx, args)
	case "ingest":
		return t.runIngest(ctx, args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
}

func (t *Tool) runQuery(ctx context.Context, args map[string]any) (any, error) {
	query := stringArg(args, "query")
	topK := intArg(args, "top_k")

	results, err := t.queries.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(results))
	for _, result := range results {
		out = append(out, map[string]any{
			"id":          strconv.FormatUint(uint64(result.Row.Id), 10),
			"fingerprint": result.Row.Fingerprint,
			"content":     result.Row.Content,
			"fields":      result.Row.Fields,
			"score":       result.Score,
		})
	}
	return out, nil
}

func (t *Tool) runIngest(ctx context.Context, args map[string]any) (any, error) {
	folder := stringArg(args, "folder")
	if folder == "" {
		return nil, ErrFolderRequired
	}

	if err := t.orchestrator.Ingest(ctx, folder); err != nil {
		return nil, err
	}
	return map[string]any{"status": "ok", "folder": folder}, nil
}

// Sources lists the checkpoint records of every known source file.
func (t *Tool) Sources(ctx context.Context) ([]*core.SourceFile, error) {
	return t.orchestrator.Sources(ctx)
}

// stringArg reads a string argument, "" when absent or not a string.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads an integer argument, tolerating the float64 that JSON decoding
// produces. Returns 0 when absent or unusable.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}
