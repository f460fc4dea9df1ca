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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	rowvec "github.com/rowvec/rowvec"
	"github.com/rowvec/rowvec/ai"
	"github.com/rowvec/rowvec/dispatch"
	"github.com/rowvec/rowvec/reindex"
)

func main() {
	app := &cli.App{
		Name:  "rowvec",
		Usage: "Resumable CSV ingestion and similarity search over a tool registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Scan a folder and ingest new or changed CSV files",
				Action: ingestCommand,
				Flags: append(runtimeFlags(),
					&cli.StringFlag{
						Name:     "folder",
						Aliases:  []string{"f"},
						Usage:    "Folder to scan for CSV files",
						Required: true,
					},
				),
			},
			{
				Name:   "query",
				Usage:  "Search ingested rows by similarity",
				Action: queryCommand,
				Flags: append(runtimeFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results",
						Value: 5,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Retry embedding and indexing for rows that previously failed",
				Action: reindexCommand,
				Flags: append(runtimeFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of rows to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N rows",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "tools",
				Usage:  "Initialize the tool set and print its status",
				Action: toolsCommand,
				Flags: append(runtimeFlags(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Initialization timeout",
						Value: 30 * time.Second,
					},
				),
			},
			{
				Name:   "sources",
				Usage:  "List source file checkpoints",
				Action: sourcesCommand,
				Flags:  runtimeFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runtimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openRuntime(c *cli.Context) (*rowvec.Runtime, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	rt, err := rowvec.NewRuntime(c.String("db"), rowvec.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open runtime: %w", err)
	}
	return rt, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.RegisterTools(); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	result, err := rt.Dispatcher().Invoke(ctx, "csv_rag", map[string]any{
		"op":     "ingest",
		"folder": c.String("folder"),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	switch result.Status {
	case dispatch.StatusDuplicate:
		fmt.Fprintf(os.Stderr, "Ingestion already in progress (owner %s, %s remaining)\n",
			result.Owner, result.Remaining.Round(time.Second))
		return nil
	case dispatch.StatusError:
		return fmt.Errorf("ingestion failed: %s", result.Err)
	}

	fmt.Fprintf(os.Stderr, "Ingestion complete: %s\n", c.String("folder"))
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	queries, err := rt.NewQueryManager()
	if err != nil {
		return err
	}

	results, err := queries.Search(ctx, c.String("query"), c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, result.Score, result.Row.Content)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer, err := rt.NewReindexer(config, os.Stderr)
	if err != nil {
		return err
	}

	if _, err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func toolsCommand(c *cli.Context) error {
	ctx := context.Background()

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.RegisterTools(); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}
	if err := rt.Registry().InitializeAll(ctx, c.Duration("timeout")); err != nil {
		fmt.Fprintf(os.Stderr, "initialization: %v\n", err)
	}

	status := rt.Registry().GetStatus()
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func sourcesCommand(c *cli.Context) error {
	ctx := context.Background()

	rt, err := openRuntime(c)
	if err != nil {
		return err
	}
	defer rt.Close()

	sources, err := rt.SourceRepository().ListSources(ctx)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No sources.")
		return nil
	}

	for _, source := range sources {
		fmt.Printf("%-40s %-8s rows=%d offset=%d\n",
			source.Path, source.Status, source.TotalRows, source.ResumeOffset)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
