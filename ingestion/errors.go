package ingestion

import "errors"

var (
	// ErrSourceRepositoryRequired is returned when a source repository is not provided.
	ErrSourceRepositoryRequired = errors.New("source repository required")

	// ErrRowRepositoryRequired is returned when a row repository is not provided.
	ErrRowRepositoryRequired = errors.New("row repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrLeaseManagerRequired is returned when a lease manager is not provided.
	ErrLeaseManagerRequired = errors.New("lease manager required")

	// ErrInvalidBatchSize is returned for a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrEmptySource is returned when a source file has no header row.
	ErrEmptySource = errors.New("source file is empty")
)
