package csvrag

import "errors"

var (
	// ErrRowRepositoryRequired is returned when a row repository is not provided.
	ErrRowRepositoryRequired = errors.New("row repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrOrchestratorRequired is returned when an ingestion orchestrator is not provided.
	ErrOrchestratorRequired = errors.New("ingestion orchestrator required")

	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrFolderRequired is returned when an ingest call has no folder argument.
	ErrFolderRequired = errors.New("folder argument required")

	// ErrUnknownOp is returned for an unrecognized op argument.
	ErrUnknownOp = errors.New("unknown op")
)
