package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Row IDs are content-based; source file IDs come from a database sequence.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SourceStatus tracks the ingestion state of a source file.
type SourceStatus int

const (
	// SourceStatusPending marks a file that has not been fully ingested yet.
	SourceStatusPending SourceStatus = iota + 1
	// SourceStatusDone marks a file whose rows have all been processed.
	SourceStatusDone
	// SourceStatusFailed marks a file whose processing aborted with an error.
	SourceStatusFailed
)

// String returns the status name.
func (s SourceStatus) String() string {
	switch s {
	case SourceStatusPending:
		return "pending"
	case SourceStatusDone:
		return "done"
	case SourceStatusFailed:
		return "failed"
	}
	return "unknown"
}

// ArtifactStatus tracks the derived-artifact (embedding) state of a row.
type ArtifactStatus int

const (
	// ArtifactStatusPending marks a row whose embedding has not been attempted.
	ArtifactStatusPending ArtifactStatus = iota + 1
	// ArtifactStatusDone marks a row whose embedding is stored in the index.
	ArtifactStatusDone
	// ArtifactStatusFailed marks a row whose embedding or index write failed.
	ArtifactStatusFailed
)

// String returns the status name.
func (s ArtifactStatus) String() string {
	switch s {
	case ArtifactStatusPending:
		return "pending"
	case ArtifactStatusDone:
		return "done"
	case ArtifactStatusFailed:
		return "failed"
	}
	return "unknown"
}

// SourceFile is the checkpoint record for one external input file.
//
// ResumeOffset counts rows already attempted; it only ever advances while the
// file is being processed, and is reset to 0 when the file's fingerprint changes.
type SourceFile struct {
	Id           ID
	Path         string
	Fingerprint  string
	Status       SourceStatus
	ResumeOffset uint64
	TotalRows    uint64
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// Row is one logical record extracted from a source file.
//
// The Id is derived from the row's content fingerprint, so re-upserting the
// same field set always yields the same row.
type Row struct {
	Id             ID
	SourceId       ID
	Position       uint64 // 1-based position within the source file
	Content        string // canonical "k: v | k: v" text, also the embedding input
	Fields         map[string]string
	Fingerprint    string
	ArtifactId     string // index ID once the embedding is stored, "" otherwise
	ArtifactStatus ArtifactStatus
	ArtifactError  string
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// Lease is a named, owned, time-bounded mutual-exclusion token.
type Lease struct {
	Key       string
	Owner     string
	ExpiresAt time.Time
}

// Expired reports whether the lease has passed its expiry at the given instant.
func (l *Lease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IndexEntry is one stored vector index entry.
type IndexEntry struct {
	Id       string
	Vector   []float32
	Metadata map[string]string
}

// IndexMatch is one hit from a vector index query.
type IndexMatch struct {
	Id       string
	Score    float32
	Metadata map[string]string
}

// QueryResult is a search hit joined back to its stored row.
type QueryResult struct {
	Row   *Row
	Score float32
}
