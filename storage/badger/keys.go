package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/rowvec/rowvec/core"
)

// Key prefixes for different data types
const (
	sourceRecordPrefix = "srcrec"
	sourcePathPrefix   = "srcpath"
	sourceIDSeq        = "srcrecseq"
	rowRecordPrefix    = "rowrec"
	rowSourcePrefix    = "rowsrc"
	leasePrefix        = "lease"
	indexEntryPrefix   = "vecidx"
)

// makeSourceKey generates a key for a source file record by ID.
func makeSourceKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sourceRecordPrefix, id))
}

// makeSourcePathKey generates a key for the path index.
func makeSourcePathKey(path string) []byte {
	return []byte(sourcePathPrefix + ":" + path)
}

// makeRowKey generates a key for a row by ID.
func makeRowKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", rowRecordPrefix, id))
}

// makeRowSourceKey generates a composite key for the source index.
// Format: prefix:sourceID:rowID, fixed width BigEndian so lexicographic
// ordering matches numeric ordering.
func makeRowSourceKey(sourceID, rowID core.ID) []byte {
	prefix := rowSourcePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for sourceID + 8 bytes for rowID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(rowID))
	return buf
}

// makePartialRowSourceKey generates a partial key for source index scans.
func makePartialRowSourceKey(sourceID core.ID) []byte {
	prefix := rowSourcePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(sourceID))
	return buf
}

// rowIDFromSourceKey extracts the row ID from a composite source index key.
func rowIDFromSourceKey(key []byte, prefixLen int) (core.ID, bool) {
	if len(key) != prefixLen+8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[prefixLen:])), true
}

// makeLeaseKey generates a key for a lease record.
func makeLeaseKey(key string) []byte {
	return []byte(leasePrefix + ":" + key)
}

// makeIndexEntryKey generates a key for a vector index entry.
func makeIndexEntryKey(id string) []byte {
	return []byte(indexEntryPrefix + ":" + id)
}
