package core

import (
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// fingerprintSize is the digest length in bytes for content fingerprints.
const fingerprintSize = 32

// FingerprintReader computes the content fingerprint of a byte stream.
// Used for change detection on source files.
func FingerprintReader(r io.Reader) (string, error) {
	h, _ := blake2b.New(fingerprintSize, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// RowFingerprint computes a stable fingerprint for a row's normalized fields.
// Keys are hashed in sorted order so field ordering never affects the result.
func RowFingerprint(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, _ := blake2b.New(fingerprintSize, nil)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(fields[k]))
		h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RowContent builds the canonical text form of a row: "k: v | k: v" over sorted
// field names. This is both the stored content and the embedding input.
func RowContent(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, " | ")
}

var textReplacer = strings.NewReplacer(
	"\u00a0", " ", // non-breaking space
	"\u200b", "", // zero-width space
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2019", "'",
	"\u2013", "-",
	"\u2014", "-",
)

// NormalizeText cleans a field value before fingerprinting: invisible spaces
// removed, smart quotes and dashes mapped to ASCII, whitespace collapsed.
// Cosmetic differences in a source must not change the row fingerprint.
func NormalizeText(val string) string {
	val = textReplacer.Replace(val)
	return strings.Join(strings.Fields(val), " ")
}

// NormalizeFields returns a copy of fields with every value normalized.
func NormalizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = NormalizeText(v)
	}
	return out
}
