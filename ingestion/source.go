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

package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rowvec/rowvec/core"
)

// RowStream yields rows from a source file in position order.
// Next returns io.EOF after the last row.
type RowStream interface {
	// Next returns the next row. Position is 1-based and stable across runs
	// for an unchanged file.
	Next() (*core.Row, error)

	// Close releases the underlying resources.
	Close() error
}

// CSVStream streams a CSV file as rows. The first record is the header; every
// later record becomes one row with Fields keyed by header column.
type CSVStream struct {
	file     *os.File
	reader   *csv.Reader
	header   []string
	position uint64
}

var _ RowStream = (*CSVStream)(nil)

// OpenCSV opens a CSV file and consumes its header.
func OpenCSV(path string) (*CSVStream, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		file.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s", ErrEmptySource, path)
		}
		return nil, err
	}

	for i := range header {
		header[i] = core.NormalizeText(header[i])
	}

	return &CSVStream{
		file:   file,
		reader: reader,
		header: header,
	}, nil
}

// Header returns the normalized column names.
func (s *CSVStream) Header() []string {
	return s.header
}

// Next returns the next data row. Field values are normalized and the row
// fingerprint and canonical content are derived from the field set.
func (s *CSVStream) Next() (*core.Row, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(s.header))
	for i, name := range s.header {
		if i < len(record) {
			fields[name] = record[i]
		}
	}
	fields = core.NormalizeFields(fields)

	s.position++
	return &core.Row{
		Position:    s.position,
		Content:     core.RowContent(fields),
		Fields:      fields,
		Fingerprint: core.RowFingerprint(fields),
	}, nil
}

// Close closes the underlying file.
func (s *CSVStream) Close() error {
	return s.file.Close()
}

// SourceFingerprint hashes the file's raw bytes for change detection.
func SourceFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return core.FingerprintReader(file)
}
