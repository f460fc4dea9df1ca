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


package storage

import (
	"github.com/rowvec/rowvec/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSourceFile serializes a SourceFile to bytes.
func MarshalSourceFile(file *core.SourceFile) []byte {
	buf := make([]byte, core.SourceFileMUS.Size(*file))
	core.SourceFileMUS.Marshal(*file, buf)
	return buf
}

// UnmarshalSourceFile deserializes a SourceFile from bytes.
func UnmarshalSourceFile(data []byte) (*core.SourceFile, error) {
	file, _, err := core.SourceFileMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// MarshalRow serializes a Row to bytes.
func MarshalRow(row *core.Row) []byte {
	buf := make([]byte, core.RowMUS.Size(*row))
	core.RowMUS.Marshal(*row, buf)
	return buf
}

// UnmarshalRow deserializes a Row from bytes.
func UnmarshalRow(data []byte) (*core.Row, error) {
	row, _, err := core.RowMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, core.IndexEntryMUS.Size(*entry))
	core.IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := core.IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalLease serializes a Lease to bytes.
func MarshalLease(lease *core.Lease) []byte {
	buf := make([]byte, core.LeaseMUS.Size(*lease))
	core.LeaseMUS.Marshal(*lease, buf)
	return buf
}

// UnmarshalLease deserializes a Lease from bytes.
func UnmarshalLease(data []byte) (*core.Lease, error) {
	lease, _, err := core.LeaseMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &lease, nil
}
