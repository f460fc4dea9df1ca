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


package core

import "fmt"

// ValidateSourceFile validates a SourceFile according to domain rules.
//
// Validation rules:
//   - Path must not be empty
//   - Fingerprint must not be empty
//   - Status must be a valid SourceStatus
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - ResumeOffset / TotalRows (any value is meaningful during processing)
func ValidateSourceFile(file *SourceFile) error {
	if file == nil {
		return fmt.Errorf("%w: file is nil", ErrInvalidSourceFile)
	}

	if file.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSourceFile, ErrEmptyPath)
	}

	if file.Fingerprint == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSourceFile, ErrEmptyFingerprint)
	}

	if err := ValidateSourceStatus(file.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSourceFile, err)
	}

	return nil
}

// ValidateRow validates a Row according to domain rules.
//
// Validation rules:
//   - Fingerprint must not be empty
//   - ArtifactStatus must be a valid ArtifactStatus
//
// NOT validated (populated by the pipeline):
//   - ArtifactId (empty until the index write succeeds)
//   - ArtifactError (empty unless a batch failed)
func ValidateRow(row *Row) error {
	if row == nil {
		return fmt.Errorf("%w: row is nil", ErrInvalidRow)
	}

	if row.Fingerprint == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRow, ErrEmptyFingerprint)
	}

	if err := ValidateArtifactStatus(row.ArtifactStatus); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRow, err)
	}

	return nil
}

// ValidateLease validates lease key and owner.
func ValidateLease(key, owner string) error {
	if key == "" {
		return ErrEmptyLeaseKey
	}
	if owner == "" {
		return ErrEmptyLeaseOwner
	}
	return nil
}

// ValidateSourceStatus validates that a SourceStatus has a valid value.
func ValidateSourceStatus(status SourceStatus) error {
	switch status {
	case SourceStatusPending, SourceStatusDone, SourceStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidSourceStatus, status)
}

// ValidateArtifactStatus validates that an ArtifactStatus has a valid value.
func ValidateArtifactStatus(status ArtifactStatus) error {
	switch status {
	case ArtifactStatusPending, ArtifactStatusDone, ArtifactStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidArtifactStatus, status)
}
