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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSourceFile indicates a SourceFile failed validation.
	ErrInvalidSourceFile = errors.New("invalid source file")

	// ErrInvalidRow indicates a Row failed validation.
	ErrInvalidRow = errors.New("invalid row")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrEmptyFingerprint indicates a fingerprint field is empty.
	ErrEmptyFingerprint = errors.New("fingerprint cannot be empty")

	// ErrInvalidSourceStatus indicates an invalid SourceStatus value.
	ErrInvalidSourceStatus = errors.New("invalid source status")

	// ErrInvalidArtifactStatus indicates an invalid ArtifactStatus value.
	ErrInvalidArtifactStatus = errors.New("invalid artifact status")

	// ErrEmptyLeaseKey indicates the lease Key field is empty.
	ErrEmptyLeaseKey = errors.New("lease key cannot be empty")

	// ErrEmptyLeaseOwner indicates the lease Owner field is empty.
	ErrEmptyLeaseOwner = errors.New("lease owner cannot be empty")
)
