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

// Package ingestion implements resumable CSV ingestion into the row store and
// vector index.
//
// A Pipeline processes one source file's row stream in batches: upsert
// (idempotent on row fingerprint), dedupe, embed, index write, then an
// unconditional resume-offset advance. Embedding or index failures mark only
// the affected batch's rows Failed; the file keeps going. Because the offset
// advances after every attempted batch, a crashed run restarts after the last
// attempted batch rather than re-reading the whole file, and at-least-once
// redelivery is harmless thanks to the fingerprint-keyed upsert.
//
// An Orchestrator drives full runs over a folder: it takes a collection-level
// lease (losing the race means another worker is ingesting and is not an
// error), registers or resets each file's checkpoint by content fingerprint,
// skips files already Done, and isolates per-file failures.
package ingestion
