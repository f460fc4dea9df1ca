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

// Package reindex retries artifact production for rows whose embedding or
// index write failed during ingestion. It snapshots the Failed set, walks it
// in batches with exponential-backoff retries around the embedding call, and
// reports progress as it goes. Rows that fail again simply stay Failed with
// an updated error; the next run will pick them up.
package reindex
