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

// Package csvrag is the CSV retrieval tool. One registry adapter fronts two
// operations: ingest (folder scan, resumable per-file ingestion behind the
// orchestrator's lease) and query (embed the question, rank index entries,
// join hits back to stored rows in index order).
package csvrag
