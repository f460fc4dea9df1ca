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

// Package ai defines the embedding abstraction used by the ingestion and
// query paths.
//
// The Embedder interface keeps the rest of the codebase independent of any
// particular embedding service. Two implementations ship with this module:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: deterministic test double, no external dependencies
//
// Public constructors (openai.NewEmbedder) return the interface type to
// enforce abstraction; mock constructors return the concrete type so tests
// can inject behavior and assert call counts.
package ai
