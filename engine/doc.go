// Copyright 2025 Poiesic Systems
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


// Package engine orchestrates hybrid retrieval over the knowledge store.
//
// The Engine type implements a multi-stage retrieval algorithm that combines:
//   - Keyword search over the normalized query and its spelling variants
//   - Semantic search using vector embeddings, when an index is available
//   - Fuzzy token-overlap matching as a last resort
//
// Answers are deduplicated across stages and ranked so that exact
// keyword hits always come before semantic guesses. A query that
// matches nothing yields an empty result, never an error.
package engine
