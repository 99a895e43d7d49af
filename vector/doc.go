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


// Package vector provides per-domain vector similarity search over
// stored questions.
//
// Index builds embed every question in a domain through a worker
// pool and swap the finished snapshot in atomically; a failed build
// leaves the previous snapshot serving. The index is an optional
// capability: without an embedder, searches return empty results
// rather than errors.
package vector
