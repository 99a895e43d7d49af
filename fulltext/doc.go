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


// Package fulltext provides an in-memory inverted keyword index over
// the knowledge store.
//
// The index holds an immutable snapshot swapped atomically on
// refresh, so reads never block writes. A stale snapshot never
// causes missed results: while stale, searches fall back to a
// storage scan, trading speed for correctness until the next
// refresh.
package fulltext
