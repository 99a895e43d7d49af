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


// Package normalize converts free-form English / Hindi / Hinglish text
// into a canonical comparable form for indexing and matching.
//
// Devanagari input is transliterated to a Latin phonetic approximation
// using an immutable longest-match-first rule table; all input is
// lower-cased, whitespace-collapsed, and passed through a small set of
// token-level canonical respellings (kyaa -> kya, rate -> price, ...).
//
// Variants generates bounded spelling/postposition variations of a
// normalized query, used by the keyword search stage to bridge common
// Hinglish spelling ambiguity.
//
// All functions are pure: no I/O, no shared mutable state, safe for
// unlimited concurrent use. Normalize is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
package normalize
