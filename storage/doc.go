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


// Package storage provides the storage abstraction layer for jawab.
//
// This package defines the repository interface that decouples storage
// implementation from retrieval logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface to enforce abstraction:
//
//	repo, err := badger.NewKnowledgeRepository(backend)  // returns storage.KnowledgeRepository
//
// # Error Taxonomy
//
// Validation failures wrap core.ErrInvalidEntry and are never retried.
// I/O failures wrap ErrStorage and may be retried by callers.
// Missing entries are ErrNotFound from Get, and a plain false from
// Delete.
//
// # Thread Safety
//
// Implementations must support concurrent readers; writers are
// serialized so that upserts on the (domain, normalized question)
// key are race-free. A single repository-wide write lock is the
// expected implementation for small-to-medium datasets.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
