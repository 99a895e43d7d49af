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


package jawab

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/poiesic/jawab/ai"
	"github.com/poiesic/jawab/ai/openai"
	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/engine"
	"github.com/poiesic/jawab/fulltext"
	"github.com/poiesic/jawab/storage"
	"github.com/poiesic/jawab/storage/badger"
	"github.com/poiesic/jawab/vector"
)

// ErrSemanticDisabled is returned when a semantic operation is
// requested on a database opened without an AI configuration.
var ErrSemanticDisabled = errors.New("semantic search not configured")

// Database wires the storage backend, indexes, and retrieval engine
// into a single handle.
type Database struct {
	backend  *badger.Backend
	repo     storage.KnowledgeRepository
	keyword  *fulltext.Index
	vector   *vector.Index
	provider ai.EmbeddingProvider
	engine   *engine.Engine
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	semantic     bool
	engineConfig *engine.Config
}

// WithAIConfig enables semantic search against an OpenAI-compatible
// embedding service. Without it the database answers from keyword
// and fuzzy matching only.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
		o.semantic = true
	}
}

// WithEngineConfig overrides the default retrieval tuning.
func WithEngineConfig(config engine.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.engineConfig = &config
	}
}

// Open opens (or creates) a knowledge database at the given path.
func Open(filePath string, opts ...DatabaseOption) (*Database, error) {
	return open(filePath, false, opts...)
}

// OpenMemory opens an in-memory knowledge database, useful for tests
// and short-lived tooling.
func OpenMemory(opts ...DatabaseOption) (*Database, error) {
	return open("", true, opts...)
}

func open(filePath string, inMemory bool, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	// Create knowledge repository
	repo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create keyword index
	keyword, err := fulltext.NewIndex(repo)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	db := &Database{
		backend: backend,
		repo:    repo,
		keyword: keyword,
		logger:  slog.Default(),
	}

	engineOpts := []engine.Option{}
	if options.engineConfig != nil {
		engineOpts = append(engineOpts, engine.WithConfig(*options.engineConfig))
	}

	// Semantic search is opt-in: only wire the embedding provider and
	// vector index when an AI config was supplied.
	if options.semantic {
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
		db.provider = provider

		vectorIndex, err := vector.NewIndex(repo, provider.Embedder(), vector.WithStore(repo))
		if err != nil {
			provider.Close()
			repo.Close()
			backend.Close()
			return nil, err
		}
		// Restore snapshots persisted by earlier processes so a prior
		// index build keeps serving semantic queries. A failure here
		// degrades to keyword/fuzzy answers until the next rebuild.
		if err := vectorIndex.LoadPersisted(context.Background()); err != nil {
			db.logger.Warn("could not load persisted vector snapshots", "err", err)
		}
		db.vector = vectorIndex
		engineOpts = append(engineOpts, engine.WithVectorIndex(vectorIndex))
	}

	eng, err := engine.NewEngine(repo, keyword, engineOpts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	db.engine = eng

	return db, nil
}

// Teach stores a question/answer pair in a domain.
func (db *Database) Teach(ctx context.Context, question, answer, domain string, opts ...engine.TeachOption) (core.ID, error) {
	return db.engine.Teach(ctx, question, answer, domain, opts...)
}

// Ask answers a query from the knowledge store. An unanswerable
// query yields an empty slice, not an error.
func (db *Database) Ask(ctx context.Context, query, domain string) ([]*core.Answer, error) {
	return db.engine.Ask(ctx, query, domain)
}

// Engine exposes the retrieval engine for callers that need
// monitored queries or custom teach options.
func (db *Database) Engine() *engine.Engine {
	return db.engine
}

// Repository exposes the underlying knowledge repository.
func (db *Database) Repository() storage.KnowledgeRepository {
	return db.repo
}

// RefreshKeywordIndex rebuilds the in-memory keyword index from
// storage. Queries remain correct without it; refreshing restores
// snapshot-speed lookups after a burst of teaching.
func (db *Database) RefreshKeywordIndex(ctx context.Context) error {
	return db.keyword.Refresh(ctx)
}

// BuildVectorIndex embeds every stored question in a domain and
// swaps in the new vector snapshot. Returns ErrSemanticDisabled when
// the database was opened without an AI config.
func (db *Database) BuildVectorIndex(ctx context.Context, domain string) error {
	if db.vector == nil {
		return ErrSemanticDisabled
	}
	return db.vector.Build(ctx, domain)
}

// Stats summarizes the knowledge store.
type Stats struct {
	TotalEntries int
	DomainCounts map[string]int
	MostUsed     []*core.KnowledgeEntry
}

// Stats reports entry totals, per-domain counts, and the most-used
// entries (up to topN, 0 for the default of 5).
func (db *Database) Stats(ctx context.Context, topN int) (*Stats, error) {
	if topN <= 0 {
		topN = 5
	}

	entries, err := db.repo.ListEntries(ctx, "", 0)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalEntries: len(entries),
		DomainCounts: make(map[string]int),
	}
	for _, entry := range entries {
		stats.DomainCounts[entry.Domain]++
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UsageCount != entries[j].UsageCount {
			return entries[i].UsageCount > entries[j].UsageCount
		}
		return entries[i].Id < entries[j].Id
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	stats.MostUsed = entries

	return stats, nil
}

// Close releases the indexes, the embedding provider, and the
// storage backend.
func (db *Database) Close() error {
	if db.vector != nil {
		if err := db.vector.Close(); err != nil {
			db.logger.Error("error closing vector index", "err", err)
		}
	}
	if db.provider != nil {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing embedding provider", "err", err)
		}
	}

	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing knowledge repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
