package fulltext

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/storage"
)

// Index is an inverted keyword index over the knowledge store's
// question and answer text, conceptually a materialized view.
//
// Queries read an immutable snapshot; Refresh builds a new snapshot
// from the store and swaps it in atomically, so builds never block
// readers. Whenever the snapshot is missing or stale (the engine
// marks it stale on every write), Search falls back to the store's
// linear keyword scan, which is slower but has no false negatives
// from indexing lag within the same process.
type Index struct {
	repo   storage.KnowledgeRepository
	logger *slog.Logger
	snap   atomic.Pointer[snapshot]
	stale  atomic.Bool
}

type snapshot struct {
	postings map[string]map[core.ID]int // term -> id -> term frequency
	entries  map[core.ID]*core.KnowledgeEntry
	builtAt  time.Time
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIndex creates a keyword index over the given repository.
func NewIndex(repo storage.KnowledgeRepository, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	i := &Index{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// MarkStale flags the current snapshot as outdated. Subsequent
// searches use the store fallback until Refresh runs.
func (i *Index) MarkStale() {
	i.stale.Store(true)
}

// Stale reports whether the snapshot is missing or outdated.
func (i *Index) Stale() bool {
	return i.snap.Load() == nil || i.stale.Load()
}

// Refresh rebuilds the index from a consistent store snapshot and
// swaps it in atomically.
func (i *Index) Refresh(ctx context.Context) error {
	entries, err := i.repo.ListEntries(ctx, "", 0)
	if err != nil {
		return err
	}

	snap := &snapshot{
		postings: make(map[string]map[core.ID]int),
		entries:  make(map[core.ID]*core.KnowledgeEntry, len(entries)),
		builtAt:  time.Now().UTC(),
	}
	for _, entry := range entries {
		snap.entries[entry.Id] = entry
		terms := Tokenize(entry.Question)
		terms = append(terms, Tokenize(entry.NormalizedQuestion)...)
		terms = append(terms, Tokenize(entry.Answer)...)
		for _, term := range terms {
			ids := snap.postings[term]
			if ids == nil {
				ids = make(map[core.ID]int)
				snap.postings[term] = ids
			}
			ids[entry.Id]++
		}
	}

	i.snap.Store(snap)
	i.stale.Store(false)
	i.logger.Debug("keyword index refreshed", "entries", len(entries), "terms", len(snap.postings))
	return nil
}

// Search returns up to limit entries matching any query term, ranked
// by distinct matched terms, then total term frequency, with ties
// broken by usage count descending and id ascending. Ranking is
// monotonic in term overlap and deterministic for identical inputs.
func (i *Index) Search(ctx context.Context, query, domain string, limit int) ([]*core.KnowledgeEntry, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	snap := i.snap.Load()
	if snap == nil || i.stale.Load() {
		return i.repo.SearchKeywords(ctx, terms, domain, limit)
	}

	type score struct {
		distinct int
		freq     int
	}
	scores := make(map[core.ID]*score)
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		for id, freq := range snap.postings[term] {
			s := scores[id]
			if s == nil {
				s = &score{}
				scores[id] = s
			}
			s.distinct++
			s.freq += freq
		}
	}

	ids := make([]core.ID, 0, len(scores))
	for id := range scores {
		entry := snap.entries[id]
		if entry == nil {
			continue
		}
		if domain != "" && entry.Domain != domain {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(a, b int) bool {
		sa, sb := scores[ids[a]], scores[ids[b]]
		if sa.distinct != sb.distinct {
			return sa.distinct > sb.distinct
		}
		if sa.freq != sb.freq {
			return sa.freq > sb.freq
		}
		ea, eb := snap.entries[ids[a]], snap.entries[ids[b]]
		if ea.UsageCount != eb.UsageCount {
			return ea.UsageCount > eb.UsageCount
		}
		return ids[a] < ids[b]
	})

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	entries := make([]*core.KnowledgeEntry, len(ids))
	for n, id := range ids {
		entries[n] = snap.entries[id]
	}
	return entries, nil
}
