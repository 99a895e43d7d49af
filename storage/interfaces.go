package storage

import (
	"context"

	"github.com/poiesic/jawab/core"
)

// KnowledgeRepository provides durable storage for taught knowledge
// entries. Implementations must be thread-safe: concurrent readers
// are unrestricted and writers are serialized so that upserts on the
// (domain, normalized question) key are race-free.
type KnowledgeRepository interface {
	// Insert validates and upserts an entry. If an entry with the same
	// (domain, normalized question) fingerprint already exists, it is
	// overwritten in place and the existing id is returned; CreatedAt
	// and UsageCount of the existing entry are preserved.
	// Returns an error wrapping core.ErrInvalidEntry for bad input and
	// ErrStorage for I/O failures.
	Insert(ctx context.Context, entry *core.KnowledgeEntry) (core.ID, error)

	// Get retrieves a single entry by id.
	// Returns ErrNotFound if the entry does not exist.
	Get(ctx context.Context, id core.ID) (*core.KnowledgeEntry, error)

	// Delete removes an entry by id. Returns false (and no error) when
	// the entry does not exist. Ids are never reused after deletion.
	Delete(ctx context.Context, id core.ID) (bool, error)

	// SearchKeywords returns entries whose question, normalized
	// question, or answer contains any of the given case-folded terms.
	// Ranking rewards more matched terms, with ties broken by usage
	// count descending, then id ascending. An empty domain searches
	// all domains. This linear scan is the always-correct fallback
	// behind the full-text index.
	SearchKeywords(ctx context.Context, terms []string, domain string, limit int) ([]*core.KnowledgeEntry, error)

	// IncrementUsage bumps the usage counter of an entry. Callers
	// treat failures as non-fatal (log and continue).
	IncrementUsage(ctx context.Context, id core.ID) error

	// ListDomain returns a consistent snapshot of (id, normalized
	// question) pairs for a domain, used for vector index builds and
	// fuzzy candidate sets. An empty domain lists all entries.
	ListDomain(ctx context.Context, domain string) ([]core.QuestionRef, error)

	// ListEntries returns full entries for a domain from a consistent
	// snapshot, up to limit (0 = no limit). Used for index rebuilds.
	ListEntries(ctx context.Context, domain string, limit int) ([]*core.KnowledgeEntry, error)

	// Count returns the number of entries in a domain (empty = all).
	Count(ctx context.Context, domain string) (int, error)

	// WithTransaction executes fn within a storage transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// VectorStore persists per-domain embedding snapshots so a vector
// index built in one process can be served in the next. Each save is
// a full replace of the domain's vectors, mirroring the index's
// atomic-swap build semantics.
type VectorStore interface {
	// SaveDomainVectors replaces the domain's persisted vectors with
	// the given parallel id/vector slices. Empty slices delete the
	// domain's persisted snapshot.
	SaveDomainVectors(ctx context.Context, domain string, ids []core.ID, vectors [][]float32) error

	// LoadDomainVectors returns the persisted id/vector slices for a
	// domain. Both are empty when nothing was persisted.
	LoadDomainVectors(ctx context.Context, domain string) ([]core.ID, [][]float32, error)

	// ListVectorDomains returns the domains with persisted vectors.
	ListVectorDomains(ctx context.Context) ([]string, error)
}
