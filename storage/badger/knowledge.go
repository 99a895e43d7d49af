package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/normalize"
	"github.com/poiesic/jawab/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
//
// A single repository-wide write mutex serializes writers, which makes
// upsert-on-duplicate race-free. Readers run in snapshot transactions
// and are never blocked by writers.
type KnowledgeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	writeMu sync.Mutex
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) (*KnowledgeRepository, error) {
	idSeq, err := backend.GetSequence(knowledgeIDSeq)
	if err != nil {
		return nil, wrapStorage(err)
	}

	return &KnowledgeRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *KnowledgeRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// wrapStorage tags backend errors as retryable storage failures.
// Validation and not-found errors pass through untouched.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrInvalidEntry) ||
		errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, storage.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", storage.ErrStorage, err)
}

// Insert validates and upserts an entry. The normalized question is
// recomputed from the question text on every write; it is never taken
// from the caller.
func (r *KnowledgeRepository) Insert(ctx context.Context, entry *core.KnowledgeEntry) (core.ID, error) {
	if err := core.ValidateKnowledgeEntry(entry); err != nil {
		return 0, err
	}
	if entry.Domain == "" {
		entry.Domain = core.DefaultDomain
	}
	entry.NormalizedQuestion = normalize.Normalize(entry.Question)
	fingerprint := core.Fingerprint(entry.Domain, entry.NormalizedQuestion)

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()

		existing, err := r.lookupByFingerprint(tx, fingerprint)
		if err != nil {
			return err
		}
		if existing != nil &&
			existing.Domain == entry.Domain &&
			existing.NormalizedQuestion == entry.NormalizedQuestion {
			// Upsert: keep id, creation time and usage history.
			entry.Id = existing.Id
			entry.CreatedAt = existing.CreatedAt
			entry.UsageCount = existing.UsageCount
			entry.UpdatedAt = now
			if err := tx.Set(makeKnowledgeKey(entry.Id), storage.MarshalKnowledgeEntry(entry)); err != nil {
				return err
			}
			return tx.Commit()
		}

		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		entry.Id = core.ID(nextID)
		entry.CreatedAt = now
		entry.UpdatedAt = now

		if err := tx.Set(makeKnowledgeKey(entry.Id), storage.MarshalKnowledgeEntry(entry)); err != nil {
			return err
		}
		if err := tx.Set(makeLookupKey(fingerprint), storage.MarshalID(entry.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeDomainKey(entry.Domain, entry.Id), storage.MarshalID(entry.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, wrapStorage(err)
	}
	return entry.Id, nil
}

// lookupByFingerprint resolves a fingerprint to its current entry,
// or nil when the fingerprint is unknown.
func (r *KnowledgeRepository) lookupByFingerprint(tx *badger.Txn, fingerprint uint64) (*core.KnowledgeEntry, error) {
	item, err := tx.Get(makeLookupKey(fingerprint))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}

	return r.readEntry(tx, makeKnowledgeKey(id))
}

// readEntry reads an entry by key, returning nil when absent.
func (r *KnowledgeRepository) readEntry(tx *badger.Txn, key []byte) (*core.KnowledgeEntry, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry *core.KnowledgeEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalKnowledgeEntry(val)
		return err
	})
	return entry, err
}

// Get retrieves a single entry by id.
func (r *KnowledgeRepository) Get(ctx context.Context, id core.ID) (*core.KnowledgeEntry, error) {
	var entry *core.KnowledgeEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = r.readEntry(tx, makeKnowledgeKey(id))
		return err
	}, false)

	if err != nil {
		return nil, wrapStorage(err)
	}
	if entry == nil {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// Delete removes an entry and its index keys by id.
// Returns false when the entry does not exist; ids are never reused.
func (r *KnowledgeRepository) Delete(ctx context.Context, id core.ID) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := r.readEntry(tx, makeKnowledgeKey(id))
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		found = true

		if err := tx.Delete(makeKnowledgeKey(id)); err != nil {
			return err
		}
		if err := tx.Delete(makeDomainKey(entry.Domain, id)); err != nil {
			return err
		}
		// Remove the fingerprint mapping only while it still points at
		// this entry; an upsert may have reassigned it.
		fingerprint := core.Fingerprint(entry.Domain, entry.NormalizedQuestion)
		current, err := r.lookupByFingerprint(tx, fingerprint)
		if err != nil {
			return err
		}
		if current != nil && current.Id == id {
			if err := tx.Delete(makeLookupKey(fingerprint)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return false, wrapStorage(err)
	}
	return found, nil
}

// IncrementUsage bumps the usage counter of an entry.
func (r *KnowledgeRepository) IncrementUsage(ctx context.Context, id core.ID) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entry, err := r.readEntry(tx, makeKnowledgeKey(id))
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}
		entry.UsageCount++
		entry.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeKnowledgeKey(id), storage.MarshalKnowledgeEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return wrapStorage(err)
}

// forEachInDomain streams entries of a domain (all domains when empty)
// from a single snapshot transaction. fn returning false stops early.
func (r *KnowledgeRepository) forEachInDomain(tx *badger.Txn, domain string, fn func(*core.KnowledgeEntry) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeDomainPrefix(domain)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}
		entry, err := r.readEntry(tx, makeKnowledgeKey(id))
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}
		if !fn(entry) {
			return nil
		}
	}
	return nil
}

// ListDomain returns a consistent snapshot of (id, normalized question)
// pairs for a domain.
func (r *KnowledgeRepository) ListDomain(ctx context.Context, domain string) ([]core.QuestionRef, error) {
	var refs []core.QuestionRef

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachInDomain(tx, domain, func(entry *core.KnowledgeEntry) bool {
			refs = append(refs, core.QuestionRef{
				Id:                 entry.Id,
				NormalizedQuestion: entry.NormalizedQuestion,
			})
			return true
		})
	}, false)

	if err != nil {
		return nil, wrapStorage(err)
	}
	return refs, nil
}

// ListEntries returns full entries for a domain from a consistent
// snapshot, up to limit (0 = no limit).
func (r *KnowledgeRepository) ListEntries(ctx context.Context, domain string, limit int) ([]*core.KnowledgeEntry, error) {
	var entries []*core.KnowledgeEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachInDomain(tx, domain, func(entry *core.KnowledgeEntry) bool {
			entries = append(entries, entry)
			return limit <= 0 || len(entries) < limit
		})
	}, false)

	if err != nil {
		return nil, wrapStorage(err)
	}
	return entries, nil
}

// Count returns the number of entries in a domain (empty = all).
func (r *KnowledgeRepository) Count(ctx context.Context, domain string) (int, error) {
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDomainPrefix(domain)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, wrapStorage(err)
	}
	return count, nil
}

// SearchKeywords performs a linear scan over a domain's entries,
// matching any term as a case-folded substring of the question,
// normalized question, or answer. Ranking rewards more matched terms,
// each term weighted equally; ties break by usage count descending,
// then id ascending for determinism.
func (r *KnowledgeRepository) SearchKeywords(ctx context.Context, terms []string, domain string, limit int) ([]*core.KnowledgeEntry, error) {
	folded := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			folded = append(folded, term)
		}
	}
	if len(folded) == 0 {
		return nil, nil
	}

	type scored struct {
		entry *core.KnowledgeEntry
		score int
	}
	var hits []scored

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachInDomain(tx, domain, func(entry *core.KnowledgeEntry) bool {
			haystack := strings.ToLower(entry.Question) + "\n" +
				entry.NormalizedQuestion + "\n" +
				strings.ToLower(entry.Answer)
			score := 0
			for _, term := range folded {
				if strings.Contains(haystack, term) {
					score++
				}
			}
			if score > 0 {
				hits = append(hits, scored{entry: entry, score: score})
			}
			return true
		})
	}, false)

	if err != nil {
		return nil, wrapStorage(err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].entry.UsageCount != hits[j].entry.UsageCount {
			return hits[i].entry.UsageCount > hits[j].entry.UsageCount
		}
		return hits[i].entry.Id < hits[j].entry.Id
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	entries := make([]*core.KnowledgeEntry, len(hits))
	for i, h := range hits {
		entries[i] = h.entry
	}
	return entries, nil
}
