package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/storage"
)

var _ storage.VectorStore = (*KnowledgeRepository)(nil)

// SaveDomainVectors replaces the domain's persisted embeddings with
// the given parallel id/vector slices in one transaction. Empty
// slices delete the persisted snapshot. The full replace mirrors the
// vector index's atomic-swap builds: a domain on disk is always one
// complete snapshot, never a merge of two builds.
func (r *KnowledgeRepository) SaveDomainVectors(ctx context.Context, domain string, ids []core.ID, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", core.ErrInvalidEntry, len(ids), len(vectors))
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		stale, err := collectVectorKeys(tx, domain)
		if err != nil {
			return err
		}
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for n, id := range ids {
			if err := tx.Set(makeVectorKey(domain, id), storage.MarshalVector(vectors[n])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return wrapStorage(err)
}

// LoadDomainVectors returns the persisted id/vector slices for a
// domain, in id order. Both are empty when nothing was persisted.
func (r *KnowledgeRepository) LoadDomainVectors(ctx context.Context, domain string) ([]core.ID, [][]float32, error) {
	var (
		ids     []core.ID
		vectors [][]float32
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPrefix(domain)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// An empty domain's prefix covers every domain, so the parsed
		// domain is checked rather than trusted from the prefix match.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keyDomain, id, ok := splitVectorKey(iter.Item().Key())
			if !ok || keyDomain != domain {
				continue
			}
			var vec []float32
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vec, err = storage.UnmarshalVector(val)
				return err
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
			vectors = append(vectors, vec)
		}
		return nil
	}, false)

	if err != nil {
		return nil, nil, wrapStorage(err)
	}
	return ids, vectors, nil
}

// ListVectorDomains returns the domains with persisted embeddings.
func (r *KnowledgeRepository) ListVectorDomains(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorPrefix("")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			domain, _, ok := splitVectorKey(iter.Item().Key())
			if ok {
				seen[domain] = true
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, wrapStorage(err)
	}

	domains := make([]string, 0, len(seen))
	for domain := range seen {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains, nil
}

// collectVectorKeys copies the domain's vector keys; deletions happen
// after iteration so the iterator never walks its own writes.
func collectVectorKeys(tx *badger.Txn, domain string) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeVectorPrefix(domain)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keyDomain, _, ok := splitVectorKey(iter.Item().Key())
		if !ok || keyDomain != domain {
			continue
		}
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys, nil
}
