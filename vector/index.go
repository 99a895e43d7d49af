package vector

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/jawab/ai"
	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/storage"
)

const (
	defaultEmbedTimeout = 8 * time.Second
	embedBatchSize      = 64
)

// Index holds per-domain approximate-similarity indexes over sentence
// embeddings of stored questions.
//
// The index is a rebuildable cache, never a source of truth: Build
// fully replaces one domain's snapshot from the knowledge store and
// swaps it in atomically, so a failed build leaves the previous
// snapshot untouched and queries keep running against it. The store
// and the index are only eventually consistent; callers rebuild
// explicitly after teaching. With a VectorStore attached, each built
// snapshot is also persisted and LoadPersisted restores it in a
// later process.
type Index struct {
	repo     storage.KnowledgeRepository
	embedder ai.Embedder         // nil = semantic capability absent
	store    storage.VectorStore // nil = snapshots live and die with the process
	pool     *ants.Pool
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	domains map[string]*domainIndex
}

// domainIndex is an immutable snapshot of one domain's unit vectors.
type domainIndex struct {
	ids     []core.ID
	vectors [][]float32
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

// WithStore persists each built snapshot and lets LoadPersisted
// restore snapshots from an earlier process, so an index built by one
// invocation serves queries in the next.
func WithStore(store storage.VectorStore) Option {
	return func(i *Index) error {
		i.store = store
		return nil
	}
}

// WithEmbedTimeout bounds each embedding provider call.
// Default is 8s; after the timeout the affected stage degrades to
// "no semantic hits" instead of blocking the request.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(i *Index) error {
		if timeout > 0 {
			i.timeout = timeout
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding
// batches during builds. Default is runtime.NumCPU() / 2, minimum 1.
func WithPoolSize(size int) Option {
	return func(i *Index) error {
		if size < 1 {
			size = 1
		}
		if i.pool != nil {
			i.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		i.pool = pool
		return nil
	}
}

// NewIndex creates a vector index over the given repository.
// A nil embedder is allowed and makes the index permanently
// unavailable (capability absence, not an error).
func NewIndex(repo storage.KnowledgeRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	i := &Index{
		repo:     repo,
		embedder: embedder,
		pool:     pool,
		timeout:  defaultEmbedTimeout,
		logger:   slog.Default(),
		domains:  make(map[string]*domainIndex),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return i, nil
}

// Close releases the embedding worker pool.
func (i *Index) Close() error {
	i.pool.Release()
	return nil
}

// Available reports whether semantic search can serve the domain:
// an embedder is configured and a snapshot has been built.
func (i *Index) Available(domain string) bool {
	if i.embedder == nil {
		return false
	}
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.domains[domain] != nil
}

// Build fully replaces the domain's snapshot from the knowledge
// store. Embeddings are computed in batches on the worker pool, each
// batch bounded by the embed timeout. On any failure the previous
// snapshot is left untouched.
func (i *Index) Build(ctx context.Context, domain string) error {
	if i.embedder == nil {
		return ErrEmbedderUnavailable
	}

	refs, err := i.repo.ListDomain(ctx, domain)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		if i.store != nil {
			if err := i.store.SaveDomainVectors(ctx, domain, nil, nil); err != nil {
				return err
			}
		}
		i.mu.Lock()
		delete(i.domains, domain)
		i.mu.Unlock()
		i.logger.Info("no entries to index", "domain", domain)
		return nil
	}

	vectors := make([][]float32, len(refs))
	var (
		wg       sync.WaitGroup
		errterm  sync.Once
		buildErr error
	)
	for start := 0; start < len(refs); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(refs) {
			end = len(refs)
		}
		batch := refs[start:end]
		offset := start

		wg.Add(1)
		if err := i.pool.Submit(func() {
			defer wg.Done()
			texts := make([]string, len(batch))
			for n, ref := range batch {
				texts[n] = ref.NormalizedQuestion
			}
			embedCtx, cancel := context.WithTimeout(ctx, i.timeout)
			defer cancel()
			embedded, err := i.embedder.EmbedTexts(embedCtx, texts)
			if err != nil {
				errterm.Do(func() { buildErr = err })
				return
			}
			if len(embedded) != len(batch) {
				errterm.Do(func() {
					buildErr = fmt.Errorf("embedding result mismatch: expected %d, received %d", len(batch), len(embedded))
				})
				return
			}
			for n, vec := range embedded {
				vectors[offset+n] = NormalizeVector(vec)
			}
		}); err != nil {
			wg.Done()
			errterm.Do(func() { buildErr = err })
		}
	}
	wg.Wait()

	if buildErr != nil {
		i.logger.Error("vector index build failed, keeping previous snapshot",
			"domain", domain, "err", buildErr)
		return buildErr
	}

	ids := make([]core.ID, len(refs))
	for n, ref := range refs {
		ids[n] = ref.Id
	}

	// Persist before swapping so a failed save leaves both the
	// in-memory and on-disk snapshots at the previous build.
	if i.store != nil {
		if err := i.store.SaveDomainVectors(ctx, domain, ids, vectors); err != nil {
			i.logger.Error("vector snapshot persist failed, keeping previous snapshot",
				"domain", domain, "err", err)
			return err
		}
	}

	i.mu.Lock()
	i.domains[domain] = &domainIndex{ids: ids, vectors: vectors}
	i.mu.Unlock()

	i.logger.Info("vector index built", "domain", domain, "entries", len(ids))
	return nil
}

// LoadPersisted restores every persisted domain snapshot into memory.
// Called once after opening a database so indexes built by earlier
// processes keep serving queries. Domains that fail to load are
// skipped with a warning; the knowledge store stays the source of
// truth and a rebuild recreates them.
func (i *Index) LoadPersisted(ctx context.Context) error {
	if i.embedder == nil || i.store == nil {
		return nil
	}

	domains, err := i.store.ListVectorDomains(ctx)
	if err != nil {
		return err
	}

	for _, domain := range domains {
		ids, vectors, err := i.store.LoadDomainVectors(ctx, domain)
		if err != nil {
			i.logger.Warn("persisted vector snapshot unreadable, skipping",
				"domain", domain, "err", err)
			continue
		}
		if len(ids) == 0 {
			continue
		}
		i.mu.Lock()
		i.domains[domain] = &domainIndex{ids: ids, vectors: vectors}
		i.mu.Unlock()
		i.logger.Info("vector index loaded", "domain", domain, "entries", len(ids))
	}
	return nil
}

// Search embeds the query and returns up to topK matches with
// similarity in [0, 1], highest first. An unavailable embedder,
// missing snapshot, timeout, or provider failure yields an empty
// result: capability absence, never an error the caller must handle.
func (i *Index) Search(ctx context.Context, query, domain string, topK int) []core.Match {
	if i.embedder == nil || topK <= 0 {
		return nil
	}

	i.mu.RLock()
	snap := i.domains[domain]
	i.mu.RUnlock()
	if snap == nil {
		return nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	embedded, err := i.embedder.EmbedText(embedCtx, query)
	if err != nil {
		i.logger.Warn("query embedding failed, skipping semantic stage", "err", err)
		return nil
	}
	queryVec := NormalizeVector(embedded)

	matches := make([]core.Match, 0, len(snap.ids))
	for n, vec := range snap.vectors {
		matches = append(matches, core.Match{
			Id:         snap.ids[n],
			Similarity: clampSimilarity(dotProduct(queryVec, vec)),
		})
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Similarity != matches[b].Similarity {
			return matches[a].Similarity > matches[b].Similarity
		}
		return matches[a].Id < matches[b].Id
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
