package fulltext

import (
	"context"
	"testing"

	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/storage"
	"github.com/poiesic/jawab/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"switch", "ki", "price"}, Tokenize("Switch ki price?"))
	assert.Equal(t, []string{"wire", "45", "80"}, Tokenize("wire: 45-80!"))
	assert.Empty(t, Tokenize("  ...  "))
}

func newTestIndex(t *testing.T) (*Index, storage.KnowledgeRepository) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	index, err := NewIndex(repo)
	require.NoError(t, err)
	return index, repo
}

func seedEntries(t *testing.T, repo storage.KnowledgeRepository) {
	t.Helper()
	ctx := context.Background()
	seed := []core.KnowledgeEntry{
		{Question: "switch ki price", Answer: "50-200 rupees", Domain: "electrical", Confidence: 1},
		{Question: "wire ka rate", Answer: "45-80 rupees per meter", Domain: "electrical", Confidence: 1},
		{Question: "shop address", Answer: "Main Market", Domain: "general", Confidence: 1},
	}
	for i := range seed {
		_, err := repo.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}
}

func TestNewIndex(t *testing.T) {
	t.Run("nil repository", func(t *testing.T) {
		_, err := NewIndex(nil)
		assert.Equal(t, ErrRepositoryRequired, err)
	})
}

func TestSearchFallsBackWhileStale(t *testing.T) {
	index, repo := newTestIndex(t)
	seedEntries(t, repo)
	ctx := context.Background()

	// No snapshot built yet: the store scan must still find entries.
	assert.True(t, index.Stale())
	results, err := index.Search(ctx, "switch price", "electrical", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "switch ki price", results[0].NormalizedQuestion)
}

func TestSearchSnapshot(t *testing.T) {
	index, repo := newTestIndex(t)
	seedEntries(t, repo)
	ctx := context.Background()

	require.NoError(t, index.Refresh(ctx))
	assert.False(t, index.Stale())

	t.Run("ranks more matched terms first", func(t *testing.T) {
		results, err := index.Search(ctx, "switch ki price", "electrical", 5)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "switch ki price", results[0].NormalizedQuestion)
	})

	t.Run("domain filter", func(t *testing.T) {
		results, err := index.Search(ctx, "price", "general", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty domain searches all", func(t *testing.T) {
		results, err := index.Search(ctx, "address", "", 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "general", results[0].Domain)
	})

	t.Run("limit", func(t *testing.T) {
		results, err := index.Search(ctx, "rupees", "electrical", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := index.Search(ctx, "xyz123", "electrical", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query", func(t *testing.T) {
		results, err := index.Search(ctx, "  ", "electrical", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestMarkStaleForcesFallback(t *testing.T) {
	index, repo := newTestIndex(t)
	seedEntries(t, repo)
	ctx := context.Background()

	require.NoError(t, index.Refresh(ctx))

	// A write after the refresh is invisible to the snapshot; marking
	// stale routes searches through the store so it is still found.
	_, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "mcb ka rate", Answer: "120-450 rupees", Domain: "electrical", Confidence: 1,
	})
	require.NoError(t, err)
	index.MarkStale()

	results, err := index.Search(ctx, "mcb", "electrical", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "mcb ka price", results[0].NormalizedQuestion)

	// Refresh picks the new entry into the snapshot.
	require.NoError(t, index.Refresh(ctx))
	results, err = index.Search(ctx, "mcb", "electrical", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
}
