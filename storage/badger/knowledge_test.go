package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/storage"
)

func newTestRepo(t *testing.T) storage.KnowledgeRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestKnowledgeBasics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := &core.KnowledgeEntry{
		Question:   "Switch ki price",
		Answer:     "Switch ka price 50-200 rupees tak hai.",
		Domain:     "electrical",
		Confidence: 1.0,
	}

	id, err := repo.Insert(ctx, entry)
	if err != nil {
		t.Fatalf("Failed to insert entry: %v", err)
	}
	if id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.Answer != entry.Answer {
		t.Fatalf("Expected answer %q, got %q", entry.Answer, retrieved.Answer)
	}
	// The normalized form is derived by the store, not the caller.
	if retrieved.NormalizedQuestion != "switch ki price" {
		t.Fatalf("Expected normalized question 'switch ki price', got %q", retrieved.NormalizedQuestion)
	}
	if retrieved.CreatedAt.IsZero() || retrieved.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}
}

func TestInsertValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &core.KnowledgeEntry{Question: "q", Answer: "   "})
	if !errors.Is(err, core.ErrInvalidEntry) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	count, err := repo.Count(ctx, "")
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected empty store after rejected insert, got %d entries", count)
	}
}

func TestInsertUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &core.KnowledgeEntry{
		Question:   "wire ka rate",
		Answer:     "Wire ka rate 45 rupees per meter hai.",
		Domain:     "electrical",
		Confidence: 1.0,
	}
	id1, err := repo.Insert(ctx, first)
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	if err := repo.IncrementUsage(ctx, id1); err != nil {
		t.Fatalf("Failed to increment usage: %v", err)
	}

	// Devanagari spelling of the same question normalizes to the same
	// fingerprint and must overwrite, not duplicate.
	second := &core.KnowledgeEntry{
		Question:   "वायर का रेट",
		Answer:     "Wire ka rate 50 rupees per meter hai.",
		Domain:     "electrical",
		Confidence: 1.0,
	}
	id2, err := repo.Insert(ctx, second)
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("Expected upsert to keep id %d, got %d", id1, id2)
	}

	count, err := repo.Count(ctx, "electrical")
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 entry after upsert, got %d", count)
	}

	retrieved, err := repo.Get(ctx, id1)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.Answer != second.Answer {
		t.Fatalf("Expected updated answer, got %q", retrieved.Answer)
	}
	if retrieved.UsageCount != 1 {
		t.Fatalf("Expected usage history preserved across upsert, got %d", retrieved.UsageCount)
	}
	// Stored times have microsecond precision.
	if retrieved.CreatedAt.UnixMicro() != first.CreatedAt.UnixMicro() {
		t.Fatal("Expected creation time preserved across upsert")
	}
}

func TestSameQuestionDifferentDomains(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id1, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "opening time", Answer: "9 to 8", Domain: "shopA", Confidence: 1,
	})
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	id2, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "opening time", Answer: "10 to 6", Domain: "shopB", Confidence: 1,
	})
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if id1 == id2 {
		t.Fatal("Expected distinct ids across domains")
	}
}

func TestDefaultDomain(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "contact number", Answer: "9876543210", Confidence: 1,
	})
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	retrieved, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if retrieved.Domain != core.DefaultDomain {
		t.Fatalf("Expected default domain %q, got %q", core.DefaultDomain, retrieved.Domain)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), 99999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "discount offer", Answer: "15% tak", Domain: "general", Confidence: 1,
	})
	if err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	found, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if !found {
		t.Fatal("Expected delete to report found")
	}

	if _, err := repo.Get(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op, not an error.
	found, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("Failed on repeat delete: %v", err)
	}
	if found {
		t.Fatal("Expected repeat delete to report not found")
	}

	// Re-teaching the same question gets a fresh id.
	newID, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "discount offer", Answer: "20% tak", Domain: "general", Confidence: 1,
	})
	if err != nil {
		t.Fatalf("Failed to reinsert: %v", err)
	}
	if newID == id {
		t.Fatal("Expected a fresh id after delete, ids are never reused")
	}
}

func TestIncrementUsageNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.IncrementUsage(context.Background(), 424242)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListDomain(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	questions := []string{"switch ki price", "wire ka rate", "bulb ki price"}
	for _, q := range questions {
		if _, err := repo.Insert(ctx, &core.KnowledgeEntry{
			Question: q, Answer: "answer for " + q, Domain: "electrical", Confidence: 1,
		}); err != nil {
			t.Fatalf("Failed to insert %q: %v", q, err)
		}
	}
	if _, err := repo.Insert(ctx, &core.KnowledgeEntry{
		Question: "shop address", Answer: "Main Market", Domain: "general", Confidence: 1,
	}); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	refs, err := repo.ListDomain(ctx, "electrical")
	if err != nil {
		t.Fatalf("Failed to list domain: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("Expected 3 refs, got %d", len(refs))
	}

	all, err := repo.ListDomain(ctx, "")
	if err != nil {
		t.Fatalf("Failed to list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 refs across domains, got %d", len(all))
	}

	entries, err := repo.ListEntries(ctx, "electrical", 2)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected limit to cap entries at 2, got %d", len(entries))
	}
}

func TestSearchKeywords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		question string
		answer   string
	}{
		{"switch ki price", "Switch ka price 50-200 rupees tak hai."},
		{"wire ka rate", "Wire ka rate 45-80 rupees per meter hai."},
		{"bulb ki price", "LED bulb ka price 50-300 rupees hai."},
	}
	for _, s := range seed {
		if _, err := repo.Insert(ctx, &core.KnowledgeEntry{
			Question: s.question, Answer: s.answer, Domain: "electrical", Confidence: 1,
		}); err != nil {
			t.Fatalf("Failed to insert %q: %v", s.question, err)
		}
	}

	// Two matched terms must outrank one.
	results, err := repo.SearchKeywords(ctx, []string{"switch", "price"}, "electrical", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("Expected results")
	}
	if results[0].NormalizedQuestion != "switch ki price" {
		t.Fatalf("Expected 'switch ki price' first, got %q", results[0].NormalizedQuestion)
	}

	// Terms are case-folded.
	results, err = repo.SearchKeywords(ctx, []string{"SWITCH"}, "electrical", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result for SWITCH, got %d", len(results))
	}

	// Unknown terms match nothing.
	results, err = repo.SearchKeywords(ctx, []string{"xyz123"}, "electrical", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected no results, got %d", len(results))
	}

	// Domain scoping.
	results, err = repo.SearchKeywords(ctx, []string{"price"}, "general", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected no results outside the domain, got %d", len(results))
	}

	// Limit.
	results, err = repo.SearchKeywords(ctx, []string{"price"}, "electrical", 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected limit of 1, got %d", len(results))
	}
}
