package fuzzy

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/poiesic/jawab/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates() []Candidate {
	return []Candidate{
		{Id: 1, Question: "switch ki price kya hai"},
		{Id: 2, Question: "wire ka price"},
		{Id: 3, Question: "shop address"},
	}
}

func TestBestMatch(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("exact match wins with score 1", func(t *testing.T) {
		match, ok := BestMatch("wire ka price", candidates(), cfg)
		require.True(t, ok)
		assert.Equal(t, Match{Id: 2, Question: "wire ka price", Score: 1}, match)
	})

	t.Run("containment", func(t *testing.T) {
		// "switch ki price" is most of "switch ki price kya hai".
		match, ok := BestMatch("switch ki price", candidates(), cfg)
		require.True(t, ok)
		assert.Equal(t, core.ID(1), match.Id)
		assert.GreaterOrEqual(t, match.Score, cfg.ContainRatio)
		assert.Less(t, match.Score, 1.0)
	})

	t.Run("containment rejected below length ratio", func(t *testing.T) {
		// "price" is contained but far too small a part of the candidate.
		_, ok := BestMatch("price", []Candidate{{Id: 1, Question: "switch ki price kya hai"}}, cfg)
		assert.False(t, ok)
	})

	t.Run("token overlap", func(t *testing.T) {
		match, ok := BestMatch("price wire batao", candidates(), cfg)
		require.True(t, ok)
		// 2 of 3 query tokens, 2 of 3 candidate tokens.
		assert.Equal(t, Match{Id: 2, Question: "wire ka price", Score: 2.0 / 3.0}, match)
	})

	t.Run("rejects single common token", func(t *testing.T) {
		_, ok := BestMatch("price batao jaldi", []Candidate{{Id: 3, Question: "price list available nahi"}}, cfg)
		assert.False(t, ok)
	})

	t.Run("rejects weak mutual coverage", func(t *testing.T) {
		// Both tokens are shared, but they cover only 2 of 6 candidate
		// tokens, so the candidate coverage fails.
		query := "wire price"
		candidate := Candidate{Id: 4, Question: "best quality copper wire price per meter"}
		_, ok := BestMatch(query, []Candidate{candidate}, cfg)
		assert.False(t, ok)
	})

	t.Run("tie prefers shorter candidate", func(t *testing.T) {
		match, ok := BestMatch("wire price", []Candidate{
			{Id: 10, Question: "price wire"},
			{Id: 11, Question: "wire  price"},
		}, cfg)
		require.True(t, ok)
		assert.Equal(t, core.ID(10), match.Id)
	})

	t.Run("empty query", func(t *testing.T) {
		_, ok := BestMatch("   ", candidates(), cfg)
		assert.False(t, ok)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, ok := BestMatch("switch ki price", nil, cfg)
		assert.False(t, ok)
	})

	t.Run("unrelated query", func(t *testing.T) {
		_, ok := BestMatch("qwerty asdf zxcv", candidates(), cfg)
		assert.False(t, ok)
	})
}

// TestMutualCoverageProperty drives BestMatch with random token sets
// and checks the token-overlap acceptance rule from both sides: a
// candidate is accepted exactly when it shares at least
// MinCommonTokens tokens with the query and both coverage ratios
// (common over query tokens, common over candidate tokens) reach
// MinCoverage, and the score is the mean of the two ratios.
func TestMutualCoverageProperty(t *testing.T) {
	cfg := DefaultConfig()
	vocab := []string{
		"switch", "wire", "cable", "bulb", "fan", "mcb",
		"price", "rate", "kitna", "kya", "hai", "chahiye",
	}
	rng := rand.New(rand.NewSource(42))

	sample := func() []string {
		perm := rng.Perm(len(vocab))
		count := 1 + rng.Intn(6)
		tokens := make([]string, count)
		for n := 0; n < count; n++ {
			tokens[n] = vocab[perm[n]]
		}
		return tokens
	}

	checked := 0
	for iter := 0; iter < 2000; iter++ {
		queryTokens := sample()
		candTokens := sample()
		query := strings.Join(queryTokens, " ")
		cand := strings.Join(candTokens, " ")

		// Keep only cases that reach the token-overlap computation;
		// equality and containment are short-circuited before it.
		if strings.Contains(query, cand) || strings.Contains(cand, query) {
			continue
		}
		checked++

		common := 0
		candSet := make(map[string]bool, len(candTokens))
		for _, tok := range candTokens {
			candSet[tok] = true
		}
		for _, tok := range queryTokens {
			if candSet[tok] {
				common++
			}
		}
		queryCoverage := float64(common) / float64(len(queryTokens))
		candCoverage := float64(common) / float64(len(candTokens))
		wantAccept := common >= cfg.MinCommonTokens &&
			queryCoverage >= cfg.MinCoverage &&
			candCoverage >= cfg.MinCoverage

		match, ok := BestMatch(query, []Candidate{{Id: 1, Question: cand}}, cfg)
		require.Equal(t, wantAccept, ok,
			"query %q candidate %q: common=%d coverage=%.2f/%.2f",
			query, cand, common, queryCoverage, candCoverage)
		if ok {
			assert.GreaterOrEqual(t, queryCoverage, cfg.MinCoverage)
			assert.GreaterOrEqual(t, candCoverage, cfg.MinCoverage)
			assert.InDelta(t, (queryCoverage+candCoverage)/2, match.Score, 1e-9)
		}
	}

	// The vocabulary is small enough that both outcomes occur; make
	// sure the loop exercised a meaningful number of cases.
	require.Greater(t, checked, 500)
}
