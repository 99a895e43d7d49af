package fuzzy

import (
	"strings"

	"github.com/poiesic/jawab/core"
)

// Config holds the matcher's acceptance thresholds. The defaults are
// empirically tuned for short Q&A-style Hinglish text and should not
// be assumed to generalize beyond it.
type Config struct {
	// MinCommonTokens is the minimum number of shared tokens between
	// query and candidate. Default 2.
	MinCommonTokens int

	// MinCoverage is the minimum value both coverage ratios
	// (common/|query| and common/|candidate|) must reach. Requiring
	// mutual coverage keeps short generic queries from matching
	// unrelated long entries and vice versa. Default 0.6.
	MinCoverage float64

	// ContainRatio is the minimum length ratio for the substring
	// containment short circuit. Default 0.6.
	ContainRatio float64
}

// DefaultConfig returns the thresholds used by the retrieval engine.
func DefaultConfig() Config {
	return Config{
		MinCommonTokens: 2,
		MinCoverage:     0.6,
		ContainRatio:    0.6,
	}
}

// Candidate is a (id, normalized question) pair to score against a query.
type Candidate struct {
	Id       core.ID
	Question string
}

// Match is an accepted fuzzy hit.
type Match struct {
	Id       core.ID
	Question string
	Score    float64
}

// BestMatch scores each candidate question against the query and
// returns the best accepted match, if any. Query and candidates are
// expected to be normalized already.
//
// Cheap short circuits run first: exact equality, then substring
// containment where the contained string is at least cfg.ContainRatio
// of the container's length. Otherwise both strings are tokenized on
// whitespace; a candidate needs at least cfg.MinCommonTokens shared
// tokens and both coverage ratios >= cfg.MinCoverage. The score is
// the average of the two ratios; ties prefer the shorter (more
// specific) candidate.
//
// Pure and stateless, safe for unlimited concurrent calls. Cost is
// O(candidates x avg tokens), which is why the engine runs it last.
func BestMatch(query string, candidates []Candidate, cfg Config) (Match, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Match{}, false
	}

	queryTokens := tokenSet(query)

	var (
		best  Match
		found bool
	)
	consider := func(c Candidate, score float64) {
		if !found || score > best.Score ||
			(score == best.Score && len(c.Question) < len(best.Question)) {
			best = Match{Id: c.Id, Question: c.Question, Score: score}
			found = true
		}
	}

	for _, c := range candidates {
		candidate := strings.TrimSpace(c.Question)
		if candidate == "" {
			continue
		}

		if candidate == query {
			return Match{Id: c.Id, Question: c.Question, Score: 1}, true
		}

		if score, ok := containmentScore(query, candidate, cfg.ContainRatio); ok {
			consider(c, score)
			continue
		}

		candidateTokens := tokenSet(candidate)
		common := 0
		for tok := range queryTokens {
			if candidateTokens[tok] {
				common++
			}
		}
		if common < cfg.MinCommonTokens {
			continue
		}

		queryCoverage := float64(common) / float64(len(queryTokens))
		candidateCoverage := float64(common) / float64(len(candidateTokens))
		if queryCoverage < cfg.MinCoverage || candidateCoverage < cfg.MinCoverage {
			continue
		}
		consider(c, (queryCoverage+candidateCoverage)/2)
	}

	return best, found
}

// containmentScore checks the substring short circuit: one string
// fully contains the other and the contained string is a substantial
// part (>= minRatio of the container's length). The score is the
// length ratio, which is always >= minRatio on acceptance.
func containmentScore(query, candidate string, minRatio float64) (float64, bool) {
	shorter, longer := query, candidate
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) <= 3 || !strings.Contains(longer, shorter) {
		return 0, false
	}
	ratio := float64(len(shorter)) / float64(len(longer))
	if ratio < minRatio {
		return 0, false
	}
	return ratio, true
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
