package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/fulltext"
	"github.com/poiesic/jawab/fuzzy"
	"github.com/poiesic/jawab/normalize"
	"github.com/poiesic/jawab/storage"
	"github.com/poiesic/jawab/vector"
)

// Config holds the retrieval tuning knobs.
type Config struct {
	// TopK is the maximum number of answers returned per query.
	TopK int

	// SemanticThreshold is the minimum similarity for a vector hit
	// to be considered an answer.
	SemanticThreshold float64

	// Fuzzy configures the token-overlap fallback matcher.
	Fuzzy fuzzy.Config

	// FuzzyScanLimit bounds the fuzzy candidate set. Stores larger
	// than this are prefiltered by keyword search instead of scanned
	// in full.
	FuzzyScanLimit int
}

// DefaultConfig returns the standard retrieval configuration.
func DefaultConfig() Config {
	return Config{
		TopK:              5,
		SemanticThreshold: 0.65,
		Fuzzy:             fuzzy.DefaultConfig(),
		FuzzyScanLimit:    512,
	}
}

// Engine orchestrates hybrid retrieval over the knowledge store:
// keyword search first, vector similarity when keywords come up
// short, and fuzzy token overlap as the last resort.
type Engine struct {
	repo    storage.KnowledgeRepository
	keyword *fulltext.Index
	vector  *vector.Index // nil when semantic search is not configured
	config  Config
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithVectorIndex enables the semantic stage. Without it the engine
// runs keyword and fuzzy stages only.
func WithVectorIndex(idx *vector.Index) Option {
	return func(e *Engine) error {
		e.vector = idx
		return nil
	}
}

// WithConfig overrides the default retrieval configuration.
func WithConfig(config Config) Option {
	return func(e *Engine) error {
		if config.TopK <= 0 {
			config.TopK = DefaultConfig().TopK
		}
		e.config = config
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(repo storage.KnowledgeRepository, keyword *fulltext.Index, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if keyword == nil {
		return nil, ErrKeywordIndexRequired
	}

	e := &Engine{
		repo:    repo,
		keyword: keyword,
		config:  DefaultConfig(),
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// TeachOption customizes a single taught entry.
type TeachOption func(*core.KnowledgeEntry)

// WithConfidence sets the author-assigned confidence weight.
// Default is 1.0.
func WithConfidence(confidence float64) TeachOption {
	return func(entry *core.KnowledgeEntry) {
		entry.Confidence = confidence
	}
}

// WithValidationStatus tags the entry with a moderation status.
func WithValidationStatus(status string) TeachOption {
	return func(entry *core.KnowledgeEntry) {
		entry.ValidationStatus = status
	}
}

// Teach stores a question/answer pair and marks the keyword index
// stale. Teaching the same normalized question in the same domain
// overwrites the existing answer and keeps the original id.
func (e *Engine) Teach(ctx context.Context, question, answer, domain string, opts ...TeachOption) (core.ID, error) {
	entry := &core.KnowledgeEntry{
		Question:   question,
		Answer:     answer,
		Domain:     domain,
		Confidence: 1.0,
	}
	for _, opt := range opts {
		opt(entry)
	}

	id, err := e.repo.Insert(ctx, entry)
	if err != nil {
		return 0, err
	}

	e.keyword.MarkStale()
	e.logger.Debug("taught entry", "id", id, "domain", entry.Domain)
	return id, nil
}

// Ask answers a query, returning up to TopK ranked answers.
// An unanswerable query yields an empty slice, not an error.
func (e *Engine) Ask(ctx context.Context, query, domain string) ([]*core.Answer, error) {
	return e.AskWithMonitor(ctx, query, domain, nil)
}

// AskWithMonitor answers a query with monitoring. The monitor
// receives callbacks at each stage of the retrieval process.
//
// Retrieval runs in three stages. Keyword search covers the
// normalized query and its spelling variants. When keyword hits fall
// short of TopK and a vector index is available, semantic search
// fills the remainder, filtered by SemanticThreshold. When nothing
// at all matched, the fuzzy matcher scans stored questions for token
// overlap. Results are deduplicated by id (keyword beats semantic
// beats fuzzy), ordered by stage, and truncated to TopK.
func (e *Engine) AskWithMonitor(ctx context.Context, query, domain string, monitor AskMonitor) ([]*core.Answer, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if domain == "" {
		domain = core.DefaultDomain
	}
	monitor.Start(query, domain)

	normalized := normalize.Normalize(query)
	if normalized == "" {
		return nil, ErrEmptyQuery
	}
	variants := normalize.Variants(normalized)
	monitor.AfterNormalization(normalized, variants)

	seen := make(map[core.ID]bool)
	results := make([]*core.Answer, 0, e.config.TopK)

	// 1. Keyword stage: the normalized query first, then each variant.
	// Later variants never displace an entry an earlier form found.
	keywordIds := make([]core.ID, 0, e.config.TopK)
	for _, form := range variants {
		entries, err := e.keyword.Search(ctx, form, domain, e.config.TopK)
		if err != nil {
			if errors.Is(err, storage.ErrStorage) {
				return nil, err
			}
			e.logger.Warn("keyword search failed", "form", form, "err", err)
			continue
		}
		for _, entry := range entries {
			if seen[entry.Id] {
				continue
			}
			seen[entry.Id] = true
			keywordIds = append(keywordIds, entry.Id)
			results = append(results, answerFrom(entry, core.SourceKeyword, keywordScore(normalized, entry)))
		}
	}
	monitor.AfterKeywordSearch(keywordIds)

	// 2. Semantic stage: only when keywords came up short.
	if len(results) < e.config.TopK && e.vector != nil && e.vector.Available(domain) && ctx.Err() == nil {
		matches := e.vector.Search(ctx, normalized, domain, e.config.TopK)
		monitor.AfterSemanticSearch(matches)

		semantic := make([]*core.Answer, 0, len(matches))
		for _, match := range matches {
			if match.Similarity < e.config.SemanticThreshold || seen[match.Id] {
				continue
			}
			entry, err := e.repo.Get(ctx, match.Id)
			if err != nil {
				e.logger.Warn("semantic hit vanished", "id", match.Id, "err", err)
				continue
			}
			seen[match.Id] = true
			semantic = append(semantic, answerFrom(entry, core.SourceSemantic, match.Similarity))
		}
		sort.SliceStable(semantic, func(i, j int) bool {
			return semantic[i].Score > semantic[j].Score
		})
		results = append(results, semantic...)
	}

	// 3. Fuzzy stage: last resort when nothing matched at all.
	if len(results) == 0 && ctx.Err() == nil {
		if answer := e.fuzzyFallback(ctx, normalized, domain, monitor); answer != nil {
			results = append(results, answer)
		}
	}

	if len(results) > e.config.TopK {
		results = results[:e.config.TopK]
	}
	monitor.Finish(results)

	// Usage accounting is best-effort and must not delay the answer.
	if len(results) > 0 {
		go e.bumpUsage(results[0].Id)
	}

	return results, nil
}

// fuzzyFallback scans stored questions for token overlap with the
// query. Large stores are prefiltered by keyword search so the scan
// stays bounded.
func (e *Engine) fuzzyFallback(ctx context.Context, normalized, domain string, monitor AskMonitor) *core.Answer {
	candidates, err := e.fuzzyCandidates(ctx, normalized, domain)
	if err != nil {
		e.logger.Warn("fuzzy candidate listing failed", "domain", domain, "err", err)
		return nil
	}

	match, ok := fuzzy.BestMatch(normalized, candidates, e.config.Fuzzy)
	if !ok {
		return nil
	}
	monitor.FuzzyHit(match)

	entry, err := e.repo.Get(ctx, match.Id)
	if err != nil {
		e.logger.Warn("fuzzy hit vanished", "id", match.Id, "err", err)
		return nil
	}
	return answerFrom(entry, core.SourceFuzzy, match.Score)
}

func (e *Engine) fuzzyCandidates(ctx context.Context, normalized, domain string) ([]fuzzy.Candidate, error) {
	count, err := e.repo.Count(ctx, domain)
	if err != nil {
		return nil, err
	}

	if count > e.config.FuzzyScanLimit {
		// Prefilter by individual query terms so the scan stays bounded.
		entries, err := e.repo.SearchKeywords(ctx, strings.Fields(normalized), domain, e.config.FuzzyScanLimit)
		if err != nil {
			return nil, err
		}
		candidates := make([]fuzzy.Candidate, 0, len(entries))
		for _, entry := range entries {
			candidates = append(candidates, fuzzy.Candidate{Id: entry.Id, Question: entry.NormalizedQuestion})
		}
		return candidates, nil
	}

	refs, err := e.repo.ListDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	candidates := make([]fuzzy.Candidate, 0, len(refs))
	for _, ref := range refs {
		candidates = append(candidates, fuzzy.Candidate{Id: ref.Id, Question: ref.NormalizedQuestion})
	}
	return candidates, nil
}

func (e *Engine) bumpUsage(id core.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.repo.IncrementUsage(ctx, id); err != nil {
		e.logger.Warn("usage increment failed", "id", id, "err", err)
	}
}

// keywordScore measures how much of the query's token set the stored
// question covers, floored so a keyword hit always outranks the
// semantic threshold.
func keywordScore(normalized string, entry *core.KnowledgeEntry) float64 {
	queryTokens := strings.Fields(normalized)
	if len(queryTokens) == 0 {
		return 1.0
	}
	entryTokens := make(map[string]bool)
	for _, tok := range strings.Fields(entry.NormalizedQuestion) {
		entryTokens[tok] = true
	}
	matched := 0
	for _, tok := range queryTokens {
		if entryTokens[tok] {
			matched++
		}
	}
	score := float64(matched) / float64(len(queryTokens))
	if score < 0.7 {
		score = 0.7
	}
	return score
}

func answerFrom(entry *core.KnowledgeEntry, source core.Source, score float64) *core.Answer {
	return &core.Answer{
		Id:               entry.Id,
		Question:         entry.Question,
		Answer:           entry.Answer,
		Domain:           entry.Domain,
		Source:           source,
		Score:            score,
		Confidence:       entry.Confidence,
		ValidationStatus: entry.ValidationStatus,
	}
}
