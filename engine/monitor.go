package engine

import (
	"github.com/poiesic/jawab/core"
	"github.com/poiesic/jawab/fuzzy"
)

// AskMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results
// while answering a query.
type AskMonitor interface {
	Start(query, domain string)
	AfterNormalization(normalized string, variants []string)
	AfterKeywordSearch(ids []core.ID)
	AfterSemanticSearch(matches []core.Match)
	FuzzyHit(match fuzzy.Match)
	Finish(answers []*core.Answer)
}

// noopMonitor is a no-op implementation of AskMonitor
type noopMonitor struct{}

var _ AskMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                       {}
func (n *noopMonitor) AfterNormalization(_ string, _ []string) {}
func (n *noopMonitor) AfterKeywordSearch(_ []core.ID)          {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.Match)      {}
func (n *noopMonitor) FuzzyHit(_ fuzzy.Match)                  {}
func (n *noopMonitor) Finish(_ []*core.Answer)                 {}
