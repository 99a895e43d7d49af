package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for knowledge entries.
// It is assigned from a database sequence on insert and is never
// reused within a process lifetime.
type ID uint64

// DefaultDomain is the namespace used when a caller does not name one.
const DefaultDomain = "general"

// Fingerprint generates a deterministic 64-bit key for a
// (domain, normalized question) pair using BLAKE2b hashing.
// It is the uniqueness key for upserts: teaching the same normalized
// question in the same domain overwrites the existing entry.
func Fingerprint(domain, normalizedQuestion string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write([]byte(normalizedQuestion))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Source identifies which retrieval stage produced an answer.
// Lower values are preferred when the same entry is found by
// multiple stages.
type Source int

const (
	// SourceKeyword marks a hit from the keyword/full-text stage.
	SourceKeyword Source = iota + 1
	// SourceSemantic marks a hit from the vector-similarity stage.
	SourceSemantic
	// SourceFuzzy marks a hit from the token-overlap fallback stage.
	SourceFuzzy
)

// String returns the wire name of the source tag.
func (s Source) String() string {
	switch s {
	case SourceKeyword:
		return "keyword"
	case SourceSemantic:
		return "semantic"
	case SourceFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// KnowledgeEntry is a single taught question/answer pair.
type KnowledgeEntry struct {
	Id                 ID
	Question           string // original text as taught (may be Devanagari, Latin, or mixed)
	NormalizedQuestion string // derived via normalize.Normalize, recomputed on every write
	Answer             string // returned verbatim to the caller
	Domain             string
	Confidence         float64 // author-assigned static weight in [0,1], not a match score
	UsageCount         int64   // incremented when the entry is returned as the chosen answer
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ValidationStatus   string // free-form moderation tag; the engine never filters on it
}

// QuestionRef is a lightweight (id, normalized question) pair used
// for vector index builds and fuzzy candidate sets.
type QuestionRef struct {
	Id                 ID
	NormalizedQuestion string
}

// Answer is a single ranked result returned by Ask.
type Answer struct {
	Id               ID
	Question         string
	Answer           string
	Domain           string
	Source           Source
	Score            float64
	Confidence       float64
	ValidationStatus string
}

// Match is a vector index hit: an entry id with its similarity in [0,1].
type Match struct {
	Id         ID
	Similarity float64
}
