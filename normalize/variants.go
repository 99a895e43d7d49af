package normalize

import "strings"

// MaxVariants bounds the output of Variants, including the original.
const MaxVariants = 8

// variantTable captures common Hindi/Hinglish spelling ambiguity.
// Each rule is applied independently to the normalized text to produce
// at most one variant; rules are never composed, which keeps the
// output bounded. Order is most-to-least likely.
var variantTable = []rule{
	// Postposition swaps
	{" ka ", " ki "},
	{" ki ", " ka "},
	{" ka ", " ke "},
	{" ke ", " ka "},
	{" ki ", " ke "},
	{" ke ", " ki "},

	// price/rate are interchangeable in shop queries
	{"price", "rate"},

	// Optional question particles
	{" hai", ""},
	{"kya ", ""},
	{"kitna ", ""},

	// Vowel-length collapses
	{"ee", "i"},
	{"oo", "u"},

	// Consonant-cluster simplifications
	{"chh", "ch"},
	{"sh", "s"},
	{"bh", "b"},
	{"ph", "f"},
}

// Variants generates plausible spellings of a normalized query, most
// likely first. The original text is always the first element; the
// result contains no duplicates and at most MaxVariants entries.
func Variants(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return nil
	}

	out := []string{normalized}
	seen := map[string]bool{normalized: true}

	for _, r := range variantTable {
		if len(out) >= MaxVariants {
			break
		}
		if !strings.Contains(normalized, r.from) {
			continue
		}
		v := strings.TrimSpace(strings.ReplaceAll(normalized, r.from, r.to))
		// Collapse any doubled spaces left by particle removal.
		v = strings.Join(strings.Fields(v), " ")
		if len(v) < 3 || seen[v] {
			continue
		}
		out = append(out, v)
		seen[v] = true
	}

	return out
}
