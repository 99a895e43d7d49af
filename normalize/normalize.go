package normalize

import "strings"

// canonicalTokens maps frequent alternate spellings onto one canonical
// token. Applied token-by-token, never by substring, so the mapping
// stays idempotent ("the" must not become "thai"). Every image token
// is a fixed point of the map.
var canonicalTokens = map[string]string{
	"kyaa":   "kya",
	"kiya":   "kya",
	"rate":   "price",
	"cost":   "price",
	"value":  "price",
	"keemat": "price",
	"daam":   "price",
	"kitne":  "kitna",
	"kitan":  "kitna",
	"he":     "hai",
	"hae":    "hai",
	"hain":   "hai",
}

// Normalize converts raw query or question text into the canonical
// comparable form used for indexing and exact-match lookup: lower
// case, trimmed, internal whitespace collapsed, Devanagari
// transliterated, alternate spellings canonicalized.
//
// Normalize is idempotent and safe for concurrent use.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	if ContainsDevanagari(text) {
		text = Transliterate(text)
	}

	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if canonical, ok := canonicalTokens[tok]; ok {
			tokens[i] = canonical
		}
	}
	return strings.Join(tokens, " ")
}
