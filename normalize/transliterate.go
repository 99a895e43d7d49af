package normalize

import (
	"sort"
	"strings"
)

// rule is a single (pattern, replacement) substitution pair.
type rule struct {
	from string
	to   string
}

// translitTable maps Devanagari sequences to Latin phonetic
// approximations. Whole words and conjunct consonants come before the
// single-character fallbacks because naive per-character substitution
// mangles conjuncts (e.g. the ksh / tr / gy clusters).
var translitTable = []rule{
	// Common whole words
	{"है", "hai"}, {"हैं", "hain"}, {"था", "tha"}, {"थे", "the"},
	{"को", "ko"}, {"का", "ka"}, {"की", "ki"}, {"के", "ke"},
	{"में", "mein"}, {"से", "se"}, {"पर", "par"}, {"या", "ya"},
	{"और", "aur"}, {"तो", "to"}, {"ने", "ne"}, {"यह", "yah"},
	{"वह", "vah"}, {"जो", "jo"}, {"कि", "ki"}, {"जब", "jab"},

	// Shop vocabulary that has an established Latin spelling
	{"स्विच", "switch"}, {"वायर", "wire"}, {"सॉकेट", "socket"},
	{"बल्ब", "bulb"}, {"फैन", "fan"}, {"बैटरी", "battery"},
	{"इनवर्टर", "inverter"}, {"केबल", "cable"}, {"प्राइस", "price"},
	{"रेट", "rate"}, {"कीमत", "keemat"}, {"दाम", "daam"},
	{"कितना", "kitna"}, {"कितने", "kitne"},
	{"रुपये", "rupees"}, {"पैसे", "paise"},

	// Conjunct consonants
	{"क्ष", "ksh"}, {"त्र", "tr"}, {"ज्ञ", "gy"},

	// Independent vowels
	{"अ", "a"}, {"आ", "aa"}, {"इ", "i"}, {"ई", "ee"}, {"उ", "u"},
	{"ऊ", "oo"}, {"ए", "e"}, {"ऐ", "ai"}, {"ओ", "o"}, {"औ", "au"},
	{"ऋ", "ri"},

	// Consonants
	{"क", "k"}, {"ख", "kh"}, {"ग", "g"}, {"घ", "gh"}, {"ङ", "ng"},
	{"च", "ch"}, {"छ", "chh"}, {"ज", "j"}, {"झ", "jh"}, {"ञ", "ny"},
	{"ट", "t"}, {"ठ", "th"}, {"ड", "d"}, {"ढ", "dh"}, {"ण", "n"},
	{"त", "t"}, {"थ", "th"}, {"द", "d"}, {"ध", "dh"}, {"न", "n"},
	{"प", "p"}, {"फ", "ph"}, {"ब", "b"}, {"भ", "bh"}, {"म", "m"},
	{"य", "y"}, {"र", "r"}, {"ल", "l"}, {"व", "v"},
	{"श", "sh"}, {"ष", "sh"}, {"स", "s"}, {"ह", "h"},

	// Matras (dependent vowel signs)
	{"ा", "a"}, {"ि", "i"}, {"ी", "ee"}, {"ु", "u"}, {"ू", "oo"},
	{"े", "e"}, {"ै", "ai"}, {"ो", "o"}, {"ौ", "au"},
	{"ं", "n"}, {"ः", "h"}, {"ँ", "n"},
	{"्", ""}, // halant suppresses the inherent vowel

	// Digits
	{"०", "0"}, {"१", "1"}, {"२", "2"}, {"३", "3"}, {"४", "4"},
	{"५", "5"}, {"६", "6"}, {"७", "7"}, {"८", "8"}, {"९", "9"},
}

// translitReplacer applies translitTable longest-match-first.
// strings.Replacer tries patterns in argument order at each position,
// so sorting by pattern length descending yields longest-match-first.
var translitReplacer = newTableReplacer(translitTable)

func newTableReplacer(table []rule) *strings.Replacer {
	sorted := make([]rule, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].from) > len(sorted[j].from)
	})
	pairs := make([]string, 0, 2*len(sorted))
	for _, r := range sorted {
		pairs = append(pairs, r.from, r.to)
	}
	return strings.NewReplacer(pairs...)
}

// ContainsDevanagari reports whether s contains any code point in the
// Devanagari block (U+0900 - U+097F).
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// Transliterate converts Devanagari text to a Latin phonetic
// approximation. Latin text passes through unchanged; mixed-script
// input keeps its Latin parts as-is. The result has collapsed
// whitespace.
func Transliterate(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(translitReplacer.Replace(text)), " ")
}
