package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "switch kya hai", Normalize("  Switch   KYA hai "))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Normalize(""))
		assert.Equal(t, "", Normalize("   \t  "))
	})

	t.Run("canonicalizes alternate spellings", func(t *testing.T) {
		assert.Equal(t, "switch ki price kya hai", Normalize("switch ki rate kyaa he"))
		assert.Equal(t, "wire ka price", Normalize("wire ka cost"))
	})

	t.Run("canonical mapping is token level not substring", func(t *testing.T) {
		// "he" maps to "hai" only as a whole token
		assert.Equal(t, "the help desk", Normalize("the help desk"))
	})

	t.Run("transliterates devanagari", func(t *testing.T) {
		assert.Equal(t, "switch kya hai", Normalize("स्विच क्या है"))
		assert.Equal(t, "price", Normalize("कीमत"))
	})

	t.Run("mixed script converges with pure latin", func(t *testing.T) {
		assert.Equal(t, Normalize("switch kya hai"), Normalize("switch क्या है"))
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"स्विच की कीमत क्या है",
			"Switch KI rate kyaa he",
			"wire ka cost batao",
			"plain english question",
		}
		for _, input := range inputs {
			once := Normalize(input)
			assert.Equal(t, once, Normalize(once), "input %q", input)
		}
	})
}

func TestTransliterate(t *testing.T) {
	t.Run("whole words before characters", func(t *testing.T) {
		// है must map as a unit, not decompose into matras
		assert.Equal(t, "hai", Transliterate("है"))
		assert.Equal(t, "kya", Transliterate("क्या"))
	})

	t.Run("devanagari digits", func(t *testing.T) {
		assert.Equal(t, "108", Transliterate("१०८"))
	})

	t.Run("latin text passes through", func(t *testing.T) {
		assert.Equal(t, "switch price", Transliterate("switch price"))
	})
}

func TestContainsDevanagari(t *testing.T) {
	assert.True(t, ContainsDevanagari("स्विच price"))
	assert.False(t, ContainsDevanagari("switch price"))
	assert.False(t, ContainsDevanagari(""))
}

func TestVariants(t *testing.T) {
	t.Run("original always first", func(t *testing.T) {
		variants := Variants("wire ka price")
		assert.Equal(t, "wire ka price", variants[0])
	})

	t.Run("postposition and synonym swaps", func(t *testing.T) {
		variants := Variants("wire ka price")
		assert.Contains(t, variants, "wire ki price")
		assert.Contains(t, variants, "wire ka rate")
	})

	t.Run("particle removal collapses spaces", func(t *testing.T) {
		variants := Variants("switch kya hai")
		assert.Contains(t, variants, "switch kya")
		assert.Contains(t, variants, "switch hai")
	})

	t.Run("bounded and duplicate free", func(t *testing.T) {
		variants := Variants("kitna bhee shee chhota kaam ka ki ke price hai kya")
		assert.LessOrEqual(t, len(variants), MaxVariants)
		seen := make(map[string]bool)
		for _, v := range variants {
			assert.False(t, seen[v], "duplicate variant %q", v)
			seen[v] = true
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, Variants(""))
		assert.Nil(t, Variants("   "))
	})

	t.Run("no tiny variants", func(t *testing.T) {
		for _, v := range Variants("kya hai") {
			assert.GreaterOrEqual(t, len(v), 3)
		}
	})
}
