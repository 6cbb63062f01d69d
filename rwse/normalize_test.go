package rwse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWord(t *testing.T) {
	cases := map[string]string{
		"there":     "there",
		"There":     "there",
		"THERE,":    "there",
		" there. ":  "there",
		"\"there\"": "there",
		"it's":      "it's",
		"“their”":   "their",
		"":          "",
		"  ,. ":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeWord(in), "input %q", in)
	}
}

func TestNormalizeWordKeepsInternalApostrophe(t *testing.T) {
	// Trailing punctuation goes, internal stays: "it's" must not collapse
	// into "its", which belongs to a different confusion-set slot.
	assert.Equal(t, "it's", NormalizeWord("It's,"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "I want to buy __MASK__ cars.",
		NormalizeText("  I want to buy __MASK__ cars. "))
	assert.Equal(t, "a b", NormalizeText("a\x00 b"))
	assert.Equal(t, "a\tb", NormalizeText("a\tb"))
}
