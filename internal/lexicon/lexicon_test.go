package lexicon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/shipyard-negotiation/internal/lexicon"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"my", "registry", "is", "kx-4471", "i'm", "sure"},
		lexicon.Tokenize("My registry is KX-4471. I'm sure!"))
	assert.Empty(t, lexicon.Tokenize("  ...  "))
}

func TestSentences(t *testing.T) {
	tests := []struct {
		text               string
		total, questioning int
	}{
		{"It is mine. I flew it here!", 2, 0},
		{"Is it mine? Yes.", 2, 1},
		{"no punctuation at all", 1, 0},
		{"...", 0, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		total, q := lexicon.Sentences(tt.text)
		assert.Equal(t, tt.total, total, tt.text)
		assert.Equal(t, tt.questioning, q, tt.text)
	}
}

func TestCountPhrases_WordBoundaries(t *testing.T) {
	assert.Equal(t, 0, lexicon.CountPhrases("a cumbersome hull", []string{"um"}))
	assert.Equal(t, 1, lexicon.CountPhrases("um, it's mine", []string{"um"}))
	assert.Equal(t, 2, lexicon.CountPhrases("maybe, i think so", lexicon.Hedges))
	assert.Equal(t, 1, lexicon.CountPhrases("definitely definitely", lexicon.Assertives))
}

func TestHasDigitAndIsCommon(t *testing.T) {
	assert.True(t, lexicon.HasDigit("bay-7"))
	assert.False(t, lexicon.HasDigit("bay"))
	assert.True(t, lexicon.IsCommon("the"))
	assert.False(t, lexicon.IsCommon("transponder"))
}
