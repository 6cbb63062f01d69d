package mlm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	probs := softmax([]float32{1, 2, 3})
	require.Len(t, probs, 3)
	var sum float64
	for _, p := range probs {
		assert.Greater(t, p, float32(0))
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, probs[2], probs[1])
	assert.Greater(t, probs[1], probs[0])
}

func TestSoftmaxLargeLogitsDoNotOverflow(t *testing.T) {
	probs := softmax([]float32{1000, 999})
	require.Len(t, probs, 2)
	assert.Greater(t, probs[0], probs[1])
	assert.InDelta(t, 1.0, float64(probs[0])+float64(probs[1]), 1e-6)
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Nil(t, softmax(nil))
}

func TestFindMaskToken(t *testing.T) {
	token, id, ok := findMaskToken(map[string]int{"[CLS]": 101, "[MASK]": 103})
	require.True(t, ok)
	assert.Equal(t, "[MASK]", token)
	assert.Equal(t, 103, id)

	token, _, ok = findMaskToken(map[string]int{"<s>": 0, "<mask>": 50264})
	require.True(t, ok)
	assert.Equal(t, "<mask>", token)

	_, _, ok = findMaskToken(map[string]int{"hello": 1})
	assert.False(t, ok)
}

func TestVocabByID(t *testing.T) {
	vocab := vocabByID(map[string]int{"a": 0, "b": 2})
	require.Len(t, vocab, 3)
	assert.Equal(t, "a", vocab[0])
	assert.Equal(t, "", vocab[1])
	assert.Equal(t, "b", vocab[2])
}

func TestInitRequiresPaths(t *testing.T) {
	var m Model
	assert.Error(t, m.Init(Config{}))
}
