package rwse

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Magnitude)
	assert.Equal(t, 512, cfg.Scorer.MaxSeqLen)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Config{
		SetsPath:  "sets.csv",
		Magnitude: 5,
		Scorer: ScorerConfig{
			ModelPath:     "model.onnx",
			TokenizerPath: "tokenizer.json",
			ModelID:       "bert-base-uncased",
		},
	}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sets.csv", loaded.SetsPath)
	assert.Equal(t, 5.0, loaded.Magnitude)
	assert.Equal(t, "bert-base-uncased", loaded.Scorer.ModelID)
	assert.Equal(t, 512, loaded.Scorer.MaxSeqLen)
}

func TestConfigClone(t *testing.T) {
	cfg := Config{Magnitude: 3, Scorer: ScorerConfig{ModelID: "a"}}
	clone := cfg.Clone()
	clone.Scorer.ModelID = "b"
	assert.Equal(t, "a", cfg.Scorer.ModelID)
}
