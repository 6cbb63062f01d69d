package rwse

import (
	"encoding/json"
	"sort"
)

// Prediction is one scored member of a confusion set.
type Prediction struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Result holds the scored confusion set resolved for a single check. It always
// contains exactly one prediction per member of the set, in the set's
// configured order. Scores lie in [0,1] but do not sum to 1: they are the
// slice of the model's full vocabulary distribution covered by the set.
type Result struct {
	Word        string       `json:"word"`
	Context     string       `json:"context"`
	Predictions []Prediction `json:"predictions"`
}

// Best returns the highest-scoring prediction. Ties resolve to the candidate
// that comes first in the configured set order.
func (r Result) Best() (Prediction, bool) {
	if len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	best := r.Predictions[0]
	for _, p := range r.Predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}

// Sorted returns a copy of the predictions ordered by descending score.
// Equal scores keep the configured set order.
func (r Result) Sorted() []Prediction {
	out := make([]Prediction, len(r.Predictions))
	copy(out, r.Predictions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// ScoreOf returns the score recorded for the given candidate.
func (r Result) ScoreOf(candidate string) (float64, bool) {
	for _, p := range r.Predictions {
		if p.Candidate == candidate {
			return p.Score, true
		}
	}
	return 0, false
}

// Correction is the outcome of a correction pass over one checked word.
// Suggestion equals Original when no alternative cleared the threshold.
// Certainty is the ratio between the best score and the acceptance threshold;
// values above 1 mean the suggestion was accepted.
type Correction struct {
	Original   string  `json:"original"`
	Suggestion string  `json:"suggestion"`
	Certainty  float64 `json:"certainty"`
	Result     Result  `json:"result"`
}

// Changed reports whether the correction proposes a different word.
func (c Correction) Changed() bool {
	return c.Suggestion != c.Original
}

// ScorerConfig wraps the configuration for the ONNX fill-mask scorer and its cache.
type ScorerConfig struct {
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen"`
	CacheDir      string `json:"cacheDir"`
	ModelID       string `json:"modelId"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Scorer    ScorerConfig `json:"scorer"`
	SetsPath  string       `json:"setsPath"`
	Magnitude float64      `json:"magnitude"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Magnitude <= 0 {
		c.Magnitude = 10
	}
	if c.Scorer.MaxSeqLen == 0 {
		c.Scorer.MaxSeqLen = 512
	}
}
