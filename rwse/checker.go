package rwse

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// MaskPlaceholder is the generic marker callers may embed in context sentences
// in place of the checked word. The checker swaps it for the model's own mask
// token before scoring, so callers do not need to know which model is loaded.
const MaskPlaceholder = "__MASK__"

// Checker flags real-word spelling errors: words that are spelled correctly
// but wrong in context. For a (word, context) pair it resolves the confusion
// set the word belongs to and asks the scorer how likely each member of that
// set is to fill the masked slot.
//
// Check calls are safe for concurrent use as long as the scorer is; the
// registry is only swapped wholesale by Configure.
type Checker struct {
	registry *Registry
	scorer   Scorer

	cfgMu sync.RWMutex
	cfg   Config

	logger *log.Logger
}

// NewChecker constructs a checker with the given scorer and configuration.
// Confusion sets are configured separately via Configure or ConfigureFromFile.
func NewChecker(scorer Scorer, cfg Config, logger *log.Logger) (*Checker, error) {
	if scorer == nil {
		return nil, errors.New("scorer is required")
	}
	cfg.ApplyDefaults()
	return &Checker{
		registry: NewRegistry(),
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Close releases scorer resources.
func (c *Checker) Close() error {
	if c.scorer != nil {
		return c.scorer.Close()
	}
	return nil
}

// Config returns a copy of the current configuration.
func (c *Checker) Config() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg.Clone()
}

// UpdateConfig replaces the configuration.
func (c *Checker) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	c.cfgMu.Lock()
	c.cfg = cfg
	c.cfgMu.Unlock()
}

// Registry exposes the checker's confusion-set registry.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Configure replaces all confusion sets.
func (c *Checker) Configure(groups [][]string) error {
	if err := c.registry.Configure(groups); err != nil {
		return err
	}
	c.logf("configured %d confusion sets (%d words)", len(groups), c.registry.Size())
	return nil
}

// ConfigureFromFile loads confusion sets from a CSV file and replaces the
// current configuration.
func (c *Checker) ConfigureFromFile(path string) error {
	groups, err := ParseConfusionSetsFile(path)
	if err != nil {
		return err
	}
	return c.Configure(groups)
}

// InConfusionSets reports whether the word belongs to any configured set.
// Useful to probe membership without running the costly model.
func (c *Checker) InConfusionSets(word string) bool {
	return c.registry.Contains(word)
}

// Check scores every member of the word's confusion set at the masked
// position of sentence. The sentence must contain exactly one mask marker,
// either the generic MaskPlaceholder or the scorer's own mask token. The
// result holds one prediction per set member in configured order; a member
// the model cannot represent as a single token scores 0.
func (c *Checker) Check(ctx context.Context, word, sentence string) (Result, error) {
	set, err := c.registry.Lookup(word)
	if err != nil {
		return Result{}, err
	}
	masked, err := c.maskSentence(sentence)
	if err != nil {
		return Result{}, err
	}
	dist, err := c.scorer.Score(ctx, masked)
	if err != nil {
		return Result{}, err
	}
	preds := make([]Prediction, len(set))
	for i, candidate := range set {
		score, ok := dist[candidate]
		if !ok {
			// Out-of-vocabulary member: a zero sentinel keeps the result
			// complete instead of failing the whole call.
			score = 0
		}
		preds[i] = Prediction{Candidate: candidate, Score: clampUnit(score)}
	}
	return Result{Word: NormalizeWord(word), Context: sentence, Predictions: preds}, nil
}

// CheckSentence masks every token that belongs to a configured confusion set,
// one position at a time, and returns the results in token order. Tokens
// outside any set are skipped.
func (c *Checker) CheckSentence(ctx context.Context, tokens []string) ([]Result, error) {
	var results []Result
	for i, token := range tokens {
		if !c.registry.Contains(token) {
			continue
		}
		masked := make([]string, len(tokens))
		copy(masked, tokens)
		masked[i] = MaskPlaceholder
		res, err := c.Check(ctx, token, strings.Join(masked, " "))
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Correct suggests a replacement for word from its confusion set. An
// alternative is accepted only when its score exceeds the original's score
// multiplied by magnitude (capped at 1), so corrections need strong model
// support. magnitude <= 0 uses the configured default.
func (c *Checker) Correct(ctx context.Context, word, sentence string, magnitude float64) (Correction, error) {
	if magnitude <= 0 {
		magnitude = c.Config().Magnitude
	}
	res, err := c.Check(ctx, word, sentence)
	if err != nil {
		return Correction{}, err
	}
	target := NormalizeWord(word)
	corr := Correction{Original: target, Suggestion: target, Result: res}
	targetScore, ok := res.ScoreOf(target)
	if !ok {
		// Lookup guarantees membership, so this only happens on an empty set.
		return corr, nil
	}
	threshold := targetScore * magnitude
	if threshold > 1 {
		threshold = 1
	}
	bestScore := targetScore
	for _, p := range res.Predictions {
		if p.Candidate == target {
			continue
		}
		if p.Score > threshold && p.Score > bestScore {
			corr.Suggestion = p.Candidate
			bestScore = p.Score
		}
	}
	if targetScore > 0 {
		corr.Certainty = bestScore / (targetScore * magnitude)
	}
	if corr.Changed() {
		c.logf("correction %q -> %q (certainty %.4f)", target, corr.Suggestion, corr.Certainty)
	}
	return corr, nil
}

// maskSentence validates the mask marker and rewrites the generic placeholder
// into the scorer's mask token.
func (c *Checker) maskSentence(sentence string) (string, error) {
	sentence = NormalizeText(sentence)
	mask := c.scorer.MaskToken()
	generic := strings.Count(sentence, MaskPlaceholder)
	native := 0
	if mask != "" {
		native = strings.Count(sentence, mask)
	}
	switch {
	case generic == 1 && native == 0:
		return strings.Replace(sentence, MaskPlaceholder, mask, 1), nil
	case generic == 0 && native == 1:
		return sentence, nil
	default:
		return "", fmt.Errorf("%w: found %d %s and %d %s markers",
			ErrMalformedContext, generic, MaskPlaceholder, native, mask)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (c *Checker) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
