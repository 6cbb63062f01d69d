package rwse

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ukplab/rwse/mlm"
)

// Scorer exposes the fill-mask capability the checker needs: given text
// containing the scorer's mask token exactly once, return the model's
// probability for every vocabulary token at the masked position.
type Scorer interface {
	Score(ctx context.Context, text string) (map[string]float64, error)
	MaskToken() string
	Close() error
	ModelID() string
}

// OrtScorer is a thin wrapper over mlm.Model with distribution caching.
// Model inference dominates latency, and the model is deterministic, so
// repeated queries for the same masked sentence are served from cache.
type OrtScorer struct {
	model    *mlm.Model
	cfg      ScorerConfig
	memCache map[string][]float32
	mu       sync.RWMutex
}

// NewOrtScorer initializes the fill-mask model and prepares cache directories.
func NewOrtScorer(cfg ScorerConfig) (*OrtScorer, error) {
	if cfg.ModelID == "" && cfg.ModelPath != "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	model := &mlm.Model{}
	if err := model.Init(mlm.Config{
		OrtDLL:        cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	return &OrtScorer{
		model:    model,
		cfg:      cfg,
		memCache: make(map[string][]float32),
	}, nil
}

// Close releases model resources.
func (o *OrtScorer) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.model != nil {
		o.model.Close()
		o.model = nil
	}
	o.memCache = nil
	return nil
}

// ModelID returns the identifier used for cache keys.
func (o *OrtScorer) ModelID() string {
	return o.cfg.ModelID
}

// MaskToken returns the model's reserved mask marker.
func (o *OrtScorer) MaskToken() string {
	if o == nil || o.model == nil {
		return ""
	}
	return o.model.MaskToken()
}

// Score returns the vocabulary distribution at the masked position of text.
// The inference call ignores ctx; cached results return immediately.
func (o *OrtScorer) Score(_ context.Context, text string) (map[string]float64, error) {
	if o == nil || o.model == nil {
		return nil, fmt.Errorf("%w: scorer is closed", ErrScorerUnavailable)
	}
	if n := strings.Count(text, o.model.MaskToken()); n != 1 {
		return nil, fmt.Errorf("%w: found %d %s tokens", ErrMalformedContext, n, o.model.MaskToken())
	}
	key := o.cacheKey(text)
	if vec := o.getFromCache(key); vec != nil {
		return o.toDistribution(vec), nil
	}
	if vec, err := o.loadFromDisk(key); err == nil {
		o.storeInMemory(key, vec)
		return o.toDistribution(vec), nil
	}
	vec, err := o.model.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
	}
	o.storeInMemory(key, vec)
	_ = o.saveToDisk(key, vec)
	return o.toDistribution(vec), nil
}

// toDistribution maps the id-ordered probability vector back onto tokens.
func (o *OrtScorer) toDistribution(vec []float32) map[string]float64 {
	tokens := o.model.VocabTokens()
	dist := make(map[string]float64, len(vec))
	for i, p := range vec {
		if i >= len(tokens) || tokens[i] == "" {
			continue
		}
		dist[tokens[i]] = float64(p)
	}
	return dist
}

func (o *OrtScorer) cacheKey(text string) string {
	h := sha1.Sum([]byte(o.cfg.ModelID + "|" + text))
	return hex.EncodeToString(h[:])
}

func (o *OrtScorer) getFromCache(key string) []float32 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.memCache[key]
}

func (o *OrtScorer) storeInMemory(key string, vec []float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.memCache != nil {
		o.memCache[key] = vec
	}
}

func (o *OrtScorer) loadFromDisk(key string) ([]float32, error) {
	if o.cfg.CacheDir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(o.cfg.CacheDir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	if len(data) != 4+length*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	if err := binary.Read(bytes.NewReader(data[4:]), binary.LittleEndian, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (o *OrtScorer) saveToDisk(key string, vec []float32) error {
	if o.cfg.CacheDir == "" {
		return nil
	}
	path := filepath.Join(o.cfg.CacheDir, key+".bin")
	tmp := path + ".tmp"
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(vec)))
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
