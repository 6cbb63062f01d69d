// Package mlm runs a masked-language model exported to ONNX and exposes the
// probability distribution over the vocabulary at a masked position.
package mlm

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Config describes the files required to run a fill-mask model.
type Config struct {
	// OrtDLL points at the ONNX Runtime shared library. Empty uses the
	// platform default search path.
	OrtDLL string
	// ModelPath is the exported MLM-head model (logits over the vocabulary).
	ModelPath string
	// TokenizerPath is the HuggingFace tokenizer.json matching the model.
	TokenizerPath string
	// MaxSeqLen truncates longer inputs. Defaults to 512.
	MaxSeqLen int
}

// Model wraps a tokenizer and an ONNX Runtime session for fill-mask inference.
// Predict serializes calls; the session is not reentrant.
type Model struct {
	mu        sync.Mutex
	tk        *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	maskToken string
	maskID    int
	vocab     []string
	vocabIDs  map[string]int
	maxSeqLen int
}

// Known mask tokens probed in the tokenizer vocabulary, in preference order.
var maskTokenCandidates = []string{"[MASK]", "<mask>"}

// Init loads the tokenizer and opens the inference session.
func (m *Model) Init(cfg Config) error {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return errors.New("model and tokenizer paths are required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return fmt.Errorf("load tokenizer: %w", err)
	}
	vocabIDs := tk.GetVocab(true)
	maskToken, maskID, ok := findMaskToken(vocabIDs)
	if !ok {
		return fmt.Errorf("tokenizer %s defines no mask token: model does not support fill-mask", cfg.TokenizerPath)
	}
	if cfg.OrtDLL != "" {
		ort.SetSharedLibraryPath(cfg.OrtDLL)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("init onnxruntime: %w", err)
		}
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"}, nil)
	if err != nil {
		return fmt.Errorf("open onnx session: %w", err)
	}
	m.tk = tk
	m.session = session
	m.maskToken = maskToken
	m.maskID = maskID
	m.vocab = vocabByID(vocabIDs)
	m.vocabIDs = vocabIDs
	m.maxSeqLen = cfg.MaxSeqLen
	return nil
}

// Close releases the inference session. The process-wide ONNX Runtime
// environment stays initialized for other sessions.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}

// MaskToken returns the reserved marker the model expects in masked text.
func (m *Model) MaskToken() string {
	return m.maskToken
}

// TokenID resolves a vocabulary token to its id. The second return value is
// false for words the tokenizer cannot represent as a single token.
func (m *Model) TokenID(token string) (int, bool) {
	id, ok := m.vocabIDs[token]
	return id, ok
}

// VocabTokens returns the vocabulary in id order. The slice is shared and must
// not be mutated.
func (m *Model) VocabTokens() []string {
	return m.vocab
}

// Predict tokenizes text, locates the single mask token and returns the
// softmax distribution over the vocabulary at that position, id-ordered.
func (m *Model) Predict(text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, errors.New("model is not initialized")
	}
	en, err := m.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	ids := en.Ids
	attention := en.AttentionMask
	typeIDs := en.TypeIds
	if len(ids) > m.maxSeqLen {
		ids = ids[:m.maxSeqLen]
		attention = attention[:m.maxSeqLen]
		typeIDs = typeIDs[:m.maxSeqLen]
	}
	maskPos := -1
	maskCount := 0
	for i, id := range ids {
		if id == m.maskID {
			maskPos = i
			maskCount++
		}
	}
	if maskCount != 1 {
		return nil, fmt.Errorf("input must contain exactly one %s token, found %d", m.maskToken, maskCount)
	}
	seqLen := len(ids)
	shape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer inputIDs.Destroy()
	attnTensor, err := ort.NewTensor(shape, toInt64(attention))
	if err != nil {
		return nil, fmt.Errorf("attention tensor: %w", err)
	}
	defer attnTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, toInt64(typeIDs))
	if err != nil {
		return nil, fmt.Errorf("token type tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{inputIDs, attnTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}
	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		outputs[0].Destroy()
		return nil, fmt.Errorf("unexpected logits type %T", outputs[0])
	}
	defer logits.Destroy()

	data := logits.GetData()
	if seqLen == 0 || len(data)%seqLen != 0 {
		return nil, fmt.Errorf("logits shape mismatch: %d values for %d positions", len(data), seqLen)
	}
	vocabSize := len(data) / seqLen
	row := data[maskPos*vocabSize : (maskPos+1)*vocabSize]
	return softmax(row), nil
}

func findMaskToken(vocab map[string]int) (string, int, bool) {
	for _, cand := range maskTokenCandidates {
		if id, ok := vocab[cand]; ok {
			return cand, id, true
		}
	}
	return "", 0, false
}

func vocabByID(vocab map[string]int) []string {
	size := 0
	for _, id := range vocab {
		if id+1 > size {
			size = id + 1
		}
	}
	out := make([]string, size)
	for token, id := range vocab {
		if id >= 0 && id < size {
			out[id] = token
		}
	}
	return out
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

// softmax converts one row of logits into probabilities. Accumulation happens
// in float64 so small probabilities survive the exponentiation.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > max {
			max = float64(v)
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v) - max)
		exps[i] = e
		sum += e
	}
	out := make([]float32, len(logits))
	if sum == 0 {
		return out
	}
	for i, e := range exps {
		out[i] = float32(e / sum)
	}
	return out
}
