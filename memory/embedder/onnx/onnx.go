//go:build onnx

// Package onnx provides a local-model embedding backend running a MiniLM
// sentence transformer through ONNX Runtime. It gives real semantic
// similarity without network access, at the cost of shipping model files.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const sequenceLength = 128

// Config configures the ONNX backend.
type Config struct {
	// ModelPath points at the .onnx model file.
	ModelPath string

	// TokenizerPath points at the HuggingFace tokenizer.json.
	TokenizerPath string

	// LibraryPath points at libonnxruntime.so. Empty uses the runtime's
	// default search path.
	LibraryPath string

	// Dimensions is the model's hidden size (default 384 for MiniLM).
	Dimensions int
}

// Embedder runs sentence embeddings through an ONNX session.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New loads the model and tokenizer and opens an inference session.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed tokenizes the text, runs inference, and mean-pools the hidden
// states into a unit vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inputIDs, attentionMask := e.tokenizer.encode(text, sequenceLength)
	tokenTypeIDs := make([]int64, sequenceLength)

	shape := ort.NewShape(1, int64(sequenceLength))
	inputs := make([]ort.Value, 0, 3)
	for _, data := range [][]int64{inputIDs, attentionMask, tokenTypeIDs} {
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, in := range inputs {
				in.Destroy()
			}
			return nil, fmt.Errorf("create input tensor: %w", err)
		}
		inputs = append(inputs, tensor)
	}
	defer func() {
		for _, in := range inputs {
			in.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	return e.pool(tensor, attentionMask)
}

// pool reduces the model output to a single unit vector. Handles both
// pre-pooled [1, dims] outputs and raw [1, seq, dims] hidden states.
func (e *Embedder) pool(tensor *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := tensor.GetData()
	shape := tensor.GetShape()

	if len(shape) == 2 {
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("output dimension mismatch: got %d, want %d", len(data), e.dimensions)
		}
		vec := make([]float32, e.dimensions)
		copy(vec, data[:e.dimensions])
		return normalize(vec), nil
	}

	if len(shape) != 3 || shape[0] != 1 || shape[2] != int64(e.dimensions) {
		return nil, fmt.Errorf("unexpected output shape: %v", shape)
	}

	// Mean pooling over attended positions only.
	seqLen := int(shape[1])
	vec := make([]float32, e.dimensions)
	var attended float32
	for i := 0; i < seqLen; i++ {
		if i >= len(attentionMask) || attentionMask[i] == 0 {
			continue
		}
		attended++
		offset := i * e.dimensions
		for j := 0; j < e.dimensions; j++ {
			vec[j] += data[offset+j]
		}
	}
	if attended == 0 {
		return nil, fmt.Errorf("no attended tokens in output")
	}
	for j := range vec {
		vec[j] /= attended
	}
	return normalize(vec), nil
}

// Dimensions returns the model's hidden size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

// wordPieceTokenizer is a minimal BERT-style WordPiece tokenizer backed
// by a HuggingFace tokenizer.json vocabulary.
type wordPieceTokenizer struct {
	vocab map[string]int
	cls   int64
	sep   int64
	unk   int64
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	return &wordPieceTokenizer{
		vocab: file.Model.Vocab,
		cls:   101,
		sep:   102,
		unk:   100,
	}, nil
}

// encode produces fixed-length input_ids and attention_mask slices with
// [CLS] and [SEP] framing.
func (t *wordPieceTokenizer) encode(text string, maxLen int) ([]int64, []int64) {
	ids := t.tokenize(text)
	if len(ids) > maxLen-2 {
		ids = ids[:maxLen-2]
	}

	inputIDs := make([]int64, maxLen)
	attentionMask := make([]int64, maxLen)

	inputIDs[0] = t.cls
	attentionMask[0] = 1
	for i, id := range ids {
		inputIDs[i+1] = id
		attentionMask[i+1] = 1
	}
	inputIDs[len(ids)+1] = t.sep
	attentionMask[len(ids)+1] = 1

	return inputIDs, attentionMask
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var ids []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			ids = append(ids, int64(id))
			continue
		}
		for _, piece := range t.split(word) {
			if id, ok := t.vocab[piece]; ok {
				ids = append(ids, int64(id))
			} else {
				ids = append(ids, t.unk)
			}
		}
	}
	return ids
}

// split performs greedy longest-prefix WordPiece segmentation.
func (t *wordPieceTokenizer) split(word string) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}
	return pieces
}
