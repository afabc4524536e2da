// Package gemini provides the network embedding backend on Google's genai
// SDK. The chat side of the pipeline speaks to Claude, which has no
// embeddings endpoint, so embeddings come from Gemini.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/rishicds/orinai-sub000/core"
)

const defaultModel = "gemini-embedding-001"

// Embedder is the Gemini-backed embedding backend.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
}

// Option configures the embedder.
type Option func(*Embedder)

// WithModel overrides the embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions requests a specific output dimensionality from the model.
func WithDimensions(dims int) Option {
	return func(e *Embedder) {
		e.dimensions = dims
	}
}

// New wraps a genai client as an embedding backend.
func New(client *genai.Client, opts ...Option) *Embedder {
	e := &Embedder{
		client:     client,
		model:      defaultModel,
		dimensions: 1536,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed requests one embedding from the Gemini API.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dims := int32(e.dimensions)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed: %v", core.ErrBackendUnavailable, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no embedding values", core.ErrSchemaViolation)
	}
	return resp.Embeddings[0].Values, nil
}

// EmbedBatch requests embeddings for a whole group in one API call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	dims := int32(e.dimensions)
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini batch embed: %v", core.ErrBackendUnavailable, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: gemini returned %d embeddings for %d texts",
			core.ErrSchemaViolation, len(resp.Embeddings), len(texts))
	}
	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		vecs[i] = emb.Values
	}
	return vecs, nil
}

// Dimensions returns the requested output dimensionality.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
