// Package embedder converts text into fixed-length vectors.
//
// A Provider wraps one Backend (network, local model, or the deterministic
// hash fallback) and guarantees that every vector leaving it has the
// canonical dimensionality, whatever the backend natively produces.
// Batch embedding is the one deliberately throttled path in the system:
// small sequential groups with an inter-group delay.
package embedder

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Backend converts a single text into a vector of its native length.
// Implementations may fail on transport or auth errors.
type Backend interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// BatchBackend is an optional extension for backends that can embed a
// whole group in one call. The Provider uses it per group when present
// and falls back to per-item Embed calls when the batch call fails or
// returns the wrong cardinality.
type BatchBackend interface {
	Backend
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds Provider tunables. Defaults match the observed values.
type Config struct {
	// CanonicalDims is the length every returned vector is normalized to.
	CanonicalDims int

	// BatchSize is the group size for EmbedBatch.
	BatchSize int

	// BatchDelay is the pause between groups (rate-limit safety).
	BatchDelay time.Duration
}

// DefaultConfig returns the standard provider tuning.
var DefaultConfig = &Config{
	CanonicalDims: 1536,
	BatchSize:     10,
	BatchDelay:    100 * time.Millisecond,
}

// Provider is the embedding front door used by the memory subsystem.
type Provider struct {
	backend Backend
	config  *Config

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Provider over the given backend.
func New(backend Backend, config *Config) *Provider {
	if config == nil {
		config = DefaultConfig
	}
	return &Provider{
		backend: backend,
		config:  config,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Dimensions returns the canonical vector length.
func (p *Provider) Dimensions() int {
	return p.config.CanonicalDims
}

// Embed converts one text to a canonical-length vector. Backend errors
// propagate to the caller.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.backend.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return p.toCanonical(vec), nil
}

// EmbedBatch converts texts in order, preserving 1:1 cardinality. Groups
// are processed sequentially with an inter-group delay. A failing item is
// replaced by a normalized random vector instead of failing the batch.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	for start := 0; start < len(texts); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		p.embedGroup(ctx, texts, out, start, end)

		if end < len(texts) {
			select {
			case <-ctx.Done():
				// Fill the remainder so cardinality holds even on cancel.
				for i := end; i < len(texts); i++ {
					out[i] = p.randomVector()
				}
				return out, nil
			case <-time.After(p.config.BatchDelay):
			}
		}
	}

	return out, nil
}

// embedGroup fills out[start:end]. Batch-capable backends get one call
// for the whole group; anything else, and any group-level failure, runs
// item by item with random-vector substitution on error.
func (p *Provider) embedGroup(ctx context.Context, texts []string, out [][]float32, start, end int) {
	if bb, ok := p.backend.(BatchBackend); ok {
		vecs, err := bb.EmbedBatch(ctx, texts[start:end])
		if err == nil && len(vecs) == end-start {
			for i, vec := range vecs {
				out[start+i] = p.toCanonical(vec)
			}
			return
		}
		if err != nil {
			log.Printf("[EMBED] group call failed, retrying items individually: %v", err)
		} else {
			log.Printf("[EMBED] group call returned %d vectors for %d texts, retrying items individually", len(vecs), end-start)
		}
	}

	for i := start; i < end; i++ {
		vec, err := p.backend.Embed(ctx, texts[i])
		if err != nil {
			log.Printf("[EMBED] batch item %d failed, substituting random vector: %v", i, err)
			out[i] = p.randomVector()
			continue
		}
		out[i] = p.toCanonical(vec)
	}
}

// toCanonical reshapes a vector to the canonical length. Longer vectors
// are truncated; shorter ones are right-padded with values interpolated
// from the vector itself, never zeros. The result is L2-renormalized.
func (p *Provider) toCanonical(vec []float32) []float32 {
	dims := p.config.CanonicalDims
	n := len(vec)

	switch {
	case n == 0:
		return p.randomVector()
	case n == dims:
		return normalize(vec)
	case n > dims:
		truncated := make([]float32, dims)
		copy(truncated, vec[:dims])
		return normalize(truncated)
	}

	padded := make([]float32, dims)
	copy(padded, vec)
	for i := n; i < dims; i++ {
		// Sample the original vector at a fractional position so padding
		// reflects its actual distribution.
		t := float64(i-n) / float64(dims-n) * float64(n-1)
		lo := int(t)
		hi := lo + 1
		if hi >= n {
			hi = n - 1
		}
		frac := float32(t - float64(lo))
		padded[i] = vec[lo]*(1-frac) + vec[hi]*frac
	}
	return normalize(padded)
}

// randomVector produces a normalized random vector of canonical length,
// used as a batch-item substitute on failure.
func (p *Provider) randomVector() []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec := make([]float32, p.config.CanonicalDims)
	for i := range vec {
		vec[i] = float32(p.rng.Float64()*2 - 1)
	}
	return normalize(vec)
}

// normalize converts a vector to unit length.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}
