// Package hash provides the deterministic offline embedding backend.
// It needs no network and no model files: the same text always produces
// the same vector, and distinct texts land on distinct hash seeds.
// Vectors carry no semantic meaning, so similarity search degrades to
// exact-text recall, which is the accepted offline behavior.
package hash

import (
	"context"
	"hash/fnv"
	"math"
)

const nativeDimensions = 384

// Embedder is the hash-seeded fallback backend.
type Embedder struct {
	dimensions int
}

// New creates the fallback embedder.
func New() *Embedder {
	return &Embedder{dimensions: nativeDimensions}
}

// Embed derives a deterministic unit vector from the text's FNV-1a hash.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		// LCG keeps the fill deterministic per seed.
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}
	return normalize(vec), nil
}

// Dimensions returns the native vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
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
