package hash_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/rishicds/orinai-sub000/memory/embedder/hash"
)

func TestEmbedDeterministic(t *testing.T) {
	e := hash.New()
	ctx := context.Background()

	a, err := e.Embed(ctx, "remember my budget")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := e.Embed(ctx, "remember my budget")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(a) != e.Dimensions() {
		t.Fatalf("len = %d, want %d", len(a), e.Dimensions())
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestEmbedDistinctTexts(t *testing.T) {
	e := hash.New()
	ctx := context.Background()

	a, _ := e.Embed(ctx, "alpha")
	b, _ := e.Embed(ctx, "beta")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct texts produced identical vectors")
	}
}

func TestEmbedNoCollisionsAcrossCorpus(t *testing.T) {
	e := hash.New()
	ctx := context.Background()

	subjects := []string{"budget", "revenue", "team velocity", "market share", "uptime", "churn", "latency", "sign-ups", "inventory", "forecast"}
	seen := make(map[string]string, 1000)
	for i := 0; i < 1000; i++ {
		text := fmt.Sprintf("quarterly report %d on %s trends", i, subjects[i%len(subjects)])

		vec, err := e.Embed(ctx, text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}

		// The leading components are enough to distinguish vectors.
		fingerprint := fmt.Sprintf("%v", vec[:8])
		if prior, ok := seen[fingerprint]; ok {
			t.Fatalf("texts %q and %q produced the same vector", prior, text)
		}
		seen[fingerprint] = text
	}
}

func TestEmbedUnitLength(t *testing.T) {
	e := hash.New()
	vec, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1) > 1e-3 {
		t.Fatalf("norm = %f, want 1", norm)
	}
}
