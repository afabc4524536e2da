package chromem_test

import (
	"context"
	"testing"

	"github.com/rishicds/orinai-sub000/memory"
	"github.com/rishicds/orinai-sub000/memory/embedder"
	"github.com/rishicds/orinai-sub000/memory/embedder/hash"
	"github.com/rishicds/orinai-sub000/memory/store/chromem"
)

func TestQueryEmptyCollection(t *testing.T) {
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	matches, err := store.Query(context.Background(), []float32{1, 0, 0, 0}, 5, nil, true)
	if err != nil {
		t.Fatalf("Query on empty collection: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("matches = %d, want 0", len(matches))
	}
}

func TestUpsertAndQueryWithFilter(t *testing.T) {
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	docs := []struct {
		id     string
		vector []float32
		user   string
	}{
		{"doc-a", []float32{1, 0, 0, 0}, "user-1"},
		{"doc-b", []float32{0, 1, 0, 0}, "user-1"},
		{"doc-c", []float32{0, 0, 1, 0}, "user-2"},
	}
	for _, d := range docs {
		meta := map[string]any{"user_id": d.user, "content": "content of " + d.id}
		if err := store.Upsert(ctx, d.id, d.vector, meta); err != nil {
			t.Fatalf("Upsert %s: %v", d.id, err)
		}
	}

	// topK larger than the filtered collection must shrink, not fail.
	matches, err := store.Query(ctx, []float32{1, 0, 0, 0}, 10, map[string]string{"user_id": "user-1"}, true)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].ID != "doc-a" {
		t.Fatalf("best match = %s, want doc-a", matches[0].ID)
	}
	if matches[0].Score < 0.9 {
		t.Fatalf("best match score = %f", matches[0].Score)
	}
	if got := matches[0].Metadata["content"]; got != "content of doc-a" {
		t.Fatalf("metadata content = %v", got)
	}
	for _, m := range matches {
		if m.Metadata["user_id"] != "user-1" {
			t.Fatalf("filter leaked user %v", m.Metadata["user_id"])
		}
	}
}

// TestManagerRoundTrip drives the full memory path: manager, embedder
// provider, and the chromem store together. The hash backend is
// deterministic, so searching for the stored text must find it with
// near-perfect similarity.
func TestManagerRoundTrip(t *testing.T) {
	store, err := chromem.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgr := memory.NewManager(store, embedder.New(hash.New(), nil), nil)
	ctx := context.Background()

	const content = "my preferred reporting currency is EUR"
	err = mgr.Store(ctx, memory.StoreInput{
		UserID:       "user-1",
		Content:      content,
		ContextLabel: "User",
		SessionID:    "sess-1",
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	results, err := mgr.Search(ctx, "user-1", content, 5, 0.9)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Entry.Content != content {
		t.Fatalf("content = %q", results[0].Entry.Content)
	}

	// Other users must never see the entry.
	other, err := mgr.Search(ctx, "user-2", content, 5, 0.0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("cross-user results = %d, want 0", len(other))
	}
}
