// Package chromem adapts chromem-go, a pure Go embedded vector database,
// as the pipeline's VectorStore backend.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/rishicds/orinai-sub000/memory"
)

const collectionName = "memories"

// Store implements memory.VectorStore over a single chromem collection.
// User partitioning happens through the user_id metadata filter rather
// than per-user collections, matching the hosted-index query model the
// store abstracts.
type Store struct {
	db *chromem.DB

	mu  sync.Mutex
	col *chromem.Collection
}

// New creates an in-memory chromem store.
func New() (*Store, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection(
		collectionName,
		nil, // no collection metadata
		nil, // embeddings are always provided by the caller
	)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Store{db: db, col: col}, nil
}

// Upsert writes one record. Metadata values are flattened to strings,
// which is the only value type chromem supports.
func (s *Store) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = fmt.Sprint(v)
	}

	// chromem requires non-empty document content; the entry text doubles
	// as the document body.
	content := meta["content"]
	if content == "" {
		content = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Content:   content,
		Embedding: vector,
		Metadata:  meta,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query returns up to topK ranked matches. chromem rejects result counts
// larger than the collection, so the requested size shrinks until the
// query succeeds; an empty collection yields no matches rather than an
// error.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter map[string]string, includeMetadata bool) ([]memory.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []chromem.Result
	for n := topK; n >= 1; n-- {
		var err error
		results, err = s.col.QueryEmbedding(ctx, vector, n, filter, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if n == 1 {
				log.Printf("[CHROMEM] collection empty for filter %v", filter)
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]memory.Match, 0, len(results))
	for _, r := range results {
		match := memory.Match{
			ID:    r.ID,
			Score: r.Similarity,
		}
		if includeMetadata {
			match.Metadata = make(map[string]any, len(r.Metadata))
			for k, v := range r.Metadata {
				match.Metadata[k] = v
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// isInsufficientDocsError matches chromem's complaint when nResults
// exceeds the collection size.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
