package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rishicds/orinai-sub000/memory/embedder"
)

// Config holds Manager tunables. The similarity threshold and context
// sizes are hand-tuned values carried as configuration rather than
// constants.
type Config struct {
	// MinSimilarity is the default retrieval threshold [0.0-1.0].
	MinSimilarity float64

	// ContextRelevant caps similarity-ranked entries in BuildContext.
	ContextRelevant int

	// ContextRecent caps recency-ranked entries in BuildContext.
	ContextRecent int

	// NeutralQuery is the fixed text embedded to approximate a "list all"
	// query, which the vector store does not support natively.
	NeutralQuery string
}

// DefaultConfig returns the observed production tuning.
var DefaultConfig = &Config{
	MinSimilarity:   0.7,
	ContextRelevant: 3,
	ContextRecent:   3,
	NeutralQuery:    "conversation history",
}

// timeNow is a seam for tests that need fixed entry timestamps.
var timeNow = time.Now

// Manager is the per-user memory store. Construct one instance at the
// composition root and inject it; there is no package-level singleton.
//
// A Manager with a nil store or embedder is valid and degrades every
// operation to a silent no-op.
type Manager struct {
	store    VectorStore
	embedder *embedder.Provider
	config   *Config
}

// NewManager creates a Manager. Either backend may be nil, yielding a
// degraded manager whose methods return empty results.
func NewManager(store VectorStore, provider *embedder.Provider, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		store:    store,
		embedder: provider,
		config:   config,
	}
}

// Available reports whether the memory backend is usable.
func (m *Manager) Available() bool {
	return m != nil && m.store != nil && m.embedder != nil
}

// StoreInput describes one fragment to persist. Importance 0 means
// "use the default" (5); explicit values are clamped to [1,10].
type StoreInput struct {
	UserID       string
	Content      string
	ContextLabel string
	SessionID    string
	Importance   int
	Metadata     EntryMetadata
}

// Store embeds the content and writes one record tagged with the user ID.
// Backend failures are logged and absorbed.
func (m *Manager) Store(ctx context.Context, in StoreInput) error {
	if !m.Available() {
		return nil
	}
	if in.UserID == "" || in.Content == "" {
		return fmt.Errorf("store: userID and content are required")
	}

	importance := in.Importance
	if importance == 0 {
		importance = 5
	}
	if importance < 1 {
		importance = 1
	}
	if importance > 10 {
		importance = 10
	}

	entry := &Entry{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Content:      in.Content,
		ContextLabel: in.ContextLabel,
		Timestamp:    timeNow(),
		SessionID:    in.SessionID,
		Importance:   importance,
		Metadata:     in.Metadata,
	}

	vector, err := m.embedder.Embed(ctx, in.Content)
	if err != nil {
		log.Printf("[MEMORY] embed failed, dropping entry for user %s: %v", in.UserID, err)
		return nil
	}

	if err := m.store.Upsert(ctx, entry.ID, vector, entryToMetadata(entry)); err != nil {
		log.Printf("[MEMORY] upsert failed, dropping entry for user %s: %v", in.UserID, err)
		return nil
	}

	log.Printf("[MEMORY] stored entry %s for user %s (label=%s, importance=%d)",
		entry.ID, in.UserID, in.ContextLabel, importance)
	return nil
}

// SearchResult pairs an entry with its query similarity.
type SearchResult struct {
	Entry      *Entry
	Similarity float64
}

// Search returns at most limit entries for the user with similarity at or
// above minSimilarity, ordered by descending similarity. The store is
// over-fetched at limit*2 because its native query has no minimum-score
// filter; filtering happens here. Cross-user hits are discarded even if
// the store-side filter missed them.
func (m *Manager) Search(ctx context.Context, userID, query string, limit int, minSimilarity float64) ([]SearchResult, error) {
	if !m.Available() || limit <= 0 {
		return nil, nil
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[MEMORY] embed failed for search: %v", err)
		return nil, nil
	}

	matches, err := m.store.Query(ctx, vector, limit*2, map[string]string{"user_id": userID}, true)
	if err != nil {
		log.Printf("[MEMORY] query failed for user %s: %v", userID, err)
		return nil, nil
	}

	var results []SearchResult
	for _, match := range matches {
		entry, err := entryFromMatch(match)
		if err != nil {
			log.Printf("[MEMORY] skipping malformed match: %v", err)
			continue
		}
		if entry.UserID != userID {
			continue
		}
		similarity := float64(match.Score)
		if similarity < minSimilarity {
			continue
		}
		results = append(results, SearchResult{Entry: entry, Similarity: similarity})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Recent returns up to limit entries for the user ordered by descending
// timestamp. The store has no listing primitive, so recency is
// approximated by querying with a fixed neutral vector and re-sorting.
func (m *Manager) Recent(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	if !m.Available() || limit <= 0 {
		return nil, nil
	}

	vector, err := m.embedder.Embed(ctx, m.config.NeutralQuery)
	if err != nil {
		log.Printf("[MEMORY] embed failed for recent listing: %v", err)
		return nil, nil
	}

	matches, err := m.store.Query(ctx, vector, limit*2, map[string]string{"user_id": userID}, true)
	if err != nil {
		log.Printf("[MEMORY] recent query failed for user %s: %v", userID, err)
		return nil, nil
	}

	var entries []*Entry
	for _, match := range matches {
		entry, err := entryFromMatch(match)
		if err != nil || entry.UserID != userID {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// BuildContext assembles a combined context block: up to ContextRelevant
// similarity hits followed by up to ContextRecent recent entries, one
// "label: content" line each. Entries appearing in both lists repeat;
// callers tolerate the redundancy.
func (m *Manager) BuildContext(ctx context.Context, userID, query string) (string, error) {
	if !m.Available() {
		return "", nil
	}

	var lines []string

	relevant, _ := m.Search(ctx, userID, query, m.config.ContextRelevant, m.config.MinSimilarity)
	for _, r := range relevant {
		lines = append(lines, formatContextLine(r.Entry))
	}

	recent, _ := m.Recent(ctx, userID, m.config.ContextRecent)
	for _, e := range recent {
		lines = append(lines, formatContextLine(e))
	}

	return strings.Join(lines, "\n"), nil
}

// RecordConversation stores one entry per conversational side of a turn.
// Importance, topic, entities, and keywords come from the heuristics when
// the caller did not provide a topic label.
func (m *Manager) RecordConversation(ctx context.Context, userID, userText, assistantText, sessionID, topicLabel string) error {
	if !m.Available() {
		return nil
	}
	if userText == "" && assistantText == "" {
		return nil
	}

	topic := topicLabel
	if topic == "" {
		topic = ExtractTopic(userText)
	}
	meta := EntryMetadata{
		QueryType: "conversation",
		Entities:  ExtractEntities(userText),
		Keywords:  ExtractKeywords(userText),
		Topic:     topic,
	}
	importance := ScoreImportance(userText, assistantText)

	if userText != "" {
		if err := m.Store(ctx, StoreInput{
			UserID:       userID,
			Content:      userText,
			ContextLabel: "User",
			SessionID:    sessionID,
			Importance:   importance,
			Metadata:     meta,
		}); err != nil {
			return fmt.Errorf("record user side: %w", err)
		}
	}

	if assistantText != "" {
		if err := m.Store(ctx, StoreInput{
			UserID:       userID,
			Content:      assistantText,
			ContextLabel: "Assistant",
			SessionID:    sessionID,
			Importance:   importance,
			Metadata:     meta,
		}); err != nil {
			return fmt.Errorf("record assistant side: %w", err)
		}
	}

	return nil
}

// MinSimilarity exposes the configured retrieval threshold.
func (m *Manager) MinSimilarity() float64 {
	return m.config.MinSimilarity
}

func formatContextLine(e *Entry) string {
	label := e.ContextLabel
	if label == "" {
		label = "Memory"
	}
	return label + ": " + e.Content
}
