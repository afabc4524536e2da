package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Match is one ranked hit from a vector store query.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// VectorStore is the storage backend contract. The filter must support
// equality matching on a "user_id" field; anything richer is optional.
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string, includeMetadata bool) ([]Match, error)
}

// EntryMetadata carries the heuristic annotations attached to an entry at
// creation time.
type EntryMetadata struct {
	QueryType string
	Entities  []string
	Keywords  []string
	Topic     string
}

// Entry is one stored memory fragment: a single conversational side of a
// single turn. Entries are immutable after creation and are never deleted
// by this subsystem.
type Entry struct {
	ID           string
	UserID       string
	Content      string
	ContextLabel string
	Timestamp    time.Time
	SessionID    string

	// Importance grades future usefulness on a 1-10 scale. Stored for
	// later ranking experiments; search does not currently filter on it.
	Importance int

	Metadata EntryMetadata
}

// entryToMetadata flattens an entry into vector-store metadata.
func entryToMetadata(e *Entry) map[string]any {
	entities, _ := json.Marshal(e.Metadata.Entities)
	keywords, _ := json.Marshal(e.Metadata.Keywords)
	return map[string]any{
		"user_id":       e.UserID,
		"content":       e.Content,
		"context_label": e.ContextLabel,
		"timestamp":     e.Timestamp.Format(time.RFC3339Nano),
		"session_id":    e.SessionID,
		"importance":    strconv.Itoa(e.Importance),
		"query_type":    e.Metadata.QueryType,
		"topic":         e.Metadata.Topic,
		"entities":      string(entities),
		"keywords":      string(keywords),
	}
}

// entryFromMatch rebuilds an entry from a query hit.
func entryFromMatch(m Match) (*Entry, error) {
	userID, ok := metaString(m.Metadata, "user_id")
	if !ok || userID == "" {
		return nil, fmt.Errorf("match %s has no user_id", m.ID)
	}

	content, _ := metaString(m.Metadata, "content")
	label, _ := metaString(m.Metadata, "context_label")
	sessionID, _ := metaString(m.Metadata, "session_id")
	queryType, _ := metaString(m.Metadata, "query_type")
	topic, _ := metaString(m.Metadata, "topic")

	var timestamp time.Time
	if raw, ok := metaString(m.Metadata, "timestamp"); ok {
		timestamp, _ = time.Parse(time.RFC3339Nano, raw)
	}

	importance := 5
	if raw, ok := metaString(m.Metadata, "importance"); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			importance = v
		}
	}

	var entities, keywords []string
	if raw, ok := metaString(m.Metadata, "entities"); ok {
		json.Unmarshal([]byte(raw), &entities)
	}
	if raw, ok := metaString(m.Metadata, "keywords"); ok {
		json.Unmarshal([]byte(raw), &keywords)
	}

	return &Entry{
		ID:           m.ID,
		UserID:       userID,
		Content:      content,
		ContextLabel: label,
		Timestamp:    timestamp,
		SessionID:    sessionID,
		Importance:   importance,
		Metadata: EntryMetadata{
			QueryType: queryType,
			Entities:  entities,
			Keywords:  keywords,
			Topic:     topic,
		},
	}, nil
}

func metaString(meta map[string]any, key string) (string, bool) {
	v, ok := meta[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
