// Package knowledge provides the generic external-knowledge collaborator
// consulted by the retrieval stage when a query needs context beyond the
// user's own memory. Sources are keyed by a coarse topic bucket sniffed
// from the query text.
package knowledge

import (
	"context"
	"strings"

	"github.com/rishicds/orinai-sub000/core"
)

// Bucket is a coarse topic category.
type Bucket string

const (
	BucketFinancial  Bucket = "financial"
	BucketClimate    Bucket = "climate"
	BucketTechnology Bucket = "technology"
	BucketGeneric    Bucket = "generic"
)

// Result is one lookup's worth of chunks and citations.
type Result struct {
	Chunks    []core.Chunk
	Citations []core.Citation
}

// Source answers a query with external context. Implementations may fail;
// the retrieval stage treats every error as transient and degrades.
type Source interface {
	Lookup(ctx context.Context, query string) (*Result, error)
}

// bucketKeywords drive topic sniffing; first bucket with a hit wins,
// scanned in declaration order.
var bucketKeywords = []struct {
	bucket   Bucket
	keywords []string
}{
	{BucketFinancial, []string{
		"market", "stock", "revenue", "price", "invest", "economy",
		"sales", "profit", "share", "finance", "earnings",
	}},
	{BucketClimate, []string{
		"climate", "weather", "temperature", "emission", "carbon",
		"energy", "environment", "renewable",
	}},
	{BucketTechnology, []string{
		"technology", "software", "smartphone", "computer", "internet",
		"device", "startup", "cloud", "digital",
	}},
}

// SniffTopic maps a query to its coarse bucket.
func SniffTopic(query string) Bucket {
	lower := strings.ToLower(query)
	for _, group := range bucketKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.bucket
			}
		}
	}
	return BucketGeneric
}
