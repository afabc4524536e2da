// Package memory provides the per-user long-term memory store behind the
// dashboard pipeline.
//
// Fragments of past conversations are embedded and written to a vector
// store, namespaced by user ID. Later runs read them back by similarity
// or recency and fold them into the retrieval context.
//
// Architecture:
//   - VectorStore: storage backend (chromem-go embedded for local use,
//     swappable for a hosted index in production)
//   - embedder.Provider: text-to-vector conversion with canonical
//     dimensionality
//   - Manager: store, search, recency listing, and context assembly
//
// The dominant property of this package is that it degrades instead of
// failing: with no backend configured, or a backend that errors, every
// method is a silent no-op returning empty results. The pipeline must
// never crash because memory is absent.
package memory
