package core

// Chunk is one retrieved context unit. Source and Relevance are optional;
// Relevance, when set, is in [0,1].
type Chunk struct {
	Text      string
	Source    string
	Relevance float64
}

// Citation points at where a chunk came from.
type Citation struct {
	Title   string
	URL     string
	Snippet string
}

// ContextBundle is the merged retrieval result handed to synthesis.
// It is built incrementally; chunks keep insertion order.
type ContextBundle struct {
	Chunks    []Chunk
	Citations []Citation
}

// AddChunk appends a chunk to the bundle.
func (b *ContextBundle) AddChunk(c Chunk) {
	b.Chunks = append(b.Chunks, c)
}

// AddCitation appends a citation to the bundle.
func (b *ContextBundle) AddCitation(c Citation) {
	b.Citations = append(b.Citations, c)
}

// Empty reports whether the bundle carries no chunks.
func (b *ContextBundle) Empty() bool {
	return b == nil || len(b.Chunks) == 0
}
