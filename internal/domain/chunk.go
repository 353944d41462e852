package domain

// EmbeddingDimensions is the system-wide vector dimensionality. Every vector
// written to or queried against the index has exactly this many dimensions;
// shorter model outputs are zero-padded, never truncated or projected.
const EmbeddingDimensions = 2048

// PageText is the extracted text of a single PDF page.
type PageText struct {
	Number int
	Text   string
}

// Chunk is a bounded segment of extracted document text. Chunks are
// ephemeral: produced by the splitter, embedded, upserted into the vector
// index, and not persisted anywhere else.
type Chunk struct {
	DocumentID string
	Page       int
	Ordinal    int
	Text       string
}

// ChunkMatch is a chunk returned from a similarity query, with its score.
// Higher scores mean higher similarity.
type ChunkMatch struct {
	DocumentID string
	Page       int
	Ordinal    int
	Text       string
	Score      float32
}
