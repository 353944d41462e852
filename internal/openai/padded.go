package openai

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/docchat/internal/domain"
)

// probeText is the sentinel embedded once at construction time to verify the
// upstream is reachable and the credential is valid.
const probeText = "test"

// Embedder is the embedding capability the rest of the system consumes.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// PaddedEmbedder decorates an Embedder so that every vector it returns has
// exactly domain.EmbeddingDimensions dimensions. Shorter model outputs are
// zero-padded at the tail; genuine model output is never altered or
// reordered. Vectors longer than the target dimensionality are rejected.
type PaddedEmbedder struct {
	inner      Embedder
	dimensions int
}

// NewPaddedEmbedder wraps inner and performs a liveness probe. Construction
// fails fast when the probe errors or its padded output does not have the
// expected dimensionality, so callers never defer upstream failures to first
// real use.
func NewPaddedEmbedder(ctx context.Context, inner Embedder) (*PaddedEmbedder, error) {
	return NewPaddedEmbedderWithDimensions(ctx, inner, domain.EmbeddingDimensions)
}

// NewPaddedEmbedderWithDimensions wraps inner with an explicit target
// dimensionality.
func NewPaddedEmbedderWithDimensions(ctx context.Context, inner Embedder, dimensions int) (*PaddedEmbedder, error) {
	if dimensions <= 0 {
		return nil, domain.NewDomainError(domain.ErrCodeConfiguration, "embedding dimensions must be positive")
	}

	e := &PaddedEmbedder{inner: inner, dimensions: dimensions}

	probe, err := e.EmbedQuery(ctx, probeText)
	if err != nil {
		return nil, fmt.Errorf("embedding liveness probe failed: %w", err)
	}
	if len(probe) != dimensions {
		return nil, domain.NewDomainError(
			domain.ErrCodeConfiguration,
			fmt.Sprintf("embedding probe returned %d dimensions, expected %d", len(probe), dimensions),
		)
	}

	return e, nil
}

// Dimensions returns the fixed output dimensionality.
func (e *PaddedEmbedder) Dimensions() int {
	return e.dimensions
}

// EmbedQuery embeds a query and pads the result to the fixed dimensionality.
func (e *PaddedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return e.pad(vector)
}

// EmbedDocuments embeds a batch and pads every result to the fixed
// dimensionality.
func (e *PaddedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	padded := make([][]float32, len(vectors))
	for i, v := range vectors {
		p, err := e.pad(v)
		if err != nil {
			return nil, err
		}
		padded[i] = p
	}
	return padded, nil
}

func (e *PaddedEmbedder) pad(vector []float32) ([]float32, error) {
	if len(vector) > e.dimensions {
		return nil, domain.NewDomainError(
			domain.ErrCodeConfiguration,
			fmt.Sprintf("model returned %d dimensions, more than the configured %d", len(vector), e.dimensions),
		)
	}
	if len(vector) == e.dimensions {
		return vector, nil
	}
	padded := make([]float32, e.dimensions)
	copy(padded, vector)
	return padded, nil
}
