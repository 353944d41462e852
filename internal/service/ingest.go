package service

import (
	"context"
	"log"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/metrics"
	"github.com/cloo-solutions/docchat/internal/telemetry"
	"github.com/google/uuid"
)

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// VectorIndexInterface defines the interface for namespaced vector storage
type VectorIndexInterface interface {
	Upsert(ctx context.Context, namespace string, chunks []domain.Chunk, vectors [][]float32) error
	Query(ctx context.Context, namespace string, vector []float32, k int) ([]domain.ChunkMatch, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

// FetcherInterface retrieves a document payload from its source URL
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DocumentEmbedderInterface embeds chunk texts for indexing
type DocumentEmbedderInterface interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// ExtractorFunc turns a raw payload into per-page text
type ExtractorFunc func(data []byte) ([]domain.PageText, error)

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// IngestService runs the ingestion pipeline: fetch, extract, chunk, embed,
// index. Each ingestion mints a fresh document ID, which doubles as the
// vector namespace, so re-ingesting the same file yields an independent
// document rather than merging into an existing one.
type IngestService struct {
	documents DocumentRepositoryInterface
	index     VectorIndexInterface
	fetcher   FetcherInterface
	embedder  DocumentEmbedderInterface
	extract   ExtractorFunc
	splitter  *Splitter
	uuidGen   UUIDGenerator
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	documents DocumentRepositoryInterface,
	index VectorIndexInterface,
	fetcher FetcherInterface,
	embedder DocumentEmbedderInterface,
	extract ExtractorFunc,
) *IngestService {
	return &IngestService{
		documents: documents,
		index:     index,
		fetcher:   fetcher,
		embedder:  embedder,
		extract:   extract,
		splitter:  NewSplitter(DefaultSplitterConfig()),
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewIngestServiceWithUUIDGen creates a new IngestService with custom UUID generator (for testing)
func NewIngestServiceWithUUIDGen(
	documents DocumentRepositoryInterface,
	index VectorIndexInterface,
	fetcher FetcherInterface,
	embedder DocumentEmbedderInterface,
	extract ExtractorFunc,
	uuidGen UUIDGenerator,
) *IngestService {
	svc := NewIngestService(documents, index, fetcher, embedder, extract)
	svc.uuidGen = uuidGen
	return svc
}

// IngestInput represents the input for ingesting a document
type IngestInput struct {
	UserID   string
	FileURL  string
	FileName string
}

// Ingest runs the full pipeline for one document. The document record is
// created first so a caller can observe it; if any later stage fails the
// record is deleted best-effort and the original error is returned.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "ingest",
	})
	defer span.End()

	doc := &domain.Document{
		ID:        s.uuidGen.NewString(),
		UserID:    input.UserID,
		FileName:  input.FileName,
		FileURL:   input.FileURL,
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, err
	}

	if err := s.pipeline(ctx, doc); err != nil {
		span.SetError(err)
		s.compensate(ctx, doc.ID)
		return nil, err
	}

	return doc, nil
}

func (s *IngestService) pipeline(ctx context.Context, doc *domain.Document) error {
	payload, err := s.fetcher.Fetch(ctx, doc.FileURL)
	if err != nil {
		return err
	}

	pages, err := s.extract(payload)
	if err != nil {
		return err
	}

	chunks := s.splitter.SplitPages(doc.ID, pages)
	if len(chunks) == 0 {
		// A scanned or image-only PDF produces no text. The document still
		// exists; chat over it will simply find no context.
		log.Printf("ingest: document %s produced no text chunks", doc.ID)
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return domain.NewDomainError(domain.ErrCodeInternalError, "embedding count does not match chunk count")
	}

	if err := s.index.Upsert(ctx, doc.ID, chunks, vectors); err != nil {
		return err
	}
	metrics.RecordChunksIndexed(len(chunks))
	return nil
}

// compensate removes the document record after a failed ingestion. Failure
// here is logged, not surfaced, so the pipeline error stays the caller's
// answer.
func (s *IngestService) compensate(ctx context.Context, documentID string) {
	if err := s.documents.Delete(ctx, documentID); err != nil {
		log.Printf("ingest: cleanup of document %s failed: %v", documentID, err)
	}
}
