package service

import (
	"context"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/pagination"
	"github.com/cloo-solutions/docchat/internal/telemetry"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// DocumentPageResult is one page of a document listing
type DocumentPageResult struct {
	Items      []*domain.Document
	NextCursor string
	HasMore    bool
}

// DocumentListerInterface defines the repository interface for document reads
type DocumentListerInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByUserWithCursor(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*DocumentPageResult, error)
	Delete(ctx context.Context, id string) error
}

// DocumentService handles reads and deletion of ingested documents
type DocumentService struct {
	documents DocumentListerInterface
	index     VectorIndexInterface
}

// NewDocumentService creates a new DocumentService instance
func NewDocumentService(documents DocumentListerInterface, index VectorIndexInterface) *DocumentService {
	return &DocumentService{documents: documents, index: index}
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.GetByID", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "get",
	})
	defer span.End()

	return s.documents.GetByID(ctx, id)
}

type ListDocumentsInput struct {
	UserID string
	Cursor string
	Limit  int
}

type ListDocumentsOutput struct {
	Items   []*domain.Document
	Cursor  string
	HasMore bool
}

// List returns one page of the user's documents, newest first.
func (s *DocumentService) List(ctx context.Context, input ListDocumentsInput) (*ListDocumentsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.List", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "list",
	})
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.documents.ListByUserWithCursor(ctx, input.UserID, cursor, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ListDocumentsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Delete removes a document and clears its vector namespace. The namespace
// is cleared first so a half-failed delete never leaves orphaned vectors
// behind a missing document record.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.Delete", telemetry.SpanAttributes{
		DocumentID: id,
		Operation:  "delete",
	})
	defer span.End()

	if _, err := s.documents.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.index.DeleteNamespace(ctx, id); err != nil {
		span.SetError(err)
		return err
	}

	return s.documents.Delete(ctx, id)
}
