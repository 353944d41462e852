package service

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_List_DefaultsAndClampsLimit(t *testing.T) {
	repo := new(MockDocumentRepository)
	svc := NewDocumentService(repo, new(MockVectorIndex))

	repo.On("ListByUserWithCursor", mock.Anything, "user-1", (*pagination.Cursor)(nil), defaultPageLimit).
		Return(&DocumentPageResult{}, nil).Once()
	repo.On("ListByUserWithCursor", mock.Anything, "user-1", (*pagination.Cursor)(nil), maxPageLimit).
		Return(&DocumentPageResult{}, nil).Once()

	_, err := svc.List(context.Background(), ListDocumentsInput{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListDocumentsInput{UserID: "user-1", Limit: 10_000})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestDocumentService_List_PassesDecodedCursor(t *testing.T) {
	repo := new(MockDocumentRepository)
	svc := NewDocumentService(repo, new(MockVectorIndex))

	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	token := pagination.EncodeCursor("doc-5", ts)

	repo.On("ListByUserWithCursor", mock.Anything, "user-1", mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "doc-5" && c.Timestamp.Equal(ts)
	}), 5).Return(&DocumentPageResult{
		Items:      []*domain.Document{{ID: "doc-6"}},
		NextCursor: "next-token",
		HasMore:    true,
	}, nil)

	out, err := svc.List(context.Background(), ListDocumentsInput{UserID: "user-1", Cursor: token, Limit: 5})

	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, "next-token", out.Cursor)
	assert.True(t, out.HasMore)
}

func TestDocumentService_List_InvalidCursor(t *testing.T) {
	svc := NewDocumentService(new(MockDocumentRepository), new(MockVectorIndex))

	out, err := svc.List(context.Background(), ListDocumentsInput{UserID: "user-1", Cursor: "%%%"})

	assert.Nil(t, out)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentService_Delete_ClearsNamespaceFirst(t *testing.T) {
	repo := new(MockDocumentRepository)
	index := new(MockVectorIndex)
	svc := NewDocumentService(repo, index)

	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1"}, nil)
	index.On("DeleteNamespace", mock.Anything, "doc-1").Return(nil)
	repo.On("Delete", mock.Anything, "doc-1").Return(nil)

	err := svc.Delete(context.Background(), "doc-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	index.AssertExpectations(t)
}

func TestDocumentService_Delete_UnknownDocument(t *testing.T) {
	repo := new(MockDocumentRepository)
	index := new(MockVectorIndex)
	svc := NewDocumentService(repo, index)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	index.AssertNotCalled(t, "DeleteNamespace", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Delete_IndexFailureKeepsRecord(t *testing.T) {
	repo := new(MockDocumentRepository)
	index := new(MockVectorIndex)
	svc := NewDocumentService(repo, index)

	indexErr := domain.NewDomainError(domain.ErrCodeIndexUnavailable, "index down")
	repo.On("GetByID", mock.Anything, "doc-1").Return(&domain.Document{ID: "doc-1"}, nil)
	index.On("DeleteNamespace", mock.Anything, "doc-1").Return(indexErr)

	err := svc.Delete(context.Background(), "doc-1")

	assert.ErrorIs(t, err, indexErr)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
