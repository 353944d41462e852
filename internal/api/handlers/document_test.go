package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, input service.ListDocumentsInput) (*service.ListDocumentsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListDocumentsOutput), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// routeRequest dispatches through a chi router so URL params resolve.
func routeRequest(handler *DocumentHandler, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/documents", handler.List)
	r.Get("/documents/{id}", handler.Get)
	r.Delete("/documents/{id}", handler.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDocumentHandler_List(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("List", mock.Anything, service.ListDocumentsInput{UserID: "user-1", Limit: 2}).
		Return(&service.ListDocumentsOutput{
			Items: []*domain.Document{
				{ID: "doc-1", FileName: "a.pdf", CreatedAt: time.Now()},
				{ID: "doc-2", FileName: "b.pdf", CreatedAt: time.Now()},
			},
			Cursor:  "next",
			HasMore: true,
		}, nil)

	rec := routeRequest(handler, authedRequest(http.MethodGet, "/documents?limit=2", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var wrapper struct {
		Data ListDocumentsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wrapper))
	assert.Len(t, wrapper.Data.Items, 2)
	assert.Equal(t, "next", wrapper.Data.Cursor)
	assert.True(t, wrapper.Data.HasMore)
}

func TestDocumentHandler_List_InvalidLimit(t *testing.T) {
	handler := NewDocumentHandler(new(MockDocumentService))

	rec := routeRequest(handler, authedRequest(http.MethodGet, "/documents?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Get(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("GetByID", mock.Anything, "doc-1").
		Return(&domain.Document{ID: "doc-1", UserID: "user-1", FileName: "a.pdf"}, nil)

	rec := routeRequest(handler, authedRequest(http.MethodGet, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.pdf")
}

func TestDocumentHandler_Get_OtherUsersDocumentHidden(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("GetByID", mock.Anything, "doc-1").
		Return(&domain.Document{ID: "doc-1", UserID: "someone-else"}, nil)

	rec := routeRequest(handler, authedRequest(http.MethodGet, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrDocumentNotFound)

	rec := routeRequest(handler, authedRequest(http.MethodGet, "/documents/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_Delete(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("GetByID", mock.Anything, "doc-1").
		Return(&domain.Document{ID: "doc-1", UserID: "user-1"}, nil)
	svc.On("Delete", mock.Anything, "doc-1").Return(nil)

	rec := routeRequest(handler, authedRequest(http.MethodDelete, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "Delete", mock.Anything, "doc-1")
}

func TestDocumentHandler_Delete_OtherUsersDocument(t *testing.T) {
	svc := new(MockDocumentService)
	handler := NewDocumentHandler(svc)

	svc.On("GetByID", mock.Anything, "doc-1").
		Return(&domain.Document{ID: "doc-1", UserID: "someone-else"}, nil)

	rec := routeRequest(handler, authedRequest(http.MethodDelete, "/documents/doc-1", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
