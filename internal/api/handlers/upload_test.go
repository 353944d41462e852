package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploadStorage struct {
	url string
	err error
}

func (s *stubUploadStorage) GenerateUploadURL(ctx context.Context, key, contentType string) (string, error) {
	return s.url, s.err
}

func (s *stubUploadStorage) Bucket() string { return "docchat-uploads" }

func TestUploadHandler_InitUpload(t *testing.T) {
	handler := NewUploadHandler(&stubUploadStorage{url: "https://s3.example.com/presigned"})

	body, _ := json.Marshal(InitUploadRequest{FileName: "report.pdf"})
	rec := httptest.NewRecorder()

	handler.InitUpload(rec, authedRequest(http.MethodPost, "/uploads/init", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var wrapper struct {
		Data InitUploadResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wrapper))
	assert.Equal(t, "https://s3.example.com/presigned", wrapper.Data.UploadURL)
	assert.True(t, strings.HasPrefix(wrapper.Data.FileURL, "s3://docchat-uploads/uploads/"))
	assert.True(t, strings.HasSuffix(wrapper.Data.FileURL, "/report.pdf"))
	assert.NotEmpty(t, wrapper.Data.Key)
}

func TestUploadHandler_InitUpload_InvalidFileName(t *testing.T) {
	handler := NewUploadHandler(&stubUploadStorage{url: "https://s3.example.com/presigned"})

	for _, name := range []string{"", "../escape.pdf", "dir/inside.pdf"} {
		body, _ := json.Marshal(InitUploadRequest{FileName: name})
		rec := httptest.NewRecorder()

		handler.InitUpload(rec, authedRequest(http.MethodPost, "/uploads/init", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "file name %q", name)
	}
}

func TestUploadHandler_InitUpload_NoStorage(t *testing.T) {
	handler := NewUploadHandler(nil)

	body, _ := json.Marshal(InitUploadRequest{FileName: "report.pdf"})
	rec := httptest.NewRecorder()

	handler.InitUpload(rec, authedRequest(http.MethodPost, "/uploads/init", body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
