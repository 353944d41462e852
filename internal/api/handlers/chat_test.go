package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Answer(ctx context.Context, documentID string, messages []domain.Message) (string, error) {
	args := m.Called(ctx, documentID, messages)
	return args.String(0), args.Error(1)
}

func chatBody(t *testing.T, chatID string, messages ...chatMessage) []byte {
	t.Helper()
	body, err := json.Marshal(ChatRequest{Messages: messages, ChatID: chatID})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestChatHandler_Success(t *testing.T) {
	svc := new(MockChatService)
	handler := NewChatHandler(svc)

	svc.On("Answer", mock.Anything, "doc-1", []domain.Message{
		{Role: "user", Content: "what is this?"},
	}).Return("An answer.", nil)

	body := chatBody(t, "doc-1", chatMessage{Role: "user", Content: "what is this?"})
	rec := httptest.NewRecorder()

	handler.Chat(rec, authedRequest(http.MethodPost, "/chat", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "An answer.", rec.Body.String())
}

func TestChatHandler_MissingChatID(t *testing.T) {
	handler := NewChatHandler(new(MockChatService))

	body := chatBody(t, "", chatMessage{Role: "user", Content: "hi"})
	rec := httptest.NewRecorder()

	handler.Chat(rec, authedRequest(http.MethodPost, "/chat", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_NoQuestion(t *testing.T) {
	svc := new(MockChatService)
	handler := NewChatHandler(svc)

	svc.On("Answer", mock.Anything, "doc-1", mock.Anything).Return("", domain.ErrNoQuestion)

	body := chatBody(t, "doc-1")
	rec := httptest.NewRecorder()

	handler.Chat(rec, authedRequest(http.MethodPost, "/chat", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ask a question")
}

func TestChatHandler_FailureReturnsApology(t *testing.T) {
	svc := new(MockChatService)
	handler := NewChatHandler(svc)

	genErr := domain.NewDomainError(domain.ErrCodeGeneration, "model failed: quota exceeded")
	svc.On("Answer", mock.Anything, "doc-1", mock.Anything).Return("", genErr)

	body := chatBody(t, "doc-1", chatMessage{Role: "user", Content: "q"})
	rec := httptest.NewRecorder()

	handler.Chat(rec, authedRequest(http.MethodPost, "/chat", body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	// The apology embeds the failure cause so the caller can see what broke.
	assert.Contains(t, rec.Body.String(), "I apologize, but an error occurred:")
	assert.Contains(t, rec.Body.String(), "model failed: quota exceeded")
	assert.Contains(t, rec.Body.String(), "Please try again.")
}

func TestChatHandler_Unauthenticated(t *testing.T) {
	handler := NewChatHandler(new(MockChatService))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)

	handler.Chat(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
