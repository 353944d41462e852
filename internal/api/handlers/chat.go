package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloo-solutions/docchat/internal/api"
	"github.com/cloo-solutions/docchat/internal/api/middleware"
	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/metrics"
)

// chatApologyFormat wraps the failure cause when answering fails. Clients
// render the body directly, so it stays plain text.
const chatApologyFormat = "I apologize, but an error occurred: %s. Please try again."

type ChatService interface {
	Answer(ctx context.Context, documentID string, messages []domain.Message) (string, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages []chatMessage `json:"messages"`
	ChatID   string        `json:"chatId"`
}

// Chat answers the latest user question about a document. The response body
// is the plain-text answer itself.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ChatID == "" {
		api.Error(w, http.StatusBadRequest, "chatId is required")
		return
	}

	messages := make([]domain.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = domain.Message{Role: m.Role, Content: m.Content}
	}

	answer, err := h.svc.Answer(r.Context(), req.ChatID, messages)
	if err != nil {
		metrics.RecordAnswer("failure")
		writeChatError(w, err)
		return
	}

	metrics.RecordAnswer("success")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(answer))
}

func writeChatError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if errors.Is(err, domain.ErrNoQuestion) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("Please ask a question about the document."))
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, chatApologyFormat, err)
}
