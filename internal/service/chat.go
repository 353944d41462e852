package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/telemetry"
)

// retrievalK is how many chunks are pulled from the index per question.
const retrievalK = 8

// promptTemplate frames the retrieved chunks and the question for the model.
// The instructions keep answers grounded: quote the document where possible,
// flag uncertainty, and decline when the context has no answer.
const promptTemplate = `You are a helpful AI assistant answering questions about a document. Use only the context below to answer. If the answer appears in the context, respond with the relevant text, quoting the document verbatim where possible. If you are unsure, say so and explain what the context does cover. If the context does not contain the answer, politely state that the document does not appear to cover the question. Do not invent information that is not in the context.

Context:
%CONTEXT%

Question: %QUESTION%

Helpful answer:`

// QueryEmbedderInterface embeds a single question for retrieval
type QueryEmbedderInterface interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CompleterInterface generates an answer from an assembled prompt
type CompleterInterface interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatService answers questions about a single ingested document by
// retrieving the most similar chunks from its namespace and asking the
// model to answer from them.
type ChatService struct {
	embedder  QueryEmbedderInterface
	index     VectorIndexInterface
	completer CompleterInterface
}

// NewChatService creates a new ChatService instance
func NewChatService(
	embedder QueryEmbedderInterface,
	index VectorIndexInterface,
	completer CompleterInterface,
) *ChatService {
	return &ChatService{
		embedder:  embedder,
		index:     index,
		completer: completer,
	}
}

// Answer takes the conversation so far, retrieves context for the latest
// user question from the document's namespace, and returns the model's
// post-processed answer.
func (s *ChatService) Answer(ctx context.Context, documentID string, messages []domain.Message) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.Answer", telemetry.SpanAttributes{
		DocumentID: documentID,
		Operation:  "answer",
	})
	defer span.End()

	question, err := domain.LatestUserQuestion(messages)
	if err != nil {
		return "", err
	}

	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	matches, err := s.index.Query(ctx, documentID, vector, retrievalK)
	if err != nil {
		span.SetError(err)
		return "", wrapRetrieval(err)
	}

	prompt := buildPrompt(question, matches)

	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		span.SetError(err)
		return "", wrapGeneration(err)
	}

	return postProcess(answer), nil
}

// buildPrompt joins match texts in descending similarity order. An empty
// match set still produces a prompt; the instructions make the model decline
// rather than hallucinate.
func buildPrompt(question string, matches []domain.ChunkMatch) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		texts = append(texts, m.Text)
	}

	prompt := strings.Replace(promptTemplate, "%CONTEXT%", strings.Join(texts, "\n\n"), 1)
	return strings.Replace(prompt, "%QUESTION%", question, 1)
}

// postProcess normalizes the raw completion: literal "\n" sequences become
// real newlines, stray backslashes are dropped, and surrounding whitespace
// is trimmed.
func postProcess(answer string) string {
	answer = strings.ReplaceAll(answer, `\n`, "\n")
	answer = strings.ReplaceAll(answer, `\`, "")
	return strings.TrimSpace(answer)
}

// wrapRetrieval tags index failures that are not already classified.
func wrapRetrieval(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval, "similarity search failed", err)
}

// wrapGeneration tags completion failures that are not already classified.
func wrapGeneration(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domain.NewDomainErrorWithCause(domain.ErrCodeGeneration, "answer generation failed", err)
}
