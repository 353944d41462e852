package openai

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/docchat/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the model used for grounded answer generation
	DefaultChatModel = openai.GPT3Dot5Turbo

	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// CompletionAPI defines the raw API surface for chat completion
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, prompt string) (string, error)
}

// ChatAdapter calls the real OpenAI chat completions endpoint
type ChatAdapter struct {
	client *openai.Client
	model  string
}

func NewChatAdapter(apiKey, baseURL, model string) *ChatAdapter {
	if model == "" {
		model = DefaultChatModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &ChatAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// CreateCompletion sends the composed prompt and returns the full completion
// text. Generation is a single logical call; token-level streaming, if
// wanted, is a transport concern layered outside this client.
func (a *ChatAdapter) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatClient generates grounded answers from composed prompts.
type ChatClient struct {
	api CompletionAPI
}

// ChatConfig holds explicit configuration for the chat client
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewChatClient creates a ChatClient, failing with a configuration error when
// no credential is set.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &ChatClient{api: NewChatAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model)}, nil
}

// Complete generates a completion for the prompt, classifying upstream
// failures into the domain taxonomy.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}
	start := time.Now()
	text, err := c.api.CreateCompletion(ctx, prompt)
	metrics.ObserveDependency("openai_chat", time.Since(start))
	if err != nil {
		return "", classifyError(err)
	}
	return text, nil
}
