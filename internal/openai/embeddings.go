package openai

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2

	// requestTimeout bounds each embedding call to the upstream
	requestTimeout = 60 * time.Second
	// maxRetries is the number of attempts for transient upstream failures
	maxRetries = 3
	// maxConcurrentRequests throttles outbound embedding calls
	maxConcurrentRequests = 1
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoAPIKey is returned when no OpenAI API key is configured
	ErrNoAPIKey = domain.NewDomainError(domain.ErrCodeConfiguration, "OpenAI API key not configured")
)

// EmbeddingAPI defines the raw API surface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIAdapter calls the real OpenAI embeddings endpoint
type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey, baseURL string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings for a batch of texts
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Config holds explicit configuration for the embedding client
type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel openai.EmbeddingModel
}

// EmbeddingClient wraps the OpenAI embeddings API with a bounded timeout,
// retries with backoff for transient failures, and a concurrency throttle
// that respects upstream rate limits.
type EmbeddingClient struct {
	api EmbeddingAPI
	sem chan struct{}
}

// NewEmbeddingClient creates an EmbeddingClient, failing with a configuration
// error when no credential is set.
func NewEmbeddingClient(cfg Config) (*EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return &EmbeddingClient{
		api: NewOpenAIAdapter(cfg.APIKey, cfg.BaseURL, cfg.EmbeddingModel),
		sem: make(chan struct{}, maxConcurrentRequests),
	}, nil
}

// EmbedQuery embeds a single query text.
func (c *EmbeddingClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	vectors, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of chunk texts in a single upstream call.
func (c *EmbeddingClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}
	return c.embed(ctx, texts)
}

func (c *EmbeddingClient) embed(ctx context.Context, texts []string) ([][]float32, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, classifyError(ctx.Err())
	}

	var vectors [][]float32
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		start := time.Now()
		out, err := c.api.CreateEmbeddings(callCtx, texts)
		metrics.ObserveDependency("openai_embeddings", time.Since(start))
		if err != nil {
			classified := classifyError(err)
			if domain.IsRetryable(classified) {
				return classified
			}
			return backoff.Permanent(classified)
		}
		vectors = out
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries-1),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, classifyError(err)
	}
	return vectors, nil
}
