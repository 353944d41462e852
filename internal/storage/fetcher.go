package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/cloo-solutions/docchat/internal/metrics"
)

const (
	fetchTimeout = 2 * time.Minute

	// maxPayloadBytes caps how much of a remote file ingestion will read.
	maxPayloadBytes = 64 << 20
)

// ObjectStore is the subset of S3Client the fetcher needs.
type ObjectStore interface {
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

// Fetcher retrieves document payloads. http(s) URLs are fetched directly;
// s3://bucket/key URLs are read from the configured object store.
type Fetcher struct {
	httpClient *http.Client
	store      ObjectStore
}

// NewFetcher creates a Fetcher. store may be nil when no object storage is
// configured; s3 URLs then fail with a fetch error.
func NewFetcher(store ObjectStore) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		store:      store,
	}
}

// Fetch downloads the payload behind fileURL.
func (f *Fetcher) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid file URL", err)
	}

	switch parsed.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, fileURL)
	case "s3":
		return f.fetchS3(ctx, parsed)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			fmt.Sprintf("unsupported URL scheme %q", parsed.Scheme))
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid file URL", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	metrics.ObserveDependency("http_fetch", time.Since(start))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeFetch, "failed to fetch file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewDomainError(domain.ErrCodeFetch,
			fmt.Sprintf("fetch returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeFetch, "failed to read file body", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, domain.NewDomainError(domain.ErrCodeFetch, "file exceeds maximum payload size")
	}

	return data, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, parsed *url.URL) ([]byte, error) {
	if f.store == nil {
		return nil, domain.NewDomainError(domain.ErrCodeFetch, "object storage is not configured")
	}

	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "s3 URL is missing an object key")
	}

	start := time.Now()
	data, err := f.store.FetchObject(ctx, key)
	metrics.ObserveDependency("s3", time.Since(start))
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeFetch, "failed to fetch object", err)
	}
	return data, nil
}
