package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIKey = "DOCCHAT_API_KEY"
	envAPIURL = "DOCCHAT_API_URL"

	defaultAPIURL = "http://localhost:8080"
)

type APIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewAPIClientWithCmd resolves credentials through the cascade
// flag → environment → saved config → default URL. A nil cmd skips the
// flag layer.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	var key, url string

	if cmd != nil {
		key, _ = cmd.Flags().GetString("api-key")
		url, _ = cmd.Flags().GetString("api-url")
	}
	if key == "" {
		key = os.Getenv(envAPIKey)
	}
	if url == "" {
		url = os.Getenv(envAPIURL)
	}

	if key == "" || url == "" {
		saved, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if saved != nil {
			if key == "" {
				key = saved.APIKey
			}
			if url == "" {
				url = saved.APIURL
			}
		}
	}

	if key == "" {
		return nil, fmt.Errorf("%s not set (run 'docchat init' or set environment variable)", envAPIKey)
	}
	if url == "" {
		url = defaultAPIURL
	}

	return NewAPIClientWithConfig(key, url)
}

func NewAPIClient() (*APIClient, error) {
	_ = godotenv.Load()
	return NewAPIClientWithCmd(nil)
}

// NewAPIClientWithConfig builds a client from explicit values; init uses this
// before any config exists.
func NewAPIClientWithConfig(apiKey, baseURL string) (*APIClient, error) {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Ingestion fetches, extracts, and embeds before responding.
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// APIResponse is the server's standard data envelope.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// APIError carries a non-2xx response back to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(path string) (*APIResponse, error) {
	return c.do(http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *APIClient) Post(path string, body interface{}) (*APIResponse, error) {
	return c.do(http.MethodPost, path, body)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(path string) (*APIResponse, error) {
	return c.do(http.MethodDelete, path, nil)
}

// PostRaw performs a POST and returns the raw response body. Used for
// endpoints that respond outside the data envelope, like /ingest and the
// plain-text /chat.
func (c *APIClient) PostRaw(path string, body interface{}) ([]byte, int, error) {
	return c.doRaw(http.MethodPost, path, body)
}

func (c *APIClient) do(method, path string, body interface{}) (*APIResponse, error) {
	raw, status, err := c.doRaw(method, path, body)
	if err != nil {
		return nil, err
	}

	var envelope APIResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Error pages from proxies are not JSON; surface the body as-is.
		if status >= 400 {
			return nil, &APIError{StatusCode: status, Message: string(raw)}
		}
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if status >= 400 {
		return nil, &APIError{StatusCode: status, Message: envelope.Error}
	}
	return &envelope, nil
}

func (c *APIClient) doRaw(method, path string, body interface{}) ([]byte, int, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// UploadFile streams a local file to a presigned URL with a PUT.
func (c *APIClient) UploadFile(uploadURL, filePath, contentType string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if stat.IsDir() {
		return errors.New("cannot upload a directory")
	}

	req, err := http.NewRequest(http.MethodPut, uploadURL, f)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
