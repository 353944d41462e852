//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/docchat/internal/api/handlers"
	"github.com/cloo-solutions/docchat/internal/openai"
	"github.com/cloo-solutions/docchat/internal/pdf"
	"github.com/cloo-solutions/docchat/internal/repository"
	"github.com/cloo-solutions/docchat/internal/server"
	"github.com/cloo-solutions/docchat/internal/service"
	"github.com/cloo-solutions/docchat/internal/storage"
	"github.com/cloo-solutions/docchat/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

// stubEmbeddingDims is below the index dimensionality so padding is exercised.
const stubEmbeddingDims = 1536

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	OpenAIStub   *httptest.Server
	APIKeyToken  string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment: a pgvector container, a
// stubbed OpenAI upstream, and an in-process HTTP server wired like serve.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	openaiStub := newOpenAIStub()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser, token := startServer(t, pool, openaiStub.URL+"/v1", port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		OpenAIStub:   openaiStub,
		APIKeyToken:  token,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.OpenAIStub != nil {
		e.OpenAIStub.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// startServer wires repositories, services, and handlers the way serve does
// and returns the base URL, a closer, and a valid API key token.
func startServer(t *testing.T, pool *pgxpool.Pool, openaiBaseURL string, port int) (string, func(), string) {
	ctx := context.Background()

	documentRepo := repository.NewDocumentRepository(pool)
	vectorIndex := repository.NewVectorIndex(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	authSvc := service.NewAuthService(apiKeyRepo, uuidGen)

	token, err := authSvc.CreateAPIKey(ctx, "e2e-user", "e2e-test-key")
	if err != nil {
		t.Fatalf("failed to create API key: %v", err)
	}

	embeddingClient, err := openai.NewEmbeddingClient(openai.Config{
		APIKey:  "sk-e2e-stub",
		BaseURL: openaiBaseURL,
	})
	if err != nil {
		t.Fatalf("failed to create embedding client: %v", err)
	}

	embedder, err := openai.NewPaddedEmbedder(ctx, embeddingClient)
	if err != nil {
		t.Fatalf("embedding probe failed: %v", err)
	}

	chatClient, err := openai.NewChatClient(openai.ChatConfig{
		APIKey:  "sk-e2e-stub",
		BaseURL: openaiBaseURL,
	})
	if err != nil {
		t.Fatalf("failed to create chat client: %v", err)
	}

	fetcher := storage.NewFetcher(nil)
	ingestSvc := service.NewIngestService(documentRepo, vectorIndex, fetcher, embedder, pdf.Extract)
	chatSvc := service.NewChatService(embedder, vectorIndex, chatClient)
	documentSvc := service.NewDocumentService(documentRepo, vectorIndex)

	cfg := server.RouterConfig{
		AuthValidator:   authSvc,
		IngestHandler:   handlers.NewIngestHandler(ingestSvc),
		ChatHandler:     handlers.NewChatHandler(chatSvc),
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		UploadHandler:   handlers.NewUploadHandler(nil),
		AuthHandler:     handlers.NewAuthHandler(authSvc),
	}

	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}, token
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	body, status, err := e.doRaw("GET", path, nil, authToken)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(body, status)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	respBody, status, err := e.doRaw("POST", path, body, authToken)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(respBody, status)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	body, status, err := e.doRaw("DELETE", path, nil, authToken)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(body, status)
}

// PostRaw performs a POST and returns the raw body and status, for endpoints
// that respond outside the data envelope.
func (e *E2ETestEnv) PostRaw(path string, body interface{}, authToken string) ([]byte, int, error) {
	return e.doRaw("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRaw(method, path string, body interface{}, authToken string) ([]byte, int, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, 0, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	return respBody, resp.StatusCode, nil
}

func parseEnvelope(body []byte, status int) (*APIResponse, error) {
	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		if status >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", status, string(body))
		}
		return nil, err
	}

	if status >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", status, apiResp.Error)
	}

	return &apiResp, nil
}

// newOpenAIStub serves the two upstream endpoints the system calls. The
// embeddings are deterministic bag-of-words vectors, so texts that share
// words land close together under cosine distance, and the completion echoes
// back whether the retrieved context reached the prompt.
func newOpenAIStub() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type embeddingData struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]embeddingData, len(req.Input))
		for i, text := range req.Input {
			data[i] = embeddingData{
				Object:    "embedding",
				Index:     i,
				Embedding: stubEmbedding(text),
			}
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  "text-embedding-ada-002",
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	})

	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		prompt := ""
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}

		// Retrieval has no score threshold, so the context block can hold
		// chunks even for unrelated questions. Answer from the question
		// line, the way a grounded model would.
		question := prompt
		if i := strings.LastIndex(prompt, "Question:"); i >= 0 {
			question = prompt[i:]
		}

		answer := "The document does not appear to cover that."
		if strings.Contains(prompt, "Context:") && strings.Contains(strings.ToLower(question), "refund") {
			answer = "Refunds are issued within thirty days of purchase."
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-stub",
			"object": "chat.completion",
			"model":  "gpt-3.5-turbo",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]string{
						"role":    "assistant",
						"content": answer,
					},
				},
			},
		})
	})

	return httptest.NewServer(mux)
}

// stubEmbedding hashes each word onto a fixed-size vector and normalizes it.
func stubEmbedding(text string) []float32 {
	vector := make([]float32, stubEmbeddingDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vector[h.Sum32()%stubEmbeddingDims]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vector[0] = 1
		return vector
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}

// servePDF exposes content at a throwaway HTTP URL for ingestion.
func servePDF(content []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(content)
	}))
}

// buildPDF produces a minimal valid PDF with one page per entry in texts.
// An empty string yields a page with no text content.
func buildPDF(texts []string) []byte {
	var objects []string

	// Object numbering: 1 catalog, 2 pages, then per page: page obj and
	// content obj, finally the shared font object.
	fontObjNum := 3 + 2*len(texts)

	kids := make([]string, len(texts))
	for i := range texts {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}

	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, fmt.Sprintf(
		"<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(texts),
	))

	for i, text := range texts {
		pageObj := fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontObjNum, 4+2*i,
		)
		objects = append(objects, pageObj)

		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapePDFString(text))
		}
		contentObj := fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
		objects = append(objects, contentObj)
	}

	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	return s
}
