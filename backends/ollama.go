package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Timeouts for the Ollama HTTP client. Connect fails fast when the local
// server is down; read allows generation time on consumer GPUs.
const (
	ollamaConnectTimeout = 5 * time.Second
	ollamaReadTimeout    = 90 * time.Second
	ollamaPoolSize       = 10
	ollamaKeepAlive      = 30 * time.Second
)

// Typed errors the insight engine maps onto its caller-facing taxonomy.
var (
	// ErrUnavailable reports a connection failure to the backend.
	ErrUnavailable = errors.New("inference backend unreachable")
	// ErrTimeout reports that the backend did not answer within the read
	// timeout.
	ErrTimeout = errors.New("inference backend timed out")
)

// Ollama implements Generator against a local Ollama instance.
type Ollama struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllama creates an Ollama backend. baseURL defaults to the standard
// local address; model defaults to llama3.2.
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if model == "" {
		model = "llama3.2"
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   ollamaConnectTimeout,
			KeepAlive: ollamaKeepAlive,
		}).DialContext,
		MaxIdleConns:        ollamaPoolSize,
		MaxIdleConnsPerHost: ollamaPoolSize,
		IdleConnTimeout:     ollamaKeepAlive,
	}

	return &Ollama{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   ollamaReadTimeout,
		},
		baseURL: baseURL,
		model:   model,
	}
}

// Name returns the backend identifier.
func (o *Ollama) Name() string { return "ollama" }

// Model returns the configured model identifier.
func (o *Ollama) Model() string { return o.model }

// BaseURL returns the backend's root URL (no trailing slash).
func (o *Ollama) BaseURL() string { return o.baseURL }

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming /api/generate request.
func (o *Ollama) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &GenerateResult{Text: out.Response, Done: out.Done}, nil
}

// Health probes GET /api/tags with a short timeout. Any failure reads as
// unhealthy.
func (o *Ollama) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Close drops pooled idle connections.
func (o *Ollama) Close() {
	o.httpClient.CloseIdleConnections()
}

// classifyTransportError maps low-level HTTP client failures onto the
// backend error taxonomy.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		var netErr net.Error
		if errors.As(urlErr.Err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
