package backends

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI implements Generator against a hosted OpenAI-compatible chat
// completions endpoint, for deployments without a local GPU.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI backend. The optional baseURL overrides the
// API endpoint (pass "" for the default); model defaults to gpt-4o-mini.
func NewOpenAI(apiKey, baseURL, model string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Name returns the backend identifier.
func (p *OpenAI) Name() string { return "openai" }

// Model returns the configured model identifier.
func (p *OpenAI) Model() string { return p.model }

// Generate sends a single chat completion request. The system instruction
// and the formatted prompt are carried as separate messages.
func (p *OpenAI) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       p.model,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("backend returned no choices")
	}

	choice := completion.Choices[0]
	return &GenerateResult{
		Text: choice.Message.Content,
		Done: choice.FinishReason == "stop",
	}, nil
}

// Health retrieves the configured model's metadata, which verifies both
// API reachability and that the model exists.
func (p *OpenAI) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaConnectTimeout)
	defer cancel()
	_, err := p.client.Models.Get(ctx, p.model)
	return err == nil
}

// Close is a no-op; the SDK manages its own connection pool.
func (p *OpenAI) Close() {}

// classifyOpenAIError maps SDK failures onto the backend error taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.StatusCode, Body: apiErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
