// Package backends defines the Generator interface and shared data types
// for inference backends. The insight engine calls whichever backend the
// deployment configures: a local Ollama instance by default, or a hosted
// OpenAI-compatible endpoint.
package backends

import (
	"context"
	"fmt"
)

// Generator is the contract every inference backend implements.
type Generator interface {
	// Name returns the backend identifier ("ollama", "openai").
	Name() string
	// Model returns the model identifier requests are sent to.
	Model() string
	// Generate issues a single non-streaming completion call.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// Health probes backend availability with a short timeout. It never
	// returns an error; unreachable means false.
	Health(ctx context.Context) bool
	// Close releases pooled connections. Call at process shutdown.
	Close()
}

// GenerateRequest carries the final formatted prompt and sampling options
// for a single completion call.
type GenerateRequest struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// GenerateResult is the normalised backend response. Backend metadata
// beyond the generated text and the completion flag is discarded.
type GenerateResult struct {
	Text string
	Done bool
}

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}
