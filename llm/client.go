// Package llm defines the generation contract the debug proxy wraps and an
// OpenAI-compatible upstream client that satisfies it.
package llm

import (
	"context"
	"fmt"

	"mem0-debug-proxy/types"
)

// Client is the single capability the debug proxy needs from an LLM client.
// Implementations return a text or structured Response, or an error.
type Client interface {
	GenerateResponse(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error)
}

// ClientFunc adapts a plain function to Client
type ClientFunc func(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error)

// GenerateResponse calls f
func (f ClientFunc) GenerateResponse(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error) {
	return f(ctx, messages, opts)
}

// StatusError is returned when the upstream answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}
