package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mem0-debug-proxy/logger"
	"mem0-debug-proxy/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const maxErrorBody = 64 * 1024

var upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mem0_llm_upstream_requests_total",
	Help: "Chat completion calls made to the upstream LLM endpoint, by outcome.",
}, []string{"provider", "outcome"})

// OpenAIConfig configures an OpenAIClient
type OpenAIConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Provider string
	Timeout  time.Duration
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	endpoint   string
	apiKey     string
	model      string
	provider   string
	httpClient *http.Client
	log        logger.Logger
}

// NewOpenAIClient creates a new upstream client
func NewOpenAIClient(cfg OpenAIConfig, log logger.Logger) *OpenAIClient {
	if log == nil {
		log = logger.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		provider:   cfg.Provider,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent(logger.ComponentUpstream),
	}
}

// GenerateResponse sends one chat completion request. With tools the result
// is structured as {"content": ..., "tool_calls": [{"name", "arguments"}]};
// otherwise it is the plain message content.
func (c *OpenAIClient) GenerateResponse(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error) {
	resp, err := c.generate(ctx, messages, opts)
	outcome := "success"
	if err != nil {
		outcome = "error"
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			outcome = "http_error"
		}
	}
	upstreamRequests.WithLabelValues(c.provider, outcome).Inc()
	return resp, err
}

func (c *OpenAIClient) generate(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error) {
	reqBody, err := json.Marshal(c.buildRequestBody(messages, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log := logger.ForRequest(ctx, c.log)
	log.Debug("🚀 Proxying to: %s (streaming: %v)", c.endpoint, opts.Stream)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn("Provider returned status %d", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if opts.Stream {
		text, err := readStream(resp.Body, log)
		if err != nil {
			return nil, err
		}
		return types.TextResponse(text), nil
	}

	var completion types.OpenAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return parseChoice(completion.Choices[0], len(opts.Tools) > 0), nil
}

// buildRequestBody starts from the caller's extra options so provider-specific
// keys pass through; the core fields always win.
func (c *OpenAIClient) buildRequestBody(messages []types.Message, opts types.GenerateOptions) map[string]interface{} {
	body := make(map[string]interface{}, len(opts.Extra)+6)
	for k, v := range opts.Extra {
		body[k] = v
	}

	body["model"] = c.model
	body["messages"] = messages
	body["stream"] = opts.Stream

	if len(opts.Tools) > 0 {
		body["tools"] = opts.Tools
		body["tool_choice"] = opts.EffectiveToolChoice()
	}

	switch rf := opts.ResponseFormat.(type) {
	case nil:
	case string:
		body["response_format"] = map[string]interface{}{"type": rf}
	default:
		body["response_format"] = rf
	}
	return body
}

func parseChoice(choice types.OpenAIChoice, withTools bool) *types.Response {
	content := ""
	if choice.Message.Content != nil {
		content = *choice.Message.Content
	}
	if !withTools {
		return types.TextResponse(content)
	}

	toolCalls := make([]interface{}, 0, len(choice.Message.ToolCalls))
	for _, call := range choice.Message.ToolCalls {
		var args interface{}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			args = call.Function.Arguments
		}
		toolCalls = append(toolCalls, map[string]interface{}{
			"name":      call.Function.Name,
			"arguments": args,
		})
	}

	return types.StructuredResponse(map[string]interface{}{
		"content":    content,
		"tool_calls": toolCalls,
	})
}
