package proxy

import (
	"context"
	"strings"

	"mem0-debug-proxy/config"
	"mem0-debug-proxy/internal"
	"mem0-debug-proxy/llm"
	"mem0-debug-proxy/logger"
	"mem0-debug-proxy/types"
)

// LogMarker prefixes every debug proxy log line
const LogMarker = "[MEM0_DEBUG_LLM]"

// debugProviders are the provider names whose calls get traced. Kept literal.
var debugProviders = map[string]struct{}{
	"aws_bedrock": {},
	"bedrock":     {},
	"aws":         {},
}

// contextProjection is the only part of the request context that is logged.
// Field order is the order it appears in log lines.
type contextProjection struct {
	UserID   interface{} `json:"user_id"`
	AgentID  interface{} `json:"agent_id"`
	RunID    interface{} `json:"run_id"`
	Infer    interface{} `json:"infer"`
	Endpoint interface{} `json:"endpoint"`
}

func projectContext(rc internal.RequestContext) contextProjection {
	return contextProjection{
		UserID:   rc[internal.KeyUserID],
		AgentID:  rc[internal.KeyAgentID],
		RunID:    rc[internal.KeyRunID],
		Infer:    rc[internal.KeyInfer],
		Endpoint: rc[internal.KeyEndpoint],
	}
}

// DebugProxy wraps an llm.Client and, when MEM0_DEBUG_LLM is on for a traced
// provider, logs the request metadata and the raw response of every call.
// Arguments, results and errors pass through untouched.
type DebugProxy struct {
	inner    llm.Client
	provider string
	model    string
	log      logger.Logger
}

var _ llm.Client = (*DebugProxy)(nil)

// NewDebugProxy wraps inner. A nil log uses logger.Default().
func NewDebugProxy(inner llm.Client, provider, model string, log logger.Logger) *DebugProxy {
	if log == nil {
		log = logger.Default()
	}
	return &DebugProxy{
		inner:    inner,
		provider: provider,
		model:    model,
		log:      log.WithComponent(logger.ComponentDebugProxy),
	}
}

// Provider returns the provider name the proxy was built for
func (p *DebugProxy) Provider() string { return p.provider }

// Model returns the model name the proxy was built for
func (p *DebugProxy) Model() string { return p.model }

// pyBool renders b the way the Python side of mem0 prints booleans, so lines
// from both stacks grep the same
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// ShouldTrace reports whether provider is one of the traced backends
func ShouldTrace(provider string) bool {
	_, ok := debugProviders[strings.ToLower(provider)]
	return ok
}

// GenerateResponse forwards to the wrapped client
func (p *DebugProxy) GenerateResponse(ctx context.Context, messages []types.Message, opts types.GenerateOptions) (*types.Response, error) {
	cfg := config.LoadDebugConfig()
	shouldLog := cfg.Enabled && ShouldTrace(p.provider)

	if !shouldLog {
		return p.inner.GenerateResponse(ctx, messages, opts)
	}

	log := logger.ForRequest(ctx, p.log)
	ctxSafe := logger.SafeJSON(projectContext(internal.GetRequestContext(ctx, internal.RequestContext{})))

	tools := "no"
	if len(opts.Tools) > 0 {
		tools = "yes"
	}
	log.Warn("%s request provider=%s model=%s ctx=%s response_format=%s tools=%s stream=%s",
		LogMarker, p.provider, p.model, ctxSafe, logger.SafeJSON(opts.ResponseFormat), tools, pyBool(opts.Stream))
	if cfg.IncludePrompts {
		log.Warn("%s messages=%s", LogMarker, logger.SafeTruncate(logger.SafeJSON(messages), cfg.MaxChars))
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("%s exception provider=%s model=%s ctx=%s err=panic: %v",
				LogMarker, p.provider, p.model, ctxSafe, r)
			panic(r)
		}
	}()

	resp, err := p.inner.GenerateResponse(ctx, messages, opts)
	if err != nil {
		log.Error("%s exception provider=%s model=%s ctx=%s err=%s",
			LogMarker, p.provider, p.model, ctxSafe, err.Error())
		return resp, err
	}

	log.Warn("%s response provider=%s model=%s ctx=%s raw=%s",
		LogMarker, p.provider, p.model, ctxSafe, logger.SafeTruncate(logger.SafeJSON(resp.Value()), cfg.MaxChars))
	return resp, nil
}
