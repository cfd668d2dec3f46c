package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mem0-debug-proxy/internal"
	"mem0-debug-proxy/llm"
	"mem0-debug-proxy/logger"
	"mem0-debug-proxy/types"
)

const maxRequestBody = 10 << 20

// GenerateRequest is the body of POST /v1/generate
type GenerateRequest struct {
	Messages       []types.Message        `json:"messages"`
	ResponseFormat interface{}            `json:"response_format,omitempty"`
	Tools          []types.Tool           `json:"tools,omitempty"`
	ToolChoice     string                 `json:"tool_choice,omitempty"`
	Stream         bool                   `json:"stream,omitempty"`
	Options        map[string]interface{} `json:"options,omitempty"`

	UserID  string `json:"user_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Infer   *bool  `json:"infer,omitempty"`
}

// GenerateResponse is the body returned by POST /v1/generate
type GenerateResponse struct {
	RequestID string      `json:"request_id"`
	Result    interface{} `json:"result"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// Handler handles HTTP generation requests
type Handler struct {
	client llm.Client
	log    logger.Logger
}

// NewHandler creates a new handler calling client, usually a *DebugProxy
func NewHandler(client llm.Client, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		client: client,
		log:    log.WithComponent(logger.ComponentServer),
	}
}

// HandleGenerate installs the request context for one logical request and
// runs a single generation through the client.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	requestID := generateRequestID()
	ctx := withRequestID(r.Context(), requestID)
	log := logger.ForRequest(ctx, h.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		log.Error("❌ Failed to read request body: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "failed to read request"})
		return
	}
	defer r.Body.Close()

	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Warn("⚠️ Invalid JSON in request: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "invalid request format"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "messages must not be empty"})
		return
	}

	ctx = internal.WithRequestContext(ctx, requestContextFor(req, r.URL.Path))

	log.Info("📨 Received generate request: %d messages, tools: %d, stream: %v",
		len(req.Messages), len(req.Tools), req.Stream)

	resp, err := h.client.GenerateResponse(ctx, req.Messages, types.GenerateOptions{
		ResponseFormat: req.ResponseFormat,
		Tools:          req.Tools,
		ToolChoice:     req.ToolChoice,
		Stream:         req.Stream,
		Extra:          req.Options,
	})
	if err != nil {
		log.Error("❌ Generation failed: %v", err)
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			// Upstream bodies stay in the log only
			writeJSON(w, http.StatusBadGateway, errorResponse{
				RequestID: requestID,
				Error:     fmt.Sprintf("upstream returned status %d", statusErr.StatusCode),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{RequestID: requestID, Result: resp.Value()})
}

// requestContextFor builds the correlation metadata for one request
func requestContextFor(req GenerateRequest, endpoint string) internal.RequestContext {
	rc := internal.RequestContext{internal.KeyEndpoint: endpoint}
	if req.UserID != "" {
		rc[internal.KeyUserID] = req.UserID
	}
	if req.AgentID != "" {
		rc[internal.KeyAgentID] = req.AgentID
	}
	if req.RunID != "" {
		rc[internal.KeyRunID] = req.RunID
	}
	if req.Infer != nil {
		rc[internal.KeyInfer] = *req.Infer
	}
	return rc
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
