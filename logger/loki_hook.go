package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LokiHook pushes log entries to a Loki instance over HTTP
type LokiHook struct {
	pushURL string
	client  *http.Client
	service string
	levels  []logrus.Level
	// sent receives the result of every push; tests use it to wait
	sent chan error
}

// LokiLogEntry represents a Loki push payload
type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

// LokiStream is one labelled stream in a push payload
type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// NewLokiHook creates a hook pushing to lokiURL (base URL, e.g. http://localhost:3100)
func NewLokiHook(lokiURL, service string) *LokiHook {
	return &LokiHook{
		pushURL: strings.TrimRight(lokiURL, "/") + "/loki/api/v1/push",
		client:  &http.Client{Timeout: 5 * time.Second},
		service: service,
		levels:  logrus.AllLevels,
	}
}

// Levels implements logrus.Hook
func (h *LokiHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook. The push runs in the background so a slow or
// missing Loki never delays the caller.
func (h *LokiHook) Fire(entry *logrus.Entry) error {
	payload := h.buildPayload(entry)
	go h.send(payload)
	return nil
}

// buildPayload keeps labels low cardinality; everything else goes into the line
func (h *LokiHook) buildPayload(entry *logrus.Entry) LokiLogEntry {
	labels := map[string]string{
		"service": h.service,
		"job":     h.service,
		"level":   entry.Level.String(),
	}
	if component, ok := entry.Data["component"].(string); ok && component != "" {
		labels["component"] = component
	}

	structuredData := make(map[string]interface{}, len(entry.Data)+1)
	for k, v := range entry.Data {
		if k == "component" {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		structuredData[k] = v
	}
	structuredData["timestamp"] = entry.Time.Format(time.RFC3339Nano)

	line := entry.Message
	if requestID, ok := entry.Data["request_id"].(string); ok && requestID != "" {
		line = fmt.Sprintf("[req:%s] %s", requestID, line)
	}
	line = line + "\n" + SafeJSON(structuredData)

	return LokiLogEntry{
		Streams: []LokiStream{{
			Stream: labels,
			Values: [][]string{{fmt.Sprintf("%d", entry.Time.UnixNano()), line}},
		}},
	}
}

func (h *LokiHook) send(payload LokiLogEntry) {
	err := h.push(payload)
	if h.sent != nil {
		h.sent <- err
	}
}

func (h *LokiHook) push(payload LokiLogEntry) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, h.pushURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("loki unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("loki returned %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections
func (h *LokiHook) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
