package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mem0-debug-proxy/logger"
	"mem0-debug-proxy/types"
)

// readStream concatenates the delta content of an SSE chat completion stream.
// It stops at [DONE] or the first chunk carrying a finish_reason.
func readStream(body io.Reader, log logger.Logger) (string, error) {
	scanner := bufio.NewScanner(body)
	// Tool-heavy chunks can be large
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var sb strings.Builder
	chunks := 0
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk types.OpenAIStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log.Warn("⚠️ Failed to parse streaming chunk: %v", err)
			continue
		}
		chunks++

		if len(chunk.Choices) == 0 {
			continue
		}
		sb.WriteString(chunk.Choices[0].Delta.Content)
		if chunk.Choices[0].FinishReason != nil {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("error reading stream: %w", err)
	}
	if chunks == 0 {
		return "", fmt.Errorf("no chunks received")
	}

	log.Debug("📊 Processed %d streaming chunks", chunks)
	return sb.String(), nil
}
