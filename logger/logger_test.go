package logger

import (
	"bytes"
	"context"
	"testing"

	"mem0-debug-proxy/internal"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, INFO, ParseLevel("INFO"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogrusLoggerLevels(t *testing.T) {
	base, hook := logtest.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	log := NewFromLogrus(base)

	log.Debug("d %d", 1)
	log.Info("i %d", 2)
	log.Warn("w %d", 3)
	log.Error("e %d", 4)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "i 2", entries[1].Message)
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
}

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := logtest.NewNullLogger()
	log := NewFromLogrus(base).WithComponent(ComponentDebugProxy).WithField("provider", "bedrock")

	log.Warn("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, ComponentDebugProxy, entry.Data["component"])
	assert.Equal(t, "bedrock", entry.Data["provider"])
}

func TestNewWritesTextLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WARN)

	log.Info("suppressed")
	log.Warn("[MEM0_DEBUG_LLM] visible")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "[MEM0_DEBUG_LLM] visible")
}

func TestForRequest(t *testing.T) {
	base, hook := logtest.NewNullLogger()
	log := NewFromLogrus(base)

	ForRequest(context.Background(), log).Info("no id")
	assert.NotContains(t, hook.LastEntry().Data, "request_id")

	ctx := internal.WithRequestID(context.Background(), "req-7")
	ForRequest(ctx, log).Info("with id")
	assert.Equal(t, "req-7", hook.LastEntry().Data["request_id"])

	assert.NotNil(t, ForRequest(ctx, nil))
}

func TestNoOpLogger(t *testing.T) {
	log := NoOp().WithField("a", 1).WithComponent("x")
	assert.NotPanics(t, func() {
		log.Debug("x")
		log.Info("x")
		log.Warn("x")
		log.Error("x")
	})
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "***", MaskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", MaskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
