package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlag(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", " Yes "} {
		assert.True(t, ParseFlag(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "on", "y"} {
		assert.False(t, ParseFlag(v), v)
	}
}

func TestLoadDebugConfig(t *testing.T) {
	tests := []struct {
		name     string
		enabled  string
		prompts  string
		maxChars *string
		expected DebugConfig
	}{
		{"all unset", "", "", nil, DebugConfig{MaxChars: 1800}},
		{"enabled only", "1", "", nil, DebugConfig{Enabled: true, MaxChars: 1800}},
		{"prompts and limit", "yes", "True", strPtr(" 500 "), DebugConfig{Enabled: true, IncludePrompts: true, MaxChars: 500}},
		{"zero limit kept", "true", "", strPtr("0"), DebugConfig{Enabled: true, MaxChars: 0}},
		{"garbage limit falls back", "true", "", strPtr("lots"), DebugConfig{Enabled: true, MaxChars: 1800}},
		{"empty limit falls back", "", "", strPtr(""), DebugConfig{MaxChars: 1800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDebugLLM, tt.enabled)
			t.Setenv(EnvDebugIncludePrompts, tt.prompts)
			if tt.maxChars != nil {
				t.Setenv(EnvDebugMaxChars, *tt.maxChars)
			} else {
				t.Setenv(EnvDebugMaxChars, "")
				os.Unsetenv(EnvDebugMaxChars)
			}

			assert.Equal(t, tt.expected, LoadDebugConfig())
		})
	}
}

func TestLoadDebugConfigIsNotCached(t *testing.T) {
	t.Setenv(EnvDebugLLM, "0")
	assert.False(t, LoadDebugConfig().Enabled)

	t.Setenv(EnvDebugLLM, "1")
	assert.True(t, LoadDebugConfig().Enabled)
}

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPort, EnvProvider, EnvModel, EnvEndpoint, EnvAPIKey, EnvTimeout, EnvLogLevel, EnvLogFormat, EnvLokiURL} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadServiceConfigLayers(t *testing.T) {
	clearServiceEnv(t)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "debug_proxy.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
port: "9000"
provider: aws_bedrock
model: from-yaml
endpoint: http://yaml.local/v1/chat/completions
timeout: 45s
log_format: json
`), 0644))
	t.Setenv(EnvConfigFile, yamlPath)

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(`
# comment line
LLM_MODEL=from-dotenv   # trailing comment
LLM_API_KEY=sk-test-key-123456
LOKI_URL=http://loki:3100
`), 0644))

	t.Setenv(EnvPort, "9100")

	cfg, err := loadServiceConfig(envPath)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "process env wins")
	assert.Equal(t, "aws_bedrock", cfg.Provider)
	assert.Equal(t, "from-dotenv", cfg.Model, ".env beats yaml")
	assert.Equal(t, "http://yaml.local/v1/chat/completions", cfg.Endpoint)
	assert.Equal(t, "sk-test-key-123456", cfg.APIKey)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://loki:3100", cfg.LokiURL)
}

func TestLoadServiceConfigWithoutFiles(t *testing.T) {
	clearServiceEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvConfigFile, filepath.Join(dir, "missing.yaml"))
	t.Setenv(EnvEndpoint, "http://localhost:8080/v1/chat/completions")
	t.Setenv(EnvModel, "gpt-4o-mini")
	t.Setenv(EnvTimeout, "5s")

	cfg, err := loadServiceConfig(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "3457", cfg.Port)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.LokiURL)
}

func TestLoadServiceConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing endpoint", func(t *testing.T) {
		clearServiceEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(dir, "missing.yaml"))
		t.Setenv(EnvModel, "m")

		_, err := loadServiceConfig(filepath.Join(dir, ".env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvEndpoint)
	})

	t.Run("missing model", func(t *testing.T) {
		clearServiceEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(dir, "missing.yaml"))
		t.Setenv(EnvEndpoint, "http://x")

		_, err := loadServiceConfig(filepath.Join(dir, ".env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvModel)
	})

	t.Run("bad timeout", func(t *testing.T) {
		clearServiceEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(dir, "missing.yaml"))
		t.Setenv(EnvEndpoint, "http://x")
		t.Setenv(EnvModel, "m")
		t.Setenv(EnvTimeout, "soon")

		_, err := loadServiceConfig(filepath.Join(dir, ".env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvTimeout)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearServiceEnv(t)
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("port: [unclosed"), 0644))
		t.Setenv(EnvConfigFile, bad)

		_, err := loadServiceConfig(filepath.Join(dir, ".env"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func strPtr(s string) *string { return &s }
