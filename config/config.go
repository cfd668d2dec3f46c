package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Debug toggles, read from the process environment on every call
const (
	EnvDebugLLM            = "MEM0_DEBUG_LLM"
	EnvDebugIncludePrompts = "MEM0_DEBUG_LLM_INCLUDE_PROMPTS"
	EnvDebugMaxChars       = "MEM0_DEBUG_LLM_MAX_CHARS"

	DefaultDebugMaxChars = 1800
)

// DebugConfig controls the LLM debug proxy
type DebugConfig struct {
	Enabled        bool
	IncludePrompts bool
	MaxChars       int
}

// LoadDebugConfig reads the debug toggles from the environment. It never
// fails: unparsable values fall back to defaults.
func LoadDebugConfig() DebugConfig {
	return DebugConfig{
		Enabled:        envFlag(EnvDebugLLM),
		IncludePrompts: envFlag(EnvDebugIncludePrompts),
		MaxChars:       envInt(EnvDebugMaxChars, DefaultDebugMaxChars),
	}
}

// ParseFlag reports whether value is one of 1/true/yes (case-insensitive)
func ParseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func envFlag(name string) bool {
	return ParseFlag(os.Getenv(name))
}

func envInt(name string, def int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

// Service settings keys (.env / process environment)
const (
	EnvPort       = "PORT"
	EnvProvider   = "LLM_PROVIDER"
	EnvModel      = "LLM_MODEL"
	EnvEndpoint   = "LLM_ENDPOINT"
	EnvAPIKey     = "LLM_API_KEY"
	EnvTimeout    = "LLM_TIMEOUT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "LOG_FORMAT"
	EnvLokiURL    = "LOKI_URL"
	EnvConfigFile = "DEBUG_PROXY_CONFIG"

	DefaultConfigFile = "debug_proxy.yaml"
)

// ServiceConfig represents the debug proxy service configuration
type ServiceConfig struct {
	Port     string        `yaml:"port"`
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format"`
	// LokiURL enables pushing logs to Loki when set
	LokiURL string `yaml:"loki_url"`
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:      "3457",
		Provider:  "openai",
		Timeout:   120 * time.Second,
		LogLevel:  "INFO",
		LogFormat: "text",
	}
}

// LoadServiceConfig layers defaults, the optional YAML file, the optional
// .env file and finally the process environment.
func LoadServiceConfig() (*ServiceConfig, error) {
	return loadServiceConfig(".env")
}

func loadServiceConfig(envFile string) (*ServiceConfig, error) {
	cfg := GetDefaultConfig()

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = DefaultConfigFile
	}
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}

	envVars, err := loadEnvFile(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}
	for _, key := range []string{EnvPort, EnvProvider, EnvModel, EnvEndpoint, EnvAPIKey, EnvTimeout, EnvLogLevel, EnvLogFormat, EnvLokiURL} {
		if v, ok := os.LookupEnv(key); ok {
			envVars[key] = v
		}
	}
	if err := cfg.applyEnv(envVars); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML merges path into cfg. A missing file is not an error.
func (c *ServiceConfig) loadYAML(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *ServiceConfig) applyEnv(vars map[string]string) error {
	if v := vars[EnvPort]; v != "" {
		c.Port = v
	}
	if v := vars[EnvProvider]; v != "" {
		c.Provider = v
	}
	if v := vars[EnvModel]; v != "" {
		c.Model = v
	}
	if v := vars[EnvEndpoint]; v != "" {
		c.Endpoint = v
	}
	if v := vars[EnvAPIKey]; v != "" {
		c.APIKey = v
	}
	if v := vars[EnvLogLevel]; v != "" {
		c.LogLevel = v
	}
	if v := vars[EnvLogFormat]; v != "" {
		c.LogFormat = v
	}
	if v := vars[EnvLokiURL]; v != "" {
		c.LokiURL = v
	}
	if v := vars[EnvTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks the settings the service cannot start without
func (c *ServiceConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%s must be set", EnvEndpoint)
	}
	if c.Model == "" {
		return fmt.Errorf("%s must be set", EnvModel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %v", EnvTimeout, c.Timeout)
	}
	return nil
}

// loadEnvFile loads KEY=VALUE pairs from path. The returned map is never nil.
func loadEnvFile(path string) (map[string]string, error) {
	envVars := make(map[string]string)

	file, err := os.Open(path)
	if err != nil {
		return envVars, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove comments from value
		if commentIndex := strings.Index(value, "#"); commentIndex != -1 {
			value = strings.TrimSpace(value[:commentIndex])
		}

		envVars[key] = value
	}

	return envVars, scanner.Err()
}
