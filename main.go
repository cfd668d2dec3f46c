package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"mem0-debug-proxy/config"
	"mem0-debug-proxy/llm"
	"mem0-debug-proxy/logger"
	"mem0-debug-proxy/proxy"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Print version information
	fmt.Println(GetBuildInfo())
	fmt.Println()

	cfg, err := config.LoadServiceConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, lokiHook := logger.NewWithOptions(os.Stderr, logger.Options{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Format:  cfg.LogFormat,
		LokiURL: cfg.LokiURL,
	})
	if lokiHook != nil {
		defer lokiHook.Close()
		appLog.WithComponent(logger.ComponentServer).Info("Pushing logs to Loki at %s", cfg.LokiURL)
	}
	appLog.WithComponent(logger.ComponentConfig).Info("Configuration loaded: provider=%s model=%s endpoint=%s api_key=%s timeout=%v",
		cfg.Provider, cfg.Model, cfg.Endpoint, logger.MaskAPIKey(cfg.APIKey), cfg.Timeout)

	debugCfg := config.LoadDebugConfig()
	if debugCfg.Enabled && !proxy.ShouldTrace(cfg.Provider) {
		appLog.Warn("%s is set but provider %q is not traced; no debug lines will be written", config.EnvDebugLLM, cfg.Provider)
	}

	upstream := llm.NewOpenAIClient(llm.OpenAIConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Provider: cfg.Provider,
		Timeout:  cfg.Timeout,
	}, appLog)
	debugProxy := proxy.NewDebugProxy(upstream, cfg.Provider, cfg.Model, appLog)
	handler := proxy.NewHandler(debugProxy, appLog)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/v1/generate", handler.HandleGenerate)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second, // upstream calls may stream for a while
		IdleTimeout:  60 * time.Second,
	}

	appLog.WithComponent(logger.ComponentServer).Info("Debug proxy started at http://localhost:%s (%s)", cfg.Port, GetVersionInfo())

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// handleRoot provides basic information about the service
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"service": "mem0 LLM debug proxy",
	"version": "%s",
	"status": "running",
	"endpoints": [
		"GET /health - Health check",
		"GET /metrics - Prometheus metrics",
		"POST /v1/generate - Chat generation through the debug proxy"
	]
}`, Version)
}

// handleHealth provides a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{
	"status": "ok",
	"timestamp": "%s"
}`, time.Now().UTC().Format(time.RFC3339))
}
