// Package config reads daemon configuration from environment variables and
// an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the tab warden daemon.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// HTTP API bind settings
	BindAddr       string
	BindCandidates []string
	BindFallback   bool

	// Logging
	LogLevel string
	LogFile  string

	// Storage
	DataDir       string
	MaxFileSizeMB int
	BufferSize    int

	// LLM provider settings
	LLMProvider     string
	LLMAPIKey       string
	LLMEndpoint     string
	LLMModel        string
	LLMExtraHeaders string

	// Automation
	AutoDedupe       bool
	AutoGroup        bool
	DebounceMS       int
	TimeGapMinutes   float64
	ContentSnippetSz int

	// Browser launch (optional; empty profile dir disables launching)
	LaunchBrowser bool
	StartURL      string
	ProfileDir    string
	WindowSize    string

	// Notifications (optional; empty endpoint disables them)
	NotifyEndpoint string
}

// Load reads configuration from environment variables and an optional .env
// file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:       getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9222),
		BindAddr:         getEnvOrDefault("WARDEN_BIND_ADDR", "127.0.0.1:8199"),
		BindCandidates:   splitList(getEnvOrDefault("WARDEN_BIND_CANDIDATES", "127.0.0.1:8199,127.0.0.1:8200,127.0.0.1:8201")),
		BindFallback:     getEnvBoolOrDefault("WARDEN_BIND_FALLBACK", true),
		LogLevel:         strings.ToLower(getEnvOrDefault("WARDEN_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("WARDEN_LOG_FILE", "logs/tab_warden.log"),
		DataDir:          getEnvOrDefault("WARDEN_DATA_DIR", "./warden_data"),
		MaxFileSizeMB:    getEnvIntOrDefault("WARDEN_MAX_FILE_SIZE_MB", 50),
		BufferSize:       getEnvIntOrDefault("WARDEN_BUFFER_SIZE", 1000),
		LLMProvider:      getEnvOrDefault("WARDEN_LLM_PROVIDER", ""),
		LLMAPIKey:        getEnvOrDefault("WARDEN_LLM_API_KEY", ""),
		LLMEndpoint:      getEnvOrDefault("WARDEN_LLM_ENDPOINT", ""),
		LLMModel:         getEnvOrDefault("WARDEN_LLM_MODEL", ""),
		LLMExtraHeaders:  getEnvOrDefault("WARDEN_LLM_EXTRA_HEADERS", ""),
		AutoDedupe:       getEnvBoolOrDefault("WARDEN_AUTO_DEDUPE", false),
		AutoGroup:        getEnvBoolOrDefault("WARDEN_AUTO_GROUP", false),
		DebounceMS:       getEnvIntOrDefault("WARDEN_DEBOUNCE_MS", 1500),
		TimeGapMinutes:   getEnvFloatOrDefault("WARDEN_TIME_GAP_MINUTES", 10),
		ContentSnippetSz: getEnvIntOrDefault("WARDEN_CONTENT_SNIPPET_BYTES", 500),
		LaunchBrowser:    getEnvBoolOrDefault("WARDEN_LAUNCH_BROWSER", false),
		StartURL:         getEnvOrDefault("WARDEN_START_URL", "about:blank"),
		ProfileDir:       getEnvOrDefault("WARDEN_PROFILE_DIR", "./warden_profile"),
		WindowSize:       getEnvOrDefault("WARDEN_WINDOW_SIZE", "1920,1080"),
		NotifyEndpoint:   getEnvOrDefault("WARDEN_NOTIFY_ENDPOINT", ""),
	}
	if cfg.DebounceMS < 100 {
		cfg.DebounceMS = 100
	}
	if cfg.TimeGapMinutes <= 0 {
		cfg.TimeGapMinutes = 10
	}
	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint.
func (c *Config) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
