package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultBPM            = 60.0
	defaultMaxSearchNodes = 200000
)

// Config holds the application configuration
// Note: the engine is stateless; the database only backs the optional generation history
type Config struct {
	// Environment
	Environment string
	Port        string

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Persistence (optional)
	DatabaseURL string // Postgres DSN for generation history, empty disables it

	// Engine
	RulesConfigPath string  // YAML file re-weighting the default rule catalog
	DefaultBPM      float64 // Tempo for MIDI export when the request sets none
	MaxSearchNodes  int     // Node budget for the counterpoint search

	// HTTP
	CORSAllowedOrigins []string

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string
}

func Load() *Config {
	return &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", "8080"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RulesConfigPath:    getEnv("RULES_CONFIG_PATH", ""),
		DefaultBPM:         getEnvFloat("DEFAULT_BPM", defaultBPM),
		MaxSearchNodes:     getEnvInt("MAX_SEARCH_NODES", defaultMaxSearchNodes),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AuthMode:           getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func getEnvList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether production-only integrations (CloudWatch) should run
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HistoryEnabled reports whether generations are persisted
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}
