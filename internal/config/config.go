package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the AI Friend service.
// Environment variables are automatically parsed from the AIFRIEND_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Gemini upstream
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	ChatModel     string `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	GrammarModel  string `envconfig:"GRAMMAR_MODEL" default:"gemini-2.5-flash-lite"`
	TTSModel      string `envconfig:"TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	TTSVoice      string `envconfig:"TTS_VOICE" default:"Leda"`

	// Push notifications
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"./data/aifriend.db"`
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY" default:""`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY" default:""`
	VAPIDSubscriber string `envconfig:"VAPID_SUBSCRIBER" default:"mailto:admin@example.com"`

	// Nudge scheduler. CronSpec fires hourly by default; each firing is
	// additionally gated by the KST window and the send probability.
	CronEnabled bool   `envconfig:"CRON_ENABLED" default:"true"`
	CronSpec    string `envconfig:"CRON_SPEC" default:"0 * * * *"`
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with AIFRIEND_
// Example: AIFRIEND_GEMINI_API_KEY, AIFRIEND_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("AIFRIEND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("chat_model", cfg.ChatModel).
		Str("grammar_model", cfg.GrammarModel).
		Str("tts_model", cfg.TTSModel).
		Bool("gemini_key_present", cfg.GeminiAPIKey != "").
		Bool("vapid_keys_present", cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "").
		Bool("cron_enabled", cfg.CronEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:  EnvTesting,
		HTTPPort:     8080,
		GeminiAPIKey: "test-key",
		ChatModel:    "gemini-2.5-flash",
		GrammarModel: "gemini-2.5-flash-lite",
		TTSModel:     "gemini-2.5-flash-preview-tts",
		TTSVoice:     "Leda",
		SQLitePath:   ":memory:",
		CronEnabled:  false,
		CronSpec:     "0 * * * *",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
