package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error

	// Provider selection
	Provider string
	Model    string

	// API Keys
	OpenAIKey    string
	AnthropicKey string
	GoogleKey    string

	// Dataset source
	ORKGHost string

	// Reasoning config
	StructuredBudget time.Duration
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := &Config{
		Port:             getEnvOrDefault("TABLETALK_PORT", "8000"),
		LogLevel:         getEnvOrDefault("TABLETALK_LOG_LEVEL", "info"),
		Provider:         getEnvOrDefault("TABLETALK_PROVIDER", "openai"),
		Model:            os.Getenv("TABLETALK_MODEL"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		GoogleKey:        os.Getenv("GOOGLE_API_KEY"),
		ORKGHost:         getEnvOrDefault("ORKG_HOST", "https://orkg.org"),
		StructuredBudget: getEnvDurationOrDefault("TABLETALK_STRUCTURED_BUDGET", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "google":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	default:
		return fmt.Errorf("unknown provider: %s (must be openai, anthropic, or google)", c.Provider)
	}

	if c.ORKGHost == "" {
		return fmt.Errorf("ORKG_HOST must not be empty")
	}

	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	case "google":
		return c.GoogleKey
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
