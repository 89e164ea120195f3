// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database. Empty means targets live in memory only.
	DatabaseURL string

	// LLM provider settings. An empty API key puts the engine in
	// simulation mode: probes run through the deterministic simulator and
	// keyword/prompt generation uses the heuristic fallbacks.
	LLMProvider string // "openai", "openrouter", "anthropic", "ollama"
	LLMAPIKey   string
	LLMModel    string
	LLMBaseURL  string // override for ollama / self-hosted gateways
	LLMTimeout  time.Duration

	// Analysis settings
	ChecksPerPrompt    int // probes per prompt per run
	MaxPromptsPerRun   int // prompts analyzed per run
	SamplerConcurrency int // concurrent probes per analysis

	// Site fetch settings
	FetchTimeout time.Duration

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		LLMProvider: getEnv("LLM_PROVIDER", "openai"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", ""),
		LLMTimeout:  getEnvDuration("LLM_TIMEOUT", 30*time.Second),

		ChecksPerPrompt:    getEnvInt("CHECKS_PER_PROMPT", 6),
		MaxPromptsPerRun:   getEnvInt("MAX_PROMPTS_PER_RUN", 5),
		SamplerConcurrency: getEnvInt("SAMPLER_CONCURRENCY", 3),

		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 10*time.Second),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	switch cfg.LLMProvider {
	case "openai", "openrouter", "anthropic", "ollama":
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if cfg.ChecksPerPrompt < 1 || cfg.ChecksPerPrompt > 6 {
		return nil, fmt.Errorf("CHECKS_PER_PROMPT must be between 1 and 6, got %d", cfg.ChecksPerPrompt)
	}
	if cfg.MaxPromptsPerRun < 1 || cfg.MaxPromptsPerRun > 5 {
		return nil, fmt.Errorf("MAX_PROMPTS_PER_RUN must be between 1 and 5, got %d", cfg.MaxPromptsPerRun)
	}
	if cfg.SamplerConcurrency < 1 {
		cfg.SamplerConcurrency = 1
	}

	return cfg, nil
}

// LLMConfigured returns true if a usable LLM provider is configured.
// Ollama needs no API key; everything else does.
func (c *Config) LLMConfigured() bool {
	if c.LLMProvider == "ollama" {
		return true
	}
	return strings.TrimSpace(c.LLMAPIKey) != ""
}

// HasPersistence returns true if targets survive restarts.
func (c *Config) HasPersistence() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
