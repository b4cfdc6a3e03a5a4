// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Bank sources.
const (
	SourceFile       = "file"
	SourcePostgres   = "postgres"
	SourceGenerative = "generative"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Bank     BankConfig
	AI       AIConfig
	Log      LogConfig

	// CatalogPath optionally points at a YAML catalog overriding the
	// built-in levels and subjects.
	CatalogPath string
	// HistoryLimit bounds how many recent questions are remembered per session.
	HistoryLimit int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL disables
// the database.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings. An empty URL
// disables the cache.
type CacheConfig struct {
	URL        string
	BankTTL    time.Duration
	HistoryTTL time.Duration
}

// BankConfig selects where questions come from.
type BankConfig struct {
	Source string // file, postgres or generative
	Dir    string // empty serves the embedded starter banks
}

// AIConfig holds configuration for the generative question source.
type AIConfig struct {
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	DeepSeek  DeepSeekConfig
	Ollama    OllamaConfig

	Model   string
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI provider settings.
type OpenAIConfig struct {
	APIKey string
}

// AnthropicConfig holds Anthropic provider settings.
type AnthropicConfig struct {
	APIKey string
}

// DeepSeekConfig holds DeepSeek provider settings (OpenAI-compatible).
type DeepSeekConfig struct {
	APIKey string
}

// OllamaConfig holds self-hosted Ollama settings.
type OllamaConfig struct {
	Enabled bool
	URL     string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("LEARN_SERVER_PORT", 8080),
			Host:           envStr("LEARN_SERVER_HOST", "0.0.0.0"),
			AllowedOrigins: envList("LEARN_SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL:        envStr("LEARN_CACHE_URL", ""),
			BankTTL:    envSeconds("LEARN_CACHE_BANK_TTL", 300),
			HistoryTTL: envSeconds("LEARN_CACHE_HISTORY_TTL", 7200),
		},
		Bank: BankConfig{
			Source: strings.ToLower(envStr("LEARN_BANK_SOURCE", SourceFile)),
			Dir:    envStr("LEARN_BANK_DIR", ""),
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				APIKey: envStr("LEARN_AI_OPENAI_API_KEY", ""),
			},
			Anthropic: AnthropicConfig{
				APIKey: envStr("LEARN_AI_ANTHROPIC_API_KEY", ""),
			},
			DeepSeek: DeepSeekConfig{
				APIKey: envStr("LEARN_AI_DEEPSEEK_API_KEY", ""),
			},
			Ollama: OllamaConfig{
				Enabled: envBool("LEARN_AI_OLLAMA_ENABLED", false),
				URL:     envStr("LEARN_AI_OLLAMA_URL", "http://localhost:11434"),
			},
			Model:   envStr("LEARN_GENERATIVE_MODEL", ""),
			Timeout: envSeconds("LEARN_GENERATIVE_TIMEOUT", 15),
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
		CatalogPath:  envStr("LEARN_CATALOG_PATH", ""),
		HistoryLimit: envInt("LEARN_HISTORY_LIMIT", 20),
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Bank.Source {
	case SourceFile:
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LEARN_DATABASE_URL is required when LEARN_BANK_SOURCE=postgres")
		}
	case SourceGenerative:
		if !c.HasAIProvider() {
			return fmt.Errorf("at least one AI provider must be configured when LEARN_BANK_SOURCE=generative")
		}
	default:
		return fmt.Errorf("LEARN_BANK_SOURCE must be 'file', 'postgres' or 'generative', got %q", c.Bank.Source)
	}

	if c.HistoryLimit < 0 {
		return fmt.Errorf("LEARN_HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT out of range: %d", c.Server.Port)
	}

	return nil
}

// HasAIProvider returns true if at least one AI provider is configured.
func (c *Config) HasAIProvider() bool {
	return c.AI.OpenAI.APIKey != "" ||
		c.AI.Anthropic.APIKey != "" ||
		c.AI.DeepSeek.APIKey != "" ||
		c.AI.Ollama.Enabled
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}

// envList splits a comma-separated value, dropping blank entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
