package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// Config holds all configuration for the application
type Config struct {
	Discord     DiscordConfig
	HTTP        HTTPConfig
	Redis       RedisConfig
	Ledger      LedgerConfig
	Analyzer    AnalyzerConfig
	Negotiation NegotiationConfig
}

// DiscordConfig holds Discord-specific configuration
type DiscordConfig struct {
	Token   string
	AppID   string
	GuildID string // Optional: for guild-specific commands
}

// HTTPConfig holds the API server configuration
type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// RedisConfig holds Redis-specific configuration. URL wins over Addr when set.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// LedgerConfig locates the SQLite grant ledger
type LedgerConfig struct {
	Path string
}

// AnalyzerConfig selects the response analyzer. Without an API key only the
// heuristic analyzer runs.
type AnalyzerConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

// NegotiationConfig tunes the negotiation itself
type NegotiationConfig struct {
	// RarityTablePath is a YAML catalog; empty uses the built-in table
	RarityTablePath string
	// DialogueLength counts every exchange, the ship claim included
	DialogueLength int
}

// Load loads configuration from environment variables. Sections are checked
// by the binaries that need them.
func Load() (*Config, error) {
	cfg := &Config{
		Discord: DiscordConfig{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		HTTP: HTTPConfig{
			Addr:            getEnvOrDefault("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDurationOrDefault("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			Path: getEnvOrDefault("GRANT_LEDGER_PATH", "data/grants.db"),
		},
		Analyzer: AnalyzerConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash-latest"),
			Timeout:      getEnvAsDurationOrDefault("ANALYZER_TIMEOUT", 4*time.Second),
		},
		Negotiation: NegotiationConfig{
			RarityTablePath: os.Getenv("RARITY_TABLE_PATH"),
			DialogueLength:  getEnvAsIntOrDefault("DIALOGUE_LENGTH", 4),
		},
	}

	if err := cfg.Redis.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Analyzer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Negotiation.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the Discord section
func (c *DiscordConfig) Validate() error {
	if c.Token == "" {
		return dnderr.InvalidArgument("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return dnderr.InvalidArgument("DISCORD_APP_ID is required")
	}
	return nil
}

// Validate checks the HTTP section
func (c *HTTPConfig) Validate() error {
	if c.Addr == "" {
		return dnderr.InvalidArgument("HTTP_ADDR is required")
	}
	if c.ShutdownTimeout <= 0 {
		return dnderr.InvalidArgument("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Validate checks the Redis section
func (c *RedisConfig) Validate() error {
	if c.URL == "" && c.Addr == "" {
		return dnderr.InvalidArgument("REDIS_URL or REDIS_ADDR is required")
	}
	if c.URL != "" {
		if _, err := redis.ParseURL(c.URL); err != nil {
			return dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "REDIS_URL is not a valid redis URL")
		}
	}
	if c.DB < 0 {
		return dnderr.InvalidArgumentf("REDIS_DB must not be negative, got %d", c.DB)
	}
	return nil
}

// Options builds client options from the section
func (c *RedisConfig) Options() (*redis.Options, error) {
	if c.URL != "" {
		opts, err := redis.ParseURL(c.URL)
		if err != nil {
			return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "REDIS_URL is not a valid redis URL")
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}, nil
}

// Validate checks the analyzer section
func (c *AnalyzerConfig) Validate() error {
	if c.Timeout <= 0 {
		return dnderr.InvalidArgument("ANALYZER_TIMEOUT must be positive")
	}
	if c.GeminiAPIKey != "" && c.GeminiModel == "" {
		return dnderr.InvalidArgument("GEMINI_MODEL is required when GEMINI_API_KEY is set")
	}
	return nil
}

// Validate checks the negotiation section
func (c *NegotiationConfig) Validate() error {
	if c.DialogueLength < 2 {
		return dnderr.InvalidArgumentf("DIALOGUE_LENGTH must be at least 2 (the claim and one question), got %d", c.DialogueLength)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// String hides secrets so the config can be logged
func (c *Config) String() string {
	return fmt.Sprintf("http=%s redis=%s ledger=%s gemini=%t model=%s dialogue_length=%d rarity_table=%q",
		c.HTTP.Addr, c.Redis.redacted(), c.Ledger.Path, c.Analyzer.GeminiAPIKey != "",
		c.Analyzer.GeminiModel, c.Negotiation.DialogueLength, c.Negotiation.RarityTablePath)
}

func (c *RedisConfig) redacted() string {
	if c.URL != "" {
		return "url"
	}
	return c.Addr
}
