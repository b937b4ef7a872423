// ABOUTME: Centralized configuration for the todochat CLI and MCP server
// ABOUTME: Loads from environment variables (and an optional .env) with validation and defaults
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
)

// DefaultUser is used when neither TODOCHAT_USER nor USER is set
const DefaultUser = "default-user"

// Config holds all configuration for the todo assistant
type Config struct {
	// Storage settings
	DBPath       string
	TxRetries    int
	TxRetryDelay time.Duration

	// Assistant settings
	UserID      string
	ToolTimeout time.Duration

	// Logging settings
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:       getEnv("TODOCHAT_DB_PATH", sqlite.DefaultDBPath()),
		TxRetries:    getEnvInt("TODOCHAT_TX_RETRIES", 3),
		TxRetryDelay: getEnvDuration("TODOCHAT_TX_RETRY_DELAY", 50*time.Millisecond),
		UserID:       getEnv("TODOCHAT_USER", getEnv("USER", DefaultUser)),
		ToolTimeout:  getEnvDuration("TODOCHAT_TOOL_TIMEOUT", 5*time.Second),
		LogLevel:     strings.ToLower(getEnv("TODOCHAT_LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(getEnv("TODOCHAT_LOG_FORMAT", "text")),
	}

	return cfg, cfg.Validate()
}

// LoadWithDotEnv reads the given .env files (or ./.env) before Load. Missing files are ignored.
func LoadWithDotEnv(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)
	return Load()
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("TODOCHAT_DB_PATH must not be empty")
	}
	if c.TxRetries < 0 || c.TxRetries > 10 {
		return fmt.Errorf("TODOCHAT_TX_RETRIES must be 0-10, got %d", c.TxRetries)
	}
	if c.TxRetryDelay < 0 {
		return fmt.Errorf("TODOCHAT_TX_RETRY_DELAY must not be negative, got %v", c.TxRetryDelay)
	}
	if c.ToolTimeout <= 0 || c.ToolTimeout > 5*time.Minute {
		return fmt.Errorf("TODOCHAT_TOOL_TIMEOUT must be between 0 and 5m, got %v", c.ToolTimeout)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("TODOCHAT_USER must not be blank")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("TODOCHAT_LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("TODOCHAT_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// NewLogger builds a logger writing to out at the configured level and format
func (c *Config) NewLogger(out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	}
	return log
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
