package config

import (
	"net/url"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database" validate:"required"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment" yaml:"enrichment" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Task       TaskConfig       `mapstructure:"task" yaml:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL is either a postgres:// connection string or a SQLite file path
// (optionally prefixed with sqlite:// or sqlite:///).
type DatabaseConfig struct {
	URL          string `mapstructure:"url" yaml:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns" validate:"gt=0"`
}

// EnrichmentConfig controls how notes are summarized and scored.
type EnrichmentConfig struct {
	// Provider selects the enrichment backend. "auto" uses Gemini when an
	// API key is configured and falls back to "none" otherwise.
	Provider        string        `mapstructure:"provider" yaml:"provider" validate:"required,oneof=auto gemini none"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	SummaryMaxChars int           `mapstructure:"summary_max_chars" yaml:"summary_max_chars" validate:"gt=0"`
	CacheSize       int           `mapstructure:"cache_size" yaml:"cache_size" validate:"gte=0"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" yaml:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" yaml:"worker_count" validate:"gt=0"`
	QueueSize           int `mapstructure:"queue_size" yaml:"queue_size" validate:"gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" yaml:"stuck_task_age_minutes" validate:"gt=0"`
}

const redacted = "[REDACTED]"

// Redacted returns a copy of the configuration that is safe to print.
// The Gemini API key and any password embedded in the database URL are masked.
func (c Config) Redacted() Config {
	out := c
	if out.LLM.GeminiAPIKey != "" {
		out.LLM.GeminiAPIKey = redacted
	}
	if u, err := url.Parse(out.Database.URL); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
			out.Database.URL = u.String()
		}
	}
	return out
}
