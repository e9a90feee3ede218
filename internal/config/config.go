// Package config handles configuration loading for vigia.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"        yaml:"llm"`
	Sources    SourcesConfig    `mapstructure:"sources"    yaml:"sources"`
	Aggregator AggregatorConfig `mapstructure:"aggregator" yaml:"aggregator"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Mail       MailConfig       `mapstructure:"mail"       yaml:"mail"`
	Session    SessionConfig    `mapstructure:"session"    yaml:"session"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// LLMConfig holds the DeepSeek classifier endpoint configuration.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"     yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url"    yaml:"base_url"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
}

// SourcesConfig selects the source catalog.
type SourcesConfig struct {
	// File points at a YAML catalog overriding the built-in sources.
	File       string   `mapstructure:"file"       yaml:"file"`
	Categories []string `mapstructure:"categories" yaml:"categories"`
}

// AggregatorConfig holds fetch and merge settings.
type AggregatorConfig struct {
	UseGoogle         bool `mapstructure:"use_google"         yaml:"use_google"`
	UseBing           bool `mapstructure:"use_bing"           yaml:"use_bing"`
	GoogleCap         int  `mapstructure:"google_cap"         yaml:"google_cap"`
	BingCap           int  `mapstructure:"bing_cap"           yaml:"bing_cap"`
	MinMatches        int  `mapstructure:"min_matches"        yaml:"min_matches"`
	ConcurrentFetches int  `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	FetchPauseMs      int  `mapstructure:"fetch_pause_ms"     yaml:"fetch_pause_ms"`
}

// ClassifierConfig bounds the enrichment stage.
type ClassifierConfig struct {
	Concurrency  int `mapstructure:"concurrency"   yaml:"concurrency"`
	SummaryLimit int `mapstructure:"summary_limit" yaml:"summary_limit"`
}

// MailConfig holds SMTP submission settings for report delivery.
type MailConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	From     string `mapstructure:"from"     yaml:"from"`
}

// SessionConfig holds search-session settings.
type SessionConfig struct {
	HistorySize int `mapstructure:"history_size" yaml:"history_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.vigia/config.yaml (home directory)
//  3. /etc/vigia/config.yaml (system)
//
// Environment variables override config file values.
// Format: VIGIA_<SECTION>_<KEY>, e.g., VIGIA_LLM_API_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".vigia"))
	v.AddConfigPath("/etc/vigia")

	v.SetEnvPrefix("VIGIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("VIGIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 300)

	// Sources defaults: the built-in catalog minus the global category,
	// matching the monitor's usual category selection.
	v.SetDefault("sources.categories", []string{"nacional", "economia", "regional"})

	// Aggregator defaults
	v.SetDefault("aggregator.use_google", true)
	v.SetDefault("aggregator.use_bing", false)
	v.SetDefault("aggregator.google_cap", 50)
	v.SetDefault("aggregator.bing_cap", 30)
	v.SetDefault("aggregator.min_matches", 1)
	v.SetDefault("aggregator.concurrent_fetches", 5)
	v.SetDefault("aggregator.fetch_pause_ms", 300)

	// Classifier defaults
	v.SetDefault("classifier.concurrency", 4)
	v.SetDefault("classifier.summary_limit", 5)

	// Mail defaults
	v.SetDefault("mail.port", 587)

	// Session defaults
	v.SetDefault("session.history_size", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("VIGIA_LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if user := os.Getenv("VIGIA_MAIL_USERNAME"); user != "" {
		cfg.Mail.Username = user
	}
	if pw := os.Getenv("VIGIA_MAIL_PASSWORD"); pw != "" {
		cfg.Mail.Password = pw
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
