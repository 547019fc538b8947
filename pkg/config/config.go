package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Telegram file scraper
type Config struct {
	// Telegram API credentials and session
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`

	// Scrape settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Rate limiting and flood-control configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behaviour for transient network errors
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TelegramConfig holds Telegram-specific configuration
type TelegramConfig struct {
	APIID       int    `yaml:"api_id" json:"api_id"`
	APIHash     string `yaml:"api_hash" json:"api_hash"`
	Phone       string `yaml:"phone" json:"phone"`
	SessionFile string `yaml:"session_file" json:"session_file"`
}

// ScrapeConfig holds scrape pipeline configuration
type ScrapeConfig struct {
	MessageLimit int      `yaml:"message_limit" json:"message_limit"`
	PageSize     int      `yaml:"page_size" json:"page_size"`
	FileTypes    []string `yaml:"file_types" json:"file_types"`
}

// RateLimitConfig holds request pacing and flood-control configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxFloodWaits     int           `yaml:"max_flood_waits" json:"max_flood_waits"`
	FloodWaitCeiling  time.Duration `yaml:"flood_wait_ceiling" json:"flood_wait_ceiling"`
	DefaultFloodWait  time.Duration `yaml:"default_flood_wait" json:"default_flood_wait"`
}

// RetryConfig holds retry configuration for transient network errors
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// OutputConfig holds export configuration
type OutputConfig struct {
	Path string `yaml:"path" json:"path"`
	JSON bool   `yaml:"json" json:"json"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			SessionFile: defaultSessionFile(),
		},
		Scrape: ScrapeConfig{
			MessageLimit: 10000,
			PageSize:     100,
			FileTypes:    nil, // all files
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxFloodWaits:     3,
			FloodWaitCeiling:  5 * time.Minute,
			DefaultFloodWait:  30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Output: OutputConfig{
			Path: "scraped_files.csv",
			JSON: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tgscraper.session"
	}
	return filepath.Join(home, ".config", "tgscraper", "tgscraper.session")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiID := os.Getenv("TGSCRAPER_API_ID"); apiID != "" {
		var val int
		fmt.Sscanf(apiID, "%d", &val)
		if val > 0 {
			c.Telegram.APIID = val
		}
	}
	if apiHash := os.Getenv("TGSCRAPER_API_HASH"); apiHash != "" {
		c.Telegram.APIHash = apiHash
	}
	if phone := os.Getenv("TGSCRAPER_PHONE"); phone != "" {
		c.Telegram.Phone = phone
	}
	if session := os.Getenv("TGSCRAPER_SESSION_FILE"); session != "" {
		c.Telegram.SessionFile = session
	}

	if rpm := os.Getenv("TGSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if limit := os.Getenv("TGSCRAPER_MESSAGE_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Scrape.MessageLimit = val
		}
	}

	if output := os.Getenv("TGSCRAPER_OUTPUT"); output != "" {
		c.Output.Path = output
	}

	if logLevel := os.Getenv("TGSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tgscraper.yaml",
		".tgscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tgscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tgscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".tgscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. API credentials are not
// required here: they may still arrive from the credential manager.
func (c *Config) Validate() error {
	var errs []error

	if c.Scrape.MessageLimit < 0 {
		errs = append(errs, errors.New("message limit cannot be negative"))
	}
	if c.Scrape.PageSize <= 0 || c.Scrape.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxFloodWaits < 1 {
		errs = append(errs, errors.New("max flood waits must be at least 1"))
	}
	if c.RateLimit.FloodWaitCeiling <= 0 {
		errs = append(errs, errors.New("flood wait ceiling must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}

	if c.Output.Path == "" {
		errs = append(errs, errors.New("output path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	for _, ext := range c.Scrape.FileTypes {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("file type %q must start with a dot", ext))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if limit, ok := flags["limit"].(int); ok && limit >= 0 {
		c.Scrape.MessageLimit = limit
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Path = output
	}
	if types, ok := flags["types"].([]string); ok && len(types) > 0 {
		c.Scrape.FileTypes = types
	}
	if emitJSON, ok := flags["json"].(bool); ok {
		c.Output.JSON = emitJSON
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tgscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
