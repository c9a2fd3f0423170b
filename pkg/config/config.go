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

// Valid values for Download.Period
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// Config holds all configuration options for the subreddit image scraper
type Config struct {
	// Reddit listing endpoint settings
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds settings for the reddit listing API
type RedditConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Period           string        `yaml:"period" json:"period"`
	MinScore         int           `yaml:"min_score" json:"min_score"`
	MaxSubmissions   int           `yaml:"max_submissions" json:"max_submissions"`
	DownloadLocation string        `yaml:"download_location" json:"download_location"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	Quiet bool   `yaml:"quiet" json:"quiet"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			BaseURL:   "https://www.reddit.com",
			UserAgent: "redscraper/1.0 (batch subreddit image downloader)",
		},
		Download: DownloadConfig{
			Period:           PeriodDay,
			MinScore:         500,
			MaxSubmissions:   25,
			DownloadLocation: ".",
			Timeout:          30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
			Quiet: false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("REDSCRAPER_BASE_URL"); baseURL != "" {
		c.Reddit.BaseURL = baseURL
	}
	if userAgent := os.Getenv("REDSCRAPER_USER_AGENT"); userAgent != "" {
		c.Reddit.UserAgent = userAgent
	}
	if period := os.Getenv("REDSCRAPER_PERIOD"); period != "" {
		c.Download.Period = strings.ToLower(period)
	}
	if score := os.Getenv("REDSCRAPER_MIN_SCORE"); score != "" {
		var val int
		if _, err := fmt.Sscanf(score, "%d", &val); err == nil && val >= 0 {
			c.Download.MinScore = val
		}
	}
	if max := os.Getenv("REDSCRAPER_MAX_SUBMISSIONS"); max != "" {
		var val int
		if _, err := fmt.Sscanf(max, "%d", &val); err == nil && val > 0 {
			c.Download.MaxSubmissions = val
		}
	}
	if location := os.Getenv("REDSCRAPER_DOWNLOAD_LOCATION"); location != "" {
		c.Download.DownloadLocation = location
	}
	if rpm := os.Getenv("REDSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		if _, err := fmt.Sscanf(rpm, "%d", &val); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("REDSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("REDSCRAPER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
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
	// Check in order of precedence
	locations := []string{
		".redscraper.yaml",
		".redscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "redscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "redscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".redscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".redscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ValidPeriod reports whether period is one of the supported ranking windows
func ValidPeriod(period string) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Reddit.BaseURL == "" {
		errs = append(errs, errors.New("reddit base URL is required"))
	}
	if c.Reddit.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if !ValidPeriod(c.Download.Period) {
		errs = append(errs, fmt.Errorf("period must be one of %s, %s, %s", PeriodDay, PeriodWeek, PeriodMonth))
	}
	if c.Download.MinScore < 0 {
		errs = append(errs, errors.New("minimum score cannot be negative"))
	}
	if c.Download.MaxSubmissions <= 0 {
		errs = append(errs, errors.New("max submissions must be positive"))
	}
	if c.Download.MaxSubmissions > 100 {
		errs = append(errs, errors.New("max submissions cannot exceed 100, the listing page size limit"))
	}
	if c.Download.DownloadLocation == "" {
		errs = append(errs, errors.New("download location is required"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
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

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if period, ok := flags["period"].(string); ok && period != "" {
		c.Download.Period = strings.ToLower(period)
	}
	if score, ok := flags["score"].(int); ok && score >= 0 {
		c.Download.MinScore = score
	}
	if max, ok := flags["max"].(int); ok && max > 0 {
		c.Download.MaxSubmissions = max
	}
	if location, ok := flags["download-location"].(string); ok && location != "" {
		c.Download.DownloadLocation = location
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["logfile"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if quiet, ok := flags["quiet"].(bool); ok {
		c.Logging.Quiet = quiet
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
