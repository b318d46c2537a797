package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// API backend configuration
	API struct {
		BaseURL        string        `yaml:"base_url"`
		UseMock        bool          `yaml:"use_mock"`
		FallbackToMock bool          `yaml:"fallback_to_mock"`
		MockLatency    time.Duration `yaml:"mock_latency"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	// Cache TTLs per operation family
	Cache struct {
		FeaturedTTL time.Duration `yaml:"featured_ttl"`
		LatestTTL   time.Duration `yaml:"latest_ttl"`
		GenresTTL   time.Duration `yaml:"genres_ttl"`
		ListingTTL  time.Duration `yaml:"listing_ttl"`
	} `yaml:"cache"`

	// Fetcher retry policy
	Fetcher struct {
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		NoRetry    bool          `yaml:"no_retry"`
	} `yaml:"fetcher"`

	// Server configuration
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// File paths
	Paths struct {
		DatabaseFile string `yaml:"database_file"`
	} `yaml:"paths"`
}

// Load loads configuration from a file (if specified) and environment
// variables. Priority: environment variables, then config file, then
// defaults.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	// Defaults
	// The REST client appends /api itself
	cfg.API.BaseURL = "http://localhost:5000"
	cfg.API.MockLatency = 300 * time.Millisecond
	cfg.API.Timeout = 30 * time.Second
	cfg.Cache.FeaturedTTL = 5 * time.Minute
	cfg.Cache.LatestTTL = 2 * time.Minute
	cfg.Cache.GenresTTL = 10 * time.Minute
	cfg.Cache.ListingTTL = 5 * time.Minute
	cfg.Fetcher.RetryLimit = 3
	cfg.Fetcher.RetryDelay = time.Second
	cfg.Server.Port = "8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	cfg.Paths.DatabaseFile = "./comicshelf.db"

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if !c.API.UseMock && c.API.BaseURL == "" {
		return &ConfigError{Field: "COMICSHELF_API_URL", Msg: "required unless mock mode is enabled"}
	}
	if c.Fetcher.RetryLimit < 0 {
		return &ConfigError{Field: "FETCHER_RETRY_LIMIT", Msg: "must not be negative"}
	}
	if c.Fetcher.RetryDelay < 0 {
		return &ConfigError{Field: "FETCHER_RETRY_DELAY", Msg: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Msg
}

func loadFromEnv(cfg *Config) {
	if url := os.Getenv("COMICSHELF_API_URL"); url != "" {
		cfg.API.BaseURL = strings.TrimSuffix(url, "/")
	}
	if useMock, set := os.LookupEnv("COMICSHELF_USE_MOCK"); set {
		cfg.API.UseMock = parseBool(useMock)
	}
	if fallback, set := os.LookupEnv("COMICSHELF_FALLBACK_TO_MOCK"); set {
		cfg.API.FallbackToMock = parseBool(fallback)
	}
	if latency := getDurationFromEnv("COMICSHELF_MOCK_LATENCY", 0); latency > 0 {
		cfg.API.MockLatency = latency
	}
	if timeout := getDurationFromEnv("COMICSHELF_API_TIMEOUT", 0); timeout > 0 {
		cfg.API.Timeout = timeout
	}

	if limit := getIntFromEnv("FETCHER_RETRY_LIMIT", -1); limit >= 0 {
		cfg.Fetcher.RetryLimit = limit
	}
	if delay := getDurationFromEnv("FETCHER_RETRY_DELAY", 0); delay > 0 {
		cfg.Fetcher.RetryDelay = delay
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if timeout := getDurationFromEnv("SHUTDOWN_TIMEOUT", 0); timeout > 0 {
		cfg.Server.ShutdownTimeout = timeout
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if dbFile := os.Getenv("COMICSHELF_DB_FILE"); dbFile != "" {
		cfg.Paths.DatabaseFile = dbFile
	}
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.ToLower(value))
	return err == nil && b
}

func getIntFromEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func getDurationFromEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}
