package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the pipeline.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (the database password) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// RawDataPath is the directory where ingested JSON snapshots are landed
	// before they are loaded into the raw tables.
	RawDataPath string `yaml:"raw_data_path" env:"RAW_DATA_PATH" env-default:"./data/raw"`

	// API configuration for the upstream Rick and Morty REST API
	API APIConfig `yaml:"api"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`
}

// APIConfig holds settings for the upstream REST API client.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" env:"RICK_MORTY_API_BASE_URL" env-default:"https://rickandmortyapi.com/api"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"API_TIMEOUT" env-default:"30"`
	MaxRetries     int    `yaml:"max_retries" env:"API_MAX_RETRIES" env-default:"5"`
	// RetryBackoffSeconds is the initial backoff; delays double per attempt,
	// capped at 30s.
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds" env:"API_RETRY_BACKOFF" env-default:"2"`
	// PageDelayMillis is the pause between page fetches, to be polite to the API.
	PageDelayMillis int `yaml:"page_delay_millis" env:"API_PAGE_DELAY_MILLIS" env-default:"100"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"morty"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"rick_morty_db"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// Load reads configuration from the given YAML file with environment variable
// overrides. When the file does not exist, configuration comes from environment
// variables alone. The version parameter is injected at build time and set on
// the returned Config.
func Load(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url must not be empty")
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("api max_retries must not be negative")
	}
	return nil
}

// CharactersEndpoint returns the URL of the paginated character listing.
func (c *APIConfig) CharactersEndpoint() string {
	return c.BaseURL + "/character"
}

// EpisodesEndpoint returns the URL of the paginated episode listing.
func (c *APIConfig) EpisodesEndpoint() string {
	return c.BaseURL + "/episode"
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
