package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config represents the main configuration for shakefetch.
type Config struct {
	CountryCode string `toml:"country_code" env:"SHAKEFETCH_COUNTRY_CODE"`
	// TimeField selects the record timestamp used for filtering:
	// "cloud_t" (default) or "device_t".
	TimeField   string `toml:"time_field" env:"SHAKEFETCH_TIME_FIELD"`
	Concurrency int    `toml:"concurrency" env:"SHAKEFETCH_CONCURRENCY"`
	LogDir      string `toml:"log_dir" env:"SHAKEFETCH_LOG_DIR"`
	// LogLevel gates log output: "debug", "info", "warn" or "error".
	LogLevel string `toml:"log_level" env:"SHAKEFETCH_LOG_LEVEL"`
	// MetricsAddr, when set, serves Prometheus metrics over HTTP at
	// /metrics on that address for the lifetime of the invocation.
	MetricsAddr string `toml:"metrics_addr,omitempty" env:"SHAKEFETCH_METRICS_ADDR"`

	Store StoreConfig `toml:"store"`
}

// StoreConfig represents configuration for the object-store backend.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type StoreConfig struct {
	Type string `toml:"type" env:"SHAKEFETCH_STORE_TYPE"` // "s3" (default) or "memory"

	// S3-specific fields (only used when Type == "s3")
	Bucket            string  `toml:"bucket,omitempty" env:"SHAKEFETCH_BUCKET"`
	Region            string  `toml:"region,omitempty" env:"SHAKEFETCH_REGION"`
	AccessKeyID       string  `toml:"access_key_id,omitempty" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey   string  `toml:"secret_access_key,omitempty" env:"AWS_SECRET_ACCESS_KEY"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty" env:"SHAKEFETCH_REQUESTS_PER_SECOND"`
}

// Defaults for the public dataset bucket.
const (
	DefaultBucket = "grillo-openeew"
	DefaultRegion = "us-east-1"
)

// NewConfig creates a new Config for the given country with default values.
func NewConfig(countryCode, baseDir string) *Config {
	return &Config{
		CountryCode: countryCode,
		TimeField:   "cloud_t",
		Concurrency: 8,
		LogDir:      filepath.Join(baseDir, "log"),
		LogLevel:    "info",
		Store: StoreConfig{
			Type:   "s3",
			Bucket: DefaultBucket,
			Region: DefaultRegion,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config file at path and applies environment overrides.
// A .env file in the working directory is honored for local development.
func Load(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if cfg.CountryCode == "" {
		return nil, fmt.Errorf("country_code is required")
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
