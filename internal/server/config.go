// Manages server configuration stored in server_config.json.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "server_config.json"

// Config stores all server-wide configuration. Loaded from
// server_config.json under the data directory, created with defaults if
// missing.
type Config struct {
	// RateLimits defines rate limiting configuration.
	RateLimits RateLimits `json:"rate_limits"`

	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	MaxRequestBodyBytes int64 `json:"max_request_body_bytes"`
}

// RateLimits defines rate limiting configuration (requests per minute).
// Zero means unlimited.
type RateLimits struct {
	// ReadRatePerMin limits read operations (GET).
	ReadRatePerMin int `json:"read_rate_per_min"`
	// WriteRatePerMin limits write operations (POST/PUT).
	WriteRatePerMin int `json:"write_rate_per_min"`
	// Burst is the bucket capacity shared by both classes.
	Burst int `json:"burst"`
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.RateLimits.ReadRatePerMin < 0 {
		return errors.New("read_rate_per_min must be non-negative")
	}
	if c.RateLimits.WriteRatePerMin < 0 {
		return errors.New("write_rate_per_min must be non-negative")
	}
	if c.RateLimits.Burst < 0 {
		return errors.New("burst must be non-negative")
	}
	if c.MaxRequestBodyBytes < 0 {
		return errors.New("max_request_body_bytes must be non-negative")
	}
	return nil
}

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() Config {
	return Config{
		RateLimits: RateLimits{
			ReadRatePerMin:  6000,
			WriteRatePerMin: 60,
			Burst:           30,
		},
		MaxRequestBodyBytes: 10 << 20, // 10 MiB
	}
}

// LoadConfig reads server_config.json from dataDir, creating it with
// defaults on first run.
func LoadConfig(dataDir string) (Config, error) {
	path := filepath.Join(dataDir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("failed to read %s: %w", configFileName, err)
		}
		cfg := DefaultConfig()
		out, err := json.MarshalIndent(&cfg, "", "  ")
		if err != nil {
			return Config{}, fmt.Errorf("failed to serialize default config: %w", err)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return Config{}, fmt.Errorf("failed to write %s: %w", configFileName, err)
		}
		return cfg, nil
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", configFileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", configFileName, err)
	}
	return cfg, nil
}
