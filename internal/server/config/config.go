// Package config handles configuration for the account service,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDriver: "sqlite", "postgres" or "mysql".
//   - DatabaseDSN: data source name understood by the selected driver.
//   - RecoverySessionTTL: how long a verified recovery session may be used.
//   - LogLevel: "debug", "info", "warn" or "error".
//   - Argon2Time / Argon2MemoryKiB / Argon2Threads: cost of new password hashes.
type Config struct {
	DatabaseDriver     string
	DatabaseDSN        string
	RecoverySessionTTL time.Duration
	LogLevel           string
	Argon2Time         uint32
	Argon2MemoryKiB    uint32
	Argon2Threads      uint8
}

// LoadDefaults populates Config with development defaults: a local SQLite
// file and interactive-friendly hashing cost.
func (c *Config) LoadDefaults() {
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:data/scorekeeper.db?_pragma=busy_timeout(5000)"
	c.RecoverySessionTTL = 10 * time.Minute
	c.LogLevel = "info"
	c.Argon2Time = 1
	c.Argon2MemoryKiB = 64 * 1024
	c.Argon2Threads = 4
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
