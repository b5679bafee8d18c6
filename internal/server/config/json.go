package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/scorekeeper/internal/flagx"
	"github.com/dmitrijs2005/scorekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent keys leave
// the corresponding Config field untouched.
type JsonConfig struct {
	DatabaseDriver     *string         `json:"database_driver"`
	DatabaseDSN        *string         `json:"database_dsn"`
	RecoverySessionTTL *timex.Duration `json:"recovery_session_ttl"`
	LogLevel           *string         `json:"log_level"`
	Argon2Time         *uint32         `json:"argon2_time"`
	Argon2MemoryKiB    *uint32         `json:"argon2_memory_kib"`
	Argon2Threads      *uint8          `json:"argon2_threads"`
}

// parseJson loads the file named by -c / -config / --config, if any, and
// copies the keys it sets into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.DatabaseDriver != nil {
		config.DatabaseDriver = *c.DatabaseDriver
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.RecoverySessionTTL != nil {
		config.RecoverySessionTTL = c.RecoverySessionTTL.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.Argon2Time != nil {
		config.Argon2Time = *c.Argon2Time
	}
	if c.Argon2MemoryKiB != nil {
		config.Argon2MemoryKiB = *c.Argon2MemoryKiB
	}
	if c.Argon2Threads != nil {
		config.Argon2Threads = *c.Argon2Threads
	}
	return nil
}
