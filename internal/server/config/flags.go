package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/scorekeeper/internal/flagx"
)

// parseFlags overlays Config fields given on the command line.
//
// Supported flags (short forms):
//
//	-t string   database driver (sqlite, postgres, mysql)
//	-d string   database DSN
//	-r int      recovery session validity, minutes
//	-l string   log level
//
// Only these flags are taken from args (see flagx.FilterArgs), so the
// console front-end may define its own.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-t", "-d", "-r", "-l"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver: sqlite, postgres or mysql")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	ttl := fs.Int("r", 0, "recovery session validity (in minutes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// a sub-minute TTL from JSON must survive when -r is absent
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "r" {
			config.RecoverySessionTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
