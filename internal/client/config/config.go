// Package config holds runtime settings for the GophMarket CLI.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the GophMarket CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API, without a trailing slash.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig reads the process arguments.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load applies defaults, then the JSON file named by -c/-config, then flags.
// Later sources take precedence over earlier ones.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
