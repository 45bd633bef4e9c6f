// Package config loads the boardpulse service configuration from a YAML
// file with environment-variable overrides. Environment always wins, so a
// deployment can run without any file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	// Listen is the HTTP listen address. Default: ":8086".
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error. Default: "info".
	LogLevel string `yaml:"log_level"`

	Boards Boards `yaml:"boards"`
	Gemini Gemini `yaml:"gemini"`

	// Cache holds snapshot freshness settings.
	Cache Cache `yaml:"cache"`

	// EventsDB is the path of the observability SQLite database.
	// Default: "db/events.db".
	EventsDB string `yaml:"events_db"`
}

// Boards identifies the two source boards and the token used to query them.
type Boards struct {
	APIURL   string `yaml:"api_url"`
	APIToken string `yaml:"api_token"`
	DealsID  string `yaml:"deals_id"`
	WorkID   string `yaml:"work_orders_id"`
}

// Gemini configures the LLM boundary.
type Gemini struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Cache configures the snapshot cache.
type Cache struct {
	// Freshness is how long a snapshot is served without refetching.
	// Default: 5m.
	Freshness time.Duration `yaml:"freshness"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8086"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Boards.APIURL == "" {
		c.Boards.APIURL = "https://api.monday.com/v2"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Cache.Freshness <= 0 {
		c.Cache.Freshness = 5 * time.Minute
	}
	if c.EventsDB == "" {
		c.EventsDB = "db/events.db"
	}
}

// applyEnv overlays well-known environment variables onto c.
func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Listen, "LISTEN_ADDR")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.Boards.APIURL, "BOARD_API_URL")
	set(&c.Boards.APIToken, "BOARD_API_TOKEN")
	set(&c.Boards.DealsID, "DEALS_BOARD_ID")
	set(&c.Boards.WorkID, "WO_BOARD_ID")
	set(&c.Gemini.APIKey, "GEMINI_API_KEY")
	set(&c.Gemini.Model, "GEMINI_MODEL")
	set(&c.EventsDB, "EVENTS_DB")
	if v := os.Getenv("CACHE_FRESHNESS"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Cache.Freshness = d
		}
	}
}

// Load reads path (if non-empty and present), applies environment overrides,
// then defaults. A missing file is only an error when the path was given
// explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.defaults()

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Boards.APIToken == "" {
		return fmt.Errorf("config: board API token is required (BOARD_API_TOKEN)")
	}
	if c.Boards.DealsID == "" || c.Boards.WorkID == "" {
		return fmt.Errorf("config: both board IDs are required (DEALS_BOARD_ID, WO_BOARD_ID)")
	}
	return nil
}
