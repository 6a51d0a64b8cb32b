package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent quire configuration stored as config.toml
// in the .quire/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Backend BackendConfig `toml:"backend"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Events  EventsConfig  `toml:"events"`
	Render  RenderConfig  `toml:"render"`
}

// BackendConfig holds settings for the hosted backend that serves the
// research, checkout, portal and subscription functions.
type BackendConfig struct {
	// URL is the backend base URL (scheme + host + port).
	URL string `toml:"url,omitempty"`

	// AnonKey is the public API key sent as the "apikey" header.
	AnonKey string `toml:"anon_key,omitempty"`

	// FunctionsPath is the path prefix of the hosted functions.
	FunctionsPath string `toml:"functions_path,omitempty"`

	// ResearchPath is the path of the streaming research function.
	ResearchPath string `toml:"research_path,omitempty"`
}

// StorageConfig holds shared storage settings used by the CLI and API.
// PostgresDSN takes precedence over SQLitePath when both are set.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`

	// JWTSecret verifies HS256 bearer tokens. When empty, tokens are
	// decoded without verification and only their expiry is checked.
	JWTSecret string `toml:"jwt_secret,omitempty"`
}

// EventsConfig holds the research event publisher settings.
// An empty Brokers list disables publishing.
type EventsConfig struct {
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// RenderConfig holds terminal rendering settings.
type RenderConfig struct {
	Width uint `toml:"width,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backend.url": {
		get: func(c *Config) string { return c.Backend.URL },
		set: func(c *Config, v string) error { c.Backend.URL = v; return nil },
	},
	"backend.anon_key": {
		get: func(c *Config) string { return c.Backend.AnonKey },
		set: func(c *Config, v string) error { c.Backend.AnonKey = v; return nil },
	},
	"backend.functions_path": {
		get: func(c *Config) string { return c.Backend.FunctionsPath },
		set: func(c *Config, v string) error { c.Backend.FunctionsPath = v; return nil },
	},
	"backend.research_path": {
		get: func(c *Config) string { return c.Backend.ResearchPath },
		set: func(c *Config, v string) error { c.Backend.ResearchPath = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.jwt_secret": {
		get: func(c *Config) string { return c.API.JWTSecret },
		set: func(c *Config, v string) error { c.API.JWTSecret = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"render.width": {
		get: func(c *Config) string {
			if c.Render.Width == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Render.Width), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for render.width: %w", err)
			}
			c.Render.Width = uint(n)
			return nil
		},
	},
}
