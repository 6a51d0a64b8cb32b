package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/quire/pkg/dotdir"
)

// EnvPrefix is the prefix of every environment variable quire reads.
const EnvPrefix = "QUIRE"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the QUIRE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (QUIRE_BACKEND_URL, QUIRE_API_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: QUIRE_BACKEND_URL, QUIRE_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the merged viper view.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Backend: BackendConfig{
			URL:           v.GetString("backend.url"),
			AnonKey:       v.GetString("backend.anon_key"),
			FunctionsPath: v.GetString("backend.functions_path"),
			ResearchPath:  v.GetString("backend.research_path"),
		},
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		API: APIConfig{
			Listen:    v.GetString("api.listen"),
			JWTSecret: v.GetString("api.jwt_secret"),
		},
		Events: EventsConfig{
			Brokers: v.GetString("events.brokers"),
			Topic:   v.GetString("events.topic"),
		},
		Render: RenderConfig{
			Width: v.GetUint("render.width"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Backend
	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.anon_key", d.Backend.AnonKey)
	v.SetDefault("backend.functions_path", d.Backend.FunctionsPath)
	v.SetDefault("backend.research_path", d.Backend.ResearchPath)

	// Storage
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.jwt_secret", d.API.JWTSecret)

	// Events
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	// Render
	v.SetDefault("render.width", d.Render.Width)
}
