// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath         = "config.toml"
	DefaultHTTPAddr           = ":8080"
	DefaultTokenIssuer        = "dawn-backend"
	DefaultTokenAudience      = "dawn-api"
	DefaultPGHost             = "127.0.0.1"
	DefaultPGPort             = 5432
	DefaultPGUser             = "postgres"
	DefaultPGDatabase         = "stickyboard"
	DefaultPGSSLMode          = "disable"
	DefaultPresenceWindowSecs = 30
	DefaultPresenceReapEvery  = "@every 5m"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Presence PresenceConfig `toml:"presence"`
	I18n     I18nConfig     `toml:"i18n"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AuthConfig holds the shared JWT secret and the issuer/audience the
// external identity backend stamps into tokens.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
	Audience  string `toml:"audience"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// PresenceConfig holds the freshness window for cursor presence and the
// cron pattern for the stale-row reaper (empty string disables reaping).
type PresenceConfig struct {
	WindowSeconds int    `toml:"window_seconds"`
	ReapEvery     string `toml:"reap_every"`
}

// I18nConfig holds the fallback language for string table lookups.
type I18nConfig struct {
	FallbackLanguage string `toml:"fallback_language"`
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			Issuer:   DefaultTokenIssuer,
			Audience: DefaultTokenAudience,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Presence: PresenceConfig{
			WindowSeconds: DefaultPresenceWindowSecs,
			ReapEvery:     DefaultPresenceReapEvery,
		},
		I18n: I18nConfig{
			FallbackLanguage: "en",
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
