// Package config provides runtime configuration for the admin console.
// It uses Viper to load settings from files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for sublyadmin.
type Config struct {
	// ── Console API ──────────────────────────────────────────────────────────
	ListenHost string `mapstructure:"listen_host"`
	ListenPort int    `mapstructure:"listen_port"`
	DBPath     string `mapstructure:"db_path"`
	DBDriver   string `mapstructure:"db_driver"` // only "sqlite" for now

	// ── Security ─────────────────────────────────────────────────────────────
	// JWTSecret: HS256 signing key for console session tokens.
	// Change this in production — default is a random-looking placeholder.
	JWTSecret string `mapstructure:"jwt_secret"`
	// AdminEmail / AdminPass: bootstrap credentials; a bcrypt-hashed admin
	// user row is seeded from these on first start.
	AdminEmail string `mapstructure:"admin_email"`
	AdminPass  string `mapstructure:"admin_pass"`

	// ── Platform backend ─────────────────────────────────────────────────────
	// BackendURL: base URL of the Sublymus platform server.
	BackendURL string `mapstructure:"backend_url"`
	// BackendToken: sent as "Authorization: Bearer <token>" on every request.
	BackendToken string `mapstructure:"backend_token"`

	// ── Monitoring engine ────────────────────────────────────────────────────
	PollIntervalSec int `mapstructure:"poll_interval_seconds"`
	HistoryWindow   int `mapstructure:"history_window"`
	// LocalHostProbe: when true and the backend reports no host section,
	// host data is sampled from this machine via gopsutil instead of being
	// left absent.
	LocalHostProbe bool `mapstructure:"local_host_probe"`
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// ListenAddr returns host:port for the console API server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ListenHost, c.ListenPort)
}

// Load reads config from file (./config.yaml or ~/.sublyadmin/config.yaml)
// and falls back to defaults. Environment variables with prefix SUBLY_
// override file values.
func Load() (*Config, error) {
	v := viper.New()

	// --- Defaults ---
	v.SetDefault("listen_host", "0.0.0.0")
	v.SetDefault("listen_port", 5555)
	v.SetDefault("db_path", "sublyadmin.db")
	v.SetDefault("db_driver", "sqlite")

	// Security defaults — MUST be overridden in production via config.yaml or env vars.
	v.SetDefault("jwt_secret", "Sb$9quT3!xH7#pW1^zL5&kD8*mQ2@vR")
	v.SetDefault("admin_email", "admin@sublymus.com")
	v.SetDefault("admin_pass", "admin")

	v.SetDefault("backend_url", "http://localhost:3333")
	v.SetDefault("backend_token", "")

	v.SetDefault("poll_interval_seconds", 120)
	v.SetDefault("history_window", 50)
	v.SetDefault("local_host_probe", false)

	// --- Config file ---
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.sublyadmin")
	if err := v.ReadInConfig(); err != nil {
		// config file is optional; ignore "not found" errors
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("SUBLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
