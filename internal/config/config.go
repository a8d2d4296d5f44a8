// Package config provides centralized configuration for notelink, loaded
// from defaults, an optional YAML file, and NOTELINK_-prefixed environment
// variables, in that order of precedence.
package config

import (
	"errors"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Storage StorageConfig `mapstructure:"storage"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	State   StateConfig   `mapstructure:"state"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// StorageConfig points at the object-storage bucket for audio attachments.
type StorageConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Bucket  string        `mapstructure:"bucket"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebhookConfig configures the assistant and note-notification endpoints.
type WebhookConfig struct {
	ChatURL    string        `mapstructure:"chat_url"`
	NoteURL    string        `mapstructure:"note_url"`
	NoteMethod string        `mapstructure:"note_method"` // POST (current) or GET (legacy)
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AuthConfig secures the admin surface.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LimitsConfig tunes the per-client rate gates.
type LimitsConfig struct {
	NoteLimit  int           `mapstructure:"note_limit"`
	NoteWindow time.Duration `mapstructure:"note_window"`
	ChatLimit  int           `mapstructure:"chat_limit"`
	ChatWindow time.Duration `mapstructure:"chat_window"`
}

// StateConfig locates the client-state file (rate-limit windows).
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Validate checks the parts of the configuration that have no workable
// fallback.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	if c.Store.Path == "" && c.Store.URL == "" {
		return errors.New("store.path or store.url is required")
	}
	switch c.Webhook.NoteMethod {
	case "", "POST", "GET":
	default:
		return errors.New("webhook.note_method must be POST or GET")
	}
	return nil
}
