package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load builds the configuration. cfgFile may be empty, in which case only
// defaults and environment variables apply. Safe to call more than once.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("NOTELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "data/notelink.db")
	// Keys without a meaningful default still need registering so that
	// environment overrides are visible to Unmarshal.
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("storage.base_url", "")
	v.SetDefault("storage.bucket", "audio-notes")
	v.SetDefault("storage.api_key", "")
	v.SetDefault("storage.timeout", 30*time.Second)

	v.SetDefault("webhook.chat_url", "")
	v.SetDefault("webhook.note_url", "")
	v.SetDefault("webhook.note_method", "POST")
	v.SetDefault("webhook.timeout", 15*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("limits.note_limit", 5)
	v.SetDefault("limits.note_window", 10*time.Minute)
	v.SetDefault("limits.chat_limit", 10)
	v.SetDefault("limits.chat_window", time.Minute)

	v.SetDefault("state.path", "data/client_state.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
