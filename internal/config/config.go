// Package config loads the client configuration.
//
// Sources, in ascending precedence: built-in defaults, an optional
// moodtrack.yaml (current directory or ~/.config/moodtrack/), and
// MOODTRACK_* environment variables. The API key is deliberately never
// given a default — shipping a key in code is how the original app leaked
// its database to everyone with the bundle.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is everything the CLI needs to talk to the hosted store and keep
// its local session.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionPath string        `mapstructure:"session_path"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Load reads configuration from defaults, file, and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("timeout", 5*time.Second)
	v.SetDefault("session_path", "data/session.db")
	v.SetDefault("log_level", "info")

	v.SetConfigName("moodtrack")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/moodtrack")

	v.SetEnvPrefix("MOODTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults need an explicit binding for AutomaticEnv to
	// surface them through Unmarshal.
	_ = v.BindEnv("base_url")
	_ = v.BindEnv("api_key")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine — env vars alone are a full configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("config: base_url is required (set MOODTRACK_BASE_URL)")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config: api_key is required (set MOODTRACK_API_KEY)")
	}
	return &cfg, nil
}
