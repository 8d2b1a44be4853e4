// Package config loads the CLI configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete libzmx CLI configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig describes the design-server connection.
type ServerConfig struct {
	// Application and topic name the call-and-reply channel registers with.
	Application string `mapstructure:"application"`
	Topic       string `mapstructure:"topic"`

	// TimeoutMs bounds each individual remote call. Timed-out calls are
	// never retried automatically.
	TimeoutMs int `mapstructure:"timeoutMs"`

	// NativePickup controls whether pickup solves are mirrored as native
	// server solves or degraded to one-shot computed writes.
	NativePickup bool `mapstructure:"nativePickup"`
}

// StoreConfig describes prescription snapshot persistence.
type StoreConfig struct {
	DataDir string `mapstructure:"dataDir"`
}

// LoggingConfig describes log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.application", "ZEMAX")
	v.SetDefault("server.topic", "ZEMAX")
	v.SetDefault("server.timeoutMs", 10000)
	v.SetDefault("server.nativePickup", true)
	v.SetDefault("store.dataDir", "./data")
	v.SetDefault("logging.level", "info")
}

// Load reads the configuration from the given file path, or from the
// default search locations when path is empty. Environment variables with
// the LIBZMX_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIBZMX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("libzmx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/libzmx")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Server.TimeoutMs <= 0 {
		return nil, fmt.Errorf("server.timeoutMs must be positive, got %d", cfg.Server.TimeoutMs)
	}
	return &cfg, nil
}
