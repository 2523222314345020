package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	Server    ServerConfig    `mapstructure:"server"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects where the signed-in user record is kept between runs
type SessionConfig struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
	Key      string `mapstructure:"key"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Seed string `mapstructure:"seed"`
}

type CheckoutConfig struct {
	CODFee float64 `mapstructure:"cod_fee"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.backend", BackendFile)
	v.SetDefault("session.path", ".storefront/session.json")
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("session.key", "storefront:session:user")
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.seed", "")
	v.SetDefault("checkout.cod_fee", 15)
	v.SetDefault("log.level", "info")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "storefront")
}

// Load reads config.yaml from the usual locations, or path when set, and
// applies STOREFRONT_ environment overrides. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("./deploy/")
		v.AddConfigPath("$HOME/.storefront/")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot start with
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case BackendFile:
		if c.Session.Path == "" {
			return errors.New("session.path is required for the file backend")
		}
	case BackendRedis:
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session.backend %q", c.Session.Backend)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Checkout.CODFee < 0 {
		return errors.New("checkout.cod_fee cannot be negative")
	}
	return nil
}
