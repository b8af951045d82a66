// Package config loads storefront settings from the environment and an
// optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config is the process configuration. Environment variables win over the
// config file.
type Config struct {
	BaseURL       string `mapstructure:"BASE_URL"`
	Addr          string `mapstructure:"ADDR"`
	WebDir        string `mapstructure:"WEB_DIR"`
	Store         string `mapstructure:"STORE"`
	StorePath     string `mapstructure:"STORE_PATH"`
	StoreKey      string `mapstructure:"STORE_KEY"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	TraceStdout   bool   `mapstructure:"TRACE_STDOUT"`
}

var defaults = map[string]any{
	"BASE_URL":       "http://localhost:5000",
	"ADDR":           ":8080",
	"WEB_DIR":        "web",
	"STORE":          StoreFile,
	"STORE_PATH":     "storefront.json",
	"STORE_KEY":      "",
	"DATABASE_URL":   "",
	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"REDIS_PREFIX":   "storefront",
	"LOG_LEVEL":      "info",
	"LOG_FORMAT":     "json",
	"TRACE_STDOUT":   false,
}

// Load reads path, or ./storefront.yaml when path is empty and the file
// exists, then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("BASE_URL %q must be an absolute http(s) URL", c.BaseURL)
	}

	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreMemory:
	case StoreFile:
		if c.StorePath == "" {
			return errors.New("STORE_PATH is required for the file store")
		}
		if c.StoreKey != "" {
			if err := checkKey(c.StoreKey); err != nil {
				return fmt.Errorf("STORE_KEY: %w", err)
			}
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	return nil
}

// checkKey reports whether hexKey is 32 bytes of hex, the file store's
// sealing key size.
func checkKey(hexKey string) error {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return fmt.Errorf("want 32 bytes, got %d", len(b))
	}
	return nil
}
