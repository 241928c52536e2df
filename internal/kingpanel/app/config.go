package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigPathEnv names the variable consulted when --config is not given.
const ConfigPathEnv = "KINGPANEL_CONFIG"

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is read from an optional YAML file, then overlaid with environment
// variables.
type Config struct {
	BaseURL  string `yaml:"base_url" env:"KINGPANEL_BASE_URL" env-default:"http://127.0.0.1:8000/api"`
	PanelURL string `yaml:"panel_url" env:"KINGPANEL_PANEL_URL" env-default:"http://127.0.0.1:5173"` // where login surfaces live

	HTTPTimeout    time.Duration `yaml:"http_timeout" env:"KINGPANEL_HTTP_TIMEOUT" env-default:"10s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"KINGPANEL_REFRESH_TIMEOUT" env-default:"10s"`
	RateLimit      float64       `yaml:"rate_limit" env:"KINGPANEL_RATE_LIMIT" env-default:"0"` // requests/s, 0 disables
	RateBurst      int           `yaml:"rate_burst" env:"KINGPANEL_RATE_BURST" env-default:"1"`

	Store StoreConfig `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`

	Env       string `yaml:"env" env:"ENV" env-default:"prod"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver" env:"KINGPANEL_STORE" env-default:"sqlite"`
	SQLiteFile string `yaml:"sqlite_file" env:"KINGPANEL_SQLITE_FILE" env-default:"kingpanel.db"`

	// MasterKey seals tokens at rest. When empty the key is read from (or
	// generated into) MasterKeyFile.
	MasterKey     string `yaml:"master_key" env:"KINGPANEL_MASTER_KEY"`
	MasterKeyFile string `yaml:"master_key_file" env:"KINGPANEL_MASTER_KEY_FILE" env-default:"kingpanel.key"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"KINGPANEL_REDIS_ADDR" env-default:"127.0.0.1:6379"`
	Password string `yaml:"password" env:"KINGPANEL_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"KINGPANEL_REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"KINGPANEL_REDIS_PREFIX" env-default:"kingpanel"`
}

// LoadConfig reads configuration from path, or from the file named by
// KINGPANEL_CONFIG, or from the environment alone.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %q: %w", path, err)
		}
		// ReadConfig overlays the environment on top of the file.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}

	switch c.Store.Driver {
	case StoreSQLite:
		if c.Store.SQLiteFile == "" {
			return errors.New("sqlite store needs a database file")
		}
		if c.Store.MasterKey == "" && c.Store.MasterKeyFile == "" {
			return errors.New("sqlite store needs a master key or master key file")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis store needs an address")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.HTTPTimeout <= 0 || c.RefreshTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.RateLimit < 0 {
		return errors.New("rate limit must not be negative")
	}

	return nil
}
