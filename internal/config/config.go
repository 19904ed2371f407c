// Package config loads service settings from an optional YAML file and the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// PathEnv names the variable holding the YAML config path
const PathEnv = "RATE_WIDGET_CONFIG_PATH"

// ErrInvalidConfig is returned when a loaded config fails validation
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	RateAPI    `yaml:"rate_api"`
	RateCache  `yaml:"rate_cache"`
	Widget     `yaml:"widget"`
	LogConfig  `yaml:"log_config"`
}

type HTTPServer struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type RateAPI struct {
	URL     string        `yaml:"url" env:"RATE_API_URL" env-default:"https://open.er-api.com/v6/latest/USD"`
	Timeout time.Duration `yaml:"timeout" env:"RATE_API_TIMEOUT" env-default:"10s"`
}

type RateCache struct {
	Expiration time.Duration `yaml:"expiration" env:"RATE_CACHE_EXPIRATION" env-default:"1h"`
}

type Widget struct {
	PollInterval time.Duration `yaml:"poll_interval" env:"WIDGET_POLL_INTERVAL" env-default:"30s"`
	Currencies   []string      `yaml:"currencies" env:"WIDGET_CURRENCIES" env-separator:"," env-default:"USD,EUR,GBP"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
}

// Load reads .env if present, then the YAML file named by RATE_WIDGET_CONFIG_PATH
// (when set) with environment overrides, otherwise the environment alone.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if configPath := os.Getenv(PathEnv); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load for main: it exits the process on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func (c *Config) normalize() {
	currencies := make([]string, 0, len(c.Currencies))
	for _, code := range c.Currencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			currencies = append(currencies, code)
		}
	}
	c.Currencies = currencies
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: http_server.addr is empty", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: http_server.shutdown_timeout must be positive", ErrInvalidConfig)
	case c.URL == "":
		return fmt.Errorf("%w: rate_api.url is empty", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: rate_api.timeout must be positive", ErrInvalidConfig)
	case c.Expiration <= 0:
		return fmt.Errorf("%w: rate_cache.expiration must be positive", ErrInvalidConfig)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: widget.poll_interval must be positive", ErrInvalidConfig)
	case len(c.Currencies) == 0:
		return fmt.Errorf("%w: widget.currencies is empty", ErrInvalidConfig)
	}
	return nil
}
