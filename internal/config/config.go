package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

var (
	ErrInvalidBand   = errors.New("invalid plausibility band: min must be positive and below max")
	ErrUnknownDriver = errors.New("unknown GF_STORAGE_DRIVER: expected sqlite or redis")
)

type Config struct {
	Env           string // Env is the current environment: local, development, production.
	URL           string
	SourceID      string
	CheckInterval time.Duration
	HTTPAddr      string // HTTPAddr enables the HTTP API when not empty.
	Storage       Storage
	Fetch         Fetch
	Validator     extractor.Validator
	Webhook       Webhook
	Tg            Telegram
}

type Storage struct {
	Driver   string
	Path     string // Path is the sqlite database file.
	RedisURL string
}

type Fetch struct {
	Mode    string // Mode is resty or colly.
	Timeout time.Duration
}

type Webhook struct {
	URL     string
	Timeout time.Duration
}

type Telegram struct {
	Token   string        // Token is an unique telegram bot token. Empty disables the bot.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
// A YAML file named by GF_CONFIG is read first; environment variables override it.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load is MustLoad without the panic.
func Load() (*Config, error) {
	v := viper.New()

	// Automatically binds environment variables to config keys
	v.SetEnvPrefix("GF")
	v.AutomaticEnv()

	// optional args
	v.SetDefault("ENV", "production")
	v.SetDefault("DEST_URL", "https://harga-emas.org")
	v.SetDefault("SOURCE_ID", "harga-emas.org")
	v.SetDefault("STORAGE_DRIVER", DriverSQLite)
	v.SetDefault("STORAGE_PATH", "./storage/goldflow.db")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("FETCH_MODE", "resty")
	v.SetDefault("FETCH_TIMEOUT", "30s")
	v.SetDefault("BAND_MIN", extractor.DefaultPerUnitMin)
	v.SetDefault("BAND_MAX", extractor.DefaultPerUnitMax)
	v.SetDefault("LOOSE_BAND_MIN", extractor.DefaultLooseMin)
	v.SetDefault("LOOSE_BAND_MAX", extractor.DefaultLooseMax)
	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("TELEGRAM_TIMEOUT", "15s")
	v.SetDefault("CHECK_INTERVAL", "30m")
	v.SetDefault("HTTP_ADDR", "")

	if file := v.GetString("CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Env:           v.GetString("ENV"),
		URL:           v.GetString("DEST_URL"),
		SourceID:      v.GetString("SOURCE_ID"),
		CheckInterval: v.GetDuration("CHECK_INTERVAL"),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		Storage: Storage{
			Driver:   v.GetString("STORAGE_DRIVER"),
			Path:     v.GetString("STORAGE_PATH"),
			RedisURL: v.GetString("REDIS_URL"),
		},
		Fetch: Fetch{
			Mode:    v.GetString("FETCH_MODE"),
			Timeout: v.GetDuration("FETCH_TIMEOUT"),
		},
		Validator: extractor.Validator{
			PerUnit: extractor.Band{Min: v.GetFloat64("BAND_MIN"), Max: v.GetFloat64("BAND_MAX")},
			Loose:   extractor.Band{Min: v.GetFloat64("LOOSE_BAND_MIN"), Max: v.GetFloat64("LOOSE_BAND_MAX")},
		},
		Webhook: Webhook{
			URL:     v.GetString("WEBHOOK_URL"),
			Timeout: v.GetDuration("WEBHOOK_TIMEOUT"),
		},
		Tg: Telegram{
			Token:   v.GetString("TELEGRAM_TOKEN"),
			Timeout: v.GetDuration("TELEGRAM_TIMEOUT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	for name, b := range map[string]extractor.Band{"BAND": c.Validator.PerUnit, "LOOSE_BAND": c.Validator.Loose} {
		if b.Min <= 0 || b.Min >= b.Max {
			return fmt.Errorf("%w: GF_%s_MIN=%v GF_%s_MAX=%v", ErrInvalidBand, name, b.Min, name, b.Max)
		}
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}

	return nil
}
