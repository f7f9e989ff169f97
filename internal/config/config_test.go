package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Houeta/gold-flow/internal/config"
	"github.com/Houeta/gold-flow/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := config.MustLoad()

		assert.Equal(t, "production", cfg.Env)
		assert.Equal(t, "https://harga-emas.org", cfg.URL)
		assert.Equal(t, "harga-emas.org", cfg.SourceID)
		assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
		assert.Equal(t, "resty", cfg.Fetch.Mode)
		assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 30*time.Minute, cfg.CheckInterval)
		assert.Equal(t, 15*time.Second, cfg.Tg.Timeout)
		assert.Empty(t, cfg.Tg.Token)
		assert.Empty(t, cfg.Webhook.URL)
		assert.Empty(t, cfg.HTTPAddr)
		assert.Equal(t, extractor.DefaultValidator(), cfg.Validator)
	})

	t.Run("success", func(t *testing.T) {
		t.Setenv("GF_ENV", "local")
		t.Setenv("GF_TELEGRAM_TOKEN", "telegramToken")
		t.Setenv("GF_DEST_URL", "https://example.com")
		t.Setenv("GF_STORAGE_PATH", "some/path/to/db")
		t.Setenv("GF_STORAGE_DRIVER", "redis")
		t.Setenv("GF_REDIS_URL", "redis://cache:6379/1")
		t.Setenv("GF_FETCH_MODE", "colly")
		t.Setenv("GF_BAND_MIN", "1500000")
		t.Setenv("GF_BAND_MAX", "4000000")
		t.Setenv("GF_WEBHOOK_URL", "https://hooks.example.com/gold")
		t.Setenv("GF_CHECK_INTERVAL", "5m")
		t.Setenv("GF_HTTP_ADDR", ":8080")

		cfg := config.MustLoad()

		assert.Equal(t, "local", cfg.Env)
		assert.Equal(t, "telegramToken", cfg.Tg.Token)
		assert.Equal(t, "https://example.com", cfg.URL)
		assert.Equal(t, "some/path/to/db", cfg.Storage.Path)
		assert.Equal(t, config.DriverRedis, cfg.Storage.Driver)
		assert.Equal(t, "redis://cache:6379/1", cfg.Storage.RedisURL)
		assert.Equal(t, "colly", cfg.Fetch.Mode)
		assert.Equal(t, extractor.Band{Min: 1_500_000, Max: 4_000_000}, cfg.Validator.PerUnit)
		assert.Equal(t, "https://hooks.example.com/gold", cfg.Webhook.URL)
		assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
	})

	t.Run("config file with env override", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "goldflow.yaml")
		require.NoError(t, os.WriteFile(file, []byte("env: development\nsource_id: antam\nfetch_timeout: 1m\n"), 0o600))

		t.Setenv("GF_CONFIG", file)
		t.Setenv("GF_SOURCE_ID", "logammulia")

		cfg := config.MustLoad()

		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, "logammulia", cfg.SourceID)
		assert.Equal(t, time.Minute, cfg.Fetch.Timeout)
	})

	t.Run("error - missing config file", func(t *testing.T) {
		t.Setenv("GF_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := config.Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("error - inverted band", func(t *testing.T) {
		t.Setenv("GF_BAND_MIN", "5000000")
		t.Setenv("GF_BAND_MAX", "2000000")

		assert.Panics(t, func() { config.MustLoad() })

		_, err := config.Load()
		require.ErrorIs(t, err, config.ErrInvalidBand)
	})

	t.Run("error - non positive loose band", func(t *testing.T) {
		t.Setenv("GF_LOOSE_BAND_MIN", "0")

		_, err := config.Load()

		require.ErrorIs(t, err, config.ErrInvalidBand)
	})

	t.Run("error - unknown driver", func(t *testing.T) {
		t.Setenv("GF_STORAGE_DRIVER", "mongo")

		_, err := config.Load()

		require.ErrorIs(t, err, config.ErrUnknownDriver)
	})
}
