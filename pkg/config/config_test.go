package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "localhost:6379", cfg.ValkeyAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Zero(t, cfg.AssessConcurrency)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VIGILANTE_MODEL", "gpt-4o")
	t.Setenv("SHODAN_API_KEY", "shodan-key")
	t.Setenv("VIGILANTE_STORE", StoreValkey)
	t.Setenv("VALKEY_ADDR", "valkey.internal:6379")
	t.Setenv("VIGILANTE_CONCURRENCY", "4")
	t.Setenv("VIGILANTE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.CompletionAPIKey)
	assert.Equal(t, "gpt-4o", cfg.CompletionModel)
	assert.Equal(t, "shodan-key", cfg.ShodanAPIKey)
	assert.Empty(t, cfg.VirusTotalAPIKey, "unset providers stay unconfigured")
	assert.Equal(t, StoreValkey, cfg.StoreBackend)
	assert.Equal(t, "valkey.internal:6379", cfg.ValkeyAddr)
	assert.Equal(t, 4, cfg.AssessConcurrency)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad concurrency", func(t *testing.T) {
		t.Setenv("VIGILANTE_CONCURRENCY", "zero")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("negative concurrency", func(t *testing.T) {
		t.Setenv("VIGILANTE_CONCURRENCY", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("VIGILANTE_LOG_LEVEL", "loud")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("VIGILANTE_STORE", "postgres")
		_, err := Load()
		assert.Error(t, err)
	})
}
