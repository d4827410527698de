package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Contains(t, c.DBPath, "com.copilot.production")
	assert.Equal(t, "127.0.0.1:8475", c.ListenAddr)
	assert.Equal(t, DecoderDocument, c.Decoder)
	assert.Equal(t, 5*time.Minute, c.CopyTTL)
	assert.Equal(t, time.Minute, c.CacheTTL)

	level, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COPILOT_DB_PATH", "/tmp/store/main")
	t.Setenv("COPILOT_DECODER", "rawscan")
	t.Setenv("COPILOT_COPY_TTL", "30s")
	t.Setenv("COPILOT_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/store/main", c.DBPath)
	assert.Equal(t, DecoderRawScan, c.Decoder)
	assert.Equal(t, 30*time.Second, c.CopyTTL)

	level, err := c.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("decoder", func(t *testing.T) {
		t.Setenv("COPILOT_DECODER", "psychic")
		_, err := Load()
		assert.ErrorContains(t, err, "psychic")
	})
	t.Run("copy ttl", func(t *testing.T) {
		t.Setenv("COPILOT_COPY_TTL", "-1m")
		_, err := Load()
		assert.ErrorContains(t, err, "copy_ttl")
	})
	t.Run("log level", func(t *testing.T) {
		t.Setenv("COPILOT_LOG_LEVEL", "loud")
		_, err := Load()
		assert.ErrorContains(t, err, "loud")
	})
}
