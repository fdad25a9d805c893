package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	t.Run("JSON output carries the app name", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "info", Format: "json"}, &buf)

		logger.Info().Str("dish_id", "d1").Msg("sale recorded")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "resto-ledger", entry["app"])
		assert.Equal(t, "d1", entry["dish_id"])
		assert.Equal(t, "sale recorded", entry["message"])
	})

	t.Run("Level filters lower events", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "warn", Format: "json"}, &buf)

		logger.Info().Msg("hidden")
		assert.Zero(t, buf.Len())

		logger.Warn().Msg("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(LoggerConfig{Level: "loud", Format: "console"}, &buf)

		logger.Debug().Msg("hidden")
		logger.Info().Msg("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}
