package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel(" DEBUG ")
	require.True(t, ok)
	require.Equal(t, zerolog.DebugLevel, l)

	for _, name := range []string{"", "loud"} {
		l, ok = ParseLevel(name)
		require.False(t, ok, name)
		require.Equal(t, zerolog.InfoLevel, l)
	}
}

func TestSetup(t *testing.T) {
	t.Run("console output respects the level", func(t *testing.T) {
		restoreLogger(t)
		var buf bytes.Buffer

		closer, err := Setup("warn", &buf, "")
		require.NoError(t, err)
		defer closer()
		log.Info().Msg("hidden")
		log.Warn().Msg("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), "shown")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		restoreLogger(t)
		var buf bytes.Buffer

		_, err := Setup("verbose", &buf, "")
		require.NoError(t, err)

		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
		require.Contains(t, buf.String(), "unknown log level")
	})

	t.Run("copies to a log file", func(t *testing.T) {
		restoreLogger(t)
		path := filepath.Join(t.TempDir(), "territory.log")

		closer, err := Setup("info", &bytes.Buffer{}, path)
		require.NoError(t, err)
		log.Info().Int("seat", 3).Msg("game started")
		require.NoError(t, closer())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), "game started")
		require.Contains(t, string(data), "seat=3")
	})

	t.Run("unwritable log file", func(t *testing.T) {
		restoreLogger(t)
		_, err := Setup("info", &bytes.Buffer{}, filepath.Join(t.TempDir(), "missing", "x.log"))
		require.Error(t, err)
	})
}
