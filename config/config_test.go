package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()), "A missing config file is not an error")
	s, err := Get()
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "", s.Catalog)
	assert.Equal(t, 300, s.Game.MaxTurns)
	assert.Equal(t, time.Second, s.Bridge.ShortTimeout)
	assert.Equal(t, 5*time.Second, s.Bridge.LongTimeout)
	assert.Equal(t, 30*time.Second, s.Bridge.TimeoutBudget)
	assert.Equal(t, 500*time.Millisecond, s.Bridge.KillGrace)
	assert.Equal(t, 100, s.Bridge.StderrMaxLines)
	assert.Equal(t, 10, s.Bridge.QueueSize)
	assert.Equal(t, "results", s.Results.Dir)
	assert.Equal(t, "", s.Results.SQLite)
	assert.Equal(t, "", s.Replay.Dir)
	assert.Equal(t, "human", s.Roster.HumanToken)
	assert.Equal(t, "ai", s.Roster.AIToken)
	assert.False(t, s.Metrics.Enabled)
	assert.Equal(t, 30*time.Second, s.Metrics.Interval)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `
logLevel: debug
game:
  maxTurns: 50
bridge:
  longTimeout: 2s
results:
  sqlite: results.db
metrics:
  enabled: true
  file: metrics.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "territory.yaml"), []byte(cfg), 0644))

	require.NoError(t, Load(dir))
	s, err := Get()
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 50, s.Game.MaxTurns)
	assert.Equal(t, 2*time.Second, s.Bridge.LongTimeout)
	assert.Equal(t, time.Second, s.Bridge.ShortTimeout, "Unset keys keep their defaults")
	assert.Equal(t, "results.db", s.Results.SQLite)
	assert.True(t, s.Metrics.Enabled)
	assert.Equal(t, "metrics.json", s.Metrics.File)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TERRITORY_GAME_MAXTURNS", "7")
	t.Setenv("TERRITORY_ROSTER_AITOKEN", "bot")

	require.NoError(t, Load(t.TempDir()))
	s, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 7, s.Game.MaxTurns)
	assert.Equal(t, "bot", s.Roster.AIToken)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "territory.yaml"), []byte("game: [\n"), 0644))

	require.Error(t, Load(dir))
}
