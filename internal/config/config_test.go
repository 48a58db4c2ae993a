package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, 200, cfg.Fetch.LookbackBars)
	require.Equal(t, 15, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, 8, cfg.Screen.Concurrency)
	require.Equal(t, 200, cfg.Screen.ProgressEvery)
	require.True(t, cfg.Universe.ExcludeSpecial)
	require.True(t, cfg.Universe.MainBoardsOnly)
	require.True(t, cfg.Universe.RequireBullish)
	require.Equal(t, "0 30 15 * * 1-5", cfg.Schedule.DailyCron)
	require.Equal(t, "data/stock_screener.db", cfg.Database.SQLitePath)
	require.Equal(t, "info", cfg.Log.Level)
	require.NotNil(t, cfg.Patterns)
	require.NoError(t, cfg.Patterns.Validate())
}

func TestLoadFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
universe:
  require_bullish: false
  max_instruments: 50
screen:
  concurrency: 2
patterns:
  reversal:
    lookback_bars: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SCREEN_CONCURRENCY", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.False(t, cfg.Universe.RequireBullish)
	require.True(t, cfg.Universe.ExcludeSpecial) // untouched default
	require.Equal(t, 50, cfg.Universe.MaxInstruments)
	require.Equal(t, 4, cfg.Screen.Concurrency) // env wins over file
	require.Equal(t, "debug", cfg.Log.Level)

	// patterns merge field by field over the defaults
	require.Equal(t, 7, cfg.Patterns.Reversal.LookbackBars)
	require.Equal(t, 0.03, cfg.Patterns.Reversal.SmallBodyRatio)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Fetch.LookbackBars = 10
	require.Error(t, cfg.Validate())

	cfg.Fetch.LookbackBars = 200
	cfg.Screen.Concurrency = 0
	require.Error(t, cfg.Validate())

	cfg.Screen.Concurrency = 8
	cfg.Patterns.ShrinkBreakout.VolumeMALong = 1
	require.Error(t, cfg.Validate())
}
