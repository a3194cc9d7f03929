package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/siteloom/internal/calendar"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ".siteloom", cfg.StateDir)
	assert.Equal(t, calendar.MonFri, cfg.Calendar.ScheduleType)
	assert.True(t, cfg.Calendar.ObserveNationalHolidays)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "siteloom.yaml")
	content := `
log:
  level: debug
calendar:
  schedule_type: mon_sat
  observe_regional_holidays: true
  city: Salvador
claude:
  model: claude-sonnet-4-5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, calendar.MonSat, cfg.Calendar.ScheduleType)
	assert.True(t, cfg.Calendar.ObserveRegionalHolidays)
	assert.Equal(t, "Salvador", cfg.Calendar.City)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Claude.Model)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITELOOM_LOG_LEVEL", "error")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_RejectsUnknownScheduleType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar:\n  schedule_type: tue_thu\n"), 0644))

	_, err := Load(viper.New(), path)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
