package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, dir string) *Config {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg := loadFrom(t, t.TempDir())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Extractor.MaxAttempts)
	assert.Equal(t, 4, cfg.Extractor.MaxConcurrency)
	assert.InDelta(t, 20.0, cfg.Extractor.RatePerMinute, 1e-9)
	assert.InDelta(t, 0.5, cfg.Segmenter.ContinuationThreshold, 1e-9)
	assert.InDelta(t, 0.1, cfg.Segmenter.TieEpsilon, 1e-9)
	assert.Equal(t, 365, cfg.Timeline.GapThresholdDays)
	assert.InDelta(t, 1.0, cfg.Report.ConfidenceWeight+cfg.Report.IssueWeight, 1e-9)
}

func TestLoad_ConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
log:
  level: debug
segmenter:
  continuation_threshold: 0.7
cases:
  requirements:
    o1: [I797, FOREIGN_PASSPORT]
    default: [I797]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg := loadFrom(t, dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.InDelta(t, 0.7, cfg.Segmenter.ContinuationThreshold, 1e-9)
	assert.Equal(t, []string{"I797", "FOREIGN_PASSPORT"}, cfg.Cases.RequiredTypes("o1"))
}

func TestRequiredTypes_FallsBackToDefault(t *testing.T) {
	cases := CasesConfig{Requirements: DefaultCaseRequirements()}

	assert.Equal(t, DefaultCaseRequirements()["h1b"], cases.RequiredTypes("H1B"))
	assert.Equal(t, DefaultCaseRequirements()["default"], cases.RequiredTypes("unheard-of"))
	assert.Equal(t, DefaultCaseRequirements()["default"], cases.RequiredTypes(""))
}
