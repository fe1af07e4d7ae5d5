package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/soilsim/internal/config"
)

func resetFlags(t *testing.T) {
	t.Helper()
	configFile, preset, runName, logLevel = "", "", "", "warn"
	scheme, precision, backend = config.DefaultScheme, config.DefaultPrecision, config.DefaultBackend
	maxIters, workers, days, seed = 100, 0, config.DefaultDays, 1
	initial, forcingPath = nil, ""
	t.Cleanup(func() { configFile, preset, runName = "", "", "" })
}

func changedSet(names ...string) flagChanged {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestResolveConfigDefaults(t *testing.T) {
	resetFlags(t)
	scheme = "rk2"

	cfg, err := resolveConfig(changedSet())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg, "unchanged flags must not override")
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	resetFlags(t)
	preset = "clay"
	scheme, days, seed = "rk2", 30, 9
	initial = []float64{120}

	cfg, err := resolveConfig(changedSet("scheme", "days", "seed", "initial"))
	require.NoError(t, err)
	assert.Equal(t, "rk2", cfg.Scheme)
	assert.Equal(t, 30, cfg.Days)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, config.Values{120}, cfg.Initial)
	assert.Equal(t, "precise", cfg.Precision, "preset value kept")
	assert.Equal(t, "clay", runLabel())
}

func TestResolveConfigFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheme: rk2\ndays: 10\nparams:\n  capacity: [50, 80]\n  ksat: [1, 2]\n  beta: [1, 2]\n"), 0644))
	configFile = path

	cfg, err := resolveConfig(changedSet())
	require.NoError(t, err)
	assert.Equal(t, "rk2", cfg.Scheme)
	assert.Equal(t, 10, cfg.Days)
	assert.Equal(t, config.Values{50, 80}, cfg.Params.Capacity)
}

func TestResolveConfigForcingFlag(t *testing.T) {
	resetFlags(t)
	forcingPath = "weather.csv"

	cfg, err := resolveConfig(changedSet("forcing"))
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Forcing.Source)
	assert.Equal(t, "weather.csv", cfg.Forcing.Path)
}

func TestResolveConfigErrors(t *testing.T) {
	resetFlags(t)
	preset = "nope"
	_, err := resolveConfig(changedSet())
	assert.ErrorContains(t, err, "unknown preset")

	resetFlags(t)
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = resolveConfig(changedSet())
	assert.ErrorContains(t, err, "failed to load config")

	resetFlags(t)
	precision = "sloppy"
	_, err = resolveConfig(changedSet("precision"))
	assert.Error(t, err)
}

func TestRunLabel(t *testing.T) {
	resetFlags(t)
	assert.Equal(t, "run", runLabel())
	preset = "loam"
	assert.Equal(t, "loam", runLabel())
	runName = "field-3"
	assert.Equal(t, "field-3", runLabel())
}

func TestNewLogger(t *testing.T) {
	resetFlags(t)
	var buf bytes.Buffer

	logLevel = "info"
	log, err := newLogger(&buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	log.WithField("day", 3).Info("run started")
	assert.Contains(t, buf.String(), "day=3")

	logLevel = "loud"
	_, err = newLogger(&buf)
	assert.Error(t, err)
}

func TestObjectives(t *testing.T) {
	assert.Equal(t, []string{"deficit", "dry_days", "saturated_days", "std_dev"}, objectiveNames())
}
