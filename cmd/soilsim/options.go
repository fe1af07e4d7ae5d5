package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/soilsim/internal/config"
)

// flagChanged reports whether the named flag was set on the command line.
type flagChanged func(name string) bool

// resolveConfig builds the run configuration: defaults, then the preset, then the
// config file, then any flag set on the command line.
func resolveConfig(changed flagChanged) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if changed("scheme") {
		cfg.Scheme = scheme
	}
	if changed("precision") {
		cfg.Precision = precision
	}
	if changed("max-iters") {
		cfg.MaxIters = maxIters
	}
	if changed("backend") {
		cfg.Backend = backend
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("days") {
		cfg.Days = days
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("initial") {
		cfg.Initial = config.Values(append([]float64(nil), initial...))
	}
	if changed("forcing") {
		cfg.Forcing.Source = "csv"
		cfg.Forcing.Path = forcingPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runLabel names a run for the store.
func runLabel() string {
	switch {
	case runName != "":
		return runName
	case preset != "":
		return preset
	}
	return "run"
}

func newLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
