package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskforge/app"
	"taskforge/config"
	"taskforge/model"
	"taskforge/store"
)

// session is everything a command needs: resolved config, a logger and the service.
type session struct {
	cfg    config.Config
	svc    *app.Service
	logger *log.Logger
	status string

	closeLog func() error
}

func (s *session) Close() error {
	if s.closeLog == nil {
		return nil
	}
	return s.closeLog()
}

// openSession resolves config from file, environment and flags, in that order.
func openSession(cmd *cobra.Command) (*session, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("config loaded", "path", path, "seed", cfg.Seed, "samples", cfg.Samples, "sort", cfg.Sort, "locale", cfg.Locale)

	state, status, err := initialState(cfg)
	if err != nil {
		logger.Error("load initial state", "err", err)
		_ = closeLog()
		return nil, err
	}

	svc := app.NewService(state,
		app.WithCategories(cfg.Categories),
		app.WithLocale(cfg.LocaleTag()),
		app.WithLogger(logger),
	)
	return &session{
		cfg:      cfg,
		svc:      svc,
		logger:   logger,
		status:   status,
		closeLog: closeLog,
	}, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = strings.TrimSpace(seedPath)
	}
	if flags.Changed("no-samples") {
		cfg.Samples = !noSamples
	}
	if flags.Changed("log-file") {
		cfg.Log.File = strings.TrimSpace(logFile)
	}
	if flags.Changed("log-level") {
		level := strings.ToLower(strings.TrimSpace(logLevel))
		if _, err := log.ParseLevel(level); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = level
	}
	return nil
}

// newLogger never writes to the terminal; without a log file everything is discarded.
func newLogger(cfg config.Config) (*log.Logger, func() error, error) {
	if cfg.Log.File == "" {
		return log.New(io.Discard), func() error { return nil }, nil
	}

	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           cfg.LogLevel(),
		Prefix:          "taskforge",
		ReportTimestamp: true,
	})
	return logger, f.Close, nil
}

// initialState picks the seed file, then the samples, then an empty list.
func initialState(cfg config.Config) (model.AppState, string, error) {
	if cfg.Seed != "" {
		state, err := store.Load(cfg.Seed)
		if err != nil {
			if store.IsCorrupt(err) {
				return model.AppState{}, "", fmt.Errorf("seed file is corrupt: %w", err)
			}
			return model.AppState{}, "", err
		}
		n := len(state.Active) + len(state.Completed) + len(state.Deleted)
		return state, fmt.Sprintf("Loaded %d tasks from %s", n, filepath.Base(cfg.Seed)), nil
	}
	if cfg.Samples {
		return model.SampleState(), "Sample tasks loaded", nil
	}
	return model.NewState(), "", nil
}
