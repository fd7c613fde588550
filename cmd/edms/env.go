package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	edms "github.com/nadwiabd/insight-edms"
	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

func loadConfig() (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(w io.Writer, cfg *config.Config) {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewWithWriter(
		w, edms.Name, os.Getenv("ENV"), edms.Version, level,
	)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Insight EDMS starting",
		slog.String("log_level", cfg.LogLevel))
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return store.Open(ctx, cfg.Store, store.WithSessionTTL(cfg.SessionTTL))
}

// withStore runs fn against a store opened from the environment. Logs go
// to logs so command output stays readable
func withStore(
	ctx context.Context, logs io.Writer,
	fn func(*config.Config, *store.Store) error,
) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(logs, cfg)
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(cfg, st)
}
