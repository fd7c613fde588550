package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadwiabd/insight-edms/internal/archive"
	"github.com/nadwiabd/insight-edms/internal/bootstrap"
	"github.com/nadwiabd/insight-edms/internal/config"
	"github.com/nadwiabd/insight-edms/internal/navigation"
	"github.com/nadwiabd/insight-edms/internal/server"
	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/internal/store"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

type edmsServer struct {
	cfg        *config.Config
	store      *store.Store
	archive    *archive.Archive
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var ErrOpenArchive = errors.New("failed to open archive")

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the store and serve the web interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s := &edmsServer{
				cfg:  cfg,
				quit: make(chan os.Signal, 1),
			}
			return s.run(cmd.Context())
		},
	}
}

func (s *edmsServer) run(ctx context.Context) error {
	setupLogging(os.Stdout, s.cfg)
	slog.Info("Configuration loaded",
		slog.String("redis_addr", s.cfg.Store.Addr),
		slog.Int("redis_db", s.cfg.Store.DB),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))

	if err := s.initializeStore(ctx); err != nil {
		return err
	}
	defer func() { _ = s.store.Close() }()

	if err := s.initializeArchive(ctx); err != nil {
		return err
	}
	defer func() { _ = s.archive.Close() }()

	boot := bootstrap.New(s.store, s.cfg, bootstrap.WithAnnouncer(announceAdmin))
	boot.Register()
	applied, err := s.store.Migrate(ctx)
	if err != nil {
		return err
	}
	slog.Info("Migrations complete", slog.Any("applied", applied))

	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *edmsServer) initializeStore(ctx context.Context) error {
	st, err := openStore(ctx, s.cfg)
	if err != nil {
		return err
	}
	s.store = st
	return nil
}

func (s *edmsServer) initializeArchive(ctx context.Context) error {
	tmp, err := bootstrap.TemporaryDirectory(s.cfg.TemporaryDirectory)
	if err != nil {
		return err
	}
	s.cfg.TemporaryDirectory = tmp

	bucketURL := s.cfg.ArchiveBucketURL
	if bucketURL == "" {
		bucketURL, err = archive.LocalBucketURL(tmp)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOpenArchive, err)
		}
	}
	ar, err := archive.Open(ctx, bucketURL, s.cfg.ArchivePrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}
	s.archive = ar
	slog.Info("Archive opened",
		slog.String("bucket", bucketURL),
		slog.String("prefix", s.cfg.ArchivePrefix))
	return nil
}

func (s *edmsServer) startServer() {
	nav := navigation.NewRegistry()
	server.RegisterLinks(nav)
	setup.RegisterLinks(nav)

	svc := setup.NewService(s.store, s.archive)
	s.apiServer = server.NewServer(s.store, svc, nav, s.cfg)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: s.apiServer.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			s.quit <- syscall.SIGTERM
		}
	}()
}

func (s *edmsServer) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}
	s.apiServer.CloseWebSockets()

	slog.Info("Server exited")
}
