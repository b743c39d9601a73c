package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/polyglot-ai/mocktransport/internal/analyze"
	"github.com/polyglot-ai/mocktransport/internal/config"
	"github.com/polyglot-ai/mocktransport/internal/manager"
	"github.com/polyglot-ai/mocktransport/internal/server"
	"github.com/polyglot-ai/mocktransport/internal/storage/sqlite"
	"github.com/polyglot-ai/mocktransport/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize OpenTelemetry
	shutdownTracer, err := telemetry.InitTracer("mockd", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	initial, err := cfg.Scenario.Build()
	if err != nil {
		log.Fatalf("Failed to build scenario: %v", err)
	}

	analyzer := analyze.New(
		analyze.WithInternalHosts(cfg.Internal.Hosts...),
		analyze.WithInternalSuffixes(cfg.Internal.Suffixes...),
	)

	opts := []manager.Option{
		manager.WithAnalyzer(analyzer),
		manager.WithLogger(logger),
	}
	if cfg.Storage.Path != "" {
		store, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open traffic log store: %v", err)
		}
		defer store.Close()
		opts = append(opts, manager.WithSink(store))
		logger.Info("traffic audit log enabled", slog.String("path", cfg.Storage.Path))
	}

	m := manager.New(initial, opts...)

	// Hot-reload the scenario preset when the config file changes.
	if _, statErr := os.Stat(*configPath); statErr == nil {
		watchErr := config.Watch(*configPath,
			func(next *config.Config) {
				sc, err := next.Scenario.Build()
				if err != nil {
					logger.Error("config reload: bad scenario", slog.String("error", err.Error()))
					return
				}
				m.SetScenario(sc)
				logger.Info("scenario reloaded", slog.String("scenario", sc.Name()))
			},
			func(err error) {
				logger.Error("config watch error", slog.String("error", err.Error()))
			},
		)
		if watchErr != nil {
			logger.Warn("config hot-reload unavailable", slog.String("error", watchErr.Error()))
		}
	}

	srv := server.New(cfg.Server.Port, logger)
	server.NewHandler(m, analyzer, logger).Mount(srv.Router)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	logger.Info("mockd started",
		slog.Int("port", cfg.Server.Port),
		slog.String("scenario", m.Scenario().Name()),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received, stopping server...")
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("mockd shutdown complete")
}
