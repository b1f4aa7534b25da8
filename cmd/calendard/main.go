// Command calendard runs the calendar-event HTTP backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/Yongqing112/calendar/pkg/calendar"
	"github.com/Yongqing112/calendar/pkg/calendar/api"
	"github.com/Yongqing112/calendar/pkg/calendar/config"
	"github.com/Yongqing112/calendar/pkg/calendar/importer"
	"github.com/Yongqing112/calendar/pkg/calendar/observability"
	"github.com/Yongqing112/calendar/pkg/calendar/store"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "calendard",
		Usage: "Calendar-event management backend.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to a YAML or JSON config file.",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address (overrides config).",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path (overrides config).",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn, error.",
			},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	logger := setupLogger(c.String("log-level"))

	cfg := config.New(nil)
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.FromFile(path); err != nil {
			return err
		}
	}

	listenAddr := cfg.String("listen_addr", ":8080")
	if v := c.String("listen"); v != "" {
		listenAddr = v
	}
	dbPath := cfg.String("database_path", "calendar.db")
	if v := c.String("db"); v != "" {
		dbPath = v
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer st.Close()

	metrics := observability.NewMetricsRecorder()
	spans := observability.NewSpanManager()

	service := calendar.NewService(st, logger, metrics)

	pipeline := importer.NewPipeline(st,
		importer.WithChunkSize(cfg.Int("import_chunk_size", importer.DefaultChunkSize)),
		importer.WithLogger(logger),
		importer.WithMetrics(metrics),
		importer.WithSpans(spans),
	)
	runner := importer.NewRunner(pipeline,
		importer.WithQueueSize(cfg.Int("import_queue_size", importer.DefaultQueueSize)),
		importer.WithRunnerLogger(logger),
		importer.WithRunnerMetrics(metrics),
		importer.WithRunnerSpans(spans),
	)
	defer runner.Close()

	// Finished import jobs and their temp files are swept periodically.
	retention := cfg.Duration("import_retention", 24*time.Hour)
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@hourly", func() {
		if n := runner.Prune(retention); n > 0 {
			logger.Info("pruned import jobs", slog.Int("removed", n))
		}
	}); err != nil {
		return fmt.Errorf("schedule job pruning: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	allowedUsers := cfg.StringSlice("allowed_users", nil)
	server := api.NewServer(service, runner, allowedUsers, logger)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", listenAddr), slog.String("db", dbPath))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
