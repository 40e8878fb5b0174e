package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"papersum/internal/config"
	"papersum/internal/extractor"
	"papersum/internal/history"
	"papersum/internal/scheduler"
	"papersum/internal/server"
	"papersum/internal/summarizer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	template, err := config.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load prompt template",
			"error", err,
			"templatePath", cfg.TemplatePath)

		return
	}
	log.InfoContext(ctx, "Prompt template is loaded",
		"templatePath", cfg.TemplatePath)

	if strings.TrimSpace(cfg.GroqAPIKey) == "" {
		log.WarnContext(ctx, "GROQ_API_KEY is missing so summarization will fail with an authorization error",
			"envVar", "GROQ_API_KEY")
	}

	store, err := history.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = store.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	ext := extractor.New(cfg.FetchTimeout, log)
	sum := summarizer.NewGroqSummarizer(cfg, template, log)
	srv := server.New(cfg, ext, sum, store, log)

	sched := scheduler.New(ctx, store, cfg.HistoryRetention, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.DailyPruneSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.DailyPruneSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(cfg.Addr)
	}()
	log.InfoContext(ctx, "Server is started",
		"addr", cfg.Addr,
		"model", cfg.Model)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server stopped unexpectedly",
				"error", err,
				"addr", cfg.Addr)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(ctx, "Failed to shut down server",
			"error", err,
			"addr", cfg.Addr)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}
