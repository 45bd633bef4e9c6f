// Entry point for the boardpulse BI service: board snapshot cache, analytics
// engine and Gemini-backed chat over two work-tracking boards.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meridianbi/boardpulse/agent"
	"github.com/meridianbi/boardpulse/boardapi"
	"github.com/meridianbi/boardpulse/config"
	"github.com/meridianbi/boardpulse/dbopen"
	"github.com/meridianbi/boardpulse/observability"
	"github.com/meridianbi/boardpulse/server"
	"github.com/meridianbi/boardpulse/snapshot"
	_ "modernc.org/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional, env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Telemetry store.
	eventsDB, err := dbopen.Open(cfg.EventsDB, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("events db", "error", err)
		os.Exit(1)
	}
	defer eventsDB.Close()
	if err := observability.Init(eventsDB); err != nil {
		slog.Error("events schema", "error", err)
		os.Exit(1)
	}
	recorder := observability.NewRecorder(eventsDB, 256)
	defer recorder.Close()
	metrics := observability.NewMetrics(eventsDB, 100, 5*time.Second)
	defer metrics.Close()

	// Board client and snapshot cache.
	client := boardapi.New(cfg.Boards.APIURL, cfg.Boards.APIToken, boardapi.Config{}, logger)
	snapCfg := snapshot.Config{
		Freshness: cfg.Cache.Freshness,
		OnRefresh: func(o snapshot.RefreshOutcome) {
			event := observability.Event{
				EventType:    observability.EventBoardRefresh,
				Board:        string(o.Board),
				Duration:     o.Duration,
				Records:      o.Records,
				QualityFlags: o.QualityFlags,
				DroppedRows:  o.DroppedRows,
				Success:      o.Err == nil,
			}
			if o.Err != nil {
				event.ErrorMessage = o.Err.Error()
			}
			recorder.Record(event)
		},
	}
	cache := snapshot.New(client, cfg.Boards.DealsID, cfg.Boards.WorkID, snapCfg, logger)

	// Gemini agent.
	gemini, err := agent.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		slog.Error("gemini client", "error", err)
		os.Exit(1)
	}
	ag := agent.New(gemini, logger)

	// HTTP server.
	api := server.New(cache, ag, logger, server.WithTelemetry(recorder, metrics))
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}
