package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/msticdev/msmonitor/internal/api"
	"github.com/msticdev/msmonitor/internal/archive"
	"github.com/msticdev/msmonitor/internal/bus"
	"github.com/msticdev/msmonitor/internal/kusto"
	"github.com/msticdev/msmonitor/internal/metrics"
	"github.com/msticdev/msmonitor/internal/predict"
	"github.com/msticdev/msmonitor/internal/refresh"
	"github.com/msticdev/msmonitor/internal/store"
	"github.com/msticdev/msmonitor/internal/synth"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting MS Monitor backend")

	httpAddr := getEnv("MONITOR_HTTP_ADDR", ":8080")
	sourcesFile := getEnv("MONITOR_SOURCES_FILE", "configs/sources.yaml")
	hotReload := getEnv("MONITOR_HOT_RELOAD", "false") == "true"
	catalogRefreshSec := getEnvInt("MONITOR_REFRESH_SEC", 30)
	predictRefreshSec := getEnvInt("MONITOR_PREDICT_REFRESH_SEC", 300)
	queryCacheSize := getEnvInt("MONITOR_QUERY_CACHE_SIZE", 128)
	natsURL := getEnv("MONITOR_NATS_URL", "")
	pgHost := getEnv("MONITOR_PG_HOST", "")

	logger.Info("Configuration loaded",
		"http_addr", httpAddr,
		"sources_file", sourcesFile,
		"hot_reload", hotReload,
		"refresh_sec", catalogRefreshSec,
		"predict_refresh_sec", predictRefreshSec,
		"nats_enabled", natsURL != "",
		"archive_enabled", pgHost != "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prometheusMetrics := metrics.NewMetrics()

	loader := synth.NewLoader(sourcesFile, hotReload, logger)
	if _, err := loader.Load(); err != nil {
		logger.Error("Failed to load sources table", "error", err)
		os.Exit(1)
	}
	if err := loader.WatchForChanges(); err != nil {
		logger.Error("Failed to start sources watcher", "error", err)
		os.Exit(1)
	}
	defer loader.Stop()

	var publisher refresh.Publisher
	if natsURL != "" {
		p, err := bus.NewPublisher(natsURL, prometheusMetrics, logger)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	}

	var alertArchive api.Archiver
	if pgHost != "" {
		a, err := archive.NewPostgresArchive(
			pgHost,
			getEnv("MONITOR_PG_PORT", "5432"),
			getEnv("MONITOR_PG_USER", "monitor"),
			getEnv("MONITOR_PG_PASSWORD", ""),
			getEnv("MONITOR_PG_DBNAME", "monitor"),
			logger,
		)
		if err != nil {
			logger.Error("Failed to initialize alert archive", "error", err)
			os.Exit(1)
		}
		defer a.Close()
		alertArchive = a
	}

	memoryStore := store.NewMemoryStore()

	scheduler := refresh.NewScheduler(
		loader,
		predict.NewGenerator(nil),
		memoryStore,
		prometheusMetrics,
		publisher,
		logger,
		time.Duration(catalogRefreshSec)*time.Second,
		time.Duration(predictRefreshSec)*time.Second,
	)
	go scheduler.Run(ctx)

	kustoClient, err := kusto.NewClient(kusto.NewClientContext(), queryCacheSize)
	if err != nil {
		logger.Error("Failed to create query client", "error", err)
		os.Exit(1)
	}

	httpAPI := api.NewHTTPAPI(memoryStore, scheduler, kustoClient, alertArchive, prometheusMetrics, logger)
	server := &http.Server{
		Addr:         httpAddr,
		Handler:      httpAPI.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", httpAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	cancel()

	logger.Info("MS Monitor backend stopped")
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
