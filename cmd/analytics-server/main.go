package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/supertime1/MCP-demo/internal/analytics"
	"github.com/supertime1/MCP-demo/internal/charts"
	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/server"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	flag.Parse()

	// Load configuration before anything else; logging depends on it.
	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("E-commerce Analytics MCP Server - Starting...")

	// Initialize the clickstream store
	store := clickstore.NewSQLiteClickStore()
	if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
		errortypes.LogError(logger, err)
		slog.Error("Failed to initialize SQLite clickstream store")
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("SQLite clickstream store initialized", "path", cfg.Store.SQLitePath)

	// Initialize the analytics service and chart renderer
	svc := analytics.NewService(store, cfg)
	renderer := charts.NewRenderer(cfg)

	// Initialize the MCP server
	srv := server.NewAnalyticsServer(store, svc, renderer, cfg)
	if err := srv.Initialize(); err != nil {
		errortypes.LogError(logger, err)
		slog.Error("Failed to initialize MCP server")
		os.Exit(1)
	}

	// Handle graceful shutdown
	setupSignalHandler(store)

	// Start the MCP server (this will block until the server is terminated)
	slog.Info("Starting MCP server...")
	if err := srv.Start(); err != nil {
		errortypes.LogError(logger, err)
		slog.Error("MCP server failed")
		os.Exit(1)
	}
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(store clickstore.ClickStore) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		slog.Info("Received shutdown signal, terminating gracefully...")

		if err := store.Close(); err != nil {
			errortypes.LogError(nil, err)
		} else {
			slog.Info("Database closed successfully")
		}

		slog.Info("Shutdown complete")
		os.Exit(0)
	}()
}
