package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/ingest"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	csvPath := flag.String("csv", "", "path to the UCI clickstream CSV (semicolon-delimited); omit to generate sample data")
	seed := flag.Int64("seed", 1, "random seed for generated sample data")
	flag.Parse()

	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("E-commerce Analytics Database Setup - Starting...",
		"db", cfg.Store.SQLitePath, "csv", *csvPath)

	importer, err := ingest.NewImporter(cfg.Store.SQLitePath)
	if err != nil {
		errortypes.LogError(logger, err)
		os.Exit(1)
	}
	defer importer.Close()

	ctx := context.Background()
	if err := importer.Run(ctx, *csvPath, *seed); err != nil {
		errortypes.LogError(logger, err)
		slog.Error("Database setup failed")
		os.Exit(1)
	}

	counts, err := importer.Verify(ctx)
	if err != nil {
		errortypes.LogError(logger, err)
		os.Exit(1)
	}
	for _, table := range []string{"clickstream", "user_sessions", "product_analytics", "country_analytics"} {
		fmt.Printf("%-20s %d records\n", table, counts[table])
	}

	slog.Info("Database setup completed successfully", "path", cfg.Store.SQLitePath)
}
