package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	mcpdemo "github.com/supertime1/MCP-demo"
	"github.com/supertime1/MCP-demo/internal/chat"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFilename, "path to the configuration file")
	historyPath := flag.String("history", "", "path to the chat history file (default: <chart dir>/history.json)")
	flag.Parse()

	cfg, err := config.LoadConfigWithPath(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("E-commerce Analytics Chat - Starting...")

	// The chat session drives the same tool layer the MCP server exposes,
	// in-process.
	svc, err := mcpdemo.NewServer(mcpdemo.ServerOptions{Config: cfg, Logger: logger})
	if err != nil {
		errortypes.LogError(logger, err)
		slog.Error("Failed to open the analytics database; run analytics-setup first",
			"path", cfg.Store.SQLitePath)
		os.Exit(1)
	}
	defer svc.Stop()

	hpath := *historyPath
	if hpath == "" {
		hpath = filepath.Join(cfg.Chart.OutputDir, "history.json")
	}
	history, err := chat.NewHistory(hpath)
	if err != nil {
		errortypes.LogError(logger, err)
		slog.Error("Failed to load chat history", "path", hpath)
		os.Exit(1)
	}

	session := chat.NewSession(svc.GetToolServer(), cfg, history, os.Stdin, os.Stdout)
	if err := session.Run(); err != nil {
		errortypes.LogError(logger, err)
		os.Exit(1)
	}
}
