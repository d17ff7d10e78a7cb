// Package mcpdemo exposes the e-commerce analytics service as an embeddable
// component: a host program can construct the store, analytics service, and
// tool layer with one call and either serve them over MCP stdio or invoke
// tools in-process.
package mcpdemo

import (
	"encoding/json"
	"log/slog"

	"github.com/supertime1/MCP-demo/internal/analytics"
	"github.com/supertime1/MCP-demo/internal/charts"
	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/router"
	"github.com/supertime1/MCP-demo/internal/server"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// Config represents the configuration for the analytics service.
type Config = config.Config

// Server bundles the analytics components behind one lifecycle.
type Server struct {
	config     *config.Config
	store      clickstore.ClickStore
	analytics  *analytics.Service
	renderer   *charts.Renderer
	toolServer *server.MCPAnalyticsServer
	router     *router.Router
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new analytics Server with the given options.
// If opts.Config is provided, it is used directly. Otherwise, if
// opts.ConfigPath is provided, configuration is loaded from that path.
// If neither is provided, DefaultConfig() is used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		cfg = DefaultConfig()
	}

	store, svc, renderer, err := CreateComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing analytics tool server component")
	toolServer := server.NewAnalyticsServer(store, svc, renderer, cfg)
	if err := toolServer.Initialize(); err != nil {
		logger.Error("Failed to initialize analytics tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize analytics tool server component")
	}

	logger.Info("Analytics server successfully initialized")
	return &Server{
		config:     cfg,
		store:      store,
		analytics:  svc,
		renderer:   renderer,
		toolServer: toolServer,
		router:     router.New(),
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the analytics service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// SaveConfig renders the configuration as the JSON content of a config file.
func SaveConfig(cfg *Config) ([]byte, error) {
	content, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to marshal configuration")
	}
	return content, nil
}

// Start serves the tool layer over MCP stdio, blocking until the transport
// terminates.
func (s *Server) Start() error {
	s.logger.Info("Starting analytics service")
	return s.toolServer.Start()
}

// Stop stops the service and closes the store.
func (s *Server) Stop() error {
	s.logger.Info("Stopping analytics service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("Analytics service stopped")
	return nil
}

// Ask routes a natural-language question to the matching tool and invokes it
// in-process, returning the tool result alongside the routing decision.
func (s *Server) Ask(input string) (*tools.Result, router.Decision, error) {
	decision := s.router.Route(input)
	s.logger.Debug("Routed question", "tool", decision.Tool, "rule", decision.Rule)

	result, err := s.toolServer.Invoke(decision.Tool, decision.Args)
	if err != nil {
		s.logger.Error("Tool invocation failed", "tool", decision.Tool, "error", err)
		return nil, decision, err
	}
	return result, decision, nil
}

// Invoke calls a named tool directly with already-structured arguments.
func (s *Server) Invoke(tool string, args map[string]interface{}) (*tools.Result, error) {
	return s.toolServer.Invoke(tool, args)
}

// GetStore returns the clickstream store instance used by the server.
func (s *Server) GetStore() clickstore.ClickStore {
	return s.store
}

// GetAnalytics returns the analytics service instance used by the server.
func (s *Server) GetAnalytics() *analytics.Service {
	return s.analytics
}

// GetToolServer returns the underlying tool server, which satisfies the
// chat client's ToolCaller interface.
func (s *Server) GetToolServer() *server.MCPAnalyticsServer {
	return s.toolServer
}

// CreateComponents creates and initializes the store, analytics service, and
// chart renderer without creating a server instance. This is useful for
// programs that need direct access to the components.
func CreateComponents(cfg *Config, logger *slog.Logger) (clickstore.ClickStore, *analytics.Service, *charts.Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Initializing SQLite clickstream store", "path", cfg.Store.SQLitePath)
	store := clickstore.NewSQLiteClickStore()
	if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
		logger.Error("Failed to initialize SQLite clickstream store", "path", cfg.Store.SQLitePath, "error", err)
		return nil, nil, nil, err
	}

	svc := analytics.NewService(store, cfg)
	renderer := charts.NewRenderer(cfg)

	logger.Info("Components successfully initialized")
	return store, svc, renderer, nil
}
