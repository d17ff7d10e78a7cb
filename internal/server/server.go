// Package server provides the MCP server implementation for the e-commerce
// analytics service: tool registration, parameter validation, and the
// conversion of every failure into a structured error response.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/localrivet/gomcp/server"

	"github.com/supertime1/MCP-demo/internal/analytics"
	"github.com/supertime1/MCP-demo/internal/charts"
	"github.com/supertime1/MCP-demo/internal/clickstore"
	"github.com/supertime1/MCP-demo/internal/config"
	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// Maximum rows get_sample_data will ever return.
const maxSampleRows = 50

// MCPAnalyticsServer exposes the analytics tool catalog and the schema
// resources over MCP. No state is carried between tool invocations.
type MCPAnalyticsServer struct {
	store     clickstore.ClickStore
	analytics *analytics.Service
	renderer  *charts.Renderer
	cfg       *config.Config
	mcpServer server.Server
}

// NewAnalyticsServer creates a new MCPAnalyticsServer instance.
func NewAnalyticsServer(store clickstore.ClickStore, svc *analytics.Service, renderer *charts.Renderer, cfg *config.Config) *MCPAnalyticsServer {
	return &MCPAnalyticsServer{
		store:     store,
		analytics: svc,
		renderer:  renderer,
		cfg:       cfg,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPAnalyticsServer) Initialize() error {
	slog.Info("Initializing MCP Analytics Server")

	if s.store == nil || s.analytics == nil || s.renderer == nil || s.cfg == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer("ecommerce-analytics")

	// Database tools
	srv = srv.Tool(tools.ToolQueryDatabase, "Execute a read-only SQL query against the e-commerce database",
		s.handleQueryDatabase)
	srv = srv.Tool(tools.ToolGetTableSchema, "Get column name/type/nullable information for a known table",
		s.handleGetTableSchema)
	srv = srv.Tool(tools.ToolGetSampleData, "Preview the first rows of a known table",
		s.handleGetSampleData)
	srv = srv.Tool(tools.ToolAnalyzeUserBehavior, "Run a pre-built behavior aggregation by dimension",
		s.handleAnalyzeUserBehavior)

	// Analytics tools
	srv = srv.Tool(tools.ToolUserSegmentation, "Bucket sessions into engagement tiers by click count",
		s.handleUserSegmentation)
	srv = srv.Tool(tools.ToolConversionFunnel, "Compute session counts and conversion rates per funnel step",
		s.handleConversionFunnel)
	srv = srv.Tool(tools.ToolGeographicAnalysis, "Per-country session and click totals",
		s.handleGeographicAnalysis)
	srv = srv.Tool(tools.ToolProductPerformance, "Top products ranked by views",
		s.handleProductPerformance)

	// Visualization tools
	srv = srv.Tool(tools.ToolCreateChart, "Render a bar, line, pie, or scatter chart from query or inline data",
		s.handleCreateChart)
	srv = srv.Tool(tools.ToolCreateHeatmap, "Pivot data into a 2D grid and render it as a heatmap",
		s.handleCreateHeatmap)
	srv = srv.Tool(tools.ToolCreateFunnelChart, "Render ordered funnel steps as a bar sequence",
		s.handleCreateFunnelChart)
	srv = srv.Tool(tools.ToolCreateTimeSeries, "Group values by day or month and render a time series",
		s.handleCreateTimeSeries)

	// Read-only resources
	srv = srv.Resource(tools.ResourceSchema, "Full schema of the e-commerce database",
		s.handleSchemaResource)
	srv = srv.Resource(tools.ResourceTables, "List of available tables",
		s.handleTablesResource)
	srv = srv.Resource(tools.ResourceTemplates, "Named query templates (name to SQL text)",
		s.handleTemplatesResource)

	s.mcpServer = srv
	slog.Info("MCP Analytics Server initialized successfully", "tool_count", 12, "resource_count", 3)
	return nil
}

// Start starts the MCP server on the stdio transport.
func (s *MCPAnalyticsServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	slog.Info("Starting MCP Analytics Server")

	stdioServer := s.mcpServer.AsStdio()
	return stdioServer.Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPAnalyticsServer) Stop() error {
	slog.Info("Stopping MCP Analytics Server")
	// The server will exit when stdin is closed
	return nil
}

// queryContext bounds one statement execution by the configured timeout.
func (s *MCPAnalyticsServer) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.QueryTimeout())
}

// handleQueryDatabase handles the query_database MCP tool call.
func (s *MCPAnalyticsServer) handleQueryDatabase(ctx *server.Context, req tools.QueryDatabaseRequest) (tools.QueryDatabaseResponse, error) {
	slog.Info("Processing query_database request", "sql_length", len(req.SQL))

	var response tools.QueryDatabaseResponse

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Query.MaxRows
	}

	qctx, cancel := s.queryContext()
	defer cancel()

	res, err := s.store.Query(qctx, req.SQL, limit)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Columns = res.Columns
	response.RowCount = res.RowCount()
	response.ElapsedMs = res.ElapsedMs
	response.Truncated = res.Truncated
	response.AddText(formatTable(res, s.cfg.Query.DisplayRows))

	slog.Info("Successfully executed query", "rows", res.RowCount(), "elapsed_ms", res.ElapsedMs)
	return response, nil
}

// handleGetTableSchema handles the get_table_schema MCP tool call.
func (s *MCPAnalyticsServer) handleGetTableSchema(ctx *server.Context, req tools.TableSchemaRequest) (tools.TableSchemaResponse, error) {
	slog.Info("Processing get_table_schema request", "table", req.TableName)

	var response tools.TableSchemaResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	cols, err := s.store.TableSchema(qctx, req.TableName)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.TableName = req.TableName
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\nColumns:\n", req.TableName)
	for _, col := range cols {
		response.Columns = append(response.Columns, tools.ColumnInfo{
			Name:     col.Name,
			Type:     col.Type,
			Nullable: col.Nullable,
		})
		nullable := "NOT NULL"
		if col.Nullable {
			nullable = "NULL"
		}
		fmt.Fprintf(&b, "  %s: %s %s\n", col.Name, col.Type, nullable)
	}
	response.AddText(b.String())
	return response, nil
}

// handleGetSampleData handles the get_sample_data MCP tool call.
func (s *MCPAnalyticsServer) handleGetSampleData(ctx *server.Context, req tools.SampleDataRequest) (tools.SampleDataResponse, error) {
	slog.Info("Processing get_sample_data request", "table", req.TableName, "n", req.N)

	var response tools.SampleDataResponse

	n := req.N
	if n <= 0 {
		n = s.cfg.Query.SampleRows
	}
	if n > maxSampleRows {
		n = maxSampleRows
	}

	qctx, cancel := s.queryContext()
	defer cancel()

	res, err := s.store.SampleData(qctx, req.TableName, n)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.RowCount = res.RowCount()
	response.AddText(formatRecords(req.TableName, res))
	return response, nil
}

// handleAnalyzeUserBehavior handles the analyze_user_behavior MCP tool call.
func (s *MCPAnalyticsServer) handleAnalyzeUserBehavior(ctx *server.Context, req tools.BehaviorRequest) (tools.BehaviorResponse, error) {
	dimension := req.Dimension
	if dimension == "" {
		dimension = tools.DimensionOverview
	}
	slog.Info("Processing analyze_user_behavior request", "dimension", dimension)

	var response tools.BehaviorResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	res, err := s.analytics.Behavior(qctx, dimension)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Dimension = dimension
	response.RowCount = res.RowCount()
	response.AddText(fmt.Sprintf("User Behavior Analysis: %s\n\n%s", dimension, formatTable(res, s.cfg.Query.DisplayRows)))
	return response, nil
}

// handleUserSegmentation handles the user_segmentation MCP tool call.
func (s *MCPAnalyticsServer) handleUserSegmentation(ctx *server.Context, req tools.SegmentationRequest) (tools.SegmentationResponse, error) {
	slog.Info("Processing user_segmentation request")

	var response tools.SegmentationResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	tiers, err := s.analytics.Segmentation(qctx)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Tiers = tiers
	var b strings.Builder
	b.WriteString("User Segmentation by Session Clicks:\n")
	for _, tier := range tiers {
		fmt.Fprintf(&b, "  %-14s %6d sessions  avg clicks %.2f  avg products %.2f  avg categories %.2f\n",
			tier.Name, tier.Sessions, tier.AvgClicks, tier.AvgProducts, tier.AvgCategories)
	}
	response.AddText(b.String())
	return response, nil
}

// handleConversionFunnel handles the conversion_funnel MCP tool call.
func (s *MCPAnalyticsServer) handleConversionFunnel(ctx *server.Context, req tools.FunnelRequest) (tools.FunnelResponse, error) {
	slog.Info("Processing conversion_funnel request")

	var response tools.FunnelResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	steps, err := s.analytics.ConversionFunnel(qctx)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Steps = steps
	var b strings.Builder
	b.WriteString("Conversion Funnel:\n")
	for _, step := range steps {
		if step.Rate != nil {
			fmt.Fprintf(&b, "  %-16s %8d sessions  (%.1f%% of previous step)\n", step.Label, step.Count, *step.Rate)
		} else {
			fmt.Fprintf(&b, "  %-16s %8d sessions\n", step.Label, step.Count)
		}
	}
	response.AddText(b.String())
	return response, nil
}

// handleGeographicAnalysis handles the geographic_analysis MCP tool call.
func (s *MCPAnalyticsServer) handleGeographicAnalysis(ctx *server.Context, req tools.GeographicRequest) (tools.GeographicResponse, error) {
	slog.Info("Processing geographic_analysis request")

	var response tools.GeographicResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	countries, err := s.analytics.Geographic(qctx)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Countries = countries
	var b strings.Builder
	b.WriteString("Geographic Analysis:\n")
	for _, c := range countries {
		fmt.Fprintf(&b, "  %-20s %6d sessions  %8d clicks  avg session length %.2f\n",
			c.Country, c.Sessions, c.Clicks, c.AvgSessionLength)
	}
	response.AddText(b.String())
	return response, nil
}

// handleProductPerformance handles the product_performance MCP tool call.
func (s *MCPAnalyticsServer) handleProductPerformance(ctx *server.Context, req tools.ProductPerformanceRequest) (tools.ProductPerformanceResponse, error) {
	slog.Info("Processing product_performance request", "top_n", req.TopN)

	var response tools.ProductPerformanceResponse

	qctx, cancel := s.queryContext()
	defer cancel()

	products, err := s.analytics.ProductPerformance(qctx, req.TopN)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Products = products
	var b strings.Builder
	b.WriteString("Product Performance (by views):\n")
	for i, p := range products {
		fmt.Fprintf(&b, "  %2d. %-8s %-12s %6d views  %5d sessions  %3d countries  avg price %.2f\n",
			i+1, p.ProductCode, p.Category, p.Views, p.Sessions, p.Countries, p.AvgPrice)
	}
	response.AddText(b.String())
	return response, nil
}

// resolveSource produces the tabular input of a visualization tool: a SQL
// statement through the guarded read path, or inline rows. Exactly one must
// be set.
func (s *MCPAnalyticsServer) resolveSource(src tools.DataSource) (*clickstore.Result, error) {
	switch {
	case src.SQL != "" && len(src.Rows) > 0:
		return nil, errortypes.ValidationError(
			errors.New("source must set sql or rows, not both"), "invalid data source")
	case src.SQL != "":
		qctx, cancel := s.queryContext()
		defer cancel()
		return s.store.Query(qctx, src.SQL, s.cfg.Query.MaxRows)
	case len(src.Rows) > 0:
		return charts.FromRows(src.Rows)
	default:
		return nil, errortypes.ValidationError(
			errors.New("source must set sql or rows"), "invalid data source")
	}
}

// handleCreateChart handles the create_chart MCP tool call.
func (s *MCPAnalyticsServer) handleCreateChart(ctx *server.Context, req tools.ChartRequest) (tools.ChartResponse, error) {
	slog.Info("Processing create_chart request", "kind", req.Kind, "x", req.XField, "y", req.YField)

	var response tools.ChartResponse

	res, err := s.resolveSource(req.Source)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	png, err := s.renderer.Chart(req.Kind, res, req.XField, req.YField, req.Title)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Points = res.RowCount()
	response.AddText(fmt.Sprintf("%s chart rendered: %d data points, x=%s, y=%s.",
		req.Kind, res.RowCount(), req.XField, req.YField))
	response.AddImage(charts.MimePNG, png)
	return response, nil
}

// handleCreateHeatmap handles the create_heatmap MCP tool call.
func (s *MCPAnalyticsServer) handleCreateHeatmap(ctx *server.Context, req tools.HeatmapRequest) (tools.ChartResponse, error) {
	slog.Info("Processing create_heatmap request", "row", req.RowField, "col", req.ColField, "value", req.ValueField)

	var response tools.ChartResponse

	res, err := s.resolveSource(req.Source)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	png, grid, err := s.renderer.Heatmap(res, req.RowField, req.ColField, req.ValueField)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Points = len(grid.RowLabels) * len(grid.ColLabels)
	response.AddText(fmt.Sprintf("Heatmap rendered: %d x %d grid (%s by %s, values from %s).",
		len(grid.RowLabels), len(grid.ColLabels), req.RowField, req.ColField, req.ValueField))
	response.AddImage(charts.MimePNG, png)
	return response, nil
}

// handleCreateFunnelChart handles the create_funnel_chart MCP tool call.
func (s *MCPAnalyticsServer) handleCreateFunnelChart(ctx *server.Context, req tools.FunnelChartRequest) (tools.ChartResponse, error) {
	slog.Info("Processing create_funnel_chart request", "steps", len(req.Steps))

	var response tools.ChartResponse

	png, err := s.renderer.Funnel(req.Steps, req.Title)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Points = len(req.Steps)
	response.AddText(fmt.Sprintf("Funnel chart rendered: %d steps.", len(req.Steps)))
	response.AddImage(charts.MimePNG, png)
	return response, nil
}

// handleCreateTimeSeries handles the create_time_series MCP tool call.
func (s *MCPAnalyticsServer) handleCreateTimeSeries(ctx *server.Context, req tools.TimeSeriesRequest) (tools.ChartResponse, error) {
	granularity := req.Granularity
	if granularity == "" {
		granularity = tools.GranularityDay
	}
	if granularity != tools.GranularityDay && granularity != tools.GranularityMonth {
		var response tools.ChartResponse
		err := errortypes.ValidationError(
			fmt.Errorf("unknown granularity %q", granularity), "invalid create_time_series request")
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}
	slog.Info("Processing create_time_series request", "time", req.TimeField, "value", req.ValueField, "granularity", granularity)

	var response tools.ChartResponse

	res, err := s.resolveSource(req.Source)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	png, points, err := s.renderer.TimeSeries(res, req.TimeField, req.ValueField, granularity, req.Title)
	if err != nil {
		errortypes.LogError(nil, err)
		response.Fail(err)
		return response, nil
	}

	response.OK()
	response.Points = points
	response.AddText(fmt.Sprintf("Time series rendered: %d points grouped by %s.", points, granularity))
	response.AddImage(charts.MimePNG, png)
	return response, nil
}

// handleSchemaResource serves the /schema resource: the full column listing
// of every known table.
func (s *MCPAnalyticsServer) handleSchemaResource(ctx *server.Context, args struct{}) (string, error) {
	qctx, cancel := s.queryContext()
	defer cancel()

	var b strings.Builder
	b.WriteString("E-commerce Database Schema\n")
	for _, table := range s.store.Tables() {
		cols, err := s.store.TableSchema(qctx, table)
		if err != nil {
			errortypes.LogError(nil, err)
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", table)
		for _, col := range cols {
			fmt.Fprintf(&b, "  %s %s\n", col.Name, col.Type)
		}
	}
	return b.String(), nil
}

// handleTablesResource serves the /tables resource: table names only.
func (s *MCPAnalyticsServer) handleTablesResource(ctx *server.Context, args struct{}) (string, error) {
	tables := s.store.Tables()
	var b strings.Builder
	fmt.Fprintf(&b, "Available Tables (%d):\n", len(tables))
	for _, table := range tables {
		fmt.Fprintf(&b, "  %s\n", table)
	}
	return b.String(), nil
}

// handleTemplatesResource serves the /templates resource as a JSON map of
// template name to literal SQL text.
func (s *MCPAnalyticsServer) handleTemplatesResource(ctx *server.Context, args struct{}) (string, error) {
	out, err := json.MarshalIndent(analytics.Templates, "", "  ")
	if err != nil {
		return "", errortypes.InternalError(err, "failed to encode query templates")
	}
	return string(out), nil
}
