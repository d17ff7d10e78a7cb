// Package tools defines the names and data structures of the analytics
// tool catalog exposed over MCP.
package tools

// Database tool names
const (
	// ToolQueryDatabase is the name of the query_database MCP tool
	ToolQueryDatabase = "query_database"

	// ToolGetTableSchema is the name of the get_table_schema MCP tool
	ToolGetTableSchema = "get_table_schema"

	// ToolGetSampleData is the name of the get_sample_data MCP tool
	ToolGetSampleData = "get_sample_data"

	// ToolAnalyzeUserBehavior is the name of the analyze_user_behavior MCP tool
	ToolAnalyzeUserBehavior = "analyze_user_behavior"
)

// Analytics tool names
const (
	// ToolUserSegmentation is the name of the user_segmentation MCP tool
	ToolUserSegmentation = "user_segmentation"

	// ToolConversionFunnel is the name of the conversion_funnel MCP tool
	ToolConversionFunnel = "conversion_funnel"

	// ToolGeographicAnalysis is the name of the geographic_analysis MCP tool
	ToolGeographicAnalysis = "geographic_analysis"

	// ToolProductPerformance is the name of the product_performance MCP tool
	ToolProductPerformance = "product_performance"
)

// Visualization tool names
const (
	// ToolCreateChart is the name of the create_chart MCP tool
	ToolCreateChart = "create_chart"

	// ToolCreateHeatmap is the name of the create_heatmap MCP tool
	ToolCreateHeatmap = "create_heatmap"

	// ToolCreateFunnelChart is the name of the create_funnel_chart MCP tool
	ToolCreateFunnelChart = "create_funnel_chart"

	// ToolCreateTimeSeries is the name of the create_time_series MCP tool
	ToolCreateTimeSeries = "create_time_series"
)

// Resource paths exposed alongside the tools
const (
	ResourceSchema    = "/schema"
	ResourceTables    = "/tables"
	ResourceTemplates = "/templates"
)

// QueryDatabaseRequest defines the input schema for query_database
type QueryDatabaseRequest struct {
	// SQL is the read-only statement to execute
	SQL string `json:"sql"`

	// Limit optionally overrides the configured row cap
	Limit int `json:"limit,omitempty"`
}

// QueryDatabaseResponse defines the output schema for query_database
type QueryDatabaseResponse struct {
	Result

	// Columns are the result column names, in statement order
	Columns []string `json:"columns,omitempty"`

	// RowCount is the number of rows returned
	RowCount int `json:"row_count"`

	// ElapsedMs is the statement execution time in milliseconds
	ElapsedMs float64 `json:"elapsed_ms"`

	// Truncated reports whether the row cap cut the result short
	Truncated bool `json:"truncated,omitempty"`
}

// TableSchemaRequest defines the input schema for get_table_schema
type TableSchemaRequest struct {
	// TableName is the table to describe; must be in the known-tables set
	TableName string `json:"table_name"`
}

// ColumnInfo describes one column of a table
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TableSchemaResponse defines the output schema for get_table_schema
type TableSchemaResponse struct {
	Result

	TableName string       `json:"table_name,omitempty"`
	Columns   []ColumnInfo `json:"schema_columns,omitempty"`
}

// SampleDataRequest defines the input schema for get_sample_data
type SampleDataRequest struct {
	// TableName is the table to sample; must be in the known-tables set
	TableName string `json:"table_name"`

	// N is the number of rows to return (default from config, max 50)
	N int `json:"n,omitempty"`
}

// SampleDataResponse defines the output schema for get_sample_data
type SampleDataResponse struct {
	Result

	RowCount int `json:"row_count"`
}

// Behavior analysis dimensions accepted by analyze_user_behavior
const (
	DimensionOverview      = "overview"
	DimensionCountry       = "country"
	DimensionCategory      = "category"
	DimensionProduct       = "product"
	DimensionDaily         = "daily"
	DimensionSessionLength = "session_length"
)

// BehaviorRequest defines the input schema for analyze_user_behavior
type BehaviorRequest struct {
	// Dimension selects one of the pre-written aggregations
	Dimension string `json:"dimension"`
}

// BehaviorResponse defines the output schema for analyze_user_behavior
type BehaviorResponse struct {
	Result

	Dimension string `json:"dimension,omitempty"`
	RowCount  int    `json:"row_count"`
}

// SegmentationRequest defines the input schema for user_segmentation
type SegmentationRequest struct{}

// SegmentTier is one named session tier
type SegmentTier struct {
	Name         string  `json:"name"`
	Sessions     int64   `json:"sessions"`
	AvgClicks    float64 `json:"avg_clicks"`
	AvgProducts  float64 `json:"avg_products"`
	AvgCategories float64 `json:"avg_categories"`
}

// SegmentationResponse defines the output schema for user_segmentation
type SegmentationResponse struct {
	Result

	Tiers []SegmentTier `json:"tiers,omitempty"`
}

// FunnelRequest defines the input schema for conversion_funnel
type FunnelRequest struct{}

// FunnelStep is one stage of a conversion funnel. Rate is the
// step-over-step conversion percentage; nil when the previous step
// count is zero.
type FunnelStep struct {
	Label string   `json:"label"`
	Count int64    `json:"count"`
	Rate  *float64 `json:"rate,omitempty"`
}

// FunnelResponse defines the output schema for conversion_funnel
type FunnelResponse struct {
	Result

	Steps []FunnelStep `json:"steps,omitempty"`
}

// GeographicRequest defines the input schema for geographic_analysis
type GeographicRequest struct{}

// CountryStats is the per-country aggregate row
type CountryStats struct {
	Country          string  `json:"country"`
	Sessions         int64   `json:"sessions"`
	Clicks           int64   `json:"clicks"`
	AvgSessionLength float64 `json:"avg_session_length"`
}

// GeographicResponse defines the output schema for geographic_analysis
type GeographicResponse struct {
	Result

	Countries []CountryStats `json:"countries,omitempty"`
}

// ProductPerformanceRequest defines the input schema for product_performance
type ProductPerformanceRequest struct {
	// TopN optionally overrides the configured ranking cutoff
	TopN int `json:"top_n,omitempty"`
}

// ProductStats is the per-product aggregate row, ranked by views
type ProductStats struct {
	ProductCode string  `json:"product_code"`
	Category    string  `json:"category"`
	Views       int64   `json:"views"`
	Sessions    int64   `json:"sessions"`
	Countries   int64   `json:"countries"`
	AvgPrice    float64 `json:"avg_price"`
}

// ProductPerformanceResponse defines the output schema for product_performance
type ProductPerformanceResponse struct {
	Result

	Products []ProductStats `json:"products,omitempty"`
}

// Chart kinds accepted by create_chart
const (
	ChartKindBar     = "bar"
	ChartKindLine    = "line"
	ChartKindPie     = "pie"
	ChartKindScatter = "scatter"
)

// DataSource selects the tabular input of a visualization tool: either a
// read-only SQL statement executed through the guarded query path, or
// inline rows supplied by the caller. Exactly one must be set.
type DataSource struct {
	// SQL is a read-only statement producing the chart data
	SQL string `json:"sql,omitempty"`

	// Rows are inline records keyed by field name
	Rows []map[string]interface{} `json:"rows,omitempty"`
}

// ChartRequest defines the input schema for create_chart
type ChartRequest struct {
	// Kind is one of bar, line, pie, scatter
	Kind string `json:"kind"`

	Source DataSource `json:"source"`

	// XField and YField must name fields present in the resolved data
	XField string `json:"x_field"`
	YField string `json:"y_field"`

	Title string `json:"title,omitempty"`
}

// ChartResponse defines the output schema for the visualization tools.
// On success Content carries one text block and one image block.
type ChartResponse struct {
	Result

	// Points is the number of data points rendered
	Points int `json:"points,omitempty"`
}

// HeatmapRequest defines the input schema for create_heatmap
type HeatmapRequest struct {
	Source DataSource `json:"source"`

	// RowField and ColField define the pivot axes; ValueField fills the
	// cells. Missing combinations are rendered as zero.
	RowField   string `json:"row_field"`
	ColField   string `json:"col_field"`
	ValueField string `json:"value_field"`

	Title string `json:"title,omitempty"`
}

// FunnelChartRequest defines the input schema for create_funnel_chart.
// Steps render in the given order; ordering is the caller's contract.
type FunnelChartRequest struct {
	Steps []FunnelStep `json:"steps"`
	Title string       `json:"title,omitempty"`
}

// Time series granularities
const (
	GranularityDay   = "day"
	GranularityMonth = "month"
)

// TimeSeriesRequest defines the input schema for create_time_series
type TimeSeriesRequest struct {
	Source DataSource `json:"source"`

	// TimeField must hold values interpretable as dates
	TimeField  string `json:"time_field"`
	ValueField string `json:"value_field"`

	// Granularity groups points by day or month before rendering
	Granularity string `json:"granularity,omitempty"`

	Title string `json:"title,omitempty"`
}
