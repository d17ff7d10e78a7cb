// Package router maps free-text chat input to a tool invocation. Routing is
// keyword matching over an ordered rule list: the first rule whose predicate
// matches wins, and a fallback rule guarantees every input routes somewhere.
package router

import (
	"regexp"
	"strings"

	"github.com/supertime1/MCP-demo/internal/tools"
)

// Decision is the outcome of routing one line of input: the tool to call
// and the arguments extracted from the text.
type Decision struct {
	Tool string
	Args map[string]interface{}

	// Rule is the name of the matched rule, for logging.
	Rule string
}

type rule struct {
	name  string
	match func(input string) bool
	build func(input string) Decision
}

// Router holds the ordered rule list. The zero value is not usable; call New.
type Router struct {
	rules    []rule
	fallback rule
}

var (
	sqlPrefixRe   = regexp.MustCompile(`(?i)^\s*(select|with)\b`)
	chartWordRe   = regexp.MustCompile(`(?i)\b(chart|graph|plot|visualize|visualization)\b`)
	heatmapRe     = regexp.MustCompile(`(?i)\bheat\s?map\b`)
	funnelRe      = regexp.MustCompile(`(?i)\b(conversion|funnel)\b`)
	timeSeriesRe  = regexp.MustCompile(`(?i)\b(time series|over time|trend|daily|timeline)\b`)
	segmentRe     = regexp.MustCompile(`(?i)\bsegment(ation|s)?\b`)
	geographicRe  = regexp.MustCompile(`(?i)\b(geographic|geography|country|countries|region)\b`)
	productRe     = regexp.MustCompile(`(?i)\b(product|category|categories)\b`)
	schemaRe      = regexp.MustCompile(`(?i)\b(schema|structure|columns)\b`)
	sampleRe      = regexp.MustCompile(`(?i)\b(sample|preview|example rows)\b`)
	behaviorRe    = regexp.MustCompile(`(?i)\b(analyze|analysis|behavior|overview)\b`)
	monthRe       = regexp.MustCompile(`(?i)\bmonth(ly)?\b`)
	pieRe         = regexp.MustCompile(`(?i)\bpie\b`)
	lineChartRe   = regexp.MustCompile(`(?i)\bline\b`)
	scatterRe     = regexp.MustCompile(`(?i)\bscatter\b`)
)

// Known table names, most specific first so "user_sessions" is not
// shadowed by a substring match.
var tableNames = []string{
	"product_analytics",
	"country_analytics",
	"user_sessions",
	"clickstream",
}

// Behavior dimensions matched against free text, checked in order so
// routing stays deterministic when several words appear.
var dimensionWords = []struct {
	word string
	dim  string
}{
	{"session length", tools.DimensionSessionLength},
	{"duration", tools.DimensionSessionLength},
	{"countries", tools.DimensionCountry},
	{"country", tools.DimensionCountry},
	{"categories", tools.DimensionCategory},
	{"category", tools.DimensionCategory},
	{"products", tools.DimensionProduct},
	{"product", tools.DimensionProduct},
	{"daily", tools.DimensionDaily},
	{"day", tools.DimensionDaily},
}

// New builds the router with its full rule list. Rule order is the routing
// contract: earlier rules shadow later ones.
func New() *Router {
	r := &Router{}

	r.rules = []rule{
		{
			name:  "raw-sql",
			match: sqlPrefixRe.MatchString,
			build: func(input string) Decision {
				return Decision{
					Tool: tools.ToolQueryDatabase,
					Args: map[string]interface{}{"sql": strings.TrimSpace(input)},
					Rule: "raw-sql",
				}
			},
		},
		{
			name: "chart",
			match: func(input string) bool {
				return chartWordRe.MatchString(input) || heatmapRe.MatchString(input)
			},
			build: buildChartDecision,
		},
		{
			name:  "segmentation",
			match: segmentRe.MatchString,
			build: constant(tools.ToolUserSegmentation, "segmentation"),
		},
		{
			name:  "funnel",
			match: funnelRe.MatchString,
			build: constant(tools.ToolConversionFunnel, "funnel"),
		},
		{
			name:  "geographic",
			match: geographicRe.MatchString,
			build: constant(tools.ToolGeographicAnalysis, "geographic"),
		},
		{
			name:  "product",
			match: productRe.MatchString,
			build: constant(tools.ToolProductPerformance, "product"),
		},
		{
			name:  "schema",
			match: schemaRe.MatchString,
			build: func(input string) Decision {
				return Decision{
					Tool: tools.ToolGetTableSchema,
					Args: map[string]interface{}{"table_name": extractTable(input)},
					Rule: "schema",
				}
			},
		},
		{
			name:  "sample",
			match: sampleRe.MatchString,
			build: func(input string) Decision {
				return Decision{
					Tool: tools.ToolGetSampleData,
					Args: map[string]interface{}{"table_name": extractTable(input)},
					Rule: "sample",
				}
			},
		},
		{
			name:  "behavior",
			match: behaviorRe.MatchString,
			build: func(input string) Decision {
				return Decision{
					Tool: tools.ToolAnalyzeUserBehavior,
					Args: map[string]interface{}{"dimension": extractDimension(input)},
					Rule: "behavior",
				}
			},
		},
	}

	r.fallback = rule{
		name: "fallback",
		build: func(input string) Decision {
			return Decision{
				Tool: tools.ToolAnalyzeUserBehavior,
				Args: map[string]interface{}{"dimension": tools.DimensionOverview},
				Rule: "fallback",
			}
		},
	}

	return r
}

// Route resolves one line of input against the rule list.
func (r *Router) Route(input string) Decision {
	for _, rl := range r.rules {
		if rl.match(input) {
			return rl.build(input)
		}
	}
	return r.fallback.build(input)
}

func constant(tool, name string) func(string) Decision {
	return func(string) Decision {
		return Decision{Tool: tool, Args: map[string]interface{}{}, Rule: name}
	}
}

// buildChartDecision picks the visualization tool. Heatmap, funnel, and
// time-series phrasing pick the dedicated tools; everything else falls to
// create_chart with a kind guessed from the text.
func buildChartDecision(input string) Decision {
	switch {
	case heatmapRe.MatchString(input):
		return Decision{
			Tool: tools.ToolCreateHeatmap,
			Args: map[string]interface{}{
				"source":      map[string]interface{}{"sql": analyticsHeatmapSQL},
				"row_field":   "country",
				"col_field":   "category",
				"value_field": "clicks",
			},
			Rule: "chart-heatmap",
		}
	case funnelRe.MatchString(input):
		return Decision{
			Tool: tools.ToolConversionFunnel,
			Args: map[string]interface{}{},
			Rule: "chart-funnel",
		}
	case timeSeriesRe.MatchString(input):
		granularity := tools.GranularityDay
		if monthRe.MatchString(input) {
			granularity = tools.GranularityMonth
		}
		return Decision{
			Tool: tools.ToolCreateTimeSeries,
			Args: map[string]interface{}{
				"source":      map[string]interface{}{"sql": analyticsDailySQL},
				"time_field":  "date",
				"value_field": "clicks",
				"granularity": granularity,
			},
			Rule: "chart-timeseries",
		}
	default:
		return Decision{
			Tool: tools.ToolCreateChart,
			Args: map[string]interface{}{
				"kind":    chartKind(input),
				"source":  map[string]interface{}{"sql": analyticsCountrySQL},
				"x_field": "country",
				"y_field": "sessions",
			},
			Rule: "chart",
		}
	}
}

func chartKind(input string) string {
	switch {
	case pieRe.MatchString(input):
		return tools.ChartKindPie
	case scatterRe.MatchString(input):
		return tools.ChartKindScatter
	case lineChartRe.MatchString(input):
		return tools.ChartKindLine
	default:
		return tools.ChartKindBar
	}
}

// extractTable finds the first known table name mentioned in the input,
// defaulting to clickstream.
func extractTable(input string) string {
	lower := strings.ToLower(input)
	for _, t := range tableNames {
		if strings.Contains(lower, t) {
			return t
		}
	}
	// Plural-free fallbacks for casual phrasing.
	switch {
	case strings.Contains(lower, "session"):
		return "user_sessions"
	case strings.Contains(lower, "product"):
		return "product_analytics"
	case strings.Contains(lower, "country"), strings.Contains(lower, "countries"):
		return "country_analytics"
	}
	return "clickstream"
}

// extractDimension finds the first behavior dimension mentioned in the
// input, defaulting to overview.
func extractDimension(input string) string {
	lower := strings.ToLower(input)
	for _, entry := range dimensionWords {
		if strings.Contains(lower, entry.word) {
			return entry.dim
		}
	}
	return tools.DimensionOverview
}

// Default data sources for chart requests routed from free text.
const (
	analyticsCountrySQL = "SELECT country, total_sessions AS sessions FROM country_analytics ORDER BY total_sessions DESC LIMIT 10"
	analyticsDailySQL   = "SELECT printf('%04d-%02d-%02d', year, month, day) AS date, COUNT(*) AS clicks FROM clickstream GROUP BY date ORDER BY date"
	analyticsHeatmapSQL = "SELECT country, page_1_main_category AS category, COUNT(*) AS clicks FROM clickstream GROUP BY country, page_1_main_category"
)
