package server

import (
	"encoding/json"
	"fmt"

	"github.com/supertime1/MCP-demo/internal/errortypes"
	"github.com/supertime1/MCP-demo/internal/tools"
)

// Invoke dispatches a tool call by name with loosely-typed arguments and
// returns the response envelope. The chat client routes through here so
// in-process callers and MCP transport callers exercise the same handlers.
func (s *MCPAnalyticsServer) Invoke(tool string, args map[string]interface{}) (*tools.Result, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, errortypes.ValidationError(err, "tool arguments are not encodable")
	}

	decode := func(v interface{}) error {
		if err := json.Unmarshal(raw, v); err != nil {
			return errortypes.ValidationError(err, fmt.Sprintf("invalid arguments for %s", tool))
		}
		return nil
	}

	switch tool {
	case tools.ToolQueryDatabase:
		var req tools.QueryDatabaseRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleQueryDatabase(nil, req)
		return resp.Envelope(), nil

	case tools.ToolGetTableSchema:
		var req tools.TableSchemaRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleGetTableSchema(nil, req)
		return resp.Envelope(), nil

	case tools.ToolGetSampleData:
		var req tools.SampleDataRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleGetSampleData(nil, req)
		return resp.Envelope(), nil

	case tools.ToolAnalyzeUserBehavior:
		var req tools.BehaviorRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleAnalyzeUserBehavior(nil, req)
		return resp.Envelope(), nil

	case tools.ToolUserSegmentation:
		resp, _ := s.handleUserSegmentation(nil, tools.SegmentationRequest{})
		return resp.Envelope(), nil

	case tools.ToolConversionFunnel:
		resp, _ := s.handleConversionFunnel(nil, tools.FunnelRequest{})
		return resp.Envelope(), nil

	case tools.ToolGeographicAnalysis:
		resp, _ := s.handleGeographicAnalysis(nil, tools.GeographicRequest{})
		return resp.Envelope(), nil

	case tools.ToolProductPerformance:
		var req tools.ProductPerformanceRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleProductPerformance(nil, req)
		return resp.Envelope(), nil

	case tools.ToolCreateChart:
		var req tools.ChartRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleCreateChart(nil, req)
		return resp.Envelope(), nil

	case tools.ToolCreateHeatmap:
		var req tools.HeatmapRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleCreateHeatmap(nil, req)
		return resp.Envelope(), nil

	case tools.ToolCreateFunnelChart:
		var req tools.FunnelChartRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleCreateFunnelChart(nil, req)
		return resp.Envelope(), nil

	case tools.ToolCreateTimeSeries:
		var req tools.TimeSeriesRequest
		if err := decode(&req); err != nil {
			return nil, err
		}
		resp, _ := s.handleCreateTimeSeries(nil, req)
		return resp.Envelope(), nil

	default:
		return nil, errortypes.NotFoundError(
			fmt.Errorf("unknown tool %q", tool), "tool not registered")
	}
}
