package traces

import (
	"context"
	"fmt"
	"time"

	"loupe-mcp/internal/anomaly"
	"loupe-mcp/internal/search"
	"loupe-mcp/internal/utils"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultSpanLimit = 1000
	defaultLookback  = 60
)

// DetectSpanAnomaliesArgs represents the input arguments for the detect_span_anomalies tool
type DetectSpanAnomaliesArgs struct {
	Service         string  `json:"service,omitempty" jsonschema:"Service name to filter by"`
	Operation       string  `json:"operation,omitempty" jsonschema:"Operation name to filter by"`
	Detector        string  `json:"detector,omitempty" jsonschema:"Detector name: zscore iqr percentile or rate_of_change (default: zscore)"`
	Threshold       float64 `json:"threshold,omitempty" jsonschema:"Detector-specific threshold; 0 selects the default"`
	StartTimeISO    string  `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string  `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int     `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
	Limit           int     `json:"limit,omitempty" jsonschema:"Maximum number of spans to analyze (default: 1000)"`
}

// FlaggedSpan is one anomalous span with its anomaly score attached.
type FlaggedSpan struct {
	search.SpanRecord
	Score    float64 `json:"score"`
	Expected float64 `json:"expected_ms"`
}

// SpanAnomaliesResponse is the detect_span_anomalies output shape.
type SpanAnomaliesResponse struct {
	Detector     string        `json:"detector"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	SpanCount    int           `json:"span_count"`
	AnomalyCount int           `json:"anomaly_count"`
	Anomalies    []FlaggedSpan `json:"anomalies"`
}

// NewDetectSpanAnomaliesHandler creates a handler for the detect_span_anomalies tool
func NewDetectSpanAnomaliesHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, DetectSpanAnomaliesArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args DetectSpanAnomaliesArgs) (*mcp.CallToolResult, any, error) {
		start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
		if err != nil {
			return nil, nil, err
		}

		limit := args.Limit
		if limit <= 0 {
			limit = defaultSpanLimit
		}

		spans, err := client.SpanDurations(ctx, search.SpanQuery{
			Service:   args.Service,
			Operation: args.Operation,
			Start:     start,
			End:       end,
			Limit:     limit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch spans: %w", err)
		}

		durations := make([]float64, len(spans))
		for i, s := range spans {
			durations[i] = s.DurationMs
		}

		detector := args.Detector
		if detector == "" {
			detector = anomaly.DetectorZScore
		}
		anomalies, err := anomaly.Detect(detector, durations, args.Threshold)
		if err != nil {
			return nil, nil, err
		}

		flagged := make([]FlaggedSpan, 0, len(anomalies))
		for _, a := range anomalies {
			flagged = append(flagged, FlaggedSpan{
				SpanRecord: spans[a.Index],
				Score:      a.Score,
				Expected:   a.Expected,
			})
		}

		return textResult(SpanAnomaliesResponse{
			Detector:     detector,
			StartTime:    start.Format(time.RFC3339),
			EndTime:      end.Format(time.RFC3339),
			SpanCount:    len(spans),
			AnomalyCount: len(flagged),
			Anomalies:    flagged,
		}), nil, nil
	}
}

func timeRange(startISO, endISO string, lookbackMinutes int) (time.Time, time.Time, error) {
	params := make(map[string]interface{})
	if startISO != "" {
		params["start_time_iso"] = startISO
	}
	if endISO != "" {
		params["end_time_iso"] = endISO
	}

	lookback := lookbackMinutes
	if lookback == 0 {
		lookback = defaultLookback
	}

	start, end, err := utils.GetTimeRange(params, lookback)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range: %w", err)
	}
	return start, end, nil
}

func textResult(data any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: utils.FormatJSON(data)},
		},
	}
}
