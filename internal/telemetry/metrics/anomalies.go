package metrics

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
	defaultInterval = "1m"
	defaultLookback = 60
)

// DetectMetricAnomaliesArgs represents the input arguments for the detect_metric_anomalies tool
type DetectMetricAnomaliesArgs struct {
	Field           string  `json:"field" jsonschema:"Numeric metric field to analyze (e.g. cpu_usage)"`
	Service         string  `json:"service,omitempty" jsonschema:"Service name to filter by"`
	Detector        string  `json:"detector,omitempty" jsonschema:"Detector name: zscore iqr percentile or rate_of_change (default: zscore)"`
	Threshold       float64 `json:"threshold,omitempty" jsonschema:"Detector-specific threshold; 0 selects the default"`
	Interval        string  `json:"interval,omitempty" jsonschema:"Bucket interval (e.g. 1m 5m). Default: 1m"`
	StartTimeISO    string  `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string  `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int     `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
}

// FlaggedPoint is one anomalous bucket with its timestamp attached.
type FlaggedPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	Expected  float64 `json:"expected"`
}

// AnomaliesResponse is the detect_metric_anomalies output shape.
type AnomaliesResponse struct {
	Field        string         `json:"field"`
	Detector     string         `json:"detector"`
	StartTime    string         `json:"start_time"`
	EndTime      string         `json:"end_time"`
	PointCount   int            `json:"point_count"`
	AnomalyCount int            `json:"anomaly_count"`
	Anomalies    []FlaggedPoint `json:"anomalies"`
}

// NewDetectAnomaliesHandler creates a handler for the detect_metric_anomalies tool
func NewDetectAnomaliesHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, DetectMetricAnomaliesArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args DetectMetricAnomaliesArgs) (*mcp.CallToolResult, any, error) {
		if args.Field == "" {
			return nil, nil, fmt.Errorf("field parameter is required")
		}

		start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
		if err != nil {
			return nil, nil, err
		}

		interval := args.Interval
		if interval == "" {
			interval = defaultInterval
		}

		points, err := client.MetricSeries(ctx, search.MetricQuery{
			Field:    args.Field,
			Service:  args.Service,
			Interval: interval,
			Start:    start,
			End:      end,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch metric series: %w", err)
		}

		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}

		detector := args.Detector
		if detector == "" {
			detector = anomaly.DetectorZScore
		}
		anomalies, err := anomaly.Detect(detector, values, args.Threshold)
		if err != nil {
			return nil, nil, err
		}

		flagged := make([]FlaggedPoint, 0, len(anomalies))
		for _, a := range anomalies {
			flagged = append(flagged, FlaggedPoint{
				Timestamp: points[a.Index].Timestamp,
				Value:     a.Value,
				Score:     a.Score,
				Expected:  a.Expected,
			})
		}

		return textResult(AnomaliesResponse{
			Field:        args.Field,
			Detector:     detector,
			StartTime:    start.Format(time.RFC3339),
			EndTime:      end.Format(time.RFC3339),
			PointCount:   len(points),
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
