package logs

import (
	"context"
	"fmt"
	"time"

	"loupe-mcp/internal/assemble"
	"loupe-mcp/internal/models"
	"loupe-mcp/internal/search"
	"loupe-mcp/internal/utils"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultLogLimit   = 20
	defaultBatchLimit = 500
	defaultLookback   = 60
)

// GetLogsArgs represents the input arguments for the get_logs tool
type GetLogsArgs struct {
	Query           string   `json:"query,omitempty" jsonschema:"Full-text query against the log message (e.g. timeout)"`
	Service         string   `json:"service,omitempty" jsonschema:"Service name to filter by (e.g. api)"`
	StartTimeISO    string   `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format (e.g. 2023-10-01T10:00:00Z)"`
	EndTimeISO      string   `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int      `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now if start_time_iso not provided (default: 60)"`
	Limit           int      `json:"limit,omitempty" jsonschema:"Maximum number of log entries to return (default: 20)"`
	SeverityFilters []string `json:"severity_filters,omitempty" jsonschema:"Severity patterns to match, OR logic (e.g. [error warn])"`
	BodyFilters     []string `json:"body_filters,omitempty" jsonschema:"Message content patterns to match, OR logic"`
}

// LogsResponse is the get_logs / get_service_logs output shape.
type LogsResponse struct {
	StartTime string                   `json:"start_time"`
	EndTime   string                   `json:"end_time"`
	Count     int                      `json:"count"`
	Logs      []models.FormattedRecord `json:"logs"`
}

// NewGetLogsHandler creates a handler for the get_logs tool
func NewGetLogsHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, GetLogsArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args GetLogsArgs) (*mcp.CallToolResult, any, error) {
		return fetchAndFormat(ctx, client, args, defaultLogLimit)
	}
}

// GetServiceLogsArgs represents the input arguments for the get_service_logs tool
type GetServiceLogsArgs struct {
	Service         string   `json:"service" jsonschema:"Service name to retrieve logs for (e.g. api)"`
	StartTimeISO    string   `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string   `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int      `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
	Limit           int      `json:"limit,omitempty" jsonschema:"Maximum number of log entries to return (default: 20)"`
	SeverityFilters []string `json:"severity_filters,omitempty" jsonschema:"Severity patterns to match, OR logic"`
	BodyFilters     []string `json:"body_filters,omitempty" jsonschema:"Message content patterns to match, OR logic"`
}

// NewGetServiceLogsHandler creates a handler for the get_service_logs tool
func NewGetServiceLogsHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, GetServiceLogsArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args GetServiceLogsArgs) (*mcp.CallToolResult, any, error) {
		if args.Service == "" {
			return nil, nil, fmt.Errorf("service parameter is required")
		}
		return fetchAndFormat(ctx, client, GetLogsArgs{
			Service:         args.Service,
			StartTimeISO:    args.StartTimeISO,
			EndTimeISO:      args.EndTimeISO,
			LookbackMinutes: args.LookbackMinutes,
			Limit:           args.Limit,
			SeverityFilters: args.SeverityFilters,
			BodyFilters:     args.BodyFilters,
		}, defaultLogLimit)
	}
}

func fetchAndFormat(ctx context.Context, client *search.Client, args GetLogsArgs, defaultLimit int) (*mcp.CallToolResult, any, error) {
	start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
	if err != nil {
		return nil, nil, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	records, err := client.SearchLogs(ctx, search.LogQuery{
		Query:           args.Query,
		Service:         args.Service,
		SeverityFilters: args.SeverityFilters,
		BodyFilters:     args.BodyFilters,
		Start:           start,
		End:             end,
		Limit:           limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch logs: %w", err)
	}

	formatted := make([]models.FormattedRecord, 0, len(records))
	for _, rec := range records {
		formatted = append(formatted, assemble.Format(rec))
	}

	return textResult(LogsResponse{
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Count:     len(formatted),
		Logs:      formatted,
	}), nil, nil
}

// timeRange adapts tool args to the shared time-range utility.
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
