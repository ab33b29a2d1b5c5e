package logs

import (
	"context"
	"fmt"
	"time"

	"loupe-mcp/internal/logpattern"
	"loupe-mcp/internal/models"
	"loupe-mcp/internal/search"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PatternBatchArgs represents the input arguments shared by the pattern tools
type PatternBatchArgs struct {
	Query           string   `json:"query,omitempty" jsonschema:"Full-text filter applied before analysis"`
	Service         string   `json:"service,omitempty" jsonschema:"Service name to filter by"`
	StartTimeISO    string   `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string   `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int      `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
	Limit           int      `json:"limit,omitempty" jsonschema:"Maximum number of logs to analyze (default: 500)"`
	SeverityFilters []string `json:"severity_filters,omitempty" jsonschema:"Severity patterns to match, OR logic"`
}

// MinePatternsResponse is the mine_log_patterns output shape.
type MinePatternsResponse struct {
	StartTime     string                    `json:"start_time"`
	EndTime       string                    `json:"end_time"`
	OriginalCount int                       `json:"original_count"`
	PatternCount  int                       `json:"pattern_count"`
	Groups        []logpattern.PatternGroup `json:"groups"`
}

// NewMinePatternsHandler creates a handler for the mine_log_patterns tool
func NewMinePatternsHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, PatternBatchArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args PatternBatchArgs) (*mcp.CallToolResult, any, error) {
		start, end, records, err := fetchBatch(ctx, client, args)
		if err != nil {
			return nil, nil, err
		}

		mined := logpattern.Mine(records)
		return textResult(MinePatternsResponse{
			StartTime:     start.Format(time.RFC3339),
			EndTime:       end.Format(time.RFC3339),
			OriginalCount: mined.OriginalCount,
			PatternCount:  len(mined.Groups),
			Groups:        mined.Groups,
		}), nil, nil
	}
}

// DeduplicateResponse is the deduplicate_logs output shape.
type DeduplicateResponse struct {
	StartTime       string                            `json:"start_time"`
	EndTime         string                            `json:"end_time"`
	OriginalCount   int                               `json:"original_count"`
	Count           int                               `json:"count"`
	Representatives []logpattern.Representative       `json:"representatives"`
	PatternStats    map[string]logpattern.PatternStat `json:"pattern_stats"`
}

// NewDeduplicateHandler creates a handler for the deduplicate_logs tool
func NewDeduplicateHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, PatternBatchArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args PatternBatchArgs) (*mcp.CallToolResult, any, error) {
		start, end, records, err := fetchBatch(ctx, client, args)
		if err != nil {
			return nil, nil, err
		}

		deduped := logpattern.Deduplicate(records)
		return textResult(DeduplicateResponse{
			StartTime:       start.Format(time.RFC3339),
			EndTime:         end.Format(time.RFC3339),
			OriginalCount:   len(records),
			Count:           len(deduped.Representatives),
			Representatives: deduped.Representatives,
			PatternStats:    deduped.PatternStats,
		}), nil, nil
	}
}

func fetchBatch(ctx context.Context, client *search.Client, args PatternBatchArgs) (time.Time, time.Time, []models.ScoredRecord, error) {
	start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	records, err := client.SearchLogs(ctx, search.LogQuery{
		Query:           args.Query,
		Service:         args.Service,
		SeverityFilters: args.SeverityFilters,
		Start:           start,
		End:             end,
		Limit:           limit,
	})
	if err != nil {
		return time.Time{}, time.Time{}, nil, fmt.Errorf("failed to fetch logs: %w", err)
	}
	return start, end, records, nil
}
