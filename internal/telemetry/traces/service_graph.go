package traces

import (
	"context"
	"fmt"
	"time"

	"loupe-mcp/internal/depgraph"
	"loupe-mcp/internal/search"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServiceGraphArgs represents the input arguments for the get_service_dependency_graph tool
type ServiceGraphArgs struct {
	Service         string `json:"service,omitempty" jsonschema:"Restrict the graph to the edges touching this service"`
	StartTimeISO    string `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int    `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
	Limit           int    `json:"limit,omitempty" jsonschema:"Maximum number of spans to aggregate (default: 1000)"`
}

// ServiceGraphResponse is the get_service_dependency_graph output shape.
type ServiceGraphResponse struct {
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	SpanCount int            `json:"span_count"`
	Graph     depgraph.Graph `json:"graph"`
}

// NewServiceGraphHandler creates a handler for the get_service_dependency_graph tool
func NewServiceGraphHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, ServiceGraphArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args ServiceGraphArgs) (*mcp.CallToolResult, any, error) {
		start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
		if err != nil {
			return nil, nil, err
		}

		limit := args.Limit
		if limit <= 0 {
			limit = defaultSpanLimit
		}

		edges, err := client.SpanEdges(ctx, search.SpanQuery{
			Start: start,
			End:   end,
			Limit: limit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch span edges: %w", err)
		}

		graph := depgraph.Neighborhood(depgraph.Build(edges), args.Service)

		return textResult(ServiceGraphResponse{
			StartTime: start.Format(time.RFC3339),
			EndTime:   end.Format(time.RFC3339),
			SpanCount: len(edges),
			Graph:     graph,
		}), nil, nil
	}
}
