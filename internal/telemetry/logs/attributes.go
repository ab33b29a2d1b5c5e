package logs

import (
	"context"
	"fmt"

	"loupe-mcp/internal/search"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetLogAttributesArgs represents the input arguments for the get_log_attributes tool
type GetLogAttributesArgs struct{}

// NewGetLogAttributesHandler creates a handler for the get_log_attributes tool
func NewGetLogAttributesHandler(client *search.Client) func(context.Context, *mcp.CallToolRequest, GetLogAttributesArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args GetLogAttributesArgs) (*mcp.CallToolResult, any, error) {
		fields, err := client.FieldNames(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch log attributes: %w", err)
		}

		return textResult(map[string]any{
			"count":      len(fields),
			"attributes": fields,
		}), nil, nil
	}
}
