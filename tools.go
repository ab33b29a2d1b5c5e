package main

import (
	"context"
	"time"

	"loupe-mcp/internal/assemble"
	"loupe-mcp/internal/embedding"
	"loupe-mcp/internal/metrics"
	"loupe-mcp/internal/models"
	"loupe-mcp/internal/search"
	logstools "loupe-mcp/internal/telemetry/logs"
	metricstools "loupe-mcp/internal/telemetry/metrics"
	tracestools "loupe-mcp/internal/telemetry/traces"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

const embedCacheTTL = 30 * time.Minute

// newServer builds the MCP server with all tools and prompts registered.
func newServer(cfg models.Config, log *logrus.Logger, m *metrics.Handler) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "loupe-mcp",
		Version: Version,
	}, nil)

	client := search.NewClient(cfg, m, log)
	provider := embedding.NewCached(
		embedding.NewOllamaClient(cfg.EmbeddingURL, cfg.EmbeddingModel),
		embedCacheTTL,
	)
	assembler := assemble.New(search.NewContextEnricher(client), log)

	registerAllTools(server, cfg, client, provider, assembler, m)
	registerAllPrompts(server)

	return server
}

// registerAllTools registers all tools with the MCP server
func registerAllTools(server *mcp.Server, cfg models.Config, client *search.Client, provider embedding.Provider, assembler *assemble.Assembler, m *metrics.Handler) {
	// Register logs tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_logs",
		Description: logstools.GetLogsDescription,
	}, instrumented(m, "get_logs", logstools.NewGetLogsHandler(client)))

	// Register service logs tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_service_logs",
		Description: logstools.GetServiceLogsDescription,
	}, instrumented(m, "get_service_logs", logstools.NewGetServiceLogsHandler(client)))

	// Register semantic search tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "semantic_log_search",
		Description: logstools.SemanticLogSearchDescription,
	}, instrumented(m, "semantic_log_search", logstools.NewSemanticSearchHandler(client, provider, assembler, cfg)))

	// Register pattern mining tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "mine_log_patterns",
		Description: logstools.MinePatternsDescription,
	}, instrumented(m, "mine_log_patterns", logstools.NewMinePatternsHandler(client)))

	// Register deduplication tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "deduplicate_logs",
		Description: logstools.DeduplicateLogsDescription,
	}, instrumented(m, "deduplicate_logs", logstools.NewDeduplicateHandler(client)))

	// Register log attributes tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_log_attributes",
		Description: logstools.GetLogAttributesDescription,
	}, instrumented(m, "get_log_attributes", logstools.NewGetLogAttributesHandler(client)))

	// Register metric anomaly tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_metric_anomalies",
		Description: metricstools.DetectMetricAnomaliesDescription,
	}, instrumented(m, "detect_metric_anomalies", metricstools.NewDetectAnomaliesHandler(client)))

	// Register span anomaly tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_span_anomalies",
		Description: tracestools.DetectSpanAnomaliesDescription,
	}, instrumented(m, "detect_span_anomalies", tracestools.NewDetectSpanAnomaliesHandler(client)))

	// Register service dependency graph tool
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_service_dependency_graph",
		Description: tracestools.GetServiceGraphDescription,
	}, instrumented(m, "get_service_dependency_graph", tracestools.NewServiceGraphHandler(client)))
}

// instrumented wraps a tool handler with call count and latency metrics.
func instrumented[In any](m *metrics.Handler, name string, h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		res, out, err := h(ctx, req, args)

		status := "success"
		if err != nil {
			status = "error"
		}
		m.ObserveToolCall(name, status, time.Since(start))

		return res, out, err
	}
}
