package main

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// promptDef defines a prompt's metadata and workflow text. Arguments appear
// in the workflow as $UPPER_SNAKE placeholders.
type promptDef struct {
	prompt   *mcp.Prompt
	workflow string
	argNames []string
}

var promptDefs = []promptDef{
	{
		prompt: &mcp.Prompt{
			Name:        "log-investigation",
			Title:       "Log Investigation",
			Description: "Investigate a service's log activity: surface dominant error patterns, deduplicate noise, and pull surrounding context for the most suspicious entries.",
			Arguments: []*mcp.PromptArgument{
				{Name: "service_name", Description: "Name of the service to investigate", Required: false},
				{Name: "lookback_minutes", Description: "Minutes to look back from now", Required: false},
			},
		},
		workflow: logInvestigationWorkflow,
		argNames: []string{"service_name", "lookback_minutes"},
	},
	{
		prompt: &mcp.Prompt{
			Name:        "latency-investigation",
			Title:       "Latency Investigation",
			Description: "Investigate latency issues: find anomalous span durations, inspect the service dependency graph, and correlate with error logs.",
			Arguments: []*mcp.PromptArgument{
				{Name: "service_name", Description: "Name of the affected service", Required: false},
				{Name: "lookback_minutes", Description: "Minutes to look back from now", Required: false},
			},
		},
		workflow: latencyInvestigationWorkflow,
		argNames: []string{"service_name", "lookback_minutes"},
	},
}

const logInvestigationWorkflow = `Investigate log activity for $SERVICE_NAME over the last $LOOKBACK_MINUTES minutes.

1. Call mine_log_patterns filtered to the service to get the dominant message
   shapes. Note any pattern that is new, growing, or error-leveled.
2. Call deduplicate_logs to get one representative per pattern; review the
   representatives rather than raw logs.
3. For the most suspicious representative, call semantic_log_search with a
   description of the problem and include_context enabled to pull the
   surrounding log lines.
4. Summarize: dominant patterns with counts, the likely failing component,
   and the evidence (sample messages, services involved, time range).`

const latencyInvestigationWorkflow = `Investigate latency for $SERVICE_NAME over the last $LOOKBACK_MINUTES minutes.

1. Call detect_span_anomalies filtered to the service to find unusually slow
   operations.
2. Call get_service_dependency_graph restricted to the service and check
   which downstream edges carry high p95 latency or error rates.
3. Call get_service_logs for the slowest window and look for timeouts,
   retries, or resource errors.
4. Summarize: the slow operations, the dependency edges implicated, and the
   supporting log evidence.`

// registerAllPrompts registers the investigation prompts with the MCP server.
func registerAllPrompts(server *mcp.Server) {
	for _, def := range promptDefs {
		server.AddPrompt(def.prompt, makePromptHandler(def))
	}
}

// makePromptHandler returns a PromptHandler that substitutes argument
// placeholders into the workflow text. Missing arguments leave the
// placeholder as-is for the agent to fill in.
func makePromptHandler(def promptDef) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		workflow := substituteArgs(def.workflow, req.Params.Arguments, def.argNames)

		return &mcp.GetPromptResult{
			Description: def.prompt.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    mcp.Role("user"),
					Content: &mcp.TextContent{Text: workflow},
				},
			},
		}, nil
	}
}

// substituteArgs replaces $UPPER_SNAKE placeholders in text with argument
// values, e.g. "service_name" fills "$SERVICE_NAME".
func substituteArgs(text string, args map[string]string, argNames []string) string {
	for _, name := range argNames {
		val, ok := args[name]
		if !ok || val == "" {
			continue
		}
		placeholder := "$" + strings.ToUpper(name)
		text = strings.ReplaceAll(text, placeholder, val)
	}
	return text
}
