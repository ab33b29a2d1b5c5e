package logs

import (
	"context"
	"fmt"
	"sort"

	"loupe-mcp/internal/assemble"
	"loupe-mcp/internal/embedding"
	"loupe-mcp/internal/models"
	"loupe-mcp/internal/search"
	"loupe-mcp/internal/similarity"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// semanticCandidateFactor oversamples candidates so the similarity filter
// still has enough survivors to fill the requested limit.
const semanticCandidateFactor = 5

// SemanticSearchArgs represents the input arguments for the semantic_log_search tool
type SemanticSearchArgs struct {
	Query           string  `json:"query" jsonschema:"Natural language description of the logs to find (e.g. database connection problems)"`
	Service         string  `json:"service,omitempty" jsonschema:"Service name to filter by"`
	StartTimeISO    string  `json:"start_time_iso,omitempty" jsonschema:"Start time in ISO 8601 format"`
	EndTimeISO      string  `json:"end_time_iso,omitempty" jsonschema:"End time in ISO 8601 format"`
	LookbackMinutes int     `json:"lookback_minutes,omitempty" jsonschema:"Minutes to look back from now (default: 60)"`
	Limit           int     `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default: 20)"`
	MinSimilarity   float64 `json:"min_similarity,omitempty" jsonschema:"Minimum similarity score in [0 1] (default: 0.7)"`
	IncludeContext  bool    `json:"include_context,omitempty" jsonschema:"Attach surrounding log lines to each result"`
	Deduplicate     bool    `json:"deduplicate,omitempty" jsonschema:"Collapse results to one representative per log pattern"`
}

// NewSemanticSearchHandler creates a handler for the semantic_log_search tool
func NewSemanticSearchHandler(client *search.Client, provider embedding.Provider, assembler *assemble.Assembler, cfg models.Config) func(context.Context, *mcp.CallToolRequest, SemanticSearchArgs) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args SemanticSearchArgs) (*mcp.CallToolResult, any, error) {
		if args.Query == "" {
			return nil, nil, fmt.Errorf("query parameter is required")
		}

		start, end, err := timeRange(args.StartTimeISO, args.EndTimeISO, args.LookbackMinutes)
		if err != nil {
			return nil, nil, err
		}

		limit := args.Limit
		if limit <= 0 {
			limit = defaultLogLimit
		}

		queryVec, err := provider.Embed(ctx, args.Query)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to embed query: %w", err)
		}

		candidates, err := client.SearchLogs(ctx, search.LogQuery{
			Service:        args.Service,
			Start:          start,
			End:            end,
			Limit:          limit * semanticCandidateFactor,
			WithEmbeddings: true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch candidates: %w", err)
		}

		scored := scoreCandidates(queryVec, candidates)
		if len(scored) > limit {
			scored = scored[:limit]
		}

		minSimilarity := args.MinSimilarity
		if minSimilarity <= 0 {
			minSimilarity = cfg.MinSimilarity
		}

		result := assembler.Assemble(ctx, scored, assemble.Options{
			MinSimilarity:  minSimilarity,
			IncludeContext: args.IncludeContext,
			Deduplicate:    args.Deduplicate,
		})
		if result.Enrichment != nil {
			// Enrichment runs in the background; give it until the request
			// context expires to land before serializing. Failures leave
			// records without context rather than failing the call.
			result.Enrichment.Wait(ctx)
		}

		return textResult(result), nil, nil
	}
}

// scoreCandidates replaces each candidate's backend relevance score with the
// cosine similarity between its stored embedding and the query vector.
// Candidates without a usable embedding score zero and fall to the filter.
func scoreCandidates(queryVec []float64, candidates []models.ScoredRecord) []models.ScoredRecord {
	scored := make([]models.ScoredRecord, 0, len(candidates))
	for _, rec := range candidates {
		rec.Score = similarity.Cosine(queryVec, search.Embedding(rec))
		scored = append(scored, rec)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
