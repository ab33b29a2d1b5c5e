package search

import (
	"context"
	"fmt"
	"time"

	"loupe-mcp/internal/models"
)

// ContextEnricher attaches neighboring log lines to formatted records. It
// satisfies the assembler's Enricher contract.
type ContextEnricher struct {
	client *Client
}

func NewContextEnricher(client *Client) *ContextEnricher {
	return &ContextEnricher{client: client}
}

// Enrich fetches up to windowSize log lines around each record's timestamp
// for the same service and stores their messages on the record. Records
// without a parseable timestamp are skipped.
func (e *ContextEnricher) Enrich(ctx context.Context, records []models.FormattedRecord, windowSize int) error {
	for i := range records {
		ts, err := time.Parse(time.RFC3339, records[i].Timestamp)
		if err != nil {
			continue
		}

		neighbors, err := e.client.SearchLogs(ctx, LogQuery{
			Service: records[i].Service,
			Start:   ts.Add(-time.Minute),
			End:     ts.Add(time.Minute),
			Limit:   windowSize,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch context for record %s: %w", records[i].ID, err)
		}

		lines := make([]string, 0, len(neighbors))
		for _, n := range neighbors {
			if n.ID == records[i].ID {
				continue
			}
			lines = append(lines, n.Message)
		}
		records[i].Context = lines
	}
	return nil
}
