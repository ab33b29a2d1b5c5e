package assemble

import (
	"context"

	"loupe-mcp/internal/models"

	"github.com/google/uuid"
)

// Enricher attaches surrounding context to formatted records. Implementations
// typically fetch neighboring log lines from the search backend and mutate
// the passed records in place.
type Enricher interface {
	Enrich(ctx context.Context, records []models.FormattedRecord, windowSize int) error
}

// EnrichmentTask tracks a context-enrichment call dispatched in the
// background. Assemble returns before the task completes; callers that need
// the enriched data wait on Done or call Wait. Errors are recorded on the
// task and logged, never returned to the original caller.
type EnrichmentTask struct {
	ID   string
	done chan struct{}
	err  error
}

func newEnrichmentTask() *EnrichmentTask {
	return &EnrichmentTask{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Done is closed once the enrichment call has finished.
func (t *EnrichmentTask) Done() <-chan struct{} {
	return t.done
}

// Err reports the enrichment outcome. Only valid after Done is closed.
func (t *EnrichmentTask) Err() error {
	return t.err
}

// Wait blocks until the task finishes or the context is cancelled.
func (t *EnrichmentTask) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
