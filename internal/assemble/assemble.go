// Package assemble turns raw scored search hits into the canonical tool
// output shape: score filtering, field extraction with documented fallbacks,
// and optional deduplication or context enrichment.
package assemble

import (
	"context"
	"fmt"

	"loupe-mcp/internal/logpattern"
	"loupe-mcp/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultMinSimilarity is applied when options carry no threshold.
const DefaultMinSimilarity = 0.7

const defaultContextWindow = 5

// Options controls one assembly pass. IncludeContext takes priority over
// Deduplicate when both are set.
type Options struct {
	MinSimilarity  float64 // <= 0 means DefaultMinSimilarity
	IncludeContext bool
	ContextWindow  int // neighboring lines per record, default 5
	Deduplicate    bool
}

// DedupedRecord is a formatted record standing in for all records sharing
// its pattern.
type DedupedRecord struct {
	models.FormattedRecord
	PatternCount int `json:"pattern_count"`
}

// Result is the assembled output for one batch.
type Result struct {
	Results         []models.FormattedRecord          `json:"results,omitempty"`
	Deduped         []DedupedRecord                   `json:"deduped_results,omitempty"`
	Count           int                               `json:"count"`
	DedupedPatterns map[string]logpattern.PatternStat `json:"deduped_patterns,omitempty"`

	// Enrichment is non-nil when context enrichment was dispatched. The
	// task may still be running when the result is observed.
	Enrichment *EnrichmentTask `json:"-"`
}

// Field fallback chains, probed in order; the first non-empty value wins.
var (
	messageFields   = []string{"message", "log.message", "text_content", "body"}
	serviceFields   = []string{"service", "service.name", "resource.service.name"}
	traceIDFields   = []string{"trace_id", "trace.id"}
	spanIDFields    = []string{"span_id", "span.id"}
	severityFields  = []string{"severity", "log.level", "level"}
	timestampFields = []string{"@timestamp", "timestamp", "time"}
)

// Assembler formats scored records for tool responses. The enricher may be
// nil, in which case IncludeContext is a no-op.
type Assembler struct {
	enricher Enricher
	log      *logrus.Logger
}

func New(enricher Enricher, log *logrus.Logger) *Assembler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assembler{enricher: enricher, log: log}
}

// Assemble filters records below the similarity threshold, formats the
// survivors, and applies at most one post-processing mode. When
// IncludeContext is set the enrichment call is dispatched in the background
// and the result is returned immediately; the caller can wait on
// Result.Enrichment. Malformed sources never fail the call.
func (a *Assembler) Assemble(ctx context.Context, records []models.ScoredRecord, opts Options) Result {
	minScore := opts.MinSimilarity
	if minScore <= 0 {
		minScore = DefaultMinSimilarity
	}

	formatted := make([]models.FormattedRecord, 0, len(records))
	for _, rec := range records {
		if rec.Score < minScore {
			continue
		}
		formatted = append(formatted, Format(rec))
	}

	if opts.IncludeContext && a.enricher != nil {
		window := opts.ContextWindow
		if window <= 0 {
			window = defaultContextWindow
		}
		task := newEnrichmentTask()
		go func() {
			if err := a.enricher.Enrich(ctx, formatted, window); err != nil {
				task.err = err
				a.log.WithError(err).WithField("task", task.ID).Warn("context enrichment failed")
			}
			close(task.done)
		}()
		return Result{Results: formatted, Count: len(formatted), Enrichment: task}
	}

	if opts.Deduplicate {
		return a.deduplicate(formatted)
	}

	return Result{Results: formatted, Count: len(formatted)}
}

func (a *Assembler) deduplicate(formatted []models.FormattedRecord) Result {
	// Dedupe runs over the formatted view of the batch so representatives
	// carry the extracted message and service fields.
	byID := make(map[string]models.FormattedRecord, len(formatted))
	scored := make([]models.ScoredRecord, len(formatted))
	for i, f := range formatted {
		byID[f.ID] = f
		scored[i] = models.ScoredRecord{
			ID:         f.ID,
			Score:      f.Score,
			Timestamp:  f.Timestamp,
			Message:    f.Message,
			Service:    f.Service,
			Attributes: f.Attributes,
		}
	}

	deduped := logpattern.Deduplicate(scored)
	out := make([]DedupedRecord, 0, len(deduped.Representatives))
	for _, rep := range deduped.Representatives {
		f, ok := byID[rep.ID]
		if !ok {
			continue
		}
		out = append(out, DedupedRecord{FormattedRecord: f, PatternCount: rep.PatternCount})
	}

	return Result{
		Deduped:         out,
		Count:           len(out),
		DedupedPatterns: deduped.PatternStats,
	}
}

// Format maps one scored record into the canonical shape. Missing fields
// degrade to "" / "unknown" / {}.
func Format(rec models.ScoredRecord) models.FormattedRecord {
	f := models.FormattedRecord{
		ID:        rec.ID,
		Score:     rec.Score,
		Timestamp: rec.Timestamp,
		Message:   rec.Message,
		Service:   rec.Service,
	}

	if f.Message == "" {
		f.Message = firstString(rec.Source, messageFields)
	}
	if f.Service == "" {
		f.Service = firstString(rec.Source, serviceFields)
	}
	if f.Service == "" {
		f.Service = "unknown"
	}
	if f.Timestamp == "" {
		f.Timestamp = firstString(rec.Source, timestampFields)
	}
	f.TraceID = firstString(rec.Source, traceIDFields)
	f.SpanID = firstString(rec.Source, spanIDFields)
	f.Severity = firstString(rec.Source, severityFields)

	f.Attributes = rec.Attributes
	if f.Attributes == nil {
		if attrs, ok := rec.Source["attributes"].(map[string]any); ok {
			f.Attributes = attrs
		} else {
			f.Attributes = map[string]any{}
		}
	}

	return f
}

// firstString probes the source map with an ordered fallback chain and
// returns the first non-empty string value.
func firstString(source map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := source[key]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case string:
			if s != "" {
				return s
			}
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}
