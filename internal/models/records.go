package models

// ScoredRecord is one retrieved document with its relevance or similarity
// score. IDs are unique within a batch but not globally stable.
type ScoredRecord struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Message    string         `json:"message"`
	Service    string         `json:"service"`
	Attributes map[string]any `json:"attributes,omitempty"`

	// Source keeps the raw document for fallback field extraction.
	Source map[string]any `json:"source,omitempty"`
}

// FormattedRecord is the canonical output shape produced by the result
// assembler. Missing source fields degrade to "" / "unknown" / {}.
type FormattedRecord struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Timestamp  string         `json:"timestamp"`
	Message    string         `json:"message"`
	Service    string         `json:"service"`
	TraceID    string         `json:"trace_id,omitempty"`
	SpanID     string         `json:"span_id,omitempty"`
	Severity   string         `json:"severity,omitempty"`
	Attributes map[string]any `json:"attributes"`
	Context    []string       `json:"context,omitempty"`
}
