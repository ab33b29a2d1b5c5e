package search

import (
	"fmt"

	"loupe-mcp/internal/models"
)

// mapHits converts raw hits into scored records with documented defaults:
// score 0 when absent, service "unknown", empty message/timestamp.
func mapHits(hits []hit) []models.ScoredRecord {
	records := make([]models.ScoredRecord, 0, len(hits))
	for _, h := range hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}

		rec := models.ScoredRecord{
			ID:        h.ID,
			Score:     score,
			Source:    h.Source,
			Timestamp: stringField(h.Source, "@timestamp"),
			Message:   stringField(h.Source, "message"),
			Service:   stringField(h.Source, "service"),
		}
		if rec.Timestamp == "" {
			rec.Timestamp = stringField(h.Source, "timestamp")
		}
		if rec.Service == "" {
			rec.Service = "unknown"
		}
		if attrs, ok := h.Source["attributes"].(map[string]any); ok {
			rec.Attributes = attrs
		}

		records = append(records, rec)
	}
	return records
}

// Embedding extracts the stored embedding vector from a record's source.
// Returns nil when absent or malformed.
func Embedding(rec models.ScoredRecord) []float64 {
	raw, ok := rec.Source["embedding"].([]any)
	if !ok {
		return nil
	}
	vector := make([]float64, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil
		}
		vector = append(vector, f)
	}
	return vector
}

func stringField(source map[string]any, key string) string {
	v, ok := source[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func floatField(source map[string]any, key string) float64 {
	switch n := source[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func boolField(source map[string]any, key string) bool {
	b, ok := source[key].(bool)
	return ok && b
}
