package search

import (
	"time"
)

// LogQuery describes one log search.
type LogQuery struct {
	Query           string   // Full-text match on the message field
	Service         string   // Exact service filter
	SeverityFilters []string // Severity patterns, OR logic
	BodyFilters     []string // Message content patterns, OR logic
	Start           time.Time
	End             time.Time
	Limit           int
	WithEmbeddings  bool // Include the stored embedding field in _source
}

// MetricQuery describes one metric series fetch.
type MetricQuery struct {
	Field    string // Numeric field to average per bucket
	Service  string
	Interval string // date_histogram interval, e.g. "1m"
	Start    time.Time
	End      time.Time
}

// SpanQuery describes one span fetch from the trace index.
type SpanQuery struct {
	Service   string
	Operation string
	Start     time.Time
	End       time.Time
	Limit     int
}

const defaultLimit = 100

// buildLogQuery translates a LogQuery into the search engine's query DSL.
func buildLogQuery(q LogQuery) map[string]any {
	filters := []map[string]any{timeRangeFilter(q.Start, q.End)}

	if q.Service != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"service": q.Service},
		})
	}
	if len(q.SeverityFilters) > 0 {
		filters = append(filters, orRegexpFilter("severity", q.SeverityFilters))
	}
	if len(q.BodyFilters) > 0 {
		filters = append(filters, orRegexpFilter("message", q.BodyFilters))
	}

	boolQuery := map[string]any{"filter": filters}
	if q.Query != "" {
		boolQuery["must"] = []map[string]any{
			{"match": map[string]any{"message": q.Query}},
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	body := map[string]any{
		"size":  limit,
		"query": map[string]any{"bool": boolQuery},
		"sort": []map[string]any{
			{"@timestamp": map[string]any{"order": "desc"}},
		},
	}
	if !q.WithEmbeddings {
		body["_source"] = map[string]any{"excludes": []string{"embedding"}}
	}
	return body
}

// buildMetricSeriesQuery produces a date_histogram with an avg sub-aggregation.
func buildMetricSeriesQuery(q MetricQuery) map[string]any {
	filters := []map[string]any{timeRangeFilter(q.Start, q.End)}
	if q.Service != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"service": q.Service},
		})
	}

	interval := q.Interval
	if interval == "" {
		interval = "1m"
	}

	return map[string]any{
		"size":  0,
		"query": map[string]any{"bool": map[string]any{"filter": filters}},
		"aggs": map[string]any{
			"series": map[string]any{
				"date_histogram": map[string]any{
					"field":          "@timestamp",
					"fixed_interval": interval,
					"min_doc_count":  0,
				},
				"aggs": map[string]any{
					"value": map[string]any{
						"avg": map[string]any{"field": q.Field},
					},
				},
			},
		},
	}
}

// buildSpanQuery fetches raw span documents for duration analysis and
// dependency-graph construction.
func buildSpanQuery(q SpanQuery) map[string]any {
	filters := []map[string]any{timeRangeFilter(q.Start, q.End)}
	if q.Service != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"service": q.Service},
		})
	}
	if q.Operation != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"operation": q.Operation},
		})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}

	return map[string]any{
		"size":  limit,
		"query": map[string]any{"bool": map[string]any{"filter": filters}},
		"sort": []map[string]any{
			{"@timestamp": map[string]any{"order": "desc"}},
		},
	}
}

func timeRangeFilter(start, end time.Time) map[string]any {
	rangeBody := map[string]any{}
	if !start.IsZero() {
		rangeBody["gte"] = start.UTC().Format(time.RFC3339)
	}
	if !end.IsZero() {
		rangeBody["lte"] = end.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"range": map[string]any{"@timestamp": rangeBody},
	}
}

// orRegexpFilter builds a should-clause of case-insensitive regexp matches,
// one per pattern.
func orRegexpFilter(field string, patterns []string) map[string]any {
	should := make([]map[string]any, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		should = append(should, map[string]any{
			"regexp": map[string]any{
				field: map[string]any{
					"value":            ".*" + p + ".*",
					"case_insensitive": true,
				},
			},
		})
	}
	return map[string]any{
		"bool": map[string]any{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}
