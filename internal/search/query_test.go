package search

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuildLogQuery(t *testing.T) {
	q := LogQuery{
		Query:           "timeout",
		Service:         "api",
		SeverityFilters: []string{"error", "warn"},
		BodyFilters:     []string{"connection"},
		Start:           time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2023, 5, 1, 11, 0, 0, 0, time.UTC),
		Limit:           25,
	}

	body := buildLogQuery(q)
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("query does not marshal: %v", err)
	}
	dsl := string(raw)

	for _, want := range []string{
		`"size":25`,
		`"term":{"service":"api"}`,
		`"match":{"message":"timeout"}`,
		`"gte":"2023-05-01T09:00:00Z"`,
		`"lte":"2023-05-01T11:00:00Z"`,
		`"case_insensitive":true`,
		`".*error.*"`,
		`".*connection.*"`,
		`"excludes":["embedding"]`,
	} {
		if !strings.Contains(dsl, want) {
			t.Errorf("query DSL missing %s:\n%s", want, dsl)
		}
	}
}

func TestBuildLogQuery_Defaults(t *testing.T) {
	body := buildLogQuery(LogQuery{WithEmbeddings: true})
	if body["size"] != defaultLimit {
		t.Errorf("size = %v, want default %d", body["size"], defaultLimit)
	}
	if _, ok := body["_source"]; ok {
		t.Error("embedding field should not be excluded when WithEmbeddings is set")
	}
}

func TestBuildMetricSeriesQuery(t *testing.T) {
	body := buildMetricSeriesQuery(MetricQuery{Field: "latency_ms", Interval: "5m"})
	raw, _ := json.Marshal(body)
	dsl := string(raw)

	for _, want := range []string{
		`"size":0`,
		`"fixed_interval":"5m"`,
		`"avg":{"field":"latency_ms"}`,
	} {
		if !strings.Contains(dsl, want) {
			t.Errorf("series DSL missing %s:\n%s", want, dsl)
		}
	}
}
