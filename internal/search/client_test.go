package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loupe-mcp/internal/models"
)

func testConfig(url string) models.Config {
	return models.Config{
		SearchURL:        url,
		LogsIndex:        "logs",
		TracesIndex:      "traces",
		MetricsIndex:     "metrics",
		RequestRateLimit: 100,
		RequestRateBurst: 10,
	}
}

func TestSearchLogs(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": 2},
				"hits": []map[string]any{
					{
						"_id":    "doc1",
						"_score": 1.5,
						"_source": map[string]any{
							"message":    "Connection timeout after 5000ms",
							"service":    "api",
							"@timestamp": "2023-05-01T10:00:00Z",
							"attributes": map[string]any{"pod": "api-0"},
						},
					},
					{
						"_id":     "doc2",
						"_source": map[string]any{"message": "disk full"},
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	records, err := client.SearchLogs(context.Background(), LogQuery{
		Service:         "api",
		SeverityFilters: []string{"error"},
		Start:           time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2023, 5, 1, 11, 0, 0, 0, time.UTC),
		Limit:           50,
	})
	if err != nil {
		t.Fatalf("SearchLogs() error: %v", err)
	}

	if gotPath != "/logs/_search" {
		t.Errorf("request path = %s, want /logs/_search", gotPath)
	}
	if gotBody["size"] != float64(50) {
		t.Errorf("query size = %v, want 50", gotBody["size"])
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "doc1" || records[0].Score != 1.5 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].Service != "api" || records[0].Timestamp != "2023-05-01T10:00:00Z" {
		t.Errorf("first record fields = %+v", records[0])
	}
	if records[0].Attributes["pod"] != "api-0" {
		t.Errorf("attributes not mapped: %v", records[0].Attributes)
	}

	// Missing score and service degrade to defaults.
	if records[1].Score != 0 {
		t.Errorf("missing score should map to 0, got %v", records[1].Score)
	}
	if records[1].Service != "unknown" {
		t.Errorf("missing service should map to unknown, got %q", records[1].Service)
	}
}

func TestSearchLogs_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"shard failure"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	_, err := client.SearchLogs(context.Background(), LogQuery{})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status code, got: %v", err)
	}
}

func TestMetricSeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/metrics/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {"total": {"value": 0}, "hits": []},
			"aggregations": {
				"series": {
					"buckets": [
						{"key_as_string": "2023-05-01T10:00:00Z", "value": {"value": 12.5}},
						{"key_as_string": "2023-05-01T10:01:00Z", "value": {"value": null}},
						{"key_as_string": "2023-05-01T10:02:00Z", "value": {"value": 99.0}}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	points, err := client.MetricSeries(context.Background(), MetricQuery{Field: "cpu_usage"})
	if err != nil {
		t.Fatalf("MetricSeries() error: %v", err)
	}

	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if points[0].Value != 12.5 {
		t.Errorf("first value = %v, want 12.5", points[0].Value)
	}
	if points[1].Value != 0 {
		t.Errorf("null bucket should map to 0, got %v", points[1].Value)
	}
}

func TestMetricSeries_RequiresField(t *testing.T) {
	client := NewClient(testConfig("http://localhost:9200"), nil, nil)
	if _, err := client.MetricSeries(context.Background(), MetricQuery{}); err == nil {
		t.Error("expected error for missing metric field")
	}
}

func TestSpanEdges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"hits": []map[string]any{
					{"_id": "s1", "_source": map[string]any{
						"parent_service": "frontend", "service": "api", "duration_ms": 12.0, "error": true,
					}},
					{"_id": "s2", "_source": map[string]any{
						"parent_service": "api", "service": "postgres", "duration_ms": 3.0,
					}},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	edges, err := client.SpanEdges(context.Background(), SpanQuery{})
	if err != nil {
		t.Fatalf("SpanEdges() error: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if edges[0].Parent != "frontend" || edges[0].Child != "api" || !edges[0].Error {
		t.Errorf("first edge = %+v", edges[0])
	}
}

func TestFieldNames_Cached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"logs": {"mappings": {"properties": {
				"message": {"type": "text"},
				"service": {"type": "keyword"},
				"@timestamp": {"type": "date"}
			}}}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	fields, err := client.FieldNames(context.Background())
	if err != nil {
		t.Fatalf("FieldNames() error: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(fields))
	}
	if fields[0] != "@timestamp" {
		t.Errorf("fields should be sorted, got %v", fields)
	}

	if _, err := client.FieldNames(context.Background()); err != nil {
		t.Fatalf("cached FieldNames() error: %v", err)
	}
	if requests != 1 {
		t.Errorf("backend hit %d times, want 1 (second call cached)", requests)
	}
}

func TestEmbedding(t *testing.T) {
	rec := models.ScoredRecord{Source: map[string]any{
		"embedding": []any{0.1, 0.2, 0.3},
	}}
	vec := Embedding(rec)
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("Embedding() = %v, want [0.1 0.2 0.3]", vec)
	}

	if Embedding(models.ScoredRecord{Source: map[string]any{}}) != nil {
		t.Error("missing embedding should return nil")
	}
	if Embedding(models.ScoredRecord{Source: map[string]any{"embedding": []any{"bad"}}}) != nil {
		t.Error("malformed embedding should return nil")
	}
}
