// Package search is the OpenSearch/Elasticsearch adapter: it translates
// typed queries into query DSL JSON, executes them over HTTP, and maps hits
// back into scored records.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"loupe-mcp/internal/depgraph"
	"loupe-mcp/internal/metrics"
	"loupe-mcp/internal/models"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const fieldCacheTTL = 2 * time.Hour

// Client talks to the search backend. All requests pass through the rate
// limiter; field lookups are cached.
type Client struct {
	baseURL      string
	username     string
	password     string
	logsIndex    string
	tracesIndex  string
	metricsIndex string

	httpClient *http.Client
	limiter    *rate.Limiter
	fieldCache *gocache.Cache
	metrics    *metrics.Handler
	log        *logrus.Logger
}

// NewClient builds a client from server config. The metrics handler may be
// nil in tests.
func NewClient(cfg models.Config, m *metrics.Handler, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}

	limit := cfg.RequestRateLimit
	if limit <= 0 {
		limit = 10
	}
	burst := cfg.RequestRateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.SearchURL, "/"),
		username:     cfg.SearchUsername,
		password:     cfg.SearchPassword,
		logsIndex:    cfg.LogsIndex,
		tracesIndex:  cfg.TracesIndex,
		metricsIndex: cfg.MetricsIndex,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(limit), burst),
		fieldCache:   gocache.New(fieldCacheTTL, 10*time.Minute),
		metrics:      m,
		log:          log,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []hit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type hit struct {
	ID     string         `json:"_id"`
	Score  *float64       `json:"_score"`
	Source map[string]any `json:"_source"`
}

// SearchLogs executes a log query and maps the hits to scored records.
func (c *Client) SearchLogs(ctx context.Context, q LogQuery) ([]models.ScoredRecord, error) {
	resp, err := c.search(ctx, c.logsIndex, buildLogQuery(q))
	if err != nil {
		return nil, err
	}
	return mapHits(resp.Hits.Hits), nil
}

// SeriesPoint is one bucket of a metric series.
type SeriesPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MetricSeries fetches an averaged time series for a numeric field.
func (c *Client) MetricSeries(ctx context.Context, q MetricQuery) ([]SeriesPoint, error) {
	if q.Field == "" {
		return nil, fmt.Errorf("metric field is required")
	}

	resp, err := c.search(ctx, c.metricsIndex, buildMetricSeriesQuery(q))
	if err != nil {
		return nil, err
	}

	raw, ok := resp.Aggregations["series"]
	if !ok {
		return nil, nil
	}

	var agg struct {
		Buckets []struct {
			KeyAsString string `json:"key_as_string"`
			Value       struct {
				Value *float64 `json:"value"`
			} `json:"value"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode series aggregation: %w", err)
	}

	points := make([]SeriesPoint, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		point := SeriesPoint{Timestamp: b.KeyAsString}
		if b.Value.Value != nil {
			point.Value = *b.Value.Value
		}
		points = append(points, point)
	}
	return points, nil
}

// SpanRecord is one span document from the trace index.
type SpanRecord struct {
	Service    string  `json:"service"`
	Operation  string  `json:"operation"`
	DurationMs float64 `json:"duration_ms"`
	Timestamp  string  `json:"timestamp"`
	TraceID    string  `json:"trace_id"`
	Error      bool    `json:"error"`
}

// SpanDurations fetches spans for duration analysis.
func (c *Client) SpanDurations(ctx context.Context, q SpanQuery) ([]SpanRecord, error) {
	resp, err := c.search(ctx, c.tracesIndex, buildSpanQuery(q))
	if err != nil {
		return nil, err
	}

	spans := make([]SpanRecord, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		spans = append(spans, SpanRecord{
			Service:    stringField(h.Source, "service"),
			Operation:  stringField(h.Source, "operation"),
			DurationMs: floatField(h.Source, "duration_ms"),
			Timestamp:  stringField(h.Source, "@timestamp"),
			TraceID:    stringField(h.Source, "trace_id"),
			Error:      boolField(h.Source, "error"),
		})
	}
	return spans, nil
}

// SpanEdges fetches parent/child service pairs for dependency-graph
// construction.
func (c *Client) SpanEdges(ctx context.Context, q SpanQuery) ([]depgraph.SpanEdge, error) {
	resp, err := c.search(ctx, c.tracesIndex, buildSpanQuery(q))
	if err != nil {
		return nil, err
	}

	edges := make([]depgraph.SpanEdge, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		edges = append(edges, depgraph.SpanEdge{
			Parent:     stringField(h.Source, "parent_service"),
			Child:      stringField(h.Source, "service"),
			DurationMs: floatField(h.Source, "duration_ms"),
			Error:      boolField(h.Source, "error"),
		})
	}
	return edges, nil
}

// FieldNames lists the log index's mapped field names. Results are cached.
func (c *Client) FieldNames(ctx context.Context) ([]string, error) {
	if cached, ok := c.fieldCache.Get("fields:" + c.logsIndex); ok {
		return cached.([]string), nil
	}

	body, err := c.get(ctx, "/"+c.logsIndex+"/_mapping")
	if err != nil {
		return nil, err
	}

	var mapping map[string]struct {
		Mappings struct {
			Properties map[string]json.RawMessage `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(body, &mapping); err != nil {
		return nil, fmt.Errorf("failed to decode mapping: %w", err)
	}

	fieldSet := map[string]bool{}
	for _, idx := range mapping {
		for name := range idx.Mappings.Properties {
			fieldSet[name] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for name := range fieldSet {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	c.fieldCache.Set("fields:"+c.logsIndex, fields, gocache.DefaultExpiration)
	return fields, nil
}

func (c *Client) search(ctx context.Context, index string, body map[string]any) (*searchResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/"+index+"/_search", payload)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe("error")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.observe("error")
		return nil, fmt.Errorf("search backend returned status %d: %s", resp.StatusCode, string(body))
	}

	c.observe("ok")
	return body, nil
}

func (c *Client) observe(status string) {
	if c.metrics != nil {
		c.metrics.IncSearchRequests(status)
	}
}
