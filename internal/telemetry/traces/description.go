package traces

// DetectSpanAnomaliesDescription provides the description for the span anomaly tool
const DetectSpanAnomaliesDescription = `Detect spans with anomalous durations.

Span durations are scanned with a statistical detector (z-score by default),
surfacing unusually slow operations. Use this to find latency outliers before
digging into individual traces.

Parameters:
- service: (Optional) Service name to filter by
- operation: (Optional) Operation name to filter by
- detector: (Optional) Detector name: zscore, iqr, percentile or rate_of_change. Default: zscore
- threshold: (Optional) Detector-specific threshold; 0 selects the default
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of spans to analyze. Default: 1000

Returns the flagged spans with service, operation, trace ID, duration, and
anomaly score.`

// GetServiceGraphDescription provides the description for the dependency graph tool
const GetServiceGraphDescription = `Build a service dependency graph from trace data.

Parent/child span pairs are aggregated into nodes (services) and edges
(calls between services) with call counts, error rates, and latency
statistics. Use this to understand how services interact and where errors
or latency concentrate.

Parameters:
- service: (Optional) Restrict the graph to the edges touching this service
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of spans to aggregate. Default: 1000

Returns nodes with in/out call totals and edges with calls, errors,
error_rate, avg_latency_ms, and p95_latency_ms, ordered by call volume.`
