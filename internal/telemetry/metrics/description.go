package metrics

// DetectMetricAnomaliesDescription provides the description for the metric anomaly tool
const DetectMetricAnomaliesDescription = `Detect anomalous points in a metric time series.

The metric is bucketed into a fixed-interval series and scanned with a
statistical detector. Use this to find spikes, drops, or sustained shifts
in request rates, latencies, or resource usage.

Detectors:
- zscore: points more than threshold standard deviations from the mean (default threshold: 3)
- iqr: points outside threshold * IQR beyond the quartiles (default factor: 1.5)
- percentile: points above the threshold percentile (default: 95)
- rate_of_change: points changing more than threshold fraction from the previous point (default: 0.5)

Parameters:
- field: (Required) Numeric metric field to analyze (e.g. cpu_usage, response_time_ms)
- service: (Optional) Service name to filter by
- detector: (Optional) Detector name. Default: zscore
- threshold: (Optional) Detector-specific threshold; 0 selects the default
- interval: (Optional) Bucket interval (e.g. 1m, 5m). Default: 1m
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60

Returns the flagged points with their values, scores, expected values, and
bucket timestamps.`
