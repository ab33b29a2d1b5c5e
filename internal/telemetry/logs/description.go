package logs

// GetLogsDescription provides the description for the get_logs tool
const GetLogsDescription = `Get raw log entries matching a full-text query over a time range.

Filtering behavior:
- query: full-text match against the log message
- service: exact service name filter
- severity_filters: array of severity patterns (e.g. ["error", "warn"]) - uses OR logic
- body_filters: array of message content patterns - uses OR logic
- Filter types are combined with AND logic

Parameters:
- query: (Optional) Full-text query against the message field
- service: (Optional) Service name to filter by
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of entries to return. Default: 20
- severity_filters: (Optional) Severity patterns
- body_filters: (Optional) Message content patterns

Returns matching log entries with message, service, timestamp, severity, and attributes.`

// GetServiceLogsDescription provides the description for the service logs tool
const GetServiceLogsDescription = `Get raw log entries for a specific service over a time range.

Useful for debugging issues, monitoring service behavior, and inspecting recent activity.

Parameters:
- service: (Required) Name of the service to get logs for
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of entries to return. Default: 20
- severity_filters: (Optional) Severity patterns, OR logic
- body_filters: (Optional) Message content patterns, OR logic

Returns matching log entries for the service, newest first.`

// SemanticLogSearchDescription provides the description for the semantic search tool
const SemanticLogSearchDescription = `Search logs by meaning rather than exact keywords.

The query is embedded and compared against stored log embeddings using cosine
similarity; results below min_similarity are dropped.

Parameters:
- query: (Required) Natural language description of the logs to find (e.g. "database connection problems")
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of results. Default: 20
- min_similarity: (Optional) Minimum similarity score in [0,1]. Default: 0.7
- include_context: (Optional) Attach surrounding log lines to each result.
  Context is fetched in the background; the response may arrive before it completes.
- deduplicate: (Optional) Collapse results to one representative per log pattern

Returns scored results sorted by similarity, plus pattern statistics when deduplicating.`

// MinePatternsDescription provides the description for the pattern mining tool
const MinePatternsDescription = `Mine structural log patterns from a batch of logs.

Volatile tokens (numbers, UUIDs, hashes, timestamps) are masked and identical
templates are grouped, surfacing the most frequent message shapes. Use this to
summarize noisy logs or spot new error classes.

Parameters:
- query: (Optional) Full-text filter before mining
- service: (Optional) Service name filter
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of logs to mine over. Default: 500

Returns pattern groups ordered by frequency with counts, score statistics,
sample records, and the services each pattern was seen in.`

// DeduplicateLogsDescription provides the description for the dedup tool
const DeduplicateLogsDescription = `Collapse a batch of logs to one representative per structural pattern.

Each representative is the highest-scoring member of its pattern and carries
the number of records it stands for. Useful for reviewing large result sets
without repeated noise.

Parameters:
- query: (Optional) Full-text filter before deduplication
- service: (Optional) Service name filter
- start_time_iso / end_time_iso: (Optional) ISO 8601 time range
- lookback_minutes: (Optional) Minutes to look back from now. Default: 60
- limit: (Optional) Maximum number of logs to deduplicate. Default: 500

Returns representatives sorted by score plus per-pattern statistics.`

// GetLogAttributesDescription provides the description for the attributes tool
const GetLogAttributesDescription = `List the field names available on log documents.

Field names are read from the index mapping and cached. Use this to discover
filterable attributes before building queries.`
