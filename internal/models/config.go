package models

// Config holds the server configuration parameters
type Config struct {
	// Search backend connection settings
	SearchURL      string // OpenSearch/Elasticsearch base URL
	SearchUsername string // Basic auth username (optional)
	SearchPassword string // Basic auth password (optional)

	// Index names
	LogsIndex    string // Index holding log documents
	TracesIndex  string // Index holding span documents
	MetricsIndex string // Index holding metric documents

	// Embedding provider settings
	EmbeddingURL   string // Ollama-compatible embeddings endpoint base URL
	EmbeddingModel string // Embedding model name

	// Semantic search defaults
	MinSimilarity float64 // Default minimum similarity score for results

	// Rate limiting configuration
	RequestRateLimit float64 // Maximum search requests per second
	RequestRateBurst int     // Maximum burst capacity for requests

	// Transport settings
	HTTPAddr string // host:port for the HTTP transport; empty means stdio
	WSAddr   string // host:port for the websocket JSON-RPC listener; empty disables it

	// Logging
	LogLevel string // debug, info, warn, error
}
