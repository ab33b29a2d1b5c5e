// An MCP server implementation that enables AI agents to search, mine, and
// deduplicate telemetry stored in an OpenSearch-compatible backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"loupe-mcp/internal/logger"
	"loupe-mcp/internal/metrics"
	"loupe-mcp/internal/models"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := setupConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	server := newServer(cfg, log, m)

	if cfg.WSAddr != "" {
		ws := newWSServer(cfg, log, m)
		go func() {
			if err := ws.Start(); err != nil {
				log.WithError(err).Error("websocket listener stopped")
			}
		}()
	}

	if cfg.HTTPAddr != "" {
		if err := NewHTTPServer(server, cfg, log, reg).Start(); err != nil {
			log.WithError(err).Fatal("http server failed")
		}
		return
	}

	log.WithField("version", Version).Info("serving over stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.WithError(err).Fatal("stdio server failed")
	}
}

// Version information
var (
	Version   = "dev"     // Set by goreleaser
	CommitSHA = "unknown" // Set by goreleaser
	BuildTime = "unknown" // Set by goreleaser
)

// setupConfig initializes and parses the configuration
func setupConfig() (models.Config, error) {
	fs := flag.NewFlagSet("loupe-mcp", flag.ExitOnError)

	var cfg models.Config
	fs.StringVar(&cfg.SearchURL, "search-url", "", "search backend base URL")
	fs.StringVar(&cfg.SearchUsername, "search-username", "", "search backend basic auth username")
	fs.StringVar(&cfg.SearchPassword, "search-password", "", "search backend basic auth password")
	fs.StringVar(&cfg.LogsIndex, "logs-index", "logs", "index holding log documents")
	fs.StringVar(&cfg.TracesIndex, "traces-index", "traces", "index holding span documents")
	fs.StringVar(&cfg.MetricsIndex, "metrics-index", "metrics", "index holding metric documents")
	fs.StringVar(&cfg.EmbeddingURL, "embedding-url", "http://localhost:11434", "embeddings endpoint base URL")
	fs.StringVar(&cfg.EmbeddingModel, "embedding-model", "nomic-embed-text", "embedding model name")
	fs.Float64Var(&cfg.MinSimilarity, "min-similarity", 0.7, "default minimum similarity for semantic search")
	fs.Float64Var(&cfg.RequestRateLimit, "rate", 10, "search requests per second limit")
	fs.IntVar(&cfg.RequestRateBurst, "burst", 5, "search request burst capacity")
	fs.StringVar(&cfg.HTTPAddr, "http", "", "host:port for HTTP transport; empty serves stdio")
	fs.StringVar(&cfg.WSAddr, "ws", "", "host:port for the websocket JSON-RPC listener; empty disables it")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	var configFile string
	fs.StringVar(&configFile, "config", "", "config file path")

	err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("LOUPE"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.SearchURL == "" {
		return cfg, errors.New("search URL must be provided via -search-url or LOUPE_SEARCH_URL")
	}
	if cfg.MinSimilarity < 0 || cfg.MinSimilarity > 1 {
		return cfg, errors.New("min-similarity must be between 0 and 1")
	}

	return cfg, nil
}
