package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loupe-mcp/internal/models"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// HTTPServer wraps the MCP server for HTTP transport
type HTTPServer struct {
	server *mcp.Server
	config models.Config
	log    *logrus.Logger
	reg    *prometheus.Registry
}

// NewHTTPServer creates a new HTTP-based MCP server
func NewHTTPServer(server *mcp.Server, config models.Config, log *logrus.Logger, reg *prometheus.Registry) *HTTPServer {
	return &HTTPServer{server: server, config: config, log: log, reg: reg}
}

// Start starts the HTTP server with streamable HTTP support and blocks until
// shutdown.
func (h *HTTPServer) Start() error {
	mux := http.NewServeMux()

	// Stateless MCP handler for maximum client compatibility: direct tool
	// calls work without session management.
	httpHandler := mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return h.server
	}, nil)

	mux.Handle("/", httpHandler)
	mux.Handle("/mcp", httpHandler)
	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(h.reg, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:         h.config.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	h.log.WithField("addr", h.config.HTTPAddr).Info("MCP server listening")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case sig := <-signalChan:
		h.log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
	case err := <-serverErr:
		h.log.WithError(err).Error("server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		h.log.WithError(err).Error("graceful shutdown failed")
		return err
	}
	h.log.Info("HTTP server shutdown complete")
	return nil
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"server":  "loupe-mcp",
		"version": Version,
	})
}
