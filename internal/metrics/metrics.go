package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Handler bundles the Prometheus collectors for the server. Constructed once
// per process and passed down explicitly so tests can use their own registry.
type Handler struct {
	ToolCallsTotal      *prometheus.CounterVec
	ToolCallLatency     *prometheus.HistogramVec
	SearchRequestsTotal *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Handler {
	h := &Handler{
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "The total number of MCP tool calls",
		}, []string{"tool", "status"}),
		ToolCallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tool_call_latency_seconds",
			Help:    "The latency of MCP tool calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		SearchRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "The total number of requests sent to the search backend",
		}, []string{"status"}),
	}
	reg.MustRegister(h.ToolCallsTotal, h.ToolCallLatency, h.SearchRequestsTotal)
	return h
}

// ObserveToolCall records one completed tool call.
func (h *Handler) ObserveToolCall(tool, status string, duration time.Duration) {
	h.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	h.ToolCallLatency.WithLabelValues(tool).Observe(duration.Seconds())
}

// IncSearchRequests increments the backend request counter.
func (h *Handler) IncSearchRequests(status string) {
	h.SearchRequestsTotal.WithLabelValues(status).Inc()
}
