package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"loupe-mcp/internal/logpattern"
	"loupe-mcp/internal/metrics"
	"loupe-mcp/internal/models"
	"loupe-mcp/internal/search"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"
	wsstream "github.com/sourcegraph/jsonrpc2/websocket"
)

// wsServer exposes the log pipeline over a websocket JSON-RPC endpoint for
// non-MCP clients (dashboards, scripts). Methods mirror a subset of the MCP
// tools: logs.search, logs.patterns, logs.dedupe, fields.list.
type wsServer struct {
	addr     string
	client   *search.Client
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func newWSServer(cfg models.Config, log *logrus.Logger, m *metrics.Handler) *wsServer {
	return &wsServer{
		addr:   cfg.WSAddr,
		client: search.NewClient(cfg, m, log),
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Start listens for websocket connections and blocks.
func (s *wsServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleUpgrade)

	s.log.WithField("addr", s.addr).Info("websocket JSON-RPC listening")
	return http.ListenAndServe(s.addr, mux)
}

func (s *wsServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ctx := context.Background()
	rpc := jsonrpc2.NewConn(ctx, wsstream.NewObjectStream(conn), jsonrpc2.HandlerWithError(s.handle))
	<-rpc.DisconnectNotify()
}

// wsBatchParams are the shared parameters of the log methods.
type wsBatchParams struct {
	Query           string `json:"query,omitempty"`
	Service         string `json:"service,omitempty"`
	LookbackMinutes int    `json:"lookback_minutes,omitempty"`
	Limit           int    `json:"limit,omitempty"`
}

func (p wsBatchParams) window() (time.Time, time.Time) {
	lookback := p.LookbackMinutes
	if lookback <= 0 {
		lookback = 60
	}
	end := time.Now().UTC()
	return end.Add(-time.Duration(lookback) * time.Minute), end
}

func (s *wsServer) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "logs.search", "logs.patterns", "logs.dedupe":
		var params wsBatchParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
			}
		}
		return s.handleLogs(ctx, req.Method, params)

	case "fields.list":
		return s.client.FieldNames(ctx)

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: "method not supported: " + req.Method,
		}
	}
}

func (s *wsServer) handleLogs(ctx context.Context, method string, params wsBatchParams) (interface{}, error) {
	start, end := params.window()

	limit := params.Limit
	if limit <= 0 {
		limit = 500
	}

	records, err := s.client.SearchLogs(ctx, search.LogQuery{
		Query:   params.Query,
		Service: params.Service,
		Start:   start,
		End:     end,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	switch method {
	case "logs.patterns":
		return logpattern.Mine(records), nil
	case "logs.dedupe":
		return logpattern.Deduplicate(records), nil
	default:
		return records, nil
	}
}
