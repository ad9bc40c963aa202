package mcp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/levslove/tat-mcp-server/pkg/envelope"
	"github.com/levslove/tat-mcp-server/pkg/query"
)

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	ServerName string  `json:"server_name"`
	Version    string  `json:"version"`
	RateLimit  float64 `json:"rate_limit"` // requests per second, 0 disables
	Burst      int     `json:"burst"`
}

// Gateway exposes tool execution over HTTP for the enclosing transport.
type Gateway struct {
	server  *ToolServer
	config  GatewayConfig
	limiter *rate.Limiter
}

func NewGateway(server *ToolServer, config GatewayConfig) *Gateway {
	g := &Gateway{server: server, config: config}
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = int(config.RateLimit)
			if burst < 1 {
				burst = 1
			}
		}
		g.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return g
}

// CapabilityManifest describes the tools this server exposes.
type CapabilityManifest struct {
	ServerName string    `json:"server_name"`
	Version    string    `json:"version"`
	Tools      []ToolRef `json:"tools"`
}

// ExecuteResponse is the wire form of a tool result.
type ExecuteResponse struct {
	Result *ToolExecutionResponse `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// RegisterRoutes registers the gateway's HTTP routes.
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp/v1/capabilities", g.handleCapabilities)
	mux.HandleFunc("/mcp/v1/execute", g.handleExecute)
	mux.HandleFunc("/healthz", g.handleHealth)
}

func (g *Gateway) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	tools := g.server.Catalog().List()
	if q := r.URL.Query().Get("q"); q != "" {
		filtered, err := g.server.Catalog().Search(r.Context(), q)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ExecuteResponse{Error: err.Error()})
			return
		}
		tools = filtered
	}
	writeJSON(w, http.StatusOK, CapabilityManifest{
		ServerName: g.config.ServerName,
		Version:    g.config.Version,
		Tools:      tools,
	})
}

func (g *Gateway) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ExecuteResponse{Error: "POST only"})
		return
	}
	if g.limiter != nil && !g.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, ExecuteResponse{Error: "rate limit exceeded"})
		return
	}

	var req ToolExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ExecuteResponse{Error: "malformed request: " + err.Error()})
		return
	}

	resp, err := g.server.HandleToolCall(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, query.ErrCorpusUnavailable), errors.Is(err, envelope.ErrSigningUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, query.ErrInvalidArgument):
			status = http.StatusBadRequest
		}
		slog.Error("gateway: tool execution failed", "tool", req.ToolName, "error", err)
		writeJSON(w, status, ExecuteResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExecuteResponse{Result: &resp})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("gateway: response encoding failed", "error", err)
	}
}
