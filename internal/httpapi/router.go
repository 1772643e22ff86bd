// Package httpapi serves the MCP SSE transport together with health and
// metrics endpoints.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matheus3301/wppmcp/internal/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MCPHandlers is the pair of endpoints of an MCP SSE transport.
// *server.SSEServer from mcp-go satisfies it.
type MCPHandlers interface {
	SSEHandler() http.Handler
	MessageHandler() http.Handler
}

// Deps are the collaborators of the router.
type Deps struct {
	MCP      MCPHandlers
	Health   *status.Machine
	Gatherer prometheus.Gatherer
	Limiter  *Limiter
	Logger   *zap.Logger
	Tools    int
	Started  time.Time
}

// NewRouter mounts /sse and /message behind the rate limiter, plus
// /healthz and /metrics.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Started.IsZero() {
		d.Started = time.Now()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(d))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Method(http.MethodGet, "/sse", d.MCP.SSEHandler())
		r.Method(http.MethodPost, "/message", d.MCP.MessageHandler())
	})
	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Bridge    string    `json:"bridge"`
	Since     time.Time `json:"since"`
	LastError string    `json:"last_error,omitempty"`
	Tools     int       `json:"tools"`
	UptimeMS  int64     `json:"uptime_ms"`
}

// healthz always answers 200 while the process runs; bridge reachability is
// reported, not enforced, since read tools work without the bridge.
func healthz(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Bridge:   string(status.Unknown),
			Tools:    d.Tools,
			UptimeMS: time.Since(d.Started).Milliseconds(),
		}
		if d.Health != nil {
			snap := d.Health.Snapshot()
			resp.Bridge = string(snap.State)
			resp.Since = snap.Since
			resp.LastError = snap.LastError
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
