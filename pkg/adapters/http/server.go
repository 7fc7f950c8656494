package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/ripple"
	"github.com/aretw0/ripple/internal/logging"
	"github.com/aretw0/ripple/internal/metrics"
	"github.com/aretw0/ripple/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies, fixture documents included.
const maxBodyBytes = 1 << 20

// Server serves the session API.
type Server struct {
	Sessions *session.Manager

	logger         *slog.Logger
	validate       *validator.Validate
	metricsPath    string
	originPatterns []string
	heartbeat      time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsPath mounts the Prometheus handler at path. An empty path
// disables it.
func WithMetricsPath(path string) Option {
	return func(s *Server) {
		s.metricsPath = path
	}
}

// WithOriginPatterns lists the hosts allowed to open WebSocket streams
// from a browser page served elsewhere. The default "*" matches the CORS
// policy of the REST routes; an empty list restricts streams to same-origin
// pages.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.originPatterns = patterns
	}
}

// WithHeartbeat sets the interval of SSE keep-alive comments. Non-positive
// values keep the default.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions:       sessions,
		logger:         logging.NewNop(),
		validate:       validator.New(),
		metricsPath:    "/metrics",
		originPatterns: []string{"*"},
		heartbeat:      15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metricsPath != "" {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)

			r.Get("/graph", s.GetGraph)
			r.Put("/graph", s.PutGraph)
			r.Delete("/graph", s.ClearGraph)
			r.Post("/nodes", s.AddNode)
			r.Post("/edges", s.AddEdge)

			r.Get("/traversal", s.GetTraversal)
			r.Post("/traversal", s.StartTraversal)
			r.Delete("/traversal", s.ResetTraversal)

			r.Get("/mermaid", s.GetMermaid)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/ws", s.SubscribeWebSocket)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request metrics and logs each request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		elapsed := time.Since(start)

		metrics.RequestsTotal.WithLabelValues(r.Method, path, code).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, path, code).Observe(elapsed.Seconds())

		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":      "ripple-http",
		"version":  strings.TrimSpace(ripple.Version),
		"sessions": len(s.Sessions.List()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
