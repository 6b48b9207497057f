package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"calendar-api/internal/store"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string
	Commit  string
}

type Config struct {
	Addr  string // e.g. ":5000"
	Build BuildInfo
	Store store.Database

	// Snapshots is optional; when set its bucket is included in /health.
	Snapshots *SnapshotManager

	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	httpServer *http.Server
	db         store.Database
	snapshots  *SnapshotManager
	build      BuildInfo
	now        func() time.Time
}

func New(cfg Config) *Server {
	s := &Server{
		db:        cfg.Store,
		snapshots: cfg.Snapshots,
		build:     cfg.Build,
		now:       cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	mux := http.NewServeMux()

	// Operational endpoints
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /ready", s.HandleReady)
	mux.HandleFunc("GET /live", s.HandleLive)
	mux.Handle("GET /metrics", PrometheusMetricsHandler(cfg.Build))

	// Calendar API
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.HandleFunc("POST /api/events", s.createEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.deleteEvent)
	mux.HandleFunc("GET /api/events.ics", s.exportEvents)
	mux.HandleFunc("GET /api/goals", s.listGoals)
	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("GET /api/seed", s.seed)

	// Wrap middleware: requestID -> logging -> cors -> security -> compression -> mux
	var handler http.Handler = mux
	handler = compressionMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = cors.AllowAll().Handler(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail answers with the route's fixed 500 message. Clients never see the
// underlying error.
func fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	Debug("request_failed", map[string]any{
		"rid":   RequestIDFromContext(r.Context()),
		"path":  r.URL.Path,
		"error": err.Error(),
	})
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}
