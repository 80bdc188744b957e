package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"tempo/internal/auth"
	"tempo/internal/log"
	"tempo/internal/services"
	"tempo/internal/store"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

type Server struct {
	http.Server

	entities *services.Entities
	timer    *services.Timer
	summary  *services.Summary
	store    store.Store
	sessions *auth.Sessions

	rateLimiter  *rateLimiter
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, entities *services.Entities, timer *services.Timer, summary *services.Summary, st store.Store, sessions *auth.Sessions, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		entities:    entities,
		timer:       timer,
		summary:     summary,
		store:       st,
		sessions:    sessions,
		rateLimiter: newRateLimiter(),
		logger:      logger.WithComponent(log.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/clients", s.api(s.handleListClients))
	mux.HandleFunc("POST /api/clients", s.api(s.handleCreateClient))
	mux.HandleFunc("DELETE /api/clients/{id}", s.api(s.handleDeleteClient))

	mux.HandleFunc("GET /api/projects", s.api(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.api(s.handleCreateProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.api(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.api(s.handleDeleteProject))

	mux.HandleFunc("GET /api/tasks", s.api(s.handleListTasks))
	mux.HandleFunc("POST /api/tasks", s.api(s.handleCreateTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.api(s.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.api(s.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/timer/start", s.api(s.handleTimerStart))
	mux.HandleFunc("POST /api/tasks/{id}/timer/stop", s.api(s.handleTimerStop))

	mux.HandleFunc("GET /api/time-entries", s.api(s.handleListEntries))
	mux.HandleFunc("POST /api/time-entries", s.api(s.handleCreateEntry))

	mux.HandleFunc("GET /api/summary", s.api(s.handleSummary))
	mux.HandleFunc("GET /api/activity", s.api(s.handleActivity))

	return s
}

// api chains observability, rate limiting and session resolution around an
// authenticated handler.
func (s *Server) api(next func(http.ResponseWriter, *http.Request, auth.Identity)) http.HandlerFunc {
	return s.observe(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.sessions.Resolve(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r, id)
	})
}

// observe adds request-ID tracing, structured request logging, security
// headers and per-IP rate limiting on mutating methods.
func (s *Server) observe(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		s.logger.DebugContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip)

		if mutating(r.Method) && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Message: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the store with a cheap read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.List(r.Context(), "readyz-probe", store.Clients); err != nil {
		s.logger.WarnContext(r.Context(), "Readiness probe failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
