// internal/common/http/server.go
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"return-notifier/internal/common/config"
	"return-notifier/internal/common/errors"
	"return-notifier/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Server hosts the inbound API next to the health, readiness and metrics
// endpoints.
type Server struct {
	router chi.Router
	srv    *http.Server
	logger logger.Logger

	mu     sync.RWMutex
	checks map[string]ReadinessCheck
}

func NewServer(cfg config.HTTPConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	s := &Server{
		router: chi.NewRouter(),
		logger: log,
		checks: map[string]ReadinessCheck{},
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.recoverer)
	s.router.Use(MetricsMiddleware)

	s.router.Get("/health", s.health)
	s.router.Get("/ready", s.ready)
	s.router.Handle("/metrics", promhttp.Handler())

	s.srv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// AddReadinessCheck registers a named dependency check for /ready.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Post mounts an API handler.
func (s *Server) Post(pattern string, h http.HandlerFunc) {
	s.router.Post(pattern, h)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It blocks.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.srv.Addr})
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	s.mu.RUnlock()

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
		s.logger.Warn("readiness check failed", map[string]interface{}{"dependencies": deps})
	}
	WriteJSON(w, status, map[string]interface{}{
		"status":       state,
		"dependencies": deps,
		"time":         time.Now().Format(time.RFC3339),
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("http handler panicked", map[string]interface{}{
					"panic":     rec,
					"path":      r.URL.Path,
					"requestId": middleware.GetReqID(r.Context()),
				})
				WriteJSON(w, http.StatusInternalServerError, ErrorBody{
					Code:       string(errors.ErrCodeInternal),
					Message:    "Unexpected error",
					HTTPStatus: http.StatusInternalServerError,
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"httpStatus"`
}

// WriteError maps err to its HTTP status and ErrorBody.
func WriteError(w http.ResponseWriter, err error) {
	stdErr := errors.Normalize(err)
	status := errors.HTTPStatusOf(stdErr)
	WriteJSON(w, status, ErrorBody{
		Code:       string(stdErr.Code),
		Message:    stdErr.Message,
		Details:    stdErr.Details,
		HTTPStatus: status,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
