// Package api exposes the calendar service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Yongqing112/calendar/pkg/calendar"
	"github.com/Yongqing112/calendar/pkg/calendar/importer"
)

// Server routes HTTP requests to the event service and import runner.
type Server struct {
	service *calendar.Service
	runner  *importer.Runner
	allowed map[string]struct{}
	logger  *slog.Logger
}

// NewServer creates a Server. allowedUsers is the injected login
// allow-list; logger may be nil.
func NewServer(service *calendar.Service, runner *importer.Runner, allowedUsers []string, logger *slog.Logger) *Server {
	allowed := make(map[string]struct{}, len(allowedUsers))
	for _, u := range allowedUsers {
		allowed[u] = struct{}{}
	}
	return &Server{
		service: service,
		runner:  runner,
		allowed: allowed,
		logger:  logger,
	}
}

// Handler returns the router for all API endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.handleLogin)

	mux.HandleFunc("POST /events", s.handleCreateEvent)
	mux.HandleFunc("GET /events", s.handleListEvents)
	mux.HandleFunc("GET /events/search", s.handleSearchEvents)
	mux.HandleFunc("GET /events/{id}", s.handleGetEvent)
	mux.HandleFunc("PUT /events/{id}", s.handleUpdateEvent)
	mux.HandleFunc("DELETE /events", s.handleDeleteEvent)

	mux.HandleFunc("POST /import/events", s.handleImportEvents)
	mux.HandleFunc("GET /import/jobs/{jobID}", s.handleImportJob)

	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if s.logger != nil {
			s.logger.Debug("request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
			)
		}
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && s.logger != nil {
		s.logger.Error("encode response", slog.String("error", err.Error()))
	}
}

// respondError maps service errors to status codes: validation failures
// are 400, missing events 404, everything else 500.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var (
		validationErr *calendar.ValidationError
		notFoundErr   *calendar.NotFoundError
		deletionErr   *calendar.DeletionError
	)
	switch {
	case errors.As(err, &validationErr):
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": notFoundErr.Error()})
	case errors.As(err, &deletionErr):
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": deletionErr.Error()})
	default:
		if s.logger != nil {
			s.logger.Error("request failed", slog.String("error", err.Error()))
		}
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
