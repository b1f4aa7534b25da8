package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Yongqing112/calendar/pkg/calendar"
)

// dateLayout is the ISO calendar-date format used by search parameters.
const dateLayout = "2006-01-02"

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// An absent createdBy means the caller never logged in.
	if event.CreatedBy == "" {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}

	stored, err := s.service.Save(r.Context(), &event)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, stored)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.FindAll(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if events == nil {
		events = []*calendar.Event{}
	}
	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return
	}

	event, err := s.service.FindByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return
	}

	var patch calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updated, err := s.service.Update(r.Context(), id, &patch)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"message": "delete failed"})
		return
	}

	if err := s.service.DeleteByID(r.Context(), id); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"message": "delete failed"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseDateParam(r, "startDate")
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	endDate, err := parseDateParam(r, "endDate")
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	events, err := s.service.SearchByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		var validationErr *calendar.ValidationError
		if errors.As(err, &validationErr) {
			s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Message})
			return
		}
		if s.logger != nil {
			s.logger.Error("search failed", slog.String("error", err.Error()))
		}
		s.respondJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "An error occurred while searching events"})
		return
	}
	if events == nil {
		events = []*calendar.Event{}
	}
	s.respondJSON(w, http.StatusOK, events)
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, errors.New(name + " is required")
	}
	d, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, errors.New(name + " must be an ISO date (YYYY-MM-DD)")
	}
	return d, nil
}
