package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/Yongqing112/calendar/pkg/calendar/importer"
)

// maxUploadBytes caps the in-memory portion of a multipart upload.
const maxUploadBytes = 32 << 20

func (s *Server) handleImportEvents(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "expected multipart form with a file field"})
		return
	}

	upload, _, err := r.FormFile("file")
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer upload.Close()

	tmp, err := os.CreateTemp("", "calendar-*.csv")
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to import file: " + err.Error()})
		return
	}

	if _, err := io.Copy(tmp, upload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to import file: " + err.Error()})
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to import file: " + err.Error()})
		return
	}

	jobID, err := s.runner.Submit(tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		if errors.Is(err, importer.ErrQueueFull) {
			s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "import queue full"})
			return
		}
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to import file: " + err.Error()})
		return
	}

	if s.logger != nil {
		s.logger.Info("import accepted", slog.String("job_id", jobID))
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "File imported successfully",
		"jobId":   jobID,
	})
}

func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.runner.Job(r.PathValue("jobID"))
	if !ok {
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": "import job not found"})
		return
	}
	s.respondJSON(w, http.StatusOK, job)
}
