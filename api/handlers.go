package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/NastasiaHalabi/CertificateGenerator/generate"
	"github.com/NastasiaHalabi/CertificateGenerator/jobs"
)

// ErrorResponse is the error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse is the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleGenerate handles POST /api/pdf/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	var req generate.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, http.StatusRequestEntityTooLarge, "Request body is too large.", "")
			return
		}
		sendError(w, http.StatusBadRequest, "Invalid request body.", err.Error())
		return
	}

	resp, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		var verr *generate.ValidationError
		switch {
		case errors.As(err, &verr):
			sendError(w, http.StatusBadRequest, verr.Message, "")
		case errors.Is(err, generate.ErrEmailNotConfigured):
			sendError(w, http.StatusBadRequest, "Email is not configured on the server.", "")
		case errors.Is(err, jobs.ErrStoreFull):
			sendError(w, http.StatusServiceUnavailable, "Too many email jobs in progress.", "")
		default:
			s.logger.Error("PDF generation failed", zap.Error(err))
			sendError(w, http.StatusInternalServerError, "PDF generation failed.", err.Error())
		}
		return
	}
	sendJSON(w, http.StatusOK, resp)
}

// handleEmailStatus handles GET /api/pdf/email-status?jobId= and /api/pdf/email-status/{jobId}
func (s *Server) handleEmailStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobId")
	if id == "" {
		id = r.URL.Query().Get("jobId")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		sendError(w, http.StatusBadRequest, "Job id is required.", "")
		return
	}
	if s.jobs == nil {
		sendError(w, http.StatusNotFound, "Email job not found.", "")
		return
	}
	job, err := s.jobs.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			sendError(w, http.StatusNotFound, "Email job not found.", "")
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to read email job.", err.Error())
		return
	}
	sendJSON(w, http.StatusOK, job.Snapshot())
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, status int, message, detail string) {
	sendJSON(w, status, ErrorResponse{Error: message, Detail: detail})
}
