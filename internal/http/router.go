// Package http provides the analysis HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/b3at1/Dicere/internal/service/pipeline"
	"github.com/b3at1/Dicere/internal/service/transcriber"
)

// Handler serves the analysis API.
type Handler struct {
	orchestrator   *pipeline.Orchestrator
	maxUploadBytes int64
}

// errorPayload is the JSON error envelope.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(orchestrator *pipeline.Orchestrator, maxUploadBytes int64) http.Handler {
	h := &Handler{orchestrator: orchestrator, maxUploadBytes: maxUploadBytes}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Browser recorders post directly from any origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Post("/v1/analyze", h.handleAnalyze)

	return r
}

// handleAnalyze accepts a multipart audio upload, runs the analysis pipeline
// and returns the fluency report.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "missing 'file' field in multipart form")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "failed to read uploaded file")
		return
	}

	log.Info().
		Str("filename", header.Filename).
		Str("contentType", header.Header.Get("Content-Type")).
		Int("bytes", len(audio)).
		Msg("Received analysis request")

	report, err := h.orchestrator.Run(r.Context(), audio)
	if err != nil {
		code, status := classifyError(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// classifyError maps pipeline errors onto the API error taxonomy.
func classifyError(err error) (code string, status int) {
	var upstream *transcriber.UpstreamError
	var jobErr *transcriber.TranscriptionError

	switch {
	case errors.Is(err, pipeline.ErrEmptyAudio), errors.Is(err, pipeline.ErrUnsupportedAudio):
		return "invalid_input", http.StatusBadRequest
	case errors.Is(err, transcriber.ErrMissingAPIKey):
		return "configuration", http.StatusInternalServerError
	case errors.Is(err, transcriber.ErrPollTimeout):
		return "timeout", http.StatusGatewayTimeout
	case errors.As(err, &upstream):
		return "upstream", http.StatusBadGateway
	case errors.As(err, &jobErr):
		return "transcription", http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return "cancelled", http.StatusBadRequest
	}
	return "internal", http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
