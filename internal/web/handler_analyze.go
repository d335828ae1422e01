package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/domain"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision"
)

// maxFormMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const maxFormMemory = 8 << 20

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned before the response was written.
const statusClientClosedRequest = 499

// uploadError is a request failure with the status it maps to. A quiet error
// is answered with the status alone.
type uploadError struct {
	status  int
	message string
	quiet   bool
}

func (e *uploadError) Error() string { return e.message }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"MaxUploadMB": s.maxUploadBytes >> 20}
	if err := s.renderPage(w, data, "base.html", "pages/index.html"); err != nil {
		s.logger.Error("render index failed", "error", err)
	}
}

// handleAnalyze runs the pipeline on an uploaded photo and returns the
// result as an HTML fragment.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	result, uerr := s.analyzeUpload(w, r)
	if uerr != nil {
		if uerr.quiet {
			w.WriteHeader(uerr.status)
			return
		}
		http.Error(w, uerr.message, uerr.status)
		return
	}
	if err := s.renderPartial(w, "partials/result.html", result); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// handleAnalyzeJSON is the JSON form of handleAnalyze.
func (s *Server) handleAnalyzeJSON(w http.ResponseWriter, r *http.Request) {
	result, uerr := s.analyzeUpload(w, r)
	if uerr != nil {
		if uerr.quiet {
			w.WriteHeader(uerr.status)
			return
		}
		writeJSON(w, uerr.status, map[string]string{"error": uerr.message}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, result, s.logger)
}

func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (*domain.AnalysisResult, *uploadError) {
	imageData, hint, uerr := s.readUpload(w, r)
	if uerr != nil {
		return nil, uerr
	}

	mimeType, err := vision.CheckMedia(imageData, "", 0)
	if err != nil {
		return nil, &uploadError{status: http.StatusUnsupportedMediaType, message: err.Error()}
	}

	result, err := s.analyzer.Run(r.Context(), imageData, mimeType, hint)
	if err != nil {
		return nil, s.classifyRunError(err)
	}
	return result, nil
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, *uploadError) {
	if s.maxUploadBytes > 0 {
		if r.ContentLength > s.maxUploadBytes {
			return nil, "", &uploadError{status: http.StatusRequestEntityTooLarge, message: "image too large"}
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", &uploadError{status: http.StatusRequestEntityTooLarge, message: "image too large"}
		}
		return nil, "", &uploadError{status: http.StatusBadRequest, message: "failed to parse form"}
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, "", &uploadError{status: http.StatusBadRequest, message: "image file required"}
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		return nil, "", &uploadError{status: http.StatusInternalServerError, message: "failed to read file"}
	}
	return imageData, r.FormValue("hint"), nil
}

func (s *Server) classifyRunError(err error) *uploadError {
	var credErr *config.MissingCredentialError
	var mediaErr *vision.UnsupportedMediaError
	switch {
	case errors.As(err, &credErr):
		s.logger.Error("classifier is not configured", "error", err)
		return &uploadError{status: http.StatusServiceUnavailable, message: err.Error()}
	case errors.As(err, &mediaErr):
		return &uploadError{status: http.StatusUnsupportedMediaType, message: err.Error()}
	case errors.Is(err, context.Canceled):
		s.logger.Info("analysis cancelled by client", "error", err)
		return &uploadError{status: statusClientClosedRequest, message: "request cancelled", quiet: true}
	case errors.Is(err, context.DeadlineExceeded):
		return &uploadError{status: http.StatusGatewayTimeout, message: "analysis timed out"}
	default:
		s.logger.Error("analysis failed", "error", err)
		return &uploadError{status: http.StatusInternalServerError, message: "failed to analyze photo"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write json response", "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
