package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/render"
	"cashflow/internal/services"
	"cashflow/internal/sheets"
	"cashflow/internal/storage"
)

var allowedExtensions = map[string]bool{".csv": true, ".xlsx": true}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Period      string
		MaxUploadMB int64
	}{
		Period:      core.ResolvePeriod(s.opts.Now()).String(),
		MaxUploadMB: max(1, s.opts.MaxUploadBytes>>20),
	}
	s.render(w, r, http.StatusOK, "index.html", data)
}

// handleDisplay projects an uploaded workbook and renders the chart page.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	logger := log.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, http.StatusRequestEntityTooLarge, "The file is too large.")
			return
		}
		s.renderError(w, r, http.StatusBadRequest, "Choose a .csv or .xlsx file to upload.")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		s.renderError(w, r, http.StatusBadRequest, "Only .csv and .xlsx files are supported.")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The upload could not be read.")
		return
	}

	period := core.ResolvePeriod(s.opts.Now())
	key := cache.ContentKey(content, period.String(), ext)
	if s.reports != nil {
		// A cached report keeps the "now" marker from its first render, stale by at most the cache TTL.
		if report, ok := s.reports.Get(key); ok {
			logger.DebugContext(ctx, "Report served from cache", log.FieldSource, name)
			s.render(w, r, http.StatusOK, "display.html", report)
			return
		}
	}

	report, err := s.project(ctx, name, content)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "Projection failed", log.FieldSource, name, log.FieldError, err)
		} else {
			logger.WarnContext(ctx, "Rejected upload", log.FieldSource, name, log.FieldError, err)
		}
		s.renderError(w, r, status, msg)
		return
	}
	if s.reports != nil {
		s.reports.Set(key, report)
	}
	s.render(w, r, http.StatusOK, "display.html", report)
}

// project stages content under a unique name, runs the projection and
// removes the staged file.
func (s *Server) project(ctx context.Context, name string, content []byte) (render.Report, error) {
	staged := filepath.Join(s.opts.UploadDir, uuid.NewString()+"_"+name)
	if err := os.WriteFile(staged, content, 0o600); err != nil {
		return render.Report{}, err
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.FromContext(ctx).WarnContext(ctx, "Failed to remove staged upload", "path", staged, log.FieldError, err)
		}
	}()

	res, err := s.projector.RunLabeled(ctx, staged, name, services.ModeJSON)
	if err != nil {
		return render.Report{}, err
	}
	return render.NewReport(res.Projection, res.Figure, res.Table)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run log disabled"})
		return
	}
	limit := storage.DefaultListLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List runs failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list runs"})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run log disabled"})
		return
	}
	run, err := s.runs.GetRun(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, storage.ErrRunNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Get run failed", log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load run"})
	default:
		writeJSON(w, http.StatusOK, run)
	}
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
	s.renderError(w, r, http.StatusTooManyRequests, "Too many uploads. Please try again in a minute.")
}

// errorStatus maps projection errors to a status and a message safe to show.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "A date in the file is not a valid day number."
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "An amount in the file is not a valid non-negative number."
	case errors.Is(err, sheets.ErrUnsupportedSource):
		return http.StatusBadRequest, "Only .csv and .xlsx files are supported."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The projection took too long."
	default:
		return http.StatusInternalServerError, "The file could not be processed."
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, log.FieldError, err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error.html", struct {
		Message   string
		RequestID string
	}{msg, trace.GetRequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
const maxFilenameLen = 128

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	clean = strings.TrimLeft(clean, ".")
	if clean == "" || clean == "_" {
		return "upload"
	}
	if len(clean) > maxFilenameLen {
		ext := filepath.Ext(clean)
		if len(ext) >= maxFilenameLen {
			ext = ""
		}
		clean = clean[:maxFilenameLen-len(ext)] + ext
	}
	return clean
}
