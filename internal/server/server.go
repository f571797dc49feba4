// Package server implements the contactviz HTTP API.
//
// The API mirrors the CLI's export command: clients upload the people and
// contacts tables as a multipart request and receive the rendered document.
// Pipeline options travel as an optional JSON part alongside the files, so
// the same options struct serves both entry points.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contactviz/contactviz/pkg/buildinfo"
	"github.com/contactviz/contactviz/pkg/errors"
	"github.com/contactviz/contactviz/pkg/pipeline"
	"github.com/contactviz/contactviz/pkg/table"
)

// maxUploadBytes bounds the multipart form size (people + contacts CSVs).
const maxUploadBytes = 32 << 20

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatHTML: "text/html; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

// Server handles HTTP requests by delegating to a pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server around the given runner.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/api/v1/export", s.handleExport)

	return r
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion reports build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

// handleExport runs the full pipeline on the uploaded tables and responds
// with the rendered document. Exactly one output format per request; the
// format comes from the options part and defaults to html.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseExportRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(opts.Formats) != 1 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidFormat,
			"exactly one format per request, got %d", len(opts.Formats)))
		return
	}
	format := opts.Formats[0]

	result, err := s.runner.Execute(r.Context(), *opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-Id", result.RunID)
	w.Header().Set("X-Network-Hash", result.NetworkHash)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// parseExportRequest decodes the multipart upload into pipeline options.
func (s *Server) parseExportRequest(r *http.Request) (*pipeline.Options, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form")
	}

	var opts pipeline.Options
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode options")
		}
	}
	// Uploaded tables always win over any paths smuggled in via options.
	opts.PeoplePath = ""
	opts.ContactsPath = ""

	people, err := formTable(r, "people")
	if err != nil {
		return nil, err
	}
	contacts, err := formTable(r, "contacts")
	if err != nil {
		return nil, err
	}
	opts.People = people
	opts.Contacts = contacts

	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatHTML}
	}
	opts.Logger = s.logger
	return &opts, nil
}

// formTable reads the named multipart file as a CSV table.
func formTable(r *http.Request, field string) (*table.Table, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing %q file", field)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %q table", field)
	}
	return t, nil
}

// logRequests logs each request with the structured logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// writeError maps a pipeline error to an HTTP status and JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForCode(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// statusForCode maps error codes to HTTP status codes. Data and config
// problems are the client's fault; everything else is ours.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSchema,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig,
		errors.ErrCodeDuplicateIdentifier, errors.ErrCodeUnknownIndividual,
		errors.ErrCodeEmptyInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
