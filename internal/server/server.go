// Package server exposes the detection engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/greenlens/internal/model"
	"github.com/ppiankov/greenlens/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Analyzer is the part of the pipeline the API serves
type Analyzer interface {
	AnalyzeText(text string) model.TextAnalysis
	AnalyzeImage(ctx context.Context, imagePath string) (*model.Report, error)
}

// Server handles the HTTP API. store may be nil, in which case reports are
// not kept and report lookups return 404.
type Server struct {
	analyzer Analyzer
	store    store.Store
	cfg      model.ServerConfig
	logf     func(format string, args ...any)
}

// New creates a server
func New(analyzer Analyzer, st store.Store, cfg model.ServerConfig) *Server {
	return &Server{
		analyzer: analyzer,
		store:    st,
		cfg:      cfg,
		logf:     func(string, ...any) {},
	}
}

// SetLogger routes request diagnostics to logf
func (s *Server) SetLogger(logf func(format string, args ...any)) {
	if logf != nil {
		s.logf = logf
	}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	// Full paths on the root router so method mismatches answer 405
	r.HandleFunc("/v1/analyze/text", s.analyzeText).Methods(http.MethodPost)
	r.HandleFunc("/v1/analyze/image", s.analyzeImage).Methods(http.MethodPost)
	r.HandleFunc("/v1/reports/{id}", s.getReport).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) analyzeText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUpload())).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.analyzer.AnalyzeText(req.Text))
}

func (s *Server) analyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	tmpPath, err := saveUpload(file, filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() { _ = os.Remove(tmpPath) }()

	report, err := s.analyzer.AnalyzeImage(r.Context(), tmpPath)
	if report != nil {
		report.ImagePath = header.Filename
	}

	var upstream *model.UpstreamError
	switch {
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), report); err != nil {
			s.logf("store report %s: %v\n", report.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.store == nil {
		writeError(w, http.StatusNotFound, "report storage is disabled")
		return
	}

	report, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) maxUpload() int64 {
	if s.cfg.MaxUploadBytes > 0 {
		return s.cfg.MaxUploadBytes
	}
	return 20 << 20
}

// saveUpload copies an upload into a temp file the vision analyzer can open
func saveUpload(src io.Reader, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}

	tmp, err := os.CreateTemp("", "greenlens-upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("save upload: %w", err)
	}
	return tmp.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
