package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"datasynth/adapters/rng"
	"datasynth/domain/core"
	"datasynth/domain/dataset"
	"datasynth/internal"
	"datasynth/internal/errors"
	"datasynth/internal/profiling"
	"datasynth/internal/synth"
	"datasynth/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxRows bounds the size of a dataset generated per request
const MaxRows = 100000

// Server serves generated datasets over HTTP
type Server struct {
	router  *chi.Mux
	rngPort ports.RNGPort
	logger  *internal.Logger
}

type datasetParams struct {
	Seed      int64
	Rows      int
	Algorithm string
}

// NewServer creates the HTTP server and its routes
func NewServer(rngPort ports.RNGPort, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:  chi.NewRouter(),
		rngPort: rngPort,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/algorithms", s.handleAlgorithms)
	s.router.Get("/api/dataset", s.handleDataset)
	s.router.Get("/api/dataset/profile", s.handleProfile)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.IOError(fmt.Sprintf("failed to serve on %s", addr), err)
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.With(map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		}).Debug("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"algorithms": s.rngPort.Algorithms(),
		"default":    rng.DefaultAlgorithm,
	})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	format, err := synth.InferFormat("", r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, err)
		return
	}

	table, err := s.generate(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == synth.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = synth.EncodeXLSX(&buf, table)
	} else {
		err = synth.EncodeCSV(&buf, table)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="data_seed%d.%s"`, params.Seed, format))
	w.Header().Set("X-Dataset-SHA256", core.NewHash(buf.Bytes()).String())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	alpha := profiling.DefaultAlpha
	if raw := r.URL.Query().Get("alpha"); raw != "" {
		alpha, err = strconv.ParseFloat(raw, 64)
		if err != nil || alpha <= 0 || alpha >= 1 {
			writeError(w, errors.InvalidInput(fmt.Sprintf("alpha must be in (0,1), got %q", raw)))
			return
		}
	}

	table, err := s.generate(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := profiling.NewDataProfiler(alpha).ProfileTable(table)
	if err != nil {
		writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) generate(ctx context.Context, params datasetParams) (*dataset.Table, error) {
	stream, err := s.rngPort.SeededStream(ctx, params.Algorithm, params.Seed)
	if err != nil {
		return nil, errors.GenerationError("failed to initialize random stream", err)
	}
	return synth.GenerateDataset(stream, params.Rows)
}

func parseParams(r *http.Request) (datasetParams, error) {
	q := r.URL.Query()
	params := datasetParams{Rows: synth.DefaultConfig().Rows, Algorithm: rng.DefaultAlgorithm}

	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return params, errors.InvalidInput(fmt.Sprintf("invalid seed %q", raw))
		}
		params.Seed = seed
	}
	if raw := q.Get("rows"); raw != "" {
		rows, err := strconv.Atoi(raw)
		if err != nil || rows <= 0 || rows > MaxRows {
			return params, errors.InvalidInput(fmt.Sprintf("rows must be in 1..%d, got %q", MaxRows, raw))
		}
		params.Rows = rows
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Get("algorithm"))); raw != "" {
		params.Algorithm = raw
	}
	return params, nil
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeGenerationError, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
