// Package server exposes the analysis service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/analyst"
	"github.com/KaramelBytes/dataloom-cli/internal/project"
	"github.com/KaramelBytes/dataloom-cli/internal/recommend"
)

const maxBodyBytes = 1 << 20

// Analyst is the analysis surface the handlers call.
type Analyst interface {
	Analyze(ctx context.Context, req analyst.Request) (*analyst.Response, error)
	Recommend(ctx context.Context, fileID, question string) (recommend.Result, error)
	Profile(ctx context.Context, fileID string) (*analysis.Schema, error)
}

// Catalog lists registered datasets.
type Catalog interface {
	List() []project.Dataset
}

// Options configures the HTTP server.
type Options struct {
	Addr        string
	CORSOrigins []string
	// RequestTimeout bounds each request; 0 disables the limit.
	RequestTimeout time.Duration
}

// Handler serves the JSON API.
type Handler struct {
	svc     Analyst
	catalog Catalog
	logger  *zap.Logger
}

// NewHandler returns a Handler. A nil logger discards logs.
func NewHandler(svc Analyst, catalog Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, catalog: catalog, logger: logger.Named("http")}
}

// Router builds the chi router with middleware and routes.
func (h *Handler) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", h.listDatasets)
		r.Get("/datasets/{id}/profile", h.profile)
		r.Post("/analysis", h.analyze)
		r.Post("/recommendations", h.recommend)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listDatasets(w http.ResponseWriter, _ *http.Request) {
	list := h.catalog.List()
	writeJSON(w, http.StatusOK, map[string]any{"datasets": list, "count": len(list)})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	schema, err := h.svc.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(schema))
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyst.Request
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type recommendRequest struct {
	FileID   string `json:"file_id"`
	Question string `json:"question"`
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Recommend(r.Context(), req.FileID, req.Question)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", analyst.ErrInvalidRequest, err)
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, project.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, analyst.ErrInvalidRequest),
		errors.Is(err, analyst.ErrUnknownColumn),
		errors.Is(err, project.ErrAmbiguousName),
		errors.Is(err, analysis.ErrEmptyDataset):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the API on opts.Addr until ctx is cancelled, then
// shuts down gracefully.
func ListenAndServe(ctx context.Context, h *Handler, opts Options) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           h.Router(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("listening", zap.String("addr", opts.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
