// Package rest は Registry を JSON over HTTP で公開する chi ルーターです。
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/platform/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBatchBodyBytes = 8 << 20

// Handler は Registry の HTTP ハンドラ群です。
type Handler struct {
	store  agenda.Store
	logger *slog.Logger
}

// NewRouter はミドルウェアとルートを設定した chi ルーターを返します。
// store は並行アクセスに耐える実装 (agenda.SyncRegistry) を渡してください。
func NewRouter(store agenda.Store, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/employees/{id}", h.handleGetEmployee)
		r.Get("/jobs/{id}", h.handleGetJob)
		r.Get("/departments/{id}", h.handleGetDepartment)
		r.Get("/size", h.handleSize)
		r.Post("/employees/batch", h.handleInsertBatch)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	e, ok := h.store.GetEmployee(id)
	if !ok {
		h.respondError(w, r, &agenda.NotFoundError{Kind: "employee", ID: id})
		return
	}
	respondJSON(w, http.StatusOK, toEmployeeDTO(e))
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	j, ok := h.store.GetJob(id)
	if !ok {
		h.respondError(w, r, &agenda.NotFoundError{Kind: "job", ID: id})
		return
	}
	respondJSON(w, http.StatusOK, toJobDTO(j))
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, ok := h.store.GetDepartment(id)
	if !ok {
		h.respondError(w, r, &agenda.NotFoundError{Kind: "department", ID: id})
		return
	}
	respondJSON(w, http.StatusOK, toDepartmentDTO(d))
}

func (h *Handler) handleSize(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toSizeDTO(h.store.Size()))
}

func (h *Handler) handleInsertBatch(w http.ResponseWriter, r *http.Request) {
	var body []EmployeeDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errRequestTooLarge, tooLarge.Limit))
			return
		}
		h.respondError(w, r, fmt.Errorf("%w: %v", errMalformedRequest, err))
		return
	}

	batch := make([]agenda.Employee, 0, len(body))
	for i, dto := range body {
		e, err := dto.toDomain()
		if err != nil {
			h.respondError(w, r, fmt.Errorf("element %d: %w", i, err))
			return
		}
		batch = append(batch, e)
	}

	if err := h.store.InsertBatch(batch); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, InsertBatchResponse{Inserted: len(batch)})
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not an integer", errMalformedRequest, raw)
	}
	return id, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logging.FromContext(r.Context(), logger).Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
