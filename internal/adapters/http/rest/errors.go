package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/platform/logging"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errMalformedRequest = errors.New("malformed request")
	errRequestTooLarge  = errors.New("request body too large")
)

// statusFor はドメインエラーを HTTP ステータスと機械可読コードに変換します。
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, agenda.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, agenda.ErrDuplicateID):
		return http.StatusBadRequest, "duplicate_ids"
	case errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest, "malformed_request"
	case errors.Is(err, errRequestTooLarge):
		return http.StatusRequestEntityTooLarge, "request_too_large"
	case errors.Is(err, agenda.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, agenda.ErrConsistency):
		return http.StatusConflict, "inconsistent_reference"
	case errors.Is(err, agenda.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, code := statusFor(err)

	level := slog.LevelInfo
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context(), h.logger).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"code", code,
		"error", err.Error(),
	)

	respondJSON(w, statusCode, ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
