package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON writes v with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, ErrorResponse{Error: message})
}

// decodeJSON decodes the request body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleServiceError maps service errors to HTTP status codes.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *apperr.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "validation error", "field", validationErr.Field, "error", validationErr.Message)
		writeJSON(ctx, w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Error(), Field: validationErr.Field})
	case errors.Is(err, apperr.ErrInvalidInput):
		logger.WarnContext(ctx, "invalid input", "error", err)
		writeError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrIndexExists):
		logger.WarnContext(ctx, "index exists", "error", err)
		writeError(ctx, w, http.StatusConflict, "Index already exists; set rebuild to replace it")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, apperr.ErrCapability):
		logger.ErrorContext(ctx, "dependency unavailable", "error", err)
		writeError(ctx, w, http.StatusBadGateway, "Embedding service or vector store unavailable")
	case errors.Is(err, apperr.ErrDataConsistency):
		logger.ErrorContext(ctx, "index inconsistent", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Index is inconsistent; rebuild it")
	default:
		logger.ErrorContext(ctx, "service error", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, defaultMsg)
	}
}
