package handlers

import (
	"context"
	"net/http"
	"time"

	"journal-rag/internal/contextutil"
)

// IndexChecker reports whether the journal index exists.
type IndexChecker interface {
	IndexExists(ctx context.Context) (bool, error)
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	checker            IndexChecker
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker IndexChecker) *HealthHandler {
	return &HealthHandler{
		checker:            checker,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// "ok" when the index is searchable, "degraded" when searches are served
	// from stub results, "unhealthy" when the vector store is unreachable.
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// ServeHTTP handles GET /api/v1/health. Returns 503 only when the vector
// store cannot be reached.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	exists, err := h.checker.IndexExists(checkCtx)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		resp.Status = "unhealthy"
		resp.Checks["index"] = "error"
		status = http.StatusServiceUnavailable
	case !exists:
		resp.Status = "degraded"
		resp.Checks["index"] = "missing"
	default:
		resp.Checks["index"] = "ok"
	}

	writeJSON(ctx, w, status, resp)
}
