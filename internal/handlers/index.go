package handlers

import (
	"net/http"

	"journal-rag/internal/contextutil"
	"journal-rag/internal/service"
)

// IndexHandler handles HTTP requests that rebuild the journal index.
type IndexHandler struct {
	indexService service.IndexService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(indexService service.IndexService) *IndexHandler {
	return &IndexHandler{indexService: indexService}
}

// IndexRequest represents the HTTP request payload for an indexing run.
type IndexRequest struct {
	Rebuild bool   `json:"rebuild,omitempty"`
	Since   string `json:"since,omitempty"`
}

// ServeHTTP handles POST /api/v1/index. The run is synchronous and the
// response carries its statistics. An existing index without rebuild is
// answered with 409 Conflict.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req IndexRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logger.InfoContext(ctx, "indexing triggered via API", "rebuild", req.Rebuild, "since", req.Since)
	stats, err := h.indexService.Index(ctx, service.IndexRequest{
		Rebuild: req.Rebuild,
		Since:   req.Since,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Indexing failed")
		return
	}
	writeJSON(ctx, w, http.StatusOK, stats)
}
