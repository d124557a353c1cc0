package handlers

import (
	"net/http"

	"journal-rag/internal/contextutil"
	"journal-rag/internal/rag"
	"journal-rag/internal/service"
)

// SearchHandler handles HTTP requests for journal searches.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchRequest represents the HTTP request payload for a search.
type SearchRequest struct {
	Query  string `json:"query"`
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Debug  bool   `json:"debug,omitempty"`
}

// SearchResponse represents the HTTP response payload for a search.
// Reason is set when Mode is "degraded".
type SearchResponse struct {
	Mode    rag.Mode     `json:"mode"`
	Results []rag.Result `json:"results"`
	Reason  string       `json:"reason,omitempty"`
}

// ServeHTTP handles POST /api/v1/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.searchService.Search(ctx, service.SearchRequest{
		Query:  req.Query,
		After:  req.After,
		Before: req.Before,
		Limit:  req.Limit,
		Debug:  req.Debug,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search journal")
		return
	}

	resp := SearchResponse{
		Mode:    outcome.Mode,
		Results: outcome.Results,
	}
	if resp.Results == nil {
		resp.Results = []rag.Result{}
	}
	if outcome.Reason != nil {
		resp.Reason = outcome.Reason.Error()
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
