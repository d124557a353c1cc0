package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks journal-rag/internal/service Searcher
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_search_service.go -package=mocks -mock_names=SearchService=MockSearchService journal-rag/internal/service SearchService

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"journal-rag/internal/contextutil"
	"journal-rag/internal/dates"
	"journal-rag/internal/rag"
)

// Searcher runs queries against the journal index.
// This interface is defined from the service layer's perspective (consumer-first).
type Searcher interface {
	Search(ctx context.Context, q rag.Query) (rag.Outcome, error)
}

// SearchRequest is a search as it arrives from a CLI, HTTP or MCP caller.
// Dates are YYYY-MM-DD strings; empty means unbounded.
type SearchRequest struct {
	Query  string `json:"query"`
	After  string `json:"after"`
	Before string `json:"before"`
	Limit  int    `json:"limit"`
	Debug  bool   `json:"debug"`
}

// Validate checks the request fields.
func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required),
		validation.Field(&r.After, validation.Date(dates.Layout)),
		validation.Field(&r.Before, validation.Date(dates.Layout)),
		validation.Field(&r.Limit, validation.Min(0)),
	)
}

// SearchService answers journal queries.
type SearchService interface {
	// Search validates req and runs it. A degraded outcome is not an error.
	Search(ctx context.Context, req SearchRequest) (rag.Outcome, error)
}

type searchService struct {
	searcher Searcher
}

// NewSearchService creates a new SearchService.
func NewSearchService(searcher Searcher) SearchService {
	return &searchService{searcher: searcher}
}

func (s *searchService) Search(ctx context.Context, req SearchRequest) (rag.Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid search request", "error", err)
		return rag.Outcome{}, validationError(err)
	}

	// Formats were checked above.
	after, _ := dates.ParseOptional(req.After)
	before, _ := dates.ParseOptional(req.Before)

	outcome, err := s.searcher.Search(ctx, rag.Query{
		Text:   req.Query,
		After:  after,
		Before: before,
		Limit:  req.Limit,
		Debug:  req.Debug,
	})
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return rag.Outcome{}, err
	}
	if outcome.Degraded() {
		logger.WarnContext(ctx, "search served stub results", "reason", outcome.Reason)
	}
	return outcome, nil
}
