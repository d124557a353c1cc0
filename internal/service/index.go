package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_indexer.go -package=mocks journal-rag/internal/service Indexer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index_service.go -package=mocks -mock_names=IndexService=MockIndexService journal-rag/internal/service IndexService

import (
	"context"
	"errors"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/dates"
	"journal-rag/internal/indexer"
)

// Indexer runs one indexing pass.
// This interface is defined from the service layer's perspective (consumer-first).
type Indexer interface {
	Run(ctx context.Context, opts indexer.RunOptions) (*indexer.Stats, error)
	IndexExists(ctx context.Context) (bool, error)
}

// IndexRequest asks for an indexing run.
type IndexRequest struct {
	// Rebuild replaces an existing index.
	Rebuild bool `json:"rebuild"`
	// Since skips entries dated before it (YYYY-MM-DD, inclusive).
	Since string `json:"since"`
}

// Validate checks the request fields.
func (r IndexRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Since, validation.Date(dates.Layout)),
	)
}

// IndexService builds the journal index.
type IndexService interface {
	// Index runs the pipeline over the configured journal directory. Runs are
	// serialized; a second caller waits for the first to finish.
	Index(ctx context.Context, req IndexRequest) (*indexer.Stats, error)
	// IndexExists reports whether an index has been built.
	IndexExists(ctx context.Context) (bool, error)
}

type indexService struct {
	indexer    Indexer
	journalDir string

	mu sync.Mutex
}

// NewIndexService creates a new IndexService over journalDir.
func NewIndexService(idx Indexer, journalDir string) IndexService {
	return &indexService{
		indexer:    idx,
		journalDir: journalDir,
	}
}

func (s *indexService) Index(ctx context.Context, req IndexRequest) (*indexer.Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "invalid index request", "error", err)
		return nil, validationError(err)
	}
	since, _ := dates.ParseOptional(req.Since)

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.InfoContext(ctx, "index run started", "journal_dir", s.journalDir, "rebuild", req.Rebuild, "since", req.Since)
	stats, err := s.indexer.Run(ctx, indexer.RunOptions{
		JournalDir: s.journalDir,
		Since:      since,
		Rebuild:    req.Rebuild,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrIndexExists) {
			logger.WarnContext(ctx, "index already exists", "error", err)
			return nil, err
		}
		logger.ErrorContext(ctx, "index run failed", "error", err)
		return nil, apperr.WrapError(err, "index run failed")
	}

	logger.InfoContext(ctx, "index run completed", "records", stats.Records)
	return stats, nil
}

func (s *indexService) IndexExists(ctx context.Context) (bool, error) {
	exists, err := s.indexer.IndexExists(ctx)
	if err != nil {
		return false, apperr.WrapError(err, "failed to check index")
	}
	return exists, nil
}
