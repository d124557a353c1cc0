package rag

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/dates"
	"journal-rag/internal/llm"
	"journal-rag/internal/vectorstore"
)

// StoreOpener connects to the vector store.
type StoreOpener func(ctx context.Context) (vectorstore.Store, error)

// Engine embeds queries and runs nearest-neighbor searches against the index.
type Engine struct {
	embedder     llm.Embedder
	open         StoreOpener
	table        string
	snippetChars int

	mu    sync.Mutex
	store vectorstore.Store
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSnippetContext sets the bytes of context kept around a snippet match.
func WithSnippetContext(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.snippetChars = n
		}
	}
}

// WithTable searches a table other than vectorstore.DefaultTable.
func WithTable(name string) EngineOption {
	return func(e *Engine) {
		if name != "" {
			e.table = name
		}
	}
}

// NewEngine creates a new query engine. The store is opened on first use and
// reopened after a failed attempt.
func NewEngine(embedder llm.Embedder, open StoreOpener, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder:     embedder,
		open:         open,
		table:        vectorstore.DefaultTable,
		snippetChars: DefaultSnippetContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs q against the index. Unavailable dependencies produce a
// degraded Outcome rather than an error; returned errors are input or data
// consistency problems.
func (e *Engine) Search(ctx context.Context, q Query) (Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Outcome{}, &apperr.ValidationError{Field: "query", Message: "must not be empty"}
	}
	if q.Limit < 0 {
		return Outcome{}, &apperr.ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.After != nil {
		after := dates.Truncate(*q.After)
		q.After = &after
	}
	if q.Before != nil {
		before := dates.Truncate(*q.Before)
		q.Before = &before
	}

	logger.InfoContext(ctx, "search started", "query", q.Text, "after", formatOptional(q.After), "before", formatOptional(q.Before), "limit", q.Limit)

	results, err := e.searchIndex(ctx, q)
	if err != nil {
		if !errors.Is(err, apperr.ErrCapability) && !errors.Is(err, apperr.ErrNotFound) {
			return Outcome{}, err
		}
		logger.WarnContext(ctx, "index unavailable, falling back to stub results", "error", err)
		return Outcome{
			Mode:    ModeDegraded,
			Results: stubResults(q.Text, q.After, q.Before, q.Limit),
			Reason:  err,
		}, nil
	}

	logger.InfoContext(ctx, "search completed", "results", len(results))
	return Outcome{Mode: ModeLive, Results: results}, nil
}

func (e *Engine) searchIndex(ctx context.Context, q Query) ([]Result, error) {
	store, err := e.storeFor(ctx)
	if err != nil {
		return nil, err
	}

	table, err := store.OpenTable(ctx, e.table)
	if err != nil {
		return nil, err
	}
	schema := table.Schema()
	if schema.EmbeddingModel != "" && schema.EmbeddingModel != e.embedder.ModelName() {
		return nil, apperr.Inconsistent("table %s was built with %s, query embedder is %s", e.table, schema.EmbeddingModel, e.embedder.ModelName())
	}

	vectors, err := e.embedder.Embed(ctx, []string{q.Text})
	if err != nil {
		if errors.Is(err, apperr.ErrDataConsistency) || errors.Is(err, apperr.ErrCapability) {
			return nil, err
		}
		return nil, apperr.Capability(err, "failed to embed query")
	}
	if len(vectors) != 1 {
		return nil, apperr.Inconsistent("embedder returned %d vectors for one query", len(vectors))
	}
	if len(vectors[0]) != schema.Dimension {
		return nil, apperr.Inconsistent("query embedding has %d dimensions, table %s has %d", len(vectors[0]), e.table, schema.Dimension)
	}

	filter := vectorstore.DateBetween(daysOrNil(q.After), daysOrNil(q.Before))
	rows, err := table.Search(ctx, vectorstore.SearchRequest{
		Vector: vectors[0],
		Filter: filter,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		r := Result{
			Path:    row.Path,
			Date:    dates.FromDays(row.Date),
			Score:   score(row.Distance),
			Snippet: ExtractSnippet(row.Content, q.Text, e.snippetChars),
		}
		if q.Debug {
			r.Metadata = &ResultMetadata{
				ChunkIndex:  row.ChunkIndex,
				TotalChunks: row.TotalChunks,
				Distance:    row.Distance,
			}
		}
		results = append(results, r)
	}

	sortByScore(results)
	if len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

// storeFor returns the open store, connecting on first use.
func (e *Engine) storeFor(ctx context.Context) (vectorstore.Store, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store != nil {
		return e.store, nil
	}
	if e.open == nil {
		return nil, apperr.Capability(errors.New("no vector store configured"), "failed to open vector store")
	}
	store, err := e.open(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrCapability) {
			return nil, err
		}
		return nil, apperr.Capability(err, "failed to open vector store")
	}
	e.store = store
	return store, nil
}

// Close releases the store if it was opened.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.store == nil {
		return nil
	}
	err := e.store.Close()
	e.store = nil
	return err
}

// score maps an L2 distance to (0, 1], higher is closer.
func score(distance *float32) float32 {
	if distance == nil {
		return 0.5
	}
	return 1 / (1 + *distance)
}

func sortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func daysOrNil(t *time.Time) *int32 {
	if t == nil {
		return nil
	}
	d := dates.ToDays(*t)
	return &d
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return dates.Format(*t)
}
