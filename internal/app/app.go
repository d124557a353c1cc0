// Package app wires the embedder, vector store, index pipeline and query
// engine from a Config. Every binary builds its services through it.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"journal-rag/internal/config"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/indexer"
	"journal-rag/internal/journal"
	"journal-rag/internal/llm"
	"journal-rag/internal/rag"
	"journal-rag/internal/sanitizer"
	"journal-rag/internal/service"
	"journal-rag/internal/vectorstore"
)

// App owns the long-lived resources of one process.
type App struct {
	cfg      *config.Config
	embedder llm.Embedder
	cache    *llm.CachedEmbedder
	engine   *rag.Engine

	mu    sync.Mutex
	store vectorstore.Store
}

// New builds the embedder for cfg. The vector store is opened on first use.
// A cache file that cannot be opened is logged and skipped.
func New(ctx context.Context, cfg *config.Config) *App {
	logger := contextutil.LoggerFromContext(ctx)

	a := &App{cfg: cfg}

	var embedder llm.Embedder
	switch cfg.Embedder {
	case config.EmbedderHash:
		embedder = llm.NewHashEmbedder(cfg.EmbeddingDimensions)
	default:
		embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimensions)
	}

	if cfg.EmbeddingCache {
		cached, err := openCache(cfg, embedder)
		if err != nil {
			logger.WarnContext(ctx, "embedding cache disabled", "path", cfg.EmbeddingCachePath(), "error", err)
		} else {
			a.cache = cached
			embedder = cached
		}
	}
	a.embedder = embedder

	a.engine = rag.NewEngine(a.embedder, a.openStore, rag.WithSnippetContext(cfg.SnippetContextChars))

	logger.DebugContext(ctx, "app initialized",
		"embedder", cfg.Embedder,
		"model", embedder.ModelName(),
		"dimensions", embedder.Dimensions(),
		"backend", cfg.VectorBackend,
	)
	return a
}

func openCache(cfg *config.Config, next llm.Embedder) (*llm.CachedEmbedder, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0755); err != nil {
		return nil, err
	}
	return llm.OpenCachedEmbedder(cfg.EmbeddingCachePath(), next)
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// SearchService returns the query service backed by the engine.
func (a *App) SearchService() service.SearchService {
	return service.NewSearchService(a.engine)
}

// IndexService opens the vector store and returns the indexing service.
// opts are applied to the embedding orchestrator after the configured batch
// size and concurrency.
func (a *App) IndexService(ctx context.Context, opts ...indexer.OrchestratorOption) (service.IndexService, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	chunkOpts := indexer.ChunkOptions{
		MaxSize:   a.cfg.ChunkMaxSize,
		MinSize:   a.cfg.ChunkMinSize,
		Sanitizer: sanitizer.Default(),
	}
	orchestratorOpts := append([]indexer.OrchestratorOption{
		indexer.WithBatchSize(a.cfg.EmbedBatchSize),
		indexer.WithConcurrency(a.cfg.EmbedConcurrency),
	}, opts...)

	pipeline := indexer.NewPipeline(
		journal.NewScanner(0),
		chunkOpts,
		indexer.NewOrchestrator(a.embedder, orchestratorOpts...),
		indexer.NewBuilder(store),
	)
	return service.NewIndexService(pipeline, a.cfg.JournalDir), nil
}

// IndexServiceFor builds an App for cfg and returns its index service along
// with the App's Close. progress may be nil.
func IndexServiceFor(ctx context.Context, cfg *config.Config, progress indexer.ProgressFunc) (service.IndexService, func() error, error) {
	a := New(ctx, cfg)
	var opts []indexer.OrchestratorOption
	if progress != nil {
		opts = append(opts, indexer.WithProgress(progress))
	}
	svc, err := a.IndexService(ctx, opts...)
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}
	return svc, a.Close, nil
}

// SearchServiceFor builds an App for cfg and returns its search service along
// with the App's Close.
func SearchServiceFor(ctx context.Context, cfg *config.Config) (service.SearchService, func() error, error) {
	a := New(ctx, cfg)
	return a.SearchService(), a.Close, nil
}

// openStore connects to the configured backend once. A failed attempt is
// retried on the next call.
func (a *App) openStore(ctx context.Context) (vectorstore.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}

	var (
		store vectorstore.Store
		err   error
	)
	switch a.cfg.VectorBackend {
	case config.BackendQdrant:
		store, err = vectorstore.NewQdrantStore(a.cfg.QdrantURL)
	default:
		store, err = vectorstore.OpenSQLiteStore(a.cfg.IndexDir)
	}
	if err != nil {
		return nil, err
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "vector store opened", "backend", a.cfg.VectorBackend)
	a.store = store
	return store, nil
}

// Close releases the vector store and the embedding cache.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.cache != nil {
		hits, misses := a.cache.Stats()
		slog.Debug("embedding cache closed", "hits", hits, "misses", misses)
		errs = append(errs, a.cache.Close())
		a.cache = nil
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger from the configured format and level.
func NewLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
