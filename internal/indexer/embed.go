package indexer

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/llm"
)

// DefaultBatchSize is the number of texts sent to the embedder per call.
const DefaultBatchSize = 100

// ProgressFunc is called after each finished batch.
type ProgressFunc func(doneBatches, totalBatches, doneTexts int)

// Orchestrator embeds texts in fixed-size batches.
type Orchestrator struct {
	embedder    llm.Embedder
	batchSize   int
	concurrency int
	progress    ProgressFunc
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithBatchSize sets the batch size. Non-positive values keep the default.
func WithBatchSize(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithConcurrency runs up to n batches at once. Only use it with an
// embedder that accepts concurrent calls.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithProgress registers a callback invoked after every batch.
func WithProgress(fn ProgressFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// NewOrchestrator creates an Orchestrator around embedder.
func NewOrchestrator(embedder llm.Embedder, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		embedder:    embedder,
		batchSize:   DefaultBatchSize,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Embedder returns the wrapped embedder.
func (o *Orchestrator) Embedder() llm.Embedder {
	return o.embedder
}

// Batches returns the number of embedder calls needed for n texts.
func (o *Orchestrator) Batches(n int) int {
	return (n + o.batchSize - 1) / o.batchSize
}

// EmbedAll returns one vector per text, in input order. The first failing
// batch aborts the run.
func (o *Orchestrator) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) == 0 {
		return nil, nil
	}

	dims := o.embedder.Dimensions()
	total := o.Batches(len(texts))
	out := make([][]float32, len(texts))

	var (
		mu        sync.Mutex
		doneBatch int
		doneTexts int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for b := 0; b < total; b++ {
		start := b * o.batchSize
		end := min(start+o.batchSize, len(texts))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			vecs, err := o.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				logger.ErrorContext(gctx, "embedding batch failed", "batch", b+1, "batches", total, "error", err)
				if errors.Is(err, apperr.ErrDataConsistency) || errors.Is(err, apperr.ErrCapability) {
					return err
				}
				return apperr.Capability(err, "embedding batch failed")
			}
			if len(vecs) != end-start {
				return apperr.Inconsistent("embedder returned %d vectors for %d texts in batch %d", len(vecs), end-start, b+1)
			}
			for i, v := range vecs {
				if len(v) != dims {
					return apperr.Inconsistent("embedding for text %d has %d dimensions, want %d", start+i, len(v), dims)
				}
			}
			copy(out[start:end], vecs)

			mu.Lock()
			doneBatch++
			doneTexts += end - start
			if o.progress != nil {
				o.progress(doneBatch, total, doneTexts)
			}
			mu.Unlock()

			logger.DebugContext(gctx, "embedded batch", "batch", b+1, "batches", total, "texts", end-start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
