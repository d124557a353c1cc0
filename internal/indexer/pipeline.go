package indexer

import (
	"context"
	"fmt"
	"time"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/dates"
	"journal-rag/internal/journal"
	"journal-rag/internal/vectorstore"
)

// RunOptions selects what one indexing run covers.
type RunOptions struct {
	JournalDir string
	Since      *time.Time
	Rebuild    bool
}

// Pipeline scans the journal, chunks every document, embeds the chunks and
// writes them to the index table in one replace.
type Pipeline struct {
	scanner      *journal.Scanner
	chunkOpts    ChunkOptions
	orchestrator *Orchestrator
	builder      *Builder
	table        string
}

// NewPipeline creates a new indexing pipeline writing to vectorstore.DefaultTable.
func NewPipeline(scanner *journal.Scanner, chunkOpts ChunkOptions, orchestrator *Orchestrator, builder *Builder) *Pipeline {
	return &Pipeline{
		scanner:      scanner,
		chunkOpts:    chunkOpts,
		orchestrator: orchestrator,
		builder:      builder,
		table:        vectorstore.DefaultTable,
	}
}

// IndexExists reports whether the index table has been built.
func (p *Pipeline) IndexExists(ctx context.Context) (bool, error) {
	return p.builder.Exists(ctx, p.table)
}

// Run executes one indexing run. An existing index without opts.Rebuild fails
// with apperr.ErrIndexExists before the journal is read.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	exists, err := p.builder.Exists(ctx, p.table)
	if err != nil {
		return nil, err
	}
	if exists && !opts.Rebuild {
		return nil, fmt.Errorf("table %s: %w", p.table, apperr.ErrIndexExists)
	}

	embedder := p.orchestrator.Embedder()
	stats := &Stats{
		EmbeddingModel:     embedder.ModelName(),
		EmbeddingDimension: embedder.Dimensions(),
		IndexVersion:       IndexVersion(embedder.ModelName(), embedder.Dimensions(), p.chunkOpts),
	}

	scan, err := p.scanner.Scan(ctx, opts.JournalDir, opts.Since)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &apperr.ValidationError{Field: "journal_dir", Message: err.Error()}
	}
	stats.Candidates = scan.Candidates
	stats.Documents = len(scan.Documents)
	stats.Unreadable = scan.Unreadable
	stats.BeforeSince = scan.BeforeSince
	stats.ModTimeDated = scan.ModTimeDate

	var (
		chunks       []Chunk
		perDoc       = make([]int, 0, len(scan.Documents))
		contentBytes []int
	)
	for _, doc := range scan.Documents {
		docChunks, report := p.chunkOpts.ChunkDocument(doc)
		stats.Sections += report.Sections
		stats.DroppedBoilerplate += report.DroppedBoilerplate
		stats.DroppedEmpty += report.DroppedEmpty

		perDoc = append(perDoc, len(docChunks))
		if len(docChunks) == 0 {
			stats.DocsWith0Chunks++
			logger.DebugContext(ctx, "document produced no chunks", "path", doc.Path)
			continue
		}
		for _, c := range docChunks {
			contentBytes = append(contentBytes, len(c.Content))
		}
		chunks = append(chunks, docChunks...)
	}
	stats.Chunks = len(chunks)
	stats.ChunksPerDoc = computeSizeStats(perDoc)
	stats.ChunkBytes = computeSizeStats(contentBytes)
	stats.Batches = p.orchestrator.Batches(len(chunks))

	logger.InfoContext(ctx, "chunking complete", "documents", stats.Documents, "chunks", stats.Chunks, "batches", stats.Batches)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.orchestrator.EmbedAll(ctx, texts)
	if err != nil {
		return nil, apperr.WrapError(err, "failed to embed chunks")
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			Path:        c.SourcePath,
			Date:        dates.ToDays(c.SourceDate),
			Content:     c.Content,
			ChunkIndex:  int32(c.Index),
			TotalChunks: int32(c.Total),
			Embedding:   vectors[i],
		}
	}

	schema := vectorstore.Schema{Dimension: stats.EmbeddingDimension, EmbeddingModel: stats.EmbeddingModel}
	count, err := p.builder.BuildOrReplace(ctx, p.table, records, schema, opts.Rebuild)
	if err != nil {
		return nil, err
	}
	stats.Records = count
	stats.Elapsed = time.Since(started)

	logger.InfoContext(ctx, "indexing completed", stats.LogArgs()...)
	return stats, nil
}
