package indexer

import (
	"context"
	"fmt"
	"slices"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/vectorstore"
)

// Builder creates index tables, replacing them only on request.
type Builder struct {
	store vectorstore.Store
}

// NewBuilder creates a Builder over store.
func NewBuilder(store vectorstore.Store) *Builder {
	return &Builder{store: store}
}

// Exists reports whether the table is already present.
func (b *Builder) Exists(ctx context.Context, name string) (bool, error) {
	names, err := b.store.TableNames(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}

// BuildOrReplace writes records to a fresh table and returns its row count.
// An existing table is left untouched unless rebuild is set, in which case it
// is dropped first.
func (b *Builder) BuildOrReplace(ctx context.Context, name string, records []vectorstore.Record, schema vectorstore.Schema, rebuild bool) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := b.Exists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists && !rebuild {
		return 0, fmt.Errorf("table %s: %w", name, apperr.ErrIndexExists)
	}
	if exists {
		logger.InfoContext(ctx, "dropping existing table", "table", name)
		if err := b.store.DropTable(ctx, name); err != nil {
			return 0, apperr.WrapError(err, "failed to drop existing table")
		}
	}

	table, err := b.store.CreateTable(ctx, name, schema, records)
	if err != nil {
		return 0, apperr.WrapError(err, "failed to create table")
	}

	count, err := table.CountRows(ctx)
	if err != nil {
		return 0, apperr.WrapError(err, "failed to count rows")
	}
	if count != len(records) {
		return count, apperr.Inconsistent("table %s has %d rows, wrote %d", name, count, len(records))
	}

	logger.InfoContext(ctx, "index table built", "table", name, "rows", count, "dimension", schema.Dimension, "model", schema.EmbeddingModel)
	return count, nil
}
