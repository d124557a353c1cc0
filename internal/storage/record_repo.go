package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_record_store.go -package=mocks journal-rag/internal/storage RecordStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// RecordStore defines read operations over the rows of a vector table.
type RecordStore interface {
	// Count returns the number of rows in a table.
	Count(ctx context.Context, table string) (int, error)
	// Scan calls fn for every row of table whose date lies in dr, ordered by id.
	// Iteration stops at the first error returned by fn.
	Scan(ctx context.Context, table string, dr DateRange, fn func(RecordRow) error) error
}

// RecordRepo provides methods for record operations.
// It implements the RecordStore interface.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo creates a new RecordRepo.
func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Count returns the number of rows in a table.
func (r *RecordRepo) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE table_name = ?", table).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Scan streams rows in the date range to fn.
func (r *RecordRepo) Scan(ctx context.Context, table string, dr DateRange, fn func(RecordRow) error) error {
	where := []string{"table_name = ?"}
	args := []any{table}
	if dr.From != nil {
		where = append(where, "date >= ?")
		args = append(args, *dr.From)
	}
	if dr.To != nil {
		where = append(where, "date <= ?")
		args = append(args, *dr.To)
	}

	query := "SELECT id, table_name, path, date, content, chunk_index, total_chunks, embedding FROM records WHERE " +
		strings.Join(where, " AND ") + " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var (
			row  RecordRow
			blob []byte
		)
		if err := rows.Scan(&row.ID, &row.TableName, &row.Path, &row.Date, &row.Content, &row.ChunkIndex, &row.TotalChunks, &blob); err != nil {
			return fmt.Errorf("failed to scan record: %w", err)
		}
		vec, ok := DecodeEmbedding(blob)
		if !ok {
			return fmt.Errorf("record %d: embedding blob has %d bytes", row.ID, len(blob))
		}
		row.Embedding = vec
		if err := fn(row); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}
