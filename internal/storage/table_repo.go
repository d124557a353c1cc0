package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_table_store.go -package=mocks journal-rag/internal/storage TableStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"journal-rag/internal/apperr"
)

// TableStore defines the catalog operations for vector tables.
type TableStore interface {
	// Create registers a table and inserts all of its rows in one transaction.
	// Returns an error wrapping apperr.ErrIndexExists if the name is taken.
	Create(ctx context.Context, table *TableRecord, rows []RecordRow) error
	// Get returns a table by name. Returns apperr.ErrNotFound if missing.
	Get(ctx context.Context, name string) (*TableRecord, error)
	// List returns every table, ordered by name.
	List(ctx context.Context) ([]TableRecord, error)
	// Delete removes a table and its rows. Returns apperr.ErrNotFound if missing.
	Delete(ctx context.Context, name string) error
}

// TableRepo provides methods for vector table catalog operations.
// It implements the TableStore interface.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo creates a new TableRepo.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

// Create registers a table and inserts all of its rows in one transaction.
// Readers never observe a table without its rows.
func (r *TableRepo) Create(ctx context.Context, table *TableRecord, rows []RecordRow) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO vector_tables (name, dimension, embedding_model) VALUES (?, ?, ?)",
		table.Name, table.Dimension, table.EmbeddingModel,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("table %s: %w", table.Name, apperr.ErrIndexExists)
		}
		return fmt.Errorf("failed to insert table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (table_name, path, date, content, chunk_index, total_chunks, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range rows {
		row := &rows[i]
		res, execErr := stmt.ExecContext(ctx,
			table.Name, row.Path, row.Date, row.Content, row.ChunkIndex, row.TotalChunks, EncodeEmbedding(row.Embedding),
		)
		if execErr != nil {
			err = fmt.Errorf("failed to insert record %s#%d: %w", row.Path, row.ChunkIndex, execErr)
			return err
		}
		if id, idErr := res.LastInsertId(); idErr == nil {
			row.ID = id
		}
		row.TableName = table.Name
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", table.Name, err)
	}
	return nil
}

// Get returns a table by name.
func (r *TableRepo) Get(ctx context.Context, name string) (*TableRecord, error) {
	var table TableRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT name, dimension, embedding_model, created_at FROM vector_tables WHERE name = ?",
		name,
	).Scan(&table.Name, &table.Dimension, &table.EmbeddingModel, &table.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query table: %w", err)
	}

	return &table, nil
}

// List returns every table, ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]TableRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, dimension, embedding_model, created_at FROM vector_tables ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tables []TableRecord
	for rows.Next() {
		var table TableRecord
		if err := rows.Scan(&table.Name, &table.Dimension, &table.EmbeddingModel, &table.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tables, nil
}

// Delete removes a table and its rows.
func (r *TableRepo) Delete(ctx context.Context, name string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM records WHERE table_name = ?", name); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM vector_tables WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		err = fmt.Errorf("table %s: %w", name, apperr.ErrNotFound)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
