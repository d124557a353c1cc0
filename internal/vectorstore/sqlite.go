package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"

	"journal-rag/internal/apperr"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/storage"
)

// SQLiteFile is the database file name inside the index directory.
const SQLiteFile = "journal.db"

// SQLiteStore keeps tables in a local SQLite database and answers searches
// with an exact L2 scan over the rows that pass the date filter.
type SQLiteStore struct {
	db      *sql.DB
	tables  storage.TableStore
	records storage.RecordStore
}

// OpenSQLiteStore opens (or creates) the index database inside dir.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperr.Capability(err, "failed to create index directory")
	}
	db, err := storage.New(filepath.Join(dir, SQLiteFile))
	if err != nil {
		return nil, apperr.Capability(err, "failed to open index database")
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, apperr.Capability(err, "failed to migrate index database")
	}
	return NewSQLiteStore(db, storage.NewTableRepo(db), storage.NewRecordRepo(db)), nil
}

// NewSQLiteStore creates a store over existing repositories. db may be nil
// when the caller owns the connection.
func NewSQLiteStore(db *sql.DB, tables storage.TableStore, records storage.RecordStore) *SQLiteStore {
	return &SQLiteStore{db: db, tables: tables, records: records}
}

// TableNames lists existing tables.
func (s *SQLiteStore) TableNames(ctx context.Context) ([]string, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, apperr.Capability(err, "failed to list tables")
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names, nil
}

// CreateTable writes the catalog entry and all records in one transaction.
func (s *SQLiteStore) CreateTable(ctx context.Context, name string, schema Schema, records []Record) (Table, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRecords(schema, records); err != nil {
		return nil, err
	}

	rows := make([]storage.RecordRow, len(records))
	for i, r := range records {
		rows[i] = storage.RecordRow{
			Path:        r.Path,
			Date:        r.Date,
			Content:     r.Content,
			ChunkIndex:  r.ChunkIndex,
			TotalChunks: r.TotalChunks,
			Embedding:   r.Embedding,
		}
	}

	err := s.tables.Create(ctx, &storage.TableRecord{
		Name:           name,
		Dimension:      schema.Dimension,
		EmbeddingModel: schema.EmbeddingModel,
	}, rows)
	if err != nil {
		if errors.Is(err, apperr.ErrIndexExists) {
			return nil, err
		}
		return nil, apperr.Capability(err, "failed to create table")
	}

	logger.InfoContext(ctx, "table created", "table", name, "rows", len(records), "dimension", schema.Dimension)
	return &sqliteTable{name: name, schema: schema, records: s.records}, nil
}

// DropTable removes a table and its rows.
func (s *SQLiteStore) DropTable(ctx context.Context, name string) error {
	if err := s.tables.Delete(ctx, name); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Capability(err, "failed to drop table")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "table dropped", "table", name)
	return nil
}

// OpenTable opens an existing table.
func (s *SQLiteStore) OpenTable(ctx context.Context, name string) (Table, error) {
	rec, err := s.tables.Get(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Capability(err, "failed to open table")
	}
	return &sqliteTable{
		name:    rec.Name,
		schema:  Schema{Dimension: rec.Dimension, EmbeddingModel: rec.EmbeddingModel},
		records: s.records,
	}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type sqliteTable struct {
	name    string
	schema  Schema
	records storage.RecordStore
}

func (t *sqliteTable) Name() string   { return t.name }
func (t *sqliteTable) Schema() Schema { return t.schema }

func (t *sqliteTable) CountRows(ctx context.Context) (int, error) {
	n, err := t.records.Count(ctx, t.name)
	if err != nil {
		return 0, apperr.Capability(err, "failed to count rows")
	}
	return n, nil
}

type scoredRow struct {
	row      Row
	distance float32
}

func (t *sqliteTable) Search(ctx context.Context, req SearchRequest) ([]Row, error) {
	if req.Limit <= 0 {
		return nil, &apperr.ValidationError{Field: "limit", Message: "must be greater than 0"}
	}
	if len(req.Vector) != t.schema.Dimension {
		return nil, apperr.Inconsistent("query vector has %d dimensions, table %s has %d", len(req.Vector), t.name, t.schema.Dimension)
	}

	var hits []scoredRow
	err := t.records.Scan(ctx, t.name, storage.DateRange{From: req.Filter.DateFrom, To: req.Filter.DateTo}, func(r storage.RecordRow) error {
		if len(r.Embedding) != t.schema.Dimension {
			return apperr.Inconsistent("record %s#%d has %d dimensions, table %s has %d", r.Path, r.ChunkIndex, len(r.Embedding), t.name, t.schema.Dimension)
		}
		hits = append(hits, scoredRow{
			row: Row{
				Path:        r.Path,
				Date:        r.Date,
				Content:     r.Content,
				ChunkIndex:  r.ChunkIndex,
				TotalChunks: r.TotalChunks,
			},
			distance: l2(req.Vector, r.Embedding),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDataConsistency) {
			return nil, err
		}
		return nil, apperr.Capability(err, "failed to scan table")
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})
	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}

	rows := make([]Row, len(hits))
	for i := range hits {
		d := hits[i].distance
		rows[i] = hits[i].row
		rows[i].Distance = &d
	}
	return rows, nil
}

// l2 is the Euclidean distance between two vectors of equal length.
func l2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

func validateRecords(schema Schema, records []Record) error {
	if schema.Dimension <= 0 {
		return &apperr.ValidationError{Field: "dimension", Message: "must be greater than 0"}
	}
	for _, r := range records {
		if len(r.Embedding) != schema.Dimension {
			return apperr.Inconsistent("record %s#%d has %d dimensions, schema has %d", r.Path, r.ChunkIndex, len(r.Embedding), schema.Dimension)
		}
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)

