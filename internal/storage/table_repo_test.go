package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"journal-rag/internal/apperr"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func testRows(n int) []RecordRow {
	rows := make([]RecordRow, n)
	for i := range rows {
		rows[i] = RecordRow{
			Path:        "journal/2025/07/21.md",
			Date:        20290,
			Content:     "chunk content",
			ChunkIndex:  int32(i),
			TotalChunks: int32(n),
			Embedding:   []float32{float32(i), 1},
		}
	}
	return rows
}

func TestTableRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTableRepo(db)
	ctx := context.Background()

	rows := testRows(3)
	table := &TableRecord{Name: "documents", Dimension: 2, EmbeddingModel: "test-model"}
	if err := repo.Create(ctx, table, rows); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for i, row := range rows {
		if row.ID == 0 {
			t.Errorf("rows[%d].ID not set", i)
		}
		if row.TableName != "documents" {
			t.Errorf("rows[%d].TableName = %q, want documents", i, row.TableName)
		}
	}

	got, err := repo.Get(ctx, "documents")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Dimension != 2 || got.EmbeddingModel != "test-model" {
		t.Errorf("Get() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("Get() CreatedAt not set")
	}

	n, err := NewRecordRepo(db).Count(ctx, "documents")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}

func TestTableRepo_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewTableRepo(db)
	ctx := context.Background()

	table := &TableRecord{Name: "documents", Dimension: 2, EmbeddingModel: "m"}
	if err := repo.Create(ctx, table, testRows(1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.Create(ctx, table, testRows(2))
	if !errors.Is(err, apperr.ErrIndexExists) {
		t.Fatalf("Create() duplicate error = %v, want ErrIndexExists", err)
	}

	// The failed create must not leak rows into the existing table.
	n, err := NewRecordRepo(db).Count(ctx, "documents")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestTableRepo_GetNotFound(t *testing.T) {
	repo := NewTableRepo(newTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestTableRepo_List(t *testing.T) {
	repo := NewTableRepo(newTestDB(t))
	ctx := context.Background()

	tables, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("List() on empty catalog = %v", tables)
	}

	for _, name := range []string{"zeta", "alpha"} {
		if err := repo.Create(ctx, &TableRecord{Name: name, Dimension: 2, EmbeddingModel: "m"}, nil); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	tables, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tables) != 2 || tables[0].Name != "alpha" || tables[1].Name != "zeta" {
		t.Errorf("List() = %+v, want alpha then zeta", tables)
	}
}

func TestTableRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewTableRepo(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &TableRecord{Name: "documents", Dimension: 2, EmbeddingModel: "m"}, testRows(4)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, "documents"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Get(ctx, "documents"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
	n, err := NewRecordRepo(db).Count(ctx, "documents")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() after Delete() = %d, want 0", n)
	}

	if err := repo.Delete(ctx, "documents"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
