package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "journal.db"))
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

func TestNew_Pragmas(t *testing.T) {
	db := openMigrated(t)

	tests := []struct {
		pragma string
		want   int
	}{
		{pragma: "foreign_keys", want: 1},
		{pragma: "busy_timeout", want: 5000},
	}
	for _, tt := range tests {
		var got int
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %d, want %d", tt.pragma, got, tt.want)
		}
	}

	if n := db.Stats().MaxOpenConnections; n != 25 {
		t.Errorf("MaxOpenConnections = %d, want 25", n)
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "absent", "journal.db"))
	if err == nil {
		_ = db.Close()
		t.Fatal("New() in a missing directory should fail")
	}
}

func TestMigrate_Schema(t *testing.T) {
	db := openMigrated(t)

	// A second run must leave the schema untouched.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	objects := []struct {
		kind string
		name string
	}{
		{kind: "table", name: "vector_tables"},
		{kind: "table", name: "records"},
		{kind: "index", name: "idx_records_table_date"},
	}
	for _, o := range objects {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", o.kind, o.name).Scan(&count)
		if err != nil {
			t.Fatalf("lookup %s %s: %v", o.kind, o.name, err)
		}
		if count != 1 {
			t.Errorf("%s %s: found %d, want 1", o.kind, o.name, count)
		}
	}
}

func TestMigrate_DropCascadesToRecords(t *testing.T) {
	db := openMigrated(t)

	if _, err := db.Exec(`INSERT INTO vector_tables (name, dimension, embedding_model) VALUES ('documents', 2, 'm')`); err != nil {
		t.Fatalf("insert table: %v", err)
	}
	_, err := db.Exec(`INSERT INTO records (table_name, path, date, content, chunk_index, total_chunks, embedding)
		VALUES ('documents', 'a.md', 20291, 'text', 0, 1, ?)`, EncodeEmbedding([]float32{1, 0}))
	if err != nil {
		t.Fatalf("insert record: %v", err)
	}

	if _, err := db.Exec(`DELETE FROM vector_tables WHERE name = 'documents'`); err != nil {
		t.Fatalf("delete table: %v", err)
	}

	var left int
	if err := db.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&left); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if left != 0 {
		t.Errorf("%d records left after dropping their table", left)
	}

	// Records for an unknown table violate the foreign key.
	_, err = db.Exec(`INSERT INTO records (table_name, path, date, content, chunk_index, total_chunks, embedding)
		VALUES ('missing', 'a.md', 0, 'text', 0, 1, x'00')`)
	if err == nil {
		t.Error("insert into unknown table should fail")
	}
}
