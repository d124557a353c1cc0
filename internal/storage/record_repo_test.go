package storage

import (
	"context"
	"errors"
	"testing"
)

func int32Ptr(v int32) *int32 { return &v }

func TestRecordRepo_Scan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []RecordRow{
		{Path: "a.md", Date: 100, Content: "a", ChunkIndex: 0, TotalChunks: 1, Embedding: []float32{1, 0}},
		{Path: "b.md", Date: 200, Content: "b", ChunkIndex: 0, TotalChunks: 1, Embedding: []float32{0, 1}},
		{Path: "c.md", Date: 300, Content: "c", ChunkIndex: 0, TotalChunks: 1, Embedding: []float32{0.5, 0.5}},
	}
	if err := NewTableRepo(db).Create(ctx, &TableRecord{Name: "documents", Dimension: 2, EmbeddingModel: "m"}, rows); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	repo := NewRecordRepo(db)

	tests := []struct {
		name  string
		dr    DateRange
		paths []string
	}{
		{name: "unbounded", paths: []string{"a.md", "b.md", "c.md"}},
		{name: "from inclusive", dr: DateRange{From: int32Ptr(200)}, paths: []string{"b.md", "c.md"}},
		{name: "to inclusive", dr: DateRange{To: int32Ptr(200)}, paths: []string{"a.md", "b.md"}},
		{name: "single day", dr: DateRange{From: int32Ptr(200), To: int32Ptr(200)}, paths: []string{"b.md"}},
		{name: "empty range", dr: DateRange{From: int32Ptr(300), To: int32Ptr(100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			err := repo.Scan(ctx, "documents", tt.dr, func(row RecordRow) error {
				if len(row.Embedding) != 2 {
					t.Errorf("row %s embedding length = %d, want 2", row.Path, len(row.Embedding))
				}
				got = append(got, row.Path)
				return nil
			})
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(got) != len(tt.paths) {
				t.Fatalf("Scan() paths = %v, want %v", got, tt.paths)
			}
			for i := range got {
				if got[i] != tt.paths[i] {
					t.Errorf("Scan() paths = %v, want %v", got, tt.paths)
					break
				}
			}
		})
	}
}

func TestRecordRepo_ScanStopsOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := NewTableRepo(db).Create(ctx, &TableRecord{Name: "documents", Dimension: 2, EmbeddingModel: "m"}, testRows(5)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stop := errors.New("stop")
	calls := 0
	err := NewRecordRepo(db).Scan(ctx, "documents", DateRange{}, func(RecordRow) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Scan() error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestEncodeDecodeEmbedding(t *testing.T) {
	vec := []float32{0, -0.5, 3.25, 1e-7}
	got, ok := DecodeEmbedding(EncodeEmbedding(vec))
	if !ok {
		t.Fatal("DecodeEmbedding() rejected a valid blob")
	}
	if len(got) != len(vec) {
		t.Fatalf("DecodeEmbedding() length = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("DecodeEmbedding()[%d] = %v, want %v", i, got[i], vec[i])
		}
	}

	if _, ok := DecodeEmbedding([]byte{1, 2, 3}); ok {
		t.Error("DecodeEmbedding() accepted a truncated blob")
	}
}
