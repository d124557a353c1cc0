package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks journal-rag/internal/vectorstore Store,Table

import "context"

// DefaultTable is the table that holds indexed journal chunks.
const DefaultTable = "documents"

// Schema pins the embedding layout of a table at creation time.
type Schema struct {
	Dimension      int
	EmbeddingModel string
}

// Record is one indexed chunk.
type Record struct {
	Path        string
	Date        int32 // days since 1970-01-01
	Content     string
	ChunkIndex  int32
	TotalChunks int32
	Embedding   []float32
}

// Row is a search hit. Distance is nil when the backend does not report one.
type Row struct {
	Path        string
	Date        int32
	Content     string
	ChunkIndex  int32
	TotalChunks int32
	Distance    *float32
}

// SearchRequest describes a nearest-neighbor query.
type SearchRequest struct {
	Vector []float32
	Filter Filter
	Limit  int
}

// Store manages vector tables.
type Store interface {
	// TableNames lists existing tables.
	TableNames(ctx context.Context) ([]string, error)

	// CreateTable creates a table from the full record set in one write.
	// Every embedding must have schema.Dimension elements.
	CreateTable(ctx context.Context, name string, schema Schema, records []Record) (Table, error)

	// DropTable removes a table. Returns apperr.ErrNotFound if it does not exist.
	DropTable(ctx context.Context, name string) error

	// OpenTable opens an existing table. Returns apperr.ErrNotFound if it does not exist.
	OpenTable(ctx context.Context, name string) (Table, error)

	// Close releases the connection.
	Close() error
}

// Table is an open vector table.
type Table interface {
	Name() string
	Schema() Schema

	// CountRows returns the number of stored records.
	CountRows(ctx context.Context) (int, error)

	// Search returns at most req.Limit rows matching req.Filter, nearest first.
	Search(ctx context.Context, req SearchRequest) ([]Row, error)
}
