package storage

import "time"

// TableRecord is one entry of the vector table catalog.
type TableRecord struct {
	Name           string
	Dimension      int
	EmbeddingModel string
	CreatedAt      time.Time
}

// RecordRow is one stored chunk with its embedding.
type RecordRow struct {
	ID          int64
	TableName   string
	Path        string
	Date        int32 // days since 1970-01-01
	Content     string
	ChunkIndex  int32
	TotalChunks int32
	Embedding   []float32
}

// DateRange bounds the date column; nil ends are open.
type DateRange struct {
	From *int32
	To   *int32
}
