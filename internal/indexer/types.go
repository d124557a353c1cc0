package indexer

import "time"

// Chunk is a retrieval-sized piece of one journal document.
type Chunk struct {
	SourcePath string
	SourceDate time.Time
	Content    string
	Index      int // 0 <= Index < Total
	Total      int // same for every chunk of a document
}
