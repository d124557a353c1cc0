package rag

import (
	"encoding/json"
	"fmt"
	"time"

	"journal-rag/internal/dates"
)

// DefaultLimit is the number of results returned when a query sets none.
const DefaultLimit = 10

// Query is a natural-language search over the journal index.
type Query struct {
	// Text is matched semantically and used to locate snippets.
	Text string
	// After and Before bound the entry date, both inclusive. Nil is open.
	After  *time.Time
	Before *time.Time
	// Limit caps the number of results. Zero means DefaultLimit.
	Limit int
	// Debug attaches ResultMetadata to every result.
	Debug bool
}

// Result is one matching chunk.
type Result struct {
	Path     string
	Date     time.Time
	Score    float32
	Snippet  string
	Metadata *ResultMetadata
}

// ResultMetadata carries retrieval details for debugging.
type ResultMetadata struct {
	ChunkIndex  int32    `json:"chunk_index"`
	TotalChunks int32    `json:"total_chunks"`
	Distance    *float32 `json:"distance"`
}

type resultJSON struct {
	Path     string          `json:"path"`
	Date     string          `json:"date"`
	Score    float32         `json:"score"`
	Snippet  string          `json:"snippet"`
	Metadata *ResultMetadata `json:"metadata,omitempty"`
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Path:     r.Path,
		Date:     dates.Format(r.Date),
		Score:    r.Score,
		Snippet:  r.Snippet,
		Metadata: r.Metadata,
	})
}

// Mode tells whether results came from the index.
type Mode string

const (
	// ModeLive results come from the vector index.
	ModeLive Mode = "live"
	// ModeDegraded results are the fixed stub set, returned when the index
	// or the embedder is unavailable.
	ModeDegraded Mode = "degraded"
)

// Outcome is the result of a search. Reason is set only in ModeDegraded.
type Outcome struct {
	Mode    Mode
	Results []Result
	Reason  error
}

// Degraded reports whether the results are stubs.
func (o Outcome) Degraded() bool {
	return o.Mode == ModeDegraded
}

func (o Outcome) String() string {
	if o.Degraded() {
		return fmt.Sprintf("%s (%d results): %v", o.Mode, len(o.Results), o.Reason)
	}
	return fmt.Sprintf("%s (%d results)", o.Mode, len(o.Results))
}
