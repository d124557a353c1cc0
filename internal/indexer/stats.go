package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"
)

// Stats summarises one indexing run.
type Stats struct {
	Candidates      int `json:"candidates"`
	Documents       int `json:"documents"`
	Unreadable      int `json:"unreadable"`
	BeforeSince     int `json:"before_since"`
	ModTimeDated    int `json:"mtime_dated"`
	DocsWith0Chunks int `json:"docs_with_0_chunks"`

	Sections           int `json:"sections"`
	DroppedBoilerplate int `json:"dropped_boilerplate"`
	DroppedEmpty       int `json:"dropped_empty"`

	Chunks             int       `json:"chunks"`
	ChunksPerDoc       SizeStats `json:"chunks_per_doc"`
	ChunkBytes         SizeStats `json:"chunk_bytes"`
	Records            int       `json:"records"`
	Batches            int       `json:"batches"`
	EmbeddingModel     string    `json:"embedding_model"`
	EmbeddingDimension int       `json:"embedding_dimension"`
	IndexVersion       string    `json:"index_version"`

	Elapsed time.Duration `json:"elapsed"`
}

// SizeStats describes a distribution of counts.
type SizeStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// LogArgs returns the stats as slog key/value pairs.
func (s *Stats) LogArgs() []any {
	return []any{
		"documents", s.Documents,
		"candidates", s.Candidates,
		"unreadable", s.Unreadable,
		"before_since", s.BeforeSince,
		"mtime_dated", s.ModTimeDated,
		"docs_with_0_chunks", s.DocsWith0Chunks,
		"sections", s.Sections,
		"dropped_boilerplate", s.DroppedBoilerplate,
		"dropped_empty", s.DroppedEmpty,
		"chunks", s.Chunks,
		"chunks_per_doc_min", s.ChunksPerDoc.Min,
		"chunks_per_doc_mean", s.ChunksPerDoc.Mean,
		"chunks_per_doc_max", s.ChunksPerDoc.Max,
		"records", s.Records,
		"batches", s.Batches,
		"index_version", s.IndexVersion,
		"elapsed", s.Elapsed.Round(time.Millisecond).String(),
	}
}

// computeSizeStats computes min, max, mean, and p95.
func computeSizeStats(values []int) SizeStats {
	if len(values) == 0 {
		return SizeStats{}
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	sum := 0
	for _, v := range values {
		sum += v
	}
	mean := float64(sum) / float64(len(values))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return SizeStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}

// IndexVersion identifies an index build by chunker rules, embedding model
// and chunk sizes. Two runs with the same inputs produce the same version.
func IndexVersion(model string, dims int, opts ChunkOptions) string {
	input := fmt.Sprintf("%s|%s|dims=%d|minChunkSize=%d|maxChunkSize=%d",
		ChunkerVersion, model, dims, opts.MinSize, opts.MaxSize)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
