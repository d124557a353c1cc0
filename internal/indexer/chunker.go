package indexer

import (
	"strings"

	"journal-rag/internal/journal"
	"journal-rag/internal/sanitizer"
)

const (
	// ChunkerVersion identifies the chunking rules; it feeds the index version.
	ChunkerVersion = "v2.0"

	DefaultMaxChunkSize = 2000
	DefaultMinChunkSize = 100
)

// ChunkOptions controls how cleaned text is split. Sizes are in bytes.
type ChunkOptions struct {
	MaxSize   int
	MinSize   int
	Sanitizer *sanitizer.Sanitizer
}

// DefaultChunkOptions returns the standard sizes with the default template rules.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxSize:   DefaultMaxChunkSize,
		MinSize:   DefaultMinChunkSize,
		Sanitizer: sanitizer.Default(),
	}
}

// ExtractChunks sanitizes content and splits it into chunks of at most maxSize
// bytes using the default options otherwise.
func ExtractChunks(content string, maxSize int) []string {
	opts := DefaultChunkOptions()
	opts.MaxSize = maxSize
	chunks, _ := opts.extract(content)
	return chunks
}

// Extract sanitizes content and splits it into chunks.
func (o ChunkOptions) Extract(content string) []string {
	chunks, _ := o.extract(content)
	return chunks
}

// ChunkDocument chunks a document body and stamps every chunk with its
// source path, date, index and total.
func (o ChunkOptions) ChunkDocument(doc journal.Document) ([]Chunk, sanitizer.Report) {
	texts, report := o.extract(doc.Body)
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			SourcePath: doc.Path,
			SourceDate: doc.Date,
			Content:    text,
			Index:      i,
			Total:      len(texts),
		}
	}
	return chunks, report
}

// extract scans the cleaned text line by line. A buffer is flushed before a
// header line and before a line that would push it past MaxSize. Buffers
// flushed at a header or at the end whose trimmed length is not above
// MinSize are discarded; a buffer flushed at the size limit is always kept.
// A single line longer than MaxSize becomes a chunk of its own.
func (o ChunkOptions) extract(content string) ([]string, sanitizer.Report) {
	san := o.Sanitizer
	if san == nil {
		san = sanitizer.Default()
	}
	maxSize := o.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	minSize := o.MinSize
	if minSize < 0 {
		minSize = 0
	}

	cleaned, report := san.CleanWithReport(content)
	if cleaned == "" {
		return nil, report
	}

	var (
		chunks []string
		buf    strings.Builder
	)
	flush := func(minLen int) {
		if text := strings.TrimSpace(buf.String()); text != "" && len(text) > minLen {
			chunks = append(chunks, text)
		}
		buf.Reset()
	}

	for _, line := range strings.Split(cleaned, "\n") {
		if buf.Len() > 0 {
			switch {
			case strings.HasPrefix(line, "#"):
				flush(minSize)
			case buf.Len()+len(line) > maxSize:
				flush(0)
			}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush(minSize)

	return chunks, report
}
