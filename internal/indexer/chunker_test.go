package indexer

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"journal-rag/internal/dates"
	"journal-rag/internal/journal"
)

// paragraph returns n lines of about 60 bytes each.
func paragraph(tag string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s line %02d: thinking about the retrieval pipeline today.\n", tag, i)
	}
	return b.String()
}

func TestExtractChunks_SplitsOnHeaders(t *testing.T) {
	content := "## Morning\n" + paragraph("morning", 4) + "\n## Evening\n" + paragraph("evening", 4)

	chunks := ExtractChunks(content, DefaultMaxChunkSize)
	if len(chunks) != 2 {
		t.Fatalf("ExtractChunks() returned %d chunks, want 2: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "## Morning") || !strings.HasPrefix(chunks[1], "## Evening") {
		t.Errorf("chunks do not start at headers: %q", chunks)
	}
}

func TestExtractChunks_SizeBound(t *testing.T) {
	var b strings.Builder
	for s := 0; s < 6; s++ {
		fmt.Fprintf(&b, "## Section %d\n", s)
		b.WriteString(paragraph(fmt.Sprintf("s%d", s), 25))
		b.WriteString("\n")
	}
	content := b.String()

	for _, maxSize := range []int{200, 500, 1000, 2000} {
		t.Run(fmt.Sprintf("max=%d", maxSize), func(t *testing.T) {
			chunks := ExtractChunks(content, maxSize)
			if len(chunks) == 0 {
				t.Fatal("ExtractChunks() returned no chunks")
			}
			for i, c := range chunks {
				if len(c) > maxSize {
					t.Errorf("chunk %d has %d bytes, want <= %d", i, len(c), maxSize)
				}
				if len(strings.TrimSpace(c)) <= DefaultMinChunkSize {
					t.Errorf("chunk %d has %d bytes, want > %d", i, len(c), DefaultMinChunkSize)
				}
			}
		})
	}
}

func TestExtractChunks_PreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("## Log\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "entry %03d: a long enough sentence to fill the buffer quickly.\n", i)
	}

	chunks := ExtractChunks(b.String(), 400)
	joined := strings.Join(chunks, "\n")

	last := -1
	for i := 0; i < 80; i++ {
		pos := strings.Index(joined, fmt.Sprintf("entry %03d:", i))
		if pos < 0 {
			t.Fatalf("entry %03d missing from chunks", i)
		}
		if pos < last {
			t.Fatalf("entry %03d out of order", i)
		}
		last = pos
	}
}

func TestExtractChunks_LongLineStandsAlone(t *testing.T) {
	long := strings.Repeat("x", 700)
	content := "## Notes\n" + paragraph("before", 3) + long + "\n" + paragraph("after", 3)

	chunks := ExtractChunks(content, 500)
	found := false
	for _, c := range chunks {
		if strings.Contains(c, long) {
			found = true
			if c != long {
				t.Errorf("over-long line shares a chunk: %d bytes", len(c))
			}
		} else if len(c) > 500 {
			t.Errorf("chunk has %d bytes, want <= 500", len(c))
		}
	}
	if !found {
		t.Error("over-long line was dropped")
	}
}

func TestExtractChunks_KeepsShortTextBeforeLongLine(t *testing.T) {
	prose := "Short note before the long line, just a thought about the morning run."
	long := strings.TrimSpace(strings.Repeat("word ", 390))
	content := "# Day\n" + prose + "\n" + long + "\nclosing line here\n"

	chunks := ExtractChunks(content, DefaultMaxChunkSize)

	joined := strings.Join(chunks, "\n")
	for _, want := range []string{prose, long} {
		if !strings.Contains(joined, want) {
			t.Errorf("ExtractChunks() lost %.30q...: %d chunks", want, len(chunks))
		}
	}
	if len(chunks) == 0 || !strings.HasPrefix(chunks[0], "# Day\n"+prose) {
		t.Errorf("first chunk = %.60q, want the heading and the short note", chunks)
	}
	for i, c := range chunks {
		if len(c) > DefaultMaxChunkSize {
			t.Errorf("chunk %d has %d bytes, want <= %d", i, len(c), DefaultMaxChunkSize)
		}
	}
}

func TestExtractChunks_DropsSmallAndEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "only boilerplate", content: "## V. End-of-Day Reflection\n- Gratitude Moment:\n- [ ]\n- [ ]\n"},
		{name: "below minimum", content: "## Short\nshort one\nshort two\nshort three\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if chunks := ExtractChunks(tt.content, DefaultMaxChunkSize); len(chunks) != 0 {
				t.Errorf("ExtractChunks() = %q, want none", chunks)
			}
		})
	}
}

func TestExtractChunks_Deterministic(t *testing.T) {
	content := "## A\n" + paragraph("a", 10) + "## B\n" + paragraph("b", 10)
	first := ExtractChunks(content, 300)
	second := ExtractChunks(content, 300)
	if strings.Join(first, "\x00") != strings.Join(second, "\x00") {
		t.Error("ExtractChunks() is not deterministic")
	}
}

func TestChunkOptions_ChunkDocument(t *testing.T) {
	date := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	doc := journal.Document{
		Path: "journal/2025/07/21.md",
		Date: date,
		Body: "## One\n" + paragraph("one", 3) + "## Two\n" + paragraph("two", 3) + "## Three\n" + paragraph("three", 3),
	}

	chunks, report := DefaultChunkOptions().ChunkDocument(doc)
	if len(chunks) != 3 {
		t.Fatalf("ChunkDocument() returned %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i || c.Total != 3 {
			t.Errorf("chunk %d index/total = %d/%d, want %d/3", i, c.Index, c.Total, i)
		}
		if c.SourcePath != doc.Path || !c.SourceDate.Equal(date) {
			t.Errorf("chunk %d source = %s %v", i, c.SourcePath, c.SourceDate)
		}
	}
	if report.Kept() != 3 {
		t.Errorf("report.Kept() = %d, want 3", report.Kept())
	}
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dates.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", s, err)
	}
	return d
}
