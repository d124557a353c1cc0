package journal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"journal-rag/internal/dates"
)

const frontmatterDelim = "---"

// Frontmatter is the parsed YAML header of an entry.
type Frontmatter map[string]any

// SplitFrontmatter separates a leading "---" delimited YAML block from the
// markdown body. ok is false when there is no complete block. A block that
// is not valid YAML is still removed from the body and reported through err.
func SplitFrontmatter(data []byte) (fm Frontmatter, body string, ok bool, err error) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(frontmatterDelim)) {
		return nil, string(data), false, nil
	}

	rest := trimmed[len(frontmatterDelim):]
	idx := bytes.Index(rest, []byte("\n"+frontmatterDelim))
	if idx < 0 {
		return nil, string(data), false, nil
	}

	block := rest[:idx]
	after := rest[idx+1+len(frontmatterDelim):]
	// Drop the remainder of the closing delimiter line.
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 && len(bytes.TrimSpace(after[:nl])) == 0 {
		after = after[nl+1:]
	} else if nl < 0 && len(bytes.TrimSpace(after)) == 0 {
		after = nil
	}
	body = strings.TrimLeft(string(after), "\n\r")

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, body, true, fmt.Errorf("invalid frontmatter yaml: %w", err)
	}
	if fm == nil {
		fm = Frontmatter{}
	}
	return fm, body, true, nil
}

// ErrNoDate is returned by Date when the frontmatter has no usable date field.
var ErrNoDate = errors.New("frontmatter has no date field")

// Date returns the calendar date declared in the "date" field.
// yaml.v3 decodes unquoted timestamps into interface values as strings,
// but a time.Time is accepted as well.
func (fm Frontmatter) Date() (time.Time, error) {
	raw, ok := fm["date"]
	if !ok || raw == nil {
		return time.Time{}, ErrNoDate
	}

	switch v := raw.(type) {
	case string:
		return dates.Parse(strings.TrimSpace(v))
	case time.Time:
		return dates.Truncate(v), nil
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrNoDate, raw)
	}
}
