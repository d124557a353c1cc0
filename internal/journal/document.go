// Package journal discovers dated markdown journal entries on disk.
package journal

import "time"

// DateSource records where a document's date came from.
type DateSource string

const (
	DateFromFrontmatter DateSource = "frontmatter"
	DateFromModTime     DateSource = "mtime"
)

// Document is one markdown entry read from the journal directory.
type Document struct {
	Path       string     // path as walked from the journal root, slash separated
	Date       time.Time  // calendar date, UTC midnight
	DateSource DateSource // frontmatter or file modification time
	Title      string     // first heading, or derived from the filename
	Body       string     // content after the frontmatter block
}
