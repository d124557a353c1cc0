package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"journal-rag/internal/contextutil"
	"journal-rag/internal/dates"
)

const (
	defaultExtension      = ".md"
	defaultTemplatePrefix = "template"
)

// ScanResult is the outcome of one scan pass.
type ScanResult struct {
	Documents   []Document // sorted by date ascending, then path
	Candidates  int        // markdown files considered
	Unreadable  int        // files skipped because they could not be read
	BeforeSince int        // documents dropped by the since cutoff
	ModTimeDate int        // documents dated from the file modification time
}

// Scanner walks a journal directory and loads dated documents.
type Scanner struct {
	extension      string
	templatePrefix string
	workers        int
}

// NewScanner creates a Scanner that reads files with up to workers goroutines.
// A non-positive workers value uses GOMAXPROCS.
func NewScanner(workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scanner{
		extension:      defaultExtension,
		templatePrefix: defaultTemplatePrefix,
		workers:        workers,
	}
}

// Scan recursively loads every markdown entry under root whose date is not
// earlier than since (when given). Unreadable files and bad frontmatter dates
// are logged and never abort the scan.
func (s *Scanner) Scan(ctx context.Context, root string, since *time.Time) (ScanResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	info, err := os.Stat(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("journal directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return ScanResult{}, fmt.Errorf("journal directory %s: not a directory", root)
	}

	paths, err := s.candidates(ctx, root)
	if err != nil {
		return ScanResult{}, err
	}

	loaded := make([]*Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := s.load(gctx, path)
			if err != nil {
				logger.WarnContext(gctx, "skipping unreadable file", "path", path, "error", err)
				return nil
			}
			loaded[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	result := ScanResult{Candidates: len(paths)}
	var cutoff time.Time
	if since != nil {
		cutoff = dates.Truncate(*since)
	}
	for _, doc := range loaded {
		if doc == nil {
			result.Unreadable++
			continue
		}
		if since != nil && doc.Date.Before(cutoff) {
			logger.DebugContext(ctx, "skipping document older than cutoff", "path", doc.Path, "date", dates.Format(doc.Date), "since", dates.Format(cutoff))
			result.BeforeSince++
			continue
		}
		if doc.DateSource == DateFromModTime {
			result.ModTimeDate++
		}
		result.Documents = append(result.Documents, *doc)
	}

	sort.SliceStable(result.Documents, func(i, j int) bool {
		a, b := result.Documents[i], result.Documents[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Path < b.Path
	})

	logger.InfoContext(ctx, "journal scan complete",
		"root", root,
		"candidates", result.Candidates,
		"documents", len(result.Documents),
		"unreadable", result.Unreadable,
		"before_since", result.BeforeSince,
	)
	return result, nil
}

// candidates lists markdown files under root, skipping template files.
func (s *Scanner) candidates(ctx context.Context, root string) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.WarnContext(ctx, "failed to access path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != s.extension {
			return nil
		}
		if strings.HasPrefix(d.Name(), s.templatePrefix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk journal directory %s: %w", root, err)
	}
	return paths, nil
}

// load reads one file and resolves its date.
func (s *Scanner) load(ctx context.Context, path string) (*Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: filepath.ToSlash(path)}

	fm, body, hasFM, fmErr := SplitFrontmatter(data)
	doc.Body = body

	date, dateErr := frontmatterDate(fm, hasFM, fmErr)
	if dateErr == nil {
		doc.Date = date
		doc.DateSource = DateFromFrontmatter
	} else {
		var invalid *invalidDateError
		if errors.As(dateErr, &invalid) {
			logger.WarnContext(ctx, "invalid date in frontmatter, using file modification time", "path", doc.Path, "error", invalid.err)
		} else {
			logger.DebugContext(ctx, "using file modification time", "path", doc.Path, "reason", dateErr.Error())
		}
		modDate, err := modTimeDate(path)
		if err != nil {
			return nil, err
		}
		doc.Date = modDate
		doc.DateSource = DateFromModTime
	}

	doc.Title = ExtractTitle([]byte(doc.Body), path)
	return doc, nil
}

type invalidDateError struct{ err error }

func (e *invalidDateError) Error() string { return e.err.Error() }
func (e *invalidDateError) Unwrap() error { return e.err }

var (
	errNoFrontmatter          = errors.New("no frontmatter")
	errUnparseableFrontmatter = errors.New("unparseable frontmatter")
)

func frontmatterDate(fm Frontmatter, hasFM bool, fmErr error) (time.Time, error) {
	if !hasFM {
		return time.Time{}, errNoFrontmatter
	}
	if fmErr != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errUnparseableFrontmatter, fmErr)
	}
	date, err := fm.Date()
	if err == nil {
		return date, nil
	}
	if errors.Is(err, ErrNoDate) {
		return time.Time{}, err
	}
	return time.Time{}, &invalidDateError{err: err}
}

func modTimeDate(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return dates.Truncate(info.ModTime()), nil
}
