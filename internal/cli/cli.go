// Package cli implements the rag-index and rag-search commands.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"journal-rag/internal/app"
	"journal-rag/internal/config"
	"journal-rag/internal/contextutil"
	"journal-rag/internal/indexer"
	"journal-rag/internal/service"
)

// IndexServiceFunc builds the indexing service once flags have been applied
// to cfg. The returned function releases what it opened.
type IndexServiceFunc func(ctx context.Context, cfg *config.Config, progress indexer.ProgressFunc) (service.IndexService, func() error, error)

// SearchServiceFunc builds the search service once flags have been applied
// to cfg. The returned function releases what it opened.
type SearchServiceFunc func(ctx context.Context, cfg *config.Config) (service.SearchService, func() error, error)

type styles struct {
	title lipgloss.Style
	muted lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
}

// newStyles binds the palette to w so that color is dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// commandContext returns the command context carrying a logger that writes
// to the command's stderr.
func commandContext(cmd *cobra.Command, cfg *config.Config, debug bool) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	level := cfg.LogLevel
	if debug {
		level = slog.LevelDebug
	}
	logger := app.NewLogger(cmd.ErrOrStderr(), cfg.LogFormat, level)
	return contextutil.WithLogger(ctx, logger)
}

func closeQuietly(ctx context.Context, closeFn func() error) {
	if closeFn == nil {
		return
	}
	if err := closeFn(); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to release resources", "error", err)
	}
}
