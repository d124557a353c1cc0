package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"journal-rag/internal/apperr"
	"journal-rag/internal/config"
	"journal-rag/internal/dates"
	"journal-rag/internal/rag"
	"journal-rag/internal/service"
)

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type searchOptions struct {
	after      string
	before     string
	numResults int
	filesOnly  bool
	debug      bool
	format     string
}

// NewSearchCommand returns the rag-search command.
func NewSearchCommand(cfg *config.Config, newService SearchServiceFunc) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "rag-search <query>",
		Short: "Search indexed journal files",
		Long: `Embeds the query and returns the nearest journal chunks, optionally limited
to a date range. When the index or the embedder is unavailable a fixed set of
placeholder results is printed instead.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, cfg, newService, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.after, "after", "", "only entries dated on or after YYYY-MM-DD")
	flags.StringVar(&opts.before, "before", "", "only entries dated on or before YYYY-MM-DD")
	flags.IntVarP(&opts.numResults, "num-results", "n", rag.DefaultLimit, "number of results to return")
	flags.BoolVar(&opts.filesOnly, "files-only", false, "print only file paths")
	flags.BoolVar(&opts.debug, "debug", false, "show retrieval metadata")
	flags.StringVarP(&opts.format, "format", "f", FormatText, "output format: text or json")

	return cmd
}

func runSearch(cmd *cobra.Command, cfg *config.Config, newService SearchServiceFunc, query string, opts searchOptions) error {
	if opts.format != FormatText && opts.format != FormatJSON {
		return &apperr.ValidationError{Field: "format", Message: "must be text or json"}
	}

	ctx := commandContext(cmd, cfg, opts.debug)
	stderr := cmd.ErrOrStderr()
	st := newStyles(stderr)

	if opts.debug {
		fmt.Fprintln(stderr, st.title.Render(fmt.Sprintf("Query: '%s'", query)))
		if opts.after != "" {
			fmt.Fprintln(stderr, st.muted.Render("After: "+opts.after))
		}
		if opts.before != "" {
			fmt.Fprintln(stderr, st.muted.Render("Before: "+opts.before))
		}
	}

	svc, closeFn, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, closeFn)

	outcome, err := svc.Search(ctx, service.SearchRequest{
		Query:  query,
		After:  opts.after,
		Before: opts.before,
		Limit:  opts.numResults,
		Debug:  opts.debug,
	})
	if err != nil {
		return err
	}
	if outcome.Degraded() {
		fmt.Fprintln(stderr, st.warn.Render(fmt.Sprintf("Error searching index: %v", outcome.Reason)))
		fmt.Fprintln(stderr, st.warn.Render("Falling back to stub results"))
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.format == FormatJSON:
		return writeJSON(out, outcome.Results)
	case opts.filesOnly:
		for _, r := range outcome.Results {
			fmt.Fprintln(out, r.Path)
		}
		return nil
	default:
		return writeText(out, outcome.Results, opts.debug)
	}
}

func writeJSON(w io.Writer, results []rag.Result) error {
	if results == nil {
		results = []rag.Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, results []rag.Result, debug bool) error {
	for i, r := range results {
		fmt.Fprintf(w, "\n%d %s | %s | Score: %.3f\n", i+1, dates.Format(r.Date), r.Path, r.Score)
		fmt.Fprintf(w, "  %s\n", r.Snippet)

		if debug && r.Metadata != nil {
			meta, err := json.MarshalIndent(r.Metadata, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode metadata: %w", err)
			}
			fmt.Fprintf(w, "  Debug: %s\n", meta)
		}
	}
	return nil
}
