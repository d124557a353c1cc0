package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"journal-rag/internal/apperr"
	"journal-rag/internal/config"
	"journal-rag/internal/indexer"
	"journal-rag/internal/service"
)

type indexOptions struct {
	journalDir string
	indexDir   string
	rebuild    bool
	since      string
	verbose    bool
}

// NewIndexCommand returns the rag-index command. Flag defaults come from cfg.
func NewIndexCommand(cfg *config.Config, newService IndexServiceFunc) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "rag-index",
		Short: "Index journal files for RAG search",
		Long: `Scans the journal directory for dated markdown entries, strips template
boilerplate, splits the rest into chunks and writes their embeddings to the
index. An existing index is only replaced with --rebuild.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, cfg, newService, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.journalDir, "journal-dir", "j", cfg.JournalDir, "journal directory to index")
	flags.StringVarP(&opts.indexDir, "lance-dir", "l", cfg.IndexDir, "index directory (alias --index-dir)")
	flags.BoolVarP(&opts.rebuild, "rebuild", "r", false, "drop and rebuild an existing index")
	flags.StringVarP(&opts.since, "since", "s", "", "only index entries dated on or after YYYY-MM-DD")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "index-dir" {
			name = "lance-dir"
		}
		return pflag.NormalizedName(name)
	})

	return cmd
}

func runIndex(cmd *cobra.Command, base *config.Config, newService IndexServiceFunc, opts indexOptions) error {
	cfg := *base
	cfg.JournalDir = opts.journalDir
	cfg.IndexDir = opts.indexDir
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := commandContext(cmd, &cfg, opts.verbose)
	stderr := cmd.ErrOrStderr()
	st := newStyles(stderr)

	fmt.Fprintln(stderr, st.title.Render("RAG Indexer"))
	fmt.Fprintln(stderr, st.muted.Render("Scanning: "+cfg.JournalDir))
	fmt.Fprintln(stderr, st.muted.Render("Index location: "+cfg.IndexDir))

	var progress indexer.ProgressFunc
	if opts.verbose {
		progress = func(done, total, texts int) {
			fmt.Fprintf(stderr, "  Embedded batch %d/%d (%d chunks)\n", done, total, texts)
		}
	}

	svc, closeFn, err := newService(ctx, &cfg, progress)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, closeFn)

	stats, err := svc.Index(ctx, service.IndexRequest{
		Rebuild: opts.rebuild,
		Since:   opts.since,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrIndexExists) {
			fmt.Fprintln(stderr, st.warn.Render("Index already exists. Use --rebuild to overwrite."))
		}
		return err
	}

	out := cmd.OutOrStdout()
	if stats.Documents == 0 {
		fmt.Fprintln(out, "No documents to index!")
		return nil
	}
	fmt.Fprintf(out, "Created table with %d chunks from %d documents\n", stats.Records, stats.Documents)
	if opts.verbose {
		fmt.Fprintf(out, "  Sections: %d, boilerplate dropped: %d, empty dropped: %d\n",
			stats.Sections, stats.DroppedBoilerplate, stats.DroppedEmpty)
		fmt.Fprintf(out, "  Chunks per document: min %d, mean %.1f, max %d\n",
			stats.ChunksPerDoc.Min, stats.ChunksPerDoc.Mean, stats.ChunksPerDoc.Max)
		fmt.Fprintf(out, "  Embedding model: %s (%d dimensions), %d batches\n",
			stats.EmbeddingModel, stats.EmbeddingDimension, stats.Batches)
	}
	fmt.Fprintln(stderr, st.ok.Render(fmt.Sprintf("Indexing complete in %s", stats.Elapsed.Round(time.Millisecond))))
	return nil
}
