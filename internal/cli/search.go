package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/ubidoc/internal/extractor"
	"github.com/mvp-joe/ubidoc/internal/glossary"
	"github.com/mvp-joe/ubidoc/internal/report"
	"github.com/mvp-joe/ubidoc/internal/search"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	limit   int
	context string
	db      string
}

var searchOpts searchOptions

var searchCmd = &cobra.Command{
	Use:   "search <query> [dir]",
	Short: "Search the glossary",
	Long: `Search looks up terms, class names and descriptions. The query uses
bleve query-string syntax; an empty query ("") lists every term.

The glossary is extracted from dir (default: the current directory) unless
--db points at a database written by "generate --format sqlite".

Examples:
  ubidoc search invoice
  ubidoc search 'term:Order*' --context Sales
  ubidoc search payment --db ubi-doc/ubiquitous.db
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	f := searchCmd.Flags()
	f.IntVar(&searchOpts.limit, "limit", 15, "maximum results (1-100, larger values are capped at 100)")
	f.StringVar(&searchOpts.context, "context", "", "only terms of this bounded context")
	f.StringVar(&searchOpts.db, "db", "", "read the glossary from a SQLite export")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return searchGlossary(ctx, args[0], rootArg(args, 1), searchOpts, cmd.OutOrStdout())
}

func searchGlossary(ctx context.Context, query, root string, opts searchOptions, out io.Writer) error {
	set, err := loadGlossary(ctx, root, opts.db)
	if err != nil {
		return err
	}

	if opts.db != "" {
		if err := printSource(ctx, out, opts.db); err != nil {
			return err
		}
	}

	s, err := search.New(ctx, set)
	if err != nil {
		return fmt.Errorf("failed to index glossary: %w", err)
	}
	defer s.Close()

	results, err := s.Search(ctx, query, &search.Options{Limit: opts.limit, Context: opts.context})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(out, results)
	return nil
}

// loadGlossary reads a SQLite export when db is set and extracts from root
// otherwise.
func loadGlossary(ctx context.Context, root, db string) (*glossary.Set, error) {
	if db != "" {
		set, err := report.ReadSQLite(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("failed to read glossary database: %w", err)
		}
		return set, nil
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	walker, err := newWalker(root, cfg)
	if err != nil {
		return nil, err
	}

	ext, err := extractor.New(extractor.Options{Workers: cfg.Workers})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	set, _, err := ext.Run(ctx, walker)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return set, nil
}

// printSource describes the export a --db search reads from.
func printSource(ctx context.Context, out io.Writer, db string) error {
	meta, err := report.ReadMetadata(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read glossary metadata: %w", err)
	}

	source := meta["repository"]
	if source == "" {
		source = db
	} else if branch := meta["branch"]; branch != "" {
		source += "@" + branch
	}
	fmt.Fprintf(out, "Glossary %s: %s terms, generated %s (run %s)\n",
		source, meta["record_count"], meta["generated_at"], meta["run_id"])
	return nil
}

func printResults(out io.Writer, results []*search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching terms")
		return
	}

	for _, r := range results {
		rec := r.Record
		bc := rec.Context()
		if bc == "" {
			bc = "-"
		}
		fmt.Fprintf(out, "%s [%s] %s  %s  (%.2f)\n",
			rec.Term(), bc, rec.ClassName(), report.Label(rec.FilePath(), rec.LineNumber()), r.Score)
		if rec.Description() != "" {
			fmt.Fprintf(out, "    %s\n", rec.Description())
		}
	}
}
