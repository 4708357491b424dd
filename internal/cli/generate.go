package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/ubidoc/internal/config"
	"github.com/mvp-joe/ubidoc/internal/git"
	"github.com/mvp-joe/ubidoc/internal/report"
	"github.com/mvp-joe/ubidoc/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type generateOptions struct {
	output  string
	formats []string
	quiet   bool
	watch   bool
	workers int
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Generate the glossary for a source tree",
	Long: `Generate walks dir (default: the current directory), reads the
documentation comments of every PHP, Java, Kotlin and Ruby type declaration
and writes the glossary to <output>/ubi-doc/.

Source links point at the hosted repository. The repository and branch
come from link.repository and link.branch in .ubidoc/config.yml, from
UBIDOC_LINK_REPOSITORY/GITHUB_REPOSITORY and UBIDOC_LINK_BRANCH/GITHUB_REF_NAME,
or failing those from the git checkout.

Examples:
  # HTML glossary for the current directory
  ubidoc generate

  # Every format, written under docs/ubi-doc/
  ubidoc generate src --format html,json,sqlite -o docs

  # Regenerate whenever a source file changes
  ubidoc generate --watch
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.output, "output", "o", "", "directory that receives ubi-doc/ (default: output.dir)")
	f.StringSliceVar(&genOpts.formats, "format", nil, fmt.Sprintf("output formats %v (default: output.formats)", report.Formats()))
	f.BoolVarP(&genOpts.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	f.BoolVarP(&genOpts.watch, "watch", "w", false, "Watch for file changes and regenerate")
	f.IntVar(&genOpts.workers, "workers", 0, "concurrent file parses (default: one per CPU)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := rootArg(args, 0)

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = genOpts.output
	}
	if flags.Changed("format") {
		cfg.Output.Formats = genOpts.formats
	}
	if flags.Changed("workers") {
		cfg.Workers = genOpts.workers
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if genOpts.quiet {
		log.SetOutput(io.Discard)
	}

	return generate(ctx, root, cfg, genOpts, git.NewOperations(), cmd.OutOrStdout())
}

// generate produces the glossary once and, in watch mode, keeps it current
// until ctx is cancelled.
func generate(ctx context.Context, root string, cfg *config.Config, opts generateOptions, ops git.Operations, out io.Writer) error {
	followBranch := resolveLinks(cfg, root, ops)
	if cfg.Link.Repository == "" {
		log.Printf("Warning: no repository configured, source links are omitted")
	}

	progress := NewCLIProgressReporter(out, opts.quiet)
	g, err := newGenerator(root, cfg, progress, out, opts.quiet)
	if err != nil {
		return err
	}

	if err := g.Generate(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("generation cancelled")
		}
		return fmt.Errorf("generation failed: %w", err)
	}

	if !opts.watch {
		return nil
	}
	return watch(ctx, root, g, followBranch, ops)
}

func watch(ctx context.Context, root string, g *generator, followBranch bool, ops git.Operations) error {
	files, err := watcher.NewFileWatcher([]string{root}, g.walker)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	var branches watcher.GitWatcher
	if followBranch {
		if gitDir := ops.GetGitDir(root); gitDir != "" {
			if branches, err = watcher.NewGitWatcher(gitDir); err != nil {
				log.Printf("Warning: branch switches will not update links: %v", err)
				branches = nil
			}
		}
	}

	log.Println("Watching for changes (Ctrl+C to stop)...")
	coord := watcher.NewCoordinator(branches, files, g)
	if err := coord.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	log.Println("Watch mode stopped")
	return nil
}

func loadConfig(root string) (*config.Config, error) {
	var opts []config.LoaderOption
	if path := viper.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg, err := config.LoadConfigFromDir(root, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func rootArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "."
}
