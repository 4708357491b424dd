package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mvp-joe/ubidoc/internal/config"
	"github.com/mvp-joe/ubidoc/internal/discovery"
	"github.com/mvp-joe/ubidoc/internal/extractor"
	"github.com/mvp-joe/ubidoc/internal/git"
	"github.com/mvp-joe/ubidoc/internal/glossary/parsers"
	"github.com/mvp-joe/ubidoc/internal/report"
	"github.com/spf13/viper"
)

// generator runs one full extraction and writes every configured format.
// It implements watcher.Generator.
type generator struct {
	walker    *discovery.Walker
	extractor *extractor.Extractor
	outDir    string
	formats   []string
	out       io.Writer
	quiet     bool

	mu    sync.Mutex // protects links
	links report.LinkBuilder
}

func newWalker(root string, cfg *config.Config) (*discovery.Walker, error) {
	w, err := discovery.New(root, discovery.Options{
		Extensions: parsers.Extensions(),
		Ignore:     cfg.Source.Ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create walker: %w", err)
	}
	return w, nil
}

func newGenerator(root string, cfg *config.Config, progress extractor.ProgressReporter, out io.Writer, quiet bool) (*generator, error) {
	walker, err := newWalker(root, cfg)
	if err != nil {
		return nil, err
	}

	ext, err := extractor.New(extractor.Options{
		Workers:  cfg.Workers,
		Progress: progress,
		Verbose:  viper.GetBool("verbose"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	// Fail on unknown formats before any work is done.
	if _, err := report.NewWriter(cfg.Output.Dir, cfg.Output.Formats, cfg.LinkBuilder()); err != nil {
		return nil, err
	}

	return &generator{
		walker:    walker,
		extractor: ext,
		outDir:    cfg.Output.Dir,
		formats:   cfg.Output.Formats,
		out:       out,
		quiet:     quiet,
		links:     cfg.LinkBuilder(),
	}, nil
}

func (g *generator) SetBranch(branch string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.links.Branch = branch
}

func (g *generator) Generate(ctx context.Context) error {
	set, _, err := g.extractor.Run(ctx, g.walker)
	if err != nil {
		return err
	}

	g.mu.Lock()
	links := g.links
	g.mu.Unlock()

	w, err := report.NewWriter(g.outDir, g.formats, links)
	if err != nil {
		return err
	}

	paths, err := w.Write(ctx, set)
	if err != nil {
		return err
	}

	if !g.quiet {
		for _, p := range paths {
			fmt.Fprintf(g.out, "  Wrote %s\n", p)
		}
	}
	return nil
}

// resolveLinks fills the repository and branch the configuration leaves
// empty from the local checkout. It reports whether the branch came from
// git, in which case watch mode follows checkouts.
func resolveLinks(cfg *config.Config, root string, ops git.Operations) (followBranch bool) {
	if cfg.Link.Repository != "" && cfg.Link.Branch != "" {
		return false
	}

	repo, branch := git.LinkDefaults(ops, root)
	if cfg.Link.Repository == "" {
		cfg.Link.Repository = repo
	}
	if cfg.Link.Branch == "" && branch != "" {
		cfg.Link.Branch = branch
		return true
	}
	return false
}
