// Package extractor runs the glossary pipeline over a set of source files:
// classify, parse, read tags, aggregate and sort.
package extractor

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mvp-joe/ubidoc/internal/discovery"
	"github.com/mvp-joe/ubidoc/internal/glossary"
	"github.com/mvp-joe/ubidoc/internal/glossary/parsers"
	"golang.org/x/sync/errgroup"
)

// Stats summarizes one extraction run.
type Stats struct {
	FilesDiscovered int
	FilesParsed     int
	Skipped         int // unsupported extensions
	Declarations    int // documented declarations found
	Records         int // records kept after aggregation
	Discarded       int // documented declarations without a term
	Duration        time.Duration
}

// Options configures an Extractor.
type Options struct {
	// Workers bounds concurrent file parses. Zero means runtime.NumCPU().
	Workers int

	// Progress receives callbacks; nil means no reporting.
	Progress ProgressReporter

	// Verbose logs each skipped unsupported file.
	Verbose bool
}

// Extractor turns source files into a sorted glossary.
type Extractor struct {
	workers  int
	verbose  bool
	progress ProgressReporter
	mu       sync.Mutex // serializes progress callbacks
	parsers  map[parsers.Language]*parsers.Parser
}

// New creates an extractor with one parser per supported language.
func New(opts Options) (*Extractor, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	e := &Extractor{
		workers:  workers,
		verbose:  opts.Verbose,
		progress: progress,
		parsers:  make(map[parsers.Language]*parsers.Parser),
	}
	for _, lang := range parsers.Languages() {
		p, err := parsers.NewParser(lang)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s parser: %w", lang, err)
		}
		e.parsers[lang] = p
	}

	return e, nil
}

// Run walks w and extracts the glossary from everything it yields.
func (e *Extractor) Run(ctx context.Context, w *discovery.Walker) (*glossary.Set, *Stats, error) {
	e.report(func(p ProgressReporter) { p.OnDiscoveryStart() })

	files, err := w.Walk(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}

	e.report(func(p ProgressReporter) { p.OnDiscoveryComplete(len(files)) })

	return e.Extract(ctx, files)
}

// Extract parses files concurrently and returns the aggregated, sorted set.
// Each worker writes only its own slot of the per-file results, so the
// output does not depend on scheduling. A grammar failure or a cancelled
// context aborts the run.
func (e *Extractor) Extract(ctx context.Context, files []discovery.SourceFile) (*glossary.Set, *Stats, error) {
	start := time.Now()

	var parsed, skipped, declarations atomic.Int64
	perFile := make([][]glossary.Record, len(files))

	e.report(func(p ProgressReporter) { p.OnFileProcessingStart(len(files)) })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer e.report(func(p ProgressReporter) { p.OnFileProcessed(file.Path) })

			p, ok := e.parserFor(file)
			if !ok {
				skipped.Add(1)
				if e.verbose {
					log.Printf("Skipping unsupported file %s", file.Path)
				}
				return nil
			}

			records, err := extractFile(gctx, p, file)
			if err != nil {
				return fmt.Errorf("failed to extract %s as %s: %w", file.Path, p.Language(), err)
			}

			parsed.Add(1)
			declarations.Add(int64(len(records)))
			perFile[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	set := glossary.Aggregate(perFile...)

	stats := &Stats{
		FilesDiscovered: len(files),
		FilesParsed:     int(parsed.Load()),
		Skipped:         int(skipped.Load()),
		Declarations:    int(declarations.Load()),
		Records:         set.Len(),
		Duration:        time.Since(start),
	}
	stats.Discarded = stats.Declarations - stats.Records

	e.report(func(p ProgressReporter) { p.OnComplete(stats) })

	return set, stats, nil
}

func (e *Extractor) parserFor(file discovery.SourceFile) (*parsers.Parser, bool) {
	lang, ok := parsers.Classify(file.Extension)
	if !ok {
		return nil, false
	}
	p, ok := e.parsers[lang]
	return p, ok
}

// extractFile builds one record per documented declaration, tagged or not;
// aggregation drops the ones without a term.
func extractFile(ctx context.Context, p *parsers.Parser, file discovery.SourceFile) ([]glossary.Record, error) {
	decls, err := p.Parse(ctx, file.Content)
	if err != nil {
		return nil, err
	}

	records := make([]glossary.Record, 0, len(decls))
	for _, d := range decls {
		records = append(records, glossary.FromComment(d.Name, d.Comment).WithFilePath(file.Path))
	}
	return records, nil
}

func (e *Extractor) report(fn func(ProgressReporter)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.progress)
}
