// Package discovery walks a source tree and loads the files the glossary
// pipeline should look at.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnore lists directories that never hold first-party sources.
var DefaultIgnore = []string{".git/**", "vendor/**", "node_modules/**"}

// configDir is always skipped, like the output of previous runs.
const configDir = ".ubidoc"

// SourceFile is one file read from disk, ready to be parsed.
type SourceFile struct {
	Path      string // root-joined, forward slashes
	Extension string // lower-case, without the dot
	Content   []byte
}

// Options controls which files a Walker yields.
type Options struct {
	// Extensions restricts the walk to these extensions (with or without a
	// leading dot). Empty means every regular file.
	Extensions []string

	// Ignore holds glob patterns relative to the root. A pattern ending in
	// "/**" also prunes the directory itself.
	Ignore []string
}

// compiledPattern holds both the pattern string and compiled glob.
// atRoot is set for "**/x" patterns so they also match "x" at the root.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	atRoot  glob.Glob
}

// Walker yields the source files under a root directory.
type Walker struct {
	root       string
	absRoot    string
	extensions map[string]bool
	ignore     []compiledPattern
}

// New creates a walker for root. It fails only when an ignore pattern does
// not compile.
func New(root string, opts Options) (*Walker, error) {
	w := &Walker{root: root, absRoot: root}
	if abs, err := filepath.Abs(root); err == nil {
		w.absRoot = abs
	}

	if len(opts.Extensions) > 0 {
		w.extensions = make(map[string]bool, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			w.extensions[normalizeExt(ext)] = true
		}
	}

	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if cp.atRoot, err = glob.Compile(rest, '/'); err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
		}
		w.ignore = append(w.ignore, cp)
	}

	return w, nil
}

// Root returns the directory being walked.
func (w *Walker) Root() string {
	return w.root
}

// Walk returns every matching regular file in lexical order.
//
// Read failures never fail the walk: an unreadable root yields no files,
// and an unreadable directory or file below it is skipped. Each is logged
// as a warning. The only error is context cancellation.
func (w *Walker) Walk(ctx context.Context) ([]SourceFile, error) {
	files := []SourceFile{}

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == w.root {
				log.Printf("Warning: cannot read %s: %v", w.root, err)
				return filepath.SkipAll
			}
			log.Printf("Warning: skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == w.root {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if w.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || w.shouldIgnore(relPath) {
			return nil
		}

		ext := normalizeExt(filepath.Ext(path))
		if w.extensions != nil && !w.extensions[ext] {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: skipping %s: %v", path, err)
			return nil
		}

		files = append(files, SourceFile{
			Path:      filepath.ToSlash(path),
			Extension: ext,
			Content:   content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Matches reports whether path (absolute or root-relative) would be yielded
// by the walk, without touching the filesystem. The watcher uses it to
// filter change events.
func (w *Walker) Matches(path string) bool {
	relPath, ok := w.relative(path)
	if !ok {
		return false
	}

	// Any ignored ancestor prunes the file.
	for dir := relPath; ; {
		if w.shouldIgnore(dir) {
			return false
		}
		i := strings.LastIndex(dir, "/")
		if i < 0 {
			break
		}
		dir = dir[:i]
	}

	return w.extensions == nil || w.extensions[normalizeExt(filepath.Ext(relPath))]
}

// IgnoresDir reports whether the walk prunes the directory at path
// (absolute or root-relative). The root itself is never ignored.
func (w *Walker) IgnoresDir(path string) bool {
	relPath, ok := w.relative(path)
	if !ok {
		return true
	}
	if relPath == "." {
		return false
	}
	return w.shouldIgnore(relPath)
}

// relative converts path to a cleaned, slash-separated path relative to
// the root. It fails for paths outside the root.
func (w *Walker) relative(path string) (string, bool) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(w.absRoot, path)
		if err != nil {
			return "", false
		}
		path = rel
	}
	relPath := filepath.ToSlash(filepath.Clean(path))
	if relPath == ".." || strings.HasPrefix(relPath, "../") {
		return "", false
	}
	return relPath, true
}

// shouldIgnore checks if a path matches any ignore pattern.
func (w *Walker) shouldIgnore(relPath string) bool {
	if relPath == configDir || strings.HasPrefix(relPath, configDir+"/") {
		return true
	}

	if w.matchesAny(relPath) {
		return true
	}

	// "vendor" should match pattern "vendor/**"
	return w.matchesAny(relPath + "/**")
}

func (w *Walker) matchesAny(path string) bool {
	for _, cp := range w.ignore {
		if cp.glob.Match(path) || (cp.atRoot != nil && cp.atRoot.Match(path)) {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
