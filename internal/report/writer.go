// Package report renders a glossary into the output formats: a browsable
// HTML page with its assets, a JSON array and a SQLite database.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

// DirName is the directory created under the output directory.
const DirName = "ubi-doc"

// Output formats.
const (
	FormatHTML   = "html"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Output file names inside DirName.
const (
	HTMLFile   = "ubiquitous.html"
	JSONFile   = "ubiquitous.json"
	SQLiteFile = "ubiquitous.db"
)

// ErrUnknownFormat is returned for a format outside Formats().
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatHTML, FormatJSON, FormatSQLite}
}

// Writer writes a glossary in the configured formats.
type Writer struct {
	dir     string
	formats []string
	links   LinkBuilder
}

// NewWriter creates a writer targeting <outDir>/ubi-doc. Duplicate formats
// are written once; no formats means HTML only.
func NewWriter(outDir string, formats []string, links LinkBuilder) (*Writer, error) {
	if len(formats) == 0 {
		formats = []string{FormatHTML}
	}

	var unique []string
	for _, f := range formats {
		if !slices.Contains(Formats(), f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !slices.Contains(unique, f) {
			unique = append(unique, f)
		}
	}

	return &Writer{
		dir:     filepath.Join(outDir, DirName),
		formats: unique,
		links:   links,
	}, nil
}

// Dir returns the directory files are written to.
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders set in every configured format and returns the paths of
// the files written.
func (w *Writer) Write(ctx context.Context, set *glossary.Set) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	var written []string
	for _, format := range w.formats {
		var paths []string
		var err error

		switch format {
		case FormatHTML:
			paths, err = w.writeHTML(set)
		case FormatJSON:
			paths, err = w.writeJSON(set)
		case FormatSQLite:
			path := filepath.Join(w.dir, SQLiteFile)
			paths, err = []string{path}, WriteSQLite(ctx, path, set, w.links)
		}
		if err != nil {
			return written, err
		}
		written = append(written, paths...)
	}

	return written, nil
}

func (w *Writer) writeHTML(set *glossary.Set) ([]string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, set, w.links); err != nil {
		return nil, err
	}

	page := filepath.Join(w.dir, HTMLFile)
	if err := writeFile(page, buf.Bytes()); err != nil {
		return nil, err
	}
	paths := []string{page}

	for _, name := range assetFiles {
		data, err := Asset(name)
		if err != nil {
			return paths, fmt.Errorf("failed to read asset %s: %w", name, err)
		}
		path := filepath.Join(w.dir, name)
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (w *Writer) writeJSON(set *glossary.Set) ([]string, error) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, set); err != nil {
		return nil, err
	}

	path := filepath.Join(w.dir, JSONFile)
	if err := writeFile(path, buf.Bytes()); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
