package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/ubidoc/internal/glossary"
	"github.com/mvp-joe/ubidoc/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for search:
// - Extracts from the source tree and prints matches with location
// - An empty query lists every term
// - The context filter narrows results
// - No match prints a message instead of nothing
// - --db reads a SQLite export and prints its run metadata first
// - A missing database is an error

func TestSearch_FromSourceTree(t *testing.T) {
	t.Parallel()

	root := writeSourceTree(t)

	var out bytes.Buffer
	require.NoError(t, searchGlossary(context.Background(), "invoice", root, searchOptions{}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Invoice [Billing] Invoice  "), lines[0])
	assert.Contains(t, lines[0], "src/Invoice.php:3")
	assert.Equal(t, "    A bill sent to a customer", lines[1])
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, searchGlossary(context.Background(), "", writeSourceTree(t), searchOptions{}, &out))

	assert.Contains(t, out.String(), "Invoice [Billing]")
	assert.Contains(t, out.String(), "Order [Sales]")
}

func TestSearch_ContextFilter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, searchGlossary(context.Background(), "", writeSourceTree(t), searchOptions{context: "Sales"}, &out))

	assert.Contains(t, out.String(), "Order [Sales]")
	assert.NotContains(t, out.String(), "Invoice")
}

func TestSearch_NoMatches(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, searchGlossary(context.Background(), "warehouse", writeSourceTree(t), searchOptions{}, &out))

	assert.Equal(t, "No matching terms\n", out.String())
}

func TestSearch_FromDatabase(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), report.SQLiteFile)
	set := glossary.Aggregate([]glossary.Record{
		glossary.NewRecord(glossary.RecordOptions{
			ClassName: "Shipment", Term: "Shipment", Context: "Shipping",
			FilePath: "src/Shipment.kt", LineNumber: 4,
		}),
	})
	require.NoError(t, report.WriteSQLite(context.Background(), db, set, report.LinkBuilder{Repository: "acme/shop", Branch: "main"}))

	var out bytes.Buffer
	// The directory argument is ignored when a database is given.
	require.NoError(t, searchGlossary(context.Background(), "shipment", t.TempDir(), searchOptions{db: db}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Glossary acme/shop@main: 1 terms, generated "), lines[0])
	assert.Contains(t, lines[0], "(run ")
	assert.Equal(t, "Shipment [Shipping] Shipment  src/Shipment.kt:4", strings.SplitN(lines[1], "  (", 2)[0])
}

func TestSearch_MissingDatabase(t *testing.T) {
	t.Parallel()

	err := searchGlossary(context.Background(), "x", ".", searchOptions{db: filepath.Join(t.TempDir(), "none.db")}, &bytes.Buffer{})
	assert.Error(t, err)
}
