package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/mvp-joe/ubidoc/internal/discovery"
	"github.com/mvp-joe/ubidoc/internal/glossary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the extraction pipeline:
// - The sample.php scenario yields exactly one record on line 2
// - Two declarations in one file are sorted by context
// - Unsupported files are skipped and counted
// - Documented declarations without a term are discarded and counted
// - Output does not depend on worker count or file order (idempotence)
// - The fixture tree produces the expected sorted glossary
// - A cancelled context aborts the run without leaking goroutines
// - Progress callbacks see every file

const samplePHP = `/**
 * @ubiquitous Invoice
 * @context Billing
 */
class Invoice {}
`

func newExtractor(t *testing.T, opts Options) *Extractor {
	t.Helper()

	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func source(path, content string) discovery.SourceFile {
	ext := path[strings.LastIndex(path, ".")+1:]
	return discovery.SourceFile{Path: path, Extension: ext, Content: []byte(content)}
}

func TestExtract_SampleScenario(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, Options{})
	set, stats, err := e.Extract(context.Background(), []discovery.SourceFile{source("sample.php", samplePHP)})
	require.NoError(t, err)

	want := glossary.NewRecord(glossary.RecordOptions{
		ClassName:  "Invoice",
		Term:       "Invoice",
		Context:    "Billing",
		FilePath:   "sample.php",
		LineNumber: 2,
	})
	assert.Equal(t, []glossary.Record{want}, set.Records())
	assert.Equal(t, 1, stats.FilesParsed)
	assert.Equal(t, 1, stats.Records)
}

func TestExtract_TwoContextsInOneFile(t *testing.T) {
	t.Parallel()

	content := `<?php
/**
 * @ubiquitous First
 * @context B
 */
class First {}

/**
 * @ubiquitous Second
 * @context A
 */
class Second {}
`
	e := newExtractor(t, Options{})
	set, _, err := e.Extract(context.Background(), []discovery.SourceFile{source("two.php", content)})
	require.NoError(t, err)

	records := set.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Second", records[0].ClassName())
	assert.Equal(t, "A", records[0].Context())
	assert.Equal(t, "First", records[1].ClassName())
	assert.Equal(t, 3, records[1].LineNumber())
}

func TestExtract_SkipsUnsupportedAndDiscardsUntagged(t *testing.T) {
	t.Parallel()

	files := []discovery.SourceFile{
		source("notes.txt", "@ubiquitous Nope"),
		source("main.go", "// @ubiquitous Nope\ntype X struct{}"),
		source("Plain.java", "/** Just docs. */\nclass Plain {}"),
		source("Tagged.java", "/** @ubiquitous Tagged */\nclass Tagged {}"),
	}

	e := newExtractor(t, Options{Verbose: true})
	set, stats, err := e.Extract(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.FilesDiscovered)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.FilesParsed)
	assert.Equal(t, 2, stats.Declarations)
	assert.Equal(t, 1, stats.Discarded)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "Tagged", set.Records()[0].Term())
}

func TestExtract_DeterministicAcrossWorkersAndOrder(t *testing.T) {
	t.Parallel()

	var files []discovery.SourceFile
	for i := 0; i < 40; i++ {
		content := fmt.Sprintf("/**\n * @ubiquitous Term%02d\n * @context Ctx%d\n */\nclass C%d {}\n", i, i%3, i)
		files = append(files, source(fmt.Sprintf("src/C%d.java", i), content))
	}

	reversed := make([]discovery.SourceFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	run := func(workers int, input []discovery.SourceFile) []byte {
		e := newExtractor(t, Options{Workers: workers})
		set, _, err := e.Extract(context.Background(), input)
		require.NoError(t, err)
		data, err := json.Marshal(set.Records())
		require.NoError(t, err)
		return data
	}

	first := run(1, files)
	assert.Equal(t, first, run(8, files))
	assert.Equal(t, first, run(8, reversed))
	assert.Equal(t, first, run(3, files))
}

func TestRun_FixtureTree(t *testing.T) {
	t.Parallel()

	w, err := discovery.New("../../testdata/code", discovery.Options{})
	require.NoError(t, err)

	e := newExtractor(t, Options{Workers: 2})
	set, stats, err := e.Run(context.Background(), w)
	require.NoError(t, err)

	var got []string
	for _, r := range set.Records() {
		got = append(got, fmt.Sprintf("%s|%s|%d", r.Context(), r.Term(), r.LineNumber()))
	}
	assert.Equal(t, []string{
		"Billing|Invoice|6",
		"Billing|Refundable|28",
		"Identity|Account|3",
		"Identity|Customer|22",
		"Identity|Session|12",
		"Sales|Order|6",
		"Sales|Order Line|14",
		"Shipping|Carrier Registry|11",
		"Shipping|Shipment|4",
	}, got)

	assert.Equal(t, 4, stats.FilesParsed)
	for _, r := range set.Records() {
		assert.True(t, strings.HasPrefix(r.FilePath(), "../../testdata/code/"), r.FilePath())
	}
	assert.Equal(t, "A request for payment sent to a customer", set.Records()[0].Description())
}

func TestExtract_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newExtractor(t, Options{Workers: 2})
	_, _, err := e.Extract(ctx, []discovery.SourceFile{source("sample.php", samplePHP), source("b.php", samplePHP)})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingReporter struct {
	NoOpProgressReporter
	mu        sync.Mutex
	total     int
	processed []string
	completed *Stats
}

func (r *recordingReporter) OnFileProcessingStart(totalFiles int) { r.total = totalFiles }
func (r *recordingReporter) OnFileProcessed(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, fileName)
}
func (r *recordingReporter) OnComplete(stats *Stats) { r.completed = stats }

func TestExtract_ReportsProgress(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{}
	e := newExtractor(t, Options{Workers: 4, Progress: reporter})

	files := []discovery.SourceFile{source("a.php", samplePHP), source("b.txt", ""), source("c.rb", "class C\nend\n")}
	_, stats, err := e.Extract(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 3, reporter.total)
	assert.ElementsMatch(t, []string{"a.php", "b.txt", "c.rb"}, reporter.processed)
	assert.Same(t, stats, reporter.completed)
}
