package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mvp-joe/ubidoc/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds for valid directories and fails for a missing one
// - A single change fires the callback once after the debounce period
// - Rapid changes to several files are batched and deduplicated
// - Pause accumulates changes, Resume fires them immediately
// - Deletions are reported
// - Directories created later are watched, including files already inside
// - Only paths the filter matches are reported
// - Directories the filter ignores are never watched
// - Stop is idempotent, safe concurrently and safe without Start
// - Context cancellation stops the watcher

const testDebounce = 50 * time.Millisecond

// extFilter matches by extension and ignores directories by base name.
type extFilter struct {
	ext     string
	ignored string
}

func (f extFilter) Matches(path string) bool {
	if f.ignored != "" && strings.Contains(filepath.ToSlash(path), "/"+f.ignored+"/") {
		return false
	}
	return filepath.Ext(path) == f.ext
}

func (f extFilter) IgnoresDir(path string) bool {
	return f.ignored != "" && filepath.Base(path) == f.ignored
}

// recorder collects callback batches.
type recorder struct {
	mu      sync.Mutex
	batches [][]string
	calls   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan struct{}, 16)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.batches = append(r.batches, files)
	r.mu.Unlock()
	r.calls <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called after timeout")
	}
}

func (r *recorder) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-r.calls:
		t.Fatal("unexpected callback")
	case <-time.After(within):
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func startWatcher(t *testing.T, dir string, filter PathFilter) (FileWatcher, *recorder) {
	t.Helper()

	w, err := NewFileWatcher([]string{dir}, filter, WithDebounce(testDebounce))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))

	// Let fsnotify settle before generating events.
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, extFilter{ext: ".php"})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{filepath.Join(t.TempDir(), "nonexistent")}, extFilter{ext: ".php"})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	file := filepath.Join(dir, "Invoice.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php class Invoice {}"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestFileWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	a := filepath.Join(dir, "A.php")
	b := filepath.Join(dir, "B.php")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(a, []byte("<?php // a"), 0644))
		require.NoError(t, os.WriteFile(b, []byte("<?php // b"), 0644))
	}

	rec.wait(t)
	rec.expectNone(t, 3*testDebounce)

	assert.Equal(t, []string{a, b}, rec.all())
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	w.Pause()
	file := filepath.Join(dir, "Paused.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php"), 0644))

	rec.expectNone(t, 4*testDebounce)

	w.Resume()
	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "Gone.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php"), 0644))

	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})
	require.NoError(t, os.Remove(file))

	rec.wait(t)
	assert.Contains(t, rec.all(), file)
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	sub := filepath.Join(dir, "billing")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "Invoice.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php"), 0644))

	rec.wait(t)
	assert.Contains(t, rec.all(), file)
}

func TestFileWatcher_DirectoryMovedInWithFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	staging := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, "Order.php"), []byte("<?php"), 0644))

	moved := filepath.Join(dir, "sales")
	require.NoError(t, os.Rename(staging, moved))

	rec.wait(t)
	assert.Contains(t, rec.all(), filepath.Join(moved, "Order.php"))
}

func TestFileWatcher_FiltersByPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir, extFilter{ext: ".php"})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0644))
	rec.expectNone(t, 4*testDebounce)

	file := filepath.Join(dir, "Kept.php")
	require.NoError(t, os.WriteFile(file, []byte("<?php"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestFileWatcher_IgnoredDirectoryNotWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0755))

	_, rec := startWatcher(t, dir, extFilter{ext: ".php", ignored: "vendor"})

	require.NoError(t, os.WriteFile(filepath.Join(vendor, "Lib.php"), []byte("<?php"), 0644))
	rec.expectNone(t, 4*testDebounce)
}

func TestFileWatcher_WithDiscoveryFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))

	walker, err := discovery.New(dir, discovery.Options{
		Extensions: []string{".php", ".rb"},
		Ignore:     discovery.DefaultIgnore,
	})
	require.NoError(t, err)

	_, rec := startWatcher(t, dir, walker)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "x.rb"), []byte("class X; end"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# x"), 0644))
	rec.expectNone(t, 4*testDebounce)

	file := filepath.Join(dir, "account.rb")
	require.NoError(t, os.WriteFile(file, []byte("class Account; end"), 0644))

	rec.wait(t)
	assert.Equal(t, []string{file}, rec.all())
}

func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher([]string{t.TempDir()}, extFilter{ext: ".php"})
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.Error(t, w.Start(context.Background(), func([]string) {}))
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewFileWatcher([]string{dir}, extFilter{ext: ".php"}, WithDebounce(testDebounce))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()
	require.NoError(t, w.Start(ctx, rec.callback))

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Late.php"), []byte("<?php"), 0644))
	rec.expectNone(t, 4*testDebounce)

	require.NoError(t, w.Stop())
}

func TestFileWatcher_ConcurrentStop(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, t.TempDir(), extFilter{ext: ".php"})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Stop()
		}()
	}
	wg.Wait()
}
