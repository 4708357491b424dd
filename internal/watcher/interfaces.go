// Package watcher regenerates the glossary while the source tree changes.
// A FileWatcher reports debounced batches of changed source files, a
// GitWatcher reports branch switches, and a Coordinator turns both into
// Generate calls.
package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// GitWatcher reports checkouts of a different branch or commit.
type GitWatcher interface {
	Start(ctx context.Context, callback func(oldBranch, newBranch string)) error
	Stop() error
}

// PathFilter decides which paths a FileWatcher cares about. Paths are
// absolute. discovery.Walker satisfies it, so watch mode and a one-shot
// run agree on what counts as a source file.
type PathFilter interface {
	// Matches reports whether path is a source file that would be extracted.
	Matches(path string) bool

	// IgnoresDir reports whether the directory at path is excluded.
	IgnoresDir(path string) bool
}

// Generator rebuilds every output from the current tree.
type Generator interface {
	Generate(ctx context.Context) error

	// SetBranch changes the branch used for source links.
	SetBranch(branch string)
}
