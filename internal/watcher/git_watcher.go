package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// shortHashLen matches the default abbreviation of "git rev-parse --short".
const shortHashLen = 7

type gitWatcher struct {
	gitDir   string
	headPath string
	watcher  *fsnotify.Watcher

	mu         sync.RWMutex
	lastBranch string

	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewGitWatcher watches gitDir/HEAD. gitDir is the .git directory of a
// checkout, not the checkout itself.
func NewGitWatcher(gitDir string) (GitWatcher, error) {
	headPath := filepath.Join(gitDir, "HEAD")

	if _, err := os.Stat(headPath); err != nil {
		return nil, fmt.Errorf("cannot access .git/HEAD: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	initialBranch, err := readBranch(headPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to read initial branch: %w", err)
	}

	return &gitWatcher{
		gitDir:     gitDir,
		headPath:   headPath,
		watcher:    watcher,
		lastBranch: initialBranch,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

func (gw *gitWatcher) Start(ctx context.Context, callback func(oldBranch, newBranch string)) error {
	// git replaces HEAD through a rename, so the directory is watched
	// rather than the file.
	if err := gw.watcher.Add(gw.gitDir); err != nil {
		return fmt.Errorf("failed to watch .git directory: %w", err)
	}

	gw.started.Store(true)
	go gw.watch(ctx, callback)
	return nil
}

func (gw *gitWatcher) Stop() error {
	var err error
	gw.stopOnce.Do(func() {
		close(gw.stopCh)
		if gw.started.Load() {
			<-gw.doneCh
		}
		err = gw.watcher.Close()
	})
	return err
}

func (gw *gitWatcher) watch(ctx context.Context, callback func(oldBranch, newBranch string)) {
	defer close(gw.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-gw.stopCh:
			return

		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != gw.headPath {
				continue
			}
			// Removal is followed by a create once git writes the new HEAD.
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			newBranch, err := readBranch(gw.headPath)
			if err != nil {
				log.Printf("Warning: failed to read .git/HEAD: %v", err)
				continue
			}

			gw.mu.Lock()
			oldBranch := gw.lastBranch
			changed := newBranch != "" && newBranch != oldBranch
			if changed {
				gw.lastBranch = newBranch
			}
			gw.mu.Unlock()

			if changed {
				gw.fire(callback, oldBranch, newBranch)
			}

		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Git watcher error: %v", err)
		}
	}
}

func (gw *gitWatcher) fire(callback func(oldBranch, newBranch string), oldBranch, newBranch string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: git watcher callback panic: %v", r)
		}
	}()
	callback(oldBranch, newBranch)
}

func readBranch(headPath string) (string, error) {
	content, err := os.ReadFile(headPath)
	if err != nil {
		return "", err
	}
	return parseBranch(content), nil
}

// parseBranch returns the branch named by HEAD content, or the abbreviated
// commit hash for a detached HEAD. Both are valid refs in a blob URL.
func parseBranch(content []byte) string {
	line := strings.TrimSpace(string(content))

	if branch, ok := strings.CutPrefix(line, "ref: refs/heads/"); ok {
		return strings.TrimSpace(branch)
	}

	if len(line) >= shortHashLen && isHexString(line) {
		return line[:shortHashLen]
	}

	return line
}

func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
