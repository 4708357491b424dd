package watcher

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Coordinator regenerates output when source files change or the checkout
// moves to another branch.
type Coordinator struct {
	git   GitWatcher // nil outside a git checkout
	files FileWatcher
	gen   Generator

	mu  sync.Mutex // serializes Generate
	ctx context.Context
}

// NewCoordinator creates a coordinator. git may be nil.
func NewCoordinator(git GitWatcher, files FileWatcher, gen Generator) *Coordinator {
	return &Coordinator{git: git, files: files, gen: gen, ctx: context.Background()}
}

// Start runs both watchers and blocks until ctx is cancelled, then stops
// them and returns ctx.Err(). A watcher that fails to start stops the
// other and its error is returned.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	errCh := make(chan error, 2)

	if c.git != nil {
		go func() {
			if err := c.git.Start(ctx, c.handleBranchSwitch); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := c.files.Start(ctx, c.handleFileChange); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		c.cleanup()
		return err
	case <-ctx.Done():
		c.cleanup()
		return ctx.Err()
	}
}

func (c *Coordinator) cleanup() {
	if c.git != nil {
		if err := c.git.Stop(); err != nil {
			log.Printf("Warning: git watcher stop failed: %v", err)
		}
	}
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleBranchSwitch holds file events back while links are pointed at the
// new branch and everything is regenerated.
func (c *Coordinator) handleBranchSwitch(oldBranch, newBranch string) {
	log.Printf("Branch switch detected: %s → %s", oldBranch, newBranch)

	c.files.Pause()
	defer c.files.Resume()

	c.gen.SetBranch(newBranch)
	c.generate()
}

func (c *Coordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	log.Printf("Processing %d file change(s)...", len(files))
	c.generate()
}

func (c *Coordinator) generate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gen.Generate(c.ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("Error: regeneration failed: %v", err)
		}
		return
	}
	log.Printf("✓ Glossary regenerated")
}
