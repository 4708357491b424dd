// Package git reads link defaults (branch and repository) from a local
// checkout when CI environment variables are absent.
package git

import (
	"os/exec"
	"strings"
)

// Operations defines the interface for git operations.
// This allows mocking git commands in tests.
type Operations interface {
	// GetCurrentBranch returns the current branch name.
	// For detached HEAD, returns the short commit hash.
	// Returns "" if all git commands fail.
	GetCurrentBranch(projectPath string) string

	// GetRemoteURL returns the git remote URL.
	// Tries 'origin' first, then falls back to first available remote.
	// Returns empty string if no remote configured.
	GetRemoteURL(projectPath string) string

	// GetGitDir returns the absolute .git directory of the checkout
	// containing projectPath, or "" outside a checkout.
	GetGitDir(projectPath string) string
}

// gitOps is the real implementation using exec.Command.
type gitOps struct{}

// NewOperations returns the default git operations implementation.
func NewOperations() Operations {
	return &gitOps{}
}

func (g *gitOps) GetCurrentBranch(projectPath string) string {
	if branch := run(projectPath, "branch", "--show-current"); branch != "" {
		return branch
	}
	// Detached HEAD: a commit hash still makes a valid blob link.
	return run(projectPath, "rev-parse", "--short", "HEAD")
}

func (g *gitOps) GetRemoteURL(projectPath string) string {
	if url := run(projectPath, "remote", "get-url", "origin"); url != "" {
		return url
	}

	remotes := strings.Fields(run(projectPath, "remote"))
	if len(remotes) == 0 {
		return ""
	}
	return run(projectPath, "remote", "get-url", remotes[0])
}

func (g *gitOps) GetGitDir(projectPath string) string {
	return run(projectPath, "rev-parse", "--absolute-git-dir")
}

// run executes git in dir and returns trimmed stdout, or "" on failure.
func run(dir string, args ...string) string {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// RepositorySlug extracts "owner/name" from a remote URL in any of the
// forms git accepts:
//
//	https://github.com/owner/name.git
//	git@github.com:owner/name.git
//	ssh://git@github.com/owner/name
//
// It returns "" when no slug can be found.
func RepositorySlug(remoteURL string) string {
	s := strings.TrimSpace(remoteURL)
	if s == "" {
		return ""
	}

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		// Drop the host (and any user info).
		slash := strings.Index(s, "/")
		if slash < 0 {
			return ""
		}
		s = s[slash+1:]
	} else if colon := strings.Index(s, ":"); colon >= 0 {
		// scp-like syntax: user@host:owner/name
		s = s[colon+1:]
	} else {
		return ""
	}

	s = strings.TrimSuffix(strings.Trim(s, "/"), ".git")
	if strings.Count(s, "/") < 1 {
		return ""
	}
	return s
}

// LinkDefaults returns the repository slug and branch of the checkout at
// projectPath. Either is "" when git cannot tell.
func LinkDefaults(ops Operations, projectPath string) (repository, branch string) {
	return RepositorySlug(ops.GetRemoteURL(projectPath)), ops.GetCurrentBranch(projectPath)
}
