package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for real GitOperations implementation.
// These tests use actual git commands and run sequentially (NO t.Parallel()).

func TestGitOpsIntegration(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	gitOps := NewOperations()

	t.Run("GetCurrentBranch on main", func(t *testing.T) {
		dir := createTestGitRepo(t)
		assert.Equal(t, "main", gitOps.GetCurrentBranch(dir))
	})

	t.Run("GetCurrentBranch on feature branch", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "-b", "feature/test")
		assert.Equal(t, "feature/test", gitOps.GetCurrentBranch(dir))
	})

	t.Run("GetCurrentBranch detached HEAD", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "checkout", "--detach", "HEAD")
		branch := gitOps.GetCurrentBranch(dir)
		assert.NotEmpty(t, branch)
		assert.NotEqual(t, "main", branch)
	})

	t.Run("GetCurrentBranch non-git directory", func(t *testing.T) {
		assert.Equal(t, "", gitOps.GetCurrentBranch(t.TempDir()))
	})

	t.Run("GetRemoteURL prefers origin over others", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "remote", "add", "upstream", "https://github.com/upstream/repo.git")
		runGitCmd(t, dir, "remote", "add", "origin", "https://github.com/user/repo.git")
		assert.Equal(t, "https://github.com/user/repo.git", gitOps.GetRemoteURL(dir))
	})

	t.Run("GetRemoteURL falls back to first remote", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "remote", "add", "upstream", "git@github.com:upstream/repo.git")
		assert.Equal(t, "git@github.com:upstream/repo.git", gitOps.GetRemoteURL(dir))
	})

	t.Run("GetRemoteURL no remote", func(t *testing.T) {
		dir := createTestGitRepo(t)
		assert.Equal(t, "", gitOps.GetRemoteURL(dir))
	})

	t.Run("GetGitDir from subdirectory", func(t *testing.T) {
		dir := createTestGitRepo(t)
		sub := filepath.Join(dir, "src", "billing")
		require.NoError(t, os.MkdirAll(sub, 0755))

		gitDir := gitOps.GetGitDir(sub)
		require.NotEmpty(t, gitDir)
		assert.Equal(t, ".git", filepath.Base(gitDir))
		assert.FileExists(t, filepath.Join(gitDir, "HEAD"))
	})

	t.Run("GetGitDir non-git directory", func(t *testing.T) {
		assert.Equal(t, "", gitOps.GetGitDir(t.TempDir()))
	})

	t.Run("LinkDefaults from checkout", func(t *testing.T) {
		dir := createTestGitRepo(t)
		runGitCmd(t, dir, "remote", "add", "origin", "git@github.com:acme/shop.git")
		repo, branch := LinkDefaults(gitOps, dir)
		assert.Equal(t, "acme/shop", repo)
		assert.Equal(t, "main", branch)
	})
}

// Test helpers

func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmd := exec.Command("git", "init", "-b", "main")
	cmd.Dir = dir
	require.NoError(t, cmd.Run(), "git init failed")

	runGitCmd(t, dir, "config", "user.email", "test@example.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")

	testFile := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(testFile, []byte("# Test\n"), 0644))
	runGitCmd(t, dir, "add", "README.md")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func runGitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}
