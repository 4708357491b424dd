package report

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

// DefaultHost is used when a LinkBuilder has no host.
const DefaultHost = "https://github.com"

// LinkBuilder turns record locations into links to the hosted repository.
type LinkBuilder struct {
	Host       string // e.g. https://github.com
	Repository string // owner/name
	Branch     string // empty links to HEAD
}

// URL returns <host>/<repo>/blob/<branch>/<path>#L<line>, or "" when no
// repository is configured. Line 0 (unknown) omits the fragment.
func (b LinkBuilder) URL(path string, line int) string {
	repo := strings.Trim(b.Repository, "/")
	if repo == "" {
		return ""
	}

	host := strings.TrimSuffix(b.Host, "/")
	if host == "" {
		host = DefaultHost
	}

	branch := b.Branch
	if branch == "" {
		branch = "HEAD"
	}

	path = strings.TrimPrefix(glossary.NormalizePath(path), "/")
	url := fmt.Sprintf("%s/%s/blob/%s/%s", host, repo, branch, path)
	if line > 0 {
		url += fmt.Sprintf("#L%d", line)
	}
	return url
}

// Label is the human-readable location, path:line.
func Label(path string, line int) string {
	if line <= 0 {
		return path
	}
	return fmt.Sprintf("%s:%d", path, line)
}
