package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for link construction:
// - Repository, branch, path and line form a blob URL
// - Line 0 omits the #L fragment
// - No repository means no link
// - Host defaults to GitHub and tolerates a trailing slash
// - Empty branch links to HEAD
// - Paths are normalized before joining
// - Labels read path:line

func TestLinkBuilder_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder LinkBuilder
		path    string
		line    int
		want    string
	}{
		{
			name:    "github blob link",
			builder: LinkBuilder{Repository: "owner/repo", Branch: "main"},
			path:    "src/lib.rs",
			line:    42,
			want:    "https://github.com/owner/repo/blob/main/src/lib.rs#L42",
		},
		{
			name:    "unknown line",
			builder: LinkBuilder{Repository: "owner/repo", Branch: "main"},
			path:    "sample.php",
			want:    "https://github.com/owner/repo/blob/main/sample.php",
		},
		{
			name: "no repository",
			path: "sample.php",
			line: 2,
			want: "",
		},
		{
			name:    "custom host with trailing slash",
			builder: LinkBuilder{Host: "https://git.example.com/", Repository: "/team/app/", Branch: "dev"},
			path:    "a/B.java",
			line:    7,
			want:    "https://git.example.com/team/app/blob/dev/a/B.java#L7",
		},
		{
			name:    "empty branch",
			builder: LinkBuilder{Repository: "owner/repo"},
			path:    "x.rb",
			line:    1,
			want:    "https://github.com/owner/repo/blob/HEAD/x.rb#L1",
		},
		{
			name:    "unnormalized path",
			builder: LinkBuilder{Repository: "owner/repo", Branch: "main"},
			path:    `.\src\Order.php`,
			line:    3,
			want:    "https://github.com/owner/repo/blob/main/src/Order.php#L3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.builder.URL(tt.path, tt.line))
		})
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src/user.rs:10", Label("src/user.rs", 10))
	assert.Equal(t, "src/user.rs", Label("src/user.rs", 0))
}
