package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// commentSegment is the text of one comment node and its 1-based start line.
type commentSegment struct {
	text string
	line int
}

// CommentBlock is the documentation attached to a declaration: one or more
// contiguous comment nodes in source order.
type CommentBlock struct {
	segments []commentSegment
}

// Text returns the raw comment text, segments joined with newlines.
func (b CommentBlock) Text() string {
	parts := make([]string, len(b.segments))
	for i, seg := range b.segments {
		parts[i] = seg.text
	}
	return strings.Join(parts, "\n")
}

// StartLine is the 1-based line of the topmost comment, 0 for an empty block.
func (b CommentBlock) StartLine() int {
	if len(b.segments) == 0 {
		return 0
	}
	return b.segments[0].line
}

// LineAt maps a line offset within Text to a file line. Segments keep their
// own start lines, so blank lines between joined comments are accounted for.
func (b CommentBlock) LineAt(offset int) int {
	if len(b.segments) == 0 {
		return 0
	}
	for _, seg := range b.segments {
		n := strings.Count(seg.text, "\n") + 1
		if offset < n {
			return seg.line + offset
		}
		offset -= n
	}
	last := b.segments[len(b.segments)-1]
	return last.line + strings.Count(last.text, "\n") + offset
}

// IsZero reports whether the block holds no comment.
func (b CommentBlock) IsZero() bool {
	return len(b.segments) == 0
}

// associate collects the comment run immediately preceding decl.
// Walking backwards, comments extend the run, anonymous tokens are skipped
// and the first other named node ends it. When decl opens a body wrapper
// (Ruby's body_statement) the walk continues before the wrapper, where the
// grammar leaves leading comments.
// The block is zero when no qualifying comment precedes decl.
func (c capability) associate(decl *sitter.Node, source []byte) CommentBlock {
	var run []commentSegment // nearest first

	node := decl
walk:
	for node != nil {
		for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
			if c.commentKinds[prev.Kind()] {
				run = append(run, commentSegment{
					text: prev.Utf8Text(source),
					line: int(prev.StartPosition().Row) + 1,
				})
				continue
			}
			if prev.IsNamed() {
				break walk
			}
		}

		parent := node.Parent()
		if parent == nil || !c.bodyKinds[parent.Kind()] {
			break
		}
		node = parent
	}

	if len(run) == 0 {
		return CommentBlock{}
	}

	if !c.concatenate {
		for _, seg := range run {
			if c.isDoc(seg.text) {
				return CommentBlock{segments: []commentSegment{seg}}
			}
		}
		return CommentBlock{}
	}

	segments := make([]commentSegment, 0, len(run))
	for i := len(run) - 1; i >= 0; i-- {
		if c.isDoc(run[i].text) {
			segments = append(segments, run[i])
		}
	}
	return CommentBlock{segments: segments}
}

// isDoc applies the language's doc-comment policy.
func (c capability) isDoc(text string) bool {
	if c.docPrefix == "" {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(text), c.docPrefix)
}
