package glossary

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Recognized tag markers. Matching is case-sensitive.
const (
	TagUbiquitous  = "@ubiquitous"
	TagContext     = "@context"
	TagDescription = "@description"
)

var knownTags = []string{TagUbiquitous, TagContext, TagDescription}

// Comment is the text of a documentation comment and its position in the
// source file.
type Comment interface {
	// Text returns the raw comment text, delimiters included.
	Text() string
	// LineAt maps a line offset within Text to a 1-based file line.
	LineAt(offset int) int
}

// Tags holds the values found in one comment.
type Tags struct {
	Term        string
	Context     string
	Description string

	// TermOffset is the line offset of the @ubiquitous tag that set Term,
	// or -1 when no @ubiquitous tag was found.
	TermOffset int
}

// ExtractTags scans comment text line by line for recognized tags.
// A later occurrence of a tag overwrites an earlier one.
func ExtractTags(text string) Tags {
	tags := Tags{TermOffset: -1}

	for i, line := range commentLines(text) {
		for _, m := range findTags(line) {
			switch m.tag {
			case TagUbiquitous:
				tags.Term = m.value
				tags.TermOffset = i
			case TagContext:
				tags.Context = m.value
			case TagDescription:
				tags.Description = m.value
			}
		}
	}

	return tags
}

// FromComment builds the record for a declaration named className whose
// documentation comment is c. The line number points at the @ubiquitous
// tag line rather than the top of the comment.
func FromComment(className string, c Comment) Record {
	tags := ExtractTags(c.Text())

	line := 0
	if tags.TermOffset >= 0 {
		line = c.LineAt(tags.TermOffset)
	}

	return NewRecord(RecordOptions{
		ClassName:   className,
		Term:        tags.Term,
		Context:     tags.Context,
		Description: tags.Description,
		LineNumber:  line,
	})
}

type commentStyle int

const (
	styleLine commentStyle = iota // "//" or "#" per line
	styleBlock                    // /* ... */
	styleDoc                      // /** ... */
)

// commentLines strips comment delimiters from text. The result has exactly
// one entry per line of text so indexes stay valid line offsets.
func commentLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	head := strings.TrimLeftFunc(text, unicode.IsSpace)
	style := styleLine
	switch {
	case strings.HasPrefix(head, "/**"):
		style = styleDoc
	case strings.HasPrefix(head, "/*"):
		style = styleBlock
	}

	last := len(raw) - 1
	lines := make([]string, len(raw))
	for i, line := range raw {
		line = strings.TrimSpace(line)

		switch style {
		case styleLine:
			if strings.HasPrefix(line, "//") {
				line = strings.TrimPrefix(line, "//")
			} else {
				line = strings.TrimPrefix(line, "#")
			}
		case styleBlock, styleDoc:
			if i == 0 {
				if style == styleDoc {
					line = strings.TrimPrefix(line, "/**")
				} else {
					line = strings.TrimPrefix(line, "/*")
				}
			}
			if i == last {
				line = strings.TrimSuffix(line, "*/")
			}
			if style == styleDoc && i > 0 {
				line = strings.TrimPrefix(line, "*")
				line = strings.TrimPrefix(line, " ")
			}
		}

		lines[i] = strings.TrimSpace(line)
	}

	return lines
}

type tagMatch struct {
	tag   string
	start int
	value string
}

// findTags returns the first occurrence of each recognized tag on line in
// line order. A value runs from its marker to the next recognized marker or
// the end of the line, with an optional leading colon dropped.
func findTags(line string) []tagMatch {
	var matches []tagMatch
	for _, tag := range knownTags {
		if idx := indexMarker(line, tag); idx >= 0 {
			matches = append(matches, tagMatch{tag: tag, start: idx})
		}
	}
	slices.SortFunc(matches, func(a, b tagMatch) int { return a.start - b.start })

	for i := range matches {
		end := len(line)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		value := strings.TrimSpace(line[matches[i].start+len(matches[i].tag) : end])
		matches[i].value = strings.TrimSpace(strings.TrimPrefix(value, ":"))
	}
	return matches
}

// indexMarker finds marker in line where it is followed by whitespace, a
// colon or the end of the line, so "@contextual" does not match "@context".
func indexMarker(line, marker string) int {
	from := 0
	for from <= len(line) {
		i := strings.Index(line[from:], marker)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(marker)
		if end == len(line) {
			return i
		}
		if r, _ := utf8.DecodeRuneInString(line[end:]); r == ':' || unicode.IsSpace(r) {
			return i
		}
		from = end
	}
	return -1
}
