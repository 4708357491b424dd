package glossary

import (
	"cmp"
	"slices"
	"strings"
)

// Set is the ordered glossary produced by one run.
type Set struct {
	records []Record
}

// Aggregate merges per-file record lists into one sorted set.
// Records without a term are discarded and file paths are normalized.
// The order of perFile does not affect the result beyond tie-breaking
// between records with equal (context, term).
func Aggregate(perFile ...[]Record) *Set {
	s := &Set{}
	for _, records := range perFile {
		for _, r := range records {
			if !r.Valid() {
				continue
			}
			s.records = append(s.records, r.WithFilePath(NormalizePath(r.FilePath())))
		}
	}
	s.Sort()
	return s
}

// Sort orders records by context, then term. Equal keys keep their
// relative order. An absent context sorts as the empty string.
func (s *Set) Sort() {
	slices.SortStableFunc(s.records, compareRecords)
}

func compareRecords(a, b Record) int {
	if c := cmp.Compare(a.context, b.context); c != 0 {
		return c
	}
	return cmp.Compare(a.term, b.term)
}

// Records returns a copy of the records in presentation order.
func (s *Set) Records() []Record {
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Set) Len() int {
	return len(s.records)
}

// Contexts returns the distinct non-empty contexts in presentation order.
func (s *Set) Contexts() []string {
	var contexts []string
	seen := make(map[string]bool)
	for _, r := range s.records {
		if r.context == "" || seen[r.context] {
			continue
		}
		seen[r.context] = true
		contexts = append(contexts, r.context)
	}
	return contexts
}

// NormalizePath converts a file path into the forward-slash form used for
// links: backslashes become slashes and a leading "./" is removed.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
