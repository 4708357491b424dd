// Package glossary holds the ubiquitous-language record model: tag
// extraction from documentation comments, aggregation of per-file results
// and the presentation order of the final record set.
package glossary

import "encoding/json"

// RecordOptions carries the independently optional fields of a Record.
// Zero values mean "absent".
type RecordOptions struct {
	ClassName   string
	Term        string
	Context     string
	Description string
	FilePath    string
	LineNumber  int
}

// Record is one glossary entry: a term tagged on a declaration together
// with its context, description and source location.
// Records are immutable; use the With* methods to derive a modified copy.
type Record struct {
	className   string
	term        string
	context     string
	description string
	filePath    string
	lineNumber  int
}

// NewRecord builds a record from options.
func NewRecord(opts RecordOptions) Record {
	return Record{
		className:   opts.ClassName,
		term:        opts.Term,
		context:     opts.Context,
		description: opts.Description,
		filePath:    opts.FilePath,
		lineNumber:  opts.LineNumber,
	}
}

func (r Record) ClassName() string   { return r.className }
func (r Record) Term() string        { return r.term }
func (r Record) Context() string     { return r.context }
func (r Record) Description() string { return r.description }
func (r Record) FilePath() string    { return r.filePath }

// LineNumber is the 1-based line of the @ubiquitous tag, 0 if unknown.
func (r Record) LineNumber() int { return r.lineNumber }

// WithFilePath returns a copy of r located in filePath.
func (r Record) WithFilePath(filePath string) Record {
	r.filePath = filePath
	return r
}

// Options returns the record's fields as options, the inverse of NewRecord.
func (r Record) Options() RecordOptions {
	return RecordOptions{
		ClassName:   r.className,
		Term:        r.term,
		Context:     r.context,
		Description: r.description,
		FilePath:    r.filePath,
		LineNumber:  r.lineNumber,
	}
}

// Valid reports whether the record is meaningful glossary content.
// A term is required.
func (r Record) Valid() bool {
	return r.term != ""
}

type recordJSON struct {
	ClassName   string `json:"class_name"`
	Term        string `json:"term"`
	Context     string `json:"context"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	LineNumber  int    `json:"line_number"`
}

// MarshalJSON encodes the record with snake_case keys.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON(r.Options()))
}

// UnmarshalJSON decodes a record written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = NewRecord(RecordOptions(raw))
	return nil
}
