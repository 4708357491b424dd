package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

// RenderJSON writes the records as an indented JSON array. An empty set is
// written as [] rather than null.
func RenderJSON(w io.Writer, set *glossary.Set) error {
	records := set.Records()
	if records == nil {
		records = []glossary.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
