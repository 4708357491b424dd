package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

//go:embed templates/ubiquitous.html.tmpl assets/script.js assets/style.css
var content embed.FS

var pageTemplate = template.Must(template.ParseFS(content, "templates/ubiquitous.html.tmpl"))

// assetFiles are copied next to the HTML page.
var assetFiles = []string{"script.js", "style.css"}

type htmlRow struct {
	Term        string
	ClassName   string
	Context     string
	Description string
	URL         string
	Label       string
}

type htmlPage struct {
	Contexts []string
	Rows     []htmlRow
}

// RenderHTML writes the glossary page. Rows keep the set's order.
func RenderHTML(w io.Writer, set *glossary.Set, links LinkBuilder) error {
	page := htmlPage{Contexts: set.Contexts()}
	for _, r := range set.Records() {
		page.Rows = append(page.Rows, htmlRow{
			Term:        r.Term(),
			ClassName:   r.ClassName(),
			Context:     r.Context(),
			Description: r.Description(),
			URL:         links.URL(r.FilePath(), r.LineNumber()),
			Label:       Label(r.FilePath(), r.LineNumber()),
		})
	}

	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

// Asset returns the content of an embedded asset by file name.
func Asset(name string) ([]byte, error) {
	return content.ReadFile("assets/" + name)
}
