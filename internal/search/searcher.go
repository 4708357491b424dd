// Package search provides full-text search over a glossary using an
// in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

const (
	defaultLimit = 15
	maxLimit     = 100
	batchSize    = 1000
)

// Searcher runs keyword queries against a glossary.
type Searcher interface {
	// Search executes a query in bleve query-string syntax, e.g.
	// "invoice", "term:Order*" or "+context:Billing payment".
	// An empty query matches every record. Options may be nil.
	Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error)

	// Replace swaps the indexed glossary for set.
	Replace(ctx context.Context, set *glossary.Set) error

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search.
type Options struct {
	Limit   int    // default 15, capped at 100
	Context string // exact bounded-context filter
}

// Result is a matching record with its relevance score.
type Result struct {
	Record     glossary.Record
	Score      float64
	Highlights []string // matching snippets with <mark> tags
}

type searcher struct {
	mu      sync.RWMutex // protects index and records
	index   bleve.Index
	records []glossary.Record
}

// New creates a Searcher over set.
func New(ctx context.Context, set *glossary.Set) (Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	s := &searcher{index: index}
	if err := s.Replace(ctx, set); err != nil {
		index.Close()
		return nil, err
	}
	return s, nil
}

// buildMapping indexes the searchable text with the standard analyzer and
// the context with the keyword analyzer so it can be filtered exactly.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		m.IncludeTermVectors = true
		return m
	}

	contextMapping := bleve.NewTextFieldMapping()
	contextMapping.Analyzer = "keyword"
	contextMapping.Store = true
	contextMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("term", text())
	docMapping.AddFieldMappingsAt("class_name", text())
	docMapping.AddFieldMappingsAt("description", text())
	docMapping.AddFieldMappingsAt("file_path", text())
	docMapping.AddFieldMappingsAt("context", contextMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func recordToDocument(r glossary.Record) map[string]interface{} {
	return map[string]interface{}{
		"term":        r.Term(),
		"class_name":  r.ClassName(),
		"context":     r.Context(),
		"description": r.Description(),
		"file_path":   r.FilePath(),
	}
}

// Replace indexes set in batches. Documents are keyed by position, so
// positions beyond the new set are deleted.
func (s *searcher) Replace(ctx context.Context, set *glossary.Set) error {
	records := set.Records()

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	for i, r := range records {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if err := batch.Index(strconv.Itoa(i), recordToDocument(r)); err != nil {
			return fmt.Errorf("failed to add term %q to batch: %w", r.Term(), err)
		}

		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}

	for i := len(records); i < len(s.records); i++ {
		batch.Delete(strconv.Itoa(i))
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	s.records = records
	return nil
}

func (s *searcher) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	if options == nil {
		options = &Options{}
	}

	limit := options.Limit
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var queries []query.Query
	if queryStr == "" {
		queries = append(queries, bleve.NewMatchAllQuery())
	} else {
		queries = append(queries, bleve.NewQueryStringQuery(queryStr))
	}

	if options.Context != "" {
		contextQuery := bleve.NewTermQuery(options.Context)
		contextQuery.SetField("context")
		queries = append(queries, contextQuery)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	searchRequest := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	searchRequest.Highlight = bleve.NewHighlightWithStyle("html")
	searchRequest.Highlight.Fields = []string{"term", "description"}
	searchRequest.SortBy([]string{"-_score", "_id"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos < 0 || pos >= len(s.records) {
			continue
		}
		results = append(results, &Result{
			Record:     s.records[pos],
			Score:      hit.Score,
			Highlights: extractHighlights(hit.Fragments),
		})
	}

	return results, nil
}

// extractHighlights flattens bleve fragments, at most 3 per result.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, field := range []string{"term", "description"} {
		highlights = append(highlights, fragments[field]...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}

func (s *searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
