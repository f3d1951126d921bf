package catalog

import (
	"time"

	"github.com/blakestevenson/vodboard/internal/xtream"
	"golang.org/x/text/language"
)

// Query is one request's worth of catalog narrowing. Zero fields are no-ops;
// an empty SortBy leaves the order as produced by search.
type Query struct {
	Text      string
	From      time.Time
	Category  string
	SortBy    SortBy
	SortOrder SortOrder
}

// Pipeline bundles the tunables shared by every query
type Pipeline struct {
	Search SearchOptions
	Locale language.Tag
}

// NewPipeline creates a pipeline with default search options and root collation
func NewPipeline() Pipeline {
	return Pipeline{Search: DefaultSearchOptions(), Locale: language.Und}
}

// Apply runs category filter, text search, date filter and sort in that order
func (p Pipeline) Apply(items []xtream.Movie, q Query) []xtream.Movie {
	out := FilterByCategory(items, q.Category)
	out = Search(out, q.Text, p.Search)
	out = FilterByDate(out, q.From)
	if q.SortBy != "" {
		out = SortLocale(out, q.SortBy, q.SortOrder, p.Locale)
	}
	return out
}

// ParseQuery validates raw request parameters into a Query. An empty sortBy
// leaves SortBy unset so search ranking is kept.
func ParseQuery(text, categoryID, fromDate, sortBy, sortOrder string) (Query, error) {
	q := Query{Text: text, Category: categoryID}

	from, err := ParseDate(fromDate)
	if err != nil {
		return q, err
	}
	q.From = from

	if sortBy != "" {
		if q.SortBy, err = ParseSortBy(sortBy); err != nil {
			return q, err
		}
	}
	if q.SortOrder, err = ParseSortOrder(sortOrder); err != nil {
		return q, err
	}
	return q, nil
}
