package catalog

import (
	"time"

	"github.com/blakestevenson/vodboard/internal/xtream"
)

// FilterByDate keeps items added at or after from. A zero from returns items
// unchanged; items without a parseable added value are dropped otherwise.
func FilterByDate(items []xtream.Movie, from time.Time) []xtream.Movie {
	if from.IsZero() {
		return items
	}

	out := make([]xtream.Movie, 0, len(items))
	for _, m := range items {
		added, ok := ParseAdded(string(m.Added))
		if !ok {
			continue
		}
		if !added.Before(from) {
			out = append(out, m)
		}
	}
	return out
}

// FilterByCategory keeps items whose category id equals categoryID exactly.
// An empty categoryID returns items unchanged.
func FilterByCategory(items []xtream.Movie, categoryID string) []xtream.Movie {
	if categoryID == "" {
		return items
	}

	out := make([]xtream.Movie, 0, len(items))
	for _, m := range items {
		if string(m.CategoryID) == categoryID {
			out = append(out, m)
		}
	}
	return out
}
