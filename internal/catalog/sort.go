package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/blakestevenson/vodboard/internal/xtream"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortBy names a sort key
type SortBy string

const (
	SortByName   SortBy = "name"
	SortByAdded  SortBy = "added"
	SortByRating SortBy = "rating"
)

// SortOrder is asc or desc
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortBy validates a sort key; empty means name
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, nil
	case SortByAdded:
		return SortByAdded, nil
	case SortByRating:
		return SortByRating, nil
	}
	return "", ErrInvalidSortBy
}

// ParseSortOrder validates a sort order; empty means asc
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", ErrInvalidSortOrder
}

// Sort returns a sorted copy of items using root-locale collation for names
func Sort(items []xtream.Movie, by SortBy, order SortOrder) []xtream.Movie {
	return SortLocale(items, by, order, language.Und)
}

type sortKey struct {
	movie  xtream.Movie
	added  int64
	rating float64
}

// SortLocale returns a sorted copy of items. Equal keys keep their relative
// order. Unparseable dates and ratings sort as zero.
func SortLocale(items []xtream.Movie, by SortBy, order SortOrder, tag language.Tag) []xtream.Movie {
	keyed := make([]sortKey, len(items))
	for i, m := range items {
		k := sortKey{movie: m}
		switch by {
		case SortByAdded:
			if t, ok := ParseAdded(string(m.Added)); ok {
				k.added = t.Unix()
			}
		case SortByRating:
			k.rating = parseRating(string(m.Rating))
		}
		keyed[i] = k
	}

	var compare func(a, b *sortKey) int
	switch by {
	case SortByName, "":
		col := collate.New(tag)
		compare = func(a, b *sortKey) int {
			return col.CompareString(a.movie.Name, b.movie.Name)
		}
	case SortByAdded:
		compare = func(a, b *sortKey) int { return cmpInt64(a.added, b.added) }
	case SortByRating:
		compare = func(a, b *sortKey) int { return cmpFloat(a.rating, b.rating) }
	default:
		compare = func(a, b *sortKey) int { return 0 }
	}

	desc := order == SortDesc
	sort.SliceStable(keyed, func(i, j int) bool {
		c := compare(&keyed[i], &keyed[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	out := make([]xtream.Movie, len(keyed))
	for i := range keyed {
		out[i] = keyed[i].movie
	}
	return out
}

func parseRating(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
