package catalog

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"golang.org/x/text/cases"
)

// SearchOptions tunes fuzzy matching.
//
// Threshold is the worst per-field score still counted as a match: 0 needs an
// exact hit, 1 matches anything. Distance scales the penalty for matches that
// start late in a field; a match Distance runes in costs a full point. A
// Distance of zero or less ignores match position.
type SearchOptions struct {
	Threshold float64
	Distance  int
}

// DefaultSearchOptions favours recall over strict substring matching
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Threshold: 0.4, Distance: 100}
}

type searchKey struct {
	weight float64
	value  func(m *xtream.Movie) string
}

var searchKeys = []searchKey{
	{weight: 0.7, value: func(m *xtream.Movie) string { return m.Name }},
	{weight: 0.7, value: func(m *xtream.Movie) string { return m.Title }},
	{weight: 0.3, value: func(m *xtream.Movie) string { return m.Plot }},
	{weight: 0.2, value: func(m *xtream.Movie) string { return m.Genre }},
	{weight: 0.2, value: func(m *xtream.Movie) string { return m.Director }},
	{weight: 0.2, value: func(m *xtream.Movie) string { return m.Actors }},
}

var searchWeightTotal = func() float64 {
	var total float64
	for _, k := range searchKeys {
		total += k.weight
	}
	return total
}()

// exactScore stands in for a perfect field score so the product stays informative
const exactScore = 2.220446049250313e-16

// Search returns the items matching query, best match first. A blank query
// returns items unchanged.
func Search(items []xtream.Movie, query string, opts SearchOptions) []xtream.Movie {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	fold := cases.Fold()
	pattern := fold.String(query)

	type hit struct {
		index int
		score float64
	}
	hits := make([]hit, 0)

	for i := range items {
		if score, ok := scoreMovie(&items[i], pattern, fold, opts); ok {
			hits = append(hits, hit{index: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score < hits[b].score
	})

	out := make([]xtream.Movie, len(hits))
	for i, h := range hits {
		out[i] = items[h.index]
	}
	return out
}

// scoreMovie combines the matching fields' scores, weighted and normalised by
// field length. Lower is better.
func scoreMovie(m *xtream.Movie, pattern string, fold cases.Caser, opts SearchOptions) (float64, bool) {
	total := 1.0
	matched := false

	for _, key := range searchKeys {
		text := key.value(m)
		if strings.TrimSpace(text) == "" {
			continue
		}

		score, ok := fieldScore(pattern, fold.String(text), opts)
		if !ok {
			continue
		}
		matched = true

		if score == 0 {
			score = exactScore
		}
		norm := 1 / math.Sqrt(float64(tokenCount(text)))
		total *= math.Pow(score, key.weight/searchWeightTotal*norm)
	}

	return total, matched
}

// fieldScore finds the best alignment of pattern inside text: edit errors per
// pattern rune plus a penalty for how far in the match starts.
func fieldScore(pattern, text string, opts SearchOptions) (float64, bool) {
	p := []rune(pattern)
	t := []rune(text)
	m := len(p)
	if m == 0 {
		return 0, false
	}

	best := math.Inf(1)

	if idx := strings.Index(text, pattern); idx >= 0 {
		best = proximity(utf8.RuneCountInString(text[:idx]), opts.Distance)
	}

	if best > 0 {
		if len(t) <= m {
			d := levenshtein.ComputeDistance(pattern, text)
			best = math.Min(best, float64(d)/float64(m))
		} else {
			for start := 0; start+m <= len(t); start++ {
				prox := proximity(start, opts.Distance)
				if prox >= best || prox > opts.Threshold {
					break
				}
				d := levenshtein.ComputeDistance(pattern, string(t[start:start+m]))
				if s := float64(d)/float64(m) + prox; s < best {
					best = s
				}
				if best == 0 {
					break
				}
			}
		}
	}

	return best, best <= opts.Threshold
}

func proximity(offset, distance int) float64 {
	if distance <= 0 {
		return 0
	}
	return float64(offset) / float64(distance)
}

func tokenCount(s string) int {
	n := len(strings.Fields(s))
	if n == 0 {
		return 1
	}
	return n
}
