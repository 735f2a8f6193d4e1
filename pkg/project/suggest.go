package project

import (
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 3

// Suggest returns the names in haystack within maxDistance edits of needle,
// closest first.
func Suggest(needle string, haystack []string, maxDistance int) []string {
	r := []rune(needle)
	options := make([]suggestion, 0, len(haystack))
	for _, straw := range haystack {
		distance := levenshtein.DistanceForStrings(r, []rune(straw), levenshtein.DefaultOptions)
		if len(straw) > 0 && distance <= maxDistance {
			options = append(options, suggestion{s: straw, dist: distance})
		}
	}
	sort.SliceStable(options, func(i, j int) bool { return options[i].dist < options[j].dist })
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.s
	}
	return ret
}

// SuggestVariant returns the closest variant name to name, or "" if none is close.
func (m *Model) SuggestVariant(name string) string {
	if options := Suggest(name, m.VariantNames(), maxSuggestionDistance); len(options) > 0 {
		return options[0]
	}
	return ""
}

type suggestion struct {
	s    string
	dist int
}
