package inventory

import (
	"strings"
)

// maxEditRatio is the normalized edit-distance threshold for a fuzzy match.
// "tomato" vs "tomatoes" is 0.25; unrelated words land well above it.
const maxEditRatio = 0.34

// normalizeName lowercases, trims, and collapses internal whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// bestMatch finds the entry for name among entries. Exact case-insensitive
// match wins; otherwise the candidate with the smallest normalized edit
// distance below the threshold, tie-broken by most-recently-updated entry.
// The name argument must already be normalized.
func bestMatch(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}

	var (
		best      Entry
		bestRatio = maxEditRatio
		found     bool
	)
	for _, e := range entries {
		d := editDistance(e.Name, name)
		longest := max(len(e.Name), len(name))
		if longest == 0 {
			continue
		}
		ratio := float64(d) / float64(longest)
		if ratio > bestRatio {
			continue
		}
		if !found || ratio < bestRatio || e.UpdatedAt.After(best.UpdatedAt) {
			best = e
			bestRatio = ratio
			found = true
		}
	}
	return best, found
}

// editDistance is the Levenshtein distance between two strings. Inputs
// here are short food names, so the plain two-row DP is plenty.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
