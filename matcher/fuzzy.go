package matcher

import (
	"github.com/hbollon/go-edlib"
)

// FuzzyMatcher implements spec §6's -Z/--fuzzy: approximate matching within
// a maximum edit distance. coregex has no approximate-matching mode, so this
// slides a window of the pattern's own length (plus/minus the allowed
// distance) across the line and scores each candidate with go-edlib's
// Levenshtein distance, keeping the cheapest. This is a pragmatic
// approximation of true bounded-error regex matching (the agrep/TRE
// approach), not a from-scratch bit-parallel implementation — the pack
// carries no such library, and hand-rolling one is out of scope for the
// matcher adapter.
type FuzzyMatcher struct {
	pattern string
	maxCost int
}

// NewFuzzy builds a FuzzyMatcher for pattern, tolerating up to maxCost
// single-character edits.
func NewFuzzy(pattern string, maxCost int) *FuzzyMatcher {
	return &FuzzyMatcher{pattern: pattern, maxCost: maxCost}
}

// Match reports whether line contains a substring within maxCost edits of
// pattern, and the cheapest such cost found.
func (f *FuzzyMatcher) Match(line []byte) (ok bool, cost int, start, end int) {
	text := string(line)
	plen := len(f.pattern)
	if plen == 0 {
		return false, 0, 0, 0
	}

	bestCost := f.maxCost + 1
	bestStart, bestEnd := -1, -1

	for winLen := plen - f.maxCost; winLen <= plen+f.maxCost; winLen++ {
		if winLen <= 0 {
			continue
		}
		for i := 0; i+winLen <= len(text); i++ {
			window := text[i : i+winLen]
			d := edlib.LevenshteinDistance(window, f.pattern)
			if d < bestCost {
				bestCost = d
				bestStart, bestEnd = i, i+winLen
			}
		}
	}

	if bestCost > f.maxCost {
		return false, 0, 0, 0
	}
	return true, bestCost, bestStart, bestEnd
}

// BestCost reports the Levenshtein edit distance between pattern and the
// whole of candidate.
func BestCost(pattern, candidate string) int {
	return edlib.LevenshteinDistance(candidate, pattern)
}
