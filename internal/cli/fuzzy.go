package cli

import (
	"github.com/coregx/coregrep/matcher"
	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/search"
)

// fuzzySearch implements --fuzzy/-Z (spec §6): approximate matching within
// an edit-distance budget, bypassing the CNF evaluator entirely since a
// bounded-error match has no natural "head pattern" to compile into
// coregex. It is a single-pattern-only path, the same restriction ugrep
// itself documents for -Z combined with boolean queries.
func fuzzySearch(p *plan.SearchPlan, pattern string, partName string, data []byte) *search.Result {
	fm := matcher.NewFuzzy(pattern, p.FuzzyDistance)
	res := &search.Result{PartName: partName}

	for _, ln := range search.SplitLines(data) {
		ok, _, start, end := fm.Match(ln.Text)
		if !ok {
			continue
		}
		ln.IsMatch = true
		ln.Matches = []search.Span{{Start: start, End: end}}
		res.Lines = append(res.Lines, ln)
		res.Matched = true
		res.MatchCount++
		if p.MaxCount > 0 && res.MatchCount >= p.MaxCount {
			break
		}
	}
	return res
}
