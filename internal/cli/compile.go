package cli

import (
	"fmt"
	"regexp"

	"github.com/coregx/coregex"
	"github.com/coregx/coregrep/matcher"
	"github.com/coregx/coregrep/plan"
)

// compileFunc builds the term-compiler closure the search package needs
// (search.New's second argument), applying the case-insensitive and word-
// and line-regexp flags of spec §6 to each CNF term's raw pattern before
// handing it to coregex. --fixed-strings is not handled here: buildPlan
// escapes the patterns with fixedStringsPattern before query compilation.
//
// regexp.QuoteMeta is the one stdlib regexp symbol this tool touches: it is
// a pure string-escaping helper with no engine behind it, so using it to
// implement --fixed-strings doesn't pull in the stdlib regexp engine as a
// competitor to coregex; no third-party library in the retrieved pack
// offers anything more purpose-built for this one line of escaping.
func compileFunc(p *plan.SearchPlan) func(pattern string) (*matcher.Matcher, error) {
	return func(pattern string) (*matcher.Matcher, error) {
		final := pattern
		if p.WordRegexp {
			final = `\b(?:` + final + `)\b`
		}
		if p.LineRegexp {
			final = `^(?:` + final + `)$`
		}
		if p.IgnoreCase {
			final = `(?i)` + final
		}
		re, err := coregex.Compile(final)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
		}
		return matcher.New(re), nil
	}
}

// fixedStringsPattern escapes a literal pattern for use as a CNF raw
// pattern string when --fixed-strings is set, applied by the caller before
// the pattern ever reaches query.Compile.
func fixedStringsPattern(literal string) string {
	return regexp.QuoteMeta(literal)
}
