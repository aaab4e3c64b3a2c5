// Package glob implements gitignore-style path matching (spec §4.2) on top
// of github.com/bmatcuk/doublestar/v4, which already supplies the
// "*"/"**"/"?"/"[...]"/"\\" semantics gitignore globs need. This package adds
// the gitignore-specific envelope doublestar does not: full-path vs.
// basename dispatch, root anchoring on a leading "/", directory-only
// restriction on a trailing "/", leading "!" inversion, and case folding.
package glob

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob is one compiled gitignore-style pattern.
type Glob struct {
	raw             string
	matchPattern    string // pattern with leading !, leading /, trailing / stripped
	negate          bool
	anchored        bool
	dirOnly         bool
	hasSlash        bool
	caseInsensitive bool
}

// Compile compiles a single gitignore-style glob. caseInsensitive selects
// whether matching folds case (spec's two case-sensitive/insensitive glob
// pools are built by calling Compile per-pattern with the right flag).
func Compile(pattern string, caseInsensitive bool) *Glob {
	g := &Glob{raw: pattern, caseInsensitive: caseInsensitive}

	p := pattern
	if strings.HasPrefix(p, "!") {
		g.negate = true
		p = p[1:]
	}
	if strings.HasPrefix(p, "/") {
		g.anchored = true
		p = p[1:]
	}
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(p, `\/`) {
		g.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}

	g.hasSlash = strings.Contains(p, "/")
	if caseInsensitive {
		p = foldCasePattern(p)
	}
	g.matchPattern = p
	return g
}

// foldCasePattern lowercases the whole glob pattern, bracket classes
// included, so case-folded matching can be done by lowercasing the
// candidate too; doublestar's own Match is case-sensitive, so callers fold
// both sides consistently (see Match below).
func foldCasePattern(p string) string {
	return strings.ToLower(p)
}

// Match reports whether this glob matches a given file-system entry.
// fullPath is relative to the traversal root (no leading "./"); base is
// fullPath's final path component; isDir reports whether the entry is a
// directory. The leading "!" inversion is the caller's responsibility (spec
// §4.3 tie-break rules interpret "!" specially depending on pool); Match
// reports only the underlying glob match, and Negate() exposes the parsed
// sign so selectors can apply tie-break semantics.
func (g *Glob) Match(fullPath, base string, isDir bool) bool {
	if g.dirOnly && !isDir {
		return false
	}

	candidate := base
	pattern := g.matchPattern
	if g.hasSlash || g.anchored {
		candidate = fullPath
	}
	if g.caseInsensitive {
		candidate = strings.ToLower(candidate)
	}

	if g.anchored {
		ok, _ := doublestar.Match(pattern, candidate)
		return ok
	}

	if g.hasSlash {
		// Unanchored but slash-containing: gitignore matches the pattern
		// against any path suffix that begins at a path-segment boundary.
		if ok, _ := doublestar.Match(pattern, candidate); ok {
			return true
		}
		if ok, _ := doublestar.Match("**/"+pattern, candidate); ok {
			return true
		}
		return false
	}

	ok, _ := doublestar.Match(pattern, candidate)
	return ok
}

// Negate reports whether this glob was written with a leading "!".
func (g *Glob) Negate() bool { return g.negate }

// String returns the original, unparsed glob text.
func (g *Glob) String() string { return g.raw }

// CompileAll compiles a list of gitignore-style patterns.
func CompileAll(patterns []string, caseInsensitive bool) []*Glob {
	out := make([]*Glob, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		out = append(out, Compile(p, caseInsensitive))
	}
	return out
}

// AnyMatch reports whether any glob in the set matches, along with the
// matching glob's own negate sign (spec §4.3's "exclude glob starting with
// ! re-includes" tie-break rule consumes this signal).
func AnyMatch(globs []*Glob, fullPath, base string, isDir bool) (matched bool, negate bool) {
	for _, g := range globs {
		if g.Match(fullPath, base, isDir) {
			matched = true
			negate = g.Negate()
		}
	}
	return matched, negate
}
