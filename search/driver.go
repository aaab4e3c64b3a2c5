// Package search implements the per-file search driver of spec §4.7: given
// one decoded unit of input (a plain file or one part produced by the
// decomp pipeline) and a compiled plan.SearchPlan, it evaluates the CNF
// query against the unit's lines and returns the Result the output package
// renders for each mode the CLI exposes (default, count,
// files-with(out)-matches, quiet, only-matching, invert, format, hexdump).
// Any-line mode gets no separate handling and is scanned like the default.
//
// The teacher's motor package runs a single fixed pattern per file
// (motor/search_worker.go: one compiled regexp, FindAllIndex over the whole
// buffer); this driver generalizes that loop to a CNF of terms, each
// independently matched via the matcher package's coregex adapter, while
// keeping the teacher's "compile once, scan many files" split between
// plan-time compilation (done by internal/cli) and per-unit scanning (done
// here).
package search

import (
	"bytes"

	"github.com/coregx/coregrep/matcher"
	"github.com/coregx/coregrep/plan"
)

// BinaryBehavior controls how a unit detected as binary is handled,
// addressed by spec §6's -a/-I/-U/-X/-W flags.
type BinaryBehavior int

const (
	// BinaryAuto skips binary content but reports "binary file matches"
	// once a match is found, the default grep-family behavior.
	BinaryAuto BinaryBehavior = iota
	// BinarySkip (--binary-skip) silently ignores binary files entirely.
	BinarySkip
	// BinaryHexdump (--binary-hex) searches binary content and renders
	// matches as a hex dump.
	BinaryHexdump
	// BinaryWithoutMessage (-U) searches binary content as raw bytes and
	// emits ordinary line output, without the "binary file matches" note.
	BinaryWithoutMessage
)

// Span is a byte range within a Line's Text, one matched occurrence.
type Span struct {
	Start, End int
}

// Line is one line of a unit, decorated with any matches found on it.
type Line struct {
	Number  int // 1-based
	Offset  int // byte offset of the line's first byte within the unit
	Text    []byte
	Matches []Span
	IsMatch bool // true if this line itself satisfied the query
	IsAfter bool // trailing context line, no match of its own
}

// Result is what one unit's search produces; the output package renders it
// according to plan.Mode.
type Result struct {
	PartName    string
	Matched     bool
	IsBinary    bool
	BinaryNote  bool // "binary file matches" rather than line output
	MatchCount  int  // lines or match occurrences, per plan.CountMatches
	Lines       []Line
}

// Driver holds per-term compiled matchers, built once per plan and reused
// across units (spec §5: "compile the query once; clone only the
// per-worker matcher state").
type Driver struct {
	plan  *plan.SearchPlan
	terms []compiledTerm
}

type compiledTerm struct {
	head *matcher.Matcher // pre-alternated disjunction of the term's positives; nil means "matches anything"
	neg  []*matcher.Matcher
}

// New compiles one matcher per CNF term's head pattern and per negative
// pattern. compile is injected so the driver doesn't hardcode how flags
// (case-insensitivity, word/line anchoring) are translated into a concrete
// coregex pattern string; internal/cli owns that, and escapes
// --fixed-strings patterns before the CNF is built.
func New(p *plan.SearchPlan, compile func(pattern string) (*matcher.Matcher, error)) (*Driver, error) {
	d := &Driver{plan: p}
	for _, t := range p.CNF.Terms {
		ct := compiledTerm{}
		if head := t.HeadPattern(); head != "" {
			m, err := compile(head)
			if err != nil {
				return nil, err
			}
			ct.head = m
		}
		for _, n := range t.Negatives {
			m, err := compile(n)
			if err != nil {
				return nil, err
			}
			ct.neg = append(ct.neg, m)
		}
		d.terms = append(d.terms, ct)
	}
	return d, nil
}

const binarySniffWindow = 8000

// looksBinary reports whether data's first binarySniffWindow bytes contain
// a NUL byte, the same heuristic grep, ripgrep and ugrep all use.
func looksBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffWindow {
		n = binarySniffWindow
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}

// Search evaluates the driver's CNF against one unit's bytes and returns a
// Result describing what matched, ready for the output package to render
// per plan.Mode. behavior governs binary handling. Each call works on its
// own clones of the compiled matchers, so workers may call it concurrently.
func (d *Driver) Search(partName string, data []byte, behavior BinaryBehavior) *Result {
	local := &Driver{plan: d.plan, terms: make([]compiledTerm, len(d.terms))}
	for i, t := range d.terms {
		ct := compiledTerm{}
		if t.head != nil {
			ct.head = t.head.Clone()
		}
		for _, n := range t.neg {
			ct.neg = append(ct.neg, n.Clone())
		}
		local.terms[i] = ct
	}
	d = local
	res := &Result{PartName: partName}

	if looksBinary(data) {
		res.IsBinary = true
		switch behavior {
		case BinarySkip:
			return res
		case BinaryHexdump, BinaryWithoutMessage:
			// fall through to ordinary line scanning below
		default: // BinaryAuto
			if d.anyTermMatches(data) {
				res.Matched = true
				res.BinaryNote = true
			}
			return res
		}
	}

	if d.isFileLevelMode() {
		matched := d.evaluateFileCNF(data)
		if d.plan.Invert {
			matched = !matched
		}
		res.Matched = matched
		return res
	}

	lines := splitLines(data)
	matchedAny := false

	for _, ln := range lines {
		ok, spans := d.evaluateLine(ln.Text)
		if d.plan.Invert {
			ok = !ok
			spans = nil
		}
		if !ok {
			continue
		}
		matchedAny = true
		ln.IsMatch = true
		ln.Matches = spans
		res.Lines = append(res.Lines, ln)

		if d.plan.CountMatches {
			res.MatchCount += len(spans)
		} else {
			res.MatchCount++
		}

		if d.plan.MaxCount > 0 && res.MatchCount >= d.plan.MaxCount {
			break
		}
	}

	res.Matched = matchedAny
	if d.plan.MinCount > 0 && res.MatchCount < d.plan.MinCount {
		res.Matched = false
		res.Lines = nil
		res.MatchCount = 0
	}

	if res.Matched && (d.plan.Range.Min > 0 || d.plan.Range.Max > 0) {
		res.Lines = clipToRange(res.Lines, d.plan.Range)
	}

	if d.plan.Context.Before > 0 || d.plan.Context.After > 0 {
		res.Lines = withContext(lines, res.Lines, d.plan.Context)
	}

	return res
}

// isFileLevelMode reports whether mode needs whole-unit CNF satisfaction
// (spec §4.7's *files*-mode semantics) rather than per-line satisfaction.
// -l/-L/-q only ever report one boolean per unit, and spec §3's invariant
// defines that boolean over the whole file, not over any single line: a
// term's positive disjunct may match on one line while its negated
// disjunct matches on another, and the term must still fail the file.
func (d *Driver) isFileLevelMode() bool {
	switch d.plan.Mode {
	case plan.ModeFilesWithMatches, plan.ModeFilesWithoutMatch, plan.ModeQuiet:
		return true
	default:
		return false
	}
}

// evaluateFileCNF implements spec §3/§4.7's *files*-mode CNF invariant:
// each AND-term tracks, independently of line boundaries, whether its
// head matched anywhere in data (positive-seen) and whether each of its
// negatives matched anywhere in data (per-term NOT-seen). The unit passes
// iff every term has a positive hit somewhere (or carries no positives)
// and its negatives are not *all* seen somewhere in the unit.
func (d *Driver) evaluateFileCNF(data []byte) bool {
	for _, t := range d.terms {
		if t.head != nil {
			t.head.Reset(data)
			if !t.head.Find() {
				return false
			}
		}
		if len(t.neg) == 0 {
			continue
		}
		allNegSeen := true
		for _, neg := range t.neg {
			neg.Reset(data)
			if !neg.Find() {
				allNegSeen = false
				break
			}
		}
		if allNegSeen {
			return false
		}
	}
	return true
}

// evaluateLine applies every CNF term to one line: the line satisfies the
// query only if every term is satisfied (AND across terms), and a term is
// satisfied when its head matches and not all of its negatives match (OR
// within Positives is already folded into the head's alternation).
func (d *Driver) evaluateLine(line []byte) (bool, []Span) {
	var spans []Span
	for _, t := range d.terms {
		ok, s := d.evaluateTerm(t, line)
		if !ok {
			return false, nil
		}
		spans = append(spans, s...)
	}
	return true, spans
}

func (d *Driver) evaluateTerm(t compiledTerm, line []byte) (bool, []Span) {
	var spans []Span
	if t.head != nil {
		t.head.Reset(line)
		found := false
		for t.head.Find() {
			found = true
			spans = append(spans, Span{t.head.Begin(), t.head.End()})
			if !d.plan.CountMatches {
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	if len(t.neg) > 0 {
		allNeg := true
		for _, neg := range t.neg {
			neg.Reset(line)
			if !neg.Find() {
				allNeg = false
				break
			}
		}
		if allNeg {
			return false, nil
		}
	}
	return true, spans
}

// anyTermMatches is the cheap existence check used for binary-file
// notices: true if every term's head matches somewhere in data, without
// collecting spans or line numbers. Negatives are not consulted.
func (d *Driver) anyTermMatches(data []byte) bool {
	for _, t := range d.terms {
		if t.head == nil {
			continue
		}
		t.head.Reset(data)
		if !t.head.Find() {
			return false
		}
	}
	return true
}

// SplitLines exposes the same line-splitting the driver uses internally,
// for callers (the fuzzy-match path in internal/cli) that need to scan
// lines without going through the CNF evaluator.
func SplitLines(data []byte) []Line { return splitLines(data) }

func splitLines(data []byte) []Line {
	var out []Line
	offset := 0
	num := 1
	for offset <= len(data) {
		nl := bytes.IndexByte(data[offset:], '\n')
		var text []byte
		var next int
		if nl < 0 {
			text = data[offset:]
			next = len(data) + 1
		} else {
			text = data[offset : offset+nl]
			next = offset + nl + 1
		}
		if len(text) == 0 && nl < 0 && offset == len(data) {
			break
		}
		out = append(out, Line{Number: num, Offset: offset, Text: text})
		num++
		offset = next
	}
	return out
}

func clipToRange(lines []Line, r plan.RangeOptions) []Line {
	var out []Line
	for _, l := range lines {
		if r.Min > 0 && l.Number < r.Min {
			continue
		}
		if r.Max > 0 && l.Number > r.Max {
			continue
		}
		out = append(out, l)
	}
	return out
}

// withContext merges plan.Context.Before/.After lines of surrounding,
// non-matching context around each matched line, deduplicating overlaps
// the way grep -C does for adjacent matches.
func withContext(all []Line, matched []Line, ctx plan.ContextOptions) []Line {
	if len(matched) == 0 {
		return matched
	}
	byNum := make(map[int]Line, len(all))
	for _, l := range all {
		byNum[l.Number] = l
	}
	matchedByNum := make(map[int]Line, len(matched))
	for _, m := range matched {
		matchedByNum[m.Number] = m
	}

	picked := make(map[int]Line)
	for _, m := range matched {
		for i := m.Number - ctx.Before; i <= m.Number+ctx.After; i++ {
			if _, already := picked[i]; already {
				continue
			}
			if mline, isMatch := matchedByNum[i]; isMatch {
				picked[i] = mline
				continue
			}
			if l, ok := byNum[i]; ok {
				l.IsAfter = i > m.Number
				picked[i] = l
			}
		}
	}

	out := make([]Line, 0, len(picked))
	for _, l := range picked {
		out = append(out, l)
	}
	sortLinesByNumber(out)
	return out
}

func sortLinesByNumber(lines []Line) {
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j-1].Number > lines[j].Number; j-- {
			lines[j-1], lines[j] = lines[j], lines[j-1]
		}
	}
}
