package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/query"
)

// flagSet mirrors the flag surface of spec §6, bound directly to cobra flag
// variables by registerFlags. Kept as a plain struct (rather than reading
// cobra's Flags() by name at run time) so buildPlan can be unit-tested
// without constructing a cobra.Command at all.
type flagSet struct {
	patterns []string
	fromFile string

	ignoreCase   bool
	wordRegexp   bool
	lineRegexp   bool
	fixedStrings bool
	invertMatch  bool

	mode string // "default", "list", "list-without", "count", "quiet", "only-matching", "format", "hexdump"

	maxCount int
	minCount int

	before int
	after  int
	ctx    int

	rangeMin int
	rangeMax int

	lineNumber bool
	column     bool
	byteOffset bool
	color      bool
	hyperlinks bool
	nullSep    bool
	heading    bool
	noHeading  bool

	formatFirst, formatMiddle, formatLast, formatOpen, formatClose string

	workers      int
	maxQueue     int
	minSteal     int
	workStealing bool
	queueUnordered bool
	maxFiles     int
	sortKey      string
	sortReverse  bool

	decompress bool
	zmax       int

	includeGlobs, excludeGlobs     []string
	includeDirs, excludeDirs       []string
	extensions                     []string
	fileTypes                      []string
	hidden                         bool
	followSymlinks                 bool
	minDepth, maxDepth             int
	ignoreFiles                    []string

	textMode   bool
	binarySkip bool
	binaryHex  bool
	binaryRaw  bool

	fuzzyDistance int

	stats   bool
	verbose bool

	paths []string
}

func newFlagSet() *flagSet {
	return &flagSet{
		mode:     "default",
		workers:  4,
		minSteal: 3,
		zmax:     1,
		sortKey:  "none",
	}
}

// buildPlan translates the parsed flags into an immutable plan.SearchPlan,
// compiling the boolean query (spec §4.1) along the way.
func buildPlan(f *flagSet) (*plan.SearchPlan, error) {
	if len(f.patterns) == 0 && f.fromFile == "" {
		return nil, fmt.Errorf("no pattern given")
	}

	patterns := f.patterns
	keepLeadingAnything := false
	if f.fromFile != "" {
		raw, err := os.ReadFile(f.fromFile)
		if err != nil {
			return nil, fmt.Errorf("reading --file %s: %w", f.fromFile, err)
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			patterns = append(patterns, line)
		}
		keepLeadingAnything = len(f.patterns) == 0
	}
	if f.fixedStrings {
		escaped := make([]string, len(patterns))
		for i, p := range patterns {
			escaped[i] = fixedStringsPattern(p)
		}
		patterns = escaped
	}

	var cnf *query.CNF
	if len(patterns) == 1 && !looksBoolean(patterns[0]) {
		cnf = query.CompileSimple(patterns)
	} else if len(patterns) > 0 {
		joined := strings.Join(patterns, " AND ")
		cnf = query.Compile(joined, query.Flags{FixedStrings: f.fixedStrings}, keepLeadingAnything)
	} else {
		cnf = &query.CNF{}
	}

	p := &plan.SearchPlan{
		CNF:        cnf,
		Invert:     f.invertMatch,
		WordRegexp: f.wordRegexp,
		LineRegexp: f.lineRegexp,
		IgnoreCase: f.ignoreCase,
		TextMode:   f.textMode,
		MaxCount:   f.maxCount,
		MinCount:   f.minCount,
		StartPaths: f.paths,
		FuzzyDistance: f.fuzzyDistance,
	}

	p.Mode = modeFromFlag(f.mode)
	p.CountMatches = f.mode == "count" && modeFlags.onlyMatching

	p.Context = plan.ContextOptions{Before: max(f.before, f.ctx), After: max(f.after, f.ctx)}
	p.Range = plan.RangeOptions{Min: f.rangeMin, Max: f.rangeMax}

	p.Output = plan.OutputOptions{
		ShowLineNumber: f.lineNumber,
		ShowColumn:     f.column,
		ShowByteOffset: f.byteOffset,
		Color:          f.color,
		Hyperlinks:     f.hyperlinks,
		NULSeparator:   f.nullSep,
		FormatFirst:    f.formatFirst,
		FormatMiddle:   f.formatMiddle,
		FormatLast:     f.formatLast,
		FormatOpen:     f.formatOpen,
		FormatClose:    f.formatClose,
	}
	if f.heading {
		p.Output.Header = plan.HeaderHeading
	} else if !f.noHeading && f.lineNumber {
		p.Output.Header = plan.HeaderPerLine
	}
	if p.Context.Before > 0 || p.Context.After > 0 {
		p.Output.GroupSeparator = "--"
	}

	p.Conc = plan.ConcurrencyOptions{
		Workers:      f.workers,
		MaxQueue:     f.maxQueue,
		MinSteal:     f.minSteal,
		WorkStealing: f.workStealing,
		MaxFiles:     f.maxFiles,
		Sort:         sortKeyFromFlag(f.sortKey),
		SortReverse:  f.sortReverse,
	}

	p.Queue = plan.QueueOrdered
	if f.queueUnordered {
		p.Queue = plan.QueueUnordered
	}

	p.Decomp = plan.DecompressOptions{Enabled: f.decompress, ZMax: f.zmax}

	p.Selection = plan.SelectionPredicate{
		IncludeGlobs: f.includeGlobs,
		ExcludeGlobs: f.excludeGlobs,
		IncludeDirs:  f.includeDirs,
		ExcludeDirs:  f.excludeDirs,
		Extensions:   f.extensions,
		FileTypes:    f.fileTypes,
		MinDepth:     f.minDepth,
		MaxDepth:     f.maxDepth,
		IgnoreFiles:  f.ignoreFiles,
	}
	if f.hidden {
		p.Selection.Hidden = plan.HiddenSearch
	}
	if f.followSymlinks {
		p.Selection.Symlinks = plan.SymlinkAlways
	}

	p.BinaryFlag = binaryFlagFromFlags(f)

	return p, nil
}

func modeFromFlag(m string) plan.Mode {
	switch m {
	case "list":
		return plan.ModeFilesWithMatches
	case "list-without":
		return plan.ModeFilesWithoutMatch
	case "count":
		return plan.ModeCount
	case "quiet":
		return plan.ModeQuiet
	case "only-matching":
		return plan.ModeOnlyMatching
	case "format":
		return plan.ModeFormat
	case "hexdump":
		return plan.ModeHexdump
	default:
		return plan.ModeDefault
	}
}

func sortKeyFromFlag(s string) plan.SortKey {
	switch s {
	case "name":
		return plan.SortName
	case "size":
		return plan.SortSize
	case "changed":
		return plan.SortChanged
	case "accessed":
		return plan.SortAccessed
	case "created":
		return plan.SortCreated
	case "best":
		return plan.SortBest
	case "list":
		return plan.SortListOrder
	default:
		return plan.SortNone
	}
}

func binaryFlagFromFlags(f *flagSet) int {
	switch {
	case f.binarySkip:
		return 1
	case f.binaryHex:
		return 2
	case f.binaryRaw:
		return 3
	default:
		return 0
	}
}

// looksBoolean reports whether a single pattern string uses the extended
// boolean syntax (spec §4.1) rather than being a plain pattern-per-line
// feed, so single-pattern invocations without AND/OR/NOT still take the
// cheaper CompileSimple path.
func looksBoolean(p string) bool {
	return strings.Contains(p, " AND ") || strings.Contains(p, " OR ") ||
		strings.Contains(p, " NOT ") || strings.ContainsAny(p, "()|") ||
		strings.HasPrefix(p, "-")
}

