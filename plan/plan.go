// Package plan holds the immutable configuration the CLI layer builds once
// and hands to the core search engine. Core packages only ever read a
// *SearchPlan; they never mutate it.
package plan

import (
	"time"

	"github.com/coregx/coregrep/query"
)

// SymlinkPolicy controls when the walker follows symbolic links.
type SymlinkPolicy int

const (
	SymlinkNever SymlinkPolicy = iota
	SymlinkCommandLineOnly
	SymlinkAlways
)

// HiddenPolicy controls whether dotfiles are searched.
type HiddenPolicy int

const (
	HiddenSkip HiddenPolicy = iota
	HiddenSearch
)

// SortKey selects how the walker orders file entries before submission.
type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortBest
	SortSize
	SortAccessed
	SortChanged
	SortCreated
	SortListOrder
)

// HeaderMode controls how (and how often) the output emitter prints the
// current path/part ahead of matching lines.
type HeaderMode int

const (
	HeaderNone HeaderMode = iota
	HeaderPerLine
	HeaderHeading
)

// Mode selects the per-file search driver behavior of spec §4.7.
type Mode int

const (
	ModeDefault Mode = iota
	ModeCount
	ModeFilesWithMatches
	ModeFilesWithoutMatch
	ModeQuiet
	ModeOnlyMatching
	ModeInvertMatch
	ModeAnyLine
	ModeFormat
	ModeHexdump
)

// QueueMode selects ordered vs. unordered output release (spec §4.5/§4.7/§4.8).
type QueueMode int

const (
	QueueOrdered QueueMode = iota
	QueueUnordered
)

// SelectionPredicate is the per-entry include/exclude decision configuration
// of spec §3 / §4.3.
type SelectionPredicate struct {
	IncludeGlobs   []string // case-sensitive include globs (files)
	ExcludeGlobs   []string // case-sensitive exclude globs (files)
	IncludeIGlobs  []string // case-insensitive include globs (files)
	ExcludeIGlobs  []string // case-insensitive exclude globs (files)
	IncludeDirs    []string
	ExcludeDirs    []string
	Extensions     []string // bare extensions, no leading dot
	FileTypes      []string // named file-type table entries (e.g. "go", "py")
	MagicPattern   string   // magic-byte regex, empty if unused

	MinDepth int // 0 = unbounded
	MaxDepth int // 0 = unbounded

	Hidden        HiddenPolicy
	Symlinks      SymlinkPolicy
	AllowDevices  bool
	AllowedFSIDs  map[uint64]bool // empty = no restriction
	DeniedFSIDs   map[uint64]bool
	IgnoreFiles   []string // basenames of gitignore-style files to honor, e.g. ".gitignore"
}

// ContextOptions configures before/after context line output (spec §4.7).
type ContextOptions struct {
	Before int
	After  int
}

// RangeOptions configures --range=MIN,MAX line-number bounding (spec §4.7).
type RangeOptions struct {
	Min int // 1-based, 0 = unbounded
	Max int // 0 = unbounded
}

// OutputOptions configures the output emitter (spec §4.8, §6).
type OutputOptions struct {
	Header          HeaderMode
	ShowLineNumber  bool
	ShowColumn      bool
	ShowByteOffset  bool
	Color           bool
	Hyperlinks      bool
	GroupSeparator  string // "--" between non-adjacent context groups; "" disables
	NULSeparator    bool   // --null: NUL instead of a newline after each -l/-L pathname
	FormatFirst     string
	FormatMiddle    string
	FormatLast      string
	FormatOpen      string
	FormatClose     string
	ReplaceFormat   string
	MaxLineWidth    int // for -ABC context budget/ellipsis; 0 = unbounded
}

// ConcurrencyOptions configures the scheduling model of spec §4.5.
type ConcurrencyOptions struct {
	Workers     int
	MaxQueue    int
	MinSteal    int // default 3
	WorkStealing bool
	MaxFiles    int // 0 = unbounded
	Sort        SortKey
	SortReverse bool
}

// DecompressOptions configures the archive/decompression demultiplexer of
// spec §4.6.
type DecompressOptions struct {
	Enabled bool
	ZMax    int // max nesting depth, default 1, max 99
}

// SearchPlan is the compiled, immutable description of one search run. It is
// constructed once by internal/cli and passed by reference into the core.
type SearchPlan struct {
	CNF *query.CNF

	Selection SelectionPredicate
	Context   ContextOptions
	Range     RangeOptions
	Output    OutputOptions
	Conc      ConcurrencyOptions
	Decomp    DecompressOptions

	Mode        Mode
	Queue       QueueMode
	Invert      bool
	WordRegexp  bool
	LineRegexp  bool
	IgnoreCase  bool
	TextMode    bool // -a: force treat binary as text
	BinaryFlag  int  // --binary-skip, --binary-hex, -U: see search.BinaryBehavior
	MaxCount    int  // --max-count, 0 = unbounded
	MinCount    int  // --min-count, 0 = none required
	CountOnly   bool
	CountMatches bool // -c -o: count matches instead of lines
	FuzzyDistance int // --fuzzy/-Z, 0 disables approximate matching

	StartPaths []string

	StartedAt time.Time
}
