// Package cli is the glue layer between the cobra command tree and the
// core search engine: it parses flags into a flagSet, compiles a
// plan.SearchPlan (flags.go, compile.go), and drives the walker/scheduler/
// decompressor/matcher/search/output/stats packages to completion
// (run.go). Its command-tree and logging shape is grounded directly on the
// teacher's cmd/root.go (setupLogger, PersistentPreRun, a package-level
// Logger).
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flags = newFlagSet()

var rootCmd = &cobra.Command{
	Use:   "coregrep [OPTIONS] PATTERN [PATH...]",
	Short: "Recursively search files for a pattern, with boolean queries and archive support",
	Long: `coregrep recursively walks one or more paths, selecting files by glob,
extension, or type, and searches their contents for a pattern or an
extended boolean query of AND/OR/NOT terms. It can look inside common
compressed and archive formats, search approximately within an edit-distance
budget, and render matches in several output modes.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && flags.fromFile == "" {
			return fmt.Errorf("requires a PATTERN argument, or --file to read patterns from")
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(flags.verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// With --file, every positional arg is a search path; without it,
		// the first is the pattern and the rest are paths (spec §6).
		if flags.fromFile != "" {
			flags.paths = args
		} else {
			flags.patterns = []string{args[0]}
			flags.paths = args[1:]
		}
		if len(flags.paths) == 0 {
			flags.paths = []string{"."}
		}
		return runSearch(cmd.Context(), flags)
	},
}

// Execute runs the root command; main.go calls this and maps the returned
// error to the process exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose diagnostic logging")

	f := rootCmd.Flags()
	f.BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "case-insensitive matching")
	f.BoolVarP(&flags.wordRegexp, "word-regexp", "w", false, "match whole words only")
	f.BoolVarP(&flags.lineRegexp, "line-regexp", "x", false, "match whole lines only")
	f.BoolVarP(&flags.fixedStrings, "fixed-strings", "F", false, "treat the pattern as a literal string")
	f.BoolVar(&flags.invertMatch, "invert-match", false, "select non-matching lines")
	f.StringVar(&flags.fromFile, "file", "", "read patterns from FILE, one per line")

	f.StringVar(&flags.mode, "mode", "default",
		"output mode: default, list, list-without, count, quiet, only-matching, format, hexdump")
	f.BoolVarP(&modeFlags.list, "files-with-matches", "l", false, "print only filenames with a match")
	f.BoolVarP(&modeFlags.listWithout, "files-without-match", "L", false, "print only filenames without a match")
	f.BoolVarP(&modeFlags.count, "count", "c", false, "print only a count of matches per file")
	f.BoolVarP(&modeFlags.quiet, "quiet", "q", false, "suppress all output; rely on exit status")
	f.BoolVarP(&modeFlags.onlyMatching, "only-matching", "o", false, "print only the matched part of each line")
	f.BoolVarP(&modeFlags.hexdump, "hexdump", "X", false, "render matches as a hex dump")

	f.IntVarP(&flags.maxCount, "max-count", "m", 0, "stop after this many matches per file")
	f.IntVar(&flags.minCount, "min-count", 0, "require at least this many matches per file")

	f.IntVarP(&flags.before, "before-context", "B", 0, "print NUM lines of leading context")
	f.IntVarP(&flags.after, "after-context", "A", 0, "print NUM lines of trailing context")
	f.IntVarP(&flags.ctx, "context", "C", 0, "print NUM lines of context on both sides")

	f.IntVar(&flags.rangeMin, "range-min", 0, "first line number to consider")
	f.IntVar(&flags.rangeMax, "range-max", 0, "last line number to consider")

	f.BoolVarP(&flags.lineNumber, "line-number", "n", false, "prefix each line with its line number")
	f.BoolVar(&flags.column, "column", false, "prefix each line with its column number")
	f.BoolVar(&flags.byteOffset, "byte-offset", false, "prefix each line with its byte offset")
	f.BoolVar(&flags.color, "color", false, "colorize matches and paths")
	f.BoolVar(&flags.hyperlinks, "hyperlinks", false, "emit OSC-8 hyperlinks for paths")
	f.BoolVar(&flags.nullSep, "null", false, "terminate filenames printed by -l/-L with NUL instead of a newline")
	f.BoolVar(&flags.heading, "heading", false, "print a path heading before each file's matches")
	f.BoolVar(&flags.noHeading, "no-heading", false, "never print a path heading")

	f.StringVar(&flags.formatFirst, "format-first", "", "FORMAT DSL template for the first match of each file")
	f.StringVar(&flags.formatMiddle, "format", "", "FORMAT DSL template for each match")
	f.StringVar(&flags.formatLast, "format-last", "", "FORMAT DSL template for the last match of each file")
	f.StringVar(&flags.formatOpen, "format-open", "", "text emitted once before any --format output")
	f.StringVar(&flags.formatClose, "format-close", "", "text emitted once after all --format output")

	f.IntVarP(&flags.workers, "jobs", "j", 4, "number of worker goroutines")
	f.IntVar(&flags.maxQueue, "max-queue", 0, "per-worker queue capacity, 0 for unbounded")
	f.IntVar(&flags.minSteal, "min-steal", 3, "minimum queue depth before a worker's jobs can be stolen")
	f.BoolVar(&flags.workStealing, "work-stealing", true, "allow idle workers to steal from busy peers")
	f.BoolVar(&flags.queueUnordered, "unordered", false, "release output as soon as each file finishes, not in path order")
	f.IntVar(&flags.maxFiles, "max-files", 0, "stop after this many matching files, 0 for unbounded")
	f.StringVar(&flags.sortKey, "sort", "none", "walk order: none, name, size, changed, accessed, created; best and list order by name")
	f.BoolVar(&flags.sortReverse, "sort-reverse", false, "reverse the sort order")

	f.BoolVarP(&flags.decompress, "decompress", "z", false, "search inside compressed files and archives")
	f.IntVar(&flags.zmax, "zmax", 1, "maximum nested archive depth")

	f.StringSliceVarP(&flags.includeGlobs, "include", "I", nil, "only search files matching GLOB")
	f.StringSliceVarP(&flags.excludeGlobs, "exclude", "E", nil, "skip files matching GLOB")
	f.StringSliceVar(&flags.includeDirs, "include-dir", nil, "only descend into directories matching GLOB")
	f.StringSliceVar(&flags.excludeDirs, "exclude-dir", nil, "never descend into directories matching GLOB")
	f.StringSliceVarP(&flags.extensions, "ext", "O", nil, "only search files with these bare extensions")
	f.StringSliceVarP(&flags.fileTypes, "type", "t", nil, "only search files of these named types")
	f.BoolVar(&flags.hidden, "hidden", false, "include hidden (dot) files and directories")
	f.BoolVarP(&flags.followSymlinks, "follow", "S", false, "follow symbolic links")
	f.IntVar(&flags.minDepth, "min-depth", 0, "do not search files shallower than this depth")
	f.IntVar(&flags.maxDepth, "max-depth", 0, "do not descend past this depth")
	f.StringSliceVar(&flags.ignoreFiles, "ignore-file", []string{".gitignore"}, "gitignore-style exclude files to honor")

	f.BoolVarP(&flags.textMode, "text", "a", false, "treat binary files as text")
	f.BoolVar(&flags.binarySkip, "binary-skip", false, "silently skip binary files")
	f.BoolVar(&flags.binaryHex, "binary-hex", false, "render binary matches as a hex dump")
	f.BoolVarP(&flags.binaryRaw, "binary-without-match-note", "U", false, "search binary files without the \"binary file matches\" note")

	f.IntVarP(&flags.fuzzyDistance, "fuzzy", "Z", 0, "allow approximate matches within this edit distance")

	f.BoolVar(&flags.stats, "stats", false, "print a summary of files and lines scanned")
}

// modeFlags holds the mode-selecting boolean flags (-l/-L/-c/-q/-o/-X);
// each is its own bool destination because pflag's BoolVarP needs a real
// *bool, then resolveModeAliases folds whichever one was set into
// flags.mode before buildPlan runs. --mode itself still works as a
// spelled-out alternative for scripts.
var modeFlags struct {
	list, listWithout, count, quiet, onlyMatching, hexdump bool
}

func init() {
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		resolveModeAliases()
		return nil
	}
}

func resolveModeAliases() {
	switch {
	case modeFlags.list:
		flags.mode = "list"
	case modeFlags.listWithout:
		flags.mode = "list-without"
	case modeFlags.count:
		flags.mode = "count"
	case modeFlags.quiet:
		flags.mode = "quiet"
	case modeFlags.onlyMatching:
		flags.mode = "only-matching"
	case modeFlags.hexdump:
		flags.mode = "hexdump"
	}
}
