// Package output renders search.Result values to a writer according to
// plan.OutputOptions and plan.Mode (spec §4.8, §6): headers, line/column/
// byte-offset decorations, ANSI color, the FORMAT DSL, and hex dumps for
// binary matches. It also holds the ordered-vs-unordered release queue of
// spec §4.5/§4.7/§4.8: workers finish files out of submission order, but
// QueueOrdered output must still appear in the walker's original slot
// order.
//
// The teacher buffers each worker's formatted output and releases it from
// a single collector goroutine (motor/collector.go); this package keeps
// that same split — Submit is safe to call concurrently from every worker,
// rendering happens lazily in slot order — generalized to the larger
// output surface spec §6 exposes. Color rendering is grounded on
// charmbracelet/lipgloss/v2, the styling library the teacher's tui/
// package already depends on for terminal output.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/search"
)

var (
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Bold(true)
	matchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197")).Bold(true)
	lineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	sepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Writer serializes rendered output from concurrent workers, buffering out
// of order results until the slot they're waiting on has been released.
type Writer struct {
	w    *bufio.Writer
	plan *plan.SearchPlan

	mu           sync.Mutex
	nextSlot     int
	pending      map[int]func()
	lastHeader   string
	anyPrinted   bool
	filesFound   int
	onCapReached func()
}

// SetCapReached registers a callback invoked exactly once, the moment the
// --max-files cap is hit by a released (not merely matched) file — the
// caller uses this to set the scheduler's cancel flag (spec §4.5).
func (o *Writer) SetCapReached(fn func()) { o.onCapReached = fn }

// FilesFound reports how many distinct files had output released to the
// sink, the spec §9 Open-Question-1 "--max-files denominator" counted at
// release time rather than at match time.
func (o *Writer) FilesFound() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.filesFound
}

// New wraps w with the ordering/formatting logic described above.
func New(w io.Writer, p *plan.SearchPlan) *Writer {
	return &Writer{
		w:       bufio.NewWriter(w),
		plan:    p,
		pending: make(map[int]func()),
	}
}

// Flush flushes any buffered bytes to the underlying writer. Callers must
// call this once all Submits have completed.
func (o *Writer) Flush() error { return o.w.Flush() }

// AnyMatched reports whether any result has been rendered as a match,
// for the exit-code mapping of spec §7.
func (o *Writer) AnyMatched() bool { return o.anyPrinted }

// Submit hands one job's results to the writer — one per search.Result
// when the unit wasn't an archive, one per part when it was. slot is the
// originating job's plan.Job.Slot; all of a job's results render as one
// atomic batch so a multi-part archive never leaves its slot half-released.
// With QueueUnordered, results render immediately in whatever order
// workers finish.
func (o *Writer) Submit(slot int, results []*search.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()

	render := func() { o.release(results) }

	if o.plan.Queue == plan.QueueUnordered {
		render()
		return
	}
	if slot == o.nextSlot {
		render()
		o.nextSlot++
		o.drainPending()
		return
	}
	o.pending[slot] = render
}

func (o *Writer) drainPending() {
	for {
		fn, ok := o.pending[o.nextSlot]
		if !ok {
			return
		}
		delete(o.pending, o.nextSlot)
		fn()
		o.nextSlot++
	}
}

// release renders one job's batch of results at the moment the sink
// actually emits them — spec §9's Open-Question-1 resolution counts a file
// toward --max-files only here, never when a file is merely found to
// match. A file whose batch arrives after the cap was already reached
// contributes no output and no count, so the set of files that appear is
// exactly the first --max-files in submission (slot) order.
func (o *Writer) release(results []*search.Result) {
	if o.capReached() {
		return
	}
	for _, res := range results {
		o.render(res)
	}
	if !batchFound(results) {
		return
	}
	o.filesFound++
	if o.capReached() && o.onCapReached != nil {
		o.onCapReached()
	}
}

func (o *Writer) capReached() bool {
	return o.plan.Conc.MaxFiles > 0 && o.filesFound >= o.plan.Conc.MaxFiles
}

// batchFound reports whether any result in one job's batch counts toward
// --max-files: one originating file, regardless of how many archive parts
// it expanded into (spec §9 Open-Question-1: "parts count against the
// file's slot once, not per-part").
func batchFound(results []*search.Result) bool {
	for _, res := range results {
		if res.Matched {
			return true
		}
	}
	return false
}

func (o *Writer) render(res *search.Result) {
	switch o.plan.Mode {
	case plan.ModeQuiet:
		if res.Matched {
			o.anyPrinted = true
		}
	case plan.ModeFilesWithMatches:
		if res.Matched {
			o.printPath(res.PartName)
			o.anyPrinted = true
		}
	case plan.ModeFilesWithoutMatch:
		if !res.Matched {
			o.printPath(res.PartName)
		}
	case plan.ModeCount:
		if res.Matched || o.plan.CountOnly {
			if o.showFilename() {
				fmt.Fprintf(o.w, "%s:%d\n", res.PartName, res.MatchCount)
			} else {
				fmt.Fprintf(o.w, "%d\n", res.MatchCount)
			}
			if res.Matched {
				o.anyPrinted = true
			}
		}
	case plan.ModeOnlyMatching:
		o.renderOnlyMatching(res)
	case plan.ModeFormat:
		o.renderFormat(res)
	case plan.ModeHexdump:
		o.renderHexdump(res)
	default: // ModeDefault, ModeInvertMatch, ModeAnyLine
		if res.IsBinary && search.BinaryBehavior(o.plan.BinaryFlag) == search.BinaryHexdump {
			o.renderHexdump(res)
		} else {
			o.renderLines(res)
		}
	}
}

// showFilename reports whether -c output should be prefixed with the
// path, matching grep-family defaults: shown whenever more than one input
// path was given or an explicit heading mode was requested, suppressed
// for the single-explicit-file case (spec §8 scenario 2: `-c -v` on one
// file prints a bare count, with no path prefix).
func (o *Writer) showFilename() bool {
	return o.plan.Output.Header != plan.HeaderNone || len(o.plan.StartPaths) != 1
}

func (o *Writer) printPath(name string) {
	if o.plan.Output.Color {
		fmt.Fprint(o.w, pathStyle.Render(name))
	} else {
		fmt.Fprint(o.w, name)
	}
	if o.plan.Output.NULSeparator {
		o.w.WriteByte(0)
	} else {
		o.w.WriteByte('\n')
	}
}

func (o *Writer) renderLines(res *search.Result) {
	if res.BinaryNote {
		fmt.Fprintf(o.w, "Binary file %s matches\n", res.PartName)
		o.anyPrinted = true
		return
	}
	if len(res.Lines) == 0 {
		return
	}
	o.writeHeaderIfNeeded(res.PartName)

	prevNum := -1
	for _, ln := range res.Lines {
		if o.plan.Output.GroupSeparator != "" && prevNum >= 0 && ln.Number != prevNum+1 {
			fmt.Fprintln(o.w, sepStyle.Render(o.plan.Output.GroupSeparator))
		}
		prevNum = ln.Number
		o.writeLinePrefix(res.PartName, ln)
		o.writeLineBody(ln)
		if ln.IsMatch {
			o.anyPrinted = true
		}
	}
}

func (o *Writer) writeHeaderIfNeeded(name string) {
	switch o.plan.Output.Header {
	case plan.HeaderHeading:
		if o.lastHeader != name {
			if o.anyPrinted {
				o.w.WriteByte('\n')
			}
			if o.plan.Output.Color {
				fmt.Fprintln(o.w, pathStyle.Render(name))
			} else {
				fmt.Fprintln(o.w, name)
			}
			o.lastHeader = name
		}
	case plan.HeaderPerLine:
		// handled inline in writeLinePrefix
	}
}

func (o *Writer) writeLinePrefix(name string, ln search.Line) {
	sep := ":"
	if ln.IsAfter {
		sep = "-"
	}
	if o.plan.Output.Header == plan.HeaderPerLine {
		if o.plan.Output.Color {
			fmt.Fprintf(o.w, "%s%s", pathStyle.Render(name), sepStyle.Render(sep))
		} else {
			fmt.Fprintf(o.w, "%s%s", name, sep)
		}
	}
	if o.plan.Output.ShowLineNumber {
		num := strconv.Itoa(ln.Number)
		if o.plan.Output.Color {
			fmt.Fprintf(o.w, "%s%s", lineStyle.Render(num), sepStyle.Render(sep))
		} else {
			fmt.Fprintf(o.w, "%s%s", num, sep)
		}
	}
	if o.plan.Output.ShowColumn {
		col := 1
		if len(ln.Matches) > 0 {
			col = ln.Matches[0].Start + 1
		}
		fmt.Fprintf(o.w, "%d%s", col, sep)
	}
	if o.plan.Output.ShowByteOffset {
		fmt.Fprintf(o.w, "%d%s", ln.Offset, sep)
	}
}

func (o *Writer) writeLineBody(ln search.Line) {
	if !o.plan.Output.Color || len(ln.Matches) == 0 {
		o.w.Write(ln.Text)
		o.w.WriteByte('\n')
		return
	}
	prev := 0
	for _, s := range ln.Matches {
		o.w.Write(ln.Text[prev:s.Start])
		o.w.WriteString(matchStyle.Render(string(ln.Text[s.Start:s.End])))
		prev = s.End
	}
	o.w.Write(ln.Text[prev:])
	o.w.WriteByte('\n')
}

func (o *Writer) renderOnlyMatching(res *search.Result) {
	for _, ln := range res.Lines {
		if !ln.IsMatch {
			continue
		}
		for _, s := range ln.Matches {
			o.writeLinePrefix(res.PartName, ln)
			text := string(ln.Text[s.Start:s.End])
			if o.plan.Output.Color {
				fmt.Fprintln(o.w, matchStyle.Render(text))
			} else {
				fmt.Fprintln(o.w, text)
			}
			o.anyPrinted = true
		}
	}
}

func (o *Writer) renderHexdump(res *search.Result) {
	for _, ln := range res.Lines {
		if !ln.IsMatch {
			continue
		}
		o.writeLinePrefix(res.PartName, ln)
		o.w.WriteByte('\n')
		fmt.Fprint(o.w, hexDump(ln.Text))
		o.anyPrinted = true
	}
}

func hexDump(data []byte) string {
	var out []byte
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]
		out = append(out, []byte(fmt.Sprintf("%08x  ", i))...)
		for j, b := range chunk {
			out = append(out, []byte(fmt.Sprintf("%02x ", b))...)
			if j == 7 {
				out = append(out, ' ')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}

// Stats renders a one-line closing summary of files scanned, files matched
// and bytes read, using go-humanize for the byte count. The CLI's --stats
// output is produced by stats.Report, not by this method.
func (o *Writer) Stats(filesScanned, filesMatched int, bytesScanned int64) {
	fmt.Fprintf(o.w, "%d files scanned, %d matched, %s read\n",
		filesScanned, filesMatched, humanize.Bytes(uint64(bytesScanned)))
}
