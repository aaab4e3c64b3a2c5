// Package stats collects the run-wide counters spec §6's --stats flag
// reports: files walked, files and archive parts scanned/matched, lines
// matched, directories visited, bytes read, and which ignore files were
// consulted. Every counter is updated from worker goroutines concurrently,
// so they're plain atomics rather than a mutex-guarded struct — the same
// choice the teacher makes for its own run counters (motor/stats.go).
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

// Stats is a concurrency-safe accumulator. The zero value is ready to use.
type Stats struct {
	FilesWalked   atomic.Int64
	DirsWalked    atomic.Int64
	FilesScanned  atomic.Int64
	FilesMatched  atomic.Int64
	FoundFiles    atomic.Int64 // spec's "max-files" denominator: one per originating file
	FoundParts    atomic.Int64 // archive/decompression parts that individually matched
	LinesMatched  atomic.Int64
	BytesRead     atomic.Int64
	Warnings      atomic.Int64

	mu          sync.Mutex
	ignoreFiles map[string]struct{}
}

// RecordIgnoreFile notes that path was loaded and applied as a gitignore-
// style exclude file, for the --stats / --index diagnostic listing (spec
// §4.3, resolved Open Question on --index logging).
func (s *Stats) RecordIgnoreFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ignoreFiles == nil {
		s.ignoreFiles = make(map[string]struct{})
	}
	s.ignoreFiles[path] = struct{}{}
}

// IgnoreFiles returns every ignore-file path recorded so far, sorted for
// deterministic reporting.
func (s *Stats) IgnoreFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ignoreFiles))
	for p := range s.ignoreFiles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Report renders the human-readable summary spec §6's --stats prints at the
// end of a run, using go-humanize for byte counts the way the rest of the
// retrieved pack's CLI tools format sizes.
func (s *Stats) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d director%s walked\n", s.DirsWalked.Load(), plural(s.DirsWalked.Load(), "y", "ies"))
	fmt.Fprintf(&b, "%d file%s walked, %d scanned, %d matched\n",
		s.FilesWalked.Load(), plural(s.FilesWalked.Load(), "", "s"),
		s.FilesScanned.Load(), s.FilesMatched.Load())
	if parts := s.FoundParts.Load(); parts > 0 {
		fmt.Fprintf(&b, "%d archive part%s matched\n", parts, plural(parts, "", "s"))
	}
	fmt.Fprintf(&b, "%d line%s matched\n", s.LinesMatched.Load(), plural(s.LinesMatched.Load(), "", "s"))
	fmt.Fprintf(&b, "%s read\n", humanize.Bytes(uint64(s.BytesRead.Load())))
	if w := s.Warnings.Load(); w > 0 {
		fmt.Fprintf(&b, "%d warning%s\n", w, plural(w, "", "s"))
	}
	if files := s.IgnoreFiles(); len(files) > 0 {
		fmt.Fprintf(&b, "ignore files applied: %s\n", strings.Join(files, ", "))
	}
	return b.String()
}

func plural(n int64, singular, pluralSuffix string) string {
	if n == 1 {
		return singular
	}
	return pluralSuffix
}
