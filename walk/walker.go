// Package walk implements the recursive directory traversal engine of spec
// §4.4: depth-first, post-ordered by sort key when sorting is enabled,
// symlink-loop safe and gitignore-file aware.
//
// The walker runs entirely on the caller's goroutine (the scheduling
// "master" of spec §4.5) so that the symlink-loop visited-inode set can be
// mutated without synchronization, per spec §5's "owned by the walker and
// only mutated from the master thread" invariant.
package walk

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/coregx/coregrep/glob"
	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/selector"
)

// maxRecursionDepth is the hard ceiling of spec §4.4: "Hard recursion depth
// ceiling (e.g., 100) aborts further descent with a warning."
const maxRecursionDepth = 100

// FileSink receives each file entry the walker selects, in submission
// order. Implementations (the scheduler) assign it a job slot.
type FileSink func(plan.Entry)

// Walker performs the recursive traversal described in spec §4.4.
type Walker struct {
	sel         *selector.Selector
	sortKey     plan.SortKey
	sortReverse bool
	ignoreNames []string
	logger      *slog.Logger

	visited  map[plan.InodeID]bool
	listPos  int
	warnings int
	dirs     int
}

// New builds a Walker over a compiled Selector.
func New(sel *selector.Selector, sortKey plan.SortKey, sortReverse bool, ignoreNames []string, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		sel:         sel,
		sortKey:     sortKey,
		sortReverse: sortReverse,
		ignoreNames: ignoreNames,
		logger:      logger,
		visited:     make(map[plan.InodeID]bool),
	}
}

// ignoreFrame is one level of the per-directory "ignore files" stack (spec
// §4.4 bullet 5): extra exclude globs contributed by a gitignore-like file
// found in this directory, popped when the walker unwinds past it.
type ignoreFrame struct {
	excludes []*glob.Glob
}

// Walk traverses each root path, classifying and emitting file entries to
// sink in directory-iteration order. Root paths are always treated as
// command-line arguments for hidden/symlink policy purposes (spec §4.3).
func (w *Walker) Walk(roots []string, sink FileSink) error {
	var ignoreStack []ignoreFrame

	for _, root := range roots {
		info, err := os.Lstat(root)
		if err != nil {
			w.logger.Warn("cannot stat root path", "path", root, "error", err)
			w.warnings++
			continue
		}

		if !info.IsDir() {
			w.emitRoot(root, info, sink)
			continue
		}

		w.walkDir(root, 1, true, ignoreStack, sink)
	}

	return nil
}

// Warnings returns the number of non-fatal I/O warnings accumulated during
// the walk (spec §7 "per-entry warning; the entry is skipped; the run
// continues").
func (w *Walker) Warnings() int { return w.warnings }

// DirsWalked returns the number of directories descended into, for --stats.
func (w *Walker) DirsWalked() int { return w.dirs }

func (w *Walker) emitRoot(root string, info os.FileInfo, sink FileSink) {
	cand := selector.Candidate{
		FullPath:     root,
		Base:         filepath.Base(root),
		IsSymlink:    info.Mode()&os.ModeSymlink != 0,
		IsCommandArg: true,
		Depth:        0,
	}
	if w.sel.Classify(cand) == selector.SKIP {
		return
	}
	w.listPos++
	sink(plan.Entry{Path: root, Cost: -1, ListPos: w.listPos})
}

func (w *Walker) walkDir(dir string, depth int, isRoot bool, ignoreStack []ignoreFrame, sink FileSink) {
	if depth > maxRecursionDepth {
		w.logger.Warn("recursion depth ceiling reached, not descending further", "path", dir, "depth", depth)
		w.warnings++
		return
	}
	w.dirs++

	if !isRoot {
		id, ok := inodeOf(dir)
		if ok {
			if w.visited[id] {
				return // symlink cycle
			}
			w.visited[id] = true
		}
	}

	// Pushing here and passing the extended slice down to children, without
	// mutating the caller's slice, gives pop-on-unwind for free: a sibling
	// subtree never sees a frame pushed by another subtree.
	if frame, ok := w.loadIgnoreFile(dir); ok {
		ignoreStack = append(append([]ignoreFrame{}, ignoreStack...), frame)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("cannot read directory", "path", dir, "error", err)
		w.warnings++
		return
	}

	type fileCand struct {
		path string
		info os.FileInfo
	}
	var files []fileCand
	var subdirs []string

	for _, de := range entries {
		full := filepath.Join(dir, de.Name())
		info, err := de.Info()
		if err != nil {
			w.logger.Warn("cannot stat entry", "path", full, "error", err)
			w.warnings++
			continue
		}

		if w.ignored(full, de.Name(), ignoreStack) {
			continue
		}

		cand := selector.Candidate{
			FullPath:  full,
			Base:      de.Name(),
			IsDir:     de.IsDir(),
			IsSymlink: info.Mode()&os.ModeSymlink != 0,
			IsDevice:  info.Mode()&(os.ModeDevice|os.ModeCharDevice) != 0,
			Depth:     depth,
		}

		switch w.sel.Classify(cand) {
		case selector.DIRECTORY:
			subdirs = append(subdirs, full)
		case selector.OTHER:
			files = append(files, fileCand{path: full, info: info})
		}
	}

	if w.sortKey != plan.SortNone {
		sort.SliceStable(files, func(i, j int) bool {
			less := w.less(files[i].path, files[i].info, files[j].path, files[j].info)
			if w.sortReverse {
				return !less
			}
			return less
		})
		sort.SliceStable(subdirs, func(i, j int) bool {
			less := subdirs[i] < subdirs[j]
			if w.sortReverse {
				return !less
			}
			return less
		})
	}

	for _, f := range files {
		if depth < w.sel.MinDepth() {
			break // still recurse below; only shallow files are suppressed
		}
		w.listPos++
		sink(plan.Entry{
			Path:    f.path,
			Inode:   mustInode(f.path),
			Sort:    sortInfoOf(f.info),
			Cost:    -1,
			ListPos: w.listPos,
		})
	}

	for _, sub := range subdirs {
		w.walkDir(sub, depth+1, false, ignoreStack, sink)
	}
}

func (w *Walker) less(pi string, ii os.FileInfo, pj string, ij os.FileInfo) bool {
	switch w.sortKey {
	case plan.SortSize:
		return ii.Size() < ij.Size()
	case plan.SortChanged:
		return ii.ModTime().Before(ij.ModTime())
	case plan.SortAccessed:
		return sortInfoOf(ii).AccessedUTC < sortInfoOf(ij).AccessedUTC
	case plan.SortCreated:
		return sortInfoOf(ii).CreatedUTC < sortInfoOf(ij).CreatedUTC
	case plan.SortName:
		return pi < pj
	default:
		return pi < pj
	}
}
