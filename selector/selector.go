// Package selector implements the per-entry include/exclude decision of
// spec §4.3: given a directory entry and its metadata, decide whether it is
// SKIP, a DIRECTORY to recurse into, or an OTHER (regular) file to search.
package selector

import (
	"strings"

	"github.com/coregx/coregex"
	"github.com/coregx/coregrep/glob"
	"github.com/coregx/coregrep/plan"
)

// Type is the per-entry classification of spec §4.3.
type Type int

const (
	SKIP Type = iota
	DIRECTORY
	OTHER
)

// Candidate carries everything the selector needs to know about one
// directory entry; the walker is responsible for populating it from the
// filesystem (stat, symlink resolution, fsid lookup) since the selector
// itself performs no I/O.
type Candidate struct {
	FullPath     string // relative to the traversal root, "/"-separated
	Base         string
	IsDir        bool
	IsSymlink    bool
	IsDevice     bool
	IsCommandArg bool // true for a path given directly on the command line
	Depth        int
	FSID         uint64
	HasFSID      bool
	MagicPrefix  []byte // first bytes of file content, nil if not read
}

// Selector classifies entries according to a SelectionPredicate.
type Selector struct {
	pred plan.SelectionPredicate

	includeFiles  []*glob.Glob
	excludeFiles  []*glob.Glob
	includeFilesI []*glob.Glob
	excludeFilesI []*glob.Glob

	includeDirs []*glob.Glob
	excludeDirs []*glob.Glob

	extensions map[string]bool
	magic      *coregex.Regex
}

// New compiles a SelectionPredicate into a Selector.
func New(pred plan.SelectionPredicate) (*Selector, error) {
	s := &Selector{
		pred:          pred,
		includeFiles:  glob.CompileAll(pred.IncludeGlobs, false),
		excludeFiles:  glob.CompileAll(pred.ExcludeGlobs, false),
		includeFilesI: glob.CompileAll(pred.IncludeIGlobs, true),
		excludeFilesI: glob.CompileAll(pred.ExcludeIGlobs, true),
		includeDirs:   glob.CompileAll(pred.IncludeDirs, false),
		excludeDirs:   glob.CompileAll(pred.ExcludeDirs, false),
	}

	if len(pred.Extensions) > 0 {
		s.extensions = make(map[string]bool, len(pred.Extensions))
		for _, ext := range pred.Extensions {
			s.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
		}
	}

	if pred.MagicPattern != "" {
		re, err := coregex.Compile(pred.MagicPattern)
		if err != nil {
			return nil, err
		}
		s.magic = re
	}

	return s, nil
}

// Classify decides the Type of one candidate entry (spec §4.3).
func (s *Selector) Classify(c Candidate) Type {
	if c.IsDir {
		return s.classifyDir(c)
	}
	return s.classifyFile(c)
}

func (s *Selector) classifyDir(c Candidate) Type {
	if s.skippedByDepth(c) {
		return SKIP
	}
	if s.skippedByHidden(c) {
		return SKIP
	}
	if s.skippedBySymlink(c) {
		return SKIP
	}
	if s.skippedByFSID(c) {
		return SKIP
	}

	// Tie-break: exclude checked before include; a leading "!" on either
	// pool inverts that pool's effective verdict for this entry (spec
	// §4.3: "exclude glob starting with ! re-includes; an include glob
	// starting with ! re-excludes").
	if len(s.excludeDirs) > 0 {
		if matched, neg := glob.AnyMatch(s.excludeDirs, c.FullPath, c.Base, true); matched && !neg {
			return SKIP
		} else if matched && neg {
			return DIRECTORY
		}
	}
	if len(s.includeDirs) > 0 {
		if matched, neg := glob.AnyMatch(s.includeDirs, c.FullPath, c.Base, true); matched {
			if neg {
				return SKIP
			}
			return DIRECTORY
		}
		return SKIP
	}
	return DIRECTORY
}

func (s *Selector) classifyFile(c Candidate) Type {
	if s.skippedByDepth(c) {
		return SKIP
	}
	if s.skippedByHidden(c) {
		return SKIP
	}
	if s.skippedBySymlink(c) {
		return SKIP
	}
	if s.skippedByFSID(c) {
		return SKIP
	}
	if c.IsDevice && !s.pred.AllowDevices {
		return SKIP
	}

	accepted := s.filePassesGlobsAndExtensions(c)
	if !accepted {
		return SKIP
	}

	// Magic-byte tests only run when glob/extension filters accepted the
	// file, or when no positive include filters exist at all (spec §4.3).
	if s.magic != nil && c.MagicPrefix != nil {
		if !s.magic.Match(c.MagicPrefix) {
			return SKIP
		}
	}

	return OTHER
}

func (s *Selector) filePassesGlobsAndExtensions(c Candidate) bool {
	// Exclude pools checked first; "!" re-includes.
	for _, pools := range [][]*glob.Glob{s.excludeFiles, s.excludeFilesI} {
		if len(pools) == 0 {
			continue
		}
		if matched, neg := glob.AnyMatch(pools, c.FullPath, c.Base, false); matched {
			if !neg {
				return false
			}
			return true
		}
	}

	hasIncludePools := len(s.includeFiles) > 0 || len(s.includeFilesI) > 0 || len(s.extensions) > 0 || len(s.pred.FileTypes) > 0

	if !hasIncludePools {
		return true
	}

	if len(s.extensions) > 0 && s.extensions[extOf(c.Base)] {
		return true
	}
	for _, pools := range [][]*glob.Glob{s.includeFiles, s.includeFilesI} {
		if len(pools) == 0 {
			continue
		}
		if matched, neg := glob.AnyMatch(pools, c.FullPath, c.Base, false); matched {
			return !neg
		}
	}

	return false
}

func extOf(base string) string {
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

func (s *Selector) skippedByDepth(c Candidate) bool {
	if s.pred.MaxDepth > 0 && c.Depth > s.pred.MaxDepth {
		return true
	}
	return false
}

func (s *Selector) skippedByHidden(c Candidate) bool {
	if s.pred.Hidden == plan.HiddenSearch {
		return false
	}
	if c.IsCommandArg {
		return false
	}
	return strings.HasPrefix(c.Base, ".")
}

func (s *Selector) skippedBySymlink(c Candidate) bool {
	if !c.IsSymlink {
		return false
	}
	switch s.pred.Symlinks {
	case plan.SymlinkAlways:
		return false
	case plan.SymlinkCommandLineOnly:
		return !c.IsCommandArg
	default: // SymlinkNever
		return true
	}
}

func (s *Selector) skippedByFSID(c Candidate) bool {
	if !c.HasFSID {
		return false
	}
	if len(s.pred.DeniedFSIDs) > 0 && s.pred.DeniedFSIDs[c.FSID] {
		return true
	}
	if len(s.pred.AllowedFSIDs) > 0 && !s.pred.AllowedFSIDs[c.FSID] {
		return true
	}
	return false
}

// NeedsMagicPrefix reports whether the selector requires a magic-byte
// prefix to be read for a candidate file, so callers can avoid the read
// when it isn't needed.
func (s *Selector) NeedsMagicPrefix() bool { return s.magic != nil }

// MinDepth exposes the predicate's minimum depth for walkers that want to
// suppress emitting (but still recurse into) shallow directories.
func (s *Selector) MinDepth() int { return s.pred.MinDepth }
