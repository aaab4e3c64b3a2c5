package walk

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/coregx/coregrep/glob"
)

// loadIgnoreFile reads any configured gitignore-like file present in dir
// and compiles its non-comment, non-blank lines into exclude globs for the
// subtree (spec §4.4 bullet 5). It returns ok=false when no such file was
// present, so the caller does not push an empty stack frame.
func (w *Walker) loadIgnoreFile(dir string) (ignoreFrame, bool) {
	for _, name := range w.ignoreNames {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		globs := parseIgnoreFile(f)
		_ = f.Close()
		if len(globs) > 0 {
			return ignoreFrame{excludes: glob.CompileAll(globs, false)}, true
		}
	}
	return ignoreFrame{}, false
}

func parseIgnoreFile(f *os.File) []string {
	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// ignored reports whether full (basename base) is excluded by any ignore
// file frame currently on the stack.
func (w *Walker) ignored(full, base string, stack []ignoreFrame) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		matched, negate := glob.AnyMatch(stack[i].excludes, full, base, false)
		if matched {
			return !negate
		}
	}
	return false
}
