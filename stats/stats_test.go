package stats

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_ConcurrentIncrementsAreSafe(t *testing.T) {
	var s Stats
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.FilesScanned.Add(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), s.FilesScanned.Load())
}

func TestStats_RecordIgnoreFileDeduplicatesAndSorts(t *testing.T) {
	var s Stats
	s.RecordIgnoreFile("b/.gitignore")
	s.RecordIgnoreFile("a/.gitignore")
	s.RecordIgnoreFile("b/.gitignore")

	assert.Equal(t, []string{"a/.gitignore", "b/.gitignore"}, s.IgnoreFiles())
}

func TestStats_ReportIncludesCounts(t *testing.T) {
	var s Stats
	s.FilesWalked.Store(10)
	s.FilesScanned.Store(8)
	s.FilesMatched.Store(2)
	s.LinesMatched.Store(5)
	s.BytesRead.Store(2048)

	out := s.Report()
	assert.True(t, strings.Contains(out, "10 files walked, 8 scanned, 2 matched"))
	assert.True(t, strings.Contains(out, "5 lines matched"))
	assert.True(t, strings.Contains(out, "2.0 kB read"))
}

func TestStats_ReportSingularDirectory(t *testing.T) {
	var s Stats
	s.DirsWalked.Store(1)
	out := s.Report()
	assert.True(t, strings.Contains(out, "1 directory walked"))
}
