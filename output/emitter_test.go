package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_OrderedSubmitReleasesInSlotOrder(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueOrdered}
	w := New(&buf, p)

	w.Submit(2, []*search.Result{{PartName: "c", Matched: true}})
	w.Submit(0, []*search.Result{{PartName: "a", Matched: true}})
	w.Submit(1, []*search.Result{{PartName: "b", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "a\nb\nc\n", buf.String())
}

func TestWriter_OrderedSubmitBatchesMultiPartArchiveAsOneSlot(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueOrdered}
	w := New(&buf, p)

	// slot 0 is one archive that expanded into three parts; slot 1 is an
	// ordinary file. All of slot 0's parts must release before slot 1 does,
	// and slot 1 must not get stuck in pending just because slot 0 carried
	// more than one result.
	w.Submit(0, []*search.Result{
		{PartName: "a.zip:one", Matched: true},
		{PartName: "a.zip:two", Matched: true},
		{PartName: "a.zip:three", Matched: true},
	})
	w.Submit(1, []*search.Result{{PartName: "b.txt", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "a.zip:one\na.zip:two\na.zip:three\nb.txt\n", buf.String())
}

func TestWriter_UnorderedSubmitReleasesImmediately(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueUnordered}
	w := New(&buf, p)

	w.Submit(5, []*search.Result{{PartName: "z", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "z\n", buf.String())
}

func TestWriter_FilesWithoutMatch(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithoutMatch, Queue: plan.QueueUnordered}
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "clean", Matched: false}})
	w.Submit(1, []*search.Result{{PartName: "dirty", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "clean\n", buf.String())
}

func TestWriter_MaxFilesCapsAtReleaseTime(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueOrdered}
	p.Conc.MaxFiles = 2
	w := New(&buf, p)

	var capped bool
	w.SetCapReached(func() { capped = true })

	w.Submit(0, []*search.Result{{PartName: "a", Matched: true}})
	w.Submit(1, []*search.Result{{PartName: "b", Matched: true}})
	w.Submit(2, []*search.Result{{PartName: "c", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "a\nb\n", buf.String(), "only the first two matching files in slot order appear")
	assert.Equal(t, 2, w.FilesFound())
	assert.True(t, capped)
}

func TestWriter_MaxFilesCountsArchivePartsAsOneFile(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueOrdered}
	p.Conc.MaxFiles = 1
	w := New(&buf, p)

	w.Submit(0, []*search.Result{
		{PartName: "a.zip:one", Matched: true},
		{PartName: "a.zip:two", Matched: true},
	})
	w.Submit(1, []*search.Result{{PartName: "b.txt", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "a.zip:one\na.zip:two\n", buf.String())
	assert.Equal(t, 1, w.FilesFound())
}

func TestWriter_MaxFilesSkipsNonMatchingFiles(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFilesWithMatches, Queue: plan.QueueOrdered}
	p.Conc.MaxFiles = 1
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "clean", Matched: false}})
	w.Submit(1, []*search.Result{{PartName: "dirty", Matched: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "dirty\n", buf.String(), "a non-matching file never consumes a --max-files slot")
}

func TestWriter_CountMode(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{
		Mode:       plan.ModeCount,
		Queue:      plan.QueueUnordered,
		StartPaths: []string{"f", "g"},
	}
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "f", Matched: true, MatchCount: 3}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "f:3\n", buf.String())
}

func TestWriter_CountModeSingleFileOmitsPathPrefix(t *testing.T) {
	// spec §8 scenario 2: `-c -v` over a single file prints a bare count.
	var buf bytes.Buffer
	p := &plan.SearchPlan{
		Mode:       plan.ModeCount,
		Queue:      plan.QueueUnordered,
		StartPaths: []string{"f"},
	}
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "f", Matched: true, MatchCount: 2}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "2\n", buf.String())
}

func TestWriter_CountModeSingleFileWithHeadingStillShowsPath(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{
		Mode:       plan.ModeCount,
		Queue:      plan.QueueUnordered,
		StartPaths: []string{"f"},
	}
	p.Output.Header = plan.HeaderHeading
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "f", Matched: true, MatchCount: 2}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "f:2\n", buf.String())
}

func TestWriter_OnlyMatching(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeOnlyMatching, Queue: plan.QueueUnordered}
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{
		PartName: "f",
		Matched:  true,
		Lines: []search.Line{
			{Number: 1, Text: []byte("the needle here"), IsMatch: true, Matches: []search.Span{{4, 10}}},
		},
	}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "needle\n", buf.String())
}

func TestExpandFormat_SubstitutesFields(t *testing.T) {
	ln := search.Line{Number: 5, Offset: 100, Text: []byte("hello world"), Matches: []search.Span{{6, 11}}}
	out := expandFormat("%p:%n:%k: %O%~", "a.txt", ln)
	assert.Equal(t, "a.txt:5:7: hello world\n", out)
}

func TestExpandFormat_PartSuffixAndBaseName(t *testing.T) {
	ln := search.Line{Number: 1, Text: []byte("x")}
	out := expandFormat("%f|%z", "logs.tar:sub/a.txt", ln)
	assert.Equal(t, "a.txt|sub/a.txt", out)
}

func TestWriter_FormatMode(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeFormat, Queue: plan.QueueUnordered}
	p.Output.FormatMiddle = "%p:%n\n"
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{
		PartName: "f.txt",
		Matched:  true,
		Lines: []search.Line{
			{Number: 1, Text: []byte("a"), IsMatch: true},
			{Number: 2, Text: []byte("b"), IsMatch: true},
		},
	}})
	require.NoError(t, w.Flush())

	assert.Equal(t, 2, strings.Count(buf.String(), "f.txt"))
}

func TestWriter_BinaryNote(t *testing.T) {
	var buf bytes.Buffer
	p := &plan.SearchPlan{Mode: plan.ModeDefault, Queue: plan.QueueUnordered}
	w := New(&buf, p)

	w.Submit(0, []*search.Result{{PartName: "bin.dat", Matched: true, BinaryNote: true}})
	require.NoError(t, w.Flush())

	assert.Equal(t, "Binary file bin.dat matches\n", buf.String())
}
