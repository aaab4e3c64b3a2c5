package search

import (
	"testing"

	"github.com/coregx/coregex"
	"github.com/coregx/coregrep/matcher"
	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileFor(t *testing.T) func(string) (*matcher.Matcher, error) {
	t.Helper()
	return func(pattern string) (*matcher.Matcher, error) {
		re, err := coregex.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return matcher.New(re), nil
	}
}

func basicPlan(t *testing.T, cnf *query.CNF) *plan.SearchPlan {
	t.Helper()
	return &plan.SearchPlan{CNF: cnf}
}

func TestDriver_SimpleMatch(t *testing.T) {
	cnf := query.CompileSimple([]string{"needle"})
	p := basicPlan(t, cnf)
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("file.txt", []byte("a needle in haystack\nno match here\n"), BinaryAuto)
	assert.True(t, res.Matched)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 1, res.Lines[0].Number)
}

func TestDriver_InvertMatch(t *testing.T) {
	cnf := query.CompileSimple([]string{"needle"})
	p := basicPlan(t, cnf)
	p.Invert = true
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("file.txt", []byte("needle\nno match\n"), BinaryAuto)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 2, res.Lines[0].Number)
}

func TestDriver_ANDAcrossTerms(t *testing.T) {
	cnf := query.Compile("foo AND bar", query.Flags{}, false)
	p := basicPlan(t, cnf)
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("foo only\nfoo and bar together\nbar only\n"), BinaryAuto)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 2, res.Lines[0].Number)
}

func TestDriver_NegatedTerm(t *testing.T) {
	cnf := query.Compile("foo -bar", query.Flags{}, false)
	p := basicPlan(t, cnf)
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("foo bar\nfoo only\n"), BinaryAuto)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 2, res.Lines[0].Number)
}

func TestDriver_BinarySkip(t *testing.T) {
	cnf := query.CompileSimple([]string{"x"})
	p := basicPlan(t, cnf)
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	data := append([]byte("x\x00y"), []byte("x")...)
	res := d.Search("bin", data, BinarySkip)
	assert.True(t, res.IsBinary)
	assert.False(t, res.Matched)
}

func TestDriver_BinaryAutoReportsNote(t *testing.T) {
	cnf := query.CompileSimple([]string{"x"})
	p := basicPlan(t, cnf)
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	data := []byte("x\x00 binary with x inside")
	res := d.Search("bin", data, BinaryAuto)
	assert.True(t, res.IsBinary)
	assert.True(t, res.BinaryNote)
	assert.True(t, res.Matched)
}

func TestDriver_MaxCountStopsEarly(t *testing.T) {
	cnf := query.CompileSimple([]string{"x"})
	p := basicPlan(t, cnf)
	p.MaxCount = 2
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("x\nx\nx\nx\n"), BinaryAuto)
	assert.Equal(t, 2, res.MatchCount)
}

func TestDriver_MinCountSuppressesResult(t *testing.T) {
	cnf := query.CompileSimple([]string{"x"})
	p := basicPlan(t, cnf)
	p.MinCount = 5
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("x\nx\n"), BinaryAuto)
	assert.False(t, res.Matched)
}

func TestDriver_FilesModeNegatedTermSpansWholeFile(t *testing.T) {
	cnf := query.Compile("foo -bar", query.Flags{}, false)
	compile := compileFor(t)

	p1 := basicPlan(t, cnf)
	p1.Mode = plan.ModeFilesWithMatches
	d1, err := New(p1, compile)
	require.NoError(t, err)
	res1 := d1.Search("f1", []byte("foo\nbaz\n"), BinaryAuto)
	assert.True(t, res1.Matched, "bar never appears in f1, so the NOT term holds")

	p2 := basicPlan(t, cnf)
	p2.Mode = plan.ModeFilesWithMatches
	d2, err := New(p2, compile)
	require.NoError(t, err)
	res2 := d2.Search("f2", []byte("foo\nbar\n"), BinaryAuto)
	assert.False(t, res2.Matched, "bar matches somewhere in f2, even though not on foo's line")
}

func TestDriver_FilesModeANDAcrossLines(t *testing.T) {
	cnf := query.Compile("foo AND bar", query.Flags{}, false)
	p := basicPlan(t, cnf)
	p.Mode = plan.ModeFilesWithMatches
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("foo\nbar\n"), BinaryAuto)
	assert.True(t, res.Matched, "foo and bar each match somewhere, on different lines")
}

func TestDriver_ContextLinesSurroundMatch(t *testing.T) {
	cnf := query.CompileSimple([]string{"needle"})
	p := basicPlan(t, cnf)
	p.Context = plan.ContextOptions{Before: 1, After: 1}
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("one\ntwo needle\nthree\nfour\n"), BinaryAuto)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, 1, res.Lines[0].Number)
	assert.Equal(t, 2, res.Lines[1].Number)
	assert.Equal(t, 3, res.Lines[2].Number)
	assert.True(t, res.Lines[1].IsMatch)
}

func TestDriver_RangeClipsLines(t *testing.T) {
	cnf := query.CompileSimple([]string{"x"})
	p := basicPlan(t, cnf)
	p.Range = plan.RangeOptions{Min: 2, Max: 3}
	d, err := New(p, compileFor(t))
	require.NoError(t, err)

	res := d.Search("f", []byte("x\nx\nx\nx\n"), BinaryAuto)
	for _, l := range res.Lines {
		assert.True(t, l.Number >= 2 && l.Number <= 3)
	}
}
