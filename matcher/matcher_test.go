package matcher

import (
	"testing"

	"github.com/coregx/coregex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, pattern string) *coregex.Regex {
	t.Helper()
	re, err := coregex.Compile(pattern)
	require.NoError(t, err)
	return re
}

func TestMatcher_FindTracksLineNumber(t *testing.T) {
	m := New(mustCompile(t, "needle"))
	m.Reset([]byte("one\ntwo needle\nthree needle\n"))

	require.True(t, m.Find())
	assert.Equal(t, 2, m.LineNo())
	assert.Equal(t, "two ", string(m.Before()))
	assert.Equal(t, "", string(m.After()))

	require.True(t, m.Find())
	assert.Equal(t, 3, m.LineNo())

	assert.False(t, m.Find())
}

func TestMatcher_BorderAndBOLEOL(t *testing.T) {
	m := New(mustCompile(t, "cat"))
	m.Reset([]byte("the cat sat\n"))

	require.True(t, m.Find())
	assert.Equal(t, 0, m.BOL())
	assert.Equal(t, 11, m.EOL())
	assert.Equal(t, 4, m.Border())
}

func TestMatcher_LinesSpansMultiline(t *testing.T) {
	m := New(mustCompile(t, "(?s)a.b"))
	m.Reset([]byte("a\nb"))
	require.True(t, m.Find())
	assert.Equal(t, 2, m.Lines())
}

func TestMatcher_SkipFastForwards(t *testing.T) {
	m := New(mustCompile(t, "x"))
	m.Reset([]byte("abc\ndef"))
	require.True(t, m.Skip('\n'))
	assert.False(t, m.Find())
}

func TestMatcher_CloneIsIndependent(t *testing.T) {
	re := mustCompile(t, "x")
	m1 := New(re)
	m1.Reset([]byte("x"))
	require.True(t, m1.Find())

	m2 := m1.Clone()
	assert.Equal(t, -1, m2.Begin())
}

func TestFuzzyMatcher_ToleratesOneEdit(t *testing.T) {
	f := NewFuzzy("hello", 1)
	ok, cost, _, _ := f.Match([]byte("say hallo world"))
	require.True(t, ok)
	assert.Equal(t, 1, cost)
}

func TestFuzzyMatcher_RejectsBeyondMaxCost(t *testing.T) {
	f := NewFuzzy("hello", 1)
	ok, _, _, _ := f.Match([]byte("completely unrelated text"))
	assert.False(t, ok)
}
