package selector

import (
	"testing"

	"github.com/coregx/coregrep/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_HiddenSkipped(t *testing.T) {
	s, err := New(plan.SelectionPredicate{})
	require.NoError(t, err)
	typ := s.Classify(Candidate{FullPath: ".git", Base: ".git", IsDir: true})
	assert.Equal(t, SKIP, typ)
}

func TestClassify_HiddenAllowedOnCommandLine(t *testing.T) {
	s, err := New(plan.SelectionPredicate{})
	require.NoError(t, err)
	typ := s.Classify(Candidate{FullPath: ".env", Base: ".env", IsCommandArg: true})
	assert.Equal(t, OTHER, typ)
}

func TestClassify_ExtensionInclude(t *testing.T) {
	s, err := New(plan.SelectionPredicate{Extensions: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, OTHER, s.Classify(Candidate{FullPath: "main.go", Base: "main.go"}))
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "main.py", Base: "main.py"}))
}

func TestClassify_ExcludeGlobOverridesInclude(t *testing.T) {
	s, err := New(plan.SelectionPredicate{
		IncludeGlobs: []string{"*.go"},
		ExcludeGlobs: []string{"*_test.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, OTHER, s.Classify(Candidate{FullPath: "main.go", Base: "main.go"}))
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "main_test.go", Base: "main_test.go"}))
}

func TestClassify_ExcludeNegationReincludes(t *testing.T) {
	s, err := New(plan.SelectionPredicate{
		ExcludeGlobs: []string{"*.log", "!important.log"},
	})
	require.NoError(t, err)
	assert.Equal(t, OTHER, s.Classify(Candidate{FullPath: "important.log", Base: "important.log"}))
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "debug.log", Base: "debug.log"}))
}

func TestClassify_MaxDepth(t *testing.T) {
	s, err := New(plan.SelectionPredicate{MaxDepth: 2})
	require.NoError(t, err)
	assert.Equal(t, DIRECTORY, s.Classify(Candidate{FullPath: "a/b", Base: "b", IsDir: true, Depth: 2}))
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "a/b/c", Base: "c", IsDir: true, Depth: 3}))
}

func TestClassify_SymlinkNever(t *testing.T) {
	s, err := New(plan.SelectionPredicate{Symlinks: plan.SymlinkNever})
	require.NoError(t, err)
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "link", Base: "link", IsSymlink: true}))
}

func TestClassify_SymlinkCommandLineOnly(t *testing.T) {
	s, err := New(plan.SelectionPredicate{Symlinks: plan.SymlinkCommandLineOnly})
	require.NoError(t, err)
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "link", Base: "link", IsSymlink: true}))
	assert.Equal(t, OTHER, s.Classify(Candidate{FullPath: "link", Base: "link", IsSymlink: true, IsCommandArg: true}))
}

func TestClassify_MagicBytesGatedOnAcceptedExtension(t *testing.T) {
	s, err := New(plan.SelectionPredicate{MagicPattern: `^\x7fELF`})
	require.NoError(t, err)
	assert.Equal(t, OTHER, s.Classify(Candidate{FullPath: "a.out", Base: "a.out", MagicPrefix: []byte("\x7fELF...")}))
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "a.out", Base: "a.out", MagicPrefix: []byte("not-elf")}))
}

func TestClassify_FSIDDenied(t *testing.T) {
	s, err := New(plan.SelectionPredicate{DeniedFSIDs: map[uint64]bool{42: true}})
	require.NoError(t, err)
	assert.Equal(t, SKIP, s.Classify(Candidate{FullPath: "f", Base: "f", FSID: 42, HasFSID: true}))
}
