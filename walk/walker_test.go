package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/coregx/coregrep/plan"
	"github.com/coregx/coregrep/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSelector(t *testing.T, pred plan.SelectionPredicate) *selector.Selector {
	t.Helper()
	sel, err := selector.New(pred)
	require.NoError(t, err)
	return sel
}

func TestWalk_CollectsRegularFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))

	sel := mustSelector(t, plan.SelectionPredicate{})
	w := New(sel, plan.SortName, false, nil, nil)

	var got []string
	err := w.Walk([]string{root}, func(e plan.Entry) {
		got = append(got, e.Path)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.txt"),
	}, got)
}

func TestWalk_SkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "visible"), []byte("x"), 0o644))

	sel := mustSelector(t, plan.SelectionPredicate{})
	w := New(sel, plan.SortNone, false, nil, nil)

	var got []string
	require.NoError(t, w.Walk([]string{root}, func(e plan.Entry) { got = append(got, e.Path) }))
	assert.Equal(t, []string{filepath.Join(root, "visible")}, got)
}

func TestWalk_IgnoreFileExtendsExcludes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.log"), []byte("x"), 0o644))

	sel := mustSelector(t, plan.SelectionPredicate{})
	w := New(sel, plan.SortNone, false, []string{".gitignore"}, nil)

	var got []string
	require.NoError(t, w.Walk([]string{root}, func(e plan.Entry) { got = append(got, e.Path) }))
	assert.Equal(t, []string{filepath.Join(root, "keep.txt")}, got)
}

func TestWalk_SortByName(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	sel := mustSelector(t, plan.SelectionPredicate{})
	w := New(sel, plan.SortName, false, nil, nil)

	var got []string
	require.NoError(t, w.Walk([]string{root}, func(e plan.Entry) { got = append(got, filepath.Base(e.Path)) }))
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, got)
}

func TestWalk_MaxDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "l1", "l2")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "f.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "l1", "shallow.txt"), []byte("x"), 0o644))

	sel := mustSelector(t, plan.SelectionPredicate{MaxDepth: 2})
	w := New(sel, plan.SortNone, false, nil, nil)

	var got []string
	require.NoError(t, w.Walk([]string{root}, func(e plan.Entry) { got = append(got, e.Path) }))
	assert.ElementsMatch(t, []string{filepath.Join(root, "l1", "shallow.txt")}, got)
}

func TestWalk_SingleFileRoot(t *testing.T) {
	root := t.TempDir()
	f := filepath.Join(root, "only.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	sel := mustSelector(t, plan.SelectionPredicate{})
	w := New(sel, plan.SortNone, false, nil, nil)

	var got []string
	require.NoError(t, w.Walk([]string{f}, func(e plan.Entry) { got = append(got, e.Path) }))
	assert.Equal(t, []string{f}, got)
}
