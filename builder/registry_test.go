package intlbuilder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry(t *testing.T) {
	r := NewMemoryRegistry(&Page{Path: "/a/"}, &Page{Path: "/b/"})

	require.NoError(t, r.DeletePage(&Page{Path: "/a/"}))
	require.NoError(t, r.CreatePage(&Page{Path: "/a/", MatchPath: "x"}))
	require.NoError(t, r.CreatePage(&Page{Path: "/c/"}))
	require.NoError(t, r.DeletePage(&Page{Path: "/missing/"}))
	assert.Error(t, r.CreatePage(&Page{}))

	var paths []string
	for _, p := range r.Pages() {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"/b/", "/a/", "/c/"}, paths)

	p, ok := r.Page("/a/")
	require.True(t, ok)
	assert.Equal(t, "x", p.MatchPath)
}

func TestManifest_RoundTrip(t *testing.T) {
	dir := writeMessages(t, "en", "fr")
	e := testExpander(t, Options{Path: dir, Languages: []string{"fr"}, DefaultLanguage: "en"})
	reg := NewMemoryRegistry()
	_, err := e.Expand(&Page{Path: "/404/"}, reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pages.json")
	require.NoError(t, reg.WriteManifest(path, e.Options))

	m, err := ReadManifest(path)
	require.NoError(t, err)
	assert.NotEmpty(t, m.BuildID)
	assert.Equal(t, "en", m.DefaultLanguage)
	require.Len(t, m.Pages, 2)
	assert.Equal(t, "/fr/404/", m.Pages[1].Path)
	assert.Equal(t, "/fr/*", m.Pages[1].MatchPath)

	// Decoded pages are recognised as already expanded.
	out, err := e.Expand(m.Pages[1], reg)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = ReadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
