package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeApp drops an executable-looking file in dir and returns its
// path.
func writeFakeApp(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func newTestResolver(t *testing.T, apps Table) *Resolver {
	t.Helper()
	return New(WithApps(apps), WithSearchDirs(nil))
}

func TestResolveWebsite(t *testing.T) {
	r := New(WithWebsites(map[string]string{"Example": "https://example.com"}))

	url, ok := r.ResolveWebsite("example")
	require.True(t, ok)
	assert.Equal(t, "https://example.com", url)

	url, ok = r.ResolveWebsite(" GitHub ")
	require.True(t, ok)
	assert.Equal(t, "https://www.github.com", url)

	_, ok = r.ResolveWebsite("definitely-not-a-site")
	assert.False(t, ok)
}

func TestResolveAppExactKey(t *testing.T) {
	dir := t.TempDir()
	app := writeFakeApp(t, dir, "editor")

	r := newTestResolver(t, Table{"editor": {app}})

	got, ok := r.ResolveApp("editor")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestResolveAppSkipsMissingCandidates(t *testing.T) {
	dir := t.TempDir()
	app := writeFakeApp(t, dir, "editor")

	r := newTestResolver(t, Table{"editor": {
		filepath.Join(dir, "does-not-exist"),
		app,
	}})

	got, ok := r.ResolveApp("editor")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestResolveAppContainedKey(t *testing.T) {
	dir := t.TempDir()
	app := writeFakeApp(t, dir, "chrome")

	r := newTestResolver(t, Table{"chrome": {app}})

	got, ok := r.ResolveApp("my chrome browser please")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestResolveAppOverlappingKeysAreDeterministic(t *testing.T) {
	dir := t.TempDir()
	alpha := writeFakeApp(t, dir, "alpha-bin")
	zulu := writeFakeApp(t, dir, "zulu-bin")

	r := newTestResolver(t, Table{
		"zulu":  {zulu},
		"alpha": {alpha},
	})

	// Both keys are contained in the target; the lexicographically
	// first key must win on every call.
	for i := 0; i < 20; i++ {
		got, ok := r.ResolveApp("the alphazulu tool")
		require.True(t, ok)
		assert.Equal(t, alpha, got)
	}
}

func TestResolveAppPerWordKey(t *testing.T) {
	dir := t.TempDir()
	app := writeFakeApp(t, dir, "code")

	// "vscode" is not contained in the target, but the word "code" is a
	// key on its own.
	r := newTestResolver(t, Table{"code": {app}})

	got, ok := r.ResolveApp("launch code now")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestResolveAppLastWordFromPath(t *testing.T) {
	r := newTestResolver(t, Table{})

	got, ok := r.ResolveApp("run sh")
	require.True(t, ok, "sh should exist on PATH in any test environment")
	assert.Contains(t, got, "sh")
}

func TestResolveAppNotFound(t *testing.T) {
	r := newTestResolver(t, Table{})

	_, ok := r.ResolveApp("zxqv-nonexistent-application-zxqv")
	assert.False(t, ok)

	_, ok = r.ResolveApp("")
	assert.False(t, ok)

	_, ok = r.ResolveApp("   ")
	assert.False(t, ok)
}

func TestResolveAppSearchDirDirectHit(t *testing.T) {
	dir := t.TempDir()
	app := writeFakeApp(t, dir, "myapp")

	r := New(WithApps(Table{"myapp": {"myapp"}}), WithSearchDirs([]string{dir}))

	got, ok := r.ResolveApp("myapp")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestResolveAppSearchDirRecursive(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "vendor", "bin")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	app := writeFakeApp(t, nested, "deepapp")

	r := New(WithApps(Table{"deepapp": {"deepapp"}}), WithSearchDirs([]string{dir}))

	got, ok := r.ResolveApp("deepapp")
	require.True(t, ok)
	assert.Equal(t, app, got)
}

func TestWalkDepthBound(t *testing.T) {
	dir := t.TempDir()
	deep := dir
	for i := 0; i < walkMaxDepth+2; i++ {
		deep = filepath.Join(deep, "d")
	}
	require.NoError(t, os.MkdirAll(deep, 0o755))
	writeFakeApp(t, deep, "buried")

	r := New(WithApps(Table{"buried": {"buried"}}), WithSearchDirs([]string{dir}))

	_, ok := r.ResolveApp("buried")
	assert.False(t, ok, "files below the depth bound must not be found")
}
