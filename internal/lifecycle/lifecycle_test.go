package lifecycle_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/internal/lifecycle"
	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
	"github.com/plugify-dev/plugify/pkg/version"
)

// fakeFS is a canned plugify.FileSystem: every path in entries is returned
// verbatim by Walk, and ReadBinaryFile looks the path up in data. Neither
// touches the real OS filesystem, so tests never need a file on disk.
type fakeFS struct {
	entries []plugify.DirEntry
	data    map[string][]byte
	missing bool // when true, Exists(ExtensionsDir) reports false
}

func (f *fakeFS) ReadTextFile(path string) (string, error) { return string(f.data[path]), nil }
func (f *fakeFS) ReadBinaryFile(path string) ([]byte, error) {
	d, ok := f.data[path]
	if !ok {
		return nil, fmt.Errorf("fakeFS: %s: %w", path, plugify.ErrFileNotFound)
	}
	return d, nil
}
func (f *fakeFS) Exists(path string) bool      { return !f.missing }
func (f *fakeFS) IsDirectory(path string) bool { return false }
func (f *fakeFS) IsFile(path string) bool      { return true }
func (f *fakeFS) Walk(root string, opts plugify.WalkOptions) ([]plugify.DirEntry, error) {
	return f.entries, nil
}
func (f *fakeFS) FindByGlob(pattern string) ([]string, error) { return nil, nil }
func (f *fakeFS) Create(path string) error                    { return nil }
func (f *fakeFS) Remove(path string) error                    { return nil }
func (f *fakeFS) CreateDir(path string) error                 { return nil }
func (f *fakeFS) RemoveAll(path string) error                 { return nil }
func (f *fakeFS) Copy(src, dst string) error                  { return nil }
func (f *fakeFS) Move(src, dst string) error                  { return nil }

var _ plugify.FileSystem = (*fakeFS)(nil)

// fakeParser looks a canned *manifest.Manifest up by origin path instead of
// actually decoding data, so tests can drive the engine with in-memory
// manifests without a real .pplugin/.pmodule file format round trip
// (internal/manifestio already covers that independently).
type fakeParser struct {
	manifests map[string]*manifest.Manifest
}

func (p *fakeParser) Parse(data []byte, originPath string) (*manifest.Manifest, error) {
	m, ok := p.manifests[originPath]
	if !ok {
		return nil, fmt.Errorf("fakeParser: no manifest registered for %s", originPath)
	}
	return m, nil
}

var _ manifest.Parser = (*fakeParser)(nil)

func entryFor(path string, kind manifest.Kind) plugify.DirEntry {
	ext := ".pplugin"
	if kind == manifest.KindModule {
		ext = ".pmodule"
	}
	return plugify.DirEntry{Path: path + ext, Name: path + ext}
}

func newTestEngine(t *testing.T, manifests map[string]*manifest.Manifest) *lifecycle.Engine {
	t.Helper()
	entries := make([]plugify.DirEntry, 0, len(manifests))
	data := make(map[string][]byte, len(manifests))
	byPath := make(map[string]*manifest.Manifest, len(manifests))
	for path, m := range manifests {
		e := entryFor(path, m.Kind)
		entries = append(entries, e)
		data[e.Path] = []byte("{}")
		byPath[e.Path] = m
	}

	return lifecycle.NewEngine(lifecycle.Config{
		ExtensionsDir: "/extensions",
		FS:            &fakeFS{entries: entries, data: data},
		Parser:        &fakeParser{manifests: byPath},
		HostOS:        "linux",
		HostArch:      "amd64",
	})
}

func TestDependencyOrdering(t *testing.T) {
	eng := newTestEngine(t, map[string]*manifest.Manifest{
		"base": {
			Kind: manifest.KindModule, Name: "base", Version: version.MustParse("1.0.0"),
			Language: "native", Runtime: "missing.so",
		},
		"a": {
			Kind: manifest.KindPlugin, Name: "a", Version: version.MustParse("1.0.0"),
			Language: "native",
		},
		"b": {
			Kind: manifest.KindPlugin, Name: "b", Version: version.MustParse("1.0.0"),
			Language: "native",
			Dependencies: []version.Dependency{
				{Name: "a", Constraints: []version.Constraint{{Op: version.OpAny}}},
			},
		},
	})

	ok, err := eng.Initialize()
	require.NoError(t, err)
	require.True(t, ok)

	order := eng.Extensions()
	indexOf := func(name string) int {
		for i, e := range order {
			if e.Name() == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, indexOf("a"), indexOf("b"), "dependency a must precede dependent b")

	// A second Initialize is a no-op per the idempotence law.
	ok, err = eng.Initialize()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVersionConflictUnresolvesOffender(t *testing.T) {
	eng := newTestEngine(t, map[string]*manifest.Manifest{
		"base": {
			Kind: manifest.KindModule, Name: "base", Version: version.MustParse("1.0.0"),
			Language: "native", Runtime: "missing.so",
		},
		"a": {
			Kind: manifest.KindPlugin, Name: "a", Version: version.MustParse("1.0.0"),
			Language: "native",
		},
		"b": {
			Kind: manifest.KindPlugin, Name: "b", Version: version.MustParse("1.0.0"),
			Language: "native",
			Conflicts: []version.Conflict{
				{Name: "a", Constraints: []version.Constraint{{Op: version.OpAny}}},
			},
		},
	})

	ok, err := eng.Initialize()
	require.NoError(t, err)
	require.True(t, ok)

	b, ok := eng.GetExtension("b")
	require.True(t, ok)
	assert.Equal(t, lifecycle.Unresolved, b.State())
	assert.NotEmpty(t, b.Errors())
}

func TestCircularDependencyIsPoisoned(t *testing.T) {
	eng := newTestEngine(t, map[string]*manifest.Manifest{
		"base": {
			Kind: manifest.KindModule, Name: "base", Version: version.MustParse("1.0.0"),
			Language: "native", Runtime: "missing.so",
		},
		"a": {
			Kind: manifest.KindPlugin, Name: "a", Version: version.MustParse("1.0.0"),
			Language: "native",
			Dependencies: []version.Dependency{
				{Name: "b", Constraints: []version.Constraint{{Op: version.OpAny}}},
			},
		},
		"b": {
			Kind: manifest.KindPlugin, Name: "b", Version: version.MustParse("1.0.0"),
			Language: "native",
			Dependencies: []version.Dependency{
				{Name: "a", Constraints: []version.Constraint{{Op: version.OpAny}}},
			},
		},
	})

	ok, err := eng.Initialize()
	require.NoError(t, err)
	require.True(t, ok)

	for _, name := range []string{"a", "b"} {
		e, found := eng.GetExtension(name)
		require.True(t, found)
		assert.Equal(t, lifecycle.Unresolved, e.State())
		assert.NotEmpty(t, e.Errors())
	}
}

func TestModuleFailureCascadesToPlugins(t *testing.T) {
	eng := newTestEngine(t, map[string]*manifest.Manifest{
		"base": {
			Kind: manifest.KindModule, Name: "base", Version: version.MustParse("1.0.0"),
			Language: "native", Runtime: "definitely-missing.so",
		},
		"a": {
			Kind: manifest.KindPlugin, Name: "a", Version: version.MustParse("1.0.0"),
			Language: "native",
		},
	})

	ok, err := eng.Initialize()
	require.NoError(t, err)
	require.True(t, ok)

	base, ok := eng.GetExtension("base")
	require.True(t, ok)
	assert.Equal(t, lifecycle.Failed, base.State())

	a, ok := eng.GetExtension("a")
	require.True(t, ok)
	assert.Equal(t, lifecycle.Failed, a.State())
	assert.NotEmpty(t, a.Errors())
}

func TestEmptyExtensionsDirInitializesCleanly(t *testing.T) {
	eng := lifecycle.NewEngine(lifecycle.Config{
		ExtensionsDir: "/does/not/exist",
		FS:            &fakeFS{entries: nil, data: map[string][]byte{}, missing: true},
		Parser:        &fakeParser{manifests: map[string]*manifest.Manifest{}},
	})
	ok, err := eng.Initialize()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, eng.Extensions())
}

func TestEventBusObservesFailure(t *testing.T) {
	eng := newTestEngine(t, map[string]*manifest.Manifest{
		"base": {
			Kind: manifest.KindModule, Name: "base", Version: version.MustParse("1.0.0"),
			Language: "native", Runtime: "missing.so",
		},
	})

	var failed []string
	eng.Events().Subscribe(lifecycle.EventExtensionFailed, func(e *lifecycle.Extension) {
		failed = append(failed, e.Name())
	})

	_, err := eng.Initialize()
	require.NoError(t, err)
	assert.Contains(t, failed, "base")
}
