package assembly

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Loader owns the process-wide cache of loaded native libraries plus an
// ordered list of additional search paths consulted before the platform's
// default library search rules. One Loader is normally shared by the whole
// engine, so the same .so/.dylib/.dll is mapped into the process exactly
// once regardless of how many extensions reference it.
type Loader struct {
	mu          sync.Mutex
	assemblies  map[string]*Assembly
	searchPaths []string
}

// NewLoader constructs an empty Loader.
func NewLoader() *Loader {
	return &Loader{assemblies: make(map[string]*Assembly)}
}

// AddSearchPath appends a directory to the loader's private search list.
// Platforms without a usable "extra search directory" primitive (none,
// currently — purego's Dlopen resolves relative/absolute paths on every
// supported OS) return ErrUnsupported so callers can degrade gracefully.
func (l *Loader) AddSearchPath(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.searchPaths {
		if existing == dir {
			return nil
		}
	}
	l.searchPaths = append(l.searchPaths, dir)
	return nil
}

// RemoveSearchPath removes a previously added search directory.
func (l *Loader) RemoveSearchPath(dir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.searchPaths {
		if existing == dir {
			l.searchPaths = append(l.searchPaths[:i], l.searchPaths[i+1:]...)
			return nil
		}
	}
	return nil
}

// Load resolves path against the loader's search paths (if it is not
// already absolute or directly resolvable), then opens it with the OS
// dynamic linker, applying flags. A second Load of the same resolved path
// returns the cached Assembly with its refcount bumped rather than mapping
// the library twice.
func (l *Loader) Load(path string, flags LoadFlag) (*Assembly, error) {
	resolved, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.assemblies[resolved]; ok {
		existing.mu.Lock()
		existing.refs++
		existing.mu.Unlock()
		return existing, nil
	}

	handle, err := purego.Dlopen(resolved, translateFlags(flags))
	if err != nil {
		return nil, fmt.Errorf("assembly: open %s: %w: %w", resolved, plugify.ErrLoadFailed, err)
	}

	a := &Assembly{
		path:    resolved,
		handle:  handle,
		loader:  l,
		symbols: make(map[string]uintptr),
		refs:    1,
	}
	l.assemblies[resolved] = a
	return a, nil
}

func (l *Loader) release(a *Assembly) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a.mu.Lock()
	a.refs--
	remaining := a.refs
	a.mu.Unlock()

	if remaining <= 0 {
		delete(l.assemblies, a.path)
	}
}

// Loaded reports every path currently mapped by this loader, for
// diagnostics.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.assemblies))
	for path := range l.assemblies {
		out = append(out, path)
	}
	return out
}

func (l *Loader) resolve(path string) (string, error) {
	if abs, err := filepathAbs(path); err == nil && fileExists(abs) {
		return abs, nil
	}
	l.mu.Lock()
	paths := append([]string(nil), l.searchPaths...)
	l.mu.Unlock()
	for _, dir := range paths {
		candidate := joinPath(dir, path)
		if fileExists(candidate) {
			return filepathAbs(candidate)
		}
	}
	return "", fmt.Errorf("assembly: locate %s: %w", path, plugify.ErrFileNotFound)
}
