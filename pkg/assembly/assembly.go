// Package assembly implements the platform assembly loader (component C1):
// loading native shared libraries, resolving exported symbols, and
// refcounting the resulting handles so the same library backs every Module
// or Plugin that references it.
package assembly

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Assembly is a loaded, refcounted native library. The zero value is not
// usable; obtain one through Loader.Load.
type Assembly struct {
	path   string
	handle uintptr

	loader *Loader

	mu      sync.RWMutex
	symbols map[string]uintptr
	refs    int
}

// Path returns the absolute path the assembly was loaded from.
func (a *Assembly) Path() string { return a.path }

// Handle exposes the raw OS handle, for collaborators that need to hand it
// to another purego-based binding directly (e.g. pkg/abi).
func (a *Assembly) Handle() uintptr { return a.handle }

// Symbol resolves and caches an exported symbol's address. Repeated lookups
// of the same name are served from the cache without a further Dlsym call.
func (a *Assembly) Symbol(name string) (uintptr, error) {
	a.mu.RLock()
	if addr, ok := a.symbols[name]; ok {
		a.mu.RUnlock()
		return addr, nil
	}
	a.mu.RUnlock()

	addr, err := purego.Dlsym(a.handle, name)
	if err != nil {
		return 0, fmt.Errorf("assembly: symbol %q in %s: %w", name, a.path, plugify.ErrSymbolNotFound)
	}

	a.mu.Lock()
	a.symbols[name] = addr
	a.mu.Unlock()
	return addr, nil
}

// HasSymbol reports whether the named export resolves, without surfacing an
// error for the common "optional hook" case.
func (a *Assembly) HasSymbol(name string) bool {
	_, err := a.Symbol(name)
	return err == nil
}

// Release drops one reference; when the refcount reaches zero the assembly
// is unloaded from the loader's cache (the OS image itself is not unmapped,
// purego exposes no Dlclose — it stays resident until process exit, matching
// the one-shot process-hosted lifetime the design assumes).
func (a *Assembly) Release() {
	a.loader.release(a)
}

func filepathAbs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("assembly: resolve path %s: %w", path, err)
	}
	return abs, nil
}
