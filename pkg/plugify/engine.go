package plugify

import (
	"github.com/plugify-dev/plugify/internal/lifecycle"
	"github.com/plugify-dev/plugify/pkg/assembly"
	"github.com/plugify-dev/plugify/pkg/manifest"
)

// Dirs are the per-extension private directories the engine hands each
// extension through its Provider.
type Dirs struct {
	Base, Configs, Data, Logs, Cache string
}

// Options configures a new Engine. FS, Parser and Log are the out-of-scope
// collaborators the spec declares contracts for but does not implement;
// internal/fsutil, internal/manifestio and internal/logging ship the
// defaults cmd/plugify-host wires in, but a host
// embedding this package directly may substitute its own.
type Options struct {
	ExtensionsDir string
	FS            FileSystem
	Parser        manifest.Parser
	Log           Logger

	Dirs             Dirs
	PreferOwnSymbols bool
	LoadFlags        assembly.LoadFlag

	// HostOS/HostArch override runtime.GOOS/runtime.GOARCH for platform
	// filter evaluation; leave empty in production.
	HostOS, HostArch string
}

// Engine is the public facade over the lifecycle engine (C4): a host
// constructs one with New, configures it via Options, and drives it through
// Initialize/Update/Terminate.
type Engine struct {
	inner *lifecycle.Engine
}

// New constructs an Engine from opts. Call Initialize to run discovery and
// bring every extension up.
func New(opts Options) *Engine {
	return &Engine{inner: lifecycle.NewEngine(lifecycle.Config{
		ExtensionsDir:    opts.ExtensionsDir,
		FS:               opts.FS,
		Parser:           opts.Parser,
		Log:              opts.Log,
		Dirs:             lifecycle.Dirs(opts.Dirs),
		PreferOwnSymbols: opts.PreferOwnSymbols,
		LoadFlags:        opts.LoadFlags,
		HostOS:           opts.HostOS,
		HostArch:         opts.HostArch,
	})}
}

// Initialize runs discover→parse→resolve→load→start for every extension
// under ExtensionsDir. A second call is a no-op (returns false, nil).
func (e *Engine) Initialize() (bool, error) { return e.inner.Initialize() }

// Update fans one tick of deltaMillis out to every live module and plugin,
// in dependency order.
func (e *Engine) Update(deltaMillis float64) { e.inner.Update(deltaMillis) }

// Terminate tears every extension down in reverse load order. A second call
// is a no-op.
func (e *Engine) Terminate() error { return e.inner.Terminate() }

// GetExtension looks up a discovered extension by manifest name.
func (e *Engine) GetExtension(name string) (*lifecycle.Extension, bool) {
	return e.inner.GetExtension(name)
}

// Extensions returns every discovered extension, dependency-first where a
// topological order exists.
func (e *Engine) Extensions() []*lifecycle.Extension { return e.inner.Extensions() }

// Events returns the engine's internal event bus, for a host that
// subscribes to lifecycle transitions.
func (e *Engine) Events() *lifecycle.EventBus { return e.inner.Events() }

// Inner exposes the wrapped lifecycle.Engine for collaborators
// (internal/lifecycle/diag, internal/lifecycle/housekeep) that need the
// concrete type rather than this package's facade.
func (e *Engine) Inner() *lifecycle.Engine { return e.inner }
