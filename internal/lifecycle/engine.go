package lifecycle

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/assembly"
	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/module"
	"github.com/plugify-dev/plugify/pkg/plugify"
	"github.com/plugify-dev/plugify/pkg/provider"
)

// Config bundles the collaborators and policy knobs an Engine needs. Every
// field has a sensible zero value except FS and Parser: without both,
// discovery finds nothing. Log may be nil. internal/fsutil,
// internal/manifestio and internal/logging ship the defaults
// cmd/plugify-host wires in.
type Config struct {
	ExtensionsDir string
	FS            plugify.FileSystem
	Parser        manifest.Parser
	Log           plugify.Logger

	Dirs             Dirs
	PreferOwnSymbols bool
	LoadFlags        assembly.LoadFlag

	HostOS, HostArch string // overridable for tests; empty means runtime.GOOS/GOARCH
}

// Engine is the lifecycle engine (C4): it owns every discovered Extension,
// the dependency graph over them, and drives the
// discover→parse→resolve→load→start→update→terminate scheduler described
// in the design.
type Engine struct {
	cfg Config

	loader   *assembly.Loader
	abiRT    *abi.Runtime
	services *provider.ServiceLocator
	bus      *EventBus

	mu         sync.Mutex
	extensions map[UniqueId]*Extension
	order      []*Extension // topological order, dependency-first
	nextID     UniqueId

	initialized bool
	terminated  bool
}

// NewEngine constructs an Engine. Call Initialize to run it.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:        cfg,
		loader:     assembly.NewLoader(),
		abiRT:      abi.NewRuntime(),
		services:   provider.NewServiceLocator(),
		bus:        NewEventBus(cfg.Log),
		extensions: make(map[UniqueId]*Extension),
	}
}

// Events returns the engine's EventBus for diagnostics/housekeeping
// subscribers.
func (eng *Engine) Events() *EventBus { return eng.bus }

// Initialize runs discovery through start for every extension under
// ExtensionsDir. Calling it twice without an intervening Terminate is a
// no-op returning false the second time (§8's idempotence law); the first
// call returns true once every discoverable extension has reached a
// terminal-for-this-phase state (Started, Skipped, Disabled, Unresolved,
// Corrupted, or Failed).
func (eng *Engine) Initialize() (bool, error) {
	eng.mu.Lock()
	if eng.initialized {
		eng.mu.Unlock()
		return false, nil
	}
	eng.initialized = true
	eng.mu.Unlock()

	if err := eng.discover(); err != nil {
		return true, err
	}
	eng.parseAll()
	eng.resolveAll()
	order, cyclic := eng.buildGraph()
	eng.order = order
	eng.poisonCycles(cyclic)
	eng.loadAll()
	eng.startAll()
	return true, nil
}

// Terminate walks the reverse topological order, ending plugins and
// shutting down modules. Idempotent: a second call is a no-op.
func (eng *Engine) Terminate() error {
	eng.mu.Lock()
	if eng.terminated {
		eng.mu.Unlock()
		return nil
	}
	eng.terminated = true
	order := append([]*Extension(nil), eng.order...)
	eng.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		eng.terminateOne(order[i])
	}
	return nil
}

// Update fans out one tick: every Module's on_update first, then every
// Plugin's on_plugin_update, both in topological (dependency-first) order.
func (eng *Engine) Update(deltaMillis float64) {
	eng.mu.Lock()
	order := append([]*Extension(nil), eng.order...)
	eng.mu.Unlock()

	for _, e := range order {
		if e.Kind != manifest.KindModule || e.Host == nil || !e.MethodTableData.HasUpdate {
			continue
		}
		if !updatable(e.State()) {
			continue
		}
		eng.withTiming(e, Updating, Updated, func() error {
			e.Host.OnUpdate(deltaMillis)
			return nil
		})
	}
	for _, e := range order {
		if e.Kind != manifest.KindPlugin || !updatable(e.State()) {
			continue
		}
		if e.LanguageModule == nil || e.LanguageModule.Host == nil || !e.MethodTableData.HasUpdate {
			continue
		}
		eng.withTiming(e, Updating, Updated, func() error {
			e.LanguageModule.Host.OnPluginUpdate(e.ModuleHandle, deltaMillis)
			return nil
		})
	}
}

func updatable(s PackageState) bool {
	return s == Started || s == Updated
}

// GetExtension looks up a discovered extension by name.
func (eng *Engine) GetExtension(name string) (*Extension, bool) {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	for _, e := range eng.extensions {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Extensions returns every discovered extension: those in the topological
// order first, dependency-first, then the rest in no defined order.
func (eng *Engine) Extensions() []*Extension {
	eng.mu.Lock()
	defer eng.mu.Unlock()
	out := make([]*Extension, 0, len(eng.extensions))
	for _, e := range eng.order {
		out = append(out, e)
	}
	for _, e := range eng.extensions {
		if !containsExt(out, e) {
			out = append(out, e)
		}
	}
	return out
}

func containsExt(list []*Extension, e *Extension) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

// providerFor builds the provider.Provider handed to ext's language module.
func (eng *Engine) providerFor(ext *Extension) *provider.Provider {
	p := provider.New(eng.cfg.Log, eng.services, func(name string) (provider.Descriptor, bool) {
		e, ok := eng.GetExtension(name)
		if !ok {
			return provider.Descriptor{}, false
		}
		return provider.Descriptor{Name: e.Name(), Version: e.Manifest.Version.String(), Kind: e.Kind.String()}, true
	}, func(name string) bool {
		e, ok := eng.GetExtension(name)
		return ok && e.State().IsAtLeast(Loaded)
	})
	p.BaseDir = ext.Dirs.Base
	p.ConfigsDir = ext.Dirs.Configs
	p.DataDir = ext.Dirs.Data
	p.LogsDir = ext.Dirs.Logs
	p.CacheDir = ext.Dirs.Cache
	p.PreferOwnSymbols = eng.cfg.PreferOwnSymbols
	return p
}

func (eng *Engine) withTiming(e *Extension, enter, exit PackageState, fn func() error) {
	now := time.Now()
	if e.State() != enter {
		if err := e.Transition(enter, now); err != nil {
			e.AddError(err.Error())
			return
		}
	}
	err := func() (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				retErr = fmt.Errorf("%w: %v", plugify.ErrInitializationFailed, r)
			}
		}()
		return fn()
	}()
	if err != nil {
		e.AddError(err.Error())
		_ = e.Transition(Failed, time.Now())
		eng.bus.Emit(EventExtensionFailed, e)
		return
	}
	_ = e.Transition(exit, time.Now())
}

func extensionDirs(base, name string) Dirs {
	root := filepath.Join(base, name)
	return Dirs{
		Base:    root,
		Configs: filepath.Join(root, "configs"),
		Data:    filepath.Join(root, "data"),
		Logs:    filepath.Join(root, "logs"),
		Cache:   filepath.Join(root, "cache"),
	}
}

func sanitizeDirName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, name)
}
