package lifecycle

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/module"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

// loadAll loads every Resolved extension in topological (dependency-first)
// order, so a Plugin's language Module is always already Loaded (or
// Failed) by the time the Plugin itself is attempted.
func (eng *Engine) loadAll() {
	eng.mu.Lock()
	order := append([]*Extension(nil), eng.order...)
	eng.mu.Unlock()

	for _, e := range order {
		if e.State() != Resolved {
			continue
		}
		switch e.Kind {
		case manifest.KindModule:
			eng.loadModule(e)
		case manifest.KindPlugin:
			eng.loadPlugin(e)
		}
	}
}

// loadModule opens the module's runtime library, binds its fixed ABI entry
// points through a module.Adapter, and calls initialise (§4.4). A failure
// here fails every Plugin depending on this module's language, since they
// have nothing left to load into.
func (eng *Engine) loadModule(e *Extension) {
	eng.withTiming(e, Loading, Loaded, func() error {
		runtimePath := e.Manifest.Runtime
		if runtimePath == "" {
			return fmt.Errorf("%w: module %q declares no runtime library", plugify.ErrInvalidManifest, e.Name())
		}
		if !filepath.IsAbs(runtimePath) {
			runtimePath = filepath.Join(filepath.Dir(e.Location), runtimePath)
		}

		asm, err := eng.loader.Load(runtimePath, eng.cfg.LoadFlags)
		if err != nil {
			return err
		}

		adapter, err := module.NewAdapter(eng.abiRT, asm)
		if err != nil {
			asm.Release()
			return err
		}

		handle := module.Handle(e.ID)
		result := adapter.Initialise(eng.providerFor(e), handle)
		if result.Error != "" {
			_ = adapter.Close()
			asm.Release()
			return fmt.Errorf("%w: %s", plugify.ErrInitializationFailed, result.Error)
		}

		e.Assembly = asm
		e.Host = adapter
		e.ModuleHandle = handle
		e.MethodTableData = MethodTable{
			HasUpdate: result.MethodTable.HasUpdate,
			HasStart:  result.MethodTable.HasStart,
			HasEnd:    result.MethodTable.HasEnd,
			HasExport: result.MethodTable.HasExport,
		}
		return nil
	})

	if e.State() == Loaded {
		eng.bus.Emit(EventExtensionLoaded, e)
	} else {
		eng.failDependents(e)
	}
}

// failDependents marks every plugin that resolved e as its language module
// Failed, since there is no longer a host to load them into.
func (eng *Engine) failDependents(e *Extension) {
	eng.mu.Lock()
	dependents := make([]*Extension, 0, len(eng.extensions))
	for _, other := range eng.extensions {
		if other.LanguageModule == e {
			dependents = append(dependents, other)
		}
	}
	eng.mu.Unlock()

	for _, dep := range dependents {
		if dep.State().terminal() {
			continue
		}
		dep.AddError(fmt.Sprintf("language module %q failed to load", e.Name()))
		now := time.Now()
		if dep.State() != Loading {
			_ = dep.Transition(Loading, now)
		}
		_ = dep.Transition(Failed, now)
		eng.bus.Emit(EventExtensionFailed, dep)
	}
}

// loadPlugin hands the plugin to its (already Loaded) language module and
// resolves its exported methods into callable JIT trampolines (§6).
func (eng *Engine) loadPlugin(e *Extension) {
	if e.LanguageModule == nil || !e.LanguageModule.State().IsAtLeast(Loaded) || e.LanguageModule.Host == nil {
		e.AddError("language module not loaded")
		now := time.Now()
		_ = e.Transition(Loading, now)
		_ = e.Transition(Failed, now)
		eng.bus.Emit(EventExtensionFailed, e)
		return
	}

	eng.withTiming(e, Loading, Loaded, func() error {
		handle := module.Handle(e.ID)
		result := e.LanguageModule.Host.OnPluginLoad(handle)
		if result.Error != "" {
			return fmt.Errorf("%w: %s", plugify.ErrInitializationFailed, result.Error)
		}

		e.ModuleHandle = handle
		e.MethodTableData = MethodTable{
			HasUpdate: result.MethodTable.HasUpdate,
			HasStart:  result.MethodTable.HasStart,
			HasEnd:    result.MethodTable.HasEnd,
			HasExport: result.MethodTable.HasExport,
		}
		e.ResolvedMethods = eng.resolveExports(e, result.Methods)

		if e.MethodTableData.HasExport {
			e.LanguageModule.Host.OnMethodExport(handle)
		}
		return nil
	})

	if e.State() == Loaded {
		eng.bus.Emit(EventExtensionLoaded, e)
	}
}

// resolveExports pairs every method the plugin declared in its manifest
// with the native code pointer the module resolved for it, and wraps each
// pair in an abi.Callback: the trampoline other native code (including
// modules written in a different language) calls, which forwards the Slot
// block straight through to the exported code pointer via an abi.Call.
// This is the JIT ABI bridge (C3) in its cross-language role, not merely a
// Go-side accessor.
func (eng *Engine) resolveExports(e *Extension, exported []module.ExportedMethod) []ResolvedMethod {
	byName := make(map[string]module.ExportedMethod, len(exported))
	for _, em := range exported {
		byName[em.Descriptor.Name] = em
	}

	resolved := make([]ResolvedMethod, 0, len(e.Manifest.Methods))
	for _, m := range e.Manifest.Methods {
		em, ok := byName[m.Name]
		if !ok {
			continue
		}
		forward, err := abi.NewCall(m, em.CodePtr)
		if err != nil {
			e.AddWarning(fmt.Sprintf("export %q: %v", m.Name, err))
			continue
		}
		cb, err := abi.NewCallback(m, func(args []abi.Slot) (abi.Slot, error) {
			return forward.Invoke(args)
		})
		if err != nil {
			e.AddWarning(fmt.Sprintf("export %q: %v", m.Name, err))
			_ = forward.Close()
			continue
		}
		resolved = append(resolved, ResolvedMethod{Method: m, Callback: cb})
	}
	return resolved
}

// startAll starts every Loaded extension in topological order: a Plugin
// with has_start calls on_plugin_start, a Module simply advances (it has no
// separate start hook of its own, only initialise/update/shutdown).
func (eng *Engine) startAll() {
	eng.mu.Lock()
	order := append([]*Extension(nil), eng.order...)
	eng.mu.Unlock()

	for _, e := range order {
		if e.State() != Loaded {
			continue
		}
		eng.startOne(e)
	}
}

func (eng *Engine) startOne(e *Extension) {
	eng.withTiming(e, Starting, Started, func() error {
		if e.Kind == manifest.KindPlugin && e.MethodTableData.HasStart &&
			e.LanguageModule != nil && e.LanguageModule.Host != nil {
			e.LanguageModule.Host.OnPluginStart(e.ModuleHandle)
		}
		return nil
	})

	if e.State() == Started {
		eng.bus.Emit(EventExtensionStarted, e)
	}
}

// terminateOne tears e down: a Plugin with has_end calls on_plugin_end and
// closes its exported-method callbacks, a Module calls shutdown; either way
// its Assembly reference is released last. Failed extensions skip the
// teardown calls (there is nothing left in a consistent state to call) but
// still release any assembly reference and reach Terminated.
func (eng *Engine) terminateOne(e *Extension) {
	switch e.State() {
	case Terminated:
		return
	case Failed:
		if e.Assembly != nil {
			e.Assembly.Release()
		}
		_ = e.Transition(Terminated, time.Now())
		eng.bus.Emit(EventExtensionTerminated, e)
		return
	}

	if !e.State().IsAtLeast(Loaded) {
		return
	}

	eng.withTiming(e, Ending, Ended, func() error {
		switch e.Kind {
		case manifest.KindPlugin:
			if e.MethodTableData.HasEnd && e.LanguageModule != nil && e.LanguageModule.Host != nil {
				e.LanguageModule.Host.OnPluginEnd(e.ModuleHandle)
			}
			for _, rm := range e.ResolvedMethods {
				_ = rm.Callback.Close()
			}
		case manifest.KindModule:
			if e.Host != nil {
				e.Host.Shutdown()
			}
		}
		return nil
	})

	if e.Assembly != nil {
		e.Assembly.Release()
	}
	if e.State() == Ended {
		_ = e.Transition(Terminated, time.Now())
		eng.bus.Emit(EventExtensionTerminated, e)
	}
}
