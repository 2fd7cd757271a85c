package module

import (
	"fmt"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
	"github.com/plugify-dev/plugify/pkg/provider"
)

// rawMethod builds a placeholder manifest.Method for a fixed-arity ABI
// entry point (these are not manifest-declared methods, so no real Method
// exists for them): paramTypes gives each parameter's real ValueType —
// UInt64 for opaque handles, Double for the millisecond deltas §5 passes to
// on_update/on_plugin_update — so the bridge selects the right register
// class (abi.Call would otherwise bit-cast a float64 into an integer
// register and corrupt every delta-time tick, per §4.3.2 step 1).
func rawMethod(paramTypes ...manifest.ValueType) manifest.Method {
	params := make([]manifest.Property, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = manifest.Property{Type: t}
	}
	return manifest.Method{Params: params, Return: manifest.Property{Type: manifest.Void}}
}

// symbolResolver is the minimal capability adapter needs from an
// assembly.Assembly, kept narrow so this package does not import pkg/assembly
// directly (it only needs to resolve symbols, not manage lifetime).
type symbolResolver interface {
	Symbol(name string) (uintptr, error)
	HasSymbol(name string) bool
}

// Adapter implements Host by binding each entry-point name to the loaded
// native library via abi.Call, translating between Go-typed arguments and
// the uniform parameter block on every call.
type Adapter struct {
	runtime *abi.Runtime
	calls   map[string]*abi.Call
	debug   bool
}

// entryPointParams lists every Language Module ABI symbol name (§6), each
// declared with the fixed parameter types the bridge needs to marshal it —
// these are not manifest-declared methods, so this is just enough shape
// for abi.ValidateSignature/SlotCount/register-class selection, not a real
// manifest.Method.
var entryPointParams = map[string][]manifest.ValueType{
	"initialise":       {manifest.UInt64, manifest.UInt64},
	"shutdown":         {},
	"on_update":        {manifest.Double},
	"on_plugin_load":   {manifest.UInt64},
	"on_plugin_start":  {manifest.UInt64},
	"on_plugin_update": {manifest.UInt64, manifest.Double},
	"on_plugin_end":    {manifest.UInt64},
	"on_method_export": {manifest.UInt64},
	"is_debug_build":   {},
}

// NewAdapter resolves every required entry point from lib. "initialise" is
// the only mandatory export; every other hook is optional (its absence just
// means the corresponding lifecycle phase is a no-op for this module).
func NewAdapter(rt *abi.Runtime, lib symbolResolver) (*Adapter, error) {
	a := &Adapter{runtime: rt, calls: make(map[string]*abi.Call)}

	for name, params := range entryPointParams {
		if !lib.HasSymbol(name) {
			continue
		}
		addr, err := lib.Symbol(name)
		if err != nil {
			return nil, err
		}
		call, err := abi.NewCall(rawMethod(params...), addr)
		if err != nil {
			return nil, fmt.Errorf("module: bind %s: %w", name, err)
		}
		a.calls[name] = call
	}

	if _, ok := a.calls["initialise"]; !ok {
		return nil, fmt.Errorf("module: missing required entry point \"initialise\": %w", plugify.ErrSymbolNotFound)
	}
	return a, nil
}

func (a *Adapter) invoke(name string, args ...abi.Slot) (abi.Slot, bool) {
	call, ok := a.calls[name]
	if !ok {
		return 0, false
	}
	ret, err := call.Invoke(args)
	if err != nil {
		return 0, false
	}
	return ret, true
}

// Initialise calls the native "initialise" entry point with a zero provider
// slot and moduleHandle; p is not passed across. The native return value is
// not decoded, so on success the MethodTable is always empty.
func (a *Adapter) Initialise(p *provider.Provider, moduleHandle Handle) InitResult {
	_, ok := a.invoke("initialise", abi.Slot(0), abi.Slot(moduleHandle))
	if !ok {
		return InitResult{Error: "initialise entry point invocation failed"}
	}
	return InitResult{}
}

func (a *Adapter) Shutdown() { a.invoke("shutdown") }

func (a *Adapter) OnUpdate(deltaMillis float64) {
	a.invoke("on_update", abi.PutFloat64(deltaMillis))
}

// OnPluginLoad calls the native "on_plugin_load" entry point. Its return
// value is not decoded, so on success the LoadResult is always empty.
func (a *Adapter) OnPluginLoad(pluginHandle Handle) LoadResult {
	_, ok := a.invoke("on_plugin_load", abi.Slot(pluginHandle))
	if !ok {
		return LoadResult{Error: "on_plugin_load invocation failed"}
	}
	return LoadResult{}
}

func (a *Adapter) OnPluginStart(pluginHandle Handle) {
	a.invoke("on_plugin_start", abi.Slot(pluginHandle))
}

func (a *Adapter) OnPluginUpdate(pluginHandle Handle, deltaMillis float64) {
	a.invoke("on_plugin_update", abi.Slot(pluginHandle), abi.PutFloat64(deltaMillis))
}

func (a *Adapter) OnPluginEnd(pluginHandle Handle) {
	a.invoke("on_plugin_end", abi.Slot(pluginHandle))
}

func (a *Adapter) OnMethodExport(pluginHandle Handle) {
	a.invoke("on_method_export", abi.Slot(pluginHandle))
}

func (a *Adapter) IsDebugBuild() bool {
	ret, ok := a.invoke("is_debug_build")
	return ok && ret != 0
}

// Close tears down the adapter's bound Calls.
func (a *Adapter) Close() error {
	for _, call := range a.calls {
		_ = call.Close()
	}
	a.calls = nil
	return nil
}
