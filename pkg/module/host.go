// Package module is the Go-side mirror of the language module ABI (§6): the
// fixed set of C-linkage entry points every loaded language host exposes.
// Rather than declaring literal cgo externs, each entry point is adapted
// through pkg/abi's Call/Callback bridge, so a module written in any
// language — not just C/C++ — can implement this contract as long as it
// exports functions with the documented names and the uniform parameter
// block convention.
package module

import "github.com/plugify-dev/plugify/pkg/provider"

// Handle identifies a loaded native module or plugin opaque to the engine;
// language hosts interpret it as they see fit (typically an index into
// their own internal table).
type Handle uintptr

// MethodDescriptor names one exported method and which lifecycle hooks the
// module wants invoked for it.
type MethodDescriptor struct {
	Name       string
	HasStart   bool
	HasUpdate  bool
	HasEnd     bool
	HasExport  bool
}

// InitResult is the Host.Initialise outcome: either a populated
// MethodTable, or an error string the engine records on the Module's error
// queue.
type InitResult struct {
	MethodTable MethodDescriptor
	Error       string
}

// ExportedMethod pairs a method descriptor with the native code pointer the
// module resolved for it, ready for abi.NewCall to bind.
type ExportedMethod struct {
	Descriptor MethodDescriptor
	CodePtr    uintptr
}

// LoadResult is the Host.OnPluginLoad outcome.
type LoadResult struct {
	Methods     []ExportedMethod
	UserData    uintptr
	MethodTable MethodDescriptor
	Error       string
}

// Host is the Go-typed view of a loaded language module's entry points.
// internal/lifecycle calls these directly on modules the engine loads
// in-process (e.g. a Go-native test double); a real native module reaches
// this contract through Adapter (see NewAdapter), which binds each exported
// entry-point symbol as an abi.Call.
type Host interface {
	Initialise(p *provider.Provider, moduleHandle Handle) InitResult
	Shutdown()
	OnUpdate(deltaMillis float64)
	OnPluginLoad(pluginHandle Handle) LoadResult
	OnPluginStart(pluginHandle Handle)
	OnPluginUpdate(pluginHandle Handle, deltaMillis float64)
	OnPluginEnd(pluginHandle Handle)
	OnMethodExport(pluginHandle Handle)
	IsDebugBuild() bool
}
