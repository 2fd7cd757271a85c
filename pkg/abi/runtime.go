package abi

import "github.com/plugify-dev/plugify/pkg/manifest"

// Runtime is the shared JIT context components reuse rather than minting a
// fresh purego trampoline table per call site. purego itself has no
// explicit "context" handle — the process-wide callback machinery is global
// state — so Runtime is a thin registry that keeps every Callback and Call
// created through its Bind/Resolve reachable (and therefore alive; Go would
// otherwise be free to collect a Callback whose only reference was the
// native vtable slot it was written into).
type Runtime struct {
	callbacks []*Callback
	calls     []*Call
}

// NewRuntime constructs an empty Runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Bind builds a Callback for method/handler and keeps it pinned for the
// Runtime's lifetime.
func (r *Runtime) Bind(method manifest.Method, handler Handler) (*Callback, error) {
	cb, err := NewCallback(method, handler)
	if err != nil {
		return nil, err
	}
	r.callbacks = append(r.callbacks, cb)
	return cb, nil
}

// Resolve builds a Call bound to addr and keeps it pinned for the Runtime's
// lifetime.
func (r *Runtime) Resolve(method manifest.Method, addr uintptr) (*Call, error) {
	call, err := NewCall(method, addr)
	if err != nil {
		return nil, err
	}
	r.calls = append(r.calls, call)
	return call, nil
}

// Close tears down every Callback and Call the Runtime created.
func (r *Runtime) Close() error {
	for _, cb := range r.callbacks {
		_ = cb.Close()
	}
	for _, call := range r.calls {
		_ = call.Close()
	}
	r.callbacks = nil
	r.calls = nil
	return nil
}
