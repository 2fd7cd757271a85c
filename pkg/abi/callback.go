package abi

import (
	"fmt"
	"reflect"

	"github.com/ebitengine/purego"

	"github.com/plugify-dev/plugify/pkg/manifest"
)

// Handler is the Go-side implementation behind a native-callable trampoline:
// it receives the call's arguments already packed into a Block and returns
// the Block's Return Slot populated (or an error if the call could not be
// serviced).
type Handler func(args []Slot) (Slot, error)

// Callback is a JIT trampoline that lets native code call into Go: purego
// generates real machine code at NewCallback time that matches the host
// platform's calling convention and forwards every call into the supplied
// dispatch function. A Callback is non-copyable in spirit — hold it by
// pointer, and call Close (which only drops the handler, since purego
// exposes no trampoline teardown) when the callback will never be invoked
// again.
type Callback struct {
	method  manifest.Method
	handler Handler
	addr    uintptr
}

// NewCallback builds a trampoline for method backed by handler. The
// returned Callback's Address is a real function pointer suitable for
// storing in a native vtable or passing to a native API expecting a
// function-pointer argument (e.g. a native module's method-export table).
func NewCallback(method manifest.Method, handler Handler) (*Callback, error) {
	if err := ValidateSignature(method); err != nil {
		return nil, err
	}

	cb := &Callback{method: method, handler: handler}

	// purego.NewCallback classifies each generated-trampoline argument's
	// register (general-purpose vs XMM) from the Go parameter's own
	// reflect.Kind, so the dispatcher must be a function whose parameter
	// and return types actually vary by ValueType class — a fixed
	// all-uintptr signature would read a Float/Double argument out of the
	// wrong register bank on any real native caller (§4.3.1 step 2).
	// reflect.MakeFunc builds that per-method-shaped function value at
	// runtime; purego.NewCallback accepts any function value, typed or
	// reflect-generated alike.
	funcType := trampolineType(method)
	dispatch := reflect.MakeFunc(funcType, func(in []reflect.Value) []reflect.Value {
		slots := make([]Slot, len(in))
		for i, v := range in {
			slots[i] = valueToSlot(v)
		}
		ret, err := cb.handler(slots)
		if err != nil {
			// A panic-worthy condition inside a native-invoked callback must
			// never unwind across the cgo-less FFI boundary; the handler
			// contract instead asks for a best-effort zero Slot so the
			// native caller observes a benign failure rather than a crash.
			ret = 0
		}
		return []reflect.Value{slotToValue(ret, funcType.Out(0))}
	})

	cb.addr = purego.NewCallback(dispatch.Interface())
	return cb, nil
}

// Address returns the native-callable function pointer.
func (c *Callback) Address() uintptr { return c.addr }

// Close releases bridge-side bookkeeping. It does not (and, with purego,
// cannot) unmap the generated trampoline; the function pointer remains
// valid for the remainder of the process.
func (c *Callback) Close() error {
	c.handler = nil
	return nil
}

func (c *Callback) String() string {
	return fmt.Sprintf("abi.Callback(%s @ %#x)", c.method.Name, c.addr)
}
