package abi

import (
	"fmt"
	"reflect"

	"github.com/ebitengine/purego"

	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Call is a bound, ready-to-invoke reference to one native export. Unlike
// Callback (native calling Go), a Call goes the other way: Go calling a
// native function whose arity is only known at manifest-load time. It is
// built on purego.RegisterFunc against a reflect-generated function type
// shaped like the method's signature, not purego.SyscallN's raw variadic
// marshaling — SyscallN only populates integer argument registers and
// documents that it does not support floating-point arguments, which would
// silently corrupt any Float/Double parameter or return (§4.3.2 step 1).
type Call struct {
	method manifest.Method
	addr   uintptr
	fnType reflect.Type
	fn     reflect.Value
}

// NewCall binds addr (typically resolved via Assembly.Symbol) as an
// invocable native function implementing method's signature.
func NewCall(method manifest.Method, addr uintptr) (*Call, error) {
	if err := ValidateSignature(method); err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, fmt.Errorf("abi: call %s: nil address: %w", method.Name, plugify.ErrSymbolNotFound)
	}

	fnType := trampolineType(method)
	fnPtr := reflect.New(fnType)
	purego.RegisterFunc(fnPtr.Interface(), addr)

	return &Call{method: method, addr: addr, fnType: fnType, fn: fnPtr.Elem()}, nil
}

// Invoke marshals args (already packed per Block conventions, including any
// hidden-return pointer prepended by the caller) and performs the native
// call, returning its Return Slot.
func (c *Call) Invoke(args []Slot) (Slot, error) {
	if len(args) != c.fnType.NumIn() {
		return 0, fmt.Errorf("abi: call %s: expected %d args, got %d: %w",
			c.method.Name, c.fnType.NumIn(), len(args), plugify.ErrJitCodegenFailed)
	}

	in := make([]reflect.Value, len(args))
	for i, s := range args {
		in[i] = slotToValue(s, c.fnType.In(i))
	}

	out := c.fn.Call(in)
	return valueToSlot(out[0]), nil
}

// Method returns the signature this Call was bound against.
func (c *Call) Method() manifest.Method { return c.method }

// Close releases bridge-side state; the bound native address is not owned
// by Call (its owning Assembly controls the library's lifetime).
func (c *Call) Close() error { return nil }
