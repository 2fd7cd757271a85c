package abi

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

var (
	uintptrType = reflect.TypeOf(uintptr(0))
	float32Type = reflect.TypeOf(float32(0))
	float64Type = reflect.TypeOf(float64(0))
)

// nativeType is the reflect.Type a single scalar slot is marshaled as when
// crossing the purego trampoline boundary. purego classifies a trampoline
// argument's register (general-purpose vs XMM/vector) from the Go
// parameter's own reflect.Kind, so Float and Double must surface as real
// float32/float64 types — anything else, including pointers and the
// by-reference vector/string/array/any slots, is a uintptr, which purego
// always routes through a general-purpose register (§4.3.1 step 2).
func nativeType(t manifest.ValueType) reflect.Type {
	switch t {
	case manifest.Float:
		return float32Type
	case manifest.Double:
		return float64Type
	default:
		return uintptrType
	}
}

// paramTypes builds the ordered reflect.Type list a trampoline for method
// must expose, including the leading hidden-return pointer slot when
// method.Return requires one.
func paramTypes(method manifest.Method) []reflect.Type {
	types := make([]reflect.Type, 0, SlotCount(method))
	if shiftForHiddenReturn(method) {
		types = append(types, uintptrType)
	}
	for _, p := range method.Params {
		types = append(types, nativeType(p.Type))
	}
	return types
}

// returnType is the Go type a trampoline for method declares as its single
// return value. The hidden-return convention always surfaces the consumed
// pointer in the register return, never the aggregate itself.
func returnType(method manifest.Method) reflect.Type {
	if shiftForHiddenReturn(method) {
		return uintptrType
	}
	return nativeType(method.Return.Type)
}

// trampolineType is the full func(...) reflect.Type — parameters plus a
// single return — that both Callback and Call build a purego trampoline
// around, so the two directions stay symmetric by construction.
func trampolineType(method manifest.Method) reflect.Type {
	return reflect.FuncOf(paramTypes(method), []reflect.Type{returnType(method)}, false)
}

// slotToValue undoes a Slot's bit-pattern packing into the reflect.Value a
// generated trampoline parameter of type t expects.
func slotToValue(s Slot, t reflect.Type) reflect.Value {
	switch t.Kind() {
	case reflect.Float32:
		return reflect.ValueOf(GetFloat32(s))
	case reflect.Float64:
		return reflect.ValueOf(GetFloat64(s))
	default:
		return reflect.ValueOf(uintptr(s))
	}
}

// valueToSlot is slotToValue's inverse.
func valueToSlot(v reflect.Value) Slot {
	switch v.Kind() {
	case reflect.Float32:
		return PutFloat32(float32(v.Float()))
	case reflect.Float64:
		return PutFloat64(v.Float())
	default:
		return Slot(v.Uint())
	}
}

// supportedCallingConventions lists the convention names purego's own
// reflect-driven trampolines can actually honor on the running host: always
// the host's native C ABI, never a second convention layered on top of it.
// purego generates exactly one calling convention per platform (SysV on
// amd64 unix, AAPCS on arm64 unix, Win64 on windows) — it has no
// vectorcall, stdcall, fastcall, or
// thiscall code path, and none of those exist on arm64 at all. §4.3.2's
// vectorcall/x86_32 dispatch table therefore has nothing underneath it to
// drive; rather than silently ignoring a method that asks for one, this is
// validated up front and rejected with ErrUnsupported.
func supportedCallingConventions() map[string]bool {
	switch {
	case runtime.GOOS == "windows":
		return map[string]bool{"": true, "default": true, "win64": true}
	default:
		name := "sysv"
		if runtime.GOARCH == "arm64" {
			name = "aapcs"
		}
		return map[string]bool{"": true, "default": true, name: true}
	}
}

// validateCallingConvention enforces Method.CallingConvention (§4.3.2):
// blank means "host default" on every platform, and any convention name
// other than the host's own is rejected outright rather than silently
// running as if it had been honored.
func validateCallingConvention(method manifest.Method) error {
	cc := strings.ToLower(method.CallingConvention)
	if supportedCallingConventions()[cc] {
		return nil
	}
	return fmt.Errorf("abi: %s: calling convention %q not supported on %s/%s: %w",
		method.Name, method.CallingConvention, runtime.GOOS, runtime.GOARCH, plugify.ErrUnsupported)
}
