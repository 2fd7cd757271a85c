// Package abi implements the JIT ABI bridge (component C3): marshaling
// between the engine's uniform calling convention — a flat slice of 64-bit
// slots — and the native platform ABI, in both directions. It never emits
// machine code itself; purego's callback/syscall trampolines (themselves a
// small, already-tested JIT) do that work, so this package is purely
// marshaling logic.
package abi

import (
	"fmt"
	"math"

	"github.com/plugify-dev/plugify/pkg/manifest"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Slot is one 64-bit lane of the uniform parameter block. Every value
// narrower than 64 bits is zero- or sign-extended into a Slot; pointers,
// vectors and aggregates (by the hidden-return-pointer rule) occupy a Slot
// as a pointer value.
type Slot = uint64

// Block is the uniform, ABI-agnostic representation of one call's
// arguments plus its return Slot. Handler and Call.Invoke carry the same
// two halves as a plain []Slot argument list and a Slot result; neither
// touches a native register or stack directly.
type Block struct {
	Args   []Slot
	Return Slot
}

// maxNativeSlotBits is the widest scalar the bridge will marshal directly
// into a register-sized Slot; wider aggregates must use the hidden-return
// convention instead, which ValidateSignature enforces for a
// manifest.Method.
const maxNativeSlotBits = 64

// shiftForHiddenReturn reports whether method's return type requires a
// caller-allocated, hidden out-pointer parameter prepended ahead of its
// declared arguments — the same parameter-block-shift rule C and C++
// compilers apply to large/non-trivial return types, applied here
// uniformly regardless of which native ABI is underneath.
func shiftForHiddenReturn(method manifest.Method) bool {
	return method.Return.Type.IsHiddenReturn()
}

// SlotCount returns how many Slots a call to method occupies, including the
// hidden-return slot if one is required.
func SlotCount(method manifest.Method) int {
	n := len(method.Params)
	if shiftForHiddenReturn(method) {
		n++
	}
	return n
}

// ValidateSignature rejects methods the bridge cannot marshal: any
// non-hidden-return parameter or return value whose underlying type would
// not fit the 64-bit Slot lane. manifest.Vec2/Vec3/Vec4 are exempt because
// the type model already classifies them as ClassVector (passed by
// reference, not packed into a single Slot).
func ValidateSignature(method manifest.Method) error {
	if err := validateCallingConvention(method); err != nil {
		return err
	}
	check := func(p manifest.Property, where string) error {
		if p.Type.IsArray() || p.Type == manifest.String || p.Type == manifest.Any || p.Type == manifest.Mat4x4 {
			return nil // hidden-return / pointer-passed, always fits a Slot as a pointer
		}
		if p.Type.Class() == manifest.ClassVector {
			return nil
		}
		if bitsOf(p.Type) > maxNativeSlotBits {
			return fmt.Errorf("abi: %s %s exceeds %d-bit slot width: %w", where, p.Type, maxNativeSlotBits, plugify.ErrJitCodegenFailed)
		}
		return nil
	}
	for i, p := range method.Params {
		if err := check(p, fmt.Sprintf("param %d", i)); err != nil {
			return err
		}
	}
	return check(method.Return, "return")
}

func bitsOf(t manifest.ValueType) int {
	switch t {
	case manifest.Bool, manifest.Char8, manifest.Int8, manifest.UInt8:
		return 8
	case manifest.Char16, manifest.Int16, manifest.UInt16:
		return 16
	case manifest.Int32, manifest.UInt32, manifest.Float:
		return 32
	default:
		return 64
	}
}

// PutFloat64 and GetFloat64 round-trip an IEEE-754 double through a Slot's
// bit pattern, which is how the uniform block stores floating point values
// (a float32 in the low 32 bits). The trampolines convert these slots to
// real float32/float64 arguments before they reach purego.
func PutFloat64(v float64) Slot { return math.Float64bits(v) }
func GetFloat64(s Slot) float64 { return math.Float64frombits(s) }

func PutFloat32(v float32) Slot { return Slot(math.Float32bits(v)) }
func GetFloat32(s Slot) float32 { return math.Float32frombits(uint32(s)) }
