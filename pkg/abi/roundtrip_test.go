package abi_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/manifest"
)

// TestJITRoundTrip builds a Callback around a Go handler, then binds a Call
// to that Callback's own generated address — exercising both trampoline
// directions back-to-back with no real native library involved, the
// synthetic-signature round trip the design calls for. purego.NewCallback
// only generates trampolines for the architectures it ships assembly for;
// this is skipped rather than silently passed on anything else.
func TestJITRoundTrip(t *testing.T) {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("purego.NewCallback unsupported on %s", runtime.GOARCH)
	}

	method := manifest.Method{
		Name:   "add",
		Params: []manifest.Property{{Type: manifest.Int64}, {Type: manifest.Int64}},
		Return: manifest.Property{Type: manifest.Int64},
	}

	var gotArgs []abi.Slot
	cb, err := abi.NewCallback(method, func(args []abi.Slot) (abi.Slot, error) {
		gotArgs = append([]abi.Slot(nil), args...)
		return args[0] + args[1], nil
	})
	require.NoError(t, err)
	defer cb.Close()

	call, err := abi.NewCall(method, cb.Address())
	require.NoError(t, err)
	defer call.Close()

	ret, err := call.Invoke([]abi.Slot{7, 35})
	require.NoError(t, err)
	assert.Equal(t, abi.Slot(42), ret)
	assert.Equal(t, []abi.Slot{7, 35}, gotArgs)
}

// TestJITRoundTripHiddenReturn exercises the hidden-return-pointer lowering
// rule symmetrically: a method whose return is wider than one native slot
// shifts into an extra leading parameter on both sides of the bridge.
func TestJITRoundTripHiddenReturn(t *testing.T) {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("purego.NewCallback unsupported on %s", runtime.GOARCH)
	}

	method := manifest.Method{
		Name:   "make_matrix",
		Params: []manifest.Property{{Type: manifest.Int64}},
		Return: manifest.Property{Type: manifest.Mat4x4},
	}
	require.Equal(t, 2, abi.SlotCount(method))

	cb, err := abi.NewCallback(method, func(args []abi.Slot) (abi.Slot, error) {
		// args[0] is the hidden return pointer, args[1] the real Int64 param.
		return args[0], nil
	})
	require.NoError(t, err)
	defer cb.Close()

	call, err := abi.NewCall(method, cb.Address())
	require.NoError(t, err)
	defer call.Close()

	ret, err := call.Invoke([]abi.Slot{0xBEEF, 3})
	require.NoError(t, err)
	assert.Equal(t, abi.Slot(0xBEEF), ret)
}

// TestJITRoundTripMixedFloatAndInt is scenario 6 of the testable properties:
// a method mixing an integer, a float, and a pointer parameter with a
// double return. Earlier revisions of this bridge bit-cast every slot into
// a uintptr before handing it to purego, which lands a Float/Double
// argument in a general-purpose register instead of the XMM register the
// native ABI (and purego's own reflect-driven classification) expects —
// this exercises that path live through both NewCallback and NewCall
// rather than only the pure PutFloat64/GetFloat64 bit-pattern helpers.
func TestJITRoundTripMixedFloatAndInt(t *testing.T) {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("purego.NewCallback unsupported on %s", runtime.GOARCH)
	}

	method := manifest.Method{
		Name: "mix",
		// CallingConvention left blank: blank means the host default on
		// every platform, so this method also round-trips on arm64 hosts.
		Params: []manifest.Property{
			{Type: manifest.Int32},
			{Type: manifest.Float},
			{Type: manifest.Pointer},
		},
		Return: manifest.Property{Type: manifest.Double},
	}

	cb, err := abi.NewCallback(method, func(args []abi.Slot) (abi.Slot, error) {
		i := int32(args[0])
		f := abi.GetFloat32(args[1])
		p := int64(args[2])
		result := float64(i) + float64(f)*2 + float64(p)
		return abi.PutFloat64(result), nil
	})
	require.NoError(t, err)
	defer cb.Close()

	call, err := abi.NewCall(method, cb.Address())
	require.NoError(t, err)
	defer call.Close()

	ret, err := call.Invoke([]abi.Slot{
		abi.Slot(3),
		abi.PutFloat32(4.0),
		abi.Slot(0xABCD),
	})
	require.NoError(t, err)
	assert.InDelta(t, 11.0+float64(0xABCD), abi.GetFloat64(ret), 1e-9)
}
