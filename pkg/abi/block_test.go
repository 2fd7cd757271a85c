package abi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/manifest"
)

func TestSlotCountIncludesHiddenReturn(t *testing.T) {
	m := manifest.Method{
		Params: []manifest.Property{{Type: manifest.Int32}, {Type: manifest.Float}},
		Return: manifest.Property{Type: manifest.String},
	}
	assert.Equal(t, 3, abi.SlotCount(m))
}

func TestSlotCountNoHiddenReturn(t *testing.T) {
	m := manifest.Method{
		Params: []manifest.Property{{Type: manifest.Int32}},
		Return: manifest.Property{Type: manifest.Int64},
	}
	assert.Equal(t, 1, abi.SlotCount(m))
}

func TestValidateSignatureAcceptsVector(t *testing.T) {
	m := manifest.Method{Return: manifest.Property{Type: manifest.Vec3}}
	require.NoError(t, abi.ValidateSignature(m))
}

func TestSlotCountVectorReturnUsesHiddenSlot(t *testing.T) {
	m := manifest.Method{
		Params: []manifest.Property{{Type: manifest.Float}},
		Return: manifest.Property{Type: manifest.Vec3},
	}
	// A vec3 return has nowhere to go but the hidden-return pointer slot —
	// there is no 128-bit vector register this bridge's trampolines can
	// return it through directly.
	assert.Equal(t, 2, abi.SlotCount(m))
}

func TestValidateSignatureRejectsUnsupportedCallingConvention(t *testing.T) {
	m := manifest.Method{
		CallingConvention: "vectorcall",
		Return:            manifest.Property{Type: manifest.Int32},
	}
	err := abi.ValidateSignature(m)
	require.Error(t, err)
}

func TestFloatRoundTrip(t *testing.T) {
	s := abi.PutFloat64(3.5)
	assert.InDelta(t, 3.5, abi.GetFloat64(s), 1e-9)

	s32 := abi.PutFloat32(1.25)
	assert.InDelta(t, float32(1.25), abi.GetFloat32(s32), 1e-6)
}
