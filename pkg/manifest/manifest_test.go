package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/pkg/manifest"
)

func TestMatchesPlatformWildcards(t *testing.T) {
	cases := []struct {
		patterns []string
		os, arch string
		want     bool
	}{
		{nil, "linux", "x64", true},
		{[]string{"linux_*"}, "linux", "x64", true},
		{[]string{"linux_*"}, "windows", "x64", false},
		{[]string{"*_x64"}, "darwin", "x64", true},
		{[]string{"*_x64"}, "darwin", "arm64", false},
		{[]string{"*"}, "anything", "anything", true},
		{[]string{"linux_arm64", "windows_x64"}, "windows", "x64", true},
	}
	for _, tc := range cases {
		m := &manifest.Manifest{Platforms: tc.patterns}
		assert.Equal(t, tc.want, m.MatchesPlatform(tc.os, tc.arch))
	}
}

func TestResolvePrototypes(t *testing.T) {
	m := &manifest.Manifest{
		Methods: []manifest.Method{
			{
				Name: "onTick",
				Params: []manifest.Property{
					{Type: manifest.Function, Prototype: &manifest.Method{Name: "Callback"}},
				},
			},
			{Name: "Callback", Params: []manifest.Property{{Type: manifest.Int32}}},
		},
	}
	table := manifest.PrototypeTable(m.Methods)
	require.NoError(t, m.ResolvePrototypes(table))
	assert.Same(t, &m.Methods[1], m.Methods[0].Params[0].Prototype)
}

func TestResolvePrototypesUnresolved(t *testing.T) {
	m := &manifest.Manifest{
		Methods: []manifest.Method{
			{
				Name: "onTick",
				Params: []manifest.Property{
					{Type: manifest.Function, Prototype: &manifest.Method{Name: "Missing"}},
				},
			},
		},
	}
	table := manifest.PrototypeTable(m.Methods)
	err := m.ResolvePrototypes(table)
	require.Error(t, err)
	var invalid *manifest.InvalidManifestError
	assert.ErrorAs(t, err, &invalid)
}

func TestValueTypeClass(t *testing.T) {
	assert.Equal(t, manifest.ClassFloat, manifest.Double.Class())
	assert.Equal(t, manifest.ClassVector, manifest.Vec3.Class())
	assert.Equal(t, manifest.ClassPointer, manifest.String.Class())
	assert.Equal(t, manifest.ClassInteger, manifest.Int32.Class())
	assert.True(t, manifest.ArrayInt32.IsArray())
	assert.False(t, manifest.Int32.IsArray())
}

func TestIsHiddenReturn(t *testing.T) {
	assert.True(t, manifest.Mat4x4.IsHiddenReturn())
	assert.True(t, manifest.String.IsHiddenReturn())
	assert.True(t, manifest.ArrayInt32.IsHiddenReturn())
	// Vec2/Vec3/Vec4 returns go through the hidden-return pointer too: there
	// is no 128-bit vector register class available to return them in
	// directly at this bridge's trampoline layer (see pkg/abi).
	assert.True(t, manifest.Vec2.IsHiddenReturn())
	assert.True(t, manifest.Vec3.IsHiddenReturn())
	assert.True(t, manifest.Vec4.IsHiddenReturn())
	assert.False(t, manifest.Int64.IsHiddenReturn())
}
