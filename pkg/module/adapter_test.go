package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/pkg/abi"
	"github.com/plugify-dev/plugify/pkg/module"
)

type fakeLib struct {
	symbols map[string]uintptr
}

func (f *fakeLib) Symbol(name string) (uintptr, error) {
	if addr, ok := f.symbols[name]; ok {
		return addr, nil
	}
	return 0, assertNotFound{}
}

type assertNotFound struct{}

func (assertNotFound) Error() string { return "symbol not found" }

func (f *fakeLib) HasSymbol(name string) bool {
	_, ok := f.symbols[name]
	return ok
}

func TestNewAdapterRequiresInitialise(t *testing.T) {
	lib := &fakeLib{symbols: map[string]uintptr{}}
	_, err := module.NewAdapter(abi.NewRuntime(), lib)
	require.Error(t, err)
}

func TestNewAdapterBindsOptionalHooks(t *testing.T) {
	lib := &fakeLib{symbols: map[string]uintptr{
		"initialise": 0x1000,
		"shutdown":   0x1008,
	}}
	a, err := module.NewAdapter(abi.NewRuntime(), lib)
	require.NoError(t, err)
	assert.NotNil(t, a)
	require.NoError(t, a.Close())
}
