package assembly_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/pkg/assembly"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

func TestLoadFlagString(t *testing.T) {
	assert.Equal(t, "Default", assembly.Default.String())
	assert.Equal(t, "LazyBinding|GlobalSymbols", (assembly.LazyBinding | assembly.GlobalSymbols).String())
}

func TestLoadFlagHas(t *testing.T) {
	f := assembly.GlobalSymbols | assembly.DeepBind
	assert.True(t, f.Has(assembly.GlobalSymbols))
	assert.False(t, f.Has(assembly.NoUnload))
}

func TestSearchPathAddRemoveIdempotent(t *testing.T) {
	l := assembly.NewLoader()
	require.NoError(t, l.AddSearchPath("/opt/plugify/lib"))
	require.NoError(t, l.AddSearchPath("/opt/plugify/lib"))
	require.NoError(t, l.RemoveSearchPath("/opt/plugify/lib"))
	require.NoError(t, l.RemoveSearchPath("/opt/plugify/lib"))
}

func TestLoadMissingFileReportsNotFound(t *testing.T) {
	l := assembly.NewLoader()
	_, err := l.Load("/nonexistent/path/to/library.so", assembly.Default)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugify.ErrFileNotFound)
}
