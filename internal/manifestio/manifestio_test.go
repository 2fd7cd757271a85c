package manifestio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugify-dev/plugify/internal/manifestio"
	"github.com/plugify-dev/plugify/pkg/manifest"
)

func TestParsePluginJSON(t *testing.T) {
	data := []byte(`{
		"name": "hello",
		"version": "1.0.0",
		"language": "py",
		"entry": "hello_main",
		"dependencies": [{"name": "lang.py", "constraints": [{"op": "^", "version": "1.0.0"}]}],
		"methods": [
			{"name": "Greet", "return": {"type": "string"}, "params": [{"type": "string"}]}
		]
	}`)
	p := manifestio.New()
	m, err := p.Parse(data, "hello.pplugin")
	require.NoError(t, err)
	assert.Equal(t, manifest.KindPlugin, m.Kind)
	assert.Equal(t, "hello_main", m.Entry)
	require.Len(t, m.Dependencies, 1)
	require.Len(t, m.Methods, 1)
	assert.Equal(t, manifest.String, m.Methods[0].Return.Type)
}

func TestParseModuleYAML(t *testing.T) {
	data := []byte(`
name: lang.py
version: 1.0.0
language: py
runtime: libpy.so
directories:
  - extra
`)
	p := manifestio.New()
	m, err := p.Parse(data, "lang.pmodule")
	require.NoError(t, err)
	assert.Equal(t, manifest.KindModule, m.Kind)
	assert.Equal(t, "libpy.so", m.Runtime)
	assert.Equal(t, []string{"extra"}, m.Directories)
}

func TestParseRejectsMissingEntryAndRuntime(t *testing.T) {
	data := []byte(`{"name": "x", "version": "1.0.0", "language": "py"}`)
	p := manifestio.New()
	_, err := p.Parse(data, "x.pplugin")
	require.Error(t, err)
	var invalid *manifest.InvalidManifestError
	assert.ErrorAs(t, err, &invalid)
}

func TestParseRejectsBadVersion(t *testing.T) {
	data := []byte(`{"name": "x", "version": "not-semver", "language": "py", "entry": "main"}`)
	p := manifestio.New()
	_, err := p.Parse(data, "x.pplugin")
	require.Error(t, err)
}
