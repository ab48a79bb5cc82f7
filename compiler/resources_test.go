package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultResourcesAreValid(t *testing.T) {
	r := DefaultResources()
	require.NoError(t, r.Validate())
	assert.Empty(t, r.ExtensionNames())
}

func TestDecodeResources(t *testing.T) {
	r, err := DecodeResources(`
OES_standard_derivatives = true
ANGLE_multi_draw = true
MaxDrawBuffers = 8
MaxVertexAttribs = 32
`)
	require.NoError(t, err)
	assert.Equal(t, 8, r.MaxDrawBuffers)
	assert.Equal(t, 32, r.MaxVertexAttribs)
	assert.Equal(t, DefaultResources().MaxVaryingVectors, r.MaxVaryingVectors)
	assert.Equal(t, []string{"GL_ANGLE_multi_draw", "GL_OES_standard_derivatives"}, r.ExtensionNames())

	limits := r.limits()
	assert.Equal(t, 8, limits["gl_MaxDrawBuffers"])
	assert.Equal(t, -8, limits["gl_MinProgramTexelOffset"])
}

func TestDecodeResourcesErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "MaxDrawBuffers = ", "failed to parse resources"},
		{"unknown key", "MaxDrawBuffers = 8\nMaxWidgets = 3", "unknown resource keys: MaxWidgets"},
		{"wrong type", `MaxDrawBuffers = "eight"`, "failed to parse resources"},
		{"negative", "MaxDrawBuffers = -1", "MaxDrawBuffers is negative"},
		{"overflow", "MaxVaryingVectors = 4294967296", "MaxVaryingVectors"},
		{"offsets", "MinProgramTexelOffset = 9", "exceeds MaxProgramTexelOffset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResources(tt.text)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadResources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resources.toml")
	require.NoError(t, os.WriteFile(path, []byte("EXT_frag_depth = true\nMaxTextureImageUnits = 32\n"), 0o600))

	r, err := LoadResources(path)
	require.NoError(t, err)
	assert.True(t, r.EXTFragDepth)
	assert.Equal(t, 32, r.MaxTextureImageUnits)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("Bogus = 1\n"), 0o600))
	_, err = LoadResources(bad)
	assert.ErrorContains(t, err, bad)
	assert.ErrorContains(t, err, "Bogus")

	_, err = LoadResources(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
