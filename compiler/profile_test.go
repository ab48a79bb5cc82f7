package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputProfile(t *testing.T) {
	tests := []struct {
		in   string
		want OutputProfile
	}{
		{"essl100", OutputESSL100},
		{"ESSL300", OutputESSL300},
		{"glsl", OutputGLSLCompatibility},
		{"glsl110", OutputGLSLCompatibility},
		{"glsl420", OutputGLSL420},
		{"hlsl3", OutputHLSL3_0},
		{"hlsl3.0", OutputHLSL3_0},
		{"hlsl4_1", OutputHLSL4_1},
		{"hlsl5", OutputHLSL5_0},
		{" hlsl5.1 ", OutputHLSL5_1},
		{"msl", OutputMSL},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputProfile(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "glsl100", "hlsl6", "spirv"} {
		_, err := ParseOutputProfile(bad)
		assert.Error(t, err, bad)
	}
}

func TestProfilesRoundTripByName(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Profiles() {
		require.True(t, p.Valid())
		name := p.String()
		assert.False(t, seen[name], "duplicate profile name %q", name)
		seen[name] = true

		got, err := ParseOutputProfile(name)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	assert.False(t, OutputProfile(len(Profiles())).Valid())
	assert.Equal(t, "OutputProfile(250)", OutputProfile(250).String())
}

func TestProfileFamilies(t *testing.T) {
	tests := []struct {
		profile OutputProfile
		family  Family
		version int
		glsl    bool
	}{
		{OutputESSL300, FamilyESSL, 300, true},
		{OutputGLSLCompatibility, FamilyGLSLCompatibility, 110, true},
		{OutputGLSL150, FamilyGLSLCore, 150, true},
		{OutputGLSL460, FamilyGLSLCore, 460, true},
		{OutputHLSL4_1, FamilyHLSL, 0, false},
		{OutputMSL, FamilyMSL, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			assert.Equal(t, tt.family, tt.profile.Family())
			assert.Equal(t, tt.version, tt.profile.Version())
			assert.Equal(t, tt.glsl, tt.profile.IsGLSL())
		})
	}
	assert.Equal(t, "glsl-core", FamilyGLSLCore.String())
}

func TestParseSpec(t *testing.T) {
	for _, s := range []Spec{SpecGLES2, SpecGLES3, SpecGLES31, SpecWebGL, SpecWebGL2} {
		got, err := ParseSpec(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseSpec("WebGL2")
	require.NoError(t, err)
	assert.Equal(t, SpecWebGL2, got)

	_, err = ParseSpec("gles4")
	assert.Error(t, err)

	assert.Equal(t, 100, SpecWebGL.MaxVersion())
	assert.Equal(t, 300, SpecWebGL2.MaxVersion())
	assert.Equal(t, 310, SpecGLES31.MaxVersion())
}

func TestCompileOptions(t *testing.T) {
	o, err := ParseOptions("object-code|variables, emulate-draw-id")
	require.NoError(t, err)
	assert.Equal(t, ObjectCode|Variables|EmulateDrawID, o)
	assert.True(t, o.Has(ObjectCode|Variables))
	assert.False(t, o.Has(ObjectCode|ValidateAST))
	assert.Equal(t, "object-code|variables|emulate-draw-id", o.String())

	none, err := ParseOptions("")
	require.NoError(t, err)
	assert.Zero(t, none)
	assert.Equal(t, "none", none.String())

	_, err = ParseOptions("object-code|fast")
	assert.ErrorContains(t, err, `"fast"`)

	assert.Equal(t, "validate-ast|0x10000", (ValidateAST | 1<<16).String())

	for _, name := range OptionNames() {
		o, err := ParseOptions(name)
		require.NoError(t, err)
		assert.Equal(t, name, o.String())
	}
}
