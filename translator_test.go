package translator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/compiler"
	"github.com/gogpu/translator/ir"
)

func TestTranslateDefaults(t *testing.T) {
	res, err := Translate(ir.StageFragment, shaderLargeFragment, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Code, "#version 330 core\n"), res.Code)
	assert.Equal(t, 300, res.ShaderVersion)
	assert.Equal(t, 330, res.OutputVersion)
	require.NotNil(t, res.Reflection)
	assert.Len(t, res.Reflection.Uniforms, 3)
	assert.Len(t, res.Reflection.InputVaryings, 3)
}

func TestTranslateEveryShader(t *testing.T) {
	for _, sc := range shadersByComplexity {
		t.Run(sc.name, func(t *testing.T) {
			for _, profile := range []compiler.OutputProfile{compiler.OutputESSL310, compiler.OutputGLSL450} {
				opts := DefaultOptions()
				opts.Spec = sc.spec
				opts.Profile = profile
				res, err := Translate(sc.stage, sc.source, opts)
				require.NoError(t, err)
				assert.Contains(t, res.Code, "void main()")
			}
		})
	}
}

func TestTranslateAlwaysEmitsCode(t *testing.T) {
	opts := DefaultOptions()
	opts.Compile = compiler.Variables
	res, err := Translate(ir.StageVertex, shaderSmallVertex, opts)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Code)
}

func TestTranslateCompileError(t *testing.T) {
	opts := DefaultOptions()
	opts.Profile = compiler.OutputMSL
	_, err := Translate(ir.StageFragment, "void main() { gl_FragColor = vec4(missing); }", opts)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ir.StageFragment, ce.Stage)
	assert.Equal(t, compiler.OutputMSL, ce.Profile)
	assert.Contains(t, ce.InfoLog, "ERROR: 0:1: ")
	assert.True(t, strings.HasPrefix(err.Error(), "fragment shader failed to compile for msl:\n"))
}

func TestTranslateInvalidResources(t *testing.T) {
	opts := DefaultOptions()
	opts.Resources.MaxDrawBuffers = -4
	_, err := Translate(ir.StageVertex, shaderSmallVertex, opts)
	assert.ErrorContains(t, err, "MaxDrawBuffers")
}

func TestStageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ir.ShaderStage
	}{
		{"a.vert", ir.StageVertex},
		{"shaders/blur.frag", ir.StageFragment},
		{"reduce.comp.glsl", ir.StageCompute},
		{"x.vs.essl", ir.StageVertex},
	}
	for _, tt := range tests {
		got, err := StageFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := StageFromPath("shader.glsl")
	assert.Error(t, err)
}

func TestParseStage(t *testing.T) {
	for in, want := range map[string]ir.ShaderStage{
		"vertex": ir.StageVertex, "FRAG": ir.StageFragment, "pixel": ir.StageFragment, "cs": ir.StageCompute,
	} {
		got, err := ParseStage(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStage("geometry")
	assert.Error(t, err)
}
