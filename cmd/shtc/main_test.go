package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/compiler"
)

const (
	vertexSource = `attribute vec4 a_position;
uniform mat4 u_mvp;
void main() {
    gl_Position = u_mvp * a_position;
}
`
	fragmentSource = `precision mediump float;
uniform vec4 u_color;
void main() {
    gl_FragColor = u_color;
}
`
	drawIDSource = `#extension GL_ANGLE_multi_draw : require
void main() {
    gl_Position = vec4(float(gl_DrawID));
}
`
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color=off"}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shtc "+version)
}

func TestProfilesCommand(t *testing.T) {
	out, _, err := run(t, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "glsl420    glsl-core 420")
	assert.Contains(t, out, "hlsl5.1")
	assert.Contains(t, out, "webgl2     up to #version 300")
	assert.Contains(t, out, "emulate-draw-id")
}

func TestTranslateToStdout(t *testing.T) {
	dir := t.TempDir()
	frag := writeFile(t, dir, "color.frag", fragmentSource)

	out, stderr, err := run(t, "translate", frag)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "#version 330 core")
	assert.Contains(t, out, "uniform vec4 u_color;")
	assert.Empty(t, stderr)

	out, stderr, err = run(t, "translate", "-p", "essl100", "--spec", "gles2", frag)
	require.NoError(t, err, stderr)
	assert.NotContains(t, out, "#version 330")
	assert.Contains(t, out, "gl_FragColor = u_color;")
}

func TestTranslateOutDirWithReflection(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	vert := writeFile(t, src, "mvp.vert", vertexSource)
	frag := writeFile(t, src, "color.frag", fragmentSource)

	stdout, stderr, err := run(t, "translate", "-p", "hlsl5", "-o", out, "--reflect", "-j", "2", vert, frag)
	require.NoError(t, err, stderr)
	assert.Empty(t, stdout)

	code, err := os.ReadFile(filepath.Join(out, "mvp.vert.hlsl"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "u_mvp")
	assert.FileExists(t, filepath.Join(out, "color.frag.hlsl"))

	data, err := os.ReadFile(filepath.Join(out, "mvp.vert.reflect.msgpack"))
	require.NoError(t, err)
	r, err := compiler.UnmarshalReflection(data)
	require.NoError(t, err)
	require.Len(t, r.Uniforms, 1)
	assert.Equal(t, "u_mvp", r.Uniforms[0].Name)
	require.Len(t, r.Attributes, 1)
	assert.Equal(t, "a_position", r.Attributes[0].Name)
}

func TestTranslateReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.frag", fragmentSource)
	bad := writeFile(t, dir, "bad.frag", "void main() {\n    gl_FragColor = missing;\n}\n")

	stdout, stderr, err := run(t, "translate", bad, good)
	require.EqualError(t, err, "1 of 2 shaders failed to compile")
	assert.Contains(t, stderr, bad+": ERROR: 0:2: ")
	assert.Contains(t, stdout, "gl_FragColor = u_color;")
}

func TestTranslateFlags(t *testing.T) {
	dir := t.TempDir()
	frag := writeFile(t, dir, "color.frag", fragmentSource)
	noStage := writeFile(t, dir, "shader.glsl", fragmentSource)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"profile", []string{"-p", "spirv", frag}, `unknown output profile "spirv"`},
		{"spec", []string{"--spec", "gles4", frag}, `unknown shader spec "gles4"`},
		{"option", []string{"--options", "fast", frag}, `unknown option "fast"`},
		{"stage flag", []string{"--stage", "geometry", frag}, `unknown shader stage "geometry"`},
		{"reflect", []string{"--reflect", frag}, "--reflect requires --out-dir"},
		{"stage from path", []string{noStage}, "cannot tell the shader stage"},
		{"missing file", []string{filepath.Join(dir, "missing.frag")}, "missing.frag"},
		{"resources", []string{"--resources", filepath.Join(dir, "missing.toml"), frag}, "missing.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"translate"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	out, stderr, err := run(t, "translate", "--stage", "fragment", noStage)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "u_color")

	_, _, err = run(t, "--color=sometimes", "version")
	assert.ErrorContains(t, err, "unsupported color mode")
}

func TestTranslateResourcesAndOptions(t *testing.T) {
	dir := t.TempDir()
	vert := writeFile(t, dir, "multi.vert", drawIDSource)
	res := writeFile(t, dir, "res.toml", "ANGLE_multi_draw = true\n")

	_, stderr, err := run(t, "translate", "-p", "msl", vert)
	require.Error(t, err)
	assert.Contains(t, stderr, "GL_ANGLE_multi_draw")

	out, stderr, err := run(t, "translate", "-p", "msl", "--resources", res, "--options", "emulate-draw-id|validate-ast", vert)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "angle_DrawID")
	assert.NotContains(t, out, "gl_DrawID")
}

func TestTranslateDumpTree(t *testing.T) {
	dir := t.TempDir()
	vert := writeFile(t, dir, "mvp.vert", vertexSource)

	_, stderr, err := run(t, "translate", "--dump-tree", vert)
	require.NoError(t, err)
	assert.Contains(t, stderr, vert+": 0:")
	assert.Contains(t, stderr, "'u_mvp'")
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromFlags(true, true, true))
	assert.Equal(t, slog.LevelInfo, levelFromFlags(false, true, true))
	assert.Equal(t, slog.LevelError, levelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, levelFromFlags(false, false, false))
}

func TestOutputExt(t *testing.T) {
	assert.Equal(t, ".essl", outputExt(compiler.OutputESSL300))
	assert.Equal(t, ".glsl", outputExt(compiler.OutputGLSLCompatibility))
	assert.Equal(t, ".hlsl", outputExt(compiler.OutputHLSL3_0))
	assert.Equal(t, ".metal", outputExt(compiler.OutputMSL))
}
