// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/emulator"
	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
)

var testBuiltins = essl.NewBuiltins()

func parseUnit(t *testing.T, stage ir.ShaderStage, version int, src string) *emit.Unit {
	t.Helper()
	res, errs := essl.Parse([]string{src}, essl.Options{
		Stage:      stage,
		Builtins:   testBuiltins,
		Extensions: map[string]bool{"GL_ANGLE_multi_draw": true, "GL_OES_standard_derivatives": true},
	})
	if len(errs) > 0 {
		t.Fatalf("parse failed:\n%s", errs.FormatAll())
	}
	u := &emit.Unit{
		Tree:          res.Tree,
		Symbols:       res.Symbols,
		Stage:         res.Stage,
		SourceVersion: res.Version,
		Version:       version,
		InvariantAll:  res.Pragma.InvariantAll,
		LocalSize:     res.LocalSize,
	}
	for name, b := range res.Extensions {
		if b.Enabled() {
			u.Extensions = append(u.Extensions, emit.Extension{Name: name, Behavior: b.String()})
		}
	}
	emit.SortExtensions(u.Extensions)
	return u
}

func compileUnit(t *testing.T, u *emit.Unit, opts Options) string {
	t.Helper()
	var sb strings.Builder
	if err := NewEmitter(opts).Emit(&sb, u); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	return sb.String()
}

func mustContain(t *testing.T, output string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(output, s) {
			t.Errorf("expected output to contain %q\nGot:\n%s", s, output)
		}
	}
}

func mustNotContain(t *testing.T, output string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if strings.Contains(output, s) {
			t.Errorf("expected output not to contain %q\nGot:\n%s", s, output)
		}
	}
}

const colorShader = `
precision mediump float;
uniform vec4 u_color;
void main() {
    gl_FragColor = u_color;
}`

func TestVersionString(t *testing.T) {
	tests := []struct {
		version Version
		want    string
	}{
		{Version110, "110"},
		{Version330, "330"},
		{Version460, "460"},
		{VersionES100, "100 es"},
		{VersionES300, "300 es"},
		{VersionES310, "310 es"},
	}
	for _, tt := range tests {
		if got := tt.version.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		number  int
		es      bool
		want    Version
		wantErr bool
	}{
		{110, false, Version110, false},
		{330, false, Version330, false},
		{300, true, VersionES300, false},
		{310, true, VersionES310, false},
		{300, false, Version{}, true},
		{330, true, Version{}, true},
		{0, false, Version{}, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.number, tt.es)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%d, %v) error = %v, wantErr %v", tt.number, tt.es, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%d, %v) = %v, want %v", tt.number, tt.es, got, tt.want)
		}
	}
}

func TestVersionFeatures(t *testing.T) {
	tests := []struct {
		version  Version
		legacy   bool
		location bool
		binding  bool
		compute  bool
	}{
		{Version110, true, false, false, false},
		{Version120, true, false, false, false},
		{Version130, false, false, false, false},
		{Version330, false, true, false, false},
		{Version420, false, true, true, false},
		{Version430, false, true, true, true},
		{VersionES100, true, false, false, false},
		{VersionES300, false, true, false, false},
		{VersionES310, false, true, true, true},
	}
	for _, tt := range tests {
		if got := tt.version.LegacyInterface(); got != tt.legacy {
			t.Errorf("%v.LegacyInterface() = %v", tt.version, got)
		}
		if got := tt.version.SupportsLocation(); got != tt.location {
			t.Errorf("%v.SupportsLocation() = %v", tt.version, got)
		}
		if got := tt.version.SupportsBinding(); got != tt.binding {
			t.Errorf("%v.SupportsBinding() = %v", tt.version, got)
		}
		if got := tt.version.SupportsCompute(); got != tt.compute {
			t.Errorf("%v.SupportsCompute() = %v", tt.version, got)
		}
	}
}

func TestEscapeKeyword(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"color", "color"},
		{"texture", "_utexture"},
		{"sample", "_usample"},
		{"uint", "_uuint"},
		{"gl_Custom", "_ugl_Custom"},
		{"webgl_x", "_uwebgl_x"},
		{"_webgl_y", "_u_webgl_y"},
		{"", "_unnamed"},
	}
	for _, tt := range tests {
		if got := escapeKeyword(tt.name); got != tt.want {
			t.Errorf("escapeKeyword(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEmitVersionDirective(t *testing.T) {
	tests := []struct {
		name    string
		version int
		options Options
		want    string
		absent  string
	}{
		{"compatibility", 110, Options{}, "", "#version"},
		{"desktop 130", 130, Options{}, "#version 130\n", "core"},
		{"core 330", 330, Options{Core: true}, "#version 330 core\n", ""},
		{"core below 150", 140, Options{Core: true}, "#version 140\n", "core"},
		{"es 100", 100, Options{ES: true}, "", "#version"},
		{"es 300", 300, Options{ES: true}, "#version 300 es\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := compileUnit(t, parseUnit(t, ir.StageFragment, tt.version, colorShader), tt.options)
			if tt.want != "" && !strings.HasPrefix(out, tt.want) {
				t.Errorf("output does not start with %q\nGot:\n%s", tt.want, out)
			}
			if tt.absent != "" {
				mustNotContain(t, out, tt.absent)
			}
		})
	}
}

func TestEmitInvalidVersion(t *testing.T) {
	u := parseUnit(t, ir.StageFragment, 300, colorShader)
	var sb strings.Builder
	err := NewEmitter(Options{}).Emit(&sb, u)
	var e *emit.Error
	if !errors.As(err, &e) {
		t.Fatalf("Emit error = %v, want *emit.Error", err)
	}
	if e.Kind != emit.ErrInvalidVersion {
		t.Errorf("Kind = %v, want %v", e.Kind, emit.ErrInvalidVersion)
	}
	if sb.Len() != 0 {
		t.Errorf("partial output written: %q", sb.String())
	}
}

func TestEmitFragColor(t *testing.T) {
	legacy := compileUnit(t, parseUnit(t, ir.StageFragment, 110, colorShader), Options{})
	mustContain(t, legacy, "uniform vec4 u_color;", "gl_FragColor = u_color;")
	mustNotContain(t, legacy, "webgl_FragColor", "mediump")

	modern := compileUnit(t, parseUnit(t, ir.StageFragment, 330, colorShader), Options{Core: true})
	mustContain(t, modern, "out vec4 webgl_FragColor;", "webgl_FragColor = u_color;")
	mustNotContain(t, modern, " gl_FragColor")

	es := compileUnit(t, parseUnit(t, ir.StageFragment, 300, colorShader), Options{ES: true})
	mustContain(t, es,
		"precision mediump float;",
		"uniform mediump vec4 u_color;",
		"out mediump vec4 webgl_FragColor;",
	)
}

func TestEmitFragData(t *testing.T) {
	src := `
precision mediump float;
void main() {
    gl_FragData[0] = vec4(1.0);
}`
	out := compileUnit(t, parseUnit(t, ir.StageFragment, 330, src), Options{})
	mustContain(t, out, "out vec4 webgl_FragData[", "webgl_FragData[0] = vec4(1.0, 1.0, 1.0, 1.0);")
}

func TestEmitStorageQualifiers(t *testing.T) {
	src := `
attribute vec4 a_position;
attribute vec2 a_uv;
varying vec2 v_uv;
void main() {
    v_uv = a_uv;
    gl_Position = a_position;
}`
	legacy := compileUnit(t, parseUnit(t, ir.StageVertex, 120, src), Options{})
	mustContain(t, legacy, "attribute vec4 a_position;", "varying vec2 v_uv;")

	modern := compileUnit(t, parseUnit(t, ir.StageVertex, 150, src), Options{Core: true})
	mustContain(t, modern, "in vec4 a_position;", "in vec2 a_uv;", "out vec2 v_uv;", "gl_Position = a_position;")
	mustNotContain(t, modern, "attribute", "varying")
}

func TestEmitLayoutQualifiers(t *testing.T) {
	src := `#version 310 es
layout(location = 2) in vec4 a_position;
void main() {
    gl_Position = a_position;
}`
	out := compileUnit(t, parseUnit(t, ir.StageVertex, 330, src), Options{})
	mustContain(t, out, "layout(location = 2) in vec4 a_position;")

	out = compileUnit(t, parseUnit(t, ir.StageVertex, 130, src), Options{})
	mustContain(t, out, "in vec4 a_position;")
	mustNotContain(t, out, "layout(")
}

func TestEmitTextureFunctions(t *testing.T) {
	src := `
precision mediump float;
uniform sampler2D s;
uniform samplerCube c;
varying vec2 uv;
void main() {
    gl_FragColor = texture2D(s, uv) + textureCube(c, vec3(uv, 1.0)) + texture2DProj(s, vec3(uv, 2.0));
}`
	legacy := compileUnit(t, parseUnit(t, ir.StageFragment, 120, src), Options{})
	mustContain(t, legacy, "texture2D(s, uv)", "textureCube(c, ", "texture2DProj(s, ")

	modern := compileUnit(t, parseUnit(t, ir.StageFragment, 330, src), Options{})
	mustContain(t, modern, "texture(s, uv)", "texture(c, ", "textureProj(s, ")
	mustNotContain(t, modern, "texture2D", "textureCube")
}

func TestEmitEscapesReservedNames(t *testing.T) {
	src := `
precision mediump float;
uniform float texture;
float sample(float x) {
    return x * 2.0;
}
void main() {
    gl_FragColor = vec4(sample(texture));
}`
	out := compileUnit(t, parseUnit(t, ir.StageFragment, 330, src), Options{})
	mustContain(t, out,
		"uniform float _utexture;",
		"float _usample(float x)",
		"return (x * 2.0);",
		"vec4(_usample(_utexture))",
		"void main()",
	)
}

func TestEmitDrawID(t *testing.T) {
	src := `#extension GL_ANGLE_multi_draw : require
void main() {
    gl_Position = vec4(float(gl_DrawID));
}`
	desktop := compileUnit(t, parseUnit(t, ir.StageVertex, 330, src), Options{})
	mustContain(t, desktop, "#extension GL_ARB_shader_draw_parameters : require", "float(gl_DrawIDARB)")
	mustNotContain(t, desktop, "GL_ANGLE_multi_draw")

	core460 := compileUnit(t, parseUnit(t, ir.StageVertex, 460, src), Options{})
	mustContain(t, core460, "float(gl_DrawID)")
	mustNotContain(t, core460, "GL_ARB_shader_draw_parameters")

	es := compileUnit(t, parseUnit(t, ir.StageVertex, 100, src), Options{ES: true})
	mustContain(t, es, "#extension GL_ANGLE_multi_draw : require", "float(gl_DrawID)")
}

func TestEmitDropsCoreExtensions(t *testing.T) {
	src := `#extension GL_OES_standard_derivatives : enable
precision mediump float;
varying vec2 uv;
void main() {
    gl_FragColor = vec4(dFdx(uv.x));
}`
	es100 := compileUnit(t, parseUnit(t, ir.StageFragment, 100, src), Options{ES: true})
	mustContain(t, es100, "#extension GL_OES_standard_derivatives : enable")

	es300 := compileUnit(t, parseUnit(t, ir.StageFragment, 300, src), Options{ES: true})
	mustNotContain(t, es300, "GL_OES_standard_derivatives")
	mustContain(t, es300, "dFdx(uv.x)")
}

func TestEmitInvariantAll(t *testing.T) {
	src := `#pragma STDGL invariant(all)
void main() {
    gl_Position = vec4(0.0);
}`
	out := compileUnit(t, parseUnit(t, ir.StageVertex, 120, src), Options{})
	mustContain(t, out, "#version 120\n", "#pragma STDGL invariant(all)\n")
}

func TestEmitInvariantRedeclaration(t *testing.T) {
	src := `
varying vec4 v_color;
invariant v_color;
invariant gl_Position;
void main() {
    v_color = vec4(1.0);
    gl_Position = vec4(0.0);
}`
	out := compileUnit(t, parseUnit(t, ir.StageVertex, 130, src), Options{})
	mustContain(t, out, "out vec4 v_color;", "invariant v_color;", "invariant gl_Position;")
}

func TestEmitStatements(t *testing.T) {
	src := `
precision mediump float;
uniform int n;
void main() {
    float sum = 0.0;
    for (int i = 0; i < 4; i++) {
        if (i == n) {
            break;
        } else {
            sum += 1.0;
        }
    }
    bool b = sum > 2.0;
    gl_FragColor = b ? vec4(sum) : vec4(0.0);
    if (sum < 0.0) {
        discard;
    }
}`
	out := compileUnit(t, parseUnit(t, ir.StageFragment, 330, src), Options{})
	mustContain(t, out,
		"float sum = 0.0;",
		"for (int i = 0; (i < 4); (i++)) {",
		"if ((i == n)) {",
		"break;",
		"} else {",
		"sum += 1.0;",
		"bool b = (sum > 2.0);",
		"webgl_FragColor = (b ? vec4(sum) : vec4(0.0, 0.0, 0.0, 0.0));",
		"discard;",
	)
}

func TestEmitArrayConstructors(t *testing.T) {
	src := `#version 300 es
const float k[2] = float[2](1.0, 2.5);
uniform float u;
void main() {
    float l[3] = float[](u, k[1], 0.0);
    gl_Position = vec4(l[int(u)], k[int(u)], 0.0, 1.0);
}`
	for _, version := range []int{300, 330} {
		out := compileUnit(t, parseUnit(t, ir.StageVertex, version, src), Options{})
		mustContain(t, out,
			" k[2] = float[2](1.0, 2.5);",
			" l[3] = float[3](u, 2.5, 0.0);",
			"k[int(u)]",
		)
	}
}

func TestEmitComputeLocalSize(t *testing.T) {
	src := `#version 310 es
layout(local_size_x = 8, local_size_y = 4) in;
shared float tile[32];
void main() {
    tile[0] = 1.0;
    barrier();
}`
	out := compileUnit(t, parseUnit(t, ir.StageCompute, 430, src), Options{Core: true})
	mustContain(t, out,
		"#version 430 core\n",
		"layout(local_size_x = 8, local_size_y = 4, local_size_z = 1) in;",
		"shared float tile[32];",
		"barrier();",
	)
}

func TestEmitEmulatedFunctionsFirst(t *testing.T) {
	src := `
precision mediump float;
uniform vec2 u;
void main() {
    gl_FragColor = vec4(atan(u.x, u.y));
}`
	u := parseUnit(t, ir.StageFragment, 330, src)
	e := emulator.New()
	emulator.InitForGLSLWorkarounds(e)
	e.DefinePrecision("")
	if n := e.MarkBuiltInFunctionsForEmulation(u.Tree); n != 1 {
		t.Fatalf("renamed %d calls, want 1", n)
	}
	u.Emulator = e

	out := compileUnit(t, u, Options{})
	mustContain(t, out, "atan_emu(u.x, u.y)", "float atan_emu(")
	begin := strings.Index(out, "// BEGIN: Generated code for built-in function emulation")
	decl := strings.Index(out, "uniform vec2 u;")
	if begin < 0 || decl < 0 || begin > decl {
		t.Errorf("emulated functions must precede the translated shader\nGot:\n%s", out)
	}
	if strings.Count(out, "float atan_emu(emu_precision float y") != 1 {
		t.Errorf("atan_emu defined more than once\nGot:\n%s", out)
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	src := `#extension GL_ANGLE_multi_draw : require
#extension GL_OES_standard_derivatives : enable
attribute vec4 p;
void main() {
    gl_Position = p * float(gl_DrawID);
}`
	first := compileUnit(t, parseUnit(t, ir.StageVertex, 100, src), Options{ES: true})
	for i := 0; i < 10; i++ {
		if got := compileUnit(t, parseUnit(t, ir.StageVertex, 100, src), Options{ES: true}); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}
