package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
)

var testBuiltins = essl.NewBuiltins()

// upperDialect spells identifiers in upper case and refuses bool types,
// so tests can see which hooks the writer calls.
type upperDialect struct {
	BaseDialect
}

func (upperDialect) Name() string { return "upper" }

func (upperDialect) Identifier(sym *ir.Symbol) string {
	return strings.ToUpper(sym.Name)
}

func (upperDialect) TypeName(typ ir.Type) (string, error) {
	if typ.Basic == ir.TypeBool {
		return "", NewError("upper", ErrUnsupportedType, "no bool")
	}
	return typ.BaseName(), nil
}

func (upperDialect) Discard() string { return "kill" }

type glslDialect struct {
	BaseDialect
}

func (glslDialect) Name() string { return "test" }

func parseTree(t *testing.T, stage ir.ShaderStage, src string) *ir.Block {
	t.Helper()
	res, errs := essl.Parse([]string{src}, essl.Options{Stage: stage, Builtins: testBuiltins})
	require.Empty(t, errs, errs.FormatAll())
	return res.Tree
}

func write(t *testing.T, d Dialect, root *ir.Block) string {
	t.Helper()
	w := NewWriter(d)
	require.NoError(t, w.Statements(root))
	return w.String()
}

func TestWriterFunction(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `
attribute vec4 p;
float scale(float x, out float y) {
    y = x;
    return x * 2.0 + 1.0;
}
void main() {
    float y;
    gl_Position = p * scale(p.x, y);
}`)
	got := write(t, glslDialect{}, root)
	assert.Equal(t, `vec4 p;
float scale(float x, out float y)
{
    y = x;
    return ((x * 2.0) + 1.0);
}

void main()
{
    float y;
    gl_Position = (p * scale(p.x, y));
}

`, got)
}

func TestWriterControlFlow(t *testing.T) {
	root := parseTree(t, ir.StageFragment, `
precision mediump float;
uniform int n;
void main() {
    int i = 0;
    while (i < n) {
        i++;
        if (i == 3) {
            continue;
        }
    }
    do {
        --i;
    } while (i > 0);
    if (i < 0) {
        discard;
    } else {
        gl_FragColor = vec4(float(i));
    }
}`)
	got := write(t, glslDialect{}, root)
	assert.Contains(t, got, "    while ((i < n)) {\n        (i++);\n        if ((i == 3)) {\n            continue;\n        }\n    }\n")
	assert.Contains(t, got, "    do {\n        (--i);\n    } while ((i > 0));\n")
	assert.Contains(t, got, "    if ((i < 0)) {\n        discard;\n    } else {\n        gl_FragColor = vec4(float(i));\n    }\n")
}

func TestWriterForLoop(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `
void main() {
    float s = 0.0;
    for (int i = 0; i < 4; i += 2) {
        s += float(i);
    }
    gl_Position = vec4(s);
}`)
	got := write(t, glslDialect{}, root)
	assert.Contains(t, got, "for (int i = 0; (i < 4); i += 2) {")
	assert.Contains(t, got, "s += float(i);")
}

func TestWriterExpressions(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `
uniform vec4 u;
uniform float a[3];
void main() {
    float x = -u.x;
    bool b = !(x > 0.0) ^^ true;
    vec2 v = b ? u.zw : u.xy;
    float y = a[1] + a[int(x)];
    gl_Position = vec4(v, x, y);
}`)
	got := write(t, glslDialect{}, root)
	assert.Contains(t, got, "float x = (-u.x);")
	assert.Contains(t, got, "bool b = ((!(x > 0.0)) ^^ true);")
	assert.Contains(t, got, "vec2 v = (b ? u.zw : u.xy);")
	assert.Contains(t, got, "float y = (a[1] + a[int(x)]);")
	assert.Contains(t, got, "float a[3];")
}

func TestWriterConstants(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `#version 300 es
const mat2 m = mat2(3.0);
const float k[2] = float[2](1.0, 2.5);
const ivec2 iv = ivec2(1, -2);
const bool t = true;
void main() {
    gl_Position = vec4(m[0], k[1], float(iv.y));
}`)
	got := write(t, glslDialect{}, root)
	assert.Contains(t, got, "const mat2 m = mat2(3.0, 0.0, 0.0, 3.0);")
	assert.Contains(t, got, "const float k[2] = float[2](1.0, 2.5);")
	assert.Contains(t, got, "const ivec2 iv = ivec2(1, -2);")
	assert.Contains(t, got, "const bool t = true;")
}

func TestWriterDialectHooks(t *testing.T) {
	root := parseTree(t, ir.StageFragment, `
precision mediump float;
uniform float level;
void main() {
    if (level < 0.5) {
        discard;
    }
    gl_FragColor = vec4(level);
}`)
	got := write(t, upperDialect{}, root)
	assert.Contains(t, got, "float LEVEL;")
	assert.Contains(t, got, "if ((LEVEL < 0.5)) {")
	assert.Contains(t, got, "        kill;")
	assert.Contains(t, got, "GL_FRAGCOLOR = vec4(LEVEL);")
}

func TestWriterPropagatesDialectErrors(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `
void main() {
    bool b = true;
    gl_Position = vec4(b ? 1.0 : 0.0);
}`)
	w := NewWriter(upperDialect{})
	err := w.Statements(root)
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
	assert.Contains(t, err.Error(), "upper UnsupportedType: no bool")
}

func TestWriterInvariant(t *testing.T) {
	root := parseTree(t, ir.StageVertex, `
varying vec4 a;
varying vec4 b;
invariant a, b;
void main() {
    a = vec4(0.0);
    b = a;
    gl_Position = a;
}`)
	got := write(t, glslDialect{}, root)
	assert.Contains(t, got, "invariant a, b;\n")
}

func TestWriterIndentation(t *testing.T) {
	w := NewWriter(glslDialect{})
	w.Line("a")
	w.PushIndent()
	w.Line("b %d", 1)
	w.PushIndent()
	w.Line("")
	w.Line("c")
	w.PopIndent()
	w.PopIndent()
	w.PopIndent()
	w.Line("d")
	assert.Equal(t, "a\n    b 1\n\n        c\nd\n", w.String())
}

func TestErrorFormat(t *testing.T) {
	e := NewError("hlsl", ErrUnsupportedFeature, "%s is not supported", "inverse")
	assert.Equal(t, "hlsl UnsupportedFeature: inverse is not supported", e.Error())

	sym := ir.NewSymbol(0, "x", ir.NewScalar(ir.TypeFloat))
	sym.SetPos(ir.Pos{Line: 3, Column: 7})
	e = NewErrorAt("msl", ErrUnsupportedType, sym, "bad")
	assert.Equal(t, "msl UnsupportedType at 3:7: bad", e.Error())

	assert.False(t, IsUnsupported(NewError("glsl", ErrInvalidVersion, "v")))
	assert.False(t, IsUnsupported(nil))
}

func TestUnitHelpers(t *testing.T) {
	u := &Unit{Extensions: []Extension{
		{Name: "GL_OES_standard_derivatives", Behavior: "enable"},
		{Name: "GL_ANGLE_multi_draw", Behavior: "require"},
	}}
	SortExtensions(u.Extensions)
	assert.Equal(t, "GL_ANGLE_multi_draw", u.Extensions[0].Name)
	assert.True(t, u.HasExtension("GL_OES_standard_derivatives"))
	assert.False(t, u.HasExtension("GL_EXT_frag_depth"))

	var sb strings.Builder
	require.NoError(t, u.WriteEmulatedFunctions(&sb))
	assert.Empty(t, sb.String())
}
