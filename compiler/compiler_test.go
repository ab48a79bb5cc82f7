package compiler

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/translator/emulator"
	"github.com/gogpu/translator/ir"
)

func TestMain(m *testing.M) {
	Initialize()
	code := m.Run()
	Finalize()
	os.Exit(code)
}

const vertexShader = `attribute vec4 a_position;
attribute vec2 a_uv;
uniform mat4 u_mvp;
uniform vec4 u_unused;
varying vec2 v_uv;
invariant gl_Position;
void main() {
    v_uv = a_uv;
    gl_Position = u_mvp * a_position;
}`

const fragmentShader = `precision mediump float;
uniform sampler2D s_tex;
uniform vec4 u_tint[3];
varying vec2 v_uv;
void main() {
    gl_FragColor = texture2D(s_tex, v_uv) * u_tint[1] * vec4(gl_FragCoord.x);
}`

func newCompiler(t *testing.T, stage ir.ShaderStage, spec Spec, profile OutputProfile, r Resources) *Compiler {
	t.Helper()
	c, err := Construct(stage, spec, profile)
	require.NoError(t, err)
	t.Cleanup(c.Destroy)
	require.NoError(t, c.Init(r))
	return c
}

func compile(t *testing.T, stage ir.ShaderStage, profile OutputProfile, options CompileOptions, src string) *Compiler {
	t.Helper()
	c := newCompiler(t, stage, SpecGLES31, profile, DefaultResources())
	require.True(t, c.Compile([]string{src}, options), c.InfoLog())
	return c
}

func names(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func find(t *testing.T, vars []Variable, name string) Variable {
	t.Helper()
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	require.Failf(t, "variable not found", "%q not in %v", name, names(vars))
	return Variable{}
}

func TestConstructRejectsBadArguments(t *testing.T) {
	_, err := Construct(ir.StageVertex, SpecGLES2, OutputProfile(200))
	assert.Error(t, err)
	_, err = Construct(ir.ShaderStage(99), SpecGLES2, OutputGLSL330)
	assert.Error(t, err)
}

func TestInitializeAndFinalize(t *testing.T) {
	assert.True(t, Initialize())
	assert.True(t, Finalize())

	c, err := Construct(ir.StageVertex, SpecGLES2, OutputESSL100)
	require.NoError(t, err)
	defer c.Destroy()
	require.NoError(t, c.Init(DefaultResources()))

	// Drop the reference TestMain holds.
	require.True(t, Finalize())
	_, err = Construct(ir.StageVertex, SpecGLES2, OutputESSL100)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, Finalize())

	// Compilers constructed before the last Finalize keep working.
	assert.True(t, c.Compile([]string{vertexShader}, ObjectCode), c.InfoLog())

	require.True(t, Initialize())
	_, err = Construct(ir.StageVertex, SpecGLES2, OutputESSL100)
	assert.NoError(t, err)
}

func TestLifecycleStates(t *testing.T) {
	c, err := Construct(ir.StageFragment, SpecGLES2, OutputGLSL330)
	require.NoError(t, err)
	assert.Equal(t, StateConstructed, c.State())

	assert.False(t, c.Compile([]string{fragmentShader}, ObjectCode))
	assert.Contains(t, c.InfoLog(), "Init has not been called")
	assert.Equal(t, StateConstructed, c.State())

	require.NoError(t, c.Init(DefaultResources()))
	assert.Equal(t, StateInitialized, c.State())

	assert.False(t, c.Compile([]string{"void main() { x = 1.0; }"}, ObjectCode))
	assert.Equal(t, StateFailed, c.State())

	assert.True(t, c.Compile([]string{fragmentShader}, ObjectCode), c.InfoLog())
	assert.Equal(t, StateCompiled, c.State())

	c.Destroy()
	assert.Equal(t, StateDestroyed, c.State())
	c.Destroy()
	assert.Panics(t, func() { c.Compile([]string{fragmentShader}, ObjectCode) })
}

func TestInitRejectsInvalidResources(t *testing.T) {
	c, err := Construct(ir.StageVertex, SpecGLES2, OutputESSL100)
	require.NoError(t, err)
	defer c.Destroy()

	r := DefaultResources()
	r.MaxVertexAttribs = -1
	assert.Error(t, c.Init(r))
	assert.Equal(t, StateConstructed, c.State())
}

func TestCompileErrorsAreAllOrNothing(t *testing.T) {
	c := newCompiler(t, ir.StageFragment, SpecGLES2, OutputGLSL330, DefaultResources())
	ok := c.Compile([]string{`precision mediump float;
void main() {
    gl_FragColor = vec4(undeclared);
}`}, ObjectCode|Variables)
	assert.False(t, ok)
	assert.Contains(t, c.InfoLog(), "ERROR: 0:3: ")
	assert.Contains(t, c.InfoLog(), "undeclared")
	assert.Empty(t, c.ObjectCode())
	assert.Nil(t, c.Reflection())
	assert.Nil(t, c.Uniforms())
}

func TestRecompileResetsResults(t *testing.T) {
	c := newCompiler(t, ir.StageFragment, SpecGLES2, OutputGLSL330, DefaultResources())

	require.False(t, c.Compile([]string{"void main() { gl_FragColor = 1; }"}, ObjectCode))
	require.NotEmpty(t, c.InfoLog())

	require.True(t, c.Compile([]string{fragmentShader}, ObjectCode), c.InfoLog())
	assert.Empty(t, c.InfoLog())
	first := c.ObjectCode()
	require.NotEmpty(t, first)

	require.True(t, c.Compile([]string{fragmentShader}, ObjectCode), c.InfoLog())
	assert.Equal(t, first, c.ObjectCode())

	// Without the option there is no object code, even after a compile
	// that produced some.
	require.True(t, c.Compile([]string{fragmentShader}, Variables))
	assert.Empty(t, c.ObjectCode())
	assert.NotNil(t, c.Reflection())
}

func TestMultipleSources(t *testing.T) {
	c := newCompiler(t, ir.StageVertex, SpecGLES2, OutputESSL100, DefaultResources())
	require.True(t, c.Compile([]string{"attribute vec4 a;\n", "void main() { gl_Position = a; }"}, ObjectCode), c.InfoLog())
	assert.Contains(t, c.ObjectCode(), "gl_Position = a;")
}

func TestShaderVersionAndSpec(t *testing.T) {
	src := "#version 300 es\nin vec4 a;\nvoid main() { gl_Position = a; }"

	c := newCompiler(t, ir.StageVertex, SpecGLES3, OutputESSL300, DefaultResources())
	require.True(t, c.Compile([]string{src}, ObjectCode), c.InfoLog())
	assert.Equal(t, 300, c.ShaderVersion())
	assert.Equal(t, 300, c.OutputVersion())
	assert.True(t, strings.HasPrefix(c.ObjectCode(), "#version 300 es\n"))

	// A WebGL 1 context only accepts ESSL 1.00.
	c = newCompiler(t, ir.StageVertex, SpecWebGL, OutputESSL300, DefaultResources())
	assert.False(t, c.Compile([]string{src}, ObjectCode))
	assert.Contains(t, c.InfoLog(), "ERROR: 0:1: ")

	c = newCompiler(t, ir.StageVertex, SpecGLES2, OutputHLSL5_0, DefaultResources())
	require.True(t, c.Compile([]string{vertexShader}, ObjectCode), c.InfoLog())
	assert.Equal(t, 100, c.ShaderVersion())
	assert.Zero(t, c.OutputVersion())
}

func TestComputeVersionMinimum(t *testing.T) {
	src := `#version 310 es
layout(local_size_x = 8) in;
shared float s[8];
void main() {
    s[0] = 1.0;
    barrier();
}`
	for _, profile := range []OutputProfile{OutputGLSLCompatibility, OutputGLSL130, OutputGLSL330, OutputGLSL450} {
		t.Run(profile.String(), func(t *testing.T) {
			c := compile(t, ir.StageCompute, profile, ObjectCode, src)
			assert.GreaterOrEqual(t, c.OutputVersion(), 430)
			assert.Contains(t, c.ObjectCode(), fmt.Sprintf("#version %d", c.OutputVersion()))
		})
	}
	c := compile(t, ir.StageCompute, OutputESSL100, ObjectCode|Variables, src)
	assert.Equal(t, 310, c.OutputVersion())
	assert.Equal(t, [3]int{8, 1, 1}, c.Reflection().LocalSize)
}

func TestRegisteredEmulation(t *testing.T) {
	calling := `attribute vec4 a;
void main() {
    gl_Position = cos(a);
}`
	notCalling := `attribute vec4 a;
void main() {
    gl_Position = cos(a.x) * a;
}`
	const helper = "vec4 cos_emu(vec4 x)\n{\n    return 1.0 - 0.5 * x * x;\n}\n"

	c := newCompiler(t, ir.StageVertex, SpecGLES2, OutputGLSL330, DefaultResources())
	c.Emulator().AddEmulatedFunction(emulator.NewKey(ir.OpCos, ir.NewVector(ir.TypeFloat, 4)), helper)

	require.True(t, c.Compile([]string{calling}, ObjectCode|EmulateBuiltInFunctions), c.InfoLog())
	out := c.ObjectCode()
	assert.Equal(t, 1, strings.Count(out, "vec4 cos_emu(vec4 x)"))
	assert.Contains(t, out, "gl_Position = cos_emu(a);")
	assert.Less(t, strings.Index(out, "vec4 cos_emu("), strings.Index(out, "void main()"))

	require.True(t, c.Compile([]string{notCalling}, ObjectCode|EmulateBuiltInFunctions), c.InfoLog())
	assert.NotContains(t, c.ObjectCode(), "cos_emu")

	// GLSL output emulates only on request.
	require.True(t, c.Compile([]string{calling}, ObjectCode), c.InfoLog())
	assert.NotContains(t, c.ObjectCode(), "cos_emu")
	assert.Contains(t, c.ObjectCode(), "cos(a)")
}

func TestEmulatedPrecisionDefine(t *testing.T) {
	const guard = "#ifdef GL_FRAGMENT_PRECISION_HIGH\n#define emu_precision highp\n#else\n#define emu_precision mediump\n#endif\n"
	fragment := `precision mediump float;
varying vec2 v;
void main() {
    gl_FragColor = vec4(atan(v.x, v.y));
}`
	fragment300 := `#version 300 es
precision mediump float;
in vec2 v;
out vec4 color;
void main() {
    color = vec4(atan(v.x, v.y));
}`
	vertex := `attribute vec2 a;
void main() {
    gl_Position = vec4(atan(a.x, a.y));
}`
	tests := []struct {
		name    string
		stage   ir.ShaderStage
		profile OutputProfile
		src     string
		guarded bool
	}{
		{"essl100 fragment", ir.StageFragment, OutputESSL100, fragment, true},
		{"essl300 fragment", ir.StageFragment, OutputESSL300, fragment300, false},
		{"essl100 vertex", ir.StageVertex, OutputESSL100, vertex, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compile(t, tt.stage, tt.profile, ObjectCode|EmulateBuiltInFunctions, tt.src)
			out := c.ObjectCode()
			require.Contains(t, out, "atan_emu(")
			if tt.guarded {
				assert.Contains(t, out, guard)
			} else {
				assert.NotContains(t, out, "GL_FRAGMENT_PRECISION_HIGH")
				assert.Contains(t, out, "#define emu_precision highp\n")
			}
		})
	}
}

func TestNonGLSLOutputAlwaysEmulates(t *testing.T) {
	src := `precision mediump float;
varying vec2 v;
void main() {
    gl_FragColor = vec4(atan(v.x, v.y));
}`
	for _, profile := range []OutputProfile{OutputHLSL3_0, OutputHLSL5_0, OutputMSL} {
		t.Run(profile.String(), func(t *testing.T) {
			c := compile(t, ir.StageFragment, profile, ObjectCode, src)
			assert.Contains(t, c.ObjectCode(), "atan_emu(")
		})
	}
}

func TestInvariantRemovalThreshold(t *testing.T) {
	fragment := `precision mediump float;
varying vec4 v_color;
invariant v_color;
void main() {
    gl_FragColor = v_color;
}`
	vertex := `attribute vec4 a_position;
varying vec4 v_color;
invariant v_color;
void main() {
    v_color = a_position;
    gl_Position = a_position;
}`
	tests := []struct {
		stage   ir.ShaderStage
		profile OutputProfile
		options CompileOptions
		kept    bool
	}{
		{ir.StageFragment, OutputGLSL330, 0, true},
		{ir.StageFragment, OutputGLSL410, 0, true},
		{ir.StageFragment, OutputGLSL420, 0, false},
		{ir.StageFragment, OutputGLSL450, 0, false},
		{ir.StageFragment, OutputESSL100, 0, true},
		{ir.StageFragment, OutputGLSLCompatibility, 0, true},

		// Vertex outputs keep their invariance unless asked.
		{ir.StageVertex, OutputGLSL410, RemoveVertexInvariantDeclarations, true},
		{ir.StageVertex, OutputGLSL420, 0, true},
		{ir.StageVertex, OutputGLSL450, 0, true},
		{ir.StageVertex, OutputGLSL420, RemoveVertexInvariantDeclarations, false},
		{ir.StageVertex, OutputGLSL450, RemoveVertexInvariantDeclarations, false},
		{ir.StageVertex, OutputESSL300, RemoveVertexInvariantDeclarations, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s/%s", tt.stage, tt.profile, tt.options), func(t *testing.T) {
			src := fragment
			if tt.stage == ir.StageVertex {
				src = vertex
			}
			c := compile(t, tt.stage, tt.profile, ObjectCode|IntermediateTree|tt.options, src)
			if tt.kept {
				assert.Contains(t, c.ObjectCode(), "invariant v_color;")
			} else {
				assert.NotContains(t, c.ObjectCode(), "invariant v_color;")
				assert.NotContains(t, c.InfoLog(), "Invariant Declaration")
			}
		})
	}
}

func TestDrawIDEmulation(t *testing.T) {
	src := `#extension GL_ANGLE_multi_draw : require
attribute vec4 a_position;
void main() {
    float x = float(gl_DrawID);
    float y = float(gl_DrawID) * 2.0;
    gl_Position = a_position + vec4(x, y, float(gl_DrawID), 0.0);
}`
	r := DefaultResources()
	r.ANGLEMultiDraw = true

	for _, profile := range []OutputProfile{OutputGLSL330, OutputESSL100, OutputHLSL5_0, OutputMSL} {
		t.Run(profile.String(), func(t *testing.T) {
			c := newCompiler(t, ir.StageVertex, SpecGLES2, profile, r)
			require.True(t, c.Compile([]string{src}, ObjectCode|Variables|EmulateDrawID|ValidateAST), c.InfoLog())
			out := c.ObjectCode()
			assert.NotContains(t, out, "gl_DrawID")
			assert.Contains(t, out, "angle_DrawID")
			if profile.IsGLSL() {
				assert.Equal(t, 1, strings.Count(out, "angle_DrawID;"), out)
				assert.Equal(t, 4, strings.Count(out, "angle_DrawID"), out)
			}

			u := find(t, c.Uniforms(), "angle_DrawID")
			assert.Equal(t, "int", u.Type)
			assert.True(t, u.StaticUse)
		})
	}

	// Without emulation only GLSL can express gl_DrawID.
	c := newCompiler(t, ir.StageVertex, SpecGLES2, OutputMSL, r)
	assert.False(t, c.Compile([]string{src}, ObjectCode))
	assert.Contains(t, c.InfoLog(), "gl_DrawID")

	// Without the extension the shader does not compile at all.
	c = newCompiler(t, ir.StageVertex, SpecGLES2, OutputGLSL330, DefaultResources())
	assert.False(t, c.Compile([]string{src}, ObjectCode|EmulateDrawID))
	assert.Contains(t, c.InfoLog(), "GL_ANGLE_multi_draw")
}

func TestOptionalPasses(t *testing.T) {
	src := `attribute vec4 a;
void main() {
    vec4 p;
    mat2 m = mat2(a.xy, a.zw);
    p = vec4(m[0], m[1]);
    gl_Position = p;
}`
	c := compile(t, ir.StageVertex, OutputGLSL330, ObjectCode|ValidateAST, src)
	assert.Contains(t, c.ObjectCode(), "vec4 p;")
	assert.Contains(t, c.ObjectCode(), "mat2(a.xy, a.zw)")

	c = compile(t, ir.StageVertex, OutputGLSL330,
		ObjectCode|ValidateAST|InitializeUninitializedLocals|ScalarizeVecAndMatConstructorArgs, src)
	out := c.ObjectCode()
	assert.NotContains(t, out, "vec4 p;")
	assert.NotContains(t, out, "mat2(a.xy, a.zw)")
	assert.Contains(t, out, "vec4 p = vec4(0.0")
}

func TestIntermediateTree(t *testing.T) {
	c := compile(t, ir.StageVertex, OutputGLSL330, IntermediateTree, vertexShader)
	assert.Empty(t, c.ObjectCode())
	assert.Contains(t, c.InfoLog(), "Function Prototype: main")
	assert.Contains(t, c.InfoLog(), "'u_mvp'")
	assert.NotContains(t, c.InfoLog(), "ERROR")
}

func TestReflectionVertex(t *testing.T) {
	c := compile(t, ir.StageVertex, OutputGLSL330, Variables, vertexShader)

	assert.Equal(t, []string{"u_mvp", "u_unused"}, names(c.Uniforms()))
	mvp := find(t, c.Uniforms(), "u_mvp")
	assert.Equal(t, "mat4", mvp.Type)
	assert.Equal(t, "highp", mvp.Precision)
	assert.True(t, mvp.StaticUse)
	assert.Equal(t, -1, mvp.Location)
	assert.False(t, find(t, c.Uniforms(), "u_unused").StaticUse)

	assert.Equal(t, []string{"a_position", "a_uv"}, names(c.Attributes()))
	assert.Equal(t, []string{"v_uv", "gl_Position"}, names(c.OutputVaryings()))
	assert.Equal(t, "smooth", find(t, c.OutputVaryings(), "v_uv").Interpolation)

	pos := find(t, c.OutputVaryings(), "gl_Position")
	assert.True(t, pos.BuiltIn)
	assert.True(t, pos.Invariant)
	assert.True(t, pos.StaticUse)

	assert.Empty(t, c.InputVaryings())
	assert.Empty(t, c.OutputVariables())
	assert.Empty(t, c.InterfaceBlocks())
}

func TestReflectionFragment(t *testing.T) {
	c := compile(t, ir.StageFragment, OutputESSL100, Variables, fragmentShader)

	assert.Equal(t, []string{"s_tex", "u_tint"}, names(c.Uniforms()))
	tint := find(t, c.Uniforms(), "u_tint")
	assert.Equal(t, "vec4", tint.Type)
	assert.Equal(t, 3, tint.ArraySize)
	assert.Equal(t, "mediump", tint.Precision)
	assert.Equal(t, "sampler2D", find(t, c.Uniforms(), "s_tex").Type)

	assert.ElementsMatch(t, []string{"v_uv", "gl_FragCoord"}, names(c.InputVaryings()))
	assert.Equal(t, []string{"gl_FragColor"}, names(c.OutputVariables()))
	assert.Empty(t, c.Attributes())
}

func TestReflectionArraySize(t *testing.T) {
	typ := ir.NewScalar(ir.TypeFloat).WithQualifier(ir.QualUniform)
	typ.ArraySizes = []uint32{3}
	v, err := newVariable(ir.NewSymbol(1, "u_weights", typ))
	require.NoError(t, err)
	assert.Equal(t, 3, v.ArraySize)

	typ.ArraySizes = []uint32{math.MaxUint32}
	v, err = newVariable(ir.NewSymbol(1, "u_huge", typ))
	if strconv.IntSize == 32 {
		require.Error(t, err)
		assert.Contains(t, err.Error(), `array size of "u_huge"`)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint32), uint64(v.ArraySize))
}

func TestReflectionMessagePack(t *testing.T) {
	c := compile(t, ir.StageVertex, OutputHLSL5_0, Variables, vertexShader)
	data, err := MarshalReflection(c.Reflection())
	require.NoError(t, err)

	got, err := UnmarshalReflection(data)
	require.NoError(t, err)
	assert.Equal(t, c.Reflection(), got)

	_, err = UnmarshalReflection([]byte{0xc1})
	assert.Error(t, err)
}

func TestResourceLimits(t *testing.T) {
	tests := []struct {
		name   string
		stage  ir.ShaderStage
		modify func(*Resources)
		src    string
		want   string
	}{
		{
			name:  "uniform vectors",
			stage: ir.StageFragment,
			src:   "precision mediump float;\nuniform vec4 u[300];\nvoid main() { gl_FragColor = u[0]; }",
			want:  "ERROR: 0:2: 'u' : too many uniform vectors (300), the maximum is 224",
		},
		{
			name:   "matrices count columns",
			stage:  ir.StageVertex,
			modify: func(r *Resources) { r.MaxVertexUniformVectors = 7 },
			src:    "uniform mat4 a;\nuniform mat4 b;\nvoid main() { gl_Position = a * b[0]; }",
			want:   "ERROR: 0:2: 'b' : too many uniform vectors (8), the maximum is 7",
		},
		{
			name:   "attributes",
			stage:  ir.StageVertex,
			modify: func(r *Resources) { r.MaxVertexAttribs = 1 },
			src:    "attribute vec4 a;\nattribute vec4 b;\nvoid main() { gl_Position = a + b; }",
			want:   "ERROR: 0:2: 'b' : too many attributes (2), the maximum is 1",
		},
		{
			name:   "varyings",
			stage:  ir.StageVertex,
			modify: func(r *Resources) { r.MaxVaryingVectors = 2 },
			src:    "varying vec4 v[3];\nvoid main() { v[0] = vec4(0.0); gl_Position = v[0]; }",
			want:   "ERROR: 0:1: 'v' : too many varying vectors (3), the maximum is 2",
		},
		{
			name:   "samplers",
			stage:  ir.StageFragment,
			modify: func(r *Resources) { r.MaxTextureImageUnits = 1 },
			src: `precision mediump float;
uniform sampler2D a;
uniform sampler2D b;
void main() { gl_FragColor = texture2D(a, vec2(0.0)) + texture2D(b, vec2(0.0)); }`,
			want: "ERROR: 0:3: 'b' : too many samplers (2), the maximum is 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultResources()
			if tt.modify != nil {
				tt.modify(&r)
			}
			c := newCompiler(t, tt.stage, SpecGLES2, OutputGLSL330, r)
			assert.False(t, c.Compile([]string{tt.src}, ObjectCode))
			assert.Contains(t, c.InfoLog(), tt.want)
			assert.Equal(t, 1, strings.Count(c.InfoLog(), "ERROR"))
			assert.Empty(t, c.ObjectCode())
		})
	}
}

func TestResourceLimitConstants(t *testing.T) {
	r := DefaultResources()
	r.MaxDrawBuffers = 8
	c := newCompiler(t, ir.StageFragment, SpecGLES2, OutputGLSL330, r)
	require.True(t, c.Compile([]string{`precision mediump float;
void main() {
    gl_FragColor = vec4(float(gl_MaxDrawBuffers));
}`}, ObjectCode), c.InfoLog())
	assert.Contains(t, c.ObjectCode(), "8.0")
}

func TestWarningsDoNotFailCompile(t *testing.T) {
	c := newCompiler(t, ir.StageVertex, SpecGLES2, OutputGLSL330, DefaultResources())
	require.True(t, c.Compile([]string{"#extension GL_FOO_bar : enable\nvoid main() { gl_Position = vec4(0.0); }"}, ObjectCode))
	assert.Equal(t, "WARNING: 0:1: 'GL_FOO_bar' : extension is not supported\n", c.InfoLog())
	assert.NotEmpty(t, c.ObjectCode())
}

func TestPassLogging(t *testing.T) {
	var buf bytes.Buffer
	c := newCompiler(t, ir.StageVertex, SpecGLES2, OutputGLSL450, DefaultResources())
	c.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	require.True(t, c.Compile([]string{vertexShader}, ObjectCode|InitializeUninitializedLocals), c.InfoLog())
	out := buf.String()
	assert.Contains(t, out, "msg=compile")
	assert.Contains(t, out, `name="initialize uninitialized locals"`)
	assert.NotContains(t, out, `name="remove invariant declarations"`)
	assert.Contains(t, out, "msg=\"target version\" version=450")
	assert.NotContains(t, out, "emulate gl_DrawID")

	buf.Reset()
	require.True(t, c.Compile([]string{vertexShader}, ObjectCode|RemoveVertexInvariantDeclarations), c.InfoLog())
	out = buf.String()
	assert.Contains(t, out, `name="remove invariant declarations" changes=0`)
	assert.Contains(t, out, "msg=\"target version\" version=450")
	assert.NotContains(t, out, "emulate gl_DrawID")
}

func TestEveryProfileIsDeterministic(t *testing.T) {
	shaders := []struct {
		stage ir.ShaderStage
		src   string
	}{
		{ir.StageVertex, vertexShader},
		{ir.StageFragment, fragmentShader},
	}
	for _, profile := range Profiles() {
		for _, sh := range shaders {
			t.Run(fmt.Sprintf("%s/%s", profile, sh.stage), func(t *testing.T) {
				a := compile(t, sh.stage, profile, ObjectCode|Variables, sh.src)
				b := compile(t, sh.stage, profile, ObjectCode|Variables, sh.src)
				require.NotEmpty(t, a.ObjectCode())
				assert.Equal(t, a.ObjectCode(), b.ObjectCode())
				assert.Equal(t, a.Reflection(), b.Reflection())
			})
		}
	}
}

func concurrentSource(i int) string {
	return fmt.Sprintf(`precision mediump float;
uniform vec4 u_%d;
void main() {
    gl_FragColor = u_%d * %d.0 + vec4(atan(u_%d.x, u_%d.y));
}`, i, i, i%97, i, i)
}

func TestConcurrentCompilers(t *testing.T) {
	const n = 2000
	profiles := Profiles()
	profileOf := func(i int) OutputProfile { return profiles[i%len(profiles)] }

	type result struct {
		ok   bool
		log  string
		code string
	}
	run := func(i int) (result, error) {
		c, err := Construct(ir.StageFragment, SpecGLES2, profileOf(i))
		if err != nil {
			return result{}, err
		}
		defer c.Destroy()
		if err := c.Init(DefaultResources()); err != nil {
			return result{}, err
		}
		ok := c.Compile([]string{concurrentSource(i)}, ObjectCode|EmulateBuiltInFunctions)
		return result{ok: ok, log: c.InfoLog(), code: c.ObjectCode()}, nil
	}

	want := make([]result, n)
	for i := range want {
		r, err := run(i)
		require.NoError(t, err)
		require.True(t, r.ok, r.log)
		want[i] = r
	}

	got := make([]result, n)
	var g errgroup.Group
	for i := range got {
		g.Go(func() error {
			r, err := run(i)
			got[i] = r
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("compiler %d (%s) differs from the serial result:\n%s\nwant:\n%s", i, profileOf(i), got[i].code, want[i].code)
		}
		assert.Contains(t, got[i].code, fmt.Sprintf("u_%d", i))
	}
}
