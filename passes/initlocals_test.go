package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/ir"
)

func TestInitializeUninitializedLocals(t *testing.T) {
	res := parse(t, ir.StageFragment, `precision mediump float;
uniform vec4 u;
void main() {
    float f;
    ivec2 i;
    bool b;
    mat2 m;
    vec4 given = u;
    gl_FragColor = vec4(f, float(i.x), b ? 1.0 : 0.0, m[0][0]) + given;
}`)

	assert.Equal(t, 4, InitializeUninitializedLocals(res.Tree))

	body := mainBody(t, res.Tree)
	require.Len(t, body.Statements, 6)
	for i, want := range []string{"f", "i", "b", "m"} {
		decl, ok := body.Statements[i].(*ir.Declaration)
		require.True(t, ok)
		init, ok := decl.Vars[0].(*ir.Binary)
		require.True(t, ok, want)
		assert.Equal(t, ir.OpInitialize, init.Op)
		assert.Equal(t, want, decl.DeclaredSymbol(0).Name)

		zero, ok := init.Right.(*ir.ConstantUnion)
		require.True(t, ok)
		assert.Equal(t, init.Left.Type().ComponentCount(), len(zero.Values))
		for _, v := range zero.Values {
			assert.True(t, v.Equal(ir.IntConst(0).Cast(v.Kind)), "%s: %s", want, v)
		}
	}
	requireValid(t, res)
}

func TestInitializeUninitializedLocalArrays(t *testing.T) {
	res := parse(t, ir.StageVertex, `attribute vec4 a;
void main() {
    vec2 arr[3];
    gl_Position = a + vec4(arr[0], arr[2]);
}`)

	assert.Equal(t, 1, InitializeUninitializedLocals(res.Tree))

	body := mainBody(t, res.Tree)
	require.Len(t, body.Statements, 5)
	for i := 1; i <= 3; i++ {
		assign, ok := body.Statements[i].(*ir.Binary)
		require.True(t, ok)
		assert.Equal(t, ir.OpAssign, assign.Op)
		index, ok := assign.Left.(*ir.Binary)
		require.True(t, ok)
		assert.Equal(t, ir.OpIndexDirect, index.Op)
		assert.Equal(t, "vec2", assign.Right.Type().String())
	}
	requireValid(t, res)
}

func TestInitializeUninitializedLocalsSkipsGlobals(t *testing.T) {
	res := parse(t, ir.StageVertex, `attribute vec4 a;
vec4 g;
void main() {
    const float c = 2.0;
    float k = 1.0;
    gl_Position = a * c * k + g;
}`)
	before := ir.Dump(res.Tree)

	assert.Zero(t, InitializeUninitializedLocals(res.Tree))
	assert.Equal(t, before, ir.Dump(res.Tree))
}

func TestInitializeUninitializedLocalsInLoopHeader(t *testing.T) {
	res := parse(t, ir.StageVertex, `attribute vec4 a;
void main() {
    vec4 p = a;
    for (int i; i < 4; ++i) { p += a; }
    gl_Position = p;
}`)

	assert.Equal(t, 1, InitializeUninitializedLocals(res.Tree))
	body := mainBody(t, res.Tree)
	loop, ok := body.Statements[1].(*ir.Loop)
	require.True(t, ok)
	decl := loop.Init.(*ir.Declaration)
	_, ok = decl.Vars[0].(*ir.Binary)
	assert.True(t, ok)
	requireValid(t, res)
}
