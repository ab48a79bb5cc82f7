package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/translator/ir"
)

const drawIDShader = `#extension GL_ANGLE_multi_draw : require
attribute vec4 a;
float f(int i) { return float(i); }
void main() {
    float x = float(gl_DrawID);
    x += f(gl_DrawID);
    gl_Position = a * float(gl_DrawID) + vec4(x);
}`

func TestEmulateGLDrawID(t *testing.T) {
	res := parse(t, ir.StageVertex, drawIDShader)
	before := countSymbols(res.Tree)
	require.Equal(t, 3, before.counts["gl_DrawID"])
	stmts := len(res.Tree.Statements)

	assert.Equal(t, 3, EmulateGLDrawID(res.Tree, res.Symbols))

	after := countSymbols(res.Tree)
	assert.Zero(t, after.counts["gl_DrawID"])
	// Three reads plus the declaration.
	assert.Equal(t, 4, after.counts[DrawIDName])
	assert.Len(t, after.ids[DrawIDName], 1)

	require.Len(t, res.Tree.Statements, stmts+1)
	decl, ok := res.Tree.Statements[2].(*ir.Declaration)
	require.True(t, ok)
	sym := decl.DeclaredSymbol(0)
	assert.Equal(t, DrawIDName, sym.Name)
	assert.Equal(t, ir.QualUniform, sym.Type().Qualifier)
	_, ok = res.Tree.Statements[3].(*ir.FunctionDefinition)
	assert.True(t, ok)

	e := res.Symbols.Entry(sym.ID)
	assert.Equal(t, ir.SymbolInternal, e.Kind)
	assert.Equal(t, ir.TypeInt, e.Type.Basic)

	requireValid(t, res)
}

func TestEmulateGLDrawIDWithoutReads(t *testing.T) {
	res := parse(t, ir.StageVertex, "attribute vec4 a;\nvoid main() { gl_Position = a; }")
	before := ir.Dump(res.Tree)

	assert.Zero(t, EmulateGLDrawID(res.Tree, res.Symbols))
	assert.Equal(t, before, ir.Dump(res.Tree))
	_, ok := res.Symbols.Lookup(DrawIDName)
	assert.False(t, ok)
}
