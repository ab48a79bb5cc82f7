package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuiltins() *BuiltinTable {
	b := NewBuiltinTable()
	vec4 := NewVector(TypeFloat, 4)
	b.Add(Entry{Name: "gl_Position", Type: vec4.WithQualifier(QualPosition), Stages: StagesVertex})
	b.Add(Entry{Name: "gl_FragColor", Type: vec4.WithQualifier(QualFragColor), Stages: StagesFragment})
	for _, n := range []uint8{1, 2, 3, 4} {
		typ := NewVector(TypeFloat, n)
		if n == 1 {
			typ = NewScalar(TypeFloat)
		}
		b.Add(Entry{Name: "cos", Type: typ, Function: &FunctionSig{Name: "cos", Params: []Type{typ}, Return: typ, Op: OpCos}})
	}
	b.Freeze()
	return b
}

func TestBuiltinTable_FrozenRejectsAdd(t *testing.T) {
	b := newTestBuiltins()
	assert.True(t, b.Frozen())
	assert.Panics(t, func() { b.Add(Entry{Name: "late"}) })
	assert.Equal(t, 6, b.Len())
	assert.Equal(t, []string{"cos", "gl_FragColor", "gl_Position"}, b.Names())
}

func TestSymbolTable_Scopes(t *testing.T) {
	s := NewSymbolTable(newTestBuiltins(), NewArena())

	outer, ok := s.DeclareVariable("x", NewScalar(TypeFloat), SymbolUser)
	require.True(t, ok)
	_, ok = s.DeclareVariable("x", NewScalar(TypeInt), SymbolUser)
	assert.False(t, ok, "redeclaration in the same scope")

	s.Push()
	inner, ok := s.DeclareVariable("x", NewScalar(TypeInt), SymbolUser)
	require.True(t, ok, "shadowing in a nested scope")
	e, _ := s.Lookup("x")
	assert.Equal(t, inner, e.ID)
	assert.Equal(t, 1, e.Depth)

	s.Pop()
	e, _ = s.Lookup("x")
	assert.Equal(t, outer, e.ID)
	assert.True(t, s.AtGlobalLevel())
	assert.Panics(t, s.Pop)
}

func TestSymbolTable_BuiltinFilter(t *testing.T) {
	s := NewSymbolTable(newTestBuiltins(), NewArena())
	s.SetFilter(func(e *Entry) bool { return e.Stages.Has(StageFragment) })

	_, ok := s.Lookup("gl_Position")
	assert.False(t, ok)
	e, ok := s.Lookup("gl_FragColor")
	require.True(t, ok)
	assert.True(t, e.ID.IsBuiltin())
	assert.Equal(t, SymbolBuiltIn, e.Kind)
}

func TestSymbolTable_LookupFunction(t *testing.T) {
	s := NewSymbolTable(newTestBuiltins(), NewArena())

	arg := NewVector(TypeFloat, 3).WithPrecision(PrecisionMedium)
	e, ok := s.LookupFunction("cos", []Type{arg})
	require.True(t, ok)
	assert.Equal(t, OpCos, e.Function.Op)

	_, ok = s.LookupFunction("cos", []Type{NewScalar(TypeInt)})
	assert.False(t, ok)
	assert.True(t, s.HasFunctionNamed("cos"))

	// A user overload hides every built-in overload of the same name.
	_, ok = s.DeclareFunction(FunctionSig{Name: "cos", Params: []Type{NewScalar(TypeInt)}, Return: NewScalar(TypeInt)})
	require.True(t, ok)
	_, ok = s.LookupFunction("cos", []Type{arg})
	assert.False(t, ok)
	e, ok = s.LookupFunction("cos", []Type{NewScalar(TypeInt)})
	require.True(t, ok)
	assert.Equal(t, SymbolUser, e.Kind)
}

func TestSymbolTable_DeclareFunction(t *testing.T) {
	s := NewSymbolTable(newTestBuiltins(), NewArena())
	sig := FunctionSig{Name: "f", Params: []Type{NewScalar(TypeFloat)}, Return: NewScalar(TypeFloat)}

	first, ok := s.DeclareFunction(sig)
	require.True(t, ok)
	again, ok := s.DeclareFunction(sig)
	require.True(t, ok)
	assert.Equal(t, first, again, "prototype and definition share a handle")

	sig.Return = NewScalar(TypeInt)
	_, ok = s.DeclareFunction(sig)
	assert.False(t, ok, "overload differing only in return type")

	s.DeclareVariable("g", NewScalar(TypeFloat), SymbolUser)
	_, ok = s.DeclareFunction(FunctionSig{Name: "g", Return: Void})
	assert.False(t, ok)
}

func TestSymbolTable_Internal(t *testing.T) {
	s := NewSymbolTable(newTestBuiltins(), NewArena())
	id := s.AddInternalVariable("angle_DrawID", NewScalar(TypeInt))

	e := s.Entry(id)
	assert.Equal(t, SymbolInternal, e.Kind)
	assert.Equal(t, "tmp_1", s.UniqueName("tmp"))
	assert.Equal(t, "tmp_2", s.UniqueName("tmp"))
}
