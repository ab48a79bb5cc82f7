package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_NilInputs(t *testing.T) {
	_, err := Validate(nil, NewSymbolTable(NewBuiltinTable(), NewArena()))
	assert.Error(t, err)
	_, err = Validate(NewBlock(), nil)
	assert.Error(t, err)
}

func TestValidate_WellFormed(t *testing.T) {
	root, symbols, _ := buildTree(t)
	errs, err := Validate(root, symbols)
	require.NoError(t, err)
	assert.Nil(t, errs)
}

func TestValidate_SharedNode(t *testing.T) {
	root, symbols, add := buildTree(t)
	main := root.Statements[1].(*FunctionDefinition)
	main.Body.Append(NewBinary(OpAssign, NewSymbol(add.Left.(*Symbol).ID, "x", add.Type()), add, add.Type()))

	errs, err := Validate(root, symbols)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "shared")
	assert.Equal(t, "main", errs[0].Function)
}

func TestValidate_StaleHandle(t *testing.T) {
	root, symbols, _ := buildTree(t)
	symbols.Arena().Reset()

	errs, err := Validate(root, symbols)
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "does not belong to arena generation")
}

func TestValidate_ReturnType(t *testing.T) {
	s := NewSymbolTable(NewBuiltinTable(), NewArena())
	f := NewScalar(TypeFloat)
	id, _ := s.DeclareFunction(FunctionSig{Name: "f", Return: f})
	fn := &FunctionDefinition{
		Prototype: &FunctionPrototype{Name: "f", Func: id, Return: f},
		Body:      NewBlock(NewBranch(OpReturn, NewIntConstant(1))),
	}

	errs, err := Validate(NewBlock(fn), s)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "return of int in function returning float")
}

func TestValidate_BreakOutsideLoop(t *testing.T) {
	s := NewSymbolTable(NewBuiltinTable(), NewArena())
	id, _ := s.DeclareFunction(FunctionSig{Name: "main", Return: Void})
	body := NewBlock(NewBranch(OpBreak, nil))
	loop := &Loop{Kind: LoopWhile, Cond: NewConstantUnion([]Constant{BoolConst(true)}, NewScalar(TypeBool)), Body: NewBlock(NewBranch(OpBreak, nil))}
	body.Append(loop)
	fn := &FunctionDefinition{Prototype: &FunctionPrototype{Name: "main", Func: id, Return: Void}, Body: body}

	errs, err := Validate(NewBlock(fn), s)
	require.NoError(t, err)
	require.Len(t, errs, 1, "only the break outside the loop is reported")
	assert.Contains(t, errs[0].Message, "outside a loop")
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Message: "bad", Function: "main", Pos: Pos{Line: 3, Column: 5}}
	assert.Equal(t, "in function main, 3:5: bad", e.Error())
	assert.Equal(t, "bad", ValidationError{Message: "bad"}.Error())
}
