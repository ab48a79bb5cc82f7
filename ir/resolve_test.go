package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBinary(t *testing.T) {
	f := NewScalar(TypeFloat)
	i := NewScalar(TypeInt)
	v3 := NewVector(TypeFloat, 3)
	v4 := NewVector(TypeFloat, 4)
	m4 := NewMatrix(4, 4)
	m23 := NewMatrix(2, 3)
	arr := NewScalar(TypeFloat)
	arr.ArraySizes = []uint32{4}

	tests := []struct {
		name  string
		op    Operator
		l, r  Type
		want  string
		isErr bool
	}{
		{"scalar add", OpAdd, f, f, "float", false},
		{"vector times scalar", OpMul, v3, f, "vec3", false},
		{"scalar times vector", OpMul, f, v4, "vec4", false},
		{"matrix times vector", OpMul, m4, v4, "vec4", false},
		{"vector times matrix", OpMul, v3, m23, "vec2", false},
		{"matrix times matrix", OpMul, m23, NewMatrix(4, 2), "mat4x3", false},
		{"vector compare", OpEqual, v3, v3, "bool", false},
		{"scalar less", OpLessThan, f, f, "bool", false},
		{"vector less", OpLessThan, v3, v3, "", true},
		{"mixed basic types", OpAdd, f, i, "", true},
		{"size mismatch", OpAdd, v3, v4, "", true},
		{"index vector", OpIndexDirect, v4, i, "float", false},
		{"index matrix", OpIndexIndirect, m4, i, "vec4", false},
		{"index array", OpIndexDirect, arr, i, "float", false},
		{"float index", OpIndexDirect, v4, f, "", true},
		{"array arithmetic", OpAdd, arr, arr, "", true},
		{"int modulo", OpIMod, i, i, "int", false},
		{"float modulo", OpIMod, f, f, "", true},
		{"compound keeps shape", OpMulAssign, v4, m4, "vec4", false},
		{"compound changes shape", OpMulAssign, f, v3, "", true},
		{"comma", OpComma, f, v3, "vec3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBinary(tt.op, tt.l, tt.r)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestResolveBinary_Precision(t *testing.T) {
	l := NewVector(TypeFloat, 4).WithPrecision(PrecisionMedium)
	r := NewScalar(TypeFloat).WithPrecision(PrecisionHigh)
	got, err := ResolveBinary(OpMul, l, r)
	require.NoError(t, err)
	assert.Equal(t, PrecisionHigh, got.Precision)
	assert.Equal(t, QualTemporary, got.Qualifier)
}

func TestResolveBinary_ErrorMessage(t *testing.T) {
	_, err := ResolveBinary(OpAdd, NewScalar(TypeFloat), NewScalar(TypeInt))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong operand types")
	assert.Contains(t, err.Error(), "'+'")
}

func TestResolveUnary(t *testing.T) {
	got, err := ResolveUnary(OpNegative, NewVector(TypeInt, 2))
	require.NoError(t, err)
	assert.Equal(t, "ivec2", got.String())

	_, err = ResolveUnary(OpLogicalNot, NewScalar(TypeFloat))
	assert.Error(t, err)
	_, err = ResolveUnary(OpBitwiseNot, NewScalar(TypeFloat))
	assert.Error(t, err)
	_, err = ResolveUnary(OpNegative, NewScalar(TypeSampler2D))
	assert.Error(t, err)
}
