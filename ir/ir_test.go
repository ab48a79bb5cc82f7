package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_BaseName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{NewScalar(TypeFloat), "float"},
		{NewScalar(TypeBool), "bool"},
		{NewVector(TypeFloat, 4), "vec4"},
		{NewVector(TypeInt, 2), "ivec2"},
		{NewVector(TypeUInt, 3), "uvec3"},
		{NewVector(TypeBool, 2), "bvec2"},
		{NewMatrix(3, 3), "mat3"},
		{NewMatrix(2, 4), "mat2x4"},
		{NewScalar(TypeSampler2D), "sampler2D"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.BaseName())
		})
	}
}

func TestType_ArrayString(t *testing.T) {
	typ := NewVector(TypeFloat, 2)
	typ.ArraySizes = []uint32{3, 4}
	assert.Equal(t, "vec2[3][4]", typ.String())
	assert.Equal(t, 12, typ.ArrayElements())

	elem := typ.ElementType()
	assert.Equal(t, "vec2[4]", elem.String())
	assert.Equal(t, []uint32{3, 4}, typ.ArraySizes, "ElementType must not alias the original")
}

func TestType_ShapeIgnoresPrecisionAndQualifier(t *testing.T) {
	a := NewVector(TypeFloat, 4).WithPrecision(PrecisionMedium).WithQualifier(QualUniform)
	b := NewVector(TypeFloat, 4).WithPrecision(PrecisionHigh)

	assert.True(t, a.SameShape(b))
	assert.False(t, a.Equal(b))
	assert.Equal(t, 0, a.CompareShape(b))
}

func TestType_CompareShapeIsTotalOrder(t *testing.T) {
	arr := NewScalar(TypeFloat)
	arr.ArraySizes = []uint32{2}
	types := []Type{
		NewScalar(TypeFloat),
		NewVector(TypeFloat, 2),
		NewVector(TypeFloat, 4),
		NewMatrix(2, 2),
		NewScalar(TypeInt),
		arr,
	}
	for i, a := range types {
		for j, b := range types {
			c := a.CompareShape(b)
			if i == j {
				assert.Equal(t, 0, c, "%s vs itself", a)
				continue
			}
			assert.NotEqual(t, 0, c, "%s vs %s", a, b)
			assert.Equal(t, -c, b.CompareShape(a), "antisymmetry of %s and %s", a, b)
		}
	}
}

func TestType_Describe(t *testing.T) {
	typ := NewVector(TypeFloat, 4).WithPrecision(PrecisionHigh).WithQualifier(QualUniform)
	assert.Equal(t, "uniform highp 4-component vector of float", typ.Describe())
	assert.Equal(t, "2X3 matrix of float", NewMatrix(2, 3).Describe())
}

func TestQualifier_Classes(t *testing.T) {
	assert.True(t, QualAttribute.IsShaderInput())
	assert.True(t, QualFlatIn.IsShaderInput())
	assert.False(t, QualUniform.IsShaderInput())

	for _, q := range []Qualifier{QualVertexOut, QualSmoothOut, QualCentroidOut, QualFlatOut} {
		assert.True(t, q.IsOutputInterpolation(), q.String())
	}
	assert.False(t, QualVaryingOut.IsOutputInterpolation())
	assert.True(t, QualVaryingOut.IsVaryingOut())
	assert.True(t, QualDrawID.IsReadOnly())
	assert.False(t, QualFragColor.IsReadOnly())
}

func TestConstant_String(t *testing.T) {
	assert.Equal(t, "1.0", FloatConst(1).String())
	assert.Equal(t, "0.5", FloatConst(0.5).String())
	assert.Equal(t, "-3", IntConst(-3).String())
	assert.Equal(t, "7u", UIntConst(7).String())
	assert.Equal(t, "true", BoolConst(true).String())
}

func TestConstant_Cast(t *testing.T) {
	assert.Equal(t, FloatConst(2), IntConst(2).Cast(TypeFloat))
	assert.Equal(t, IntConst(1), FloatConst(1.9).Cast(TypeInt))
	assert.Equal(t, BoolConst(false), UIntConst(0).Cast(TypeBool))
	assert.True(t, FloatConst(1).Equal(BoolConst(true).Cast(TypeFloat)))
}
