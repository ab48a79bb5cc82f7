package essl

import "github.com/gogpu/translator/ir"

type typeName struct {
	typ        ir.Type
	minVersion int
}

var typeNames = map[string]typeName{
	"void":  {ir.Void, 100},
	"float": {ir.NewScalar(ir.TypeFloat), 100},
	"int":   {ir.NewScalar(ir.TypeInt), 100},
	"bool":  {ir.NewScalar(ir.TypeBool), 100},
	"uint":  {ir.NewScalar(ir.TypeUInt), 300},

	"vec2":  {ir.NewVector(ir.TypeFloat, 2), 100},
	"vec3":  {ir.NewVector(ir.TypeFloat, 3), 100},
	"vec4":  {ir.NewVector(ir.TypeFloat, 4), 100},
	"ivec2": {ir.NewVector(ir.TypeInt, 2), 100},
	"ivec3": {ir.NewVector(ir.TypeInt, 3), 100},
	"ivec4": {ir.NewVector(ir.TypeInt, 4), 100},
	"bvec2": {ir.NewVector(ir.TypeBool, 2), 100},
	"bvec3": {ir.NewVector(ir.TypeBool, 3), 100},
	"bvec4": {ir.NewVector(ir.TypeBool, 4), 100},
	"uvec2": {ir.NewVector(ir.TypeUInt, 2), 300},
	"uvec3": {ir.NewVector(ir.TypeUInt, 3), 300},
	"uvec4": {ir.NewVector(ir.TypeUInt, 4), 300},

	"mat2":   {ir.NewMatrix(2, 2), 100},
	"mat3":   {ir.NewMatrix(3, 3), 100},
	"mat4":   {ir.NewMatrix(4, 4), 100},
	"mat2x2": {ir.NewMatrix(2, 2), 300},
	"mat2x3": {ir.NewMatrix(2, 3), 300},
	"mat2x4": {ir.NewMatrix(2, 4), 300},
	"mat3x2": {ir.NewMatrix(3, 2), 300},
	"mat3x3": {ir.NewMatrix(3, 3), 300},
	"mat3x4": {ir.NewMatrix(3, 4), 300},
	"mat4x2": {ir.NewMatrix(4, 2), 300},
	"mat4x3": {ir.NewMatrix(4, 3), 300},
	"mat4x4": {ir.NewMatrix(4, 4), 300},

	"sampler2D":          {ir.NewScalar(ir.TypeSampler2D), 100},
	"samplerCube":        {ir.NewScalar(ir.TypeSamplerCube), 100},
	"samplerExternalOES": {ir.NewScalar(ir.TypeSamplerExternalOES), 100},
	"sampler3D":          {ir.NewScalar(ir.TypeSampler3D), 300},
	"sampler2DArray":     {ir.NewScalar(ir.TypeSampler2DArray), 300},
	"sampler2DShadow":    {ir.NewScalar(ir.TypeSampler2DShadow), 300},
}

// extensionOfType names the extension that must be enabled to use a type.
var extensionOfType = map[string]string{
	"samplerExternalOES": "GL_OES_EGL_image_external",
}

// defaultPrecisions returns the precisions predeclared for a stage.
// Fragment shaders have no default float precision.
func defaultPrecisions(stage ir.ShaderStage) map[ir.BasicType]ir.Precision {
	d := map[ir.BasicType]ir.Precision{
		ir.TypeInt:                ir.PrecisionMedium,
		ir.TypeSampler2D:          ir.PrecisionLow,
		ir.TypeSamplerCube:        ir.PrecisionLow,
		ir.TypeSamplerExternalOES: ir.PrecisionLow,
	}
	if stage != ir.StageFragment {
		d[ir.TypeFloat] = ir.PrecisionHigh
		d[ir.TypeInt] = ir.PrecisionHigh
	}
	return d
}

// precisionBasic returns the basic type whose default precision applies
// to b. Unsigned integers share the int default.
func precisionBasic(b ir.BasicType) ir.BasicType {
	if b == ir.TypeUInt {
		return ir.TypeInt
	}
	return b
}

// needsPrecision reports whether values of type b carry a precision.
func needsPrecision(b ir.BasicType) bool {
	return b == ir.TypeFloat || b.IsInteger() || b.IsSampler()
}
