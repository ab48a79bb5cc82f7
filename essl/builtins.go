package essl

import "github.com/gogpu/translator/ir"

// MaxDrawBuffersLimit bounds the declared size of gl_FragData. The
// resource limit actually enforced is checked at each constant index.
const MaxDrawBuffersLimit = 8

// availability restricts where a built-in can be used.
type availability struct {
	min, max int
	stages   ir.StageMask
	ext      string
}

var (
	es100      = availability{min: 100}
	es100Only  = availability{min: 100, max: 100}
	es300      = availability{min: 300}
	es310      = availability{min: 310}
	fragment   = availability{min: 100, stages: ir.StagesFragment}
	vertex100  = availability{min: 100, max: 100, stages: ir.StagesVertex}
	fragment10 = availability{min: 100, max: 100, stages: ir.StagesFragment}
)

func (a availability) with(ext string) availability {
	a.ext = ext
	return a
}

func (a availability) in(stages ir.StageMask) availability {
	a.stages = stages
	return a
}

type builtinBuilder struct {
	table *ir.BuiltinTable
}

func (b *builtinBuilder) variable(a availability, name string, typ ir.Type) {
	b.table.Add(ir.Entry{
		Name:       name,
		Type:       typ,
		MinVersion: a.min,
		MaxVersion: a.max,
		Stages:     a.stages,
		Extension:  a.ext,
	})
}

func (b *builtinBuilder) function(a availability, op ir.Operator, ret ir.Type, params ...ir.Type) {
	name := op.String()
	b.table.Add(ir.Entry{
		Name: name,
		Type: ret,
		Function: &ir.FunctionSig{
			Name:   name,
			Params: params,
			Return: ret,
			Op:     op,
		},
		MinVersion: a.min,
		MaxVersion: a.max,
		Stages:     a.stages,
		Extension:  a.ext,
	})
}

func scalar(b ir.BasicType) ir.Type { return ir.NewScalar(b) }

func vec(b ir.BasicType, n uint8) ir.Type {
	if n == 1 {
		return ir.NewScalar(b)
	}
	return ir.NewVector(b, n)
}

func builtinVar(typ ir.Type, q ir.Qualifier, p ir.Precision) ir.Type {
	typ.Qualifier = q
	typ.Precision = p
	return typ
}

// NewBuiltins builds and freezes the table of GLSL ES built-in variables
// and functions for versions 1.00, 3.00 and 3.10. Availability is recorded
// on each entry; compilations filter by version, stage and extensions.
func NewBuiltins() *ir.BuiltinTable {
	b := &builtinBuilder{table: ir.NewBuiltinTable()}
	b.variables()
	b.trigonometry()
	b.common()
	b.geometric()
	b.matrices()
	b.relational()
	b.textures()
	b.function(es310.in(ir.StagesCompute), ir.OpBarrier, ir.Void)
	b.function(es310.in(ir.StagesCompute), ir.OpMemoryBarrierShared, ir.Void)
	b.table.Freeze()
	return b.table
}

func (b *builtinBuilder) variables() {
	vec4 := ir.NewVector(ir.TypeFloat, 4)
	f := scalar(ir.TypeFloat)
	i := scalar(ir.TypeInt)
	uvec3 := ir.NewVector(ir.TypeUInt, 3)

	vs := es100.in(ir.StagesVertex)
	b.variable(vs, "gl_Position", builtinVar(vec4, ir.QualPosition, ir.PrecisionHigh))
	b.variable(vs, "gl_PointSize", builtinVar(f, ir.QualPointSize, ir.PrecisionMedium))
	b.variable(es300.in(ir.StagesVertex), "gl_VertexID", builtinVar(i, ir.QualVertexID, ir.PrecisionHigh))
	b.variable(es300.in(ir.StagesVertex), "gl_InstanceID", builtinVar(i, ir.QualInstanceID, ir.PrecisionHigh))
	b.variable(vs.with("GL_ANGLE_multi_draw"), "gl_DrawID", builtinVar(i, ir.QualDrawID, ir.PrecisionHigh))

	b.variable(fragment, "gl_FragCoord", builtinVar(vec4, ir.QualFragCoord, ir.PrecisionMedium))
	b.variable(fragment, "gl_FrontFacing", builtinVar(scalar(ir.TypeBool), ir.QualFrontFacing, ir.PrecisionUndefined))
	b.variable(fragment, "gl_PointCoord", builtinVar(ir.NewVector(ir.TypeFloat, 2), ir.QualPointCoord, ir.PrecisionMedium))
	b.variable(fragment10, "gl_FragColor", builtinVar(vec4, ir.QualFragColor, ir.PrecisionMedium))
	fragData := builtinVar(vec4, ir.QualFragData, ir.PrecisionMedium)
	fragData.ArraySizes = []uint32{MaxDrawBuffersLimit}
	b.variable(fragment10, "gl_FragData", fragData)
	b.variable(fragment10.with("GL_EXT_frag_depth"), "gl_FragDepthEXT", builtinVar(f, ir.QualFragDepth, ir.PrecisionHigh))
	b.variable(es300.in(ir.StagesFragment), "gl_FragDepth", builtinVar(f, ir.QualFragDepth, ir.PrecisionHigh))

	cs := es310.in(ir.StagesCompute)
	b.variable(cs, "gl_GlobalInvocationID", builtinVar(uvec3, ir.QualGlobalInvocationID, ir.PrecisionHigh))
	b.variable(cs, "gl_LocalInvocationID", builtinVar(uvec3, ir.QualLocalInvocationID, ir.PrecisionHigh))
	b.variable(cs, "gl_WorkGroupID", builtinVar(uvec3, ir.QualWorkGroupID, ir.PrecisionHigh))
	b.variable(cs, "gl_NumWorkGroups", builtinVar(uvec3, ir.QualNumWorkGroups, ir.PrecisionHigh))
	b.variable(cs, "gl_LocalInvocationIndex", builtinVar(scalar(ir.TypeUInt), ir.QualLocalInvocationIndex, ir.PrecisionHigh))
}

func (b *builtinBuilder) trigonometry() {
	for n := uint8(1); n <= 4; n++ {
		g := vec(ir.TypeFloat, n)
		for _, op := range []ir.Operator{
			ir.OpRadians, ir.OpDegrees, ir.OpSin, ir.OpCos, ir.OpTan, ir.OpAsin, ir.OpAcos, ir.OpAtan,
			ir.OpExp, ir.OpLog, ir.OpExp2, ir.OpLog2, ir.OpSqrt, ir.OpInversesqrt,
		} {
			b.function(es100, op, g, g)
		}
		b.function(es100, ir.OpAtan, g, g, g)
		b.function(es100, ir.OpPow, g, g, g)
	}
}

func (b *builtinBuilder) common() {
	f := scalar(ir.TypeFloat)
	for n := uint8(1); n <= 4; n++ {
		g := vec(ir.TypeFloat, n)
		for _, op := range []ir.Operator{ir.OpAbs, ir.OpSign, ir.OpFloor, ir.OpCeil, ir.OpFract} {
			b.function(es100, op, g, g)
		}
		b.function(es300, ir.OpTrunc, g, g)
		b.function(es300, ir.OpRound, g, g)
		b.function(es300, ir.OpIsnan, vec(ir.TypeBool, n), g)
		b.function(es300, ir.OpIsinf, vec(ir.TypeBool, n), g)

		for _, op := range []ir.Operator{ir.OpMod, ir.OpMin, ir.OpMax} {
			b.function(es100, op, g, g, g)
			if n > 1 {
				b.function(es100, op, g, g, f)
			}
		}
		b.function(es100, ir.OpClamp, g, g, g, g)
		b.function(es100, ir.OpMix, g, g, g, g)
		b.function(es300, ir.OpMix, g, g, g, vec(ir.TypeBool, n))
		b.function(es100, ir.OpStep, g, g, g)
		b.function(es100, ir.OpSmoothstep, g, g, g, g)
		if n > 1 {
			b.function(es100, ir.OpClamp, g, g, f, f)
			b.function(es100, ir.OpMix, g, g, g, f)
			b.function(es100, ir.OpStep, g, f, g)
			b.function(es100, ir.OpSmoothstep, g, f, f, g)
		}

		for _, basic := range []ir.BasicType{ir.TypeInt, ir.TypeUInt} {
			gi := vec(basic, n)
			s := scalar(basic)
			if basic == ir.TypeInt {
				b.function(es300, ir.OpAbs, gi, gi)
				b.function(es300, ir.OpSign, gi, gi)
			}
			b.function(es300, ir.OpMin, gi, gi, gi)
			b.function(es300, ir.OpMax, gi, gi, gi)
			b.function(es300, ir.OpClamp, gi, gi, gi, gi)
			if n > 1 {
				b.function(es300, ir.OpMin, gi, gi, s)
				b.function(es300, ir.OpMax, gi, gi, s)
				b.function(es300, ir.OpClamp, gi, gi, s, s)
			}
		}
	}
}

func (b *builtinBuilder) geometric() {
	f := scalar(ir.TypeFloat)
	for n := uint8(1); n <= 4; n++ {
		g := vec(ir.TypeFloat, n)
		b.function(es100, ir.OpLength, f, g)
		b.function(es100, ir.OpDistance, f, g, g)
		b.function(es100, ir.OpDot, f, g, g)
		b.function(es100, ir.OpNormalize, g, g)
		b.function(es100, ir.OpFaceforward, g, g, g, g)
		b.function(es100, ir.OpReflect, g, g, g)
		b.function(es100, ir.OpRefract, g, g, g, f)
	}
	v3 := ir.NewVector(ir.TypeFloat, 3)
	b.function(es100, ir.OpCross, v3, v3, v3)
}

func (b *builtinBuilder) matrices() {
	for cols := uint8(2); cols <= 4; cols++ {
		for rows := uint8(2); rows <= 4; rows++ {
			m := ir.NewMatrix(cols, rows)
			a := es300
			if cols == rows {
				a = es100
			}
			b.function(a, ir.OpMatrixCompMult, m, m, m)
			b.function(es300, ir.OpOuterProduct, m, ir.NewVector(ir.TypeFloat, rows), ir.NewVector(ir.TypeFloat, cols))
			b.function(es300, ir.OpTranspose, ir.NewMatrix(rows, cols), m)
		}
		sq := ir.NewMatrix(cols, cols)
		b.function(es300, ir.OpDeterminant, scalar(ir.TypeFloat), sq)
		b.function(es300, ir.OpInverse, sq, sq)
	}
}

func (b *builtinBuilder) relational() {
	for n := uint8(2); n <= 4; n++ {
		bv := ir.NewVector(ir.TypeBool, n)
		for _, basic := range []ir.BasicType{ir.TypeFloat, ir.TypeInt, ir.TypeUInt} {
			a := es100
			if basic == ir.TypeUInt {
				a = es300
			}
			v := ir.NewVector(basic, n)
			for _, op := range []ir.Operator{
				ir.OpLessThanComponentWise, ir.OpLessThanEqualComponentWise,
				ir.OpGreaterThanComponentWise, ir.OpGreaterThanEqualComponentWise,
				ir.OpEqualComponentWise, ir.OpNotEqualComponentWise,
			} {
				b.function(a, op, bv, v, v)
			}
		}
		b.function(es100, ir.OpEqualComponentWise, bv, bv, bv)
		b.function(es100, ir.OpNotEqualComponentWise, bv, bv, bv)
		b.function(es100, ir.OpAny, scalar(ir.TypeBool), bv)
		b.function(es100, ir.OpAll, scalar(ir.TypeBool), bv)
		b.function(es100, ir.OpNotComponentWise, bv, bv)
	}

	for n := uint8(1); n <= 4; n++ {
		g := vec(ir.TypeFloat, n)
		deriv := fragment10.with("GL_OES_standard_derivatives")
		for _, op := range []ir.Operator{ir.OpDFdx, ir.OpDFdy, ir.OpFwidth} {
			b.function(deriv, op, g, g)
			b.function(es300.in(ir.StagesFragment), op, g, g)
		}
	}
}

func (b *builtinBuilder) textures() {
	f := scalar(ir.TypeFloat)
	i := scalar(ir.TypeInt)
	v2 := ir.NewVector(ir.TypeFloat, 2)
	v3 := ir.NewVector(ir.TypeFloat, 3)
	v4 := ir.NewVector(ir.TypeFloat, 4)
	iv2 := ir.NewVector(ir.TypeInt, 2)
	iv3 := ir.NewVector(ir.TypeInt, 3)
	s2D := scalar(ir.TypeSampler2D)
	s3D := scalar(ir.TypeSampler3D)
	sCube := scalar(ir.TypeSamplerCube)
	s2DArray := scalar(ir.TypeSampler2DArray)
	s2DShadow := scalar(ir.TypeSampler2DShadow)
	sExt := scalar(ir.TypeSamplerExternalOES)

	// ESSL 1.00
	b.function(es100Only, ir.OpTexture2D, v4, s2D, v2)
	b.function(es100Only, ir.OpTexture2DProj, v4, s2D, v3)
	b.function(es100Only, ir.OpTexture2DProj, v4, s2D, v4)
	b.function(es100Only, ir.OpTextureCube, v4, sCube, v3)
	b.function(fragment10, ir.OpTexture2D, v4, s2D, v2, f)
	b.function(fragment10, ir.OpTextureCube, v4, sCube, v3, f)
	b.function(vertex100, ir.OpTexture2DLod, v4, s2D, v2, f)
	b.function(vertex100, ir.OpTextureCubeLod, v4, sCube, v3, f)
	b.function(es100Only.with("GL_OES_EGL_image_external"), ir.OpTexture2D, v4, sExt, v2)

	// ESSL 3.00
	b.function(es300, ir.OpTexture, v4, s2D, v2)
	b.function(es300, ir.OpTexture, v4, s3D, v3)
	b.function(es300, ir.OpTexture, v4, sCube, v3)
	b.function(es300, ir.OpTexture, v4, s2DArray, v3)
	b.function(es300, ir.OpTexture, f, s2DShadow, v3)
	b.function(es300.with("GL_OES_EGL_image_external_essl3"), ir.OpTexture, v4, sExt, v2)
	b.function(es300.in(ir.StagesFragment), ir.OpTexture, v4, s2D, v2, f)
	b.function(es300.in(ir.StagesFragment), ir.OpTexture, v4, s3D, v3, f)
	b.function(es300.in(ir.StagesFragment), ir.OpTexture, v4, sCube, v3, f)
	b.function(es300.in(ir.StagesFragment), ir.OpTexture, v4, s2DArray, v3, f)
	b.function(es300.in(ir.StagesFragment), ir.OpTexture, f, s2DShadow, v3, f)
	b.function(es300, ir.OpTextureLod, v4, s2D, v2, f)
	b.function(es300, ir.OpTextureLod, v4, s3D, v3, f)
	b.function(es300, ir.OpTextureLod, v4, sCube, v3, f)
	b.function(es300, ir.OpTextureLod, v4, s2DArray, v3, f)
	b.function(es300, ir.OpTextureProj, v4, s2D, v3)
	b.function(es300, ir.OpTextureProj, v4, s2D, v4)
	b.function(es300, ir.OpTextureSize, iv2, s2D, i)
	b.function(es300, ir.OpTextureSize, iv2, sCube, i)
	b.function(es300, ir.OpTextureSize, iv3, s3D, i)
	b.function(es300, ir.OpTextureSize, iv3, s2DArray, i)
	b.function(es300, ir.OpTexelFetch, v4, s2D, iv2, i)
	b.function(es300, ir.OpTexelFetch, v4, s3D, iv3, i)
	b.function(es300, ir.OpTexelFetch, v4, s2DArray, iv3, i)
}
