package ir

// Operator identifies what a Unary, Binary, Aggregate or Branch node does.
type Operator uint16

const (
	OpNull Operator = iota

	// Unary
	OpNegative
	OpPositive
	OpLogicalNot
	OpBitwiseNot
	OpPostIncrement
	OpPostDecrement
	OpPreIncrement
	OpPreDecrement

	// Binary arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIMod

	// Binary comparison and logic
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpLogicalAnd
	OpLogicalOr
	OpLogicalXor

	// Binary bitwise
	OpBitShiftLeft
	OpBitShiftRight
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor

	// Indexing and sequencing
	OpIndexDirect
	OpIndexIndirect
	OpComma

	// Assignment
	OpAssign
	OpInitialize
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpIModAssign
	OpBitShiftLeftAssign
	OpBitShiftRightAssign
	OpBitwiseAndAssign
	OpBitwiseOrAssign
	OpBitwiseXorAssign

	// Calls and constructors
	OpCallFunctionInAST
	OpCallInternalRawFunction
	OpConstruct

	// Branches
	OpKill
	OpReturn
	OpBreak
	OpContinue

	// Built-in functions. Keep opBuiltinFirst/opBuiltinLast in sync.
	OpRadians
	OpDegrees
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpPow
	OpExp
	OpLog
	OpExp2
	OpLog2
	OpSqrt
	OpInversesqrt
	OpAbs
	OpSign
	OpFloor
	OpTrunc
	OpRound
	OpCeil
	OpFract
	OpMod
	OpMin
	OpMax
	OpClamp
	OpMix
	OpStep
	OpSmoothstep
	OpIsnan
	OpIsinf
	OpLength
	OpDistance
	OpDot
	OpCross
	OpNormalize
	OpFaceforward
	OpReflect
	OpRefract
	OpMatrixCompMult
	OpOuterProduct
	OpTranspose
	OpDeterminant
	OpInverse
	OpLessThanComponentWise
	OpLessThanEqualComponentWise
	OpGreaterThanComponentWise
	OpGreaterThanEqualComponentWise
	OpEqualComponentWise
	OpNotEqualComponentWise
	OpAny
	OpAll
	OpNotComponentWise
	OpDFdx
	OpDFdy
	OpFwidth
	OpTexture2D
	OpTexture2DProj
	OpTextureCube
	OpTexture2DLod
	OpTextureCubeLod
	OpTexture
	OpTextureLod
	OpTextureProj
	OpTextureSize
	OpTexelFetch
	OpBarrier
	OpMemoryBarrierShared
)

const (
	opBuiltinFirst = OpRadians
	opBuiltinLast  = OpMemoryBarrierShared
)

var operatorNames = map[Operator]string{
	OpNull:                          "null",
	OpNegative:                      "-",
	OpPositive:                      "+",
	OpLogicalNot:                    "!",
	OpBitwiseNot:                    "~",
	OpPostIncrement:                 "++",
	OpPostDecrement:                 "--",
	OpPreIncrement:                  "++",
	OpPreDecrement:                  "--",
	OpAdd:                           "+",
	OpSub:                           "-",
	OpMul:                           "*",
	OpDiv:                           "/",
	OpIMod:                          "%",
	OpEqual:                         "==",
	OpNotEqual:                      "!=",
	OpLessThan:                      "<",
	OpGreaterThan:                   ">",
	OpLessThanEqual:                 "<=",
	OpGreaterThanEqual:              ">=",
	OpLogicalAnd:                    "&&",
	OpLogicalOr:                     "||",
	OpLogicalXor:                    "^^",
	OpBitShiftLeft:                  "<<",
	OpBitShiftRight:                 ">>",
	OpBitwiseAnd:                    "&",
	OpBitwiseOr:                     "|",
	OpBitwiseXor:                    "^",
	OpIndexDirect:                   "[]",
	OpIndexIndirect:                 "[]",
	OpComma:                         ",",
	OpAssign:                        "=",
	OpInitialize:                    "=",
	OpAddAssign:                     "+=",
	OpSubAssign:                     "-=",
	OpMulAssign:                     "*=",
	OpDivAssign:                     "/=",
	OpIModAssign:                    "%=",
	OpBitShiftLeftAssign:            "<<=",
	OpBitShiftRightAssign:           ">>=",
	OpBitwiseAndAssign:              "&=",
	OpBitwiseOrAssign:               "|=",
	OpBitwiseXorAssign:              "^=",
	OpCallFunctionInAST:             "call",
	OpCallInternalRawFunction:       "raw call",
	OpConstruct:                     "construct",
	OpKill:                          "discard",
	OpReturn:                        "return",
	OpBreak:                         "break",
	OpContinue:                      "continue",
	OpRadians:                       "radians",
	OpDegrees:                       "degrees",
	OpSin:                           "sin",
	OpCos:                           "cos",
	OpTan:                           "tan",
	OpAsin:                          "asin",
	OpAcos:                          "acos",
	OpAtan:                          "atan",
	OpPow:                           "pow",
	OpExp:                           "exp",
	OpLog:                           "log",
	OpExp2:                          "exp2",
	OpLog2:                          "log2",
	OpSqrt:                          "sqrt",
	OpInversesqrt:                   "inversesqrt",
	OpAbs:                           "abs",
	OpSign:                          "sign",
	OpFloor:                         "floor",
	OpTrunc:                         "trunc",
	OpRound:                         "round",
	OpCeil:                          "ceil",
	OpFract:                         "fract",
	OpMod:                           "mod",
	OpMin:                           "min",
	OpMax:                           "max",
	OpClamp:                         "clamp",
	OpMix:                           "mix",
	OpStep:                          "step",
	OpSmoothstep:                    "smoothstep",
	OpIsnan:                         "isnan",
	OpIsinf:                         "isinf",
	OpLength:                        "length",
	OpDistance:                      "distance",
	OpDot:                           "dot",
	OpCross:                         "cross",
	OpNormalize:                     "normalize",
	OpFaceforward:                   "faceforward",
	OpReflect:                       "reflect",
	OpRefract:                       "refract",
	OpMatrixCompMult:                "matrixCompMult",
	OpOuterProduct:                  "outerProduct",
	OpTranspose:                     "transpose",
	OpDeterminant:                   "determinant",
	OpInverse:                       "inverse",
	OpLessThanComponentWise:         "lessThan",
	OpLessThanEqualComponentWise:    "lessThanEqual",
	OpGreaterThanComponentWise:      "greaterThan",
	OpGreaterThanEqualComponentWise: "greaterThanEqual",
	OpEqualComponentWise:            "equal",
	OpNotEqualComponentWise:         "notEqual",
	OpAny:                           "any",
	OpAll:                           "all",
	OpNotComponentWise:              "not",
	OpDFdx:                          "dFdx",
	OpDFdy:                          "dFdy",
	OpFwidth:                        "fwidth",
	OpTexture2D:                     "texture2D",
	OpTexture2DProj:                 "texture2DProj",
	OpTextureCube:                   "textureCube",
	OpTexture2DLod:                  "texture2DLod",
	OpTextureCubeLod:                "textureCubeLod",
	OpTexture:                       "texture",
	OpTextureLod:                    "textureLod",
	OpTextureProj:                   "textureProj",
	OpTextureSize:                   "textureSize",
	OpTexelFetch:                    "texelFetch",
	OpBarrier:                       "barrier",
	OpMemoryBarrierShared:           "memoryBarrierShared",
}

// String returns the GLSL token or function name of the operator.
func (op Operator) String() string {
	if s, ok := operatorNames[op]; ok {
		return s
	}
	return "unknown"
}

// IsBuiltinFunction reports whether op is a built-in function call.
func (op Operator) IsBuiltinFunction() bool {
	return op >= opBuiltinFirst && op <= opBuiltinLast
}

// IsAssignment reports whether op writes its left operand.
func (op Operator) IsAssignment() bool {
	return op >= OpAssign && op <= OpBitwiseXorAssign
}

// IsIncDec reports whether op is a pre/post increment or decrement.
func (op Operator) IsIncDec() bool {
	return op >= OpPostIncrement && op <= OpPreDecrement
}

// IsComparison reports whether op compares two scalars or aggregates.
func (op Operator) IsComparison() bool {
	return op >= OpEqual && op <= OpGreaterThanEqual
}

// IsLogical reports whether op is a boolean connective.
func (op Operator) IsLogical() bool {
	return op == OpLogicalAnd || op == OpLogicalOr || op == OpLogicalXor
}

// IsBitwise reports whether op requires integer operands.
func (op Operator) IsBitwise() bool {
	switch op {
	case OpBitShiftLeft, OpBitShiftRight, OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor,
		OpBitShiftLeftAssign, OpBitShiftRightAssign, OpBitwiseAndAssign,
		OpBitwiseOrAssign, OpBitwiseXorAssign, OpIMod, OpIModAssign, OpBitwiseNot:
		return true
	}
	return false
}

// IsTexture reports whether op samples or queries a texture.
func (op Operator) IsTexture() bool {
	return op >= OpTexture2D && op <= OpTexelFetch
}

// ArithmeticOf returns the arithmetic operator behind a compound assignment,
// e.g. OpAdd for OpAddAssign. Other operators are returned unchanged.
func (op Operator) ArithmeticOf() Operator {
	switch op {
	case OpAddAssign:
		return OpAdd
	case OpSubAssign:
		return OpSub
	case OpMulAssign:
		return OpMul
	case OpDivAssign:
		return OpDiv
	case OpIModAssign:
		return OpIMod
	case OpBitShiftLeftAssign:
		return OpBitShiftLeft
	case OpBitShiftRightAssign:
		return OpBitShiftRight
	case OpBitwiseAndAssign:
		return OpBitwiseAnd
	case OpBitwiseOrAssign:
		return OpBitwiseOr
	case OpBitwiseXorAssign:
		return OpBitwiseXor
	default:
		return op
	}
}
