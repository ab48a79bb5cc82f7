package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// BasicType is the scalar or opaque kind of a Type.
type BasicType uint8

const (
	TypeVoid BasicType = iota
	TypeFloat
	TypeInt
	TypeUInt
	TypeBool
	TypeSampler2D
	TypeSampler3D
	TypeSamplerCube
	TypeSampler2DArray
	TypeSampler2DShadow
	TypeSamplerExternalOES
)

// String returns the GLSL spelling of the scalar or sampler type.
func (b BasicType) String() string {
	switch b {
	case TypeVoid:
		return "void"
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeUInt:
		return "uint"
	case TypeBool:
		return "bool"
	case TypeSampler2D:
		return "sampler2D"
	case TypeSampler3D:
		return "sampler3D"
	case TypeSamplerCube:
		return "samplerCube"
	case TypeSampler2DArray:
		return "sampler2DArray"
	case TypeSampler2DShadow:
		return "sampler2DShadow"
	case TypeSamplerExternalOES:
		return "samplerExternalOES"
	default:
		return "unknown"
	}
}

// IsSampler reports whether b is an opaque sampler type.
func (b BasicType) IsSampler() bool {
	return b >= TypeSampler2D && b <= TypeSamplerExternalOES
}

// IsNumeric reports whether b supports arithmetic.
func (b BasicType) IsNumeric() bool {
	return b == TypeFloat || b == TypeInt || b == TypeUInt
}

// IsInteger reports whether b is a signed or unsigned integer.
func (b BasicType) IsInteger() bool {
	return b == TypeInt || b == TypeUInt
}

// Precision is a GLSL ES precision qualifier.
type Precision uint8

const (
	PrecisionUndefined Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

// String returns the precision keyword, or "" when undefined.
func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	default:
		return ""
	}
}

// Qualifier describes the storage class and interpolation of a variable.
type Qualifier uint8

const (
	QualTemporary Qualifier = iota
	QualGlobal
	QualConst
	QualAttribute
	QualVaryingIn
	QualVaryingOut
	QualUniform
	QualVertexIn
	QualVertexOut
	QualFragmentIn
	QualFragmentOut
	QualSmoothIn
	QualSmoothOut
	QualFlatIn
	QualFlatOut
	QualCentroidIn
	QualCentroidOut
	QualShared
	QualParamIn
	QualParamOut
	QualParamInOut
	QualParamConst

	// Qualifiers of built-in variables.
	QualPosition
	QualPointSize
	QualVertexID
	QualInstanceID
	QualDrawID
	QualFragCoord
	QualFrontFacing
	QualPointCoord
	QualFragColor
	QualFragData
	QualFragDepth
	QualGlobalInvocationID
	QualLocalInvocationID
	QualWorkGroupID
	QualNumWorkGroups
	QualLocalInvocationIndex
)

var qualifierNames = map[Qualifier]string{
	QualTemporary:            "temporary",
	QualGlobal:               "global",
	QualConst:                "const",
	QualAttribute:            "attribute",
	QualVaryingIn:            "varying",
	QualVaryingOut:           "varying",
	QualUniform:              "uniform",
	QualVertexIn:             "in",
	QualVertexOut:            "out",
	QualFragmentIn:           "in",
	QualFragmentOut:          "out",
	QualSmoothIn:             "smooth in",
	QualSmoothOut:            "smooth out",
	QualFlatIn:               "flat in",
	QualFlatOut:              "flat out",
	QualCentroidIn:           "centroid in",
	QualCentroidOut:          "centroid out",
	QualShared:               "shared",
	QualParamIn:              "in",
	QualParamOut:             "out",
	QualParamInOut:           "inout",
	QualParamConst:           "const",
	QualPosition:             "Position",
	QualPointSize:            "PointSize",
	QualVertexID:             "VertexId",
	QualInstanceID:           "InstanceId",
	QualDrawID:               "DrawID",
	QualFragCoord:            "FragCoord",
	QualFrontFacing:          "FrontFacing",
	QualPointCoord:           "PointCoord",
	QualFragColor:            "FragColor",
	QualFragData:             "FragData",
	QualFragDepth:            "FragDepth",
	QualGlobalInvocationID:   "GlobalInvocationID",
	QualLocalInvocationID:    "LocalInvocationID",
	QualWorkGroupID:          "WorkGroupID",
	QualNumWorkGroups:        "NumWorkGroups",
	QualLocalInvocationIndex: "LocalInvocationIndex",
}

// String returns the qualifier keyword as written in GLSL source.
func (q Qualifier) String() string {
	if s, ok := qualifierNames[q]; ok {
		return s
	}
	return "unknown"
}

// IsShaderInput reports whether q marks a value flowing into the current stage
// from a previous stage or the vertex fetch.
func (q Qualifier) IsShaderInput() bool {
	switch q {
	case QualAttribute, QualVaryingIn, QualVertexIn, QualFragmentIn,
		QualSmoothIn, QualFlatIn, QualCentroidIn:
		return true
	}
	return false
}

// IsOutputInterpolation reports whether q is one of the user output
// qualifiers that carry an interpolation class: out, smooth out,
// centroid out and flat out.
func (q Qualifier) IsOutputInterpolation() bool {
	switch q {
	case QualVertexOut, QualSmoothOut, QualCentroidOut, QualFlatOut:
		return true
	}
	return false
}

// IsVaryingOut reports whether q is a vertex output passed to the next stage.
func (q Qualifier) IsVaryingOut() bool {
	return q == QualVaryingOut || q.IsOutputInterpolation()
}

// IsVaryingIn reports whether q is a fragment input from the previous stage.
func (q Qualifier) IsVaryingIn() bool {
	switch q {
	case QualVaryingIn, QualFragmentIn, QualSmoothIn, QualFlatIn, QualCentroidIn:
		return true
	}
	return false
}

// IsParam reports whether q is a function parameter qualifier.
func (q Qualifier) IsParam() bool {
	return q >= QualParamIn && q <= QualParamConst
}

// IsReadOnly reports whether a variable with this qualifier can never be
// written by the shader.
func (q Qualifier) IsReadOnly() bool {
	switch q {
	case QualConst, QualUniform, QualAttribute, QualVaryingIn, QualVertexIn,
		QualFragmentIn, QualSmoothIn, QualFlatIn, QualCentroidIn, QualParamConst,
		QualVertexID, QualInstanceID, QualDrawID, QualFragCoord, QualFrontFacing,
		QualPointCoord, QualGlobalInvocationID, QualLocalInvocationID,
		QualWorkGroupID, QualNumWorkGroups, QualLocalInvocationIndex:
		return true
	}
	return false
}

// Layout holds the layout() qualifier values of a declaration.
// Unset integers are -1.
type Layout struct {
	Location int
	Binding  int
}

// NoLayout is the layout of a declaration without layout().
var NoLayout = Layout{Location: -1, Binding: -1}

// Type is the full semantic type of a typed node or symbol.
//
// PrimarySize is the vector width, or the number of columns of a matrix.
// SecondarySize is 1 for scalars and vectors, or the number of rows of a
// matrix. ArraySizes lists array dimensions outermost first.
type Type struct {
	Basic         BasicType
	Precision     Precision
	Qualifier     Qualifier
	Invariant     bool
	PrimarySize   uint8
	SecondarySize uint8
	ArraySizes    []uint32
	Layout        Layout
}

// NewScalar returns a temporary scalar of the given basic type.
func NewScalar(b BasicType) Type {
	return Type{Basic: b, PrimarySize: 1, SecondarySize: 1, Layout: NoLayout}
}

// NewVector returns a temporary vector of size n.
func NewVector(b BasicType, n uint8) Type {
	return Type{Basic: b, PrimarySize: n, SecondarySize: 1, Layout: NoLayout}
}

// NewMatrix returns a temporary float matrix with cols columns and rows rows.
func NewMatrix(cols, rows uint8) Type {
	return Type{Basic: TypeFloat, PrimarySize: cols, SecondarySize: rows, Layout: NoLayout}
}

// Void is the void type.
var Void = NewScalar(TypeVoid)

// IsScalar reports whether t is a non-array scalar.
func (t Type) IsScalar() bool {
	return t.PrimarySize == 1 && t.SecondarySize == 1 && !t.IsArray() && !t.Basic.IsSampler() && t.Basic != TypeVoid
}

// IsVector reports whether t is a non-array vector.
func (t Type) IsVector() bool {
	return t.PrimarySize > 1 && t.SecondarySize == 1 && !t.IsArray()
}

// IsMatrix reports whether t is a non-array matrix.
func (t Type) IsMatrix() bool {
	return t.SecondarySize > 1 && !t.IsArray()
}

// IsArray reports whether t has at least one array dimension.
func (t Type) IsArray() bool {
	return len(t.ArraySizes) > 0
}

// Cols returns the number of matrix columns.
func (t Type) Cols() uint8 { return t.PrimarySize }

// Rows returns the number of matrix rows.
func (t Type) Rows() uint8 { return t.SecondarySize }

// ComponentCount returns the number of scalar components in one element.
func (t Type) ComponentCount() int {
	return int(t.PrimarySize) * int(t.SecondarySize)
}

// ArrayElements returns the total number of array elements (1 for non-arrays).
func (t Type) ArrayElements() int {
	n := 1
	for _, s := range t.ArraySizes {
		n *= int(s)
	}
	return n
}

// Clone returns a copy of t that does not share array storage.
func (t Type) Clone() Type {
	if t.ArraySizes != nil {
		t.ArraySizes = append([]uint32(nil), t.ArraySizes...)
	}
	return t
}

// ElementType returns t with its outermost array dimension removed.
func (t Type) ElementType() Type {
	c := t.Clone()
	if len(c.ArraySizes) > 0 {
		c.ArraySizes = c.ArraySizes[1:]
		if len(c.ArraySizes) == 0 {
			c.ArraySizes = nil
		}
	}
	return c
}

// ColumnType returns the column vector type of a matrix.
func (t Type) ColumnType() Type {
	c := NewVector(t.Basic, t.SecondarySize)
	c.Precision = t.Precision
	return c
}

// ScalarType returns the scalar component type of t.
func (t Type) ScalarType() Type {
	s := NewScalar(t.Basic)
	s.Precision = t.Precision
	return s
}

// WithQualifier returns a copy of t with qualifier q.
func (t Type) WithQualifier(q Qualifier) Type {
	c := t.Clone()
	c.Qualifier = q
	return c
}

// WithPrecision returns a copy of t with precision p.
func (t Type) WithPrecision(p Precision) Type {
	c := t.Clone()
	c.Precision = p
	return c
}

// Temporary returns the shape of t as an unqualified temporary.
func (t Type) Temporary() Type {
	c := t.Clone()
	c.Qualifier = QualTemporary
	c.Invariant = false
	c.Layout = NoLayout
	return c
}

// Equal reports full structural equality, including precision, qualifier,
// invariance and layout.
func (t Type) Equal(o Type) bool {
	return t.SameShape(o) &&
		t.Precision == o.Precision &&
		t.Qualifier == o.Qualifier &&
		t.Invariant == o.Invariant &&
		t.Layout == o.Layout
}

// SameShape reports whether t and o have the same basic type, sizes and
// array dimensions. Precision and qualifiers are ignored, which is the
// equality GLSL uses for overload resolution.
func (t Type) SameShape(o Type) bool {
	return t.CompareShape(o) == 0
}

// CompareShape orders types by shape. It is a total order consistent with
// SameShape and never looks at where the types are stored.
func (t Type) CompareShape(o Type) int {
	if c := cmpInt(int(t.Basic), int(o.Basic)); c != 0 {
		return c
	}
	if c := cmpInt(int(t.PrimarySize), int(o.PrimarySize)); c != 0 {
		return c
	}
	if c := cmpInt(int(t.SecondarySize), int(o.SecondarySize)); c != 0 {
		return c
	}
	if c := cmpInt(len(t.ArraySizes), len(o.ArraySizes)); c != 0 {
		return c
	}
	for i := range t.ArraySizes {
		if c := cmpInt(int(t.ArraySizes[i]), int(o.ArraySizes[i])); c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// BaseName returns the GLSL name of the non-array type, e.g. "vec4",
// "ivec2", "mat3", "mat2x4".
func (t Type) BaseName() string {
	if t.SecondarySize > 1 {
		if t.PrimarySize == t.SecondarySize {
			return "mat" + strconv.Itoa(int(t.PrimarySize))
		}
		return fmt.Sprintf("mat%dx%d", t.PrimarySize, t.SecondarySize)
	}
	if t.PrimarySize > 1 {
		switch t.Basic {
		case TypeInt:
			return "ivec" + strconv.Itoa(int(t.PrimarySize))
		case TypeUInt:
			return "uvec" + strconv.Itoa(int(t.PrimarySize))
		case TypeBool:
			return "bvec" + strconv.Itoa(int(t.PrimarySize))
		default:
			return "vec" + strconv.Itoa(int(t.PrimarySize))
		}
	}
	return t.Basic.String()
}

// ArraySuffix returns the "[n][m]" suffix of an array type.
func (t Type) ArraySuffix() string {
	var sb strings.Builder
	for _, s := range t.ArraySizes {
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatUint(uint64(s), 10))
		sb.WriteByte(']')
	}
	return sb.String()
}

// String returns the GLSL type name including array dimensions.
func (t Type) String() string {
	return t.BaseName() + t.ArraySuffix()
}

// Describe returns a verbose human-readable form used by the tree dumper,
// e.g. "uniform highp 4-component vector of float".
func (t Type) Describe() string {
	var parts []string
	if t.Invariant {
		parts = append(parts, "invariant")
	}
	if t.Qualifier != QualTemporary {
		parts = append(parts, t.Qualifier.String())
	}
	if p := t.Precision.String(); p != "" {
		parts = append(parts, p)
	}
	for _, s := range t.ArraySizes {
		parts = append(parts, fmt.Sprintf("array[%d] of", s))
	}
	switch {
	case t.SecondarySize > 1:
		parts = append(parts, fmt.Sprintf("%dX%d matrix of %s", t.PrimarySize, t.SecondarySize, t.Basic))
	case t.PrimarySize > 1:
		parts = append(parts, fmt.Sprintf("%d-component vector of %s", t.PrimarySize, t.Basic))
	default:
		parts = append(parts, t.Basic.String())
	}
	return strings.Join(parts, " ")
}

// Pos is a source position.
type Pos struct {
	Line   int
	Column int
}
