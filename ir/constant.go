package ir

import (
	"math"
	"strconv"
	"strings"
)

// Constant is one scalar component of a ConstantUnion.
type Constant struct {
	Kind BasicType // TypeFloat, TypeInt, TypeUInt or TypeBool
	F    float32
	I    int32
	U    uint32
	B    bool
}

// FloatConst returns a float constant.
func FloatConst(f float32) Constant { return Constant{Kind: TypeFloat, F: f} }

// IntConst returns an int constant.
func IntConst(i int32) Constant { return Constant{Kind: TypeInt, I: i} }

// UIntConst returns a uint constant.
func UIntConst(u uint32) Constant { return Constant{Kind: TypeUInt, U: u} }

// BoolConst returns a bool constant.
func BoolConst(b bool) Constant { return Constant{Kind: TypeBool, B: b} }

// Cast converts c to the given basic type using GLSL constructor rules.
func (c Constant) Cast(to BasicType) Constant {
	if c.Kind == to {
		return c
	}
	switch to {
	case TypeFloat:
		switch c.Kind {
		case TypeInt:
			return FloatConst(float32(c.I))
		case TypeUInt:
			return FloatConst(float32(c.U))
		case TypeBool:
			if c.B {
				return FloatConst(1)
			}
			return FloatConst(0)
		}
	case TypeInt:
		switch c.Kind {
		case TypeFloat:
			return IntConst(int32(c.F))
		case TypeUInt:
			return IntConst(int32(c.U))
		case TypeBool:
			if c.B {
				return IntConst(1)
			}
			return IntConst(0)
		}
	case TypeUInt:
		switch c.Kind {
		case TypeFloat:
			return UIntConst(uint32(c.F))
		case TypeInt:
			return UIntConst(uint32(c.I))
		case TypeBool:
			if c.B {
				return UIntConst(1)
			}
			return UIntConst(0)
		}
	case TypeBool:
		switch c.Kind {
		case TypeFloat:
			return BoolConst(c.F != 0)
		case TypeInt:
			return BoolConst(c.I != 0)
		case TypeUInt:
			return BoolConst(c.U != 0)
		}
	}
	return c
}

// Equal reports whether two constants have the same kind and value.
func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case TypeFloat:
		return c.F == o.F
	case TypeInt:
		return c.I == o.I
	case TypeUInt:
		return c.U == o.U
	default:
		return c.B == o.B
	}
}

// String formats c as a GLSL literal. Floats always carry a decimal point
// or exponent so they are never re-parsed as integers.
func (c Constant) String() string {
	switch c.Kind {
	case TypeFloat:
		return formatFloat(c.F)
	case TypeInt:
		return strconv.FormatInt(int64(c.I), 10)
	case TypeUInt:
		return strconv.FormatUint(uint64(c.U), 10) + "u"
	default:
		if c.B {
			return "true"
		}
		return "false"
	}
}

func formatFloat(f float32) string {
	if math.IsInf(float64(f), 1) {
		return "1.0e+38"
	}
	if math.IsInf(float64(f), -1) {
		return "-1.0e+38"
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
