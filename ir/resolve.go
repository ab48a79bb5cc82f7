package ir

import "fmt"

// HigherPrecision returns the higher of two precisions.
func HigherPrecision(a, b Precision) Precision {
	if a > b {
		return a
	}
	return b
}

// ResolveBinary computes the result type of left op right following the
// GLSL ES typing rules. Assignment operators resolve to the left type.
func ResolveBinary(op Operator, left, right Type) (Type, error) {
	prec := HigherPrecision(left.Precision, right.Precision)

	if left.IsArray() || right.IsArray() {
		switch op {
		case OpAssign, OpInitialize, OpEqual, OpNotEqual, OpComma:
		case OpIndexDirect, OpIndexIndirect:
		default:
			return Type{}, fmt.Errorf("'%s' : wrong operand types - no operation '%s' exists that takes a left-hand operand of type '%s' and a right operand of type '%s'", op, op, left, right)
		}
	}

	switch op {
	case OpComma:
		return right.Temporary(), nil

	case OpIndexDirect, OpIndexIndirect:
		if !right.IsScalar() || !right.Basic.IsInteger() {
			return Type{}, fmt.Errorf("'[]' : integer expression required as index")
		}
		var elem Type
		switch {
		case left.IsArray():
			elem = left.ElementType()
		case left.IsMatrix():
			elem = left.ColumnType()
		case left.IsVector():
			elem = left.ScalarType()
		default:
			return Type{}, fmt.Errorf("'[]' : left of '[' is not of type array, matrix, or vector")
		}
		elem.Precision = left.Precision
		elem.Qualifier = left.Qualifier
		return elem, nil

	case OpAssign, OpInitialize:
		if !left.SameShape(right) {
			return Type{}, fmt.Errorf("'%s' : cannot convert from '%s' to '%s'", op, right, left)
		}
		return left.Temporary(), nil

	case OpEqual, OpNotEqual:
		if !left.SameShape(right) {
			return Type{}, mismatch(op, left, right)
		}
		if left.Basic.IsSampler() {
			return Type{}, mismatch(op, left, right)
		}
		return boolResult(), nil

	case OpLessThan, OpGreaterThan, OpLessThanEqual, OpGreaterThanEqual:
		if !left.IsScalar() || !left.SameShape(right) || !left.Basic.IsNumeric() {
			return Type{}, mismatch(op, left, right)
		}
		return boolResult(), nil

	case OpLogicalAnd, OpLogicalOr, OpLogicalXor:
		if left.Basic != TypeBool || !left.IsScalar() || !left.SameShape(right) {
			return Type{}, mismatch(op, left, right)
		}
		return boolResult(), nil
	}

	arith := op.ArithmeticOf()
	if !left.Basic.IsNumeric() || !right.Basic.IsNumeric() || left.Basic != right.Basic {
		return Type{}, mismatch(op, left, right)
	}
	if op.IsBitwise() && !left.Basic.IsInteger() {
		return Type{}, mismatch(op, left, right)
	}

	var result Type
	switch arith {
	case OpBitShiftLeft, OpBitShiftRight:
		if right.IsMatrix() || left.IsMatrix() || (right.IsVector() && !right.SameShape(left)) {
			return Type{}, mismatch(op, left, right)
		}
		result = left.Temporary()

	case OpMul:
		switch {
		case left.IsMatrix() && right.IsMatrix():
			if left.Cols() != right.Rows() {
				return Type{}, mismatch(op, left, right)
			}
			result = NewMatrix(right.Cols(), left.Rows())
		case left.IsMatrix() && right.IsVector():
			if left.Cols() != right.PrimarySize {
				return Type{}, mismatch(op, left, right)
			}
			result = NewVector(TypeFloat, left.Rows())
		case left.IsVector() && right.IsMatrix():
			if left.PrimarySize != right.Rows() {
				return Type{}, mismatch(op, left, right)
			}
			result = NewVector(TypeFloat, right.Cols())
		default:
			r, ok := componentWise(left, right)
			if !ok {
				return Type{}, mismatch(op, left, right)
			}
			result = r
		}

	default:
		r, ok := componentWise(left, right)
		if !ok {
			return Type{}, mismatch(op, left, right)
		}
		result = r
	}

	if op.IsAssignment() && !result.SameShape(left) {
		return Type{}, mismatch(op, left, right)
	}
	result.Precision = prec
	return result, nil
}

// componentWise handles scalar/vector/matrix operands combined component by
// component, where one side may be a scalar.
func componentWise(left, right Type) (Type, bool) {
	switch {
	case left.IsScalar():
		return right.Temporary(), true
	case right.IsScalar():
		return left.Temporary(), true
	case left.SameShape(right):
		return left.Temporary(), true
	}
	return Type{}, false
}

// ResolveUnary computes the result type of op applied to operand.
func ResolveUnary(op Operator, operand Type) (Type, error) {
	if operand.IsArray() || operand.Basic.IsSampler() || operand.Basic == TypeVoid {
		return Type{}, fmt.Errorf("'%s' : wrong operand type - no operation '%s' exists that takes an operand of type %s", op, op, operand)
	}
	switch op {
	case OpLogicalNot:
		if operand.Basic != TypeBool || !operand.IsScalar() {
			return Type{}, fmt.Errorf("'!' : wrong operand type - no operation '!' exists that takes an operand of type %s", operand)
		}
	case OpBitwiseNot:
		if !operand.Basic.IsInteger() {
			return Type{}, fmt.Errorf("'~' : wrong operand type - no operation '~' exists that takes an operand of type %s", operand)
		}
	default:
		if !operand.Basic.IsNumeric() {
			return Type{}, fmt.Errorf("'%s' : wrong operand type - no operation '%s' exists that takes an operand of type %s", op, op, operand)
		}
	}
	return operand.Temporary(), nil
}

func boolResult() Type {
	return NewScalar(TypeBool)
}

func mismatch(op Operator, left, right Type) error {
	return fmt.Errorf("'%s' : wrong operand types - no operation '%s' exists that takes a left-hand operand of type '%s' and a right operand of type '%s' (or there is no acceptable conversion)", op, op, left, right)
}
