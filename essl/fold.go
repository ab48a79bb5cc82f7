package essl

import (
	"github.com/gogpu/translator/ir"
)

// Constant folding. Folded nodes are ConstantUnions with a const type so
// they can initialize const variables and size arrays.

func constantOf(n ir.Typed) (*ir.ConstantUnion, bool) {
	k, ok := n.(*ir.ConstantUnion)
	return k, ok
}

func folded(values []ir.Constant, typ ir.Type) *ir.ConstantUnion {
	typ = typ.Clone()
	typ.Qualifier = ir.QualConst
	return ir.NewConstantUnion(values, typ)
}

// foldBinary evaluates left op right when both are constants. Matrix
// products, assignments and integer division by zero are left unfolded.
func foldBinary(op ir.Operator, left, right ir.Typed, typ ir.Type) (*ir.ConstantUnion, bool) {
	l, ok := constantOf(left)
	if !ok {
		return nil, false
	}
	r, ok := constantOf(right)
	if !ok {
		return nil, false
	}
	if op.IsAssignment() || op == ir.OpComma || op == ir.OpIndexDirect || op == ir.OpIndexIndirect {
		return nil, false
	}
	lt, rt := l.Type(), r.Type()
	if lt.IsArray() || rt.IsArray() {
		return nil, false
	}

	switch op {
	case ir.OpEqual, ir.OpNotEqual:
		eq := len(l.Values) == len(r.Values)
		for i := 0; eq && i < len(l.Values); i++ {
			eq = l.Values[i].Equal(r.Values[i])
		}
		return folded([]ir.Constant{ir.BoolConst(eq == (op == ir.OpEqual))}, typ), true
	case ir.OpLogicalAnd:
		return folded([]ir.Constant{ir.BoolConst(l.Values[0].B && r.Values[0].B)}, typ), true
	case ir.OpLogicalOr:
		return folded([]ir.Constant{ir.BoolConst(l.Values[0].B || r.Values[0].B)}, typ), true
	case ir.OpLogicalXor:
		return folded([]ir.Constant{ir.BoolConst(l.Values[0].B != r.Values[0].B)}, typ), true
	case ir.OpLessThan, ir.OpGreaterThan, ir.OpLessThanEqual, ir.OpGreaterThanEqual:
		return folded([]ir.Constant{ir.BoolConst(compareConst(op, l.Values[0], r.Values[0]))}, typ), true
	case ir.OpMul:
		if lt.IsMatrix() || rt.IsMatrix() {
			if !lt.IsScalar() && !rt.IsScalar() {
				return nil, false
			}
		}
	}

	n := typ.ComponentCount()
	values := make([]ir.Constant, n)
	for i := 0; i < n; i++ {
		a := l.Values[0]
		if len(l.Values) > 1 {
			a = l.Values[i]
		}
		b := r.Values[0]
		if len(r.Values) > 1 {
			// Shifts may pair a vector with a scalar amount.
			b = r.Values[i%len(r.Values)]
		}
		v, ok := foldArith(op, a, b)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return folded(values, typ), true
}

func compareConst(op ir.Operator, a, b ir.Constant) bool {
	var c int
	switch a.Kind {
	case ir.TypeFloat:
		c = cmp(a.F < b.F, a.F > b.F)
	case ir.TypeInt:
		c = cmp(a.I < b.I, a.I > b.I)
	case ir.TypeUInt:
		c = cmp(a.U < b.U, a.U > b.U)
	}
	switch op {
	case ir.OpLessThan:
		return c < 0
	case ir.OpGreaterThan:
		return c > 0
	case ir.OpLessThanEqual:
		return c <= 0
	default:
		return c >= 0
	}
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// foldArith evaluates one component of an arithmetic or bitwise operator.
func foldArith(op ir.Operator, a, b ir.Constant) (ir.Constant, bool) {
	switch a.Kind {
	case ir.TypeFloat:
		switch op {
		case ir.OpAdd:
			return ir.FloatConst(a.F + b.F), true
		case ir.OpSub:
			return ir.FloatConst(a.F - b.F), true
		case ir.OpMul:
			return ir.FloatConst(a.F * b.F), true
		case ir.OpDiv:
			return ir.FloatConst(a.F / b.F), true
		}
	case ir.TypeInt:
		bi := b.I
		if b.Kind == ir.TypeUInt {
			bi = int32(b.U)
		}
		switch op {
		case ir.OpAdd:
			return ir.IntConst(a.I + bi), true
		case ir.OpSub:
			return ir.IntConst(a.I - bi), true
		case ir.OpMul:
			return ir.IntConst(a.I * bi), true
		case ir.OpDiv:
			if bi == 0 {
				return ir.Constant{}, false
			}
			return ir.IntConst(a.I / bi), true
		case ir.OpIMod:
			if bi == 0 {
				return ir.Constant{}, false
			}
			return ir.IntConst(a.I % bi), true
		case ir.OpBitShiftLeft:
			if bi < 0 || bi > 31 {
				return ir.Constant{}, false
			}
			return ir.IntConst(a.I << uint(bi)), true
		case ir.OpBitShiftRight:
			if bi < 0 || bi > 31 {
				return ir.Constant{}, false
			}
			return ir.IntConst(a.I >> uint(bi)), true
		case ir.OpBitwiseAnd:
			return ir.IntConst(a.I & bi), true
		case ir.OpBitwiseOr:
			return ir.IntConst(a.I | bi), true
		case ir.OpBitwiseXor:
			return ir.IntConst(a.I ^ bi), true
		}
	case ir.TypeUInt:
		bu := b.U
		if b.Kind == ir.TypeInt {
			bu = uint32(b.I)
		}
		switch op {
		case ir.OpAdd:
			return ir.UIntConst(a.U + bu), true
		case ir.OpSub:
			return ir.UIntConst(a.U - bu), true
		case ir.OpMul:
			return ir.UIntConst(a.U * bu), true
		case ir.OpDiv:
			if bu == 0 {
				return ir.Constant{}, false
			}
			return ir.UIntConst(a.U / bu), true
		case ir.OpIMod:
			if bu == 0 {
				return ir.Constant{}, false
			}
			return ir.UIntConst(a.U % bu), true
		case ir.OpBitShiftLeft:
			if bu > 31 {
				return ir.Constant{}, false
			}
			return ir.UIntConst(a.U << bu), true
		case ir.OpBitShiftRight:
			if bu > 31 {
				return ir.Constant{}, false
			}
			return ir.UIntConst(a.U >> bu), true
		case ir.OpBitwiseAnd:
			return ir.UIntConst(a.U & bu), true
		case ir.OpBitwiseOr:
			return ir.UIntConst(a.U | bu), true
		case ir.OpBitwiseXor:
			return ir.UIntConst(a.U ^ bu), true
		}
	}
	return ir.Constant{}, false
}

// foldUnary evaluates a unary operator on a constant operand.
func foldUnary(op ir.Operator, operand ir.Typed, typ ir.Type) (*ir.ConstantUnion, bool) {
	k, ok := constantOf(operand)
	if !ok || op.IsIncDec() {
		return nil, false
	}
	values := make([]ir.Constant, len(k.Values))
	for i, v := range k.Values {
		switch op {
		case ir.OpPositive:
			values[i] = v
		case ir.OpNegative:
			switch v.Kind {
			case ir.TypeFloat:
				values[i] = ir.FloatConst(-v.F)
			case ir.TypeInt:
				values[i] = ir.IntConst(-v.I)
			case ir.TypeUInt:
				values[i] = ir.UIntConst(-v.U)
			default:
				return nil, false
			}
		case ir.OpLogicalNot:
			values[i] = ir.BoolConst(!v.B)
		case ir.OpBitwiseNot:
			switch v.Kind {
			case ir.TypeInt:
				values[i] = ir.IntConst(^v.I)
			case ir.TypeUInt:
				values[i] = ir.UIntConst(^v.U)
			default:
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return folded(values, typ), true
}

// foldIndex selects element i of a constant vector, matrix or array.
func foldIndex(base ir.Typed, i int, typ ir.Type) (*ir.ConstantUnion, bool) {
	k, ok := constantOf(base)
	if !ok {
		return nil, false
	}
	n := typ.ComponentCount() * typ.ArrayElements()
	if (i+1)*n > len(k.Values) {
		return nil, false
	}
	values := append([]ir.Constant(nil), k.Values[i*n:(i+1)*n]...)
	return folded(values, typ), true
}

// foldSwizzle selects components of a constant vector.
func foldSwizzle(base ir.Typed, offsets []int) (*ir.ConstantUnion, bool) {
	k, ok := constantOf(base)
	if !ok {
		return nil, false
	}
	values := make([]ir.Constant, len(offsets))
	for i, o := range offsets {
		values[i] = k.Values[o]
	}
	typ := ir.NewVector(k.Type().Basic, uint8(len(offsets)))
	if len(offsets) == 1 {
		typ = ir.NewScalar(k.Type().Basic)
	}
	typ.Precision = k.Type().Precision
	return folded(values, typ), true
}

// foldConstructor evaluates a constructor whose arguments are all
// constants, following the GLSL conversion rules.
func foldConstructor(typ ir.Type, args []ir.Typed) (*ir.ConstantUnion, bool) {
	consts := make([]*ir.ConstantUnion, len(args))
	for i, arg := range args {
		k, ok := constantOf(arg)
		if !ok {
			return nil, false
		}
		consts[i] = k
	}

	n := typ.ComponentCount()
	values := make([]ir.Constant, 0, n)
	first := consts[0]

	switch {
	case typ.IsScalar():
		values = append(values, first.Values[0].Cast(typ.Basic))

	case len(consts) == 1 && first.Type().IsScalar():
		v := first.Values[0].Cast(typ.Basic)
		if typ.IsMatrix() {
			zero := ir.FloatConst(0)
			for col := 0; col < int(typ.Cols()); col++ {
				for row := 0; row < int(typ.Rows()); row++ {
					if col == row {
						values = append(values, v)
					} else {
						values = append(values, zero)
					}
				}
			}
		} else {
			for i := 0; i < n; i++ {
				values = append(values, v)
			}
		}

	case len(consts) == 1 && first.Type().IsMatrix() && typ.IsMatrix():
		src := first.Type()
		for col := 0; col < int(typ.Cols()); col++ {
			for row := 0; row < int(typ.Rows()); row++ {
				switch {
				case col < int(src.Cols()) && row < int(src.Rows()):
					values = append(values, first.Values[col*int(src.Rows())+row])
				case col == row:
					values = append(values, ir.FloatConst(1))
				default:
					values = append(values, ir.FloatConst(0))
				}
			}
		}

	default:
		for _, k := range consts {
			for _, v := range k.Values {
				if len(values) == n {
					break
				}
				values = append(values, v.Cast(typ.Basic))
			}
		}
	}
	return folded(values, typ), true
}

// foldArrayConstructor concatenates the values of constant elements.
func foldArrayConstructor(typ ir.Type, args []ir.Typed) (*ir.ConstantUnion, bool) {
	values := make([]ir.Constant, 0, typ.ComponentCount()*typ.ArrayElements())
	for _, arg := range args {
		k, ok := constantOf(arg)
		if !ok {
			return nil, false
		}
		values = append(values, k.Values...)
	}
	return folded(values, typ), true
}
