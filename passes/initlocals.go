package passes

import "github.com/gogpu/translator/ir"

// InitializeUninitializedLocals gives every local variable declared
// without an initializer a zero value. Scalars, vectors and matrices get
// an initializer in the declaration itself; arrays get one assignment per
// element right after the declaration. Arrays declared in a for-loop
// header are left alone. It returns the number of initialized variables.
func InitializeUninitializedLocals(root *ir.Block) int {
	z := &zeroInitializer{}
	t := ir.NewTraverser(true, false, false)
	t.Traverse(root, z)
	t.UpdateTree()
	return z.count
}

type zeroInitializer struct {
	ir.BaseVisitor
	count int
}

func (z *zeroInitializer) VisitDeclaration(t *ir.Traverser, _ ir.Visit, n *ir.Declaration) bool {
	if !t.InFunction() || n.Invariant {
		return false
	}
	_, inLoopHeader := t.Parent().(*ir.Loop)

	var after []ir.Node
	for _, v := range n.Vars {
		sym, ok := v.(*ir.Symbol)
		if !ok {
			continue
		}
		typ := sym.Type()
		if typ.Qualifier != ir.QualTemporary {
			continue
		}
		switch {
		case !typ.IsArray():
			init := ir.NewBinary(ir.OpInitialize, sym, zeroValue(typ), typ.Temporary())
			t.QueueReplacementWithParent(n, sym, init)
		case len(typ.ArraySizes) == 1 && !inLoopHeader:
			elem := typ.ElementType()
			for i := uint32(0); i < typ.ArraySizes[0]; i++ {
				target := ir.NewBinary(ir.OpIndexDirect,
					ir.NewSymbol(sym.ID, sym.Name, typ), ir.NewIntConstant(int32(i)), elem.Temporary())
				after = append(after, ir.NewBinary(ir.OpAssign, target, zeroValue(elem), elem.Temporary()))
			}
		default:
			continue
		}
		z.count++
	}
	if len(after) > 0 {
		t.InsertStatementsInParentBlock(nil, after)
	}
	return false
}

// zeroValue returns a constant of typ's shape with all components zero.
func zeroValue(typ ir.Type) *ir.ConstantUnion {
	values := make([]ir.Constant, typ.ComponentCount())
	var zero ir.Constant
	switch typ.Basic {
	case ir.TypeInt:
		zero = ir.IntConst(0)
	case ir.TypeUInt:
		zero = ir.UIntConst(0)
	case ir.TypeBool:
		zero = ir.BoolConst(false)
	default:
		zero = ir.FloatConst(0)
	}
	for i := range values {
		values[i] = zero
	}
	return ir.NewConstantUnion(values, typ.Temporary().WithQualifier(ir.QualConst))
}
