package passes

import "github.com/gogpu/translator/ir"

// ScalarizeVecAndMatConstructorArgs rewrites vector and matrix
// constructors inside functions so that every argument is a scalar, e.g.
// vec4(v.xy, f, 1.0) becomes vec4(v.x, v.y, f, 1.0).
//
// Arguments that are plain variable references, swizzles or constant
// indexings of them are split in place. Any other vector or matrix
// argument is first stored in a temporary declared before the enclosing
// statement, together with every other non-constant argument so their
// evaluation order is kept. Constructors whose arguments would need a
// temporary but sit in a loop header, a ?: branch or the right side of
// && or || are left as they are. Matrix-from-matrix constructors are never
// rewritten. It returns the number of rewritten constructors.
func ScalarizeVecAndMatConstructorArgs(root *ir.Block, symbols *ir.SymbolTable) int {
	total := 0
	for {
		s := &scalarizer{symbols: symbols}
		t := ir.NewTraverser(true, false, false)
		t.Traverse(root, s)
		t.UpdateTree()
		if s.count == 0 {
			return total
		}
		total += s.count
	}
}

// TempPrefix prefixes the temporaries made by
// ScalarizeVecAndMatConstructorArgs.
const TempPrefix = "angle_sbc"

type scalarizer struct {
	ir.BaseVisitor
	symbols *ir.SymbolTable
	count   int
}

func (s *scalarizer) VisitAggregate(t *ir.Traverser, _ ir.Visit, n *ir.Aggregate) bool {
	if n.Op != ir.OpConstruct || !t.InFunction() || !needsScalarizing(n) {
		return true
	}

	needsTemp := false
	for _, arg := range n.Args {
		if !arg.Type().IsScalar() && !isSimple(arg) {
			needsTemp = true
		}
	}
	if needsTemp && !canHoist(t) {
		return true
	}

	var hoisted []ir.Node
	var args []ir.Typed
	want := n.Type().ComponentCount()
	for _, arg := range n.Args {
		if len(args) >= want {
			break
		}
		if needsTemp && !isConstant(arg) && !isSimple(arg) {
			arg = s.hoist(arg, &hoisted)
		}
		args = append(args, components(arg, want-len(args))...)
	}

	if len(hoisted) > 0 {
		t.InsertStatementsInParentBlock(hoisted, nil)
	}
	c := ir.NewAggregate(ir.OpConstruct, n.Name, args, n.Type())
	c.SetPos(n.Pos())
	t.QueueReplacement(c)
	s.count++
	// Nested constructors are handled by the next round.
	return false
}

// hoist declares a temporary holding arg and returns a reference to it.
func (s *scalarizer) hoist(arg ir.Typed, decls *[]ir.Node) ir.Typed {
	typ := arg.Type().Temporary()
	name := s.symbols.UniqueName(TempPrefix)
	id := s.symbols.AddInternalVariable(name, typ)
	init := ir.NewBinary(ir.OpInitialize, ir.NewSymbol(id, name, typ), arg, typ)
	*decls = append(*decls, ir.NewDeclaration(init))
	ref := ir.NewSymbol(id, name, typ)
	ref.SetPos(arg.Pos())
	return ref
}

func needsScalarizing(n *ir.Aggregate) bool {
	typ := n.Type()
	if typ.IsArray() || typ.IsScalar() {
		return false
	}
	if len(n.Args) == 1 && n.Args[0].Type().IsScalar() {
		return false
	}
	for _, arg := range n.Args {
		at := arg.Type()
		if at.IsMatrix() && typ.IsMatrix() {
			return false
		}
		if at.IsVector() || at.IsMatrix() {
			return true
		}
	}
	return false
}

// canHoist reports whether a statement can be inserted before the
// statement containing the current node without changing how often, or
// whether, the node is evaluated.
func canHoist(t *ir.Traverser) bool {
	child := t.Ancestor(0)
	for i := 1; ; i++ {
		a := t.Ancestor(i)
		switch a := a.(type) {
		case nil:
			return false
		case *ir.Block:
			_, isLoop := child.(*ir.Loop)
			return !isLoop
		case *ir.Ternary:
			if child != ir.Node(a.Cond) {
				return false
			}
		case *ir.Binary:
			if (a.Op == ir.OpLogicalAnd || a.Op == ir.OpLogicalOr) && child == ir.Node(a.Right) {
				return false
			}
		}
		child = a
	}
}

func isConstant(n ir.Typed) bool {
	_, ok := n.(*ir.ConstantUnion)
	return ok
}

// isSimple reports whether n can be duplicated without changing what the
// program does.
func isSimple(n ir.Typed) bool {
	switch n := n.(type) {
	case *ir.Symbol, *ir.ConstantUnion:
		return true
	case *ir.Swizzle:
		return isSimple(n.Operand)
	case *ir.Binary:
		return n.Op == ir.OpIndexDirect && isSimple(n.Left)
	}
	return false
}

// clone copies a simple expression.
func clone(n ir.Typed) ir.Typed {
	var c ir.Typed
	switch n := n.(type) {
	case *ir.Symbol:
		c = ir.NewSymbol(n.ID, n.Name, n.Type())
	case *ir.ConstantUnion:
		c = ir.NewConstantUnion(append([]ir.Constant(nil), n.Values...), n.Type())
	case *ir.Swizzle:
		c = ir.NewSwizzle(clone(n.Operand), append([]int(nil), n.Offsets...))
	case *ir.Binary:
		c = ir.NewBinary(n.Op, clone(n.Left), clone(n.Right), n.Type())
	default:
		panic(ir.InternalErrorf("cannot copy %T", n))
	}
	c.SetPos(n.Pos())
	return c
}

// components splits arg into at most limit scalar expressions. A scalar
// argument is returned as is.
func components(arg ir.Typed, limit int) []ir.Typed {
	typ := arg.Type()
	switch {
	case typ.IsScalar():
		return []ir.Typed{arg}
	case typ.IsVector():
		n := min(int(typ.PrimarySize), limit)
		out := make([]ir.Typed, n)
		for i := 0; i < n; i++ {
			out[i] = ir.NewSwizzle(clone(arg), []int{i})
		}
		return out
	}

	var out []ir.Typed
	col := typ.ColumnType()
	scalar := typ.ScalarType()
	for c := 0; c < int(typ.Cols()) && len(out) < limit; c++ {
		for r := 0; r < int(typ.Rows()) && len(out) < limit; r++ {
			column := ir.NewBinary(ir.OpIndexDirect, clone(arg), ir.NewIntConstant(int32(c)), col)
			out = append(out, ir.NewBinary(ir.OpIndexDirect, column, ir.NewIntConstant(int32(r)), scalar))
		}
	}
	return out
}
