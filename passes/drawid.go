package passes

import "github.com/gogpu/translator/ir"

// DrawIDName is the uniform that stands in for gl_DrawID.
const DrawIDName = "angle_DrawID"

// EmulateGLDrawID replaces every read of gl_DrawID with a read of the
// uniform angle_DrawID and declares that uniform right before main. The
// uniform is added to symbols on the first replacement. It returns the
// number of replaced reads; when it is zero the tree is unchanged.
func EmulateGLDrawID(root *ir.Block, symbols *ir.SymbolTable) int {
	d := &drawIDReplacer{symbols: symbols, id: ir.InvalidSymbol}
	t := ir.NewTraverser(true, false, false)
	t.Traverse(root, d)
	t.UpdateTree()
	if d.replaced == 0 {
		return 0
	}

	decl := ir.NewDeclaration(d.symbol())
	ins := &mainInserter{stmts: []ir.Node{decl}}
	t.Traverse(root, ins)
	if !ins.done {
		panic(ir.InternalErrorf("gl_DrawID emulated in a shader without main"))
	}
	t.UpdateTree()
	return d.replaced
}

func drawIDType() ir.Type {
	typ := ir.NewScalar(ir.TypeInt)
	typ.Precision = ir.PrecisionHigh
	typ.Qualifier = ir.QualUniform
	return typ
}

type drawIDReplacer struct {
	ir.BaseVisitor
	symbols  *ir.SymbolTable
	id       ir.SymbolID
	replaced int
}

func (d *drawIDReplacer) symbol() *ir.Symbol {
	if d.id == ir.InvalidSymbol {
		d.id = d.symbols.AddInternalVariable(DrawIDName, drawIDType())
	}
	return ir.NewSymbol(d.id, DrawIDName, drawIDType())
}

func (d *drawIDReplacer) VisitSymbol(t *ir.Traverser, n *ir.Symbol) {
	if n.Type().Qualifier != ir.QualDrawID {
		return
	}
	s := d.symbol()
	s.SetPos(n.Pos())
	t.QueueReplacement(s)
	d.replaced++
}

// mainInserter inserts statements before the definition of main.
type mainInserter struct {
	ir.BaseVisitor
	stmts []ir.Node
	done  bool
}

func (m *mainInserter) VisitFunctionDefinition(t *ir.Traverser, _ ir.Visit, n *ir.FunctionDefinition) bool {
	if n.Name() == "main" && !m.done {
		t.InsertStatementsInParentBlock(m.stmts, nil)
		m.done = true
	}
	return false
}
