package ir

import (
	"fmt"
	"strings"
)

// Dump returns a textual rendering of the tree, one node per line,
// indented by depth. It backs the intermediate-tree compile option.
func Dump(root Node) string {
	d := &dumper{}
	t := NewTraverser(true, false, false)
	t.Traverse(root, d)
	return d.sb.String()
}

type dumper struct {
	BaseVisitor
	sb strings.Builder
}

func (d *dumper) line(t *Traverser, n Node, format string, args ...interface{}) {
	fmt.Fprintf(&d.sb, "0:%d: ", n.Pos().Line)
	d.sb.WriteString(strings.Repeat("  ", t.Depth()))
	fmt.Fprintf(&d.sb, format, args...)
	d.sb.WriteByte('\n')
}

func (d *dumper) VisitSymbol(t *Traverser, n *Symbol) {
	d.line(t, n, "'%s' (symbol id %d) (%s)", n.Name, n.ID.index(), n.Type().Describe())
}

func (d *dumper) VisitConstantUnion(t *Traverser, n *ConstantUnion) {
	vals := make([]string, len(n.Values))
	for i, v := range n.Values {
		vals[i] = v.String()
	}
	d.line(t, n, "Constant union (%s) {%s}", n.Type().Describe(), strings.Join(vals, ", "))
}

func (d *dumper) VisitFunctionPrototype(t *Traverser, n *FunctionPrototype) {
	d.line(t, n, "Function Prototype: %s (%s)", n.Name, n.Return.Describe())
	for _, p := range n.Params {
		d.line(t, n, "  parameter '%s' (%s)", p.Name, p.Type().Describe())
	}
}

func (d *dumper) VisitBinary(t *Traverser, _ Visit, n *Binary) bool {
	d.line(t, n, "%s (%s)", binaryLabel(n.Op), n.Type().Describe())
	return true
}

func (d *dumper) VisitUnary(t *Traverser, _ Visit, n *Unary) bool {
	d.line(t, n, "%s (%s)", unaryLabel(n.Op), n.Type().Describe())
	return true
}

func (d *dumper) VisitTernary(t *Traverser, _ Visit, n *Ternary) bool {
	d.line(t, n, "Ternary selection (%s)", n.Type().Describe())
	return true
}

func (d *dumper) VisitSwizzle(t *Traverser, _ Visit, n *Swizzle) bool {
	d.line(t, n, "vector swizzle (%s) (%s)", n.Letters(), n.Type().Describe())
	return true
}

func (d *dumper) VisitAggregate(t *Traverser, _ Visit, n *Aggregate) bool {
	switch n.Op {
	case OpConstruct:
		d.line(t, n, "Construct %s (%s)", n.Type().BaseName(), n.Type().Describe())
	case OpCallFunctionInAST:
		d.line(t, n, "Call a user-defined function: '%s' (%s)", n.Name, n.Type().Describe())
	case OpCallInternalRawFunction:
		d.line(t, n, "Call an internal function with raw implementation: '%s' (%s)", n.Name, n.Type().Describe())
	default:
		d.line(t, n, "Call a built-in function: '%s' (%s)", n.Op, n.Type().Describe())
	}
	return true
}

func (d *dumper) VisitBlock(t *Traverser, _ Visit, n *Block) bool {
	if t.Depth() > 0 {
		d.line(t, n, "Code block")
	}
	return true
}

func (d *dumper) VisitDeclaration(t *Traverser, _ Visit, n *Declaration) bool {
	if n.Invariant {
		d.line(t, n, "Invariant Declaration:")
	} else {
		d.line(t, n, "Declaration")
	}
	return true
}

func (d *dumper) VisitFunctionDefinition(t *Traverser, _ Visit, n *FunctionDefinition) bool {
	d.line(t, n, "Function Definition:")
	return true
}

func (d *dumper) VisitSelection(t *Traverser, _ Visit, n *Selection) bool {
	d.line(t, n, "If test")
	return true
}

func (d *dumper) VisitLoop(t *Traverser, _ Visit, n *Loop) bool {
	kind := "for"
	switch n.Kind {
	case LoopWhile:
		kind = "while"
	case LoopDoWhile:
		kind = "do-while"
	}
	d.line(t, n, "Loop with condition tested first (%s)", kind)
	return true
}

func (d *dumper) VisitBranch(t *Traverser, _ Visit, n *Branch) bool {
	switch n.Op {
	case OpKill:
		d.line(t, n, "Branch: Kill")
	case OpReturn:
		d.line(t, n, "Branch: Return")
	case OpBreak:
		d.line(t, n, "Branch: Break")
	case OpContinue:
		d.line(t, n, "Branch: Continue")
	}
	return true
}

func binaryLabel(op Operator) string {
	switch op {
	case OpAssign:
		return "move second child to first child"
	case OpInitialize:
		return "initialize first child with second child"
	case OpIndexDirect:
		return "direct index"
	case OpIndexIndirect:
		return "indirect index"
	case OpComma:
		return "comma"
	}
	return fmt.Sprintf("binary '%s'", op)
}

func unaryLabel(op Operator) string {
	switch op {
	case OpPostIncrement:
		return "Post-Increment"
	case OpPostDecrement:
		return "Post-Decrement"
	case OpPreIncrement:
		return "Pre-Increment"
	case OpPreDecrement:
		return "Pre-Decrement"
	case OpNegative:
		return "Negate value"
	case OpLogicalNot:
		return "negation"
	}
	return fmt.Sprintf("unary '%s'", op)
}
