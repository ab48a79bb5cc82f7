package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function string
	Pos      Pos
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("in function %s, %d:%d: %s", e.Function, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

// Validator checks structural invariants of a tree after transformation
// passes ran. User errors are reported by the frontend; anything the
// validator finds is a compiler defect.
type Validator struct {
	BaseVisitor
	symbols *SymbolTable
	errors  []ValidationError
	seen    map[Node]struct{}
	loops   int
}

// Validate checks the tree rooted at root against the symbols of its
// compilation. It returns nil when the tree is well formed.
func Validate(root *Block, symbols *SymbolTable) ([]ValidationError, error) {
	if root == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if symbols == nil {
		return nil, fmt.Errorf("symbol table is nil")
	}

	v := &Validator{
		symbols: symbols,
		seen:    make(map[Node]struct{}),
	}
	t := NewTraverser(true, false, true)
	t.Traverse(root, v)

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// visitOnce reports a node reachable from two parents. Edits to a shared
// node would silently apply twice.
func (v *Validator) visitOnce(t *Traverser, n Node) {
	if _, dup := v.seen[n]; dup {
		v.addError(t, n, fmt.Sprintf("node %T is shared by more than one parent", n))
		return
	}
	v.seen[n] = struct{}{}
}

func (v *Validator) VisitSymbol(t *Traverser, n *Symbol) {
	if n.ID == InvalidSymbol {
		v.addError(t, n, fmt.Sprintf("symbol '%s' has no handle", n.Name))
		return
	}
	e := v.entry(t, n, n.ID)
	if e == nil {
		return
	}
	if e.Name != n.Name {
		v.addError(t, n, fmt.Sprintf("symbol '%s' refers to entry '%s'", n.Name, e.Name))
	}
	if e.Function == nil && !e.Type.SameShape(n.Type()) {
		v.addError(t, n, fmt.Sprintf("symbol '%s' has type %s, entry has %s", n.Name, n.Type(), e.Type))
	}
}

func (v *Validator) VisitConstantUnion(t *Traverser, n *ConstantUnion) {
	v.visitOnce(t, n)
	if len(n.Values) != n.Type().ComponentCount()*n.Type().ArrayElements() {
		v.addError(t, n, fmt.Sprintf("constant of type %s holds %d values", n.Type(), len(n.Values)))
	}
}

func (v *Validator) VisitFunctionPrototype(t *Traverser, n *FunctionPrototype) {
	v.visitOnce(t, n)
	if n.Func == InvalidSymbol {
		return
	}
	if e := v.entry(t, n, n.Func); e != nil && e.Function == nil {
		v.addError(t, n, fmt.Sprintf("prototype '%s' refers to a non-function entry", n.Name))
	}
}

func (v *Validator) VisitBinary(t *Traverser, visit Visit, n *Binary) bool {
	if visit != PreVisit {
		return true
	}
	v.visitOnce(t, n)
	if n.Left == nil || n.Right == nil {
		v.addError(t, n, fmt.Sprintf("binary '%s' is missing an operand", n.Op))
		return false
	}
	if n.Op == OpAssign || n.Op == OpInitialize {
		if !n.Left.Type().SameShape(n.Right.Type()) {
			v.addError(t, n, fmt.Sprintf("'%s' assigns %s to %s", n.Op, n.Right.Type(), n.Left.Type()))
		}
	}
	if n.Op == OpInitialize {
		if _, ok := t.Parent().(*Declaration); !ok {
			v.addError(t, n, "initialization outside a declaration")
		}
	}
	return true
}

func (v *Validator) VisitUnary(t *Traverser, visit Visit, n *Unary) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		if n.Operand == nil {
			v.addError(t, n, fmt.Sprintf("unary '%s' has no operand", n.Op))
			return false
		}
	}
	return true
}

func (v *Validator) VisitTernary(t *Traverser, visit Visit, n *Ternary) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		if n.Cond == nil || n.True == nil || n.False == nil {
			v.addError(t, n, "ternary is missing an operand")
			return false
		}
		if !n.True.Type().SameShape(n.False.Type()) {
			v.addError(t, n, "ternary branches differ in type")
		}
	}
	return true
}

func (v *Validator) VisitSwizzle(t *Traverser, visit Visit, n *Swizzle) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		if n.Operand == nil {
			v.addError(t, n, "swizzle has no operand")
			return false
		}
		size := int(n.Operand.Type().PrimarySize)
		for _, o := range n.Offsets {
			if o < 0 || o >= size {
				v.addError(t, n, fmt.Sprintf("swizzle offset %d out of range for %s", o, n.Operand.Type()))
			}
		}
	}
	return true
}

func (v *Validator) VisitAggregate(t *Traverser, visit Visit, n *Aggregate) bool {
	if visit != PreVisit {
		return true
	}
	v.visitOnce(t, n)
	switch n.Op {
	case OpCallFunctionInAST:
		e := v.entry(t, n, n.Func)
		if e == nil {
			return true
		}
		if e.Function == nil {
			v.addError(t, n, fmt.Sprintf("call to '%s' targets a variable", n.Name))
			return true
		}
		if len(e.Function.Params) != len(n.Args) {
			v.addError(t, n, fmt.Sprintf("call to '%s' passes %d arguments, want %d", n.Name, len(n.Args), len(e.Function.Params)))
		}
	case OpCallInternalRawFunction:
		if n.Name == "" {
			v.addError(t, n, "raw function call without a name")
		}
	case OpConstruct:
		if len(n.Args) == 0 {
			v.addError(t, n, fmt.Sprintf("constructor of %s without arguments", n.Type()))
		}
	default:
		if !n.Op.IsBuiltinFunction() {
			v.addError(t, n, fmt.Sprintf("aggregate with non-call operator '%s'", n.Op))
		}
	}
	return true
}

func (v *Validator) VisitBlock(t *Traverser, visit Visit, n *Block) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		for _, s := range n.Statements {
			if s == nil {
				v.addError(t, n, "block contains a nil statement")
				return false
			}
		}
	}
	return true
}

func (v *Validator) VisitDeclaration(t *Traverser, visit Visit, n *Declaration) bool {
	if visit != PreVisit {
		return true
	}
	v.visitOnce(t, n)
	if len(n.Vars) == 0 {
		v.addError(t, n, "empty declaration")
	}
	for _, d := range n.Vars {
		switch d := d.(type) {
		case *Symbol:
		case *Binary:
			if _, ok := d.Left.(*Symbol); !ok || d.Op != OpInitialize {
				v.addError(t, n, fmt.Sprintf("declaration entry is '%s', not an initializer", d.Op))
			}
		default:
			v.addError(t, n, fmt.Sprintf("declaration entry is %T", d))
		}
	}
	return true
}

func (v *Validator) VisitFunctionDefinition(t *Traverser, visit Visit, n *FunctionDefinition) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		if n.Prototype == nil || n.Body == nil {
			v.addError(t, n, "function definition without prototype or body")
			return false
		}
		if !t.InGlobalScope() {
			v.addError(t, n, fmt.Sprintf("function '%s' is not defined at global scope", n.Name()))
		}
	}
	return true
}

func (v *Validator) VisitSelection(t *Traverser, visit Visit, n *Selection) bool {
	if visit == PreVisit {
		v.visitOnce(t, n)
		if n.Cond == nil || !n.Cond.Type().SameShape(NewScalar(TypeBool)) {
			v.addError(t, n, "if condition is not a bool scalar")
		}
	}
	return true
}

func (v *Validator) VisitLoop(t *Traverser, visit Visit, n *Loop) bool {
	switch visit {
	case PreVisit:
		v.visitOnce(t, n)
		if n.Cond != nil && !n.Cond.Type().SameShape(NewScalar(TypeBool)) {
			v.addError(t, n, "loop condition is not a bool scalar")
		}
		v.loops++
	case PostVisit:
		v.loops--
	}
	return true
}

func (v *Validator) VisitBranch(t *Traverser, visit Visit, n *Branch) bool {
	if visit != PreVisit {
		return true
	}
	v.visitOnce(t, n)
	switch n.Op {
	case OpBreak, OpContinue:
		if v.loops == 0 {
			v.addError(t, n, fmt.Sprintf("'%s' outside a loop", n.Op))
		}
	case OpReturn:
		fn := t.CurrentFunction()
		if fn == nil {
			v.addError(t, n, "return outside a function")
			break
		}
		want := fn.Prototype.Return
		switch {
		case n.Value == nil && want.Basic != TypeVoid:
			v.addError(t, n, fmt.Sprintf("return without a value in function returning %s", want))
		case n.Value != nil && !n.Value.Type().SameShape(want):
			v.addError(t, n, fmt.Sprintf("return of %s in function returning %s", n.Value.Type(), want))
		}
	case OpKill:
	default:
		v.addError(t, n, fmt.Sprintf("branch with operator '%s'", n.Op))
	}
	return true
}

// entry resolves id, turning stale or foreign handles into errors.
func (v *Validator) entry(t *Traverser, n Node, id SymbolID) (e *Entry) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			v.addError(t, n, ie.Message)
			e = nil
		}
	}()
	return v.symbols.Entry(id)
}

func (v *Validator) addError(t *Traverser, n Node, msg string) {
	err := ValidationError{Message: msg, Pos: n.Pos()}
	if fn := t.CurrentFunction(); fn != nil && fn.Prototype != nil {
		err.Function = fn.Name()
	}
	v.errors = append(v.errors, err)
}
