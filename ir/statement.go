package ir

// Block is a sequence of statements. The translation unit itself is a Block
// whose statements are global declarations and function definitions.
type Block struct {
	base
	Statements []Node
}

func (*Block) node() {}

// NewBlock returns a block holding stmts.
func NewBlock(stmts ...Node) *Block {
	return &Block{Statements: stmts}
}

// Append adds statements to the end of the block.
func (b *Block) Append(stmts ...Node) {
	b.Statements = append(b.Statements, stmts...)
}

// IndexOf returns the position of stmt in the block, or -1.
func (b *Block) IndexOf(stmt Node) int {
	for i, s := range b.Statements {
		if s == stmt {
			return i
		}
	}
	return -1
}

func (b *Block) replaceChild(original, replacement Node) bool {
	if i := b.IndexOf(original); i >= 0 {
		b.Statements[i] = replacement
		return true
	}
	return false
}

// replaceChildWithMultiple splices replacements in place of original.
func (b *Block) replaceChildWithMultiple(original Node, replacements []Node) bool {
	i := b.IndexOf(original)
	if i < 0 {
		return false
	}
	stmts := make([]Node, 0, len(b.Statements)-1+len(replacements))
	stmts = append(stmts, b.Statements[:i]...)
	stmts = append(stmts, replacements...)
	stmts = append(stmts, b.Statements[i+1:]...)
	b.Statements = stmts
	return true
}

// insertChildNodes inserts nodes before the statement at index i.
func (b *Block) insertChildNodes(i int, nodes []Node) {
	stmts := make([]Node, 0, len(b.Statements)+len(nodes))
	stmts = append(stmts, b.Statements[:i]...)
	stmts = append(stmts, nodes...)
	stmts = append(stmts, b.Statements[i:]...)
	b.Statements = stmts
}

// Declaration declares one or more variables that share a base type.
// Each entry of Vars is either a *Symbol or a *Binary with OpInitialize
// whose left operand is the declared *Symbol.
//
// An invariant redeclaration ("invariant v_color;") is a Declaration with
// Invariant set and only *Symbol entries referring to existing variables.
type Declaration struct {
	base
	Invariant bool
	Vars      []Typed
}

func (*Declaration) node() {}

// NewDeclaration returns a declaration of vars.
func NewDeclaration(vars ...Typed) *Declaration {
	d := &Declaration{Vars: vars}
	if len(vars) > 0 {
		d.pos = vars[0].Pos()
	}
	return d
}

// DeclaredSymbol returns the symbol declared by entry i.
func (d *Declaration) DeclaredSymbol(i int) *Symbol {
	switch v := d.Vars[i].(type) {
	case *Symbol:
		return v
	case *Binary:
		if s, ok := v.Left.(*Symbol); ok {
			return s
		}
	}
	panic(InternalErrorf("declaration entry %d is %T, not a symbol or initializer", i, d.Vars[i]))
}

func (d *Declaration) replaceChild(original, replacement Node) bool {
	for i, v := range d.Vars {
		if Node(v) == original {
			d.Vars[i] = mustTyped(replacement)
			return true
		}
	}
	return false
}

// FunctionPrototype is the signature of a function. It is a leaf: parameters
// are symbols owned by the prototype, not visited as children.
type FunctionPrototype struct {
	base
	Name   string
	Func   SymbolID
	Return Type
	Params []*Symbol
}

func (*FunctionPrototype) node() {}

// FunctionDefinition is a function with a body.
type FunctionDefinition struct {
	base
	Prototype *FunctionPrototype
	Body      *Block
}

func (*FunctionDefinition) node() {}

// Name returns the function name.
func (f *FunctionDefinition) Name() string { return f.Prototype.Name }

func (f *FunctionDefinition) replaceChild(original, replacement Node) bool {
	switch original {
	case Node(f.Prototype):
		p, ok := replacement.(*FunctionPrototype)
		if !ok {
			panic(InternalErrorf("function prototype replaced by %T", replacement))
		}
		f.Prototype = p
	case Node(f.Body):
		b, ok := replacement.(*Block)
		if !ok {
			panic(InternalErrorf("function body replaced by %T", replacement))
		}
		f.Body = b
	default:
		return false
	}
	return true
}

// Selection is an if statement. False may be nil.
type Selection struct {
	base
	Cond  Typed
	True  *Block
	False *Block
}

func (*Selection) node() {}

// NewSelection returns an if statement. falseBlock may be nil.
func NewSelection(cond Typed, trueBlock, falseBlock *Block) *Selection {
	s := &Selection{Cond: cond, True: trueBlock, False: falseBlock}
	s.pos = cond.Pos()
	return s
}

func (s *Selection) replaceChild(original, replacement Node) bool {
	switch {
	case original == Node(s.Cond):
		s.Cond = mustTyped(replacement)
	case s.True != nil && original == Node(s.True):
		s.True = mustBlock(replacement)
	case s.False != nil && original == Node(s.False):
		s.False = mustBlock(replacement)
	default:
		return false
	}
	return true
}

// LoopKind distinguishes the three GLSL loop forms.
type LoopKind uint8

const (
	LoopFor LoopKind = iota
	LoopWhile
	LoopDoWhile
)

// Loop is a for, while or do-while loop. Init, Cond and Expr may be nil.
type Loop struct {
	base
	Kind LoopKind
	Init Node
	Cond Typed
	Expr Typed
	Body *Block
}

func (*Loop) node() {}

func (l *Loop) replaceChild(original, replacement Node) bool {
	switch {
	case l.Init != nil && original == l.Init:
		l.Init = replacement
	case l.Cond != nil && original == Node(l.Cond):
		l.Cond = mustTyped(replacement)
	case l.Expr != nil && original == Node(l.Expr):
		l.Expr = mustTyped(replacement)
	case l.Body != nil && original == Node(l.Body):
		l.Body = mustBlock(replacement)
	default:
		return false
	}
	return true
}

// Branch is return, break, continue or discard. Value is only set for
// return statements with an expression.
type Branch struct {
	base
	Op    Operator
	Value Typed
}

func (*Branch) node() {}

// NewBranch returns a branch statement. value may be nil.
func NewBranch(op Operator, value Typed) *Branch {
	b := &Branch{Op: op, Value: value}
	if value != nil {
		b.pos = value.Pos()
	}
	return b
}

func (b *Branch) replaceChild(original, replacement Node) bool {
	if b.Value != nil && original == Node(b.Value) {
		b.Value = mustTyped(replacement)
		return true
	}
	return false
}

func mustBlock(n Node) *Block {
	b, ok := n.(*Block)
	if !ok {
		panic(InternalErrorf("replacement %T for a block slot is not a block", n))
	}
	return b
}
