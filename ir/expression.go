package ir

// Node is a node of the IR tree. The set of node kinds is closed: every
// implementation lives in this package and the traverser switches over all
// of them.
type Node interface {
	Pos() Pos
	SetPos(Pos)
	node()
}

// Typed is a node that produces a value of some Type.
type Typed interface {
	Node
	Type() Type
	SetType(Type)
}

// parent is implemented by nodes that own children and can swap one of them.
type parent interface {
	replaceChild(original, replacement Node) bool
}

type base struct {
	pos Pos
}

func (b *base) Pos() Pos { return b.pos }

// SetPos sets the source position of the node.
func (b *base) SetPos(p Pos) { b.pos = p }

type typed struct {
	typ Type
}

// Type returns the node's type.
func (t *typed) Type() Type { return t.typ }

// SetType replaces the node's type.
func (t *typed) SetType(typ Type) { t.typ = typ.Clone() }

// Symbol is a reference to a variable or parameter.
type Symbol struct {
	base
	typed
	ID   SymbolID
	Name string
}

func (*Symbol) node() {}

// NewSymbol returns a symbol node referring to id.
func NewSymbol(id SymbolID, name string, typ Type) *Symbol {
	s := &Symbol{ID: id, Name: name}
	s.SetType(typ)
	return s
}

// ConstantUnion is a literal or folded constant of any non-opaque type.
type ConstantUnion struct {
	base
	typed
	Values []Constant
}

func (*ConstantUnion) node() {}

// NewConstantUnion returns a constant node.
func NewConstantUnion(values []Constant, typ Type) *ConstantUnion {
	c := &ConstantUnion{Values: values}
	c.SetType(typ)
	return c
}

// NewIntConstant returns a highp int scalar constant.
func NewIntConstant(v int32) *ConstantUnion {
	t := NewScalar(TypeInt)
	t.Precision = PrecisionHigh
	t.Qualifier = QualConst
	return NewConstantUnion([]Constant{IntConst(v)}, t)
}

// NewFloatConstant returns a float scalar constant.
func NewFloatConstant(v float32) *ConstantUnion {
	t := NewScalar(TypeFloat)
	t.Qualifier = QualConst
	return NewConstantUnion([]Constant{FloatConst(v)}, t)
}

// Binary is a binary operator, including assignment and indexing.
type Binary struct {
	base
	typed
	Op    Operator
	Left  Typed
	Right Typed
}

func (*Binary) node() {}

// NewBinary returns a binary node with an explicit result type.
func NewBinary(op Operator, left, right Typed, typ Type) *Binary {
	b := &Binary{Op: op, Left: left, Right: right}
	b.SetType(typ)
	b.pos = left.Pos()
	return b
}

func (b *Binary) replaceChild(original, replacement Node) bool {
	switch original {
	case b.Left:
		b.Left = mustTyped(replacement)
		return true
	case b.Right:
		b.Right = mustTyped(replacement)
		return true
	}
	return false
}

// Unary is a unary operator.
type Unary struct {
	base
	typed
	Op      Operator
	Operand Typed
}

func (*Unary) node() {}

// NewUnary returns a unary node with an explicit result type.
func NewUnary(op Operator, operand Typed, typ Type) *Unary {
	u := &Unary{Op: op, Operand: operand}
	u.SetType(typ)
	u.pos = operand.Pos()
	return u
}

func (u *Unary) replaceChild(original, replacement Node) bool {
	if original == Node(u.Operand) {
		u.Operand = mustTyped(replacement)
		return true
	}
	return false
}

// Ternary is the ?: operator.
type Ternary struct {
	base
	typed
	Cond  Typed
	True  Typed
	False Typed
}

func (*Ternary) node() {}

// NewTernary returns cond ? a : b with an explicit result type.
func NewTernary(cond, a, b Typed, typ Type) *Ternary {
	t := &Ternary{Cond: cond, True: a, False: b}
	t.SetType(typ)
	t.pos = cond.Pos()
	return t
}

func (t *Ternary) replaceChild(original, replacement Node) bool {
	switch original {
	case t.Cond:
		t.Cond = mustTyped(replacement)
	case t.True:
		t.True = mustTyped(replacement)
	case t.False:
		t.False = mustTyped(replacement)
	default:
		return false
	}
	return true
}

// Swizzle selects vector components, e.g. v.xzy.
type Swizzle struct {
	base
	typed
	Operand Typed
	Offsets []int
}

func (*Swizzle) node() {}

// NewSwizzle returns a swizzle of operand. The result type is derived
// from the operand and the number of offsets.
func NewSwizzle(operand Typed, offsets []int) *Swizzle {
	s := &Swizzle{Operand: operand, Offsets: offsets}
	typ := NewVector(operand.Type().Basic, uint8(len(offsets)))
	if len(offsets) == 1 {
		typ = NewScalar(operand.Type().Basic)
	}
	typ.Precision = operand.Type().Precision
	s.SetType(typ)
	s.pos = operand.Pos()
	return s
}

// Letters returns the swizzle in xyzw notation.
func (s *Swizzle) Letters() string {
	const xyzw = "xyzw"
	b := make([]byte, len(s.Offsets))
	for i, o := range s.Offsets {
		b[i] = xyzw[o]
	}
	return string(b)
}

func (s *Swizzle) replaceChild(original, replacement Node) bool {
	if original == Node(s.Operand) {
		s.Operand = mustTyped(replacement)
		return true
	}
	return false
}

// Aggregate is a function call, a constructor or a built-in function.
//
// Op is OpCallFunctionInAST for user functions (Func identifies the callee),
// OpCallInternalRawFunction for calls to functions that exist only as raw
// source text, OpConstruct for constructors (the node type is the
// constructed type), or a built-in function operator.
type Aggregate struct {
	base
	typed
	Op   Operator
	Name string
	Func SymbolID
	Args []Typed
}

func (*Aggregate) node() {}

// NewAggregate returns an aggregate node.
func NewAggregate(op Operator, name string, args []Typed, typ Type) *Aggregate {
	a := &Aggregate{Op: op, Name: name, Args: args}
	a.SetType(typ)
	if len(args) > 0 {
		a.pos = args[0].Pos()
	}
	return a
}

// ArgTypes returns the types of the arguments in order.
func (a *Aggregate) ArgTypes() []Type {
	types := make([]Type, len(a.Args))
	for i, arg := range a.Args {
		types[i] = arg.Type()
	}
	return types
}

// IsConstructor reports whether a constructs a value of its own type.
func (a *Aggregate) IsConstructor() bool { return a.Op == OpConstruct }

func (a *Aggregate) replaceChild(original, replacement Node) bool {
	for i, arg := range a.Args {
		if Node(arg) == original {
			a.Args[i] = mustTyped(replacement)
			return true
		}
	}
	return false
}

func mustTyped(n Node) Typed {
	t, ok := n.(Typed)
	if !ok {
		panic(InternalErrorf("replacement %T for an expression slot is not typed", n))
	}
	return t
}
