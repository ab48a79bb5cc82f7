package ir

// Visit tells a visitor hook at which point of a node's walk it is called.
type Visit uint8

const (
	PreVisit Visit = iota
	InVisit
	PostVisit
)

// Visitor receives callbacks from a Traverser. Hooks of non-leaf nodes
// return whether the walk should descend into (PreVisit) or continue
// through (InVisit) the node's children. Embed BaseVisitor to get
// no-op defaults.
type Visitor interface {
	VisitSymbol(t *Traverser, n *Symbol)
	VisitConstantUnion(t *Traverser, n *ConstantUnion)
	VisitFunctionPrototype(t *Traverser, n *FunctionPrototype)
	VisitBinary(t *Traverser, visit Visit, n *Binary) bool
	VisitUnary(t *Traverser, visit Visit, n *Unary) bool
	VisitTernary(t *Traverser, visit Visit, n *Ternary) bool
	VisitSwizzle(t *Traverser, visit Visit, n *Swizzle) bool
	VisitAggregate(t *Traverser, visit Visit, n *Aggregate) bool
	VisitBlock(t *Traverser, visit Visit, n *Block) bool
	VisitDeclaration(t *Traverser, visit Visit, n *Declaration) bool
	VisitFunctionDefinition(t *Traverser, visit Visit, n *FunctionDefinition) bool
	VisitSelection(t *Traverser, visit Visit, n *Selection) bool
	VisitLoop(t *Traverser, visit Visit, n *Loop) bool
	VisitBranch(t *Traverser, visit Visit, n *Branch) bool
}

// BaseVisitor implements Visitor with hooks that visit everything and
// change nothing.
type BaseVisitor struct{}

func (BaseVisitor) VisitSymbol(*Traverser, *Symbol) {}
func (BaseVisitor) VisitConstantUnion(*Traverser, *ConstantUnion) {}
func (BaseVisitor) VisitFunctionPrototype(*Traverser, *FunctionPrototype) {}
func (BaseVisitor) VisitBinary(*Traverser, Visit, *Binary) bool { return true }
func (BaseVisitor) VisitUnary(*Traverser, Visit, *Unary) bool { return true }
func (BaseVisitor) VisitTernary(*Traverser, Visit, *Ternary) bool { return true }
func (BaseVisitor) VisitSwizzle(*Traverser, Visit, *Swizzle) bool { return true }
func (BaseVisitor) VisitAggregate(*Traverser, Visit, *Aggregate) bool { return true }
func (BaseVisitor) VisitBlock(*Traverser, Visit, *Block) bool { return true }
func (BaseVisitor) VisitDeclaration(*Traverser, Visit, *Declaration) bool { return true }
func (BaseVisitor) VisitFunctionDefinition(*Traverser, Visit, *FunctionDefinition) bool { return true }
func (BaseVisitor) VisitSelection(*Traverser, Visit, *Selection) bool { return true }
func (BaseVisitor) VisitLoop(*Traverser, Visit, *Loop) bool { return true }
func (BaseVisitor) VisitBranch(*Traverser, Visit, *Branch) bool { return true }

// Traverser walks an IR tree depth first and collects structural edits.
//
// Edits requested during the walk are queued and only applied by
// UpdateTree, so visitors never invalidate the slices being iterated.
// After UpdateTree any pointer into a replaced subtree is stale.
type Traverser struct {
	PreVisit  bool
	InVisit   bool
	PostVisit bool

	path       []Node
	blocks     []blockPos
	function   *FunctionDefinition
	edited     map[Node]struct{}
	singles    []replacement
	multis     []multiReplacement
	insertions []insertion
}

type blockPos struct {
	block *Block
	index int
}

type replacement struct {
	parent      Node
	original    Node
	replacement Node
}

type multiReplacement struct {
	parent       *Block
	original     Node
	replacements []Node
}

type insertion struct {
	parent *Block
	anchor Node
	before []Node
	after  []Node
}

// NewTraverser returns a traverser calling the selected hooks.
func NewTraverser(pre, in, post bool) *Traverser {
	return &Traverser{PreVisit: pre, InVisit: in, PostVisit: post}
}

// Traverse walks root with v.
func (t *Traverser) Traverse(root Node, v Visitor) {
	if root == nil {
		return
	}
	t.traverse(root, v)
}

// Parent returns the parent of the node currently being visited, or nil at
// the root.
func (t *Traverser) Parent() Node {
	if len(t.path) < 2 {
		return nil
	}
	return t.path[len(t.path)-2]
}

// Ancestor returns the n-th ancestor (1 is the parent).
func (t *Traverser) Ancestor(n int) Node {
	if len(t.path) < n+1 {
		return nil
	}
	return t.path[len(t.path)-1-n]
}

// Depth returns the depth of the current node; the root is 0.
func (t *Traverser) Depth() int { return len(t.path) - 1 }

// ParentBlock returns the innermost block enclosing the current node.
func (t *Traverser) ParentBlock() *Block {
	if len(t.blocks) == 0 {
		return nil
	}
	return t.blocks[len(t.blocks)-1].block
}

// CurrentFunction returns the function definition being walked, if any.
func (t *Traverser) CurrentFunction() *FunctionDefinition { return t.function }

// InFunction reports whether the walk is inside a function body.
func (t *Traverser) InFunction() bool { return t.function != nil }

// InGlobalScope reports whether the current node is a direct child of the
// root block.
func (t *Traverser) InGlobalScope() bool { return len(t.blocks) == 1 && len(t.path) == 2 }

// QueueReplacement replaces the node currently being visited inside its
// parent.
func (t *Traverser) QueueReplacement(repl Node) {
	if len(t.path) < 2 {
		panic(InternalErrorf("cannot replace the root node"))
	}
	t.QueueReplacementWithParent(t.path[len(t.path)-2], t.path[len(t.path)-1], repl)
}

// QueueReplacementWithParent replaces original inside parent.
func (t *Traverser) QueueReplacementWithParent(parent, original, repl Node) {
	t.claim(original)
	t.singles = append(t.singles, replacement{parent: parent, original: original, replacement: repl})
}

// QueueMultiReplacement replaces original, a direct child of parent, by a
// sequence of statements. An empty sequence deletes original.
func (t *Traverser) QueueMultiReplacement(parent *Block, original Node, repls []Node) {
	if parent == nil {
		panic(InternalErrorf("multi-replacement of %T outside a block", original))
	}
	t.claim(original)
	t.multis = append(t.multis, multiReplacement{parent: parent, original: original, replacements: repls})
}

// InsertStatementsInParentBlock inserts statements before and after the
// statement of the innermost block that contains the current node.
func (t *Traverser) InsertStatementsInParentBlock(before, after []Node) {
	if len(t.blocks) == 0 {
		panic(InternalErrorf("statement insertion outside a block"))
	}
	bp := t.blocks[len(t.blocks)-1]
	t.insertions = append(t.insertions, insertion{
		parent: bp.block,
		anchor: bp.block.Statements[bp.index],
		before: before,
		after:  after,
	})
}

// HasPendingEdits reports whether UpdateTree has work to do.
func (t *Traverser) HasPendingEdits() bool {
	return len(t.singles) > 0 || len(t.multis) > 0 || len(t.insertions) > 0
}

// UpdateTree applies all queued edits and clears the queues. Insertions go
// first so their anchors still exist, then single and multi replacements
// in reverse order so inner edits land before outer ones.
func (t *Traverser) UpdateTree() {
	for i := len(t.insertions) - 1; i >= 0; i-- {
		ins := t.insertions[i]
		idx := ins.parent.IndexOf(ins.anchor)
		if idx < 0 {
			panic(InternalErrorf("insertion anchor %T no longer in its block", ins.anchor))
		}
		ins.parent.insertChildNodes(idx+1, ins.after)
		ins.parent.insertChildNodes(idx, ins.before)
	}
	for i := len(t.singles) - 1; i >= 0; i-- {
		r := t.singles[i]
		p, ok := r.parent.(parent)
		if !ok || !p.replaceChild(r.original, r.replacement) {
			panic(InternalErrorf("cannot replace %T: not a child of %T", r.original, r.parent))
		}
	}
	for i := len(t.multis) - 1; i >= 0; i-- {
		m := t.multis[i]
		if !m.parent.replaceChildWithMultiple(m.original, m.replacements) {
			panic(InternalErrorf("cannot replace %T: not a statement of its block", m.original))
		}
	}
	t.singles = nil
	t.multis = nil
	t.insertions = nil
	t.edited = nil
}

func (t *Traverser) claim(original Node) {
	if t.edited == nil {
		t.edited = make(map[Node]struct{})
	}
	if _, dup := t.edited[original]; dup {
		panic(InternalErrorf("conflicting edits queued for %T at %d:%d", original, original.Pos().Line, original.Pos().Column))
	}
	t.edited[original] = struct{}{}
}

func (t *Traverser) push(n Node) { t.path = append(t.path, n) }
func (t *Traverser) pop()        { t.path = t.path[:len(t.path)-1] }

func (t *Traverser) child(n Node, v Visitor) {
	if n != nil {
		t.traverse(n, v)
	}
}

func (t *Traverser) traverse(n Node, v Visitor) {
	t.push(n)
	defer t.pop()

	switch n := n.(type) {
	case *Symbol:
		v.VisitSymbol(t, n)
	case *ConstantUnion:
		v.VisitConstantUnion(t, n)
	case *FunctionPrototype:
		v.VisitFunctionPrototype(t, n)
	case *Binary:
		visit := !t.PreVisit || v.VisitBinary(t, PreVisit, n)
		if visit {
			t.child(n.Left, v)
			if t.InVisit {
				visit = v.VisitBinary(t, InVisit, n)
			}
			if visit {
				t.child(n.Right, v)
			}
		}
		if visit && t.PostVisit {
			v.VisitBinary(t, PostVisit, n)
		}
	case *Unary:
		visit := !t.PreVisit || v.VisitUnary(t, PreVisit, n)
		if visit {
			t.child(n.Operand, v)
			if t.PostVisit {
				v.VisitUnary(t, PostVisit, n)
			}
		}
	case *Ternary:
		visit := !t.PreVisit || v.VisitTernary(t, PreVisit, n)
		if visit {
			t.child(n.Cond, v)
			t.child(n.True, v)
			t.child(n.False, v)
			if t.PostVisit {
				v.VisitTernary(t, PostVisit, n)
			}
		}
	case *Swizzle:
		visit := !t.PreVisit || v.VisitSwizzle(t, PreVisit, n)
		if visit {
			t.child(n.Operand, v)
			if t.PostVisit {
				v.VisitSwizzle(t, PostVisit, n)
			}
		}
	case *Aggregate:
		visit := !t.PreVisit || v.VisitAggregate(t, PreVisit, n)
		if visit {
			for i, arg := range n.Args {
				if i > 0 && t.InVisit {
					if visit = v.VisitAggregate(t, InVisit, n); !visit {
						break
					}
				}
				t.child(arg, v)
			}
			if visit && t.PostVisit {
				v.VisitAggregate(t, PostVisit, n)
			}
		}
	case *Block:
		visit := !t.PreVisit || v.VisitBlock(t, PreVisit, n)
		if visit {
			t.blocks = append(t.blocks, blockPos{block: n})
			for i, stmt := range n.Statements {
				t.blocks[len(t.blocks)-1].index = i
				if i > 0 && t.InVisit {
					if visit = v.VisitBlock(t, InVisit, n); !visit {
						break
					}
				}
				t.child(stmt, v)
			}
			t.blocks = t.blocks[:len(t.blocks)-1]
			if visit && t.PostVisit {
				v.VisitBlock(t, PostVisit, n)
			}
		}
	case *Declaration:
		visit := !t.PreVisit || v.VisitDeclaration(t, PreVisit, n)
		if visit {
			for _, d := range n.Vars {
				t.child(d, v)
			}
			if t.PostVisit {
				v.VisitDeclaration(t, PostVisit, n)
			}
		}
	case *FunctionDefinition:
		visit := !t.PreVisit || v.VisitFunctionDefinition(t, PreVisit, n)
		if visit {
			outer := t.function
			t.function = n
			t.child(n.Prototype, v)
			if t.InVisit {
				visit = v.VisitFunctionDefinition(t, InVisit, n)
			}
			if visit && n.Body != nil {
				t.child(n.Body, v)
			}
			t.function = outer
			if visit && t.PostVisit {
				v.VisitFunctionDefinition(t, PostVisit, n)
			}
		}
	case *Selection:
		visit := !t.PreVisit || v.VisitSelection(t, PreVisit, n)
		if visit {
			t.child(n.Cond, v)
			if n.True != nil {
				t.child(n.True, v)
			}
			if n.False != nil {
				t.child(n.False, v)
			}
			if t.PostVisit {
				v.VisitSelection(t, PostVisit, n)
			}
		}
	case *Loop:
		visit := !t.PreVisit || v.VisitLoop(t, PreVisit, n)
		if visit {
			t.child(n.Init, v)
			t.child(n.Cond, v)
			t.child(n.Expr, v)
			if n.Body != nil {
				t.child(n.Body, v)
			}
			if t.PostVisit {
				v.VisitLoop(t, PostVisit, n)
			}
		}
	case *Branch:
		visit := !t.PreVisit || v.VisitBranch(t, PreVisit, n)
		if visit {
			t.child(n.Value, v)
			if t.PostVisit {
				v.VisitBranch(t, PostVisit, n)
			}
		}
	default:
		panic(InternalErrorf("traverser reached unknown node kind %T", n))
	}
}
