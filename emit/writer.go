package emit

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/ir"
)

// Writer writes ir statements and expressions as C-like source text.
//
// Every operator expression is parenthesized, so the output never depends
// on the precedence rules of the target language. The only exception is
// the outermost assignment of an expression statement.
type Writer struct {
	d Dialect

	out    strings.Builder
	indent int

	// stmtRoot is the expression statement being written.
	stmtRoot ir.Node
}

// NewWriter returns an empty writer for dialect d.
func NewWriter(d Dialect) *Writer {
	return &Writer{d: d}
}

// Dialect returns the dialect the writer was made with.
func (w *Writer) Dialect() Dialect { return w.d }

// String returns the text written so far.
func (w *Writer) String() string {
	return w.out.String()
}

// Write implements io.Writer so helpers can stream into the output.
func (w *Writer) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// Print writes s as is.
func (w *Writer) Print(s string) {
	w.out.WriteString(s)
}

// Printf writes formatted text without indentation or newline.
func (w *Writer) Printf(format string, args ...any) {
	fmt.Fprintf(&w.out, format, args...)
}

// Line writes one indented line. An empty format writes an empty line.
func (w *Writer) Line(format string, args ...any) {
	if format == "" {
		w.out.WriteByte('\n')
		return
	}
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// PushIndent increases indentation.
func (w *Writer) PushIndent() {
	w.indent++
}

// PopIndent decreases indentation.
func (w *Writer) PopIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Errorf returns an Error of the writer's dialect located at n.
func (w *Writer) Errorf(n ir.Node, kind ErrorKind, format string, args ...any) *Error {
	if n == nil {
		return NewError(w.d.Name(), kind, format, args...)
	}
	return NewErrorAt(w.d.Name(), kind, n, format, args...)
}

// TypeName spells typ including array dimensions, as used in
// constructors.
func (w *Writer) TypeName(typ ir.Type) (string, error) {
	name, err := w.d.TypeName(typ)
	if err != nil {
		return "", err
	}
	return name + w.d.ArraySuffix(typ), nil
}

// Expr writes an expression.
func (w *Writer) Expr(n ir.Typed) error {
	switch n := n.(type) {
	case *ir.Symbol:
		w.Print(w.d.Identifier(n))
		return nil
	case *ir.ConstantUnion:
		return w.d.WriteConstant(w, n)
	case *ir.Binary:
		return w.d.WriteBinary(w, n)
	case *ir.Unary:
		return w.unary(n)
	case *ir.Ternary:
		return w.ternary(n)
	case *ir.Swizzle:
		if err := w.Expr(n.Operand); err != nil {
			return err
		}
		w.Print("." + n.Letters())
		return nil
	case *ir.Aggregate:
		return w.d.WriteAggregate(w, n)
	case nil:
		return w.Errorf(nil, ErrInvalidUnit, "missing expression")
	default:
		return w.Errorf(n, ErrInvalidUnit, "unexpected expression %T", n)
	}
}

// Args writes a comma separated argument list without parentheses.
func (w *Writer) Args(args []ir.Typed) error {
	for i, a := range args {
		if i > 0 {
			w.Print(", ")
		}
		if err := w.Expr(a); err != nil {
			return err
		}
	}
	return nil
}

// Call writes name(args).
func (w *Writer) Call(name string, args []ir.Typed) error {
	w.Print(name)
	w.Print("(")
	if err := w.Args(args); err != nil {
		return err
	}
	w.Print(")")
	return nil
}

// Binary writes n in infix form.
func (w *Writer) Binary(n *ir.Binary) error {
	if n.Op == ir.OpIndexDirect || n.Op == ir.OpIndexIndirect {
		if err := w.Expr(n.Left); err != nil {
			return err
		}
		w.Print("[")
		if err := w.Expr(n.Right); err != nil {
			return err
		}
		w.Print("]")
		return nil
	}
	return w.Infix(n, n.Left, n.Op.String(), n.Right)
}

// Infix writes "(left op right)", dropping the parentheses when n is the
// assignment of an expression statement.
func (w *Writer) Infix(n ir.Node, left ir.Typed, op string, right ir.Typed) error {
	bare := n == w.stmtRoot
	if !bare {
		w.Print("(")
	}
	if err := w.Expr(left); err != nil {
		return err
	}
	w.Print(" " + op + " ")
	if err := w.Expr(right); err != nil {
		return err
	}
	if !bare {
		w.Print(")")
	}
	return nil
}

func (w *Writer) unary(n *ir.Unary) error {
	w.Print("(")
	switch n.Op {
	case ir.OpPostIncrement, ir.OpPostDecrement:
		if err := w.Expr(n.Operand); err != nil {
			return err
		}
		w.Print(n.Op.String())
	default:
		w.Print(n.Op.String())
		if err := w.Expr(n.Operand); err != nil {
			return err
		}
	}
	w.Print(")")
	return nil
}

func (w *Writer) ternary(n *ir.Ternary) error {
	w.Print("(")
	if err := w.Expr(n.Cond); err != nil {
		return err
	}
	w.Print(" ? ")
	if err := w.Expr(n.True); err != nil {
		return err
	}
	w.Print(" : ")
	if err := w.Expr(n.False); err != nil {
		return err
	}
	w.Print(")")
	return nil
}

// Statements writes each statement of b at the current indentation.
func (w *Writer) Statements(b *ir.Block) error {
	for _, s := range b.Statements {
		if err := w.Stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// Body writes "{", the statements of b one level deeper, and "}" without
// a trailing newline. The caller has written the text before "{".
func (w *Writer) Body(b *ir.Block) error {
	w.Print("{\n")
	w.PushIndent()
	if b != nil {
		if err := w.Statements(b); err != nil {
			return err
		}
	}
	w.PopIndent()
	w.writeIndent()
	w.Print("}")
	return nil
}

// Stmt writes one statement, indented and followed by a newline.
func (w *Writer) Stmt(n ir.Node) error {
	switch n := n.(type) {
	case *ir.Block:
		w.writeIndent()
		if err := w.Body(n); err != nil {
			return err
		}
		w.Print("\n")
	case *ir.Declaration:
		if n.Invariant {
			return w.d.WriteInvariant(w, n)
		}
		w.writeIndent()
		if err := w.Declaration(n); err != nil {
			return err
		}
		w.Print(";\n")
	case *ir.FunctionPrototype:
		w.writeIndent()
		if err := w.d.WritePrototype(w, n); err != nil {
			return err
		}
		w.Print(";\n")
	case *ir.FunctionDefinition:
		return w.Function(n)
	case *ir.Selection:
		w.writeIndent()
		if err := w.selection(n); err != nil {
			return err
		}
		w.Print("\n")
	case *ir.Loop:
		w.writeIndent()
		if err := w.loop(n); err != nil {
			return err
		}
		w.Print("\n")
	case *ir.Branch:
		return w.branch(n)
	case ir.Typed:
		w.writeIndent()
		if err := w.ExprStatement(n); err != nil {
			return err
		}
		w.Print(";\n")
	default:
		return w.Errorf(n, ErrInvalidUnit, "unexpected statement %T", n)
	}
	return nil
}

// ExprStatement writes n without the parentheses of its outermost
// assignment.
func (w *Writer) ExprStatement(n ir.Typed) error {
	prev := w.stmtRoot
	w.stmtRoot = n
	defer func() { w.stmtRoot = prev }()
	return w.Expr(n)
}

// Declaration writes a variable declaration without the trailing ";".
func (w *Writer) Declaration(d *ir.Declaration) error {
	if len(d.Vars) == 0 {
		return w.Errorf(d, ErrInvalidUnit, "empty declaration")
	}
	first := d.DeclaredSymbol(0).Type()
	name, err := w.d.TypeName(first)
	if err != nil {
		return err
	}
	w.Print(w.d.Qualifiers(first))
	w.Print(name)
	for i, v := range d.Vars {
		if i > 0 {
			w.Print(",")
		}
		sym := d.DeclaredSymbol(i)
		w.Print(" " + w.d.Identifier(sym) + w.d.ArraySuffix(sym.Type()))
		if init, ok := v.(*ir.Binary); ok {
			w.Print(" = ")
			if err := w.Expr(init.Right); err != nil {
				return err
			}
		}
	}
	return nil
}

// Function writes a function definition followed by an empty line.
func (w *Writer) Function(f *ir.FunctionDefinition) error {
	w.writeIndent()
	if err := w.d.WritePrototype(w, f.Prototype); err != nil {
		return err
	}
	w.Print("\n")
	w.writeIndent()
	if err := w.Body(f.Body); err != nil {
		return err
	}
	w.Print("\n\n")
	return nil
}

func (w *Writer) selection(n *ir.Selection) error {
	w.Print("if (")
	if err := w.Expr(n.Cond); err != nil {
		return err
	}
	w.Print(") ")
	if err := w.Body(n.True); err != nil {
		return err
	}
	if n.False != nil {
		w.Print(" else ")
		return w.Body(n.False)
	}
	return nil
}

func (w *Writer) loop(n *ir.Loop) error {
	switch n.Kind {
	case ir.LoopFor:
		w.Print("for (")
		switch init := n.Init.(type) {
		case nil:
		case *ir.Declaration:
			if err := w.Declaration(init); err != nil {
				return err
			}
		case ir.Typed:
			if err := w.ExprStatement(init); err != nil {
				return err
			}
		default:
			return w.Errorf(n, ErrInvalidUnit, "loop initializer %T", init)
		}
		w.Print("; ")
		if n.Cond != nil {
			if err := w.Expr(n.Cond); err != nil {
				return err
			}
		}
		w.Print("; ")
		if n.Expr != nil {
			if err := w.ExprStatement(n.Expr); err != nil {
				return err
			}
		}
		w.Print(") ")
		return w.Body(n.Body)
	case ir.LoopWhile:
		w.Print("while (")
		if err := w.Expr(n.Cond); err != nil {
			return err
		}
		w.Print(") ")
		return w.Body(n.Body)
	case ir.LoopDoWhile:
		w.Print("do ")
		if err := w.Body(n.Body); err != nil {
			return err
		}
		w.Print(" while (")
		if err := w.Expr(n.Cond); err != nil {
			return err
		}
		w.Print(");")
		return nil
	default:
		return w.Errorf(n, ErrInvalidUnit, "unknown loop kind %d", n.Kind)
	}
}

func (w *Writer) branch(n *ir.Branch) error {
	switch n.Op {
	case ir.OpKill:
		w.Line("%s;", w.d.Discard())
	case ir.OpBreak, ir.OpContinue:
		w.Line("%s;", n.Op)
	case ir.OpReturn:
		if n.Value == nil {
			w.Line("return;")
			return nil
		}
		w.writeIndent()
		w.Print("return ")
		if err := w.Expr(n.Value); err != nil {
			return err
		}
		w.Print(";\n")
	default:
		return w.Errorf(n, ErrInvalidUnit, "unknown branch %s", n.Op)
	}
	return nil
}
