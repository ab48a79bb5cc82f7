package emit

import (
	"strings"

	"github.com/gogpu/translator/ir"
)

// BaseDialect spells constructs the GLSL way. Dialects embed it and
// override the methods that differ; it is not a Dialect by itself since
// it has no Name.
type BaseDialect struct{}

// TypeName returns the GLSL name of typ.
func (BaseDialect) TypeName(typ ir.Type) (string, error) {
	return typ.BaseName(), nil
}

// ArraySuffix returns "[n]..." for arrays.
func (BaseDialect) ArraySuffix(typ ir.Type) string {
	return typ.ArraySuffix()
}

// Identifier returns the symbol name unchanged.
func (BaseDialect) Identifier(sym *ir.Symbol) string {
	return sym.Name
}

// FunctionName returns name unchanged.
func (BaseDialect) FunctionName(name string) string {
	return name
}

// Qualifiers returns "const " for constants, the direction of out and
// inout parameters, and nothing otherwise.
func (BaseDialect) Qualifiers(typ ir.Type) string {
	switch typ.Qualifier {
	case ir.QualConst:
		return "const "
	case ir.QualParamOut:
		return "out "
	case ir.QualParamInOut:
		return "inout "
	}
	return ""
}

// Literal returns the GLSL literal of c.
func (BaseDialect) Literal(c ir.Constant) string {
	return c.String()
}

// Discard returns "discard".
func (BaseDialect) Discard() string { return "discard" }

// WriteConstant writes scalars as literals and everything else as a
// constructor of literals.
func (BaseDialect) WriteConstant(w *Writer, n *ir.ConstantUnion) error {
	return WriteConstantValues(w, n, n.Type(), n.Values)
}

// WriteConstantValues writes values, which must fill typ, as nested
// constructors. It calls back into the dialect for names and literals.
func WriteConstantValues(w *Writer, n ir.Node, typ ir.Type, values []ir.Constant) error {
	d := w.Dialect()
	if typ.IsScalar() {
		if len(values) != 1 {
			return w.Errorf(n, ErrInvalidUnit, "constant of type %s has %d values", typ, len(values))
		}
		w.Print(d.Literal(values[0]))
		return nil
	}
	name, err := w.TypeName(typ)
	if err != nil {
		return err
	}
	w.Print(name)
	w.Print("(")
	if typ.IsArray() {
		elem := typ.ElementType()
		per := elem.ComponentCount() * elem.ArrayElements()
		for i := 0; i < int(typ.ArraySizes[0]); i++ {
			if i > 0 {
				w.Print(", ")
			}
			if (i+1)*per > len(values) {
				return w.Errorf(n, ErrInvalidUnit, "constant of type %s has %d values", typ, len(values))
			}
			if err := WriteConstantValues(w, n, elem, values[i*per:(i+1)*per]); err != nil {
				return err
			}
		}
	} else {
		lits := make([]string, len(values))
		for i, v := range values {
			lits[i] = d.Literal(v)
		}
		w.Print(strings.Join(lits, ", "))
	}
	w.Print(")")
	return nil
}

// WriteAggregate writes constructors as "type(args)", user calls through
// FunctionName and built-ins by their GLSL name.
func (BaseDialect) WriteAggregate(w *Writer, n *ir.Aggregate) error {
	switch n.Op {
	case ir.OpConstruct:
		name, err := w.TypeName(n.Type())
		if err != nil {
			return err
		}
		return w.Call(name, n.Args)
	case ir.OpCallFunctionInAST:
		return w.Call(w.Dialect().FunctionName(n.Name), n.Args)
	case ir.OpCallInternalRawFunction:
		return w.Call(n.Name, n.Args)
	default:
		if !n.Op.IsBuiltinFunction() {
			return w.Errorf(n, ErrInvalidUnit, "aggregate with operator %s", n.Op)
		}
		return w.Call(n.Op.String(), n.Args)
	}
}

// WriteBinary writes every operator in infix form.
func (BaseDialect) WriteBinary(w *Writer, n *ir.Binary) error {
	return w.Binary(n)
}

// WritePrototype writes "ret name(qual type p, ...)".
func (BaseDialect) WritePrototype(w *Writer, p *ir.FunctionPrototype) error {
	d := w.Dialect()
	ret, err := w.TypeName(p.Return)
	if err != nil {
		return err
	}
	w.Print(ret + " " + d.FunctionName(p.Name) + "(")
	for i, param := range p.Params {
		if i > 0 {
			w.Print(", ")
		}
		if err := WriteParam(w, param); err != nil {
			return err
		}
	}
	w.Print(")")
	return nil
}

// WriteParam writes one parameter declaration.
func WriteParam(w *Writer, param *ir.Symbol) error {
	d := w.Dialect()
	typ := param.Type()
	name, err := d.TypeName(typ)
	if err != nil {
		return err
	}
	w.Print(d.Qualifiers(typ) + name)
	if param.Name != "" {
		w.Print(" " + d.Identifier(param))
	}
	w.Print(d.ArraySuffix(typ))
	return nil
}

// WriteInvariant writes "invariant a, b;".
func (BaseDialect) WriteInvariant(w *Writer, decl *ir.Declaration) error {
	d := w.Dialect()
	names := make([]string, len(decl.Vars))
	for i := range decl.Vars {
		names[i] = d.Identifier(decl.DeclaredSymbol(i))
	}
	w.Line("invariant %s;", strings.Join(names, ", "))
	return nil
}
