package emit

import (
	"io"
	"sort"

	"github.com/gogpu/translator/emulator"
	"github.com/gogpu/translator/ir"
)

// Extension is an #extension directive of the source shader.
type Extension struct {
	Name     string
	Behavior string
}

// Unit is one translated shader ready for emission.
type Unit struct {
	Tree    *ir.Block
	Symbols *ir.SymbolTable
	Stage   ir.ShaderStage

	// SourceVersion is the #version of the input, e.g. 100 or 300.
	SourceVersion int

	// Version is the language version the output targets. For GLSL and
	// ESSL it is the resolved #version number; other emitters take their
	// version from their own options.
	Version int

	// Extensions lists the enabled extensions of the source, by name.
	Extensions []Extension

	InvariantAll bool
	LocalSize    [3]int

	// Emulator holds the helpers the tree calls; nil when none are used.
	Emulator *emulator.Emulator
}

// HasExtension reports whether the source enabled the extension.
func (u *Unit) HasExtension(name string) bool {
	for _, e := range u.Extensions {
		if e.Name == name {
			return true
		}
	}
	return false
}

// SortExtensions orders exts by name.
func SortExtensions(exts []Extension) {
	sort.Slice(exts, func(i, j int) bool { return exts[i].Name < exts[j].Name })
}

// WriteEmulatedFunctions writes the helper definitions used by u, if any.
func (u *Unit) WriteEmulatedFunctions(w io.Writer) error {
	if u.Emulator == nil {
		return nil
	}
	return u.Emulator.OutputEmulatedFunctions(w)
}

// Emitter turns a Unit into source text of one dialect.
type Emitter interface {
	// Emit writes the whole translated shader to w.
	Emit(w io.Writer, u *Unit) error
}

// Dialect parameterizes Writer. Most methods receive the Writer so they
// can write sub-expressions back through it.
type Dialect interface {
	// Name identifies the dialect in errors.
	Name() string

	// TypeName spells typ without array dimensions.
	TypeName(typ ir.Type) (string, error)

	// ArraySuffix spells the array dimensions written after a declared name.
	ArraySuffix(typ ir.Type) string

	// Identifier spells a reference to a variable.
	Identifier(sym *ir.Symbol) string

	// FunctionName spells the name of a user-defined function.
	FunctionName(name string) string

	// Qualifiers returns what precedes the type of a declaration, with a
	// trailing space when non-empty.
	Qualifiers(typ ir.Type) string

	// Literal spells one scalar constant.
	Literal(c ir.Constant) string

	WriteConstant(w *Writer, n *ir.ConstantUnion) error
	WriteAggregate(w *Writer, n *ir.Aggregate) error
	WriteBinary(w *Writer, n *ir.Binary) error
	WritePrototype(w *Writer, p *ir.FunctionPrototype) error

	// WriteInvariant writes an invariant redeclaration statement.
	WriteInvariant(w *Writer, d *ir.Declaration) error

	// Discard is the statement that ends a fragment invocation.
	Discard() string
}
