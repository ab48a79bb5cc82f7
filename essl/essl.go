// Package essl parses OpenGL ES Shading Language source (versions 1.00,
// 3.00 and 3.10) into a type-checked ir tree.
//
// The parser performs semantic analysis while it parses: every expression
// node it returns carries its resolved type, every identifier is bound to
// a symbol table entry, and constant expressions are folded. Diagnostics
// use the info log format of GLSL compilers:
//
//	ERROR: 0:12: 'x' : undeclared identifier
//
// Supported: #version, #extension and #pragma directives, precision
// statements, variable declarations with storage, interpolation, layout,
// invariant and precision qualifiers, invariant redeclarations, functions
// with overloading and in/out/inout parameters, the full expression
// grammar, if/else, for, while, do-while, break, continue, return and
// discard. Macros, user structs, interface blocks and switch statements
// are reported as unsupported.
package essl

import (
	"strings"

	"github.com/gogpu/translator/ir"
)

// ExtensionBehavior is the behavior named in an #extension directive.
type ExtensionBehavior uint8

const (
	ExtensionUndefined ExtensionBehavior = iota
	ExtensionRequire
	ExtensionEnable
	ExtensionWarn
	ExtensionDisable
)

// String returns the directive spelling of the behavior.
func (b ExtensionBehavior) String() string {
	switch b {
	case ExtensionRequire:
		return "require"
	case ExtensionEnable:
		return "enable"
	case ExtensionWarn:
		return "warn"
	case ExtensionDisable:
		return "disable"
	default:
		return "undefined"
	}
}

// Enabled reports whether the behavior makes the extension usable.
func (b ExtensionBehavior) Enabled() bool {
	return b == ExtensionRequire || b == ExtensionEnable || b == ExtensionWarn
}

// Pragma holds the state set by #pragma directives.
type Pragma struct {
	// InvariantAll is set by "#pragma STDGL invariant(all)".
	InvariantAll bool
	Optimize     bool
	Debug        bool
}

// Options configures one parse.
type Options struct {
	Stage ir.ShaderStage

	// MaxVersion is the highest #version the caller accepts. Zero means 310.
	MaxVersion int

	// Builtins is the shared built-in table; nil builds a private one.
	Builtins *ir.BuiltinTable

	// Arena receives the user symbols; nil allocates a new arena.
	Arena *ir.Arena

	// Extensions lists the extensions the implementation supports.
	Extensions map[string]bool

	// Limits provides the values of the gl_Max* built-in constants, keyed
	// by their GLSL name.
	Limits map[string]int
}

// Result is a parsed shader.
type Result struct {
	Tree    *ir.Block
	Symbols *ir.SymbolTable
	Stage   ir.ShaderStage
	Version int
	Pragma  Pragma

	// Extensions holds the behavior of every #extension directive, in
	// the order it was last set.
	Extensions map[string]ExtensionBehavior

	// LocalSize is the compute work-group size; unset dimensions are 1.
	LocalSize [3]int

	// Warnings holds non-fatal diagnostics.
	Warnings SourceErrors
}

// ExtensionEnabled reports whether the shader enabled name.
func (r *Result) ExtensionEnabled(name string) bool {
	return r.Extensions[name].Enabled()
}

// Parse concatenates sources with newlines and parses them as one shader.
// The returned errors contain only errors; warnings are on the Result.
// A non-empty error list means the Result must not be translated.
func Parse(sources []string, opts Options) (*Result, SourceErrors) {
	source := strings.Join(sources, "\n")
	if opts.Builtins == nil {
		opts.Builtins = NewBuiltins()
	}
	if opts.Arena == nil {
		opts.Arena = ir.NewArena()
	}
	if opts.MaxVersion == 0 {
		opts.MaxVersion = 310
	}

	tokens := NewLexer(source).Tokenize()
	ctx := newContext(opts, source)
	tokens = ctx.preprocess(tokens)

	p := NewParser(tokens, ctx)
	tree := p.Parse()

	res := &Result{
		Tree:       tree,
		Symbols:    ctx.symbols,
		Stage:      opts.Stage,
		Version:    ctx.version,
		Pragma:     ctx.pragma,
		Extensions: ctx.extensions,
		LocalSize:  ctx.localSize,
	}
	var errs SourceErrors
	for _, d := range ctx.diags {
		if d.Severity == SeverityWarning {
			res.Warnings.Add(d)
		} else {
			errs.Add(d)
		}
	}
	return res, errs
}
