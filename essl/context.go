package essl

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"github.com/gogpu/translator/ir"
)

// context is the semantic state of one parse.
type context struct {
	opts    Options
	stage   ir.ShaderStage
	version int
	source  string
	symbols *ir.SymbolTable
	diags   SourceErrors

	precisions []map[ir.BasicType]ir.Precision
	extensions map[string]ExtensionBehavior
	pragma     Pragma
	localSize  [3]int
	localSet   bool

	function        *ir.FunctionSig
	functionReturns bool
	loopDepth       int
	mainDefined     bool
	fragOutputs     []fragOutput
	usedFragColor   bool
	usedFragData    bool
}

type fragOutput struct {
	name     string
	location int
	pos      ir.Pos
}

func newContext(opts Options, source string) *context {
	c := &context{
		opts:       opts,
		stage:      opts.Stage,
		version:    100,
		source:     source,
		symbols:    ir.NewSymbolTable(opts.Builtins, opts.Arena),
		precisions: []map[ir.BasicType]ir.Precision{defaultPrecisions(opts.Stage)},
		extensions: make(map[string]ExtensionBehavior),
		localSize:  [3]int{1, 1, 1},
	}
	c.symbols.SetFilter(c.builtinVisible)
	return c
}

// builtinVisible hides built-ins of other versions and stages. Extension
// gating is checked after lookup so that it can be reported.
func (c *context) builtinVisible(e *ir.Entry) bool {
	if !e.Stages.Has(c.stage) {
		return false
	}
	if c.version < e.MinVersion {
		return false
	}
	return e.MaxVersion == 0 || c.version <= e.MaxVersion
}

func (c *context) errorf(pos ir.Pos, format string, args ...interface{}) {
	c.diags.Add(&SourceError{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Source:   c.source,
	})
}

func (c *context) warnf(pos ir.Pos, format string, args ...interface{}) {
	c.diags.Add(&SourceError{
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Source:   c.source,
	})
}

func (c *context) errorCount() int {
	n := 0
	for _, d := range c.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (c *context) isESSL3() bool { return c.version >= 300 }

// requireVersion reports an error when a construct needs a newer version.
func (c *context) requireVersion(pos ir.Pos, what string, version int) bool {
	if c.version >= version {
		return true
	}
	c.errorf(pos, "'%s' : supported in GLSL ES %d.%02d and above only", what, version/100, version%100)
	return false
}

// checkExtension reports use of an extension-gated feature.
func (c *context) checkExtension(pos ir.Pos, what, ext string) bool {
	if ext == "" {
		return true
	}
	b := c.extensions[ext]
	if !b.Enabled() {
		c.errorf(pos, "'%s' : extension is disabled: %s", what, ext)
		return false
	}
	if b == ExtensionWarn {
		c.warnf(pos, "'%s' : extension is being used: %s", what, ext)
	}
	return true
}

// Scopes

func (c *context) pushScope() {
	c.symbols.Push()
	c.precisions = append(c.precisions, make(map[ir.BasicType]ir.Precision))
}

func (c *context) popScope() {
	c.symbols.Pop()
	c.precisions = c.precisions[:len(c.precisions)-1]
}

func (c *context) setDefaultPrecision(b ir.BasicType, p ir.Precision) {
	c.precisions[len(c.precisions)-1][b] = p
}

func (c *context) defaultPrecision(b ir.BasicType) ir.Precision {
	key := precisionBasic(b)
	for i := len(c.precisions) - 1; i >= 0; i-- {
		if p, ok := c.precisions[i][key]; ok {
			return p
		}
	}
	return ir.PrecisionUndefined
}

// applyPrecision fills in the default precision of typ, reporting types
// that need one and have none.
func (c *context) applyPrecision(pos ir.Pos, typ ir.Type) ir.Type {
	if !needsPrecision(typ.Basic) {
		return typ
	}
	if typ.Precision == ir.PrecisionUndefined {
		typ.Precision = c.defaultPrecision(typ.Basic)
	}
	if typ.Precision == ir.PrecisionUndefined {
		c.errorf(pos, "'%s' : No precision specified for (%s)", typ.Basic, typ.Basic)
	}
	return typ
}

// Symbols

func (c *context) checkReservedName(pos ir.Pos, name string) bool {
	switch {
	case strings.HasPrefix(name, "gl_"):
		c.errorf(pos, "'%s' : reserved built-in name", name)
		return false
	case strings.HasPrefix(name, "webgl_"), strings.HasPrefix(name, "_webgl_"), strings.HasPrefix(name, "angle_"):
		c.errorf(pos, "'%s' : reserved prefix", name)
		return false
	case strings.Contains(name, "__"):
		if c.isESSL3() {
			c.warnf(pos, "'%s' : identifiers containing two consecutive underscores are reserved", name)
		} else {
			c.errorf(pos, "'%s' : identifiers containing two consecutive underscores are reserved", name)
			return false
		}
	}
	return true
}

// declareVariable adds a user variable and returns a symbol node for it.
func (c *context) declareVariable(pos ir.Pos, name string, typ ir.Type) *ir.Symbol {
	if !c.checkReservedName(pos, name) {
		return nil
	}
	if c.symbols.AtGlobalLevel() && c.symbols.HasFunctionNamed(name) {
		c.errorf(pos, "'%s' : redefinition", name)
		return nil
	}
	id, ok := c.symbols.DeclareVariable(name, typ, ir.SymbolUser)
	if !ok {
		c.errorf(pos, "'%s' : redefinition", name)
		return nil
	}
	s := ir.NewSymbol(id, name, typ)
	s.SetPos(pos)
	return s
}

// lookupVariable resolves an identifier in expression position.
func (c *context) lookupVariable(pos ir.Pos, name string) ir.Typed {
	if v, ok := c.opts.Limits[name]; ok && strings.HasPrefix(name, "gl_Max") {
		v32, err := safecast.Conv[int32](v)
		if err != nil {
			c.errorf(pos, "'%s' : resource limit out of range: %v", name, err)
			return c.placeholder(pos)
		}
		n := ir.NewIntConstant(v32)
		n.SetPos(pos)
		return n
	}

	e, ok := c.symbols.Lookup(name)
	if !ok {
		c.errorf(pos, "'%s' : undeclared identifier", name)
		return c.placeholder(pos)
	}
	if e.IsFunction() {
		c.errorf(pos, "'%s' : variable expected", name)
		return c.placeholder(pos)
	}
	if e.Kind == ir.SymbolBuiltIn && !c.checkExtension(pos, name, e.Extension) {
		return c.placeholder(pos)
	}
	// Constant arrays stay named so indexing never applies to a literal.
	if e.Type.Qualifier == ir.QualConst && len(e.Value) > 0 && !e.Type.IsArray() {
		n := ir.NewConstantUnion(append([]ir.Constant(nil), e.Value...), e.Type)
		n.SetPos(pos)
		return n
	}
	switch e.Type.Qualifier {
	case ir.QualFragColor:
		c.usedFragColor = true
	case ir.QualFragData:
		c.usedFragData = true
	}
	s := ir.NewSymbol(e.ID, e.Name, e.Type)
	s.SetPos(pos)
	return s
}

// placeholder stands in for an expression that failed to resolve so that
// parsing can continue without cascading errors.
// constantArray returns the value of a named constant array, or n.
func (c *context) constantArray(n ir.Typed) ir.Typed {
	sym, ok := n.(*ir.Symbol)
	if !ok || sym.Type().Qualifier != ir.QualConst || !sym.Type().IsArray() {
		return n
	}
	e := c.symbols.Entry(sym.ID)
	if e == nil || len(e.Value) == 0 {
		return n
	}
	return ir.NewConstantUnion(append([]ir.Constant(nil), e.Value...), e.Type)
}

func (c *context) placeholder(pos ir.Pos) ir.Typed {
	n := ir.NewFloatConstant(0)
	n.SetPos(pos)
	return n
}
