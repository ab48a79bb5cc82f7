package msl

import (
	"slices"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// globalKind tells how translated code reaches a GLSL global.
type globalKind uint8

const (
	// globalState variables are members of the Globals struct.
	globalState globalKind = iota

	// globalUniform variables are members of the Uniforms buffer.
	globalUniform

	// globalShared variables live in threadgroup memory and are reached
	// through a pointer in Globals.
	globalShared
)

// contextParam is a parameter every translated function takes so that it
// can reach the shader's global state.
type contextParam struct {
	param string
	arg   string
}

// writer emits one unit. Metal has no mutable program-scope variables,
// so the GLSL globals become members of a Globals struct that the stage
// function creates and passes by reference to every translated function.
type writer struct {
	*emit.Writer
	unit    *emit.Unit
	options Options
	names   *namer

	globals map[ir.SymbolID]globalKind

	uniforms []*ir.Symbol
	inputs   []*ir.Symbol
	outputs  []*ir.Symbol
	statics  []*ir.Symbol
	shared   []*ir.Symbol

	// inits holds the initializers of statics.
	inits map[ir.SymbolID]ir.Typed

	builtins     map[ir.Qualifier]ir.Type
	usedBuiltins []ir.Qualifier

	// invariantPosition is set when gl_Position is declared invariant.
	invariantPosition bool

	samplers    map[ir.SymbolID]*samplerBinding
	samplerList []*samplerBinding
	nextSlot    int

	helpers    []string
	helperSeen map[string]bool

	context []contextParam

	// atRoot is set while global constants are written.
	atRoot bool
}

func newWriter(u *emit.Unit, options Options) *writer {
	w := &writer{
		unit:       u,
		options:    options,
		names:      newNamer(),
		globals:    make(map[ir.SymbolID]globalKind),
		inits:      make(map[ir.SymbolID]ir.Typed),
		builtins:   make(map[ir.Qualifier]ir.Type),
		samplers:   make(map[ir.SymbolID]*samplerBinding),
		helperSeen: make(map[string]bool),
	}
	w.Writer = emit.NewWriter(&dialect{w: w})
	return w
}

// reference spells a use of sym in translated code.
func (w *writer) reference(sym *ir.Symbol) string {
	if sym.ID.IsBuiltin() {
		if name, ok := builtinNames[sym.Type().Qualifier]; ok {
			return "g." + name
		}
		return sym.Name
	}
	if b, ok := w.samplers[sym.ID]; ok {
		return b.texture
	}
	name := w.names.name(sym.Name)
	kind, ok := w.globals[sym.ID]
	switch {
	case !ok:
		return name
	case kind == globalUniform:
		return "u." + name
	case kind == globalShared:
		return "(*g." + name + ")"
	}
	return "g." + name
}

type usageCollector struct {
	ir.BaseVisitor
	w   *writer
	err error
}

func (c *usageCollector) VisitSymbol(_ *ir.Traverser, n *ir.Symbol) {
	if n.ID.IsBuiltin() {
		c.w.useBuiltin(n.Type())
	}
}

func (c *usageCollector) VisitAggregate(_ *ir.Traverser, _ ir.Visit, n *ir.Aggregate) bool {
	if c.err == nil && n.Op.IsTexture() {
		c.err = c.w.addTextureHelper(n)
	}
	return true
}

func (w *writer) useBuiltin(typ ir.Type) {
	q := typ.Qualifier
	if _, ok := builtinNames[q]; !ok {
		return
	}
	if _, seen := w.builtins[q]; seen {
		return
	}
	w.builtins[q] = typ
	w.usedBuiltins = append(w.usedBuiltins, q)
}

func (w *writer) uses(q ir.Qualifier) bool {
	_, ok := w.builtins[q]
	return ok
}

// collect sorts the global declarations by where they live and scans the
// tree for built-ins and texture calls.
func (w *writer) collect() error {
	for _, s := range w.unit.Tree.Statements {
		decl, ok := s.(*ir.Declaration)
		if !ok {
			continue
		}
		if decl.Invariant {
			for i := range decl.Vars {
				if decl.DeclaredSymbol(i).Type().Qualifier == ir.QualPosition {
					w.invariantPosition = true
				}
			}
			continue
		}
		for i, v := range decl.Vars {
			if err := w.addGlobal(decl.DeclaredSymbol(i), v); err != nil {
				return err
			}
		}
	}
	if w.unit.InvariantAll && w.unit.Stage == ir.StageVertex {
		w.invariantPosition = true
	}

	if w.unit.Stage == ir.StageVertex {
		w.useBuiltin(ir.NewVector(ir.TypeFloat, 4).WithQualifier(ir.QualPosition))
	}
	c := &usageCollector{w: w}
	ir.NewTraverser(true, false, false).Traverse(w.unit.Tree, c)
	if c.err != nil {
		return c.err
	}
	slices.Sort(w.usedBuiltins)
	if w.uses(ir.QualDrawID) {
		return emit.NewError("msl", emit.ErrUnsupportedFeature, "gl_DrawID requires draw ID emulation")
	}

	w.context = []contextParam{{"thread Globals& g", "g"}}
	if len(w.uniforms) > 0 {
		w.context = append(w.context, contextParam{"constant Uniforms& u", "u"})
	}
	for _, b := range w.samplerList {
		w.context = append(w.context,
			contextParam{textureType(b.sym.Type().Basic) + " " + b.texture, b.texture},
			contextParam{"sampler " + b.sampler, b.sampler})
	}
	return nil
}

func (w *writer) addGlobal(sym *ir.Symbol, v ir.Typed) error {
	q := sym.Type().Qualifier
	switch {
	case q == ir.QualConst:
		return nil
	case q == ir.QualUniform && sym.Type().Basic.IsSampler():
		return w.addSampler(sym)
	case q == ir.QualUniform:
		w.uniforms = append(w.uniforms, sym)
		w.globals[sym.ID] = globalUniform
		return nil
	case q == ir.QualShared:
		w.shared = append(w.shared, sym)
		w.globals[sym.ID] = globalShared
		return nil
	case q.IsShaderInput():
		w.inputs = append(w.inputs, sym)
	case q.IsVaryingOut() || q == ir.QualFragmentOut:
		w.outputs = append(w.outputs, sym)
	default:
		w.statics = append(w.statics, sym)
		if init, ok := v.(*ir.Binary); ok {
			w.inits[sym.ID] = init.Right
		}
	}
	w.globals[sym.ID] = globalState
	return nil
}

// isGlobalState reports whether decl declares variables that live in
// Globals or Uniforms rather than at program scope.
func isGlobalState(decl *ir.Declaration) bool {
	if decl.Invariant || len(decl.Vars) == 0 {
		return false
	}
	return decl.DeclaredSymbol(0).Type().Qualifier != ir.QualConst
}

// writeUnit generates MSL code for the whole unit.
func (w *writer) writeUnit() error {
	if err := w.collect(); err != nil {
		return err
	}

	w.Line("#include <metal_stdlib>")
	w.Line("#include <simd/simd.h>")
	w.Line("")
	w.Line("using namespace metal;")
	w.Line("")

	if err := w.unit.WriteEmulatedFunctions(w.Writer); err != nil {
		return err
	}
	w.writeTextureHelpers()
	if err := w.writeUniforms(); err != nil {
		return err
	}
	if err := w.writeGlobals(); err != nil {
		return err
	}

	for _, s := range w.unit.Tree.Statements {
		decl, isDecl := s.(*ir.Declaration)
		if isDecl && isGlobalState(decl) {
			continue
		}
		w.atRoot = isDecl
		err := w.Stmt(s)
		w.atRoot = false
		if err != nil {
			return err
		}
	}
	return w.writeEntryPoint()
}

// member spells "type name" for a struct member or local the writer
// declares itself.
func member(typ ir.Type, name string) (string, error) {
	tn, err := typeName(typ)
	if err != nil {
		return "", err
	}
	return tn + " " + name, nil
}

func (w *writer) writeUniforms() error {
	if len(w.uniforms) == 0 {
		return nil
	}
	w.Line("struct Uniforms")
	w.Line("{")
	w.PushIndent()
	for _, sym := range w.uniforms {
		m, err := member(sym.Type(), w.names.name(sym.Name))
		if err != nil {
			return err
		}
		w.Line("%s;", m)
	}
	w.PopIndent()
	w.Line("};")
	w.Line("")
	return nil
}

// writeGlobals declares the struct that holds the stage inputs, stage
// outputs, global variables and built-ins.
func (w *writer) writeGlobals() error {
	w.Line("struct Globals")
	w.Line("{")
	w.PushIndent()
	for _, sym := range slices.Concat(w.inputs, w.outputs, w.statics) {
		m, err := member(sym.Type(), w.names.name(sym.Name))
		if err != nil {
			return err
		}
		w.Line("%s;", m)
	}
	for _, sym := range w.shared {
		tn, err := typeName(sym.Type())
		if err != nil {
			return err
		}
		w.Line("threadgroup %s* %s;", tn, w.names.name(sym.Name))
	}
	for _, q := range w.usedBuiltins {
		m, err := member(w.builtins[q], builtinNames[q])
		if err != nil {
			return err
		}
		w.Line("%s;", m)
	}
	w.PopIndent()
	w.Line("};")
	w.Line("")
	return nil
}

// writeUserCall writes a call to a translated function, passing the
// context parameters after the GLSL arguments.
func (w *writer) writeUserCall(n *ir.Aggregate) error {
	w.Print(w.Dialect().FunctionName(n.Name) + "(")
	if err := w.Args(n.Args); err != nil {
		return err
	}
	for i, c := range w.context {
		if i > 0 || len(n.Args) > 0 {
			w.Print(", ")
		}
		w.Print(c.arg)
	}
	w.Print(")")
	return nil
}

// contextArgs returns the arguments the stage function passes to gl_main.
func (w *writer) contextArgs() string {
	args := make([]string, len(w.context))
	for i, c := range w.context {
		args[i] = c.arg
	}
	return strings.Join(args, ", ")
}
