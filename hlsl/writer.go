// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"slices"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// writer emits one unit. GLSL globals become static variables that the
// entry point fills from its input struct before calling the translated
// main, and copies into its output struct afterwards.
type writer struct {
	*emit.Writer
	unit    *emit.Unit
	options Options
	names   *namer

	uniforms []*ir.Symbol
	inputs   []*ir.Symbol
	outputs  []*ir.Symbol

	// builtins holds the type of every built-in variable used, by
	// qualifier; usedBuiltins lists the same qualifiers in order.
	builtins     map[ir.Qualifier]ir.Type
	usedBuiltins []ir.Qualifier

	samplers    map[string]*samplerBinding
	samplerList []*samplerBinding
	nextSampler int

	helpers    []string
	helperSeen map[string]bool
}

func newWriter(u *emit.Unit, options Options) *writer {
	w := &writer{
		unit:       u,
		options:    options,
		names:      newNamer(),
		builtins:   make(map[ir.Qualifier]ir.Type),
		samplers:   make(map[string]*samplerBinding),
		helperSeen: make(map[string]bool),
	}
	w.Writer = emit.NewWriter(&dialect{w: w})
	return w
}

// usageCollector records the built-in variables and texture functions a
// tree uses.
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

// collect sorts the global declarations into interface variables and
// scans the tree for built-ins and texture calls.
func (w *writer) collect() error {
	for _, s := range w.unit.Tree.Statements {
		decl, ok := s.(*ir.Declaration)
		if !ok || decl.Invariant {
			continue
		}
		for i := range decl.Vars {
			sym := decl.DeclaredSymbol(i)
			q := sym.Type().Qualifier
			switch {
			case q == ir.QualUniform && sym.Type().Basic.IsSampler():
				if err := w.addSampler(sym); err != nil {
					return err
				}
			case q == ir.QualUniform:
				w.uniforms = append(w.uniforms, sym)
			case q.IsShaderInput():
				w.inputs = append(w.inputs, sym)
			case q.IsVaryingOut() || q == ir.QualFragmentOut:
				w.outputs = append(w.outputs, sym)
			}
		}
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
	return w.checkBuiltins()
}

func (w *writer) checkBuiltins() error {
	sm := w.options.ShaderModel
	for _, q := range w.usedBuiltins {
		name := builtinNames[q]
		switch q {
		case ir.QualDrawID:
			return emit.NewError("hlsl", emit.ErrUnsupportedFeature, "%s requires draw ID emulation", name)
		case ir.QualNumWorkGroups, ir.QualPointCoord:
			return emit.NewError("hlsl", emit.ErrUnsupportedFeature, "%s has no HLSL system value", name)
		case ir.QualVertexID, ir.QualInstanceID:
			if !sm.SupportsSystemValues() {
				return emit.NewError("hlsl", emit.ErrUnsupportedFeature, "%s requires shader model 4.0", name)
			}
		}
	}
	return nil
}

// isInterface reports whether decl declares variables the entry point or
// the uniform block owns.
func isInterface(decl *ir.Declaration) bool {
	if decl.Invariant || len(decl.Vars) == 0 {
		return false
	}
	q := decl.DeclaredSymbol(0).Type().Qualifier
	return q == ir.QualUniform || q.IsShaderInput() || q.IsVaryingOut() || q == ir.QualFragmentOut
}

// writeUnit generates HLSL code for the whole unit.
func (w *writer) writeUnit() error {
	if w.unit.Stage == ir.StageCompute && !w.options.ShaderModel.SupportsCompute() {
		return emit.NewError("hlsl", emit.ErrUnsupportedFeature, "compute shaders require shader model 5.0")
	}
	if err := w.collect(); err != nil {
		return err
	}

	if err := w.unit.WriteEmulatedFunctions(w.Writer); err != nil {
		return err
	}
	w.writeTextureHelpers()
	if err := w.writeUniforms(); err != nil {
		return err
	}
	if err := w.writeSamplers(); err != nil {
		return err
	}
	if err := w.writeStatics(); err != nil {
		return err
	}

	for _, s := range w.unit.Tree.Statements {
		if decl, ok := s.(*ir.Declaration); ok && isInterface(decl) {
			continue
		}
		if err := w.Stmt(s); err != nil {
			return err
		}
	}
	return w.writeEntryPoint()
}

// declaration spells "type name[n]" for a global the writer declares
// itself.
func (w *writer) declaration(typ ir.Type, name string) (string, error) {
	tn, err := typeName(typ, w.options.ShaderModel)
	if err != nil {
		return "", err
	}
	return tn + " " + name + typ.ArraySuffix(), nil
}

func (w *writer) writeUniforms() error {
	if len(w.uniforms) == 0 {
		return nil
	}
	cbuffer := w.options.ShaderModel.SupportsConstantBuffers()
	if cbuffer {
		w.Line("cbuffer Uniforms : register(b0)")
		w.Line("{")
		w.PushIndent()
	}
	for _, sym := range w.uniforms {
		decl, err := w.declaration(sym.Type(), w.names.name(sym.Name))
		if err != nil {
			return err
		}
		if cbuffer {
			w.Line("%s;", decl)
		} else {
			w.Line("uniform %s;", decl)
		}
	}
	if cbuffer {
		w.PopIndent()
		w.Line("};")
	}
	w.Line("")
	return nil
}

// writeStatics declares the variables that carry stage inputs, stage
// outputs and built-ins between the entry point and the translated code.
func (w *writer) writeStatics() error {
	for _, sym := range slices.Concat(w.inputs, w.outputs) {
		decl, err := w.declaration(sym.Type(), w.names.name(sym.Name))
		if err != nil {
			return err
		}
		w.Line("static %s;", decl)
	}
	for _, q := range w.usedBuiltins {
		decl, err := w.declaration(w.builtins[q], builtinNames[q])
		if err != nil {
			return err
		}
		w.Line("static %s;", decl)
	}
	w.Line("")
	return nil
}
