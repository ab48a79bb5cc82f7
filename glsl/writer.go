// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// Built-in variables whose spelling depends on the output version.
const (
	fragColorName  = "webgl_FragColor"
	fragDataName   = "webgl_FragData"
	drawIDARBName  = "gl_DrawIDARB"
	drawParamsARB  = "GL_ARB_shader_draw_parameters"
	multiDrawANGLE = "GL_ANGLE_multi_draw"
)

// es3Extensions became core in GLSL ES 3.00.
var es3Extensions = map[string]bool{
	"GL_EXT_frag_depth":           true,
	"GL_OES_standard_derivatives": true,
	"GL_EXT_shader_texture_lod":   true,
	"GL_EXT_draw_buffers":         true,
}

// modernTextureNames maps the ESSL 1.00 texture functions to their GLSL
// 1.30 and GLSL ES 3.00 overloads.
var modernTextureNames = map[ir.Operator]string{
	ir.OpTexture2D:      "texture",
	ir.OpTextureCube:    "texture",
	ir.OpTexture2DProj:  "textureProj",
	ir.OpTexture2DLod:   "textureLod",
	ir.OpTextureCubeLod: "textureLod",
}

// dialect spells the tree for one GLSL version.
type dialect struct {
	emit.BaseDialect
	version Version

	// renames maps built-in variable names to their output spelling.
	renames map[string]string
}

func (d *dialect) Name() string { return "glsl" }

func (d *dialect) TypeName(typ ir.Type) (string, error) {
	if typ.Basic == ir.TypeSamplerExternalOES && !d.version.ES {
		return "sampler2D", nil
	}
	if typ.Basic == ir.TypeUInt && d.version.LegacyInterface() {
		return "", emit.NewError("glsl", emit.ErrUnsupportedType, "%s requires GLSL 1.30", typ.BaseName())
	}
	return typ.BaseName(), nil
}

func (d *dialect) Identifier(sym *ir.Symbol) string {
	if sym.ID.IsBuiltin() {
		if r, ok := d.renames[sym.Name]; ok {
			return r
		}
		return sym.Name
	}
	return escapeKeyword(sym.Name)
}

func (d *dialect) FunctionName(name string) string {
	if name == "main" {
		return name
	}
	return escapeKeyword(name)
}

func (d *dialect) Qualifiers(typ ir.Type) string {
	var sb strings.Builder
	if typ.Invariant {
		sb.WriteString("invariant ")
	}
	d.writeLayout(&sb, typ.Layout)

	legacy := d.version.LegacyInterface()
	switch q := typ.Qualifier; q {
	case ir.QualConst:
		sb.WriteString("const ")
	case ir.QualUniform:
		sb.WriteString("uniform ")
	case ir.QualAttribute, ir.QualVertexIn:
		if legacy {
			sb.WriteString("attribute ")
		} else {
			sb.WriteString("in ")
		}
	case ir.QualVaryingIn, ir.QualFragmentIn:
		if legacy {
			sb.WriteString("varying ")
		} else {
			sb.WriteString("in ")
		}
	case ir.QualVaryingOut, ir.QualVertexOut:
		if legacy {
			sb.WriteString("varying ")
		} else {
			sb.WriteString("out ")
		}
	case ir.QualFragmentOut, ir.QualParamOut:
		sb.WriteString("out ")
	case ir.QualSmoothIn, ir.QualSmoothOut, ir.QualFlatIn, ir.QualFlatOut,
		ir.QualCentroidIn, ir.QualCentroidOut, ir.QualShared, ir.QualParamConst:
		sb.WriteString(q.String() + " ")
	case ir.QualParamInOut:
		sb.WriteString("inout ")
	}

	if p := d.precision(typ); p != "" {
		sb.WriteString(p + " ")
	}
	return sb.String()
}

func (d *dialect) precision(typ ir.Type) string {
	if !d.version.ES || typ.Basic == ir.TypeBool || typ.Basic == ir.TypeVoid {
		return ""
	}
	return typ.Precision.String()
}

func (d *dialect) writeLayout(sb *strings.Builder, l ir.Layout) {
	var parts []string
	if l.Location >= 0 && d.version.SupportsLocation() {
		parts = append(parts, "location = "+strconv.Itoa(l.Location))
	}
	if l.Binding >= 0 && d.version.SupportsBinding() {
		parts = append(parts, "binding = "+strconv.Itoa(l.Binding))
	}
	if len(parts) > 0 {
		sb.WriteString("layout(" + strings.Join(parts, ", ") + ") ")
	}
}

func (d *dialect) WriteAggregate(w *emit.Writer, n *ir.Aggregate) error {
	if !d.version.LegacyInterface() {
		if name, ok := modernTextureNames[n.Op]; ok {
			return w.Call(name, n.Args)
		}
	}
	return d.BaseDialect.WriteAggregate(w, n)
}

func (d *dialect) WritePrototype(w *emit.Writer, p *ir.FunctionPrototype) error {
	if prec := d.precision(p.Return); prec != "" {
		w.Print(prec + " ")
	}
	return d.BaseDialect.WritePrototype(w, p)
}

// writer emits one unit.
type writer struct {
	*emit.Writer
	unit    *emit.Unit
	version Version
	options Options
	d       *dialect

	// builtins holds the type of every built-in variable the tree reads
	// or writes, by name.
	builtins map[string]ir.Type
}

func newWriter(u *emit.Unit, v Version, options Options) *writer {
	d := &dialect{version: v, renames: make(map[string]string)}
	return &writer{
		Writer:   emit.NewWriter(d),
		unit:     u,
		version:  v,
		options:  options,
		d:        d,
		builtins: usedBuiltins(u.Tree),
	}
}

// builtinCollector records the built-in variables a tree references.
type builtinCollector struct {
	ir.BaseVisitor
	used map[string]ir.Type
}

func (c *builtinCollector) VisitSymbol(_ *ir.Traverser, n *ir.Symbol) {
	if n.ID.IsBuiltin() {
		c.used[n.Name] = n.Type()
	}
}

func usedBuiltins(root *ir.Block) map[string]ir.Type {
	c := &builtinCollector{used: make(map[string]ir.Type)}
	ir.NewTraverser(true, false, false).Traverse(root, c)
	return c.used
}

func (w *writer) uses(name string) bool {
	_, ok := w.builtins[name]
	return ok
}

// writeUnit generates GLSL code for the whole unit.
func (w *writer) writeUnit() error {
	w.resolveBuiltinNames()

	w.writeVersionDirective()
	w.writeExtensions()
	w.writeHeader()

	if err := w.unit.WriteEmulatedFunctions(w.Writer); err != nil {
		return err
	}

	w.writeFragmentOutputs()

	for _, s := range w.unit.Tree.Statements {
		if err := w.Stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) resolveBuiltinNames() {
	legacy := w.version.LegacyInterface()
	if !legacy {
		w.d.renames["gl_FragColor"] = fragColorName
		w.d.renames["gl_FragData"] = fragDataName
	}
	if !w.version.ES || !legacy {
		w.d.renames["gl_FragDepthEXT"] = "gl_FragDepth"
	}
	if !w.version.ES && w.version.versionLessThan(460) {
		w.d.renames["gl_DrawID"] = drawIDARBName
	}
}

// writeVersionDirective writes the #version directive. GLSL 1.10 and
// GLSL ES 1.00 are the defaults and get none.
func (w *writer) writeVersionDirective() {
	if w.version == Version110 || w.version == VersionES100 {
		return
	}
	if w.options.Core && !w.version.ES && !w.version.versionLessThan(150) {
		w.Line("#version %s core", w.version)
		return
	}
	w.Line("#version %s", w.version)
}

func (w *writer) writeExtensions() {
	if !w.version.ES {
		if w.uses("gl_DrawID") && w.version.versionLessThan(460) {
			w.Line("#extension %s : require", drawParamsARB)
		}
		return
	}
	for _, ext := range w.unit.Extensions {
		if ext.Name == multiDrawANGLE && !w.uses("gl_DrawID") {
			continue
		}
		if es3Extensions[ext.Name] && !w.version.LegacyInterface() {
			continue
		}
		w.Line("#extension %s : %s", ext.Name, ext.Behavior)
	}
}

func (w *writer) writeHeader() {
	if w.unit.InvariantAll {
		w.Line("#pragma STDGL invariant(all)")
	}
	if w.version.ES && w.unit.Stage == ir.StageFragment {
		w.Line("precision mediump float;")
	}
	if w.unit.Stage == ir.StageCompute {
		s := w.unit.LocalSize
		w.Line("layout(local_size_x = %d, local_size_y = %d, local_size_z = %d) in;", s[0], s[1], s[2])
	}
	w.Line("")
}

// writeFragmentOutputs declares the outputs that replace gl_FragColor and
// gl_FragData in versions without them.
func (w *writer) writeFragmentOutputs() {
	if w.version.LegacyInterface() {
		return
	}
	written := false
	if typ, ok := w.builtins["gl_FragColor"]; ok {
		w.Line("out %s%s %s;", w.precisionPrefix(typ), typ.BaseName(), fragColorName)
		written = true
	}
	if typ, ok := w.builtins["gl_FragData"]; ok {
		w.Line("out %s%s %s%s;", w.precisionPrefix(typ), typ.BaseName(), fragDataName, typ.ArraySuffix())
		written = true
	}
	if written {
		w.Line("")
	}
}

func (w *writer) precisionPrefix(typ ir.Type) string {
	if p := w.d.precision(typ); p != "" {
		return p + " "
	}
	return ""
}
