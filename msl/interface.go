package msl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// field is a member of the stage_in or output struct, or a parameter of
// the stage function.
type field struct {
	// decl is the declaration without attribute, e.g. "float4 gl_Position".
	decl string
	attr string

	// copy moves the value between the field and Globals.
	copy string
}

func stageKeyword(stage ir.ShaderStage) string {
	switch stage {
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "kernel"
	}
	return "vertex"
}

func interpolation(q ir.Qualifier) string {
	switch q {
	case ir.QualFlatIn:
		return ", flat"
	case ir.QualCentroidIn:
		return ", centroid_perspective"
	}
	return ""
}

// interfaceType checks that typ can cross a stage boundary.
func interfaceType(sym *ir.Symbol) (string, error) {
	typ := sym.Type()
	if typ.IsMatrix() || typ.IsArray() {
		return "", emit.NewErrorAt("msl", emit.ErrUnsupportedType, sym, "stage variable %s of type %s", sym.Name, typ)
	}
	return typeName(typ)
}

func (w *writer) inputField(sym *ir.Symbol, attr string) (field, error) {
	tn, err := interfaceType(sym)
	if err != nil {
		return field{}, err
	}
	name := w.names.name(sym.Name)
	return field{tn + " " + name, attr, "g." + name + " = in." + name + ";"}, nil
}

func (w *writer) outputField(sym *ir.Symbol, attr string) (field, error) {
	tn, err := interfaceType(sym)
	if err != nil {
		return field{}, err
	}
	name := w.names.name(sym.Name)
	return field{tn + " " + name, attr, "out." + name + " = g." + name + ";"}, nil
}

// builtinParam is a stage function parameter that feeds a built-in.
func (w *writer) builtinParam(q ir.Qualifier, typ, attr string) field {
	name := builtinNames[q]
	value := name
	if typ == "uint" && w.builtins[q].Basic == ir.TypeInt {
		value = "int(" + name + ")"
	}
	return field{typ + " " + name, attr, "g." + name + " = " + value + ";"}
}

// stageIO returns the stage_in members, the output members and the
// built-in parameters of the stage function.
func (w *writer) stageIO() (in, out, params []field, err error) {
	switch w.unit.Stage {
	case ir.StageFragment:
		return w.fragmentIO()
	case ir.StageCompute:
		return nil, nil, w.computeIO(), nil
	}
	return w.vertexIO()
}

func (w *writer) vertexIO() (in, out, params []field, err error) {
	slot := 0
	for _, sym := range w.inputs {
		if loc := sym.Type().Layout.Location; loc >= 0 {
			slot = loc
		}
		f, err := w.inputField(sym, fmt.Sprintf("attribute(%d)", slot))
		if err != nil {
			return nil, nil, nil, err
		}
		in = append(in, f)
		slot++
	}
	if w.uses(ir.QualVertexID) {
		params = append(params, w.builtinParam(ir.QualVertexID, "uint", "vertex_id"))
	}
	if w.uses(ir.QualInstanceID) {
		params = append(params, w.builtinParam(ir.QualInstanceID, "uint", "instance_id"))
	}

	position := field{decl: "float4 gl_Position", attr: "position", copy: "out.gl_Position = g.gl_Position;"}
	if w.invariantPosition && !w.options.LangVersion.Less(Version2_1) {
		position.attr = "position, invariant"
	}
	out = append(out, position)
	if w.uses(ir.QualPointSize) {
		out = append(out, field{"float gl_PointSize", "point_size", "out.gl_PointSize = g.gl_PointSize;"})
	}
	for _, sym := range w.outputs {
		f, err := w.outputField(sym, "user("+w.names.name(sym.Name)+")")
		if err != nil {
			return nil, nil, nil, err
		}
		out = append(out, f)
	}
	return in, out, params, nil
}

func (w *writer) fragmentIO() (in, out, params []field, err error) {
	for _, sym := range w.inputs {
		f, err := w.inputField(sym, "user("+w.names.name(sym.Name)+")"+interpolation(sym.Type().Qualifier))
		if err != nil {
			return nil, nil, nil, err
		}
		in = append(in, f)
	}
	if w.uses(ir.QualFragCoord) {
		params = append(params, w.builtinParam(ir.QualFragCoord, "float4", "position"))
	}
	if w.uses(ir.QualFrontFacing) {
		params = append(params, w.builtinParam(ir.QualFrontFacing, "bool", "front_facing"))
	}
	if w.uses(ir.QualPointCoord) {
		params = append(params, w.builtinParam(ir.QualPointCoord, "float2", "point_coord"))
	}

	if w.uses(ir.QualFragColor) {
		out = append(out, field{"float4 gl_FragColor", "color(0)", "out.gl_FragColor = g.gl_FragColor;"})
	}
	if typ, ok := w.builtins[ir.QualFragData]; ok {
		for i := 0; i < typ.ArrayElements(); i++ {
			out = append(out, field{
				decl: fmt.Sprintf("float4 gl_FragData_%d", i),
				attr: fmt.Sprintf("color(%d)", i),
				copy: fmt.Sprintf("out.gl_FragData_%d = g.gl_FragData[%d];", i, i),
			})
		}
	}
	for _, sym := range w.outputs {
		fs, err := w.fragmentOutputs(sym)
		if err != nil {
			return nil, nil, nil, err
		}
		out = append(out, fs...)
	}
	if w.uses(ir.QualFragDepth) {
		out = append(out, field{"float gl_FragDepth", "depth(any)", "out.gl_FragDepth = g.gl_FragDepth;"})
	}
	return in, out, params, nil
}

// fragmentOutputs returns the color attachments written by sym. An array
// takes one attachment per element.
func (w *writer) fragmentOutputs(sym *ir.Symbol) ([]field, error) {
	typ := sym.Type()
	loc := max(typ.Layout.Location, 0)
	name := w.names.name(sym.Name)
	if !typ.IsArray() {
		return w.outputFieldList(sym, fmt.Sprintf("color(%d)", loc))
	}
	tn, err := typeName(typ.ElementType())
	if err != nil {
		return nil, err
	}
	fs := make([]field, typ.ArrayElements())
	for i := range fs {
		fs[i] = field{
			decl: fmt.Sprintf("%s %s_%d", tn, name, i),
			attr: fmt.Sprintf("color(%d)", loc+i),
			copy: fmt.Sprintf("out.%s_%d = g.%s[%d];", name, i, name, i),
		}
	}
	return fs, nil
}

func (w *writer) outputFieldList(sym *ir.Symbol, attr string) ([]field, error) {
	f, err := w.outputField(sym, attr)
	if err != nil {
		return nil, err
	}
	return []field{f}, nil
}

var computeAttributes = []struct {
	q    ir.Qualifier
	attr string
}{
	{ir.QualGlobalInvocationID, "thread_position_in_grid"},
	{ir.QualLocalInvocationID, "thread_position_in_threadgroup"},
	{ir.QualWorkGroupID, "threadgroup_position_in_grid"},
	{ir.QualNumWorkGroups, "threadgroups_per_grid"},
	{ir.QualLocalInvocationIndex, "thread_index_in_threadgroup"},
}

func (w *writer) computeIO() []field {
	var params []field
	for _, a := range computeAttributes {
		typ, ok := w.builtins[a.q]
		if !ok {
			continue
		}
		tn, _ := typeName(typ)
		params = append(params, w.builtinParam(a.q, tn, a.attr))
	}
	return params
}

func (w *writer) writeStruct(name string, fields []field) {
	w.Line("struct %s", name)
	w.Line("{")
	w.PushIndent()
	for _, f := range fields {
		w.Line("%s [[%s]];", f.decl, f.attr)
	}
	w.PopIndent()
	w.Line("};")
	w.Line("")
}

// writeEntryPoint writes the stage structs and the stage function main0,
// which fills Globals, runs the translated shader and returns its
// outputs.
func (w *writer) writeEntryPoint() error {
	in, out, builtinParams, err := w.stageIO()
	if err != nil {
		return err
	}
	if len(in) > 0 {
		w.writeStruct("main0_in", in)
	}
	if len(out) > 0 {
		w.writeStruct("main0_out", out)
	}

	var params []string
	if len(in) > 0 {
		params = append(params, "main0_in in [[stage_in]]")
	}
	if len(w.uniforms) > 0 {
		params = append(params, "constant Uniforms& u [[buffer(0)]]")
	}
	for _, b := range w.samplerList {
		params = append(params,
			fmt.Sprintf("%s %s [[texture(%d)]]", textureType(b.sym.Type().Basic), b.texture, b.slot),
			fmt.Sprintf("sampler %s [[sampler(%d)]]", b.sampler, b.slot))
	}
	for _, p := range builtinParams {
		params = append(params, fmt.Sprintf("%s [[%s]]", p.decl, p.attr))
	}

	ret := "void"
	if len(out) > 0 {
		ret = "main0_out"
	}
	w.Line("%s %s main0(%s)", stageKeyword(w.unit.Stage), ret, strings.Join(params, ", "))
	w.Line("{")
	w.PushIndent()
	w.Line("Globals g = {};")
	for _, sym := range w.shared {
		m, err := member(sym.Type(), w.names.name(sym.Name))
		if err != nil {
			return err
		}
		w.Line("threadgroup %s;", m)
		w.Line("g.%s = &%s;", w.names.name(sym.Name), w.names.name(sym.Name))
	}
	if err := w.writeStaticInits(); err != nil {
		return err
	}
	for _, f := range slices.Concat(in, builtinParams) {
		w.Line("%s", f.copy)
	}
	w.Line("%s(%s);", entryName, w.contextArgs())
	if len(out) > 0 {
		w.Line("main0_out out = {};")
		for _, f := range out {
			w.Line("%s", f.copy)
		}
		if w.unit.Stage == ir.StageVertex {
			// GLSL clip space depth runs from -w to w, Metal from 0 to w.
			w.Line("out.gl_Position.z = (out.gl_Position.z + out.gl_Position.w) * 0.5;")
		}
		w.Line("return out;")
	}
	w.PopIndent()
	w.Line("}")
	return nil
}

// writeStaticInits assigns the initializers of global variables.
func (w *writer) writeStaticInits() error {
	for _, sym := range w.statics {
		if init, ok := w.inits[sym.ID]; ok {
			if err := w.Stmt(ir.NewBinary(ir.OpAssign, sym, init, sym.Type())); err != nil {
				return err
			}
		}
	}
	return nil
}
