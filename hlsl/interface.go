// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/translator/ir"
)

// member is one field of an entry point input or output struct.
type member struct {
	// decl is the field without semantic, e.g. "float4 gl_Position".
	decl     string
	semantic string

	// copy moves the field to or from its static variable in the entry
	// point. It is empty for fields the shader never reads.
	copy string
}

// stagePrefix names the entry point structs of a stage.
func stagePrefix(stage ir.ShaderStage) string {
	switch stage {
	case ir.StageFragment:
		return "PS"
	case ir.StageCompute:
		return "CS"
	}
	return "VS"
}

// locationCount is the number of interface slots typ occupies.
func locationCount(typ ir.Type) int {
	n := typ.ArrayElements()
	if typ.IsMatrix() {
		n *= int(typ.Cols())
	}
	return n
}

func interpolation(q ir.Qualifier) string {
	switch q {
	case ir.QualFlatIn, ir.QualFlatOut:
		return "nointerpolation "
	case ir.QualCentroidIn, ir.QualCentroidOut:
		return "centroid "
	}
	return ""
}

func (w *writer) inputMember(sym *ir.Symbol, semantic string) (member, error) {
	name := w.names.name(sym.Name)
	decl, err := w.declaration(sym.Type(), name)
	if err != nil {
		return member{}, err
	}
	return member{decl: decl, semantic: semantic, copy: name + " = input." + name + ";"}, nil
}

func (w *writer) outputMember(sym *ir.Symbol, semantic string) (member, error) {
	name := w.names.name(sym.Name)
	decl, err := w.declaration(sym.Type(), name)
	if err != nil {
		return member{}, err
	}
	return member{decl: decl, semantic: semantic, copy: "output." + name + " = " + name + ";"}, nil
}

// varyings returns the members passed between the vertex and fragment
// stages. They are ordered by name and numbered as TEXCOORDn, so both
// stages of a program agree without seeing each other.
func (w *writer) varyings(syms []*ir.Symbol, out bool) ([]member, error) {
	sorted := slices.Clone(syms)
	slices.SortFunc(sorted, func(a, b *ir.Symbol) int { return strings.Compare(a.Name, b.Name) })

	var members []member
	slot := 0
	for _, sym := range sorted {
		semantic := fmt.Sprintf("TEXCOORD%d", slot)
		var m member
		var err error
		if out {
			m, err = w.outputMember(sym, semantic)
		} else {
			m, err = w.inputMember(sym, semantic)
		}
		if err != nil {
			return nil, err
		}
		if w.options.ShaderModel.SupportsSystemValues() {
			m.decl = interpolation(sym.Type().Qualifier) + m.decl
		}
		members = append(members, m)
		slot += locationCount(sym.Type())
	}
	return members, nil
}

func (w *writer) stageIO() (in, out []member, err error) {
	switch w.unit.Stage {
	case ir.StageFragment:
		return w.fragmentIO()
	case ir.StageCompute:
		return w.computeIO(), nil, nil
	}
	return w.vertexIO()
}

func (w *writer) vertexIO() (in, out []member, err error) {
	sm4 := w.options.ShaderModel.SupportsSystemValues()

	slot := 0
	for _, sym := range w.inputs {
		if loc := sym.Type().Layout.Location; loc >= 0 {
			slot = loc
		}
		m, err := w.inputMember(sym, fmt.Sprintf("TEXCOORD%d", slot))
		if err != nil {
			return nil, nil, err
		}
		in = append(in, m)
		slot += locationCount(sym.Type())
	}
	if w.uses(ir.QualVertexID) {
		in = append(in, member{"uint gl_VertexID", "SV_VertexID", "gl_VertexID = int(input.gl_VertexID);"})
	}
	if w.uses(ir.QualInstanceID) {
		in = append(in, member{"uint gl_InstanceID", "SV_InstanceID", "gl_InstanceID = int(input.gl_InstanceID);"})
	}

	// GLSL clip space depth runs from -w to w, Direct3D from 0 to w.
	position := member{
		decl:     "float4 gl_Position",
		semantic: "POSITION",
		copy:     "output.gl_Position = float4(gl_Position.xy, (gl_Position.z + gl_Position.w) * 0.5, gl_Position.w);",
	}
	if sm4 {
		position.semantic = "SV_Position"
	}
	out = append(out, position)

	varyings, err := w.varyings(w.outputs, true)
	if err != nil {
		return nil, nil, err
	}
	out = append(out, varyings...)
	if !sm4 && w.uses(ir.QualPointSize) {
		out = append(out, member{"float gl_PointSize", "PSIZE", "output.gl_PointSize = gl_PointSize;"})
	}
	return in, out, nil
}

func (w *writer) fragmentIO() (in, out []member, err error) {
	sm4 := w.options.ShaderModel.SupportsSystemValues()

	// The position leads the fragment input so that its layout matches
	// the vertex output.
	switch {
	case sm4:
		m := member{decl: "float4 gl_FragCoord", semantic: "SV_Position"}
		if w.uses(ir.QualFragCoord) {
			m.copy = "gl_FragCoord = input.gl_FragCoord;"
		}
		in = append(in, m)
	case w.uses(ir.QualFragCoord):
		in = append(in, member{"float2 gl_FragCoord", "VPOS", "gl_FragCoord = float4(input.gl_FragCoord + 0.5, 0.0, 1.0);"})
	}

	varyings, err := w.varyings(w.inputs, false)
	if err != nil {
		return nil, nil, err
	}
	in = append(in, varyings...)

	if w.uses(ir.QualFrontFacing) {
		if sm4 {
			in = append(in, member{"bool gl_FrontFacing", "SV_IsFrontFace", "gl_FrontFacing = input.gl_FrontFacing;"})
		} else {
			in = append(in, member{"float gl_FrontFacing", "VFACE", "gl_FrontFacing = (input.gl_FrontFacing >= 0.0);"})
		}
	}

	target, depth := "COLOR", "DEPTH"
	if sm4 {
		target, depth = "SV_Target", "SV_Depth"
	}
	if w.uses(ir.QualFragColor) {
		out = append(out, member{"float4 gl_FragColor", target + "0", "output.gl_FragColor = gl_FragColor;"})
	}
	if typ, ok := w.builtins[ir.QualFragData]; ok {
		for i := 0; i < typ.ArrayElements(); i++ {
			out = append(out, member{
				decl:     fmt.Sprintf("float4 gl_FragData_%d", i),
				semantic: fmt.Sprintf("%s%d", target, i),
				copy:     fmt.Sprintf("output.gl_FragData_%d = gl_FragData[%d];", i, i),
			})
		}
	}
	for _, sym := range w.outputs {
		m, err := w.outputMember(sym, fmt.Sprintf("%s%d", target, max(sym.Type().Layout.Location, 0)))
		if err != nil {
			return nil, nil, err
		}
		out = append(out, m)
	}
	if w.uses(ir.QualFragDepth) {
		out = append(out, member{"float gl_FragDepth", depth, "output.gl_FragDepth = gl_FragDepth;"})
	}
	return in, out, nil
}

var computeSemantics = []struct {
	q        ir.Qualifier
	semantic string
}{
	{ir.QualGlobalInvocationID, "SV_DispatchThreadID"},
	{ir.QualLocalInvocationID, "SV_GroupThreadID"},
	{ir.QualWorkGroupID, "SV_GroupID"},
	{ir.QualLocalInvocationIndex, "SV_GroupIndex"},
}

func (w *writer) computeIO() []member {
	var in []member
	for _, s := range computeSemantics {
		typ, ok := w.builtins[s.q]
		if !ok {
			continue
		}
		name := builtinNames[s.q]
		decl, _ := w.declaration(typ, name)
		in = append(in, member{decl, s.semantic, name + " = input." + name + ";"})
	}
	return in
}

func (w *writer) writeStruct(name string, members []member) {
	w.Line("struct %s", name)
	w.Line("{")
	w.PushIndent()
	for _, m := range members {
		w.Line("%s : %s;", m.decl, m.semantic)
	}
	w.PopIndent()
	w.Line("};")
	w.Line("")
}

// writeEntryPoint writes the interface structs and the "main" function
// that runs the translated shader.
func (w *writer) writeEntryPoint() error {
	in, out, err := w.stageIO()
	if err != nil {
		return err
	}
	prefix := stagePrefix(w.unit.Stage)
	inStruct, outStruct := prefix+"_INPUT", prefix+"_OUTPUT"

	if len(in) > 0 {
		w.writeStruct(inStruct, in)
	}
	if len(out) > 0 {
		w.writeStruct(outStruct, out)
	}

	ret, param := "void", ""
	if len(out) > 0 {
		ret = outStruct
	}
	if len(in) > 0 {
		param = inStruct + " input"
	}
	if w.unit.Stage == ir.StageCompute {
		s := w.unit.LocalSize
		w.Line("[numthreads(%d, %d, %d)]", s[0], s[1], s[2])
	}
	w.Line("%s main(%s)", ret, param)
	w.Line("{")
	w.PushIndent()
	for _, m := range in {
		if m.copy != "" {
			w.Line("%s", m.copy)
		}
	}
	w.Line(entryName + "();")
	if len(out) > 0 {
		w.Line("%s output;", outStruct)
		for _, m := range out {
			w.Line("%s", m.copy)
		}
		w.Line("return output;")
	}
	w.PopIndent()
	w.Line("}")
	return nil
}
