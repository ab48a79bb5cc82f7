// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// samplerBinding is a GLSL sampler uniform split into the texture and
// sampler objects of shader model 4 and later.
type samplerBinding struct {
	sym      *ir.Symbol
	texture  string
	sampler  string
	register int
}

type textureKind uint8

const (
	sampleTexture textureKind = iota
	projTexture
	lodTexture
	sizeTexture
	fetchTexture
)

func textureKindOf(op ir.Operator) textureKind {
	switch op {
	case ir.OpTexture2DProj, ir.OpTextureProj:
		return projTexture
	case ir.OpTexture2DLod, ir.OpTextureCubeLod, ir.OpTextureLod:
		return lodTexture
	case ir.OpTextureSize:
		return sizeTexture
	case ir.OpTexelFetch:
		return fetchTexture
	}
	return sampleTexture
}

func textureHelperName(op ir.Operator) string {
	return "gl_" + op.String()
}

// textureObjectType is the shader model 4 resource behind a sampler type.
func textureObjectType(b ir.BasicType) string {
	switch b {
	case ir.TypeSamplerCube:
		return "TextureCube"
	case ir.TypeSampler3D:
		return "Texture3D"
	case ir.TypeSampler2DArray:
		return "Texture2DArray"
	}
	return "Texture2D"
}

func samplerStateType(b ir.BasicType) string {
	if b == ir.TypeSampler2DShadow {
		return "SamplerComparisonState"
	}
	return "SamplerState"
}

// addTextureHelper records the helper a texture call needs. Helpers are
// kept in first-use order and each distinct overload is written once.
func (w *writer) addTextureHelper(n *ir.Aggregate) error {
	text, err := w.textureHelperText(n)
	if err != nil {
		return err
	}
	if w.helperSeen[text] {
		return nil
	}
	w.helperSeen[text] = true
	w.helpers = append(w.helpers, text)
	return nil
}

func (w *writer) textureHelperText(n *ir.Aggregate) (string, error) {
	sm := w.options.ShaderModel
	sampler := n.Args[0].Type()
	ret, err := typeName(n.Type(), sm)
	if err != nil {
		return "", err
	}

	var params []string
	if sm.SeparateSamplers() {
		params = append(params,
			textureObjectType(sampler.Basic)+" t",
			samplerStateType(sampler.Basic)+" s")
	} else {
		st, err := typeName(sampler, sm)
		if err != nil {
			return "", err
		}
		params = append(params, st+" s")
	}

	kind := textureKindOf(n.Op)
	argNames := []string{"p", "bias"}
	switch kind {
	case lodTexture, fetchTexture:
		argNames[1] = "lod"
	case sizeTexture:
		argNames = []string{"lod"}
	}
	for i, a := range n.Args[1:] {
		tn, err := typeName(a.Type(), sm)
		if err != nil {
			return "", err
		}
		params = append(params, tn+" "+argNames[i])
	}

	s := textureSignature{
		kind:     kind,
		sampler:  sampler.Basic,
		size:     int(n.Args[1].Type().PrimarySize),
		extra:    len(n.Args) > 2,
		implicit: w.unit.Stage == ir.StageFragment,
	}
	if s.sampler == ir.TypeSampler2DShadow && s.kind == sampleTexture && s.extra {
		return "", emit.NewErrorAt("hlsl", emit.ErrUnsupportedFeature, n, "%s with a bias on a shadow sampler", n.Op)
	}
	var body string
	if sm.SeparateSamplers() {
		body = s.separateBody()
	} else {
		body, err = s.combinedBody()
		if err != nil {
			return "", emit.NewErrorAt("hlsl", emit.ErrUnsupportedFeature, n, "%s %s", n.Op, err)
		}
	}
	return fmt.Sprintf("%s %s(%s)\n{\n%s}\n", ret, textureHelperName(n.Op), strings.Join(params, ", "), body), nil
}

// textureSignature describes a texture call well enough to write the
// body of its helper.
type textureSignature struct {
	kind    textureKind
	sampler ir.BasicType

	// size is the component count of the coordinate.
	size int

	// extra is set when the call passes a bias or level of detail.
	extra bool

	// implicit is set in stages with derivatives, where the level of
	// detail may be computed by the hardware.
	implicit bool
}

// coordinates returns the lookup coordinate and, for shadow samplers,
// the depth reference.
func (s textureSignature) coordinates() (coord, ref string) {
	if s.kind == projTexture {
		w := "p.w"
		if s.size == 3 {
			w = "p.z"
		}
		if s.sampler == ir.TypeSampler3D {
			return "p.xyz / " + w, ""
		}
		return "p.xy / " + w, ""
	}
	if s.sampler == ir.TypeSampler2DShadow {
		return "p.xy", "p.z"
	}
	return "p", ""
}

// separateBody writes the helper for texture and sampler objects.
func (s textureSignature) separateBody() string {
	coord, ref := s.coordinates()
	var expr string
	switch s.kind {
	case sizeTexture:
		return s.sizeBody()
	case fetchTexture:
		if s.size == 2 {
			expr = "t.Load(int3(p, lod))"
		} else {
			expr = "t.Load(int4(p, lod))"
		}
	case lodTexture:
		if ref != "" {
			expr = fmt.Sprintf("t.SampleCmpLevelZero(s, %s, %s)", coord, ref)
		} else {
			expr = fmt.Sprintf("t.SampleLevel(s, %s, lod)", coord)
		}
	default:
		switch {
		case ref != "" && s.implicit:
			expr = fmt.Sprintf("t.SampleCmp(s, %s, %s)", coord, ref)
		case ref != "":
			expr = fmt.Sprintf("t.SampleCmpLevelZero(s, %s, %s)", coord, ref)
		case s.extra && s.implicit:
			expr = fmt.Sprintf("t.SampleBias(s, %s, bias)", coord)
		case s.implicit:
			expr = fmt.Sprintf("t.Sample(s, %s)", coord)
		default:
			expr = fmt.Sprintf("t.SampleLevel(s, %s, 0.0)", coord)
		}
	}
	return "    return " + expr + ";\n"
}

func (s textureSignature) sizeBody() string {
	dims := []string{"width", "height"}
	switch s.sampler {
	case ir.TypeSampler3D:
		dims = append(dims, "depth")
	case ir.TypeSampler2DArray:
		dims = append(dims, "elements")
	}
	var sb strings.Builder
	for _, d := range append(dims, "levels") {
		sb.WriteString("    uint " + d + ";\n")
	}
	fmt.Fprintf(&sb, "    t.GetDimensions(uint(lod), %s, levels);\n", strings.Join(dims, ", "))
	fmt.Fprintf(&sb, "    return int%d(%s);\n", len(dims), strings.Join(dims, ", "))
	return sb.String()
}

// combinedBody writes the helper for shader model 3 samplers.
func (s textureSignature) combinedBody() (string, error) {
	var fn string
	switch s.sampler {
	case ir.TypeSampler2D, ir.TypeSamplerExternalOES:
		fn = "tex2D"
	case ir.TypeSamplerCube:
		fn = "texCUBE"
	case ir.TypeSampler3D:
		fn = "tex3D"
	default:
		return "", fmt.Errorf("with %s requires shader model 4.0", s.sampler)
	}
	if s.kind == sizeTexture || s.kind == fetchTexture {
		return "", fmt.Errorf("requires shader model 4.0")
	}

	pad := func(coord, last string) string {
		if fn == "tex2D" {
			return fmt.Sprintf("float4(%s, 0.0, %s)", coord, last)
		}
		return fmt.Sprintf("float4(%s, %s)", coord, last)
	}

	coord, _ := s.coordinates()
	var expr string
	switch {
	case s.kind == projTexture && s.implicit && !s.extra:
		if fn == "tex2D" {
			w := "p.w"
			if s.size == 3 {
				w = "p.z"
			}
			expr = fmt.Sprintf("tex2Dproj(s, float4(p.xy, 0.0, %s))", w)
		} else {
			expr = fn + "proj(s, p)"
		}
	case s.kind == lodTexture:
		expr = fmt.Sprintf("%slod(s, %s)", fn, pad(coord, "lod"))
	case s.extra && s.implicit:
		expr = fmt.Sprintf("%sbias(s, %s)", fn, pad(coord, "bias"))
	case s.implicit:
		expr = fmt.Sprintf("%s(s, %s)", fn, coord)
	default:
		expr = fmt.Sprintf("%slod(s, %s)", fn, pad(coord, "0.0"))
	}
	return "    return " + expr + ";\n", nil
}

// writeTextureCall writes a call to the helper of n. With separate
// samplers the GLSL sampler must name a uniform, whose texture and
// sampler objects are passed instead.
func (w *writer) writeTextureCall(n *ir.Aggregate) error {
	name := textureHelperName(n.Op)
	if !w.options.ShaderModel.SeparateSamplers() {
		return w.Call(name, n.Args)
	}
	var b *samplerBinding
	if sym, ok := n.Args[0].(*ir.Symbol); ok {
		b = w.samplers[sym.Name]
	}
	if b == nil {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "%s on a sampler that is not a uniform variable", n.Op)
	}
	w.Print(name + "(" + b.texture + ", " + b.sampler)
	for _, a := range n.Args[1:] {
		w.Print(", ")
		if err := w.Expr(a); err != nil {
			return err
		}
	}
	w.Print(")")
	return nil
}

func (w *writer) addSampler(sym *ir.Symbol) error {
	typ := sym.Type()
	reg := w.nextSampler
	if typ.Layout.Binding >= 0 {
		reg = typ.Layout.Binding
	}
	if !w.options.ShaderModel.SeparateSamplers() {
		w.samplerList = append(w.samplerList, &samplerBinding{sym: sym, register: reg})
		w.nextSampler = max(w.nextSampler, reg+typ.ArrayElements())
		return nil
	}
	if typ.IsArray() {
		return emit.NewErrorAt("hlsl", emit.ErrUnsupportedFeature, sym, "sampler array %s requires shader model 3.0", sym.Name)
	}
	name := w.names.name(sym.Name)
	b := &samplerBinding{
		sym:      sym,
		texture:  w.names.call("textures_" + name),
		sampler:  w.names.call("samplers_" + name),
		register: reg,
	}
	w.samplers[sym.Name] = b
	w.samplerList = append(w.samplerList, b)
	w.nextSampler = max(w.nextSampler, reg+1)
	return nil
}

// writeSamplers declares the sampler uniforms.
func (w *writer) writeSamplers() error {
	for _, b := range w.samplerList {
		typ := b.sym.Type()
		if !w.options.ShaderModel.SeparateSamplers() {
			tn, err := typeName(typ, w.options.ShaderModel)
			if err != nil {
				return err
			}
			w.Line("uniform %s %s%s : register(s%d);", tn, w.names.name(b.sym.Name), typ.ArraySuffix(), b.register)
			continue
		}
		w.Line("%s %s : register(t%d);", textureObjectType(typ.Basic), b.texture, b.register)
		w.Line("%s %s : register(s%d);", samplerStateType(typ.Basic), b.sampler, b.register)
	}
	if len(w.samplerList) > 0 {
		w.Line("")
	}
	return nil
}

func (w *writer) writeTextureHelpers() {
	for _, text := range w.helpers {
		w.Print(text)
		w.Line("")
	}
}
