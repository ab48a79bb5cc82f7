package msl

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// samplerBinding is a GLSL sampler uniform split into a Metal texture and
// sampler, both bound at slot.
type samplerBinding struct {
	sym     *ir.Symbol
	texture string
	sampler string
	slot    int
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

// textureType is the Metal texture behind a GLSL sampler type.
func textureType(b ir.BasicType) string {
	switch b {
	case ir.TypeSamplerCube:
		return "texturecube<float>"
	case ir.TypeSampler3D:
		return "texture3d<float>"
	case ir.TypeSampler2DArray:
		return "texture2d_array<float>"
	case ir.TypeSampler2DShadow:
		return "depth2d<float>"
	}
	return "texture2d<float>"
}

func (w *writer) addSampler(sym *ir.Symbol) error {
	typ := sym.Type()
	if typ.IsArray() {
		return emit.NewErrorAt("msl", emit.ErrUnsupportedFeature, sym, "sampler array %s", sym.Name)
	}
	slot := w.nextSlot
	if typ.Layout.Binding >= 0 {
		slot = typ.Layout.Binding
	}
	name := w.names.name(sym.Name)
	b := &samplerBinding{
		sym:     sym,
		texture: w.names.call("textures_" + name),
		sampler: w.names.call("samplers_" + name),
		slot:    slot,
	}
	w.samplers[sym.ID] = b
	w.samplerList = append(w.samplerList, b)
	w.nextSlot = max(w.nextSlot, slot+1)
	return nil
}

// addTextureHelper records the helper a texture call needs. Helpers are
// kept in first-use order and each distinct overload is written once.
func (w *writer) addTextureHelper(n *ir.Aggregate) error {
	text, err := w.textureHelperText(n)
	if err != nil {
		return err
	}
	if !w.helperSeen[text] {
		w.helperSeen[text] = true
		w.helpers = append(w.helpers, text)
	}
	return nil
}

func (w *writer) textureHelperText(n *ir.Aggregate) (string, error) {
	sampler := n.Args[0].Type()
	ret, err := typeName(n.Type())
	if err != nil {
		return "", err
	}
	params := []string{textureType(sampler.Basic) + " t", "sampler s"}

	kind := textureKindOf(n.Op)
	argNames := []string{"p", "b"}
	switch kind {
	case lodTexture, fetchTexture:
		argNames[1] = "lod"
	case sizeTexture:
		argNames = []string{"lod"}
	}
	for i, a := range n.Args[1:] {
		tn, err := typeName(a.Type())
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
	body, err := s.body()
	if err != nil {
		return "", emit.NewErrorAt("msl", emit.ErrUnsupportedFeature, n, "%s %s", n.Op, err)
	}
	return fmt.Sprintf("%s %s(%s)\n{\n    return %s;\n}\n", ret, textureHelperName(n.Op), strings.Join(params, ", "), body), nil
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

// coordinates returns the sample arguments that come from p: the
// coordinate, then the array index or depth reference if any.
func (s textureSignature) coordinates() []string {
	if s.kind == projTexture {
		w := "p.w"
		if s.size == 3 {
			w = "p.z"
		}
		if s.sampler == ir.TypeSampler3D {
			return []string{"p.xyz / " + w}
		}
		return []string{"p.xy / " + w}
	}
	switch s.sampler {
	case ir.TypeSampler2DArray:
		return []string{"p.xy", "uint(round(p.z))"}
	case ir.TypeSampler2DShadow:
		return []string{"p.xy", "p.z"}
	}
	return []string{"p"}
}

// options returns the level of detail argument of a sample call, if any.
func (s textureSignature) options() string {
	switch {
	case s.kind == lodTexture:
		return "level(lod)"
	case s.extra && s.implicit:
		return "bias(b)"
	case !s.implicit:
		return "level(0.0)"
	}
	return ""
}

func (s textureSignature) body() (string, error) {
	switch s.kind {
	case sizeTexture:
		return s.sizeBody(), nil
	case fetchTexture:
		switch s.sampler {
		case ir.TypeSampler3D:
			return "t.read(uint3(p), uint(lod))", nil
		case ir.TypeSampler2DArray:
			return "t.read(uint2(p.xy), uint(p.z), uint(lod))", nil
		}
		return "t.read(uint2(p), uint(lod))", nil
	}

	args := append([]string{"s"}, s.coordinates()...)
	method := "sample"
	if s.sampler == ir.TypeSampler2DShadow {
		method = "sample_compare"
		if s.extra && s.implicit && s.kind != lodTexture {
			return "", fmt.Errorf("with a bias on a shadow sampler")
		}
	}
	if opt := s.options(); opt != "" {
		args = append(args, opt)
	}
	return fmt.Sprintf("t.%s(%s)", method, strings.Join(args, ", ")), nil
}

func (s textureSignature) sizeBody() string {
	dims := []string{"t.get_width(uint(lod))", "t.get_height(uint(lod))"}
	switch s.sampler {
	case ir.TypeSampler3D:
		dims = append(dims, "t.get_depth(uint(lod))")
	case ir.TypeSampler2DArray:
		dims = append(dims, "t.get_array_size()")
	}
	return fmt.Sprintf("int%d(%s)", len(dims), strings.Join(dims, ", "))
}

// writeTextureCall writes a call to the helper of n, passing the texture
// and sampler of the GLSL sampler uniform.
func (w *writer) writeTextureCall(n *ir.Aggregate) error {
	var b *samplerBinding
	if sym, ok := n.Args[0].(*ir.Symbol); ok {
		b = w.samplers[sym.ID]
	}
	if b == nil {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "%s on a sampler that is not a uniform variable", n.Op)
	}
	w.Print(textureHelperName(n.Op) + "(" + b.texture + ", " + b.sampler)
	for _, a := range n.Args[1:] {
		w.Print(", ")
		if err := w.Expr(a); err != nil {
			return err
		}
	}
	w.Print(")")
	return nil
}

func (w *writer) writeTextureHelpers() {
	for _, text := range w.helpers {
		w.Print(text)
		w.Line("")
	}
}
