// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// generatedNames are identifiers the emitter writes itself. User names
// that collide with them are renamed.
var generatedNames = []string{
	"main", "input", "output",
	"VS_INPUT", "VS_OUTPUT", "PS_INPUT", "PS_OUTPUT", "CS_INPUT",
	"Uniforms",
	"mod_emu", "atan_emu", "reflect_emu", "refract_emu",
}

// entryName is the name of the translated GLSL main function. The HLSL
// entry point "main" wraps it.
const entryName = "gl_main"

// builtinNames are the static variables that stand in for GLSL built-in
// variables.
var builtinNames = map[ir.Qualifier]string{
	ir.QualPosition:             "gl_Position",
	ir.QualPointSize:            "gl_PointSize",
	ir.QualVertexID:             "gl_VertexID",
	ir.QualInstanceID:           "gl_InstanceID",
	ir.QualDrawID:               "gl_DrawID",
	ir.QualFragCoord:            "gl_FragCoord",
	ir.QualFrontFacing:          "gl_FrontFacing",
	ir.QualPointCoord:           "gl_PointCoord",
	ir.QualFragColor:            "gl_FragColor",
	ir.QualFragData:             "gl_FragData",
	ir.QualFragDepth:            "gl_FragDepth",
	ir.QualGlobalInvocationID:   "gl_GlobalInvocationID",
	ir.QualLocalInvocationID:    "gl_LocalInvocationID",
	ir.QualWorkGroupID:          "gl_WorkGroupID",
	ir.QualNumWorkGroups:        "gl_NumWorkGroups",
	ir.QualLocalInvocationIndex: "gl_LocalInvocationIndex",
}

// intrinsicNames lists the built-ins HLSL spells differently. Built-ins
// not listed here and not handled by WriteAggregate keep their GLSL name.
var intrinsicNames = map[ir.Operator]string{
	ir.OpInversesqrt: "rsqrt",
	ir.OpFract:       "frac",
	ir.OpMix:         "lerp",
	ir.OpDFdx:        "ddx",
	ir.OpDFdy:        "ddy",
}

var componentWiseOps = map[ir.Operator]string{
	ir.OpLessThanComponentWise:         "<",
	ir.OpLessThanEqualComponentWise:    "<=",
	ir.OpGreaterThanComponentWise:      ">",
	ir.OpGreaterThanEqualComponentWise: ">=",
	ir.OpEqualComponentWise:            "==",
	ir.OpNotEqualComponentWise:         "!=",
	ir.OpMatrixCompMult:                "*",
}

const swizzleLetters = "xyzw"

type dialect struct {
	emit.BaseDialect
	w *writer
}

func (d *dialect) Name() string { return "hlsl" }

func (d *dialect) TypeName(typ ir.Type) (string, error) {
	return typeName(typ, d.w.options.ShaderModel)
}

// typeName spells typ without array dimensions. GLSL matCxR is stored
// column by column, so it becomes floatCxR: C rows of R components.
func typeName(typ ir.Type, sm ShaderModel) (string, error) {
	if typ.Basic.IsSampler() {
		if sm.SeparateSamplers() {
			return "", emit.NewError("hlsl", emit.ErrUnsupportedType,
				"%s parameters require shader model 3.0", typ.Basic)
		}
		switch typ.Basic {
		case ir.TypeSampler2D, ir.TypeSamplerExternalOES:
			return "sampler2D", nil
		case ir.TypeSamplerCube:
			return "samplerCUBE", nil
		case ir.TypeSampler3D:
			return "sampler3D", nil
		}
		return "", emit.NewError("hlsl", emit.ErrUnsupportedType, "%s requires shader model 4.0", typ.Basic)
	}
	if typ.Basic == ir.TypeUInt && !sm.SupportsSystemValues() {
		return "", emit.NewError("hlsl", emit.ErrUnsupportedType, "uint requires shader model 4.0")
	}
	scalar := typ.Basic.String()
	switch {
	case typ.IsMatrix():
		return fmt.Sprintf("%s%dx%d", scalar, typ.Cols(), typ.Rows()), nil
	case typ.IsVector():
		return fmt.Sprintf("%s%d", scalar, typ.PrimarySize), nil
	}
	return scalar, nil
}

func (d *dialect) Identifier(sym *ir.Symbol) string {
	if sym.ID.IsBuiltin() {
		if name, ok := builtinNames[sym.Type().Qualifier]; ok {
			return name
		}
		return sym.Name
	}
	return d.w.names.name(sym.Name)
}

func (d *dialect) FunctionName(name string) string {
	if name == "main" {
		return entryName
	}
	return d.w.names.name(name)
}

func (d *dialect) Qualifiers(typ ir.Type) string {
	switch typ.Qualifier {
	case ir.QualConst:
		return "static const "
	case ir.QualGlobal:
		return "static "
	case ir.QualShared:
		return "groupshared "
	case ir.QualParamOut:
		return "out "
	case ir.QualParamInOut:
		return "inout "
	}
	return ""
}

// WriteConstant writes arrays as initializer lists.
func (d *dialect) WriteConstant(w *emit.Writer, n *ir.ConstantUnion) error {
	return writeConstantValues(w, n, n.Type(), n.Values)
}

func writeConstantValues(w *emit.Writer, n ir.Node, typ ir.Type, values []ir.Constant) error {
	if !typ.IsArray() {
		return emit.WriteConstantValues(w, n, typ, values)
	}
	elem := typ.ElementType()
	per := elem.ComponentCount() * elem.ArrayElements()
	w.Print("{")
	for i := 0; i < int(typ.ArraySizes[0]); i++ {
		if i > 0 {
			w.Print(", ")
		}
		if (i+1)*per > len(values) {
			return w.Errorf(n, emit.ErrInvalidUnit, "constant of type %s has %d values", typ, len(values))
		}
		if err := writeConstantValues(w, n, elem, values[i*per:(i+1)*per]); err != nil {
			return err
		}
	}
	w.Print("}")
	return nil
}

func (d *dialect) WriteBinary(w *emit.Writer, n *ir.Binary) error {
	l, r := n.Left.Type(), n.Right.Type()
	switch n.Op {
	case ir.OpMul:
		if isMatrixProduct(l, r) {
			return writeMul(w, n.Left, n.Right)
		}
	case ir.OpMulAssign:
		if isMatrixProduct(l, r) {
			if !isSimple(n.Left) {
				return w.Errorf(n, emit.ErrUnsupportedFeature, "*= with a matrix operand needs a variable on the left")
			}
			product := ir.NewBinary(ir.OpMul, n.Left, n.Right, l)
			return w.Infix(n, n.Left, "=", product)
		}
	case ir.OpEqual, ir.OpNotEqual:
		if l.IsArray() {
			return w.Errorf(n, emit.ErrUnsupportedFeature, "array comparison")
		}
		if !l.IsScalar() {
			reduce := "all"
			if n.Op == ir.OpNotEqual {
				reduce = "any"
			}
			w.Print(reduce + "(")
			if err := w.Infix(n, n.Left, n.Op.String(), n.Right); err != nil {
				return err
			}
			w.Print(")")
			return nil
		}
	case ir.OpLogicalXor:
		return w.Infix(n, n.Left, "!=", n.Right)
	}
	return w.Binary(n)
}

// isMatrixProduct reports whether a GLSL product of l and r is a linear
// algebra product rather than a component-wise one.
func isMatrixProduct(l, r ir.Type) bool {
	return !l.IsScalar() && !r.IsScalar() && (l.IsMatrix() || r.IsMatrix())
}

// writeMul writes the GLSL product a * b. HLSL matrices are the
// transposes of the GLSL ones, so the operands swap.
func writeMul(w *emit.Writer, a, b ir.Typed) error {
	w.Print("mul(")
	if err := w.Expr(b); err != nil {
		return err
	}
	w.Print(", ")
	if err := w.Expr(a); err != nil {
		return err
	}
	w.Print(")")
	return nil
}

// isSimple reports whether writing n twice evaluates it twice without
// side effects or noticeable cost.
func isSimple(n ir.Typed) bool {
	switch n := n.(type) {
	case *ir.Symbol, *ir.ConstantUnion:
		return true
	case *ir.Swizzle:
		return isSimple(n.Operand)
	case *ir.Binary:
		return n.Op == ir.OpIndexDirect && isSimple(n.Left) && isSimple(n.Right)
	}
	return false
}

func (d *dialect) WriteAggregate(w *emit.Writer, n *ir.Aggregate) error {
	switch {
	case n.Op == ir.OpConstruct:
		return d.writeConstructor(w, n)
	case n.Op.IsTexture():
		return d.w.writeTextureCall(n)
	case !n.Op.IsBuiltinFunction():
		return d.BaseDialect.WriteAggregate(w, n)
	}

	if name, ok := intrinsicNames[n.Op]; ok {
		if n.Op == ir.OpMix && n.Args[2].Type().Basic == ir.TypeBool {
			return writeSelect(w, n)
		}
		return w.Call(name, n.Args)
	}
	if op, ok := componentWiseOps[n.Op]; ok {
		return w.Infix(n, n.Args[0], op, n.Args[1])
	}

	switch n.Op {
	case ir.OpNotComponentWise:
		w.Print("(!")
		if err := w.Expr(n.Args[0]); err != nil {
			return err
		}
		w.Print(")")
		return nil
	case ir.OpAtan:
		if len(n.Args) == 2 {
			return w.Call("atan2", n.Args)
		}
	case ir.OpMod:
		return writeMod(w, n)
	case ir.OpBarrier:
		w.Print("GroupMemoryBarrierWithGroupSync()")
		return nil
	case ir.OpMemoryBarrierShared:
		w.Print("GroupMemoryBarrier()")
		return nil
	case ir.OpOuterProduct, ir.OpInverse:
		return w.Errorf(n, emit.ErrUnsupportedFeature, "%s has no HLSL intrinsic", n.Op)
	}
	return w.Call(n.Op.String(), n.Args)
}

// writeSelect writes mix(x, y, b) with a boolean selector, which picks
// y where b is true.
func writeSelect(w *emit.Writer, n *ir.Aggregate) error {
	w.Print("(")
	if err := w.Expr(n.Args[2]); err != nil {
		return err
	}
	w.Print(" ? ")
	if err := w.Expr(n.Args[1]); err != nil {
		return err
	}
	w.Print(" : ")
	if err := w.Expr(n.Args[0]); err != nil {
		return err
	}
	w.Print(")")
	return nil
}

// writeMod inlines GLSL mod. fmod truncates toward zero, so it cannot be
// used; the emulated helper is preferred and this is the fallback.
func writeMod(w *emit.Writer, n *ir.Aggregate) error {
	x, y := n.Args[0], n.Args[1]
	if !isSimple(x) || !isSimple(y) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "mod requires built-in function emulation")
	}
	w.Print("(")
	if err := w.Expr(x); err != nil {
		return err
	}
	w.Print(" - ")
	if err := w.Expr(y); err != nil {
		return err
	}
	w.Print(" * floor(")
	if err := w.Expr(x); err != nil {
		return err
	}
	w.Print(" / ")
	if err := w.Expr(y); err != nil {
		return err
	}
	w.Print("))")
	return nil
}

func (d *dialect) writeConstructor(w *emit.Writer, n *ir.Aggregate) error {
	typ := n.Type()
	if typ.IsArray() {
		w.Print("{")
		if err := w.Args(n.Args); err != nil {
			return err
		}
		w.Print("}")
		return nil
	}
	name, err := d.TypeName(typ)
	if err != nil {
		return err
	}
	switch {
	case typ.IsScalar():
		arg := n.Args[0]
		if arg.Type().IsScalar() {
			return w.Call(name, n.Args)
		}
		w.Print(name + "(")
		if err := writeComponent(w, arg, 0); err != nil {
			return err
		}
		w.Print(")")
		return nil
	case typ.IsMatrix():
		return d.writeMatrixConstructor(w, n, name)
	}
	return writeVectorConstructor(w, n, name)
}

// writeComponent writes component i of arg, counting column by column.
func writeComponent(w *emit.Writer, arg ir.Typed, i int) error {
	typ := arg.Type()
	if err := w.Expr(arg); err != nil {
		return err
	}
	switch {
	case typ.IsMatrix():
		rows := int(typ.Rows())
		w.Printf("[%d][%d]", i/rows, i%rows)
	case typ.IsVector():
		w.Print("." + swizzleLetters[i:i+1])
	}
	return nil
}

func writeVectorConstructor(w *emit.Writer, n *ir.Aggregate, name string) error {
	want := n.Type().ComponentCount()
	if len(n.Args) == 1 {
		arg := n.Args[0]
		at := arg.Type()
		switch {
		case at.IsScalar(), at.IsVector() && at.ComponentCount() > want:
			// A cast splats a scalar and truncates a vector.
			w.Print("((" + name + ")")
			if err := w.Expr(arg); err != nil {
				return err
			}
			w.Print(")")
			return nil
		case at.IsMatrix():
			if !isSimple(arg) {
				return w.Errorf(n, emit.ErrUnsupportedFeature, "vector constructed from a matrix expression")
			}
			w.Print(name + "(")
			for i := 0; i < want; i++ {
				if i > 0 {
					w.Print(", ")
				}
				if err := writeComponent(w, arg, i); err != nil {
					return err
				}
			}
			w.Print(")")
			return nil
		}
	}
	return writeComponentList(w, n, name, want)
}

// writeComponentList writes name(args) where the last argument may hold
// more components than are left to fill.
func writeComponentList(w *emit.Writer, n *ir.Aggregate, name string, want int) error {
	w.Print(name + "(")
	have := 0
	for i, arg := range n.Args {
		if i > 0 {
			w.Print(", ")
		}
		at := arg.Type()
		if at.IsMatrix() {
			return w.Errorf(n, emit.ErrUnsupportedFeature, "matrix argument in a constructor with several arguments")
		}
		if err := w.Expr(arg); err != nil {
			return err
		}
		c := at.ComponentCount()
		if k := want - have; c > k {
			w.Print("." + swizzleLetters[:k])
		}
		have += c
	}
	w.Print(")")
	return nil
}

func (d *dialect) writeMatrixConstructor(w *emit.Writer, n *ir.Aggregate, name string) error {
	typ := n.Type()
	cols, rows := int(typ.Cols()), int(typ.Rows())
	if len(n.Args) != 1 {
		return writeComponentList(w, n, name, cols*rows)
	}

	arg := n.Args[0]
	at := arg.Type()
	if at.IsMatrix() && at.Cols() == typ.Cols() && at.Rows() == typ.Rows() {
		return w.Call(name, n.Args)
	}
	if !at.IsScalar() && !at.IsMatrix() {
		return writeComponentList(w, n, name, cols*rows)
	}
	if !isSimple(arg) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "matrix constructed from a non-trivial expression")
	}

	zero, one := d.Literal(ir.FloatConst(0)), d.Literal(ir.FloatConst(1))
	w.Print(name + "(")
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			if c > 0 || r > 0 {
				w.Print(", ")
			}
			switch {
			case at.IsScalar() && c == r:
				if err := w.Expr(arg); err != nil {
					return err
				}
			case at.IsMatrix() && c < int(at.Cols()) && r < int(at.Rows()):
				if err := w.Expr(arg); err != nil {
					return err
				}
				w.Printf("[%d][%d]", c, r)
			case at.IsMatrix() && c == r:
				w.Print(one)
			default:
				w.Print(zero)
			}
		}
	}
	w.Print(")")
	return nil
}

func (d *dialect) WritePrototype(w *emit.Writer, p *ir.FunctionPrototype) error {
	if p.Return.IsArray() {
		return w.Errorf(p, emit.ErrUnsupportedFeature, "function %s returns an array", p.Name)
	}
	return d.BaseDialect.WritePrototype(w, p)
}

// WriteInvariant writes nothing: HLSL has no invariance control.
func (d *dialect) WriteInvariant(*emit.Writer, *ir.Declaration) error { return nil }
