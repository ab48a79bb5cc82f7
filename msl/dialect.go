package msl

import (
	"fmt"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/ir"
)

// generatedNames are identifiers the emitter writes itself. User names
// that collide with them are renamed.
var generatedNames = []string{
	"main0", "main0_in", "main0_out", "in", "out", "g", "u",
	"Globals", "Uniforms", entryName,
	"mod_emu", "atan_emu", "reflect_emu", "refract_emu",
}

// entryName is the name of the translated GLSL main function, which the
// stage function main0 calls.
const entryName = "gl_main"

// builtinNames are the Globals members that stand in for GLSL built-in
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

// functionNames lists the built-ins Metal spells differently.
var functionNames = map[ir.Operator]string{
	ir.OpInversesqrt: "rsqrt",
	ir.OpDFdx:        "dfdx",
	ir.OpDFdy:        "dfdy",
}

// broadcastOps take a mix of vector and scalar arguments in GLSL but
// only arguments of one type in Metal.
var broadcastOps = map[ir.Operator]bool{
	ir.OpMin:        true,
	ir.OpMax:        true,
	ir.OpClamp:      true,
	ir.OpMix:        true,
	ir.OpStep:       true,
	ir.OpSmoothstep: true,
	ir.OpMod:        true,
}

var componentWiseOps = map[ir.Operator]string{
	ir.OpLessThanComponentWise:         "<",
	ir.OpLessThanEqualComponentWise:    "<=",
	ir.OpGreaterThanComponentWise:      ">",
	ir.OpGreaterThanEqualComponentWise: ">=",
	ir.OpEqualComponentWise:            "==",
	ir.OpNotEqualComponentWise:         "!=",
}

const swizzleLetters = "xyzw"

type dialect struct {
	emit.BaseDialect
	w *writer
}

func (d *dialect) Name() string { return "msl" }

func (d *dialect) TypeName(typ ir.Type) (string, error) {
	return typeName(typ)
}

// typeName spells typ. Arrays become array<T, N> so that they can be
// copied, passed and returned by value like in GLSL.
func typeName(typ ir.Type) (string, error) {
	if typ.Basic.IsSampler() {
		return "", emit.NewError("msl", emit.ErrUnsupportedType, "%s outside a uniform declaration", typ.Basic)
	}
	name := typ.Basic.String()
	switch {
	case typ.IsMatrix():
		name = fmt.Sprintf("float%dx%d", typ.Cols(), typ.Rows())
	case typ.IsVector():
		name = fmt.Sprintf("%s%d", name, typ.PrimarySize)
	}
	for i := len(typ.ArraySizes) - 1; i >= 0; i-- {
		name = fmt.Sprintf("array<%s, %d>", name, typ.ArraySizes[i])
	}
	return name, nil
}

// ArraySuffix is empty: the array dimensions are part of the type name.
func (d *dialect) ArraySuffix(ir.Type) string { return "" }

func (d *dialect) Identifier(sym *ir.Symbol) string {
	return d.w.reference(sym)
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
		if d.w.atRoot {
			return "constant "
		}
		return "const "
	case ir.QualParamConst:
		return "const "
	}
	return ""
}

func (d *dialect) Discard() string { return "discard_fragment()" }

func (d *dialect) WriteConstant(w *emit.Writer, n *ir.ConstantUnion) error {
	return writeConstantValues(w, n, n.Type(), n.Values)
}

// writeConstantValues writes arrays as "array<T, N>{...}".
func writeConstantValues(w *emit.Writer, n ir.Node, typ ir.Type, values []ir.Constant) error {
	if !typ.IsArray() {
		return emit.WriteConstantValues(w, n, typ, values)
	}
	name, err := typeName(typ)
	if err != nil {
		return err
	}
	elem := typ.ElementType()
	per := elem.ComponentCount() * elem.ArrayElements()
	w.Print(name + "{")
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
	l := n.Left.Type()
	switch n.Op {
	case ir.OpEqual, ir.OpNotEqual:
		switch {
		case l.IsArray():
			return w.Errorf(n, emit.ErrUnsupportedFeature, "array comparison")
		case l.IsMatrix():
			return w.Errorf(n, emit.ErrUnsupportedFeature, "matrix comparison")
		case l.IsVector():
			// Metal compares vectors component-wise.
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
	case n.Op == ir.OpCallFunctionInAST:
		return d.w.writeUserCall(n)
	case !n.Op.IsBuiltinFunction():
		return d.BaseDialect.WriteAggregate(w, n)
	}

	if name, ok := functionNames[n.Op]; ok {
		return w.Call(name, n.Args)
	}
	if op, ok := componentWiseOps[n.Op]; ok {
		return w.Infix(n, n.Args[0], op, n.Args[1])
	}
	if broadcastOps[n.Op] {
		if n.Op == ir.OpMix && n.Args[2].Type().Basic == ir.TypeBool {
			return w.Call("select", n.Args)
		}
		if n.Op == ir.OpMod {
			return writeMod(w, n)
		}
		return writeBroadcastCall(w, n, n.Op.String())
	}

	scalar := len(n.Args) > 0 && n.Args[0].Type().IsScalar()
	switch n.Op {
	case ir.OpRadians:
		return writeScaled(w, n.Args[0], "0.017453292")
	case ir.OpDegrees:
		return writeScaled(w, n.Args[0], "57.29578")
	case ir.OpAtan:
		if len(n.Args) == 2 {
			return w.Call("atan2", n.Args)
		}
	case ir.OpLength:
		if scalar {
			return w.Call("abs", n.Args)
		}
	case ir.OpDistance:
		if scalar {
			w.Print("abs(")
			if err := w.Infix(n, n.Args[0], "-", n.Args[1]); err != nil {
				return err
			}
			w.Print(")")
			return nil
		}
	case ir.OpDot:
		if scalar {
			return w.Infix(n, n.Args[0], "*", n.Args[1])
		}
	case ir.OpNormalize:
		if scalar {
			return w.Call("sign", n.Args)
		}
	case ir.OpReflect, ir.OpRefract, ir.OpFaceforward:
		if scalar {
			return w.Errorf(n, emit.ErrUnsupportedFeature, "scalar %s requires built-in function emulation", n.Op)
		}
	case ir.OpNotComponentWise:
		w.Print("(!")
		if err := w.Expr(n.Args[0]); err != nil {
			return err
		}
		w.Print(")")
		return nil
	case ir.OpMatrixCompMult:
		return d.writeMatrixCompMult(w, n)
	case ir.OpOuterProduct:
		return d.writeOuterProduct(w, n)
	case ir.OpInverse:
		return w.Errorf(n, emit.ErrUnsupportedFeature, "inverse has no Metal function")
	case ir.OpBarrier, ir.OpMemoryBarrierShared:
		w.Print("threadgroup_barrier(mem_flags::mem_threadgroup)")
		return nil
	}
	return w.Call(n.Op.String(), n.Args)
}

// writeScaled writes "(x * factor)".
func writeScaled(w *emit.Writer, x ir.Typed, factor string) error {
	w.Print("(")
	if err := w.Expr(x); err != nil {
		return err
	}
	w.Print(" * " + factor + ")")
	return nil
}

// writeBroadcastCall writes name(args) with scalar arguments of a vector
// call converted to the vector type.
func writeBroadcastCall(w *emit.Writer, n *ir.Aggregate, name string) error {
	typ := n.Type()
	vec, err := typeName(typ)
	if err != nil {
		return err
	}
	w.Print(name + "(")
	for i, a := range n.Args {
		if i > 0 {
			w.Print(", ")
		}
		if typ.IsVector() && a.Type().IsScalar() {
			if err := w.Call(vec, []ir.Typed{a}); err != nil {
				return err
			}
			continue
		}
		if err := w.Expr(a); err != nil {
			return err
		}
	}
	w.Print(")")
	return nil
}

// writeMod inlines GLSL mod. Metal fmod truncates toward zero, so it
// cannot be used; the emulated helper is preferred and this is the
// fallback.
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

// writeMatrixCompMult writes the component-wise product column by
// column, since Metal's * on matrices is the linear algebra product.
func (d *dialect) writeMatrixCompMult(w *emit.Writer, n *ir.Aggregate) error {
	a, b := n.Args[0], n.Args[1]
	if !isSimple(a) || !isSimple(b) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "matrixCompMult of a non-trivial expression")
	}
	name, err := typeName(n.Type())
	if err != nil {
		return err
	}
	w.Print(name + "(")
	for c := 0; c < int(n.Type().Cols()); c++ {
		if c > 0 {
			w.Print(", ")
		}
		if err := w.Expr(a); err != nil {
			return err
		}
		w.Printf("[%d] * ", c)
		if err := w.Expr(b); err != nil {
			return err
		}
		w.Printf("[%d]", c)
	}
	w.Print(")")
	return nil
}

// writeOuterProduct writes outerProduct(c, r) as the matrix whose column
// i is c * r[i].
func (d *dialect) writeOuterProduct(w *emit.Writer, n *ir.Aggregate) error {
	c, r := n.Args[0], n.Args[1]
	if !isSimple(c) || !isSimple(r) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "outerProduct of a non-trivial expression")
	}
	name, err := typeName(n.Type())
	if err != nil {
		return err
	}
	w.Print(name + "(")
	for i := 0; i < int(n.Type().Cols()); i++ {
		if i > 0 {
			w.Print(", ")
		}
		if err := w.Expr(c); err != nil {
			return err
		}
		w.Print(" * ")
		if err := w.Expr(r); err != nil {
			return err
		}
		w.Print("." + swizzleLetters[i:i+1])
	}
	w.Print(")")
	return nil
}

func (d *dialect) writeConstructor(w *emit.Writer, n *ir.Aggregate) error {
	typ := n.Type()
	name, err := typeName(typ)
	if err != nil {
		return err
	}
	switch {
	case typ.IsArray():
		w.Print(name + "{")
		if err := w.Args(n.Args); err != nil {
			return err
		}
		w.Print("}")
		return nil
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
		return writeMatrixConstructor(w, n, name)
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

// writeComponents writes every component of arg separated by commas.
// arg is written once per component, so it must be simple.
func writeComponents(w *emit.Writer, n ir.Node, arg ir.Typed, count int) error {
	if count > 1 && !isSimple(arg) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "constructor argument must be a variable")
	}
	for i := 0; i < count; i++ {
		if i > 0 {
			w.Print(", ")
		}
		if err := writeComponent(w, arg, i); err != nil {
			return err
		}
	}
	return nil
}

func writeVectorConstructor(w *emit.Writer, n *ir.Aggregate, name string) error {
	want := n.Type().ComponentCount()
	if len(n.Args) == 1 {
		arg := n.Args[0]
		at := arg.Type()
		switch {
		case at.IsVector() && at.ComponentCount() > want:
			w.Print(name + "(")
			if err := w.Expr(arg); err != nil {
				return err
			}
			w.Print("." + swizzleLetters[:want] + ")")
			return nil
		case at.IsMatrix():
			w.Print(name + "(")
			if err := writeComponents(w, n, arg, want); err != nil {
				return err
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

// writeMatrixConstructor writes a matrix constructor. Metal builds
// matrices from one matrix of the same size, from columns, or from
// scalars; everything else is spelled out component by component.
func writeMatrixConstructor(w *emit.Writer, n *ir.Aggregate, name string) error {
	typ := n.Type()
	cols, rows := int(typ.Cols()), int(typ.Rows())

	if len(n.Args) == 1 {
		arg := n.Args[0]
		at := arg.Type()
		if at.IsMatrix() && at.Cols() == typ.Cols() && at.Rows() == typ.Rows() {
			return w.Call(name, n.Args)
		}
		if at.IsScalar() || at.IsMatrix() {
			return writeMatrixResize(w, n, name, arg)
		}
	}

	columns, scalars := true, true
	for _, a := range n.Args {
		at := a.Type()
		columns = columns && at.IsVector() && int(at.PrimarySize) == rows
		scalars = scalars && at.IsScalar()
	}
	if columns || scalars {
		return w.Call(name, n.Args)
	}

	w.Print(name + "(")
	have := 0
	for i, a := range n.Args {
		if i > 0 {
			w.Print(", ")
		}
		count := min(a.Type().ComponentCount(), cols*rows-have)
		if err := writeComponents(w, n, a, count); err != nil {
			return err
		}
		have += count
	}
	w.Print(")")
	return nil
}

// writeMatrixResize writes a matrix built from a scalar, which fills the
// diagonal, or from a matrix of another size, which fills the top left
// corner of an identity matrix.
func writeMatrixResize(w *emit.Writer, n *ir.Aggregate, name string, arg ir.Typed) error {
	typ, at := n.Type(), arg.Type()
	if !isSimple(arg) {
		return w.Errorf(n, emit.ErrUnsupportedFeature, "matrix constructed from a non-trivial expression")
	}
	d := w.Dialect()
	zero, one := d.Literal(ir.FloatConst(0)), d.Literal(ir.FloatConst(1))
	w.Print(name + "(")
	for c := 0; c < int(typ.Cols()); c++ {
		for r := 0; r < int(typ.Rows()); r++ {
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

// WritePrototype writes the GLSL parameters followed by the parameters
// that carry the shader's global state.
func (d *dialect) WritePrototype(w *emit.Writer, p *ir.FunctionPrototype) error {
	ret, err := typeName(p.Return)
	if err != nil {
		return err
	}
	w.Print(ret + " " + d.FunctionName(p.Name) + "(")
	for i, param := range p.Params {
		if i > 0 {
			w.Print(", ")
		}
		if err := d.writeParam(w, param); err != nil {
			return err
		}
	}
	for i, c := range d.w.context {
		if i > 0 || len(p.Params) > 0 {
			w.Print(", ")
		}
		w.Print(c.param)
	}
	w.Print(")")
	return nil
}

// writeParam passes out and inout parameters by thread reference.
func (d *dialect) writeParam(w *emit.Writer, param *ir.Symbol) error {
	typ := param.Type()
	name, err := typeName(typ)
	if err != nil {
		return err
	}
	switch typ.Qualifier {
	case ir.QualParamOut, ir.QualParamInOut:
		w.Print("thread " + name + "&")
	default:
		w.Print(d.Qualifiers(typ) + name)
	}
	if param.Name != "" {
		w.Print(" " + d.Identifier(param))
	}
	return nil
}

// WriteInvariant writes nothing. Invariance of gl_Position is carried by
// the [[invariant]] attribute of the stage output.
func (d *dialect) WriteInvariant(*emit.Writer, *ir.Declaration) error { return nil }
