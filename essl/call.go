package essl

import (
	"fortio.org/safecast"

	"github.com/gogpu/translator/ir"
)

// constructor type-checks a constructor call such as vec4(v.xy, 0.0, 1.0).
func (p *Parser) constructor(tok Token, typ ir.Type, args []ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	name := tok.Lexeme

	if typ.Basic == ir.TypeVoid || typ.Basic.IsSampler() {
		c.errorf(pos, "'%s' : cannot construct this type", name)
		return c.placeholder(pos)
	}
	if len(args) == 0 {
		c.errorf(pos, "'%s' : constructor does not have any arguments", name)
		return c.placeholder(pos)
	}

	precision := ir.PrecisionUndefined
	total := 0
	for i, arg := range args {
		at := arg.Type()
		if at.IsArray() || at.Basic.IsSampler() || at.Basic == ir.TypeVoid {
			c.errorf(pos, "'%s' : cannot construct from an argument of type %s", name, at)
			return c.placeholder(pos)
		}
		if at.IsMatrix() && typ.IsMatrix() && len(args) > 1 {
			c.errorf(pos, "'%s' : constructing matrix from matrix can only take one argument", name)
			return c.placeholder(pos)
		}
		// Every argument must contribute at least one component.
		if total >= typ.ComponentCount() && i > 0 {
			c.errorf(pos, "'%s' : too many arguments", name)
			return c.placeholder(pos)
		}
		total += at.ComponentCount()
		precision = ir.HigherPrecision(precision, at.Precision)
	}

	single := len(args) == 1 && (args[0].Type().IsScalar() || args[0].Type().IsMatrix() && typ.IsMatrix())
	if !single && !typ.IsScalar() && total < typ.ComponentCount() {
		c.errorf(pos, "'%s' : not enough data provided for construction", name)
		return c.placeholder(pos)
	}

	typ = typ.Temporary()
	if typ.Basic != ir.TypeBool {
		typ.Precision = precision
	}

	if folded, ok := foldConstructor(typ, args); ok {
		folded.SetPos(pos)
		return folded
	}
	a := ir.NewAggregate(ir.OpConstruct, typ.BaseName(), args, typ)
	a.SetPos(pos)
	return a
}

// arrayConstructor checks "T[n](a, b, ...)". A size of zero takes the
// size from the argument count.
func (p *Parser) arrayConstructor(tok Token, elem ir.Type, size uint32, args []ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	name := tok.Lexeme + "[]"

	if !c.requireVersion(pos, name, 300) {
		return c.placeholder(pos)
	}
	if elem.Basic == ir.TypeVoid || elem.Basic.IsSampler() {
		c.errorf(pos, "'%s' : cannot construct this type", name)
		return c.placeholder(pos)
	}
	if len(args) == 0 {
		c.errorf(pos, "'%s' : constructor does not have any arguments", name)
		return c.placeholder(pos)
	}
	if size == 0 {
		n, err := safecast.Conv[uint32](len(args))
		if err != nil {
			c.errorf(pos, "'%s' : too many arguments", name)
			return c.placeholder(pos)
		}
		size = n
	}
	if int(size) != len(args) {
		c.errorf(pos, "'%s' : array constructor needs one argument per array element", name)
		return c.placeholder(pos)
	}

	precision := ir.PrecisionUndefined
	for _, arg := range args {
		if !arg.Type().SameShape(elem) {
			c.errorf(pos, "'%s' : cannot convert parameter from '%s' to '%s'", name, arg.Type(), elem)
			return c.placeholder(pos)
		}
		precision = ir.HigherPrecision(precision, arg.Type().Precision)
	}

	typ := elem.Temporary()
	typ.ArraySizes = []uint32{size}
	if typ.Basic != ir.TypeBool {
		typ.Precision = precision
	}

	if k, ok := foldArrayConstructor(typ, args); ok {
		k.SetPos(pos)
		return k
	}
	a := ir.NewAggregate(ir.OpConstruct, typ.BaseName(), args, typ)
	a.SetPos(pos)
	return a
}

// functionCall resolves a call to a built-in or user function.
func (p *Parser) functionCall(tok Token, args []ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	name := tok.Lexeme

	if e, ok := c.symbols.Lookup(name); ok && !e.IsFunction() {
		c.errorf(pos, "'%s' : function name expected", name)
		return c.placeholder(pos)
	}

	argTypes := make([]ir.Type, len(args))
	for i, arg := range args {
		argTypes[i] = arg.Type()
	}
	e, ok := c.symbols.LookupFunction(name, argTypes)
	if !ok {
		c.errorf(pos, "'%s' : no matching overloaded function found", name)
		return c.placeholder(pos)
	}
	sig := e.Function

	for i, pt := range sig.Params {
		if pt.Qualifier == ir.QualParamOut || pt.Qualifier == ir.QualParamInOut {
			argTok := tok
			argTok.Lexeme = "assign"
			if !p.checkLValue(argTok, args[i]) {
				return c.placeholder(pos)
			}
		}
	}

	if e.Kind == ir.SymbolBuiltIn {
		if !c.checkExtension(pos, name, e.Extension) {
			return c.placeholder(pos)
		}
		ret := sig.Return.Temporary()
		ret.Precision = builtinPrecision(sig.Op, ret, args)
		a := ir.NewAggregate(sig.Op, name, args, ret)
		a.Func = e.ID
		a.SetPos(pos)
		return a
	}

	ret := sig.Return.Temporary()
	a := ir.NewAggregate(ir.OpCallFunctionInAST, name, args, ret)
	a.Func = e.ID
	a.SetPos(pos)
	return a
}

// builtinPrecision derives the precision of a built-in call result.
// Texture lookups take the sampler precision; everything else takes the
// highest argument precision.
func builtinPrecision(op ir.Operator, ret ir.Type, args []ir.Typed) ir.Precision {
	if ret.Basic == ir.TypeBool || ret.Basic == ir.TypeVoid {
		return ir.PrecisionUndefined
	}
	switch {
	case op == ir.OpTextureSize:
		return ir.PrecisionHigh
	case op.IsTexture():
		return args[0].Type().Precision
	}
	prec := ir.PrecisionUndefined
	for _, arg := range args {
		prec = ir.HigherPrecision(prec, arg.Type().Precision)
	}
	return prec
}
