package essl

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"github.com/gogpu/translator/ir"
)

// Parser parses ESSL tokens into an ir tree, resolving symbols and types
// as it goes.
type Parser struct {
	tokens  []Token
	current int
	ctx     *context
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token, ctx *context) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		ctx:     ctx,
	}
}

// Parse parses the translation unit. Syntax errors are recorded in the
// context and parsing resumes at the next declaration.
func (p *Parser) Parse() *ir.Block {
	root := ir.NewBlock()

	for !p.isAtEnd() {
		stmts, err := p.externalDeclaration()
		if err != nil {
			p.ctx.diags.Add(err)
			p.synchronizeGlobal()
			continue
		}
		root.Append(stmts...)
	}

	p.finish()
	return root
}

// finish reports the whole-shader errors once every declaration is known.
func (p *Parser) finish() {
	c := p.ctx
	end := p.pos(p.peek())
	if !c.mainDefined {
		c.errorf(end, "'' : Missing main()")
	}
	if c.stage == ir.StageCompute && c.version >= 310 && !c.localSet {
		c.errorf(end, "'local_size' : No local work group size specified")
	}
	if c.usedFragColor && c.usedFragData {
		c.errorf(end, "'' : cannot use both gl_FragData and gl_FragColor")
	}
	if len(c.fragOutputs) > 1 {
		used := make(map[int]string, len(c.fragOutputs))
		for _, out := range c.fragOutputs {
			if out.location < 0 {
				c.errorf(out.pos, "'%s' : must explicitly specify all locations when using multiple fragment outputs", out.name)
				continue
			}
			if prev, dup := used[out.location]; dup {
				c.errorf(out.pos, "'%s' : conflicting output locations with previously defined output '%s'", out.name, prev)
				continue
			}
			used[out.location] = out.name
		}
	}
}

// externalDeclaration parses one global declaration or function.
func (p *Parser) externalDeclaration() ([]ir.Node, *SourceError) {
	switch {
	case p.check(TokenSemicolon):
		p.advance()
		return nil, nil
	case p.check(TokenPrecision):
		return nil, p.precisionStatement()
	case p.check(TokenStruct):
		return nil, p.errorAt(p.peek(), "'struct' : structures are not supported")
	}

	q, err := p.qualifiers()
	if err != nil {
		return nil, err
	}

	// invariant a, b;
	if q.invariant && !q.hasStorage && q.precision == ir.PrecisionUndefined && p.check(TokenIdent) {
		decl, err := p.invariantRedeclaration(q)
		if err != nil || decl == nil {
			return nil, err
		}
		return []ir.Node{decl}, nil
	}

	// layout(local_size_x = 8) in;
	if p.check(TokenSemicolon) && q.hasStorage {
		p.advance()
		p.layoutOnly(q)
		return nil, nil
	}

	typ, err := p.typeSpecifier()
	if err != nil {
		return nil, err
	}
	if p.match(TokenSemicolon) {
		// A type with no declarators declares nothing.
		return nil, nil
	}

	nameTok := p.peek()
	if err := p.expectErr(TokenIdent, "identifier"); err != nil {
		return nil, err
	}
	if p.check(TokenLeftParen) {
		fn, err := p.function(q, typ, nameTok)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, nil
		}
		return []ir.Node{fn}, nil
	}

	decl, err := p.declarationList(q, typ, nameTok)
	if err != nil || decl == nil {
		return nil, err
	}
	return []ir.Node{decl}, nil
}

// qualifiers collects the type qualifiers preceding a declaration.
type qualifiers struct {
	pos        ir.Pos
	storage    Token
	hasStorage bool
	interp     Token
	hasInterp  bool
	centroid   bool
	invariant  bool
	precision  ir.Precision
	layout     ir.Layout
	hasLayout  bool
	localSize  [3]int
}

func (p *Parser) qualifiers() (qualifiers, *SourceError) {
	q := qualifiers{pos: p.pos(p.peek()), layout: ir.NoLayout}
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenInvariant:
			p.advance()
			q.invariant = true
		case TokenFlat, TokenSmooth:
			p.advance()
			if !p.ctx.requireVersion(p.pos(tok), tok.Lexeme, 300) {
				continue
			}
			if q.hasInterp {
				p.ctx.errorf(p.pos(tok), "'%s' : multiple interpolation qualifiers", tok.Lexeme)
			}
			q.interp, q.hasInterp = tok, true
		case TokenCentroid:
			p.advance()
			if p.ctx.requireVersion(p.pos(tok), "centroid", 300) {
				q.centroid = true
			}
		case TokenLayout:
			if err := p.layoutQualifier(&q); err != nil {
				return q, err
			}
		case TokenConst, TokenAttribute, TokenUniform, TokenVarying, TokenIn, TokenOut, TokenShared:
			p.advance()
			if q.hasStorage {
				p.ctx.errorf(p.pos(tok), "'%s' : multiple storage qualifiers", tok.Lexeme)
				continue
			}
			q.storage, q.hasStorage = tok, true
		case TokenInOut:
			return q, p.errorAt(tok, "'inout' : only allowed on function parameters")
		case TokenLowp, TokenMediump, TokenHighp:
			p.advance()
			q.precision = precisionOf(tok.Kind)
		default:
			return q, nil
		}
	}
}

func precisionOf(kind TokenKind) ir.Precision {
	switch kind {
	case TokenLowp:
		return ir.PrecisionLow
	case TokenMediump:
		return ir.PrecisionMedium
	case TokenHighp:
		return ir.PrecisionHigh
	}
	return ir.PrecisionUndefined
}

// layoutQualifier parses layout(id = value, ...).
func (p *Parser) layoutQualifier(q *qualifiers) *SourceError {
	start := p.advance() // consume 'layout'
	p.ctx.requireVersion(p.pos(start), "layout", 300)
	if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
		return err
	}
	q.hasLayout = true
	for {
		idTok := p.peek()
		if err := p.expectErr(TokenIdent, "layout identifier"); err != nil {
			return err
		}
		value := -1
		if p.match(TokenEqual) {
			valTok := p.peek()
			if err := p.expectErr(TokenIntLiteral, "integer layout value"); err != nil {
				return err
			}
			v, err := strconv.ParseInt(valTok.Lexeme, 0, 32)
			if err != nil || v < 0 {
				p.ctx.errorf(p.pos(valTok), "'%s' : invalid layout qualifier value", valTok.Lexeme)
			} else {
				value = int(v)
			}
		}
		pos := p.pos(idTok)
		switch idTok.Lexeme {
		case "location":
			q.layout.Location = p.layoutValue(pos, idTok.Lexeme, value)
		case "binding":
			if p.ctx.requireVersion(pos, "binding", 310) {
				q.layout.Binding = p.layoutValue(pos, idTok.Lexeme, value)
			}
		case "local_size_x", "local_size_y", "local_size_z":
			if p.ctx.requireVersion(pos, idTok.Lexeme, 310) {
				v := p.layoutValue(pos, idTok.Lexeme, value)
				if v == 0 {
					p.ctx.errorf(pos, "'%s' : out of range: local size must be positive", idTok.Lexeme)
				} else if v > 0 {
					q.localSize[idTok.Lexeme[len(idTok.Lexeme)-1]-'x'] = v
				}
			}
		default:
			p.ctx.errorf(pos, "'%s' : invalid layout qualifier", idTok.Lexeme)
		}
		if !p.match(TokenComma) {
			break
		}
	}
	return p.expectErr(TokenRightParen, "')'")
}

func (p *Parser) layoutValue(pos ir.Pos, name string, value int) int {
	if value < 0 {
		p.ctx.errorf(pos, "'%s' : layout qualifier requires a value", name)
	}
	return value
}

// layoutOnly handles a qualifier list without a declarator, which is only
// meaningful as a compute work-group size declaration.
func (p *Parser) layoutOnly(q qualifiers) {
	c := p.ctx
	set := q.localSize != [3]int{}
	if !set || q.storage.Kind != TokenIn {
		c.errorf(q.pos, "'%s' : declaration expected", q.storage.Lexeme)
		return
	}
	if c.stage != ir.StageCompute {
		c.errorf(q.pos, "'local_size' : only allowed in compute shaders")
		return
	}
	size := [3]int{1, 1, 1}
	for i, v := range q.localSize {
		if v > 0 {
			size[i] = v
		}
	}
	if c.localSet && size != c.localSize {
		c.errorf(q.pos, "'local_size' : conflicting work group size declarations")
		return
	}
	if limit, ok := c.opts.Limits["gl_MaxComputeWorkGroupInvocations"]; ok && size[0]*size[1]*size[2] > limit {
		c.errorf(q.pos, "'local_size' : the total number of invocations exceeds %d", limit)
		return
	}
	c.localSize, c.localSet = size, true
}

// precisionStatement parses "precision highp float;".
func (p *Parser) precisionStatement() *SourceError {
	p.advance() // consume 'precision'
	precTok := p.advance()
	prec := precisionOf(precTok.Kind)
	if prec == ir.PrecisionUndefined {
		return p.errorAt(precTok, "'%s' : precision qualifier expected", precTok.Lexeme)
	}
	typeTok := p.peek()
	if err := p.expectErr(TokenTypeName, "type"); err != nil {
		return err
	}
	tn := typeNames[typeTok.Lexeme]
	if !needsPrecision(tn.typ.Basic) || !tn.typ.IsScalar() && !tn.typ.Basic.IsSampler() || tn.typ.Basic == ir.TypeUInt {
		p.ctx.errorf(p.pos(typeTok), "'%s' : illegal type argument for default precision qualifier", typeTok.Lexeme)
	} else {
		p.ctx.setDefaultPrecision(tn.typ.Basic, prec)
	}
	return p.expectErr(TokenSemicolon, "';'")
}

// typeSpecifier parses a type name and an optional ESSL 3 array suffix.
func (p *Parser) typeSpecifier() (ir.Type, *SourceError) {
	tok := p.peek()
	if tok.Kind == TokenStruct {
		return ir.Type{}, p.errorAt(tok, "'struct' : structures are not supported")
	}
	if err := p.expectErr(TokenTypeName, "type"); err != nil {
		return ir.Type{}, err
	}
	tn := typeNames[tok.Lexeme]
	p.ctx.requireVersion(p.pos(tok), tok.Lexeme, tn.minVersion)
	if ext, ok := extensionOfType[tok.Lexeme]; ok {
		p.ctx.checkExtension(p.pos(tok), tok.Lexeme, ext)
	}
	typ := tn.typ.Clone()
	if p.check(TokenLeftBracket) {
		p.ctx.requireVersion(p.pos(p.peek()), "[]", 300)
		size, err := p.arraySize()
		if err != nil {
			return ir.Type{}, err
		}
		typ.ArraySizes = []uint32{size}
	}
	return typ, nil
}

// arraySize parses "[n]" where n is a positive constant integer.
func (p *Parser) arraySize() (uint32, *SourceError) {
	open := p.advance() // consume '['
	if p.check(TokenRightBracket) {
		p.advance()
		p.ctx.errorf(p.pos(open), "'[]' : implicitly sized arrays are not supported")
		return 1, nil
	}
	expr, err := p.conditional()
	if err != nil {
		return 0, err
	}
	if err := p.expectErr(TokenRightBracket, "']'"); err != nil {
		return 0, err
	}
	c, ok := expr.(*ir.ConstantUnion)
	if !ok || !c.Type().IsScalar() || !c.Type().Basic.IsInteger() {
		p.ctx.errorf(p.pos(open), "'' : array size must be a constant integer expression")
		return 1, nil
	}
	v := c.Values[0]
	var size uint32
	var convErr error
	if v.Kind == ir.TypeUInt {
		size = v.U
	} else {
		size, convErr = safecast.Conv[uint32](v.I)
	}
	if convErr != nil || size == 0 {
		p.ctx.errorf(p.pos(open), "'%s' : array size must be greater than zero", v)
		return 1, nil
	}
	return size, nil
}

// invariantRedeclaration parses "invariant a, b;" at global scope.
func (p *Parser) invariantRedeclaration(q qualifiers) (*ir.Declaration, *SourceError) {
	c := p.ctx
	if !c.symbols.AtGlobalLevel() {
		c.errorf(q.pos, "'invariant' : only allowed at global scope")
	}
	var vars []ir.Typed
	for {
		tok := p.peek()
		if err := p.expectErr(TokenIdent, "identifier"); err != nil {
			return nil, err
		}
		pos := p.pos(tok)
		e, ok := c.symbols.Lookup(tok.Lexeme)
		switch {
		case !ok:
			c.errorf(pos, "'%s' : undeclared identifier declared as invariant", tok.Lexeme)
		case e.IsFunction() || !c.canBeInvariant(e.Type.Qualifier):
			c.errorf(pos, "'%s' : can not be declared invariant", tok.Lexeme)
		case e.Kind == ir.SymbolBuiltIn && !c.checkExtension(pos, tok.Lexeme, e.Extension):
		default:
			typ := e.Type.Clone()
			typ.Invariant = true
			if e.Kind != ir.SymbolBuiltIn {
				e.Type.Invariant = true
			}
			s := ir.NewSymbol(e.ID, e.Name, typ)
			s.SetPos(pos)
			vars = append(vars, s)
		}
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, nil
	}
	decl := ir.NewDeclaration(vars...)
	decl.Invariant = true
	return decl, nil
}

// canBeInvariant reports whether variables with qualifier q may be
// declared invariant.
func (c *context) canBeInvariant(q ir.Qualifier) bool {
	switch {
	case q.IsVaryingOut(), q == ir.QualPosition, q == ir.QualPointSize:
		return c.stage == ir.StageVertex
	case q == ir.QualVaryingIn:
		return c.stage == ir.StageFragment && !c.isESSL3()
	case q == ir.QualFragmentOut:
		return c.isESSL3()
	}
	return false
}

// storageQualifier maps the written qualifiers onto an ir qualifier.
func (p *Parser) storageQualifier(q qualifiers, global bool) ir.Qualifier {
	c := p.ctx
	pos := q.pos
	if !q.hasStorage {
		if q.hasInterp || q.centroid {
			c.errorf(pos, "'%s' : interpolation qualifiers require 'in' or 'out'", interpName(q))
		}
		if global {
			return ir.QualGlobal
		}
		return ir.QualTemporary
	}

	kind := q.storage.Kind
	if !global && kind != TokenConst {
		c.errorf(pos, "'%s' : only allowed at global scope", q.storage.Lexeme)
		return ir.QualTemporary
	}
	if (q.hasInterp || q.centroid) && kind != TokenIn && kind != TokenOut {
		c.errorf(pos, "'%s' : interpolation qualifiers require 'in' or 'out'", interpName(q))
	}

	switch kind {
	case TokenConst:
		return ir.QualConst
	case TokenUniform:
		return ir.QualUniform
	case TokenAttribute:
		if c.isESSL3() {
			c.errorf(pos, "'attribute' : supported in GLSL ES 1.00 only")
		} else if c.stage != ir.StageVertex {
			c.errorf(pos, "'attribute' : supported in vertex shaders only")
		}
		return ir.QualAttribute
	case TokenVarying:
		if c.isESSL3() {
			c.errorf(pos, "'varying' : supported in GLSL ES 1.00 only")
		}
		switch c.stage {
		case ir.StageVertex:
			return ir.QualVaryingOut
		case ir.StageFragment:
			return ir.QualVaryingIn
		}
		c.errorf(pos, "'varying' : not supported in compute shaders")
		return ir.QualGlobal
	case TokenShared:
		if c.requireVersion(pos, "shared", 310) && c.stage != ir.StageCompute {
			c.errorf(pos, "'shared' : supported in compute shaders only")
		}
		return ir.QualShared
	case TokenIn:
		if !c.requireVersion(pos, "in", 300) {
			return ir.QualGlobal
		}
		switch c.stage {
		case ir.StageVertex:
			if q.hasInterp || q.centroid {
				c.errorf(pos, "'%s' : interpolation qualifiers are not allowed on vertex inputs", interpName(q))
			}
			return ir.QualVertexIn
		case ir.StageFragment:
			switch {
			case q.hasInterp && q.interp.Kind == TokenFlat:
				return ir.QualFlatIn
			case q.centroid:
				return ir.QualCentroidIn
			case q.hasInterp:
				return ir.QualSmoothIn
			}
			return ir.QualFragmentIn
		}
		c.errorf(pos, "'in' : only allowed in a work group size declaration in compute shaders")
		return ir.QualGlobal
	case TokenOut:
		if !c.requireVersion(pos, "out", 300) {
			return ir.QualGlobal
		}
		switch c.stage {
		case ir.StageVertex:
			switch {
			case q.hasInterp && q.interp.Kind == TokenFlat:
				return ir.QualFlatOut
			case q.centroid:
				return ir.QualCentroidOut
			case q.hasInterp:
				return ir.QualSmoothOut
			}
			return ir.QualVertexOut
		case ir.StageFragment:
			if q.hasInterp || q.centroid {
				c.errorf(pos, "'%s' : interpolation qualifiers are not allowed on fragment outputs", interpName(q))
			}
			return ir.QualFragmentOut
		}
		c.errorf(pos, "'out' : not supported in compute shaders")
		return ir.QualGlobal
	}
	return ir.QualGlobal
}

func interpName(q qualifiers) string {
	if q.hasInterp {
		return q.interp.Lexeme
	}
	return "centroid"
}

// declarationList parses the declarators after the type of a variable
// declaration: "a, b[2] = ..., c;". nameTok is the first name, already
// consumed.
func (p *Parser) declarationList(q qualifiers, base ir.Type, nameTok Token) (*ir.Declaration, *SourceError) {
	c := p.ctx
	global := c.symbols.AtGlobalLevel()

	if base.Basic == ir.TypeVoid {
		c.errorf(p.pos(nameTok), "'%s' : illegal use of type 'void'", nameTok.Lexeme)
	}

	typ := base.Clone()
	typ.Qualifier = p.storageQualifier(q, global)
	typ.Precision = q.precision
	typ.Layout = q.layout
	typ = c.applyPrecision(p.pos(nameTok), typ)
	if q.invariant {
		if c.canBeInvariant(typ.Qualifier) {
			typ.Invariant = true
		} else {
			c.errorf(q.pos, "'invariant' : can only be applied to output variables")
		}
	}
	p.checkDeclarationType(q, typ, nameTok)

	var vars []ir.Typed
	for {
		pos := p.pos(nameTok)
		vtyp := typ.Clone()
		if p.check(TokenLeftBracket) {
			if vtyp.IsArray() {
				p.ctx.requireVersion(pos, "arrays of arrays", 310)
			}
			size, err := p.arraySize()
			if err != nil {
				return nil, err
			}
			vtyp.ArraySizes = append([]uint32{size}, vtyp.ArraySizes...)
		}

		var init ir.Typed
		if p.match(TokenEqual) {
			e, err := p.assignment()
			if err != nil {
				return nil, err
			}
			init = e
		}

		if v := p.declareOne(pos, nameTok.Lexeme, vtyp, init); v != nil {
			vars = append(vars, v)
		}

		if !p.match(TokenComma) {
			break
		}
		nameTok = p.peek()
		if err := p.expectErr(TokenIdent, "identifier"); err != nil {
			return nil, err
		}
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, nil
	}
	return ir.NewDeclaration(vars...), nil
}

// checkDeclarationType reports qualifier and type combinations the
// language forbids.
func (p *Parser) checkDeclarationType(q qualifiers, typ ir.Type, nameTok Token) {
	c := p.ctx
	pos := p.pos(nameTok)
	qual := typ.Qualifier

	if typ.Basic.IsSampler() && qual != ir.QualUniform {
		c.errorf(pos, "'%s' : samplers must be uniform", nameTok.Lexeme)
	}
	if c.isESSL3() && typ.Basic.IsInteger() && qual != ir.QualFlatOut && qual != ir.QualFlatIn {
		if (c.stage == ir.StageVertex && qual.IsVaryingOut()) || (c.stage == ir.StageFragment && qual.IsVaryingIn()) {
			c.errorf(pos, "'%s' : must use 'flat' interpolation here", nameTok.Lexeme)
		}
	}
	if typ.Basic == ir.TypeBool && (qual.IsShaderInput() || qual.IsVaryingOut() || qual == ir.QualFragmentOut) {
		c.errorf(pos, "'%s' : cannot be bool", qual)
	}

	if q.hasLayout {
		if typ.Layout.Location >= 0 && qual != ir.QualVertexIn && qual != ir.QualFragmentOut {
			c.errorf(pos, "'location' : location must only be specified for vertex inputs and fragment outputs")
		}
		if typ.Layout.Binding >= 0 && !(qual == ir.QualUniform && typ.Basic.IsSampler()) {
			c.errorf(pos, "'binding' : binding is only allowed on sampler uniforms")
		}
		if q.localSize != [3]int{} {
			c.errorf(pos, "'local_size' : only allowed on a work group size declaration")
		}
	}

	if qual == ir.QualFragmentOut {
		c.fragOutputs = append(c.fragOutputs, fragOutput{
			name:     nameTok.Lexeme,
			location: typ.Layout.Location,
			pos:      pos,
		})
	}
}

// declareOne declares a single variable and returns its declaration entry.
func (p *Parser) declareOne(pos ir.Pos, name string, typ ir.Type, init ir.Typed) ir.Typed {
	c := p.ctx
	qual := typ.Qualifier

	if init == nil {
		if qual == ir.QualConst {
			c.errorf(pos, "'%s' : variables with qualifier 'const' must be initialized", name)
		}
		sym := c.declareVariable(pos, name, typ)
		if sym == nil {
			return nil
		}
		return sym
	}

	switch {
	case qual == ir.QualUniform, qual.IsShaderInput(), qual.IsVaryingOut(), qual == ir.QualFragmentOut, qual == ir.QualShared:
		c.errorf(pos, "'%s' : cannot initialize this type of qualifier", qual)
		return nil
	case typ.IsArray() && !c.isESSL3():
		c.errorf(pos, "'%s' : array initializers are not supported in GLSL ES 1.00", name)
		return nil
	}

	if _, err := ir.ResolveBinary(ir.OpInitialize, typ, init.Type()); err != nil {
		c.errorf(pos, "%s", err.Error())
		return nil
	}

	constant, isConst := init.(*ir.ConstantUnion)
	switch {
	case qual == ir.QualConst && !isConst:
		c.errorf(pos, "'=' : assigning non-constant to 'const %s'", typ)
		return nil
	case qual == ir.QualGlobal && !isConst:
		c.errorf(pos, "'%s' : global variable initializers must be constant expressions", name)
		return nil
	}

	sym := c.declareVariable(pos, name, typ)
	if sym == nil {
		return nil
	}
	if qual == ir.QualConst {
		c.symbols.Entry(sym.ID).Value = append([]ir.Constant(nil), constant.Values...)
	}
	return ir.NewBinary(ir.OpInitialize, sym, init, typ.Temporary())
}

// function parses a function prototype or definition. nameTok is the
// already consumed function name.
func (p *Parser) function(q qualifiers, ret ir.Type, nameTok Token) (ir.Node, *SourceError) {
	c := p.ctx
	pos := p.pos(nameTok)
	name := nameTok.Lexeme

	if q.hasStorage || q.invariant || q.hasInterp || q.centroid || q.hasLayout {
		c.errorf(q.pos, "'%s' : no qualifiers allowed for function return", name)
	}
	ret.Precision = q.precision
	if ret.Basic != ir.TypeVoid {
		ret = c.applyPrecision(pos, ret)
	}

	p.advance() // consume '('
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}

	c.checkReservedName(pos, name)
	if c.redefinesBuiltin(name, params) {
		c.errorf(pos, "'%s' : built-in functions cannot be redefined", name)
	}
	if name == "main" {
		if len(params) > 0 {
			c.errorf(pos, "'main' : function cannot take any parameter(s)")
		}
		if ret.Basic != ir.TypeVoid || ret.IsArray() {
			c.errorf(pos, "'main' : main function cannot return a value")
		}
	}

	types := make([]ir.Type, len(params))
	for i, prm := range params {
		types[i] = prm.typ
	}
	id, ok := c.symbols.DeclareFunction(ir.FunctionSig{Name: name, Params: types, Return: ret})
	if !ok {
		if e, found := c.symbols.Lookup(name); found && !e.IsFunction() {
			c.errorf(pos, "'%s' : redefinition", name)
		} else {
			c.errorf(pos, "'%s' : overloaded functions must have the same return type", name)
		}
	}

	proto := &ir.FunctionPrototype{Name: name, Func: id, Return: ret}
	proto.SetPos(pos)

	if p.match(TokenSemicolon) {
		if !c.symbols.AtGlobalLevel() {
			c.errorf(pos, "'%s' : function prototypes must be at global scope", name)
		}
		for _, prm := range params {
			s := ir.NewSymbol(ir.InvalidSymbol, prm.name, prm.typ)
			s.SetPos(prm.pos)
			proto.Params = append(proto.Params, s)
		}
		return proto, nil
	}

	if !p.check(TokenLeftBrace) {
		return nil, p.errorAt(p.peek(), "'%s' : syntax error", p.peek().Lexeme)
	}

	var sig *ir.FunctionSig
	if ok {
		e := c.symbols.Entry(id)
		if e.Function.Defined {
			c.errorf(pos, "'%s' : function already has a body", name)
		}
		e.Function.Defined = true
		sig = e.Function
	} else {
		sig = &ir.FunctionSig{Name: name, Params: types, Return: ret}
	}

	c.pushScope()
	for _, prm := range params {
		pname := prm.name
		if pname == "" {
			pname = c.symbols.UniqueName("_u")
			pid, _ := c.symbols.DeclareVariable(pname, prm.typ, ir.SymbolInternal)
			proto.Params = append(proto.Params, ir.NewSymbol(pid, pname, prm.typ))
			continue
		}
		s := c.declareVariable(prm.pos, pname, prm.typ)
		if s == nil {
			s = ir.NewSymbol(ir.InvalidSymbol, pname, prm.typ)
		}
		proto.Params = append(proto.Params, s)
	}

	c.function = sig
	c.functionReturns = false
	body, err := p.blockNoScope()
	c.function = nil
	c.popScope()
	if err != nil {
		return nil, err
	}
	if ret.Basic != ir.TypeVoid && !c.functionReturns {
		c.errorf(pos, "'%s' : function does not return a value", name)
	}
	if name == "main" {
		c.mainDefined = true
	}

	fn := &ir.FunctionDefinition{Prototype: proto, Body: body}
	fn.SetPos(pos)
	return fn, nil
}

// param is one parsed function parameter.
type param struct {
	name string
	typ  ir.Type
	pos  ir.Pos
}

// parameters parses a parameter list after '(' through ')'.
func (p *Parser) parameters() ([]param, *SourceError) {
	if p.match(TokenRightParen) {
		return nil, nil
	}
	if p.check(TokenTypeName) && p.peek().Lexeme == "void" && p.peekAt(1).Kind == TokenRightParen {
		p.advance()
		p.advance()
		return nil, nil
	}

	var params []param
	for {
		prm, err := p.parameter()
		if err != nil {
			return nil, err
		}
		params = append(params, prm)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parameter() (param, *SourceError) {
	c := p.ctx
	start := p.peek()
	qual := ir.QualParamIn
	isConst := p.match(TokenConst)
	switch {
	case p.match(TokenIn):
	case p.match(TokenOut):
		qual = ir.QualParamOut
	case p.match(TokenInOut):
		qual = ir.QualParamInOut
	}
	if isConst {
		if qual != ir.QualParamIn {
			c.errorf(p.pos(start), "'const' : qualifier not allowed with 'out' or 'inout'")
		}
		qual = ir.QualParamConst
	}
	prec := precisionOf(p.peek().Kind)
	if prec != ir.PrecisionUndefined {
		p.advance()
	}

	typ, err := p.typeSpecifier()
	if err != nil {
		return param{}, err
	}
	prm := param{pos: p.pos(start)}
	if p.check(TokenIdent) {
		tok := p.advance()
		prm.name = tok.Lexeme
		prm.pos = p.pos(tok)
	}
	if p.check(TokenLeftBracket) {
		size, err := p.arraySize()
		if err != nil {
			return param{}, err
		}
		typ.ArraySizes = append([]uint32{size}, typ.ArraySizes...)
	}
	if typ.Basic == ir.TypeVoid {
		c.errorf(prm.pos, "'void' : illegal use of type 'void'")
	}
	if typ.Basic.IsSampler() && qual != ir.QualParamIn && qual != ir.QualParamConst {
		c.errorf(prm.pos, "'%s' : samplers cannot be output parameters", typ)
	}
	typ.Qualifier = qual
	typ.Precision = prec
	prm.typ = c.applyPrecision(prm.pos, typ)
	return prm, nil
}

// redefinesBuiltin reports whether declaring name(params) would redefine a
// built-in function. ESSL 3 forbids reusing any built-in function name.
func (c *context) redefinesBuiltin(name string, params []param) bool {
	types := make([]ir.Type, len(params))
	for i, prm := range params {
		types[i] = prm.typ
	}
	mangled := ir.MangleName(name, types)
	for _, id := range c.opts.Builtins.Lookup(name) {
		e := c.opts.Builtins.Entry(id)
		if e.Function == nil || !c.builtinVisible(e) {
			continue
		}
		if c.isESSL3() || e.Function.MangledName() == mangled {
			return true
		}
	}
	return false
}

// Helper methods

func (p *Parser) pos(tok Token) ir.Pos {
	return ir.Pos{Line: tok.Line, Column: tok.Column}
}

func (p *Parser) errorAt(tok Token, format string, args ...interface{}) *SourceError {
	return &SourceError{
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Pos:      p.pos(tok),
		Source:   p.ctx.source,
	}
}

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind, what string) *SourceError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	tok := p.peek()
	switch tok.Kind {
	case TokenEOF:
		return p.errorAt(tok, "'' : syntax error: unexpected end of file, expected %s", what)
	case TokenError:
		return p.errorAt(tok, "'%s' : invalid character", tok.Lexeme)
	}
	return p.errorAt(tok, "'%s' : syntax error", tok.Lexeme)
}

// synchronizeGlobal skips to the end of the broken global declaration,
// stepping over any braced body.
func (p *Parser) synchronizeGlobal() {
	depth := 0
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			depth--
			if depth <= 0 {
				if p.check(TokenSemicolon) {
					p.advance()
				}
				return
			}
		case TokenSemicolon:
			if depth == 0 {
				return
			}
		}
	}
}

// synchronizeStatement skips to the end of the broken statement without
// leaving the enclosing block.
func (p *Parser) synchronizeStatement() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		case TokenSemicolon:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}
