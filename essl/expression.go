package essl

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/gogpu/translator/ir"
)

// expression parses a full expression, including the comma operator.
func (p *Parser) expression() (ir.Typed, *SourceError) {
	left, err := p.assignment()
	if err != nil {
		return nil, err
	}
	for p.check(TokenComma) {
		opTok := p.advance()
		right, err := p.assignment()
		if err != nil {
			return nil, err
		}
		left = p.binary(opTok, ir.OpComma, left, right)
	}
	return left, nil
}

var assignOps = map[TokenKind]ir.Operator{
	TokenEqual:               ir.OpAssign,
	TokenPlusEqual:           ir.OpAddAssign,
	TokenMinusEqual:          ir.OpSubAssign,
	TokenStarEqual:           ir.OpMulAssign,
	TokenSlashEqual:          ir.OpDivAssign,
	TokenPercentEqual:        ir.OpIModAssign,
	TokenLessLessEqual:       ir.OpBitShiftLeftAssign,
	TokenGreaterGreaterEqual: ir.OpBitShiftRightAssign,
	TokenAmpEqual:            ir.OpBitwiseAndAssign,
	TokenPipeEqual:           ir.OpBitwiseOrAssign,
	TokenCaretEqual:          ir.OpBitwiseXorAssign,
}

// assignment parses right-associative assignment expressions.
func (p *Parser) assignment() (ir.Typed, *SourceError) {
	left, err := p.conditional()
	if err != nil {
		return nil, err
	}
	op, ok := assignOps[p.peek().Kind]
	if !ok {
		return left, nil
	}
	opTok := p.advance()
	right, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if !p.checkLValue(opTok, left) {
		return left, nil
	}
	return p.binary(opTok, op, left, right), nil
}

// conditional parses the ?: operator.
func (p *Parser) conditional() (ir.Typed, *SourceError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenQuestion) {
		return cond, nil
	}
	qTok := p.advance()
	a, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenColon, "':'"); err != nil {
		return nil, err
	}
	b, err := p.assignment()
	if err != nil {
		return nil, err
	}

	c := p.ctx
	pos := p.pos(qTok)
	if !cond.Type().SameShape(ir.NewScalar(ir.TypeBool)) {
		c.errorf(pos, "'?:' : boolean expression expected")
		return a, nil
	}
	if !a.Type().SameShape(b.Type()) {
		c.errorf(pos, "'?:' : wrong operand types - no operation '?:' exists that takes a left-hand operand of type '%s' and a right operand of type '%s'", a.Type(), b.Type())
		return a, nil
	}
	if a.Type().IsArray() || a.Type().Basic.IsSampler() {
		c.errorf(pos, "'?:' : ternary operator is not allowed for arrays or samplers")
		return a, nil
	}
	if k, ok := cond.(*ir.ConstantUnion); ok {
		if k.Values[0].B {
			return a, nil
		}
		return b, nil
	}
	typ := a.Type().Temporary()
	typ.Precision = ir.HigherPrecision(a.Type().Precision, b.Type().Precision)
	return ir.NewTernary(cond, a, b, typ), nil
}

// binaryLevel parses one left-associative precedence level.
func (p *Parser) binaryLevel(next func() (ir.Typed, *SourceError), ops map[TokenKind]ir.Operator) (ir.Typed, *SourceError) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return left, nil
		}
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = p.binary(opTok, op, left, right)
	}
}

var (
	logicalOrOps      = map[TokenKind]ir.Operator{TokenPipePipe: ir.OpLogicalOr}
	logicalXorOps     = map[TokenKind]ir.Operator{TokenCaretCaret: ir.OpLogicalXor}
	logicalAndOps     = map[TokenKind]ir.Operator{TokenAmpAmp: ir.OpLogicalAnd}
	bitwiseOrOps      = map[TokenKind]ir.Operator{TokenPipe: ir.OpBitwiseOr}
	bitwiseXorOps     = map[TokenKind]ir.Operator{TokenCaret: ir.OpBitwiseXor}
	bitwiseAndOps     = map[TokenKind]ir.Operator{TokenAmpersand: ir.OpBitwiseAnd}
	equalityOps       = map[TokenKind]ir.Operator{TokenEqualEqual: ir.OpEqual, TokenBangEqual: ir.OpNotEqual}
	shiftOps          = map[TokenKind]ir.Operator{TokenLessLess: ir.OpBitShiftLeft, TokenGreaterGreater: ir.OpBitShiftRight}
	additiveOps       = map[TokenKind]ir.Operator{TokenPlus: ir.OpAdd, TokenMinus: ir.OpSub}
	multiplicativeOps = map[TokenKind]ir.Operator{TokenStar: ir.OpMul, TokenSlash: ir.OpDiv, TokenPercent: ir.OpIMod}
	relationalOps     = map[TokenKind]ir.Operator{
		TokenLess:         ir.OpLessThan,
		TokenGreater:      ir.OpGreaterThan,
		TokenLessEqual:    ir.OpLessThanEqual,
		TokenGreaterEqual: ir.OpGreaterThanEqual,
	}
)

func (p *Parser) logicalOr() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.logicalXor, logicalOrOps)
}

func (p *Parser) logicalXor() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.logicalAnd, logicalXorOps)
}

func (p *Parser) logicalAnd() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.bitwiseOr, logicalAndOps)
}

func (p *Parser) bitwiseOr() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.bitwiseXor, bitwiseOrOps)
}

func (p *Parser) bitwiseXor() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.bitwiseAnd, bitwiseXorOps)
}

func (p *Parser) bitwiseAnd() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.equality, bitwiseAndOps)
}

func (p *Parser) equality() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.relational, equalityOps)
}

func (p *Parser) relational() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.shift, relationalOps)
}

func (p *Parser) shift() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.additive, shiftOps)
}

func (p *Parser) additive() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.multiplicative, additiveOps)
}

func (p *Parser) multiplicative() (ir.Typed, *SourceError) {
	return p.binaryLevel(p.unary, multiplicativeOps)
}

// binary type-checks and builds left op right, folding constants.
func (p *Parser) binary(opTok Token, op ir.Operator, left, right ir.Typed) ir.Typed {
	pos := p.pos(opTok)
	if op.IsBitwise() && !p.ctx.requireVersion(pos, op.String(), 300) {
		return left
	}
	typ, err := ir.ResolveBinary(op, left.Type(), right.Type())
	if err != nil {
		p.ctx.errorf(pos, "%s", err.Error())
		return left
	}
	if folded, ok := foldBinary(op, left, right, typ); ok {
		folded.SetPos(left.Pos())
		return folded
	}
	return ir.NewBinary(op, left, right, typ)
}

var unaryOps = map[TokenKind]ir.Operator{
	TokenMinus:      ir.OpNegative,
	TokenPlus:       ir.OpPositive,
	TokenBang:       ir.OpLogicalNot,
	TokenTilde:      ir.OpBitwiseNot,
	TokenPlusPlus:   ir.OpPreIncrement,
	TokenMinusMinus: ir.OpPreDecrement,
}

func (p *Parser) unary() (ir.Typed, *SourceError) {
	op, ok := unaryOps[p.peek().Kind]
	if !ok {
		return p.postfix()
	}
	opTok := p.advance()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return p.unaryOp(opTok, op, operand), nil
}

func (p *Parser) unaryOp(opTok Token, op ir.Operator, operand ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(opTok)
	if op == ir.OpBitwiseNot && !c.requireVersion(pos, "~", 300) {
		return operand
	}
	if op.IsIncDec() && !p.checkLValue(opTok, operand) {
		return operand
	}
	typ, err := ir.ResolveUnary(op, operand.Type())
	if err != nil {
		c.errorf(pos, "%s", err.Error())
		return operand
	}
	if folded, ok := foldUnary(op, operand, typ); ok {
		folded.SetPos(pos)
		return folded
	}
	u := ir.NewUnary(op, operand, typ)
	if !op.IsIncDec() || op == ir.OpPreIncrement || op == ir.OpPreDecrement {
		u.SetPos(pos)
	}
	return u
}

// postfix parses indexing, field selection, calls and ++/--.
func (p *Parser) postfix() (ir.Typed, *SourceError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenLeftBracket:
			p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket, "']'"); err != nil {
				return nil, err
			}
			expr = p.index(tok, expr, index)
		case TokenDot:
			p.advance()
			fieldTok := p.peek()
			if err := p.expectErr(TokenIdent, "field name"); err != nil {
				return nil, err
			}
			if fieldTok.Lexeme == "length" && p.check(TokenLeftParen) {
				p.advance()
				if err := p.expectErr(TokenRightParen, "')'"); err != nil {
					return nil, err
				}
				expr = p.arrayLength(fieldTok, expr)
				continue
			}
			expr = p.fieldSelection(fieldTok, expr)
		case TokenPlusPlus:
			p.advance()
			expr = p.unaryOp(tok, ir.OpPostIncrement, expr)
		case TokenMinusMinus:
			p.advance()
			expr = p.unaryOp(tok, ir.OpPostDecrement, expr)
		default:
			return expr, nil
		}
	}
}

// index builds base[index], checking constant indices against the size.
func (p *Parser) index(tok Token, base, index ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	bt := base.Type()

	if !bt.IsArray() && !bt.IsMatrix() && !bt.IsVector() {
		c.errorf(pos, "'[' : left of '[' is not of type array, matrix, or vector")
		return base
	}
	if !index.Type().IsScalar() || !index.Type().Basic.IsInteger() {
		c.errorf(pos, "'[' : integer expression required as index")
		return base
	}

	var size int
	switch {
	case bt.IsArray():
		size = int(bt.ArraySizes[0])
	case bt.IsMatrix():
		size = int(bt.Cols())
	default:
		size = int(bt.PrimarySize)
	}

	fragData := bt.Qualifier == ir.QualFragData
	if fragData {
		size = 1
		if c.extensions["GL_EXT_draw_buffers"].Enabled() {
			if n, ok := c.opts.Limits["gl_MaxDrawBuffers"]; ok {
				size = n
			} else {
				size = MaxDrawBuffersLimit
			}
		}
	}

	k, constIndex := index.(*ir.ConstantUnion)
	if !constIndex {
		if fragData && !c.extensions["GL_EXT_draw_buffers"].Enabled() {
			c.errorf(pos, "'[' : array indexes for gl_FragData must be constant zero")
			return base
		}
		typ, err := ir.ResolveBinary(ir.OpIndexIndirect, bt, index.Type())
		if err != nil {
			c.errorf(pos, "%s", err.Error())
			return base
		}
		return ir.NewBinary(ir.OpIndexIndirect, base, index, typ)
	}

	v := int64(k.Values[0].I)
	if k.Values[0].Kind == ir.TypeUInt {
		v = int64(k.Values[0].U)
	}
	if v < 0 {
		c.errorf(pos, "'[]' : index expression is negative")
		return base
	}
	if v >= int64(size) {
		if fragData {
			c.errorf(pos, "'[]' : array index for gl_FragData must be constant zero")
		} else {
			c.errorf(pos, "'[]' : array index out of range '%d'", v)
		}
		return base
	}

	typ, err := ir.ResolveBinary(ir.OpIndexDirect, bt, index.Type())
	if err != nil {
		c.errorf(pos, "%s", err.Error())
		return base
	}
	if folded, ok := foldIndex(c.constantArray(base), int(v), typ); ok {
		folded.SetPos(base.Pos())
		return folded
	}
	return ir.NewBinary(ir.OpIndexDirect, base, index, typ)
}

// arrayLength folds arr.length() to a constant.
func (p *Parser) arrayLength(tok Token, base ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	if !c.requireVersion(pos, "length", 300) {
		return c.placeholder(pos)
	}
	if !base.Type().IsArray() {
		c.errorf(pos, "'length' : length can only be called on arrays")
		return c.placeholder(pos)
	}
	n, err := safecast.Conv[int32](base.Type().ArraySizes[0])
	if err != nil {
		c.errorf(pos, "'length' : array size out of range: %v", err)
		return c.placeholder(pos)
	}
	k := ir.NewIntConstant(n)
	k.SetPos(pos)
	return k
}

// swizzleSets are the three component naming sets. Letters from different
// sets cannot be mixed in one selection.
var swizzleSets = [...]string{"xyzw", "rgba", "stpq"}

// fieldSelection builds a vector swizzle such as v.xzy.
func (p *Parser) fieldSelection(tok Token, base ir.Typed) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	bt := base.Type()
	field := tok.Lexeme

	if !bt.IsVector() {
		c.errorf(pos, "'%s' : field selection requires structure or vector on left hand side", field)
		return base
	}
	if len(field) > 4 {
		c.errorf(pos, "'%s' : illegal vector field selection", field)
		return base
	}

	set := -1
	offsets := make([]int, 0, len(field))
	for i := 0; i < len(field); i++ {
		found := false
		for s, letters := range swizzleSets {
			o := strings.IndexByte(letters, field[i])
			if o < 0 {
				continue
			}
			if set >= 0 && set != s {
				c.errorf(pos, "'%s' : illegal vector field selection", field)
				return base
			}
			set, found = s, true
			offsets = append(offsets, o)
			break
		}
		if !found {
			c.errorf(pos, "'%s' : illegal vector field selection", field)
			return base
		}
	}
	for _, o := range offsets {
		if o >= int(bt.PrimarySize) {
			c.errorf(pos, "'%s' : vector field selection out of range", field)
			return base
		}
	}

	if folded, ok := foldSwizzle(base, offsets); ok {
		folded.SetPos(base.Pos())
		return folded
	}
	return ir.NewSwizzle(base, offsets)
}

// checkLValue reports an error unless expr can be written.
func (p *Parser) checkLValue(opTok Token, expr ir.Typed) bool {
	c := p.ctx
	pos := p.pos(opTok)
	op := opTok.Lexeme

	switch n := expr.(type) {
	case *ir.Symbol:
		q := n.Type().Qualifier
		if !q.IsReadOnly() {
			return true
		}
		c.errorf(pos, "'%s' : l-value required (can't modify %s)", op, readOnlyDescription(q))
		return false
	case *ir.Binary:
		if n.Op == ir.OpIndexDirect || n.Op == ir.OpIndexIndirect {
			return p.checkLValue(opTok, n.Left)
		}
	case *ir.Swizzle:
		seen := 0
		for _, o := range n.Offsets {
			if seen&(1<<o) != 0 {
				c.errorf(pos, "'%s' : l-value of swizzle cannot have duplicate components", op)
				return false
			}
			seen |= 1 << o
		}
		return p.checkLValue(opTok, n.Operand)
	case *ir.ConstantUnion:
		c.errorf(pos, "'%s' : l-value required (can't modify a const)", op)
		return false
	}
	c.errorf(pos, "'%s' : l-value required", op)
	return false
}

func readOnlyDescription(q ir.Qualifier) string {
	switch {
	case q == ir.QualConst, q == ir.QualParamConst:
		return "a const"
	case q == ir.QualUniform:
		return "a uniform"
	case q == ir.QualAttribute:
		return "an attribute"
	case q == ir.QualVaryingIn:
		return "a varying"
	case q.IsShaderInput():
		return "an input"
	}
	return "a built-in input (" + q.String() + ")"
}

// primary parses literals, identifiers, calls, constructors and
// parenthesized expressions.
func (p *Parser) primary() (ir.Typed, *SourceError) {
	c := p.ctx
	tok := p.peek()
	pos := p.pos(tok)

	switch tok.Kind {
	case TokenIntLiteral:
		p.advance()
		return p.intLiteral(tok), nil
	case TokenUIntLiteral:
		p.advance()
		return p.uintLiteral(tok), nil
	case TokenFloatLiteral:
		p.advance()
		return p.floatLiteral(tok), nil
	case TokenTrue, TokenFalse:
		p.advance()
		k := boolPlaceholder(pos).(*ir.ConstantUnion)
		k.Values[0] = ir.BoolConst(tok.Kind == TokenTrue)
		return k, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenIdent:
		p.advance()
		if p.check(TokenLeftParen) {
			p.advance()
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			return p.functionCall(tok, args), nil
		}
		return c.lookupVariable(pos, tok.Lexeme), nil
	case TokenTypeName:
		p.advance()
		tn := typeNames[tok.Lexeme]
		c.requireVersion(pos, tok.Lexeme, tn.minVersion)
		var size uint32
		array := p.check(TokenLeftBracket)
		if array {
			if p.peekAt(1).Kind == TokenRightBracket {
				p.advance()
				p.advance()
			} else {
				var err *SourceError
				if size, err = p.arraySize(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
			return nil, err
		}
		args, err := p.arguments()
		if err != nil {
			return nil, err
		}
		if array {
			return p.arrayConstructor(tok, tn.typ.Clone(), size, args), nil
		}
		return p.constructor(tok, tn.typ.Clone(), args), nil
	case TokenEOF:
		return nil, p.errorAt(tok, "'' : syntax error: unexpected end of file")
	case TokenError:
		return nil, p.errorAt(tok, "'%s' : invalid character", tok.Lexeme)
	}
	return nil, p.errorAt(tok, "'%s' : syntax error", tok.Lexeme)
}

// arguments parses call arguments after '(' through ')'.
func (p *Parser) arguments() ([]ir.Typed, *SourceError) {
	if p.match(TokenRightParen) {
		return nil, nil
	}
	if p.check(TokenTypeName) && p.peek().Lexeme == "void" && p.peekAt(1).Kind == TokenRightParen {
		p.advance()
		p.advance()
		return nil, nil
	}
	var args []ir.Typed
	for {
		arg, err := p.assignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func constType(b ir.BasicType) ir.Type {
	t := ir.NewScalar(b)
	t.Qualifier = ir.QualConst
	return t
}

func (p *Parser) intLiteral(tok Token) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	text := tok.Lexeme
	v, err := strconv.ParseInt(text, 0, 64)
	var i32 int32
	switch {
	case err != nil:
		c.errorf(pos, "'%s' : Integer overflow", text)
	case len(text) > 1 && text[0] == '0':
		// Hexadecimal and octal literals use all 32 bits.
		u, convErr := safecast.Conv[uint32](v)
		if convErr != nil {
			c.errorf(pos, "'%s' : Integer overflow", text)
		}
		i32 = int32(u)
	default:
		n, convErr := safecast.Conv[int32](v)
		if convErr != nil {
			c.errorf(pos, "'%s' : Integer overflow", text)
		}
		i32 = n
	}
	k := ir.NewConstantUnion([]ir.Constant{ir.IntConst(i32)}, constType(ir.TypeInt))
	k.SetPos(pos)
	return k
}

func (p *Parser) uintLiteral(tok Token) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	text := strings.TrimRight(tok.Lexeme, "uU")
	c.requireVersion(pos, "unsigned integer literal", 300)
	var u32 uint32
	v, err := strconv.ParseUint(text, 0, 64)
	if err == nil {
		u32, err = safecast.Conv[uint32](v)
	}
	if err != nil {
		c.errorf(pos, "'%s' : Integer overflow", tok.Lexeme)
	}
	k := ir.NewConstantUnion([]ir.Constant{ir.UIntConst(u32)}, constType(ir.TypeUInt))
	k.SetPos(pos)
	return k
}

func (p *Parser) floatLiteral(tok Token) ir.Typed {
	c := p.ctx
	pos := p.pos(tok)
	text := tok.Lexeme
	if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
		if !c.isESSL3() {
			c.errorf(pos, "'%s' : Floating-point suffix is not allowed in GLSL ES 1.00", text)
		}
		text = text[:len(text)-1]
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		c.warnf(pos, "'%s' : Float overflow", tok.Lexeme)
	}
	k := ir.NewConstantUnion([]ir.Constant{ir.FloatConst(float32(f))}, constType(ir.TypeFloat))
	k.SetPos(pos)
	return k
}
