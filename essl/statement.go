package essl

import (
	"github.com/gogpu/translator/ir"
)

// blockNoScope parses "{ ... }" in the current scope. Function bodies use
// it so that parameters and locals share one scope.
func (p *Parser) blockNoScope() (*ir.Block, *SourceError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace, "'{'"); err != nil {
		return nil, err
	}

	block := ir.NewBlock()
	block.SetPos(p.pos(start))
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			p.ctx.diags.Add(err)
			p.synchronizeStatement()
			continue
		}
		if stmt != nil {
			block.Append(stmt)
		}
	}

	if err := p.expectErr(TokenRightBrace, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

// scopedBlock parses a compound statement in a new scope.
func (p *Parser) scopedBlock() (*ir.Block, *SourceError) {
	p.ctx.pushScope()
	defer p.ctx.popScope()
	return p.blockNoScope()
}

// scopedStatement parses the body of an if or loop. A single statement is
// wrapped in a block.
func (p *Parser) scopedStatement() (*ir.Block, *SourceError) {
	if p.check(TokenLeftBrace) {
		return p.scopedBlock()
	}
	start := p.peek()
	p.ctx.pushScope()
	stmt, err := p.statement()
	p.ctx.popScope()
	if err != nil {
		return nil, err
	}
	block := ir.NewBlock()
	block.SetPos(p.pos(start))
	if stmt != nil {
		block.Append(stmt)
	}
	return block, nil
}

// statement parses a statement inside a function body.
func (p *Parser) statement() (ir.Node, *SourceError) {
	tok := p.peek()
	switch tok.Kind {
	case TokenLeftBrace:
		return p.scopedBlock()
	case TokenSemicolon:
		p.advance()
		return nil, nil
	case TokenIf:
		return p.ifStmt()
	case TokenFor:
		return p.forStmt()
	case TokenWhile:
		return p.whileStmt()
	case TokenDo:
		return p.doWhileStmt()
	case TokenBreak, TokenContinue:
		return p.jumpStmt()
	case TokenReturn:
		return p.returnStmt()
	case TokenDiscard:
		return p.discardStmt()
	case TokenPrecision:
		return nil, p.precisionStatement()
	case TokenSwitch, TokenCase, TokenDefault:
		return nil, p.errorAt(tok, "'%s' : switch statements are not supported", tok.Lexeme)
	case TokenStruct:
		return nil, p.errorAt(tok, "'struct' : structures are not supported")
	}
	if p.startsDeclaration() {
		return p.localDeclaration()
	}
	return p.expressionStmt()
}

// startsDeclaration reports whether the next tokens begin a declaration
// rather than an expression. A type name followed by '(' is a constructor.
func (p *Parser) startsDeclaration() bool {
	switch p.peek().Kind {
	case TokenConst, TokenAttribute, TokenUniform, TokenVarying, TokenIn, TokenOut,
		TokenInOut, TokenShared, TokenInvariant, TokenFlat, TokenSmooth, TokenCentroid,
		TokenLayout, TokenLowp, TokenMediump, TokenHighp:
		return true
	case TokenTypeName:
		return p.peekAt(1).Kind != TokenLeftParen
	}
	return false
}

// localDeclaration parses a variable declaration inside a function.
func (p *Parser) localDeclaration() (ir.Node, *SourceError) {
	q, err := p.qualifiers()
	if err != nil {
		return nil, err
	}
	if q.invariant && p.check(TokenIdent) {
		p.ctx.errorf(q.pos, "'invariant' : only allowed at global scope")
		p.synchronizeStatement()
		return nil, nil
	}
	typ, err := p.typeSpecifier()
	if err != nil {
		return nil, err
	}
	if p.match(TokenSemicolon) {
		return nil, nil
	}
	nameTok := p.peek()
	if err := p.expectErr(TokenIdent, "identifier"); err != nil {
		return nil, err
	}
	if p.check(TokenLeftParen) {
		return nil, p.errorAt(nameTok, "'%s' : functions must be declared at global scope", nameTok.Lexeme)
	}
	decl, err := p.declarationList(q, typ, nameTok)
	if err != nil || decl == nil {
		return nil, err
	}
	return decl, nil
}

// expressionStmt parses "expr;".
func (p *Parser) expressionStmt() (ir.Node, *SourceError) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	return expr, nil
}

// condition parses a boolean condition and checks its type.
func (p *Parser) condition() (ir.Typed, *SourceError) {
	tok := p.peek()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !cond.Type().SameShape(ir.NewScalar(ir.TypeBool)) {
		p.ctx.errorf(p.pos(tok), "'%s' : boolean expression expected", tok.Lexeme)
		cond = boolPlaceholder(p.pos(tok))
	}
	return cond, nil
}

func boolPlaceholder(pos ir.Pos) ir.Typed {
	t := ir.NewScalar(ir.TypeBool)
	t.Qualifier = ir.QualConst
	c := ir.NewConstantUnion([]ir.Constant{ir.BoolConst(false)}, t)
	c.SetPos(pos)
	return c
}

func (p *Parser) ifStmt() (ir.Node, *SourceError) {
	p.advance() // consume 'if'
	if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}

	trueBlock, err := p.scopedStatement()
	if err != nil {
		return nil, err
	}
	var falseBlock *ir.Block
	if p.match(TokenElse) {
		falseBlock, err = p.scopedStatement()
		if err != nil {
			return nil, err
		}
	}
	return ir.NewSelection(cond, trueBlock, falseBlock), nil
}

func (p *Parser) forStmt() (ir.Node, *SourceError) {
	start := p.advance() // consume 'for'
	if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}

	p.ctx.pushScope()
	defer p.ctx.popScope()

	loop := &ir.Loop{Kind: ir.LoopFor}
	loop.SetPos(p.pos(start))

	switch {
	case p.match(TokenSemicolon):
	case p.startsDeclaration():
		init, err := p.localDeclaration()
		if err != nil {
			return nil, err
		}
		loop.Init = init
	default:
		init, err := p.expressionStmt()
		if err != nil {
			return nil, err
		}
		loop.Init = init
	}

	if !p.check(TokenSemicolon) {
		cond, err := p.condition()
		if err != nil {
			return nil, err
		}
		loop.Cond = cond
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}

	if !p.check(TokenRightParen) {
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		loop.Expr = expr
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}

	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	loop.Body = body
	return loop, nil
}

func (p *Parser) whileStmt() (ir.Node, *SourceError) {
	start := p.advance() // consume 'while'
	if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	loop := &ir.Loop{Kind: ir.LoopWhile, Cond: cond, Body: body}
	loop.SetPos(p.pos(start))
	return loop, nil
}

func (p *Parser) doWhileStmt() (ir.Node, *SourceError) {
	start := p.advance() // consume 'do'
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenWhile, "'while'"); err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	loop := &ir.Loop{Kind: ir.LoopDoWhile, Cond: cond, Body: body}
	loop.SetPos(p.pos(start))
	return loop, nil
}

func (p *Parser) loopBody() (*ir.Block, *SourceError) {
	p.ctx.loopDepth++
	defer func() { p.ctx.loopDepth-- }()
	return p.scopedStatement()
}

func (p *Parser) jumpStmt() (ir.Node, *SourceError) {
	tok := p.advance()
	op := ir.OpBreak
	if tok.Kind == TokenContinue {
		op = ir.OpContinue
	}
	if p.ctx.loopDepth == 0 {
		p.ctx.errorf(p.pos(tok), "'%s' : %s statement only allowed in loops", tok.Lexeme, tok.Lexeme)
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	b := ir.NewBranch(op, nil)
	b.SetPos(p.pos(tok))
	return b, nil
}

func (p *Parser) returnStmt() (ir.Node, *SourceError) {
	c := p.ctx
	tok := p.advance() // consume 'return'
	pos := p.pos(tok)

	var value ir.Typed
	if !p.check(TokenSemicolon) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}

	if c.function != nil {
		c.functionReturns = true
		ret := c.function.Return
		switch {
		case ret.Basic == ir.TypeVoid && value != nil:
			c.errorf(pos, "'return' : void function cannot return a value")
			value = nil
		case ret.Basic != ir.TypeVoid && value == nil:
			c.errorf(pos, "'return' : non-void function must return a value")
		case value != nil && !value.Type().SameShape(ret):
			c.errorf(pos, "'return' : function return is not matching type:")
			value = nil
		}
	}

	b := ir.NewBranch(ir.OpReturn, value)
	b.SetPos(pos)
	return b, nil
}

func (p *Parser) discardStmt() (ir.Node, *SourceError) {
	tok := p.advance() // consume 'discard'
	if p.ctx.stage != ir.StageFragment {
		p.ctx.errorf(p.pos(tok), "'discard' : supported in fragment shaders only")
	}
	if err := p.expectErr(TokenSemicolon, "';'"); err != nil {
		return nil, err
	}
	b := ir.NewBranch(ir.OpKill, nil)
	b.SetPos(p.pos(tok))
	return b, nil
}
