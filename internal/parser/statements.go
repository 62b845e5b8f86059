package parser

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

// blockTerminators are the tokens that close a statement list:
// the END_* keyword a given block expects, plus ELSE/ELSIF/UNTIL for
// the arms of IF/CASE/REPEAT.
var blockTerminators = map[lexer.TokenType]bool{
	lexer.END_PROGRAM: true, lexer.END_FUNCTION: true, lexer.END_FUNCTION_BLOCK: true,
	lexer.END_CLASS: true, lexer.END_METHOD: true, lexer.END_ACTION: true,
	lexer.END_IF: true, lexer.ELSE: true, lexer.ELSIF: true,
	lexer.END_CASE: true, lexer.END_FOR: true, lexer.END_WHILE: true, lexer.UNTIL: true,
	lexer.EOF: true,
}

// parseStatementList parses statements until a terminator or the
// explicit stop token is reached, leaving curTok on the terminator.
func (p *Parser) parseStatementList(stop lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(stop) && !blockTerminators[p.curTok.Type] {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curTok.Type {
	case lexer.SEMICOLON:
		return ast.NewEmptyStatement(p.ids.Next(), p.rangeFrom(p.pos()))
	case lexer.IF:
		return p.parseIf()
	case lexer.CASE:
		return p.parseCase()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.REPEAT:
		return p.parseRepeat()
	case lexer.EXIT:
		return ast.NewExitStatement(p.ids.Next(), p.rangeFrom(p.pos()))
	case lexer.CONTINUE:
		return ast.NewContinueStatement(p.ids.Next(), p.rangeFrom(p.pos()))
	case lexer.RETURN:
		return ast.NewReturnStatement(p.ids.Next(), p.rangeFrom(p.pos()))
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses an assignment (`x := expr;`) or a call
// used as a statement (`f(args);`).
func (p *Parser) parseSimpleStatement() ast.Statement {
	start := p.pos()
	left := p.ParseExpression(LOWEST)
	if left == nil {
		return nil
	}

	if p.peekIs(lexer.ASSIGN) {
		p.next() // :=
		p.next()
		right := p.ParseExpression(LOWEST)
		return ast.NewAssignment(p.ids.Next(), p.rangeFrom(start), left, right)
	}

	switch v := left.(type) {
	case *ast.CallStatement:
		return v
	case ast.Statement:
		return v
	default:
		return ast.NewExpressionStatement(p.ids.Next(), p.rangeFrom(start), left)
	}
}

func (p *Parser) parseIf() *ast.If {
	start := p.pos()
	var branches []ast.IfBranch

	p.next() // IF
	cond := p.ParseExpression(LOWEST)
	if !p.expect(lexer.THEN) {
		return nil
	}
	p.next()
	body := p.parseStatementList(lexer.END_IF)
	branches = append(branches, ast.IfBranch{Condition: cond, Body: body})

	for p.curIs(lexer.ELSIF) {
		p.next()
		elifCond := p.ParseExpression(LOWEST)
		if !p.expect(lexer.THEN) {
			return nil
		}
		p.next()
		elifBody := p.parseStatementList(lexer.END_IF)
		branches = append(branches, ast.IfBranch{Condition: elifCond, Body: elifBody})
	}

	var elseBody []ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		elseBody = p.parseStatementList(lexer.END_IF)
	}

	return ast.NewIf(p.ids.Next(), p.rangeFrom(start), branches, elseBody)
}

func (p *Parser) parseCase() *ast.Case {
	start := p.pos()
	p.next() // CASE
	selector := p.ParseExpression(LOWEST)
	if !p.expect(lexer.OF) {
		return nil
	}
	p.next()

	var labels []ast.CaseLabel
	for !p.curIs(lexer.ELSE) && !p.curIs(lexer.END_CASE) && !p.curIs(lexer.EOF) {
		var values []ast.Expression
		for {
			values = append(values, p.ParseExpression(LOWEST))
			if p.peekIs(lexer.COMMA) {
				p.next()
				p.next()
				continue
			}
			break
		}
		if !p.expect(lexer.COLON) {
			return nil
		}
		p.next()
		body := p.parseCaseLabelBody()
		labels = append(labels, ast.CaseLabel{Values: values, Body: body})
	}

	var elseBody []ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		elseBody = p.parseStatementList(lexer.END_CASE)
	}

	return ast.NewCase(p.ids.Next(), p.rangeFrom(start), selector, labels, elseBody)
}

// parseCaseLabelBody parses the statements of one CASE arm, stopping
// at the next label (signalled by a following literal/identifier atop
// a bare COLON), ELSE, or END_CASE.
func (p *Parser) parseCaseLabelBody() []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(lexer.ELSE) && !p.curIs(lexer.END_CASE) && !p.curIs(lexer.EOF) && !p.isCaseLabelStart() {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	return stmts
}

// isCaseLabelStart heuristically detects the start of the next CASE
// label: a literal or bare identifier immediately followed by `:` or
// `,` or `..` with no intervening statement syntax.
func (p *Parser) isCaseLabelStart() bool {
	switch p.curTok.Type {
	case lexer.INT, lexer.IDENT:
		return p.peekIs(lexer.COLON) || p.peekIs(lexer.COMMA) || p.peekIs(lexer.DOTDOT)
	}
	return false
}

func (p *Parser) parseFor() *ast.For {
	start := p.pos()
	p.next() // FOR
	if !p.curIs(lexer.IDENT) {
		p.errorf(ErrExpectedIdent, "expected loop counter, got %s", p.curTok.Type)
		return nil
	}
	counter := p.parseIdentifier()
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.next()
	from := p.ParseExpression(LOWEST)
	if !p.expect(lexer.TO) {
		return nil
	}
	p.next()
	to := p.ParseExpression(LOWEST)

	var step ast.Expression
	if p.peekIs(lexer.BY) {
		p.next()
		p.next()
		step = p.ParseExpression(LOWEST)
	}

	if !p.expect(lexer.DO) {
		return nil
	}
	p.next()
	body := p.parseStatementList(lexer.END_FOR)
	return ast.NewFor(p.ids.Next(), p.rangeFrom(start), counter, from, to, step, body)
}

func (p *Parser) parseWhile() *ast.While {
	start := p.pos()
	p.next() // WHILE
	cond := p.ParseExpression(LOWEST)
	if !p.expect(lexer.DO) {
		return nil
	}
	p.next()
	body := p.parseStatementList(lexer.END_WHILE)
	return ast.NewWhile(p.ids.Next(), p.rangeFrom(start), cond, body)
}

func (p *Parser) parseRepeat() *ast.Repeat {
	start := p.pos()
	p.next() // REPEAT
	body := p.parseStatementList(lexer.UNTIL)
	if !p.curIs(lexer.UNTIL) {
		p.errorf(ErrUnexpectedToken, "expected UNTIL, got %s", p.curTok.Type)
		return nil
	}
	p.next()
	cond := p.ParseExpression(LOWEST)
	return ast.NewRepeat(p.ids.Next(), p.rangeFrom(start), body, cond)
}
