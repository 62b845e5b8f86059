package parser

import (
	"strconv"
	"strings"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

func (p *Parser) parseIdentifier() ast.Expression {
	start := p.pos()
	id := ast.NewIdentifier(p.ids.Next(), p.rangeFrom(start), p.curTok.Literal)
	return id
}

func (p *Parser) parseIntLiteral() ast.Expression {
	start := p.pos()
	lit := p.curTok.Literal
	value, err := parseIntLiteralText(lit)
	if err != nil {
		p.errorf(ErrInvalidSyntax, "invalid integer literal %q: %s", lit, err)
	}
	return ast.NewLiteral(p.ids.Next(), p.rangeFrom(start), ast.LitInt, value)
}

// parseIntLiteralText decodes decimal, `base#digits` and underscore
// separators, matching the forms internal/lexer.readNumber accepts.
func parseIntLiteralText(lit string) (int64, error) {
	clean := strings.ReplaceAll(lit, "_", "")
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		base, err := strconv.Atoi(clean[:i])
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(clean[i+1:], base, 64)
	}
	return strconv.ParseInt(clean, 10, 64)
}

func (p *Parser) parseRealLiteral() ast.Expression {
	start := p.pos()
	lit := strings.ReplaceAll(p.curTok.Literal, "_", "")
	value, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errorf(ErrInvalidSyntax, "invalid real literal %q: %s", p.curTok.Literal, err)
	}
	return ast.NewLiteral(p.ids.Next(), p.rangeFrom(start), ast.LitReal, value)
}

func (p *Parser) parseStringLiteral() ast.Expression {
	start := p.pos()
	kind := ast.LitString
	if p.curTok.Type == lexer.WSTRING {
		kind = ast.LitWString
	}
	return ast.NewLiteral(p.ids.Next(), p.rangeFrom(start), kind, p.curTok.Literal)
}

func (p *Parser) parseTimeLiteral() ast.Expression {
	start := p.pos()
	return ast.NewLiteral(p.ids.Next(), p.rangeFrom(start), ast.LitTime, p.curTok.Literal)
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	start := p.pos()
	return ast.NewLiteral(p.ids.Next(), p.rangeFrom(start), ast.LitBool, p.curTok.Type == lexer.TRUE)
}

func (p *Parser) parseParenExpr() ast.Expression {
	start := p.pos()
	p.next() // consume '('
	inner := p.ParseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return inner
	}
	return ast.NewParenExpression(p.ids.Next(), p.rangeFrom(start), inner)
}

func (p *Parser) parseUnaryExpr() ast.Expression {
	start := p.pos()
	var op ast.UnaryOperator
	switch p.curTok.Type {
	case lexer.NOT:
		op = ast.OpNot
	case lexer.MINUS:
		op = ast.OpNeg
	case lexer.AMP:
		p.next()
		value := p.ParseExpression(PREFIX)
		return ast.NewReferenceExpr(p.ids.Next(), p.rangeFrom(start), value, ast.AddressAccess{})
	default: // lexer.PLUS, a no-op unary
		p.next()
		return p.ParseExpression(PREFIX)
	}
	p.next()
	value := p.ParseExpression(PREFIX)
	return ast.NewUnaryExpr(p.ids.Next(), p.rangeFrom(start), op, value)
}

var binaryOps = map[lexer.TokenType]ast.BinaryOperator{
	lexer.PLUS:  ast.OpAdd,
	lexer.MINUS: ast.OpSub,
	lexer.STAR:  ast.OpMul,
	lexer.SLASH: ast.OpDiv,
	lexer.DIV:   ast.OpDiv,
	lexer.MOD:   ast.OpMod,
	lexer.AND:   ast.OpAnd,
	lexer.OR:    ast.OpOr,
	lexer.XOR:   ast.OpXor,
	lexer.EQ:    ast.OpEq,
	lexer.NEQ:   ast.OpNotEq,
	lexer.LT:    ast.OpLess,
	lexer.GT:    ast.OpGreater,
	lexer.LTE:   ast.OpLessEq,
	lexer.GTE:   ast.OpGreaterEq,
}

func (p *Parser) parseBinaryExpr(left ast.Expression) ast.Expression {
	start := left.Range().Start
	op := binaryOps[p.curTok.Type]
	precedence := p.curPrecedence()
	p.next()
	right := p.ParseExpression(precedence)
	return ast.NewBinaryExpr(p.ids.Next(), p.rangeFrom(start), op, left, right)
}

func (p *Parser) parseRangeExpr(left ast.Expression) ast.Expression {
	start := left.Range().Start
	p.next()
	end := p.ParseExpression(LESSGREATER)
	return ast.NewRangeStatement(p.ids.Next(), p.rangeFrom(start), left, end)
}

func (p *Parser) parseMemberExpr(left ast.Expression) ast.Expression {
	start := left.Range().Start
	if !p.expect(lexer.IDENT) {
		return left
	}
	name := p.curTok.Literal
	return ast.NewReferenceExpr(p.ids.Next(), p.rangeFrom(start), left, ast.MemberAccess{Name: name})
}

func (p *Parser) parseDerefExpr(left ast.Expression) ast.Expression {
	start := left.Range().Start
	return ast.NewReferenceExpr(p.ids.Next(), p.rangeFrom(start), left, ast.DerefAccess{})
}

func (p *Parser) parseIndexExpr(left ast.Expression) ast.Expression {
	start := left.Range().Start
	p.next() // consume '['
	idx := p.ParseExpression(LOWEST)
	if !p.expect(lexer.RBRACK) {
		return left
	}
	return ast.NewReferenceExpr(p.ids.Next(), p.rangeFrom(start), left, ast.IndexAccess{Index: idx})
}

// parseCallExpr parses `callee(arg, arg, name := arg, name => arg)`,
// supporting both positional and explicit call-argument forms
// (spec §3's Assignment/OutputAssignment argument shapes).
func (p *Parser) parseCallExpr(callee ast.Expression) ast.Expression {
	start := callee.Range().Start
	var args []ast.Expression

	for !p.peekIs(lexer.RPAREN) {
		p.next()
		if p.curIs(lexer.RPAREN) {
			break
		}
		arg := p.parseCallArgument()
		args = append(args, arg)
		if p.peekIs(lexer.COMMA) {
			p.next()
		} else {
			break
		}
	}
	if !p.expect(lexer.RPAREN) {
		return callee
	}
	return ast.NewCallStatement(p.ids.Next(), p.rangeFrom(start), callee, args)
}

// parseCallArgument recognizes `name := expr` and `name => expr`
// explicit forms by speculatively checking the token after an
// identifier before falling back to a plain positional expression.
func (p *Parser) parseCallArgument() ast.Expression {
	if p.curIs(lexer.IDENT) && (p.peekIs(lexer.ASSIGN) || p.peekIs(lexer.FATARROW)) {
		start := p.pos()
		name := ast.NewIdentifier(p.ids.Next(), p.rangeFrom(start), p.curTok.Literal)
		isOutput := p.peekTok.Type == lexer.FATARROW
		p.next() // consume := or =>
		p.next() // move to value
		value := p.ParseExpression(LOWEST)
		if isOutput {
			return ast.NewOutputAssignment(p.ids.Next(), p.rangeFrom(start), name, value)
		}
		return ast.NewAssignment(p.ids.Next(), p.rangeFrom(start), name, value)
	}
	return p.ParseExpression(LOWEST)
}
