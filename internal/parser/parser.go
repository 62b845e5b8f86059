// Package parser implements a recursive-descent, Pratt-style parser
// for the subset of IEC 61131-3 Structured Text the semantic core
// operates on. It is deliberately minimal: full grammar coverage is
// explicitly out of scope (see SPEC_FULL.md §6.6) — only enough
// syntax to drive the indexer, constant evaluator, annotator,
// lowerings and validator with realistic programs.
package parser

import (
	"fmt"

	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
	PREFIX
	CALL
	INDEX
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:  OR,
	lexer.XOR: OR,
	lexer.AND: AND,

	lexer.EQ:  EQUALS,
	lexer.NEQ: EQUALS,

	lexer.LT:  LESSGREATER,
	lexer.GT:  LESSGREATER,
	lexer.LTE: LESSGREATER,
	lexer.GTE: LESSGREATER,

	lexer.PLUS:  SUM,
	lexer.MINUS: SUM,

	lexer.STAR:    PRODUCT,
	lexer.SLASH:   PRODUCT,
	lexer.DIV:     PRODUCT,
	lexer.MOD:     PRODUCT,
	lexer.AMP:     PRODUCT,
	lexer.DOTDOT:  LESSGREATER,
	lexer.LPAREN:  CALL,
	lexer.LBRACK:  INDEX,
	lexer.DOT:     MEMBER,
	lexer.CARET:   MEMBER,
	lexer.PERCENT: MEMBER,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser consumes a token stream and builds internal/ast nodes,
// minting ids through an explicit, caller-supplied IdProvider (never
// a package singleton, per spec §9).
type Parser struct {
	l    *lexer.Lexer
	ids  *ast.IdProvider
	file string

	curTok  lexer.Token
	peekTok lexer.Token

	errors []*Error

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New creates a Parser over l, minting node ids from ids and
// attributing diagnostics to file.
func New(l *lexer.Lexer, ids *ast.IdProvider, file string) *Parser {
	p := &Parser{l: l, ids: ids, file: file}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:   p.parseIdentifier,
		lexer.INT:     p.parseIntLiteral,
		lexer.REAL:    p.parseRealLiteral,
		lexer.STRING:  p.parseStringLiteral,
		lexer.WSTRING: p.parseStringLiteral,
		lexer.TIME:    p.parseTimeLiteral,
		lexer.TRUE:    p.parseBoolLiteral,
		lexer.FALSE:   p.parseBoolLiteral,
		lexer.MINUS:   p.parseUnaryExpr,
		lexer.PLUS:    p.parseUnaryExpr,
		lexer.NOT:     p.parseUnaryExpr,
		lexer.AMP:     p.parseUnaryExpr,
		lexer.LPAREN:  p.parseParenExpr,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS:    p.parseBinaryExpr,
		lexer.MINUS:   p.parseBinaryExpr,
		lexer.STAR:    p.parseBinaryExpr,
		lexer.SLASH:   p.parseBinaryExpr,
		lexer.DIV:     p.parseBinaryExpr,
		lexer.MOD:     p.parseBinaryExpr,
		lexer.AND:     p.parseBinaryExpr,
		lexer.OR:      p.parseBinaryExpr,
		lexer.XOR:     p.parseBinaryExpr,
		lexer.EQ:      p.parseBinaryExpr,
		lexer.NEQ:     p.parseBinaryExpr,
		lexer.LT:      p.parseBinaryExpr,
		lexer.GT:      p.parseBinaryExpr,
		lexer.LTE:     p.parseBinaryExpr,
		lexer.GTE:     p.parseBinaryExpr,
		lexer.LPAREN:  p.parseCallExpr,
		lexer.LBRACK:  p.parseIndexExpr,
		lexer.DOT:     p.parseMemberExpr,
		lexer.CARET:   p.parseDerefExpr,
		lexer.DOTDOT:  p.parseRangeExpr,
	}

	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peekTok.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	p.errorf(ErrUnexpectedToken, "expected %s, got %s", t, p.peekTok.Type)
	return false
}

func (p *Parser) errorf(code, format string, args ...any) {
	p.errors = append(p.errors, newError(p.curTok.Position, code, fmt.Sprintf(format, args...)))
}

func (p *Parser) pos() ast.Position {
	return ast.Position{Line: p.curTok.Position.Line, Column: p.curTok.Position.Column}
}

func (p *Parser) rangeFrom(start ast.Position) ast.Range {
	return ast.Range{Start: start, End: p.pos()}
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseExpression parses one expression using precedence climbing
// (a standard Pratt parser).
func (p *Parser) ParseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.curTok.Type]
	if !ok {
		p.errorf(ErrNoPrefixParse, "no prefix parse function for %s", p.curTok.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Type]
		if !ok {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}
