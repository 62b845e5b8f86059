package parser

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

// parseTypeExpr parses a type reference or inline type definition,
// covering the TypeExpr variant family of spec §3.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	start := p.pos()

	switch p.curTok.Type {
	case lexer.POINTER:
		p.next() // POINTER
		if !p.expect(lexer.TO) {
			return nil
		}
		p.next()
		elem := p.parseTypeExpr()
		return ast.NewInlinePointer(p.ids.Next(), p.rangeFrom(start), ast.PointerRaw, elem)

	case lexer.REF_TO:
		p.next()
		elem := p.parseTypeExpr()
		return ast.NewInlinePointer(p.ids.Next(), p.rangeFrom(start), ast.PointerRefTo, elem)

	case lexer.REFERENCE:
		p.next() // REFERENCE
		if !p.expect(lexer.TO) {
			return nil
		}
		p.next()
		elem := p.parseTypeExpr()
		return ast.NewInlinePointer(p.ids.Next(), p.rangeFrom(start), ast.PointerReferenceTo, elem)

	case lexer.ARRAY:
		return p.parseArrayType(start)

	case lexer.STRUCT:
		return p.parseStructType(start)

	case lexer.LPAREN:
		return p.parseEnumType(start, nil)

	case lexer.IDENT:
		name := p.curTok.Literal
		if name == "STRING" || name == "WSTRING" {
			return p.parseStringType(start, name == "WSTRING")
		}
		named := ast.NewNamedType(p.ids.Next(), p.rangeFrom(start), name)
		if p.peekIs(lexer.LPAREN) {
			// INT(0..100) style subrange; a TYPE Color : (Red, Green) BYTE style
			// enum-with-underlying is read by parseEnumType instead.
			p.next()
			return p.parseSubrangeType(start, named)
		}
		return named

	default:
		p.errorf(ErrExpectedType, "expected a type, got %s", p.curTok.Type)
		return nil
	}
}

func (p *Parser) parseArrayType(start ast.Position) ast.TypeExpr {
	p.next() // ARRAY
	if !p.expect(lexer.LBRACK) {
		return nil
	}
	p.next()

	var bounds []ast.ArrayBoundExpr
	for {
		lo := p.ParseExpression(LOWEST)
		if !p.expect(lexer.DOTDOT) {
			return nil
		}
		p.next()
		hi := p.ParseExpression(LOWEST)
		bounds = append(bounds, ast.ArrayBoundExpr{Lo: lo, Hi: hi})
		if p.peekIs(lexer.COMMA) {
			p.next()
			p.next()
			continue
		}
		break
	}
	if !p.expect(lexer.RBRACK) {
		return nil
	}
	if !p.expect(lexer.OF) {
		return nil
	}
	p.next()
	elem := p.parseTypeExpr()
	return ast.NewInlineArray(p.ids.Next(), p.rangeFrom(start), bounds, elem)
}

func (p *Parser) parseStructType(start ast.Position) ast.TypeExpr {
	p.next() // STRUCT
	var fields []ast.StructField
	for !p.curIs(lexer.END_STRUCT) && !p.curIs(lexer.EOF) {
		fieldStart := p.pos()
		if !p.curIs(lexer.IDENT) {
			p.errorf(ErrExpectedIdent, "expected field name, got %s", p.curTok.Type)
			return nil
		}
		name := p.curTok.Literal
		if !p.expect(lexer.COLON) {
			return nil
		}
		p.next()
		typ := p.parseTypeExpr()

		var init ast.Expression
		if p.peekIs(lexer.ASSIGN) {
			p.next()
			p.next()
			init = p.ParseExpression(LOWEST)
		}
		fields = append(fields, ast.StructField{Name: name, Type: typ, Initializer: init, Location: p.rangeFrom(fieldStart)})

		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	return ast.NewInlineStruct(p.ids.Next(), p.rangeFrom(start), fields)
}

// parseEnumType parses `(a, b := 3, c)` with an optional trailing
// underlying-type, e.g. `(Red, Green, Blue) BYTE`.
func (p *Parser) parseEnumType(start ast.Position, underlying ast.TypeExpr) ast.TypeExpr {
	p.next() // consume '('
	var elements []ast.EnumVariantExpr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		varStart := p.pos()
		if !p.curIs(lexer.IDENT) {
			p.errorf(ErrExpectedIdent, "expected enum element, got %s", p.curTok.Type)
			return nil
		}
		name := p.curTok.Literal
		var init ast.Expression
		if p.peekIs(lexer.ASSIGN) {
			p.next()
			p.next()
			init = p.ParseExpression(LOWEST)
		}
		elements = append(elements, ast.EnumVariantExpr{Name: name, Initializer: init, Location: p.rangeFrom(varStart)})
		if p.peekIs(lexer.COMMA) {
			p.next()
			p.next()
			continue
		}
		p.next()
		break
	}
	if p.peekIs(lexer.IDENT) {
		p.next()
		underlying = ast.NewNamedType(p.ids.Next(), p.rangeFrom(start), p.curTok.Literal)
	}
	return ast.NewInlineEnum(p.ids.Next(), p.rangeFrom(start), elements, underlying, false)
}

func (p *Parser) parseSubrangeType(start ast.Position, elem ast.TypeExpr) ast.TypeExpr {
	p.next() // consume '('
	lo := p.ParseExpression(LOWEST)
	if !p.expect(lexer.DOTDOT) {
		return nil
	}
	p.next()
	hi := p.ParseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	return ast.NewInlineSubrange(p.ids.Next(), p.rangeFrom(start), elem, lo, hi)
}

func (p *Parser) parseStringType(start ast.Position, wide bool) ast.TypeExpr {
	var size ast.Expression
	if p.peekIs(lexer.LBRACK) {
		p.next()
		p.next()
		size = p.ParseExpression(LOWEST)
		if !p.expect(lexer.RBRACK) {
			return nil
		}
	}
	return ast.NewInlineString(p.ids.Next(), p.rangeFrom(start), wide, size)
}
