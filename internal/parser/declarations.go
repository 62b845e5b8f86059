package parser

import (
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/lexer"
)

var blockKeywords = map[lexer.TokenType]ast.VariableBlockKind{
	lexer.VAR:          ast.BlockLocal,
	lexer.VAR_INPUT:    ast.BlockInput,
	lexer.VAR_OUTPUT:   ast.BlockOutput,
	lexer.VAR_IN_OUT:   ast.BlockInOut,
	lexer.VAR_TEMP:     ast.BlockTemp,
	lexer.VAR_GLOBAL:   ast.BlockGlobal,
	lexer.VAR_EXTERNAL: ast.BlockExternal,
}

// ParseCompilationUnit parses a whole source file into one
// CompilationUnit: an ordered sequence of POUs, user type
// declarations, and global VAR blocks (spec §3).
func (p *Parser) ParseCompilationUnit() *ast.CompilationUnit {
	cu := &ast.CompilationUnit{SourceFile: p.file}

	for !p.curIs(lexer.EOF) {
		switch p.curTok.Type {
		case lexer.TYPE:
			cu.UserTypes = append(cu.UserTypes, p.parseUserTypeBlock()...)
			p.consumeBlockEnd()
		case lexer.VAR_GLOBAL:
			cu.GlobalVars = append(cu.GlobalVars, p.parseVariableBlock())
			p.consumeBlockEnd()
		case lexer.PROGRAM, lexer.FUNCTION, lexer.FUNCTION_BLOCK, lexer.CLASS, lexer.INTERFACE:
			pou, nested := p.parsePou()
			cu.Pous = append(cu.Pous, pou)
			cu.Pous = append(cu.Pous, nested...)
			p.consumeBlockEnd()
		default:
			p.errorf(ErrUnexpectedToken, "unexpected top-level token %s", p.curTok.Type)
			p.next()
		}
	}
	return cu
}

// consumeBlockEnd advances past the closing keyword a top-level
// production stopped on (END_TYPE, END_VAR, END_PROGRAM, ...) and any
// immediately following semicolon.
func (p *Parser) consumeBlockEnd() {
	if p.curIs(lexer.EOF) {
		return
	}
	p.next()
	if p.curIs(lexer.SEMICOLON) {
		p.next()
	}
}

// parseUserTypeBlock parses one `TYPE name : typeExpr; ... END_TYPE`
// block, which may declare several types at once.
func (p *Parser) parseUserTypeBlock() []*ast.UserTypeDeclaration {
	p.next() // TYPE
	var decls []*ast.UserTypeDeclaration
	for !p.curIs(lexer.END_TYPE) && !p.curIs(lexer.EOF) {
		start := p.pos()
		if !p.curIs(lexer.IDENT) {
			p.errorf(ErrExpectedIdent, "expected type name, got %s", p.curTok.Type)
			return decls
		}
		name := p.curTok.Literal
		if !p.expect(lexer.COLON) {
			return decls
		}
		p.next()
		typ := p.parseTypeExpr()
		decls = append(decls, &ast.UserTypeDeclaration{Name: name, Type: typ, Location: p.rangeFrom(start)})
		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	return decls
}

// parseVariableBlock parses one `VAR[_INPUT|_OUTPUT|...] [CONSTANT]
// [RETAIN] ... END_VAR` section.
func (p *Parser) parseVariableBlock() *ast.VariableBlock {
	start := p.pos()
	kind := blockKeywords[p.curTok.Type]
	block := ast.NewVariableBlock(p.ids.Next(), ast.Range{}, kind)

	if p.peekIs(lexer.LBRACE) {
		// {ref} pass-mode annotation on VAR_INPUT, not separately
		// tokenized here; treated as a no-op marker block for now.
	}
	p.next() // consume block-kind keyword

	if p.curIs(lexer.CONSTANT) {
		block.Constant = true
		p.next()
	}
	if p.curIs(lexer.RETAIN) {
		block.Retain = true
		p.next()
	}

	for !p.curIs(lexer.END_VAR) && !p.curIs(lexer.EOF) {
		v := p.parseVariableDecl()
		if v == nil {
			break
		}
		block.Variables = append(block.Variables, v)
		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	block.SetRange(p.rangeFrom(start))
	return block
}

// parseVariableDecl parses one `name [, name]* : type [:= init] [AT
// address];` entry. Only the first name of a comma-grouped list is
// returned as the declaration; the names after it are consumed
// without producing a declaration of their own — kept singular here
// because every POU in spec §8's examples declares one name per line.
func (p *Parser) parseVariableDecl() *ast.Variable {
	start := p.pos()
	if !p.curIs(lexer.IDENT) {
		p.errorf(ErrExpectedIdent, "expected variable name, got %s", p.curTok.Type)
		return nil
	}
	name := p.curTok.Literal
	for p.peekIs(lexer.COMMA) {
		p.next() // ,
		if !p.expect(lexer.IDENT) {
			return nil
		}
	}

	var address ast.Expression
	if p.peekIs(lexer.AT) {
		p.next() // AT
		p.next()
		address = p.ParseExpression(LOWEST)
	}

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

	return ast.NewVariable(p.ids.Next(), p.rangeFrom(start), name, typ, init, address)
}

var pouKeywords = map[lexer.TokenType]ast.PouKind{
	lexer.PROGRAM:        ast.PouProgram,
	lexer.FUNCTION:       ast.PouFunction,
	lexer.FUNCTION_BLOCK: ast.PouFunctionBlock,
	lexer.CLASS:          ast.PouClass,
	lexer.METHOD:         ast.PouMethod,
	lexer.ACTION:         ast.PouAction,
	lexer.INTERFACE:      ast.PouInterface,
}

var pouEndKeywords = map[ast.PouKind]lexer.TokenType{
	ast.PouProgram:       lexer.END_PROGRAM,
	ast.PouFunction:      lexer.END_FUNCTION,
	ast.PouFunctionBlock: lexer.END_FUNCTION_BLOCK,
	ast.PouClass:         lexer.END_CLASS,
	ast.PouMethod:        lexer.END_METHOD,
	ast.PouAction:        lexer.END_ACTION,
	ast.PouInterface:     lexer.END_INTERFACE,
}

// parsePou parses one Program, Function, Function Block, Class,
// Method, Action, or Interface declaration including its var blocks
// and body, returning both the POU itself and any Method/Action
// declarations nested directly inside it (spec: `FUNCTION_BLOCK A
// METHOD foo END_METHOD ... END_FUNCTION_BLOCK`), flattened with
// Parent set to this POU's name so the Indexer can register them
// under their qualified name.
func (p *Parser) parsePou() (*ast.Pou, []*ast.Pou) {
	start := p.pos()
	kind := pouKeywords[p.curTok.Type]
	p.next() // kind keyword

	if !p.curIs(lexer.IDENT) {
		p.errorf(ErrExpectedIdent, "expected POU name, got %s", p.curTok.Type)
		return nil, nil
	}
	name := p.curTok.Literal
	pou := ast.NewPou(p.ids.Next(), ast.Range{}, name, kind)

	if p.peekIs(lexer.COLON) && (kind == ast.PouFunction || kind == ast.PouMethod) {
		p.next() // COLON
		p.next()
		pou.ReturnType = p.parseTypeExpr()
	}

	if p.peekIs(lexer.EXTENDS) {
		p.next()
		p.next()
		pou.Super = p.curTok.Literal
	}
	if p.peekIs(lexer.IMPLEMENTS) {
		p.next()
		for {
			p.next()
			pou.Implements = append(pou.Implements, p.curTok.Literal)
			if p.peekIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	p.next()

	for isVarBlockStart(p.curTok.Type) {
		pou.VariableBlocks = append(pou.VariableBlocks, p.parseVariableBlock())
		p.next()
	}

	endTok := pouEndKeywords[kind]
	body, nested := p.parseBodyAndNestedPous(name, endTok)
	pou.Body = body
	for !p.curIs(endTok) && !p.curIs(lexer.EOF) {
		p.next()
	}
	pou.SetRange(p.rangeFrom(start))
	return pou, nested
}

// parseBodyAndNestedPous parses ownerName's implementation body,
// peeling off any nested METHOD/ACTION declarations as separate
// flattened Pou entries (Parent set to ownerName) rather than
// statements, and parsing everything else as an ordinary statement.
// Interfaces have no executable statements, only nested METHOD
// signatures, so this same loop serves both.
func (p *Parser) parseBodyAndNestedPous(ownerName string, stop lexer.TokenType) ([]ast.Statement, []*ast.Pou) {
	var stmts []ast.Statement
	var nested []*ast.Pou
	for !p.curIs(stop) && !p.curIs(lexer.EOF) {
		if p.curTok.Type == lexer.METHOD || p.curTok.Type == lexer.ACTION {
			child, _ := p.parsePou()
			if child != nil {
				child.Parent = ownerName
				nested = append(nested, child)
			}
			p.next() // advance past the nested POU's own end keyword
			if p.peekIs(lexer.SEMICOLON) {
				p.next()
			}
			continue
		}
		if blockTerminators[p.curTok.Type] {
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.peekIs(lexer.SEMICOLON) {
			p.next()
		}
		p.next()
	}
	return stmts, nested
}

func isVarBlockStart(t lexer.TokenType) bool {
	_, ok := blockKeywords[t]
	return ok
}
