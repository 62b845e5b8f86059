// Package ast defines the tagged-variant Abstract Syntax Tree the
// parser produces and every later phase (index, constant evaluator,
// annotator, lowerings, validator) consumes. Every node carries a
// stable integer id, minted once by the parser's IdProvider and never
// reused, so the AnnotationMap can key off it safely even after
// lowerings replace whole subtrees (spec §3, §9).
package ast

import "fmt"

// NodeID is a stable, process-wide-unique identifier for an AST node.
// Lowerings mint fresh NodeIDs for every replacement node they build;
// they never reuse an old node's id for a structurally different node.
type NodeID int

// Position is a 1-based line/column location in a source file.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open source span used for diagnostics and for the
// "see also" secondary ranges spec §6.2 describes.
type Range struct {
	Start, End Position
}

// Node is implemented by every AST variant.
type Node interface {
	ID() NodeID
	Range() Range
}

// base is embedded by every concrete node to provide ID()/Range()
// without repeating the bookkeeping in each variant.
type base struct {
	id  NodeID
	rng Range
}

func newBase(id NodeID, rng Range) base { return base{id: id, rng: rng} }

func (b base) ID() NodeID  { return b.id }
func (b base) Range() Range { return b.rng }

// SetRange updates a node's range after construction, for parser
// productions that only know their full span once they finish
// consuming trailing tokens (e.g. a VAR block's END_VAR).
func (b *base) SetRange(r Range) { b.rng = r }

// Expression is implemented by every expression-shaped node
// (spec §3's Literal/Identifier/ReferenceExpr/BinaryExpr/... family).
type Expression interface {
	Node
	isExpression()
}

// Statement is implemented by every statement-shaped node.
type Statement interface {
	Node
	isStatement()
}

// IdProvider mints fresh, monotonically increasing NodeIDs. It is an
// explicit parameter threaded through the parser and every lowering —
// never a package-level singleton (spec §9: "reimplement
// as an explicit parameter, not a singleton").
type IdProvider struct {
	next NodeID
}

// NewIdProvider creates a provider starting at id 1 (0 is reserved to
// mean "no node").
func NewIdProvider() *IdProvider {
	return &IdProvider{next: 1}
}

// Next returns a fresh id and advances the counter.
func (p *IdProvider) Next() NodeID {
	id := p.next
	p.next++
	return id
}

// CompilationUnit is the ordered top-level container the parser
// produces for one source file: POUs, implementations, user-defined
// types, and global variable blocks (spec §3).
type CompilationUnit struct {
	Pous         []*Pou
	UserTypes    []*UserTypeDeclaration
	GlobalVars   []*VariableBlock
	SourceFile   string
}

// UserTypeDeclaration pairs a named TypeExpr with its declaration
// site, the form the Indexer walks in spec §4.1 step 2.
type UserTypeDeclaration struct {
	Name     string
	Type     TypeExpr
	Location Range
}
