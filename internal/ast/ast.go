// Package ast defines the abstract syntax tree for lox-lang.
//
// The tree is immutable after parsing with one exception: nodes that refer to
// a variable carry a Slot which the resolver fills with the number of scopes
// between the use and its declaration.
package ast

import (
	"lox-lang/internal/span"
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Resolution slot
// ============================================================

// Slot caches the resolved scope distance of a variable reference.
type Slot struct {
	distance int
	resolved bool
}

// Resolve records the distance.
func (s *Slot) Resolve(distance int) {
	s.distance = distance
	s.resolved = true
}

// Distance returns the cached distance and whether it has been set.
func (s *Slot) Distance() (int, bool) {
	return s.distance, s.resolved
}

// ============================================================
// File (top-level AST root)
// ============================================================

// File represents the entire source file.
type File struct {
	NodeBase
	Body []Stmt
}

// ============================================================
// Expressions
// ============================================================

// NumberLiteral represents a number literal.
type NumberLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NilLiteral represents nil.
type NilLiteral struct {
	ExprBase
}

// ListLiteral represents a list literal: [a, b, c].
type ListLiteral struct {
	ExprBase
	Elements []Expr
}

// IdentExpr represents an identifier reference.
type IdentExpr struct {
	ExprBase
	Name token.Token
	Slot Slot
}

// AssignExpr represents an assignment to a variable: name = value.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
	Slot  Slot
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Token
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x == y, p and q.
type BinaryExpr struct {
	ExprBase
	Op    token.Token
	Left  Expr
	Right Expr
}

// GroupingExpr represents a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Inner Expr
}

// CallExpr represents a call: f(a, b).
type CallExpr struct {
	ExprBase
	Callee Expr
	Paren  token.Token // closing paren, used for error attribution
	Args   []Expr
}

// GetExpr represents property access: object.name.
type GetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
}

// SetExpr represents property assignment: object.name = value.
type SetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
	Value  Expr
}

// IndexExpr represents indexing: list[i].
type IndexExpr struct {
	ExprBase
	Object  Expr
	Bracket token.Token
	Index   Expr
}

// ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	ExprBase
	Keyword token.Token
	Slot    Slot
}

// SuperExpr represents super.method.
type SuperExpr struct {
	ExprBase
	Keyword token.Token
	Method  token.Token
	Slot    Slot
}

// FuncExpr represents a function expression: fun [name](params) { body }.
// Class methods are FuncExprs with a name.
type FuncExpr struct {
	ExprBase
	Name   *token.Token // nil for anonymous functions
	Params []token.Token
	Body   []Stmt
}

// FuncName returns the function name or "" for anonymous functions.
func (f *FuncExpr) FuncName() string {
	if f.Name == nil {
		return ""
	}
	return f.Name.Lexeme
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// PrintStmt writes the display form of an expression.
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// VarDeclStmt represents a declaration: let x = expr / const x = expr.
type VarDeclStmt struct {
	StmtBase
	Name    token.Token
	IsConst bool
	Init    Expr // may be nil if no initializer
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents if/else. Else is nil, a *BlockStmt or a nested *IfStmt.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      *BlockStmt
	Else      Stmt
}

// ForStmt represents a loop. A loop with an initializer is parsed as a
// BlockStmt holding the initializer followed by the ForStmt.
type ForStmt struct {
	StmtBase
	Keyword   token.Token
	Condition Expr      // nil loops until break
	Closer    *ExprStmt // may be nil
	Body      *BlockStmt
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Keyword token.Token
	Value   Expr // may be nil
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	StmtBase
	Keyword token.Token
}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	StmtBase
	Keyword token.Token
}

// ClassStmt represents a class declaration.
type ClassStmt struct {
	StmtBase
	Name       token.Token
	Superclass *IdentExpr // may be nil
	Methods    []*FuncExpr
}
