// Package parser implements the syntax analysis for lox-lang.
// It uses Pratt parsing for expressions and recursive descent for statements/declarations.
package parser

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"strconv"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpAdditive   = 50 // + -
	bpMultiply   = 60 // * /
	bpPrefix     = 70 // ! -
	bpPostfix    = 80 // () [] .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.KW_OR:
		return bpOr
	case token.KW_AND:
		return bpAnd
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	case token.LPAREN, token.LBRACKET, token.DOT:
		return bpPostfix
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic

	loopDepth int // enclosing loops inside the current function
	funcDepth int // enclosing function bodies
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseFile parses the entire file and returns the AST root and diagnostics.
func (p *Parser) ParseFile() (*ast.File, []diag.Diagnostic) {
	file := &ast.File{}
	startPos := p.peek().Span.Start

	file.Body = p.parseDeclarations(token.EOF)

	endPos := p.peek().Span.End
	file.Span = span.Span{Start: startPos, End: endPos}
	return file, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			last := p.tokens[len(p.tokens)-1]
			return token.Token{Kind: token.EOF, Span: span.Span{Start: last.Span.End, End: last.Span.End}}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	if p.pos+offset < len(p.tokens) {
		return p.tokens[p.pos+offset]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got %s", kind, describe(tok)))
	return tok, false
}

// expectSemicolon consumes the ';' terminating a statement.
func (p *Parser) expectSemicolon(after string) bool {
	if p.check(token.SEMICOLON) {
		p.advance()
		return true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected ';' after %s, got %s", after, describe(tok)))
	return false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) error(code string, s span.Span, msg string) {
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.IDENT, token.NUMBER:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Lexeme)
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

// ============================================================
// Error recovery
// ============================================================

// synchronize skips tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		// Stop after a terminator
		if p.check(token.SEMICOLON) {
			p.advance()
			return
		}
		// Stop at closing brace
		if p.check(token.RBRACE) {
			return
		}
		// Stop at statement-starting keywords
		if p.match(token.KW_IF, token.KW_WHILE, token.KW_FOR, token.KW_FUN, token.KW_CLASS,
			token.KW_LET, token.KW_CONST, token.KW_RETURN, token.KW_BREAK, token.KW_CONTINUE,
			token.KW_PRINT) {
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

// parseDeclarations parses declarations until the closing kind (not consumed).
// A statement following return/break/continue in the same list is reported
// as unreachable.
func (p *Parser) parseDeclarations(closing token.Kind) []ast.Stmt {
	var stmts []ast.Stmt
	var jump token.Token
	warned := false

	for !p.check(closing) && !p.isAtEnd() {
		before, reported := p.pos, len(p.diags)
		stmt := p.parseDeclaration()
		if p.pos == before {
			// no progress: drop the offending token
			tok := p.advance()
			if len(p.diags) == reported {
				p.error("E2002", tok.Span, fmt.Sprintf("unexpected %s", describe(tok)))
			}
			continue
		}
		if stmt == nil {
			continue
		}
		if jump.Kind != token.ILLEGAL && !warned {
			p.diags = append(p.diags, diag.Warningf("W2001", stmt.GetSpan(),
				"unreachable code after '%s'", jump.Kind))
			warned = true
		}
		switch s := stmt.(type) {
		case *ast.ReturnStmt:
			jump = s.Keyword
		case *ast.BreakStmt:
			jump = s.Keyword
		case *ast.ContinueStmt:
			jump = s.Keyword
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func (p *Parser) parseDeclaration() ast.Stmt {
	switch p.peekKind() {
	case token.KW_CLASS:
		return p.parseClassStmt()
	case token.KW_LET, token.KW_CONST:
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

// parseVarDecl parses: (let | const) IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'let' or 'const'
	stmt := &ast.VarDeclStmt{IsConst: start.Kind == token.KW_CONST}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}
	stmt.Name = nameTok

	// optional initializer
	if p.check(token.ASSIGN) {
		p.advance()
		stmt.Init = p.parseExpression()
		if stmt.Init == nil {
			p.synchronize()
			return nil
		}
	} else if stmt.IsConst {
		p.error("E2008", nameTok.Span, fmt.Sprintf("const '%s' must be initialized", nameTok.Lexeme))
	}

	if !p.expectSemicolon("variable declaration") {
		p.synchronize()
	}
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseClassStmt parses: class IDENT [extends IDENT] { methods }
func (p *Parser) parseClassStmt() ast.Stmt {
	start := p.advance() // consume 'class'
	stmt := &ast.ClassStmt{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}
	stmt.Name = nameTok

	if p.check(token.KW_EXTENDS) {
		p.advance()
		superTok, ok := p.expect(token.IDENT)
		if !ok {
			p.synchronize()
			return nil
		}
		stmt.Superclass = &ast.IdentExpr{
			ExprBase: makeExprBase(superTok.Span.Start, superTok.Span.End),
			Name:     superTok,
		}
	}

	if _, ok := p.expect(token.LBRACE); !ok {
		p.synchronize()
		return nil
	}

	for !p.check(token.RBRACE) && !p.isAtEnd() {
		if !p.check(token.IDENT) {
			tok := p.peek()
			p.error("E2003", tok.Span, fmt.Sprintf("expected method declaration, got %s", describe(tok)))
			p.advance()
			// resume at the next `name(` or at the closing brace
			for !p.match(token.RBRACE, token.EOF) &&
				!(p.check(token.IDENT) && p.peekAt(1).Kind == token.LPAREN) {
				p.advance()
			}
			continue
		}
		nameTok := p.advance()
		method := p.parseFunctionRest(nameTok.Span.Start, &nameTok)
		if method == nil {
			continue
		}
		stmt.Methods = append(stmt.Methods, method)
	}

	p.expect(token.RBRACE)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_FOR:
		return p.parseForStmt()
	case token.KW_RETURN:
		return p.parseReturnStmt()
	case token.KW_BREAK:
		return p.parseBreakStmt()
	case token.KW_CONTINUE:
		return p.parseContinueStmt()
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // consume 'print'
	expr := p.parseExpression()
	if expr == nil {
		p.synchronize()
		return nil
	}
	if !p.expectSemicolon("print statement") {
		p.synchronize()
	}
	return &ast.PrintStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseExprStmt parses an expression statement. The ';' is optional after a
// function expression, so `fun name() {}` reads like a declaration.
func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpression()
	if expr == nil {
		p.synchronize()
		return nil
	}

	if _, isFunc := expr.(*ast.FuncExpr); isFunc {
		if p.check(token.SEMICOLON) {
			p.advance()
		}
	} else if !p.expectSemicolon("expression") {
		p.synchronize()
	}

	return &ast.ExprStmt{
		StmtBase: makeStmtBase(expr.GetSpan().Start, p.prevEnd()),
		Expr:     expr,
	}
}

// parseBlock parses: { declarations }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		block.Span = p.makeSpan(start.Span.Start)
		return block
	}

	block.Stmts = p.parseDeclarations(token.RBRACE)

	p.expect(token.RBRACE)
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// parseIfStmt parses: if expr block [ else (if ... | block) ]
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	stmt.Condition = p.parseExpression()
	if stmt.Condition == nil {
		p.synchronize()
		return nil
	}
	stmt.Then = p.parseBlock()

	if p.check(token.KW_ELSE) {
		p.advance() // consume 'else'
		if p.check(token.KW_IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseWhileStmt parses: while expr block
// It produces a ForStmt without initializer or closer.
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // consume 'while'
	stmt := &ast.ForStmt{Keyword: start}

	stmt.Condition = p.parseExpression()
	if stmt.Condition == nil {
		p.synchronize()
		return nil
	}
	stmt.Body = p.parseLoopBody()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseForStmt parses: for (varDecl | ;) [cond] ; [closer] block
// A loop with an initializer becomes { init; for ... } so the variable
// does not leak into the enclosing scope.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'
	stmt := &ast.ForStmt{Keyword: start}

	var init ast.Stmt
	switch {
	case p.match(token.KW_LET, token.KW_CONST):
		init = p.parseVarDecl()
		if init == nil {
			return nil
		}
	case p.check(token.SEMICOLON):
		p.advance()
	default:
		tok := p.peek()
		p.error("E2001", tok.Span, fmt.Sprintf("expected 'let', 'const' or ';' after 'for', got %s", describe(tok)))
		p.synchronize()
		return nil
	}

	if !p.check(token.SEMICOLON) {
		stmt.Condition = p.parseExpression()
		if stmt.Condition == nil {
			p.synchronize()
			return nil
		}
	}
	if !p.expectSemicolon("loop condition") {
		p.synchronize()
		return nil
	}

	if !p.check(token.LBRACE) {
		closer := p.parseExpression()
		if closer == nil {
			p.synchronize()
			return nil
		}
		stmt.Closer = &ast.ExprStmt{
			StmtBase: makeStmtBase(closer.GetSpan().Start, closer.GetSpan().End),
			Expr:     closer,
		}
	}

	stmt.Body = p.parseLoopBody()
	stmt.Span = p.makeSpan(start.Span.Start)

	if init == nil {
		return stmt
	}
	return &ast.BlockStmt{
		StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()),
		Stmts:    []ast.Stmt{init, stmt},
	}
}

func (p *Parser) parseLoopBody() *ast.BlockStmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseBlock()
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{Keyword: start}

	if p.funcDepth == 0 {
		p.error("E2006", start.Span, "'return' outside of a function")
	}

	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			p.synchronize()
			return nil
		}
	}
	if !p.expectSemicolon("return value") {
		p.synchronize()
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	start := p.advance()
	if p.loopDepth == 0 {
		p.error("E2004", start.Span, "'break' outside of a loop")
	}
	p.expectSemicolon("'break'")
	return &ast.BreakStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()), Keyword: start}
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	start := p.advance()
	if p.loopDepth == 0 {
		p.error("E2005", start.Span, "'continue' outside of a loop")
	}
	p.expectSemicolon("'continue'")
	return &ast.ContinueStmt{StmtBase: makeStmtBase(start.Span.Start, p.prevEnd()), Keyword: start}
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpression parses an assignment or any lower-precedence expression.
// Assignment is right-associative and only valid on a variable or property.
func (p *Parser) parseExpression() ast.Expr {
	target := p.parseExpr(bpNone)
	if target == nil || !p.check(token.ASSIGN) {
		return target
	}

	eq := p.advance() // consume '='
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	s := target.GetSpan().Cover(value.GetSpan())

	switch t := target.(type) {
	case *ast.IdentExpr:
		return &ast.AssignExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: s}},
			Name:     t.Name,
			Value:    value,
		}
	case *ast.GetExpr:
		return &ast.SetExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: s}},
			Object:   t.Object,
			Name:     t.Name,
			Value:    value,
		}
	default:
		p.error("E2007", eq.Span, "invalid assignment target")
		return value
	}
}

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		left = p.led(left)
		if left == nil {
			return nil
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.error("E2002", tok.Span, fmt.Sprintf("invalid number literal '%s'", tok.Lexeme))
		}
		return &ast.NumberLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
		}

	case token.KW_TRUE, token.KW_FALSE:
		p.advance()
		return &ast.BoolLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Kind == token.KW_TRUE,
		}

	case token.KW_NIL:
		p.advance()
		return &ast.NilLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
		}

	case token.KW_THIS:
		p.advance()
		return &ast.ThisExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Keyword:  tok,
		}

	case token.KW_SUPER:
		p.advance()
		if _, ok := p.expect(token.DOT); !ok {
			return nil
		}
		method, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		return &ast.SuperExpr{
			ExprBase: makeExprBase(tok.Span.Start, method.Span.End),
			Keyword:  tok,
			Method:   method,
		}

	case token.IDENT:
		p.advance()
		return &ast.IdentExpr{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok,
		}

	case token.LPAREN:
		// Grouped expression: ( expr )
		p.advance() // consume '('
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return nil
		}
		return &ast.GroupingExpr{
			ExprBase: makeExprBase(tok.Span.Start, p.prevEnd()),
			Inner:    inner,
		}

	case token.BANG, token.MINUS:
		// Unary: !expr, -expr
		p.advance()
		operand := p.parseExpr(bpPrefix)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       tok,
			Operand:  operand,
		}

	case token.KW_FUN:
		p.advance()
		var name *token.Token
		if p.check(token.IDENT) {
			nameTok := p.advance()
			name = &nameTok
		}
		fn := p.parseFunctionRest(tok.Span.Start, name)
		if fn == nil {
			return nil
		}
		return fn

	case token.LBRACKET:
		return p.parseListLiteral()

	default:
		p.error("E2002", tok.Span, fmt.Sprintf("unexpected %s, expected an expression", describe(tok)))
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE,
		token.KW_AND, token.KW_OR:
		// Binary infix operator (left-associative)
		bp := infixBP(tok.Kind)
		p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{Span: left.GetSpan().Cover(right.GetSpan())}},
			Op:       tok,
			Left:     left,
			Right:    right,
		}

	case token.LPAREN:
		// Call expression: callee(args)
		return p.parseCallExpr(left)

	case token.LBRACKET:
		// Index expression: object[index]
		p.advance() // consume '['
		index := p.parseExpression()
		if index == nil {
			return nil
		}
		end, ok := p.expect(token.RBRACKET)
		if !ok {
			return nil
		}
		return &ast.IndexExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, end.Span.End),
			Object:   left,
			Bracket:  tok,
			Index:    index,
		}

	case token.DOT:
		// Property access: object.name
		p.advance() // consume '.'
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		return &ast.GetExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, nameTok.Span.End),
			Object:   left,
			Name:     nameTok,
		}

	default:
		return left
	}
}

// parseCallExpr parses: callee ( args )
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	p.advance() // consume '('
	args, ok := p.parseExprList(token.RPAREN)
	if !ok {
		return nil
	}
	end, ok := p.expect(token.RPAREN)
	if !ok {
		return nil
	}

	return &ast.CallExpr{
		ExprBase: makeExprBase(callee.GetSpan().Start, end.Span.End),
		Callee:   callee,
		Paren:    end,
		Args:     args,
	}
}

// parseListLiteral parses: [ expr, expr, ... ]
func (p *Parser) parseListLiteral() ast.Expr {
	start := p.advance() // consume '['
	elements, ok := p.parseExprList(token.RBRACKET)
	if !ok {
		return nil
	}
	end, ok := p.expect(token.RBRACKET)
	if !ok {
		return nil
	}

	return &ast.ListLiteral{
		ExprBase: makeExprBase(start.Span.Start, end.Span.End),
		Elements: elements,
	}
}

// parseExprList parses comma-separated expressions up to (not including)
// the closing kind. A trailing comma is allowed.
func (p *Parser) parseExprList(closing token.Kind) ([]ast.Expr, bool) {
	var exprs []ast.Expr
	for !p.check(closing) {
		expr := p.parseExpression()
		if expr == nil {
			return nil, false
		}
		exprs = append(exprs, expr)
		if !p.check(token.COMMA) {
			break
		}
		p.advance() // consume ','
	}
	return exprs, true
}

// parseFunctionRest parses the parameter list and body shared by function
// expressions and methods.
func (p *Parser) parseFunctionRest(start span.Position, name *token.Token) *ast.FuncExpr {
	fn := &ast.FuncExpr{Name: name}

	if _, ok := p.expect(token.LPAREN); !ok {
		p.synchronize()
		return nil
	}
	for !p.check(token.RPAREN) {
		param, ok := p.expect(token.IDENT)
		if !ok {
			p.synchronize()
			return nil
		}
		fn.Params = append(fn.Params, param)
		if !p.check(token.COMMA) {
			break
		}
		p.advance() // consume ','
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		p.synchronize()
		return nil
	}

	// loops do not extend into a nested function body
	savedLoops := p.loopDepth
	p.loopDepth = 0
	p.funcDepth++
	fn.Body = p.parseBlock().Stmts
	p.funcDepth--
	p.loopDepth = savedLoops

	fn.ExprBase = makeExprBase(start, p.prevEnd())
	return fn
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
