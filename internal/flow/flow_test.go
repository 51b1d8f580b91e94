package flow

import (
	"errors"
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/scope"
	"lox-lang/internal/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// counter is a minimal evaluator over ints: comparisons yield 1 or 0 and any
// non-zero value is true. With both set it behaves like a static pass.
type counter struct {
	both    bool
	printed []int

	sawPlaceholder bool
}

func (c *counter) Eval(expr ast.Expr, env *scope.Scope[int]) (int, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return int(e.Value), nil
	case *ast.GroupingExpr:
		return c.Eval(e.Inner, env)
	case *ast.IdentExpr:
		d, ok := env.Depth(e.Name.Lexeme)
		if !ok {
			return 0, fmt.Errorf("undefined '%s'", e.Name.Lexeme)
		}
		return env.GetAt(d, e.Name.Lexeme)
	case *ast.AssignExpr:
		v, err := c.Eval(e.Value, env)
		if err != nil {
			return 0, err
		}
		d, ok := env.Depth(e.Name.Lexeme)
		if !ok {
			return 0, fmt.Errorf("undefined '%s'", e.Name.Lexeme)
		}
		return v, env.AssignAt(d, e.Name.Lexeme, v)
	case *ast.BinaryExpr:
		l, err := c.Eval(e.Left, env)
		if err != nil {
			return 0, err
		}
		r, err := c.Eval(e.Right, env)
		if err != nil {
			return 0, err
		}
		switch e.Op.Kind {
		case token.PLUS:
			return l + r, nil
		case token.LT:
			return truth(l < r), nil
		case token.EQ:
			return truth(l == r), nil
		}
	}
	return 0, fmt.Errorf("unsupported expression %T", expr)
}

func truth(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *counter) Test(cond int) Branch {
	if c.both {
		return Both
	}
	if cond != 0 {
		return Take
	}
	return Skip
}

func (c *counter) Forever() Branch {
	if c.both {
		return Both
	}
	return Take
}

func (c *counter) Print(v int) error {
	c.printed = append(c.printed, v)
	return nil
}

func (c *counter) Nil() int { return 0 }

// Inherit only accepts superclasses built by Class.
func (c *counter) Inherit(name token.Token, super int) error {
	if super < 100 {
		return fmt.Errorf("%s: cannot inherit from %d", name.Lexeme, super)
	}
	return nil
}

func (c *counter) Class(stmt *ast.ClassStmt, super int, hasSuper bool, env *scope.Scope[int]) (int, error) {
	v, err := env.GetAt(0, stmt.Name.Lexeme)
	c.sawPlaceholder = err == nil && v == 0
	if hasSuper {
		return super + len(stmt.Methods), nil
	}
	return 100 + len(stmt.Methods), nil
}

func (c *counter) Wrap(tok token.Token, err error) error {
	return fmt.Errorf("%s: %w", tok.Lexeme, err)
}

func parse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	tokens, diags := lexer.New(source, "test.lox").Tokenize()
	if len(diags) > 0 {
		t.Fatalf("lex errors: %v", diags)
	}
	file, diags := parser.New(tokens).ParseFile()
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	return file.Body
}

func run(t *testing.T, ev *counter, source string) (Signal[int], error) {
	t.Helper()
	return Statements[int](ev, parse(t, source), scope.New[int](nil))
}

func TestLoops(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []int
	}{
		{
			name: "break and continue",
			source: `
let i = 0;
let sum = 0;
for ;; {
  i = i + 1;
  if i == 3 { continue; }
  if 5 < i { break; }
  sum = sum + i;
}
print sum;`,
			want: []int{12},
		},
		{
			name: "continue runs the closer",
			source: `
let n = 0;
for let i = 0; i < 5; i = i + 1 {
  if i == 2 { continue; }
  n = n + 1;
}
print n;`,
			want: []int{4},
		},
		{
			name: "while loop",
			source: `
let i = 0;
while i < 3 { print i; i = i + 1; }`,
			want: []int{0, 1, 2},
		},
		{
			name:   "false condition never runs the body",
			source: `for ; 0; { print 1; } print 2;`,
			want:   []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &counter{}
			sig, err := run(t, ev, tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sig.Kind != Noop {
				t.Errorf("expected noop signal, got %s", sig.Kind)
			}
			if diff := cmp.Diff(tt.want, ev.printed); diff != "" {
				t.Errorf("printed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReturnLeavesLoop(t *testing.T) {
	keyword := token.Token{Kind: token.KW_RETURN, Lexeme: "return"}
	stmts := []ast.Stmt{
		&ast.ForStmt{Body: &ast.BlockStmt{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Keyword: keyword, Value: &ast.NumberLiteral{Value: 7}},
		}}},
		&ast.PrintStmt{Expr: &ast.NumberLiteral{Value: 1}},
	}

	ev := &counter{}
	sig, err := Statements[int](ev, stmts, scope.New[int](nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Kind != Return || sig.Value != 7 || sig.Token.Lexeme != "return" {
		t.Errorf("expected return 7, got %+v", sig)
	}
	if len(ev.printed) != 0 {
		t.Errorf("statements after return must not run, printed %v", ev.printed)
	}
}

func TestBlockScope(t *testing.T) {
	ev := &counter{}
	_, err := run(t, ev, `let x = 1; { let x = 2; print x; } print x;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{2, 1}, ev.printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}

func TestRedeclarationIsWrapped(t *testing.T) {
	_, err := run(t, &counter{}, `let x = 1; let x = 2;`)
	if !errors.Is(err, scope.ErrRedeclared) {
		t.Fatalf("expected ErrRedeclared, got %v", err)
	}
	if err.Error() != "x: variable 'x' already declared in this scope" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestBothWalksEveryPathOnce(t *testing.T) {
	source := `
if 0 { print 1; } else { print 2; }
for ;; { print 3; }
for let i = 0; i < 1; i = i + 1 { print 4; }
print 5;`
	ev := &counter{both: true}
	sig, err := run(t, ev, source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Kind != Noop {
		t.Errorf("expected noop signal, got %s", sig.Kind)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, ev.printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}

func TestBothIgnoresJumpsInsideIf(t *testing.T) {
	ev := &counter{both: true}
	_, err := run(t, ev, `for ;; { if 1 { break; } else { continue; } print 1; }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1}, ev.printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}

func TestClassDeclaresNameFirst(t *testing.T) {
	ev := &counter{}
	_, err := run(t, ev, `class A { m() {} n() {} } print A;`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ev.sawPlaceholder {
		t.Error("class name should be declared before the class is built")
	}
	if diff := cmp.Diff([]int{102}, ev.printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}

func TestClassBindingIsConst(t *testing.T) {
	_, err := run(t, &counter{}, `class A {} A = 1;`)
	if !errors.Is(err, scope.ErrImmutable) {
		t.Fatalf("expected ErrImmutable, got %v", err)
	}
}

func TestBothWalksPastJumpsInLoopBody(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "return", source: `for ; 1; { return 1; } print 2;`},
		{name: "break", source: `for ;; { break; } print 2;`},
		{name: "return with closer", source: `let i = 0; for ; i < 1; i = i + 1 { return 1; } print 2;`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &counter{both: true}
			sig, err := run(t, ev, tt.source)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sig.Kind != Noop {
				t.Errorf("expected noop signal, got %s", sig.Kind)
			}
			if ev.printed[len(ev.printed)-1] != 2 {
				t.Errorf("statement after the loop was not walked, printed %v", ev.printed)
			}
		})
	}
}

func TestRejectedSuperclassLeavesNameFree(t *testing.T) {
	env := scope.New[int](nil)
	_, err := Statements[int](&counter{}, parse(t, `let n = 1; class B extends n {}`), env)
	if err == nil || err.Error() != "B: cannot inherit from 1" {
		t.Fatalf("expected inherit error, got %v", err)
	}
	if _, ok := env.Depth("B"); ok {
		t.Error("class name should not be declared after a rejected superclass")
	}

	ev := &counter{}
	if _, err := Statements[int](ev, parse(t, `class B {} print B;`), env); err != nil {
		t.Fatalf("redeclaring the class failed: %v", err)
	}
	if diff := cmp.Diff([]int{100}, ev.printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}
