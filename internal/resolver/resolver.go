// Package resolver performs the static resolution pass.
//
// It walks the program once, forward, through the same statement skeleton as
// the interpreter, with every binding holding a Placeholder. Each variable,
// assignment, this and super reference gets the number of scopes between the
// use and its declaration written into its ast.Slot. Nothing is printed and
// nothing is executed.
package resolver

import (
	"errors"
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/flow"
	"lox-lang/internal/scope"
	"lox-lang/internal/token"
)

// Placeholder is the only value the resolver binds.
type Placeholder struct{}

// Error is a static error found while resolving.
type Error struct {
	Code    string
	Message string
	Token   token.Token
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(code string, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Token: tok}
}

// Resolver resolves files against a persistent top-level scope, so that
// declarations made by one Resolve call are visible to the next (REPL).
type Resolver struct {
	globals *scope.Scope[Placeholder]

	// enclosing method context
	inMethod   bool
	inSubclass bool
}

// New creates a resolver whose top-level scope already holds names.
func New(names []string) *Resolver {
	r := &Resolver{}
	r.Sync(names)
	return r
}

// Sync replaces the top-level scope with one declaring exactly names. It is
// used to realign with the runtime after a failed run.
func (r *Resolver) Sync(names []string) {
	r.globals = scope.New[Placeholder](nil)
	for _, name := range names {
		// names come from a scope, so they are unique
		_, _ = r.globals.Declare(name, true, Placeholder{})
	}
}

// Globals returns the names declared at top level, sorted.
func (r *Resolver) Globals() []string {
	return r.globals.Names()
}

// Resolve resolves every statement of file and fills the slots of its nodes.
// It stops at the first error.
func (r *Resolver) Resolve(file *ast.File) error {
	_, err := flow.Statements[Placeholder](r, file.Body, r.globals)
	return err
}

// ---- flow.Evaluator ----

// Test walks both branches of every condition.
func (r *Resolver) Test(Placeholder) flow.Branch { return flow.Both }

// Forever walks a condition-less loop body once.
func (r *Resolver) Forever() flow.Branch { return flow.Both }

// Print has no effect.
func (r *Resolver) Print(Placeholder) error { return nil }

// Nil returns the placeholder.
func (r *Resolver) Nil() Placeholder { return Placeholder{} }

// Wrap turns an environment error into a static error.
func (r *Resolver) Wrap(tok token.Token, err error) error {
	if errors.Is(err, scope.ErrRedeclared) {
		return errorf("E3002", tok, "'%s' is already declared in this scope", tok.Lexeme)
	}
	return errorf("E3001", tok, "%v", err)
}

// Inherit accepts any superclass; its kind is only known at run time.
func (r *Resolver) Inherit(token.Token, Placeholder) error { return nil }

// Class resolves the methods of a class. Method names are not declared; each
// method body sees `this` one scope out and `super` two scopes out.
func (r *Resolver) Class(stmt *ast.ClassStmt, super Placeholder, hasSuper bool, env *scope.Scope[Placeholder]) (Placeholder, error) {
	outer := env
	if hasSuper {
		outer = env.Fork()
		_, _ = outer.Declare("super", false, Placeholder{})
	}

	savedMethod, savedSubclass := r.inMethod, r.inSubclass
	r.inMethod, r.inSubclass = true, hasSuper
	defer func() { r.inMethod, r.inSubclass = savedMethod, savedSubclass }()

	for _, method := range stmt.Methods {
		this := outer.Fork()
		_, _ = this.Declare("this", false, Placeholder{})
		if err := r.function(method, this); err != nil {
			return Placeholder{}, err
		}
	}
	return Placeholder{}, nil
}

// Eval resolves an expression.
func (r *Resolver) Eval(expr ast.Expr, env *scope.Scope[Placeholder]) (Placeholder, error) {
	var none Placeholder

	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		return none, nil

	case *ast.ListLiteral:
		return none, r.all(env, e.Elements...)

	case *ast.IdentExpr:
		return none, r.slot(env, &e.Slot, e.Name)

	case *ast.AssignExpr:
		if _, err := r.Eval(e.Value, env); err != nil {
			return none, err
		}
		return none, r.slot(env, &e.Slot, e.Name)

	case *ast.UnaryExpr:
		return r.Eval(e.Operand, env)

	case *ast.BinaryExpr:
		return none, r.all(env, e.Left, e.Right)

	case *ast.GroupingExpr:
		return r.Eval(e.Inner, env)

	case *ast.CallExpr:
		if _, err := r.Eval(e.Callee, env); err != nil {
			return none, err
		}
		return none, r.all(env, e.Args...)

	case *ast.GetExpr:
		return r.Eval(e.Object, env)

	case *ast.SetExpr:
		return none, r.all(env, e.Value, e.Object)

	case *ast.IndexExpr:
		return none, r.all(env, e.Object, e.Index)

	case *ast.ThisExpr:
		if !r.inMethod {
			return none, errorf("E3003", e.Keyword, "can't use 'this' outside of a method")
		}
		return none, r.slot(env, &e.Slot, e.Keyword)

	case *ast.SuperExpr:
		if !r.inMethod || !r.inSubclass {
			return none, errorf("E3004", e.Keyword, "can't use 'super' outside of a subclass method")
		}
		return none, r.slot(env, &e.Slot, e.Keyword)

	case *ast.FuncExpr:
		if e.Name != nil {
			if _, err := env.Declare(e.Name.Lexeme, false, none); err != nil {
				return none, r.Wrap(*e.Name, err)
			}
		}
		// closures inside a method keep seeing its this and super
		return none, r.function(e, env)

	default:
		panic(fmt.Sprintf("resolver: unknown expression %T", expr))
	}
}

// function resolves parameters and body in a fresh scope under env.
func (r *Resolver) function(fn *ast.FuncExpr, env *scope.Scope[Placeholder]) error {
	body := env.Fork()
	for _, param := range fn.Params {
		if _, err := body.Declare(param.Lexeme, true, Placeholder{}); err != nil {
			return r.Wrap(param, err)
		}
	}
	_, err := flow.Statements[Placeholder](r, fn.Body, body)
	return err
}

func (r *Resolver) all(env *scope.Scope[Placeholder], exprs ...ast.Expr) error {
	for _, expr := range exprs {
		if _, err := r.Eval(expr, env); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) slot(env *scope.Scope[Placeholder], slot *ast.Slot, name token.Token) error {
	distance, ok := env.Depth(name.Lexeme)
	if !ok {
		return errorf("E3001", name, "undefined variable '%s'", name.Lexeme)
	}
	slot.Resolve(distance)
	return nil
}
