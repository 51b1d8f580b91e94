// Package flow executes statements for any value domain.
//
// The resolver and the interpreter walk statements the same way: they only
// differ in what an expression evaluates to, how a condition is tested and
// what printing or declaring a class means. Exec captures the shared walk and
// reports jumps (break, continue, return) as Signal values instead of
// unwinding the Go stack.
package flow

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/scope"
	"lox-lang/internal/token"
)

// Kind tells what a statement asks its enclosing construct to do.
type Kind int

const (
	Noop Kind = iota
	Break
	Continue
	Return
)

func (k Kind) String() string {
	switch k {
	case Noop:
		return "noop"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Signal is the outcome of executing a statement. Value is only meaningful
// for Return; Token is the keyword that raised the jump.
type Signal[V any] struct {
	Kind  Kind
	Value V
	Token token.Token
}

// Branch is the decision an Evaluator makes about a condition.
type Branch int

const (
	Skip Branch = iota // condition failed
	Take               // condition held
	Both               // walk every path once (static analysis)
)

// Evaluator supplies the value-specific half of statement execution.
type Evaluator[V any] interface {
	// Eval evaluates an expression in env.
	Eval(expr ast.Expr, env *scope.Scope[V]) (V, error)
	// Test decides which branch a condition value selects.
	Test(cond V) Branch
	// Forever is the decision used for a loop without a condition.
	Forever() Branch
	// Print handles a print statement.
	Print(v V) error
	// Nil is the value of a missing initializer or return value.
	Nil() V
	// Inherit checks that super can be inherited from by the class name.
	// It runs before the class name is declared.
	Inherit(name token.Token, super V) error
	// Class builds a class value. The class name is already declared in env.
	Class(stmt *ast.ClassStmt, super V, hasSuper bool, env *scope.Scope[V]) (V, error)
	// Wrap attributes an environment error to the token that caused it.
	Wrap(tok token.Token, err error) error
}

// Statements executes stmts in order in env and stops at the first jump.
func Statements[V any](ev Evaluator[V], stmts []ast.Stmt, env *scope.Scope[V]) (Signal[V], error) {
	for _, stmt := range stmts {
		sig, err := Exec(ev, stmt, env)
		if err != nil || sig.Kind != Noop {
			return sig, err
		}
	}
	return Signal[V]{}, nil
}

// Exec executes a single statement in env.
func Exec[V any](ev Evaluator[V], stmt ast.Stmt, env *scope.Scope[V]) (Signal[V], error) {
	var none Signal[V]

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := ev.Eval(s.Expr, env)
		return none, err

	case *ast.PrintStmt:
		v, err := ev.Eval(s.Expr, env)
		if err != nil {
			return none, err
		}
		return none, ev.Print(v)

	case *ast.VarDeclStmt:
		value := ev.Nil()
		if s.Init != nil {
			v, err := ev.Eval(s.Init, env)
			if err != nil {
				return none, err
			}
			value = v
		}
		if _, err := env.Declare(s.Name.Lexeme, !s.IsConst, value); err != nil {
			return none, ev.Wrap(s.Name, err)
		}
		return none, nil

	case *ast.BlockStmt:
		return Statements(ev, s.Stmts, env.Fork())

	case *ast.IfStmt:
		return execIf(ev, s, env)

	case *ast.ForStmt:
		return execFor(ev, s, env)

	case *ast.ReturnStmt:
		value := ev.Nil()
		if s.Value != nil {
			v, err := ev.Eval(s.Value, env)
			if err != nil {
				return none, err
			}
			value = v
		}
		return Signal[V]{Kind: Return, Value: value, Token: s.Keyword}, nil

	case *ast.BreakStmt:
		return Signal[V]{Kind: Break, Token: s.Keyword}, nil

	case *ast.ContinueStmt:
		return Signal[V]{Kind: Continue, Token: s.Keyword}, nil

	case *ast.ClassStmt:
		return none, execClass(ev, s, env)

	default:
		panic(fmt.Sprintf("flow: unknown statement %T", stmt))
	}
}

func execIf[V any](ev Evaluator[V], s *ast.IfStmt, env *scope.Scope[V]) (Signal[V], error) {
	cond, err := ev.Eval(s.Condition, env)
	if err != nil {
		return Signal[V]{}, err
	}

	switch ev.Test(cond) {
	case Take:
		return Exec(ev, s.Then, env)
	case Skip:
		if s.Else == nil {
			return Signal[V]{}, nil
		}
		return Exec(ev, s.Else, env)
	default:
		// both arms are walked; neither decides the outcome
		if _, err := Exec(ev, s.Then, env); err != nil {
			return Signal[V]{}, err
		}
		if s.Else != nil {
			if _, err := Exec(ev, s.Else, env); err != nil {
				return Signal[V]{}, err
			}
		}
		return Signal[V]{}, nil
	}
}

func execFor[V any](ev Evaluator[V], s *ast.ForStmt, env *scope.Scope[V]) (Signal[V], error) {
	for {
		// condition and closer get a scope of their own each time round, so a
		// named function expression in them is declared once per evaluation
		branch := ev.Forever()
		if s.Condition != nil {
			cond, err := ev.Eval(s.Condition, env.Fork())
			if err != nil {
				return Signal[V]{}, err
			}
			branch = ev.Test(cond)
		}
		if branch == Skip {
			return Signal[V]{}, nil
		}

		sig, err := Exec(ev, s.Body, env)
		if err != nil {
			return Signal[V]{}, err
		}
		// with Both the loop may run zero times, so a jump in the body
		// decides nothing and the statements after the loop stay reachable
		if branch != Both {
			switch sig.Kind {
			case Break:
				return Signal[V]{}, nil
			case Return:
				return sig, nil
			}
		}

		if s.Closer != nil {
			if _, err := Exec(ev, s.Closer, env.Fork()); err != nil {
				return Signal[V]{}, err
			}
		}

		// a single pass covers every path of the body and closer
		if branch == Both {
			return Signal[V]{}, nil
		}
	}
}

func execClass[V any](ev Evaluator[V], s *ast.ClassStmt, env *scope.Scope[V]) error {
	var super V
	hasSuper := s.Superclass != nil
	if hasSuper {
		v, err := ev.Eval(s.Superclass, env)
		if err != nil {
			return err
		}
		// a rejected superclass must not leave the name bound
		if err := ev.Inherit(s.Name, v); err != nil {
			return err
		}
		super = v
	}

	// methods may refer to the class by name
	binding, err := env.Declare(s.Name.Lexeme, false, ev.Nil())
	if err != nil {
		return ev.Wrap(s.Name, err)
	}

	class, err := ev.Class(s, super, hasSuper, env)
	if err != nil {
		return err
	}
	binding.Value = class
	return nil
}
