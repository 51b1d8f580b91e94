package runtime

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/flow"
	"lox-lang/internal/token"
	"math"
)

// DefaultMaxDepth bounds nested calls when no limit is configured.
const DefaultMaxDepth = 2048

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Message string
	Token   token.Token
}

func (e *RuntimeError) Error() string {
	start := e.Token.Span.Start
	return fmt.Sprintf("runtime error at %d:%d: %s", start.Line, start.Column, e.Message)
}

func errorAt(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Token: tok}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks a resolved AST and executes it.
type Interpreter struct {
	globals *Environment
	output  io.Writer
	logger  *slog.Logger

	maxDepth int
	depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for debug and warning events.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = logger }
}

// WithMaxDepth sets the maximum number of nested calls.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxDepth = n
		}
	}
}

// New creates a new interpreter writing print output to output, with the
// native functions declared in its top-level scope.
func New(output io.Writer, opts ...Option) *Interpreter {
	i := &Interpreter{
		globals:  NewEnvironment(nil),
		output:   output,
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	if err := RegisterNatives(i.globals); err != nil {
		panic(fmt.Sprintf("runtime: registering natives: %v", err))
	}
	return i
}

// Globals returns the top-level environment. It persists across Interpret
// calls, which is what the REPL relies on.
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Interpret executes a resolved file in the top-level environment.
func (i *Interpreter) Interpret(file *ast.File) error {
	i.depth = 0
	sig, err := flow.Statements[Value](i, file.Body, i.globals)
	if err != nil {
		return err
	}
	if sig.Kind != flow.Noop {
		panic(fmt.Sprintf("runtime: '%s' escaped to top level at %s", sig.Token.Lexeme, sig.Token.Span.Start))
	}
	return nil
}

// ============================================================
// flow.Evaluator
// ============================================================

// Test takes the branch only for the exact value true.
func (i *Interpreter) Test(cond Value) flow.Branch {
	if b, ok := cond.(Bool); ok && bool(b) {
		return flow.Take
	}
	return flow.Skip
}

// Forever keeps a condition-less loop running until break or return.
func (i *Interpreter) Forever() flow.Branch { return flow.Take }

// Print writes the display form of v and a newline.
func (i *Interpreter) Print(v Value) error {
	_, err := fmt.Fprintln(i.output, v.String())
	return err
}

// Nil returns nil.
func (i *Interpreter) Nil() Value { return Nil{} }

// Wrap turns an environment error into a runtime error at tok.
func (i *Interpreter) Wrap(tok token.Token, err error) error {
	return &RuntimeError{Message: err.Error(), Token: tok}
}

// Inherit rejects a superclass that is not a class.
func (i *Interpreter) Inherit(name token.Token, super Value) error {
	if _, ok := super.(*Class); !ok {
		return errorAt(name, "Cannot inherit from %s", super.TypeName())
	}
	return nil
}

// Class builds a class value. Methods close over env, or over a child of env
// declaring `super` when there is a superclass.
func (i *Interpreter) Class(stmt *ast.ClassStmt, super Value, hasSuper bool, env *Environment) (Value, error) {
	class := &Class{Name: stmt.Name.Lexeme, Methods: map[string]*Function{}}

	closure := env
	if hasSuper {
		// checked by Inherit
		sc := super.(*Class)
		class.Super = sc
		closure = env.Fork()
		_, _ = closure.Declare("super", false, sc)
	}

	for _, m := range stmt.Methods {
		fn := newFunction(m, closure)
		if fn.Name == "constructor" {
			class.Constructor = fn
			continue
		}
		class.Methods[fn.Name] = fn
	}

	i.logger.Debug("class declared",
		slog.String("name", class.Name),
		slog.Int("methods", len(class.Methods)),
		slog.Bool("constructor", class.Constructor != nil),
		slog.Bool("subclass", hasSuper))
	return class, nil
}

// ============================================================
// Expression evaluation
// ============================================================

// Eval evaluates an expression in env.
func (i *Interpreter) Eval(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return Number(e.Value), nil
	case *ast.StringLiteral:
		return String(e.Value), nil
	case *ast.BoolLiteral:
		return Bool(e.Value), nil
	case *ast.NilLiteral:
		return Nil{}, nil

	case *ast.ListLiteral:
		items := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := i.Eval(el, env)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &List{Items: items}, nil

	case *ast.IdentExpr:
		return i.lookup(env, &e.Slot, e.Name, e.Name.Lexeme)

	case *ast.AssignExpr:
		v, err := i.Eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.AssignAt(distance(&e.Slot, e.Name), e.Name.Lexeme, v); err != nil {
			return nil, i.Wrap(e.Name, err)
		}
		return v, nil

	case *ast.UnaryExpr:
		return i.evalUnary(e, env)

	case *ast.BinaryExpr:
		return i.evalBinary(e, env)

	case *ast.GroupingExpr:
		return i.Eval(e.Inner, env)

	case *ast.CallExpr:
		return i.evalCall(e, env)

	case *ast.GetExpr:
		return i.evalGet(e, env)

	case *ast.SetExpr:
		return i.evalSet(e, env)

	case *ast.IndexExpr:
		return i.evalIndex(e, env)

	case *ast.ThisExpr:
		return i.lookup(env, &e.Slot, e.Keyword, "this")

	case *ast.SuperExpr:
		return i.evalSuper(e, env)

	case *ast.FuncExpr:
		fn := newFunction(e, env)
		if e.Name != nil {
			if _, err := env.Declare(fn.Name, false, fn); err != nil {
				return nil, i.Wrap(*e.Name, err)
			}
		}
		return fn, nil

	default:
		panic(fmt.Sprintf("runtime: unknown expression %T", expr))
	}
}

func newFunction(e *ast.FuncExpr, closure *Environment) *Function {
	params := make([]string, len(e.Params))
	for idx, p := range e.Params {
		params[idx] = p.Lexeme
	}
	return &Function{Name: e.FuncName(), Params: params, Body: e.Body, Closure: closure}
}

// distance returns the resolved distance of a slot. An unresolved slot
// means the resolver was skipped, which is a bug in the caller.
func distance(slot *ast.Slot, tok token.Token) int {
	d, ok := slot.Distance()
	if !ok {
		panic(fmt.Sprintf("runtime: unresolved reference '%s' at %s", tok.Lexeme, tok.Span.Start))
	}
	return d
}

func (i *Interpreter) lookup(env *Environment, slot *ast.Slot, tok token.Token, name string) (Value, error) {
	v, err := env.GetAt(distance(slot, tok), name)
	if err != nil {
		return nil, i.Wrap(tok, err)
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr, env *Environment) (Value, error) {
	operand, err := i.Eval(e.Operand, env)
	if err != nil {
		return nil, err
	}

	switch e.Op.Kind {
	case token.MINUS:
		n, ok := operand.(Number)
		if !ok {
			return nil, errorAt(e.Op, "operand of '-' must be a number, got %s", operand.TypeName())
		}
		return -n, nil
	case token.BANG:
		b, ok := operand.(Bool)
		if !ok {
			return nil, errorAt(e.Op, "operand of '!' must be a bool, got %s", operand.TypeName())
		}
		return !b, nil
	default:
		panic(fmt.Sprintf("runtime: unknown unary operator %s", e.Op.Kind))
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr, env *Environment) (Value, error) {
	// Short-circuit for logical operators
	if e.Op.Kind == token.KW_AND || e.Op.Kind == token.KW_OR {
		return i.evalLogical(e, env)
	}

	left, err := i.Eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.Eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	return binary(e.Op, left, right)
}

// evalLogical evaluates and/or. Both operands must be bools; the right one
// is only evaluated when it decides the result.
func (i *Interpreter) evalLogical(e *ast.BinaryExpr, env *Environment) (Value, error) {
	left, err := i.Eval(e.Left, env)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(Bool)
	if !ok {
		return nil, errorAt(e.Op, "operands of '%s' must be bools, got %s", e.Op.Lexeme, left.TypeName())
	}
	if (e.Op.Kind == token.KW_AND && !bool(lb)) || (e.Op.Kind == token.KW_OR && bool(lb)) {
		return lb, nil
	}

	right, err := i.Eval(e.Right, env)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(Bool)
	if !ok {
		return nil, errorAt(e.Op, "operands of '%s' must be bools, got %s", e.Op.Lexeme, right.TypeName())
	}
	return rb, nil
}

// binary applies an arithmetic, comparison or equality operator.
func binary(op token.Token, left, right Value) (Value, error) {
	switch op.Kind {
	case token.EQ:
		return Bool(Equal(left, right)), nil
	case token.NEQ:
		return Bool(!Equal(left, right)), nil

	case token.PLUS:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if lok && rok {
			return ln + rn, nil
		}
		ls, lok := text(left)
		rs, rok := text(right)
		if lok && rok {
			return String(ls + rs), nil
		}
		return nil, errorAt(op, "operands of '+' must be two numbers or two strings, got %s and %s",
			left.TypeName(), right.TypeName())

	case token.MINUS, token.STAR, token.SLASH:
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		if !lok || !rok {
			return nil, errorAt(op, "operands of '%s' must be numbers, got %s and %s",
				op.Lexeme, left.TypeName(), right.TypeName())
		}
		switch op.Kind {
		case token.MINUS:
			return ln - rn, nil
		case token.STAR:
			return ln * rn, nil
		default:
			if rn == 0 {
				return nil, errorAt(op, "division by zero")
			}
			return ln / rn, nil
		}

	case token.LT, token.LTE, token.GT, token.GTE:
		var order int
		ln, lok := left.(Number)
		rn, rok := right.(Number)
		ls, lsok := left.(String)
		rs, rsok := right.(String)
		switch {
		case lok && rok:
			order = cmp.Compare(ln, rn)
		case lsok && rsok:
			order = cmp.Compare(ls, rs)
		default:
			return nil, errorAt(op, "operands of '%s' must be two numbers or two strings, got %s and %s",
				op.Lexeme, left.TypeName(), right.TypeName())
		}
		if math.IsNaN(float64(ln)) || math.IsNaN(float64(rn)) {
			return Bool(false), nil
		}
		switch op.Kind {
		case token.LT:
			return Bool(order < 0), nil
		case token.LTE:
			return Bool(order <= 0), nil
		case token.GT:
			return Bool(order > 0), nil
		default:
			return Bool(order >= 0), nil
		}

	default:
		panic(fmt.Sprintf("runtime: unknown binary operator %s", op.Kind))
	}
}

// ============================================================
// Calls
// ============================================================

func (i *Interpreter) evalCall(e *ast.CallExpr, env *Environment) (Value, error) {
	callee, err := i.Eval(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := i.Eval(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return i.call(callee, args, e.Paren, env)
}

func (i *Interpreter) call(callee Value, args []Value, tok token.Token, env *Environment) (Value, error) {
	switch fn := callee.(type) {
	case *NativeFunction:
		if len(args) != fn.Arity {
			return nil, errorAt(tok, "%s expected %d arguments but got %d", fn.Name, fn.Arity, len(args))
		}
		return fn.Fn(tok, env, args)
	case *Function:
		return i.callFunction(fn, args, tok)
	case *Class:
		return i.instantiate(fn, args, tok)
	default:
		return nil, errorAt(tok, "can only call functions and classes, got %s", callee.TypeName())
	}
}

// callFunction runs a user function in a fresh scope under its closure
// holding the parameters.
func (i *Interpreter) callFunction(fn *Function, args []Value, tok token.Token) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, errorAt(tok, "%s expected %d arguments but got %d", fn, len(fn.Params), len(args))
	}
	if i.depth >= i.maxDepth {
		i.logger.Warn("call depth limit reached", slog.Int("limit", i.maxDepth), slog.String("function", fn.Name))
		return nil, errorAt(tok, "stack overflow: more than %d nested calls", i.maxDepth)
	}
	i.depth++
	defer func() { i.depth-- }()

	env := fn.Closure.Fork()
	for idx, param := range fn.Params {
		// duplicate parameters are rejected by the resolver
		_, _ = env.Declare(param, true, args[idx])
	}

	sig, err := flow.Statements[Value](i, fn.Body, env)
	if err != nil {
		return nil, err
	}
	switch sig.Kind {
	case flow.Return:
		return sig.Value, nil
	case flow.Noop:
		return Nil{}, nil
	default:
		panic(fmt.Sprintf("runtime: '%s' escaped function %s at %s", sig.Token.Lexeme, fn, sig.Token.Span.Start))
	}
}

// instantiate creates an instance and runs the nearest constructor.
func (i *Interpreter) instantiate(class *Class, args []Value, tok token.Token) (Value, error) {
	inst := &Instance{Class: class, Fields: map[string]Value{}}

	ctor, ok := class.FindConstructor()
	if !ok {
		if len(args) != 0 {
			return nil, errorAt(tok, "%s expected 0 arguments but got %d", class, len(args))
		}
		return inst, nil
	}
	if _, err := i.callFunction(ctor.Bind(inst), args, tok); err != nil {
		return nil, err
	}
	return inst, nil
}

// ============================================================
// Properties, indexing and super
// ============================================================

func (i *Interpreter) evalGet(e *ast.GetExpr, env *Environment) (Value, error) {
	obj, err := i.Eval(e.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, errorAt(e.Name, "only instances have properties, got %s", obj.TypeName())
	}

	if v, ok := inst.Fields[e.Name.Lexeme]; ok {
		return v, nil
	}
	if m, ok := inst.Class.FindMethod(e.Name.Lexeme); ok {
		return m.Bind(inst), nil
	}
	return nil, errorAt(e.Name, "undefined property '%s' on %s", e.Name.Lexeme, inst)
}

func (i *Interpreter) evalSet(e *ast.SetExpr, env *Environment) (Value, error) {
	obj, err := i.Eval(e.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, errorAt(e.Name, "only instances have fields, got %s", obj.TypeName())
	}

	v, err := i.Eval(e.Value, env)
	if err != nil {
		return nil, err
	}
	inst.Fields[e.Name.Lexeme] = v
	return v, nil
}

func (i *Interpreter) evalIndex(e *ast.IndexExpr, env *Environment) (Value, error) {
	obj, err := i.Eval(e.Object, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.Eval(e.Index, env)
	if err != nil {
		return nil, err
	}

	list, ok := obj.(*List)
	if !ok {
		return nil, errorAt(e.Bracket, "only lists can be indexed, got %s", obj.TypeName())
	}
	n, ok := idx.(Number)
	if !ok {
		return nil, errorAt(e.Bracket, "list index must be a number, got %s", idx.TypeName())
	}
	if float64(n) != math.Trunc(float64(n)) {
		return nil, errorAt(e.Bracket, "list index must be an integer, got %s", n)
	}
	if n < 0 || n >= Number(len(list.Items)) {
		return nil, errorAt(e.Bracket, "index %s out of range for list of length %d", n, len(list.Items))
	}
	return list.Items[int(n)], nil
}

// evalSuper looks the method up from the superclass stored one scope above
// the current `this`, and binds it to that instance. super.constructor
// reaches the nearest inherited constructor.
func (i *Interpreter) evalSuper(e *ast.SuperExpr, env *Environment) (Value, error) {
	d := distance(&e.Slot, e.Keyword)
	sv, err := env.GetAt(d, "super")
	if err != nil {
		return nil, i.Wrap(e.Keyword, err)
	}
	tv, err := env.GetAt(d-1, "this")
	if err != nil {
		return nil, i.Wrap(e.Keyword, err)
	}
	super, this := sv.(*Class), tv.(*Instance)

	name := e.Method.Lexeme
	method, ok := super.FindMethod(name)
	if name == "constructor" {
		method, ok = super.FindConstructor()
	}
	if !ok {
		return nil, errorAt(e.Method, "undefined superclass method '%s'", name)
	}
	return method.Bind(this), nil
}
