// Package runtime implements the interpreter and runtime value system for lox-lang.
package runtime

import (
	"fmt"
	"lox-lang/internal/ast"
	"lox-lang/internal/scope"
	"strconv"
	"strings"
)

// Environment is the runtime scope chain.
type Environment = scope.Scope[Value]

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return scope.New(parent)
}

// Value is the interface for all runtime values. The set of implementations
// is closed.
type Value interface {
	TypeName() string
	String() string
	value()
}

// ---- Primitive values ----

// Number is the only numeric type.
type Number float64

func (Number) TypeName() string { return "number" }
func (v Number) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (Number) value()           {}

// String is an immutable string value.
type String string

func (String) TypeName() string { return "string" }
func (v String) String() string { return string(v) }
func (String) value()           {}

// Char is a single character, produced by chars().
type Char rune

func (Char) TypeName() string { return "char" }
func (v Char) String() string { return string(rune(v)) }
func (Char) value()           {}

// Bool is true or false.
type Bool bool

func (Bool) TypeName() string { return "bool" }
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }
func (Bool) value()           {}

// Nil is the absence of a value.
type Nil struct{}

func (Nil) TypeName() string { return "nil" }
func (Nil) String() string   { return "nil" }
func (Nil) value()           {}

// ---- List value ----

// List is a mutable ordered sequence shared by reference.
type List struct {
	Items []Value
}

func (*List) TypeName() string { return "list" }
func (v *List) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = quoted(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*List) value() {}

// quoted renders list elements: strings and chars keep their quotes.
func quoted(v Value) string {
	switch val := v.(type) {
	case String:
		return fmt.Sprintf("\"%s\"", string(val))
	case Char:
		return fmt.Sprintf("'%c'", rune(val))
	default:
		return v.String()
	}
}

// ---- Callable values ----

// Function is a user-defined function closing over its defining scope.
type Function struct {
	Name    string
	Params  []string
	Body    []ast.Stmt
	Closure *Environment

	// set on a bound method
	method *Function
	this   *Instance
}

func (*Function) TypeName() string { return "function" }
func (v *Function) String() string {
	if v.Name == "" {
		return "<fun>"
	}
	return fmt.Sprintf("<fun %s>", v.Name)
}
func (*Function) value() {}

// Bind returns a copy of the method whose closure declares `this`.
func (v *Function) Bind(this *Instance) *Function {
	env := v.Closure.Fork()
	_, _ = env.Declare("this", false, this)
	return &Function{Name: v.Name, Params: v.Params, Body: v.Body, Closure: env, method: v, this: this}
}

// NativeFunction is a builtin with a fixed arity.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    NativeFn
}

func (*NativeFunction) TypeName() string { return "function" }
func (v *NativeFunction) String() string { return fmt.Sprintf("<native fun %s>", v.Name) }
func (*NativeFunction) value()           {}

// ---- OOP values ----

// Class is a class declaration: its methods close over the scope the class
// was declared in (plus a `super` scope when it has a superclass).
type Class struct {
	Name        string
	Super       *Class // may be nil
	Methods     map[string]*Function
	Constructor *Function // may be nil
}

func (*Class) TypeName() string { return "class" }
func (v *Class) String() string { return fmt.Sprintf("<class %s>", v.Name) }
func (*Class) value()           {}

// FindMethod looks a method up along the superclass chain.
func (v *Class) FindMethod(name string) (*Function, bool) {
	for c := v; c != nil; c = c.Super {
		if m, ok := c.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindConstructor returns the nearest constructor along the superclass chain.
func (v *Class) FindConstructor() (*Function, bool) {
	for c := v; c != nil; c = c.Super {
		if c.Constructor != nil {
			return c.Constructor, true
		}
	}
	return nil, false
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func (*Instance) TypeName() string { return "instance" }
func (v *Instance) String() string { return fmt.Sprintf("<%s instance>", v.Class.Name) }
func (*Instance) value()           {}

// ---- Helpers ----

// Equal reports whether two values are equal: scalars by value, everything
// else by identity. Two bound methods are equal when they bind the same
// method to the same instance. Values of different types are never equal.
func Equal(a, b Value) bool {
	fa, ok := a.(*Function)
	if !ok || fa.this == nil {
		return a == b
	}
	fb, ok := b.(*Function)
	if !ok || fb.this == nil {
		return a == b
	}
	return fa.method == fb.method && fa.this == fb.this
}

// text returns the contents of a string or char.
func text(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Char:
		return string(rune(val)), true
	default:
		return "", false
	}
}
