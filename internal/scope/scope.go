// Package scope implements the lexical environment chain shared by the
// resolver and the interpreter.
//
// A Scope maps names to bindings and links to an optional parent. Scopes are
// plain heap objects: a closure that holds a scope keeps the whole chain
// above it alive, and many children may share one parent.
package scope

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrRedeclared is returned when a name is declared twice in one scope.
	ErrRedeclared = errors.New("already declared in this scope")
	// ErrImmutable is returned when assigning to a const binding.
	ErrImmutable = errors.New("cannot assign to constant")
	// ErrUndefined is returned when a name cannot be found.
	ErrUndefined = errors.New("undefined variable")
)

// Binding is a declared value together with its mutability.
type Binding[V any] struct {
	Mutable bool
	Value   V
}

// Scope is one level of the environment chain.
type Scope[V any] struct {
	bindings map[string]*Binding[V]
	parent   *Scope[V]
}

// New creates a scope with an optional parent.
func New[V any](parent *Scope[V]) *Scope[V] {
	return &Scope[V]{
		bindings: make(map[string]*Binding[V]),
		parent:   parent,
	}
}

// Fork creates a child scope of s.
func (s *Scope[V]) Fork() *Scope[V] {
	return New(s)
}

// Parent returns the enclosing scope, or nil for the outermost one.
func (s *Scope[V]) Parent() *Scope[V] {
	return s.parent
}

// Declare inserts name into this scope only and returns the new binding.
func (s *Scope[V]) Declare(name string, mutable bool, value V) (*Binding[V], error) {
	if _, exists := s.bindings[name]; exists {
		return nil, fmt.Errorf("variable '%s' %w", name, ErrRedeclared)
	}
	b := &Binding[V]{Mutable: mutable, Value: value}
	s.bindings[name] = b
	return b, nil
}

// Depth returns how many parents must be walked from s to reach the scope
// declaring name.
func (s *Scope[V]) Depth(name string) (int, bool) {
	depth := 0
	for env := s; env != nil; env = env.parent {
		if _, exists := env.bindings[name]; exists {
			return depth, true
		}
		depth++
	}
	return 0, false
}

// GetAt reads name from the scope exactly distance parents above s.
func (s *Scope[V]) GetAt(distance int, name string) (V, error) {
	b, err := s.bindingAt(distance, name)
	if err != nil {
		var zero V
		return zero, err
	}
	return b.Value, nil
}

// AssignAt writes name in the scope exactly distance parents above s.
func (s *Scope[V]) AssignAt(distance int, name string, value V) error {
	b, err := s.bindingAt(distance, name)
	if err != nil {
		return err
	}
	if !b.Mutable {
		return fmt.Errorf("%w '%s'", ErrImmutable, name)
	}
	b.Value = value
	return nil
}

// Names returns the names declared directly in s, sorted.
func (s *Scope[V]) Names() []string {
	return slices.Sorted(maps.Keys(s.bindings))
}

func (s *Scope[V]) bindingAt(distance int, name string) (*Binding[V], error) {
	env := s
	for i := 0; i < distance && env != nil; i++ {
		env = env.parent
	}
	if env == nil {
		return nil, fmt.Errorf("%w '%s'", ErrUndefined, name)
	}
	b, exists := env.bindings[name]
	if !exists {
		return nil, fmt.Errorf("%w '%s'", ErrUndefined, name)
	}
	return b, nil
}
