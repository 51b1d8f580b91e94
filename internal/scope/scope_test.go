package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeclareAndGet(t *testing.T) {
	global := New[int](nil)
	b, err := global.Declare("x", true, 1)
	require.NoError(t, err)
	require.Equal(t, 1, b.Value)

	v, err := global.GetAt(0, "x")
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestRedeclareSameScope(t *testing.T) {
	global := New[int](nil)
	_, err := global.Declare("x", true, 1)
	require.NoError(t, err)

	_, err = global.Declare("x", true, 2)
	require.ErrorIs(t, err, ErrRedeclared)
	require.EqualError(t, err, "variable 'x' already declared in this scope")

	// the original binding is untouched
	v, err := global.GetAt(0, "x")
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestShadowingInChild(t *testing.T) {
	global := New[string](nil)
	_, err := global.Declare("x", true, "outer")
	require.NoError(t, err)

	inner := global.Fork()
	_, err = inner.Declare("x", true, "inner")
	require.NoError(t, err)

	d, ok := inner.Depth("x")
	require.True(t, ok)
	require.Equal(t, 0, d)

	v, err := inner.GetAt(1, "x")
	require.NoError(t, err)
	require.Equal(t, "outer", v)
}

func TestDepth(t *testing.T) {
	global := New[int](nil)
	_, err := global.Declare("g", true, 0)
	require.NoError(t, err)

	leaf := global.Fork().Fork().Fork()
	d, ok := leaf.Depth("g")
	require.True(t, ok)
	require.Equal(t, 3, d)

	_, ok = leaf.Depth("missing")
	require.False(t, ok)
}

func TestAssignAt(t *testing.T) {
	global := New[int](nil)
	_, err := global.Declare("x", true, 1)
	require.NoError(t, err)
	_, err = global.Declare("k", false, 1)
	require.NoError(t, err)

	child := global.Fork()
	require.NoError(t, child.AssignAt(1, "x", 5))
	v, err := global.GetAt(0, "x")
	require.NoError(t, err)
	require.Equal(t, 5, v)

	err = child.AssignAt(1, "k", 5)
	require.ErrorIs(t, err, ErrImmutable)
	require.EqualError(t, err, "cannot assign to constant 'k'")
}

func TestGetAtWrongDistance(t *testing.T) {
	global := New[int](nil)
	_, err := global.Declare("x", true, 1)
	require.NoError(t, err)

	_, err = global.GetAt(1, "x")
	require.ErrorIs(t, err, ErrUndefined)

	_, err = global.Fork().GetAt(0, "x")
	require.ErrorIs(t, err, ErrUndefined)
}

func TestClosureKeepsScopeAlive(t *testing.T) {
	captured := func() *Scope[int] {
		s := New[int](nil).Fork()
		_, err := s.Declare("n", true, 0)
		require.NoError(t, err)
		return s
	}()

	// two children share the captured parent
	a, b := captured.Fork(), captured.Fork()
	require.NoError(t, a.AssignAt(1, "n", 41))
	v, err := b.GetAt(1, "n")
	require.NoError(t, err)
	require.Equal(t, 41, v)
	require.Same(t, a.Parent(), b.Parent())
}

func TestNames(t *testing.T) {
	s := New[int](nil)
	for _, name := range []string{"b", "c", "a"} {
		_, err := s.Declare(name, false, 0)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a", "b", "c"}, s.Names())
	require.Empty(t, s.Fork().Names())
}
