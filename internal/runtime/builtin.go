package runtime

import (
	"lox-lang/internal/token"
	"slices"
	"strconv"
)

// NativeFn is the Go signature for native functions. tok is the call's
// closing paren, used to attribute errors.
type NativeFn func(tok token.Token, env *Environment, args []Value) (Value, error)

var natives = []*NativeFunction{
	{Name: "str", Arity: 1, Fn: nativeStr},
	{Name: "typeof", Arity: 1, Fn: nativeTypeof},
	{Name: "number", Arity: 1, Fn: nativeNumber},
	{Name: "len", Arity: 1, Fn: nativeLen},
	{Name: "chars", Arity: 1, Fn: nativeChars},
	{Name: "push", Arity: 2, Fn: nativePush},
	{Name: "extend", Arity: 2, Fn: nativeExtend},
}

// NativeNames returns the names of all native functions in registration order.
func NativeNames() []string {
	names := make([]string, len(natives))
	for i, n := range natives {
		names[i] = n.Name
	}
	return names
}

// RegisterNatives declares every native function in env.
func RegisterNatives(env *Environment) error {
	for _, n := range natives {
		if _, err := env.Declare(n.Name, true, n); err != nil {
			return err
		}
	}
	return nil
}

func nativeStr(_ token.Token, _ *Environment, args []Value) (Value, error) {
	if s, ok := args[0].(String); ok {
		return s, nil
	}
	return String(args[0].String()), nil
}

func nativeTypeof(_ token.Token, _ *Environment, args []Value) (Value, error) {
	return String(args[0].TypeName()), nil
}

func nativeNumber(tok token.Token, _ *Environment, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Number:
		return v, nil
	case String:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, errorAt(tok, "Couldn't parse `%s` to number", string(v))
		}
		return Number(f), nil
	default:
		return nil, errorAt(tok, "Can't parse %s to number", v.TypeName())
	}
}

func nativeLen(tok token.Token, _ *Environment, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case String:
		return Number(len(v)), nil
	case *List:
		return Number(len(v.Items)), nil
	default:
		return nil, errorAt(tok, "Can't get length of %s", v.TypeName())
	}
}

func nativeChars(tok token.Token, _ *Environment, args []Value) (Value, error) {
	s, ok := args[0].(String)
	if !ok {
		return nil, errorAt(tok, "Can't extract chars out of %s", args[0].TypeName())
	}
	list := &List{}
	for _, r := range string(s) {
		list.Items = append(list.Items, Char(r))
	}
	return list, nil
}

func nativePush(tok token.Token, _ *Environment, args []Value) (Value, error) {
	list, err := listArg(tok, args, 0)
	if err != nil {
		return nil, err
	}
	list.Items = append(list.Items, args[1])
	return list, nil
}

// nativeExtend appends the items of the second list to the first. The
// second argument is checked first and copied, so extend(l, l) doubles l.
func nativeExtend(tok token.Token, _ *Environment, args []Value) (Value, error) {
	src, err := listArg(tok, args, 1)
	if err != nil {
		return nil, err
	}
	items := slices.Clone(src.Items)

	dst, err := listArg(tok, args, 0)
	if err != nil {
		return nil, err
	}
	dst.Items = append(dst.Items, items...)
	return dst, nil
}

func listArg(tok token.Token, args []Value, n int) (*List, error) {
	list, ok := args[n].(*List)
	if !ok {
		return nil, errorAt(tok, "Argument %d must be of type list", n)
	}
	return list, nil
}
