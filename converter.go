package textcmd

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Converter turns one raw token into a typed value.
//
// A converter should return a *BadArgumentError (see BadArgument) when the
// token is unusable and the message is meant for the user. Other errors are
// wrapped before they reach the user.
type Converter interface {
	Convert(ctx context.Context, inv *Invocation, arg string) (any, error)
}

// ConverterFunc is a function adapter for Converter.
//
//	textcmd.ConverterFunc(func(ctx context.Context, inv *textcmd.Invocation, arg string) (any, error) {
//	    return strings.ToUpper(arg), nil
//	})
type ConverterFunc func(ctx context.Context, inv *Invocation, arg string) (any, error)

// Convert implements the Converter interface.
func (f ConverterFunc) Convert(ctx context.Context, inv *Invocation, arg string) (any, error) {
	return f(ctx, inv, arg)
}

// ConverterFactory builds a converter. It is called once, when the
// command's parameters are analyzed, for converters that carry state.
type ConverterFactory func() Converter

// Registry associates type tags with converters.
type Registry map[Tag]Converter

// Register associates t with c.
func (r Registry) Register(t Tag, c Converter) {
	r[t] = c
}

// Lookup returns the converter registered for t.
func (r Registry) Lookup(t Tag) (Converter, bool) {
	c, ok := r[t]
	return c, ok
}

// Merge returns a new registry holding r overlaid with other.
func (r Registry) Merge(other Registry) Registry {
	out := make(Registry, len(r)+len(other))
	maps.Copy(out, r)
	maps.Copy(out, other)
	return out
}

// DefaultConverters returns a fresh registry with the built-in converters
// for String, Int, Float and Duration. Bool and Untyped are handled during
// analysis and only need an entry to be overridden.
func DefaultConverters() Registry {
	return Registry{
		String:   ConverterFunc(convertString),
		Int:      ConverterFunc(convertInt),
		Float:    ConverterFunc(convertFloat),
		Duration: ConverterFunc(convertDuration),
	}
}

func convertString(_ context.Context, _ *Invocation, arg string) (any, error) {
	return arg, nil
}

func convertInt(_ context.Context, _ *Invocation, arg string) (any, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid integer: %w", arg, err)
	}
	return n, nil
}

func convertFloat(_ context.Context, _ *Invocation, arg string) (any, error) {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid number: %w", arg, err)
	}
	return f, nil
}

func convertDuration(_ context.Context, _ *Invocation, arg string) (any, error) {
	d, err := time.ParseDuration(arg)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid duration: %w", arg, err)
	}
	return d, nil
}

// ConvertBool accepts the usual yes/no spellings, case-insensitively.
func ConvertBool(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "yes", "y", "true", "t", "1", "enable", "on":
		return true, nil
	case "no", "n", "false", "f", "0", "disable", "off":
		return false, nil
	default:
		return false, BadArgument("%s is not a recognised boolean option.", arg)
	}
}

type literalConverter struct {
	lit LiteralType
}

func (c literalConverter) Convert(_ context.Context, _ *Invocation, arg string) (any, error) {
	for _, v := range c.lit.Values {
		if fmt.Sprint(v) == arg {
			return v, nil
		}
	}
	names := make([]string, len(c.lit.Values))
	for i, v := range c.lit.Values {
		names[i] = fmt.Sprint(v)
	}
	return nil, BadArgument("Could not convert %q into one of %s.", arg, orList(names))
}

// unregisteredConverter stands in for a tag that had no converter when the
// command was analyzed. Registering one later replaces it.
type unregisteredConverter struct {
	tag Tag
}

func (c unregisteredConverter) Convert(_ context.Context, _ *Invocation, _ string) (any, error) {
	return nil, fmt.Errorf("no converter registered for type %s", c.tag)
}

var (
	invocationType = reflect.TypeFor[*Invocation]()
	stringType     = reflect.TypeFor[string]()
	errorType      = reflect.TypeFor[error]()
)

// funcConverter adapts a plain function taking (), (string) or
// (*Invocation, string) and returning T or (T, error).
type funcConverter struct {
	fn reflect.Value
}

func newFuncConverter(fn any, param string) (Converter, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.IsVariadic() {
		return nil, configErrorf(param, "converter %s must not be variadic", t)
	}
	switch t.NumIn() {
	case 0:
	case 1:
		if t.In(0) != stringType {
			return nil, configErrorf(param, "converter %s must take a string", t)
		}
	case 2:
		if t.In(0) != invocationType || t.In(1) != stringType {
			return nil, configErrorf(param, "converter %s must take (*Invocation, string)", t)
		}
	default:
		return nil, configErrorf(param, "converter %s has %d arguments; at most 2 are supported", t, t.NumIn())
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return nil, configErrorf(param, "converter %s must return (T, error)", t)
		}
	default:
		return nil, configErrorf(param, "converter %s must return T or (T, error)", t)
	}
	return funcConverter{fn: v}, nil
}

func (c funcConverter) Convert(_ context.Context, inv *Invocation, arg string) (any, error) {
	var in []reflect.Value
	switch c.fn.Type().NumIn() {
	case 1:
		in = []reflect.Value{reflect.ValueOf(arg)}
	case 2:
		in = []reflect.Value{reflect.ValueOf(inv), reflect.ValueOf(arg)}
	}
	out := c.fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// resolveConverter turns one declared type into the converter that handles
// it, in this order: Annotated marker, converter values, registry entry,
// literal set, plain function, bool and untyped defaults, and finally a
// placeholder for tags with no converter yet.
func resolveConverter(t TypeExpr, param string, reg Registry) (Converter, error) {
	if a, ok := t.(AnnotatedType); ok {
		inner, err := a.unwrap(param)
		if err != nil {
			return nil, err
		}
		t = inner
	}

	switch v := t.(type) {
	case Converter:
		return v, nil
	case ConverterFactory:
		return instantiate(v, param)
	case func() Converter:
		return instantiate(v, param)
	case func(context.Context, *Invocation, string) (any, error):
		return ConverterFunc(v), nil
	}

	if tag, ok := t.(Tag); ok {
		if c, ok := reg.Lookup(tag); ok {
			return c, nil
		}
	}

	switch v := t.(type) {
	case nil:
		return ConverterFunc(convertString), nil
	case LiteralType:
		if len(v.Values) == 0 {
			return nil, configErrorf(param, "Literal needs at least one value")
		}
		return literalConverter{lit: v}, nil
	case Tag:
		switch v {
		case Bool:
			return ConverterFunc(func(_ context.Context, _ *Invocation, arg string) (any, error) {
				return ConvertBool(arg)
			}), nil
		case Untyped:
			return ConverterFunc(convertString), nil
		case None:
			return nil, configErrorf(param, "None is only valid inside a union")
		}
		return unregisteredConverter{tag: v}, nil
	case UnionType, GreedyType:
		return nil, configErrorf(param, "%s cannot be nested here", typeName(v))
	}

	if reflect.TypeOf(t).Kind() == reflect.Func {
		return newFuncConverter(t, param)
	}
	return nil, configErrorf(param, "unsupported type %s", typeName(t))
}

func instantiate(f func() Converter, param string) (Converter, error) {
	c := f()
	if c == nil {
		return nil, configErrorf(param, "converter factory returned nil")
	}
	return c, nil
}

// orList joins names as "a, b, or c".
func orList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
