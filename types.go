package textcmd

import (
	"fmt"
	"strings"
)

// TypeExpr is the declared type of a command parameter. It is one of Tag,
// UnionType, LiteralType, GreedyType or AnnotatedType, or a converter
// value (Converter, ConverterFunc, ConverterFactory, or a plain function)
// used directly as the type.
type TypeExpr any

// Tag identifies a type in a converter Registry.
type Tag string

// Built-in type tags.
const (
	Untyped  Tag = ""
	String   Tag = "str"
	Int      Tag = "int"
	Float    Tag = "float"
	Bool     Tag = "bool"
	Duration Tag = "duration"
	None     Tag = "None"
)

func (t Tag) String() string {
	if t == Untyped {
		return "any"
	}
	return string(t)
}

// UnionType declares several candidate types, tried in order.
type UnionType struct {
	Members []TypeExpr
}

// Union declares a parameter accepting any of the member types. Including
// None makes the parameter optional with a nil default.
func Union(members ...TypeExpr) UnionType {
	return UnionType{Members: members}
}

// Optional is shorthand for Union(t, None).
func Optional(t TypeExpr) UnionType {
	return Union(t, None)
}

func (u UnionType) hasNone() bool {
	for _, m := range u.Members {
		if m == None {
			return true
		}
	}
	return false
}

func (u UnionType) String() string {
	names := make([]string, len(u.Members))
	for i, m := range u.Members {
		names[i] = typeName(m)
	}
	return strings.Join(names, " | ")
}

// LiteralType accepts only tokens equal to the string form of one of its
// values.
type LiteralType struct {
	Values []any
}

// Literal declares a finite set of accepted values.
func Literal(values ...any) LiteralType {
	return LiteralType{Values: values}
}

func (l LiteralType) String() string {
	return "Literal[" + l.choices(", ") + "]"
}

// choices renders the values with strings quoted.
func (l LiteralType) choices(sep string) string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, sep)
}

// GreedyType consumes a run of tokens until one fails to convert.
type GreedyType struct {
	Of TypeExpr
}

// Greedy wraps t so the parameter binds a slice of consecutive matches.
func Greedy(t TypeExpr) GreedyType {
	return GreedyType{Of: t}
}

func (g GreedyType) String() string {
	return "Greedy[" + typeName(g.Of) + "]"
}

// AnnotatedType narrows a base type with a single marker, usually a
// converter. The base type is kept for display; the marker drives
// conversion.
type AnnotatedType struct {
	Base    TypeExpr
	Markers []any
}

// Annotated attaches markers to a base type. Only one marker is supported;
// more fail analysis.
func Annotated(base TypeExpr, markers ...any) AnnotatedType {
	return AnnotatedType{Base: base, Markers: markers}
}

func (a AnnotatedType) String() string {
	return typeName(a.Base)
}

// unwrap returns the marker that drives conversion.
func (a AnnotatedType) unwrap(param string) (TypeExpr, error) {
	switch len(a.Markers) {
	case 0:
		return a.Base, nil
	case 1:
		return a.Markers[0], nil
	default:
		return nil, configErrorf(param, "Annotated[%s] has %d markers; only one is supported", typeName(a.Base), len(a.Markers))
	}
}

// typeName returns a display name for a type expression.
func typeName(t TypeExpr) string {
	switch v := t.(type) {
	case nil:
		return "any"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", v)
	}
}
