package textcmd

import "reflect"

// ParamKind is how a declared parameter receives its value.
type ParamKind int

const (
	// Positional parameters take one token each, in order.
	Positional ParamKind = iota

	// KeywordOnly parameters take all remaining text, rejoined with single
	// spaces, as one token. Must be last.
	KeywordOnly

	// VarPositional parameters take every remaining token, each converted
	// separately, as one slice. Must be last and cannot have a default.
	VarPositional
)

func (k ParamKind) String() string {
	switch k {
	case Positional:
		return "positional"
	case KeywordOnly:
		return "keyword-only"
	case VarPositional:
		return "variadic"
	default:
		return "unknown"
	}
}

// ParamSpec declares one handler parameter. Use Arg, Rest and Variadic to
// build one, and WithDefault to make it optional.
type ParamSpec struct {
	Name       string
	Type       TypeExpr
	Kind       ParamKind
	Default    any
	HasDefault bool
}

// Arg declares a positional parameter.
func Arg(name string, t TypeExpr) ParamSpec {
	return ParamSpec{Name: name, Type: t, Kind: Positional}
}

// Rest declares a keyword-only parameter that consumes the rest of the
// message.
func Rest(name string, t TypeExpr) ParamSpec {
	return ParamSpec{Name: name, Type: t, Kind: KeywordOnly}
}

// Variadic declares a parameter that collects every remaining token.
func Variadic(name string, t TypeExpr) ParamSpec {
	return ParamSpec{Name: name, Type: t, Kind: VarPositional}
}

// WithDefault returns a copy of s with a default value.
func (s ParamSpec) WithDefault(v any) ParamSpec {
	s.Default = v
	s.HasDefault = true
	return s
}

// Parameter is the analyzed form of a ParamSpec: the converters to try and
// the binding mode. Parameters are built once per command and only change
// when a converter is registered on the command.
type Parameter struct {
	Name       string
	Type       TypeExpr
	Converters []Converter

	Greedy      bool
	Union       bool
	Variadic    bool
	ConsumeRest bool

	def    any
	hasDef bool
}

// Optional reports whether the parameter has a default.
func (p *Parameter) Optional() bool { return p.hasDef }

// Default returns the default value and whether one is set.
func (p *Parameter) Default() (any, bool) { return p.def, p.hasDef }

// setDefault is used by analysis only.
func (p *Parameter) setDefault(v any) {
	p.def = v
	p.hasDef = true
}

// inner returns the declared type without its Greedy wrapper.
func (p *Parameter) inner() TypeExpr {
	if g, ok := p.Type.(GreedyType); ok {
		return g.Of
	}
	return p.Type
}

// unionMembers returns the members of a union parameter, or nil.
func (p *Parameter) unionMembers() []TypeExpr {
	if u, ok := p.inner().(UnionType); ok {
		return u.Members
	}
	return nil
}

// AnalyzeParams builds Parameters from declared specs, resolving each type
// against reg. It stops after the first KeywordOnly or VarPositional spec;
// anything declared after it is ignored.
func AnalyzeParams(specs []ParamSpec, reg Registry) ([]*Parameter, error) {
	params := make([]*Parameter, 0, len(specs))
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, configErrorf("", "parameter %d has no name", len(params))
		}
		if seen[spec.Name] {
			return nil, configErrorf(spec.Name, "declared more than once")
		}
		seen[spec.Name] = true

		p, err := analyzeParam(spec, reg)
		if err != nil {
			return nil, err
		}
		params = append(params, p)

		if p.ConsumeRest || p.Variadic {
			break
		}
	}
	return params, nil
}

func analyzeParam(spec ParamSpec, reg Registry) (*Parameter, error) {
	p := &Parameter{Name: spec.Name, Type: spec.Type}
	if spec.HasDefault {
		p.setDefault(spec.Default)
	}

	t := spec.Type
	if g, ok := t.(GreedyType); ok {
		inner, err := greedyInner(g, spec)
		if err != nil {
			return nil, err
		}
		t = inner
		p.Greedy = true
	}

	if u, ok := t.(UnionType); ok {
		if len(u.Members) == 0 {
			return nil, configErrorf(spec.Name, "union has no members")
		}
		p.Union = true
		for _, m := range u.Members {
			if m == None {
				if !p.Optional() {
					p.setDefault(nil)
				}
				continue
			}
			c, err := resolveConverter(m, spec.Name, reg)
			if err != nil {
				return nil, err
			}
			p.Converters = append(p.Converters, c)
		}
		if len(p.Converters) == 0 {
			return nil, configErrorf(spec.Name, "union must have a member other than None")
		}
	} else {
		c, err := resolveConverter(t, spec.Name, reg)
		if err != nil {
			return nil, err
		}
		p.Converters = append(p.Converters, c)
	}

	switch spec.Kind {
	case KeywordOnly:
		p.ConsumeRest = true
	case VarPositional:
		if p.Optional() {
			return nil, configErrorf(spec.Name, "variadic parameters cannot have a default or be optional")
		}
		p.Variadic = true
	}
	return p, nil
}

// greedyInner validates a Greedy wrapper and returns the type it wraps.
func greedyInner(g GreedyType, spec ParamSpec) (TypeExpr, error) {
	if spec.Kind != Positional {
		return nil, configErrorf(spec.Name, "Greedy cannot be used on a %s parameter", spec.Kind)
	}
	inner := g.Of
	if a, ok := inner.(AnnotatedType); ok {
		unwrapped, err := a.unwrap(spec.Name)
		if err != nil {
			return nil, err
		}
		inner = unwrapped
	}
	if inner == String || inner == None || inner == Untyped || inner == nil {
		return nil, configErrorf(spec.Name, "Greedy[%s] is invalid", typeName(inner))
	}
	if u, ok := inner.(UnionType); ok && u.hasNone() {
		return nil, configErrorf(spec.Name, "Greedy[%s] is invalid", u)
	}
	if _, ok := inner.(GreedyType); ok {
		return nil, configErrorf(spec.Name, "Greedy cannot be nested")
	}
	return inner, nil
}

// truthy reports whether v is a non-empty value: not nil, false, zero, or
// an empty string, slice or map.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}
