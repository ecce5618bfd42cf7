package textcmd

import (
	"context"
	"fmt"
	"strings"
)

// Args holds the values bound for one invocation. Positional values appear
// in declaration order; a consume-rest parameter is bound by name in
// Keyword.
type Args struct {
	Positional []any
	Keyword    map[string]any

	names []string
}

func newArgs() *Args {
	return &Args{Keyword: make(map[string]any)}
}

func (a *Args) addPositional(name string, v any) {
	a.Positional = append(a.Positional, v)
	a.names = append(a.names, name)
}

// Get returns the value bound to the named parameter.
func (a *Args) Get(name string) (any, bool) {
	if a == nil {
		return nil, false
	}
	if v, ok := a.Keyword[name]; ok {
		return v, true
	}
	for i, n := range a.names {
		if n == name {
			return a.Positional[i], true
		}
	}
	return nil, false
}

// Len returns the number of bound values.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Positional) + len(a.Keyword)
}

// Value returns the named argument as a T. The second result is false when
// the parameter was not bound or holds a value of another type, including a
// nil default.
//
//	n, _ := textcmd.Value[int](args, "count")
//	users, _ := textcmd.Value[[]any](args, "users")
func Value[T any](a *Args, name string) (T, bool) {
	var zero T
	v, ok := a.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// binder binds one token stream to a command's parameters. It lives for a
// single dispatch.
type binder struct {
	inv         *Invocation
	cur         *Cursor
	params      []*Parameter
	command     string
	ignoreExtra bool
}

// bind walks the tokens, satisfying parameters in order. A parameter that
// fell back to its default does not consume the token, so the same token
// is retried against the next parameter. A greedy parameter with a
// non-empty default also retries the token that started its run.
func (b *binder) bind(ctx context.Context) (*Args, error) {
	args := newArgs()
	idx := 0

	for idx < len(b.params) {
		tok, ok := b.cur.Next()
		if !ok {
			break
		}
		past := b.cur.index

	params:
		for idx < len(b.params) {
			p := b.params[idx]

			if p.ConsumeRest {
				tok = strings.Join(b.cur.ConsumeRest(), " ")
			}

			switch {
			case p.Variadic:
				rest := b.cur.ConsumeRest()
				vals := make([]any, 0, len(rest))
				for _, t := range rest {
					v, _, err := b.convertOne(ctx, p, t)
					if err != nil {
						return nil, err
					}
					vals = append(vals, v)
				}
				args.addPositional(p.Name, vals)
				idx++
				break params

			case p.Greedy:
				vals, brokeOff, err := b.convertGreedy(ctx, p)
				if err != nil {
					return nil, err
				}
				args.addPositional(p.Name, vals)
				idx++
				if brokeOff {
					b.cur.Back(1)
				}
				if p.Optional() && truthy(p.def) {
					// tok is carried to the next parameter, so the cursor
					// must not offer it again.
					if b.cur.index < past {
						b.cur.index = past
					}
					continue
				}
				break params
			}

			v, usedDefault, err := b.convertOne(ctx, p, tok)
			if err != nil {
				return nil, err
			}
			if p.ConsumeRest {
				args.Keyword[p.Name] = v
			} else {
				args.addPositional(p.Name, v)
			}
			idx++

			if !usedDefault {
				break
			}
		}
	}

	if idx < len(b.params) {
		for _, p := range b.params[idx:] {
			if !p.Optional() {
				return nil, BadArgument("%s is a required argument that is missing.", p.Name)
			}
			if p.ConsumeRest {
				args.Keyword[p.Name] = p.def
				break
			}
			args.addPositional(p.Name, p.def)
		}
		return args, nil
	}

	if !b.ignoreExtra && !b.cur.Finished() {
		return nil, BadArgument("Too many arguments passed to %s.", b.command)
	}
	return args, nil
}

// convertOne tries each converter in order and returns the first success.
// When every converter fails, an optional parameter yields its default with
// usedDefault set; a union without a default and any other parameter fail.
func (b *binder) convertOne(ctx context.Context, p *Parameter, tok string) (v any, usedDefault bool, err error) {
	for _, c := range p.Converters {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		v, cerr := c.Convert(ctx, b.inv, tok)
		if cerr == nil {
			return v, false, nil
		}
		if !p.Union && !p.Optional() {
			return nil, false, asBadArgument(cerr)
		}
	}

	if p.Optional() {
		return p.def, true, nil
	}

	members := p.unionMembers()
	names := make([]string, 0, len(members))
	for _, m := range members {
		if m != None {
			names = append(names, typeName(m))
		}
	}
	return nil, false, BadArgument("Could not convert %q into %s.", tok, orList(names))
}

// convertGreedy re-reads the token that started the run and keeps
// converting until a token fails or the tokens run out. brokeOff reports a
// failed trailing token; the cursor is left just past it.
func (b *binder) convertGreedy(ctx context.Context, p *Parameter) (vals any, brokeOff bool, err error) {
	b.cur.Back(1)

	var run []any
	for {
		tok, ok := b.cur.Next()
		if !ok {
			break
		}
		v, usedDefault, err := b.convertOne(ctx, p, tok)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, false, ctxErr
			}
			brokeOff = true
			break
		}
		if usedDefault {
			brokeOff = true
			break
		}
		run = append(run, v)
	}

	if len(run) == 0 {
		if p.Optional() && truthy(p.def) {
			return p.def, brokeOff, nil
		}
		return nil, false, BadArgument("Failed to find any arguments for %s.", typeName(p.Type))
	}
	return run, brokeOff, nil
}

// Bind tokenizes argString and binds it to params outside of a router.
// inv may be nil when no converter needs it.
func Bind(ctx context.Context, inv *Invocation, params []*Parameter, argString string, ignoreExtra bool) (*Args, error) {
	name := "command"
	if inv != nil && inv.Command != nil {
		name = inv.Command.Name()
	}
	return bindTokens(ctx, inv, params, Tokenize(argString), name, ignoreExtra)
}

// bindTokens binds tokens to params. A command without parameters receives
// no arguments, and its tokens count as surplus.
func bindTokens(ctx context.Context, inv *Invocation, params []*Parameter, tokens []string, command string, ignoreExtra bool) (*Args, error) {
	if len(params) == 0 {
		if !ignoreExtra && len(tokens) > 0 {
			return nil, BadArgument("Too many arguments passed to %s.", command)
		}
		return newArgs(), nil
	}
	b := &binder{
		inv:         inv,
		cur:         NewCursor(tokens),
		params:      params,
		command:     command,
		ignoreExtra: ignoreExtra,
	}
	return b.bind(ctx)
}

// String renders the bound values, mostly for logs.
func (a *Args) String() string {
	if a == nil {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range a.Positional {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%v", a.names[i], v)
	}
	for k, v := range a.Keyword {
		if b.Len() > 1 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%v", k, v)
	}
	b.WriteByte(']')
	return b.String()
}
