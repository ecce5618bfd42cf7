package textcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Command is a named, invocable node in a command tree. Subcommands hang
// off their parent under their name and aliases.
//
// Commands are built with NewCommand and mutated (children added, converters
// registered) at startup. Mutation is not safe while messages are being
// dispatched.
type Command struct {
	name    string
	aliases []string
	handler HandlerFunc

	help  string
	brief string
	usage string

	enabled            bool
	hidden             bool
	ignoreExtra        bool
	hierarchicalChecks bool
	checks             []Check

	specs     []ParamSpec
	params    []*Parameter
	overrides Registry

	parent   *Command
	children table
}

// CommandOption configures a Command.
type CommandOption func(*Command)

// WithAliases sets other names the command answers to.
func WithAliases(aliases ...string) CommandOption {
	return func(c *Command) {
		c.aliases = append(c.aliases, aliases...)
	}
}

// WithParams declares the handler's parameters, in order.
//
// Example:
//
//	textcmd.WithParams(
//	    textcmd.Arg("user", textcmd.String),
//	    textcmd.Arg("days", textcmd.Optional(textcmd.Int)),
//	    textcmd.Rest("reason", textcmd.String).WithDefault("no reason given"),
//	)
func WithParams(specs ...ParamSpec) CommandOption {
	return func(c *Command) {
		c.specs = append(c.specs, specs...)
	}
}

// WithHelp sets the long help text. Common leading indentation is removed.
func WithHelp(help string) CommandOption {
	return func(c *Command) {
		c.help = dedent(help)
	}
}

// WithBrief sets the short help text. It defaults to the first line of the
// help text.
func WithBrief(brief string) CommandOption {
	return func(c *Command) {
		c.brief = brief
	}
}

// WithUsage overrides the generated signature shown as usage.
func WithUsage(usage string) CommandOption {
	return func(c *Command) {
		c.usage = usage
	}
}

// Disabled stops the command from being run.
func Disabled() CommandOption {
	return func(c *Command) {
		c.enabled = false
	}
}

// Hidden marks the command as not listed in help output.
func Hidden() CommandOption {
	return func(c *Command) {
		c.hidden = true
	}
}

// WithIgnoreExtra sets whether surplus tokens are dropped (the default) or
// rejected with a "too many arguments" error. A token that an optional last
// parameter declined is dropped either way.
func WithIgnoreExtra(ignore bool) CommandOption {
	return func(c *Command) {
		c.ignoreExtra = ignore
	}
}

// WithHierarchicalChecks sets whether the command's checks also guard its
// subcommands. Enabled by default.
func WithHierarchicalChecks(enabled bool) CommandOption {
	return func(c *Command) {
		c.hierarchicalChecks = enabled
	}
}

// WithChecks adds checks that must pass before the command runs.
func WithChecks(checks ...Check) CommandOption {
	return func(c *Command) {
		c.checks = append(c.checks, checks...)
	}
}

// WithConverters overlays the default converters for this command only.
func WithConverters(reg Registry) CommandOption {
	return func(c *Command) {
		if c.overrides == nil {
			c.overrides = make(Registry, len(reg))
		}
		for t, conv := range reg {
			c.overrides.Register(t, conv)
		}
	}
}

// NewCommand builds a command and analyzes its parameters. It returns a
// *ConfigError when a parameter declaration is invalid.
//
// A nil handler makes a group: invoking it directly asks the user to pick
// a subcommand.
func NewCommand(name string, handler HandlerFunc, opts ...CommandOption) (*Command, error) {
	c := &Command{
		name:               name,
		handler:            handler,
		enabled:            true,
		ignoreExtra:        true,
		hierarchicalChecks: true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t\n") {
		return nil, &ConfigError{Command: name, Reason: "command names must be a single non-empty word"}
	}
	for _, a := range c.aliases {
		if a == "" || strings.ContainsAny(a, " \t\n") {
			return nil, &ConfigError{Command: name, Reason: fmt.Sprintf("alias %q must be a single non-empty word", a)}
		}
	}

	params, err := AnalyzeParams(c.specs, DefaultConverters().Merge(c.overrides))
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Command = name
		}
		return nil, err
	}
	c.params = params

	if c.brief == "" && c.help != "" {
		c.brief, _, _ = strings.Cut(c.help, "\n")
	}
	return c, nil
}

// MustCommand is like NewCommand but panics on error. Use it for commands
// declared at package level.
func MustCommand(name string, handler HandlerFunc, opts ...CommandOption) *Command {
	c, err := NewCommand(name, handler, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the command's primary name.
func (c *Command) Name() string { return c.name }

// Aliases returns the command's other names.
func (c *Command) Aliases() []string { return c.aliases }

// Help returns the long help text.
func (c *Command) Help() string { return c.help }

// Brief returns the short help text.
func (c *Command) Brief() string { return c.brief }

// Enabled reports whether the command can be run.
func (c *Command) Enabled() bool { return c.enabled }

// Hidden reports whether the command is left out of help output.
func (c *Command) Hidden() bool { return c.hidden }

// Parent returns the parent command, or nil for a root command.
func (c *Command) Parent() *Command { return c.parent }

// Params returns the analyzed parameters.
func (c *Command) Params() []*Parameter { return c.params }

// Usage returns the usage text, which defaults to Signature.
func (c *Command) Usage() string {
	if c.usage != "" {
		return c.usage
	}
	return c.Signature()
}

// QualifiedName returns the names from the root command down to c, joined
// with spaces.
func (c *Command) QualifiedName() string {
	var names []string
	for cmd := c; cmd != nil; cmd = cmd.parent {
		names = append(names, cmd.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " ")
}

// AddChild attaches cmd as a subcommand. It fails with ErrDuplicateCommand
// if cmd's name or any alias is already taken by another subcommand.
func (c *Command) AddChild(cmd *Command) error {
	if err := c.children.add(cmd, c.QualifiedName()); err != nil {
		return err
	}
	cmd.parent = c
	return nil
}

// RemoveChild detaches the subcommand registered under key. When key is an
// alias only that alias is removed. It returns the command the key named,
// or nil.
func (c *Command) RemoveChild(key string) *Command {
	return c.children.remove(key)
}

// Child resolves a space-separated path of names or aliases below c. It
// returns nil if any segment is missing.
//
//	cmd.Child("role add")
func (c *Command) Child(path string) *Command {
	return c.children.find(path)
}

// Commands returns the unique subcommands, sorted by name.
func (c *Command) Commands() []*Command {
	return c.children.unique()
}

// Subcommand builds a command and attaches it as a child of c.
func (c *Command) Subcommand(name string, handler HandlerFunc, opts ...CommandOption) (*Command, error) {
	sub, err := NewCommand(name, handler, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.AddChild(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// RegisterConverter makes conv the converter for t in this command. Already
// analyzed parameters declared as bare t, Greedy(t) or a union containing t
// are updated in place; other commands are unaffected.
func (c *Command) RegisterConverter(t Tag, conv Converter) {
	if c.overrides == nil {
		c.overrides = make(Registry)
	}
	c.overrides.Register(t, conv)

	for _, p := range c.params {
		if p.inner() == t {
			p.Converters = []Converter{conv}
			continue
		}
		members := p.unionMembers()
		if members == nil {
			continue
		}
		i := 0
		for _, m := range members {
			if m == None {
				continue
			}
			if m == t && i < len(p.Converters) {
				p.Converters[i] = conv
			}
			i++
		}
	}
}

// Signature renders a POSIX-like usage string from the parameters:
// <required>, [optional], [name=default], <variadic...> and <greedy>...
func (c *Command) Signature() string {
	if len(c.params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c.params))
	for _, p := range c.params {
		parts = append(parts, p.signature())
	}
	return strings.Join(parts, " ")
}

func (p *Parameter) signature() string {
	t := p.inner()
	if a, ok := t.(AnnotatedType); ok && len(a.Markers) == 1 {
		t = a.Markers[0]
	}
	if u, ok := t.(UnionType); ok && !p.Greedy && len(u.Members) == 2 && p.Optional() {
		if u.Members[0] == None {
			t = u.Members[1]
		} else {
			t = u.Members[0]
		}
	}

	name := p.Name
	if lit, ok := t.(LiteralType); ok {
		name = lit.choices("|")
	}

	var b strings.Builder
	if p.Optional() && p.def != nil {
		fmt.Fprintf(&b, "%s=%v", name, p.def)
	} else {
		b.WriteString(name)
	}
	if p.Variadic {
		b.WriteString("...")
	}

	var out string
	if p.Optional() {
		out = "[" + b.String() + "]"
	} else {
		out = "<" + b.String() + ">"
	}
	if p.Greedy {
		out += "..."
	}
	return out
}

// CanRun reports whether inv may run c. A disabled command fails with
// ErrCommandDisabled. Checks run in order, root first: the checks of each
// ancestor that guards its subcommands, then c's own. The first check that
// returns false stops evaluation with a *CheckFailureError; a check error is
// returned as is.
func (c *Command) CanRun(ctx context.Context, inv *Invocation) error {
	if !c.enabled {
		return fmt.Errorf("%w: %s", ErrCommandDisabled, c.QualifiedName())
	}

	var chain []*Command
	for p := c.parent; p != nil; p = p.parent {
		if p.hierarchicalChecks {
			chain = append(chain, p)
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if err := runChecks(ctx, inv, chain[i]); err != nil {
			return err
		}
	}
	return runChecks(ctx, inv, c)
}

func runChecks(ctx context.Context, inv *Invocation, c *Command) error {
	for i, check := range c.checks {
		ok, err := check(ctx, inv)
		if err != nil {
			return err
		}
		if !ok {
			return &CheckFailureError{Command: c.QualifiedName(), Index: i}
		}
	}
	return nil
}

// Invoke binds inv's argument string to c's parameters and runs the
// handler. Binding failures are returned as *BadArgumentError. Checks are
// not run; see CanRun.
func (c *Command) Invoke(ctx context.Context, inv *Invocation) error {
	if inv.Command == nil {
		inv.Command = c
	}
	if c.handler == nil {
		names := make([]string, 0, c.children.len())
		for _, sub := range c.Commands() {
			if !sub.hidden {
				names = append(names, sub.name)
			}
		}
		return BadArgument("%s needs a subcommand: %s.", c.QualifiedName(), strings.Join(names, ", "))
	}

	args, err := bindTokens(ctx, inv, c.params, Tokenize(inv.Args), c.name, c.ignoreExtra)
	if err != nil {
		return err
	}
	return c.handler(ctx, inv, args)
}

func (c *Command) String() string { return c.QualifiedName() }

// dedent strips surrounding blank lines and the indentation common to every
// line after the first.
func dedent(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "    "), "\n")
	indent := -1
	for _, l := range lines[1:] {
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
