// Package demo is the command set served by the textcmd binary. Each
// command exercises a different parameter kind.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/bjaus/textcmd"
	"github.com/bjaus/textcmd/discord"
)

// Options configures Register.
type Options struct {
	// CooldownPerMinute limits each user's invocations of every command.
	// Zero disables it.
	CooldownPerMinute int

	// Discord adds commands that need a Discord session.
	Discord bool

	// Roll returns a number in [1, sides]. Nil uses math/rand.
	Roll func(sides int) int
}

// Register adds the demo commands to r.
func Register(r *textcmd.Router, opts Options) error {
	if opts.Roll == nil {
		opts.Roll = func(sides int) int { return rand.IntN(sides) + 1 }
	}

	var common []textcmd.CommandOption
	if opts.CooldownPerMinute > 0 {
		limiter := textcmd.NewCooldown(opts.CooldownPerMinute, time.Minute, opts.CooldownPerMinute, textcmd.PerUser)
		common = append(common, textcmd.WithChecks(limiter.Check()))
	}

	tags := NewTags()
	builders := []func() (*textcmd.Command, error){
		func() (*textcmd.Command, error) { return ping(common) },
		func() (*textcmd.Command, error) { return echo(common) },
		func() (*textcmd.Command, error) { return add(common) },
		func() (*textcmd.Command, error) { return roll(common, opts.Roll) },
		func() (*textcmd.Command, error) { return mode(common) },
		func() (*textcmd.Command, error) { return tags.Command(common) },
		func() (*textcmd.Command, error) { return help(r) },
	}
	if opts.Discord {
		builders = append(builders, func() (*textcmd.Command, error) { return whois(common) })
	}

	for _, build := range builders {
		cmd, err := build()
		if err != nil {
			return err
		}
		if err := r.Add(cmd); err != nil {
			return err
		}
	}
	return nil
}

func with(common []textcmd.CommandOption, opts ...textcmd.CommandOption) []textcmd.CommandOption {
	return append(append([]textcmd.CommandOption(nil), common...), opts...)
}

func ping(common []textcmd.CommandOption) (*textcmd.Command, error) {
	return textcmd.NewCommand("ping", func(ctx context.Context, inv *textcmd.Invocation, _ *textcmd.Args) error {
		return inv.Reply(ctx, "pong")
	}, with(common, textcmd.WithHelp("Checks that the bot is listening."))...)
}

func echo(common []textcmd.CommandOption) (*textcmd.Command, error) {
	return textcmd.NewCommand("echo", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		text, _ := textcmd.Value[string](args, "text")
		return inv.Reply(ctx, text)
	}, with(common,
		textcmd.WithAliases("say"),
		textcmd.WithParams(textcmd.Rest("text", textcmd.String)),
		textcmd.WithHelp("Repeats the text back."),
	)...)
}

func add(common []textcmd.CommandOption) (*textcmd.Command, error) {
	return textcmd.NewCommand("add", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		nums, _ := textcmd.Value[[]any](args, "numbers")
		sum := 0
		for _, n := range nums {
			sum += n.(int)
		}
		return inv.Reply(ctx, strconv.Itoa(sum))
	}, with(common,
		textcmd.WithAliases("sum"),
		textcmd.WithParams(textcmd.Variadic("numbers", textcmd.Int)),
		textcmd.WithHelp("Adds whole numbers together."),
	)...)
}

func roll(common []textcmd.CommandOption, rollFn func(int) int) (*textcmd.Command, error) {
	return textcmd.NewCommand("roll", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		dice, _ := textcmd.Value[[]any](args, "dice")
		label, _ := textcmd.Value[string](args, "label")

		total := 0
		parts := make([]string, 0, len(dice))
		for _, d := range dice {
			sides := d.(int)
			if sides < 1 {
				return textcmd.BadArgument("A die needs at least one side, got %d.", sides)
			}
			n := rollFn(sides)
			total += n
			parts = append(parts, fmt.Sprintf("d%d=%d", sides, n))
		}

		out := fmt.Sprintf("%s (total %d)", strings.Join(parts, " "), total)
		if label != "" {
			out = label + ": " + out
		}
		return inv.Reply(ctx, out)
	}, with(common,
		textcmd.WithParams(
			textcmd.Arg("dice", textcmd.Greedy(textcmd.Int)),
			textcmd.Arg("label", textcmd.Optional(textcmd.String)),
		),
		textcmd.WithHelp(`
			Rolls dice with the given numbers of sides.

			Any text after the last number labels the roll.
		`),
	)...)
}

func mode(common []textcmd.CommandOption) (*textcmd.Command, error) {
	return textcmd.NewCommand("mode", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		state, _ := textcmd.Value[string](args, "state")
		if level, ok := textcmd.Value[int](args, "level"); ok {
			return inv.Reply(ctx, fmt.Sprintf("mode %s at level %d", state, level))
		}
		return inv.Reply(ctx, "mode "+state)
	}, with(common,
		textcmd.WithParams(
			textcmd.Arg("state", textcmd.Literal("on", "off")),
			textcmd.Arg("level", textcmd.Optional(textcmd.Int)),
		),
		textcmd.WithIgnoreExtra(false),
		textcmd.WithHelp("Switches the mode on or off, optionally at a level."),
	)...)
}

func help(r *textcmd.Router) (*textcmd.Command, error) {
	return textcmd.NewCommand("help", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		path, _ := textcmd.Value[string](args, "command")
		if path == "" {
			return inv.Reply(ctx, listing(inv.Prefix, r.Commands()))
		}

		cmd := r.Command(path)
		if cmd == nil || cmd.Hidden() {
			return textcmd.BadArgument("No command called %q.", path)
		}
		return inv.Reply(ctx, describe(inv.Prefix, cmd))
	}, textcmd.WithParams(textcmd.Rest("command", textcmd.String).WithDefault("")),
		textcmd.WithHelp("Lists commands, or explains one."))
}

// listing renders one line per visible command.
func listing(prefix string, cmds []*textcmd.Command) string {
	var b strings.Builder
	for _, c := range cmds {
		if c.Hidden() {
			continue
		}
		fmt.Fprintf(&b, "%s%s", prefix, c.Name())
		if c.Brief() != "" {
			fmt.Fprintf(&b, " - %s", c.Brief())
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// describe renders usage, help, aliases and subcommands of cmd.
func describe(prefix string, cmd *textcmd.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s", prefix, cmd.QualifiedName())
	if usage := cmd.Usage(); usage != "" {
		fmt.Fprintf(&b, " %s", usage)
	}
	if cmd.Help() != "" {
		fmt.Fprintf(&b, "\n\n%s", cmd.Help())
	}
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(&b, "\n\nAliases: %s", strings.Join(aliases, ", "))
	}
	if subs := cmd.Commands(); len(subs) > 0 {
		b.WriteString("\n\nSubcommands:\n")
		b.WriteString(listing(prefix+cmd.QualifiedName()+" ", subs))
	}
	return b.String()
}

// Tags is an in-memory tag store shared by the tag subcommands.
type Tags struct {
	mu   sync.RWMutex
	tags map[string]string
}

// NewTags returns an empty store.
func NewTags() *Tags {
	return &Tags{tags: make(map[string]string)}
}

// Get returns the content of a tag.
func (t *Tags) Get(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	content, ok := t.tags[strings.ToLower(name)]
	return content, ok
}

// Set stores content under name, replacing any previous value.
func (t *Tags) Set(name, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags[strings.ToLower(name)] = content
}

// Names returns the stored tag names, sorted.
func (t *Tags) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.tags))
	for name := range t.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Command builds the tag command group.
func (t *Tags) Command(common []textcmd.CommandOption) (*textcmd.Command, error) {
	group, err := textcmd.NewCommand("tag", nil, with(common,
		textcmd.WithAliases("t"),
		textcmd.WithHelp("Stores and recalls snippets of text."),
	)...)
	if err != nil {
		return nil, err
	}

	if _, err := group.Subcommand("get", t.get,
		textcmd.WithParams(textcmd.Arg("name", textcmd.String)),
		textcmd.WithHelp("Shows a tag."),
	); err != nil {
		return nil, err
	}
	if _, err := group.Subcommand("set", t.set,
		textcmd.WithAliases("add"),
		textcmd.WithParams(textcmd.Arg("name", textcmd.String), textcmd.Rest("content", textcmd.String)),
		textcmd.WithHelp("Creates or replaces a tag."),
	); err != nil {
		return nil, err
	}
	if _, err := group.Subcommand("list", t.list,
		textcmd.WithHelp("Lists every tag."),
	); err != nil {
		return nil, err
	}
	return group, nil
}

func (t *Tags) get(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
	name, _ := textcmd.Value[string](args, "name")
	content, ok := t.Get(name)
	if !ok {
		return textcmd.BadArgument("Tag %q does not exist.", name)
	}
	return inv.Reply(ctx, content)
}

func (t *Tags) set(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
	name, _ := textcmd.Value[string](args, "name")
	content, _ := textcmd.Value[string](args, "content")
	t.Set(name, content)
	return inv.Reply(ctx, fmt.Sprintf("Saved tag %q.", name))
}

func (t *Tags) list(ctx context.Context, inv *textcmd.Invocation, _ *textcmd.Args) error {
	names := t.Names()
	if len(names) == 0 {
		return inv.Reply(ctx, "No tags yet.")
	}
	return inv.Reply(ctx, strings.Join(names, ", "))
}

func whois(common []textcmd.CommandOption) (*textcmd.Command, error) {
	return textcmd.NewCommand("whois", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
		m, _ := textcmd.Value[*discordgo.Member](args, "member")
		return inv.Reply(ctx, describeMember(m))
	}, with(common,
		textcmd.WithParams(textcmd.Arg("member", discord.Member)),
		textcmd.WithConverters(discord.Converters()),
		textcmd.WithHelp("Shows who a server member is."),
	)...)
}

func describeMember(m *discordgo.Member) string {
	name := m.User.Username
	if m.Nick != "" {
		name = fmt.Sprintf("%s (%s)", m.Nick, m.User.Username)
	}
	out := fmt.Sprintf("%s, id %s", name, m.User.ID)
	if !m.JoinedAt.IsZero() {
		out += ", joined " + m.JoinedAt.Format(time.DateOnly)
	}
	if len(m.Roles) > 0 {
		out += fmt.Sprintf(", %d roles", len(m.Roles))
	}
	return out
}
