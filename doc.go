// Package textcmd parses and dispatches prefixed text commands for chat bots.
//
// A message such as
//
//	!ban "Some User" 7 spamming links
//
// is stripped of its prefix, resolved to a command (descending into
// subcommands), tokenized, and bound to the command's declared parameters
// with per-token type conversion. The handler then receives typed values.
//
// # Quick Start
//
// Declare a command with its parameters:
//
//	ban := textcmd.MustCommand("ban", func(ctx context.Context, inv *textcmd.Invocation, args *textcmd.Args) error {
//	    user, _ := textcmd.Value[string](args, "user")
//	    days, _ := textcmd.Value[int](args, "days")
//	    reason, _ := textcmd.Value[string](args, "reason")
//	    return inv.Reply(ctx, fmt.Sprintf("banned %s for %d days: %s", user, days, reason))
//	},
//	    textcmd.WithParams(
//	        textcmd.Arg("user", textcmd.String),
//	        textcmd.Arg("days", textcmd.Int).WithDefault(1),
//	        textcmd.Rest("reason", textcmd.String).WithDefault("no reason"),
//	    ),
//	)
//
// Register it and dispatch messages:
//
//	r := textcmd.New(textcmd.WithPrefix("!"))
//	if err := r.Add(ban); err != nil {
//	    return err
//	}
//
//	err := r.Dispatch(ctx, textcmd.Message{Content: content, Replier: replier})
//
// # Tokens
//
// The argument string splits on spaces, tabs, form feeds and vertical tabs.
// Newlines do not split. A run enclosed in a quote pair (straight, curly,
// guillemets, CJK corner brackets and others) is one token with the quotes
// removed.
//
// # Parameter Types
//
// Each parameter declares a type expression:
//
//   - A Tag such as String, Int, Float, Bool or Duration, looked up in the
//     command's converter Registry
//   - Union(a, b, ...): candidates tried in order; including None makes the
//     parameter optional with a nil default (Optional(t) is Union(t, None))
//   - Literal(values...): only the listed values are accepted
//   - Greedy(t): a run of tokens converted until one fails
//   - Annotated(base, marker): the marker, usually a converter, drives
//     conversion; base is kept for display
//   - A Converter, ConverterFunc, ConverterFactory or a plain function
//     taking (), (string) or (*Invocation, string)
//
// Parameter kinds control how many tokens are taken:
//
//   - Arg: one token
//   - Rest: everything left, rejoined with single spaces, as one token
//   - Variadic: every remaining token, each converted separately
//
// Declarations that cannot work (a greedy string, a variadic with a
// default, an Annotated with several markers, a function converter with the
// wrong shape) are rejected by NewCommand with a *ConfigError.
//
// # Binding
//
// Parameters are satisfied left to right. A parameter whose conversion
// fails but which has a default takes the default and leaves the token for
// the next parameter:
//
//	textcmd.Arg("count", textcmd.Optional(textcmd.Int)),
//	textcmd.Rest("text", textcmd.String),
//
//	"!say hello there" -> count=nil text="hello there"
//	"!say 3 hello"     -> count=3 text="hello"
//
// Missing required arguments, unconvertible tokens and, for commands built
// with WithIgnoreExtra(false), surplus tokens produce a *BadArgumentError
// whose message is meant for the user.
//
// # Converters
//
// DefaultConverters covers the built-in tags. WithConverters overlays
// entries for one command, and Command.RegisterConverter patches an already
// analyzed command in place:
//
//	cmd.RegisterConverter("member", memberConverter)
//
// A tag that has no converter yet is accepted at registration and fails at
// conversion until one is registered.
//
// # Commands and Subcommands
//
// Commands form a tree. The router resolves the first word to a root
// command and then descends while the following words name subcommands:
//
//	tag, _ := textcmd.NewCommand("tag", nil, textcmd.WithAliases("t"))
//	tag.Subcommand("get", getTag, textcmd.WithParams(textcmd.Arg("name", textcmd.String)))
//
//	"!t get rules" -> tag get, args "rules"
//
// Signature renders a usage string such as
//
//	<name> [count=1] <"on"|"off"> <dice>... <extra...>
//
// # Checks
//
// Checks run before binding. With hierarchical checks (the default), a
// parent's checks guard all of its subcommands:
//
//	textcmd.WithChecks(textcmd.Cooldown(5, time.Minute, textcmd.PerUser))
//
// # Sources
//
// Hosts that receive raw JSON events register a Source. Sources are matched
// with a cheap Discriminator over an Inspector's View before Parse runs, and
// the last matching source is tried first on the next event:
//
//	r.AddSource(textcmd.GatewaySource("!"))
//	err := r.Process(ctx, rawEvent)
//
// # Hooks
//
// Hooks provide observability without coupling to a logging library:
//
//   - WithOnParse: called once a command is resolved, enriches context
//   - WithOnDispatch: called just before the command is invoked
//   - WithOnSuccess: called after the handler succeeds
//   - WithOnFailure: called after the handler or a check errors
//   - WithOnNoSource: called when no source matches a raw event
//   - WithOnParseError: called when a source's Parse returns an error
//   - WithOnNoCommand: called when a prefixed message names no command
//   - WithOnBadArgument: called when arguments cannot be bound
//   - WithOnCheckFailure: called when a command is disabled or denied
//
// Sources can implement the matching optional interfaces (OnParseHook,
// OnBadArgumentHook, ...). These run after the global hooks.
//
// # Error Handling
//
// The error-returning hooks decide what a failure means:
//
//   - Return nil to skip the message quietly
//   - Return an error to fail
//
// Without hooks, unknown commands return *UnknownCommandError, denied
// checks return an error matching ErrCheckFailed or ErrCommandDisabled, and
// bad arguments are sent to the message's Replier and returned.
//
// # Thread Safety
//
// Router is safe for concurrent use after configuration is complete. Each
// dispatch owns its cursor and argument buffers, and converters for one
// dispatch run sequentially on the calling goroutine. Do not add or remove
// commands or register converters while dispatching.
package textcmd
