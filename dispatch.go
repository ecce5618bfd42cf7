package textcmd

import "context"

// HandlerFunc runs a command once its arguments are bound.
//
//	textcmd.NewCommand("ping", func(ctx context.Context, inv *textcmd.Invocation, _ *textcmd.Args) error {
//	    return inv.Reply(ctx, "pong")
//	})
//
// Struct handlers pass a method value:
//
//	textcmd.NewCommand("ban", h.Ban, textcmd.WithParams(textcmd.Arg("user", textcmd.String)))
type HandlerFunc func(ctx context.Context, inv *Invocation, args *Args) error

// Source parses raw event bytes into a chat message.
//
// Sources are registered with Router.AddSource and matched using their
// Discriminator before Parse is called, so cheap detection happens before
// expensive parsing. Hosts that already have a decoded message call
// Router.Dispatch directly and need no source.
//
// Example:
//
//	type ircSource struct{}
//
//	func (s *ircSource) Name() string { return "irc" }
//
//	func (s *ircSource) Discriminator() textcmd.Discriminator {
//	    return textcmd.FieldEquals("kind", "privmsg")
//	}
//
//	func (s *ircSource) Parse(raw []byte) (textcmd.Message, error) {
//	    var ev struct {
//	        Text   string `json:"text"`
//	        Target string `json:"target"`
//	        Nick   string `json:"nick"`
//	    }
//	    if err := json.Unmarshal(raw, &ev); err != nil {
//	        return textcmd.Message{}, err
//	    }
//	    return textcmd.Message{Content: ev.Text, ChannelID: ev.Target, AuthorID: ev.Nick}, nil
//	}
type Source interface {
	// Name returns the source identifier for logging.
	Name() string

	// Discriminator returns a predicate for cheap event detection.
	Discriminator() Discriminator

	// Parse turns raw bytes into a message, or explains why it can't.
	Parse(raw []byte) (Message, error)
}

// SourceFunc creates a Source from a name, discriminator, and parse function.
func SourceFunc(name string, disc Discriminator, parse func([]byte) (Message, error)) Source {
	return &sourceFunc{name: name, disc: disc, parse: parse}
}

type sourceFunc struct {
	name  string
	disc  Discriminator
	parse func([]byte) (Message, error)
}

func (s *sourceFunc) Name() string                      { return s.name }
func (s *sourceFunc) Discriminator() Discriminator      { return s.disc }
func (s *sourceFunc) Parse(raw []byte) (Message, error) { return s.parse(raw) }

// Message is one inbound chat message.
type Message struct {
	// Content is the full message text, prefix included.
	Content string

	// ChannelID and AuthorID identify where the message came from. Checks
	// such as Cooldown key on them.
	ChannelID string
	AuthorID  string

	// Data is the host framework's own message value, for converters and
	// handlers that need to resolve framework entities.
	Data any

	// Replier sends responses back to the channel. It may be nil for
	// fire-and-forget sources.
	Replier Replier
}

// Replier sends responses back to where a message came from.
type Replier interface {
	// Reply sends a text response.
	Reply(ctx context.Context, text string) error

	// Fail reports an error to the user.
	Fail(ctx context.Context, err error) error
}

// Invocation is the context of one command dispatch. Converters and
// handlers receive it.
type Invocation struct {
	// ID uniquely identifies the dispatch, for log correlation.
	ID string

	// Source is the name of the source that parsed the message, or empty
	// when the message was dispatched directly.
	Source string

	// Message is the inbound message.
	Message Message

	// Prefix is the prefix that matched.
	Prefix string

	// InvokedWith is the space-joined path of names and aliases the user
	// typed to reach the command.
	InvokedWith string

	// Args is the text following the command path.
	Args string

	// Command is the resolved command.
	Command *Command
}

// Reply sends text through the message's Replier. It is a no-op when the
// message has none.
func (inv *Invocation) Reply(ctx context.Context, text string) error {
	if inv.Message.Replier == nil {
		return nil
	}
	return inv.Message.Replier.Reply(ctx, text)
}

// Data returns the host message value as a T.
func Data[T any](inv *Invocation) (T, bool) {
	var zero T
	if inv == nil {
		return zero, false
	}
	v, ok := inv.Message.Data.(T)
	return v, ok
}
