// Package discord connects a textcmd router to a discordgo session.
//
// A Handler turns MESSAGE_CREATE events into textcmd messages and
// dispatches them. Handlers and converters reach the originating event
// through the message data:
//
//	ev, ok := textcmd.Data[*discord.Event](inv)
//
// Converters registers argument converters for members, users, channels
// and roles, resolved from the session's state cache.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/bjaus/textcmd"
)

// Event is the data attached to every message dispatched by a Handler.
type Event struct {
	Session *discordgo.Session
	*discordgo.MessageCreate
}

// Dispatcher runs chat messages. *textcmd.Router implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg textcmd.Message) error
}

// ErrorFunc receives dispatch errors for one event.
type ErrorFunc func(ctx context.Context, m *discordgo.MessageCreate, err error)

// Handler bridges discordgo message events to a Dispatcher.
type Handler struct {
	dispatcher Dispatcher
	ctx        context.Context
	onError    ErrorFunc
	allowBots  bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithContext sets the base context for dispatches. It defaults to
// context.Background.
func WithContext(ctx context.Context) Option {
	return func(h *Handler) {
		h.ctx = ctx
	}
}

// WithErrorFunc sets the function that receives dispatch errors.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(h *Handler) {
		h.onError = fn
	}
}

// WithBots lets messages from other bots through. The session's own
// messages are always ignored.
func WithBots() Option {
	return func(h *Handler) {
		h.allowBots = true
	}
}

// NewHandler returns a Handler dispatching to d.
func NewHandler(d Dispatcher, opts ...Option) *Handler {
	h := &Handler{dispatcher: d, ctx: context.Background()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MessageCreate is a discordgo event handler:
//
//	session.AddHandler(h.MessageCreate)
func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}
	if m.Author.Bot && !h.allowBots {
		return
	}
	if s != nil && s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	if err := h.dispatcher.Dispatch(h.ctx, h.Message(s, m)); err != nil && h.onError != nil {
		h.onError(h.ctx, m, err)
	}
}

// Message converts a discordgo event to a textcmd message that replies in
// the event's channel.
func (h *Handler) Message(s *discordgo.Session, m *discordgo.MessageCreate) textcmd.Message {
	msg := textcmd.Message{
		Content:   m.Content,
		ChannelID: m.ChannelID,
		Data:      &Event{Session: s, MessageCreate: m},
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	if s != nil {
		msg.Replier = &ChannelReplier{Sender: s, ChannelID: m.ChannelID}
	}
	return msg
}

// Bot owns a gateway session whose messages feed a Handler.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	log     zerolog.Logger
}

// NewBot creates a session for token. The session is not opened until Run.
func NewBot(token string, d Dispatcher, logger zerolog.Logger, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers

	b := &Bot{session: session, log: logger}
	opts = append([]Option{WithErrorFunc(b.logError)}, opts...)
	b.handler = NewHandler(d, opts...)
	return b, nil
}

// Session returns the underlying session.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.handler.ctx = ctx
	b.session.AddHandler(b.handler.MessageCreate)
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("connected to gateway")
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer b.session.Close()

	<-ctx.Done()
	b.log.Info().Msg("closing gateway session")
	return nil
}

func (b *Bot) logError(ctx context.Context, m *discordgo.MessageCreate, err error) {
	b.log.Warn().
		Err(err).
		Str("channel", m.ChannelID).
		Str("author", m.Author.ID).
		Msg("command failed")
}
