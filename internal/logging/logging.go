// Package logging builds the zerolog logger used by the textcmd binary and
// the router hooks that report every dispatch through it.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bjaus/textcmd"
)

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string

	// JSON writes structured lines instead of the console format.
	JSON bool

	// File, when set, also writes JSON lines to a rotating log file.
	File string

	// Out is the terminal writer. Nil means stderr.
	Out io.Writer
}

// Rotation limits for the log file.
const (
	maxSizeMB  = 128
	maxBackups = 5
	maxAgeDays = 16
)

// New builds a logger. Close the returned closer to flush the log file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Hooks returns router options that log each dispatch stage. The logger is
// attached to the dispatch context, so handlers can log with
// zerolog.Ctx(ctx) and inherit the invocation fields.
//
// Unknown commands, denied checks and unmatched or unparsable events are
// logged and skipped. Bad arguments are logged and reported to the user
// through the message's Replier.
func Hooks(logger zerolog.Logger) []textcmd.Option {
	return []textcmd.Option{
		textcmd.WithOnParse(func(ctx context.Context, inv *textcmd.Invocation) context.Context {
			l := logger.With().
				Str("invocation", inv.ID).
				Str("command", inv.Command.QualifiedName()).
				Str("author", inv.Message.AuthorID).
				Str("channel", inv.Message.ChannelID).
				Logger()
			if inv.Source != "" {
				l = l.With().Str("source", inv.Source).Logger()
			}
			l.Debug().Str("args", inv.Args).Msg("command parsed")
			return l.WithContext(ctx)
		}),
		textcmd.WithOnSuccess(func(ctx context.Context, inv *textcmd.Invocation, d time.Duration) {
			zerolog.Ctx(ctx).Info().Dur("took", d).Msg("command succeeded")
		}),
		textcmd.WithOnFailure(func(ctx context.Context, inv *textcmd.Invocation, err error, d time.Duration) {
			zerolog.Ctx(ctx).Error().Err(err).Dur("took", d).Msg("command failed")
		}),
		textcmd.WithOnBadArgument(func(ctx context.Context, inv *textcmd.Invocation, bad *textcmd.BadArgumentError) error {
			zerolog.Ctx(ctx).Info().Str("reason", bad.Error()).Msg("bad argument")
			if inv.Message.Replier == nil {
				return nil
			}
			return inv.Message.Replier.Fail(ctx, bad)
		}),
		textcmd.WithOnCheckFailure(func(ctx context.Context, inv *textcmd.Invocation, err error) error {
			zerolog.Ctx(ctx).Info().Err(err).Msg("command denied")
			return nil
		}),
		textcmd.WithOnNoCommand(func(ctx context.Context, msg textcmd.Message, err *textcmd.UnknownCommandError) error {
			logger.Debug().
				Str("name", err.Name).
				Strs("suggestions", err.Suggestions).
				Str("author", msg.AuthorID).
				Msg("unknown command")
			return nil
		}),
		textcmd.WithOnNoSource(func(ctx context.Context, raw []byte) error {
			logger.Debug().Int("bytes", len(raw)).Msg("no source matched event")
			return nil
		}),
		textcmd.WithOnParseError(func(ctx context.Context, source string, err error) error {
			logger.Warn().Str("source", source).Err(err).Msg("event parse failed")
			return nil
		}),
	}
}
