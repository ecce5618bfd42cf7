package textcmd

import (
	"context"
	"time"
)

// OnParseFunc is called once a message has been resolved to a command,
// before checks run. Use it to enrich the context with logging fields. The
// returned context is used for the rest of the dispatch.
type OnParseFunc func(ctx context.Context, inv *Invocation) context.Context

// OnDispatchFunc is called just before the command is invoked.
type OnDispatchFunc func(ctx context.Context, inv *Invocation)

// OnSuccessFunc is called after the handler completes successfully.
type OnSuccessFunc func(ctx context.Context, inv *Invocation, duration time.Duration)

// OnFailureFunc is called after the handler, or a check, fails with an
// error other than a bad argument.
type OnFailureFunc func(ctx context.Context, inv *Invocation, err error, duration time.Duration)

// OnNoSourceFunc is called when no source matches a raw event.
// Return nil to skip the event, return an error to fail.
type OnNoSourceFunc func(ctx context.Context, raw []byte) error

// OnParseErrorFunc is called when a matched source fails to parse an event.
// Return nil to skip, return an error to fail.
type OnParseErrorFunc func(ctx context.Context, source string, err error) error

// OnNoCommandFunc is called when a prefixed message names no registered
// command. Return nil to skip, return an error to fail.
type OnNoCommandFunc func(ctx context.Context, msg Message, err *UnknownCommandError) error

// OnBadArgumentFunc is called when the arguments cannot be bound.
// Return nil to swallow the error, return an error to fail.
type OnBadArgumentFunc func(ctx context.Context, inv *Invocation, err *BadArgumentError) error

// OnCheckFailureFunc is called when a command is disabled or one of its
// checks denies the invocation. err matches ErrCommandDisabled or
// ErrCheckFailed. Return nil to skip silently, return an error to fail.
type OnCheckFailureFunc func(ctx context.Context, inv *Invocation, err error) error

// hooks holds all configured hook functions.
type hooks struct {
	onParse        []OnParseFunc
	onDispatch     []OnDispatchFunc
	onSuccess      []OnSuccessFunc
	onFailure      []OnFailureFunc
	onNoSource     []OnNoSourceFunc
	onParseError   []OnParseErrorFunc
	onNoCommand    []OnNoCommandFunc
	onBadArgument  []OnBadArgumentFunc
	onCheckFailure []OnCheckFailureFunc
}

// WithOnParse adds a hook called once a message resolves to a command.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	textcmd.WithOnParse(func(ctx context.Context, inv *textcmd.Invocation) context.Context {
//	    return logger.With().Str("invocation", inv.ID).Logger().WithContext(ctx)
//	})
func WithOnParse(fn OnParseFunc) Option {
	return func(r *Router) {
		r.hooks.onParse = append(r.hooks.onParse, fn)
	}
}

// WithOnDispatch adds a hook called just before the command is invoked.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(r *Router) {
		r.hooks.onDispatch = append(r.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the handler completes successfully.
//
// Example:
//
//	textcmd.WithOnSuccess(func(ctx context.Context, inv *textcmd.Invocation, d time.Duration) {
//	    log.Info().Str("command", inv.Command.QualifiedName()).Dur("took", d).Send()
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(r *Router) {
		r.hooks.onSuccess = append(r.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after the handler fails.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(r *Router) {
		r.hooks.onFailure = append(r.hooks.onFailure, fn)
	}
}

// WithOnNoSource adds a hook called when no source matches a raw event.
// Multiple hooks are called in order; first error wins.
func WithOnNoSource(fn OnNoSourceFunc) Option {
	return func(r *Router) {
		r.hooks.onNoSource = append(r.hooks.onNoSource, fn)
	}
}

// WithOnParseError adds a hook called when a source fails to parse an event.
// Multiple hooks are called in order; first error wins.
func WithOnParseError(fn OnParseErrorFunc) Option {
	return func(r *Router) {
		r.hooks.onParseError = append(r.hooks.onParseError, fn)
	}
}

// WithOnNoCommand adds a hook called for prefixed messages naming no
// command. Multiple hooks are called in order; first error wins.
//
// Example:
//
//	textcmd.WithOnNoCommand(func(ctx context.Context, msg textcmd.Message, err *textcmd.UnknownCommandError) error {
//	    if len(err.Suggestions) > 0 && msg.Replier != nil {
//	        return msg.Replier.Fail(ctx, err)
//	    }
//	    return nil
//	})
func WithOnNoCommand(fn OnNoCommandFunc) Option {
	return func(r *Router) {
		r.hooks.onNoCommand = append(r.hooks.onNoCommand, fn)
	}
}

// WithOnBadArgument adds a hook called when arguments cannot be bound.
// Installing one replaces the default of failing through the message's
// Replier. Multiple hooks are called in order; first error wins.
func WithOnBadArgument(fn OnBadArgumentFunc) Option {
	return func(r *Router) {
		r.hooks.onBadArgument = append(r.hooks.onBadArgument, fn)
	}
}

// WithOnCheckFailure adds a hook called when a command is disabled or its
// checks deny the invocation. Multiple hooks are called in order; first
// error wins.
func WithOnCheckFailure(fn OnCheckFailureFunc) Option {
	return func(r *Router) {
		r.hooks.onCheckFailure = append(r.hooks.onCheckFailure, fn)
	}
}

// OnParseHook is an optional interface that sources can implement to add
// source-specific context enrichment. Called after global OnParse hooks.
type OnParseHook interface {
	OnParse(ctx context.Context, inv *Invocation) context.Context
}

// OnDispatchHook is an optional interface that sources can implement to add
// source-specific pre-dispatch behavior. Called after global OnDispatch hooks.
type OnDispatchHook interface {
	OnDispatch(ctx context.Context, inv *Invocation)
}

// OnSuccessHook is an optional interface that sources can implement to add
// source-specific behavior on handler success. Called after global OnSuccess hooks.
type OnSuccessHook interface {
	OnSuccess(ctx context.Context, inv *Invocation, duration time.Duration)
}

// OnFailureHook is an optional interface that sources can implement to add
// source-specific behavior on handler failure. Called after global OnFailure hooks.
type OnFailureHook interface {
	OnFailure(ctx context.Context, inv *Invocation, err error, duration time.Duration)
}

// OnNoCommandHook is an optional interface that sources can implement to
// handle unknown commands. Called after global hooks; if either returns an
// error, that error is used.
type OnNoCommandHook interface {
	OnNoCommand(ctx context.Context, msg Message, err *UnknownCommandError) error
}

// OnBadArgumentHook is an optional interface that sources can implement to
// handle binding failures. Called after global hooks; if either returns an
// error, that error is used.
type OnBadArgumentHook interface {
	OnBadArgument(ctx context.Context, inv *Invocation, err *BadArgumentError) error
}
