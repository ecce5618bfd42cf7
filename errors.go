package textcmd

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors returned by command registration and dispatch.
var (
	// ErrConfiguration is matched by every *ConfigError.
	ErrConfiguration = errors.New("textcmd: invalid command configuration")

	ErrDuplicateCommand = errors.New("textcmd: duplicate command")
	ErrUnknownCommand   = errors.New("textcmd: unknown command")
	ErrCheckFailed      = errors.New("textcmd: command checks failed")
	ErrCommandDisabled  = errors.New("textcmd: command is disabled")
	ErrNoSource         = errors.New("textcmd: no source matched message")
)

// ConfigError reports a command that cannot be built from its declared
// parameters. It is raised at registration time, never during dispatch.
type ConfigError struct {
	Command string
	Param   string
	Reason  string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("textcmd: ")
	if e.Command != "" {
		b.WriteString(e.Command)
		b.WriteString(": ")
	}
	if e.Param != "" {
		b.WriteString("parameter ")
		b.WriteString(e.Param)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(param, format string, args ...any) *ConfigError {
	return &ConfigError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// BadArgumentError is a user-facing binding failure: a token that could not
// be converted, a missing required argument, or surplus arguments.
//
// Converters may return a *BadArgumentError themselves to control the
// message shown to the user; any other converter error is wrapped into one.
type BadArgumentError struct {
	Message string
	Err     error
}

// BadArgument returns a *BadArgumentError with a formatted message.
func BadArgument(format string, args ...any) error {
	return &BadArgumentError{Message: fmt.Sprintf(format, args...)}
}

func (e *BadArgumentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "bad argument"
}

func (e *BadArgumentError) Unwrap() error { return e.Err }

// asBadArgument returns err unchanged when it already is a bad argument
// error, and wraps it otherwise.
func asBadArgument(err error) *BadArgumentError {
	var bad *BadArgumentError
	if errors.As(err, &bad) {
		return bad
	}
	return &BadArgumentError{Message: err.Error(), Err: err}
}

// UnknownCommandError is returned when a prefixed message names no
// registered command. Suggestions holds close matches, best first.
type UnknownCommandError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	msg := fmt.Sprintf("unknown command %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += ", did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

// Is reports whether target is ErrUnknownCommand.
func (e *UnknownCommandError) Is(target error) bool { return target == ErrUnknownCommand }
