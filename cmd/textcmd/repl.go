package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bjaus/textcmd"
)

const (
	replAuthor  = "console"
	replChannel = "console"
)

// consoleReplier writes responses to the terminal.
type consoleReplier struct {
	out io.Writer
}

func (c consoleReplier) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(c.out, text)
	return err
}

func (c consoleReplier) Fail(_ context.Context, err error) error {
	_, werr := fmt.Fprintln(c.out, "error:", err)
	return werr
}

func newReplCommand(a *app) *cobra.Command {
	var jsonEvents bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Read commands from standard input",
		Long: `Read one message per line from standard input and print the replies.

With --json each line is a raw gateway event instead, such as
{"t":"MESSAGE_CREATE","d":{"content":"!ping","channel_id":"1","author":{"id":"2"}}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg == nil {
				return errNoConfig
			}

			out := cmd.OutOrStdout()
			r, err := a.newRouter(false, textcmd.WithReplier(func(textcmd.Message) textcmd.Replier {
				return consoleReplier{out: out}
			}))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runRepl(ctx, r, cmd.InOrStdin(), jsonEvents)
		},
	}
	cmd.Flags().BoolVar(&jsonEvents, "json", false, "treat each line as a raw gateway event")
	return cmd
}

// lineRouter is the part of the router the repl drives.
type lineRouter interface {
	Dispatch(ctx context.Context, msg textcmd.Message) error
	Process(ctx context.Context, raw []byte) error
}

// runRepl feeds lines from in to r until in is exhausted or ctx is done.
// Errors from individual lines are already reported by the router hooks.
// The reader goroutine may stay blocked on in after ctx is done; the
// process is about to exit by then.
func runRepl(ctx context.Context, r lineRouter, in io.Reader, jsonEvents bool) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		var err error
		defer func() {
			readErr <- err
			close(lines)
		}()

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			var err error
			if jsonEvents {
				err = r.Process(ctx, []byte(line))
			} else {
				err = r.Dispatch(ctx, textcmd.Message{Content: line, AuthorID: replAuthor, ChannelID: replChannel})
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
		}
	}
}
