package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bjaus/textcmd/discord"
)

func newDiscordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discord",
		Short: "Connect to Discord and serve commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg == nil {
				return errNoConfig
			}
			if err := a.cfg.ValidateDiscord(); err != nil {
				return err
			}

			r, err := a.newRouter(true)
			if err != nil {
				return err
			}

			bot, err := discord.NewBot(a.cfg.DiscordToken, r, a.log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return bot.Run(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				a.log.Info().Msg("shutting down")
				return nil
			})
			return g.Wait()
		},
	}
}
