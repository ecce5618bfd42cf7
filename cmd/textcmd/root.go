package main

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bjaus/textcmd"
	"github.com/bjaus/textcmd/internal/config"
	"github.com/bjaus/textcmd/internal/demo"
	"github.com/bjaus/textcmd/internal/logging"
)

const (
	rootUse              = "textcmd"
	rootShortDescription = "Run the textcmd demo bot"
	rootLongDescription  = `textcmd parses prefixed chat messages into commands with typed arguments.

Settings come from the environment, optionally loaded from a .env file:
  DISCORD_TOKEN        bot token, required by the discord subcommand
  COMMAND_PREFIX       comma separated prefixes (default "!")
  LOG_LEVEL            zerolog level (default "info")
  LOG_FILE             rotating log file, in addition to stderr
  LOG_JSON             write JSON log lines to stderr
  COOLDOWN_PER_MINUTE  commands per user per minute, 0 to disable (default 30)`

	envFileFlagName        = "env-file"
	envFileFlagDescription = "load settings from this file instead of .env"
)

// app holds what every subcommand needs once settings are loaded.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

// newRouter builds a router serving the demo commands.
func (a *app) newRouter(discordCommands bool, opts ...textcmd.Option) (*textcmd.Router, error) {
	opts = append([]textcmd.Option{textcmd.WithPrefix(a.cfg.Prefixes...)}, opts...)
	opts = append(opts, logging.Hooks(a.log)...)

	r := textcmd.New(opts...)
	r.AddSource(textcmd.GatewaySource(a.cfg.Prefixes...))

	err := demo.Register(r, demo.Options{
		CooldownPerMinute: a.cfg.CooldownPerMinute,
		Discord:           discordCommands,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func newRootCommand() *cobra.Command {
	a := &app{log: zerolog.Nop()}
	var envFile string

	root := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}

			logger, closer, err := logging.New(logging.Options{
				Level: cfg.LogLevel,
				JSON:  cfg.LogJSON,
				File:  cfg.LogFile,
				Out:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			a.cfg, a.log, a.closer = cfg, logger, closer
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer == nil {
				return nil
			}
			return a.closer.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&envFile, envFileFlagName, "", envFileFlagDescription)

	root.AddCommand(
		newDiscordCommand(a),
		newReplCommand(a),
	)
	return root
}

var errNoConfig = errors.New("settings were not loaded")
