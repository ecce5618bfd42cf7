// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the settings of the textcmd binary.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Prefixes a message must start with to be a command.
	Prefixes []string `env:"COMMAND_PREFIX" envDefault:"!" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
	LogJSON  bool   `env:"LOG_JSON"`

	// CooldownPerMinute bounds how often one user may run commands.
	// Zero disables the cooldown.
	CooldownPerMinute int `env:"COOLDOWN_PER_MINUTE" envDefault:"30"`
}

// ErrMissingToken is returned by ValidateDiscord without a bot token.
var ErrMissingToken = errors.New("config: DISCORD_TOKEN is not set")

// Load reads the given .env files, or .env in the working directory when
// none are named, then parses the environment. A missing .env file is not
// an error; variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && len(files) > 0 {
		return nil, fmt.Errorf("config: load env files: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings every subcommand needs.
func (c *Config) Validate() error {
	var errs []error
	for _, p := range c.Prefixes {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, errors.New("config: COMMAND_PREFIX contains an empty prefix"))
			break
		}
	}
	if len(c.Prefixes) == 0 {
		errs = append(errs, errors.New("config: COMMAND_PREFIX is empty"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL: %w", err))
	}
	if c.CooldownPerMinute < 0 {
		errs = append(errs, errors.New("config: COOLDOWN_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidateDiscord checks the settings needed to connect to Discord.
func (c *Config) ValidateDiscord() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return nil
}
