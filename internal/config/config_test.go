package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Config reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DISCORD_TOKEN", "COMMAND_PREFIX", "LOG_LEVEL", "LOG_FILE", "LOG_JSON", "COOLDOWN_PER_MINUTE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse()

	require.NoError(t, err)
	assert.Equal(t, []string{"!"}, cfg.Prefixes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.CooldownPerMinute)
	assert.False(t, cfg.LogJSON)
	assert.ErrorIs(t, cfg.ValidateDiscord(), ErrMissingToken)
}

func TestParseEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("COMMAND_PREFIX", "!,?")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("COOLDOWN_PER_MINUTE", "0")

	cfg, err := Parse()

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.DiscordToken)
	assert.Equal(t, []string{"!", "?"}, cfg.Prefixes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Zero(t, cfg.CooldownPerMinute)
	assert.NoError(t, cfg.ValidateDiscord())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{name: "level", key: "LOG_LEVEL", value: "loud", want: "LOG_LEVEL"},
		{name: "cooldown", key: "COOLDOWN_PER_MINUTE", value: "-1", want: "must not be negative"},
		{name: "cooldown type", key: "COOLDOWN_PER_MINUTE", value: "many", want: "COOLDOWN_PER_MINUTE"},
		{name: "empty prefix", key: "COMMAND_PREFIX", value: "!, ", want: "empty prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Parse()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DISCORD_TOKEN=from-file\nLOG_LEVEL=warn\n"), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}
