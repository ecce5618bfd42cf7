package textcmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allow(context.Context, *Invocation) (bool, error) { return true, nil }
func deny(context.Context, *Invocation) (bool, error)  { return false, nil }

func TestAll(t *testing.T) {
	ctx := context.Background()

	ok, err := All(allow, allow)(ctx, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = All()(ctx, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	called := false
	after := func(context.Context, *Invocation) (bool, error) {
		called = true
		return true, nil
	}
	ok, err = All(allow, deny, after)(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called, "stops at the first denial")

	boom := errors.New("boom")
	_, err = All(func(context.Context, *Invocation) (bool, error) { return true, boom })(ctx, nil)
	assert.ErrorIs(t, err, boom)
}

func TestAny(t *testing.T) {
	ctx := context.Background()

	ok, err := Any(deny, allow)(ctx, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Any(deny, deny)(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Any()(ctx, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("boom")
	_, err = Any(deny, func(context.Context, *Invocation) (bool, error) { return false, boom }, allow)(ctx, nil)
	assert.ErrorIs(t, err, boom)
}

func TestCooldown(t *testing.T) {
	from := func(author, channel string) *Invocation {
		return &Invocation{Message: Message{AuthorID: author, ChannelID: channel}}
	}

	t.Run("per user", func(t *testing.T) {
		l := NewCooldown(1, time.Hour, 1, nil)

		assert.True(t, l.Allow(from("alice", "c1")))
		assert.False(t, l.Allow(from("alice", "c2")))
		assert.True(t, l.Allow(from("bob", "c1")))

		l.Reset()
		assert.True(t, l.Allow(from("alice", "c1")))
	})

	t.Run("per channel", func(t *testing.T) {
		l := NewCooldown(1, time.Hour, 1, PerChannel)

		assert.True(t, l.Allow(from("alice", "c1")))
		assert.False(t, l.Allow(from("bob", "c1")))
		assert.True(t, l.Allow(from("bob", "c2")))
	})

	t.Run("global", func(t *testing.T) {
		l := NewCooldown(2, time.Hour, 2, Global)

		assert.True(t, l.Allow(from("a", "1")))
		assert.True(t, l.Allow(from("b", "2")))
		assert.False(t, l.Allow(from("c", "3")))
	})

	t.Run("as a command check", func(t *testing.T) {
		ctx := context.Background()
		r := New()
		cmd := MustCommand("slow", noop, WithChecks(Cooldown(1, time.Hour, PerUser)))
		require.NoError(t, r.Add(cmd))

		require.NoError(t, r.Dispatch(ctx, Message{Content: "!slow", AuthorID: "u"}))

		err := r.Dispatch(ctx, Message{Content: "!slow", AuthorID: "u"})
		var cf *CheckFailureError
		require.ErrorAs(t, err, &cf)
		assert.Equal(t, "check 0 of slow failed", cf.Error())
	})
}
