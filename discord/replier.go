package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLength is Discord's limit on message content, in characters.
const maxMessageLength = 2000

// Sender posts channel messages. *discordgo.Session implements it.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ChannelReplier replies by posting to a channel. Text longer than a
// single message is split over several.
type ChannelReplier struct {
	Sender    Sender
	ChannelID string
}

// Reply implements textcmd.Replier.
func (r *ChannelReplier) Reply(ctx context.Context, text string) error {
	for _, chunk := range split(text, maxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.Sender.ChannelMessageSend(r.ChannelID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send to channel %s: %w", r.ChannelID, err)
		}
	}
	return nil
}

// Fail implements textcmd.Replier.
func (r *ChannelReplier) Fail(ctx context.Context, err error) error {
	return r.Reply(ctx, ":warning: "+err.Error())
}

// split cuts s into pieces of at most n runes, preferring line breaks.
func split(s string, n int) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}

	var out []string
	for len(runes) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(out, string(runes))
}
