package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/bjaus/textcmd"
)

// Type tags for Discord entities. Register their converters with
// Converters.
const (
	Member  textcmd.Tag = "member"
	User    textcmd.Tag = "user"
	Channel textcmd.Tag = "channel"
	Role    textcmd.Tag = "role"
)

var errNoEvent = errors.New("discord: invocation has no discord event")

// Converters returns converters for Member, User, Channel and Role:
//
//	textcmd.NewCommand("whois", h.Whois,
//	    textcmd.WithParams(textcmd.Arg("who", discord.Member)),
//	    textcmd.WithConverters(discord.Converters()),
//	)
//
// Each accepts a mention, a raw ID, or a name. Names match case-insensitively
// against usernames, display names and nicknames for members and users, and
// against names for channels and roles. Lookups only use the session's state
// cache.
func Converters() textcmd.Registry {
	return textcmd.Registry{
		Member:  textcmd.ConverterFunc(convertMember),
		User:    textcmd.ConverterFunc(convertUser),
		Channel: textcmd.ConverterFunc(convertChannel),
		Role:    textcmd.ConverterFunc(convertRole),
	}
}

// event returns the invocation's discord event, with a usable state.
func event(inv *textcmd.Invocation) (*Event, error) {
	ev, ok := textcmd.Data[*Event](inv)
	if !ok || ev == nil || ev.MessageCreate == nil || ev.Message == nil || ev.Session == nil || ev.Session.State == nil {
		return nil, errNoEvent
	}
	return ev, nil
}

func convertMember(_ context.Context, inv *textcmd.Invocation, arg string) (any, error) {
	ev, err := event(inv)
	if err != nil {
		return nil, err
	}
	if ev.GuildID == "" {
		return nil, textcmd.BadArgument("Members can only be looked up in a server.")
	}
	if m := findMember(ev.Session.State, ev.GuildID, arg); m != nil {
		return m, nil
	}
	return nil, textcmd.BadArgument("Member %q not found.", arg)
}

func convertUser(_ context.Context, inv *textcmd.Invocation, arg string) (any, error) {
	ev, err := event(inv)
	if err != nil {
		return nil, err
	}
	if ev.GuildID != "" {
		if m := findMember(ev.Session.State, ev.GuildID, arg); m != nil && m.User != nil {
			return m.User, nil
		}
	}

	id, isID := snowflake(arg, "@!", "@")
	candidates := append([]*discordgo.User{ev.Author}, ev.Mentions...)
	for _, u := range candidates {
		if u == nil {
			continue
		}
		if (isID && u.ID == id) || (!isID && userNamed(u, arg)) {
			return u, nil
		}
	}
	return nil, textcmd.BadArgument("User %q not found.", arg)
}

func convertChannel(_ context.Context, inv *textcmd.Invocation, arg string) (any, error) {
	ev, err := event(inv)
	if err != nil {
		return nil, err
	}
	state := ev.Session.State

	if id, ok := snowflake(arg, "#"); ok {
		if c, err := state.Channel(id); err == nil {
			return c, nil
		}
		return nil, textcmd.BadArgument("Channel %q not found.", arg)
	}

	if ev.GuildID != "" {
		if g, err := state.Guild(ev.GuildID); err == nil {
			name := strings.TrimPrefix(arg, "#")
			state.RLock()
			defer state.RUnlock()
			for _, c := range g.Channels {
				if strings.EqualFold(c.Name, name) {
					return c, nil
				}
			}
		}
	}
	return nil, textcmd.BadArgument("Channel %q not found.", arg)
}

func convertRole(_ context.Context, inv *textcmd.Invocation, arg string) (any, error) {
	ev, err := event(inv)
	if err != nil {
		return nil, err
	}
	if ev.GuildID == "" {
		return nil, textcmd.BadArgument("Roles can only be looked up in a server.")
	}
	state := ev.Session.State

	if id, ok := snowflake(arg, "@&"); ok {
		if r, err := state.Role(ev.GuildID, id); err == nil {
			return r, nil
		}
		return nil, textcmd.BadArgument("Role %q not found.", arg)
	}

	if g, err := state.Guild(ev.GuildID); err == nil {
		state.RLock()
		defer state.RUnlock()
		for _, r := range g.Roles {
			if strings.EqualFold(r.Name, arg) {
				return r, nil
			}
		}
	}
	return nil, textcmd.BadArgument("Role %q not found.", arg)
}

// findMember looks a member up by mention, ID or name.
func findMember(state *discordgo.State, guildID, arg string) *discordgo.Member {
	if id, ok := snowflake(arg, "@!", "@"); ok {
		m, err := state.Member(guildID, id)
		if err != nil {
			return nil
		}
		return m
	}

	g, err := state.Guild(guildID)
	if err != nil {
		return nil
	}
	state.RLock()
	defer state.RUnlock()
	for _, m := range g.Members {
		if m.User == nil {
			continue
		}
		if userNamed(m.User, arg) || (m.Nick != "" && strings.EqualFold(m.Nick, arg)) {
			return m
		}
	}
	return nil
}

func userNamed(u *discordgo.User, name string) bool {
	return strings.EqualFold(u.Username, name) || (u.GlobalName != "" && strings.EqualFold(u.GlobalName, name))
}

// snowflake extracts an ID from a raw ID or from a mention written with one
// of the sigils, such as <@!123> for sigil "@!".
func snowflake(arg string, sigils ...string) (string, bool) {
	id := arg
	if strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">") {
		inner := arg[1 : len(arg)-1]
		id = ""
		for _, sigil := range sigils {
			if rest, ok := strings.CutPrefix(inner, sigil); ok {
				id = rest
				break
			}
		}
	}
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}
