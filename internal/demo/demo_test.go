package demo

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/suite"

	"github.com/bjaus/textcmd"
	"github.com/bjaus/textcmd/discord"
)

type replier struct {
	replies  []string
	failures []string
}

func (r *replier) Reply(_ context.Context, text string) error {
	r.replies = append(r.replies, text)
	return nil
}

func (r *replier) Fail(_ context.Context, err error) error {
	r.failures = append(r.failures, err.Error())
	return nil
}

type DemoSuite struct {
	suite.Suite
	ctx    context.Context
	router *textcmd.Router
	rep    *replier
}

func TestDemoSuite(t *testing.T) {
	suite.Run(t, new(DemoSuite))
}

func (s *DemoSuite) SetupTest() {
	s.ctx = context.Background()
	s.rep = &replier{}
	s.router = textcmd.New(textcmd.WithReplier(func(textcmd.Message) textcmd.Replier { return s.rep }))
	s.Require().NoError(Register(s.router, Options{Roll: func(sides int) int { return sides }}))
}

// send dispatches content and returns the replies it produced.
func (s *DemoSuite) send(content string) []string {
	s.rep.replies, s.rep.failures = nil, nil
	_ = s.router.Dispatch(s.ctx, textcmd.Message{Content: content, AuthorID: "u1"})
	return s.rep.replies
}

func (s *DemoSuite) failure(content string) string {
	s.send(content)
	s.Require().Len(s.rep.failures, 1, content)
	return s.rep.failures[0]
}

func (s *DemoSuite) TestPing() {
	s.Assert().Equal([]string{"pong"}, s.send("!ping"))
}

func (s *DemoSuite) TestEcho() {
	s.Assert().Equal([]string{"a quoted phrase and more"}, s.send(`!say a "quoted phrase" and   more`))
	s.Assert().Equal("text is a required argument that is missing.", s.failure("!echo"))
}

func (s *DemoSuite) TestAdd() {
	s.Assert().Equal([]string{"10"}, s.send("!add 1 2 3 4"))
	s.Assert().Equal([]string{"-1"}, s.send("!sum 1 -2"))
	s.Assert().Contains(s.failure("!add 1 two"), `"two" is not a valid integer`)
}

func (s *DemoSuite) TestRoll() {
	s.Assert().Equal([]string{"d6=6 d20=20 (total 26)"}, s.send("!roll 6 20"))
	s.Assert().Equal([]string{"attack: d20=20 (total 20)"}, s.send("!roll 20 attack"))
	s.Assert().Equal("Failed to find any arguments for Greedy[int].", s.failure("!roll fireball"))
	s.Assert().Equal("A die needs at least one side, got 0.", s.failure("!roll 0"))
}

func (s *DemoSuite) TestMode() {
	s.Assert().Equal([]string{"mode on"}, s.send("!mode on"))
	s.Assert().Equal([]string{"mode off at level 3"}, s.send("!mode off 3"))
	s.Assert().Equal(`Could not convert "maybe" into one of on, or off.`, s.failure("!mode maybe"))
	s.Assert().Equal("Too many arguments passed to mode.", s.failure("!mode on 3 high"))
	s.Assert().Equal([]string{"mode on"}, s.send("!mode on high"))
}

func (s *DemoSuite) TestTags() {
	s.Assert().Equal([]string{"No tags yet."}, s.send("!tag list"))
	s.Assert().Equal([]string{`Saved tag "rules".`}, s.send("!tag set rules Be kind, always."))
	s.Assert().Equal([]string{"Be kind, always."}, s.send("!t get RULES"))
	s.Assert().Equal([]string{`Saved tag "faq".`}, s.send("!t add faq See the pins."))
	s.Assert().Equal([]string{"faq, rules"}, s.send("!tag list"))
	s.Assert().Equal(`Tag "missing" does not exist.`, s.failure("!tag get missing"))
	s.Assert().Equal("tag needs a subcommand: get, list, set.", s.failure("!tag"))
}

func (s *DemoSuite) TestHelp() {
	listing := s.send("!help")
	s.Require().Len(listing, 1)
	s.Assert().Contains(listing[0], "!ping - Checks that the bot is listening.")
	s.Assert().Contains(listing[0], "!tag - Stores and recalls snippets of text.")
	s.Assert().NotContains(listing[0], "whois")

	roll := s.send("!help roll")
	s.Require().Len(roll, 1)
	s.Assert().Equal("!roll <dice>... [label]\n\nRolls dice with the given numbers of sides.\n\nAny text after the last number labels the roll.", roll[0])

	tag := s.send("!help tag")
	s.Require().Len(tag, 1)
	s.Assert().Contains(tag[0], "Aliases: t")
	s.Assert().Contains(tag[0], "!tag set - Creates or replaces a tag.")

	sub := s.send("!help t set")
	s.Require().Len(sub, 1)
	s.Assert().Contains(sub[0], "!tag set <name> <content>")

	s.Assert().Equal(`No command called "nope".`, s.failure("!help nope"))
}

func (s *DemoSuite) TestCooldown() {
	r := textcmd.New(textcmd.WithReplier(func(textcmd.Message) textcmd.Replier { return s.rep }))
	s.Require().NoError(Register(r, Options{CooldownPerMinute: 2}))

	for range 2 {
		s.Require().NoError(r.Dispatch(s.ctx, textcmd.Message{Content: "!ping", AuthorID: "u1"}))
	}
	err := r.Dispatch(s.ctx, textcmd.Message{Content: "!echo hi", AuthorID: "u1"})
	s.Assert().ErrorIs(err, textcmd.ErrCheckFailed, "the budget is shared across commands")

	s.Assert().NoError(r.Dispatch(s.ctx, textcmd.Message{Content: "!ping", AuthorID: "u2"}))
}

func (s *DemoSuite) TestWhois() {
	state := discordgo.NewState()
	s.Require().NoError(state.GuildAdd(&discordgo.Guild{
		ID: "1",
		Members: []*discordgo.Member{
			{GuildID: "1", Nick: "Ally", Roles: []string{"9"}, User: &discordgo.User{ID: "42", Username: "alice"}},
		},
	}))
	session := &discordgo.Session{State: state}

	r := textcmd.New()
	s.Require().NoError(Register(r, Options{Discord: true}))

	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c",
		GuildID:   "1",
		Content:   "!whois <@42>",
		Author:    &discordgo.User{ID: "7", Username: "bob"},
	}}
	msg := discord.NewHandler(r).Message(session, m)
	msg.Replier = s.rep

	s.rep.replies = nil
	s.Require().NoError(r.Dispatch(s.ctx, msg))
	s.Assert().Equal([]string{"Ally (alice), id 42, 1 roles"}, s.rep.replies)
}
