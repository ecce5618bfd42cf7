package textcmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// JSONPaths locates message fields in a raw JSON event, in gjson syntax.
type JSONPaths struct {
	Content   string
	ChannelID string
	AuthorID  string
}

// GatewayPaths are the paths of a Discord gateway MESSAGE_CREATE dispatch.
var GatewayPaths = JSONPaths{
	Content:   "d.content",
	ChannelID: "d.channel_id",
	AuthorID:  "d.author.id",
}

// JSONSource returns a Source that pulls a message out of raw JSON events
// at the given paths. The raw event is kept as the message's Data, as a
// json.RawMessage.
func JSONSource(name string, disc Discriminator, paths JSONPaths) Source {
	return &jsonSource{name: name, disc: disc, paths: paths}
}

// GatewaySource matches Discord gateway MESSAGE_CREATE dispatches from
// non-bot authors whose content starts with one of the prefixes.
//
//	r.AddSource(textcmd.GatewaySource("!", "?"))
func GatewaySource(prefixes ...string) Source {
	return JSONSource("gateway", And(
		FieldEquals("t", "MESSAGE_CREATE"),
		FieldHasPrefix(GatewayPaths.Content, prefixes...),
		Not(FieldTrue("d.author.bot")),
	), GatewayPaths)
}

type jsonSource struct {
	name  string
	disc  Discriminator
	paths JSONPaths
}

func (s *jsonSource) Name() string                 { return s.name }
func (s *jsonSource) Discriminator() Discriminator { return s.disc }

func (s *jsonSource) Parse(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return Message{}, ErrInvalidJSON
	}
	res := gjson.GetManyBytes(raw, s.paths.Content, s.paths.ChannelID, s.paths.AuthorID)
	if res[0].Type != gjson.String {
		return Message{}, fmt.Errorf("%s: %w", s.paths.Content, errMissingContent)
	}
	return Message{
		Content:   res[0].Str,
		ChannelID: res[1].String(),
		AuthorID:  res[2].String(),
		Data:      json.RawMessage(raw),
	}, nil
}

var errMissingContent = errors.New("message content missing or not a string")
