package textcmd

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type JSONInspectorSuite struct {
	suite.Suite
	inspector Inspector
}

func (s *JSONInspectorSuite) SetupTest() {
	s.inspector = JSONInspector()
}

func TestJSONInspectorSuite(t *testing.T) {
	suite.Run(t, new(JSONInspectorSuite))
}

func (s *JSONInspectorSuite) TestReturnsViewForValidJSON() {
	view, err := s.inspector.Inspect([]byte(`{"t": "MESSAGE_CREATE"}`))

	s.Require().NoError(err)
	s.Assert().NotNil(view)
}

func (s *JSONInspectorSuite) TestReturnsErrorForInvalidJSON() {
	_, err := s.inspector.Inspect([]byte(`{not valid}`))

	s.Assert().ErrorIs(err, ErrInvalidJSON)
}

func (s *JSONInspectorSuite) TestReturnsErrorForEmptyInput() {
	_, err := s.inspector.Inspect([]byte{})

	s.Assert().ErrorIs(err, ErrInvalidJSON)
}

type JSONViewSuite struct {
	suite.Suite
	view View
}

func TestJSONViewSuite(t *testing.T) {
	suite.Run(t, new(JSONViewSuite))
}

func (s *JSONViewSuite) SetupTest() {
	view, err := JSONInspector().Inspect([]byte(`{
		"t": "MESSAGE_CREATE",
		"d": {
			"content": "!ping",
			"tts": false,
			"author": {"id": "42", "bot": true},
			"mentions": [{"id": "7"}]
		}
	}`))
	s.Require().NoError(err)
	s.view = view
}

func (s *JSONViewSuite) TestHasField() {
	s.Assert().True(s.view.HasField("t"))
	s.Assert().True(s.view.HasField("d.author.id"))
	s.Assert().True(s.view.HasField("d.tts"), "false values exist")
	s.Assert().False(s.view.HasField("d.nonce"))
}

func (s *JSONViewSuite) TestGetString() {
	v, ok := s.view.GetString("d.content")
	s.Assert().True(ok)
	s.Assert().Equal("!ping", v)

	_, ok = s.view.GetString("d.author")
	s.Assert().False(ok, "objects are not strings")

	_, ok = s.view.GetString("d.author.bot")
	s.Assert().False(ok, "booleans are not strings")

	_, ok = s.view.GetString("missing")
	s.Assert().False(ok)
}

func (s *JSONViewSuite) TestGetBool() {
	v, ok := s.view.GetBool("d.author.bot")
	s.Assert().True(ok)
	s.Assert().True(v)

	v, ok = s.view.GetBool("d.tts")
	s.Assert().True(ok)
	s.Assert().False(v)

	_, ok = s.view.GetBool("d.content")
	s.Assert().False(ok)
}

func (s *JSONViewSuite) TestGetBytes() {
	b, ok := s.view.GetBytes("d.author")
	s.Assert().True(ok)
	s.Assert().JSONEq(`{"id": "42", "bot": true}`, string(b))

	b, ok = s.view.GetBytes("d.mentions.0.id")
	s.Assert().True(ok)
	s.Assert().Equal(`"7"`, string(b))

	_, ok = s.view.GetBytes("d.missing")
	s.Assert().False(ok)
}
