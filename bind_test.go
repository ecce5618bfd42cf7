package textcmd

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BinderSuite struct {
	suite.Suite
	ctx context.Context
}

func TestBinderSuite(t *testing.T) {
	suite.Run(t, new(BinderSuite))
}

func (s *BinderSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *BinderSuite) bind(input string, specs ...ParamSpec) (*Args, error) {
	params, err := AnalyzeParams(specs, DefaultConverters())
	s.Require().NoError(err)
	return Bind(s.ctx, nil, params, input, true)
}

func (s *BinderSuite) badArgument(err error) string {
	var bad *BadArgumentError
	s.Require().ErrorAs(err, &bad)
	return bad.Error()
}

func (s *BinderSuite) TestPositional() {
	args, err := s.bind(`alice 3 "two words"`, Arg("name", String), Arg("n", Int), Arg("text", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{"alice", 3, "two words"}, args.Positional)
	s.Assert().Empty(args.Keyword)
}

func (s *BinderSuite) TestConversionFailureIsBadArgument() {
	_, err := s.bind("abc", Arg("n", Int))

	msg := s.badArgument(err)
	s.Assert().Contains(msg, `"abc" is not a valid integer`)
	s.Assert().ErrorIs(err, strconv.ErrSyntax)
}

func (s *BinderSuite) TestConverterBadArgumentPropagatesUnchanged() {
	_, err := s.bind("maybe", Arg("flag", Bool))

	s.Assert().Equal("maybe is not a recognised boolean option.", s.badArgument(err))
}

func (s *BinderSuite) TestOptionalUnionFallsBackToNil() {
	args, err := s.bind("abc", Arg("n", Optional(Int)))

	s.Require().NoError(err)
	s.Assert().Equal([]any{nil}, args.Positional)
}

func (s *BinderSuite) TestDefaultedParamDoesNotConsumeToken() {
	args, err := s.bind("hello world", Arg("n", Optional(Int)), Arg("word", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{nil, "hello"}, args.Positional)
}

func (s *BinderSuite) TestExplicitDefaultOnFailure() {
	args, err := s.bind("x", Arg("n", Int).WithDefault(5), Arg("s", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{5, "x"}, args.Positional)
}

func (s *BinderSuite) TestUnionTriesMembersInOrder() {
	args, err := s.bind("2.5 7", Arg("a", Union(Int, Float)), Arg("b", Union(Int, Float)))

	s.Require().NoError(err)
	s.Assert().Equal([]any{2.5, 7}, args.Positional)
}

func (s *BinderSuite) TestRequiredUnionNamesCandidates() {
	_, err := s.bind("abc", Arg("n", Union(Int, Float, Duration)))

	s.Assert().Equal(`Could not convert "abc" into int, float, or duration.`, s.badArgument(err))
}

func (s *BinderSuite) TestMissingRequiredArgument() {
	_, err := s.bind("1", Arg("a", Int), Arg("b", Int))

	s.Assert().Equal("b is a required argument that is missing.", s.badArgument(err))
}

func (s *BinderSuite) TestDefaultsFillAfterTokensRunOut() {
	args, err := s.bind("", Arg("a", Int).WithDefault(1), Arg("b", Optional(String)))

	s.Require().NoError(err)
	s.Assert().Equal([]any{1, nil}, args.Positional)
}

func (s *BinderSuite) TestRestJoinsRemainingTokens() {
	args, err := s.bind(`ban  alice   "for real" now`, Arg("action", String), Rest("reason", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{"ban"}, args.Positional)
	s.Assert().Equal(map[string]any{"reason": "alice for real now"}, args.Keyword)
}

func (s *BinderSuite) TestRestDefaultWhenEmpty() {
	args, err := s.bind("ban", Arg("action", String), Rest("reason", String).WithDefault("none"))

	s.Require().NoError(err)
	v, ok := args.Get("reason")
	s.Assert().True(ok)
	s.Assert().Equal("none", v)
}

func (s *BinderSuite) TestRestAfterDefaultedParamIncludesToken() {
	args, err := s.bind("hello there", Arg("count", Optional(Int)), Rest("text", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{nil}, args.Positional)
	s.Assert().Equal("hello there", args.Keyword["text"])
}

func (s *BinderSuite) TestVariadicConvertsEachToken() {
	args, err := s.bind("1 2 3", Variadic("nums", Int))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{1, 2, 3}}, args.Positional)
}

func (s *BinderSuite) TestVariadicFailsOnBadToken() {
	_, err := s.bind("1 x 3", Variadic("nums", Int))

	s.Assert().Contains(s.badArgument(err), `"x" is not a valid integer`)
}

func (s *BinderSuite) TestVariadicWithoutTokensIsMissing() {
	_, err := s.bind("", Variadic("nums", Int))

	s.Assert().Equal("nums is a required argument that is missing.", s.badArgument(err))
}

func (s *BinderSuite) TestGreedyStopsAtFirstFailure() {
	args, err := s.bind("5 6 x", Arg("nums", Greedy(Int)), Arg("rest", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{5, 6}, "x"}, args.Positional)
}

func (s *BinderSuite) TestGreedyConsumesEverything() {
	args, err := s.bind("5 6 7", Arg("nums", Greedy(Int)))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{5, 6, 7}}, args.Positional)
}

func (s *BinderSuite) TestGreedyWithoutMatches() {
	_, err := s.bind("x", Arg("nums", Greedy(Int)))

	s.Assert().Equal("Failed to find any arguments for Greedy[int].", s.badArgument(err))
}

func (s *BinderSuite) TestGreedyFallsBackToTruthyDefault() {
	args, err := s.bind("x", Arg("nums", Greedy(Int)).WithDefault([]any{1}), Arg("s", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{1}, "x"}, args.Positional)
}

func (s *BinderSuite) TestGreedyDefaultRetriedTokenIsNotExtra() {
	params, err := AnalyzeParams([]ParamSpec{
		Arg("dice", Greedy(Int)).WithDefault([]any{6}),
		Arg("label", String),
	}, DefaultConverters())
	s.Require().NoError(err)

	args, err := Bind(s.ctx, nil, params, "x", false)
	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{6}, "x"}, args.Positional)
}

func (s *BinderSuite) TestGreedyDefaultRetriedTokenBindsOnce() {
	params, err := AnalyzeParams([]ParamSpec{
		Arg("dice", Greedy(Int)).WithDefault([]any{6}),
		Arg("a", String),
		Arg("b", String),
	}, DefaultConverters())
	s.Require().NoError(err)

	args, err := Bind(s.ctx, nil, params, "x y", false)
	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{6}, "x", "y"}, args.Positional)
}

func (s *BinderSuite) TestGreedyDefaultBeforeRest() {
	args, err := s.bind("a x y", Arg("a", String), Arg("dice", Greedy(Int)).WithDefault([]any{6}), Rest("text", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{"a", []any{6}}, args.Positional)
	s.Assert().Equal("x y", args.Keyword["text"])
}

func (s *BinderSuite) TestGreedyFalsyDefaultStillFails() {
	_, err := s.bind("x", Arg("nums", Greedy(Int)).WithDefault([]any{}))

	s.Assert().Contains(s.badArgument(err), "Failed to find any arguments")
}

// A greedy parameter with a non-empty default retries the token that
// started its run against the next parameter, so that token is bound twice.
func (s *BinderSuite) TestGreedyTruthyDefaultRetriesStartingToken() {
	args, err := s.bind("5 x", Arg("nums", Greedy(Int)).WithDefault([]any{0}), Arg("s", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{5}, "5"}, args.Positional)
}

func (s *BinderSuite) TestGreedyWithoutDefaultMovesOn() {
	args, err := s.bind("5 x y", Arg("nums", Greedy(Int)), Arg("a", String), Arg("b", String))

	s.Require().NoError(err)
	s.Assert().Equal([]any{[]any{5}, "x", "y"}, args.Positional)
}

func (s *BinderSuite) TestExtraArgumentsIgnoredByDefault() {
	args, err := s.bind("1 2 3", Arg("a", Int))

	s.Require().NoError(err)
	s.Assert().Equal([]any{1}, args.Positional)
}

func (s *BinderSuite) TestExtraArgumentsRejected() {
	params, err := AnalyzeParams([]ParamSpec{Arg("a", Int)}, DefaultConverters())
	s.Require().NoError(err)

	_, err = Bind(s.ctx, nil, params, "1 2", false)
	s.Assert().Equal("Too many arguments passed to command.", s.badArgument(err))

	_, err = Bind(s.ctx, nil, params, "1", false)
	s.Assert().NoError(err)
}

func (s *BinderSuite) TestZeroParamsRejectExtra() {
	_, err := Bind(s.ctx, nil, nil, "surplus", false)
	s.Assert().Contains(s.badArgument(err), "Too many arguments")

	args, err := Bind(s.ctx, nil, nil, "surplus", true)
	s.Require().NoError(err)
	s.Assert().Zero(args.Len())
}

func (s *BinderSuite) TestCancelledContextStopsConversion() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	params, err := AnalyzeParams([]ParamSpec{Arg("a", Optional(Int))}, DefaultConverters())
	s.Require().NoError(err)

	_, err = Bind(ctx, nil, params, "1", true)
	s.Assert().ErrorIs(err, context.Canceled)
	var bad *BadArgumentError
	s.Assert().False(errors.As(err, &bad))
}

func (s *BinderSuite) TestConvertersSeeInvocation() {
	var seen *Invocation
	conv := ConverterFunc(func(_ context.Context, inv *Invocation, arg string) (any, error) {
		seen = inv
		return arg, nil
	})
	params, err := AnalyzeParams([]ParamSpec{Arg("a", conv)}, DefaultConverters())
	s.Require().NoError(err)

	inv := &Invocation{ID: "abc"}
	_, err = Bind(s.ctx, inv, params, "x", true)
	s.Require().NoError(err)
	s.Assert().Same(inv, seen)
}

func TestValue(t *testing.T) {
	args := newArgs()
	args.addPositional("n", 3)
	args.addPositional("opt", nil)
	args.Keyword["text"] = "hi"

	n, ok := Value[int](args, "n")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	text, ok := Value[string](args, "text")
	require.True(t, ok)
	assert.Equal(t, "hi", text)

	_, ok = Value[string](args, "n")
	assert.False(t, ok, "wrong type")

	_, ok = Value[int](args, "opt")
	assert.False(t, ok, "nil default")

	_, ok = Value[int](args, "missing")
	assert.False(t, ok)

	assert.Equal(t, 3, args.Len())
	assert.Equal(t, "[n=3 opt=<nil> text=hi]", args.String())
}
