package textcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeParams(t *testing.T) {
	reg := DefaultConverters()

	t.Run("positional", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Arg("n", Int)}, reg)
		require.NoError(t, err)
		require.Len(t, params, 1)
		p := params[0]
		assert.Equal(t, "n", p.Name)
		assert.Len(t, p.Converters, 1)
		assert.False(t, p.Optional())
		assert.False(t, p.Greedy || p.Union || p.Variadic || p.ConsumeRest)
	})

	t.Run("union with None defaults to nil", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Arg("n", Optional(Int))}, reg)
		require.NoError(t, err)
		p := params[0]
		assert.True(t, p.Union)
		assert.True(t, p.Optional())
		def, ok := p.Default()
		assert.True(t, ok)
		assert.Nil(t, def)
		assert.Len(t, p.Converters, 1, "None gets no converter")
	})

	t.Run("union keeps an explicit default", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Arg("n", Union(Int, Float, None)).WithDefault(7)}, reg)
		require.NoError(t, err)
		def, _ := params[0].Default()
		assert.Equal(t, 7, def)
		assert.Len(t, params[0].Converters, 2)
	})

	t.Run("greedy", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Arg("n", Greedy(Int))}, reg)
		require.NoError(t, err)
		assert.True(t, params[0].Greedy)
	})

	t.Run("greedy over an annotated converter", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Arg("n", Greedy(Annotated(String, upperConverter{})))}, reg)
		require.NoError(t, err)
		assert.True(t, params[0].Greedy)
	})

	t.Run("rest stops analysis", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Rest("text", String), Arg("ignored", Int)}, reg)
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.True(t, params[0].ConsumeRest)
	})

	t.Run("variadic stops analysis", func(t *testing.T) {
		params, err := AnalyzeParams([]ParamSpec{Variadic("nums", Int), Arg("ignored", Int)}, reg)
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.True(t, params[0].Variadic)
	})
}

func TestAnalyzeParamsConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		spec ParamSpec
		want string
	}{
		{name: "variadic with default", spec: Variadic("v", Int).WithDefault(nil), want: "cannot have a default"},
		{name: "variadic with falsy default", spec: Variadic("v", Int).WithDefault(0), want: "cannot have a default"},
		{name: "variadic optional", spec: Variadic("v", Optional(Int)), want: "cannot have a default"},
		{name: "greedy string", spec: Arg("g", Greedy(String)), want: "Greedy[str] is invalid"},
		{name: "greedy None", spec: Arg("g", Greedy(None)), want: "Greedy[None] is invalid"},
		{name: "greedy optional", spec: Arg("g", Greedy(Optional(Int))), want: "Greedy[int | None] is invalid"},
		{name: "greedy rest", spec: Rest("g", Greedy(Int)), want: "keyword-only"},
		{name: "greedy variadic", spec: Variadic("g", Greedy(Int)), want: "variadic"},
		{name: "nested greedy", spec: Arg("g", Greedy(Greedy(Int))), want: "cannot be nested"},
		{name: "greedy annotated with two markers", spec: Arg("g", Greedy(Annotated(Int, 1, 2))), want: "only one is supported"},
		{name: "empty union", spec: Arg("u", Union()), want: "no members"},
		{name: "union of only None", spec: Arg("u", Union(None)), want: "other than None"},
		{name: "bad union member", spec: Arg("u", Union(Int, func(a, b, c string) string { return a })), want: "at most 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeParams([]ParamSpec{tt.spec}, DefaultConverters())
			require.ErrorIs(t, err, ErrConfiguration)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("duplicate names", func(t *testing.T) {
		_, err := AnalyzeParams([]ParamSpec{Arg("a", Int), Arg("a", String)}, DefaultConverters())
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := AnalyzeParams([]ParamSpec{Arg("", Int)}, DefaultConverters())
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestTruthy(t *testing.T) {
	for _, v := range []any{nil, false, 0, 0.0, "", []any{}, map[string]int{}, (*int)(nil)} {
		assert.False(t, truthy(v), "%#v", v)
	}
	for _, v := range []any{true, 1, -2, 0.5, "x", []any{0}, map[string]int{"a": 1}, struct{}{}} {
		assert.True(t, truthy(v), "%#v", v)
	}
}
