package textcmd

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a raw event is not valid JSON.
var ErrInvalidJSON = errors.New("textcmd: invalid JSON")

// Inspector examines raw event bytes and returns a View for field queries.
type Inspector interface {
	Inspect(raw []byte) (View, error)
}

// View gives discriminators cheap field access to a raw event.
type View interface {
	// HasField returns true if the path exists.
	HasField(path string) bool

	// GetString returns the string at path, or false if it is missing or
	// not a string.
	GetString(path string) (string, bool)

	// GetBool returns the boolean at path, or false if it is missing or not
	// a boolean.
	GetBool(path string) (value, ok bool)

	// GetBytes returns the raw encoded value at path.
	GetBytes(path string) ([]byte, bool)
}

// JSONInspector returns an Inspector backed by gjson. Paths use gjson
// syntax, so "d.author.id" reaches into nested objects.
func JSONInspector() Inspector {
	return jsonInspector{}
}

type jsonInspector struct{}

func (jsonInspector) Inspect(raw []byte) (View, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return jsonView{raw: raw}, nil
}

type jsonView struct {
	raw []byte
}

func (v jsonView) get(path string) (gjson.Result, bool) {
	r := gjson.GetBytes(v.raw, path)
	return r, r.Exists()
}

func (v jsonView) HasField(path string) bool {
	_, ok := v.get(path)
	return ok
}

func (v jsonView) GetString(path string) (string, bool) {
	r, ok := v.get(path)
	if !ok || r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

func (v jsonView) GetBool(path string) (value, ok bool) {
	r, ok := v.get(path)
	if !ok || !r.IsBool() {
		return false, false
	}
	return r.Bool(), true
}

func (v jsonView) GetBytes(path string) ([]byte, bool) {
	r, ok := v.get(path)
	if !ok {
		return nil, false
	}
	return []byte(r.Raw), true
}
