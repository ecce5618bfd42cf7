package textcmd

// Cursor is a resettable iterator over the tokens of one dispatch. Binding
// is not strictly left to right: greedy and consume-rest parameters need to
// look ahead and step back, so the cursor exposes its position.
//
// A Cursor is not safe for concurrent use; each dispatch owns its own.
type Cursor struct {
	tokens []string
	index  int
}

// NewCursor returns a cursor positioned before the first token.
func NewCursor(tokens []string) *Cursor {
	return &Cursor{tokens: tokens}
}

// Next returns the current token and advances. It returns false once the
// tokens are exhausted.
func (c *Cursor) Next() (string, bool) {
	if c.index >= len(c.tokens) {
		return "", false
	}
	tok := c.tokens[c.index]
	c.index++
	return tok, true
}

// Back rewinds the cursor by n positions, stopping at the first token.
func (c *Cursor) Back(n int) {
	c.index -= n
	if c.index < 0 {
		c.index = 0
	}
}

// ConsumeRest returns every token from the one most recently returned by
// Next through the end, and leaves the cursor exhausted.
func (c *Cursor) ConsumeRest() []string {
	start := c.index - 1
	if start < 0 {
		start = 0
	}
	if start > len(c.tokens) {
		start = len(c.tokens)
	}
	rest := c.tokens[start:]
	c.index = len(c.tokens)
	return rest
}

// Reset moves the cursor back before the first token.
func (c *Cursor) Reset() { c.index = 0 }

// Finished reports whether no tokens remain.
func (c *Cursor) Finished() bool { return c.index >= len(c.tokens) }

// Len returns the total number of tokens.
func (c *Cursor) Len() int { return len(c.tokens) }
