package textcmd

import (
	"regexp"
	"strings"
)

// quotePairs maps each opening quote to its closing quote.
var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'‘': '’',
	'‚': '‛',
	'“': '”',
	'„': '‟',
	'⹂': '⹂',
	'「': '」',
	'『': '』',
	'〝': '〞',
	'﹁': '﹂',
	'﹃': '﹄',
	'＂': '＂',
	'｢': '｣',
	'«': '»',
	'‹': '›',
	'《': '》',
	'〈': '〉',
}

var (
	openQuotes  = make(map[rune]bool, len(quotePairs))
	closeQuotes = make(map[rune]bool, len(quotePairs))
	tokenRegexp = buildTokenRegexp()
)

// buildTokenRegexp matches either a quoted run or a run of characters that
// are not tabs, form feeds, vertical tabs or spaces. Newlines are not
// separators: a token may span lines.
func buildTokenRegexp() *regexp.Regexp {
	var open, closing strings.Builder
	for o, c := range quotePairs {
		openQuotes[o] = true
		closeQuotes[c] = true
		open.WriteString(regexp.QuoteMeta(string(o)))
		closing.WriteString(regexp.QuoteMeta(string(c)))
	}
	return regexp.MustCompile(`[` + open.String() + `].*?[` + closing.String() + `]|[^\t\f\v ]+`)
}

// Tokenize splits a command's argument string into tokens. Quoted runs
// become a single token with their delimiters stripped.
func Tokenize(s string) []string {
	matches := tokenRegexp.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = unquote(m)
	}
	return tokens
}

func unquote(tok string) string {
	r := []rune(tok)
	if len(r) < 2 {
		return tok
	}
	if openQuotes[r[0]] && closeQuotes[r[len(r)-1]] {
		return string(r[1 : len(r)-1])
	}
	return tok
}
