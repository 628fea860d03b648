package query

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord  tokenKind = iota // any run of non-space, non-'/' characters
	tokSlash                  // "/"
	tokArrow                  // "->"
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the input
}

func (t token) String() string {
	switch t.kind {
	case tokSlash:
		return `"/"`
	case tokArrow:
		return `"->"`
	case tokEOF:
		return "end of input"
	}
	return `"` + t.text + `"`
}

// lex splits input into words, slashes and arrows. "->" ends a word, so
// "mi->km" lexes as three tokens; a lone '-' stays part of its word.
func lex(input string) []token {
	var toks []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, token{kind: tokWord, text: input[start:end], pos: start})
			start = -1
		}
	}

	for i := 0; i < len(input); {
		r := rune(input[i])
		switch {
		case r == '/':
			flush(i)
			toks = append(toks, token{kind: tokSlash, text: "/", pos: i})
			i++
		case strings.HasPrefix(input[i:], "->"):
			flush(i)
			toks = append(toks, token{kind: tokArrow, text: "->", pos: i})
			i += 2
		case r < 0x80 && unicode.IsSpace(r):
			flush(i)
			i++
		default:
			if start < 0 {
				start = i
			}
			i++
		}
	}
	flush(len(input))
	return append(toks, token{kind: tokEOF, pos: len(input)})
}
