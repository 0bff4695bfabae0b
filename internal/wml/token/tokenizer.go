package token

import (
	"strings"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// SentinelByte prefixes a preprocessor-emitted directive line carrying
// source location ("\xFE line N FILE") or textdomain ("\xFE textdomain
// NAME") bindings. It is never valid inside ordinary WML content.
const SentinelByte = 0xFE

// Tokenizer scans preprocessed WML text into a Token stream. It holds
// no lookahead beyond what a single token requires, so it can be driven
// one token at a time by the parser.
type Tokenizer struct {
	src  []byte
	pos  int
	file string
	line int
}

// New returns a Tokenizer over src, attributing tokens to file and to
// line numbers counted through src; sentinel lines change neither.
func New(src []byte, file string) *Tokenizer {
	return &Tokenizer{src: src, pos: 0, file: file, line: 1}
}

func (t *Tokenizer) loc() types.SourceLocation {
	return types.SourceLocation{File: t.file, Line: t.line}
}

func (t *Tokenizer) peek() byte {
	if t.pos >= len(t.src) {
		return 0
	}
	return t.src[t.pos]
}

func (t *Tokenizer) peekAt(offset int) byte {
	if t.pos+offset >= len(t.src) {
		return 0
	}
	return t.src[t.pos+offset]
}

func (t *Tokenizer) advance() byte {
	c := t.src[t.pos]
	t.pos++
	if c == '\n' {
		t.line++
	}
	return c
}

func isIdentByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

func isSpecial(c byte) bool {
	switch c {
	case '[', ']', '/', '+', '=', ',', '"', '\n':
		return true
	default:
		return false
	}
}

// Next scans and returns the next token. At end of input it returns a
// token of Kind End.
func (t *Tokenizer) Next() (Token, error) {
	// Skip insignificant whitespace (not newline).
	for t.pos < len(t.src) {
		c := t.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			t.pos++
			continue
		}
		break
	}

	if t.pos >= len(t.src) {
		return Token{Kind: End, Loc: t.loc()}, nil
	}

	loc := t.loc()
	c := t.peek()

	if c == SentinelByte && (t.pos == 0 || t.src[t.pos-1] == '\n') {
		return t.scanSentinel(loc)
	}

	switch c {
	case '\n':
		t.advance()
		return Token{Kind: Newline, Text: "\n", Loc: loc}, nil
	case '[':
		t.advance()
		return Token{Kind: LBracket, Text: "[", Loc: loc}, nil
	case ']':
		t.advance()
		return Token{Kind: RBracket, Text: "]", Loc: loc}, nil
	case '/':
		t.advance()
		return Token{Kind: Slash, Text: "/", Loc: loc}, nil
	case '+':
		t.advance()
		return Token{Kind: Plus, Text: "+", Loc: loc}, nil
	case '=':
		t.advance()
		return Token{Kind: Equals, Text: "=", Loc: loc}, nil
	case ',':
		t.advance()
		return Token{Kind: Comma, Text: ",", Loc: loc}, nil
	case '"':
		return t.scanQuoted(loc)
	}

	if isIdentByte(c) {
		return t.scanIdent(loc)
	}

	return t.scanRaw(loc)
}

func (t *Tokenizer) scanIdent(loc types.SourceLocation) (Token, error) {
	start := t.pos
	for t.pos < len(t.src) && isIdentByte(t.peek()) {
		t.advance()
	}
	text := string(t.src[start:t.pos])
	if text == "_" {
		return Token{Kind: Underscore, Text: text, Loc: loc}, nil
	}
	return Token{Kind: Ident, Text: text, Loc: loc}, nil
}

func (t *Tokenizer) scanRaw(loc types.SourceLocation) (Token, error) {
	start := t.pos
	for t.pos < len(t.src) {
		c := t.peek()
		if c == ' ' || c == '\t' || c == '\r' || isSpecial(c) || isIdentByte(c) {
			break
		}
		t.advance()
	}
	if t.pos == start {
		// Single stray byte we don't otherwise recognize; consume it so
		// Next always makes forward progress.
		t.advance()
	}
	return Token{Kind: RawString, Text: string(t.src[start:t.pos]), Loc: loc}, nil
}

func (t *Tokenizer) scanQuoted(loc types.SourceLocation) (Token, error) {
	t.advance() // opening quote
	var b strings.Builder
	for {
		if t.pos >= len(t.src) {
			return Token{}, wmlerrors.NewLexUnterminatedString(loc)
		}
		c := t.peek()
		if c == '"' {
			if t.peekAt(1) == '"' {
				// "" is a literal quote inside the string.
				t.advance()
				t.advance()
				b.WriteByte('"')
				continue
			}
			t.advance()
			break
		}
		b.WriteByte(t.advance())
	}
	return Token{Kind: QuotedString, Text: b.String(), Loc: loc}, nil
}

// scanSentinel consumes a full "\xFE ..." directive line (up to but not
// including the terminating newline) verbatim, leaving interpretation
// to the parser.
func (t *Tokenizer) scanSentinel(loc types.SourceLocation) (Token, error) {
	t.advance() // the sentinel byte itself
	start := t.pos
	for t.pos < len(t.src) && t.peek() != '\n' {
		t.pos++
	}
	return Token{Kind: Sentinel, Text: string(t.src[start:t.pos]), Loc: loc}, nil
}
