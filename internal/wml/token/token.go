// Package token tokenizes preprocessed WML text into the stream the
// parser's state machine consumes.
package token

import (
	"github.com/battle-for-wesnoth/wmlc/internal/types"
)

// Kind identifies a token's lexical class.
type Kind int

const (
	LBracket Kind = iota
	RBracket
	Slash
	Plus
	Equals
	Comma
	Underscore
	Ident
	RawString
	QuotedString
	Newline
	End
	// Sentinel carries a full "\xFE line N FILE" or "\xFE textdomain NAME"
	// directive line emitted by the preprocessor to carry source location
	// and textdomain bindings through to the parser. Not part of the
	// token vocabulary the parser's grammar matches against, but the
	// parser inspects it directly to update its textdomain (a line
	// directive is accepted and changes nothing) before resuming normal
	// tokenization.
	Sentinel
)

func (k Kind) String() string {
	switch k {
	case LBracket:
		return "["
	case RBracket:
		return "]"
	case Slash:
		return "/"
	case Plus:
		return "+"
	case Equals:
		return "="
	case Comma:
		return ","
	case Underscore:
		return "_"
	case Ident:
		return "ident"
	case RawString:
		return "raw-string"
	case QuotedString:
		return "quoted-string"
	case Newline:
		return "newline"
	case End:
		return "end"
	case Sentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// Token is one lexical unit, with the text it was scanned from (for
// QuotedString, Text is the content with `""` already collapsed to `"`)
// and the location it was scanned at.
type Token struct {
	Kind Kind
	Text string
	Loc  types.SourceLocation
}
