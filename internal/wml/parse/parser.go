// Package parse implements the WML parser: a token-stream-driven state
// machine that turns a preprocessed byte stream into a tree.Node tree.
//
// Grounded on original_source/src/serialization/parser.cpp's parser
// class (parse_element/parse_variable), adapted to the tokenizer and
// ConfigTree types of this package.
package parse

import (
	"strings"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/sourcemap"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/token"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

// Parser drives token.Tokenizer through the InElement/ElementName/
// VariableName/Value state machine, accumulating a tree.Node.
type Parser struct {
	tz     *token.Tokenizer
	sm     *sourcemap.SourceMap
	domain types.TextDomain
}

// New returns a Parser over src, starting from the given textdomain
// (the binding in effect before any "\xFE textdomain NAME" directive is
// seen). sm, when non-nil, is consulted to resolve a token's true
// authoring location for diagnostics; src's own line numbering is a
// flattened preprocessor output stream, not the file the author edited.
func New(src []byte, file string, initialDomain types.TextDomain, sm *sourcemap.SourceMap) *Parser {
	return &Parser{tz: token.New(src, file), sm: sm, domain: initialDomain}
}

// Parse tokenizes and parses src in one call.
func Parse(src []byte, file string, initialDomain types.TextDomain, sm *sourcemap.SourceMap) (*tree.Node, error) {
	return New(src, file, initialDomain, sm).Parse()
}

// Parse consumes the entire token stream and returns the root node. The
// root is the implicit top-level element: it has no open/close tag of
// its own and is never itself subject to ParserUnterminatedElement.
func (p *Parser) Parse() (*tree.Node, error) {
	root := tree.New()
	if err := p.parseBody(root, ""); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *Parser) loc(t token.Token) types.SourceLocation {
	if p.sm != nil {
		if resolved := p.sm.Lookup(t.Loc.Line); !resolved.IsZero() {
			return resolved
		}
	}
	return t.Loc
}

// next returns the next token that is part of the parser's grammar,
// applying sentinel directives transparently along the way.
func (p *Parser) next() (token.Token, error) {
	for {
		t, err := p.tz.Next()
		if err != nil {
			return token.Token{}, err
		}
		if t.Kind == token.Sentinel {
			p.applySentinel(t.Text)
			continue
		}
		return t, nil
	}
}

// applySentinel interprets a "\xFE textdomain NAME" or "\xFE line N
// FILE" directive line. Only the former is ever emitted by this
// module's preprocessor, but both forms are accepted per the grammar.
func (p *Parser) applySentinel(text string) {
	fields := strings.SplitN(text, " ", 2)
	if len(fields) != 2 {
		return
	}
	if fields[0] == "textdomain" {
		p.domain = types.TextDomain(fields[1])
	}
	// "line N FILE" carries no actionable state here: location
	// resolution goes through the SourceMap the preprocessor produced
	// alongside its output, not through inline directives.
}

// parseBody is the InElement state: it loops over attribute
// assignments and child elements until it meets the close tag matching
// tag (or, for tag == "" at the document root, end of input).
func (p *Parser) parseBody(node *tree.Node, tag string) error {
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		switch t.Kind {
		case token.Newline:
			continue
		case token.End:
			if tag != "" {
				return wmlerrors.NewParserUnterminatedElement(p.loc(t), tag)
			}
			return nil
		case token.LBracket:
			closed, err := p.parseElementHeader(node, tag)
			if err != nil {
				return err
			}
			if closed {
				return nil
			}
		case token.Ident, token.Underscore:
			if err := p.parseAttribute(node, t); err != nil {
				return err
			}
		default:
			return wmlerrors.NewParserBadToken(p.loc(t), t.Text)
		}
	}
}

// parseElementHeader is the ElementName state: it has just consumed
// `[` and reads through the matching `]`, either opening/merging a
// child (recursing into its own body and returning closed == false) or
// recognizing a close tag for node (returning closed == true without
// recursing).
func (p *Parser) parseElementHeader(node *tree.Node, tag string) (closed bool, err error) {
	t, err := p.next()
	if err != nil {
		return false, err
	}

	switch t.Kind {
	case token.Slash:
		name, err := p.expectIdent()
		if err != nil {
			return false, err
		}
		if err := p.expect(token.RBracket); err != nil {
			return false, err
		}
		if tag == "" {
			return false, wmlerrors.NewParserUnexpectedCloseTag(p.loc(t), name)
		}
		if name != tag {
			return false, wmlerrors.NewParserTagMismatch(p.loc(t), tag, name)
		}
		return true, nil

	case token.Plus:
		name, err := p.expectIdent()
		if err != nil {
			return false, err
		}
		if err := p.expect(token.RBracket); err != nil {
			return false, err
		}
		child := reopenChild(node, name)
		return false, p.parseBody(child, name)

	case token.Ident:
		name := t.Text
		if err := p.expect(token.RBracket); err != nil {
			return false, err
		}
		if name == "end" {
			if tag == "" {
				return false, wmlerrors.NewParserUnexpectedCloseTag(p.loc(t), name)
			}
			return true, nil
		}
		child := node.AddChild(name)
		return false, p.parseBody(child, name)

	default:
		return false, wmlerrors.NewParserBadToken(p.loc(t), t.Text)
	}
}

// reopenChild implements `[+tag]` merge semantics: the most recently
// added child of tag becomes current again, or a new one is created if
// node has none yet.
func reopenChild(node *tree.Node, tag string) *tree.Node {
	children := node.ChildRange(tag)
	if len(children) > 0 {
		return children[len(children)-1]
	}
	return node.AddChild(tag)
}

func (p *Parser) expectIdent() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	if t.Kind != token.Ident {
		return "", wmlerrors.NewParserBadToken(p.loc(t), t.Text)
	}
	return t.Text, nil
}

func (p *Parser) expect(k token.Kind) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != k {
		return wmlerrors.NewParserBadToken(p.loc(t), t.Text)
	}
	return nil
}

// parseAttribute is the VariableName state: first accumulates the
// comma-separated left-hand-side name list, then delegates value
// scanning to parseValue once it sees `=`.
func (p *Parser) parseAttribute(node *tree.Node, first token.Token) error {
	names := []string{first.Text}
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		switch t.Kind {
		case token.Comma:
			name, err := p.expectIdent()
			if err != nil {
				return err
			}
			names = append(names, name)
		case token.Equals:
			values, err := p.parseValue(len(names))
			if err != nil {
				return err
			}
			for i, name := range names {
				if i < len(values) {
					node.SetAttr(name, values[i])
				} else {
					node.SetAttr(name, tree.AttributeValue{})
				}
			}
			return nil
		default:
			return wmlerrors.NewParserBadToken(p.loc(t), t.Text)
		}
	}
}

// valueState accumulates one `name=value` right-hand side across its
// (possibly several, comma-separated) segments.
type valueState struct {
	segments     []tree.AttributeValue
	cur          tree.AttributeValue
	plain        strings.Builder
	translatable bool
}

func (s *valueState) writePlain(text string) {
	s.plain.WriteString(text)
}

func (s *valueState) flushPlain() {
	if s.plain.Len() > 0 {
		s.cur = s.cur.Append(tree.Plain(s.plain.String()))
		s.plain.Reset()
	}
}

func (s *valueState) appendRun(r tree.Run) {
	s.flushPlain()
	s.cur = s.cur.Append(tree.AttributeValue{Runs: []tree.Run{r}})
}

func (s *valueState) flushSegment() {
	s.flushPlain()
	s.segments = append(s.segments, s.cur)
	s.cur = tree.AttributeValue{}
}

// parseValue is the Value state. It reads until an unwrapped newline
// (or end of input), splitting on top-level commas into nNames
// segments when the left-hand side named more than one attribute;
// otherwise a comma is literal value text. `+` immediately followed by
// newline soft-wraps the value onto the next line without ending it; a
// `_` immediately before a quoted segment binds that segment's run to
// the parser's current textdomain.
func (p *Parser) parseValue(nNames int) ([]tree.AttributeValue, error) {
	st := &valueState{}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == token.Plus {
			nt, err := p.next()
			if err != nil {
				return nil, err
			}
			if nt.Kind == token.Newline {
				continue
			}
			st.writePlain("+")
			t = nt
		}

		switch t.Kind {
		case token.Newline, token.End:
			st.flushSegment()
			return st.segments, nil
		case token.Comma:
			if nNames > 1 {
				st.flushSegment()
			} else {
				st.writePlain(",")
			}
		case token.Underscore:
			st.translatable = true
		case token.QuotedString:
			domain := types.TextDomain("")
			if st.translatable {
				domain = p.domain
			}
			st.appendRun(tree.Run{Text: t.Text, Domain: domain})
			st.translatable = false
		case token.Ident, token.RawString:
			st.writePlain(t.Text)
		default:
			return nil, wmlerrors.NewParserBadToken(p.loc(t), t.Text)
		}
	}
}
