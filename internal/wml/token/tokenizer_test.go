package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	tk := New([]byte(src), "test.cfg")
	var toks []Token
	for {
		tok, err := tk.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == End {
			return toks
		}
	}
}

func TestTokenizerBasicElement(t *testing.T) {
	toks := scanAll(t, "[unit]\nid=Elensefar\n[/unit]\n")

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	assert.Equal(t, []Kind{
		LBracket, Ident, RBracket, Newline,
		Ident, Equals, Ident, Newline,
		LBracket, Slash, Ident, RBracket, Newline,
		End,
	}, kinds)
}

func TestTokenizerQuotedStringWithEscapedQuote(t *testing.T) {
	toks := scanAll(t, `name="He said ""hello""."`+"\n")
	require.Equal(t, QuotedString, toks[2].Kind)
	assert.Equal(t, `He said "hello".`, toks[2].Text)
}

func TestTokenizerUnderscoreToken(t *testing.T) {
	toks := scanAll(t, `description= _ "Translated text"`+"\n")
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, Underscore)
	assert.Contains(t, kinds, QuotedString)
}

func TestTokenizerUnterminatedStringFails(t *testing.T) {
	tk := New([]byte(`name="unterminated`), "test.cfg")
	_, err := tk.Next() // name
	require.NoError(t, err)
	_, err = tk.Next() // =
	require.NoError(t, err)
	_, err = tk.Next() // the quoted string
	require.Error(t, err)
}

func TestTokenizerSentinelLine(t *testing.T) {
	src := string([]byte{SentinelByte}) + "line 42 utils/macros.cfg\nid=1\n"
	toks := scanAll(t, src)
	require.Equal(t, Sentinel, toks[0].Kind)
	assert.Equal(t, "line 42 utils/macros.cfg", toks[0].Text)
}
