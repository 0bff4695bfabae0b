package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
)

func TestParseSimpleElement(t *testing.T) {
	root, err := Parse([]byte("[unit]\nid=a\n[/unit]\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	unit, ok := root.Child("unit")
	require.True(t, ok)
	assert.Equal(t, "a", unit.Attr("id").Raw())
}

func TestParseNestedElements(t *testing.T) {
	root, err := Parse([]byte("[scenario]\n[side]\nside=1\n[/side]\n[/scenario]\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	scenario, ok := root.Child("scenario")
	require.True(t, ok)
	side, ok := scenario.Child("side")
	require.True(t, ok)
	assert.Equal(t, "1", side.Attr("side").Raw())
}

func TestParseEndSynonym(t *testing.T) {
	root, err := Parse([]byte("[unit]\nid=a\n[end]\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	unit, ok := root.Child("unit")
	require.True(t, ok)
	assert.Equal(t, "a", unit.Attr("id").Raw())
}

func TestParseMergeChild(t *testing.T) {
	root, err := Parse([]byte("[unit]\nid=a\n[/unit]\n[+unit]\nhp=10\n[/unit]\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	units := root.ChildRange("unit")
	require.Len(t, units, 1)
	assert.Equal(t, "a", units[0].Attr("id").Raw())
	assert.Equal(t, "10", units[0].Attr("hp").Raw())
}

func TestParseTagMismatchFails(t *testing.T) {
	_, err := Parse([]byte("[unit]\n[/monster]\n"), "a.cfg", "", nil)
	require.Error(t, err)

	var we *wmlerrors.WMLError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, wmlerrors.KindParserTagMismatch, we.Kind)
}

func TestParseUnexpectedCloseTagFails(t *testing.T) {
	_, err := Parse([]byte("[/unit]\n"), "a.cfg", "", nil)
	require.Error(t, err)

	var we *wmlerrors.WMLError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, wmlerrors.KindParserUnexpectedCloseTag, we.Kind)
}

func TestParseUnterminatedElementFails(t *testing.T) {
	_, err := Parse([]byte("[unit]\nid=a\n"), "a.cfg", "", nil)
	require.Error(t, err)

	var we *wmlerrors.WMLError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, wmlerrors.KindParserUnterminatedElement, we.Kind)
}

func TestParseBadTokenFails(t *testing.T) {
	_, err := Parse([]byte("]\n"), "a.cfg", "", nil)
	require.Error(t, err)

	var we *wmlerrors.WMLError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, wmlerrors.KindParserBadToken, we.Kind)
}

func TestParseCommaListMultiAssign(t *testing.T) {
	root, err := Parse([]byte("x,y=1,2\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "1", root.Attr("x").Raw())
	assert.Equal(t, "2", root.Attr("y").Raw())
}

func TestParseSingleNameLeavesCommaLiteral(t *testing.T) {
	root, err := Parse([]byte("colors=red,green,blue\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "red,green,blue", root.Attr("colors").Raw())
}

func TestParseSoftWrapContinuation(t *testing.T) {
	root, err := Parse([]byte("desc=\"a\" + \n\"b\"\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "ab", root.Attr("desc").Raw())
}

func TestParseTranslatableLiteralBindsCurrentDomain(t *testing.T) {
	root, err := Parse([]byte("\xFEtextdomain wesnoth-test\nname=_\"hello\"\n"), "a.cfg", "", nil)
	require.NoError(t, err)

	v := root.Attr("name")
	require.Len(t, v.Runs, 1)
	assert.Equal(t, "hello", v.Runs[0].Text)
	assert.EqualValues(t, "wesnoth-test", v.Runs[0].Domain)
}
