package textcodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battle-for-wesnoth/wmlc/internal/types"
	"github.com/battle-for-wesnoth/wmlc/internal/wml/tree"
)

func TestWriteSimpleElement(t *testing.T) {
	root := tree.New()
	unit := root.AddChild("unit")
	unit.SetAttr("id", tree.Plain("a"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	assert.Equal(t, "[unit]\n  id=\"a\"\n[/unit]\n", buf.String())
}

func TestWriteCanonicalAttributeOrder(t *testing.T) {
	root := tree.New()
	root.SetAttr("zeta", tree.Plain("1"))
	root.SetAttr("alpha", tree.Plain("2"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	assert.Equal(t, "alpha=\"2\"\nzeta=\"1\"\n", buf.String())
}

func TestWriteTranslatableRunEmitsTextdomainDirective(t *testing.T) {
	root := tree.New()
	root.SetAttr("name", tree.Translated("Hello", types.TextDomain("wesnoth-test")))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	assert.Equal(t, "#textdomain wesnoth-test\nname=_ \"Hello\"\n", buf.String())
}

func TestWriteSameInitialDomainSkipsDirective(t *testing.T) {
	root := tree.New()
	root.SetAttr("name", tree.Translated("Hello", types.TextDomain("wesnoth-test")))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, types.TextDomain("wesnoth-test")))

	assert.Equal(t, "name=_ \"Hello\"\n", buf.String())
}

func TestWriteMultiRunSoftWraps(t *testing.T) {
	root := tree.New()
	root.SetAttr("desc", tree.Plain("a").Append(tree.Plain("b")))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	assert.Equal(t, "desc=\"a\" + \n  \"b\"\n", buf.String())
}

func TestWriteEscapesInteriorQuotes(t *testing.T) {
	root := tree.New()
	root.SetAttr("label", tree.Plain(`say "hi"`))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	assert.Equal(t, "label=\"say \"\"hi\"\"\"\n", buf.String())
}

func TestReadWriteRoundTrip(t *testing.T) {
	src := []byte("[unit]\n  id=\"a\"\n  hp=\"10\"\n[/unit]\n")

	node, _, err := Read(src, "a.cfg", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, node, ""))

	reread, _, err := Read(buf.Bytes(), "a.cfg", "")
	require.NoError(t, err)
	assert.True(t, node.Equal(reread))
}

func TestReadWriteRoundTripTranslatable(t *testing.T) {
	root := tree.New()
	root.SetAttr("name", tree.Translated("Hello", types.TextDomain("wesnoth-test")))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	reread, _, err := Read(buf.Bytes(), "a.cfg", "")
	require.NoError(t, err)

	assert.True(t, root.Attr("name").FullEqual(reread.Attr("name")))
}

func TestReadWriteRoundTripNestedChildren(t *testing.T) {
	root := tree.New()
	scenario := root.AddChild("scenario")
	side := scenario.AddChild("side")
	side.SetAttr("side", tree.Plain("1"))
	side.SetAttr("team_name", tree.Plain("rebels"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, root, ""))

	reread, _, err := Read(buf.Bytes(), "a.cfg", "")
	require.NoError(t, err)
	assert.True(t, root.Equal(reread))
}
