package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddChildAndLookup(t *testing.T) {
	root := New()
	unit := root.AddChild("unit")
	unit.SetAttr("id", Plain("Elensefar"))

	child, ok := root.Child("unit")
	require.True(t, ok)
	assert.Equal(t, "Elensefar", child.Attr("id").Raw())
}

func TestChildRangePreservesOrder(t *testing.T) {
	root := New()
	root.AddChild("side").SetAttr("side", Plain("1"))
	root.AddChild("unit").SetAttr("id", Plain("a"))
	root.AddChild("side").SetAttr("side", Plain("2"))
	root.AddChild("unit").SetAttr("id", Plain("b"))

	sides := root.ChildRange("side")
	require.Len(t, sides, 2)
	assert.Equal(t, "1", sides[0].Attr("side").Raw())
	assert.Equal(t, "2", sides[1].Attr("side").Raw())

	all := root.AllChildrenOrdered()
	require.Len(t, all, 4)
	assert.Equal(t, []string{"side", "unit", "side", "unit"}, []string{
		all[0].Tag, all[1].Tag, all[2].Tag, all[3].Tag,
	})
}

func TestFindChild(t *testing.T) {
	root := New()
	root.AddChild("unit").SetAttr("id", Plain("a"))
	root.AddChild("unit").SetAttr("id", Plain("b"))

	found, ok := root.FindChild("unit", "id", "b")
	require.True(t, ok)
	assert.Equal(t, "b", found.Attr("id").Raw())

	_, ok = root.FindChild("unit", "id", "z")
	assert.False(t, ok)
}

func TestRemoveChildShiftsIndices(t *testing.T) {
	root := New()
	root.AddChild("unit").SetAttr("id", Plain("a"))
	root.AddChild("unit").SetAttr("id", Plain("b"))
	root.AddChild("unit").SetAttr("id", Plain("c"))

	root.RemoveChild("unit", 1)

	units := root.ChildRange("unit")
	require.Len(t, units, 2)
	assert.Equal(t, "a", units[0].Attr("id").Raw())
	assert.Equal(t, "c", units[1].Attr("id").Raw())
}

func TestSetAttrEmptyRemoves(t *testing.T) {
	n := New()
	n.SetAttr("hp", Plain("10"))
	assert.Equal(t, "10", n.Attr("hp").Raw())

	n.SetAttr("hp", Plain(""))
	assert.True(t, n.Attr("hp").Empty())
	assert.NotContains(t, n.AttrNames(), "hp")
}

func TestCloneIsDeep(t *testing.T) {
	root := New()
	unit := root.AddChild("unit")
	unit.SetAttr("id", Plain("a"))

	clone := root.Clone()
	cloneUnit, _ := clone.Child("unit")
	cloneUnit.SetAttr("id", Plain("b"))

	origUnit, _ := root.Child("unit")
	assert.Equal(t, "a", origUnit.Attr("id").Raw())
	assert.Equal(t, "b", cloneUnit.Attr("id").Raw())
}

func TestEqualIgnoresAttrOrder(t *testing.T) {
	a := New()
	a.SetAttr("x", Plain("1"))
	a.SetAttr("y", Plain("2"))

	b := New()
	b.SetAttr("y", Plain("2"))
	b.SetAttr("x", Plain("1"))

	assert.True(t, a.Equal(b))
}

type staticProvider map[string]AttributeValue

func (p staticProvider) Resolve(name string) (AttributeValue, bool) {
	v, ok := p[name]
	return v, ok
}

func TestAttrResolvedConsultsProvider(t *testing.T) {
	n := New()
	n.SetAttr("gold", Plain("$side.gold"))

	provider := staticProvider{"side.gold": Plain("100")}
	assert.Equal(t, "100", n.AttrResolved("gold", provider).Raw())

	assert.Equal(t, "$side.gold", n.Attr("gold").Raw())
}
