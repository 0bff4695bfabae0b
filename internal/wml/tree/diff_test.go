package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSide(gold string, unitIDs ...string) *Node {
	n := New()
	n.SetAttr("gold", Plain(gold))
	for _, id := range unitIDs {
		n.AddChild("unit").SetAttr("id", Plain(id))
	}
	return n
}

func TestDiffApplyRoundTripAttributeChange(t *testing.T) {
	a := buildSide("100", "a", "b")
	b := buildSide("50", "a", "b")

	patch := Diff(a, b)
	require.NoError(t, b.ApplyDiff(patch))
	assert.True(t, a.Equal(b))
}

func TestDiffApplyRoundTripAppendedChild(t *testing.T) {
	a := buildSide("100", "a", "b", "c")
	b := buildSide("100", "a", "b")

	patch := Diff(a, b)
	require.NoError(t, b.ApplyDiff(patch))
	assert.True(t, a.Equal(b))
}

func TestDiffApplyRoundTripRemovedChild(t *testing.T) {
	a := buildSide("100", "a")
	b := buildSide("100", "a", "b", "c")

	patch := Diff(a, b)
	require.NoError(t, b.ApplyDiff(patch))
	assert.True(t, a.Equal(b))
}

func TestDiffApplyRoundTripNestedChange(t *testing.T) {
	a := New()
	aUnit := a.AddChild("unit")
	aUnit.SetAttr("id", Plain("a"))
	aUnit.SetAttr("hp", Plain("42"))

	b := New()
	bUnit := b.AddChild("unit")
	bUnit.SetAttr("id", Plain("a"))
	bUnit.SetAttr("hp", Plain("10"))

	patch := Diff(a, b)
	require.NoError(t, b.ApplyDiff(patch))
	assert.True(t, a.Equal(b))
}

func TestDiffEmptyWhenEqual(t *testing.T) {
	a := buildSide("100", "a", "b")
	b := buildSide("100", "a", "b")

	patch := Diff(a, b)
	assert.Empty(t, patch.AllChildrenOrdered())
}

func TestApplyDiffOutOfRangeIndexFails(t *testing.T) {
	b := buildSide("100", "a")

	bogus := New()
	op := New()
	op.SetAttr(attrIndex, Plain("5"))
	op.children = append(op.children, Child{Tag: "unit", Node: New()})
	bogus.children = append(bogus.children, Child{Tag: tagChangeChild, Node: op})

	err := b.ApplyDiff(bogus)
	require.Error(t, err)
}
