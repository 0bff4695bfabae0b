package tree

import "strconv"

// Patch tag names: the top-level shape of a diff() result. insert and
// delete carry attribute changes directly as their own attrs;
// insert_child/delete_child/change_child carry one child-list edit
// each, in the global order they were generated, mixed across tags.
const (
	tagInsert      = "insert"
	tagDelete      = "delete"
	tagInsertChild = "insert_child"
	tagDeleteChild = "delete_child"
	tagChangeChild = "change_child"

	attrIndex = "index"
)

// Diff produces a patch node that, applied to b via ApplyDiff, yields
// a. The patch is itself a Node with at most one "insert" child (new
// or changed attributes, at their value in a), at most one "delete"
// child (attribute names present in b but not in a, as keys with a
// placeholder value), and a run of "insert_child"/"delete_child"/
// "change_child" children, one per child-list edit needed to turn b's
// children into a's, grouped per tag but interleaved in generation
// order across tags.
func Diff(a, b *Node) *Node {
	patch := New()

	insert := New()
	del := New()
	for name, av := range a.attrs {
		bv, ok := b.attrs[name]
		if !ok || !av.Equal(bv) {
			insert.SetAttr(name, av)
		}
	}
	for name := range b.attrs {
		if _, ok := a.attrs[name]; !ok {
			del.SetAttr(name, Plain("x")) // placeholder; only the key matters
		}
	}
	if len(insert.attrs) > 0 {
		patch.children = append(patch.children, Child{Tag: tagInsert, Node: insert})
	}
	if len(del.attrs) > 0 {
		patch.children = append(patch.children, Child{Tag: tagDelete, Node: del})
	}

	for _, tag := range unionTags(a, b) {
		diffChildList(patch, tag, a.ChildRange(tag), b.ChildRange(tag))
	}

	return patch
}

// unionTags returns every tag name appearing under a or b, in the
// order each tag first appears (checking a's order, then any tags
// that only appear in b).
func unionTags(a, b *Node) []string {
	seen := make(map[string]bool)
	var order []string
	for _, c := range a.children {
		if !seen[c.Tag] {
			seen[c.Tag] = true
			order = append(order, c.Tag)
		}
	}
	for _, c := range b.children {
		if !seen[c.Tag] {
			seen[c.Tag] = true
			order = append(order, c.Tag)
		}
	}
	return order
}

// diffChildList walks listA (from a) and listB (from b) position by
// position. Equal positions advance both pointers. A differing
// position in range of both lists becomes a change_child at the
// original b index. Once one list is exhausted, remaining entries in
// listA become insert_child at their target a index, and remaining
// entries in listB become delete_child at their original b index.
//
// change_child/delete_child indices always refer to positions in the
// original listB (they are never adjusted for earlier edits in this
// function, since listB itself is never mutated while diffing);
// ApplyDiff correspondingly applies delete_child operations from the
// highest index down so each index is still valid at the moment it is
// used, which is the observable effect of the running `ndeletes`
// counter described in the reference implementation.
func diffChildList(patch *Node, tag string, listA, listB []*Node) {
	i, j := 0, 0
	for i < len(listA) && j < len(listB) {
		if listA[i].Equal(listB[j]) {
			i++
			j++
			continue
		}
		op := New()
		op.SetAttr(attrIndex, Plain(strconv.Itoa(j)))
		op.children = append(op.children, Child{Tag: tag, Node: Diff(listA[i], listB[j])})
		patch.children = append(patch.children, Child{Tag: tagChangeChild, Node: op})
		i++
		j++
	}
	for i < len(listA) {
		op := New()
		op.SetAttr(attrIndex, Plain(strconv.Itoa(i)))
		op.children = append(op.children, Child{Tag: tag, Node: listA[i].Clone()})
		patch.children = append(patch.children, Child{Tag: tagInsertChild, Node: op})
		i++
	}
	for j < len(listB) {
		op := New()
		op.SetAttr(attrIndex, Plain(strconv.Itoa(j)))
		op.children = append(op.children, Child{Tag: tag, Node: New()})
		patch.children = append(patch.children, Child{Tag: tagDeleteChild, Node: op})
		j++
	}
}
