package tree

import (
	"sort"
	"strconv"

	wmlerrors "github.com/battle-for-wesnoth/wmlc/internal/errors"
)

type listEdit struct {
	kind  string
	index int
	sub   *Node
}

// ApplyDiff mutates n (the "b" side of the diff that produced patch)
// so it becomes structurally equal to the "a" side. Index errors
// (out of range, or a change_child/insert_child/delete_child entry
// missing its nested tag node) are returned without rolling back what
// was already applied: the insert/delete attribute edits, the child
// edits of earlier tags, and any earlier edits of the failing tag stay
// in n. A caller that needs atomicity should apply the patch to a
// clone and swap it in only on success.
func (n *Node) ApplyDiff(patch *Node) error {
	if insertNode, ok := patch.Child(tagInsert); ok {
		for name, v := range insertNode.attrs {
			n.SetAttr(name, v)
		}
	}
	if delNode, ok := patch.Child(tagDelete); ok {
		for name := range delNode.attrs {
			delete(n.attrs, name)
		}
	}

	edits := make(map[string][]listEdit)
	var order []string
	for _, c := range patch.children {
		if c.Tag != tagChangeChild && c.Tag != tagInsertChild && c.Tag != tagDeleteChild {
			continue
		}
		idxStr := c.Node.Attr(attrIndex).Raw()
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return wmlerrors.NewDiffMissingChild("apply_diff", c.Tag, -1)
		}
		if len(c.Node.children) == 0 {
			return wmlerrors.NewDiffMissingChild("apply_diff", c.Tag, idx)
		}
		tag := c.Node.children[0].Tag
		if _, seen := edits[tag]; !seen {
			order = append(order, tag)
		}
		edits[tag] = append(edits[tag], listEdit{kind: c.Tag, index: idx, sub: c.Node.children[0].Node})
	}

	for _, tag := range order {
		if err := n.applyChildListEdits(tag, edits[tag]); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) tagPositions(tag string) []int {
	var positions []int
	for gi, c := range n.children {
		if c.Tag == tag {
			positions = append(positions, gi)
		}
	}
	return positions
}

func (n *Node) applyChildListEdits(tag string, edits []listEdit) error {
	positions := n.tagPositions(tag)

	for _, e := range edits {
		if e.kind != tagChangeChild {
			continue
		}
		if e.index < 0 || e.index >= len(positions) {
			return wmlerrors.NewDiffIndexOutOfRange("apply_diff", e.index, len(positions))
		}
		child := n.children[positions[e.index]].Node
		if err := child.ApplyDiff(e.sub); err != nil {
			return err
		}
	}

	var deletes []int
	for _, e := range edits {
		if e.kind == tagDeleteChild {
			deletes = append(deletes, e.index)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(deletes)))
	for _, idx := range deletes {
		if idx < 0 || idx >= len(positions) {
			return wmlerrors.NewDiffIndexOutOfRange("apply_diff", idx, len(positions))
		}
		gi := positions[idx]
		n.children = append(n.children[:gi], n.children[gi+1:]...)
	}

	var inserts []listEdit
	for _, e := range edits {
		if e.kind == tagInsertChild {
			inserts = append(inserts, e)
		}
	}
	sort.Slice(inserts, func(i, j int) bool { return inserts[i].index < inserts[j].index })
	for _, e := range inserts {
		live := n.tagPositions(tag)
		var insertAt int
		switch {
		case e.index < 0:
			return wmlerrors.NewDiffIndexOutOfRange("apply_diff", e.index, len(live)+1)
		case e.index >= len(live):
			if len(live) > 0 {
				insertAt = live[len(live)-1] + 1
			} else {
				insertAt = len(n.children)
			}
		default:
			insertAt = live[e.index]
		}
		n.children = append(n.children, Child{})
		copy(n.children[insertAt+1:], n.children[insertAt:])
		n.children[insertAt] = Child{Tag: tag, Node: e.sub.Clone()}
	}

	return nil
}
