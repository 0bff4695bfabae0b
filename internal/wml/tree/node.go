// Package tree implements the ConfigTree data model: an ordered,
// tag-addressable node tree with attribute maps, plus the structural
// diff/patch algebra used to synchronize two copies of a tree across a
// wire. Grounded on original_source/src/config.cpp's config class.
package tree

import "strings"

// Child pairs a tag name with the node it names, in the order it was
// inserted relative to every other child of its owner (not just
// children sharing its tag).
type Child struct {
	Tag  string
	Node *Node
}

// Node is one ConfigTree element: an attribute map plus an ordered
// sequence of (tag, child) pairs. The zero value is an empty node
// ready to use.
type Node struct {
	attrs    map[string]AttributeValue
	children []Child
}

// New returns an empty node.
func New() *Node {
	return &Node{}
}

// AddChild appends a new empty child of the given tag and returns it.
func (n *Node) AddChild(tag string) *Node {
	child := New()
	n.children = append(n.children, Child{Tag: tag, Node: child})
	return child
}

// AddChildCopy appends a deep copy of other as a new child of the
// given tag and returns the copy.
func (n *Node) AddChildCopy(tag string, other *Node) *Node {
	child := other.Clone()
	n.children = append(n.children, Child{Tag: tag, Node: child})
	return child
}

// Child returns the first child of the given tag, in insertion order.
func (n *Node) Child(tag string) (*Node, bool) {
	for _, c := range n.children {
		if c.Tag == tag {
			return c.Node, true
		}
	}
	return nil, false
}

// ChildMut is Child's mutable-access spelling; the returned node is the
// same value Child would return (Go has no separate const/mut views).
func (n *Node) ChildMut(tag string) (*Node, bool) {
	return n.Child(tag)
}

// ChildRange returns every child of the given tag, in insertion order.
func (n *Node) ChildRange(tag string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Tag == tag {
			out = append(out, c.Node)
		}
	}
	return out
}

// FindChild returns the first child of tag whose attr equals value.
func (n *Node) FindChild(tag, attr, value string) (*Node, bool) {
	for _, c := range n.children {
		if c.Tag != tag {
			continue
		}
		if c.Node.Attr(attr).Raw() == value {
			return c.Node, true
		}
	}
	return nil, false
}

// AllChildrenOrdered returns every (tag, child) pair in the node's
// global insertion order, across all tag names.
func (n *Node) AllChildrenOrdered() []Child {
	return n.children
}

// RemoveChild removes the index-th child of the given tag; indices of
// later children of the same tag, and the global order, both shift
// down to account for the removal.
func (n *Node) RemoveChild(tag string, index int) {
	seen := 0
	for i, c := range n.children {
		if c.Tag != tag {
			continue
		}
		if seen == index {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
		seen++
	}
}

// ClearChildren removes every child of the given tag.
func (n *Node) ClearChildren(tag string) {
	out := n.children[:0]
	for _, c := range n.children {
		if c.Tag != tag {
			out = append(out, c)
		}
	}
	n.children = out
}

// Clear removes every attribute and every child.
func (n *Node) Clear() {
	n.attrs = nil
	n.children = nil
}

// Attr returns the named attribute, or the zero AttributeValue (empty,
// i.e. absent) if it was never set.
func (n *Node) Attr(name string) AttributeValue {
	return n.attrs[name]
}

// VariableProvider resolves a `$name` reference encountered while
// reading an attribute that starts with `$`, the hook config.cpp's
// variable substitution uses for game-state-dependent attributes.
type VariableProvider interface {
	Resolve(name string) (AttributeValue, bool)
}

// AttrResolved is Attr, but when the stored raw text begins with `$` it
// consults provider for the substituted value instead of returning the
// literal `$name` text. When provider is nil or has no value for the
// name, the stored value is returned unchanged.
func (n *Node) AttrResolved(name string, provider VariableProvider) AttributeValue {
	v := n.Attr(name)
	if provider == nil {
		return v
	}
	raw := v.Raw()
	if !strings.HasPrefix(raw, "$") {
		return v
	}
	if resolved, ok := provider.Resolve(raw[1:]); ok {
		return resolved
	}
	return v
}

// SetAttr assigns an attribute. Setting an empty value removes it:
// empty attributes are absent both for lookup and for serialization.
func (n *Node) SetAttr(name string, value AttributeValue) {
	if value.Empty() {
		delete(n.attrs, name)
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]AttributeValue)
	}
	n.attrs[name] = value
}

// AttrNames returns the node's attribute names in no particular order;
// attribute order is explicitly insignificant per the data model.
func (n *Node) AttrNames() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	return names
}

// Clone returns a deep copy of n: every descendant is duplicated, so
// mutating the copy never affects the original.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{}
	if len(n.attrs) > 0 {
		c.attrs = make(map[string]AttributeValue, len(n.attrs))
		for k, v := range n.attrs {
			c.attrs[k] = v
		}
	}
	if len(n.children) > 0 {
		c.children = make([]Child, len(n.children))
		for i, ch := range n.children {
			c.children[i] = Child{Tag: ch.Tag, Node: ch.Node.Clone()}
		}
	}
	return c
}

// Equal reports structural equality: equal attribute maps (attribute
// order irrelevant) and pointwise-equal ordered child sequences.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if len(n.attrs) != len(other.attrs) {
		return false
	}
	for k, v := range n.attrs {
		ov, ok := other.attrs[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for i := range n.children {
		if n.children[i].Tag != other.children[i].Tag {
			return false
		}
		if !n.children[i].Node.Equal(other.children[i].Node) {
			return false
		}
	}
	return true
}
