// Package ptree implements an ordered, key-addressable property tree.
//
// A Node holds a string value and an ordered sequence of (key, child)
// pairs. Keys need not be unique among siblings; repeated keys are how
// arrays and repeated elements are represented. Storage order is
// insertion order and is preserved by every read and reproduced by every
// codec. All structural mutation goes through Node methods so the
// sequential and associative views can never disagree.
package ptree

import (
	"iter"
	"strings"
)

type Node struct {
	value    string
	children []child

	// gen counts structural mutations. Open iterators capture it and
	// fail deterministically when the sequence changes under them;
	// associative views use it to rebuild their index lazily.
	gen uint32
}

type child struct {
	key  string
	node *Node
}

// New returns an empty node: no value, no children.
func New() *Node {
	return &Node{}
}

// FromString returns a leaf node holding v.
func FromString(v string) *Node {
	return &Node{value: v}
}

// NewValue returns a leaf node holding the text form of the scalar v,
// per the closed coercion table (nil, bool, string, integer, float).
// A *Node argument is deep-copied.
func NewValue(v any) (*Node, error) {
	return asNode(v)
}

// Value returns the node's stored text.
func (n *Node) Value() string {
	return n.value
}

// SetValue replaces the node's stored text with the text form of v.
// Children are unaffected.
func (n *Node) SetValue(v any) error {
	text, err := scalarText(v)
	if err != nil {
		return err
	}
	n.value = text
	return nil
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.children)
}

// Empty reports whether the node has no children.
func (n *Node) Empty() bool {
	return len(n.children) == 0
}

// At returns the child at position i. Negative indices count from the
// end. At panics if i is out of range, like slice indexing.
func (n *Node) At(i int) *Node {
	return n.children[n.abs(i)].node
}

// KeyAt returns the key of the child at position i. Negative indices
// count from the end.
func (n *Node) KeyAt(i int) string {
	return n.children[n.abs(i)].key
}

func (n *Node) abs(i int) int {
	if i < 0 {
		i += len(n.children)
	}
	if i < 0 || i >= len(n.children) {
		panic("ptree: index out of range")
	}
	return i
}

// Keys returns the child keys in storage order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.children))
	for i := range n.children {
		keys[i] = n.children[i].key
	}
	return keys
}

// Values returns the child nodes in storage order.
func (n *Node) Values() []*Node {
	vals := make([]*Node, len(n.children))
	for i := range n.children {
		vals[i] = n.children[i].node
	}
	return vals
}

// Items iterates the (key, child) pairs in storage order. Structural
// mutation of n during the iteration panics rather than silently
// corrupting the walk.
func (n *Node) Items() iter.Seq2[string, *Node] {
	gen := n.gen
	return func(yield func(string, *Node) bool) {
		// gen is checked before the bounds test so a mutation that
		// shrinks the sequence still panics instead of ending the loop.
		for i := 0; ; i++ {
			if n.gen != gen {
				panic("ptree: tree modified during iteration")
			}
			if i >= len(n.children) {
				return
			}
			c := n.children[i]
			if !yield(c.key, c.node) {
				return
			}
		}
	}
}

// Count returns the number of direct children with the given key.
func (n *Node) Count(key string) int {
	count := 0
	for i := range n.children {
		if n.children[i].key == key {
			count++
		}
	}
	return count
}

// Contains reports whether s is a child key or a substring of the
// node's own value.
func (n *Node) Contains(s string) bool {
	for i := range n.children {
		if n.children[i].key == s {
			return true
		}
	}
	return strings.Contains(n.value, s)
}

// Clone deep-copies the node and its whole subtree. The copy shares no
// storage with the original.
func (n *Node) Clone() *Node {
	res := &Node{value: n.value}
	if len(n.children) == 0 {
		return res
	}
	res.children = make([]child, len(n.children))
	for i, c := range n.children {
		res.children[i] = child{key: c.key, node: c.node.Clone()}
	}
	return res
}
