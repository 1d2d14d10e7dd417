package ptree

import "strings"

// Compare orders two trees structurally: first by value, then by the
// (key, child) pairs pairwise in storage order, then by child count.
// Nil compares before any non-nil node.
func Compare(a, b *Node) int {
	if a == nil || b == nil {
		if a == b {
			return 0
		}
		if a == nil {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.value, b.value); c != 0 {
		return c
	}
	n := min(len(a.children), len(b.children))
	for i := 0; i < n; i++ {
		ca, cb := a.children[i], b.children[i]
		if c := strings.Compare(ca.key, cb.key); c != 0 {
			return c
		}
		if c := Compare(ca.node, cb.node); c != 0 {
			return c
		}
	}
	switch {
	case len(a.children) < len(b.children):
		return -1
	case len(a.children) > len(b.children):
		return 1
	}
	return 0
}

// Equal reports whether two trees have the same value and the same
// (key, child) pairs in the same order.
func Equal(a, b *Node) bool {
	return Compare(a, b) == 0
}
