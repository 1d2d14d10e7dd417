package ptree

import (
	"iter"
	"slices"
	"strings"
)

// Assoc is the associative view of a node's children: the same live
// sequence, indexed by key. The index is built lazily and rebuilt when
// the underlying sequence has mutated since the last use, so lookups
// always reflect current storage order. An Assoc is cheap to hold; it
// owns no children.
type Assoc struct {
	node *Node
	gen  uint32
	idx  map[string][]int
}

// Assoc returns the associative view of n's children.
func (n *Node) Assoc() *Assoc {
	return &Assoc{node: n, gen: n.gen}
}

func (a *Assoc) index() map[string][]int {
	if a.idx == nil || a.gen != a.node.gen {
		a.idx = make(map[string][]int, len(a.node.children))
		for i := range a.node.children {
			key := a.node.children[i].key
			a.idx[key] = append(a.idx[key], i)
		}
		a.gen = a.node.gen
	}
	return a.idx
}

// Find returns the first child with the given key in storage order, or
// nil when the key is absent.
func (a *Assoc) Find(key string) *Node {
	pos := a.index()[key]
	if len(pos) == 0 {
		return nil
	}
	return a.node.children[pos[0]].node
}

// EqualRange iterates all children with the given key, in storage
// order. Structural mutation during the iteration panics.
func (a *Assoc) EqualRange(key string) iter.Seq2[int, *Node] {
	pos := a.index()[key]
	gen := a.node.gen
	return func(yield func(int, *Node) bool) {
		for k := 0; ; k++ {
			if a.node.gen != gen {
				panic("ptree: tree modified during iteration")
			}
			if k >= len(pos) {
				return
			}
			i := pos[k]
			if !yield(i, a.node.children[i].node) {
				return
			}
		}
	}
}

// Count returns the number of children with the given key.
func (a *Assoc) Count(key string) int {
	return len(a.index()[key])
}

// Find returns the first child with the given key, or nil. It is the
// one-shot form of Assoc().Find.
func (n *Node) Find(key string) *Node {
	for i := range n.children {
		if n.children[i].key == key {
			return n.children[i].node
		}
	}
	return nil
}

// Search iterates all children with the given key, in storage order.
func (n *Node) Search(key string) iter.Seq2[string, *Node] {
	return n.SearchFunc(func(k string, _ *Node) bool {
		return k == key
	})
}

// Sorted iterates the (key, child) pairs in key order without mutating
// the tree. Same-keyed children keep their storage order.
func (n *Node) Sorted() iter.Seq2[string, *Node] {
	gen := n.gen
	return func(yield func(string, *Node) bool) {
		order := make([]int, len(n.children))
		for i := range order {
			order[i] = i
		}
		// stable: ties resolve to storage order
		slices.SortStableFunc(order, func(a, b int) int {
			return strings.Compare(n.children[a].key, n.children[b].key)
		})
		for k := 0; ; k++ {
			if n.gen != gen {
				panic("ptree: tree modified during iteration")
			}
			if k >= len(order) {
				return
			}
			c := n.children[order[k]]
			if !yield(c.key, c.node) {
				return
			}
		}
	}
}
