package ptree

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/eponymous/proptree/ptree/keypath"
)

func (n *Node) touch() {
	n.gen++
}

// matchSegment returns the first child, in storage order, matching the
// segment: by key, or by value for a value-match segment.
func (n *Node) matchSegment(seg keypath.Segment) *Node {
	for i := range n.children {
		c := &n.children[i]
		if seg.ByValue {
			if c.node.value == seg.Literal {
				return c.node
			}
			continue
		}
		if c.key == seg.Literal {
			return c.node
		}
	}
	return nil
}

// makeSegment appends a child satisfying the segment: an empty child
// with the segment key, or, for a value-match segment, an empty-keyed
// child holding the matched value.
func (n *Node) makeSegment(seg keypath.Segment) *Node {
	c := child{key: seg.Literal, node: &Node{}}
	if seg.ByValue {
		c.key = ""
		c.node.value = seg.Literal
	}
	n.children = append(n.children, c)
	n.touch()
	return c.node
}

func (n *Node) resolve(path string) (*Node, error) {
	p, err := keypath.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	cur := n
	for _, seg := range p.Segments() {
		next := cur.matchSegment(seg)
		if next == nil {
			return nil, &PathError{Path: path, Segment: seg.Literal}
		}
		cur = next
	}
	return cur, nil
}

// resolveOrCreate walks all but the last segment, creating missing
// children along the way, and returns the parent of the leaf segment.
func (n *Node) resolveOrCreate(p *keypath.Path) *Node {
	cur := n
	segs := p.Segments()
	for _, seg := range segs[:len(segs)-1] {
		next := cur.matchSegment(seg)
		if next == nil {
			next = cur.makeSegment(seg)
		}
		cur = next
	}
	return cur
}

// Get returns the node at the given path. It fails with a *PathError
// (wrapping ErrBadPath) when a segment matches no child.
func (n *Node) Get(path string) (*Node, error) {
	return n.resolve(path)
}

// GetOr returns the node at the given path, or def when the path does
// not resolve.
func (n *Node) GetOr(path string, def *Node) *Node {
	res, err := n.resolve(path)
	if err != nil {
		return def
	}
	return res
}

// Put sets the node at the given path to the given scalar or subtree,
// creating missing ancestors. An existing node at the path has its
// whole content replaced; otherwise a new child is appended. Put
// returns the written node.
func (n *Node) Put(path string, v any) (*Node, error) {
	sub, err := asNode(v)
	if err != nil {
		return nil, err
	}
	p, err := keypath.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	if p.Empty() {
		n.value = sub.value
		n.children = sub.children
		n.touch()
		return n, nil
	}
	segs := p.Segments()
	parent := n.resolveOrCreate(p)
	leaf := segs[len(segs)-1]
	dst := parent.matchSegment(leaf)
	if dst == nil {
		dst = parent.makeSegment(leaf)
	}
	dst.value = sub.value
	dst.children = sub.children
	dst.touch()
	return dst, nil
}

// Add appends a new node at the given path, creating missing ancestors.
// Unlike Put it never replaces: when the leaf key already exists a new
// same-keyed sibling is appended after the existing children.
func (n *Node) Add(path string, v any) (*Node, error) {
	sub, err := asNode(v)
	if err != nil {
		return nil, err
	}
	p, err := keypath.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPath, err)
	}
	if p.Empty() {
		return nil, fmt.Errorf("%w: empty path in add", ErrBadPath)
	}
	segs := p.Segments()
	parent := n.resolveOrCreate(p)
	leaf := segs[len(segs)-1]
	key := leaf.Literal
	if leaf.ByValue {
		key = ""
	}
	parent.children = append(parent.children, child{key: key, node: sub})
	parent.touch()
	return sub, nil
}

// SetDefault returns the node at the given path if it resolves, and
// otherwise puts def there (creating missing ancestors) and returns the
// created node. A nil def stores "none".
func (n *Node) SetDefault(path string, def any) (*Node, error) {
	res, err := n.resolve(path)
	if err == nil {
		return res, nil
	}
	return n.Put(path, def)
}

// Append adds the value to the end of the child list under the given
// key. The key is taken literally, not as a path.
func (n *Node) Append(key string, v any) (*Node, error) {
	sub, err := asNode(v)
	if err != nil {
		return nil, err
	}
	n.children = append(n.children, child{key: key, node: sub})
	n.touch()
	return sub, nil
}

// Insert places the value with its key just before position index.
// Negative indices count from the end, with -1 meaning "insert at the
// end". It fails with ErrIndexRange outside [0, Len()].
func (n *Node) Insert(index int, key string, v any) (*Node, error) {
	if index < 0 {
		index += len(n.children) + 1
	}
	if index < 0 || index > len(n.children) {
		return nil, fmt.Errorf("%w: insert index", ErrIndexRange)
	}
	sub, err := asNode(v)
	if err != nil {
		return nil, err
	}
	n.children = slices.Insert(n.children, index, child{key: key, node: sub})
	n.touch()
	return sub, nil
}

// Erase removes all children with the given key and returns how many
// were removed.
func (n *Node) Erase(key string) int {
	kept := n.children[:0]
	removed := 0
	for _, c := range n.children {
		if c.key == key {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed > 0 {
		n.children = kept
		n.touch()
	}
	return removed
}

// Remove deletes the first child whose value equals v. It fails with
// ErrValueNotFound when no child matches.
func (n *Node) Remove(v string) error {
	for i := range n.children {
		if n.children[i].node.value == v {
			n.children = slices.Delete(n.children, i, i+1)
			n.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrValueNotFound, v)
}

// Pop detaches the first child with the given key and returns it. The
// returned subtree is independently owned by the caller. Pop fails with
// ErrKeyNotFound when the key is absent.
func (n *Node) Pop(key string) (*Node, error) {
	for i := range n.children {
		if n.children[i].key == key {
			res := n.children[i].node
			n.children = slices.Delete(n.children, i, i+1)
			n.touch()
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

// PopOr behaves like Pop but returns def instead of failing.
func (n *Node) PopOr(key string, def *Node) *Node {
	res, err := n.Pop(key)
	if err != nil {
		return def
	}
	return res
}

// PopItem detaches the child at the given position and returns its key
// and subtree. Negative indices count from the end; -1 pops the last
// child. It fails with ErrIndexRange outside [-Len(), Len()).
func (n *Node) PopItem(index int) (string, *Node, error) {
	if index < 0 {
		index += len(n.children)
	}
	if index < 0 || index >= len(n.children) {
		return "", nil, fmt.Errorf("%w: popitem index", ErrIndexRange)
	}
	c := n.children[index]
	n.children = slices.Delete(n.children, index, index+1)
	n.touch()
	return c.key, c.node, nil
}

// Index returns the position of the first child whose value equals v.
// It fails with ErrValueNotFound when no child matches.
func (n *Node) Index(v string) (int, error) {
	return n.IndexRange(v, 0, len(n.children))
}

// IndexRange is Index restricted to positions in [start, end).
func (n *Node) IndexRange(v string, start, end int) (int, error) {
	if start < 0 {
		start = 0
	}
	if end > len(n.children) {
		end = len(n.children)
	}
	for i := start; i < end; i++ {
		if n.children[i].node.value == v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q is not in tree", ErrValueNotFound, v)
}

// Comparator orders two (key, node) pairs for SortFunc. It reports
// whether the first pair sorts before the second.
type Comparator func(k1 string, n1 *Node, k2 string, n2 *Node) bool

// Sort reorders the children in place by key, using natural string
// ordering. The sort is stable: same-keyed children keep their relative
// storage order. Sorting is idempotent.
func (n *Node) Sort() {
	n.SortFunc(func(k1 string, _ *Node, k2 string, _ *Node) bool {
		return k1 < k2
	})
}

// SortFunc reorders the children in place with an injected ordering.
// A panic raised by less propagates; the tree is left consistently
// ordered-but-unspecified in that case.
func (n *Node) SortFunc(less Comparator) {
	n.touch()
	slices.SortStableFunc(n.children, func(a, b child) int {
		if less(a.key, a.node, b.key, b.node) {
			return -1
		}
		if less(b.key, b.node, a.key, a.node) {
			return 1
		}
		return 0
	})
}

// Reverse reverses the children in place.
func (n *Node) Reverse() {
	slices.Reverse(n.children)
	n.touch()
}

// Merge returns a new tree: a copy of n with other's top-level children
// put over it, replacing the first same-keyed child or appending.
// Neither operand is mutated.
func (n *Node) Merge(other *Node) *Node {
	res := n.Clone()
	res.Update(other)
	return res
}

// Update is the mutating merge: each of other's top-level children is
// put over n, replacing the first same-keyed child or appending.
func (n *Node) Update(other *Node) {
	for i := range other.children {
		c := other.children[i]
		n.putChild(c.key, c.node.Clone())
	}
}

func (n *Node) putChild(key string, sub *Node) {
	for i := range n.children {
		if n.children[i].key == key {
			n.children[i].node = sub
			n.touch()
			return
		}
	}
	n.children = append(n.children, child{key: key, node: sub})
	n.touch()
}

// Concat appends copies of all of other's children after n's own.
// Key collisions are allowed; nothing is merged.
func (n *Node) Concat(other *Node) {
	for i := range other.children {
		c := other.children[i]
		n.children = append(n.children, child{key: c.key, node: c.node.Clone()})
	}
	n.touch()
}

// Extend appends a copy of every (key, node) pair produced by seq.
// t2.Extend(t1.Items()) concatenates t1's children onto t2. The
// mutation is visible to open iterators from the first append, so a
// sequence iterating n itself panics instead of feeding its own output.
func (n *Node) Extend(seq iter.Seq2[string, *Node]) {
	n.touch()
	for key, sub := range seq {
		n.children = append(n.children, child{key: key, node: sub.Clone()})
	}
}

// Clear removes the node's value and all children.
func (n *Node) Clear() {
	n.value = ""
	n.children = nil
	n.touch()
}

// SearchFunc iterates the children for which pred returns true, in
// storage order.
func (n *Node) SearchFunc(pred func(key string, node *Node) bool) iter.Seq2[string, *Node] {
	gen := n.gen
	return func(yield func(string, *Node) bool) {
		for i := 0; ; i++ {
			if n.gen != gen {
				panic("ptree: tree modified during iteration")
			}
			if i >= len(n.children) {
				return
			}
			c := n.children[i]
			if !pred(c.key, c.node) {
				continue
			}
			if !yield(c.key, c.node) {
				return
			}
		}
	}
}

// String renders a compact single-line debug form of the tree.
func (n *Node) String() string {
	var b strings.Builder
	n.debugString(&b)
	return b.String()
}

func (n *Node) debugString(b *strings.Builder) {
	b.WriteString(fmt.Sprintf("%q", n.value))
	if len(n.children) == 0 {
		return
	}
	b.WriteByte('{')
	for i, c := range n.children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%q: ", c.key))
		c.node.debugString(b)
	}
	b.WriteByte('}')
}
