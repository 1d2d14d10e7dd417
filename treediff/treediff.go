// Package treediff computes structural diffs between property trees.
//
// The diff is a flat list of changes, each naming the affected node by
// its key path. Sibling sequences are aligned with a sequence diff
// over the key lists, so an insertion in the middle of a long child
// list reports one insert instead of shifting every later sibling.
package treediff

import (
	"fmt"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/eponymous/proptree/ptree"
	"github.com/eponymous/proptree/ptree/keypath"
)

type Op int

const (
	// OpInsert adds a subtree present only in the new tree.
	OpInsert Op = iota
	// OpDelete removes a subtree present only in the old tree.
	OpDelete
	// OpModify changes a node's own value in place.
	OpModify
)

func (op Op) String() string {
	switch op {
	case OpInsert:
		return "+"
	case OpDelete:
		return "-"
	case OpModify:
		return "~"
	}
	return "?"
}

// Change is one edit. Old is set for deletes and modifies, New for
// inserts and modifies; the subtree pointers alias the diffed trees.
type Change struct {
	Op   Op
	Path string
	Old  *ptree.Node
	New  *ptree.Node
}

func (c Change) String() string {
	switch c.Op {
	case OpInsert:
		return fmt.Sprintf("+ %s %s", c.Path, c.New)
	case OpDelete:
		return fmt.Sprintf("- %s %s", c.Path, c.Old)
	default:
		return fmt.Sprintf("~ %s %q -> %q", c.Path, c.Old.Value(), c.New.Value())
	}
}

// Diff returns the changes that turn from into to. A nil result means
// the trees are equal.
func Diff(from, to *ptree.Node) []Change {
	d := &differ{cfg: diffpatch.New()}
	d.node(nil, from, to)
	return d.changes
}

// Render writes one change per line, in tree order.
func Render(changes []Change) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

type differ struct {
	cfg     *diffpatch.DiffMatchPatch
	changes []Change
}

func (d *differ) node(path []string, from, to *ptree.Node) {
	if from.Value() != to.Value() {
		d.changes = append(d.changes, Change{
			Op:   OpModify,
			Path: keypath.Join(path...),
			Old:  from,
			New:  to,
		})
	}
	d.children(path, from, to)
}

// children aligns the two key sequences with a rune-level diff: each
// distinct key maps to one rune, so equal runs pair same-keyed
// siblings positionally and the recursion only descends into pairs the
// alignment kept together.
func (d *differ) children(path []string, from, to *ptree.Node) {
	keyMap := map[string]rune{}
	fromRunes := mapKeysTo(keyMap, from)
	toRunes := mapKeysTo(keyMap, to)
	diffs := d.cfg.DiffMainRunes(fromRunes, toRunes, false)
	fi, ti := 0, 0
	for i := range diffs {
		diff := &diffs[i]
		switch diff.Type {
		case diffpatch.DiffDelete:
			for range diff.Text {
				d.changes = append(d.changes, Change{
					Op:   OpDelete,
					Path: keypath.Join(append(path, from.KeyAt(fi))...),
					Old:  from.At(fi),
				})
				fi++
			}
		case diffpatch.DiffEqual:
			for range diff.Text {
				key := from.KeyAt(fi)
				d.node(append(path, key), from.At(fi), to.At(ti))
				fi++
				ti++
			}
		case diffpatch.DiffInsert:
			for range diff.Text {
				d.changes = append(d.changes, Change{
					Op:   OpInsert,
					Path: keypath.Join(append(path, to.KeyAt(ti))...),
					New:  to.At(ti),
				})
				ti++
			}
		}
	}
}

func mapKeysTo(m map[string]rune, n *ptree.Node) []rune {
	rs := make([]rune, 0, n.Len())
	for key := range n.Items() {
		r, ok := m[key]
		if !ok {
			r = rune(len(m))
			m[key] = r
		}
		rs = append(rs, r)
	}
	return rs
}
