// Package pos maps byte offsets in a document to line and column
// numbers for parser error messages.
package pos

import (
	"fmt"
	"sort"
	"strconv"
)

// Doc indexes a parsed document's newline offsets. Lines and columns
// are 1-based.
type Doc struct {
	d []byte
	n []int
}

// NewDoc indexes the whole document up front.
func NewDoc(d []byte) *Doc {
	doc := &Doc{d: d}
	for i, b := range d {
		if b == '\n' {
			doc.n = append(doc.n, i)
		}
	}
	return doc
}

// LineCol returns the 1-based line and column of the byte at off.
func (d *Doc) LineCol(off int) (int, int) {
	n := len(d.n)
	i := sort.Search(n, func(i int) bool {
		return d.n[i] >= off
	})
	if i == 0 {
		return 1, off + 1
	}
	return i + 1, off - d.n[i-1]
}

// Pos binds an offset to its document for error messages.
func (d *Doc) Pos(off int) Pos {
	return Pos{Off: off, Doc: d}
}

// End returns the position one past the last byte.
func (d *Doc) End() Pos {
	return Pos{Off: len(d.d), Doc: d}
}

type Pos struct {
	Off int
	Doc *Doc
}

func (p Pos) LineCol() (int, int) {
	return p.Doc.LineCol(p.Off)
}

func (p Pos) Line() int {
	l, _ := p.LineCol()
	return l
}

func (p Pos) Col() int {
	_, c := p.LineCol()
	return c
}

func (p Pos) String() string {
	line, col := p.LineCol()
	sample := string(p.Doc.d[max(0, p.Off-8):min(p.Off+8, len(p.Doc.d))])
	sample = strconv.Quote(sample)
	sample = sample[1 : len(sample)-1]
	return fmt.Sprintf("line %d, col %d near `%s`", line, col, sample)
}
