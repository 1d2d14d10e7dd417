// Package keypath parses delimited path strings addressing property-tree
// nodes.
//
// A path is a sequence of key segments separated by a single-rune
// delimiter (default '.'). A backslash escapes the rune after it, which
// embeds the delimiter, a backslash, or a literal leading '[' in a
// segment. The final segment may instead be a value-match segment,
// written "[literal]", which selects the first child whose own value
// equals the literal rather than descending by key; it is how callers
// pick among same-keyed siblings by content.
//
// Examples, with the default delimiter:
//
//   - "a.b.c"       → keys a, b, c
//   - "a\.b.c"      → keys "a.b", c
//   - "shows.[99]"  → key shows, then the child whose value is "99"
//   - ""            → the node itself (no segments)
package keypath

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultDelim separates segments unless the caller picks another rune.
const DefaultDelim = '.'

var (
	ErrSyntax = errors.New("path syntax")

	errTrailingEscape = fmt.Errorf("%w: trailing escape", ErrSyntax)
	errUnterminated   = fmt.Errorf("%w: unterminated value match", ErrSyntax)
	errNotLast        = fmt.Errorf("%w: value match must be the last segment", ErrSyntax)
)

// Segment is one step of a parsed path: descend by key, or, for the
// trailing segment only, match the first child whose value equals
// Literal.
type Segment struct {
	Literal string
	ByValue bool
}

// Path is the ephemeral parsed form of a path string. It is never
// persisted; resolution happens against a live tree.
type Path struct {
	segs  []Segment
	delim rune
}

// Parse parses a path using the default delimiter.
func Parse(s string) (*Path, error) {
	return ParseDelim(s, DefaultDelim)
}

// ParseDelim parses a path using the given delimiter rune. An empty
// path parses to zero segments and addresses the node itself.
func ParseDelim(s string, delim rune) (*Path, error) {
	p := &Path{delim: delim}
	if s == "" {
		return p, nil
	}
	var (
		seg      strings.Builder
		first    = true  // no rune written to seg yet
		byValue  = false // segment opened with unescaped '['
		escaped  = false
		closed   = false // byValue segment saw its closing ']'
		sawClose = func() bool { return byValue && closed }
	)
	flush := func() error {
		if byValue && !closed {
			return errUnterminated
		}
		p.segs = append(p.segs, Segment{Literal: seg.String(), ByValue: byValue})
		seg.Reset()
		first = true
		byValue = false
		closed = false
		return nil
	}
	for _, r := range s {
		if escaped {
			if sawClose() {
				return nil, fmt.Errorf("%w: text after ']'", ErrSyntax)
			}
			seg.WriteRune(r)
			escaped = false
			first = false
			continue
		}
		switch {
		case r == '\\':
			escaped = true
		case r == delim:
			if err := flush(); err != nil {
				return nil, err
			}
		case r == '[' && first:
			byValue = true
			first = false
		case r == ']' && byValue && !closed:
			closed = true
		default:
			if sawClose() {
				return nil, fmt.Errorf("%w: text after ']'", ErrSyntax)
			}
			seg.WriteRune(r)
			first = false
		}
	}
	if escaped {
		return nil, errTrailingEscape
	}
	if err := flush(); err != nil {
		return nil, err
	}
	for i, sg := range p.segs {
		if sg.ByValue && i != len(p.segs)-1 {
			return nil, errNotLast
		}
	}
	return p, nil
}

// Segments returns the parsed segments in order.
func (p *Path) Segments() []Segment {
	return p.segs
}

// Empty reports whether the path addresses the node itself.
func (p *Path) Empty() bool {
	return len(p.segs) == 0
}

// String renders the path back to its escaped text form. Parse(p.String())
// yields an equal path.
func (p *Path) String() string {
	var b strings.Builder
	for i, sg := range p.segs {
		if i > 0 {
			b.WriteRune(p.delim)
		}
		if sg.ByValue {
			b.WriteByte('[')
			b.WriteString(escape(sg.Literal, p.delim, true))
			b.WriteByte(']')
			continue
		}
		b.WriteString(escape(sg.Literal, p.delim, false))
	}
	return b.String()
}

// Join builds an escaped path string from literal key segments.
// Parse(Join(keys...)) yields exactly those keys.
func Join(keys ...string) string {
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteRune(DefaultDelim)
		}
		b.WriteString(escape(key, DefaultDelim, false))
	}
	return b.String()
}

func escape(s string, delim rune, inBrackets bool) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\' || r == delim:
			b.WriteByte('\\')
		case r == '[' && i == 0 && !inBrackets:
			b.WriteByte('\\')
		case r == ']' && inBrackets:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
