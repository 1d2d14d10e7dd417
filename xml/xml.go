// Package xml reads and writes property trees as XML.
//
// Each element becomes a child keyed by the element name. Three
// reserved keys carry non-element content: attributes live under an
// "<xmlattr>" child (one grandchild per attribute, in document order),
// comments under "<xmlcomment>" children, and, with NoConcatText, text
// chunks under "<xmltext>" children. By default text is instead
// concatenated into the element node's own value, so simple documents
// read naturally with Get. The tree root itself never maps to an
// element: the document's root element is the root node's (typically
// only) child.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/eponymous/proptree/internal/pos"
	"github.com/eponymous/proptree/ptree"
)

// Reserved child keys. No element may be named these.
const (
	AttrKey    = "<xmlattr>"
	TextKey    = "<xmltext>"
	CommentKey = "<xmlcomment>"
)

// ErrEncode reports a tree with no XML form.
var ErrEncode = errors.New("xml encode")

// ParseError reports malformed input, with a 1-based source position.
type ParseError struct {
	Line, Col int
	Offset    int64
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xml parse error at line %d, col %d: %v", e.Line, e.Col, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type parseOpts struct {
	noConcatText   bool
	noComments     bool
	trimWhitespace bool
}

// ParseOption adjusts how a document maps onto the tree.
type ParseOption func(*parseOpts)

// NoConcatText keeps text as "<xmltext>" children, one per chunk in
// document order, instead of concatenating it into the element node's
// value.
func NoConcatText() ParseOption {
	return func(o *parseOpts) { o.noConcatText = true }
}

// NoComments drops comments instead of storing "<xmlcomment>" children.
func NoComments() ParseOption {
	return func(o *parseOpts) { o.noComments = true }
}

// TrimWhitespace trims surrounding whitespace from every text chunk,
// collapses interior whitespace runs to single spaces, and drops chunks
// that are whitespace only.
func TrimWhitespace() ParseOption {
	return func(o *parseOpts) { o.trimWhitespace = true }
}

// Parse builds a tree from an XML document.
func Parse(data []byte, opts ...ParseOption) (*ptree.Node, error) {
	var o parseOpts
	for _, opt := range opts {
		opt(&o)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	p := &parser{dec: dec, doc: pos.NewDoc(data), opts: &o}
	root := ptree.New()
	if err := p.content(root, nil); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string, opts ...ParseOption) (*ptree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

// Decode parses a tree from r.
func Decode(r io.Reader, opts ...ParseOption) (*ptree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

type parser struct {
	dec  *xml.Decoder
	doc  *pos.Doc
	opts *parseOpts
}

func (p *parser) fail(err error) error {
	off := p.dec.InputOffset()
	var serr *xml.SyntaxError
	if errors.As(err, &serr) && serr.Line > 0 {
		return &ParseError{Line: serr.Line, Col: 1, Offset: off, Err: err}
	}
	line, col := p.doc.LineCol(int(off))
	return &ParseError{Line: line, Col: col, Offset: off, Err: err}
}

// content fills n with the tokens up to the end tag closing start, or
// up to EOF for the document root (start == nil).
func (p *parser) content(n *ptree.Node, start *xml.StartElement) error {
	var text strings.Builder
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			if start != nil {
				return p.fail(fmt.Errorf("unexpected EOF in <%s>", start.Name.Local))
			}
			break
		}
		if err != nil {
			return p.fail(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sub := ptree.New()
			if err := p.attrs(sub, t); err != nil {
				return err
			}
			elem := t
			if err := p.content(sub, &elem); err != nil {
				return err
			}
			if _, err := n.Append(t.Name.Local, sub); err != nil {
				return err
			}
		case xml.EndElement:
			if start == nil {
				return p.fail(fmt.Errorf("unexpected </%s>", t.Name.Local))
			}
			if !p.opts.noConcatText {
				if err := n.SetValue(text.String()); err != nil {
					return err
				}
			}
			return nil
		case xml.CharData:
			chunk := string(t)
			if p.opts.trimWhitespace {
				chunk = strings.Join(strings.Fields(chunk), " ")
			}
			if chunk == "" {
				continue
			}
			if start == nil {
				if strings.TrimSpace(chunk) == "" {
					continue
				}
				return p.fail(fmt.Errorf("text outside root element: %q", chunk))
			}
			if p.opts.noConcatText {
				if _, err := n.Append(TextKey, ptree.FromString(chunk)); err != nil {
					return err
				}
				continue
			}
			text.WriteString(chunk)
		case xml.Comment:
			if p.opts.noComments || start == nil {
				continue
			}
			if _, err := n.Append(CommentKey, ptree.FromString(string(t))); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) attrs(n *ptree.Node, start xml.StartElement) error {
	if len(start.Attr) == 0 {
		return nil
	}
	attrs := ptree.New()
	for _, a := range start.Attr {
		if _, err := attrs.Append(a.Name.Local, ptree.FromString(a.Value)); err != nil {
			return err
		}
	}
	_, err := n.Append(AttrKey, attrs)
	return err
}

type encOpts struct {
	indent string
}

// Option adjusts XML output.
type Option func(*encOpts)

// Indent enables pretty output with the given per-level indent. The
// default is compact output, which round-trips without whitespace
// text nodes.
func Indent(s string) Option {
	return func(o *encOpts) { o.indent = s }
}

// Format renders the tree as an XML document. The root node's children
// become the document's elements; the root's own value must be empty.
func Format(n *ptree.Node, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, n, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatFile renders the tree to the file at path.
func FormatFile(path string, n *ptree.Node, opts ...Option) error {
	data, err := Format(n, opts...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode renders the tree as an XML document to w.
func Encode(w io.Writer, n *ptree.Node, opts ...Option) error {
	var o encOpts
	for _, opt := range opts {
		opt(&o)
	}
	if n.Value() != "" {
		return fmt.Errorf("%w: root node carries a value", ErrEncode)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	e := &encoder{buf: &buf, opts: &o}
	for key, sub := range n.Items() {
		if err := e.element(key, sub, 0); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

type encoder struct {
	buf  *bytes.Buffer
	opts *encOpts
}

func (e *encoder) element(name string, n *ptree.Node, depth int) error {
	switch name {
	case TextKey:
		return e.text(n.Value())
	case CommentKey:
		e.buf.WriteString("<!--")
		e.buf.WriteString(n.Value())
		e.buf.WriteString("-->")
		e.sep()
		return nil
	case AttrKey:
		return fmt.Errorf("%w: %q outside an element", ErrEncode, AttrKey)
	}
	e.indent(depth)
	e.buf.WriteByte('<')
	e.buf.WriteString(name)
	body := make([]int, 0, n.Len())
	keys := n.Keys()
	vals := n.Values()
	for i, key := range keys {
		if key != AttrKey {
			body = append(body, i)
			continue
		}
		for aname, attr := range vals[i].Items() {
			e.buf.WriteByte(' ')
			e.buf.WriteString(aname)
			e.buf.WriteString(`="`)
			xml.EscapeText(e.buf, []byte(attr.Value()))
			e.buf.WriteByte('"')
		}
	}
	// <xmltext> children win over a concatenated value when a
	// hand-built tree carries both.
	hasText := n.Value() != "" && n.Count(TextKey) == 0
	if len(body) == 0 && !hasText {
		e.buf.WriteString("/>")
		e.sep()
		return nil
	}
	e.buf.WriteByte('>')
	if hasText {
		if err := e.text(n.Value()); err != nil {
			return err
		}
	}
	if len(body) > 0 {
		e.sep()
		for _, i := range body {
			if err := e.element(keys[i], vals[i], depth+1); err != nil {
				return err
			}
		}
		e.indent(depth)
	}
	e.buf.WriteString("</")
	e.buf.WriteString(name)
	e.buf.WriteByte('>')
	e.sep()
	return nil
}

func (e *encoder) text(s string) error {
	return xml.EscapeText(e.buf, []byte(s))
}

func (e *encoder) sep() {
	if e.opts.indent != "" {
		e.buf.WriteByte('\n')
	}
}

func (e *encoder) indent(depth int) {
	if e.opts.indent == "" {
		return
	}
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.opts.indent)
	}
}
