// Package json reads and writes property trees as JSON.
//
// The mapping follows the tree model directly: an object becomes a
// node whose children carry the member names as keys, an array becomes
// a node whose children all carry the empty key, and every scalar is
// stored as its verbatim source text ("true", "null", "1e-3", string
// content). Member order is the tree's storage order, both ways.
//
// On output a leaf value is written unquoted when its text is itself a
// JSON literal (number, true, false, null) and quoted otherwise, so a
// parse/format round trip reproduces the input's value kinds. A node
// carrying both a value and children has no JSON form and fails.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eponymous/proptree/internal/pos"
	"github.com/eponymous/proptree/ptree"
)

// ErrEncode reports a tree with no JSON form.
var ErrEncode = errors.New("json encode")

// ParseError reports malformed input, with a 1-based source position.
type ParseError struct {
	Line, Col int
	Offset    int64
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json parse error at line %d, col %d: %v", e.Line, e.Col, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a tree from JSON text. Any JSON value is accepted at
// the root.
func Parse(data []byte) (*ptree.Node, error) {
	p := &parser{
		dec: json.NewDecoder(bytes.NewReader(data)),
		doc: pos.NewDoc(data),
	}
	p.dec.UseNumber()
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.fail(err)
	}
	root, err := p.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := p.dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after value")
		}
		return nil, p.fail(err)
	}
	return root, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*ptree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Decode parses a tree from r.
func Decode(r io.Reader) (*ptree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

type parser struct {
	dec *json.Decoder
	doc *pos.Doc
}

func (p *parser) fail(err error) error {
	off := p.dec.InputOffset()
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		off = serr.Offset
	}
	line, col := p.doc.LineCol(int(off))
	return &ParseError{Line: line, Col: col, Offset: off, Err: err}
}

func (p *parser) value(tok json.Token) (*ptree.Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return p.object()
		case '[':
			return p.array()
		}
		return nil, p.fail(fmt.Errorf("unexpected %q", t.String()))
	case string:
		return ptree.FromString(t), nil
	case json.Number:
		return ptree.FromString(t.String()), nil
	case bool:
		if t {
			return ptree.FromString("true"), nil
		}
		return ptree.FromString("false"), nil
	case nil:
		return ptree.FromString("null"), nil
	}
	return nil, p.fail(fmt.Errorf("unexpected token %v", tok))
}

func (p *parser) object() (*ptree.Node, error) {
	n := ptree.New()
	for p.dec.More() {
		keyTok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, p.fail(fmt.Errorf("object key is %v", keyTok))
		}
		valTok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail(err)
		}
		sub, err := p.value(valTok)
		if err != nil {
			return nil, err
		}
		if _, err := n.Append(key, sub); err != nil {
			return nil, err
		}
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return n, nil
}

func (p *parser) array() (*ptree.Node, error) {
	n := ptree.New()
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail(err)
		}
		sub, err := p.value(tok)
		if err != nil {
			return nil, err
		}
		if _, err := n.Append("", sub); err != nil {
			return nil, err
		}
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.fail(err)
	}
	return n, nil
}

type encOpts struct {
	pretty bool
	indent string
}

// Option adjusts JSON output.
type Option func(*encOpts)

// Compact writes without whitespace. The default is pretty output.
func Compact() Option {
	return func(o *encOpts) { o.pretty = false }
}

// Indent sets the per-level indent for pretty output.
func Indent(s string) Option {
	return func(o *encOpts) { o.indent = s }
}

// Format renders the tree as JSON text, pretty-printed by default.
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

// Encode renders the tree as JSON to w.
func Encode(w io.Writer, n *ptree.Node, opts ...Option) error {
	o := encOpts{pretty: true, indent: "    "}
	for _, opt := range opts {
		opt(&o)
	}
	var buf bytes.Buffer
	if err := encodeNode(&buf, n, &o, 0); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func encodeNode(b *bytes.Buffer, n *ptree.Node, o *encOpts, depth int) error {
	if n.Len() == 0 {
		if n.Value() == "" {
			b.WriteString(`""`)
			return nil
		}
		b.WriteString(literal(n.Value()))
		return nil
	}
	if n.Value() != "" {
		return fmt.Errorf("%w: node has both a value and children", ErrEncode)
	}
	if isArray(n) {
		return encodeSeq(b, n, o, depth, '[', ']', false)
	}
	return encodeSeq(b, n, o, depth, '{', '}', true)
}

func encodeSeq(b *bytes.Buffer, n *ptree.Node, o *encOpts, depth int, open, close byte, keyed bool) error {
	b.WriteByte(open)
	i := 0
	for key, sub := range n.Items() {
		if i > 0 {
			b.WriteByte(',')
		}
		i++
		if o.pretty {
			b.WriteByte('\n')
			writeIndent(b, o, depth+1)
		}
		if keyed {
			b.WriteString(quote(key))
			b.WriteByte(':')
			if o.pretty {
				b.WriteByte(' ')
			}
		}
		if err := encodeNode(b, sub, o, depth+1); err != nil {
			return err
		}
	}
	if o.pretty && i > 0 {
		b.WriteByte('\n')
		writeIndent(b, o, depth)
	}
	b.WriteByte(close)
	return nil
}

func writeIndent(b *bytes.Buffer, o *encOpts, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(o.indent)
	}
}

// isArray reports whether every child carries the empty key, the tree
// form arrays parse to.
func isArray(n *ptree.Node) bool {
	for key := range n.Items() {
		if key != "" {
			return false
		}
	}
	return true
}

// literal renders a scalar: unquoted when the text is itself a JSON
// literal, quoted otherwise.
func literal(v string) string {
	switch v {
	case "true", "false", "null":
		return v
	}
	if isNumber(v) {
		return v
	}
	return quote(v)
}

// isNumber matches the JSON number grammar exactly. json.Valid is too
// loose here: it accepts surrounding whitespace, which would turn a
// padded string value into a bare number token.
func isNumber(v string) bool {
	i := 0
	if i < len(v) && v[i] == '-' {
		i++
	}
	switch {
	case i < len(v) && v[i] == '0':
		i++
	case i < len(v) && v[i] >= '1' && v[i] <= '9':
		for i < len(v) && v[i] >= '0' && v[i] <= '9' {
			i++
		}
	default:
		return false
	}
	if i < len(v) && v[i] == '.' {
		i++
		if i == len(v) || v[i] < '0' || v[i] > '9' {
			return false
		}
		for i < len(v) && v[i] >= '0' && v[i] <= '9' {
			i++
		}
	}
	if i < len(v) && (v[i] == 'e' || v[i] == 'E') {
		i++
		if i < len(v) && (v[i] == '+' || v[i] == '-') {
			i++
		}
		if i == len(v) || v[i] < '0' || v[i] > '9' {
			return false
		}
		for i < len(v) && v[i] >= '0' && v[i] <= '9' {
			i++
		}
	}
	return i == len(v)
}

// quote escapes a string with JSON rules, not Go rules.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
