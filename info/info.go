// Package info reads and writes property trees in the INFO format.
//
// INFO is a whitespace-structured text form made for property trees.
// Each line holds one "key value" pair; a child block is enclosed in
// braces, where the opening '{' may sit at the end of the pair's line
// or alone on the next one. Keys and values are single words, or
// double-quoted strings with C-style escapes; a quoted value followed
// by a trailing '\' continues with another quoted string on the next
// line, concatenated. ';' starts a comment running to end of line, and
// a line of the form
//
//	#include "relative/path"
//
// splices the named file's pairs into the current block. Unlike the
// other formats, INFO round-trips any tree: values and children may
// coexist and keys repeat freely.
package info

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eponymous/proptree/ptree"
)

// ErrEncode reports a tree with no INFO form.
var ErrEncode = errors.New("info encode")

// ParseError reports malformed input, with a 1-based line number and
// the file it came from when known.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("info parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("info parse error at %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a tree from INFO text. #include paths resolve against
// the working directory.
func Parse(data []byte) (*ptree.Node, error) {
	return parse(data, "", ".")
}

// ParseFile reads and parses the file at path. #include paths resolve
// against the file's directory.
func ParseFile(path string) (*ptree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, path, filepath.Dir(path))
}

// Decode parses a tree from r.
func Decode(r io.Reader) (*ptree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func parse(data []byte, file, dir string) (*ptree.Node, error) {
	root := ptree.New()
	p := &parser{
		lines: strings.Split(string(data), "\n"),
		file:  file,
		dir:   dir,
		stack: []*ptree.Node{root},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if len(p.stack) != 1 {
		return nil, p.fail(len(p.lines), "unclosed '{'")
	}
	return root, nil
}

type parser struct {
	lines []string
	file  string
	dir   string

	stack []*ptree.Node
	// last is the most recently added child; a '{' opening a block on
	// its own line attaches to it.
	last *ptree.Node
}

func (p *parser) fail(lineno int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: lineno, Err: fmt.Errorf(format, args...)}
}

func (p *parser) top() *ptree.Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) run() error {
	for i := 0; i < len(p.lines); i++ {
		if err := p.line(&i); err != nil {
			return err
		}
	}
	return nil
}

// line consumes the line at *i, advancing *i past any continuation
// lines a quoted value pulled in.
func (p *parser) line(i *int) error {
	lx := &lexer{s: p.lines[*i]}
	lx.skip()
	if lx.done() {
		return nil
	}
	switch lx.peek() {
	case '{':
		lx.next()
		if p.last == nil {
			return p.fail(*i+1, "'{' without a preceding key")
		}
		p.stack = append(p.stack, p.last)
		p.last = nil
		return p.expectEOL(lx, *i)
	case '}':
		lx.next()
		if len(p.stack) == 1 {
			return p.fail(*i+1, "unmatched '}'")
		}
		p.stack = p.stack[:len(p.stack)-1]
		p.last = nil
		return p.expectEOL(lx, *i)
	case '#':
		return p.include(lx, *i)
	}
	key, _, err := p.str(lx, i, false)
	if err != nil {
		return err
	}
	lx.skip()
	value := ""
	if !lx.done() && lx.peek() != '{' {
		value, lx, err = p.str(lx, i, true)
		if err != nil {
			return err
		}
		lx.skip()
	}
	sub, err := p.top().Append(key, ptree.FromString(value))
	if err != nil {
		return err
	}
	p.last = sub
	if !lx.done() && lx.peek() == '{' {
		lx.next()
		p.stack = append(p.stack, sub)
		p.last = nil
	}
	return p.expectEOL(lx, *i)
}

func (p *parser) expectEOL(lx *lexer, i int) error {
	lx.skip()
	if !lx.done() {
		return p.fail(i+1, "unexpected %q at end of line", lx.rest())
	}
	return nil
}

func (p *parser) include(lx *lexer, i int) error {
	const directive = "#include"
	if !strings.HasPrefix(lx.rest(), directive) {
		return p.fail(i+1, "unknown directive %q", lx.rest())
	}
	lx.i += len(directive)
	lx.skip()
	if lx.done() || lx.peek() != '"' {
		return p.fail(i+1, "#include expects a quoted path")
	}
	path, err := lx.quoted()
	if err != nil {
		return p.fail(i+1, "%v", err)
	}
	if err := p.expectEOL(lx, i); err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p.fail(i+1, "#include: %v", err)
	}
	sub, err := parse(data, path, filepath.Dir(path))
	if err != nil {
		return err
	}
	p.top().Concat(sub)
	p.last = nil
	return nil
}

// str reads a key or value: a quoted string or a bare word. A quoted
// value followed by a trailing '\' continues on the next line. It
// returns the lexer scanning the line the string ended on.
func (p *parser) str(lx *lexer, i *int, allowCont bool) (string, *lexer, error) {
	if lx.peek() != '"' {
		return lx.word(), lx, nil
	}
	var b strings.Builder
	for {
		s, err := lx.quoted()
		if err != nil {
			return "", lx, p.fail(*i+1, "%v", err)
		}
		b.WriteString(s)
		if !allowCont {
			return b.String(), lx, nil
		}
		lx.skip()
		if lx.done() || lx.peek() != '\\' {
			return b.String(), lx, nil
		}
		lx.next()
		if err := p.expectEOL(lx, *i); err != nil {
			return "", lx, err
		}
		*i++
		if *i >= len(p.lines) {
			return "", lx, p.fail(*i, "continuation at end of input")
		}
		lx = &lexer{s: p.lines[*i]}
		lx.skip()
		if lx.done() || lx.peek() != '"' {
			return "", lx, p.fail(*i+1, "continuation line must start with a quoted string")
		}
	}
}

// lexer scans a single line.
type lexer struct {
	s string
	i int
}

func (lx *lexer) done() bool {
	return lx.i >= len(lx.s)
}

func (lx *lexer) peek() byte {
	return lx.s[lx.i]
}

func (lx *lexer) next() byte {
	c := lx.s[lx.i]
	lx.i++
	return c
}

func (lx *lexer) rest() string {
	return lx.s[lx.i:]
}

// skip advances past whitespace and the comment, if any. ';' starts a
// comment only between tokens.
func (lx *lexer) skip() {
	for !lx.done() {
		switch lx.peek() {
		case ' ', '\t', '\r':
			lx.i++
		case ';':
			lx.i = len(lx.s)
		default:
			return
		}
	}
}

func (lx *lexer) word() string {
	start := lx.i
	for !lx.done() {
		switch lx.peek() {
		case ' ', '\t', '\r', ';', '{', '}', '"':
			return lx.s[start:lx.i]
		}
		lx.i++
	}
	return lx.s[start:]
}

func (lx *lexer) quoted() (string, error) {
	lx.next() // opening quote
	var b strings.Builder
	for !lx.done() {
		c := lx.next()
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			if lx.done() {
				return "", errors.New("trailing escape in string")
			}
			dec, ok := unescape(lx.next())
			if !ok {
				return "", fmt.Errorf("unknown escape %q", "\\"+string(lx.s[lx.i-1]))
			}
			b.WriteByte(dec)
		default:
			b.WriteByte(c)
		}
	}
	return "", errors.New("unterminated string")
}

func unescape(c byte) (byte, bool) {
	switch c {
	case '0':
		return 0, true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '\\':
		return '\\', true
	}
	return 0, false
}

// Format renders the tree as INFO text. Any tree with an empty root
// value has an INFO form.
func Format(n *ptree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatFile renders the tree to the file at path.
func FormatFile(path string, n *ptree.Node) error {
	data, err := Format(n)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode renders the tree as INFO text to w.
func Encode(w io.Writer, n *ptree.Node) error {
	if n.Value() != "" {
		return fmt.Errorf("%w: root node carries a value", ErrEncode)
	}
	var buf bytes.Buffer
	for key, sub := range n.Items() {
		writeNode(&buf, key, sub, 0)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

const indent = "    "

func writeNode(buf *bytes.Buffer, key string, n *ptree.Node, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
	buf.WriteString(str(key))
	if n.Value() != "" {
		buf.WriteByte(' ')
		buf.WriteString(str(n.Value()))
	}
	if n.Len() == 0 {
		buf.WriteByte('\n')
		return
	}
	buf.WriteString(" {\n")
	for k, sub := range n.Items() {
		writeNode(buf, k, sub, depth+1)
	}
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
	buf.WriteString("}\n")
}

// Quote renders s as a single INFO token, quoting and escaping it
// when it is not a simple word.
func Quote(s string) string {
	return str(s)
}

// str renders a key or value, quoting unless it is a non-empty simple
// word.
func str(s string) string {
	if simple(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		b.WriteString(escape(s[i]))
	}
	b.WriteByte('"')
	return b.String()
}

func simple(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == '"' || c == '\\' || c == ';' || c == '{' || c == '}' || c == 0x7f {
			return false
		}
	}
	return true
}

func escape(c byte) string {
	switch c {
	case 0:
		return `\0`
	case '\a':
		return `\a`
	case '\b':
		return `\b`
	case '\f':
		return `\f`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\v':
		return `\v`
	case '"':
		return `\"`
	case '\\':
		return `\\`
	}
	return string(c)
}
