// Package ini reads and writes property trees as INI text.
//
// The format is two levels deep at most: top-level "key = value" lines
// become children of the root, and each "[section]" header starts a
// root child whose own children hold the section's pairs. Lines whose
// first non-blank rune is ';' or '#' are comments; inline comments are
// not recognized. Duplicate sections and duplicate keys within a
// section are rejected, so a tree must have unique keys per level to
// have an INI form.
package ini

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eponymous/proptree/ptree"
)

// ErrEncode reports a tree with no INI form.
var ErrEncode = errors.New("ini encode")

// ParseError reports malformed input, with a 1-based line number.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ini parse error at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse builds a tree from INI text.
func Parse(data []byte) (*ptree.Node, error) {
	return Decode(bytes.NewReader(data))
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*ptree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a tree from r.
func Decode(r io.Reader) (*ptree.Node, error) {
	root := ptree.New()
	section := root
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineno := 0
	fail := func(format string, args ...any) error {
		return &ParseError{Line: lineno, Err: fmt.Errorf(format, args...)}
	}
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}
		if line[0] == '[' {
			if !strings.HasSuffix(line, "]") {
				return nil, fail("unterminated section header %q", line)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, fail("empty section name")
			}
			if root.Find(name) != nil {
				return nil, fail("duplicate section %q", name)
			}
			sub, err := root.Append(name, ptree.New())
			if err != nil {
				return nil, err
			}
			section = sub
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fail("expected key = value, got %q", line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fail("empty key")
		}
		if section.Find(key) != nil {
			return nil, fail("duplicate key %q", key)
		}
		if _, err := section.Append(key, ptree.FromString(strings.TrimSpace(value))); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return root, nil
}

// Format renders the tree as INI text. The tree may be at most two
// levels deep and must have unique, non-empty keys per level.
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

// Encode renders the tree as INI text to w. Top-level leaves are
// written before any section so a parse of the output reproduces the
// same tree.
func Encode(w io.Writer, n *ptree.Node) error {
	if n.Value() != "" {
		return fmt.Errorf("%w: root node carries a value", ErrEncode)
	}
	var buf bytes.Buffer
	seen := map[string]bool{}
	for key, sub := range n.Items() {
		if sub.Len() > 0 {
			continue
		}
		if err := writePair(&buf, seen, key, sub.Value()); err != nil {
			return err
		}
	}
	for key, sub := range n.Items() {
		if sub.Len() == 0 {
			continue
		}
		if err := writeSection(&buf, seen, key, sub); err != nil {
			return err
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeSection(buf *bytes.Buffer, seen map[string]bool, name string, n *ptree.Node) error {
	if err := checkKey(name); err != nil {
		return err
	}
	if n.Value() != "" {
		return fmt.Errorf("%w: section %q carries a value", ErrEncode, name)
	}
	if seen[name] {
		return fmt.Errorf("%w: duplicate section %q", ErrEncode, name)
	}
	seen[name] = true
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	fmt.Fprintf(buf, "[%s]\n", name)
	pairs := map[string]bool{}
	for key, sub := range n.Items() {
		if sub.Len() > 0 {
			return fmt.Errorf("%w: %q.%q is nested too deep", ErrEncode, name, key)
		}
		if err := writePair(buf, pairs, key, sub.Value()); err != nil {
			return err
		}
	}
	return nil
}

func writePair(buf *bytes.Buffer, seen map[string]bool, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if seen[key] {
		return fmt.Errorf("%w: duplicate key %q", ErrEncode, key)
	}
	seen[key] = true
	if strings.ContainsAny(value, "\n\r") {
		return fmt.Errorf("%w: value of %q contains a newline", ErrEncode, key)
	}
	fmt.Fprintf(buf, "%s = %s\n", key, value)
	return nil
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrEncode)
	}
	if strings.ContainsAny(key, "=[]\n\r") {
		return fmt.Errorf("%w: key %q contains a reserved character", ErrEncode, key)
	}
	return nil
}
