package xml

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eponymous/proptree/ptree"
)

const doc = `<?xml version="1.0"?>
<config version="2" env="prod"><name>srv</name><!--first--><flag/></config>`

func TestParseElements(t *testing.T) {
	n, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := n.Get("config")
	if err != nil {
		t.Fatal(err)
	}
	name, err := cfg.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	if name.Value() != "srv" {
		t.Fatalf("name = %q, want srv", name.Value())
	}
	if name.Len() != 0 {
		t.Fatalf("text element has %d children, want 0", name.Len())
	}
	flag, err := cfg.Get("flag")
	if err != nil {
		t.Fatal(err)
	}
	if flag.Value() != "" || flag.Len() != 0 {
		t.Fatalf("empty element not empty: %v", flag)
	}
}

func TestParseAttrs(t *testing.T) {
	n, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	attrs, err := n.Get("config." + AttrKey)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"version", "env"}, attrs.Keys()); d != "" {
		t.Fatalf("attr order mismatch (-want +got):\n%s", d)
	}
	v, err := attrs.Get("version")
	if err != nil {
		t.Fatal(err)
	}
	if v.Value() != "2" {
		t.Fatalf("version = %q, want 2", v.Value())
	}
}

func TestParseComments(t *testing.T) {
	n, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	c, err := n.Get("config." + CommentKey)
	if err != nil {
		t.Fatal(err)
	}
	if c.Value() != "first" {
		t.Fatalf("comment = %q, want first", c.Value())
	}

	n, err = Parse([]byte(doc), NoComments())
	if err != nil {
		t.Fatal(err)
	}
	cfg, _ := n.Get("config")
	if cfg.Count(CommentKey) != 0 {
		t.Fatal("NoComments kept a comment")
	}
}

func TestNoConcatText(t *testing.T) {
	n, err := Parse([]byte(`<a>one<b/>two</a>`))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := n.Get("a")
	if a.Value() != "onetwo" {
		t.Fatalf("concatenated value = %q, want onetwo", a.Value())
	}
	if a.Count(TextKey) != 0 {
		t.Fatalf("text chunks = %d, want 0 without NoConcatText", a.Count(TextKey))
	}

	n, err = Parse([]byte(`<a>one<b/>two</a>`), NoConcatText())
	if err != nil {
		t.Fatal(err)
	}
	a, _ = n.Get("a")
	if a.Value() != "" {
		t.Fatalf("value = %q, want empty with NoConcatText", a.Value())
	}
	if a.Count(TextKey) != 2 {
		t.Fatalf("text chunks = %d, want 2", a.Count(TextKey))
	}
}

func TestTrimWhitespace(t *testing.T) {
	in := "<a>\n  <b>  x \t y  </b>\n</a>"
	n, err := Parse([]byte(in), TrimWhitespace())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := n.Get("a")
	if a.Value() != "" {
		t.Fatalf("whitespace-only text kept: %q", a.Value())
	}
	b, _ := a.Get("b")
	if b.Value() != "x y" {
		t.Fatalf("b = %q, want %q", b.Value(), "x y")
	}
}

// A text element must come out as a pure leaf so the tree stays
// representable in formats that reject value-and-children nodes.
func TestTextElementIsLeaf(t *testing.T) {
	n, err := Parse([]byte(`<name>srv</name>`))
	if err != nil {
		t.Fatal(err)
	}
	name, err := n.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	if name.Value() != "srv" || name.Len() != 0 {
		t.Fatalf("got value %q with %d children, want leaf %q", name.Value(), name.Len(), "srv")
	}
}

func TestNoConcatTextRoundTrip(t *testing.T) {
	n, err := Parse([]byte(`<a>one<b/>two</a>`), NoConcatText())
	if err != nil {
		t.Fatal(err)
	}
	out, err := Format(n)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Parse(out, NoConcatText())
	if err != nil {
		t.Fatalf("reparse %q: %v", out, err)
	}
	if !ptree.Equal(n, n2) {
		t.Fatalf("round trip via %q changed the tree", out)
	}
}

func TestParseCharset(t *testing.T) {
	in := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><a>caf`), 0xE9, '<', '/', 'a', '>')
	n, err := Parse(in)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := n.Get("a")
	if a.Value() != "café" {
		t.Fatalf("got %q, want café", a.Value())
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse([]byte("<a><b></a>"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v (%T), want *ParseError", err, err)
	}
	if perr.Line < 1 {
		t.Fatalf("bad line %d", perr.Line)
	}
}

func TestRoundTrip(t *testing.T) {
	n, err := Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Format(n)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse %q: %v", out, err)
	}
	if !ptree.Equal(n, n2) {
		t.Fatalf("round trip via %q changed the tree", out)
	}
}

func TestFormatEscapes(t *testing.T) {
	n := ptree.New()
	a, err := n.Append("a", ptree.New())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.SetValue(`1 < 2 & "so"`); err != nil {
		t.Fatal(err)
	}
	out, err := Format(n)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse %q: %v", out, err)
	}
	got, _ := n2.Get("a")
	if got.Value() != `1 < 2 & "so"` {
		t.Fatalf("got %q", got.Value())
	}
}

func TestFormatIndent(t *testing.T) {
	n, err := Parse([]byte(`<a><b>x</b></a>`))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Format(n, Indent("  "))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "\n  <b>") {
		t.Fatalf("no indentation in %q", s)
	}
}

func TestFormatRootValueFails(t *testing.T) {
	if _, err := Format(ptree.FromString("v")); !errors.Is(err, ErrEncode) {
		t.Fatalf("got %v, want ErrEncode", err)
	}
}
