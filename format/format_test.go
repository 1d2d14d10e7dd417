package format

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", JSONFormat},
		{"j", JSONFormat},
		{"XML", XMLFormat},
		{"x", XMLFormat},
		{"ini", INIFormat},
		{"i", INIFormat},
		{"info", INFOFormat},
		{"n", INFOFormat},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("got %v, want ErrBadFormat", err)
	}
}

func TestSniff(t *testing.T) {
	got, err := Sniff("/etc/app/config.json")
	if err != nil || got != JSONFormat {
		t.Fatalf("got %v, %v", got, err)
	}
	if _, err := Sniff("noext"); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("got %v, want ErrBadFormat", err)
	}
	if _, err := Sniff("file.txt"); !errors.Is(err, ErrBadFormat) {
		t.Fatalf("got %v, want ErrBadFormat", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, f := range AllFormats() {
		d, err := f.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var g Format
		if err := g.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if g != f {
			t.Fatalf("got %v, want %v", g, f)
		}
		if f.Suffix() != "."+string(d) {
			t.Fatalf("suffix %q does not match name %q", f.Suffix(), d)
		}
	}
}
