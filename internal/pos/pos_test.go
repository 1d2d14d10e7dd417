package pos

import (
	"strings"
	"testing"
)

func TestLineCol(t *testing.T) {
	doc := NewDoc([]byte("ab\ncde\n\nf"))
	tests := []struct {
		off, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{7, 3, 1},
		{8, 4, 1},
	}
	for _, tt := range tests {
		line, col := doc.LineCol(tt.off)
		if line != tt.line || col != tt.col {
			t.Errorf("LineCol(%d) = %d:%d, want %d:%d", tt.off, line, col, tt.line, tt.col)
		}
	}
}

func TestPosString(t *testing.T) {
	doc := NewDoc([]byte("key = value\nnext = 2\n"))
	got := doc.Pos(16).String()
	if !strings.Contains(got, "line 2") || !strings.Contains(got, "col 5") {
		t.Fatalf("got %q", got)
	}
}
