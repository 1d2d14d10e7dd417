package ptree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssocFind(t *testing.T) {
	n := New()
	mustAppend(t, n, "k", 1)
	mustAppend(t, n, "j", 2)
	mustAppend(t, n, "k", 3)
	a := n.Assoc()
	if got := a.Find("k"); got == nil || got.Value() != "1" {
		t.Fatalf("Find(k) = %v, want first match 1", got)
	}
	if got := a.Find("missing"); got != nil {
		t.Fatalf("Find(missing) = %v, want nil", got)
	}
	if got := a.Count("k"); got != 2 {
		t.Fatalf("Count(k) = %d, want 2", got)
	}
}

func TestAssocEqualRange(t *testing.T) {
	n := New()
	mustAppend(t, n, "k", 1)
	mustAppend(t, n, "j", 2)
	mustAppend(t, n, "k", 3)
	a := n.Assoc()
	var idx []int
	var vals []string
	for i, sub := range a.EqualRange("k") {
		idx = append(idx, i)
		vals = append(vals, sub.Value())
	}
	if d := cmp.Diff([]int{0, 2}, idx); d != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]string{"1", "3"}, vals); d != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", d)
	}
}

func TestAssocReflectsMutation(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	a := n.Assoc()
	if a.Find("b") != nil {
		t.Fatal("unexpected match before mutation")
	}
	mustAppend(t, n, "b", 2)
	got := a.Find("b")
	if got == nil || got.Value() != "2" {
		t.Fatalf("assoc view did not rebuild after mutation: %v", got)
	}
	n.Erase("a")
	if a.Find("a") != nil {
		t.Fatal("assoc view returned an erased child")
	}
}

func TestNodeFind(t *testing.T) {
	n := New()
	mustAppend(t, n, "x", "1")
	if got := n.Find("x"); got == nil || got.Value() != "1" {
		t.Fatalf("Find(x) = %v", got)
	}
	if n.Find("y") != nil {
		t.Fatal("Find(y) should be nil")
	}
}
