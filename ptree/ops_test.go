package ptree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPutGet(t *testing.T) {
	n := New()
	if _, err := n.Put("server.port", 8080); err != nil {
		t.Fatal(err)
	}
	got, err := n.Get("server.port")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "8080" {
		t.Fatalf("got %q, want %q", got.Value(), "8080")
	}
	if n.Len() != 1 || n.KeyAt(0) != "server" {
		t.Fatalf("intermediate not created: keys %v", n.Keys())
	}
}

func TestGetMissing(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	_, err := n.Get("a.b.c")
	if !errors.Is(err, ErrBadPath) {
		t.Fatalf("got %v, want ErrBadPath", err)
	}
	var perr *PathError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T, want *PathError", err)
	}
	if perr.Path != "a.b.c" || perr.Segment != "b" {
		t.Fatalf("got path %q segment %q", perr.Path, perr.Segment)
	}
}

func TestGetBadSyntax(t *testing.T) {
	n := New()
	if _, err := n.Get("a\\"); !errors.Is(err, ErrBadPath) {
		t.Fatalf("got %v, want ErrBadPath", err)
	}
}

func TestGetOr(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", "x")
	def := FromString("fallback")
	if got := n.GetOr("a", nil); got.Value() != "x" {
		t.Fatalf("got %q, want %q", got.Value(), "x")
	}
	if got := n.GetOr("missing", def); got != def {
		t.Fatal("default not returned")
	}
}

func TestPutReplaces(t *testing.T) {
	n := New()
	if _, err := n.Put("a", 1); err != nil {
		t.Fatal(err)
	}
	sub := New()
	mustAppend(t, sub, "nested", true)
	if _, err := n.Put("a", sub); err != nil {
		t.Fatal(err)
	}
	if n.Count("a") != 1 {
		t.Fatalf("put duplicated the key: %v", n.Keys())
	}
	got, err := n.Get("a.nested")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "true" {
		t.Fatalf("got %q, want %q", got.Value(), "true")
	}
}

func TestPutEmptyPathReplacesSelf(t *testing.T) {
	n := New()
	mustAppend(t, n, "old", 1)
	sub := FromString("v")
	if _, err := n.Put("", sub); err != nil {
		t.Fatal(err)
	}
	if n.Value() != "v" || n.Len() != 0 {
		t.Fatalf("self not replaced: %v", n)
	}
}

func TestPutRejectsBadValue(t *testing.T) {
	n := New()
	if _, err := n.Put("a", struct{}{}); !errors.Is(err, ErrBadValue) {
		t.Fatalf("got %v, want ErrBadValue", err)
	}
}

func TestAddAppendsDuplicates(t *testing.T) {
	n := New()
	for i := 1; i <= 3; i++ {
		if _, err := n.Add("shows.show", i); err != nil {
			t.Fatal(err)
		}
	}
	shows, err := n.Get("shows")
	if err != nil {
		t.Fatal(err)
	}
	if shows.Count("show") != 3 {
		t.Fatalf("got %d shows, want 3", shows.Count("show"))
	}
	if shows.At(0).Value() != "1" || shows.At(2).Value() != "3" {
		t.Fatalf("order lost: %v", shows)
	}
}

func TestValueMatchSegment(t *testing.T) {
	n := New()
	shows := mustAppend(t, n, "shows", nil)
	if err := shows.SetValue(""); err != nil {
		t.Fatal(err)
	}
	mustAppend(t, shows, "show", "99")
	mustAppend(t, shows, "show", "100")
	got, err := n.Get("shows.[100]")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "100" {
		t.Fatalf("got %q, want %q", got.Value(), "100")
	}
	if _, err := n.Get("shows.[101]"); !errors.Is(err, ErrBadPath) {
		t.Fatalf("got %v, want ErrBadPath", err)
	}
}

func TestSetDefault(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", "kept")
	got, err := n.SetDefault("a", "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "kept" {
		t.Fatalf("got %q, want %q", got.Value(), "kept")
	}
	got, err = n.SetDefault("b.c", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "none" {
		t.Fatalf("got %q, want %q", got.Value(), "none")
	}
}

func TestInsert(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	mustAppend(t, n, "c", 3)
	if _, err := n.Insert(1, "b", 2); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"a", "b", "c"}, n.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
	// -1 inserts at the end
	if _, err := n.Insert(-1, "d", 4); err != nil {
		t.Fatal(err)
	}
	if n.KeyAt(-1) != "d" {
		t.Fatalf("got last key %q, want d", n.KeyAt(-1))
	}
	if _, err := n.Insert(99, "e", 5); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("got %v, want ErrIndexRange", err)
	}
}

func TestErase(t *testing.T) {
	n := New()
	mustAppend(t, n, "k", 1)
	mustAppend(t, n, "j", 2)
	mustAppend(t, n, "k", 3)
	if got := n.Erase("k"); got != 2 {
		t.Fatalf("erased %d, want 2", got)
	}
	if got := n.Erase("k"); got != 0 {
		t.Fatalf("erased %d, want 0", got)
	}
	if d := cmp.Diff([]string{"j"}, n.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
}

func TestRemoveByValue(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", "x")
	mustAppend(t, n, "b", "y")
	mustAppend(t, n, "c", "x")
	if err := n.Remove("x"); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"b", "c"}, n.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
	if err := n.Remove("zzz"); !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v, want ErrValueNotFound", err)
	}
}

func TestPop(t *testing.T) {
	n := New()
	mustAppend(t, n, "k", 1)
	mustAppend(t, n, "k", 2)
	got, err := n.Pop("k")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "1" {
		t.Fatalf("popped %q, want first match 1", got.Value())
	}
	if n.Len() != 1 {
		t.Fatalf("len %d, want 1", n.Len())
	}
	if _, err := n.Pop("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
	def := FromString("d")
	if got := n.PopOr("missing", def); got != def {
		t.Fatal("default not returned")
	}
}

func TestPopItem(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	mustAppend(t, n, "b", 2)
	mustAppend(t, n, "c", 3)
	key, sub, err := n.PopItem(-1)
	if err != nil {
		t.Fatal(err)
	}
	if key != "c" || sub.Value() != "3" {
		t.Fatalf("got %q=%q, want c=3", key, sub.Value())
	}
	key, _, err = n.PopItem(0)
	if err != nil {
		t.Fatal(err)
	}
	if key != "a" {
		t.Fatalf("got %q, want a", key)
	}
	if _, _, err := n.PopItem(5); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("got %v, want ErrIndexRange", err)
	}
}

func TestIndex(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", "x")
	mustAppend(t, n, "b", "y")
	mustAppend(t, n, "c", "x")
	i, err := n.Index("x")
	if err != nil {
		t.Fatal(err)
	}
	if i != 0 {
		t.Fatalf("got %d, want 0", i)
	}
	i, err = n.IndexRange("x", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if i != 2 {
		t.Fatalf("got %d, want 2", i)
	}
	if _, err := n.IndexRange("y", 2, 3); !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v, want ErrValueNotFound", err)
	}
}

func TestSortByKey(t *testing.T) {
	n := New()
	mustAppend(t, n, "c", 1)
	mustAppend(t, n, "a", 2)
	mustAppend(t, n, "b", 3)
	mustAppend(t, n, "a", 4)
	n.Sort()
	if d := cmp.Diff([]string{"a", "a", "b", "c"}, n.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
	// stable: same-keyed children keep insertion order
	if n.At(0).Value() != "2" || n.At(1).Value() != "4" {
		t.Fatalf("sort not stable: %v %v", n.At(0).Value(), n.At(1).Value())
	}
	n.Sort()
	if d := cmp.Diff([]string{"a", "a", "b", "c"}, n.Keys()); d != "" {
		t.Fatalf("sort not idempotent (-want +got):\n%s", d)
	}
}

func TestSortFunc(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	mustAppend(t, n, "b", 3)
	mustAppend(t, n, "c", 2)
	n.SortFunc(func(_ string, n1 *Node, _ string, n2 *Node) bool {
		return n1.Value() > n2.Value()
	})
	got := make([]string, 0, n.Len())
	for _, v := range n.Values() {
		got = append(got, v.Value())
	}
	if d := cmp.Diff([]string{"3", "2", "1"}, got); d != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", d)
	}
}

func TestReverse(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	mustAppend(t, n, "b", 2)
	mustAppend(t, n, "c", 3)
	n.Reverse()
	if d := cmp.Diff([]string{"c", "b", "a"}, n.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
}

func TestMergeDoesNotMutate(t *testing.T) {
	a := New()
	mustAppend(t, a, "x", 1)
	mustAppend(t, a, "y", 2)
	b := New()
	mustAppend(t, b, "y", 20)
	mustAppend(t, b, "z", 30)

	m := a.Merge(b)
	if d := cmp.Diff([]string{"x", "y", "z"}, m.Keys()); d != "" {
		t.Fatalf("merged keys mismatch (-want +got):\n%s", d)
	}
	got, err := m.Get("y")
	if err != nil {
		t.Fatal(err)
	}
	if got.Value() != "20" {
		t.Fatalf("got %q, want %q", got.Value(), "20")
	}
	// operands untouched
	if a.Len() != 2 || b.Len() != 2 {
		t.Fatal("merge mutated an operand")
	}
	ay, _ := a.Get("y")
	if ay.Value() != "2" {
		t.Fatalf("merge mutated left operand: %q", ay.Value())
	}
}

func TestUpdateMutates(t *testing.T) {
	a := New()
	mustAppend(t, a, "x", 1)
	b := New()
	mustAppend(t, b, "x", 10)
	mustAppend(t, b, "y", 20)
	a.Update(b)
	if d := cmp.Diff([]string{"x", "y"}, a.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
	ax, _ := a.Get("x")
	if ax.Value() != "10" {
		t.Fatalf("got %q, want %q", ax.Value(), "10")
	}
}

func TestConcat(t *testing.T) {
	a := New()
	mustAppend(t, a, "k", 1)
	b := New()
	mustAppend(t, b, "k", 2)
	a.Concat(b)
	if a.Count("k") != 2 {
		t.Fatalf("got %d, want 2", a.Count("k"))
	}
	// copies, not aliases
	b.At(0).SetValue("mutated")
	if a.At(1).Value() != "2" {
		t.Fatalf("concat aliased the source: %q", a.At(1).Value())
	}
}

func TestExtend(t *testing.T) {
	a := New()
	mustAppend(t, a, "a", 1)
	b := New()
	mustAppend(t, b, "b", 2)
	mustAppend(t, b, "c", 3)
	a.Extend(b.Items())
	if d := cmp.Diff([]string{"a", "b", "c"}, a.Keys()); d != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", d)
	}
}

func TestExtendFromSelfPanics(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic extending a node from its own items")
		}
	}()
	n.Extend(n.Items())
}

func TestClear(t *testing.T) {
	n := FromString("v")
	mustAppend(t, n, "a", 1)
	n.Clear()
	if n.Value() != "" || n.Len() != 0 {
		t.Fatalf("clear left %v", n)
	}
}

func TestSearchEqualRange(t *testing.T) {
	n := New()
	mustAppend(t, n, "k", 1)
	mustAppend(t, n, "j", 2)
	mustAppend(t, n, "k", 3)
	var got []string
	for _, sub := range n.Search("k") {
		got = append(got, sub.Value())
	}
	if d := cmp.Diff([]string{"1", "3"}, got); d != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", d)
	}
}

func TestSearchFunc(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 10)
	mustAppend(t, n, "b", 5)
	mustAppend(t, n, "c", 20)
	var got []string
	for k := range n.SearchFunc(func(_ string, sub *Node) bool {
		i, err := sub.Int()
		return err == nil && i >= 10
	}) {
		got = append(got, k)
	}
	if d := cmp.Diff([]string{"a", "c"}, got); d != "" {
		t.Fatalf("searchfunc mismatch (-want +got):\n%s", d)
	}
}

func TestSearchFuncMutationPanics(t *testing.T) {
	n := New()
	mustAppend(t, n, "a", 1)
	mustAppend(t, n, "a", 2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mutation during iteration")
		}
	}()
	for range n.Search("a") {
		n.Erase("a")
	}
}

func TestSortedIterator(t *testing.T) {
	n := New()
	mustAppend(t, n, "c", 1)
	mustAppend(t, n, "a", 2)
	mustAppend(t, n, "b", 3)
	var got []string
	for k := range n.Sorted() {
		got = append(got, k)
	}
	if d := cmp.Diff([]string{"a", "b", "c"}, got); d != "" {
		t.Fatalf("sorted mismatch (-want +got):\n%s", d)
	}
	// storage order untouched
	if d := cmp.Diff([]string{"c", "a", "b"}, n.Keys()); d != "" {
		t.Fatalf("sorted mutated storage (-want +got):\n%s", d)
	}
}

func TestSortedMutationPanics(t *testing.T) {
	n := New()
	mustAppend(t, n, "b", 1)
	mustAppend(t, n, "a", 2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on mutation during iteration")
		}
	}()
	for range n.Sorted() {
		n.Clear()
	}
}
