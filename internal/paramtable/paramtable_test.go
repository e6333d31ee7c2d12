package paramtable

import "testing"

func TestAddAndFind(t *testing.T) {
	tbl := New(4)
	if !tbl.Add("a", "int32", 0) {
		t.Fatalf("expected first insert of %q to succeed", "a")
	}
	if !tbl.Add("b", "string", 1) {
		t.Fatalf("expected first insert of %q to succeed", "b")
	}
	if tbl.Add("a", "int32", 0) {
		t.Fatalf("expected duplicate insert of %q to be rejected", "a")
	}
	if tbl.Count() != 2 {
		t.Fatalf("expected Count() == 2, got %d", tbl.Count())
	}

	n := tbl.Find("b")
	if n == nil || n.Type != "string" || n.Index != 1 {
		t.Fatalf("Find(%q) returned unexpected node: %+v", "b", n)
	}
	if tbl.Find("missing") != nil {
		t.Fatalf("Find of absent name should return nil")
	}
}

func TestBucketCountRoundsToPowerOfTwo(t *testing.T) {
	tbl := New(5)
	if len(tbl.buckets) != 8 {
		t.Fatalf("expected 5 to round up to 8 buckets, got %d", len(tbl.buckets))
	}
	tbl = New(0)
	if len(tbl.buckets) != 1 {
		t.Fatalf("expected 0 to round up to 1 bucket, got %d", len(tbl.buckets))
	}
}

func TestForEachVisitsEveryEntry(t *testing.T) {
	tbl := New(2)
	names := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	for i, n := range names {
		if !tbl.Add(n, "int32", i) {
			t.Fatalf("unexpected duplicate for %q", n)
		}
	}

	seen := make(map[string]bool)
	tbl.ForEach(func(n *Node) { seen[n.Name] = true })
	if len(seen) != len(names) {
		t.Fatalf("ForEach visited %d entries, want %d", len(seen), len(names))
	}
	for _, n := range names {
		if !seen[n] {
			t.Fatalf("ForEach did not visit %q", n)
		}
	}
}
