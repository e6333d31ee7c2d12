package arena

import "testing"

func TestAllocAligns(t *testing.T) {
	a := New(0)
	b := a.Alloc(3)
	if len(b) != 8 {
		t.Fatalf("expected alignment up to 8, got %d", len(b))
	}
}

func TestAllocGrowsPoolOnOverflow(t *testing.T) {
	a := New(64)
	a.Alloc(32)
	total, pools := a.Stats()
	if total != 32 || pools != 1 {
		t.Fatalf("unexpected initial stats: total=%d pools=%d", total, pools)
	}

	// This request doesn't fit in the remaining 32 bytes, so a new pool
	// is prepended sized max(poolSize, 2*request).
	a.Alloc(48)
	total, pools = a.Stats()
	if pools != 2 {
		t.Fatalf("expected a second pool to be prepended, got %d pools", pools)
	}
	if total != 80 {
		t.Fatalf("expected total allocated 80, got %d", total)
	}
}

// TestTotalAllocatedMonotonic is property 8: total_allocated never
// decreases between Reset calls, and pool_count never shrinks at all.
func TestTotalAllocatedMonotonic(t *testing.T) {
	a := New(16)
	last := 0
	for i := 0; i < 20; i++ {
		a.Alloc(i + 1)
		total, _ := a.Stats()
		if total < last {
			t.Fatalf("total_allocated decreased: %d -> %d", last, total)
		}
		last = total
	}

	_, poolsBefore := a.Stats()
	a.Reset()
	total, poolsAfter := a.Stats()
	if total != 0 {
		t.Fatalf("expected Reset to zero total_allocated, got %d", total)
	}
	if poolsAfter < poolsBefore {
		t.Fatalf("pool_count shrank across Reset: %d -> %d", poolsBefore, poolsAfter)
	}
}

func TestStrdupCopiesIntoArena(t *testing.T) {
	a := New(0)
	s := "hello"
	got := a.Strdup(s)
	if got != s {
		t.Fatalf("Strdup mangled string: got %q want %q", got, s)
	}
	if a.Strdup("") != "" {
		t.Fatalf("Strdup of empty string should return empty string")
	}
}

func TestResetDoesNotFreePools(t *testing.T) {
	a := New(16)
	a.Alloc(16)
	a.Alloc(16)
	_, poolsBefore := a.Stats()
	a.Reset()
	a.Alloc(8)
	_, poolsAfter := a.Stats()
	if poolsAfter != poolsBefore {
		t.Fatalf("expected pool chain to be reused after Reset, had %d now %d", poolsBefore, poolsAfter)
	}
}
