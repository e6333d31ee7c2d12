package buildcache

import (
	"path/filepath"
	"testing"

	"escomp/internal/ir"
	"escomp/internal/irbuilder"
)

// buildFunction constructs a minimal `main() int32 { return ret; }` function,
// standing in for a post-lowering function the way vmbackend's tests do.
func buildFunction(name string, ret float64) *ir.Function {
	b := irbuilder.New()
	fn := b.CreateFunction(name, "int32")
	blk := b.CreateBlock("entry")
	b.SetCurrentBlock(blk)
	b.Return(b.Imm(ret))
	b.SetEntry(fn)
	return fn
}

func TestKeyChangesWithFunctionBody(t *testing.T) {
	a := buildFunction("f", 1)
	b := buildFunction("f", 2)

	if Key(a) == Key(b) {
		t.Fatalf("expected different keys for functions with different bodies")
	}
	if Key(a) != Key(buildFunction("f", 1)) {
		t.Fatalf("expected the same key for two functions with identical bodies")
	}
}

func TestStoreThenLookupRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	cache, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	fn := buildFunction("main", 0)
	key := Key(fn)

	if _, ok, err := cache.Lookup(key, "ir-text"); err != nil || ok {
		t.Fatalf("expected a cache miss before any Store, got ok=%v err=%v", ok, err)
	}

	if err := cache.Store(key, "ir-text", []byte("define int32 @main() {}\n")); err != nil {
		t.Fatalf("Store: %v", err)
	}

	blob, ok, err := cache.Lookup(key, "ir-text")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit after Store")
	}
	if string(blob) != "define int32 @main() {}\n" {
		t.Fatalf("unexpected cached blob: %q", blob)
	}

	if _, ok, _ := cache.Lookup(key, "vm-bytecode"); ok {
		t.Fatalf("expected distinct backends to have distinct cache entries")
	}
}

func TestSummaryString(t *testing.T) {
	s := &Summary{SessionID: "abcdef0123456789"}
	s.Record(true, 0)
	s.Record(false, 42)
	s.Record(false, 8)

	got := s.String()
	if got == "" {
		t.Fatalf("expected a non-empty summary string")
	}
}
