// Package arena implements the bump-allocation pool chain that backs the
// IR builder's node graph. Nothing allocated from an Arena is ever freed
// individually; the whole chain is dropped together when the owning
// builder goes away.
package arena

const (
	// DefaultPoolSize is the size of the first pool and the floor for
	// every pool created afterwards.
	DefaultPoolSize = 4 * 1024
	alignment       = 8
)

type pool struct {
	buffer []byte
	used   int
	next   *pool
}

// Arena is a chain of fixed-size pools. Allocate grows the chain by
// prepending a new pool when the current one can't satisfy a request;
// it never shrinks or frees pools individually.
type Arena struct {
	current        *pool
	poolSize       int
	totalAllocated int
	poolCount      int
}

// New creates an arena whose pools default to poolSize bytes (or
// DefaultPoolSize if poolSize is 0).
func New(poolSize int) *Arena {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	a := &Arena{poolSize: poolSize}
	a.current = &pool{buffer: make([]byte, poolSize)}
	a.poolCount = 1
	return a
}

func alignUp(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// Alloc returns zeroed, 8-byte-aligned storage of size rounded up to the
// next multiple of 8 bytes (the returned slice has that rounded length). A request
// that doesn't fit in the current pool prepends a new pool sized
// max(poolSize, 2*size).
func (a *Arena) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	size = alignUp(size)

	p := a.current
	if p.used+size > len(p.buffer) {
		newSize := a.poolSize
		if size*2 > newSize {
			newSize = size * 2
		}
		np := &pool{buffer: make([]byte, newSize), next: p}
		a.current = np
		a.poolCount++
		p = np
	}

	b := p.buffer[p.used : p.used+size : p.used+size]
	p.used += size
	a.totalAllocated += size
	return b
}

// Strdup copies s into arena storage (counted in Stats) and returns the
// copied bytes as a string. The string conversion makes its own copy, so
// the returned string does not point into the arena and is unaffected by
// a later Reset.
func (a *Arena) Strdup(s string) string {
	if s == "" {
		return ""
	}
	b := a.Alloc(len(s))
	copy(b, s)
	return string(b[:len(s)])
}

// Reset marks every pool in the chain empty without freeing any of them,
// so subsequent allocations reuse the already-grown backing storage.
func (a *Arena) Reset() {
	for p := a.current; p != nil; p = p.next {
		p.used = 0
	}
	a.totalAllocated = 0
}

// Destroy drops every reference to the pool chain. Go's GC reclaims the
// backing storage; there is no manual free step because no individual
// object in the arena is ever freed on its own.
func (a *Arena) Destroy() {
	a.current = nil
	a.poolCount = 0
	a.totalAllocated = 0
}

// Stats reports the arena's monotonic counters: total bytes allocated
// since the last Reset, and the number of pools in the chain (which never
// shrinks between Reset calls).
func (a *Arena) Stats() (totalAllocated, poolCount int) {
	return a.totalAllocated, a.poolCount
}
