// Package paramtable implements the per-function parameter lookup table:
// a closed-addressing hash table keyed by parameter name, used in place of
// a linear scan over the parameter vector.
package paramtable

// Node is one entry in a bucket chain.
type Node struct {
	Name  string
	Type  string // type token, stored as its textual form
	Index int
	next  *Node
}

// Table is a DJB2-hashed, power-of-two-bucketed closed-addressing table.
type Table struct {
	buckets    []*Node
	paramCount int
}

func hashString(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = (h << 5) + h + uint64(s[i])
	}
	return h
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// New creates a table with at least initialBucketCount buckets, rounded
// up to the next power of two.
func New(initialBucketCount int) *Table {
	return &Table{buckets: make([]*Node, nextPowerOfTwo(initialBucketCount))}
}

// Add inserts name with the given type token and index. It returns false
// without modifying the table if name is already present.
func (t *Table) Add(name string, typ string, index int) bool {
	if t.Find(name) != nil {
		return false
	}
	bucket := hashString(name) & uint64(len(t.buckets)-1)
	node := &Node{Name: name, Type: typ, Index: index, next: t.buckets[bucket]}
	t.buckets[bucket] = node
	t.paramCount++
	return true
}

// Find returns the node for name, or nil if it isn't present.
func (t *Table) Find(name string) *Node {
	bucket := hashString(name) & uint64(len(t.buckets)-1)
	for n := t.buckets[bucket]; n != nil; n = n.next {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Count returns the number of distinct parameters stored.
func (t *Table) Count() int {
	return t.paramCount
}

// ForEach visits every node in arbitrary (bucket) order.
func (t *Table) ForEach(fn func(n *Node)) {
	for _, b := range t.buckets {
		for n := b; n != nil; n = n.next {
			fn(n)
		}
	}
}
