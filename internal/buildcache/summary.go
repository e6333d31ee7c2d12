package buildcache

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Summary accumulates cache-effectiveness counters for one build
// invocation, rendered with github.com/dustin/go-humanize so the CLI's
// closing line reads in human units rather than raw byte/function counts.
type Summary struct {
	Hits     int
	Misses   int
	Bytes    int64
	SessionID string
}

// Record registers one artifact lookup outcome.
func (s *Summary) Record(hit bool, size int) {
	if hit {
		s.Hits++
	} else {
		s.Misses++
		s.Bytes += int64(size)
	}
}

// String renders a one-line human-readable summary, e.g. "build a1b2c3d4:
// 41 cache hits, 12 compiled (53 kB written)".
func (s Summary) String() string {
	return fmt.Sprintf("build %s: %d cache hits, %d compiled (%s written)",
		shortID(s.SessionID), s.Hits, s.Misses, humanize.Bytes(uint64(s.Bytes)))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
