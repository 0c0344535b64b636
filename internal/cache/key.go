package cache

import (
	"sort"
	"strings"
)

// Key builds a cache key from multiple dimensions in an order-independent
// way: the dimensions are sorted before joining, so equivalent sets (for
// example the same relay endpoints listed in a different order) collapse
// to one cache slot.
func Key(dims ...string) string {
	sorted := make([]string, len(dims))
	copy(sorted, dims)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
