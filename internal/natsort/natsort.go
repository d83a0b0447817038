package natsort

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collators buffer state between calls and are not safe for concurrent
// use, so the shared instance is guarded.
var (
	mu       sync.Mutex
	collator = collate.New(language.Und, collate.Numeric, collate.Loose)
)

// Compare reports the natural ordering of a and b: negative when a sorts
// first, zero when equal, positive when b sorts first.
func Compare(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return collator.CompareString(a, b)
}

// Sort orders values in place using natural ordering.
func Sort(values []string) {
	sort.Slice(values, func(i, j int) bool {
		return Compare(values[i], values[j]) < 0
	})
}
