package graph

import (
	"fmt"
	"strconv"
)

// IDFunc generates a node identifier from its 1-based creation index.
// It must be deterministic; the store skips identifiers that are already taken.
type IDFunc func(n int) string

// DefaultIDFunc names nodes "Node 1", "Node 2", ...
func DefaultIDFunc(n int) string {
	return "Node " + strconv.Itoa(n)
}

// SymbolIDFunc names nodes "A" through "Z".
// Panics if n is outside [1,26].
func SymbolIDFunc(n int) string {
	if n < 1 || n > 26 {
		panic(fmt.Sprintf("SymbolIDFunc: n must be in [1,26], got %d", n))
	}
	return string('A' + rune(n-1))
}
