package domain

// Position is the canvas location recorded when a node is placed.
// It carries no meaning for the traversal itself.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// EdgeKey identifies an undirected edge. A is always the lexicographically
// smaller endpoint, so both traversal directions map to the same key.
type EdgeKey struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// NewEdgeKey returns the canonical key for the edge between a and b.
func NewEdgeKey(a, b string) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// String renders the key as "A-B".
func (k EdgeKey) String() string {
	return k.A + "-" + k.B
}

// Has reports whether id is one of the endpoints.
func (k EdgeKey) Has(id string) bool {
	return k.A == id || k.B == id
}
