package ports

// GraphReader is the subset of the Graph Store the traversal engine consumes.
type GraphReader interface {
	// Neighbors returns the neighbor list in insertion order,
	// or domain.ErrUnknownNode if n was never registered.
	Neighbors(n string) ([]string, error)

	// HasNode reports whether n was registered.
	HasNode(n string) bool

	// Nodes lists every known node (used to populate start-node selectors).
	Nodes() []string
}
