package dsl

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	builder *Builder
	index   int
}

func (n *NodeBuilder) spec() *NodeSpec {
	return &n.builder.fixture.Nodes[n.index]
}

// At sets the node's canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	s := n.spec()
	s.X, s.Y = x, y
	return n
}

// Link connects the node to each of the given labels.
// Targets may be declared before or after this call.
func (n *NodeBuilder) Link(labels ...string) *NodeBuilder {
	s := n.spec()
	s.Links = append(s.Links, labels...)
	return n
}

// Node continues with another node, for chaining.
func (n *NodeBuilder) Node(label string) *NodeBuilder {
	return n.builder.Node(label)
}

// Start marks this node as the suggested start.
func (n *NodeBuilder) Start() *NodeBuilder {
	n.builder.StartAt(n.spec().ID)
	return n
}
