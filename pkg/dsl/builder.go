package dsl

// Builder assembles a Fixture.
type Builder struct {
	fixture Fixture
	nodes   map[string]*NodeBuilder
}

// New creates a builder for a fixture called name.
func New(name string) *Builder {
	return &Builder{
		fixture: Fixture{Name: name},
		nodes:   make(map[string]*NodeBuilder),
	}
}

// Node declares a node with the given label.
// If the label already exists, it returns the existing builder.
func (b *Builder) Node(label string) *NodeBuilder {
	if nb, ok := b.nodes[label]; ok {
		return nb
	}
	b.fixture.Nodes = append(b.fixture.Nodes, NodeSpec{ID: label})
	nb := &NodeBuilder{builder: b, index: len(b.fixture.Nodes) - 1}
	b.nodes[label] = nb
	return nb
}

// Edge declares an undirected edge between two labels.
func (b *Builder) Edge(a, c string) *Builder {
	b.fixture.Edges = append(b.fixture.Edges, []string{a, c})
	return b
}

// StartAt sets the suggested start node.
func (b *Builder) StartAt(label string) *Builder {
	b.fixture.Start = label
	return b
}

// Build validates and returns a copy of the fixture.
func (b *Builder) Build() (*Fixture, error) {
	fx := b.fixture.clone()
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return fx, nil
}
