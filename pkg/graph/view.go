package graph

import "github.com/aretw0/ripple/pkg/domain"

// NodeView is a read-only copy of one node.
type NodeView struct {
	ID        string          `json:"id" yaml:"id"`
	Position  domain.Position `json:"position" yaml:"position"`
	Neighbors []string        `json:"neighbors" yaml:"neighbors"`
}

// View is a consistent read-only copy of the whole store.
type View struct {
	Nodes []NodeView       `json:"nodes" yaml:"nodes"`
	Edges []domain.EdgeKey `json:"edges" yaml:"edges"`
}

// View copies the store under a single read lock.
func (g *Graph) View() View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v := View{
		Nodes: make([]NodeView, 0, len(g.order)),
		Edges: append([]domain.EdgeKey{}, g.edges...),
	}
	for _, id := range g.order {
		v.Nodes = append(v.Nodes, NodeView{
			ID:        id,
			Position:  g.pos[id],
			Neighbors: append([]string{}, g.adj[id]...),
		})
	}
	return v
}

// IDs returns the node IDs of the view in creation order.
func (v View) IDs() []string {
	ids := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		ids[i] = n.ID
	}
	return ids
}
