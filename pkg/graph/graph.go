package graph

import (
	"fmt"
	"sync"

	"github.com/aretw0/ripple/pkg/domain"
)

// Graph is the undirected adjacency store.
type Graph struct {
	mu      sync.RWMutex
	idFn    IDFunc
	counter int
	order   []string            // node IDs in creation order
	adj     map[string][]string // neighbor lists in insertion order
	pos     map[string]domain.Position
	edges   []domain.EdgeKey // canonical keys in insertion order
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDFunc overrides the identifier scheme (default: DefaultIDFunc).
func WithIDFunc(fn IDFunc) Option {
	return func(g *Graph) {
		if fn != nil {
			g.idFn = fn
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		idFn: DefaultIDFunc,
		adj:  make(map[string][]string),
		pos:  make(map[string]domain.Position),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode allocates a fresh identifier and registers it with no neighbors.
func (g *Graph) AddNode() string {
	return g.AddNodeAt(domain.Position{})
}

// AddNodeAt is AddNode recording where the node was placed.
func (g *Graph) AddNodeAt(p domain.Position) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var id string
	for {
		g.counter++
		id = g.idFn(g.counter)
		if _, taken := g.adj[id]; !taken {
			break
		}
	}
	g.adj[id] = []string{}
	g.pos[id] = p
	g.order = append(g.order, id)
	return id
}

// AddEdge links a and b in both directions.
// It returns false without error for a self-loop or an edge that already exists.
func (g *Graph) AddEdge(a, b string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.adj[a]; !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownNode, a)
	}
	if _, ok := g.adj[b]; !ok {
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownNode, b)
	}
	if a == b || contains(g.adj[a], b) {
		return false, nil
	}

	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.edges = append(g.edges, domain.NewEdgeKey(a, b))
	return true, nil
}

// Neighbors returns a copy of n's neighbor list in insertion order.
func (g *Graph) Neighbors(n string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	list, ok := g.adj[n]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownNode, n)
	}
	return append([]string(nil), list...), nil
}

// HasNode reports whether n was registered.
func (g *Graph) HasNode(n string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.adj[n]
	return ok
}

// HasEdge reports whether a and b are linked.
func (g *Graph) HasEdge(a, b string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return contains(g.adj[a], b)
}

// Nodes returns all node IDs in creation order.
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.order...)
}

// Edges returns all canonical edge keys in insertion order.
func (g *Graph) Edges() []domain.EdgeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]domain.EdgeKey(nil), g.edges...)
}

// Position returns where n was placed.
func (g *Graph) Position(n string) (domain.Position, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.pos[n]
	if !ok {
		return domain.Position{}, fmt.Errorf("%w: %q", domain.ErrUnknownNode, n)
	}
	return p, nil
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// Size returns the number of edges.
func (g *Graph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Clear removes every node and edge and restarts identifier allocation.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter = 0
	g.order = nil
	g.edges = nil
	g.adj = make(map[string][]string)
	g.pos = make(map[string]domain.Position)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
