/*
Package graph implements the Graph Store: an undirected adjacency structure
over string node identifiers.

Neighbor lists keep insertion order, which fixes the order in which a
breadth-first traversal discovers siblings. Edges are symmetric and both
sides are written under a single lock, so readers never observe a
half-inserted edge.

	g := graph.New()
	a := g.AddNode() // "Node 1"
	b := g.AddNode() // "Node 2"
	g.AddEdge(a, b)

A Graph is safe for concurrent use.
*/
package graph
