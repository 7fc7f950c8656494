/*
Package domain contains the core domain models for the Ripple traversal engine.

It defines the entities shared by the graph store, the traversal engine and
every adapter that renders traversal progress. This package is kept pure and
free of external dependencies like I/O or timers.

# Key Entities

  - EdgeKey: Canonical identity of an undirected edge (smaller endpoint first).
  - Position: Optional canvas coordinates recorded when a node is placed.
  - Frame: A render snapshot of the traversal (frontier, visited set, active edges).
  - Status: Whether a traversal is Idle or Running.
  - LifecycleHooks: Callbacks for observability (start, visit, enqueue, complete, reset).
*/
package domain
