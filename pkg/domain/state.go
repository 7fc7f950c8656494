package domain

// Status defines whether a traversal is in progress.
type Status string

const (
	StatusIdle    Status = "idle"    // No run scheduled (never started, completed or reset)
	StatusRunning Status = "running" // Step timer armed
)

// FrameKind tells a renderer which state change produced a frame.
type FrameKind string

const (
	FrameStart    FrameKind = "start"    // Frontier seeded with the start node
	FrameVisit    FrameKind = "visit"    // Front of the frontier dequeued and marked visited
	FrameExpand   FrameKind = "expand"   // Unseen neighbors of the current node enqueued
	FrameComplete FrameKind = "complete" // Frontier exhausted, run finished
	FrameReset    FrameKind = "reset"    // State wiped
)

// Frame is the render snapshot handed to renderers after every state change.
// Slices are owned by the frame; the engine never mutates them after emission.
type Frame struct {
	// Seq increases by one for every frame emitted by an engine.
	Seq uint64 `json:"seq"`

	// Generation identifies the run that produced the frame.
	Generation uint64 `json:"generation"`

	Kind   FrameKind `json:"kind"`
	Status Status    `json:"status"`

	// Start is the node the run began from (empty after a reset).
	Start string `json:"start,omitempty"`

	// Current is the node dequeued by the latest step.
	Current string `json:"current,omitempty"`

	// Frontier holds discovered nodes awaiting visitation, in FIFO order.
	Frontier []string `json:"frontier"`

	// Visited holds processed nodes in visitation order.
	Visited []string `json:"visited"`

	// ActiveEdges holds the edges used to discover frontier nodes, in discovery order.
	ActiveEdges []EdgeKey `json:"active_edges"`
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	c := f
	c.Frontier = append(make([]string, 0, len(f.Frontier)), f.Frontier...)
	c.Visited = append(make([]string, 0, len(f.Visited)), f.Visited...)
	c.ActiveEdges = append(make([]EdgeKey, 0, len(f.ActiveEdges)), f.ActiveEdges...)
	return c
}

// Node display classes, as applied by the browser UI.
const (
	ClassStart   = "start"   // Node the run began from
	ClassCurrent = "current" // Node dequeued by the latest step
	// ClassNext marks the head of the frontier, dequeued on the next step.
	// The legacy single-page demo styled this node with a class named
	// "current"; here "current" is the node dequeued by the latest step.
	ClassNext    = "next"
	ClassQueued  = "queued"  // Anywhere in the frontier
	ClassVisited = "visited" // Already processed
)

// NodeClasses computes the display classes of every node in nodes.
// Nodes with no class are omitted from the result.
func (f Frame) NodeClasses(nodes []string) map[string][]string {
	visited := make(map[string]bool, len(f.Visited))
	for _, id := range f.Visited {
		visited[id] = true
	}
	queued := make(map[string]bool, len(f.Frontier))
	for _, id := range f.Frontier {
		queued[id] = true
	}

	out := make(map[string][]string)
	for _, id := range nodes {
		var classes []string
		if f.Start != "" && id == f.Start {
			classes = append(classes, ClassStart)
		}
		if f.Current != "" && id == f.Current {
			classes = append(classes, ClassCurrent)
		}
		if visited[id] {
			classes = append(classes, ClassVisited)
		}
		if queued[id] {
			classes = append(classes, ClassQueued)
		}
		if len(f.Frontier) > 0 && f.Frontier[0] == id {
			classes = append(classes, ClassNext)
		}
		if len(classes) > 0 {
			out[id] = classes
		}
	}
	return out
}

// IsEdgeActive reports whether the edge between a and b was used for discovery.
func (f Frame) IsEdgeActive(a, b string) bool {
	key := NewEdgeKey(a, b)
	for _, k := range f.ActiveEdges {
		if k == key {
			return true
		}
	}
	return false
}
