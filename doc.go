/*
Package ripple is an interactive graph workspace with an animated
breadth-first traversal.

A Workspace holds an undirected graph of string-identified nodes and a
traversal engine. Starting a traversal seeds a FIFO frontier with the start
node; every step period the engine dequeues the front node and marks it
visited, and after a shorter sub-delay it enqueues the node's unseen
neighbors. Each state change is rendered as a domain.Frame, so any number of
renderers (terminal, SSE, WebSocket, Redis fan-out, Mermaid export) can
follow the animation as it happens.

# Usage

	ws, err := ripple.New(
		ripple.WithRenderer(ports.RenderFunc(func(f domain.Frame) {
			fmt.Println(f.Kind, f.Visited, f.Frontier)
		})),
		ripple.WithLifecycleHooks(domain.LifecycleHooks{
			OnComplete: func(ctx context.Context, e *domain.TraversalEvent) {
				close(done)
			},
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	a, b, c := ws.AddNode(), ws.AddNode(), ws.AddNode()
	ws.AddEdge(a, b)
	ws.AddEdge(b, c)

	if err := ws.Start(ctx, a); err != nil {
		log.Fatal(err)
	}
	<-done

Starting a new traversal, resetting, or clearing the graph cancels any
pending step; callbacks from a cancelled run never render.

# Architecture

  - pkg/graph: the graph store.
  - internal/runtime: the timed traversal engine.
  - pkg/dsl: graph fixtures (Go builder and YAML/JSON documents).
  - pkg/session: many workspaces keyed by session ID, publishing frames to a bus.
  - pkg/adapters: HTTP (REST, SSE, WebSocket), MCP, memory and Redis frame buses.
  - cmd/ripple: the CLI (serve, demo, graph, validate, mcp).
*/
package ripple
