/*
Package ports defines the driven ports (interfaces) for the Ripple engine.

These interfaces decouple the traversal core from the graph implementation,
the timer source and the transports that carry render frames to clients.

# Key Interfaces

  - GraphReader: Read-only view of the Graph Store used by the engine.
  - Renderer: Receives a Frame after every traversal state change.
  - Clock: Schedules the step timer and the sub-delay (real or manual).
  - FrameBus: Fans encoded frames out to subscribers (memory or Redis).
*/
package ports
