/*
Package session manages the workspaces served by a ripple server.

Each session owns one ripple.Workspace. Every frame the workspace renders is
encoded as JSON and published to a ports.FrameBus under the session ID, so
stream clients (SSE, WebSocket, other replicas through Redis) follow the
animation without touching the engine.
*/
package session
