// Package redis provides a FrameBus over Redis pub/sub, so that clients
// connected to any replica see the frames of a session driven by another.
package redis
