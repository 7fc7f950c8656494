// Package memory provides an in-process FrameBus for single-replica servers
// and tests.
package memory
