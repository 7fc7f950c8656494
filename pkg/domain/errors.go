package domain

import "errors"

// ErrUnknownNode is returned when an operation references a node that was never registered.
var ErrUnknownNode = errors.New("unknown node")

// ErrInvalidStart is returned when a traversal is requested from an unregistered or empty node.
var ErrInvalidStart = errors.New("invalid start node")

// ErrInvalidTiming is returned when the sub-delay is not strictly shorter than the step period.
var ErrInvalidTiming = errors.New("sub-delay must be positive and shorter than the step period")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")
