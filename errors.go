package main

import "errors"

var (
	// ErrUnknownNode is returned when a requested node id is not in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoPath is returned when the goal cannot be reached from the start.
	ErrNoPath = errors.New("no path found")

	// ErrGraphNotReady is returned for operations on a graph that was never loaded.
	ErrGraphNotReady = errors.New("graph not ready")
)
