package main

import (
	"fmt"
	"slices"
)

// MapNode is a single node record of the map description
type MapNode struct {
	ID          string   `json:"id"`
	Position    Point    `json:"position"`
	Connections []string `json:"connections"`
}

// Node is a named location on the map together with its outgoing connections
type Node struct {
	ID          string
	Point       Point
	Connections []string // IDs of connected nodes, may reference missing nodes
}

// Graph holds every node of the loaded map keyed by ID.
// It is not modified after BuildGraph returns.
type Graph struct {
	Nodes map[string]*Node
}

// GraphOptions controls how map records are turned into a Graph
type GraphOptions struct {
	// SymmetricEdges mirrors a connection listed on one node only onto the
	// other node, so every edge can be walked both ways.
	SymmetricEdges bool
}

// BuildGraph constructs the graph from map records. A record with an ID seen
// before replaces the earlier one. Connections to unknown IDs are kept and
// ignored by the search.
func BuildGraph(records []MapNode, opts GraphOptions) *Graph {
	graph := &Graph{
		Nodes: make(map[string]*Node, len(records)),
	}

	for _, record := range records {
		connections := make([]string, 0, len(record.Connections))
		for _, id := range record.Connections {
			if !slices.Contains(connections, id) {
				connections = append(connections, id)
			}
		}
		graph.Nodes[record.ID] = &Node{
			ID:          record.ID,
			Point:       record.Position,
			Connections: connections,
		}
	}

	if opts.SymmetricEdges {
		for _, id := range graph.IDs() {
			for _, neighborID := range graph.Nodes[id].Connections {
				neighbor, ok := graph.Nodes[neighborID]
				if !ok || slices.Contains(neighbor.Connections, id) {
					continue
				}
				neighbor.Connections = append(neighbor.Connections, id)
			}
		}
	}

	return graph
}

// Len returns the number of nodes in the graph
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// Lookup returns the node with the given ID
func (g *Graph) Lookup(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	node, ok := g.Nodes[id]
	return node, ok
}

// IDs returns all node IDs in sorted order
func (g *Graph) IDs() []string {
	ids := make([]string, 0, g.Len())
	if g == nil {
		return ids
	}
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Neighbors returns the connected nodes of id that exist in the graph
func (g *Graph) Neighbors(id string) []*Node {
	node, ok := g.Lookup(id)
	if !ok {
		return nil
	}

	neighbors := make([]*Node, 0, len(node.Connections))
	for _, neighborID := range node.Connections {
		if neighbor, ok := g.Nodes[neighborID]; ok {
			neighbors = append(neighbors, neighbor)
		}
	}
	return neighbors
}

// EdgeLines returns the graph edges as line segments for visualization.
// An edge listed on both of its nodes is returned once.
func (g *Graph) EdgeLines() [][]Point {
	lines := make([][]Point, 0)

	// Use a map to avoid duplicate edges (since edges are bidirectional)
	seen := make(map[string]bool)

	for _, id := range g.IDs() {
		node := g.Nodes[id]
		for _, neighbor := range g.Neighbors(id) {
			// Create a unique key for this edge (sorted IDs)
			var key string
			if node.ID < neighbor.ID {
				key = fmt.Sprintf("%s\x00%s", node.ID, neighbor.ID)
			} else {
				key = fmt.Sprintf("%s\x00%s", neighbor.ID, node.ID)
			}

			if !seen[key] {
				seen[key] = true
				lines = append(lines, []Point{node.Point, neighbor.Point})
			}
		}
	}

	return lines
}

// Records converts the graph back into map records, sorted by ID
func (g *Graph) Records() []MapNode {
	records := make([]MapNode, 0, g.Len())
	for _, id := range g.IDs() {
		node := g.Nodes[id]
		records = append(records, MapNode{
			ID:          node.ID,
			Position:    node.Point,
			Connections: slices.Clone(node.Connections),
		})
	}
	return records
}

// PathLength returns the total Euclidean length of a path
func (g *Graph) PathLength(path []string) (float64, error) {
	var total float64
	for i := 1; i < len(path); i++ {
		from, ok := g.Lookup(path[i-1])
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownNode, path[i-1])
		}
		to, ok := g.Lookup(path[i])
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownNode, path[i])
		}
		total += from.Point.Distance(to.Point)
	}
	return total, nil
}
