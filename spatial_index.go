package main

import (
	"slices"

	"github.com/dhconnelly/rtreego"
)

// nodeTolerance is the side length of the box each node occupies in the R-tree
const nodeTolerance = 1e-9

// nodeEntry wraps a graph node for R-tree storage
type nodeEntry struct {
	ID    string
	Point Point
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (n *nodeEntry) Bounds() rtreego.Rect {
	return n.BBox
}

// SpatialIndex answers position queries over the graph nodes
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// NewSpatialIndex creates a new spatial index over every node of the graph
func NewSpatialIndex(graph *Graph) *SpatialIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, id := range graph.IDs() {
		node := graph.Nodes[id]
		bbox, err := rtreego.NewRect(
			rtreego.Point{node.Point.X - nodeTolerance/2, node.Point.Y - nodeTolerance/2},
			[]float64{nodeTolerance, nodeTolerance},
		)
		if err != nil {
			continue
		}
		tree.Insert(&nodeEntry{
			ID:    node.ID,
			Point: node.Point,
			BBox:  bbox,
		})
	}

	return &SpatialIndex{tree: tree}
}

// Len returns the number of indexed nodes
func (si *SpatialIndex) Len() int {
	return si.tree.Size()
}

// NearestNode finds the closest node to a given point
func (si *SpatialIndex) NearestNode(point Point) (string, float64, bool) {
	if si.tree.Size() == 0 {
		return "", 0, false
	}

	item := si.tree.NearestNeighbor(rtreego.Point{point.X, point.Y})
	if item == nil {
		return "", 0, false
	}

	entry := item.(*nodeEntry)
	return entry.ID, point.Distance(entry.Point), true
}

// QueryRadius returns the sorted IDs of nodes within radius of point
func (si *SpatialIndex) QueryRadius(point Point, radius float64) []string {
	minX, minY, maxX, maxY := point.X-radius, point.Y-radius, point.X+radius, point.Y+radius
	bbox, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)
	if err != nil {
		return []string{}
	}

	results := si.tree.SearchIntersect(bbox)
	ids := make([]string, 0, len(results))

	for _, item := range results {
		entry := item.(*nodeEntry)
		if point.Distance(entry.Point) <= radius {
			ids = append(ids, entry.ID)
		}
	}
	slices.Sort(ids)

	return ids
}
