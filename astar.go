package main

import (
	"container/heap"
	"fmt"
)

// searchNode represents a node in the A* search
type searchNode struct {
	NodeID string  // ID of the node in the graph
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to end
	F      float64 // Total cost (G + H)
	Parent *searchNode
	Index  int // Index in the heap
}

// PriorityQueue implements heap.Interface for A* algorithm.
// Equal total costs are ordered by node ID so the search is reproducible.
type PriorityQueue []*searchNode

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].F != pq[j].F {
		return pq[i].F < pq[j].F
	}
	return pq[i].NodeID < pq[j].NodeID
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// FindPath computes the shortest path from start to goal using A* with
// Euclidean distance as both edge cost and heuristic. The returned path
// includes both endpoints.
func FindPath(graph *Graph, start, goal string) ([]string, error) {
	if graph.Len() == 0 {
		return nil, ErrGraphNotReady
	}

	startNode, ok := graph.Lookup(start)
	if !ok {
		return nil, fmt.Errorf("start %w: %q", ErrUnknownNode, start)
	}
	goalNode, ok := graph.Lookup(goal)
	if !ok {
		return nil, fmt.Errorf("goal %w: %q", ErrUnknownNode, goal)
	}
	endPoint := goalNode.Point

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	first := &searchNode{
		NodeID: start,
		G:      0,
		H:      startNode.Point.Distance(endPoint),
		F:      startNode.Point.Distance(endPoint),
	}
	heap.Push(openSet, first)

	closedSet := make(map[string]bool)
	openSetMap := make(map[string]*searchNode)
	openSetMap[start] = first

	nodesExplored := 0

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		delete(openSetMap, current.NodeID)
		nodesExplored++

		if current.NodeID == goal {
			path := reconstructPath(current)
			Logger.Debug().
				Str("start", start).
				Str("goal", goal).
				Strs("path", path).
				Int("explored", nodesExplored).
				Msg("path found")
			return path, nil
		}

		closedSet[current.NodeID] = true
		currentPoint := graph.Nodes[current.NodeID].Point

		for _, neighborNode := range graph.Neighbors(current.NodeID) {
			neighborID := neighborNode.ID

			if closedSet[neighborID] {
				continue
			}

			tentativeG := current.G + currentPoint.Distance(neighborNode.Point)

			neighbor, exists := openSetMap[neighborID]
			if !exists {
				neighbor = &searchNode{
					NodeID: neighborID,
					G:      tentativeG,
					H:      neighborNode.Point.Distance(endPoint),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[neighborID] = neighbor
			} else if tentativeG < neighbor.G {
				// Found a better path to this neighbor
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	Logger.Debug().
		Str("start", start).
		Str("goal", goal).
		Int("explored", nodesExplored).
		Msg("no path found")
	return nil, fmt.Errorf("%w: %q -> %q", ErrNoPath, start, goal)
}

// reconstructPath walks parent links back to the start
func reconstructPath(goal *searchNode) []string {
	length := 0
	for node := goal; node != nil; node = node.Parent {
		length++
	}

	path := make([]string, length)
	for node := goal; node != nil; node = node.Parent {
		length--
		path[length] = node.NodeID
	}
	return path
}
