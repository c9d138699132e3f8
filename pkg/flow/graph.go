package flow

import (
	"cmp"
	"maps"
	"slices"
)

// Node is a vertex of a flow graph: one item of the production chain.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Edge is a flow from Source into Target. Value is the throughput of Source
// required per unit of Target throughput.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

type edgeKey struct{ source, target string }

// Graph is a rate graph with at most one edge per ordered (source, target)
// pair. Adding an edge for a pair that already exists adds its value to
// the existing edge instead of creating a parallel one.
//
// The zero value is not usable - use [NewGraph].
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes map[string]Node
	edges []Edge
	index map[edgeKey]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		index: make(map[edgeKey]int),
	}
}

// AddNode registers n unless a node with the same ID is already present.
// It reports whether n was inserted. Later registrations never overwrite:
// the ID is the database key, so the name is the same on every path.
func (g *Graph) AddNode(n Node) bool {
	if _, ok := g.nodes[n.ID]; ok {
		return false
	}
	g.nodes[n.ID] = n
	return true
}

// AddEdge records e, summing its value into an existing edge with the same
// (Source, Target) pair if there is one.
func (g *Graph) AddEdge(e Edge) {
	k := edgeKey{e.Source, e.Target}
	if i, ok := g.index[k]; ok {
		g.edges[i].Value += e.Value
		return
	}
	g.index[k] = len(g.edges)
	g.edges = append(g.edges, e)
}

// MergeScaled folds child into g: child nodes are unioned by ID and every
// child edge is added with its value multiplied by factor. child is not
// modified, so a subgraph can be merged into several parents.
func (g *Graph) MergeScaled(child *Graph, factor float64) {
	for _, n := range child.nodes {
		g.AddNode(n)
	}
	for _, e := range child.edges {
		e.Value *= factor
		g.AddEdge(e)
	}
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns a copy of the node set keyed by ID.
func (g *Graph) Nodes() map[string]Node { return maps.Clone(g.nodes) }

// Edge returns the edge for the ordered pair (source, target).
func (g *Graph) Edge(source, target string) (Edge, bool) {
	i, ok := g.index[edgeKey{source, target}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Edges returns a copy of the edge set in first-insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SortedNodes returns the nodes ordered by ID.
func (g *Graph) SortedNodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[id])
	}
	return out
}

// SortedEdges returns the edges ordered by source, then target.
func (g *Graph) SortedEdges() []Edge {
	out := slices.Clone(g.edges)
	slices.SortFunc(out, func(a, b Edge) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target))
	})
	return out
}

// Inflow returns the summed value of all edges entering id.
func (g *Graph) Inflow(id string) float64 {
	var sum float64
	for _, e := range g.edges {
		if e.Target == id {
			sum += e.Value
		}
	}
	return sum
}

// Outflow returns the summed value of all edges leaving id.
func (g *Graph) Outflow(id string) float64 {
	var sum float64
	for _, e := range g.edges {
		if e.Source == id {
			sum += e.Value
		}
	}
	return sum
}

// Requirements returns, for every node that feeds another, its total
// throughput per unit of the graph's root: the sum of its outgoing edges.
// The root itself has no outgoing edges and is not listed.
func (g *Graph) Requirements() map[string]float64 {
	req := make(map[string]float64)
	for _, e := range g.edges {
		req[e.Source] += e.Value
	}
	return req
}
