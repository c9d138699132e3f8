package flow

import (
	"testing"
)

func TestGraphAddNodeIsIdempotent(t *testing.T) {
	g := NewGraph()

	if !g.AddNode(Node{ID: "a", Name: "First"}) {
		t.Error("first AddNode should insert")
	}
	if g.AddNode(Node{ID: "a", Name: "Second"}) {
		t.Error("second AddNode should not insert")
	}
	if n, _ := g.Node("a"); n.Name != "First" {
		t.Errorf("Name = %q, want First", n.Name)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
}

func TestGraphAddEdgeMerges(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 1.5})
	g.AddEdge(Edge{Source: "b", Target: "a", Value: 1})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 2})

	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if e, _ := g.Edge("a", "b"); e.Value != 3.5 {
		t.Errorf("a->b = %v, want 3.5", e.Value)
	}
	if e, _ := g.Edge("b", "a"); e.Value != 1 {
		t.Errorf("b->a = %v, want 1", e.Value)
	}
	if _, ok := g.Edge("a", "c"); ok {
		t.Error("Edge(a, c) should not exist")
	}

	edges := g.Edges()
	if edges[0].Source != "a" || edges[1].Source != "b" {
		t.Errorf("Edges() not in insertion order: %+v", edges)
	}
}

func TestGraphMergeScaled(t *testing.T) {
	child := NewGraph()
	child.AddNode(Node{ID: "ore", Name: "Ore"})
	child.AddNode(Node{ID: "plate", Name: "Plate"})
	child.AddEdge(Edge{Source: "ore", Target: "plate", Value: 2})

	parent := NewGraph()
	parent.AddNode(Node{ID: "gear", Name: "Gear"})
	parent.AddEdge(Edge{Source: "plate", Target: "gear", Value: 2})
	parent.AddEdge(Edge{Source: "ore", Target: "plate", Value: 1})

	parent.MergeScaled(child, 0.5)

	if parent.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", parent.NodeCount())
	}
	if e, _ := parent.Edge("ore", "plate"); e.Value != 2 {
		t.Errorf("ore->plate = %v, want 2", e.Value)
	}
	if e, _ := child.Edge("ore", "plate"); e.Value != 2 {
		t.Errorf("child modified: ore->plate = %v, want 2", e.Value)
	}

	// A second merge of the same child must see the original values.
	parent.MergeScaled(child, 1)
	if e, _ := parent.Edge("ore", "plate"); e.Value != 4 {
		t.Errorf("ore->plate after second merge = %v, want 4", e.Value)
	}
}

func TestGraphSortedAccessors(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(Node{ID: id})
	}
	g.AddEdge(Edge{Source: "b", Target: "c", Value: 1})
	g.AddEdge(Edge{Source: "a", Target: "c", Value: 1})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 1})

	nodes := g.SortedNodes()
	if nodes[0].ID != "a" || nodes[1].ID != "b" || nodes[2].ID != "c" {
		t.Errorf("SortedNodes() = %+v", nodes)
	}

	want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	for i, e := range g.SortedEdges() {
		if e.Source != want[i][0] || e.Target != want[i][1] {
			t.Errorf("SortedEdges()[%d] = %s->%s, want %s->%s", i, e.Source, e.Target, want[i][0], want[i][1])
		}
	}
}

func TestGraphFlows(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Source: "a", Target: "c", Value: 0.5})
	g.AddEdge(Edge{Source: "b", Target: "c", Value: 0.5})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 1})

	if got := g.Inflow("c"); got != 1 {
		t.Errorf("Inflow(c) = %v, want 1", got)
	}
	if got := g.Outflow("a"); got != 1.5 {
		t.Errorf("Outflow(a) = %v, want 1.5", got)
	}

	req := g.Requirements()
	if len(req) != 2 || req["a"] != 1.5 || req["b"] != 0.5 {
		t.Errorf("Requirements() = %v", req)
	}
}

func TestGraphAccessorsReturnCopies(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 1})

	g.Edges()[0].Value = 99
	delete(g.Nodes(), "a")

	if e, _ := g.Edge("a", "b"); e.Value != 1 {
		t.Errorf("edge modified through Edges(): %v", e.Value)
	}
	if _, ok := g.Node("a"); !ok {
		t.Error("node removed through Nodes()")
	}
}
