package flow

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

func TestMarshalGraphLayout(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "b", Name: "B"})
	g.AddNode(Node{ID: "a", Name: "A"})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: 2})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}

	want := `{
  "nodes": [
    {
      "id": "a",
      "name": "A"
    },
    {
      "id": "b",
      "name": "B"
    }
  ],
  "edges": [
    {
      "source": "a",
      "target": "b",
      "value": 2
    }
  ]
}
`
	if string(data) != want {
		t.Errorf("MarshalGraph() =\n%s\nwant\n%s", data, want)
	}
}

func TestMarshalGraphEmptyEdges(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a", Name: "A"})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("leaf graph should encode an empty edge list, got:\n%s", data)
	}
}

func TestMarshalGraphInfinity(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: math.Inf(1)})

	if _, err := MarshalGraph(g); err == nil {
		t.Error("expected error encoding an infinite rate")
	}
}

func TestReadGraphRoundTrip(t *testing.T) {
	cat := abcCatalog(t, "Solid")
	g := mustFlatten(t, "c", cat, Options{})

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("round trip changed size: %d/%d vs %d/%d",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	for _, e := range g.Edges() {
		got, ok := back.Edge(e.Source, e.Target)
		if !ok || got.Value != e.Value {
			t.Errorf("edge %s->%s = %v, want %v", e.Source, e.Target, got.Value, e.Value)
		}
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{nodes`},
		{"empty node id", `{"nodes":[{"id":""}],"edges":[]}`},
		{"unknown source", `{"nodes":[{"id":"a"}],"edges":[{"source":"x","target":"a","value":1}]}`},
		{"unknown target", `{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"x","value":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalGraph([]byte(tt.json))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestWriteGraphFile(t *testing.T) {
	g := mustFlatten(t, "b", abcCatalog(t, "Solid"), Options{})
	path := filepath.Join(t.TempDir(), "b.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	back, err := ReadGraph(f)
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := back.Edge("a", "b"); !ok || e.Value != 2 {
		t.Errorf("a->b = %+v, %v", e, ok)
	}
}

func TestWriteGraphFileInfinityLeavesNoFile(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{ID: "a"})
	g.AddNode(Node{ID: "b"})
	g.AddEdge(Edge{Source: "a", Target: "b", Value: math.Inf(1)})
	path := filepath.Join(t.TempDir(), "b.json")

	if err := WriteGraphFile(g, path); err == nil {
		t.Fatal("expected error writing an infinite rate")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("no file should be created, stat err = %v", err)
	}
}
