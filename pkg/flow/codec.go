package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/recipeflow/pkg/errors"
)

// document is the JSON layout of a flow graph.
type document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// MarshalGraph converts a graph to JSON bytes. Nodes are sorted by ID and
// edges by (source, target), so equal graphs produce equal bytes.
//
// Graphs holding infinite or NaN rates (from zero yields) cannot be encoded
// and return an error.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes g as indented JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	doc := document{Nodes: g.SortedNodes(), Edges: g.SortedEdges()}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes g as JSON to path. The graph is encoded first, so
// a graph that cannot be encoded leaves no file behind.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadGraph decodes a graph written by [WriteGraph]. Edges must reference
// declared nodes; repeated pairs are summed like any other edge insert.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode flow graph")
	}

	g := NewGraph()
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node with empty id")
		}
		g.AddNode(n)
	}
	for _, e := range doc.Edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %s->%s: unknown source node", e.Source, e.Target)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "edge %s->%s: unknown target node", e.Source, e.Target)
		}
		g.AddEdge(e)
	}
	return g, nil
}

// UnmarshalGraph decodes JSON bytes into a graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}
