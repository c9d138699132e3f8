package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/recipeflow/pkg/flow"
)

// Options configures flow diagram generation.
type Options struct {
	// Detailed adds each item's input and output rate to its label.
	Detailed bool

	// RankDir is the Graphviz rank direction. Empty means "LR", so raw
	// resources sit on the left and the target item on the right.
	RankDir string
}

// Palette is the ten-colour categorical scale nodes are coloured from.
var Palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

const (
	minPenWidth = 1.0
	maxPenWidth = 8.0
)

// ToDOT converts a flow graph to Graphviz DOT. Nodes and edges are written
// in sorted order, so equal graphs give equal output.
func ToDOT(g *flow.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	nodes := g.SortedNodes()
	edges := g.SortedEdges()
	colors := assignColors(nodes)
	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.Name
	}

	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(g, n, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", colors[n.ID]),
			fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s\ninput %s items per second", n.Name, FormatRate(g.Inflow(n.ID)))),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	maxValue := maxEdgeValue(edges)
	for _, e := range edges {
		attrs := []string{
			fmt.Sprintf("label=%q", FormatRate(e.Value)),
			fmt.Sprintf("penwidth=%.2f", penWidth(e.Value, maxValue)),
			fmt.Sprintf("color=%q", colors[e.Source]+"99"),
			fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s → %s\n%s", names[e.Source], names[e.Target], FormatRate(e.Value))),
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// assignColors gives every distinct first word of a node name the next
// palette colour, so "Iron plate" and "Iron gear wheel" share a colour.
func assignColors(nodes []flow.Node) map[string]string {
	byWord := make(map[string]string)
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		word := colorKey(n.Name)
		c, ok := byWord[word]
		if !ok {
			c = Palette[len(byWord)%len(Palette)]
			byWord[word] = c
		}
		out[n.ID] = c
	}
	return out
}

func colorKey(name string) string {
	word, _, _ := strings.Cut(name, " ")
	return word
}

func fmtLabel(g *flow.Graph, n flow.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	return fmt.Sprintf("%s\nin: %s/s\nout: %s/s", n.Name, FormatRate(g.Inflow(n.ID)), FormatRate(g.Outflow(n.ID)))
}

func maxEdgeValue(edges []flow.Edge) float64 {
	m := 0.0
	for _, e := range edges {
		if !math.IsInf(e.Value, 0) && e.Value > m {
			m = e.Value
		}
	}
	return m
}

func penWidth(v, maxValue float64) float64 {
	if math.IsInf(v, 0) {
		return maxPenWidth
	}
	if !(maxValue > 0) || math.IsNaN(v) {
		return minPenWidth
	}
	return minPenWidth + (maxPenWidth-minPenWidth)*v/maxValue
}

// FormatRate formats a rate with three significant digits.
func FormatRate(v float64) string {
	if math.Abs(v) >= 1000 && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}

// RenderSVG lays out a DOT graph with the embedded Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with a bare one whose
// size matches the viewBox, so the diagram scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
