// Package nodelink draws flow graphs as Graphviz node-link diagrams.
//
// Items become rounded boxes coloured by the first word of their name, and
// every flow becomes an arrow labelled with its rate. Arrow width grows with
// the rate relative to the largest flow in the graph.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Layout runs in-process through [github.com/goccy/go-graphviz]; no Graphviz
// installation is needed.
package nodelink
